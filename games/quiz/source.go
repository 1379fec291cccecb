/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package quiz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/Seednode/partyhost/games"
)

const OptionCount = 4

// Request is what the host asked the question oracle for.
type Request struct {
	Count      int
	Language   string
	Category   string
	Difficulty string
}

// Oracle is an external question generator. It returns the raw JSON text of
// a question array; Source does the validation.
type Oracle interface {
	Generate(ctx context.Context, req Request) ([]byte, error)
}

// Source asks the oracle for questions and substitutes the built-in set when
// the oracle is missing, fails, or returns something unusable. Callers always
// get a playable list.
type Source struct {
	Oracle Oracle
	Logf   func(format string, args ...any)
}

func (s *Source) logf(format string, args ...any) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}

func (s *Source) Questions(ctx context.Context, req Request) []Question {
	if req.Count < 1 {
		req.Count = 1
	}

	if s.Oracle == nil {
		return Fallback(req.Count)
	}

	data, err := s.Oracle.Generate(ctx, req)
	if err == nil {
		var questions []Question
		questions, err = ParseQuestions(data, req.Count)
		if err == nil {
			return questions
		}
	}

	s.logf("QUIZ: Question oracle failed, using built-in questions: %v", err)

	return Fallback(req.Count)
}

// Prompt renders the generation instructions sent to the oracle.
func Prompt(req Request) string {
	return fmt.Sprintf(`Generate exactly %d multiple choice quiz questions.

Topic: %s
Difficulty: %s
Language: %s

STRICT RULES:
- Return ONLY valid JSON
- No explanations
- No markdown
- No extra text

JSON format:
[
  {
    "question": "string",
    "options": ["string", "string", "string", "string"],
    "correctAnswer": 0
  }
]
`, req.Count, req.Category, req.Difficulty, req.Language)
}

type rawQuestion struct {
	Question      json.RawMessage `json:"question"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer json.RawMessage `json:"correctAnswer"`
}

// ParseQuestions decodes an oracle reply, keeps at most count entries and
// repairs malformed fields: missing text, anything other than exactly four
// options, or a correct index outside 0..3.
func ParseQuestions(data []byte, count int) ([]Question, error) {
	data = stripFences(data)

	var raw []rawQuestion
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: oracle reply is not a question array: %v", games.ErrUpstream, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: oracle returned no questions", games.ErrUpstream)
	}
	if count > 0 && len(raw) > count {
		raw = raw[:count]
	}

	out := make([]Question, 0, len(raw))
	for _, r := range raw {
		out = append(out, Question{
			Text:    parseText(r.Question),
			Options: parseOptions(r.Options),
			Correct: parseCorrect(r.CorrectAnswer),
		})
	}
	return out, nil
}

func stripFences(data []byte) []byte {
	data = bytes.TrimSpace(data)
	if !bytes.HasPrefix(data, []byte("```")) {
		return data
	}
	data = bytes.TrimPrefix(data, []byte("```"))
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		data = data[i+1:]
	}
	data = bytes.TrimSuffix(bytes.TrimSpace(data), []byte("```"))
	return bytes.TrimSpace(data)
}

func parseText(raw json.RawMessage) string {
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil || s == nil {
		return "Missing Question"
	}
	return *s
}

func parseOptions(raw json.RawMessage) []string {
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil || len(items) != OptionCount {
		return []string{"Option A", "Option B", "Option C", "Option D"}
	}

	out := make([]string, len(items))
	for i, v := range items {
		switch t := v.(type) {
		case string:
			out[i] = t
		case nil:
			out[i] = "null"
		default:
			out[i] = fmt.Sprint(t)
		}
	}
	return out
}

func parseCorrect(raw json.RawMessage) int {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0
	}
	if f != math.Trunc(f) || f < 0 || f >= OptionCount {
		return 0
	}
	return int(f)
}

var fallback = []Question{
	{
		Text:    "What is the capital of France?",
		Options: []string{"London", "Berlin", "Paris", "Madrid"},
		Correct: 2,
	},
	{
		Text:    "Which planet is known as the Red Planet?",
		Options: []string{"Venus", "Mars", "Jupiter", "Saturn"},
		Correct: 1,
	},
	{
		Text:    "Who painted the Mona Lisa?",
		Options: []string{"Van Gogh", "Picasso", "Da Vinci", "Monet"},
		Correct: 2,
	},
	{
		Text:    "Which element has the chemical symbol 'O'?",
		Options: []string{"Gold", "Oxygen", "Osmium", "Oganesson"},
		Correct: 1,
	},
	{
		Text:    "In which year did World War II end?",
		Options: []string{"1943", "1944", "1945", "1946"},
		Correct: 2,
	},
}

// Fallback returns count built-in questions, cycling the set as needed.
func Fallback(count int) []Question {
	out := make([]Question, count)
	for i := range out {
		q := fallback[i%len(fallback)]
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}
