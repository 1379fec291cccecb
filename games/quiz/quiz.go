/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package quiz runs the timed multiple-choice quiz: question sequencing,
// first-answer-wins intake and scoring, one session per room.
package quiz

import (
	"fmt"
	"maps"
	"time"

	"github.com/Seednode/partyhost/games"
)

// Phase is a quiz session's lifecycle stage. Transitions are one-way.
type Phase int

const (
	Created Phase = iota
	Started
	Finished
)

func (p Phase) String() string {
	switch p {
	case Created:
		return "CREATED"
	case Started:
		return "STARTED"
	case Finished:
		return "FINISHED"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// CanTransitionTo reports whether next directly follows p.
func (p Phase) CanTransitionTo(next Phase) bool {
	switch p {
	case Created:
		return next == Started
	case Started:
		return next == Finished
	default:
		return false
	}
}

const DefaultTimeLimit = 20 * time.Second

type Question struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Correct int      `json:"correctAnswer"`
}

type AnswerRecord struct {
	Index   int
	Correct bool
	At      time.Time
}

type Session struct {
	Code      string
	Questions []Question
	Index     int
	Phase     Phase
	StartedAt time.Time

	// Answers is keyed by question index, then player.
	Answers map[int]map[string]AnswerRecord
	Scores  map[string]int
}

// Result is returned for an accepted answer.
type Result struct {
	IsCorrect     bool `json:"isCorrect"`
	CorrectAnswer int  `json:"correctAnswer"`
	Score         int  `json:"score"`
}

// Advance describes the outcome of moving to the next question.
type Advance struct {
	Finished       bool           `json:"finished"`
	FinalScores    map[string]int `json:"finalScores,omitempty"`
	QuestionIndex  int            `json:"questionIndex"`
	TotalQuestions int            `json:"totalQuestions"`
	Question       *Question      `json:"question,omitempty"`
	TimeLimit      int64          `json:"timeLimit,omitempty"`
}

// Current is the question the room is on.
type Current struct {
	QuestionIndex  int      `json:"questionIndex"`
	TotalQuestions int      `json:"totalQuestions"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	CorrectAnswer  int      `json:"correctAnswer"`
	TimeLimit      int64    `json:"timeLimit"`
}

// Manager holds every room's quiz session. Like room.Store it is owned by
// a single dispatch loop and does no locking of its own.
type Manager struct {
	sessions  map[string]*Session
	timeLimit time.Duration
	now       func() time.Time
}

func NewManager(timeLimit time.Duration) *Manager {
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}
	return &Manager{
		sessions:  make(map[string]*Session),
		timeLimit: timeLimit,
		now:       time.Now,
	}
}

func (m *Manager) Kind() games.Kind { return games.Quiz }

// Create replaces any existing session for the room. Every player passed in
// starts with a zero score.
func (m *Manager) Create(code string, questions []Question, playerIDs []string) *Session {
	s := &Session{
		Code:      code,
		Questions: questions,
		Phase:     Created,
		Answers:   make(map[int]map[string]AnswerRecord),
		Scores:    make(map[string]int, len(playerIDs)),
	}
	for _, id := range playerIDs {
		s.Scores[id] = 0
	}
	m.sessions[code] = s
	return s
}

func (m *Manager) Get(code string) (*Session, bool) {
	s, ok := m.sessions[code]
	return s, ok
}

func (m *Manager) lookup(code string) (*Session, error) {
	s, ok := m.sessions[code]
	if !ok {
		return nil, fmt.Errorf("%w: no quiz in room %q", games.ErrNotFound, code)
	}
	return s, nil
}

func (s *Session) transition(next Phase) error {
	if !s.Phase.CanTransitionTo(next) {
		return fmt.Errorf("%w: quiz cannot go from %s to %s", games.ErrInvalidState, s.Phase, next)
	}
	s.Phase = next
	return nil
}

func (m *Manager) Start(code string) error {
	s, err := m.lookup(code)
	if err != nil {
		return err
	}
	if err := s.transition(Started); err != nil {
		return err
	}
	s.StartedAt = m.now()
	return nil
}

// SubmitAnswer records a player's first answer to the current question.
// Later answers to the same question are rejected with games.ErrAlreadyActed
// and never touch the score. Out-of-range indexes are simply wrong answers.
func (m *Manager) SubmitAnswer(code, playerID string, answer int) (Result, error) {
	s, err := m.lookup(code)
	if err != nil {
		return Result{}, err
	}
	if s.Phase != Started {
		return Result{}, fmt.Errorf("%w: quiz is %s", games.ErrInvalidState, s.Phase)
	}
	if s.Index >= len(s.Questions) {
		return Result{}, fmt.Errorf("%w: no current question", games.ErrInvalidState)
	}

	answers, ok := s.Answers[s.Index]
	if !ok {
		answers = make(map[string]AnswerRecord)
		s.Answers[s.Index] = answers
	}
	if _, dup := answers[playerID]; dup {
		return Result{}, fmt.Errorf("%w: question %d already answered", games.ErrAlreadyActed, s.Index)
	}

	q := s.Questions[s.Index]
	correct := answer == q.Correct
	answers[playerID] = AnswerRecord{Index: answer, Correct: correct, At: m.now()}

	if correct {
		s.Scores[playerID]++
	}

	return Result{
		IsCorrect:     correct,
		CorrectAnswer: q.Correct,
		Score:         s.Scores[playerID],
	}, nil
}

// NextQuestion advances unconditionally; pacing is driven by the caller,
// not by every player having answered.
func (m *Manager) NextQuestion(code string) (Advance, error) {
	s, err := m.lookup(code)
	if err != nil {
		return Advance{}, err
	}
	if s.Phase != Started {
		return Advance{}, fmt.Errorf("%w: quiz is %s", games.ErrInvalidState, s.Phase)
	}

	s.Index++
	if s.Index >= len(s.Questions) {
		if err := s.transition(Finished); err != nil {
			return Advance{}, err
		}
		return Advance{
			Finished:       true,
			FinalScores:    maps.Clone(s.Scores),
			QuestionIndex:  s.Index,
			TotalQuestions: len(s.Questions),
		}, nil
	}

	q := s.Questions[s.Index]
	return Advance{
		QuestionIndex:  s.Index,
		TotalQuestions: len(s.Questions),
		Question:       &q,
		TimeLimit:      m.timeLimit.Milliseconds(),
	}, nil
}

func (m *Manager) CurrentQuestion(code string) (Current, error) {
	s, err := m.lookup(code)
	if err != nil {
		return Current{}, err
	}
	if s.Phase == Finished || s.Index >= len(s.Questions) {
		return Current{}, fmt.Errorf("%w: quiz is %s", games.ErrInvalidState, s.Phase)
	}

	q := s.Questions[s.Index]
	return Current{
		QuestionIndex:  s.Index,
		TotalQuestions: len(s.Questions),
		Question:       q.Text,
		Options:        q.Options,
		CorrectAnswer:  q.Correct,
		TimeLimit:      m.timeLimit.Milliseconds(),
	}, nil
}

// Scores returns a copy of the room's score map.
func (m *Manager) Scores(code string) map[string]int {
	s, ok := m.sessions[code]
	if !ok {
		return nil
	}
	return maps.Clone(s.Scores)
}

func (m *Manager) Active(code string) bool {
	_, ok := m.sessions[code]
	return ok
}

func (m *Manager) AddPlayer(code, playerID string) {
	s, ok := m.sessions[code]
	if !ok {
		return
	}
	if _, seen := s.Scores[playerID]; !seen {
		s.Scores[playerID] = 0
	}
}

func (m *Manager) RemovePlayer(code, playerID string) {
	s, ok := m.sessions[code]
	if !ok {
		return
	}
	delete(s.Scores, playerID)
	for _, answers := range s.Answers {
		delete(answers, playerID)
	}
}

func (m *Manager) Delete(code string) {
	delete(m.sessions, code)
}

var _ games.Engine = (*Manager)(nil)
