package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/Seednode/partyhost/games"
	"github.com/Seednode/partyhost/games/quiz"
)

// fakeGemini serves one canned reply per request and records the last body.
func fakeGemini(t *testing.T, status int, reply any) (*geminiOracle, map[string]any) {
	t.Helper()

	got := map[string]any{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/test-model:generateContent"), r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)

	o, err := dialGemini(context.Background(), "secret", "test-model", genai.HTTPOptions{BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	return o, got
}

func textReply(text string) map[string]any {
	return map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	}
}

func TestGeminiOracleGeneratesQuestions(t *testing.T) {
	body := "```json\n" + `[{"question":"Capital of France?","options":["Paris","Rome","Oslo","Bern"],"correctAnswer":0}]` + "\n```"
	o, got := fakeGemini(t, http.StatusOK, textReply(body))

	src := &quiz.Source{Oracle: o}
	questions := src.Questions(context.Background(), quiz.Request{Count: 1, Language: "English", Category: "Geography", Difficulty: "Easy"})

	require.Len(t, questions, 1)
	assert.Equal(t, "Capital of France?", questions[0].Text)
	assert.Equal(t, 0, questions[0].Correct)

	contents, ok := got["contents"].([]any)
	require.True(t, ok)
	require.Len(t, contents, 1)
	parts := contents[0].(map[string]any)["parts"].([]any)
	assert.Contains(t, parts[0].(map[string]any)["text"], "Topic: Geography")

	gen, ok := got["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "application/json", gen["responseMimeType"])
	assert.EqualValues(t, 4096, gen["maxOutputTokens"])
}

func TestGeminiOracleReportsUpstreamErrors(t *testing.T) {
	o, _ := fakeGemini(t, http.StatusForbidden, map[string]any{
		"error": map[string]any{"code": 403, "message": "API key not valid", "status": "PERMISSION_DENIED"},
	})

	_, err := o.Generate(context.Background(), quiz.Request{Count: 1})
	require.ErrorIs(t, err, games.ErrUpstream)
	assert.Contains(t, err.Error(), "API key not valid")

	o, _ = fakeGemini(t, http.StatusOK, map[string]any{"candidates": []any{}})
	_, err = o.Generate(context.Background(), quiz.Request{Count: 1})
	require.ErrorIs(t, err, games.ErrUpstream)
}

func TestSourceFallsBackWithoutKey(t *testing.T) {
	cfg := testConfig()
	assert.Nil(t, newGeminiOracle(cfg))

	cfg.geminiKey = "secret"
	cfg.geminiModel = ""
	o, ok := newGeminiOracle(cfg).(*geminiOracle)
	require.True(t, ok)
	assert.Equal(t, defaultGeminiModel, o.model)

	src := &quiz.Source{Oracle: nil}
	assert.Len(t, src.Questions(context.Background(), quiz.Request{Count: 3}), 3)
}
