/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/Seednode/partyhost/games"
	"github.com/Seednode/partyhost/games/quiz"
)

const defaultGeminiModel = "gemini-2.5-flash"

// geminiOracle generates quiz questions with the Gemini API, asking for a
// JSON reply.
type geminiOracle struct {
	models *genai.Models
	model  string
}

// newGeminiOracle returns nil when no API key is configured, which makes the
// question source go straight to the built-in set.
func newGeminiOracle(cfg *Config) quiz.Oracle {
	if cfg.geminiKey == "" {
		return nil
	}

	o, err := dialGemini(context.Background(), cfg.geminiKey, cfg.geminiModel, genai.HTTPOptions{})
	if err != nil {
		errorf("QUIZ: Gemini client unavailable, using built-in questions: %v", err)

		return nil
	}

	return o
}

func dialGemini(ctx context.Context, key, model string, opts genai.HTTPOptions) (*geminiOracle, error) {
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      key,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: opts,
	})
	if err != nil {
		return nil, err
	}

	return &geminiOracle{models: client.Models, model: model}, nil
}

func (o *geminiOracle) Generate(ctx context.Context, req quiz.Request) ([]byte, error) {
	resp, err := o.models.GenerateContent(ctx, o.model, genai.Text(quiz.Prompt(req)), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.7),
		TopP:             genai.Ptr[float32](0.9),
		MaxOutputTokens:  4096,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", games.ErrUpstream, err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("%w: empty reply", games.ErrUpstream)
	}

	return []byte(text), nil
}
