package textgen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Gemini generates text through the Gemini API. When a model is rate
// limited or missing, the fallback models are tried in order.
type Gemini struct {
	client    *genai.Client
	fallbacks []string
}

// NewGemini creates a Gemini generator for apiKey.
func NewGemini(ctx context.Context, apiKey string, fallbacks []string, opts ...func(*genai.ClientConfig)) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, fallbacks: fallbacks}, nil
}

var _ Generator = (*Gemini)(nil)

func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	contents := make([]*genai.Content, 0, len(req.Turns))
	for _, turn := range req.Turns {
		contents = append(contents, &genai.Content{
			Role:  string(turn.Role),
			Parts: []*genai.Part{{Text: turn.Text}},
		})
	}

	config := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemInstruction}}}
	}
	if len(req.Schema) > 0 {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = objectSchema(req.Schema)
	}

	var lastErr error
	for _, model := range g.models(req.Model) {
		result, err := g.client.Models.GenerateContent(ctx, model, contents, config)
		if err != nil {
			if retryable(err) {
				lastErr = err
				continue
			}
			return "", err
		}
		return responseText(result), nil
	}
	return "", fmt.Errorf("all models failed: %w", lastErr)
}

func (g *Gemini) models(primary string) []string {
	out := []string{primary}
	for _, m := range g.fallbacks {
		if m != primary {
			out = append(out, m)
		}
	}
	return out
}

func objectSchema(fields []Field) *genai.Schema {
	s := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(fields)),
	}
	for _, f := range fields {
		t := genai.TypeString
		if f.Type == FieldNumber {
			t = genai.TypeNumber
		}
		s.Properties[f.Name] = &genai.Schema{Type: t}
		s.Required = append(s.Required, f.Name)
	}
	return s
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

func retryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && (apiErr.Code == 429 || apiErr.Code == 404) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "exhausted") ||
		strings.Contains(msg, "404") ||
		strings.Contains(msg, "not found")
}
