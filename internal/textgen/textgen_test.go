package textgen

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestCleanJSON(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `{"a":1}`, CleanJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, CleanJSON("```{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, CleanJSON(`  {"a":1} `))
}

func TestUnavailable(t *testing.T) {
	t.Parallel()
	_, err := Unavailable{}.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNewGemini_RequiresKey(t *testing.T) {
	t.Parallel()
	_, err := NewGemini(context.Background(), "", nil)
	assert.Error(t, err)
}

// fakeGemini serves generateContent for the models in replies. Models not
// listed answer 429.
func fakeGemini(t *testing.T, replies map[string]string) (*httptest.Server, *[]string, *sync.Mutex) {
	t.Helper()
	var mu sync.Mutex
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, r.URL.Path+" "+string(body))
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		for model, text := range replies {
			if strings.Contains(r.URL.Path, "/models/"+model+":") {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"candidates": []any{map[string]any{
						"content": map[string]any{
							"role":  "model",
							"parts": []any{map[string]any{"text": text}},
						},
					}},
				})
				return
			}
		}
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exhausted","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls, &mu
}

func withBaseURL(url string) func(*genai.ClientConfig) {
	return func(cfg *genai.ClientConfig) {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: url}
	}
}

func TestGemini_GenerateWithFallback(t *testing.T) {
	srv, calls, mu := fakeGemini(t, map[string]string{"backup-model": "The stars align."})

	g, err := NewGemini(context.Background(), "test-key", []string{"backup-model"}, withBaseURL(srv.URL))
	require.NoError(t, err)

	text, err := g.Generate(context.Background(), Request{
		Model:             "busy-model",
		SystemInstruction: "You are a mystical fortune teller.",
		Turns:             Prompt("Will it rain?"),
	})
	require.NoError(t, err)
	assert.Equal(t, "The stars align.", text)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, *calls, 2)
	assert.Contains(t, (*calls)[0], "busy-model")
	assert.Contains(t, (*calls)[1], "Will it rain?")
	assert.Contains(t, (*calls)[1], "mystical fortune teller")
}

func TestGemini_AllModelsFail(t *testing.T) {
	srv, _, _ := fakeGemini(t, nil)

	g, err := NewGemini(context.Background(), "test-key", []string{"other"}, withBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), Request{Model: "busy-model", Turns: Prompt("hi")})
	assert.Error(t, err)
}

func TestGemini_StructuredRequest(t *testing.T) {
	srv, calls, mu := fakeGemini(t, map[string]string{"flash": `{"percentage":88,"reason":"Fire meets air."}`})

	g, err := NewGemini(context.Background(), "test-key", nil, withBaseURL(srv.URL))
	require.NoError(t, err)

	text, err := g.Generate(context.Background(), Request{
		Model:  "flash",
		Turns:  Prompt("Predict love compatibility between Leo and Libra."),
		Schema: []Field{{Name: "percentage", Type: FieldNumber}, {Name: "reason", Type: FieldString}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"percentage":88,"reason":"Fire meets air."}`, text)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, *calls, 1)
	assert.Contains(t, (*calls)[0], "application/json")
}

func TestObjectSchema(t *testing.T) {
	t.Parallel()
	s := objectSchema([]Field{{Name: "percentage", Type: FieldNumber}, {Name: "reason", Type: FieldString}})
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, genai.TypeNumber, s.Properties["percentage"].Type)
	assert.Equal(t, genai.TypeString, s.Properties["reason"].Type)
	assert.Equal(t, []string{"percentage", "reason"}, s.Required)
}
