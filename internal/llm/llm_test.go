package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscore/internal/config"
	"github.com/sells-group/leadscore/internal/scoring"
	"github.com/sells-group/leadscore/pkg/groq"
)

func TestNewCompleter_MissingKeys(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LLMConfig
		want string
	}{
		{"groq without key", config.LLMConfig{Provider: "groq"}, "groq api key"},
		{"default provider without key", config.LLMConfig{}, "groq api key"},
		{"anthropic without key", config.LLMConfig{Provider: "anthropic"}, "anthropic api key"},
		{"unknown provider", config.LLMConfig{Provider: "openai"}, `unknown provider "openai"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCompleter(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewCompleter_Anthropic(t *testing.T) {
	completer, err := NewCompleter(config.LLMConfig{
		Provider:  "anthropic",
		Anthropic: config.AnthropicConfig{Key: "test-key", Model: "claude-haiku-4-5-20251001"},
	})
	require.NoError(t, err)
	assert.NotNil(t, completer)
}

func newGroqCompleter(t *testing.T, handler http.HandlerFunc) scoring.Completer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	completer, err := NewCompleter(config.LLMConfig{
		Provider: "groq",
		Groq:     config.GroqConfig{Key: "test-key", BaseURL: srv.URL},
	})
	require.NoError(t, err)
	return completer
}

func TestGroqCompleter_Complete(t *testing.T) {
	completer := newGroqCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		var req groq.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "classify this prospect", req.Messages[0].Content)
		require.NotNil(t, req.MaxTokens)
		assert.Equal(t, 150, *req.MaxTokens)
		require.NotNil(t, req.Temperature)
		assert.Equal(t, 0.1, *req.Temperature)

		json.NewEncoder(w).Encode(groq.ChatCompletionResponse{ //nolint:errcheck
			Choices: []groq.Choice{
				{Message: groq.Message{Role: "assistant", Content: "  HIGH - strong fit\n"}},
			},
		})
	})

	got, err := completer.Complete(context.Background(), "classify this prospect", scoring.CompleteOptions{
		MaxTokens:   150,
		Temperature: 0.1,
	})
	require.NoError(t, err)
	assert.Equal(t, "HIGH - strong fit", got)
}

func TestGroqCompleter_EmptyChoices(t *testing.T) {
	completer := newGroqCompleter(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(groq.ChatCompletionResponse{}) //nolint:errcheck
	})

	_, err := completer.Complete(context.Background(), "classify", scoring.CompleteOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty completion response")
}

func TestGroqCompleter_TransportError(t *testing.T) {
	completer := newGroqCompleter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := completer.Complete(context.Background(), "classify", scoring.CompleteOptions{})
	assert.Error(t, err)
}
