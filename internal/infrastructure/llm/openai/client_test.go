package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/sheetkeeper/internal/infrastructure/config"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LLMConfig
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config",
			cfg: config.LLMConfig{
				APIKey: "test-key",
			},
			wantErr: false,
		},
		{
			name: "valid config with model",
			cfg: config.LLMConfig{
				APIKey: "test-key",
				Model:  "gpt-4",
			},
			wantErr: false,
		},
		{
			name:    "missing API key",
			cfg:     config.LLMConfig{},
			wantErr: true,
			errMsg:  "API key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, client)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, client)
			}
		})
	}
}

// newTestServer answers every chat completion with content and records the
// last request it saw.
func newTestServer(t *testing.T, content string, last *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if last != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(last))
		}
		w.Header().Set("Content-Type", "application/json")
		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
			},
		}
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClient_GenerateStats(t *testing.T) {
	var req openai.ChatCompletionRequest
	server := newTestServer(t, "```json\n{\"pv\": 45, \"ca\": 17, \"ataque\": \"machado +7\", \"velocidade\": 9.5}\n```", &req)

	client, err := NewClient(config.LLMConfig{APIKey: "test-key", Model: "test-model", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	stats, err := client.GenerateStats(context.Background(), "Capitão Orc", "líder brutal")
	require.NoError(t, err)

	assert.Equal(t, 45, stats["pv"])
	assert.Equal(t, 17, stats["ca"])
	assert.Equal(t, "machado +7", stats["ataque"])
	assert.InDelta(t, 9.5, stats["velocidade"], 0.0001)

	assert.Equal(t, "test-model", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "Capitão Orc - líder brutal", req.Messages[1].Content)
}

func TestClient_GenerateStats_InvalidJSON(t *testing.T) {
	server := newTestServer(t, "I cannot do that", nil)

	client, err := NewClient(config.LLMConfig{APIKey: "test-key", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	_, err = client.GenerateStats(context.Background(), "Orc", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing stats JSON")
}

func TestClient_GenerateStats_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(config.LLMConfig{APIKey: "test-key", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	_, err = client.GenerateStats(context.Background(), "Orc", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "calling OpenAI")
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain JSON",
			input:    `{"pv": 7}`,
			expected: `{"pv": 7}`,
		},
		{
			name:     "JSON with json code block",
			input:    "```json\n{\"pv\": 7}\n```",
			expected: `{"pv": 7}`,
		},
		{
			name:     "JSON with plain code block",
			input:    "```\n{\"pv\": 7}\n```",
			expected: `{"pv": 7}`,
		},
		{
			name:     "JSON with whitespace",
			input:    "  \n{\"pv\": 7}\n  ",
			expected: `{"pv": 7}`,
		},
		{
			name:     "empty object",
			input:    "{}",
			expected: "{}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cleanJSONResponse(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNormalizeStat(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected any
	}{
		{name: "whole number", input: float64(42), expected: 42},
		{name: "negative whole number", input: float64(-3), expected: -3},
		{name: "fraction", input: 3.14, expected: 3.14},
		{name: "string", input: "adaga", expected: "adaga"},
		{name: "bool", input: true, expected: true},
		{name: "nil", input: nil, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeStat(tt.input))
		})
	}
}
