package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/planmaster/planmaster/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatClientGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "user", req.Messages[1].Role)

		json.NewEncoder(w).Encode(chatCompletionResponse{
			Choices: []struct {
				Message chatCompletionMessage `json:"message"`
			}{
				{Message: chatCompletionMessage{Role: "assistant", Content: `{"roadmap": []}`}},
			},
		})
	}))
	defer server.Close()

	client := NewChatClient(server.URL, "test-key", "gpt-4o", 5*time.Second)
	raw, err := client.Generate(context.Background(), "plan my goal")
	require.NoError(t, err)
	assert.Equal(t, `{"roadmap": []}`, raw)
}

func TestChatClientGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewChatClient(server.URL, "test-key", "gpt-4o", 5*time.Second)
	_, err := client.Generate(context.Background(), "plan my goal")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrGeneration))
	assert.Contains(t, err.Error(), "429")
}

func TestChatClientGenerateEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := NewChatClient(server.URL, "test-key", "gpt-4o", 5*time.Second)
	_, err := client.Generate(context.Background(), "plan my goal")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrGeneration))
}

func TestChatClientGenerateTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewChatClient(server.URL, "test-key", "gpt-4o", time.Second)
	_, err := client.Generate(context.Background(), "plan my goal")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrGeneration))
}
