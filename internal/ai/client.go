package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/planmaster/planmaster/internal/apperrors"
	"github.com/sirupsen/logrus"
)

// TextGenerator abstracts the external text-generation capability.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type chatCompletionRequest struct {
	Model    string                  `json:"model"`
	Messages []chatCompletionMessage `json:"messages"`
}

type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatCompletionMessage `json:"message"`
	} `json:"choices"`
}

// ChatClient calls an OpenAI-compatible chat-completions endpoint.
type ChatClient struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewChatClient(endpoint, apiKey, model string, timeout time.Duration) *ChatClient {
	return &ChatClient{
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Generate sends the prompt and returns the raw completion text. One
// attempt only; callers see ErrGeneration on any transport, quota, or
// empty-response condition.
func (c *ChatClient) Generate(ctx context.Context, prompt string) (string, error) {
	requestData := chatCompletionRequest{
		Model: c.model,
		Messages: []chatCompletionMessage{
			{Role: "system", Content: "You are a goal-planning assistant. Respond with a single JSON object and nothing else."},
			{Role: "user", Content: prompt},
		},
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return "", fmt.Errorf("%w: failed to serialize request: %v", apperrors.ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", apperrors.ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request failed: %v", apperrors.ErrGeneration, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response body: %v", apperrors.ErrGeneration, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logrus.WithField("status", resp.StatusCode).Error("AI API returned non-success status")
		return "", fmt.Errorf("%w: API returned status %d: %s", apperrors.ErrGeneration, resp.StatusCode, string(body))
	}

	var completionResp chatCompletionResponse
	if err := json.Unmarshal(body, &completionResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode API response: %v", apperrors.ErrGeneration, err)
	}

	if len(completionResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no completion returned by the API", apperrors.ErrGeneration)
	}

	return completionResp.Choices[0].Message.Content, nil
}
