package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ChatConfig holds API settings for one chat-completion backend.
type ChatConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	// MaxRetries is the number of attempts after the first; RetryBackoff is
	// the initial delay, doubled per attempt.
	MaxRetries   int
	RetryBackoff time.Duration
}

type OpenAICompatibleClient struct {
	httpClient *http.Client
}

func NewOpenAICompatibleClient() *OpenAICompatibleClient {
	return &OpenAICompatibleClient{
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// Complete sends the messages to the backend and returns the reply text.
// The backend is stateless per call; all conversational state travels in
// messages. Retryable failures are retried with backoff up to MaxRetries;
// terminal failures return immediately as *GenerationError.
func (c *OpenAICompatibleClient) Complete(ctx context.Context, cfg ChatConfig, messages []ChatMessage) (string, error) {
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", &GenerationError{Kind: KindRetryable, Message: ctx.Err().Error()}
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		reply, err := c.completeOnce(ctx, cfg, messages)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		genErr, ok := err.(*GenerationError)
		if !ok || !genErr.Retryable() {
			return "", err
		}
	}
	return "", lastErr
}

func (c *OpenAICompatibleClient) completeOnce(ctx context.Context, cfg ChatConfig, messages []ChatMessage) (string, error) {
	reqBody := map[string]interface{}{
		"model":    cfg.Model,
		"messages": messages,
		"stream":   false,
	}

	raw, status, err := c.postJSON(ctx, cfg.BaseURL, "/chat/completions", cfg.APIKey, reqBody)
	if err != nil {
		// Network-level failures (dial, timeout) are retryable.
		return "", &GenerationError{Kind: KindRetryable, Message: err.Error()}
	}
	if status >= 300 {
		return "", classifyStatus(status, string(raw))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &GenerationError{Kind: KindTerminal, Message: "parse llm json failed: " + err.Error()}
	}
	if len(parsed.Choices) == 0 {
		return "", &GenerationError{Kind: KindTerminal, Message: "empty llm choices"}
	}
	return parsed.Choices[0].Message.Content, nil
}

func (c *OpenAICompatibleClient) postJSON(ctx context.Context, baseURL, path, apiKey string, body any) ([]byte, int, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request failed: %w", err)
	}

	url := strings.TrimRight(baseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response failed: %w", err)
	}
	return raw, resp.StatusCode, nil
}
