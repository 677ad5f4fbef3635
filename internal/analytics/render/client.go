// internal/analytics/render/client.go
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"freelancer-analytics/internal/common/logger"
)

// Client turns computed statistics into a natural-language answer through an
// OpenRouter-compatible chat completions endpoint.
type Client struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	return &Client{
		config: config,
		// Deadlines come from the context.
		client: &http.Client{},
		logger: log.With(map[string]interface{}{
			"component": "render",
			"model":     config.Model,
		}),
	}
}

func (c *Client) Render(ctx context.Context, query string, stats map[string]interface{}) (string, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(ChatRequest{
		Model: c.config.Model,
		Messages: []Message{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: BuildPrompt(query, stats)},
		},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMSynthesisFailed, err)
	}

	var payload []byte
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ErrLLMTimeout
			}
		}

		payload, lastErr = c.post(ctx, body)
		if lastErr == nil {
			break
		}

		c.logger.Warn("LLM request failed", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   lastErr.Error(),
		})
		if ctx.Err() != nil {
			return "", ErrLLMTimeout
		}
	}

	if lastErr != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMSynthesisFailed, lastErr)
	}

	answer, err := parseAnswer(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMSynthesisFailed, err)
	}

	c.logger.Info("LLM answer received", map[string]interface{}{"length": len(answer)})
	return answer, nil
}

func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return payload, nil
}

func parseAnswer(payload []byte) (string, error) {
	result, err := responseSchema.ValidateBytes(payload)
	if err != nil {
		return "", fmt.Errorf("decode error: %v", err)
	}
	if !result.Valid {
		return "", errors.New("unexpected response: " + result.Error())
	}

	var resp ChatResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return "", fmt.Errorf("decode error: %v", err)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// FailureText is shown to the user in place of an answer the model could not give.
func FailureText(err error) string {
	return fmt.Sprintf("Failed to get analysis: %v", err)
}
