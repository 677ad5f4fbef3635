// internal/analytics/render/models.go
package render

import (
	"errors"
	"time"

	"freelancer-analytics/internal/common/config"
	"freelancer-analytics/internal/common/validation"
)

var (
	ErrLLMTimeout         = errors.New("LLM_TIMEOUT")
	ErrLLMSynthesisFailed = errors.New("LLM_SYNTHESIS_FAILED")
)

const SystemPrompt = "You are a data analyst. Answer precisely and briefly."

type Config struct {
	APIURL      string
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxRetries  int
	MaxTokens   int
	Temperature float64
}

func ConfigFrom(cfg config.LLMConfig) *Config {
	return &Config{
		APIURL:      cfg.APIURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Timeout:     config.GetDuration(cfg.Timeout),
		MaxRetries:  cfg.MaxRetries,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type ChatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

var responseSchema = validation.MustCompile(`{
	"type": "object",
	"properties": {
		"choices": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"properties": {
					"message": {
						"type": "object",
						"properties": {"content": {"type": "string"}},
						"required": ["content"]
					}
				},
				"required": ["message"]
			}
		}
	},
	"required": ["choices"]
}`)
