// Package llm is the completion client for the hosted text-generation
// service. It speaks the OpenAI-compatible chat completions wire format.
//
// The client never returns a Go error to its caller: upstream failures are
// absorbed into an LLMResult whose FinishReason is "error" and whose content
// explains the failure, so every consumer can treat a completion call as
// always producing text.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/posinsight/posinsight/pkg/models"
	"github.com/rs/zerolog/log"
)

// Config configures the completion client.
type Config struct {
	Endpoint    string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Client calls the completion service.
type Client struct {
	cfg    Config
	client *http.Client
}

// New creates a completion client. The underlying HTTP client carries no
// request timeout: a hung upstream call is bounded only by the caller's
// context or platform-level limits.
func New(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.openai.com/v1"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	return &Client{cfg: cfg, client: &http.Client{}}
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.cfg.Model }

type completionRequest struct {
	Model       string           `json:"model"`
	Messages    []models.Message `json:"messages"`
	MaxTokens   int              `json:"max_tokens"`
	Temperature float64          `json:"temperature"`
}

type completionResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete sends a system instruction, prior conversation, and a new user
// message to the completion service and returns the generated text with
// token usage. Failures come back as an error-finish result, never as an
// error value.
func (c *Client) Complete(ctx context.Context, system string, history []models.ChatMessage, userMessage string) models.LLMResult {
	messages := make([]models.Message, 0, len(history)+2)
	messages = append(messages, models.Message{Role: "system", Content: system})
	for _, msg := range history {
		messages = append(messages, models.Message{Role: string(msg.Role), Content: msg.Content})
	}
	messages = append(messages, models.Message{Role: "user", Content: userMessage})

	result, err := c.call(ctx, messages)
	if err != nil {
		log.Error().Err(err).Str("model", c.cfg.Model).Msg("Completion call failed")
		return models.LLMResult{
			Content:      fmt.Sprintf("Error: Unable to generate response. %v", err),
			Model:        c.cfg.Model,
			FinishReason: models.FinishError,
		}
	}
	return result
}

func (c *Client) call(ctx context.Context, messages []models.Message) (models.LLMResult, error) {
	body, err := json.Marshal(completionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return models.LLMResult{}, fmt.Errorf("marshal request: %w", err)
	}

	url := c.cfg.Endpoint + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return models.LLMResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return models.LLMResult{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return models.LLMResult{}, fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}

	var cr completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return models.LLMResult{}, fmt.Errorf("decode response: %w", err)
	}

	content := ""
	finish := "stop"
	if len(cr.Choices) > 0 {
		content = cr.Choices[0].Message.Content
		if cr.Choices[0].FinishReason != "" {
			finish = cr.Choices[0].FinishReason
		}
	}

	return models.LLMResult{
		Content:      content,
		Model:        c.cfg.Model,
		FinishReason: finish,
		Usage: models.TokenUsage{
			InputTokens:  cr.Usage.PromptTokens,
			OutputTokens: cr.Usage.CompletionTokens,
		},
	}, nil
}
