// Package llm is a minimal client for an Anthropic-style messages API.
// The gateway sends one user-turn prompt and expects a single text block
// back.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mindstash/mindstash/internal/model"
)

const apiVersion = "2023-06-01"

// Client calls the messages endpoint of a chat-completion API.
type Client struct {
	http      *resty.Client
	model     string
	maxTokens int
}

// New builds a client. baseURL is the API root, e.g.
// "https://api.anthropic.com".
func New(baseURL, apiKey, model string, maxTokens int, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("x-api-key", apiKey).
			SetHeader("anthropic-version", apiVersion).
			SetHeader("Content-Type", "application/json"),
		model:     model,
		maxTokens: maxTokens,
	}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Error   *apiError      `json:"error,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Complete sends one user-turn prompt and returns the first text block.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	var out messagesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(messagesRequest{
			Model:     c.model,
			MaxTokens: c.maxTokens,
			Messages:  []message{{Role: "user", Content: prompt}},
		}).
		SetResult(&out).
		SetError(&out).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrAIUnavailable, err)
	}
	if resp.IsError() {
		if out.Error != nil {
			return "", fmt.Errorf("%w: messages API %d: %s", model.ErrAIUnavailable, resp.StatusCode(), out.Error.Message)
		}
		return "", fmt.Errorf("%w: messages API returned %d", model.ErrAIUnavailable, resp.StatusCode())
	}
	for _, block := range out.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("%w: no text content in response", model.ErrMalformedResponse)
}
