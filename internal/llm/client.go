// Copyright 2025 Legal Assistant Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package llm wraps the OpenAI client behind the text-completion contract
// used by the chat and document analysis paths. Every upstream failure is
// classified so callers can treat it uniformly as "stage unavailable".
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"github.com/your-org/legal-assistant/internal/resilience"
	"go.uber.org/zap"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"
	// DefaultMaxTokens bounds completion length when the caller does not.
	DefaultMaxTokens = 1000
	// logPreviewLength bounds prompt previews in debug logs.
	logPreviewLength = 100
)

// Options configures a single completion request.
type Options struct {
	Temperature float32
	MaxTokens   int
}

// TokenUsage reports prompt and completion token consumption.
type TokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

// Completion is the result of a completion request.
type Completion struct {
	Text    string     `json:"text"`
	Usage   TokenUsage `json:"tokenUsage"`
	ModelID string     `json:"modelId"`
}

// Message is one turn of a chat exchange.
type Message struct {
	Role    string
	Content string
}

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client wraps the go-openai client for the assistant's completion needs.
type Client struct {
	api    *openai.Client
	model  string
	logger *zap.Logger
}

// NewClient creates a completion client. The API key is required; the model
// defaults to DefaultModel. An optional endpoint overrides the API base URL.
func NewClient(apiKey, model, endpoint string, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		cfg.BaseURL = endpoint
	}

	return &Client{
		api:    openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}, nil
}

// Complete sends a single-prompt completion request.
func (c *Client) Complete(ctx context.Context, prompt string, opts Options) (*Completion, error) {
	return c.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}}, opts)
}

// Chat sends a multi-turn completion request.
func (c *Client) Chat(ctx context.Context, messages []Message, opts Options) (*Completion, error) {
	if len(messages) == 0 {
		return nil, resilience.NewBadRequestError("no messages to complete", nil)
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	c.logger.Debug("Sending completion request",
		zap.String("model", c.model),
		zap.Int("message_count", len(messages)),
		zap.Int("max_tokens", opts.MaxTokens),
		zap.String("prompt_preview", preview(messages[len(messages)-1].Content)))

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		classified := classifyAPIError(err)
		c.logger.Warn("Completion request failed", zap.Error(classified))
		return nil, classified
	}

	if len(resp.Choices) == 0 {
		return nil, resilience.NewDependencyFailureError("no choices returned by completion service", nil)
	}

	c.logger.Debug("Completion request succeeded",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))

	return &Completion{
		Text: resp.Choices[0].Message.Content,
		Usage: TokenUsage{
			Prompt:     resp.Usage.PromptTokens,
			Completion: resp.Usage.CompletionTokens,
			Total:      resp.Usage.TotalTokens,
		},
		ModelID: resp.Model,
	}, nil
}

// Model returns the configured model id.
func (c *Client) Model() string {
	return c.model
}

// classifyAPIError maps OpenAI API errors onto the resilience taxonomy so
// downstream failure classification does not depend on provider error text.
func classifyAPIError(err error) error {
	if apiErr, ok := err.(*openai.APIError); ok {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return resilience.NewUnauthorizedError("completion service rejected credentials", err)
		case http.StatusTooManyRequests:
			return resilience.NewTooManyRequestsError("completion service rate limit exceeded", err)
		case http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return resilience.NewDependencyFailureError("completion service unavailable", err)
		}
		return resilience.NewInternalError(
			fmt.Sprintf("completion service error (status %d)", apiErr.HTTPStatusCode), err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return resilience.NewTimeoutError("completion request timed out", err)
	}
	return resilience.NewDependencyFailureError("completion request failed", err)
}

func preview(text string) string {
	if len(text) <= logPreviewLength {
		return text
	}
	return text[:logPreviewLength] + "..."
}
