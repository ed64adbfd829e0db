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

// Package chat implements the chat-send path: persist the user message, call
// the completion service under bounded retries and an overall deadline, and
// surface a classified degraded message when every attempt fails.
package chat

import (
	"context"

	"github.com/your-org/legal-assistant/internal/llm"
	"github.com/your-org/legal-assistant/internal/resilience"
	"github.com/your-org/legal-assistant/internal/store"
	"go.uber.org/zap"
)

// State is the observable state of one send operation.
type State string

const (
	// StateIdle is the state before dispatch.
	StateIdle State = "idle"
	// StateSending is the state while an attempt is in flight.
	StateSending State = "sending"
	// StateRetrying is the transient state between failed attempts.
	StateRetrying State = "retrying"
	// StateSuccess is the terminal success state.
	StateSuccess State = "success"
	// StateTimedOut is the terminal state when the overall deadline expired.
	StateTimedOut State = "timed_out"
	// StateFailed is the terminal state after exhausting retries.
	StateFailed State = "failed"
)

const (
	// maxHistoryMessages bounds how much conversation history feeds the
	// completion prompt.
	maxHistoryMessages = 20
	// replyMaxTokens bounds the assistant reply.
	replyMaxTokens = 1200
	// replyTemperature keeps replies grounded.
	replyTemperature = 0.4
)

// systemPrompt frames the assistant for Brazilian legal questions.
const systemPrompt = "Você é um assistente jurídico especializado em direito brasileiro. " +
	"Responda de forma clara e objetiva, cite os dispositivos legais pertinentes " +
	"e avise quando uma questão exigir a análise de um advogado."

// CompletionService is the slice of the LLM client the chat path needs.
type CompletionService interface {
	Chat(ctx context.Context, messages []llm.Message, opts llm.Options) (*llm.Completion, error)
}

// ConversationStore persists conversation messages.
type ConversationStore interface {
	AppendMessage(ctx context.Context, conversationID, role, content string) error
	LoadMessages(ctx context.Context, conversationID string) ([]store.MessageRecord, error)
}

// Reply is the outcome of a send operation. When Degraded is set, Content
// carries a classified user-facing message instead of an assistant reply.
type Reply struct {
	Content  string `json:"content"`
	Model    string `json:"model,omitempty"`
	State    State  `json:"state"`
	Degraded bool   `json:"degraded,omitempty"`
	Attempts int    `json:"attempts"`
}

// Orchestrator drives the send state machine.
type Orchestrator struct {
	completion CompletionService
	store      ConversationStore
	retry      resilience.RetryConfig
	logger     *zap.Logger

	// OnStateChange, when set, observes state transitions. The attempt
	// number accompanies StateRetrying.
	OnStateChange func(state State, attempt int)
}

// NewOrchestrator creates a chat orchestrator with the given retry policy.
func NewOrchestrator(completion CompletionService, conversations ConversationStore, retry resilience.RetryConfig, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		completion: completion,
		store:      conversations,
		retry:      retry,
		logger:     logger,
	}
}

// Send persists the user message, dispatches the completion call under the
// retry policy and persists the assistant reply on success. After exhausting
// retries or the overall deadline it returns a degraded reply; the already
// persisted user message is never retracted.
func (o *Orchestrator) Send(ctx context.Context, conversationID, message string) (*Reply, error) {
	if message == "" {
		return nil, resilience.NewBadRequestError("message is required", nil)
	}

	// The user message must be durable before dispatch.
	if err := o.store.AppendMessage(ctx, conversationID, llm.RoleUser, message); err != nil {
		return nil, resilience.NewInternalError("failed to persist user message", err)
	}

	history, err := o.store.LoadMessages(ctx, conversationID)
	if err != nil {
		o.logger.Warn("Failed to load conversation history, sending without context",
			zap.String("conversation_id", conversationID),
			zap.Error(err))
		history = nil
	}

	messages := buildMessages(history, message)

	o.transition(StateSending, 0)

	attempts := 0
	var completion *llm.Completion

	retryCfg := o.retry
	retryCfg.OnRetry = func(attempt int) {
		o.transition(StateRetrying, attempt)
	}

	err = resilience.WithLinearRetry(ctx, o.logger, retryCfg, func(attemptCtx context.Context) error {
		attempts++
		result, callErr := o.completion.Chat(attemptCtx, messages, llm.Options{
			Temperature: replyTemperature,
			MaxTokens:   replyMaxTokens,
		})
		if callErr != nil {
			return callErr
		}
		completion = result
		return nil
	})

	if err != nil {
		kind := resilience.Classify(err)
		state := StateFailed
		if kind == resilience.FailureTimeout {
			state = StateTimedOut
		}
		o.transition(state, attempts)

		o.logger.Error("Chat send exhausted retries",
			zap.String("conversation_id", conversationID),
			zap.Int("attempts", attempts),
			zap.String("failure_kind", string(kind)),
			zap.Error(err))

		return &Reply{
			Content:  resilience.DegradedMessage(kind),
			State:    state,
			Degraded: true,
			Attempts: attempts,
		}, nil
	}

	// Persist the reply, best effort: the user already has the content.
	if err := o.store.AppendMessage(ctx, conversationID, llm.RoleAssistant, completion.Text); err != nil {
		o.logger.Warn("Failed to persist assistant reply",
			zap.String("conversation_id", conversationID),
			zap.Error(err))
	}

	o.transition(StateSuccess, attempts)

	return &Reply{
		Content:  completion.Text,
		Model:    completion.ModelID,
		State:    StateSuccess,
		Attempts: attempts,
	}, nil
}

func (o *Orchestrator) transition(state State, attempt int) {
	if o.OnStateChange != nil {
		o.OnStateChange(state, attempt)
	}
}

// buildMessages assembles the completion request from recent history. The
// user message was already persisted, so it arrives as the last history
// entry; when history is unavailable it is appended directly.
func buildMessages(history []store.MessageRecord, latest string) []llm.Message {
	messages := []llm.Message{{Role: llm.RoleSystem, Content: systemPrompt}}

	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}
	for _, record := range history {
		messages = append(messages, llm.Message{Role: record.Role, Content: record.Content})
	}

	if len(history) == 0 {
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: latest})
	}

	return messages
}
