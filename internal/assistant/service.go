// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"context"
	"errors"
	"iter"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/slushie-cfo/internal/ollama"
)

// Message roles recorded in the conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the conversation.
type Message struct {
	Role    string
	Content string
}

// CompletionService streams a reply to a conversation. Implementations yield
// text fragments in order and report a failure as the final element.
type CompletionService interface {
	Stream(ctx context.Context, systemPrompt string, history []Message) iter.Seq2[string, error]
}

// ErrNoService is reported when a session has no completion service.
var ErrNoService = errors.New("no completion service configured")

// =============================================================================
// OLLAMA
// =============================================================================

// OllamaService is a CompletionService backed by a local Ollama server.
type OllamaService struct {
	client *ollama.Client
	model  string
}

// NewOllamaService wraps client. An empty model uses the client's default.
func NewOllamaService(client *ollama.Client, model string) *OllamaService {
	return &OllamaService{client: client, model: model}
}

// Stream implements CompletionService.
func (o *OllamaService) Stream(ctx context.Context, systemPrompt string, history []Message) iter.Seq2[string, error] {
	messages := make([]ollama.Message, 0, len(history)+1)
	if systemPrompt != "" {
		messages = append(messages, ollama.NewSystemMessage(systemPrompt))
	}
	for _, m := range history {
		messages = append(messages, ollama.Message{Role: m.Role, Content: m.Content})
	}
	return o.client.Stream(ctx, o.model, messages)
}

// Model returns the model name requests are sent with.
func (o *OllamaService) Model() string {
	if o.model == "" {
		return o.client.Model()
	}
	return o.model
}

// =============================================================================
// RATE LIMITING
// =============================================================================

// NewLimiter allows perMinute requests per minute with a matching burst.
// Zero or negative disables limiting.
func NewLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}
