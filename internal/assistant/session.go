// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/jeranaias/slushie-cfo/internal/commands"
	"github.com/jeranaias/slushie-cfo/internal/logging"
)

// connectivityText prefixes every completion failure shown to the user.
const connectivityText = "I'm having trouble connecting right now. Please try again in a moment."

// ConnectivityMessage renders a completion failure for the user.
func ConnectivityMessage(err error) string {
	return fmt.Sprintf("%s (Error: %v)", connectivityText, err)
}

// =============================================================================
// SESSION
// =============================================================================

// Session is one chat conversation. Lines beginning with "/" go to the
// command interpreter; anything else is sent to the completion service.
// Both kinds of exchange are kept in the history the service sees.
//
// Session is safe for concurrent use, though turns are expected one at a time.
type Session struct {
	mu      sync.Mutex
	interp  *commands.Interpreter
	service CompletionService
	limiter *rate.Limiter
	logger  *slog.Logger
	profile Profile
	history []Message
}

// Option configures a Session.
type Option func(*Session)

// WithProfile sets the starting context, tone and background.
func WithProfile(p Profile) Option {
	return func(s *Session) { s.profile = p }
}

// WithLimiter throttles requests to the completion service.
func WithLimiter(l *rate.Limiter) Option {
	return func(s *Session) { s.limiter = l }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// NewSession creates a session. service may be nil, in which case free text
// is answered with the connectivity message.
func NewSession(interp *commands.Interpreter, service CompletionService, opts ...Option) *Session {
	s := &Session{
		interp:  interp,
		service: service,
		profile: DefaultProfile(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.limiter == nil {
		s.limiter = NewLimiter(0)
	}
	return s
}

// Turn answers one line of input, yielding reply fragments. A command reply
// is a single fragment.
func (s *Session) Turn(ctx context.Context, input string) iter.Seq[string] {
	if commands.IsCommand(input) {
		return func(yield func(string) bool) {
			yield(s.RunCommand(ctx, input).Text)
		}
	}
	return s.Ask(ctx, input)
}

// RunCommand executes a command line and records the exchange.
func (s *Session) RunCommand(ctx context.Context, input string) commands.Result {
	res := s.interp.Execute(ctx, input)

	s.mu.Lock()
	s.history = append(s.history,
		Message{Role: RoleUser, Content: strings.TrimSpace(input)},
		Message{Role: RoleAssistant, Content: res.Text},
	)
	s.mu.Unlock()
	return res
}

// Ask sends prompt to the completion service and streams the reply. A
// failure is yielded as the connectivity message. Whatever was yielded is
// recorded as the assistant turn, including a partial reply when the
// consumer stops early.
func (s *Session) Ask(ctx context.Context, prompt string) iter.Seq[string] {
	return func(yield func(string) bool) {
		s.mu.Lock()
		s.history = append(s.history, Message{Role: RoleUser, Content: prompt})
		history := slices.Clone(s.history)
		system := s.profile.SystemPrompt()
		s.mu.Unlock()

		var reply strings.Builder
		defer func() {
			s.mu.Lock()
			s.history = append(s.history, Message{Role: RoleAssistant, Content: reply.String()})
			s.mu.Unlock()
		}()

		fail := func(err error) {
			s.logger.Warn("completion failed", "error", err)
			msg := ConnectivityMessage(err)
			if reply.Len() > 0 {
				msg = "\n\n" + msg
			}
			reply.WriteString(msg)
			yield(msg)
		}

		if s.service == nil {
			fail(ErrNoService)
			return
		}
		if err := s.limiter.Wait(ctx); err != nil {
			fail(err)
			return
		}

		for fragment, err := range s.service.Stream(ctx, system, history) {
			if err != nil {
				fail(err)
				return
			}
			reply.WriteString(fragment)
			if !yield(fragment) {
				return
			}
		}
		s.logger.Debug("completion finished", "chars", reply.Len())
	}
}

// =============================================================================
// PROFILE AND HISTORY
// =============================================================================

// Profile returns the current profile.
func (s *Session) Profile() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// SetContext switches the business context by name or unique prefix.
func (s *Session) SetContext(name string) (string, error) {
	c, err := Resolve(name, Contexts)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.profile.Context = c
	s.mu.Unlock()
	return c, nil
}

// SetTone switches the response tone by name or unique prefix.
func (s *Session) SetTone(name string) (string, error) {
	t, err := Resolve(name, Tones)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.profile.Tone = t
	s.mu.Unlock()
	return t, nil
}

// SetBackground replaces the business background text.
func (s *Session) SetBackground(text string) {
	s.mu.Lock()
	s.profile.Background = text
	s.mu.Unlock()
}

// History returns a copy of the conversation so far.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}

// ClearHistory forgets the conversation. The ledger is untouched.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
}

// Interpreter returns the command interpreter behind the session.
func (s *Session) Interpreter() *commands.Interpreter {
	return s.interp
}
