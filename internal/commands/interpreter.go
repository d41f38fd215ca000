// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/jeranaias/slushie-cfo/internal/events"
	"github.com/jeranaias/slushie-cfo/internal/ledger"
	"github.com/jeranaias/slushie-cfo/internal/logging"
	"github.com/jeranaias/slushie-cfo/internal/payments"
)

// FailureMarker starts every error response.
const FailureMarker = "❌"

// =============================================================================
// RESULT
// =============================================================================

// Kind classifies a command outcome.
type Kind int

const (
	KindOK             Kind = iota
	KindParseError          // A numeric argument did not parse or was out of range
	KindUnknownCommand      // No dispatch row matched
	KindInvalidState        // The feed was in the wrong state for the action
	KindEmptyInput          // Blank input
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindParseError:
		return "parse_error"
	case KindUnknownCommand:
		return "unknown_command"
	case KindInvalidState:
		return "invalid_state"
	case KindEmptyInput:
		return "empty_input"
	default:
		return "unknown"
	}
}

// IsError reports whether the kind is a failure.
func (k Kind) IsError() bool {
	return k != KindOK
}

// Result is the outcome of executing one line of input.
type Result struct {
	// Text is the response to show, markdown-flavored
	Text string

	// Kind classifies the outcome
	Kind Kind

	// Command is the matched row name, empty when nothing matched
	Command string

	// Mutated is true when the ledger changed
	Mutated bool
}

func okResult(text string) Result {
	return Result{Text: text, Kind: KindOK}
}

func parseError(text string) Result {
	return Result{Text: text, Kind: KindParseError}
}

func invalidState(text string) Result {
	return Result{Text: text, Kind: KindInvalidState}
}

// =============================================================================
// CONTEXT
// =============================================================================

// Context is passed to every handler.
type Context struct {
	Ctx      context.Context
	Ledger   *ledger.Ledger
	Feed     *payments.Feed
	Registry *Registry
	Input    string
	Now      func() time.Time
}

// =============================================================================
// INTERPRETER
// =============================================================================

// Interpreter executes command lines against a ledger.
type Interpreter struct {
	ledger    *ledger.Ledger
	feed      *payments.Feed
	registry  *Registry
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithFeed uses feed for /venmo commands instead of a stub-backed feed.
func WithFeed(feed *payments.Feed) Option {
	return func(in *Interpreter) { in.feed = feed }
}

// WithPublisher sends an event after every successful mutation.
func WithPublisher(p events.Publisher) Option {
	return func(in *Interpreter) { in.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(in *Interpreter) { in.logger = logger }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(in *Interpreter) { in.now = now }
}

// New creates an interpreter bound to l.
func New(l *ledger.Ledger, opts ...Option) *Interpreter {
	in := &Interpreter{ledger: l}
	for _, opt := range opts {
		opt(in)
	}
	if in.logger == nil {
		in.logger = logging.Discard()
	}
	if in.now == nil {
		in.now = time.Now
	}
	if in.registry == nil {
		in.registry = defaultRegistry()
	}
	if in.publisher == nil {
		in.publisher = events.Noop{}
	}
	if in.feed == nil {
		in.feed = payments.NewFeed(payments.NewStubProvider(in.now), l, in.logger)
	}
	return in
}

// Registry returns the dispatch table in use.
func (in *Interpreter) Registry() *Registry {
	return in.registry
}

// Ledger returns the ledger commands run against.
func (in *Interpreter) Ledger() *ledger.Ledger {
	return in.ledger
}

// Feed returns the payment feed /venmo commands drive.
func (in *Interpreter) Feed() *payments.Feed {
	return in.feed
}

// Process runs one line of input against l and returns the response text.
// It never fails; every problem is described in the returned text.
func Process(input string, l *ledger.Ledger) string {
	return New(l).Execute(context.Background(), input).Text
}

// Execute tokenizes input, dispatches it, and returns the formatted result.
func (in *Interpreter) Execute(ctx context.Context, input string) Result {
	echo := Normalize(input)
	tokens := Tokenize(input)
	if len(tokens) == 0 {
		res := Result{Text: emptyInputText, Kind: KindEmptyInput}
		in.logResult(res)
		return res
	}

	hctx := &Context{
		Ctx:      ctx,
		Ledger:   in.ledger,
		Feed:     in.feed,
		Registry: in.registry,
		Input:    echo,
		Now:      in.now,
	}

	cmd, raw, ok := in.registry.Match(tokens)
	if !ok {
		res := unknownCommand(echo)
		if fb := in.registry.fallback(tokens[0]); fb != nil {
			if fbRes, handled := fb(hctx, tokens); handled {
				res = fbRes
			}
		}
		in.logResult(res)
		return res
	}

	args, err := parseArgs(cmd, raw)
	if err != nil {
		in.logger.Debug("argument rejected", "error", err)
		res := Result{Text: cmd.parseFailure(), Kind: KindParseError, Command: cmd.Name}
		in.logResult(res)
		return res
	}

	res := cmd.Handler(hctx, args)
	res.Command = cmd.Name
	if cmd.Mutates && res.Kind == KindOK {
		res.Mutated = true
		in.Publish(ctx, cmd.Name, echo)
	}
	in.logResult(res)
	return res
}

// Publish sends a LedgerChanged event carrying the current totals. Execute
// calls it after every successful mutation; callers that change the ledger
// outside Execute, such as the payment auto-syncer, call it directly.
func (in *Interpreter) Publish(ctx context.Context, command, input string) {
	snap := in.ledger.Snapshot()
	event := events.NewLedgerChanged(command, input, in.now())
	event.NetProfit = snap.NetProfit
	event.TotalSales = snap.TotalSales
	event.DailyTotal = snap.Feed.DailyTotal
	if err := in.publisher.Publish(ctx, event); err != nil {
		in.logger.Warn("ledger event not published", "command", command, "error", err)
	}
}

func (in *Interpreter) logResult(res Result) {
	in.logger.Debug("command executed",
		"command", res.Command,
		"kind", res.Kind.String(),
		"mutated", res.Mutated,
	)
}
