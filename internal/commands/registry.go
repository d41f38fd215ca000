// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command interpreter.
package commands

import (
	"strings"
	"sync"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command is one row of the dispatch table: a keyword, the tokens that must
// follow it, and the handler to run when they do.
type Command struct {
	// Name identifies the row (e.g., "add_net_profit")
	Name string

	// Keyword is the leading token (e.g., "/add"), matched case-insensitively
	Keyword string

	// Tail are the tokens after the keyword, in order
	Tail []Token

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/add <amount> to net profit")
	Usage string

	// InvalidText is the failure text when an argument does not parse.
	// The usage string is appended to it.
	InvalidText string

	// Mutates marks rows that change the ledger on success
	Mutates bool

	// Handler executes the command
	Handler Handler

	// Hidden commands don't appear in help
	Hidden bool

	// Category for grouping in help display
	Category string
}

// Handler runs a matched command with its parsed arguments.
type Handler func(ctx *Context, args Args) Result

// FallbackHandler runs when a keyword is recognised but no row for it
// matched. It returns false to fall through to "unknown command".
type FallbackHandler func(ctx *Context, tokens []string) (Result, bool)

// ArgType is the kind of token a Command expects at a position.
type ArgType int

const (
	ArgLiteral ArgType = iota // Fixed word
	ArgAmount                 // Signed decimal amount
	ArgUnits                  // Whole number
	ArgWords                  // Remaining tokens joined by a space; must be last
)

// Token is one position in a command's tail.
type Token struct {
	Type ArgType

	// Literal is the word an ArgLiteral token must equal
	Literal string

	// Fold makes the literal comparison case-insensitive
	Fold bool

	// Name labels argument tokens in usage strings and errors
	Name string
}

func lit(word string) Token     { return Token{Type: ArgLiteral, Literal: word} }
func litFold(word string) Token { return Token{Type: ArgLiteral, Literal: word, Fold: true} }
func amount(name string) Token  { return Token{Type: ArgAmount, Name: name} }
func units(name string) Token   { return Token{Type: ArgUnits, Name: name} }
func words(name string) Token   { return Token{Type: ArgWords, Name: name} }

func (t Token) matchesLiteral(s string) bool {
	if t.Fold {
		return strings.EqualFold(t.Literal, s)
	}
	return t.Literal == s
}

// match checks the tokens after the keyword against the tail and returns the
// raw argument strings. Fixed-arity rows require an exact token count.
func (c *Command) match(rest []string) ([]string, bool) {
	var args []string
	pos := 0
	for _, tok := range c.Tail {
		if pos >= len(rest) {
			return nil, false
		}
		switch tok.Type {
		case ArgWords:
			return append(args, strings.Join(rest[pos:], " ")), true
		case ArgLiteral:
			if !tok.matchesLiteral(rest[pos]) {
				return nil, false
			}
		default:
			args = append(args, rest[pos])
		}
		pos++
	}
	if pos != len(rest) {
		return nil, false
	}
	return args, true
}

// argTokens returns the non-literal tokens of the tail in order.
func (c *Command) argTokens() []Token {
	var out []Token
	for _, tok := range c.Tail {
		if tok.Type != ArgLiteral {
			out = append(out, tok)
		}
	}
	return out
}

// parseFailure is the ParseError text for this command.
func (c *Command) parseFailure() string {
	text := c.InvalidText
	if text == "" {
		text = FailureMarker + " Invalid amount. Please enter a valid number."
	}
	return text + " Use: `" + c.Usage + "`"
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds the dispatch table in priority order.
type Registry struct {
	commands  []*Command
	byName    map[string]*Command
	fallbacks map[string]FallbackHandler
}

// NewRegistry creates a registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		byName:    make(map[string]*Command),
		fallbacks: make(map[string]FallbackHandler),
	}
	r.registerBuiltins()
	return r
}

// defaultRegistry is shared by interpreters that don't supply their own.
// It is never mutated after construction.
var defaultRegistry = sync.OnceValue(NewRegistry)

// Register appends a command. Rows are tried in registration order.
func (r *Registry) Register(cmd *Command) {
	if existing, ok := r.byName[cmd.Name]; ok {
		for i, c := range r.commands {
			if c == existing {
				r.commands[i] = cmd
			}
		}
	} else {
		r.commands = append(r.commands, cmd)
	}
	r.byName[cmd.Name] = cmd
}

// RegisterFallback sets the handler used when keyword matches but no row does.
func (r *Registry) RegisterFallback(keyword string, fn FallbackHandler) {
	r.fallbacks[strings.ToLower(keyword)] = fn
}

// Get retrieves a command by name.
func (r *Registry) Get(name string) *Command {
	return r.byName[name]
}

// All returns all registered commands in priority order.
func (r *Registry) All() []*Command {
	out := make([]*Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// Keywords returns each distinct leading keyword once, in priority order.
func (r *Registry) Keywords() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range r.commands {
		if c.Hidden || seen[c.Keyword] {
			continue
		}
		seen[c.Keyword] = true
		out = append(out, c.Keyword)
	}
	return out
}

// ByCategory returns visible commands grouped by category, each group in
// priority order.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.commands {
		if cmd.Hidden {
			continue
		}
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// Match returns the first command whose keyword and tail fit tokens, along
// with the raw argument strings.
func (r *Registry) Match(tokens []string) (*Command, []string, bool) {
	if len(tokens) == 0 {
		return nil, nil, false
	}
	for _, cmd := range r.commands {
		if !strings.EqualFold(tokens[0], cmd.Keyword) {
			continue
		}
		if args, ok := cmd.match(tokens[1:]); ok {
			return cmd, args, true
		}
	}
	return nil, nil, false
}

func (r *Registry) fallback(keyword string) FallbackHandler {
	return r.fallbacks[strings.ToLower(keyword)]
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

// categoryOrder fixes the order categories appear in help.
var categoryOrder = []string{"Business Metrics", "Notes", "Calculators", "Data Management", "Venmo", "Help"}

const invalidNumbers = FailureMarker + " Invalid numbers."

func (r *Registry) registerBuiltins() {
	// Help
	r.Register(&Command{
		Name:        "help",
		Keyword:     "/help",
		Description: "Show all commands",
		Usage:       "/help",
		Category:    "Help",
		Handler:     handleHelp,
	})
	r.Register(&Command{
		Name:        "commands",
		Keyword:     "/commands",
		Description: "Show a short command list",
		Usage:       "/commands",
		Category:    "Help",
		Handler:     handleCommands,
	})

	// Business metrics
	r.Register(&Command{
		Name:        "net_profits",
		Keyword:     "/net",
		Tail:        []Token{lit("profits")},
		Description: "Show current net profits",
		Usage:       "/net profits",
		Category:    "Business Metrics",
		Handler:     handleNetProfits,
	})
	r.Register(&Command{
		Name:        "total_sales",
		Keyword:     "/total",
		Tail:        []Token{lit("sales")},
		Description: "Show total units sold",
		Usage:       "/total sales",
		Category:    "Business Metrics",
		Handler:     handleTotalSales,
	})
	r.Register(&Command{
		Name:        "best_day",
		Keyword:     "/best",
		Tail:        []Token{lit("day")},
		Description: "Show the best performing day",
		Usage:       "/best day",
		Category:    "Business Metrics",
		Handler:     handleBestDay,
	})
	r.Register(&Command{
		Name:        "status",
		Keyword:     "/status",
		Description: "Show a snapshot of all metrics",
		Usage:       "/status",
		Category:    "Business Metrics",
		Handler:     handleStatus,
	})

	// The note row comes first so "/add note to sales" is a note.
	r.Register(&Command{
		Name:        "add_note",
		Keyword:     "/add",
		Tail:        []Token{lit("note"), words("text")},
		Description: "Save a note",
		Usage:       "/add note <text>",
		Mutates:     true,
		Category:    "Notes",
		Handler:     handleAddNote,
	})
	r.Register(&Command{
		Name:        "add_net_profit",
		Keyword:     "/add",
		Tail:        []Token{amount("amount"), lit("to"), lit("net"), lit("profit")},
		Description: "Add to net profits (negative subtracts)",
		Usage:       "/add <amount> to net profit",
		Mutates:     true,
		Category:    "Business Metrics",
		Handler:     handleAddNetProfit,
	})
	r.Register(&Command{
		Name:        "add_sales",
		Keyword:     "/add",
		Tail:        []Token{units("units"), lit("to"), lit("sales")},
		Description: "Add units to total sales",
		Usage:       "/add <units> to sales",
		Mutates:     true,
		Category:    "Business Metrics",
		Handler:     handleAddSales,
	})
	r.Register(&Command{
		Name:        "set_net_profit",
		Keyword:     "/set",
		Tail:        []Token{lit("net"), lit("profit"), amount("amount")},
		Description: "Set net profits",
		Usage:       "/set net profit <amount>",
		Mutates:     true,
		Category:    "Business Metrics",
		Handler:     handleSetNetProfit,
	})
	r.Register(&Command{
		Name:        "set_total_sales",
		Keyword:     "/set",
		Tail:        []Token{lit("total"), lit("sales"), units("units")},
		Description: "Set total units sold",
		Usage:       "/set total sales <units>",
		Mutates:     true,
		Category:    "Business Metrics",
		Handler:     handleSetTotalSales,
	})
	r.Register(&Command{
		Name:        "set_best_day",
		Keyword:     "/set",
		Tail:        []Token{lit("best"), lit("day"), words("day")},
		Description: "Set the best performing day",
		Usage:       "/set best day <day>",
		Mutates:     true,
		Category:    "Business Metrics",
		Handler:     handleSetBestDay,
	})

	// Notes
	r.Register(&Command{
		Name:        "notes",
		Keyword:     "/notes",
		Description: "List saved notes",
		Usage:       "/notes",
		Category:    "Notes",
		Handler:     handleNotes,
	})
	r.Register(&Command{
		Name:        "clear_notes",
		Keyword:     "/clear",
		Tail:        []Token{lit("notes")},
		Description: "Delete all notes",
		Usage:       "/clear notes",
		Mutates:     true,
		Category:    "Notes",
		Handler:     handleClearNotes,
	})

	// Calculators
	r.Register(&Command{
		Name:        "profit_margin",
		Keyword:     "/profit",
		Tail:        []Token{lit("margin"), amount("revenue"), amount("costs")},
		Description: "Profit and margin from revenue and costs",
		Usage:       "/profit margin <revenue> <costs>",
		InvalidText: invalidNumbers,
		Category:    "Calculators",
		Handler:     handleProfitMargin("💰 **Profit Margin Calculation:**"),
	})
	r.Register(&Command{
		Name:        "calculate_margin",
		Keyword:     "/calculate",
		Tail:        []Token{litFold("margin"), amount("revenue"), amount("costs")},
		Description: "Same as /profit margin",
		Usage:       "/calculate margin <revenue> <costs>",
		InvalidText: invalidNumbers,
		Category:    "Calculators",
		Handler:     handleProfitMargin("💰 **Profit Margin:**"),
	})
	r.Register(&Command{
		Name:        "break_even",
		Keyword:     "/break",
		Tail:        []Token{lit("even"), amount("fixed costs"), amount("price"), amount("variable cost")},
		Description: "Units needed to cover fixed costs",
		Usage:       "/break even <fixed costs> <price> <variable cost>",
		InvalidText: invalidNumbers,
		Category:    "Calculators",
		Handler:     handleBreakEven,
	})
	for _, c := range []struct {
		kind, a, b, desc string
		handler          Handler
	}{
		{"markup", "cost", "markup%", "Selling price after a markup", handleMarkup},
		{"discount", "price", "discount%", "Final price after a discount", handleDiscount},
		{"tax", "amount", "tax%", "Total with sales tax", handleTax},
		{"tip", "bill", "tip%", "Total with tip", handleTip},
		{"inventory", "stock", "daily usage", "Days until stock runs out", handleInventory},
		{"roi", "investment", "returns", "Return on investment", handleROI},
	} {
		r.Register(&Command{
			Name:        "calculate_" + c.kind,
			Keyword:     "/calculate",
			Tail:        []Token{litFold(c.kind), amount(c.a), amount(c.b)},
			Description: c.desc,
			Usage:       "/calculate " + c.kind + " <" + c.a + "> <" + c.b + ">",
			InvalidText: invalidNumbers,
			Category:    "Calculators",
			Handler:     c.handler,
		})
	}
	r.RegisterFallback("/calculate", calculateFallback)

	// Data management
	for _, scope := range []string{"all", "profits", "sales"} {
		r.Register(&Command{
			Name:        "reset_" + scope,
			Keyword:     "/reset",
			Tail:        []Token{lit(scope)},
			Description: resetDescriptions[scope],
			Usage:       "/reset " + scope,
			Mutates:     true,
			Category:    "Data Management",
			Handler:     handleReset(scope),
		})
	}

	// Venmo
	r.Register(&Command{
		Name:        "venmo_connect",
		Keyword:     "/venmo",
		Tail:        []Token{litFold("connect")},
		Description: "Connect the Venmo feed",
		Usage:       "/venmo connect",
		Mutates:     true,
		Category:    "Venmo",
		Handler:     handleVenmoConnect,
	})
	r.Register(&Command{
		Name:        "venmo_sync",
		Keyword:     "/venmo",
		Tail:        []Token{litFold("sync")},
		Description: "Fetch new Venmo transactions",
		Usage:       "/venmo sync",
		Mutates:     true,
		Category:    "Venmo",
		Handler:     handleVenmoSync,
	})
	r.Register(&Command{
		Name:        "venmo_transactions",
		Keyword:     "/venmo",
		Tail:        []Token{litFold("transactions")},
		Description: "Show recent Venmo transactions",
		Usage:       "/venmo transactions",
		Category:    "Venmo",
		Handler:     handleVenmoTransactions,
	})
	r.Register(&Command{
		Name:        "venmo_auto_on",
		Keyword:     "/venmo",
		Tail:        []Token{litFold("auto"), lit("on")},
		Description: "Turn on automatic syncing",
		Usage:       "/venmo auto on",
		Mutates:     true,
		Category:    "Venmo",
		Handler:     handleVenmoAuto(true),
	})
	r.Register(&Command{
		Name:        "venmo_auto_off",
		Keyword:     "/venmo",
		Tail:        []Token{litFold("auto"), lit("off")},
		Description: "Turn off automatic syncing",
		Usage:       "/venmo auto off",
		Mutates:     true,
		Category:    "Venmo",
		Handler:     handleVenmoAuto(false),
	})
	r.Register(&Command{
		Name:        "venmo_interval",
		Keyword:     "/venmo",
		Tail:        []Token{litFold("interval"), units("minutes")},
		Description: "Set the auto-sync interval (1, 5, 10, 15 or 30 minutes)",
		Usage:       "/venmo interval <minutes>",
		InvalidText: FailureMarker + " Invalid interval.",
		Mutates:     true,
		Category:    "Venmo",
		Handler:     handleVenmoInterval,
	})
	r.Register(&Command{
		Name:        "venmo_apply",
		Keyword:     "/venmo",
		Tail:        []Token{litFold("apply")},
		Description: "Add today's Venmo total to net profits",
		Usage:       "/venmo apply",
		Mutates:     true,
		Category:    "Venmo",
		Handler:     handleVenmoApply,
	})
	r.Register(&Command{
		Name:        "venmo_disconnect",
		Keyword:     "/venmo",
		Tail:        []Token{litFold("disconnect")},
		Description: "Disconnect Venmo and forget its credential",
		Usage:       "/venmo disconnect",
		Mutates:     true,
		Category:    "Venmo",
		Handler:     handleVenmoDisconnect,
	})
	r.RegisterFallback("/venmo", venmoFallback)
}

var resetDescriptions = map[string]string{
	"all":     "Reset profits, sales, best day and notes",
	"profits": "Reset net profits to $0.00",
	"sales":   "Reset total sales to 0 units",
}
