// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command interpreter.
package commands

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/slushie-cfo/internal/money"
)

// =============================================================================
// TOKENIZER
// =============================================================================

// Normalize returns input in NFC form with surrounding whitespace removed,
// so composed and decomposed spellings of a note or day compare equal.
func Normalize(input string) string {
	return strings.TrimSpace(norm.NFC.String(input))
}

// Tokenize splits input on runs of whitespace. Quotes have no meaning.
func Tokenize(input string) []string {
	return strings.FieldsFunc(Normalize(input), unicode.IsSpace)
}

// =============================================================================
// ARGUMENTS
// =============================================================================

type argValue struct {
	raw    string
	amount decimal.Decimal
	units  int64
}

// Args are the parsed arguments of a matched command, indexed in the order
// they appear in the command's tail (literals excluded).
type Args struct {
	values []argValue
}

// Len returns the number of arguments.
func (a Args) Len() int { return len(a.values) }

// Amount returns argument i as a decimal amount.
func (a Args) Amount(i int) decimal.Decimal { return a.values[i].amount }

// Units returns argument i as a whole number.
func (a Args) Units(i int) int64 { return a.values[i].units }

// Text returns argument i as written.
func (a Args) Text(i int) string { return a.values[i].raw }

// parseArgs converts raw argument strings according to the command's tail.
func parseArgs(cmd *Command, raw []string) (Args, error) {
	specs := cmd.argTokens()
	args := Args{values: make([]argValue, len(raw))}
	for i, s := range raw {
		v := argValue{raw: s}
		switch specs[i].Type {
		case ArgAmount:
			d, err := money.ParseAmount(s)
			if err != nil {
				return Args{}, &ValidationError{Command: cmd.Usage, Arg: specs[i].Name, Message: "invalid number", Got: s}
			}
			v.amount = d
		case ArgUnits:
			n, err := money.ParseUnits(s)
			if err != nil {
				return Args{}, &ValidationError{Command: cmd.Usage, Arg: specs[i].Name, Message: "invalid whole number", Got: s}
			}
			v.units = n
		}
		args.values[i] = v
	}
	return args, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// IsCommand returns true if the input appears to be a command.
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// ExtractCommandName extracts just the command keyword from input.
// e.g., "/add 5 to sales" -> "/add"
func ExtractCommandName(input string) string {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return ""
	}

	end := strings.IndexFunc(input, unicode.IsSpace)
	if end == -1 {
		return input
	}
	return input[:end]
}

// GetPartialCommand returns the partial keyword being typed.
// Returns empty string once a space follows the keyword.
func GetPartialCommand(input string) string {
	if !strings.HasPrefix(input, "/") {
		return ""
	}

	end := strings.IndexFunc(input, unicode.IsSpace)
	if end == -1 {
		return input
	}
	return ""
}

// =============================================================================
// VALIDATION ERROR
// =============================================================================

// ValidationError represents an argument that failed to parse.
type ValidationError struct {
	Command  string
	Arg      string
	Message  string
	Got      string
	Expected string
}

func (e *ValidationError) Error() string {
	msg := e.Command + ": " + e.Message
	if e.Arg != "" {
		msg += " for argument '" + e.Arg + "'"
	}
	if e.Got != "" {
		msg += " (got: " + e.Got + ")"
	}
	if e.Expected != "" {
		msg += " - expected: " + e.Expected
	}
	return msg
}
