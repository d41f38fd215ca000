// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command interpreter.
package commands

import (
	"reflect"
	"strings"
	"testing"
)

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestIsCommand(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"/help", true},
		{"/add 5 to sales", true},
		{"  /help", true},
		{"hello", false},
		{"hello /help", false},
		{"", false},
		{"/", true},
	}

	for _, tc := range tests {
		got := IsCommand(tc.input)
		if got != tc.want {
			t.Errorf("IsCommand(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestExtractCommandName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/help", "/help"},
		{"/add 5 to sales", "/add"},
		{"  /notes  ", "/notes"},
		{"hello", ""},
		{"/", "/"},
	}

	for _, tc := range tests {
		got := ExtractCommandName(tc.input)
		if got != tc.want {
			t.Errorf("ExtractCommandName(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestGetPartialCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/ven", "/ven"},
		{"/venmo", "/venmo"},
		{"/venmo ", ""},
		{"/venmo sync", ""},
		{"hello", ""},
	}

	for _, tc := range tests {
		got := GetPartialCommand(tc.input)
		if got != tc.want {
			t.Errorf("GetPartialCommand(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"/add 5 to sales", []string{"/add", "5", "to", "sales"}},
		{"  /add   5\tto  sales  ", []string{"/add", "5", "to", "sales"}},
		{"/add note \"quoted words\"", []string{"/add", "note", "\"quoted", "words\""}},
		{"", nil},
		{"   ", nil},
	}

	for _, tc := range tests {
		got := Tokenize(tc.input)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Tokenize(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNormalizeComposesAccents(t *testing.T) {
	decomposed := "/set best day Cafe\u0301"
	got := Normalize(decomposed)
	if !strings.HasSuffix(got, "Caf\u00e9") {
		t.Errorf("Normalize(%q) = %q, want composed é", decomposed, got)
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{
		Command: "/add <amount> to net profit",
		Arg:     "amount",
		Message: "invalid number",
		Got:     "abc",
	}
	want := "/add <amount> to net profit: invalid number for argument 'amount' (got: abc)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestRegistryMatch(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		input    string
		wantName string
		wantArgs []string
	}{
		{"/add 5 to net profit", "add_net_profit", []string{"5"}},
		{"/add 5 to sales", "add_sales", []string{"5"}},
		{"/add note a  b", "add_note", []string{"a b"}},
		{"/set best day Sat", "set_best_day", []string{"Sat"}},
		{"/break even 1 2 3", "break_even", []string{"1", "2", "3"}},
		{"/calculate ROI 1 2", "calculate_roi", []string{"1", "2"}},
		{"/VENMO auto on", "venmo_auto_on", nil},
		{"/venmo auto ON", "", nil},
		{"/add 5 to net", "", nil},
		{"/add note", "", nil},
		{"/notes please", "", nil},
	}

	for _, tc := range tests {
		cmd, args, ok := r.Match(Tokenize(tc.input))
		if tc.wantName == "" {
			if ok {
				t.Errorf("Match(%q) matched %s, want no match", tc.input, cmd.Name)
			}
			continue
		}
		if !ok {
			t.Errorf("Match(%q) found nothing, want %s", tc.input, tc.wantName)
			continue
		}
		if cmd.Name != tc.wantName {
			t.Errorf("Match(%q) = %s, want %s", tc.input, cmd.Name, tc.wantName)
		}
		if len(args) != len(tc.wantArgs) || (len(args) > 0 && !reflect.DeepEqual(args, tc.wantArgs)) {
			t.Errorf("Match(%q) args = %q, want %q", tc.input, args, tc.wantArgs)
		}
	}
}

func TestRegistryEveryRowHasUsageAndHandler(t *testing.T) {
	r := NewRegistry()
	for _, cmd := range r.All() {
		if cmd.Usage == "" || cmd.Description == "" {
			t.Errorf("command %s missing usage or description", cmd.Name)
		}
		if cmd.Handler == nil {
			t.Errorf("command %s has no handler", cmd.Name)
		}
		if !strings.HasPrefix(cmd.Usage, cmd.Keyword) {
			t.Errorf("command %s usage %q does not start with %q", cmd.Name, cmd.Usage, cmd.Keyword)
		}
		for i, tok := range cmd.Tail {
			if tok.Type == ArgWords && i != len(cmd.Tail)-1 {
				t.Errorf("command %s has a words argument before the end", cmd.Name)
			}
		}
	}
}

func TestRegistryRegisterReplaces(t *testing.T) {
	r := NewRegistry()
	count := len(r.All())

	r.Register(&Command{Name: "status", Keyword: "/status", Usage: "/status", Description: "x", Handler: handleStatus})
	if len(r.All()) != count {
		t.Errorf("re-registering status changed row count from %d to %d", count, len(r.All()))
	}
	if r.Get("status").Description != "x" {
		t.Error("re-registered command not returned by Get")
	}
}

func TestRegistryKeywords(t *testing.T) {
	keywords := NewRegistry().Keywords()
	seen := make(map[string]bool)
	for _, kw := range keywords {
		if seen[kw] {
			t.Errorf("keyword %s listed twice", kw)
		}
		seen[kw] = true
	}
	for _, want := range []string{"/help", "/add", "/set", "/calculate", "/venmo", "/reset"} {
		if !seen[want] {
			t.Errorf("Keywords() missing %s", want)
		}
	}
}

func TestByCategory(t *testing.T) {
	cats := NewRegistry().ByCategory()
	for _, c := range categoryOrder {
		if len(cats[c]) == 0 {
			t.Errorf("category %q has no commands", c)
		}
	}
}
