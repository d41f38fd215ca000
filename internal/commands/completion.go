// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command interpreter.
package commands

import (
	"sort"
	"strings"
	"unicode"
)

// =============================================================================
// COMPLETION
// =============================================================================

// Completion is one suggestion for the word being typed.
type Completion struct {
	// Value replaces the partial word
	Value string

	// Display is shown in completion lists
	Display string

	// Description explains the suggestion
	Description string

	// Score ranks suggestions; higher is better
	Score int
}

// Completer handles tab completion for command keywords and the literal
// words that follow them.
type Completer struct {
	registry *Registry

	// ExtraKeywords are host-level commands (e.g., "/quit") offered alongside
	// the interpreter's own.
	ExtraKeywords map[string]string
}

// NewCompleter creates a new completer with the given registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{registry: registry}
}

// Complete returns completions for the last word of input.
func (c *Completer) Complete(input string) []Completion {
	if !strings.HasPrefix(strings.TrimLeftFunc(input, unicode.IsSpace), "/") {
		return nil
	}

	parts := strings.Fields(input)
	trailingSpace := len(input) > 0 && unicode.IsSpace(rune(input[len(input)-1]))

	// Still typing the keyword?
	if len(parts) == 1 && !trailingSpace {
		return c.completeKeywords(parts[0])
	}

	typed := parts[1:]
	partial := ""
	if !trailingSpace {
		partial = typed[len(typed)-1]
		typed = typed[:len(typed)-1]
	}
	return c.completeTail(parts[0], typed, partial)
}

// Lines returns whole-line completions, as line editors expect.
func (c *Completer) Lines(line string) []string {
	completions := c.Complete(line)
	if len(completions) == 0 {
		return nil
	}

	prefix := line
	if i := strings.LastIndexFunc(line, unicode.IsSpace); i >= 0 {
		prefix = line[:i+1]
	} else {
		prefix = ""
	}

	out := make([]string, 0, len(completions))
	for _, comp := range completions {
		out = append(out, prefix+comp.Value)
	}
	return out
}

// =============================================================================
// KEYWORD COMPLETION
// =============================================================================

func (c *Completer) completeKeywords(partial string) []Completion {
	var completions []Completion
	partial = strings.ToLower(partial)

	descriptions := make(map[string]string)
	for _, cmd := range c.registry.All() {
		if cmd.Hidden {
			continue
		}
		if _, ok := descriptions[cmd.Keyword]; !ok {
			descriptions[cmd.Keyword] = cmd.Description
		}
	}
	for kw, desc := range c.ExtraKeywords {
		descriptions[kw] = desc
	}

	for kw, desc := range descriptions {
		if strings.HasPrefix(strings.ToLower(kw), partial) {
			completions = append(completions, Completion{
				Value:       kw,
				Display:     kw,
				Description: desc,
				Score:       calculateScore(kw, partial),
			})
		}
	}

	sortCompletions(completions)
	return completions
}

// =============================================================================
// TAIL COMPLETION
// =============================================================================

// completeTail offers the literal words that can follow the tokens typed so
// far for any row sharing the keyword.
func (c *Completer) completeTail(keyword string, typed []string, partial string) []Completion {
	seen := make(map[string]bool)
	var completions []Completion

	for _, cmd := range c.registry.All() {
		if cmd.Hidden || !strings.EqualFold(cmd.Keyword, keyword) {
			continue
		}
		next, ok := nextToken(cmd, typed)
		if !ok || next.Type != ArgLiteral || seen[next.Literal] {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(next.Literal), strings.ToLower(partial)) {
			continue
		}
		seen[next.Literal] = true
		completions = append(completions, Completion{
			Value:       next.Literal,
			Display:     cmd.Usage,
			Description: cmd.Description,
			Score:       calculateScore(next.Literal, partial),
		})
	}

	sortCompletions(completions)
	return completions
}

// nextToken returns the tail token after typed, if typed is a valid prefix.
func nextToken(cmd *Command, typed []string) (Token, bool) {
	if len(typed) >= len(cmd.Tail) {
		return Token{}, false
	}
	for i, word := range typed {
		tok := cmd.Tail[i]
		switch tok.Type {
		case ArgWords:
			return Token{}, false
		case ArgLiteral:
			if !tok.matchesLiteral(word) {
				return Token{}, false
			}
		}
	}
	return cmd.Tail[len(typed)], true
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// calculateScore calculates a match score for completion ranking.
// Higher score = better match.
func calculateScore(value, partial string) int {
	value = strings.ToLower(value)
	partial = strings.ToLower(partial)

	score := 100

	if value == partial {
		return score + 100
	}

	if strings.HasPrefix(value, partial) {
		score += 50
		score += 20 - len(value)
	}

	score -= len(value) / 2

	return score
}

// sortCompletions sorts completions by score (descending), then alphabetically.
func sortCompletions(completions []Completion) {
	sort.Slice(completions, func(i, j int) bool {
		if completions[i].Score != completions[j].Score {
			return completions[i].Score > completions[j].Score
		}
		return completions[i].Value < completions[j].Value
	})
}
