// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"errors"
	"fmt"
	"strings"
)

// Contexts are the business areas the assistant can focus on.
var Contexts = []string{
	"General Business Advice",
	"Financial Planning & Budgeting",
	"Inventory Management",
	"Marketing & Sales Strategy",
	"Operations & Efficiency",
	"Customer Service",
	"Seasonal Planning",
	"Growth & Expansion",
	"Cost Control",
	"Pricing Strategy",
}

// Tones are the response styles the assistant can adopt.
var Tones = []string{
	"Professional & Detailed",
	"Simple & Practical",
	"Encouraging & Motivational",
	"Analytical & Data-Driven",
	"Creative & Innovative",
	"Conservative & Cautious",
	"Aggressive & Growth-Focused",
	"Family-Friendly & Relatable",
}

// ErrUnknownChoice is returned when a context or tone name matches nothing.
var ErrUnknownChoice = errors.New("unknown choice")

// ErrAmbiguousChoice is returned when a name prefix matches several entries.
var ErrAmbiguousChoice = errors.New("ambiguous choice")

// Profile selects how the assistant frames its advice.
type Profile struct {
	Context    string
	Tone       string
	Background string
}

// DefaultProfile returns the first context and tone with no background.
func DefaultProfile() Profile {
	return Profile{Context: Contexts[0], Tone: Tones[0]}
}

// SystemPrompt renders the system message sent ahead of the conversation.
func (p Profile) SystemPrompt() string {
	var b strings.Builder
	b.WriteString("You are a CFO assistant for a family-run slushie business.\n\n")
	fmt.Fprintf(&b, "CONTEXT: The user is seeking advice in the area of %s.\n", p.Context)
	fmt.Fprintf(&b, "TONE: Respond in a %s manner.\n", strings.ToLower(p.Tone))
	if bg := strings.TrimSpace(p.Background); bg != "" {
		fmt.Fprintf(&b, "\nBUSINESS BACKGROUND: %s\n", bg)
	}
	b.WriteString("\nProvide practical, actionable advice on finances, operations, inventory, marketing, and business strategy.\n")
	b.WriteString("Be specific and helpful based on the context and tone requested.\n\n")
	b.WriteString("IMPORTANT: You cannot access live internet data, create graphs, or generate images.\n")
	b.WriteString("Focus on providing text-based advice, calculations, and recommendations based on the information provided.\n")
	b.WriteString("If asked for current prices or live data, explain that you work with the data provided by the user.\n")
	b.WriteString("The ledger commands (type /help) track profits, sales and notes; suggest them when they fit.")
	return b.String()
}

// Resolve finds name in choices, case-insensitively. An exact match wins;
// otherwise a unique prefix match is accepted.
func Resolve(name string, choices []string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrUnknownChoice
	}

	var matches []string
	for _, c := range choices {
		if strings.EqualFold(c, name) {
			return c, nil
		}
		if len(c) >= len(name) && strings.EqualFold(c[:len(name)], name) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %q", ErrUnknownChoice, name)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %q matches %s", ErrAmbiguousChoice, name, strings.Join(matches, ", "))
	}
}
