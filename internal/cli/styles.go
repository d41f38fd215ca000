// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// PALETTE
// =============================================================================

// Colors adapt to light and dark terminal backgrounds.
var (
	Purple  = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}
	Cyan    = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}
	Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}
	Rose    = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}
	Amber   = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}
	Muted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
)

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Cyan)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	// LabelStyle pads field labels to a common width.
	LabelStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Width(24)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Emerald).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Rose).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Amber)

	DimStyle = lipgloss.NewStyle().
			Foreground(Muted)

	// Chat-specific
	promptStyle     = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	assistantStyle  = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	commandStyle    = lipgloss.NewStyle().Foreground(Cyan)
	separatorString = strings.Repeat("-", 40)
)

// Separator returns a dim horizontal rule.
func Separator() string {
	return DimStyle.Render(separatorString)
}
