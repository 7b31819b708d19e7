// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the chat surface. It detects the
// terminal's color capability and adjusts accordingly.
type Theme struct {
	ColorProfile termenv.Profile
	HasTrueColor bool

	// Header
	Header lipgloss.Style

	// Message bubbles
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	UserText       lipgloss.Style
	PendingText    lipgloss.Style

	// Citations and contexts
	Citation     lipgloss.Style
	ContextPanel lipgloss.Style
	ContextTitle lipgloss.Style
	ContextFile  lipgloss.Style
	ContextScore lipgloss.Style
	Snippet      lipgloss.Style

	// Conversation list
	ListItem       lipgloss.Style
	ListItemActive lipgloss.Style

	// Input and status
	InputPrompt lipgloss.Style
	StatusBar   lipgloss.Style
	ErrorText   lipgloss.Style
	HelpText    lipgloss.Style
}

// NewTheme builds the default theme for the detected terminal.
func NewTheme() *Theme {
	profile := termenv.ColorProfile()

	t := &Theme{
		ColorProfile: profile,
		HasTrueColor: profile == termenv.TrueColor,
	}

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("61")).
		Padding(0, 1)

	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	t.AssistantLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	t.UserText = lipgloss.NewStyle()
	t.PendingText = lipgloss.NewStyle().Faint(true).Italic(true)

	t.Citation = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("220"))
	t.ContextPanel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("238")).
		Padding(0, 1)
	t.ContextTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("110"))
	t.ContextFile = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	t.ContextScore = lipgloss.NewStyle().Faint(true)
	t.Snippet = lipgloss.NewStyle().Faint(true)

	t.ListItem = lipgloss.NewStyle().Padding(0, 1)
	t.ListItemActive = lipgloss.NewStyle().
		Padding(0, 1).
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("61"))

	t.InputPrompt = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	t.StatusBar = lipgloss.NewStyle().
		Faint(true).
		Padding(0, 1)
	t.ErrorText = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	t.HelpText = lipgloss.NewStyle().Faint(true)

	return t
}
