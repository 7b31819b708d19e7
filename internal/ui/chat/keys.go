// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file defines keyboard bindings for the chat surface.
package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keyboard bindings for the chat surface.
type KeyMap struct {
	Submit     key.Binding
	Cancel     key.Binding
	Quit       key.Binding
	NewConv    key.Binding
	NextConv   key.Binding
	DeleteConv key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Contexts   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel streaming"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
		NewConv: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new conversation"),
		),
		NextConv: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "next conversation"),
		),
		DeleteConv: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "delete conversation"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
		Contexts: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "toggle sources"),
		),
	}
}
