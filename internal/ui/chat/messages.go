// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file defines the Bubble Tea message types used by the chat surface.
package chat

import (
	"github.com/dossier-labs/dossier-tui/internal/engine"
)

// StreamEventMsg forwards one engine event into the Bubble Tea loop. The
// store already holds the updated state; the surface only refreshes.
type StreamEventMsg struct {
	Event engine.Event
}

// NewConversationMsg requests a fresh conversation.
type NewConversationMsg struct{}

// SwitchConversationMsg switches the active conversation.
type SwitchConversationMsg struct {
	ID string
}

// DeleteConversationMsg deletes a conversation.
type DeleteConversationMsg struct {
	ID string
}

// ErrorMsg carries a user-visible, retryable error.
type ErrorMsg struct {
	Message string
}
