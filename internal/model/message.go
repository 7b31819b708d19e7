// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// Role identifies the author of a message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in a conversation transcript.
// User messages are immutable once created; an assistant message grows
// monotonically while its response streams in.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// NewUserMessage creates a user message with the current timestamp.
func NewUserMessage(content string) *Message {
	return &Message{
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantPlaceholder creates an empty assistant message. It is appended
// to the transcript at send time and filled token by token as the stream
// arrives.
func NewAssistantPlaceholder() *Message {
	return &Message{
		Role:      RoleAssistant,
		Timestamp: time.Now(),
	}
}

// IsEmptyPlaceholder reports whether the message is an assistant entry that
// has not received any content yet.
func (m *Message) IsEmptyPlaceholder() bool {
	return m.Role == RoleAssistant && m.Content == ""
}
