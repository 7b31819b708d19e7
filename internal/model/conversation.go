// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/dossier-labs/dossier-tui/internal/util"
)

// TitleMaxRunes is the maximum length of a derived conversation title.
const TitleMaxRunes = 50

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the aggregate root for one assistant thread: its transcript,
// the contexts retrieved for the latest answer, and bookkeeping timestamps.
// The ID doubles as the backend session key (X-Session-Id).
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages alternates logically user/assistant. The trailing entry may be
	// an empty assistant placeholder while a response is streaming.
	Messages []*Message `json:"messages"`

	// Contexts is replaced wholesale on every contexts-update from the stream.
	Contexts []DocumentContext `json:"contexts,omitempty"`
}

// NewConversation creates an empty conversation with a fresh client-side ID.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0),
	}
}

// Clone returns a deep copy sharing no mutable state with the original.
// Readers on other goroutines get clones so in-place transcript mutation
// behind the store's lock never races a render.
func (c *Conversation) Clone() *Conversation {
	out := *c
	out.Messages = make([]*Message, len(c.Messages))
	for i, msg := range c.Messages {
		copied := *msg
		out.Messages[i] = &copied
	}
	if c.Contexts != nil {
		out.Contexts = append([]DocumentContext(nil), c.Contexts...)
	}
	return &out
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddUserMessage appends a user message and derives the title if unset.
func (c *Conversation) AddUserMessage(content string) *Message {
	msg := NewUserMessage(content)
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	if c.Title == "" {
		c.Title = deriveTitle(content)
	}
	return msg
}

// AddPlaceholder appends an empty assistant message for an answer that is
// about to stream in.
func (c *Conversation) AddPlaceholder() *Message {
	msg := NewAssistantPlaceholder()
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	return msg
}

// LastMessage returns the most recent message, or nil if the transcript is
// empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// AppendToLast concatenates text onto the trailing message's content.
// No-op on an empty transcript.
func (c *Conversation) AppendToLast(text string) {
	last := c.LastMessage()
	if last == nil {
		return
	}
	last.Content += text
	c.UpdatedAt = time.Now()
}

// RemoveTrailingPlaceholder drops the last message if it is an assistant
// entry with no content, restoring the transcript to its pre-send state.
// Returns true if a placeholder was removed.
func (c *Conversation) RemoveTrailingPlaceholder() bool {
	last := c.LastMessage()
	if last == nil || !last.IsEmptyPlaceholder() {
		return false
	}
	c.Messages = c.Messages[:len(c.Messages)-1]
	c.UpdatedAt = time.Now()
	return true
}

// RemoveLastUserMessage drops the trailing message if it is a user entry and
// returns its content. Used to restore the input box after a failed send.
func (c *Conversation) RemoveLastUserMessage() (string, bool) {
	last := c.LastMessage()
	if last == nil || last.Role != RoleUser {
		return "", false
	}
	c.Messages = c.Messages[:len(c.Messages)-1]
	c.UpdatedAt = time.Now()
	return last.Content, true
}

// SetContexts replaces the retrieved contexts wholesale. Later updates within
// a send fully supersede earlier ones.
func (c *Conversation) SetContexts(contexts []DocumentContext) {
	c.Contexts = contexts
	c.UpdatedAt = time.Now()
}

// Preview returns the first user message, truncated for list display.
func (c *Conversation) Preview() string {
	for _, msg := range c.Messages {
		if msg.Role == RoleUser && msg.Content != "" {
			return util.TruncateRunes(util.CollapseWhitespace(msg.Content), 80)
		}
	}
	return ""
}

// deriveTitle builds a single-line title from the first user message.
func deriveTitle(content string) string {
	return util.TruncateRunes(util.CollapseWhitespace(content), TitleMaxRunes)
}
