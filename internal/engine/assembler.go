// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"github.com/dossier-labs/dossier-tui/internal/model"
	"github.com/dossier-labs/dossier-tui/internal/store"
)

// =============================================================================
// MESSAGE ASSEMBLER
// =============================================================================

// Assembler folds canonical stream updates into the conversation transcript.
// It owns no state of its own; every mutation goes through the store's write
// path, with the session's staleness guard evaluated inside the store's
// critical section so a superseding cancel cannot interleave between the
// check and the write.
type Assembler struct {
	store *store.Store
}

// NewAssembler creates an assembler writing through the given store.
func NewAssembler(s *store.Store) *Assembler {
	return &Assembler{store: s}
}

// current is the guard for s's continuations: true while the session is
// still the latest request.
func current(s *Session) func() bool {
	token := s.Token()
	return func() bool { return !token.IsStale() }
}

// Prepare appends the user's message and the empty assistant placeholder.
// This happens synchronously at send time, before any frame arrives, so the
// surface can show a pending answer immediately.
func (a *Assembler) Prepare(conversationID, text string) error {
	return a.store.Update(conversationID, func(c *model.Conversation) {
		c.AddUserMessage(text)
		c.AddPlaceholder()
	})
}

// OnToken concatenates text onto the trailing assistant message.
// Dropped when the session is stale.
func (a *Assembler) OnToken(s *Session, text string) bool {
	err := a.store.UpdateIf(s.ConversationID(), current(s), func(c *model.Conversation) {
		c.AppendToLast(text)
	})
	return err == nil
}

// OnContexts replaces the conversation's retrieved contexts wholesale.
// Later updates within the same send fully supersede earlier ones.
// Dropped when the session is stale.
func (a *Assembler) OnContexts(s *Session, contexts []model.DocumentContext) bool {
	err := a.store.UpdateIf(s.ConversationID(), current(s), func(c *model.Conversation) {
		c.SetContexts(contexts)
	})
	return err == nil
}

// OnDone marks the session complete and retires it. A done observed after
// cancellation or supersession is discarded.
func (a *Assembler) OnDone(s *Session) bool {
	if s.Token().IsStale() {
		return false
	}
	s.done.Store(true)
	s.coord.retire(s.requestID)
	return true
}

// OnAbort restores the transcript after a user-initiated abort: the empty
// placeholder is removed, prior messages are untouched, and partial content
// that already streamed in stays as a finished message. Not an error; nothing
// is surfaced. No-op when the session is stale (the usual case, since
// cancellation marks no request current before the transport unwinds).
func (a *Assembler) OnAbort(s *Session) {
	err := a.store.UpdateIf(s.ConversationID(), current(s), func(c *model.Conversation) {
		c.RemoveTrailingPlaceholder()
	})
	if err == nil {
		s.coord.retire(s.requestID)
	}
}

// OnError handles a whole-request failure: the placeholder and the user
// message are removed so the transcript returns to its pre-send state, and
// the user's text comes back as restored so the surface can put it in the
// input line for resubmission. Contexts are left untouched. Dropped when the
// session is stale.
func (a *Assembler) OnError(s *Session, err error) (message, restored string, applied bool) {
	uerr := a.store.UpdateIf(s.ConversationID(), current(s), func(c *model.Conversation) {
		c.RemoveTrailingPlaceholder()
		restored, _ = c.RemoveLastUserMessage()
	})
	if uerr != nil {
		return "", "", false
	}
	s.coord.retire(s.requestID)
	return err.Error(), restored, true
}
