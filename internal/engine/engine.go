// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"errors"
	"time"

	"github.com/dossier-labs/dossier-tui/internal/model"
	"github.com/dossier-labs/dossier-tui/internal/ragapi"
	"github.com/dossier-labs/dossier-tui/internal/store"
)

// clearTimeout bounds the best-effort backend session clear on delete.
const clearTimeout = 5 * time.Second

// =============================================================================
// EVENTS
// =============================================================================

// EventKind enumerates the notifications the engine emits to its sink.
type EventKind int

const (
	// EventToken signals new answer text was appended to the transcript.
	EventToken EventKind = iota
	// EventContexts signals the retrieved contexts were replaced.
	EventContexts
	// EventDone signals the stream completed.
	EventDone
	// EventError signals a whole-request failure; Err holds a retryable,
	// user-visible message.
	EventError
)

// Event notifies the UI binding that the engine applied an update. The store
// already holds the new state when an event is delivered; events carry just
// enough for the surface to refresh.
type Event struct {
	RequestID      uint64
	ConversationID string
	Kind           EventKind
	Token          string
	Contexts       []model.DocumentContext
	Err            string

	// Input carries the failed send's text on EventError so the surface
	// can restore it to the input line for resubmission.
	Input string
}

// Sink receives engine events. It is invoked from the stream's goroutine;
// bindings forward events into their own scheduling loop.
type Sink func(Event)

// =============================================================================
// ENGINE
// =============================================================================

// Engine wires the backend client, the request coordinator, and the message
// assembler into the send/cancel surface the UI talks to.
type Engine struct {
	store  *store.Store
	client *ragapi.Client
	coord  *Coordinator
	asm    *Assembler
}

// New creates an engine over the given store and backend client.
func New(s *store.Store, client *ragapi.Client) *Engine {
	return &Engine{
		store:  s,
		client: client,
		coord:  NewCoordinator(),
		asm:    NewAssembler(s),
	}
}

// Coordinator exposes the request coordinator, mainly for tests.
func (e *Engine) Coordinator() *Coordinator {
	return e.coord
}

// Send opens a new logical request for the conversation: any in-flight send
// is cancelled first (one outstanding question at a time, even across
// conversations), the user message and assistant placeholder are appended
// synchronously, and the stream is consumed on a background goroutine with
// every continuation guarded by the minted request ID.
func (e *Engine) Send(conversationID, text string, sink Sink) (*Session, error) {
	e.CancelActive()

	if err := e.asm.Prepare(conversationID, text); err != nil {
		return nil, err
	}

	session := e.coord.Begin(conversationID)

	ctx, cancel := context.WithCancel(context.Background())
	e.coord.bind(session.requestID, cancel)

	go e.run(ctx, session, text, sink)
	return session, nil
}

// CancelActive aborts the in-flight send, if any. The cancelled send's empty
// placeholder is removed so its conversation returns to the pre-send state;
// partial content that already arrived stays as a finished message.
func (e *Engine) CancelActive() {
	conversationID, wasActive := e.coord.CancelActive()
	if !wasActive {
		return
	}
	e.store.Update(conversationID, func(c *model.Conversation) {
		c.RemoveTrailingPlaceholder()
	})
}

// DeleteConversation removes the conversation locally and notifies the
// backend to drop its server-side session state. The notification is
// best-effort: an unreachable backend never blocks local deletion.
func (e *Engine) DeleteConversation(id string) error {
	if active, ok := e.coord.activeConversation(); ok && active == id {
		e.CancelActive()
	}

	if err := e.store.Delete(id); err != nil {
		return err
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), clearTimeout)
		defer cancel()
		e.client.ClearSession(ctx, id)
	}()

	return nil
}

// run consumes the stream for one send and applies its updates through the
// assembler. Every application is guarded; once the session is superseded,
// buffered frames drain with no effect on the transcript.
func (e *Engine) run(ctx context.Context, session *Session, text string, sink Sink) {
	emit := func(ev Event) {
		if sink != nil {
			ev.RequestID = session.requestID
			ev.ConversationID = session.conversationID
			sink(ev)
		}
	}

	err := e.client.StreamChat(ctx, session.conversationID, text, func(u ragapi.Update) {
		switch u.Kind {
		case ragapi.UpdateToken:
			if e.asm.OnToken(session, u.Token) {
				emit(Event{Kind: EventToken, Token: u.Token})
			}
		case ragapi.UpdateContexts:
			if e.asm.OnContexts(session, u.Contexts) {
				emit(Event{Kind: EventContexts, Contexts: u.Contexts})
			}
		case ragapi.UpdateDone:
			if e.asm.OnDone(session) {
				emit(Event{Kind: EventDone})
			}
		}
	})

	if err == nil {
		// Stream ended without an explicit terminator: the connection close
		// is accepted as one, keeping whatever content was assembled.
		if !session.Done() && e.asm.OnDone(session) {
			emit(Event{Kind: EventDone})
		}
		return
	}

	if isAbort(err) {
		e.asm.OnAbort(session)
		return
	}

	if message, restored, applied := e.asm.OnError(session, err); applied {
		emit(Event{Kind: EventError, Err: message, Input: restored})
	}
}

// isAbort reports whether the error is cancellation rather than failure.
func isAbort(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// activeConversation returns the conversation targeted by the in-flight
// send, if one exists.
func (c *Coordinator) activeConversation() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == 0 {
		return "", false
	}
	return c.conversationID, true
}
