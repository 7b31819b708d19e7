// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"sync"
	"sync/atomic"
)

// =============================================================================
// REQUEST COORDINATOR
// =============================================================================

// Coordinator owns the identity of the current logical request. Request IDs
// are minted from a monotonic counter; a continuation whose ID is not the
// coordinator's latest must be a no-op. This compare-and-discard guard is the
// sole concurrency-safety mechanism for transcript mutation — it is what
// makes supersession race-free without locking the conversation itself.
type Coordinator struct {
	mu sync.Mutex

	counter        uint64
	current        uint64 // 0 = no request current
	conversationID string
	cancelFunc     context.CancelFunc
}

// NewCoordinator creates a coordinator with no active request.
func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// Begin supersedes any in-flight request and opens a new one targeting the
// given conversation. The previous session's cancellation handle is invoked
// best-effort; its continuations become stale immediately regardless of how
// quickly the transport honors the cancel.
func (c *Coordinator) Begin(conversationID string) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancelFunc != nil {
		c.cancelFunc()
		c.cancelFunc = nil
	}

	c.counter++
	c.current = c.counter
	c.conversationID = conversationID

	return &Session{
		coord:          c,
		requestID:      c.counter,
		conversationID: conversationID,
	}
}

// IsCurrent reports whether requestID identifies the latest request.
func (c *Coordinator) IsCurrent(requestID uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != 0 && c.current == requestID
}

// CancelActive invokes the active session's cancellation handle and marks no
// request current. It returns the conversation the cancelled session was
// targeting so the caller can roll back its placeholder.
func (c *Coordinator) CancelActive() (conversationID string, wasActive bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == 0 {
		return "", false
	}
	if c.cancelFunc != nil {
		c.cancelFunc()
		c.cancelFunc = nil
	}
	conversationID = c.conversationID
	c.current = 0
	c.conversationID = ""
	return conversationID, true
}

// retire marks the request as no longer current once its stream completed.
// Releases the cancellation handle so the finished context is not held.
func (c *Coordinator) retire(requestID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != requestID {
		return
	}
	if c.cancelFunc != nil {
		c.cancelFunc()
		c.cancelFunc = nil
	}
	c.current = 0
	c.conversationID = ""
}

// bind stores the cancellation handle for the session, provided it is still
// the current request. A superseded session's context is cancelled on the
// spot.
func (c *Coordinator) bind(requestID uint64, cancel context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != requestID {
		cancel()
		return
	}
	c.cancelFunc = cancel
}

// =============================================================================
// STREAM SESSION
// =============================================================================

// Session is the ephemeral state of one logical send. It exists from the
// moment a send begins until its stream completes, errors, or is superseded.
type Session struct {
	coord          *Coordinator
	requestID      uint64
	conversationID string
	done           atomic.Bool
}

// RequestID returns the session's monotonic request ID.
func (s *Session) RequestID() uint64 {
	return s.requestID
}

// ConversationID returns the conversation this send targets.
func (s *Session) ConversationID() string {
	return s.conversationID
}

// Done reports whether the stream observed its terminator.
func (s *Session) Done() bool {
	return s.done.Load()
}

// Token returns the supersession guard for this session's continuations.
func (s *Session) Token() RequestToken {
	return RequestToken{coord: s.coord, requestID: s.requestID}
}

// =============================================================================
// REQUEST TOKEN
// =============================================================================

// RequestToken is a value object checked at every asynchronous continuation
// boundary. A stale token means the send it belongs to has been superseded
// or cancelled, and the continuation must discard its result.
type RequestToken struct {
	coord     *Coordinator
	requestID uint64
}

// IsStale reports whether the owning send is no longer current.
func (t RequestToken) IsStale() bool {
	return !t.coord.IsCurrent(t.requestID)
}
