// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dossier-labs/dossier-tui/internal/model"
	"github.com/dossier-labs/dossier-tui/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrConversationNotFound is returned when a conversation ID has no entry.
// Use errors.Is(err, ErrConversationNotFound) to check for this error.
var ErrConversationNotFound = &StoreError{Message: "conversation not found"}

// ErrUpdateSuperseded is returned by UpdateIf when the guard declined the
// mutation.
var ErrUpdateSuperseded = &StoreError{Message: "update superseded"}

// StoreError represents a conversation-store error.
type StoreError struct {
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// blobVersion is the on-disk format version of the persisted blob.
const blobVersion = 1

// DefaultMaxConversations caps stored conversations (0 = unlimited).
const DefaultMaxConversations = 100

// blob is the on-disk envelope: a versioned list of conversation records.
type blob struct {
	Version       int                   `json:"version"`
	Conversations []*model.Conversation `json:"conversations"`
}

// Store owns all Conversation aggregates. Every mutation is followed by a
// full serialization of the conversation list to one well-known file.
type Store struct {
	mu sync.Mutex

	path          string
	conversations map[string]*model.Conversation

	// MaxConversations limits stored conversations; oldest-updated entries
	// are pruned when exceeded (0 = unlimited).
	MaxConversations int
}

// DefaultPath returns the well-known location of the persisted blob,
// ~/.dossier/conversations.json.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".dossier", "conversations.json"), nil
}

// Open loads the store from path. A missing or corrupt blob is treated as
// "no conversations"; in that case the store starts with one fresh
// conversation so the chat surface always has a target.
func Open(path string) (*Store, error) {
	s := &Store{
		path:             path,
		conversations:    make(map[string]*model.Conversation),
		MaxConversations: DefaultMaxConversations,
	}

	data, err := os.ReadFile(path)
	if err == nil {
		var b blob
		if json.Unmarshal(data, &b) == nil {
			for _, conv := range b.Conversations {
				if conv != nil && conv.ID != "" {
					s.conversations[conv.ID] = conv
				}
			}
		}
		// Unmarshal failure falls through: corruption means starting empty.
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if len(s.conversations) == 0 {
		conv := model.NewConversation()
		s.conversations[conv.ID] = conv
		if err := s.persistLocked(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// List returns snapshots of all conversations, most recently updated first.
func (s *Store) List() []*model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		out = append(out, conv.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Get retrieves a snapshot of the conversation by ID. Reads never alias the
// live aggregate: the stream goroutine mutates it through Update while the
// render loop reads, so handing out the pointer would race.
func (s *Store) Get(id string) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return conv.Clone(), nil
}

// =============================================================================
// WRITE OPERATIONS
// =============================================================================

// Create adds a fresh conversation and persists the list. Returns a
// snapshot.
func (s *Store) Create() (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := model.NewConversation()
	s.conversations[conv.ID] = conv
	s.enforceLimitLocked()
	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return conv.Clone(), nil
}

// Update applies a mutation to the conversation with the given ID, refreshes
// its UpdatedAt stamp, and persists the list.
func (s *Store) Update(id string, apply func(*model.Conversation)) error {
	return s.UpdateIf(id, nil, apply)
}

// UpdateIf is Update with a guard evaluated inside the critical section:
// the mutation applies only if the guard still holds once the store's lock
// is taken, otherwise ErrUpdateSuperseded. This is the atomicity a stream
// continuation needs between "am I still the current request" and its
// transcript write.
func (s *Store) UpdateIf(id string, guard func() bool, apply func(*model.Conversation)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return ErrConversationNotFound
	}
	if guard != nil && !guard() {
		return ErrUpdateSuperseded
	}
	apply(conv)
	conv.UpdatedAt = time.Now()
	return s.persistLocked()
}

// Delete removes a conversation and persists the list. Releasing any
// server-side session keyed by the same ID is the caller's concern.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[id]; !ok {
		return ErrConversationNotFound
	}
	delete(s.conversations, id)
	return s.persistLocked()
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// persistLocked serializes the full conversation list atomically.
// Caller must hold s.mu.
func (s *Store) persistLocked() error {
	convs := make([]*model.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		convs = append(convs, conv)
	}
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})

	data, err := json.MarshalIndent(blob{Version: blobVersion, Conversations: convs}, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(s.path, data, 0644)
}

// enforceLimitLocked prunes oldest-updated conversations beyond the cap.
// Caller must hold s.mu.
func (s *Store) enforceLimitLocked() {
	if s.MaxConversations <= 0 || len(s.conversations) <= s.MaxConversations {
		return
	}

	convs := make([]*model.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		convs = append(convs, conv)
	}
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.Before(convs[j].UpdatedAt)
	})

	excess := len(convs) - s.MaxConversations
	for i := 0; i < excess; i++ {
		delete(s.conversations, convs[i].ID)
	}
}
