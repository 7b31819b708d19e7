// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package ragapi

import (
	"encoding/json"
	"strings"

	"github.com/dossier-labs/dossier-tui/internal/model"
)

// doneSentinel is a literal data value that terminates the stream regardless
// of event name.
const doneSentinel = "[DONE]"

// Recognized event names. Any other name is still accepted and interpreted
// through the payload-field fallbacks below.
const (
	eventToken    = "token"
	eventContexts = "contexts"
	eventDone     = "done"
)

// =============================================================================
// CANONICAL UPDATES
// =============================================================================

// UpdateKind enumerates the canonical updates a frame can normalize to.
type UpdateKind int

const (
	// UpdateToken carries the next chunk of answer text.
	UpdateToken UpdateKind = iota
	// UpdateContexts replaces the retrieved document contexts wholesale.
	UpdateContexts
	// UpdateDone terminates the stream.
	UpdateDone
)

// Update is the normalized representation of one protocol frame after
// payload-variant handling.
type Update struct {
	Kind     UpdateKind
	Token    string
	Contexts []model.DocumentContext
}

// =============================================================================
// EVENT INTERPRETER
// =============================================================================

// payload captures every field any historical backend variant has used.
// Pointers distinguish "absent" from "zero".
type payload struct {
	Token     *string                 `json:"token"`
	Content   *string                 `json:"content"`
	Contexts  []model.DocumentContext `json:"contexts"`
	Documents []model.DocumentContext `json:"documents"`
	Done      bool                    `json:"done"`
	Type      string                  `json:"type"`
}

// InterpretFrame normalizes a raw frame into zero or more canonical updates.
//
// Resolution order, first match wins:
//  1. Token: a string "token" field; else a string "content" field under
//     event "token"; else, when the data is not valid JSON and the event is
//     "token", the raw data itself is the token text.
//  2. Contexts: a "contexts" or "documents" array, regardless of event name.
//  3. Done: event "done", payload "done": true, or payload "type": "done".
//     A done frame may also carry contexts, emitted before the terminal
//     update.
//
// The literal data value [DONE] is a stream terminator independent of event
// name. Unrecognized or malformed frames yield nil and are silently ignored.
func InterpretFrame(frame string) []Update {
	event, data := parseFrame(frame)

	if strings.TrimSpace(data) == doneSentinel {
		return []Update{{Kind: UpdateDone}}
	}

	var p payload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		// Plain-text token protocol variant: the data line is the token.
		if event == eventToken && data != "" {
			return []Update{{Kind: UpdateToken, Token: data}}
		}
		return nil
	}

	if p.Token != nil {
		return []Update{{Kind: UpdateToken, Token: *p.Token}}
	}
	if event == eventToken && p.Content != nil {
		return []Update{{Kind: UpdateToken, Token: *p.Content}}
	}

	var updates []Update

	contexts := p.Contexts
	if contexts == nil {
		contexts = p.Documents
	}
	if contexts != nil {
		updates = append(updates, Update{Kind: UpdateContexts, Contexts: contexts})
	}

	if event == eventDone || p.Done || p.Type == eventDone {
		updates = append(updates, Update{Kind: UpdateDone})
	}

	return updates
}

// parseFrame splits a frame into its event name and joined data payload.
// Multi-line data values are rejoined with newlines to recover multi-line
// JSON. Comment lines and unknown fields (id:, retry:) are ignored.
//
// Data values keep their whitespace: the plain-text token variant carries
// significant leading and trailing spaces, so only the single conventional
// space after the field name is stripped.
func parseFrame(frame string) (event, data string) {
	var dataLines []string

	for _, line := range strings.Split(frame, "\n") {
		switch {
		case strings.HasPrefix(line, commentPrefix):
			// Keep-alive or comment line.
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(line[len("event:"):])
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimPrefix(line[len("data:"):], " "))
		}
	}

	return event, strings.Join(dataLines, "\n")
}
