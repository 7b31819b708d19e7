// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package ragapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dossier-labs/dossier-tui/internal/model"
)

// =============================================================================
// EVENT INTERPRETER TESTS
// =============================================================================

func TestInterpretFrame_TokenVariants(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  string
	}{
		{
			name:  "token field",
			frame: "data: {\"token\":\"hello\"}",
			want:  "hello",
		},
		{
			name:  "token field wins regardless of event name",
			frame: "event: message\ndata: {\"token\":\"hello\"}",
			want:  "hello",
		},
		{
			name:  "content field under token event",
			frame: "event: token\ndata: {\"content\":\"world\"}",
			want:  "world",
		},
		{
			name:  "raw non-JSON data under token event",
			frame: "event: token\ndata: just plain text",
			want:  "just plain text",
		},
		{
			name:  "empty token preserved",
			frame: "data: {\"token\":\"\"}",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updates := InterpretFrame(tt.frame)
			require.Len(t, updates, 1)
			assert.Equal(t, UpdateToken, updates[0].Kind)
			assert.Equal(t, tt.want, updates[0].Token)
		})
	}
}

func TestInterpretFrame_PlainTextTokenKeepsWhitespace(t *testing.T) {
	// Raw token chunks carry significant spacing; concatenating the
	// tokens must reproduce the answer exactly.
	frames := []string{
		"event: token\ndata: X is ",
		"event: token\ndata: a thing.",
	}

	var assembled string
	for _, frame := range frames {
		updates := InterpretFrame(frame)
		require.Len(t, updates, 1)
		assert.Equal(t, UpdateToken, updates[0].Kind)
		assembled += updates[0].Token
	}
	assert.Equal(t, "X is a thing.", assembled)
}

func TestInterpretFrame_DataWithExtraLeadingSpace(t *testing.T) {
	// Only the single conventional space after "data:" is stripped;
	// further leading whitespace belongs to the payload.
	updates := InterpretFrame("event: token\ndata:  indented")
	require.Len(t, updates, 1)
	assert.Equal(t, " indented", updates[0].Token)
}

func TestInterpretFrame_ContentIgnoredWithoutTokenEvent(t *testing.T) {
	// A bare "content" field without event: token is not a recognized
	// token variant.
	updates := InterpretFrame("data: {\"content\":\"hello\"}")
	assert.Empty(t, updates)
}

func TestInterpretFrame_ContextVariants(t *testing.T) {
	contexts := `[{"document_id":"doc-1","file_name":"report.pdf","snippet":"...","relevance_score":0.92}]`

	tests := []struct {
		name  string
		frame string
	}{
		{"contexts field", "data: {\"contexts\":" + contexts + "}"},
		{"documents field", "data: {\"documents\":" + contexts + "}"},
		{"contexts under unrelated event name", "event: sources\ndata: {\"contexts\":" + contexts + "}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updates := InterpretFrame(tt.frame)
			require.Len(t, updates, 1)
			assert.Equal(t, UpdateContexts, updates[0].Kind)
			require.Len(t, updates[0].Contexts, 1)
			assert.Equal(t, "doc-1", updates[0].Contexts[0].DocumentID)
			assert.Equal(t, "report.pdf", updates[0].Contexts[0].FileName)
			assert.InDelta(t, 0.92, updates[0].Contexts[0].RelevanceScore, 1e-9)
		})
	}
}

func TestInterpretFrame_EmptyContextsArrayStillReplaces(t *testing.T) {
	updates := InterpretFrame("data: {\"contexts\":[]}")
	require.Len(t, updates, 1)
	assert.Equal(t, UpdateContexts, updates[0].Kind)
	assert.NotNil(t, updates[0].Contexts)
	assert.Empty(t, updates[0].Contexts)
}

func TestInterpretFrame_DoneVariants(t *testing.T) {
	tests := []struct {
		name  string
		frame string
	}{
		{"done event name", "event: done\ndata: {}"},
		{"done boolean field", "data: {\"done\":true}"},
		{"type done field", "data: {\"type\":\"done\"}"},
		{"DONE sentinel", "data: [DONE]"},
		{"DONE sentinel under any event", "event: whatever\ndata: [DONE]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updates := InterpretFrame(tt.frame)
			require.Len(t, updates, 1)
			assert.Equal(t, UpdateDone, updates[0].Kind)
		})
	}
}

func TestInterpretFrame_DoneWithContexts(t *testing.T) {
	frame := "event: done\ndata: {\"contexts\":[{\"document_id\":\"d9\"}]}"
	updates := InterpretFrame(frame)
	require.Len(t, updates, 2)
	assert.Equal(t, UpdateContexts, updates[0].Kind)
	assert.Equal(t, "d9", updates[0].Contexts[0].DocumentID)
	assert.Equal(t, UpdateDone, updates[1].Kind)
}

func TestInterpretFrame_TokenWinsOverDone(t *testing.T) {
	// First match wins: a token field short-circuits the rest of the
	// payload, even a done marker.
	updates := InterpretFrame("data: {\"token\":\"tail\",\"done\":true}")
	require.Len(t, updates, 1)
	assert.Equal(t, UpdateToken, updates[0].Kind)
	assert.Equal(t, "tail", updates[0].Token)
}

func TestInterpretFrame_MultiLineData(t *testing.T) {
	// Multi-line data values rejoin with newlines to recover the JSON.
	frame := "data: {\"token\":\ndata: \"split\"}"
	updates := InterpretFrame(frame)
	require.Len(t, updates, 1)
	assert.Equal(t, "split", updates[0].Token)
}

func TestInterpretFrame_IgnoresUnknownFieldsAndComments(t *testing.T) {
	frame := ": comment line\nid: 42\nretry: 1000\ndata: {\"token\":\"x\"}"
	updates := InterpretFrame(frame)
	require.Len(t, updates, 1)
	assert.Equal(t, "x", updates[0].Token)
}

func TestInterpretFrame_UnrecognizedFrames(t *testing.T) {
	tests := []struct {
		name  string
		frame string
	}{
		{"unknown JSON shape", "data: {\"status\":\"thinking\"}"},
		{"non-JSON without token event", "event: status\ndata: plain text"},
		{"no data lines", "event: token"},
		{"malformed JSON without token event", "data: {broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, InterpretFrame(tt.frame))
		})
	}
}

func TestInterpretFrame_ContextModelRoundTrip(t *testing.T) {
	frame := "data: {\"contexts\":[{\"document_id\":\"a\",\"file_name\":\"f.txt\",\"snippet\":\"s\",\"relevance_score\":1}]}"
	updates := InterpretFrame(frame)
	require.Len(t, updates, 1)
	want := model.DocumentContext{DocumentID: "a", FileName: "f.txt", Snippet: "s", RelevanceScore: 1}
	assert.Equal(t, want, updates[0].Contexts[0])
}
