// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package ragapi

import "strings"

// commentPrefix marks keep-alive/comment frames, which carry no payload.
const commentPrefix = ":"

// =============================================================================
// FRAME SPLITTER
// =============================================================================

// FrameSplitter turns an incrementally arriving text stream into discrete
// protocol frames, independent of how the transport chunks its reads. It is a
// consuming state machine: bytes before the first frame boundary of a chunk
// combine with previously buffered, not-yet-terminated bytes, and no frame is
// ever emitted twice.
//
// Line endings (\r\n, \r, \n) are normalized to \n before splitting; a frame
// boundary is exactly two consecutive newlines.
type FrameSplitter struct {
	buf strings.Builder

	// pendingCR is set when the last byte seen was '\r', so a following
	// '\n' in the next chunk collapses into a single newline.
	pendingCR bool
}

// NewFrameSplitter creates an empty splitter.
func NewFrameSplitter() *FrameSplitter {
	return &FrameSplitter{}
}

// Feed consumes the next chunk and returns all frames completed by it, in
// order. Whitespace-only frames and comment keep-alives are discarded.
//
// The chunk is processed byte by byte, never decoded: a multibyte UTF-8
// sequence split across two reads must pass through intact. The line-ending
// bytes being normalized are ASCII, so byte-wise handling is safe.
func (s *FrameSplitter) Feed(chunk string) []string {
	for i := 0; i < len(chunk); i++ {
		b := chunk[i]
		if s.pendingCR {
			s.pendingCR = false
			s.buf.WriteByte('\n')
			if b == '\n' {
				continue
			}
		}
		if b == '\r' {
			s.pendingCR = true
			continue
		}
		s.buf.WriteByte(b)
	}
	return s.drain()
}

// Flush emits the trailing frame, if any. Call it once when the transport
// signals end-of-stream; it protects against a truncated connection close
// losing the final unterminated frame.
func (s *FrameSplitter) Flush() (string, bool) {
	if s.pendingCR {
		s.pendingCR = false
		s.buf.WriteByte('\n')
	}
	rest := s.buf.String()
	s.buf.Reset()
	return cleanFrame(rest)
}

// drain splits all complete frames out of the buffer, keeping the remainder.
func (s *FrameSplitter) drain() []string {
	text := s.buf.String()

	var frames []string
	for {
		idx := strings.Index(text, "\n\n")
		if idx < 0 {
			break
		}
		if frame, ok := cleanFrame(text[:idx]); ok {
			frames = append(frames, frame)
		}
		text = text[idx+2:]
	}

	s.buf.Reset()
	s.buf.WriteString(text)
	return frames
}

// cleanFrame drops whitespace-only and comment frames. Kept frames pass
// through byte-identical: data payloads may carry significant leading or
// trailing whitespace, so only the keep/discard decision looks at a trimmed
// view.
func cleanFrame(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, commentPrefix) {
		return "", false
	}
	return raw, true
}
