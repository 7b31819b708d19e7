// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package ragapi

import (
	"reflect"
	"strings"
	"testing"
)

// feedAll runs a stream through a fresh splitter in the given chunks and
// collects every emitted frame, including the flushed tail.
func feedAll(chunks ...string) []string {
	s := NewFrameSplitter()
	var frames []string
	for _, chunk := range chunks {
		frames = append(frames, s.Feed(chunk)...)
	}
	if tail, ok := s.Flush(); ok {
		frames = append(frames, tail)
	}
	return frames
}

// =============================================================================
// FRAME SPLITTER TESTS
// =============================================================================

func TestFrameSplitter_SingleFrame(t *testing.T) {
	frames := feedAll("event: token\ndata: {\"token\":\"hi\"}\n\n")
	want := []string{"event: token\ndata: {\"token\":\"hi\"}"}
	if !reflect.DeepEqual(frames, want) {
		t.Errorf("frames = %q, want %q", frames, want)
	}
}

func TestFrameSplitter_MultipleFramesOneChunk(t *testing.T) {
	frames := feedAll("data: a\n\ndata: b\n\ndata: c\n\n")
	want := []string{"data: a", "data: b", "data: c"}
	if !reflect.DeepEqual(frames, want) {
		t.Errorf("frames = %q, want %q", frames, want)
	}
}

func TestFrameSplitter_FrameSpansChunks(t *testing.T) {
	frames := feedAll("data: hel", "lo\n", "\ndata: next\n\n")
	want := []string{"data: hello", "data: next"}
	if !reflect.DeepEqual(frames, want) {
		t.Errorf("frames = %q, want %q", frames, want)
	}
}

func TestFrameSplitter_NoDoubleEmit(t *testing.T) {
	s := NewFrameSplitter()
	first := s.Feed("data: a\n\n")
	second := s.Feed("data: b\n\n")
	if len(first) != 1 || first[0] != "data: a" {
		t.Errorf("first feed = %q", first)
	}
	if len(second) != 1 || second[0] != "data: b" {
		t.Errorf("second feed = %q", second)
	}
}

func TestFrameSplitter_CRLFNormalization(t *testing.T) {
	frames := feedAll("data: a\r\n\r\ndata: b\r\n\r\n")
	want := []string{"data: a", "data: b"}
	if !reflect.DeepEqual(frames, want) {
		t.Errorf("frames = %q, want %q", frames, want)
	}
}

func TestFrameSplitter_CRLFSplitAcrossChunks(t *testing.T) {
	// The \r\n pairs straddle chunk boundaries. A naive per-chunk
	// replacement would see a bare \r followed by a bare \n and invent a
	// frame boundary inside the frame.
	frames := feedAll("data: a\r", "\n\r", "\ndata: b\r\n\r\n")
	want := []string{"data: a", "data: b"}
	if !reflect.DeepEqual(frames, want) {
		t.Errorf("frames = %q, want %q", frames, want)
	}
}

func TestFrameSplitter_BareCR(t *testing.T) {
	frames := feedAll("data: a\r\rdata: b\n\n")
	want := []string{"data: a", "data: b"}
	if !reflect.DeepEqual(frames, want) {
		t.Errorf("frames = %q, want %q", frames, want)
	}
}

func TestFrameSplitter_MultibyteRuneSplitAcrossChunks(t *testing.T) {
	// "é" is 0xC3 0xA9; the transport may hand over the two bytes in
	// separate reads. The splitter must pass raw bytes through without
	// decoding, or the rune arrives as replacement characters.
	frame := "data: {\"token\":\"café\"}"
	stream := frame + "\n\n"
	splitAt := strings.Index(stream, "é") + 1 // between the rune's bytes

	frames := feedAll(stream[:splitAt], stream[splitAt:])
	want := []string{frame}
	if !reflect.DeepEqual(frames, want) {
		t.Errorf("frames = %q, want %q", frames, want)
	}
}

func TestFrameSplitter_PreservesFrameWhitespace(t *testing.T) {
	// Plain-text token payloads carry significant spaces; the splitter
	// must not trim kept frames.
	frames := feedAll("event: token\ndata: X is \n\n")
	want := []string{"event: token\ndata: X is "}
	if !reflect.DeepEqual(frames, want) {
		t.Errorf("frames = %q, want %q", frames, want)
	}
}

func TestFrameSplitter_DiscardsWhitespaceFrames(t *testing.T) {
	frames := feedAll("\n\n   \n\ndata: real\n\n")
	want := []string{"data: real"}
	if !reflect.DeepEqual(frames, want) {
		t.Errorf("frames = %q, want %q", frames, want)
	}
}

func TestFrameSplitter_DiscardsCommentFrames(t *testing.T) {
	frames := feedAll(": keep-alive\n\ndata: real\n\n: another ping\n\n")
	want := []string{"data: real"}
	if !reflect.DeepEqual(frames, want) {
		t.Errorf("frames = %q, want %q", frames, want)
	}
}

func TestFrameSplitter_FlushEmitsUnterminatedTail(t *testing.T) {
	s := NewFrameSplitter()
	if frames := s.Feed("data: truncated"); len(frames) != 0 {
		t.Fatalf("unexpected frames before flush: %q", frames)
	}
	tail, ok := s.Flush()
	if !ok || tail != "data: truncated" {
		t.Errorf("Flush = %q, %v", tail, ok)
	}
}

func TestFrameSplitter_FlushEmpty(t *testing.T) {
	s := NewFrameSplitter()
	s.Feed("data: complete\n\n")
	if tail, ok := s.Flush(); ok {
		t.Errorf("Flush after complete frame = %q, expected nothing", tail)
	}
}

func TestFrameSplitter_ChunkingInvariance(t *testing.T) {
	// The same byte stream must yield the same frames no matter how the
	// transport slices it, including slices landing inside a multibyte
	// rune.
	stream := "event: token\r\ndata: {\"token\":\"Ein würziger Café\"}\r\n\r\n" +
		": ping\n\n" +
		"data: {\"contexts\":[]}\n\n" +
		"data: [DONE]\n\n"

	want := feedAll(stream)
	if len(want) == 0 {
		t.Fatal("reference split produced no frames")
	}

	for size := 1; size <= 7; size++ {
		var chunks []string
		for i := 0; i < len(stream); i += size {
			end := i + size
			if end > len(stream) {
				end = len(stream)
			}
			chunks = append(chunks, stream[i:end])
		}
		got := feedAll(chunks...)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("chunk size %d: frames = %q, want %q", size, got, want)
		}
	}
}
