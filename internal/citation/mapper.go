// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package citation maps inline [n] markers in assistant text back to the
// retrieved source documents they cite. Citation numbering is 1-based over
// the conversation's current contexts list: [1] refers to contexts[0].
package citation

import (
	"regexp"
	"strconv"

	"github.com/dossier-labs/dossier-tui/internal/model"
)

// markerPattern matches inline citation markers like [3].
var markerPattern = regexp.MustCompile(`\[(\d+)\]`)

// Ref is an inert reference to a cited document. Hover or click behavior
// (highlighting a context card, opening the source document) belongs to the
// caller.
type Ref struct {
	// Index is the 1-based citation number as it appeared in the text.
	Index int
	// DocumentID identifies the cited document.
	DocumentID string
}

// Segment is either plain text or a citation reference, never both.
type Segment struct {
	Text string
	Ref  *Ref
}

// Render scans text for citation markers and splits it into plain-text and
// citation segments. A marker [n] becomes a reference to contexts[n-1] when
// 1 <= n <= len(contexts); out-of-range or malformed markers stay literal
// text.
func Render(text string, contexts []model.DocumentContext) []Segment {
	var segments []Segment
	last := 0

	for _, loc := range markerPattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[0], loc[1]
		n, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil || n < 1 || n > len(contexts) {
			continue
		}

		if start > last {
			segments = append(segments, Segment{Text: text[last:start]})
		}
		segments = append(segments, Segment{
			Text: text[start:end],
			Ref:  &Ref{Index: n, DocumentID: contexts[n-1].DocumentID},
		})
		last = end
	}

	if last < len(text) {
		segments = append(segments, Segment{Text: text[last:]})
	}
	return segments
}
