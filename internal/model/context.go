// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// DocumentContext is one retrieved source document backing an answer.
// The position within a conversation's Contexts slice defines the 1-based
// citation numbering: marker [1] refers to Contexts[0]. Ordering comes from
// the backend's ranking and is never re-sorted client-side.
type DocumentContext struct {
	DocumentID     string  `json:"document_id"`
	FileName       string  `json:"file_name"`
	Snippet        string  `json:"snippet"`
	RelevanceScore float64 `json:"relevance_score"`
}
