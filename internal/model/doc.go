// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for assistant conversations:
// the Conversation aggregate, its ordered messages, and the retrieved
// document contexts that back inline citations.
package model
