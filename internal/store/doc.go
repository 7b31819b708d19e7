// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides the authoritative conversation store: keyed lookup
// of Conversation aggregates with write-through persistence to a single
// serialized blob on disk. A corrupt or missing blob never crashes the store;
// it degrades to starting empty.
package store
