// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine is the conversational streaming engine behind the chat
// assistant. It owns the single in-flight stream session, folds the
// backend's canonical updates into the conversation transcript through the
// store's write path, and guarantees that a new send supersedes a previous
// one: every asynchronous continuation is guarded by a monotonic request ID
// so stale results never touch shared state.
package engine
