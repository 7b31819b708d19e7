// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for dossier-tui: atomic file
// writes for crash-safe persistence and Unicode-aware string truncation for
// titles and previews.
package util
