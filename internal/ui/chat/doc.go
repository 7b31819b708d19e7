// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat surface for dossier-tui.
//
// The package is a thin binding over the streaming engine: all transcript
// state lives in the conversation store, updates arrive as engine events
// forwarded into the Bubble Tea loop, and rendering maps the stored
// conversation to the terminal with markdown formatting and styled citation
// markers.
package chat
