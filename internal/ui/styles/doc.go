// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles defines the lipgloss styles and terminal capability
// detection shared by the TUI components.
package styles
