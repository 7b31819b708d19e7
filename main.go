// dossier TUI - terminal chat assistant for an investigative-document workspace.
//
// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dossier-labs/dossier-tui/internal/config"
	"github.com/dossier-labs/dossier-tui/internal/engine"
	"github.com/dossier-labs/dossier-tui/internal/ragapi"
	"github.com/dossier-labs/dossier-tui/internal/store"
	"github.com/dossier-labs/dossier-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("dossier %s (%s)\n", Version, GitCommit)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	storePath := cfg.Storage.Path
	if storePath == "" {
		storePath, err = store.DefaultPath()
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
	}

	st, err := store.Open(storePath)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	if cfg.Storage.MaxConversations > 0 {
		st.MaxConversations = cfg.Storage.MaxConversations
	}

	client := ragapi.NewClient(cfg.Backend.BaseURL)
	eng := engine.New(st, client)

	p := tea.NewProgram(
		chat.New(cfg, st, eng),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		log.Fatalf("tui: %v", err)
	}
}
