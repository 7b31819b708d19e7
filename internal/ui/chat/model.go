// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/dossier-labs/dossier-tui/internal/config"
	"github.com/dossier-labs/dossier-tui/internal/engine"
	"github.com/dossier-labs/dossier-tui/internal/model"
	"github.com/dossier-labs/dossier-tui/internal/store"
	"github.com/dossier-labs/dossier-tui/internal/ui/styles"
)

// eventBuffer sizes the engine-to-UI event channel. Events are refresh
// triggers, not state; the store is authoritative.
const eventBuffer = 256

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat surface.
type State int

const (
	StateReady     State = iota // Ready for input
	StateStreaming              // Receiving a streaming answer
	StateError                  // Showing a retryable error
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat surface.
type Model struct {
	// Wiring
	cfg    *config.Config
	store  *store.Store
	engine *engine.Engine
	theme  *styles.Theme

	// Active conversation
	conversation *model.Conversation

	// Engine event subscription
	events chan engine.Event

	// State
	state        State
	lastError    string
	showContexts bool

	// Dimensions
	width  int
	height int
	ready  bool

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap

	// Markdown rendering
	renderer *glamour.TermRenderer
}

// New creates the chat surface over the given store and engine. The active
// conversation starts as the most recently updated one; the store guarantees
// at least one exists.
func New(cfg *config.Config, st *store.Store, eng *engine.Engine) Model {
	input := textinput.New()
	input.Placeholder = "Ask about the documents..."
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	wrap := cfg.UI.WordWrap
	if wrap <= 0 {
		wrap = 80
	}
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)

	m := Model{
		cfg:          cfg,
		store:        st,
		engine:       eng,
		theme:        styles.NewTheme(),
		events:       make(chan engine.Event, eventBuffer),
		state:        StateReady,
		showContexts: cfg.UI.ShowContexts,
		input:        input,
		spinner:      sp,
		keyMap:       DefaultKeyMap(),
		renderer:     renderer,
	}

	if convs := st.List(); len(convs) > 0 {
		m.conversation = convs[0]
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.waitForEvent(),
	)
}

// sink forwards engine events into the Bubble Tea loop. Invoked from the
// stream goroutine.
func (m Model) sink(ev engine.Event) {
	m.events <- ev
}

// waitForEvent subscribes to the next engine event.
func (m Model) waitForEvent() tea.Cmd {
	ch := m.events
	return func() tea.Msg {
		return StreamEventMsg{Event: <-ch}
	}
}
