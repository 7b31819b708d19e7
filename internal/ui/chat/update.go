// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dossier-labs/dossier-tui/internal/engine"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamEventMsg:
		return m.handleStreamEvent(msg.Event)

	case NewConversationMsg:
		return m.newConversation()

	case SwitchConversationMsg:
		return m.switchConversation(msg.ID)

	case DeleteConversationMsg:
		return m.deleteByID(msg.ID)

	case ErrorMsg:
		m.state = StateError
		m.lastError = msg.Message
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.engine.CancelActive()
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Cancel):
		if m.state == StateStreaming {
			m.engine.CancelActive()
			m.state = StateReady
		}
		m.lastError = ""
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		return m.submit(text)

	case key.Matches(msg, m.keyMap.NewConv):
		return m.newConversation()

	case key.Matches(msg, m.keyMap.NextConv):
		return m.nextConversation()

	case key.Matches(msg, m.keyMap.DeleteConv):
		return m.deleteConversation()

	case key.Matches(msg, m.keyMap.Contexts):
		m.showContexts = !m.showContexts
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts a new send. An in-flight send is superseded by the engine.
func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	if _, err := m.engine.Send(m.conversation.ID, text, m.sink); err != nil {
		m.state = StateError
		m.lastError = err.Error()
		return m, nil
	}

	m.state = StateStreaming
	m.lastError = ""
	m.input.Reset()
	m.refresh()
	m.viewport.GotoBottom()
	return m, nil
}

// =============================================================================
// STREAM EVENTS
// =============================================================================

func (m Model) handleStreamEvent(ev engine.Event) (tea.Model, tea.Cmd) {
	// Events for other conversations already mutated the store; only the
	// surface state machine is scoped to the visible conversation.
	switch ev.Kind {
	case engine.EventDone:
		if ev.ConversationID == m.conversation.ID {
			m.state = StateReady
		}
	case engine.EventError:
		if ev.ConversationID == m.conversation.ID {
			m.state = StateError
			m.lastError = ev.Err
			// The failed send's text comes back for edit-and-resend,
			// unless the user already started typing something else.
			if ev.Input != "" && strings.TrimSpace(m.input.Value()) == "" {
				m.input.SetValue(ev.Input)
				m.input.CursorEnd()
			}
		}
	}

	m.refresh()
	if m.state == StateStreaming {
		m.viewport.GotoBottom()
	}
	return m, m.waitForEvent()
}

// =============================================================================
// CONVERSATION MANAGEMENT
// =============================================================================

// newConversation cancels any in-flight send and opens a fresh conversation.
func (m Model) newConversation() (tea.Model, tea.Cmd) {
	m.engine.CancelActive()
	conv, err := m.store.Create()
	if err != nil {
		m.state = StateError
		m.lastError = err.Error()
		return m, nil
	}
	m.conversation = conv
	m.state = StateReady
	m.lastError = ""
	m.refresh()
	return m, nil
}

// nextConversation cycles to the next conversation in recency order.
// Switching away supersedes an in-flight send.
func (m Model) nextConversation() (tea.Model, tea.Cmd) {
	convs := m.store.List()
	if len(convs) < 2 {
		return m, nil
	}

	m.engine.CancelActive()
	m.state = StateReady

	for i, conv := range convs {
		if conv.ID == m.conversation.ID {
			m.conversation = convs[(i+1)%len(convs)]
			break
		}
	}
	m.refresh()
	return m, nil
}

// switchConversation makes the conversation with the given ID active.
// Switching away supersedes an in-flight send.
func (m Model) switchConversation(id string) (tea.Model, tea.Cmd) {
	conv, err := m.store.Get(id)
	if err != nil {
		m.state = StateError
		m.lastError = err.Error()
		return m, nil
	}

	if conv.ID != m.conversation.ID {
		m.engine.CancelActive()
		m.state = StateReady
		m.lastError = ""
	}
	m.conversation = conv
	m.refresh()
	return m, nil
}

// deleteByID deletes a conversation that is not necessarily the active one.
func (m Model) deleteByID(id string) (tea.Model, tea.Cmd) {
	if id == m.conversation.ID {
		return m.deleteConversation()
	}
	if err := m.engine.DeleteConversation(id); err != nil {
		m.state = StateError
		m.lastError = err.Error()
		return m, nil
	}
	m.refresh()
	return m, nil
}

// deleteConversation removes the active conversation and moves to the most
// recent remaining one, creating a fresh one if none is left.
func (m Model) deleteConversation() (tea.Model, tea.Cmd) {
	id := m.conversation.ID
	if err := m.engine.DeleteConversation(id); err != nil {
		m.state = StateError
		m.lastError = err.Error()
		return m, nil
	}

	convs := m.store.List()
	if len(convs) == 0 {
		conv, err := m.store.Create()
		if err != nil {
			m.state = StateError
			m.lastError = err.Error()
			return m, nil
		}
		convs = append(convs, conv)
	}
	m.conversation = convs[0]
	m.state = StateReady
	m.lastError = ""
	m.refresh()
	return m, nil
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	// header (1) + conversation strip (1) + input (1) + status (1)
	viewportHeight := m.height - 4
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	if !m.ready {
		m.viewport = newViewport(m.width, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.transcriptWidth()
		m.viewport.Height = viewportHeight
	}

	m.input.Width = m.width - 4
	m.refresh()
	return m
}

// refresh re-reads the active conversation from the store and repaints the
// transcript viewport.
func (m *Model) refresh() {
	if m.conversation != nil {
		if conv, err := m.store.Get(m.conversation.ID); err == nil {
			m.conversation = conv
		}
	}
	if m.ready {
		m.viewport.Width = m.transcriptWidth()
		m.viewport.SetContent(m.renderTranscript())
	}
}
