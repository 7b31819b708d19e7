// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file contains the rendering logic for the chat surface: transcript,
// citation styling, the retrieved-sources panel, input line, and status bar.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/dossier-labs/dossier-tui/internal/citation"
	"github.com/dossier-labs/dossier-tui/internal/model"
	"github.com/dossier-labs/dossier-tui/internal/util"
)

// contextPanelWidth is the width of the retrieved-sources side panel.
const contextPanelWidth = 34

// newViewport creates the transcript viewport.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.SetContent("")
	return vp
}

// transcriptWidth is the viewport width after the sources panel is carved
// out.
func (m Model) transcriptWidth() int {
	w := m.width
	if m.showContextPanelVisible() {
		w -= contextPanelWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

// showContextPanelVisible reports whether the sources panel should render.
func (m Model) showContextPanelVisible() bool {
	return m.showContexts && m.conversation != nil && len(m.conversation.Contexts) > 0 && m.width > 70
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready || m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	strip := m.renderConversationStrip()
	transcript := m.viewport.View()

	main := transcript
	if m.showContextPanelVisible() {
		main = lipgloss.JoinHorizontal(lipgloss.Top, transcript, m.renderContextPanel())
	}

	input := m.renderInput()
	status := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, header, strip, main, input, status)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderTranscript renders the active conversation's messages.
func (m Model) renderTranscript() string {
	if m.conversation == nil || len(m.conversation.Messages) == 0 {
		return m.theme.HelpText.Render("Ask a question about the case documents to get started.")
	}

	var sb strings.Builder
	last := len(m.conversation.Messages) - 1

	for i, msg := range m.conversation.Messages {
		switch msg.Role {
		case model.RoleUser:
			sb.WriteString(m.theme.UserLabel.Render("You"))
			sb.WriteByte('\n')
			sb.WriteString(m.theme.UserText.Render(msg.Content))
		case model.RoleAssistant:
			sb.WriteString(m.theme.AssistantLabel.Render("Assistant"))
			sb.WriteByte('\n')
			sb.WriteString(m.renderAssistantContent(msg, i == last))
		}
		if i != last {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

// renderAssistantContent renders one assistant message. The trailing message
// of a streaming send shows raw partial text (plus a pending indicator while
// empty); finished messages get markdown formatting. Citation markers are
// styled in both paths.
func (m Model) renderAssistantContent(msg *model.Message, isLast bool) string {
	streaming := isLast && m.state == StateStreaming

	if streaming && msg.Content == "" {
		return m.spinner.View() + m.theme.PendingText.Render(" Searching documents...")
	}

	text := msg.Content
	if !streaming && m.renderer != nil {
		if rendered, err := m.renderer.Render(text); err == nil {
			text = strings.TrimRight(rendered, "\n")
		}
	}
	return m.styleCitations(text)
}

// styleCitations highlights the in-range citation markers of the current
// contexts list; out-of-range markers stay literal.
func (m Model) styleCitations(text string) string {
	var contexts []model.DocumentContext
	if m.conversation != nil {
		contexts = m.conversation.Contexts
	}

	var sb strings.Builder
	for _, seg := range citation.Render(text, contexts) {
		if seg.Ref != nil {
			sb.WriteString(m.theme.Citation.Render(seg.Text))
		} else {
			sb.WriteString(seg.Text)
		}
	}
	return sb.String()
}

// =============================================================================
// SOURCES PANEL
// =============================================================================

// renderContextPanel renders the retrieved documents backing the current
// answer, in the backend's ranking order (which defines citation numbers).
func (m Model) renderContextPanel() string {
	innerWidth := contextPanelWidth - 4

	var sb strings.Builder
	sb.WriteString(m.theme.ContextTitle.Render("Sources"))
	sb.WriteByte('\n')

	for i, doc := range m.conversation.Contexts {
		sb.WriteByte('\n')
		label := fmt.Sprintf("[%d] %s", i+1, doc.FileName)
		sb.WriteString(m.theme.ContextFile.Render(util.TruncateWidth(label, innerWidth)))
		sb.WriteByte('\n')
		sb.WriteString(m.theme.ContextScore.Render(fmt.Sprintf("score %.2f", doc.RelevanceScore)))
		sb.WriteByte('\n')
		snippet := util.CollapseWhitespace(doc.Snippet)
		sb.WriteString(m.theme.Snippet.Render(util.TruncateWidth(snippet, innerWidth)))
		sb.WriteByte('\n')
	}

	return m.theme.ContextPanel.Width(contextPanelWidth - 2).Render(sb.String())
}

// =============================================================================
// CHROME
// =============================================================================

// stripItemWidth bounds one conversation label in the strip.
const stripItemWidth = 18

// renderConversationStrip renders one labeled cell per conversation, most
// recent first, with the active one highlighted. Labels come from each
// conversation's first question.
func (m Model) renderConversationStrip() string {
	items := make([]string, 0, 4)
	for _, conv := range m.store.List() {
		label := conv.Preview()
		if label == "" {
			label = "new conversation"
		}
		label = util.TruncateWidth(label, stripItemWidth)

		style := m.theme.ListItem
		if m.conversation != nil && conv.ID == m.conversation.ID {
			style = m.theme.ListItemActive
		}
		item := style.Render(label)
		used := lipgloss.Width(strings.Join(items, ""))
		if used+lipgloss.Width(item) > m.width {
			break
		}
		items = append(items, item)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, items...)
}

func (m Model) renderHeader() string {
	title := "dossier"
	if m.conversation != nil && m.conversation.Title != "" {
		title = "dossier — " + util.TruncateWidth(m.conversation.Title, m.width-12)
	}
	return m.theme.Header.Width(m.width).Render(title)
}

func (m Model) renderInput() string {
	return m.theme.InputPrompt.Render("> ") + m.input.View()
}

func (m Model) renderStatusBar() string {
	var status string
	switch m.state {
	case StateStreaming:
		status = m.spinner.View() + " streaming — Esc to cancel"
	case StateError:
		status = m.theme.ErrorText.Render("error: "+m.lastError) + "  (edit and resend)"
	default:
		status = "ready"
	}

	help := m.theme.HelpText.Render("Enter send · C-n new · C-o next · C-x delete · C-s sources · C-c quit")
	gap := m.width - lipgloss.Width(status) - lipgloss.Width(help) - 2
	if gap < 1 {
		return m.theme.StatusBar.Width(m.width).Render(status)
	}
	return m.theme.StatusBar.Width(m.width).Render(status + strings.Repeat(" ", gap) + help)
}
