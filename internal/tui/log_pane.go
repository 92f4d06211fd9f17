package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aristath/agentboard/internal/activity"
)

// LogPaneModel shows the activity log in a scrollable viewport.
type LogPaneModel struct {
	lines     []string
	lastSeq   uint64
	follow    bool // Stick to the bottom while new lines arrive
	viewport  viewport.Model
	width     int
	height    int
	focused   bool
	updateTag int // for debouncing
}

// NewLogPaneModel creates an empty log pane.
func NewLogPaneModel() LogPaneModel {
	return LogPaneModel{
		follow:   true,
		viewport: viewport.New(0, 0),
	}
}

// tickMsg is used for debouncing viewport updates.
type tickMsg struct {
	tag int
}

// Append adds entries the pane has not seen yet and returns a debounced
// refresh command.
func (m *LogPaneModel) Append(entries ...activity.Entry) tea.Cmd {
	added := false
	for _, e := range entries {
		if e.Seq <= m.lastSeq {
			continue
		}
		m.lines = append(m.lines, e.Line())
		m.lastSeq = e.Seq
		added = true
	}
	if !added {
		return nil
	}
	m.updateTag++
	tag := m.updateTag
	return tea.Tick(50*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{tag: tag}
	})
}

// LastSeq returns the sequence number of the newest line shown.
func (m LogPaneModel) LastSeq() uint64 { return m.lastSeq }

// Update handles scrolling and debounced refreshes.
func (m LogPaneModel) Update(msg tea.Msg) (LogPaneModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewport()

	case tea.KeyMsg:
		if !m.focused {
			break
		}
		// The viewport keymap already covers j/k and paging.
		m.viewport, cmd = m.viewport.Update(msg)
		m.follow = m.viewport.AtBottom()

	case tickMsg:
		// Only update if this tick matches the current tag (debouncing)
		if msg.tag == m.updateTag {
			m.updateViewportContent()
		}
	}

	return m, cmd
}

func (m *LogPaneModel) updateViewportContent() {
	if len(m.lines) == 0 {
		m.viewport.SetContent("Waiting for activity...")
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	if m.follow {
		m.viewport.GotoBottom()
	}
}

// View renders the log pane.
func (m LogPaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	content := StyleTitle.Render("Activity") + "\n" + m.viewport.View()

	style := StyleUnfocusedBorder
	if m.focused {
		style = StyleFocusedBorder
	}
	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(content)
}

// resizeViewport resizes the viewport based on pane dimensions.
func (m *LogPaneModel) resizeViewport() {
	m.viewport.Width = max(10, m.width-4)
	m.viewport.Height = max(3, m.height-3) // borders and title
	m.updateViewportContent()
}

// SetSize updates the pane dimensions.
func (m *LogPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.resizeViewport()
}

// SetFocused updates the focus state.
func (m *LogPaneModel) SetFocused(focused bool) {
	m.focused = focused
}
