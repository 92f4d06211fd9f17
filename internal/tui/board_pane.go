package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/agentboard/internal/orchestrator"
	"github.com/aristath/agentboard/internal/scheduler"
)

// BoardPaneModel renders the kanban board: one column per status.
type BoardPaneModel struct {
	columns  [][]scheduler.Task // Indexed like scheduler.Statuses
	active   map[string]scheduler.Agent
	blocked  map[string]bool
	col      int
	row      int
	selected string // Task id kept across refreshes
	width    int
	height   int
	focused  bool
}

// NewBoardPaneModel creates an empty board.
func NewBoardPaneModel() BoardPaneModel {
	return BoardPaneModel{
		columns: make([][]scheduler.Task, len(scheduler.Statuses)),
	}
}

// SetSnapshot replaces the board contents, keeping the selected task if it
// still exists.
func (m *BoardPaneModel) SetSnapshot(snap orchestrator.Snapshot) {
	m.columns = make([][]scheduler.Task, len(scheduler.Statuses))
	for _, t := range snap.Tasks {
		for i, s := range scheduler.Statuses {
			if t.Status == s {
				m.columns[i] = append(m.columns[i], t)
			}
		}
	}
	m.active = snap.Active
	m.blocked = snap.Blocked

	if m.selected != "" {
		for c, column := range m.columns {
			for r, t := range column {
				if t.ID == m.selected {
					m.col, m.row = c, r
					return
				}
			}
		}
	}
	m.clampSelection()
}

// Selected returns the task under the cursor.
func (m BoardPaneModel) Selected() (scheduler.Task, bool) {
	if m.col < 0 || m.col >= len(m.columns) {
		return scheduler.Task{}, false
	}
	column := m.columns[m.col]
	if m.row < 0 || m.row >= len(column) {
		return scheduler.Task{}, false
	}
	return column[m.row], true
}

// Update handles cursor movement.
func (m BoardPaneModel) Update(msg tea.Msg) (BoardPaneModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if !m.focused {
			break
		}
		switch msg.String() {
		case KeyJ, KeyDown:
			m.row++
		case KeyK, KeyUp:
			m.row--
		case KeyL, KeyRight:
			m.col = (m.col + 1) % len(m.columns)
		case KeyH, KeyLeft:
			m.col = (m.col + len(m.columns) - 1) % len(m.columns)
		}
		m.clampSelection()
	}
	return m, nil
}

func (m *BoardPaneModel) clampSelection() {
	if m.col < 0 || m.col >= len(m.columns) {
		m.col = 0
	}
	n := len(m.columns[m.col])
	switch {
	case n == 0:
		m.row = 0
		m.selected = ""
		return
	case m.row >= n:
		m.row = n - 1
	case m.row < 0:
		m.row = 0
	}
	m.selected = m.columns[m.col][m.row].ID
}

// View renders the board.
func (m BoardPaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	colWidth := max(12, (m.width-4)/len(m.columns))
	cols := make([]string, len(m.columns))
	for i, status := range scheduler.Statuses {
		cols[i] = m.renderColumn(i, status, colWidth)
	}
	content := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	style := StyleUnfocusedBorder
	if m.focused {
		style = StyleFocusedBorder
	}
	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(content)
}

func (m BoardPaneModel) renderColumn(idx int, status scheduler.TaskStatus, width int) string {
	var b strings.Builder

	title := StatusStyle(status).Render(fmt.Sprintf("%s (%d)", status.Label(), len(m.columns[idx])))
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(width-1, lipgloss.Width(title))))
	b.WriteString("\n")

	for r, t := range m.columns[idx] {
		line := fmt.Sprintf("%s %s", m.taskIcon(t), truncate(t.Title, width-4))
		if agent, ok := m.active[t.ID]; ok {
			line += "\n   " + StyleStatusRunning.Render(string(agent))
		} else if t.Agent != "" {
			line += "\n   " + StyleStatusPending.Render(string(t.Agent))
		}
		if idx == m.col && r == m.row && m.focused {
			line = StyleSelected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(m.height - 2).
		Render(b.String())
}

// taskIcon marks active, blocked and finished tasks.
func (m BoardPaneModel) taskIcon(t scheduler.Task) string {
	switch {
	case m.active[t.ID] != "":
		return StyleStatusRunning.Render("●")
	case m.blocked[t.ID]:
		return StyleStatusBlocked.Render("⊘")
	case t.Status == scheduler.StatusDone:
		return StyleStatusComplete.Render("✓")
	default:
		return StyleStatusPending.Render("○")
	}
}

// SetSize updates the pane dimensions.
func (m *BoardPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused updates the focus state.
func (m *BoardPaneModel) SetFocused(focused bool) {
	m.focused = focused
}

func truncate(s string, width int) string {
	if width <= 3 || len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}
