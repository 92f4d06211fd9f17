package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/agentboard/internal/events"
)

// ProgressPaneModel shows per-column counts and the run state.
type ProgressPaneModel struct {
	progress events.BoardProgressEvent
	running  bool
	repoURL  string
	project  string
	width    int
	height   int
	focused  bool
}

// NewProgressPaneModel creates a new progress pane.
func NewProgressPaneModel(project string) ProgressPaneModel {
	return ProgressPaneModel{project: project}
}

// Update handles messages for the progress pane.
func (m ProgressPaneModel) Update(msg tea.Msg) (ProgressPaneModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case events.BoardProgressEvent:
		m.progress = msg
	}

	return m, nil
}

// SetRunState records whether the scheduler runs and where the repo lives.
func (m *ProgressPaneModel) SetRunState(running bool, repoURL string) {
	m.running = running
	m.repoURL = repoURL
}

// View renders the progress pane.
func (m ProgressPaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	title := StyleTitle.Render(m.project)
	b.WriteString(title)
	b.WriteString("\n")

	state := StyleStatusPending.Render("stopped")
	if m.running {
		state = StyleStatusRunning.Render("running")
	}
	fmt.Fprintf(&b, "Agents:  %s (%d active)\n", state, m.progress.Active)
	if m.repoURL != "" {
		fmt.Fprintf(&b, "Repo:    %s\n", m.repoURL)
	}

	p := m.progress
	fmt.Fprintf(&b, "Backlog: %s  In Progress: %s  Review: %s  Done: %s  Blocked: %s\n",
		StyleStatusPending.Render(fmt.Sprint(p.Backlog)),
		StyleStatusRunning.Render(fmt.Sprint(p.InProgress)),
		StyleStatusReview.Render(fmt.Sprint(p.NeedsReview)),
		StyleStatusComplete.Render(fmt.Sprint(p.Done)),
		StyleStatusBlocked.Render(fmt.Sprint(p.Blocked)),
	)

	// Progress bar
	if p.Total > 0 {
		barWidth := min(m.width-16, 40)
		doneWidth := (p.Done * barWidth) / p.Total
		reviewWidth := (p.NeedsReview * barWidth) / p.Total
		runningWidth := (p.InProgress * barWidth) / p.Total
		pendingWidth := barWidth - doneWidth - reviewWidth - runningWidth

		bar := StyleStatusComplete.Render(strings.Repeat("=", max(0, doneWidth)))
		bar += StyleStatusReview.Render(strings.Repeat("~", max(0, reviewWidth)))
		bar += StyleStatusRunning.Render(strings.Repeat("-", max(0, runningWidth)))
		bar += StyleStatusPending.Render(strings.Repeat(".", max(0, pendingWidth)))

		fmt.Fprintf(&b, "[%s]  %d/%d\n", bar, p.Done, p.Total)
	}

	style := StyleUnfocusedBorder
	if m.focused {
		style = StyleFocusedBorder
	}

	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(lipgloss.NewStyle().MaxWidth(m.width - 2).Render(b.String()))
}

// SetSize updates the pane dimensions.
func (m *ProgressPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused updates the focus state.
func (m *ProgressPaneModel) SetFocused(focused bool) {
	m.focused = focused
}
