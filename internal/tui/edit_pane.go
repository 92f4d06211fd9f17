package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/agentboard/internal/orchestrator"
	"github.com/aristath/agentboard/internal/scheduler"
)

// UpdateFunc applies a manual task edit.
type UpdateFunc func(id string, u orchestrator.TaskUpdate) error

// editFields holds form bindings. It lives on the heap so the form's
// pointers stay valid while the pane is copied by value.
type editFields struct {
	title       string
	description string
	status      scheduler.TaskStatus
	agent       scheduler.Agent
	deps        string
}

// EditPaneModel is the manual task edit overlay.
type EditPaneModel struct {
	form    *huh.Form
	fields  *editFields
	orig    scheduler.Task
	roster  []scheduler.Agent
	apply   UpdateFunc
	width   int
	height  int
	visible bool
	err     error
}

// NewEditPaneModel creates a hidden edit pane.
func NewEditPaneModel(roster []scheduler.Agent, apply UpdateFunc) EditPaneModel {
	return EditPaneModel{roster: roster, apply: apply, fields: &editFields{}}
}

// Open shows the form for task t.
func (m *EditPaneModel) Open(t scheduler.Task) tea.Cmd {
	m.orig = t
	m.fields = &editFields{
		title:       t.Title,
		description: t.Description,
		status:      t.Status,
		agent:       t.Agent,
		deps:        strings.Join(t.Dependencies, ", "),
	}
	m.visible = true
	m.err = nil
	m.buildForm()
	return m.form.Init()
}

func (m *EditPaneModel) buildForm() {
	statusOpts := make([]huh.Option[scheduler.TaskStatus], 0, len(scheduler.Statuses))
	for _, s := range scheduler.Statuses {
		statusOpts = append(statusOpts, huh.NewOption(s.Label(), s))
	}
	agentOpts := []huh.Option[scheduler.Agent]{huh.NewOption("(none)", scheduler.Agent(""))}
	for _, a := range m.roster {
		agentOpts = append(agentOpts, huh.NewOption(string(a), a))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[scheduler.TaskStatus]().
				Key("status").
				Title("Status").
				Options(statusOpts...).
				Value(&m.fields.status),

			huh.NewSelect[scheduler.Agent]().
				Key("agent").
				Title("Agent").
				Options(agentOpts...).
				Value(&m.fields.agent),
		).Title(m.orig.ID),

		huh.NewGroup(
			huh.NewInput().
				Key("title").
				Title("Title").
				Value(&m.fields.title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("title is required")
					}
					return nil
				}),

			huh.NewText().
				Key("description").
				Title("Description").
				Value(&m.fields.description),

			huh.NewInput().
				Key("deps").
				Title("Dependencies").
				Placeholder("task-1, task-2").
				Value(&m.fields.deps),
		).Title("Details"),
	)
	if m.width > 0 {
		m.form = m.form.WithWidth(m.width - 8).WithHeight(m.height - 8)
	}
}

// update builds the partial edit from the changed fields only.
func (m EditPaneModel) update() orchestrator.TaskUpdate {
	var u orchestrator.TaskUpdate
	f := m.fields
	if f.status != m.orig.Status {
		u.Status = &f.status
	}
	if f.agent != m.orig.Agent {
		u.Agent = &f.agent
	}
	if title := strings.TrimSpace(f.title); title != m.orig.Title {
		u.Title = &title
	}
	if f.description != m.orig.Description {
		u.Description = &f.description
	}
	deps := splitList(f.deps)
	if strings.Join(deps, ",") != strings.Join(m.orig.Dependencies, ",") {
		u.Dependencies = &deps
	}
	return u
}

// Update handles messages for the edit pane.
func (m EditPaneModel) Update(msg tea.Msg) (EditPaneModel, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == KeyEsc {
		m.visible = false
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		if err := m.apply(m.orig.ID, m.update()); err != nil {
			// Stay open with the error and a fresh form.
			m.err = err
			m.buildForm()
			return m, m.form.Init()
		}
		m.visible = false
	}

	return m, cmd
}

// View renders the edit pane.
func (m EditPaneModel) View() string {
	if !m.visible {
		return ""
	}

	content := m.form.View()
	if m.err != nil {
		content = lipgloss.JoinVertical(lipgloss.Left,
			StyleStatusBlocked.Render(fmt.Sprintf("✗ %v", m.err)),
			content,
		)
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(m.width - 4).
		Height(m.height - 4)

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("62")).
		Render("✎ Edit " + m.orig.Title)

	return lipgloss.JoinVertical(lipgloss.Left, title, style.Render(content))
}

// SetSize updates the dimensions of the edit pane.
func (m *EditPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	if m.form != nil {
		m.form = m.form.WithWidth(w - 8).WithHeight(h - 8)
	}
}

// IsVisible returns whether the edit pane is open.
func (m EditPaneModel) IsVisible() bool {
	return m.visible
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
