package tui

import (
	"fmt"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/agentboard/internal/config"
)

// settingsFields holds form bindings as strings for Huh.
type settingsFields struct {
	saveTarget     string
	budget         string
	pollInterval   string
	buildDuration  string
	reviewDuration string
	jitter         string
	randomize      bool
}

// SettingsPaneModel manages the settings form overlay. Saved settings apply
// to the next session.
type SettingsPaneModel struct {
	form        *huh.Form
	fields      *settingsFields
	config      *config.Config
	globalPath  string
	projectPath string
	width       int
	height      int
	visible     bool
	saved       bool
	err         error
}

// NewSettingsPaneModel creates a new settings pane.
func NewSettingsPaneModel(cfg *config.Config, globalPath, projectPath string) SettingsPaneModel {
	m := SettingsPaneModel{
		config:      cfg,
		globalPath:  globalPath,
		projectPath: projectPath,
	}
	m.buildForm()
	return m
}

// buildForm constructs the Huh form from the current config.
func (m *SettingsPaneModel) buildForm() {
	s := m.config.Scheduler
	m.fields = &settingsFields{
		saveTarget:     "global",
		budget:         strconv.Itoa(s.ConcurrencyBudget),
		pollInterval:   s.PollInterval.String(),
		buildDuration:  s.BuildDuration.String(),
		reviewDuration: s.ReviewDuration.String(),
		jitter:         s.Jitter.String(),
		randomize:      s.Randomize,
	}
	f := m.fields

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("saveTarget").
				Title("Save To").
				Options(
					huh.NewOption(fmt.Sprintf("Global (%s)", m.globalPath), "global"),
					huh.NewOption(fmt.Sprintf("Project (%s)", m.projectPath), "project"),
				).
				Value(&f.saveTarget),
		).Title("Save Target"),

		huh.NewGroup(
			huh.NewInput().
				Key("budget").
				Title("Concurrency Budget").
				Value(&f.budget).
				Validate(validatePositiveInt),

			huh.NewConfirm().
				Key("randomize").
				Title("Randomize selection and agents").
				Value(&f.randomize),
		).Title("Scheduling Policy"),

		huh.NewGroup(
			huh.NewInput().
				Key("pollInterval").
				Title("Poll Interval").
				Value(&f.pollInterval).
				Validate(validateDuration),

			huh.NewInput().
				Key("buildDuration").
				Title("Build Duration").
				Value(&f.buildDuration).
				Validate(validateDuration),

			huh.NewInput().
				Key("reviewDuration").
				Title("Review Duration").
				Value(&f.reviewDuration).
				Validate(validateDuration),

			huh.NewInput().
				Key("jitter").
				Title("Jitter").
				Value(&f.jitter).
				Validate(validateDuration),
		).Title("Timing"),
	)
	if m.width > 0 {
		m.form = m.form.WithWidth(m.width - 8).WithHeight(m.height - 8)
	}
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if d < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

// Init initializes the settings pane.
func (m SettingsPaneModel) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the settings pane.
func (m SettingsPaneModel) Update(msg tea.Msg) (SettingsPaneModel, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == KeyEsc {
		// Cancel without saving
		m.visible = false
		m.saved = false
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		next, err := m.applyForm()
		if err == nil {
			targetPath := m.globalPath
			if m.fields.saveTarget == "project" {
				targetPath = m.projectPath
			}
			err = config.Save(next, targetPath)
		}
		if err != nil {
			m.err = err
			m.saved = false
		} else {
			*m.config = *next
			m.saved = true
			m.err = nil
			m.visible = false
		}
	}

	return m, cmd
}

// applyForm returns a copy of the config with the form values applied.
func (m SettingsPaneModel) applyForm() (*config.Config, error) {
	next := *m.config
	next.Scheduler.AgentRoster = append(next.Scheduler.AgentRoster[:0:0], m.config.Scheduler.AgentRoster...)
	f := m.fields

	budget, err := strconv.Atoi(f.budget)
	if err != nil {
		return nil, fmt.Errorf("concurrency budget: %w", err)
	}
	next.Scheduler.ConcurrencyBudget = budget
	next.Scheduler.Randomize = f.randomize

	durations := []struct {
		text string
		dst  *config.Duration
	}{
		{f.pollInterval, &next.Scheduler.PollInterval},
		{f.buildDuration, &next.Scheduler.BuildDuration},
		{f.reviewDuration, &next.Scheduler.ReviewDuration},
		{f.jitter, &next.Scheduler.Jitter},
	}
	for _, d := range durations {
		if err := d.dst.UnmarshalText([]byte(d.text)); err != nil {
			return nil, err
		}
	}

	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

// View renders the settings pane.
func (m SettingsPaneModel) View() string {
	if !m.visible {
		return ""
	}

	var content string
	if m.err != nil {
		content = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true).
			Render(fmt.Sprintf("✗ Error saving: %v", m.err))
	} else {
		content = m.form.View()
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
		Render("⚙ Settings (applies to the next session)")

	return lipgloss.JoinVertical(lipgloss.Left, title, style.Render(content))
}

// SetSize updates the dimensions of the settings pane.
func (m *SettingsPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	if m.form != nil {
		m.form = m.form.WithWidth(w - 8).WithHeight(h - 8)
	}
}

// SetVisible shows or hides the settings pane.
func (m *SettingsPaneModel) SetVisible(v bool) {
	m.visible = v
	m.saved = false
	m.err = nil

	// Rebuild form to reset state
	if v {
		m.buildForm()
	}
}

// IsVisible returns whether the settings pane is currently visible.
func (m SettingsPaneModel) IsVisible() bool {
	return m.visible
}

// Saved reports whether the last form submission was written to disk.
func (m SettingsPaneModel) Saved() bool {
	return m.saved
}
