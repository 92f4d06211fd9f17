package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/agentboard/internal/activity"
	"github.com/aristath/agentboard/internal/config"
	"github.com/aristath/agentboard/internal/events"
	"github.com/aristath/agentboard/internal/orchestrator"
)

// Controller is the slice of the session the TUI drives. It only reads
// snapshots and requests mutations.
type Controller interface {
	Start()
	Stop()
	Snapshot() orchestrator.Snapshot
	UpdateTask(id string, u orchestrator.TaskUpdate) error
	LogSince(seq uint64) []activity.Entry
}

// PaneID identifies which pane is focused.
type PaneID int

const (
	PaneBoard PaneID = iota
	PaneLog
	paneCount
)

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	ctl          Controller
	boardPane    BoardPaneModel
	logPane      LogPaneModel
	progressPane ProgressPaneModel
	editPane     EditPaneModel
	settingsPane SettingsPaneModel
	focusedPane  PaneID
	eventSub     <-chan events.Event
	running      bool
	width        int
	height       int
	quitting     bool
	showSettings bool
}

// New creates a new TUI model.
// It subscribes to all events from the event bus using SubscribeAll.
func New(ctl Controller, eventBus *events.EventBus, projectName string, cfg *config.Config, globalPath, projectPath string) Model {
	m := Model{
		ctl:          ctl,
		boardPane:    NewBoardPaneModel(),
		logPane:      NewLogPaneModel(),
		progressPane: NewProgressPaneModel(projectName),
		editPane:     NewEditPaneModel(cfg.Scheduler.AgentRoster, ctl.UpdateTask),
		settingsPane: NewSettingsPaneModel(cfg, globalPath, projectPath),
		focusedPane:  PaneBoard,
		eventSub:     eventBus.SubscribeAll(256),
	}
	m.refresh()
	m.logPane.Append(ctl.LogSince(0)...)
	m.updateFocusStates()
	return m
}

// Init initializes the model and returns the initial command.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.eventSub)
}

// waitForEvent returns a command that waits for the next event from the event bus.
func waitForEvent(sub <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-sub
		if !ok {
			return nil // bus closed
		}
		return event
	}
}

// refresh pulls a fresh snapshot into the board and progress panes.
func (m *Model) refresh() {
	snap := m.ctl.Snapshot()
	m.running = snap.Running
	m.boardPane.SetSnapshot(snap)
	m.progressPane.SetRunState(snap.Running, snap.RepoURL)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Overlays take all keys (modal behavior)
		if m.editPane.IsVisible() {
			var cmd tea.Cmd
			m.editPane, cmd = m.editPane.Update(msg)
			if !m.editPane.IsVisible() {
				m.refresh()
			}
			return m, cmd
		}
		if m.showSettings {
			var cmd tea.Cmd
			m.settingsPane, cmd = m.settingsPane.Update(msg)
			if !m.settingsPane.IsVisible() {
				m.showSettings = false
			}
			return m, cmd
		}

		switch msg.String() {
		case KeyQuit, KeyCtrlC:
			m.quitting = true
			return m, tea.Quit

		case KeyToggle:
			if m.running {
				m.ctl.Stop()
			} else {
				m.ctl.Start()
			}
			m.refresh()

		case KeyEdit:
			if task, ok := m.boardPane.Selected(); ok {
				cmds = append(cmds, m.editPane.Open(task))
			}

		case KeySettings:
			m.showSettings = true
			m.settingsPane.SetVisible(true)
			cmds = append(cmds, m.settingsPane.Init())

		case KeyTab:
			m.focusedPane = (m.focusedPane + 1) % paneCount
			m.updateFocusStates()

		case KeyShiftTab:
			m.focusedPane = (m.focusedPane + paneCount - 1) % paneCount
			m.updateFocusStates()

		case KeyPane1:
			m.focusedPane = PaneBoard
			m.updateFocusStates()

		case KeyPane2:
			m.focusedPane = PaneLog
			m.updateFocusStates()

		default:
			// Delegate to focused pane
			var cmd tea.Cmd
			switch m.focusedPane {
			case PaneBoard:
				m.boardPane, cmd = m.boardPane.Update(msg)
			case PaneLog:
				m.logPane, cmd = m.logPane.Update(msg)
			}
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.computeLayout()
		m.editPane.SetSize(msg.Width, msg.Height)
		m.settingsPane.SetSize(msg.Width, msg.Height)

	case tickMsg:
		var cmd tea.Cmd
		m.logPane, cmd = m.logPane.Update(msg)
		cmds = append(cmds, cmd)

	case events.LogAppendedEvent:
		// Fill any gap left by dropped events from the log itself.
		if msg.Entry.Seq > m.logPane.LastSeq()+1 {
			cmds = append(cmds, m.logPane.Append(m.ctl.LogSince(m.logPane.LastSeq())...))
		} else {
			cmds = append(cmds, m.logPane.Append(msg.Entry))
		}
		cmds = append(cmds, waitForEvent(m.eventSub))

	case events.BoardProgressEvent:
		m.progressPane, _ = m.progressPane.Update(msg)
		m.refresh()
		cmds = append(cmds, waitForEvent(m.eventSub))

	case events.Event:
		m.refresh()
		cmds = append(cmds, waitForEvent(m.eventSub))

	default:
		// Forward anything else (cursor blinks, form internals) to an open overlay.
		var cmd tea.Cmd
		if m.editPane.IsVisible() {
			m.editPane, cmd = m.editPane.Update(msg)
		} else if m.showSettings {
			m.settingsPane, cmd = m.settingsPane.Update(msg)
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if m.editPane.IsVisible() {
		return m.editPane.View()
	}
	if m.showSettings {
		return m.settingsPane.View()
	}

	top := lipgloss.JoinVertical(lipgloss.Left, m.progressPane.View(), m.boardPane.View())
	return lipgloss.JoinVertical(lipgloss.Left, top, m.logPane.View(), HelpView(m.running))
}

// computeLayout calculates pane dimensions and updates all child models.
func (m *Model) computeLayout() {
	availableHeight := m.height - 1 // reserve 1 line for help bar
	progressHeight := 6
	boardHeight := ((availableHeight - progressHeight) * 60) / 100
	logHeight := availableHeight - progressHeight - boardHeight

	m.progressPane.SetSize(m.width, progressHeight)
	m.boardPane.SetSize(m.width, boardHeight)
	m.logPane.SetSize(m.width, logHeight)

	m.updateFocusStates()
}

// updateFocusStates updates the focus state of all panes.
func (m *Model) updateFocusStates() {
	m.boardPane.SetFocused(m.focusedPane == PaneBoard)
	m.logPane.SetFocused(m.focusedPane == PaneLog)
}
