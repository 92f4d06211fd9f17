package events

import (
	"time"

	"github.com/aristath/agentboard/internal/activity"
	"github.com/aristath/agentboard/internal/scheduler"
)

// Event is the base interface for all events.
type Event interface {
	EventType() string
	TaskID() string
}

// Topic constants
const (
	TopicTask    = "task"
	TopicAgent   = "agent"
	TopicLog     = "log"
	TopicSession = "session"
	TopicBoard   = "board"
)

// Event type constants
const (
	EventTypeTaskTransitioned = "task.transitioned"
	EventTypeTaskUpdated      = "task.updated"
	EventTypeAgentAssigned    = "agent.assigned"
	EventTypeAgentReleased    = "agent.released"
	EventTypeLogAppended      = "log.appended"
	EventTypeSessionStarted   = "session.started"
	EventTypeSessionStopped   = "session.stopped"
	EventTypeFileChanged      = "session.file_changed"
	EventTypeBoardProgress    = "board.progress"
)

// TaskTransitionedEvent is published when the scheduler advances a task.
type TaskTransitionedEvent struct {
	ID        string
	From      scheduler.TaskStatus
	To        scheduler.TaskStatus
	Agent     scheduler.Agent
	Timestamp time.Time
}

func (e TaskTransitionedEvent) EventType() string { return EventTypeTaskTransitioned }
func (e TaskTransitionedEvent) TaskID() string    { return e.ID }

// TaskUpdatedEvent is published after a manual edit or a new communication.
type TaskUpdatedEvent struct {
	ID        string
	Manual    bool
	Timestamp time.Time
}

func (e TaskUpdatedEvent) EventType() string { return EventTypeTaskUpdated }
func (e TaskUpdatedEvent) TaskID() string    { return e.ID }

// AgentAssignedEvent is published when an agent is bound to a task.
type AgentAssignedEvent struct {
	ID        string
	Agent     scheduler.Agent
	Phase     scheduler.Phase
	Timestamp time.Time
}

func (e AgentAssignedEvent) EventType() string { return EventTypeAgentAssigned }
func (e AgentAssignedEvent) TaskID() string    { return e.ID }

// AgentReleasedEvent is published when an activation ends, whether or not
// its transition was applied.
type AgentReleasedEvent struct {
	ID        string
	Agent     scheduler.Agent
	Applied   bool
	Duration  time.Duration
	Timestamp time.Time
}

func (e AgentReleasedEvent) EventType() string { return EventTypeAgentReleased }
func (e AgentReleasedEvent) TaskID() string    { return e.ID }

// LogAppendedEvent carries each new activity entry for streaming display.
type LogAppendedEvent struct {
	Entry activity.Entry
}

func (e LogAppendedEvent) EventType() string { return EventTypeLogAppended }
func (e LogAppendedEvent) TaskID() string    { return e.Entry.TaskID }

// SessionStartedEvent is published when the scheduler loop starts.
type SessionStartedEvent struct {
	SessionID string
	Timestamp time.Time
}

func (e SessionStartedEvent) EventType() string { return EventTypeSessionStarted }
func (e SessionStartedEvent) TaskID() string    { return "" }

// SessionStoppedEvent is published when the scheduler loop stops.
type SessionStoppedEvent struct {
	SessionID string
	Timestamp time.Time
}

func (e SessionStoppedEvent) EventType() string { return EventTypeSessionStopped }
func (e SessionStoppedEvent) TaskID() string    { return "" }

// FileChangedEvent is published for every file-edit pass-through.
type FileChangedEvent struct {
	Path      string
	Found     bool
	Timestamp time.Time
}

func (e FileChangedEvent) EventType() string { return EventTypeFileChanged }
func (e FileChangedEvent) TaskID() string    { return "" }

// BoardProgressEvent is published after every mutation with per-column counts.
type BoardProgressEvent struct {
	Total       int
	Backlog     int
	InProgress  int
	NeedsReview int
	Done        int
	Active      int
	Blocked     int
	Timestamp   time.Time
}

func (e BoardProgressEvent) EventType() string { return EventTypeBoardProgress }
func (e BoardProgressEvent) TaskID() string    { return "" }
