package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus represents the lifecycle position of a task.
type TaskStatus string

const (
	StatusBacklog     TaskStatus = "backlog"      // Not started
	StatusInProgress  TaskStatus = "in_progress"  // Build phase running
	StatusNeedsReview TaskStatus = "needs_review" // Work produced, awaiting review
	StatusDone        TaskStatus = "done"         // Terminal
)

// Statuses lists every status in lifecycle order.
var Statuses = []TaskStatus{StatusBacklog, StatusInProgress, StatusNeedsReview, StatusDone}

// Label returns the human-readable board column name.
func (s TaskStatus) Label() string {
	switch s {
	case StatusBacklog:
		return "Backlog"
	case StatusInProgress:
		return "In Progress"
	case StatusNeedsReview:
		return "Needs Review / Debugging"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

// Valid reports whether s is one of the four lifecycle states.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusBacklog, StatusInProgress, StatusNeedsReview, StatusDone:
		return true
	}
	return false
}

// ParseStatus accepts either the machine value or the label, case-insensitively.
// An empty string parses as Backlog.
func ParseStatus(s string) (TaskStatus, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", " ", "_", " ").Replace(norm)
	switch norm {
	case "", "backlog":
		return StatusBacklog, nil
	case "in progress", "inprogress":
		return StatusInProgress, nil
	case "needs review", "needsreview", "needs review / debugging", "review":
		return StatusNeedsReview, nil
	case "done":
		return StatusDone, nil
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

// UnmarshalText lets plan files use either form of a status.
func (s *TaskStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Agent is a named worker role. It carries no state of its own.
type Agent string

const (
	AgentManager     Agent = "Manager"
	AgentSynthesizer Agent = "Synthesizer"
	AgentGuardian    Agent = "Guardian"
)

// ContentType tags a communication payload.
type ContentType string

const (
	ContentText ContentType = "text"
	ContentCode ContentType = "code"
)

// Message is one entry in a task's agent-to-agent communication thread.
type Message struct {
	ID          string      `json:"id" yaml:"id" toml:"id"`
	Timestamp   time.Time   `json:"timestamp" yaml:"timestamp" toml:"timestamp"`
	From        Agent       `json:"from" yaml:"from" toml:"from"`
	To          Agent       `json:"to" yaml:"to" toml:"to"`
	Content     string      `json:"content" yaml:"content" toml:"content"`
	ContentType ContentType `json:"contentType" yaml:"contentType" toml:"contentType"`
}

// Task represents a unit of work in the DAG.
type Task struct {
	ID             string     `json:"id" yaml:"id" toml:"id"`
	Title          string     `json:"title" yaml:"title" toml:"title"`
	Description    string     `json:"description" yaml:"description" toml:"description"`
	Status         TaskStatus `json:"status,omitempty" yaml:"status,omitempty" toml:"status,omitempty"`
	Agent          Agent      `json:"agent,omitempty" yaml:"agent,omitempty" toml:"agent,omitempty"` // Current or last assigned worker
	Dependencies   []string   `json:"dependencies,omitempty" yaml:"dependencies,omitempty" toml:"dependencies,omitempty"`
	Logs           []string   `json:"logs,omitempty" yaml:"logs,omitempty" toml:"logs,omitempty"`
	Communications []Message  `json:"communications,omitempty" yaml:"communications,omitempty" toml:"communications,omitempty"`
}

// Clone returns a deep copy so snapshots never alias session state.
func (t Task) Clone() Task {
	cp := t
	if t.Dependencies != nil {
		cp.Dependencies = append([]string(nil), t.Dependencies...)
	}
	if t.Logs != nil {
		cp.Logs = append([]string(nil), t.Logs...)
	}
	if t.Communications != nil {
		cp.Communications = append([]Message(nil), t.Communications...)
	}
	return cp
}
