// Package activity holds the append-only, time-ordered record of everything
// an orchestration session decides: lifecycle transitions, agent assignments,
// manual edits and session control.
package activity

import (
	"fmt"
	"sync"
	"time"
)

// Source labels used in entry prefixes.
const (
	SourceOrchestrator = "Orchestrator"
	SourceIDE          = "IDE"
	SourceGitHub       = "GitHub"
)

// Entry is one line of the activity log.
type Entry struct {
	Seq    uint64    // 1-based, strictly increasing
	Time   time.Time // Decision time
	TaskID string    // Empty for session-level entries
	Source string    // Agent name or subsystem; empty for unprefixed lines
	Text   string
}

// Line renders the entry as "[HH:MM:SS] [Source] text".
func (e Entry) Line() string {
	if e.Source == "" {
		return fmt.Sprintf("[%s] %s", e.Time.Format(time.TimeOnly), e.Text)
	}
	return fmt.Sprintf("[%s] [%s] %s", e.Time.Format(time.TimeOnly), e.Source, e.Text)
}

func (e Entry) String() string { return e.Line() }

// Log is an append-only sequence of entries. Appends are serialized so the
// sequence number reflects decision order across goroutines.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append records a new entry and returns it with its sequence number.
func (l *Log) Append(at time.Time, taskID, source, text string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := Entry{
		Seq:    uint64(len(l.entries)) + 1,
		Time:   at,
		TaskID: taskID,
		Source: source,
		Text:   text,
	}
	l.entries = append(l.entries, e)
	return e
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Snapshot returns a copy of every entry.
func (l *Log) Snapshot() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Entry(nil), l.entries...)
}

// Since returns entries with Seq greater than seq, for incremental readers.
func (l *Log) Since(seq uint64) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if seq >= uint64(len(l.entries)) {
		return nil
	}
	return append([]Entry(nil), l.entries[seq:]...)
}

// ForTask returns the entries tagged with taskID, in log order.
func (l *Log) ForTask(taskID string) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Entry
	for _, e := range l.entries {
		if e.TaskID == taskID {
			out = append(out, e)
		}
	}
	return out
}

// Lines renders every entry.
func Lines(entries []Entry) []string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Line()
	}
	return lines
}
