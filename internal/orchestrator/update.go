package orchestrator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aristath/agentboard/internal/activity"
	"github.com/aristath/agentboard/internal/events"
	"github.com/aristath/agentboard/internal/scheduler"
	"github.com/aristath/agentboard/internal/workspace"
)

// TaskUpdate is a partial manual edit. Nil fields are left unchanged.
type TaskUpdate struct {
	Status       *scheduler.TaskStatus
	Agent        *scheduler.Agent
	Title        *string
	Description  *string
	Dependencies *[]string
}

// SetStatus returns an update that only changes the status.
func SetStatus(status scheduler.TaskStatus) TaskUpdate {
	return TaskUpdate{Status: &status}
}

// UpdateTask applies a manual edit immediately, bypassing timers and
// dependency checks. A timer already pending for the task is left alone and
// no-ops when it fires if the edit moved the task out of the state it
// expected. Dependency changes are re-validated; on failure nothing changes.
func (s *Session) UpdateTask(id string, u TaskUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.dag.Lookup(id)
	if !ok {
		s.logger.Warn("manual update for unknown task", zap.String("task_id", id))
		return fmt.Errorf("%w: %q", ErrUnknownTask, id)
	}
	if u.Status != nil && !u.Status.Valid() {
		return fmt.Errorf("%w: %q", scheduler.ErrInvalidStatus, *u.Status)
	}

	var changes []string
	title := task.Title

	if u.Dependencies != nil && !slices.Equal(task.Dependencies, *u.Dependencies) {
		if err := s.dag.SetDependencies(id, *u.Dependencies); err != nil {
			return err
		}
		changes = append(changes, fmt.Sprintf("dependencies set to [%s]", strings.Join(*u.Dependencies, ", ")))
	}
	if u.Title != nil && *u.Title != task.Title {
		task.Title = *u.Title
		changes = append(changes, fmt.Sprintf("title changed to '%s'", task.Title))
	}
	if u.Description != nil && *u.Description != task.Description {
		task.Description = *u.Description
		changes = append(changes, "description updated")
	}
	if u.Agent != nil && *u.Agent != task.Agent {
		task.Agent = *u.Agent
		if task.Agent == "" {
			changes = append(changes, "agent cleared")
		} else {
			changes = append(changes, fmt.Sprintf("agent set to %s", task.Agent))
		}
	}
	var from scheduler.TaskStatus
	statusChanged := u.Status != nil && *u.Status != task.Status
	if statusChanged {
		from = task.Status
		task.Status = *u.Status
		changes = append([]string{"status updated to " + task.Status.Label()}, changes...)
	}

	if len(changes) == 0 {
		return nil
	}

	now := s.clock.Now()
	s.appendLocked(id, activity.SourceOrchestrator,
		fmt.Sprintf("Task '%s' %s.", title, strings.Join(changes, ", ")))
	if statusChanged {
		s.metrics.observeTransition(from, task.Status)
		s.bus.Publish(events.TopicTask, events.TaskTransitionedEvent{
			ID: id, From: from, To: task.Status, Agent: task.Agent, Timestamp: now,
		})
	}
	s.bus.Publish(events.TopicTask, events.TaskUpdatedEvent{ID: id, Manual: true, Timestamp: now})
	s.metrics.incManual()
	s.logger.Info("task updated manually", zap.String("task_id", id), zap.Strings("changes", changes))

	s.settleLocked()
	return nil
}

// PostMessage appends a message to a task's communication thread.
func (s *Session) PostMessage(id string, from, to scheduler.Agent, content string, ct scheduler.ContentType) (scheduler.Message, error) {
	if ct == "" {
		ct = scheduler.ContentText
	}
	if ct != scheduler.ContentText && ct != scheduler.ContentCode {
		return scheduler.Message{}, fmt.Errorf("invalid content type %q", ct)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.dag.Lookup(id)
	if !ok {
		s.logger.Warn("message for unknown task", zap.String("task_id", id))
		return scheduler.Message{}, fmt.Errorf("%w: %q", ErrUnknownTask, id)
	}

	msg := scheduler.Message{
		ID:          uuid.NewString(),
		Timestamp:   s.clock.Now(),
		From:        from,
		To:          to,
		Content:     content,
		ContentType: ct,
	}
	task.Communications = append(task.Communications, msg)
	s.bus.Publish(events.TopicTask, events.TaskUpdatedEvent{ID: id, Timestamp: msg.Timestamp})
	s.logger.Debug("message posted",
		zap.String("task_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("content_type", string(ct)),
	)
	return msg, nil
}

// OnFileChange forwards an editor change into the file tree. Content is
// opaque. Unknown paths leave the tree unchanged but are still logged.
func (s *Session) OnFileChange(path, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, found := workspace.UpdateContent(s.files, path, content)
	s.files = files
	s.appendLocked("", activity.SourceIDE, "File updated: "+path)
	s.bus.Publish(events.TopicSession, events.FileChangedEvent{Path: path, Found: found, Timestamp: s.clock.Now()})
	if !found {
		s.logger.Debug("file change for unknown path", zap.String("path", path))
	}
}
