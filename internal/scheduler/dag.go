package scheduler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gammazero/toposort"
)

// Construction failures. Each is reported wrapped in a *ConstructionError.
var (
	ErrEmptyID            = errors.New("task id is empty")
	ErrDuplicateTask      = errors.New("duplicate task id")
	ErrDanglingDependency = errors.New("dependency references unknown task")
	ErrSelfDependency     = errors.New("task depends on itself")
	ErrCycle              = errors.New("dependency cycle")
	ErrInvalidStatus      = errors.New("invalid task status")
)

// ConstructionError reports why a task collection cannot form a valid graph.
type ConstructionError struct {
	TaskID string
	Detail string
	Err    error
}

func (e *ConstructionError) Error() string {
	var b strings.Builder
	b.WriteString("invalid task graph")
	if e.TaskID != "" {
		fmt.Fprintf(&b, ": task %q", e.TaskID)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// DAG holds a project's tasks in their original list order together with
// the dependency edges between them.
//
// A DAG is not safe for concurrent use. The orchestrator session serializes
// every access behind its own lock.
type DAG struct {
	order []string         // Original list order
	tasks map[string]*Task // All tasks indexed by ID
}

// NewDAG creates an empty DAG.
func NewDAG() *DAG {
	return &DAG{tasks: make(map[string]*Task)}
}

// Build adds every task in order and validates the result. It is the single
// construction entry point used by sessions.
func Build(tasks []Task) (*DAG, error) {
	d := NewDAG()
	for _, t := range tasks {
		if err := d.AddTask(t); err != nil {
			return nil, err
		}
	}
	if _, err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// AddTask appends a copy of task to the DAG. An empty status defaults to Backlog.
func (d *DAG) AddTask(task Task) error {
	if strings.TrimSpace(task.ID) == "" {
		return &ConstructionError{Err: ErrEmptyID, Detail: fmt.Sprintf("title %q", task.Title)}
	}
	if _, exists := d.tasks[task.ID]; exists {
		return &ConstructionError{TaskID: task.ID, Err: ErrDuplicateTask}
	}
	if task.Status == "" {
		task.Status = StatusBacklog
	}
	if !task.Status.Valid() {
		return &ConstructionError{TaskID: task.ID, Err: ErrInvalidStatus, Detail: string(task.Status)}
	}

	cp := task.Clone()
	d.tasks[cp.ID] = &cp
	d.order = append(d.order, cp.ID)
	return nil
}

// Validate checks that every dependency resolves, no task depends on itself,
// and the edges are acyclic. Returns the topological order on success.
func (d *DAG) Validate() ([]string, error) {
	for _, taskID := range d.order {
		for _, depID := range d.tasks[taskID].Dependencies {
			if depID == taskID {
				return nil, &ConstructionError{TaskID: taskID, Err: ErrSelfDependency}
			}
			if _, exists := d.tasks[depID]; !exists {
				return nil, &ConstructionError{TaskID: taskID, Err: ErrDanglingDependency, Detail: depID}
			}
		}
	}

	var edges []toposort.Edge
	for _, taskID := range d.order {
		task := d.tasks[taskID]
		if len(task.Dependencies) == 0 {
			// Root task - edge from nil keeps it in the result
			edges = append(edges, toposort.Edge{nil, taskID})
			continue
		}
		for _, depID := range task.Dependencies {
			// Edge (depID, taskID) means depID must come before taskID
			edges = append(edges, toposort.Edge{depID, taskID})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, &ConstructionError{Err: ErrCycle, Detail: err.Error()}
	}

	order := make([]string, 0, len(sorted))
	for _, id := range sorted {
		if id != nil {
			order = append(order, id.(string))
		}
	}
	if len(order) != len(d.tasks) {
		return nil, &ConstructionError{Err: ErrCycle, Detail: fmt.Sprintf("sorted %d of %d tasks", len(order), len(d.tasks))}
	}
	return order, nil
}

// Lookup returns the live task for id. Callers must hold the owning session's lock.
func (d *DAG) Lookup(id string) (*Task, bool) {
	t, ok := d.tasks[id]
	return t, ok
}

// SetDependencies replaces a task's dependency list, re-validating the whole
// graph. On failure the previous edges are restored.
func (d *DAG) SetDependencies(id string, deps []string) error {
	task, ok := d.tasks[id]
	if !ok {
		return fmt.Errorf("task %q not found", id)
	}
	prev := task.Dependencies
	task.Dependencies = append([]string(nil), deps...)
	if _, err := d.Validate(); err != nil {
		task.Dependencies = prev
		return err
	}
	return nil
}

// Len returns the number of tasks.
func (d *DAG) Len() int { return len(d.order) }

// Order returns task ids in original list order.
func (d *DAG) Order() []string {
	return append([]string(nil), d.order...)
}

// Tasks returns deep copies of all tasks in original list order.
func (d *DAG) Tasks() []Task {
	tasks := make([]Task, 0, len(d.order))
	for _, id := range d.order {
		tasks = append(tasks, d.tasks[id].Clone())
	}
	return tasks
}

// Blocked recomputes the blocked set from current statuses.
func (d *DAG) Blocked() map[string]bool {
	view := make([]Task, 0, len(d.order))
	for _, id := range d.order {
		t := d.tasks[id]
		view = append(view, Task{ID: t.ID, Status: t.Status, Dependencies: t.Dependencies})
	}
	return BlockedSet(view)
}

// BlockedSet computes blocked(t) for every task: true iff t has at least one
// dependency whose status is not Done. A dependency id that resolves to no
// task counts as unsatisfied. Only blocked ids are present in the result.
func BlockedSet(tasks []Task) map[string]bool {
	status := make(map[string]TaskStatus, len(tasks))
	for _, t := range tasks {
		status[t.ID] = t.Status
	}

	blocked := make(map[string]bool)
	for _, t := range tasks {
		for _, depID := range t.Dependencies {
			if s, ok := status[depID]; !ok || s != StatusDone {
				blocked[t.ID] = true
				break
			}
		}
	}
	return blocked
}
