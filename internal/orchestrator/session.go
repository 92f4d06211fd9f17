// Package orchestrator runs one project's task board: it owns the task graph,
// binds agents to eligible tasks under a concurrency budget, advances them
// through the lifecycle on simulated timers and records every decision in the
// activity log.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/aristath/agentboard/internal/activity"
	"github.com/aristath/agentboard/internal/config"
	"github.com/aristath/agentboard/internal/events"
	"github.com/aristath/agentboard/internal/project"
	"github.com/aristath/agentboard/internal/scheduler"
	"github.com/aristath/agentboard/internal/workspace"
)

// ErrUnknownTask is returned by edits that reference a task id not in the session.
var ErrUnknownTask = errors.New("unknown task")

// errStaleTransition marks a completion whose assumptions no longer hold.
// It never leaves the package.
var errStaleTransition = errors.New("stale transition")

const repoBaseURL = "https://github.com/codeprojects/"

// activation is one agent bound to one task for one phase.
type activation struct {
	taskID  string
	agent   scheduler.Agent
	step    scheduler.Step
	seq     uint64
	started time.Time
	timer   clockwork.Timer
}

// Session owns one project's tasks and scheduler state. All mutation goes
// through methods that hold mu, recompute the blocked set and append to the
// activity log before releasing it.
type Session struct {
	id      string
	name    string
	cfg     config.SchedulerConfig
	clock   clockwork.Clock
	logger  *zap.Logger
	bus     *events.EventBus
	ownsBus bool
	metrics *Metrics
	rng     *rand.Rand

	selector scheduler.Selector
	agents   scheduler.AgentPolicy
	log      *activity.Log

	mu       sync.Mutex
	dag      *scheduler.DAG
	blocked  map[string]bool
	active   map[string]*activation
	inflight map[*activation]struct{} // Timers not yet fired, including orphans of a stop
	running  bool
	seq      uint64
	files    []workspace.FileNode
	repoURL  string
	loop     *pollLoop
	done     chan struct{}
	finished bool
	closed   bool
}

type pollLoop struct {
	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewSession validates the project's task graph and returns a stopped session.
// Construction errors are returned as *scheduler.ConstructionError.
func NewSession(p project.Project, cfg config.SchedulerConfig, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scheduler config: %w", err)
	}
	dag, err := scheduler.Build(p.Tasks)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:       uuid.NewString(),
		name:     p.Name,
		cfg:      cfg,
		clock:    clockwork.NewRealClock(),
		logger:   zap.NewNop(),
		bus:      events.NewEventBus(),
		ownsBus:  true,
		log:      activity.NewLog(),
		dag:      dag,
		blocked:  map[string]bool{},
		active:   make(map[string]*activation),
		inflight: make(map[*activation]struct{}),
		files:    workspace.Clone(p.Files),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		seed := uint64(cfg.Seed)
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}

	s.selector = scheduler.Selector{Budget: cfg.ConcurrencyBudget}
	s.agents = scheduler.AgentPolicy{
		Roster:      cfg.AgentRoster,
		BuildAgent:  cfg.BuildAgent,
		ReviewAgent: cfg.ReviewAgent,
	}
	if cfg.Randomize {
		s.selector.Rand = s.rng
		s.agents.Rand = s.rng
	}
	s.logger = s.logger.With(zap.String("session_id", s.id), zap.String("project", p.Name))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked("", "", "Orchestrator initialized. Ready to start.")
	s.refreshLocked()

	s.logger.Info("session created",
		zap.Int("tasks", dag.Len()),
		zap.Int("concurrency_budget", cfg.ConcurrencyBudget),
		zap.Bool("randomize", cfg.Randomize),
	)
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Events returns the bus the session publishes on.
func (s *Session) Events() *events.EventBus { return s.bus }

// Start begins scheduling. The first call also bootstraps the project
// repository. Calling Start on a running session does nothing.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running || s.closed {
		return
	}
	if s.repoURL == "" {
		s.bootstrapRepoLocked()
	}
	s.running = true
	s.appendLocked("", activity.SourceOrchestrator, "Starting agents...")
	s.bus.Publish(events.TopicSession, events.SessionStartedEvent{SessionID: s.id, Timestamp: s.clock.Now()})

	ctx, cancel := context.WithCancel(context.Background())
	loop := &pollLoop{cancel: cancel, stopped: make(chan struct{})}
	s.loop = loop
	go s.pollLoop(ctx, loop)

	s.logger.Info("session started")
	s.settleLocked()
}

// Stop halts selection and clears the active-agent map. Pending completion
// timers keep running but their effects are discarded when they fire.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	now := s.clock.Now()
	for _, id := range s.dag.Order() {
		if act, ok := s.active[id]; ok {
			s.bus.Publish(events.TopicAgent, events.AgentReleasedEvent{
				ID: id, Agent: act.agent, Applied: false, Duration: now.Sub(act.started), Timestamp: now,
			})
		}
	}
	clear(s.active)
	s.appendLocked("", activity.SourceOrchestrator, "Stopping agents...")
	s.bus.Publish(events.TopicSession, events.SessionStoppedEvent{SessionID: s.id, Timestamp: now})
	s.refreshLocked()
	loop := s.loop
	s.loop = nil
	s.mu.Unlock()

	if loop != nil {
		loop.cancel()
		<-loop.stopped
	}
	s.logger.Info("session stopped")
}

// Running reports whether the scheduler is active.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Close stops the session, cancels outstanding timers and closes the event
// bus if the session created it. The session must not be used afterwards.
func (s *Session) Close() {
	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for act := range s.inflight {
		act.timer.Stop()
	}
	clear(s.inflight)
	if s.ownsBus {
		s.bus.Close()
	}
}

// Done is closed the first time every task reaches Done.
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait blocks until every task is Done or ctx ends.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pollLoop wakes on the poll interval as a fallback to the event-driven
// scheduling done after every mutation.
func (s *Session) pollLoop(ctx context.Context, loop *pollLoop) {
	defer close(loop.stopped)

	ticker := s.clock.NewTicker(s.cfg.PollInterval.Std())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.mu.Lock()
			s.settleLocked()
			s.mu.Unlock()
		}
	}
}

func (s *Session) bootstrapRepoLocked() {
	url := repoBaseURL + project.Slug(s.name)
	s.appendLocked("", activity.SourceGitHub, "Creating repository...")
	s.repoURL = url
	s.appendLocked("", activity.SourceGitHub, "Repository created successfully at "+url)
	s.appendLocked("", activity.SourceGitHub, "Performing initial commit...")
	s.appendLocked("", activity.SourceGitHub, "Initial commit pushed to main branch.")
	s.logger.Debug("repository bootstrapped", zap.String("url", url))
}

// settleLocked re-derives board state and, when running, fills free agent
// slots. Every mutation ends here.
func (s *Session) settleLocked() {
	s.refreshLocked()
	if !s.running {
		return
	}
	if s.scheduleLocked() > 0 {
		s.refreshLocked()
	}
}

// refreshLocked recomputes the blocked set from scratch and publishes progress.
func (s *Session) refreshLocked() {
	s.blocked = s.dag.Blocked()

	progress := events.BoardProgressEvent{
		Total:     s.dag.Len(),
		Active:    len(s.active),
		Blocked:   len(s.blocked),
		Timestamp: s.clock.Now(),
	}
	for _, id := range s.dag.Order() {
		t, _ := s.dag.Lookup(id)
		switch t.Status {
		case scheduler.StatusBacklog:
			progress.Backlog++
		case scheduler.StatusInProgress:
			progress.InProgress++
		case scheduler.StatusNeedsReview:
			progress.NeedsReview++
		case scheduler.StatusDone:
			progress.Done++
		}
	}
	s.bus.Publish(events.TopicBoard, progress)
	s.metrics.setGauges(progress.Active, progress.Blocked)

	if !s.finished && progress.Done == progress.Total {
		s.finished = true
		close(s.done)
		s.logger.Info("all tasks done")
	}
}

// scheduleLocked activates as many eligible tasks as the budget allows and
// returns how many it started.
func (s *Session) scheduleLocked() int {
	isActive := func(id string) bool {
		_, ok := s.active[id]
		return ok
	}
	picked := s.selector.Pick(s.dag.Eligible(s.blocked, isActive), len(s.active))
	for _, c := range picked {
		s.activateLocked(c)
	}
	return len(picked)
}

func (s *Session) activateLocked(c scheduler.Candidate) {
	task, _ := s.dag.Lookup(c.TaskID)
	step := c.Step
	if task.Status != step.Enter && !scheduler.CanTransition(task.Status, step.Enter) {
		s.logger.Warn("refusing activation",
			zap.String("task_id", task.ID),
			zap.String("status", string(task.Status)),
			zap.String("enter", string(step.Enter)),
		)
		return
	}
	agent := s.agents.Choose(task, step.Phase)
	now := s.clock.Now()

	s.seq++
	act := &activation{taskID: task.ID, agent: agent, step: step, seq: s.seq, started: now}
	s.active[task.ID] = act

	s.appendLocked(task.ID, string(agent), step.ActivationText(task.Title))
	task.Logs = append(task.Logs, step.ActivationTaskLog(agent))
	if step.Phase == scheduler.PhaseBuild {
		task.Agent = agent
	}
	if task.Status != step.Enter {
		if err := s.transitionLocked(task, step.Enter, agent); err != nil {
			s.logger.Error("activation transition failed", zap.String("task_id", task.ID), zap.Error(err))
		}
	}
	s.bus.Publish(events.TopicAgent, events.AgentAssignedEvent{ID: task.ID, Agent: agent, Phase: step.Phase, Timestamp: now})

	d := s.durationFor(step.Phase)
	act.timer = s.clock.AfterFunc(d, func() { s.complete(act) })
	s.inflight[act] = struct{}{}

	s.logger.Debug("agent assigned",
		zap.String("task_id", task.ID),
		zap.String("agent", string(agent)),
		zap.String("phase", string(step.Phase)),
		zap.Duration("duration", d),
	)
}

func (s *Session) durationFor(phase scheduler.Phase) time.Duration {
	d := s.cfg.BuildDuration.Std()
	if phase == scheduler.PhaseReview {
		d = s.cfg.ReviewDuration.Std()
	}
	if j := s.cfg.Jitter.Std(); j > 0 {
		d += time.Duration(s.rng.Int64N(int64(j)))
	}
	return d
}

// complete runs when an activation's timer fires.
func (s *Session) complete(act *activation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inflight, act)
	if s.closed {
		return
	}

	err := s.applyCompletionLocked(act)
	if errors.Is(err, errStaleTransition) {
		s.metrics.incStale(act.step.Phase)
		s.logger.Debug("completion dropped",
			zap.String("task_id", act.taskID),
			zap.Uint64("activation", act.seq),
			zap.Error(err),
		)
	}
	s.settleLocked()
}

// applyCompletionLocked performs the step's transition if the session and
// task are still in the state the activation assumed.
func (s *Session) applyCompletionLocked(act *activation) error {
	if !s.running || s.active[act.taskID] != act {
		return fmt.Errorf("%w: activation %d no longer active", errStaleTransition, act.seq)
	}

	now := s.clock.Now()
	task, ok := s.dag.Lookup(act.taskID)
	applied := false
	defer func() {
		delete(s.active, act.taskID)
		elapsed := now.Sub(act.started)
		s.metrics.observeActivation(act.step.Phase, elapsed)
		s.bus.Publish(events.TopicAgent, events.AgentReleasedEvent{
			ID: act.taskID, Agent: act.agent, Applied: applied, Duration: elapsed, Timestamp: now,
		})
	}()

	switch {
	case !ok:
		return fmt.Errorf("%w: task %q vanished", errStaleTransition, act.taskID)
	case task.Status != act.step.Enter:
		return fmt.Errorf("%w: task %q is %s, expected %s", errStaleTransition, task.ID, task.Status, act.step.Enter)
	case act.step.CheckBlocked && s.blocked[task.ID]:
		return fmt.Errorf("%w: task %q is blocked", errStaleTransition, task.ID)
	case !scheduler.CanTransition(task.Status, act.step.To):
		return fmt.Errorf("%w: task %q cannot move from %s to %s", errStaleTransition, task.ID, task.Status, act.step.To)
	}

	s.appendLocked(task.ID, string(act.agent), act.step.CompletionText(task.Title))
	task.Logs = append(task.Logs, act.step.CompletionTaskLog())
	if err := s.transitionLocked(task, act.step.To, act.agent); err != nil {
		return err
	}
	applied = true
	return nil
}

// transitionLocked is the only place the scheduler changes a task status.
// Moves outside the lifecycle are refused; manual edits go through UpdateTask.
func (s *Session) transitionLocked(task *scheduler.Task, to scheduler.TaskStatus, agent scheduler.Agent) error {
	from := task.Status
	if !scheduler.CanTransition(from, to) {
		return fmt.Errorf("%w: task %q cannot move from %s to %s", errStaleTransition, task.ID, from, to)
	}
	task.Status = to
	s.appendLocked(task.ID, activity.SourceOrchestrator,
		fmt.Sprintf("Task '%s' status updated to %s.", task.Title, to.Label()))
	s.metrics.observeTransition(from, to)
	s.bus.Publish(events.TopicTask, events.TaskTransitionedEvent{
		ID: task.ID, From: from, To: to, Agent: agent, Timestamp: s.clock.Now(),
	})
	return nil
}

func (s *Session) appendLocked(taskID, source, text string) activity.Entry {
	e := s.log.Append(s.clock.Now(), taskID, source, text)
	s.bus.Publish(events.TopicLog, events.LogAppendedEvent{Entry: e})
	return e
}

// Tasks returns a snapshot of every task in list order.
func (s *Session) Tasks() []scheduler.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dag.Tasks()
}

// Task returns a snapshot of one task.
func (s *Session) Task(id string) (scheduler.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.dag.Lookup(id)
	if !ok {
		return scheduler.Task{}, false
	}
	return t.Clone(), true
}

// ActiveAgents returns the task id -> agent map of current activations.
func (s *Session) ActiveAgents() map[string]scheduler.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]scheduler.Agent, len(s.active))
	for id, act := range s.active {
		out[id] = act.agent
	}
	return out
}

// BlockedIDs returns blocked task ids in list order.
func (s *Session) BlockedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.blocked))
	for _, id := range s.dag.Order() {
		if s.blocked[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// Log returns a snapshot of the activity log.
func (s *Session) Log() []activity.Entry {
	return s.log.Snapshot()
}

// LogSince returns entries appended after seq.
func (s *Session) LogSince(seq uint64) []activity.Entry {
	return s.log.Since(seq)
}

// Files returns a deep copy of the project file tree.
func (s *Session) Files() []workspace.FileNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return workspace.Clone(s.files)
}

// RepoURL returns the bootstrapped repository URL, or "" before the first Start.
func (s *Session) RepoURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repoURL
}

// Config returns the scheduler configuration the session runs with.
func (s *Session) Config() config.SchedulerConfig {
	return s.cfg
}

// Snapshot is a consistent view of the board taken under one lock.
type Snapshot struct {
	Tasks   []scheduler.Task
	Active  map[string]scheduler.Agent
	Blocked map[string]bool
	Running bool
	RepoURL string
}

// Snapshot returns tasks, activations and blocked ids as of one instant.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Tasks:   s.dag.Tasks(),
		Active:  make(map[string]scheduler.Agent, len(s.active)),
		Blocked: make(map[string]bool, len(s.blocked)),
		Running: s.running,
		RepoURL: s.repoURL,
	}
	for id, act := range s.active {
		snap.Active[id] = act.agent
	}
	for id := range s.blocked {
		snap.Blocked[id] = true
	}
	return snap
}
