package orchestrator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aristath/agentboard/internal/config"
	"github.com/aristath/agentboard/internal/events"
	"github.com/aristath/agentboard/internal/project"
	"github.com/aristath/agentboard/internal/scheduler"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	buildTime  = 4 * time.Second
	reviewTime = 3 * time.Second
	waitFor    = 2 * time.Second
	tick       = time.Millisecond
)

type harness struct {
	s       *Session
	clock   clockwork.FakeClock
	metrics *Metrics
}

func newHarness(t *testing.T, tasks []scheduler.Task, tweak func(*config.SchedulerConfig)) *harness {
	t.Helper()
	cfg := config.DefaultSchedulerConfig()
	if tweak != nil {
		tweak(&cfg)
	}
	clock := clockwork.NewFakeClock()
	metrics := MustNewMetrics(prometheus.NewRegistry())

	s, err := NewSession(project.Project{Name: "Test Board", Tasks: tasks}, cfg,
		WithClock(clock),
		WithMetrics(metrics),
	)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return &harness{s: s, clock: clock, metrics: metrics}
}

func chain() []scheduler.Task {
	return []scheduler.Task{
		{ID: "A", Title: "Task A"},
		{ID: "B", Title: "Task B", Dependencies: []string{"A"}},
	}
}

func (h *harness) status(id string) scheduler.TaskStatus {
	task, _ := h.s.Task(id)
	return task.Status
}

func (h *harness) waitStatus(t *testing.T, id string, want scheduler.TaskStatus) {
	t.Helper()
	require.Eventually(t, func() bool { return h.status(id) == want },
		waitFor, tick, "task %s never reached %s (now %s)", id, want, h.status(id))
}

func (h *harness) runToCompletion(t *testing.T) {
	t.Helper()
	advanceUntilDone(t, h.clock, h.s)
}

// advanceUntilDone moves simulated time forward in small steps until every
// task is Done.
func advanceUntilDone(t *testing.T, clock clockwork.FakeClock, s *Session) {
	t.Helper()
	require.Eventually(t, func() bool {
		clock.Advance(500 * time.Millisecond)
		select {
		case <-s.Done():
			return true
		default:
			return false
		}
	}, 5*time.Second, 2*time.Millisecond)
}

func logTexts(s *Session, taskID string) []string {
	var out []string
	for _, e := range s.Log() {
		if e.TaskID == taskID {
			out = append(out, e.Line()[len("[15:04:05] "):])
		}
	}
	return out
}

func countLines(s *Session, substr string) int {
	n := 0
	for _, e := range s.Log() {
		if strings.Contains(e.Line(), substr) {
			n++
		}
	}
	return n
}

func TestNewSession(t *testing.T) {
	t.Run("rejects cycle", func(t *testing.T) {
		_, err := NewSession(project.Project{Tasks: []scheduler.Task{
			{ID: "A", Dependencies: []string{"B"}},
			{ID: "B", Dependencies: []string{"A"}},
		}}, config.DefaultSchedulerConfig())

		var cerr *scheduler.ConstructionError
		require.ErrorAs(t, err, &cerr)
		assert.ErrorIs(t, err, scheduler.ErrCycle)
	})

	t.Run("rejects self dependency", func(t *testing.T) {
		_, err := NewSession(project.Project{Tasks: []scheduler.Task{
			{ID: "A", Dependencies: []string{"A"}},
		}}, config.DefaultSchedulerConfig())
		assert.ErrorIs(t, err, scheduler.ErrSelfDependency)
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := config.DefaultSchedulerConfig()
		cfg.ConcurrencyBudget = 0
		_, err := NewSession(project.Project{}, cfg)
		assert.ErrorContains(t, err, "concurrency_budget")
	})

	t.Run("starts stopped with seed entry", func(t *testing.T) {
		h := newHarness(t, chain(), nil)

		assert.False(t, h.s.Running())
		assert.Empty(t, h.s.ActiveAgents())
		assert.Equal(t, []string{"B"}, h.s.BlockedIDs())
		entries := h.s.Log()
		require.Len(t, entries, 1)
		assert.Equal(t, "Orchestrator initialized. Ready to start.", entries[0].Text)
		assert.Empty(t, h.s.RepoURL())
	})

	t.Run("empty project is done immediately", func(t *testing.T) {
		h := newHarness(t, nil, nil)
		require.NoError(t, h.s.Wait(context.Background()))
	})
}

func TestDependencyChainScenario(t *testing.T) {
	h := newHarness(t, chain(), nil)
	h.s.Start()

	// A starts at once, B waits on it.
	assert.Equal(t, scheduler.StatusInProgress, h.status("A"))
	assert.Equal(t, map[string]scheduler.Agent{"A": scheduler.AgentSynthesizer}, h.s.ActiveAgents())
	assert.Equal(t, []string{"B"}, h.s.BlockedIDs())

	h.clock.Advance(buildTime)
	h.waitStatus(t, "A", scheduler.StatusNeedsReview)
	assert.Equal(t, scheduler.StatusBacklog, h.status("B"))
	assert.Equal(t, []string{"B"}, h.s.BlockedIDs())

	h.clock.Advance(reviewTime)
	h.waitStatus(t, "A", scheduler.StatusDone)
	h.waitStatus(t, "B", scheduler.StatusInProgress)
	assert.Empty(t, h.s.BlockedIDs())

	h.clock.Advance(buildTime)
	h.waitStatus(t, "B", scheduler.StatusNeedsReview)
	h.clock.Advance(reviewTime)
	h.waitStatus(t, "B", scheduler.StatusDone)

	require.NoError(t, h.s.Wait(context.Background()))
	assert.Empty(t, h.s.ActiveAgents())

	assert.Equal(t, []string{
		"[Synthesizer] Started work on 'Task A'.",
		"[Orchestrator] Task 'Task A' status updated to In Progress.",
		"[Synthesizer] Code generated for 'Task A', awaiting review.",
		"[Orchestrator] Task 'Task A' status updated to Needs Review / Debugging.",
		"[Synthesizer] Reviewing 'Task A'.",
		"[Synthesizer] Review passed for 'Task A'.",
		"[Orchestrator] Task 'Task A' status updated to Done.",
	}, logTexts(h.s, "A"))

	a, _ := h.s.Task("A")
	assert.Equal(t, scheduler.AgentSynthesizer, a.Agent)
	assert.Equal(t, []string{
		"Synthesizer started work.",
		"Code generated, awaiting review.",
		"Synthesizer started review.",
		"Review passed.",
	}, a.Logs)

	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.transitions.WithLabelValues("backlog", "in_progress")))
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.transitions.WithLabelValues("needs_review", "done")))
	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.activeAgents))
}

func TestExplicitAgentReviews(t *testing.T) {
	h := newHarness(t, []scheduler.Task{
		{ID: "A", Title: "Task A", Status: scheduler.StatusNeedsReview, Agent: scheduler.AgentGuardian},
		{ID: "B", Title: "Task B"},
	}, nil)
	h.s.Start()

	// Review outranks fresh builds.
	assert.Equal(t, map[string]scheduler.Agent{"A": scheduler.AgentGuardian}, h.s.ActiveAgents())
	assert.Equal(t, scheduler.StatusBacklog, h.status("B"))
	assert.Contains(t, logTexts(h.s, "A"), "[Guardian] Reviewing 'Task A'.")
}

func TestManualDoneOnBlockedTask(t *testing.T) {
	h := newHarness(t, []scheduler.Task{
		{ID: "A", Title: "Task A"},
		{ID: "B", Title: "Task B", Dependencies: []string{"A"}},
		{ID: "C", Title: "Task C", Dependencies: []string{"B"}},
	}, nil)
	assert.Equal(t, []string{"B", "C"}, h.s.BlockedIDs())

	require.NoError(t, h.s.UpdateTask("B", SetStatus(scheduler.StatusDone)))

	assert.Equal(t, scheduler.StatusDone, h.status("B"))
	assert.Equal(t, []string{"B"}, h.s.BlockedIDs())
	assert.Equal(t, []string{"[Orchestrator] Task 'Task B' status updated to Done."}, logTexts(h.s, "B"))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.manualUpdates))
}

func TestStartTwiceIsNoop(t *testing.T) {
	h := newHarness(t, []scheduler.Task{
		{ID: "A", Title: "Task A"},
		{ID: "B", Title: "Task B"},
	}, nil)
	sub := h.s.Events().Subscribe(events.TopicAgent, 64)

	h.s.Start()
	h.s.Start()

	assert.True(t, h.s.Running())
	assert.Equal(t, 1, countLines(h.s, "Starting agents..."))
	assert.Equal(t, 1, countLines(h.s, "Creating repository..."))
	assert.Equal(t, 1, countLines(h.s, "Started work on"))
	assert.Len(t, h.s.ActiveAgents(), 1)

	assigned := 0
	for len(sub) > 0 {
		if _, ok := (<-sub).(events.AgentAssignedEvent); ok {
			assigned++
		}
	}
	assert.Equal(t, 1, assigned)
}

// stopReturns calls Stop and fails the test if it blocks.
func stopReturns(t *testing.T, s *Session) {
	t.Helper()
	returned := make(chan struct{})
	go func() {
		s.Stop()
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(waitFor):
		t.Fatal("Stop blocked")
	}
}

func stoppedEvents(sub <-chan events.Event) int {
	n := 0
	for len(sub) > 0 {
		if _, ok := (<-sub).(events.SessionStoppedEvent); ok {
			n++
		}
	}
	return n
}

func TestStopIsIdempotent(t *testing.T) {
	t.Run("never started", func(t *testing.T) {
		h := newHarness(t, chain(), nil)
		sub := h.s.Events().Subscribe(events.TopicSession, 16)
		before := len(h.s.Log())

		stopReturns(t, h.s)
		stopReturns(t, h.s)

		assert.False(t, h.s.Running())
		assert.Len(t, h.s.Log(), before)
		assert.Equal(t, 0, stoppedEvents(sub))
		assert.Equal(t, 0, countLines(h.s, "Stopping agents..."))
	})

	t.Run("stopped twice", func(t *testing.T) {
		h := newHarness(t, chain(), nil)
		sub := h.s.Events().Subscribe(events.TopicSession, 16)
		h.s.Start()

		stopReturns(t, h.s)
		after := len(h.s.Log())
		stopReturns(t, h.s)

		assert.False(t, h.s.Running())
		assert.Len(t, h.s.Log(), after)
		assert.Equal(t, 1, stoppedEvents(sub))
		assert.Equal(t, 1, countLines(h.s, "Stopping agents..."))
	})
}

func TestTransitionRefusesMovesOutsideLifecycle(t *testing.T) {
	h := newHarness(t, chain(), nil)
	before := len(h.s.Log())

	h.s.mu.Lock()
	task, _ := h.s.dag.Lookup("A")
	err := h.s.transitionLocked(task, scheduler.StatusDone, scheduler.AgentGuardian)
	h.s.mu.Unlock()

	assert.ErrorIs(t, err, errStaleTransition)
	assert.Equal(t, scheduler.StatusBacklog, h.status("A"))
	assert.Len(t, h.s.Log(), before)
	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.transitions.WithLabelValues("backlog", "done")))
}

func TestJitterStaysBelowBound(t *testing.T) {
	tests := []struct {
		name   string
		jitter time.Duration
	}{
		{"one nanosecond adds nothing", time.Nanosecond},
		{"ten milliseconds", 10 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, chain(), func(cfg *config.SchedulerConfig) {
				cfg.Jitter = config.Duration(tt.jitter)
				cfg.Seed = 42
			})

			h.s.mu.Lock()
			defer h.s.mu.Unlock()
			for range 200 {
				d := h.s.durationFor(scheduler.PhaseReview)
				assert.GreaterOrEqual(t, d, reviewTime)
				assert.Less(t, d, reviewTime+tt.jitter)
			}
		})
	}
}

func TestStopSuppressesPendingCompletion(t *testing.T) {
	h := newHarness(t, chain(), nil)
	h.s.Start()
	require.Equal(t, scheduler.StatusInProgress, h.status("A"))
	before := len(h.s.Log())

	h.s.Stop()
	assert.False(t, h.s.Running())
	assert.Empty(t, h.s.ActiveAgents())
	assert.Equal(t, before+1, len(h.s.Log()))

	h.clock.Advance(buildTime)
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(h.metrics.staleCompletions.WithLabelValues("build")) == 1
	}, waitFor, tick)

	assert.Equal(t, scheduler.StatusInProgress, h.status("A"))
	assert.Equal(t, 0, countLines(h.s, "Code generated"))
	assert.Equal(t, before+1, len(h.s.Log()))
}

func TestRestartResumesOrphan(t *testing.T) {
	h := newHarness(t, chain(), nil)
	h.s.Start()
	h.s.Stop()

	h.s.Start()
	assert.Equal(t, 1, countLines(h.s, "Creating repository..."))
	assert.Equal(t, map[string]scheduler.Agent{"A": scheduler.AgentSynthesizer}, h.s.ActiveAgents())
	assert.Contains(t, logTexts(h.s, "A"), "[Synthesizer] Resumed work on 'Task A'.")
	assert.Equal(t, 1, countLines(h.s, "status updated to In Progress"))

	// The first activation's timer fires first and must be ignored.
	h.clock.Advance(buildTime)
	h.waitStatus(t, "A", scheduler.StatusNeedsReview)
	assert.Equal(t, 1, countLines(h.s, "Code generated for 'Task A'"))
}

func TestManualEditMakesTimerStale(t *testing.T) {
	h := newHarness(t, chain(), nil)
	h.s.Start()
	require.Equal(t, scheduler.StatusInProgress, h.status("A"))

	require.NoError(t, h.s.UpdateTask("A", SetStatus(scheduler.StatusDone)))
	assert.Equal(t, scheduler.StatusDone, h.status("A"))
	// The slot stays held until the pending timer fires.
	assert.Contains(t, h.s.ActiveAgents(), "A")

	h.clock.Advance(buildTime)
	h.waitStatus(t, "B", scheduler.StatusInProgress)
	assert.Equal(t, scheduler.StatusDone, h.status("A"))
	assert.Equal(t, 0, countLines(h.s, "Code generated for 'Task A'"))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.staleCompletions.WithLabelValues("build")))
}

func TestReviewDroppedWhenDependencyRegresses(t *testing.T) {
	h := newHarness(t, []scheduler.Task{
		{ID: "A", Title: "Task A", Status: scheduler.StatusDone},
		{ID: "B", Title: "Task B", Status: scheduler.StatusNeedsReview, Dependencies: []string{"A"}},
	}, nil)
	h.s.Start()
	require.Contains(t, h.s.ActiveAgents(), "B")

	require.NoError(t, h.s.UpdateTask("A", SetStatus(scheduler.StatusBacklog)))
	assert.Equal(t, []string{"B"}, h.s.BlockedIDs())

	h.clock.Advance(reviewTime)
	h.waitStatus(t, "A", scheduler.StatusInProgress)
	assert.Equal(t, scheduler.StatusNeedsReview, h.status("B"))
	assert.Equal(t, 0, countLines(h.s, "Review passed for 'Task B'"))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.staleCompletions.WithLabelValues("review")))
}

func TestBudgetNeverExceeded(t *testing.T) {
	tasks := []scheduler.Task{
		{ID: "t1", Title: "One"},
		{ID: "t2", Title: "Two"},
		{ID: "t3", Title: "Three", Dependencies: []string{"t1"}},
		{ID: "t4", Title: "Four"},
		{ID: "t5", Title: "Five", Dependencies: []string{"t2", "t3"}},
		{ID: "t6", Title: "Six"},
	}
	const budget = 3
	h := newHarness(t, tasks, func(cfg *config.SchedulerConfig) {
		cfg.ConcurrencyBudget = budget
		cfg.Randomize = true
		cfg.Seed = 7
		cfg.Jitter = config.Duration(time.Second)
	})
	sub := h.s.Events().Subscribe(events.TopicAgent, 256)

	h.s.Start()
	assert.Len(t, h.s.ActiveAgents(), budget)
	h.runToCompletion(t)
	h.s.Stop()

	active, peak := 0, 0
	for len(sub) > 0 {
		switch (<-sub).(type) {
		case events.AgentAssignedEvent:
			active++
		case events.AgentReleasedEvent:
			active--
		}
		if active > peak {
			peak = active
		}
		require.LessOrEqual(t, active, budget)
	}
	assert.Equal(t, budget, peak)

	roster := config.DefaultSchedulerConfig().AgentRoster
	for _, task := range h.s.Tasks() {
		assert.Equal(t, scheduler.StatusDone, task.Status, task.ID)
		assert.Contains(t, roster, task.Agent, task.ID)

		texts := logTexts(h.s, task.ID)
		idx := func(label string) int {
			for i, text := range texts {
				if strings.HasSuffix(text, "status updated to "+label+".") {
					return i
				}
			}
			return -1
		}
		inProgress, review, done := idx("In Progress"), idx("Needs Review / Debugging"), idx("Done")
		require.True(t, inProgress >= 0 && review > inProgress && done > review,
			"task %s out of order: %v", task.ID, texts)
	}
}

func TestNeverStartsBlockedTask(t *testing.T) {
	h := newHarness(t, []scheduler.Task{
		{ID: "A", Title: "Task A"},
		{ID: "B", Title: "Task B", Dependencies: []string{"A"}},
		{ID: "C", Title: "Task C", Dependencies: []string{"A"}},
		{ID: "D", Title: "Task D", Dependencies: []string{"B", "C"}},
	}, func(cfg *config.SchedulerConfig) { cfg.ConcurrencyBudget = 4 })
	sub := h.s.Events().Subscribe(events.TopicTask, 256)

	h.s.Start()
	h.runToCompletion(t)

	done := map[string]bool{}
	deps := map[string][]string{"B": {"A"}, "C": {"A"}, "D": {"B", "C"}}
	for len(sub) > 0 {
		ev, ok := (<-sub).(events.TaskTransitionedEvent)
		if !ok {
			continue
		}
		if ev.To == scheduler.StatusInProgress {
			for _, dep := range deps[ev.ID] {
				require.True(t, done[dep], "%s started before %s was done", ev.ID, dep)
			}
		}
		if ev.To == scheduler.StatusDone {
			done[ev.ID] = true
		}
	}
}

func TestUpdateTask(t *testing.T) {
	t.Run("unknown task", func(t *testing.T) {
		h := newHarness(t, chain(), nil)
		before := len(h.s.Log())

		err := h.s.UpdateTask("nope", SetStatus(scheduler.StatusDone))
		assert.ErrorIs(t, err, ErrUnknownTask)
		assert.Len(t, h.s.Log(), before)
	})

	t.Run("invalid status", func(t *testing.T) {
		h := newHarness(t, chain(), nil)
		err := h.s.UpdateTask("A", SetStatus("paused"))
		assert.ErrorIs(t, err, scheduler.ErrInvalidStatus)
	})

	t.Run("cyclic dependencies rejected", func(t *testing.T) {
		h := newHarness(t, chain(), nil)
		before := len(h.s.Log())
		deps := []string{"B"}

		err := h.s.UpdateTask("A", TaskUpdate{Dependencies: &deps})
		assert.ErrorIs(t, err, scheduler.ErrCycle)
		assert.Len(t, h.s.Log(), before)
		a, _ := h.s.Task("A")
		assert.Empty(t, a.Dependencies)
	})

	t.Run("dependency change rederives blocked set", func(t *testing.T) {
		h := newHarness(t, chain(), nil)
		var none []string

		require.NoError(t, h.s.UpdateTask("B", TaskUpdate{Dependencies: &none}))
		assert.Empty(t, h.s.BlockedIDs())
	})

	t.Run("combined edit is one entry", func(t *testing.T) {
		h := newHarness(t, chain(), nil)
		title := "Renamed"
		status := scheduler.StatusNeedsReview
		agent := scheduler.AgentManager
		before := len(h.s.Log())

		require.NoError(t, h.s.UpdateTask("A", TaskUpdate{Title: &title, Status: &status, Agent: &agent}))
		entries := h.s.Log()
		require.Len(t, entries, before+1)
		assert.Equal(t, "Task 'Task A' status updated to Needs Review / Debugging, title changed to 'Renamed', agent set to Manager.",
			entries[before].Text)
	})

	t.Run("no change writes nothing", func(t *testing.T) {
		h := newHarness(t, chain(), nil)
		before := len(h.s.Log())
		require.NoError(t, h.s.UpdateTask("A", SetStatus(scheduler.StatusBacklog)))
		assert.Len(t, h.s.Log(), before)
	})

	t.Run("manual in progress is resumed", func(t *testing.T) {
		h := newHarness(t, chain(), nil)
		require.NoError(t, h.s.UpdateTask("A", SetStatus(scheduler.StatusInProgress)))
		h.s.Start()
		assert.Contains(t, logTexts(h.s, "A"), "[Synthesizer] Resumed work on 'Task A'.")
	})
}

func TestPostMessage(t *testing.T) {
	h := newHarness(t, chain(), nil)

	msg, err := h.s.PostMessage("A", scheduler.AgentManager, scheduler.AgentSynthesizer, "func main() {}", scheduler.ContentCode)
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, h.clock.Now(), msg.Timestamp)

	second, err := h.s.PostMessage("A", scheduler.AgentSynthesizer, scheduler.AgentManager, "done", "")
	require.NoError(t, err)
	assert.Equal(t, scheduler.ContentText, second.ContentType)
	assert.NotEqual(t, msg.ID, second.ID)

	a, _ := h.s.Task("A")
	require.Len(t, a.Communications, 2)
	assert.Equal(t, msg.ID, a.Communications[0].ID)

	_, err = h.s.PostMessage("nope", scheduler.AgentManager, scheduler.AgentGuardian, "hi", scheduler.ContentText)
	assert.ErrorIs(t, err, ErrUnknownTask)

	_, err = h.s.PostMessage("A", scheduler.AgentManager, scheduler.AgentGuardian, "hi", "image")
	assert.Error(t, err)
}

func TestSampleProjectBootstrapAndFiles(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s, err := NewSession(project.Sample(), config.DefaultSchedulerConfig(), WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(s.Close)

	s.OnFileChange("/src/App.tsx", "export default App;")
	s.OnFileChange("/missing.txt", "x")

	files := s.Files()
	assert.Equal(t, 1, countLines(s, "[IDE] File updated: /src/App.tsx"))
	assert.Equal(t, 1, countLines(s, "[IDE] File updated: /missing.txt"))
	assert.Equal(t, "export default App;", files[0].Children[0].Content)

	files[0].Children[0].Content = "mutated"
	assert.Equal(t, "export default App;", s.Files()[0].Children[0].Content)

	s.Start()
	assert.Equal(t, "https://github.com/codeprojects/photogallery-app", s.RepoURL())
	for _, line := range []string{
		"[GitHub] Creating repository...",
		"[GitHub] Repository created successfully at https://github.com/codeprojects/photogallery-app",
		"[GitHub] Performing initial commit...",
		"[GitHub] Initial commit pushed to main branch.",
		"[Orchestrator] Starting agents...",
		"[Guardian] Reviewing 'Create Image Upload Component'.",
	} {
		assert.Equal(t, 1, countLines(s, line), line)
	}

	advanceUntilDone(t, clock, s)
	require.NoError(t, s.Wait(context.Background()))

	grid, _ := s.Task("task-4")
	assert.Equal(t, scheduler.StatusDone, grid.Status)
	assert.Equal(t, scheduler.AgentSynthesizer, grid.Agent)
}
