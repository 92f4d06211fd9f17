package scheduler

import "fmt"

// Phase is the kind of work an agent performs during one activation.
type Phase string

const (
	PhaseBuild  Phase = "build"
	PhaseReview Phase = "review"
)

// Step describes what the scheduler does with a task found in status From:
// the status it enters on activation and the status it reaches when the
// activation's timer completes.
type Step struct {
	Phase  Phase
	From   TaskStatus
	Enter  TaskStatus // Status set at activation
	To     TaskStatus // Status set at completion
	Resume bool       // Re-activating an orphaned build without re-entering InProgress

	// CheckBlocked gates completion on the task still being unblocked.
	CheckBlocked bool
	priority     int
}

var steps = map[TaskStatus]Step{
	StatusNeedsReview: {Phase: PhaseReview, From: StatusNeedsReview, Enter: StatusNeedsReview, To: StatusDone, CheckBlocked: true, priority: 0},
	StatusInProgress:  {Phase: PhaseBuild, From: StatusInProgress, Enter: StatusInProgress, To: StatusNeedsReview, Resume: true, priority: 1},
	StatusBacklog:     {Phase: PhaseBuild, From: StatusBacklog, Enter: StatusInProgress, To: StatusNeedsReview, priority: 2},
}

// StepFor returns the scheduler step for a status. Done has none.
func StepFor(status TaskStatus) (Step, bool) {
	s, ok := steps[status]
	return s, ok
}

// Priority orders selection: lower values are picked first.
func (s Step) Priority() int { return s.priority }

// CanTransition reports whether from -> to is a legal scheduler-driven move.
// Manual overrides bypass this check.
func CanTransition(from, to TaskStatus) bool {
	switch from {
	case StatusBacklog:
		return to == StatusInProgress
	case StatusInProgress:
		return to == StatusNeedsReview
	case StatusNeedsReview:
		return to == StatusDone
	}
	return false
}

// ActivationText is the activity line written when an agent picks up the task.
func (s Step) ActivationText(title string) string {
	switch {
	case s.Phase == PhaseReview:
		return fmt.Sprintf("Reviewing '%s'.", title)
	case s.Resume:
		return fmt.Sprintf("Resumed work on '%s'.", title)
	default:
		return fmt.Sprintf("Started work on '%s'.", title)
	}
}

// ActivationTaskLog is appended to the task's own log on activation.
func (s Step) ActivationTaskLog(agent Agent) string {
	if s.Phase == PhaseReview {
		return fmt.Sprintf("%s started review.", agent)
	}
	return fmt.Sprintf("%s started work.", agent)
}

// CompletionText is the activity line written when the activation finishes.
func (s Step) CompletionText(title string) string {
	if s.Phase == PhaseReview {
		return fmt.Sprintf("Review passed for '%s'.", title)
	}
	return fmt.Sprintf("Code generated for '%s', awaiting review.", title)
}

// CompletionTaskLog is appended to the task's own log on completion.
func (s Step) CompletionTaskLog() string {
	if s.Phase == PhaseReview {
		return "Review passed."
	}
	return "Code generated, awaiting review."
}
