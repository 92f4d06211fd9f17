package scheduler

import (
	"math/rand/v2"
	"sort"
)

// Candidate is a task the scheduler may activate right now.
type Candidate struct {
	TaskID string
	Step   Step
}

// Eligible returns every task that may be activated, ordered by step priority
// (review, then orphaned build, then fresh build) and original list order
// within a class. Tasks that are Done, blocked or already active are skipped.
func (d *DAG) Eligible(blocked map[string]bool, active func(taskID string) bool) []Candidate {
	var cands []Candidate
	for _, id := range d.order {
		task := d.tasks[id]
		step, ok := StepFor(task.Status)
		if !ok || blocked[id] {
			continue
		}
		if active != nil && active(id) {
			continue
		}
		cands = append(cands, Candidate{TaskID: id, Step: step})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Step.Priority() < cands[j].Step.Priority()
	})
	return cands
}

// Selector picks which candidates to activate under a concurrency budget.
// A nil Rand keeps list order within each priority class; a non-nil Rand
// shuffles each class to emulate independent parallel agents.
type Selector struct {
	Budget int
	Rand   *rand.Rand
}

// Pick returns at most Budget-active candidates. cands must already be
// ordered by Eligible.
func (s Selector) Pick(cands []Candidate, active int) []Candidate {
	free := s.Budget - active
	if free <= 0 || len(cands) == 0 {
		return nil
	}

	ordered := cands
	if s.Rand != nil {
		ordered = make([]Candidate, 0, len(cands))
		for start := 0; start < len(cands); {
			end := start
			for end < len(cands) && cands[end].Step.Priority() == cands[start].Step.Priority() {
				end++
			}
			class := append([]Candidate(nil), cands[start:end]...)
			s.Rand.Shuffle(len(class), func(i, j int) { class[i], class[j] = class[j], class[i] })
			ordered = append(ordered, class...)
			start = end
		}
	}

	if len(ordered) > free {
		ordered = ordered[:free]
	}
	return append([]Candidate(nil), ordered...)
}

// AgentPolicy decides which agent handles an activation.
type AgentPolicy struct {
	Roster      []Agent
	BuildAgent  Agent
	ReviewAgent Agent
	Rand        *rand.Rand // When set, unassigned tasks draw from Roster
}

// Choose returns the task's explicit agent if set, otherwise a roster draw
// (randomized policy) or the phase default.
func (p AgentPolicy) Choose(task *Task, phase Phase) Agent {
	if task.Agent != "" {
		return task.Agent
	}
	if p.Rand != nil && len(p.Roster) > 0 {
		return p.Roster[p.Rand.IntN(len(p.Roster))]
	}
	if phase == PhaseReview {
		return p.ReviewAgent
	}
	return p.BuildAgent
}
