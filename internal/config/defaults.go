package config

import (
	"time"

	"github.com/aristath/agentboard/internal/scheduler"
)

// DefaultConfig returns the default configuration: one active task at a time,
// a two-second poll, four-second builds and three-second reviews.
func DefaultConfig() *Config {
	return &Config{
		Scheduler: DefaultSchedulerConfig(),
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultSchedulerConfig returns the baseline single-active-task policy.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		ConcurrencyBudget: 1,
		PollInterval:      Duration(2 * time.Second),
		BuildDuration:     Duration(4 * time.Second),
		ReviewDuration:    Duration(3 * time.Second),
		AgentRoster: []scheduler.Agent{
			scheduler.AgentManager,
			scheduler.AgentSynthesizer,
			scheduler.AgentGuardian,
		},
		BuildAgent:  scheduler.AgentSynthesizer,
		ReviewAgent: scheduler.AgentGuardian,
	}
}
