package config

import (
	"fmt"
	"time"

	"github.com/aristath/agentboard/internal/scheduler"
)

// Duration is a time.Duration written as a string ("4s", "1m30s") in config files.
type Duration time.Duration

// Std converts to time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// SchedulerConfig holds the policy knobs of the scheduler loop.
type SchedulerConfig struct {
	ConcurrencyBudget int               `json:"concurrency_budget" toml:"concurrency_budget"` // Max simultaneously active tasks
	PollInterval      Duration          `json:"poll_interval" toml:"poll_interval"`           // Fallback wake period
	BuildDuration     Duration          `json:"build_duration" toml:"build_duration"`         // InProgress -> NeedsReview
	ReviewDuration    Duration          `json:"review_duration" toml:"review_duration"`       // NeedsReview -> Done
	Jitter            Duration          `json:"jitter,omitempty" toml:"jitter,omitempty"`     // Uniform extra delay in [0, Jitter)
	AgentRoster       []scheduler.Agent `json:"agent_roster" toml:"agent_roster"`
	BuildAgent        scheduler.Agent   `json:"build_agent" toml:"build_agent"`   // Default when a task has no agent
	ReviewAgent       scheduler.Agent   `json:"review_agent" toml:"review_agent"` // Default when a task has no agent
	Randomize         bool              `json:"randomize" toml:"randomize"`       // Random pick within priority class and random roster agent
	Seed              int64             `json:"seed,omitempty" toml:"seed,omitempty"`
}

// LogConfig configures operational logging.
type LogConfig struct {
	Level       string `json:"level" toml:"level"` // debug, info, warn, error
	Development bool   `json:"development,omitempty" toml:"development,omitempty"`
}

// Config is the top-level configuration.
type Config struct {
	Scheduler SchedulerConfig `json:"scheduler" toml:"scheduler"`
	Log       LogConfig       `json:"log" toml:"log"`
}

// Validate rejects settings the scheduler cannot run with.
func (c *Config) Validate() error {
	return c.Scheduler.Validate()
}

// Validate rejects settings the scheduler cannot run with.
func (s SchedulerConfig) Validate() error {
	if s.ConcurrencyBudget <= 0 {
		return fmt.Errorf("concurrency_budget must be positive, got %d", s.ConcurrencyBudget)
	}
	if s.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", s.PollInterval)
	}
	for name, d := range map[string]Duration{
		"build_duration":  s.BuildDuration,
		"review_duration": s.ReviewDuration,
		"jitter":          s.Jitter,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %s", name, d)
		}
	}
	if len(s.AgentRoster) == 0 {
		return fmt.Errorf("agent_roster must not be empty")
	}
	for _, a := range []scheduler.Agent{s.BuildAgent, s.ReviewAgent} {
		if !s.HasAgent(a) {
			return fmt.Errorf("default agent %q is not in agent_roster", a)
		}
	}
	return nil
}

// HasAgent reports whether a is in the roster.
func (s SchedulerConfig) HasAgent(a scheduler.Agent) bool {
	for _, r := range s.AgentRoster {
		if r == a {
			return true
		}
	}
	return false
}
