package model

import "time"

// OutcomeLabel is the classification of a single mutant test run.
type OutcomeLabel int

const (
	// Killed indicates the test suite failed against the mutant.
	Killed OutcomeLabel = iota
	// Survived indicates the test suite passed against the mutant.
	Survived
	// Timeout indicates the test run exceeded its deadline.
	Timeout
	// Error indicates no test result could be produced for the mutant.
	Error
)

func (l OutcomeLabel) String() string {
	switch l {
	case Killed:
		return "killed"
	case Survived:
		return "survived"
	case Timeout:
		return "timeout"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Execution is the raw result of one test command invocation.
type Execution struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Duration time.Duration
}

// Passed reports whether the suite passed.
func (e Execution) Passed() bool {
	return !e.TimedOut && e.ExitCode == 0
}

// MutationOutcome is the result of running the test suite against one mutant.
type MutationOutcome struct {
	MutationID uint
	Label      OutcomeLabel
	Duration   time.Duration
	Detail     string
}

// MutationSummary is the flat record handed to downstream result aggregation.
type MutationSummary struct {
	Score      float64 `json:"score" yaml:"score"`
	Killed     int     `json:"killed" yaml:"killed"`
	Survived   int     `json:"survived" yaml:"survived"`
	Timeout    int     `json:"timeout" yaml:"timeout"`
	Suspicious int     `json:"suspicious" yaml:"suspicious"`
	Skipped    int     `json:"skipped" yaml:"skipped"`
	RunID      string  `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Error      string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// Tested returns the number of mutants that were run.
func (s MutationSummary) Tested() int {
	return s.Killed + s.Survived + s.Timeout + s.Suspicious
}

// Report is everything a single engine run produced.
type Report struct {
	Artifact Path
	Summary  MutationSummary
	Catalog  []Mutation
	Outcomes []MutationOutcome
	Baseline Execution
}
