// Package controller provides output adapters for displaying mutation testing results.
package controller

import (
	"context"

	m "gooze.dev/pkg/mutscore/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeEstimate StartMode = iota
	ModeTest
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode     StartMode
	artifact m.Path
}

// WithEstimateMode sets the UI to catalog listing mode.
func WithEstimateMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeEstimate
	}
}

// WithTestMode sets the UI to test execution mode.
func WithTestMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeTest
	}
}

// WithArtifact names the file under test in headers.
func WithArtifact(path m.Path) StartOption {
	return func(c *StartConfig) {
		c.artifact = path
	}
}

func newStartConfig(options []StartOption) StartConfig {
	config := StartConfig{mode: ModeTest}
	for _, option := range options {
		option(&config)
	}

	return config
}

// UI defines the interface for displaying mutation testing progress and results.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayCatalog(ctx context.Context, artifact m.Path, mutations []m.Mutation, err error) error
	DisplayBaseline(ctx context.Context, execution m.Execution, err error)
	DisplayUpcomingTestsInfo(ctx context.Context, tested int, total int)
	DisplayStartingTestInfo(ctx context.Context, mutation m.Mutation, index int)
	DisplayCompletedTestInfo(ctx context.Context, mutation m.Mutation, outcome m.MutationOutcome, diff string)
	DisplaySummary(ctx context.Context, summary m.MutationSummary)
	DisplayDiff(ctx context.Context, mutation m.Mutation, diff string) error
}
