package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gooze.dev/pkg/mutscore/internal/adapter"
	m "gooze.dev/pkg/mutscore/internal/model"
)

// maxDetail bounds the test output kept on an outcome.
const maxDetail = 2048

// Orchestrator coordinates applying one mutation to the artifact in place and
// running the tests against it to determine whether the mutation is killed or
// survives.
type Orchestrator interface {
	// TestMutation returns the outcome for mutation. Per-mutation failures are
	// reported as an error outcome; a returned error means the run must stop.
	TestMutation(ctx context.Context, args MutationArgs) (m.MutationOutcome, error)
}

// MutationArgs describes a single mutant test.
type MutationArgs struct {
	Artifact m.Path
	Source   []byte
	Mutation m.Mutation
	Target   m.TestTarget
	Timeout  time.Duration
}

type orchestrator struct {
	mutagen     Mutagen
	guard       PatchGuard
	testAdapter adapter.TestRunnerAdapter
}

// NewOrchestrator constructs an Orchestrator from its collaborators.
func NewOrchestrator(mutagen Mutagen, guard PatchGuard, testAdapter adapter.TestRunnerAdapter) Orchestrator {
	return &orchestrator{
		mutagen:     mutagen,
		guard:       guard,
		testAdapter: testAdapter,
	}
}

func (to *orchestrator) TestMutation(ctx context.Context, args MutationArgs) (m.MutationOutcome, error) {
	if err := ctx.Err(); err != nil {
		return m.MutationOutcome{}, err
	}

	mutant, err := to.mutagen.Apply(ctx, args.Artifact, args.Source, args.Mutation)
	if err != nil {
		if ctx.Err() != nil {
			return m.MutationOutcome{}, ctx.Err()
		}

		return errorOutcome(args.Mutation, fmt.Errorf("apply: %w", err)), nil
	}

	var (
		execution m.Execution
		runErr    error
	)

	err = to.guard.WithMutant(ctx, args.Artifact, mutant.Code, func(ctx context.Context) error {
		execution, runErr = to.testAdapter.Run(ctx, args.Target, args.Timeout)
		if runErr != nil && ctx.Err() != nil {
			return ctx.Err()
		}

		return nil
	})

	var restoreErr *RestoreError

	switch {
	case errors.As(err, &restoreErr):
		return m.MutationOutcome{}, err
	case ctx.Err() != nil:
		return m.MutationOutcome{}, ctx.Err()
	case err != nil:
		slog.Warn("Failed to install mutant", "id", args.Mutation.ID, "error", err)
		return errorOutcome(args.Mutation, err), nil
	}

	if runErr != nil {
		slog.Warn("Test command produced no result", "id", args.Mutation.ID, "error", runErr)
	}

	outcome := outcomeFor(args.Mutation, execution, runErr)
	if outcome.Label == m.Killed || outcome.Label == m.Timeout {
		outcome.Detail = joinDetail(outcome.Detail, execution.Stdout+execution.Stderr)
	}

	return outcome, nil
}

func errorOutcome(mutation m.Mutation, err error) m.MutationOutcome {
	return m.MutationOutcome{
		MutationID: mutation.ID,
		Label:      m.Error,
		Detail:     err.Error(),
	}
}

func joinDetail(detail, output string) string {
	if output == "" {
		return detail
	}

	if len(output) > maxDetail {
		output = "..." + output[len(output)-maxDetail:]
	}

	return detail + "\n" + output
}
