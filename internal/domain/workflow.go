package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gooze.dev/pkg/mutscore/internal/adapter"
	"gooze.dev/pkg/mutscore/internal/controller"
	m "gooze.dev/pkg/mutscore/internal/model"
	pkg "gooze.dev/pkg/mutscore/pkg"
)

// Defaults for a test run.
const (
	DefaultMaxMutations    = 20
	DefaultMutationTimeout = 15 * time.Second
	DefaultBaselineTimeout = 30 * time.Second
)

// ErrNoMutations is recorded in the summary when the artifact has no mutable sites.
var ErrNoMutations = errors.New("no mutations generated")

// TestArgs configures a full mutation testing run over one artifact.
type TestArgs struct {
	Artifact m.Path
	// Tests is the test directory, test file or package pattern. Empty means
	// the artifact's own package.
	Tests   m.Path
	WorkDir m.Path
	RunID   string
	// MaxMutations caps how many catalog entries are tested; zero or less
	// tests the whole catalog.
	MaxMutations    int
	MutationTimeout time.Duration
	BaselineTimeout time.Duration
	SkipBaseline    bool
	// Output receives the summary when set; Format overrides the encoding
	// derived from its extension.
	Output m.Path
	Format string
}

// EstimateArgs selects the artifact whose catalog is listed.
type EstimateArgs struct {
	Artifact m.Path
}

// ShowArgs selects one mutant to render as a diff.
type ShowArgs struct {
	Artifact m.Path
	ID       uint
}

// ViewArgs points at a previously written summary.
type ViewArgs struct {
	Summary m.Path
}

// RecoverArgs selects the artifact to restore from its journal.
type RecoverArgs struct {
	Artifact m.Path
}

// Workflow is the entry point for every CLI operation.
type Workflow interface {
	Test(ctx context.Context, args TestArgs) (m.Report, error)
	Estimate(ctx context.Context, args EstimateArgs) error
	Show(ctx context.Context, args ShowArgs) error
	View(ctx context.Context, args ViewArgs) error
	Recover(ctx context.Context, args RecoverArgs) (bool, error)
}

type workflow struct {
	adapter.ReportStore
	adapter.SourceFSAdapter
	controller.UI
	Orchestrator
	Mutagen

	goFile     adapter.GoFileAdapter
	testRunner adapter.TestRunnerAdapter
	guard      PatchGuard
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	goFileAdapter adapter.GoFileAdapter,
	testAdapter adapter.TestRunnerAdapter,
	reportStore adapter.ReportStore,
	ui controller.UI,
	guard PatchGuard,
	orchestrator Orchestrator,
	mutagen Mutagen,
) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		ReportStore:     reportStore,
		UI:              ui,
		Orchestrator:    orchestrator,
		Mutagen:         mutagen,
		goFile:          goFileAdapter,
		testRunner:      testAdapter,
		guard:           guard,
	}
}

func (args TestArgs) withDefaults() TestArgs {
	if args.MutationTimeout <= 0 {
		args.MutationTimeout = DefaultMutationTimeout
	}

	if args.BaselineTimeout <= 0 {
		args.BaselineTimeout = DefaultBaselineTimeout
	}

	return args
}

// Test runs the engine and always produces a summary. When the run aborts the
// summary carries the error text and the error is returned as well.
func (w *workflow) Test(ctx context.Context, args TestArgs) (m.Report, error) {
	args = args.withDefaults()
	runID := ResolveRunID(ctx, w.SourceFSAdapter, args.RunID, args.Tests)
	logger := slog.With("run_id", runID, "artifact", args.Artifact)

	if err := w.Start(ctx, controller.WithTestMode(), controller.WithArtifact(args.Artifact)); err != nil {
		logger.Error("Failed to start workflow UI", "error", err)
		return m.Report{}, err
	}

	// The summary is shown and saved even when ctx was cancelled.
	final := context.WithoutCancel(ctx)
	defer w.Close(final)

	report, err := w.run(ctx, args, logger)
	report.Artifact = args.Artifact

	if err != nil {
		logger.Error("Mutation run aborted", "error", err)
		report.Summary = m.MutationSummary{Error: err.Error()}
	}

	report.Summary.RunID = runID

	w.DisplaySummary(final, report.Summary)

	if args.Output != "" {
		if saveErr := w.SaveSummary(final, args.Output, report.Summary, args.Format); saveErr != nil {
			logger.Error("Failed to save summary", "path", args.Output, "error", saveErr)
			err = errors.Join(err, fmt.Errorf("save summary: %w", saveErr))
		}
	}

	logger.Info("Mutation run finished",
		"score", report.Summary.Score,
		"killed", report.Summary.Killed,
		"survived", report.Summary.Survived,
		"timeout", report.Summary.Timeout,
		"suspicious", report.Summary.Suspicious,
		"skipped", report.Summary.Skipped,
	)

	return report, err
}

func (w *workflow) run(ctx context.Context, args TestArgs, logger *slog.Logger) (m.Report, error) {
	report := m.Report{Artifact: args.Artifact}

	src, catalog, err := w.loadCatalog(ctx, args.Artifact)
	if err != nil {
		return report, err
	}

	report.Catalog = catalog

	target, err := w.prepareTarget(ctx, args)
	if err != nil {
		return report, err
	}

	logger.Info("Resolved test target", "module", target.Module, "dir", target.WorkDir, "arg", target.Arg, "mutations", len(catalog))

	if !args.SkipBaseline {
		baseline, err := w.runBaseline(ctx, target, args.BaselineTimeout, logger)
		if err != nil {
			return report, err
		}

		report.Baseline = baseline
	}

	if len(catalog) == 0 {
		logger.Warn("No mutations could be generated")
		report.Summary = m.MutationSummary{Error: ErrNoMutations.Error()}

		return report, nil
	}

	selected := catalog
	if args.MaxMutations > 0 && args.MaxMutations < len(catalog) {
		selected = catalog[:args.MaxMutations]
	}

	w.DisplayUpcomingTestsInfo(ctx, len(selected), len(catalog))

	outcomes, err := pkg.NewFileSpill[m.MutationOutcome]("")
	if err != nil {
		return report, err
	}

	defer func() {
		if err := outcomes.Close(); err != nil {
			logger.Warn("Failed to close outcome spill", "error", err)
		}
	}()

	before, err := w.HashFile(ctx, args.Artifact)
	if err != nil {
		return report, fmt.Errorf("hash %s: %w", args.Artifact, err)
	}

	for i, mutation := range selected {
		outcome, err := w.testOne(ctx, args, src, target, mutation, i, logger)
		if err != nil {
			return report, err
		}

		if err := outcomes.Append(outcome); err != nil {
			return report, fmt.Errorf("record outcome: %w", err)
		}

		report.Outcomes = append(report.Outcomes, outcome)
	}

	if err := w.verifyIntegrity(context.WithoutCancel(ctx), args.Artifact, before); err != nil {
		return report, err
	}

	summary, err := SummaryFromSpill(outcomes, len(catalog))
	if err != nil {
		return report, fmt.Errorf("aggregate outcomes: %w", err)
	}

	report.Summary = summary

	return report, nil
}

// loadCatalog restores a leftover journal, then reads and parses the artifact.
func (w *workflow) loadCatalog(ctx context.Context, artifact m.Path) ([]byte, []m.Mutation, error) {
	if _, err := w.FileInfo(ctx, artifact); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, artifact)
		}

		return nil, nil, err
	}

	if _, err := w.guard.Recover(ctx, artifact); err != nil {
		return nil, nil, err
	}

	src, err := w.ReadFile(ctx, artifact)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", artifact, err)
	}

	catalog, err := w.Discover(ctx, artifact, src)
	if err != nil {
		return nil, nil, err
	}

	return src, catalog, nil
}

func (w *workflow) prepareTarget(ctx context.Context, args TestArgs) (m.TestTarget, error) {
	if err := w.testRunner.Validate(ctx); err != nil {
		return m.TestTarget{}, err
	}

	target, err := ResolveTarget(ctx, w.SourceFSAdapter, args.Artifact, args.Tests, args.WorkDir)
	if err != nil {
		return m.TestTarget{}, fmt.Errorf("resolve test target: %w", err)
	}

	if err := ValidateTestTarget(ctx, w.SourceFSAdapter, w.goFile, target.Path); err != nil {
		return m.TestTarget{}, err
	}

	return target, nil
}

// runBaseline runs the unmodified suite. Only a run that produced no result
// is fatal; a failing or slow baseline is reported and the run continues.
func (w *workflow) runBaseline(ctx context.Context, target m.TestTarget, timeout time.Duration, logger *slog.Logger) (m.Execution, error) {
	baseline, err := w.testRunner.Run(ctx, target, timeout)
	w.DisplayBaseline(ctx, baseline, err)

	if err != nil {
		return baseline, fmt.Errorf("baseline test run: %w", err)
	}

	switch {
	case baseline.TimedOut:
		logger.Warn("Baseline test run timed out, mutant results may be unreliable", "timeout", timeout)
	case baseline.ExitCode != 0:
		logger.Warn("Baseline test run failed, mutant results may be unreliable", "exit_code", baseline.ExitCode)
	default:
		logger.Info("Baseline test run passed", "duration", baseline.Duration)
	}

	return baseline, nil
}

func (w *workflow) testOne(
	ctx context.Context,
	args TestArgs,
	src []byte,
	target m.TestTarget,
	mutation m.Mutation,
	index int,
	logger *slog.Logger,
) (m.MutationOutcome, error) {
	w.DisplayStartingTestInfo(ctx, mutation, index)

	outcome, err := w.TestMutation(ctx, MutationArgs{
		Artifact: args.Artifact,
		Source:   src,
		Mutation: mutation,
		Target:   target,
		Timeout:  args.MutationTimeout,
	})
	if err != nil {
		return m.MutationOutcome{}, err
	}

	logger.Info("Mutation tested",
		"id", mutation.ID,
		"kind", mutation.Kind,
		"line", mutation.Line,
		"original", mutation.OriginalToken,
		"mutated", mutation.MutatedToken,
		"outcome", outcome.Label.String(),
		"duration", outcome.Duration,
	)

	diff := ""
	if outcome.Label == m.Survived {
		diff = w.mutantDiff(ctx, args.Artifact, src, mutation)
	}

	w.DisplayCompletedTestInfo(ctx, mutation, outcome, diff)

	return outcome, nil
}

func (w *workflow) mutantDiff(ctx context.Context, artifact m.Path, src []byte, mutation m.Mutation) string {
	mutant, err := w.Apply(ctx, artifact, src, mutation)
	if err != nil {
		return ""
	}

	diff, err := UnifiedDiff(artifact, src, mutant.Code)
	if err != nil {
		slog.Warn("Failed to render mutant diff", "id", mutation.ID, "error", err)
		return ""
	}

	return diff
}

// verifyIntegrity checks the artifact ends the run with the bytes it started with.
func (w *workflow) verifyIntegrity(ctx context.Context, artifact m.Path, before string) error {
	after, err := w.HashFile(ctx, artifact)
	if err != nil {
		return &RestoreError{Path: artifact, Journal: JournalPath(artifact), Err: err}
	}

	if after != before {
		return &RestoreError{Path: artifact, Journal: JournalPath(artifact), Err: errors.New("artifact changed during the run")}
	}

	return nil
}

// Estimate lists the mutation catalog of an artifact without running tests.
func (w *workflow) Estimate(ctx context.Context, args EstimateArgs) error {
	if err := w.Start(ctx, controller.WithEstimateMode(), controller.WithArtifact(args.Artifact)); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	_, catalog, err := w.loadCatalog(ctx, args.Artifact)

	if displayErr := w.DisplayCatalog(ctx, args.Artifact, catalog, err); displayErr != nil && err == nil {
		w.Close(ctx)
		slog.Error("Failed to display catalog", "error", displayErr)

		return fmt.Errorf("display: %w", displayErr)
	}

	if err != nil {
		w.Close(ctx)
		slog.Error("Failed to discover mutations", "artifact", args.Artifact, "error", err)

		return err
	}

	// Wait for UI to be closed by user (press 'q')
	w.Wait(ctx)
	w.Close(ctx)

	return nil
}

// Show renders the diff of a single mutant. The artifact is not modified.
func (w *workflow) Show(ctx context.Context, args ShowArgs) error {
	src, catalog, err := w.loadCatalog(ctx, args.Artifact)
	if err != nil {
		return err
	}

	mutation, err := FindMutation(catalog, args.ID)
	if err != nil {
		return err
	}

	mutant, err := w.Apply(ctx, args.Artifact, src, mutation)
	if err != nil {
		return err
	}

	diff, err := UnifiedDiff(args.Artifact, src, mutant.Code)
	if err != nil {
		return fmt.Errorf("render diff: %w", err)
	}

	return w.DisplayDiff(ctx, mutation, diff)
}

// View displays a summary written by an earlier run.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	summary, err := w.LoadSummary(ctx, args.Summary)
	if err != nil {
		slog.Error("Failed to load summary", "path", args.Summary, "error", err)
		return err
	}

	w.DisplaySummary(ctx, summary)

	return nil
}

// Recover restores an artifact left mutated by an interrupted run.
func (w *workflow) Recover(ctx context.Context, args RecoverArgs) (bool, error) {
	return w.guard.Recover(ctx, args.Artifact)
}
