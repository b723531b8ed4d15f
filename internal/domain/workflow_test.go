package domain

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/mutscore/internal/adapter"
	adaptermocks "gooze.dev/pkg/mutscore/internal/adapter/mocks"
	"gooze.dev/pkg/mutscore/internal/controller"
	controllermocks "gooze.dev/pkg/mutscore/internal/controller/mocks"
	m "gooze.dev/pkg/mutscore/internal/model"
)

type runFunc = func(context.Context, m.TestTarget, time.Duration) (m.Execution, error)

func newTestWorkflow(t *testing.T, runner adapter.TestRunnerAdapter, ui controller.UI) Workflow {
	t.Helper()

	fs := adapter.NewLocalSourceFSAdapter()
	goFile := adapter.NewLocalGoFileAdapter()
	mg := NewMutagen(goFile)
	guard := NewPatchGuard(fs)

	return NewWorkflow(fs, goFile, runner, adapter.NewReportStore(), ui, guard, NewOrchestrator(mg, guard, runner), mg)
}

func newBufferedUI() (*controller.SimpleUI, *bytes.Buffer) {
	var out bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	return controller.NewSimpleUI(cmd), &out
}

// failWhenInstalled fails the suite whenever the artifact contains needle.
func failWhenInstalled(t *testing.T, artifact m.Path, needles ...string) runFunc {
	t.Helper()

	return func(context.Context, m.TestTarget, time.Duration) (m.Execution, error) {
		src := string(readFileBytes(t, artifact))
		for _, needle := range needles {
			if strings.Contains(src, needle) {
				return m.Execution{ExitCode: 1, Stdout: "--- FAIL\n"}, nil
			}
		}

		return m.Execution{Stdout: "ok\n"}, nil
	}
}

func expectPassingBaseline(runner *adaptermocks.MockTestRunnerAdapter) {
	runner.On("Validate", mock.Anything).Return(nil).Once()
	runner.On("Run", mock.Anything, mock.Anything, DefaultBaselineTimeout).
		Return(m.Execution{Stdout: "ok\n"}, nil).Once()
}

func TestWorkflow_Test_Killed(t *testing.T) {
	artifact := copyExample(t, "add", "add.go")
	original := readFileBytes(t, artifact)
	output := filepath.Join(t.TempDir(), "out", "summary.json")

	runner := adaptermocks.NewMockTestRunnerAdapter(t)
	expectPassingBaseline(runner)
	runner.On("Run", mock.Anything, mock.Anything, DefaultMutationTimeout).
		Return(failWhenInstalled(t, artifact, "a - b"), nil).Once()

	ui, out := newBufferedUI()
	wf := newTestWorkflow(t, runner, ui)

	report, err := wf.Test(context.Background(), TestArgs{
		Artifact:     artifact,
		RunID:        "run-1",
		MaxMutations: DefaultMaxMutations,
		Output:       m.Path(output),
	})
	require.NoError(t, err)

	want := m.MutationSummary{Score: 1, Killed: 1, RunID: "run-1"}
	assert.Equal(t, want, report.Summary)
	assert.Len(t, report.Catalog, 1)
	assert.Len(t, report.Outcomes, 1)
	assert.True(t, report.Baseline.Passed())
	assert.Equal(t, original, readFileBytes(t, artifact))
	assert.NoFileExists(t, string(JournalPath(artifact)))

	saved, err := adapter.NewReportStore().LoadSummary(context.Background(), m.Path(output))
	require.NoError(t, err)
	assert.Equal(t, want, saved)

	assert.Contains(t, out.String(), "Testing 1 of 1 mutations")
	assert.Contains(t, out.String(), "run-1")
}

func TestWorkflow_Test_WeakSuite(t *testing.T) {
	artifact := copyExample(t, "ispos", "ispos.go")

	runner := adaptermocks.NewMockTestRunnerAdapter(t)
	expectPassingBaseline(runner)
	runner.On("Run", mock.Anything, mock.Anything, DefaultMutationTimeout).
		Return(failWhenInstalled(t, artifact, "x <= 1"), nil).Twice()

	ui, out := newBufferedUI()

	report, err := newTestWorkflow(t, runner, ui).Test(context.Background(), TestArgs{Artifact: artifact, RunID: "r"})
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, m.Killed, report.Outcomes[0].Label)
	assert.Equal(t, m.Survived, report.Outcomes[1].Label)
	assert.InDelta(t, 0.5, report.Summary.Score, 1e-9)
	assert.Contains(t, out.String(), "survived mutant #2")
	assert.Contains(t, out.String(), "+\treturn x > 2")
}

func TestWorkflow_Test_Budget(t *testing.T) {
	artifact := copyExample(t, "calc", "calc.go")

	runner := adaptermocks.NewMockTestRunnerAdapter(t)
	expectPassingBaseline(runner)
	runner.On("Run", mock.Anything, mock.Anything, DefaultMutationTimeout).
		Return(m.Execution{ExitCode: 1}, nil).Once()

	ui, _ := newBufferedUI()

	report, err := newTestWorkflow(t, runner, ui).Test(context.Background(), TestArgs{
		Artifact:     artifact,
		RunID:        "r",
		MaxMutations: 1,
	})
	require.NoError(t, err)

	assert.Len(t, report.Catalog, 5)
	assert.Equal(t, 1, report.Summary.Tested())
	assert.Equal(t, 4, report.Summary.Skipped)
}

func TestWorkflow_Test_UnlimitedBudget(t *testing.T) {
	artifact := copyExample(t, "calc", "calc.go")

	runner := adaptermocks.NewMockTestRunnerAdapter(t)
	expectPassingBaseline(runner)
	runner.On("Run", mock.Anything, mock.Anything, DefaultMutationTimeout).
		Return(m.Execution{ExitCode: 1}, nil).Times(5)

	ui, _ := newBufferedUI()

	report, err := newTestWorkflow(t, runner, ui).Test(context.Background(), TestArgs{Artifact: artifact, RunID: "r"})
	require.NoError(t, err)

	assert.Equal(t, m.MutationSummary{Score: 1, Killed: 5, RunID: "r"}, report.Summary)
}

func TestWorkflow_Test_TimeoutContinues(t *testing.T) {
	artifact := copyExample(t, "calc", "calc.go")
	original := readFileBytes(t, artifact)

	runner := adaptermocks.NewMockTestRunnerAdapter(t)
	runner.On("Validate", mock.Anything).Return(nil).Once()
	runner.On("Run", mock.Anything, mock.Anything, time.Second).
		Return(func(context.Context, m.TestTarget, time.Duration) (m.Execution, error) {
			if strings.Contains(string(readFileBytes(t, artifact)), "b + 1") {
				return m.Execution{TimedOut: true, ExitCode: -1, Duration: time.Second}, nil
			}

			return m.Execution{ExitCode: 1}, nil
		}, nil).Times(3)

	ui, _ := newBufferedUI()

	report, err := newTestWorkflow(t, runner, ui).Test(context.Background(), TestArgs{
		Artifact:        artifact,
		RunID:           "r",
		MaxMutations:    3,
		MutationTimeout: time.Second,
		SkipBaseline:    true,
	})
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 3)
	assert.Equal(t, m.Timeout, report.Outcomes[0].Label)
	assert.Equal(t, m.Killed, report.Outcomes[1].Label)
	assert.Equal(t, m.Killed, report.Outcomes[2].Label)
	assert.Equal(t, m.MutationSummary{Score: 1, Killed: 2, Timeout: 1, Skipped: 2, RunID: "r"}, report.Summary)
	assert.Equal(t, original, readFileBytes(t, artifact))
}

func TestWorkflow_Test_NoMutations(t *testing.T) {
	artifact := copyExample(t, "nomut", "hello.go")

	runner := adaptermocks.NewMockTestRunnerAdapter(t)
	expectPassingBaseline(runner)

	ui, _ := newBufferedUI()

	report, err := newTestWorkflow(t, runner, ui).Test(context.Background(), TestArgs{Artifact: artifact, RunID: "r"})
	require.NoError(t, err)

	assert.Equal(t, m.MutationSummary{RunID: "r", Error: ErrNoMutations.Error()}, report.Summary)
	assert.Empty(t, report.Outcomes)
}

func TestWorkflow_Test_FailingBaselineIsAWarning(t *testing.T) {
	artifact := copyExample(t, "add", "add.go")

	runner := adaptermocks.NewMockTestRunnerAdapter(t)
	runner.On("Validate", mock.Anything).Return(nil).Once()
	runner.On("Run", mock.Anything, mock.Anything, DefaultBaselineTimeout).
		Return(m.Execution{ExitCode: 1}, nil).Once()
	runner.On("Run", mock.Anything, mock.Anything, DefaultMutationTimeout).
		Return(m.Execution{ExitCode: 1}, nil).Once()

	ui, out := newBufferedUI()

	report, err := newTestWorkflow(t, runner, ui).Test(context.Background(), TestArgs{Artifact: artifact, RunID: "r"})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Summary.Killed)
	assert.Contains(t, out.String(), "Baseline: failing")
}

func TestWorkflow_Test_FatalErrors(t *testing.T) {
	baselineErr := errors.New("fork/exec: resource temporarily unavailable")

	tests := []struct {
		name    string
		example string
		file    string
		setup   func(runner *adaptermocks.MockTestRunnerAdapter)
		check   func(t *testing.T, err error)
	}{
		{
			name:    "artifact missing",
			example: "add",
			file:    "missing.go",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrArtifactNotFound)
			},
		},
		{
			name:    "artifact does not parse",
			example: "invalid",
			file:    "broken.go",
			check: func(t *testing.T, err error) {
				var parseErr *ParseError
				assert.True(t, errors.As(err, &parseErr), "expected *ParseError, got %v", err)
			},
		},
		{
			name:    "no test files",
			example: "notests",
			file:    "lib.go",
			setup: func(runner *adaptermocks.MockTestRunnerAdapter) {
				runner.On("Validate", mock.Anything).Return(nil).Once()
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNoValidTests)
			},
		},
		{
			name:    "test command missing",
			example: "add",
			file:    "add.go",
			setup: func(runner *adaptermocks.MockTestRunnerAdapter) {
				runner.On("Validate", mock.Anything).Return(adapter.ErrCommandNotFound).Once()
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, adapter.ErrCommandNotFound)
			},
		},
		{
			name:    "baseline produced no result",
			example: "add",
			file:    "add.go",
			setup: func(runner *adaptermocks.MockTestRunnerAdapter) {
				runner.On("Validate", mock.Anything).Return(nil).Once()
				runner.On("Run", mock.Anything, mock.Anything, DefaultBaselineTimeout).
					Return(m.Execution{}, baselineErr).Once()
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, baselineErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifact := copyExample(t, tt.example, tt.file)
			output := m.Path(filepath.Join(t.TempDir(), "summary.yaml"))

			runner := adaptermocks.NewMockTestRunnerAdapter(t)
			if tt.setup != nil {
				tt.setup(runner)
			}

			ui, _ := newBufferedUI()

			report, err := newTestWorkflow(t, runner, ui).Test(context.Background(), TestArgs{
				Artifact: artifact,
				RunID:    "r",
				Output:   output,
			})
			require.Error(t, err)
			tt.check(t, err)

			assert.Equal(t, err.Error(), report.Summary.Error)
			assert.Equal(t, "r", report.Summary.RunID)

			saved, loadErr := adapter.NewReportStore().LoadSummary(context.Background(), output)
			require.NoError(t, loadErr)
			assert.Equal(t, report.Summary, saved)
		})
	}
}

func TestWorkflow_Test_Cancelled(t *testing.T) {
	artifact := copyExample(t, "calc", "calc.go")
	original := readFileBytes(t, artifact)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := adaptermocks.NewMockTestRunnerAdapter(t)
	runner.On("Validate", mock.Anything).Return(nil).Once()
	runner.On("Run", mock.Anything, mock.Anything, DefaultMutationTimeout).
		Return(func(ctx context.Context, _ m.TestTarget, _ time.Duration) (m.Execution, error) {
			cancel()
			return m.Execution{}, ctx.Err()
		}, nil).Once()

	ui, out := newBufferedUI()

	report, err := newTestWorkflow(t, runner, ui).Test(ctx, TestArgs{Artifact: artifact, RunID: "r", SkipBaseline: true})
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, context.Canceled.Error(), report.Summary.Error)
	assert.Equal(t, original, readFileBytes(t, artifact))
	assert.NoFileExists(t, string(JournalPath(artifact)))
	assert.Contains(t, out.String(), "context canceled")
}

func TestWorkflow_Test_RecoversJournal(t *testing.T) {
	artifact := copyExample(t, "add", "add.go")
	original := readFileBytes(t, artifact)

	// An interrupted run left the mutant installed.
	writeFile(t, string(JournalPath(artifact)), string(original))
	writeFile(t, string(artifact), strings.Replace(string(original), "a + b", "a - b", 1))

	runner := adaptermocks.NewMockTestRunnerAdapter(t)
	expectPassingBaseline(runner)
	runner.On("Run", mock.Anything, mock.Anything, DefaultMutationTimeout).
		Return(failWhenInstalled(t, artifact, "a - b"), nil).Once()

	ui, _ := newBufferedUI()

	report, err := newTestWorkflow(t, runner, ui).Test(context.Background(), TestArgs{Artifact: artifact, RunID: "r"})
	require.NoError(t, err)

	require.Len(t, report.Catalog, 1)
	assert.Equal(t, "+", report.Catalog[0].OriginalToken)
	assert.Equal(t, m.Killed, report.Outcomes[0].Label)
	assert.Equal(t, original, readFileBytes(t, artifact))
}

func TestWorkflow_Test_UIStartFailure(t *testing.T) {
	startErr := errors.New("no terminal")

	ui := controllermocks.NewMockUI(t)
	ui.On("Start", mock.Anything, mock.Anything).Return(startErr).Once()

	runner := adaptermocks.NewMockTestRunnerAdapter(t)

	_, err := newTestWorkflow(t, runner, ui).Test(context.Background(), TestArgs{Artifact: "add.go"})
	require.ErrorIs(t, err, startErr)
}

func TestWorkflow_Test_DisplaysSummary(t *testing.T) {
	artifact := copyExample(t, "nomut", "hello.go")

	runner := adaptermocks.NewMockTestRunnerAdapter(t)
	runner.On("Validate", mock.Anything).Return(nil).Once()

	ui := controllermocks.NewMockUI(t)
	ui.On("Start", mock.Anything, mock.Anything).Return(nil).Once()
	ui.On("DisplaySummary", mock.Anything, m.MutationSummary{RunID: "r", Error: ErrNoMutations.Error()}).Once()
	ui.On("Close", mock.Anything).Once()

	_, err := newTestWorkflow(t, runner, ui).Test(context.Background(), TestArgs{Artifact: artifact, RunID: "r", SkipBaseline: true})
	require.NoError(t, err)
}

func TestWorkflow_Estimate(t *testing.T) {
	artifact := copyExample(t, "calc", "calc.go")
	ui, out := newBufferedUI()

	err := newTestWorkflow(t, adaptermocks.NewMockTestRunnerAdapter(t), ui).Estimate(context.Background(), EstimateArgs{Artifact: artifact})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "operator")
	assert.Contains(t, out.String(), "constant")
	assert.Contains(t, out.String(), "5")
}

func TestWorkflow_Estimate_ParseError(t *testing.T) {
	artifact := copyExample(t, "invalid", "broken.go")
	ui, out := newBufferedUI()

	err := newTestWorkflow(t, adaptermocks.NewMockTestRunnerAdapter(t), ui).Estimate(context.Background(), EstimateArgs{Artifact: artifact})

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, out.String(), "catalog error")
}

func TestWorkflow_Show(t *testing.T) {
	artifact := copyExample(t, "calc", "calc.go")
	original := readFileBytes(t, artifact)
	ui, out := newBufferedUI()

	err := newTestWorkflow(t, adaptermocks.NewMockTestRunnerAdapter(t), ui).Show(context.Background(), ShowArgs{Artifact: artifact, ID: 3})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "#3 operator * -> /")
	assert.Contains(t, out.String(), "-\treturn a*2 + b - 1")
	assert.Contains(t, out.String(), "+\treturn a/2 + b - 1")
	assert.Equal(t, original, readFileBytes(t, artifact))
}

func TestWorkflow_Show_UnknownID(t *testing.T) {
	artifact := copyExample(t, "add", "add.go")
	ui, _ := newBufferedUI()

	err := newTestWorkflow(t, adaptermocks.NewMockTestRunnerAdapter(t), ui).Show(context.Background(), ShowArgs{Artifact: artifact, ID: 7})
	require.ErrorIs(t, err, ErrUnknownMutation)
}

func TestWorkflow_View(t *testing.T) {
	path := m.Path(filepath.Join(t.TempDir(), "summary.json"))
	summary := m.MutationSummary{Score: 0.75, Killed: 3, Survived: 1, RunID: "exp-1"}
	require.NoError(t, adapter.NewReportStore().SaveSummary(context.Background(), path, summary, ""))

	ui, out := newBufferedUI()

	err := newTestWorkflow(t, adaptermocks.NewMockTestRunnerAdapter(t), ui).View(context.Background(), ViewArgs{Summary: path})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "75.00%")
	assert.Contains(t, out.String(), "exp-1")
}

func TestWorkflow_View_Missing(t *testing.T) {
	ui, _ := newBufferedUI()

	err := newTestWorkflow(t, adaptermocks.NewMockTestRunnerAdapter(t), ui).View(context.Background(), ViewArgs{Summary: "missing.json"})
	require.Error(t, err)
}

func TestWorkflow_Recover(t *testing.T) {
	artifact := copyExample(t, "add", "add.go")
	original := readFileBytes(t, artifact)
	writeFile(t, string(JournalPath(artifact)), string(original))
	writeFile(t, string(artifact), "package add\n")

	ui, _ := newBufferedUI()
	wf := newTestWorkflow(t, adaptermocks.NewMockTestRunnerAdapter(t), ui)

	recovered, err := wf.Recover(context.Background(), RecoverArgs{Artifact: artifact})
	require.NoError(t, err)
	assert.True(t, recovered)
	assert.Equal(t, original, readFileBytes(t, artifact))

	recovered, err = wf.Recover(context.Background(), RecoverArgs{Artifact: artifact})
	require.NoError(t, err)
	assert.False(t, recovered)
}

func requireGoToolchain(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("runs the go toolchain")
	}

	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go toolchain not on PATH")
	}
}

func TestWorkflow_Test_Integration(t *testing.T) {
	requireGoToolchain(t)

	tests := []struct {
		name            string
		example         string
		file            string
		mutationTimeout time.Duration
		want            []m.OutcomeLabel
	}{
		{name: "killed", example: "add", file: "add.go", want: []m.OutcomeLabel{m.Killed}},
		{name: "weak suite", example: "ispos", file: "ispos.go", want: []m.OutcomeLabel{m.Killed, m.Survived}},
		{name: "hanging suite", example: "hang", file: "sum.go", mutationTimeout: 5 * time.Second, want: []m.OutcomeLabel{m.Timeout}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifact := copyExample(t, tt.example, tt.file)
			original := readFileBytes(t, artifact)
			ui, _ := newBufferedUI()

			wf := newTestWorkflow(t, adapter.NewLocalTestRunnerAdapter(), ui)

			report, err := wf.Test(context.Background(), TestArgs{
				Artifact:        artifact,
				RunID:           "it",
				MutationTimeout: tt.mutationTimeout,
			})
			require.NoError(t, err)
			require.True(t, report.Baseline.Passed(), "baseline: %s%s", report.Baseline.Stdout, report.Baseline.Stderr)

			labels := make([]m.OutcomeLabel, 0, len(report.Outcomes))
			for _, outcome := range report.Outcomes {
				labels = append(labels, outcome.Label)
			}

			assert.Equal(t, tt.want, labels)
			assert.Equal(t, original, readFileBytes(t, artifact))
			assert.NoFileExists(t, string(JournalPath(artifact)))
		})
	}
}
