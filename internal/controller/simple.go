package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "gooze.dev/pkg/mutscore/internal/model"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd    *cobra.Command
	config StartConfig
	total  int
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.config = newStartConfig(options)
	s.total = 0

	if s.config.mode == ModeTest && s.config.artifact != "" {
		s.printf("Mutation testing %s\n", s.config.artifact)
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(_ context.Context) {}

// DisplayCatalog prints the mutation catalog or the discovery error.
func (s *SimpleUI) DisplayCatalog(ctx context.Context, artifact m.Path, mutations []m.Mutation, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if err != nil {
		s.printf("catalog error: %v\n", err)
		return err
	}

	s.printf("\n%s", renderCatalogTable(artifact, mutations))

	return nil
}

func renderCatalogTable(artifact m.Path, mutations []m.Mutation) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"ID", "Kind", "Position", "Original", "Mutated"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
	})

	for _, mutation := range mutations {
		table.Append([]string{
			fmt.Sprintf("%d", mutation.ID),
			string(mutation.Kind),
			fmt.Sprintf("%d:%d", mutation.Line, mutation.Column),
			mutation.OriginalToken,
			mutation.MutatedToken,
		})
	}

	table.SetFooter([]string{"", "", string(artifact), "Total", fmt.Sprintf("%d", len(mutations))})
	table.Render()

	return tableBuffer.String()
}

// DisplayBaseline reports the unmodified test run.
func (s *SimpleUI) DisplayBaseline(ctx context.Context, execution m.Execution, err error) {
	if ctx.Err() != nil {
		return
	}

	s.printf("Baseline: %s\n", describeBaseline(execution, err))
}

func describeBaseline(execution m.Execution, err error) string {
	switch {
	case err != nil:
		return fmt.Sprintf("error (%v)", err)
	case execution.TimedOut:
		return "timed out, results may be unreliable"
	case execution.ExitCode != 0:
		return fmt.Sprintf("failing (exit status %d), results may be unreliable", execution.ExitCode)
	default:
		return fmt.Sprintf("passed in %s", execution.Duration.Round(time.Millisecond))
	}
}

// DisplayUpcomingTestsInfo shows how many mutations will be tested.
func (s *SimpleUI) DisplayUpcomingTestsInfo(ctx context.Context, tested int, total int) {
	if ctx.Err() != nil {
		return
	}

	s.total = tested
	s.printf("Testing %d of %d mutations\n", tested, total)
}

// DisplayStartingTestInfo shows info about the mutation test starting.
func (s *SimpleUI) DisplayStartingTestInfo(ctx context.Context, mutation m.Mutation, index int) {
	if ctx.Err() != nil {
		return
	}

	s.printf("[%d/%d] %s\n", index+1, s.total, describeMutation(mutation))
}

// DisplayCompletedTestInfo shows the outcome and, for survivors, the mutant diff.
func (s *SimpleUI) DisplayCompletedTestInfo(ctx context.Context, mutation m.Mutation, outcome m.MutationOutcome, diff string) {
	if ctx.Err() != nil {
		return
	}

	s.printf("  -> %s (%s)\n", colorLabel(outcome.Label), outcome.Duration.Round(time.Millisecond))

	if outcome.Label == m.Error && outcome.Detail != "" {
		s.printf("     %s\n", firstLine(outcome.Detail))
	}

	if diff != "" {
		s.printf("     survived mutant #%d:\n%s\n", mutation.ID, strings.TrimRight(diff, "\n"))
	}
}

// DisplaySummary prints the final summary record.
func (s *SimpleUI) DisplaySummary(ctx context.Context, summary m.MutationSummary) {
	if ctx.Err() != nil {
		return
	}

	s.printf("\n%s", renderSummaryTable(summary))
}

func renderSummaryTable(summary m.MutationSummary) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	table.Append([]string{"score", fmt.Sprintf("%.2f%%", summary.Score*100)})
	table.Append([]string{m.Killed.String(), fmt.Sprintf("%d", summary.Killed)})
	table.Append([]string{m.Survived.String(), fmt.Sprintf("%d", summary.Survived)})
	table.Append([]string{m.Timeout.String(), fmt.Sprintf("%d", summary.Timeout)})
	table.Append([]string{"suspicious", fmt.Sprintf("%d", summary.Suspicious)})
	table.Append([]string{"skipped", fmt.Sprintf("%d", summary.Skipped)})

	if summary.RunID != "" {
		table.Append([]string{"run id", summary.RunID})
	}

	if summary.Error != "" {
		table.Append([]string{"error", summary.Error})
	}

	table.Render()

	return tableBuffer.String()
}

// DisplayDiff prints the diff of a single mutant.
func (s *SimpleUI) DisplayDiff(ctx context.Context, mutation m.Mutation, diff string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s\n%s\n", describeMutation(mutation), strings.TrimRight(diff, "\n"))

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func describeMutation(mutation m.Mutation) string {
	return fmt.Sprintf("#%d %s %s -> %s at line %d:%d",
		mutation.ID, mutation.Kind, mutation.OriginalToken, mutation.MutatedToken, mutation.Line, mutation.Column)
}

var labelColors = map[m.OutcomeLabel]*color.Color{
	m.Killed:   color.New(color.FgGreen),
	m.Survived: color.New(color.FgRed, color.Bold),
	m.Timeout:  color.New(color.FgYellow),
	m.Error:    color.New(color.FgMagenta),
}

func colorLabel(label m.OutcomeLabel) string {
	if c, ok := labelColors[label]; ok {
		return c.Sprint(label.String())
	}

	return label.String()
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}

	return s
}
