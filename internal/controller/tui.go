package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	m "gooze.dev/pkg/mutscore/internal/model"
)

// maxRecent bounds the completed mutations kept on screen.
const maxRecent = 8

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	labelStyles = map[m.OutcomeLabel]lipgloss.Style{
		m.Killed:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		m.Survived: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		m.Timeout:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		m.Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	}
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output io.Writer
	input  io.Reader

	mu      sync.Mutex
	program *tea.Program
	group   *errgroup.Group
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer, input io.Reader) *TUI {
	return &TUI{output: output, input: input}
}

// Start launches the Bubble Tea program in the background.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.program != nil {
		return nil
	}

	config := newStartConfig(options)
	model := newRunModel(config)

	programOptions := []tea.ProgramOption{tea.WithOutput(t.output), tea.WithoutSignalHandler()}
	if t.input != nil {
		programOptions = append(programOptions, tea.WithInput(t.input))
	} else {
		programOptions = append(programOptions, tea.WithInput(nil))
	}

	program := tea.NewProgram(model, programOptions...)
	group := &errgroup.Group{}

	group.Go(func() error {
		_, err := program.Run()
		return err
	})

	t.program = program
	t.group = group

	return nil
}

// Close stops the program and waits for it to exit.
func (t *TUI) Close(_ context.Context) {
	t.mu.Lock()
	program, group := t.program, t.group
	t.program, t.group = nil, nil
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Quit()

	if err := group.Wait(); err != nil {
		slog.Error("TUI exited with error", "error", err)
	}
}

// Wait blocks until the user quits the program.
func (t *TUI) Wait(ctx context.Context) {
	t.mu.Lock()
	group := t.group
	t.mu.Unlock()

	if group == nil {
		return
	}

	done := make(chan struct{})

	go func() {
		_ = group.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
	case <-done:
	}
}

// send delivers msg to the running program. Without one, fallback renders
// static output directly.
func (t *TUI) send(msg tea.Msg, fallback func() string) {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program != nil {
		program.Send(msg)
		return
	}

	if fallback != nil {
		_, _ = fmt.Fprint(t.output, fallback())
	}
}

// DisplayCatalog shows the catalog of the artifact.
func (t *TUI) DisplayCatalog(ctx context.Context, artifact m.Path, mutations []m.Mutation, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	t.send(catalogMsg{artifact: artifact, mutations: mutations, err: err}, func() string {
		return renderCatalog(artifact, mutations, err)
	})

	return err
}

// DisplayBaseline shows the result of the unmodified test run.
func (t *TUI) DisplayBaseline(ctx context.Context, execution m.Execution, err error) {
	if ctx.Err() != nil {
		return
	}

	t.send(baselineMsg{text: describeBaseline(execution, err), ok: err == nil && execution.Passed()}, nil)
}

// DisplayUpcomingTestsInfo sets the progress total.
func (t *TUI) DisplayUpcomingTestsInfo(ctx context.Context, tested int, total int) {
	if ctx.Err() != nil {
		return
	}

	t.send(upcomingMsg{tested: tested, total: total}, nil)
}

// DisplayStartingTestInfo marks the mutation under test.
func (t *TUI) DisplayStartingTestInfo(ctx context.Context, mutation m.Mutation, index int) {
	if ctx.Err() != nil {
		return
	}

	t.send(startingMsg{mutation: mutation, index: index}, nil)
}

// DisplayCompletedTestInfo records the outcome of a mutation.
func (t *TUI) DisplayCompletedTestInfo(ctx context.Context, mutation m.Mutation, outcome m.MutationOutcome, diff string) {
	if ctx.Err() != nil {
		return
	}

	t.send(completedMsg{mutation: mutation, outcome: outcome, diff: diff}, nil)
}

// DisplaySummary shows the final summary.
func (t *TUI) DisplaySummary(ctx context.Context, summary m.MutationSummary) {
	if ctx.Err() != nil {
		return
	}

	t.send(summaryMsg{summary: summary}, func() string {
		return renderSummary(summary)
	})
}

// DisplayDiff shows the diff of a single mutant.
func (t *TUI) DisplayDiff(ctx context.Context, mutation m.Mutation, diff string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.send(diffMsg{mutation: mutation, diff: diff}, func() string {
		return renderDiff(mutation, diff)
	})

	return nil
}

type (
	catalogMsg struct {
		artifact  m.Path
		mutations []m.Mutation
		err       error
	}
	baselineMsg struct {
		text string
		ok   bool
	}
	upcomingMsg struct {
		tested int
		total  int
	}
	startingMsg struct {
		mutation m.Mutation
		index    int
	}
	completedMsg struct {
		mutation m.Mutation
		outcome  m.MutationOutcome
		diff     string
	}
	summaryMsg struct {
		summary m.MutationSummary
	}
	diffMsg struct {
		mutation m.Mutation
		diff     string
	}
)

type completedEntry struct {
	mutation m.Mutation
	outcome  m.MutationOutcome
}

// runModel is the Bubble Tea model behind the TUI.
type runModel struct {
	config   StartConfig
	progress progress.Model

	catalog    []m.Mutation
	catalogErr error
	diff       string
	diffOf     *m.Mutation

	baseline   string
	baselineOK bool

	tested    int
	total     int
	done      int
	current   *m.Mutation
	counts    map[m.OutcomeLabel]int
	recent    []completedEntry
	survivors []string

	summary  *m.MutationSummary
	width    int
	quitting bool
}

func newRunModel(config StartConfig) runModel {
	return runModel{
		config:   config,
		progress: progress.New(progress.WithDefaultGradient()),
		counts:   map[m.OutcomeLabel]int{},
	}
}

func (rm runModel) Init() tea.Cmd {
	return nil
}

//nolint:cyclop // one case per message type
func (rm runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		rm.width = msg.Width
		rm.progress.Width = max(msg.Width-20, 10)
	case tea.KeyMsg:
		return rm.handleKeyPress(msg)
	case catalogMsg:
		rm.catalog = msg.mutations
		rm.catalogErr = msg.err
	case baselineMsg:
		rm.baseline = msg.text
		rm.baselineOK = msg.ok
	case upcomingMsg:
		rm.tested = msg.tested
		rm.total = msg.total
	case startingMsg:
		mutation := msg.mutation
		rm.current = &mutation
	case completedMsg:
		rm.done++
		rm.current = nil
		rm.counts[msg.outcome.Label]++
		rm.recent = append(rm.recent, completedEntry{mutation: msg.mutation, outcome: msg.outcome})

		if len(rm.recent) > maxRecent {
			rm.recent = rm.recent[len(rm.recent)-maxRecent:]
		}

		if msg.diff != "" {
			rm.survivors = append(rm.survivors, msg.diff)
		}
	case summaryMsg:
		summary := msg.summary
		rm.summary = &summary
	case diffMsg:
		mutation := msg.mutation
		rm.diffOf = &mutation
		rm.diff = msg.diff
	}

	return rm, nil
}

func (rm runModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		rm.quitting = true

		if rm.config.mode == ModeTest {
			interruptSelf()
		}

		return rm, tea.Quit
	case "q", "esc":
		rm.quitting = true
		return rm, tea.Quit
	}

	return rm, nil
}

// interruptSelf routes ctrl+c typed into the raw-mode terminal to the same
// signal path a real SIGINT takes, so the run is cancelled and the artifact restored.
func interruptSelf() {
	process, err := os.FindProcess(os.Getpid())
	if err == nil {
		err = process.Signal(os.Interrupt)
	}

	if err != nil {
		slog.Warn("Failed to interrupt run", "error", err)
	}
}

func (rm runModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("mutscore"))

	if rm.config.artifact != "" {
		b.WriteString(faintStyle.Render(" " + string(rm.config.artifact)))
	}

	b.WriteString("\n\n")

	switch rm.config.mode {
	case ModeEstimate:
		if rm.catalog != nil || rm.catalogErr != nil {
			b.WriteString(renderCatalog(rm.config.artifact, rm.catalog, rm.catalogErr))
		}

		b.WriteString(faintStyle.Render("q: quit") + "\n")
	case ModeTest:
		rm.renderRun(&b)
	}

	if rm.diffOf != nil {
		b.WriteString(renderDiff(*rm.diffOf, rm.diff))
	}

	return b.String()
}

func (rm runModel) renderRun(b *strings.Builder) {
	if rm.baseline != "" {
		style := faintStyle
		if !rm.baselineOK {
			style = errorStyle
		}

		b.WriteString(style.Render("baseline: "+rm.baseline) + "\n\n")
	}

	if rm.tested > 0 {
		percent := float64(rm.done) / float64(rm.tested)
		fmt.Fprintf(b, "%s %d/%d (catalog %d)\n\n", rm.progress.ViewAs(percent), rm.done, rm.tested, rm.total)
	}

	for _, entry := range rm.recent {
		fmt.Fprintf(b, "  %s  %s\n", styleLabel(entry.outcome.Label), describeMutation(entry.mutation))
	}

	if rm.current != nil {
		fmt.Fprintf(b, "  %s  %s\n", faintStyle.Render("running"), describeMutation(*rm.current))
	}

	if rm.done > 0 {
		fmt.Fprintf(b, "\n  %s %d  %s %d  %s %d  %s %d\n",
			styleLabel(m.Killed), rm.counts[m.Killed],
			styleLabel(m.Survived), rm.counts[m.Survived],
			styleLabel(m.Timeout), rm.counts[m.Timeout],
			styleLabel(m.Error), rm.counts[m.Error],
		)
	}

	if rm.summary != nil {
		for _, diff := range rm.survivors {
			b.WriteString("\n" + strings.TrimRight(diff, "\n") + "\n")
		}

		b.WriteString("\n" + renderSummary(*rm.summary))
	}
}

func styleLabel(label m.OutcomeLabel) string {
	if style, ok := labelStyles[label]; ok {
		return style.Render(label.String())
	}

	return label.String()
}

func renderCatalog(artifact m.Path, mutations []m.Mutation, err error) string {
	if err != nil {
		return errorStyle.Render(fmt.Sprintf("catalog error: %v", err)) + "\n"
	}

	return renderCatalogTable(artifact, mutations)
}

func renderSummary(summary m.MutationSummary) string {
	return renderSummaryTable(summary)
}

func renderDiff(mutation m.Mutation, diff string) string {
	return titleStyle.Render(describeMutation(mutation)) + "\n" + strings.TrimRight(diff, "\n") + "\n"
}

