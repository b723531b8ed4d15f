// Package cmd provides the root command and CLI setup for mutscore.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"gooze.dev/pkg/mutscore/internal/adapter"
	"gooze.dev/pkg/mutscore/internal/controller"
	"gooze.dev/pkg/mutscore/internal/domain"
)

var goFileAdapter adapter.GoFileAdapter
var fsAdapter adapter.SourceFSAdapter
var reportStore adapter.ReportStore
var testAdapter adapter.TestRunnerAdapter
var guard domain.PatchGuard
var orchestrator domain.Orchestrator
var mutagen domain.Mutagen
var workflow domain.Workflow
var ui controller.UI

// summaryOutputFlag is a root-level flag naming the summary file written by run.
var summaryOutputFlag string

// verboseFlag switches logging to debug.
var verboseFlag bool

func init() {
	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	goFileAdapter = adapter.NewLocalGoFileAdapter()
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	reportStore = adapter.NewReportStore()
	testAdapter = adapter.NewLocalTestRunnerAdapter(testCommand()...)
	guard = domain.NewPatchGuard(fsAdapter)
	mutagen = domain.NewMutagen(goFileAdapter)
	orchestrator = domain.NewOrchestrator(mutagen, guard, testAdapter)
	workflow = domain.NewWorkflow(
		fsAdapter,
		goFileAdapter,
		testAdapter,
		reportStore,
		ui,
		guard,
		orchestrator,
		mutagen,
	)
}

const rootLongDescription = `mutscore measures how well a test suite detects small changes to one Go
source file. It applies one mutation at a time (operator swaps, comparison
swaps, numeric constant nudges), runs the tests against each mutant, and
reports the mutation score killed / (killed + survived).

The file under test is modified in place while a mutant is installed and is
always restored afterwards. If a run is killed hard, "mutscore recover"
restores it from the journal kept next to it.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mutscore",
		Short:         "Mutation score for a single Go file",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger("", verboseFlag)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&summaryOutputFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"write the mutation summary to this file (.json, .yaml or .yml)",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().String(formatFlagName, viper.GetString(formatFlagName), "summary encoding: json or yaml (default: from the output extension)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(formatFlagName), formatFlagName)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM so a run can restore the
// artifact before exiting.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func parseMutationID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %q is not a positive integer", domain.ErrUnknownMutation, arg)
	}

	return uint(id), nil
}

// isInterrupted reports whether err only records that the user stopped the run.
func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}
