package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/mutscore/internal/domain"
	m "gooze.dev/pkg/mutscore/internal/model"
)

const runLongDescription = `Run mutation testing for one Go source file.

The tests argument selects what runs against each mutant: a directory, a
single _test.go file, or a package pattern such as ./pkg/... . Without it the
artifact's own package is tested. The command is "go test -count=1 {target}"
unless test.command is configured.

The unmodified suite runs first as a baseline. A failing baseline is reported
but does not stop the run.`

var runIDFlag string

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <artifact> [tests]",
		Short: "Run mutation testing",
		Long:  runLongDescription,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			testArgs := domain.TestArgs{
				Artifact:        m.Path(args[0]),
				WorkDir:         m.Path(viper.GetString(testWorkDirKey)),
				RunID:           runIDFlag,
				MaxMutations:    viper.GetInt(maxMutationsKey),
				MutationTimeout: viper.GetDuration(mutationTimeoutKey),
				BaselineTimeout: viper.GetDuration(baselineTimeoutKey),
				SkipBaseline:    viper.GetBool(skipBaselineKey),
				Output:          m.Path(viper.GetString(outputFlagName)),
				Format:          viper.GetString(formatFlagName),
			}

			if len(args) > 1 {
				testArgs.Tests = m.Path(args[1])
			}

			_, err := workflow.Test(ctx, testArgs)
			if isInterrupted(err) {
				cmd.PrintErrln("interrupted: the artifact was restored")
			}

			return err
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&runIDFlag, runIDFlagName, "", "run identifier recorded in the summary (default: derived from the test path, else a UUID)")

	cmd.Flags().IntP(maxMutationsFlagName, "n", domain.DefaultMaxMutations, "test at most this many mutations in catalog order (0 or less: all)")
	bindFlagToConfig(cmd.Flags().Lookup(maxMutationsFlagName), maxMutationsKey)

	cmd.Flags().Duration(mutationTimeoutFlagName, domain.DefaultMutationTimeout, "timeout for one mutant test run")
	bindFlagToConfig(cmd.Flags().Lookup(mutationTimeoutFlagName), mutationTimeoutKey)

	cmd.Flags().Duration(baselineTimeoutFlagName, domain.DefaultBaselineTimeout, "timeout for the baseline test run")
	bindFlagToConfig(cmd.Flags().Lookup(baselineTimeoutFlagName), baselineTimeoutKey)

	cmd.Flags().Bool(skipBaselineFlagName, defaultSkipBaseline, "do not run the unmodified suite first")
	bindFlagToConfig(cmd.Flags().Lookup(skipBaselineFlagName), skipBaselineKey)

	cmd.Flags().String(workDirFlagName, "", "directory the test command runs in (default: the artifact's module root)")
	bindFlagToConfig(cmd.Flags().Lookup(workDirFlagName), testWorkDirKey)
}
