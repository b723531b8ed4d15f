package cmd

import (
	"github.com/spf13/cobra"

	"gooze.dev/pkg/mutscore/internal/domain"
	m "gooze.dev/pkg/mutscore/internal/model"
)

// recoverCmd represents the recover command.
var recoverCmd = newRecoverCmd()

func newRecoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recover <artifact>",
		Short: "Restore a file left mutated by an interrupted run",
		Long: `Restore a Go file from the journal a run keeps next to it while a mutant
is installed. Runs do this automatically on start; use recover to put the file
back without starting a new run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			artifact := m.Path(args[0])

			recovered, err := workflow.Recover(cmd.Context(), domain.RecoverArgs{Artifact: artifact})
			if err != nil {
				return err
			}

			if recovered {
				cmd.Printf("restored %s from %s\n", artifact, domain.JournalPath(artifact))
			} else {
				cmd.Printf("nothing to recover for %s\n", artifact)
			}

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(recoverCmd)
}
