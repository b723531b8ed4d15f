package cmd

import (
	"github.com/spf13/cobra"

	"gooze.dev/pkg/mutscore/internal/domain"
	m "gooze.dev/pkg/mutscore/internal/model"
)

// showCmd represents the show command.
var showCmd = newShowCmd()

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <artifact> <id>",
		Short: "Print the diff of one mutant",
		Long:  "Print the unified diff between a Go file and the mutant with the given id. The file is not modified.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMutationID(args[1])
			if err != nil {
				return err
			}

			return workflow.Show(cmd.Context(), domain.ShowArgs{Artifact: m.Path(args[0]), ID: id})
		},
	}
}

func init() {
	rootCmd.AddCommand(showCmd)
}
