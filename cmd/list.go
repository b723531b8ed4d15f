package cmd

import (
	"github.com/spf13/cobra"

	"gooze.dev/pkg/mutscore/internal/domain"
	m "gooze.dev/pkg/mutscore/internal/model"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <artifact>",
		Short: "List the mutations of a Go file",
		Long: `List every mutation found in a Go file with its id, kind and position.
Nothing is modified and no tests run. Ids are stable for unchanged source and
can be passed to "mutscore show".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Estimate(cmd.Context(), domain.EstimateArgs{Artifact: m.Path(args[0])})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
