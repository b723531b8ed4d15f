package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/mutscore/internal/domain"
	m "gooze.dev/pkg/mutscore/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [summary-file]",
		Short: "View a previously written mutation summary",
		Long:  "View a mutation summary written by \"mutscore run --output\". Without an argument the configured output file is read.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := viper.GetString(outputFlagName)
			if len(args) == 1 {
				path = args[0]
			}

			if path == "" {
				return cmd.Help()
			}

			return workflow.View(cmd.Context(), domain.ViewArgs{Summary: m.Path(path)})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
