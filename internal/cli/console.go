package cli

import (
	"github.com/spf13/cobra"

	"github.com/nekonora/xcodebuild/internal/console"
)

func newConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console [folder]",
		Short: "Open an interactive build console",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return console.Run(cmd.Context(), newService(), folderArg(args))
		},
	}
}
