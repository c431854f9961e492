package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nekonora/xcodebuild/internal/service"
)

func newSchemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schemes [folder]",
		Short: "List the schemes of the Xcode workspace/project in a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSchemes,
	}
}

func runSchemes(cmd *cobra.Command, args []string) error {
	folder := folderArg(args)
	schemes, err := newService().Schemes(cmd.Context(), folder)
	if errors.Is(err, service.ErrProjectNotFound) {
		return fmt.Errorf("%s: %s", service.ProjectNotFoundText, folder)
	}
	if err != nil {
		return err
	}

	if outputJSON {
		if schemes == nil {
			schemes = []string{}
		}
		return json.NewEncoder(cmd.OutOrStdout()).Encode(schemes)
	}
	fmt.Fprintln(cmd.OutOrStdout(), service.FormatSchemes(schemes))
	return nil
}
