package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nekonora/xcodebuild/internal/output"
	"github.com/nekonora/xcodebuild/internal/service"
	"github.com/nekonora/xcodebuild/internal/ui"
	"github.com/nekonora/xcodebuild/internal/xcode"
)

type runFlags struct {
	scheme    string
	simulator string
	osVersion string
	filter    string
	match     string
}

func newBuildCmd() *cobra.Command {
	return newRunCmd(xcode.ActionBuild, "build [folder]", "Build the Xcode workspace/project in a folder")
}

func newTestCmd() *cobra.Command {
	return newRunCmd(xcode.ActionTest, "test [folder]", "Run the tests of the Xcode workspace/project in a folder")
}

func newRunCmd(action xcode.Action, use, short string) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, action, folderArg(args), f)
		},
	}
	cmd.Flags().StringVar(&f.scheme, "scheme", "", "Scheme to build (default: first available)")
	cmd.Flags().StringVar(&f.simulator, "simulator", "", "Simulator device name, e.g. 'iPhone 16'")
	cmd.Flags().StringVar(&f.osVersion, "os", "", "iOS version, e.g. 18.3.1")
	cmd.Flags().StringVar(&f.filter, "filter", string(output.ModeAll), "Output filter: all, errors_only, warnings_only, errors_and_warnings, string_match")
	cmd.Flags().StringVar(&f.match, "match", "", "Text to match with --filter string_match")
	return cmd
}

type reportJSON struct {
	Command  string `json:"command"`
	ExitCode int    `json:"exit_code"`
	Success  bool   `json:"success"`
	Duration string `json:"duration"`
	Output   string `json:"output"`
}

func runAction(cmd *cobra.Command, action xcode.Action, folder string, f runFlags) error {
	mode, err := output.ParseMode(f.filter)
	if err != nil {
		return err
	}
	req := service.Request{
		Folder: folder,
		Scheme: f.scheme,
		Criteria: xcode.Criteria{
			DeviceName: f.simulator,
			OSVersion:  f.osVersion,
		},
		Filter: output.Spec{Mode: mode, Match: f.match},
	}

	report, err := newService().Run(cmd.Context(), action, req)
	if errors.Is(err, service.ErrProjectNotFound) {
		return fmt.Errorf("%s: %s", service.ProjectNotFoundText, folder)
	}
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reportJSON{
			Command:  report.Command,
			ExitCode: report.ExitCode,
			Success:  report.Succeeded(),
			Duration: report.Duration.String(),
			Output:   report.Output,
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(w, ui.DimStyle.Render("Command: "+report.Command))
		fmt.Fprintf(w, "%s %s\n\n", ui.OutcomeBadge(report.ExitCode), report.Status())
		fmt.Fprintln(w, report.Output)
	}

	if !report.Succeeded() {
		return fmt.Errorf("%s failed with exit code %d", action, report.ExitCode)
	}
	return nil
}
