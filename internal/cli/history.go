package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nekonora/xcodebuild/internal/store"
)

var errHistoryDisabled = errors.New("history is disabled: set history_dir in the config")

func newHistoryCmd() *cobra.Command {
	var (
		tests bool
		limit int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded build or test runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.HistoryDir == "" {
				return errHistoryDisabled
			}
			return runHistory(cmd.OutOrStdout(), store.New(cfg.HistoryDir), tests, limit)
		},
	}
	cmd.Flags().BoolVar(&tests, "tests", false, "Show test runs instead of builds")
	cmd.Flags().IntVar(&limit, "limit", 20, "Show at most this many of the latest runs (0 for all)")
	return cmd
}

func runHistory(w io.Writer, st *store.Store, tests bool, limit int) error {
	load := st.Builds
	if tests {
		load = st.Tests
	}
	records, err := load()
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}

	if outputJSON {
		if records == nil {
			records = []store.RunRecord{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tRESULT\tSCHEME\tPROJECT\tDURATION\tDESTINATION")
	for _, r := range records {
		result := "ok"
		if !r.Success {
			result = fmt.Sprintf("failed (%d)", r.ExitCode)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			result,
			r.Scheme,
			r.Project,
			r.Duration,
			r.Destination,
		)
	}
	return tw.Flush()
}
