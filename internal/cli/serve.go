package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nekonora/xcodebuild/internal/config"
	"github.com/nekonora/xcodebuild/internal/mcp"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over stdin/stdout (default)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	srv := mcp.NewServer(newService(),
		mcp.ServerInfo{Name: config.AppName, Version: Version},
		mcp.WithServerLogger(logger.Named("mcp")),
	)

	logger.Info("serving MCP on stdio", zap.String("version", Version))

	// Serve only returns once stdin is closed; on a signal stop waiting for it
	// and let cancellation reach in-flight calls.
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		logger.Info("shutting down", zap.Error(ctx.Err()))
		return nil
	}
}
