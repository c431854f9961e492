package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nekonora/xcodebuild/internal/config"
	"github.com/nekonora/xcodebuild/internal/logging"
	"github.com/nekonora/xcodebuild/internal/service"
	"github.com/nekonora/xcodebuild/internal/store"
	"github.com/nekonora/xcodebuild/internal/xcode"
)

// Version is reported in the MCP handshake and by --version.
var Version = "dev"

var (
	configPath string
	logLevel   string
	outputJSON bool

	cfg    config.Config
	logger = zap.NewNop()
)

// Execute runs the root cobra command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Build and test Xcode projects for tool-calling agents",
		Long: `xcodebuild-mcp exposes xcodebuild to agents over the Model Context Protocol.

Run without a subcommand to serve MCP on stdin/stdout. The build, test and
schemes subcommands run the same operations from the shell.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		RunE:              runServe,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (JSON or YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newTestCmd())
	cmd.AddCommand(newSchemesCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newConsoleCmd())

	return cmd
}

// setup loads configuration and builds the logger before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.LogLevel = logLevel
	}
	cfg = loaded

	// The console owns the terminal, so it only logs to a file.
	build := logging.New
	if cmd.Name() == "console" {
		build = logging.NewFileOnly
	}
	l, err := build(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// newService wires the xcode client, history store and dispatcher from cfg.
func newService() *service.Service {
	query, _ := cfg.QueryTimeout()
	build, _ := cfg.BuildTimeout()

	client := xcode.NewClient(
		xcode.NewExecRunner(cfg.DeveloperDir),
		xcode.WithLogger(logger.Named("xcode")),
		xcode.WithTimeouts(query, build),
	)

	opts := []service.Option{
		service.WithLogger(logger.Named("service")),
		service.WithMaxLines(cfg.MaxOutputLines),
	}
	if cfg.HistoryDir != "" {
		opts = append(opts, service.WithHistory(store.New(cfg.HistoryDir)))
	}
	return service.New(client, opts...)
}

// folderArg returns the folder positional argument, defaulting to ".".
func folderArg(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "."
}
