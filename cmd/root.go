// Package cmd defines the CLI commands for the campusqa executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campusqa/campusqa/internal/config"
	"github.com/campusqa/campusqa/internal/logging"
	"github.com/campusqa/campusqa/internal/metrics"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campusqa",
		Short: "Crawl program pages and answer questions about them",
		Long: `campusqa ingests a site into a vector store and answers questions
about its content over the web and SMS. Run 'crawl' to build or refresh
the index, then 'serve' to expose the question-answering endpoints.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: environment only)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// setup loads configuration and builds the shared logger. Every subcommand
// starts here.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	metrics.Init()
	return cfg, logger, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "campusqa: %v\n", err)
		os.Exit(1)
	}
}
