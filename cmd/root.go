package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xdruid77/pagescope/internal/config"
	"github.com/xdruid77/pagescope/internal/observability"
)

// appConfig is the configuration loaded by the persistent pre-run. Commands
// read it through their RunE closures; it is never mutated after loading.
var appConfig *config.Config

// NewRootCommand builds a fresh root command tree. A new instance per
// invocation keeps flag state from leaking between executions.
func NewRootCommand() *cobra.Command {
	var (
		cfgFile  string
		logLevel string
		headless bool
	)

	rootCmd := &cobra.Command{
		Use:   "pagescope",
		Short: "Page analysis and element resolution for live web pages",
		Long: `pagescope loads a page in a real browser, extracts a structured
snapshot of its interactive elements and forms, and resolves free-text
element descriptions to concrete selectors.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			cfg.SetLoggerLevel(logLevel)
			if cmd.Flags().Changed("headless") {
				cfg.SetBrowserHeadless(headless)
			}
			appConfig = cfg

			observability.InitializeLogger(cfg.Logger())
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file path (default: ~/.pagescope.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", true, "Run the browser headless")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command under the given (signal-aware) context.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger := observability.GetLogger()
		if errors.Is(err, context.Canceled) {
			logger.Warn("Aborted by signal.")
		} else {
			logger.Error("Command failed.", zap.Error(err))
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return err
	}
	return nil
}
