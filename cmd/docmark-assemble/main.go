package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docmark/internal/app"
	"github.com/ternarybob/docmark/internal/common"
)

var (
	configFiles []string
	coverURL    string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:           "docmark-assemble",
	Short:         "Assemble highlighted documents from the command line",
	Long:          `Runs the docmark assembly pipeline on local files: normalise, highlight a share of the text, prepend the generated cover and write the result to disk.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&configFiles, "config", "c", nil, "Configuration file path (repeatable, later files override earlier ones)")
	rootCmd.PersistentFlags().StringVar(&coverURL, "cover-url", "", "Cover generator base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides config)")

	rootCmd.AddCommand(assembleCmd, batchCmd, inspectCmd, checkConfigCmd, versionCmd)
}

func main() {
	defer common.RecoverWithCrashFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadApp resolves configuration the same way the server does and builds the pipeline.
// Console output only; the CLI never writes log files.
func loadApp() (*app.App, arbor.ILogger, error) {
	if len(configFiles) == 0 {
		if _, err := os.Stat("docmark.toml"); err == nil {
			configFiles = append(configFiles, "docmark.toml")
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		return nil, nil, err
	}
	if coverURL != "" {
		config.Cover.BaseURL = coverURL
	}
	if logLevel != "" {
		config.Logging.Level = logLevel
	}
	config.Logging.Output = []string{"stdout"}
	if err := common.ValidateConfig(config); err != nil {
		return nil, nil, err
	}

	logger := common.InitLogger(config)

	application, err := app.New(config, logger, configFiles)
	if err != nil {
		return nil, nil, err
	}
	return application, logger, nil
}
