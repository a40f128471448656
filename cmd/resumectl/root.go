package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sjaggi1/resume-parser/internal/app"
	"sjaggi1/resume-parser/internal/config"
	"sjaggi1/resume-parser/internal/logger"
)

const appName = "resumectl"

var (
	debug   bool
	jsonLog bool

	rootCmd = &cobra.Command{
		Use:           appName,
		Short:         "resumectl parses resumes and scores them against job descriptions from the command line",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&jsonLog, "json", "j", false, "json format for logging")
}

// bootstrap loads the environment configuration and wires the pipeline.
// Logs go to stderr so command output on stdout stays machine-readable.
func bootstrap(ctx context.Context) (*app.App, *zap.Logger, error) {
	cfg := config.Load()

	log, err := logger.NewStderr(jsonLog || cfg.Log.JSON, debug || cfg.Log.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("creating a logger: %w", err)
	}

	components, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return components, log, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
