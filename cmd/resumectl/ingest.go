package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sjaggi1/resume-parser/internal/app"
	"sjaggi1/resume-parser/internal/models"
)

var ingestFlags struct {
	wait    time.Duration
	recurse bool
}

var ingestCmd = &cobra.Command{
	Use:   "ingest DIR",
	Short: "Submit every resume in a directory and wait for the worker to parse them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ingest(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	addParseFlags(ingestCmd)

	ingestCmd.Flags().DurationVar(&ingestFlags.wait, "wait", 10*time.Minute, "how long to wait for parsing to finish")
	ingestCmd.Flags().BoolVarP(&ingestFlags.recurse, "recursive", "r", false, "descend into subdirectories")
}

type ingestSummary struct {
	Submitted int              `json:"submitted"`
	Completed int              `json:"completed"`
	Failed    int              `json:"failed"`
	Skipped   []string         `json:"skipped"`
	Results   []ingestedResume `json:"results"`
}

type ingestedResume struct {
	File      string              `json:"file"`
	ResumeID  string              `json:"resumeId"`
	Status    models.ResumeStatus `json:"status"`
	ErrorCode string              `json:"errorCode,omitempty"`
}

func ingest(ctx context.Context, dir string) error {
	components, log, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer log.Sync()
	defer components.Close()

	if components.Config.Database.Driver == "memory" || components.Config.Database.Driver == "" {
		log.Warn("DB_DRIVER is memory, ingested records are lost when the command exits")
	}

	files, err := collectFiles(dir, ingestFlags.recurse)
	if err != nil {
		return err
	}
	log.Info("starting ingestion", zap.String("dir", dir), zap.Int("files", len(files)))

	components.Worker.Start(ctx)
	defer components.Worker.Stop()

	summary := ingestSummary{Skipped: []string{}, Results: []ingestedResume{}}
	pending := make(map[string]int)

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn("failed to read file, skipping", zap.String("path", path), zap.Error(err))
			summary.Skipped = append(summary.Skipped, path)
			continue
		}

		resp, err := components.Service.Submit(ctx, filepath.Base(path), data, parseOptions())
		if err != nil {
			log.Warn("upload rejected, skipping", zap.String("path", path), zap.Error(err))
			summary.Skipped = append(summary.Skipped, path)
			continue
		}

		log.Info("submitted", zap.String("path", path), zap.String("resume_id", resp.ResumeID))
		pending[resp.ResumeID] = len(summary.Results)
		summary.Results = append(summary.Results, ingestedResume{File: path, ResumeID: resp.ResumeID, Status: resp.Status})
		summary.Submitted++
	}

	waitCtx, cancel := context.WithTimeout(ctx, ingestFlags.wait)
	defer cancel()

	if err := waitForResults(waitCtx, components, pending, &summary); err != nil {
		log.Warn("stopped waiting for results", zap.Error(err), zap.Int("unfinished", len(pending)))
	}

	log.Info("ingestion finished",
		zap.Int("submitted", summary.Submitted),
		zap.Int("completed", summary.Completed),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", len(summary.Skipped)),
	)
	return writeJSON(os.Stdout, summary)
}

// waitForResults polls record status until every pending resume settles.
func waitForResults(ctx context.Context, components *app.App, pending map[string]int, summary *ingestSummary) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for len(pending) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		for id, idx := range pending {
			status, err := components.Service.Status(ctx, id)
			if err != nil {
				return err
			}
			summary.Results[idx].Status = status.Status

			switch status.Status {
			case models.StatusCompleted:
				summary.Completed++
				delete(pending, id)
			case models.StatusFailed:
				summary.Results[idx].ErrorCode = status.ErrorCode
				summary.Failed++
				delete(pending, id)
			}
		}
	}
	return nil
}

func collectFiles(dir string, recurse bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !recurse {
				return filepath.SkipDir
			}
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	slices.Sort(files)
	return files, nil
}
