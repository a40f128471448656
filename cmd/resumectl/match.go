package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sjaggi1/resume-parser/internal/models"
	"sjaggi1/resume-parser/internal/services"
)

var matchFlags struct {
	jobPath  string
	explain  bool
	detailed bool
}

var matchCmd = &cobra.Command{
	Use:   "match FILE",
	Short: "Parse a resume and score it against a job description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(matchFlags.jobPath)
		if err != nil {
			return fmt.Errorf("reading job description: %w", err)
		}
		job, err := services.ParseJobDescription(raw)
		if err != nil {
			return err
		}

		profile, err := parseFile(cmd, args[0])
		if err != nil {
			return err
		}

		result := services.NewMatchScorer().Match(*profile, *job, models.MatchOptions{
			IncludeExplanation: matchFlags.explain,
			DetailedBreakdown:  matchFlags.detailed,
		})
		return writeJSON(cmd.OutOrStdout(), result)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)
	addParseFlags(matchCmd)

	matchCmd.Flags().StringVar(&matchFlags.jobPath, "job", "", "job description JSON file")
	matchCmd.Flags().BoolVar(&matchFlags.explain, "explain", true, "include a plain-language explanation")
	matchCmd.Flags().BoolVar(&matchFlags.detailed, "detailed", false, "include per-category matched and missing items")
	_ = matchCmd.MarkFlagRequired("job")
}
