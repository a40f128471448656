package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sjaggi1/resume-parser/internal/models"
)

var parseFlags struct {
	noAI     bool
	noOCR    bool
	noSkills bool
}

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Parse a resume file and print the structured profile as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := parseFile(cmd, args[0])
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), profile)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	addParseFlags(parseCmd)
}

func addParseFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&parseFlags.noAI, "no-ai", false, "skip the AI summary and insights")
	cmd.Flags().BoolVar(&parseFlags.noOCR, "no-ocr", false, "never fall back to OCR")
	cmd.Flags().BoolVar(&parseFlags.noSkills, "no-skills", false, "do not extract technologies")
}

func parseOptions() models.ParseOptions {
	return models.ParseOptions{
		ExtractTechnologies: !parseFlags.noSkills,
		EnhanceWithAI:       !parseFlags.noAI,
		PerformOCR:          !parseFlags.noOCR,
	}
}

// parseFile runs the synchronous pipeline on a local file.
func parseFile(cmd *cobra.Command, path string) (*models.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	components, log, err := bootstrap(cmd.Context())
	if err != nil {
		return nil, err
	}
	defer log.Sync()
	defer components.Close()

	doc := models.NewRawDocument(data, filepath.Base(path))
	return components.Service.ParseDocument(cmd.Context(), doc, parseOptions())
}
