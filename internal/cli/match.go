package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"skillmatch/internal/common"
	"skillmatch/internal/match"
	"skillmatch/internal/types"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match [jobs-file] [resume-file]",
	Short: "Rank job postings against a resume by skill similarity",
	Long: `Match job postings against a resume and rank them by skill similarity.
The command takes two arguments: a JSON file containing an array of job
postings and a JSON file containing the resume document. Postings missing
responsibilities, qualifications, or keywords are skipped, and results are
sorted by score.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if matchConfig.OutputFormat == "" {
			matchConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(matchConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runMatch,
}

var matchConfig common.CommandConfig

func init() {
	matchCmd.Flags().StringVarP(&matchConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	matchCmd.Flags().StringVar(&matchConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = matchCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

// matchInput bundles the decoded jobs and resume files.
type matchInput struct {
	Jobs   []types.JobPosting
	Resume types.ResumeDocument
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	engine := match.NewEngine(match.Options{
		Threshold: cfg.Matching.Threshold,
		NGramSize: cfg.Matching.NGramSize,
		Workers:   cfg.Matching.Workers,
	})

	createInput := func(contents []string) (matchInput, error) {
		if len(contents) != 2 {
			return matchInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}

		var input matchInput
		if err := json.Unmarshal([]byte(contents[0]), &input.Jobs); err != nil {
			return matchInput{}, fmt.Errorf("failed to parse jobs file: %w", err)
		}
		if err := json.Unmarshal([]byte(contents[1]), &input.Resume); err != nil {
			return matchInput{}, fmt.Errorf("failed to parse resume file: %w", err)
		}
		return input, nil
	}

	logDetails := func(input matchInput, cfg common.CommandConfig) {
		logger.Info("Starting job matching",
			"job_count", len(input.Jobs),
			"skill_count", len(input.Resume.HardSkills),
			"output_format", cfg.OutputFormat)
	}

	matchOperation := func(ctx context.Context, input matchInput) ([]types.MatchResult, error) {
		return engine.FindBestMatches(ctx, input.Jobs, &input.Resume), nil
	}

	err := common.RunCommand(
		cmd.Context(),
		logger,
		matchConfig,
		args,
		createInput,
		matchOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to match jobs: %w", err)
	}
	logger.Info("Job matching completed successfully")
	return nil
}
