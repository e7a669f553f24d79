package cli

import (
	"context"
	"fmt"

	"skillmatch/internal/common"
	"skillmatch/internal/scorer"
	"skillmatch/internal/types"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score [job-description-file] [resume-file]",
	Short: "Score a job and resume pair with the external semantic scorer",
	Long: `Score how well a resume fits a job description using the configured
external semantic scorer service. The command takes two arguments: the
path to the job description file and the path to the resume text file.
The scorer must be enabled and its URL configured.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if scoreConfig.OutputFormat == "" {
			scoreConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(scoreConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runScore,
}

var scoreConfig common.CommandConfig

func init() {
	scoreCmd.Flags().StringVarP(&scoreConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	scoreCmd.Flags().StringVar(&scoreConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = scoreCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	if !cfg.Scorer.Enabled {
		return fmt.Errorf("semantic scorer is disabled, set scorer.enabled and scorer.url in the configuration")
	}

	client := scorer.NewClient(&cfg.Scorer, logger)

	createInput := func(contents []string) (types.SemanticScoreInput, error) {
		if len(contents) != 2 {
			return types.SemanticScoreInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		return types.SemanticScoreInput{
			JobText:    contents[0],
			ResumeText: contents[1],
		}, nil
	}

	logDetails := func(input types.SemanticScoreInput, cfg common.CommandConfig) {
		logger.Info("Starting semantic scoring",
			"job_chars", len(input.JobText),
			"resume_chars", len(input.ResumeText),
			"output_format", cfg.OutputFormat)
	}

	scoreOperation := func(ctx context.Context, input types.SemanticScoreInput) (types.SemanticScoreOutput, error) {
		return client.Score(ctx, input)
	}

	err := common.RunCommand(
		cmd.Context(),
		logger,
		scoreConfig,
		args,
		createInput,
		scoreOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to score resume: %w", err)
	}
	logger.Info("Semantic scoring completed successfully")
	return nil
}
