package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"skillmatch/internal/common"
	"skillmatch/internal/markdown"
	"skillmatch/internal/types"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render [profile-file] [resume-file]",
	Short: "Render a resume document to markdown",
	Long: `Render a profile and resume document to markdown. The command takes
two arguments: a JSON file containing the profile (contact header) and a
JSON file containing the resume document. Use --locale to pick the
section heading language (en or pt).`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if renderConfig.OutputFormat == "" {
			renderConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(renderConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runRender,
}

var renderConfig common.CommandConfig
var renderLocale string

func init() {
	renderCmd.Flags().StringVarP(&renderConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	renderCmd.Flags().StringVar(&renderConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	renderCmd.Flags().StringVar(&renderLocale, "locale", "", "Heading locale: en or pt (default: en)")

	_ = renderCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

// renderInput bundles the decoded profile and resume files.
type renderInput struct {
	Profile types.Profile
	Resume  types.ResumeDocument
}

func runRender(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	createInput := func(contents []string) (renderInput, error) {
		if len(contents) != 2 {
			return renderInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}

		var input renderInput
		if err := json.Unmarshal([]byte(contents[0]), &input.Profile); err != nil {
			return renderInput{}, fmt.Errorf("failed to parse profile file: %w", err)
		}
		if err := json.Unmarshal([]byte(contents[1]), &input.Resume); err != nil {
			return renderInput{}, fmt.Errorf("failed to parse resume file: %w", err)
		}
		return input, nil
	}

	logDetails := func(input renderInput, cfg common.CommandConfig) {
		logger.Info("Starting resume rendering",
			"locale", renderLocale,
			"skill_count", len(input.Resume.HardSkills),
			"output_format", cfg.OutputFormat)
	}

	renderOperation := func(ctx context.Context, input renderInput) (types.RenderedResume, error) {
		rendered := markdown.Encode(input.Profile, input.Resume, markdown.HeadingsFor(renderLocale))
		return types.RenderedResume{Markdown: rendered}, nil
	}

	err := common.RunCommand(
		cmd.Context(),
		logger,
		renderConfig,
		args,
		createInput,
		renderOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to render resume: %w", err)
	}
	logger.Info("Resume rendering completed successfully")
	return nil
}
