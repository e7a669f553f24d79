package common

import (
	"fmt"

	"skillmatch/internal/errors"
	"skillmatch/internal/formatters"
)

// CommandConfig carries the output flags shared by every command.
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
}

// OutputHandler formats an operation result through the formatter registry
// and delivers it to stdout or the requested file.
type OutputHandler struct {
	fileProcessor *FileProcessor
	registry      *formatters.FormatterRegistry
	logger        *errors.Logger
}

func NewOutputHandler(logger *errors.Logger) *OutputHandler {
	return &OutputHandler{
		fileProcessor: NewFileProcessor(logger),
		registry:      formatters.GlobalRegistry,
		logger:        logger,
	}
}

// HandleOutput renders data in the configured format and writes it out.
// The destination is validated before formatting so a bad path fails
// without wasting the render.
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	if err := oh.fileProcessor.ValidateOutputFile(config.OutputFile); err != nil {
		return err
	}

	output, err := oh.registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", config.OutputFormat), err)
	}

	if config.OutputFile == "" {
		fmt.Print(output)
		return nil
	}

	if err := oh.fileProcessor.WriteFile(config.OutputFile, output); err != nil {
		return err
	}
	oh.logger.Info("Output written",
		"file", config.OutputFile, "format", config.OutputFormat)
	return nil
}
