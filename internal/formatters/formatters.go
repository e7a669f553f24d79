package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"skillmatch/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "MatchResults", &MatchTextFormatter{})
	registry.RegisterFormatter("markdown", "MatchResults", &MatchMarkdownFormatter{})
	registry.RegisterFormatter("text", "TailorResumeOutput", &TailorTextFormatter{})
	registry.RegisterFormatter("markdown", "TailorResumeOutput", &TailorMarkdownFormatter{})
	registry.RegisterFormatter("text", "SemanticScoreOutput", &ScoreTextFormatter{})
	registry.RegisterFormatter("markdown", "SemanticScoreOutput", &ScoreMarkdownFormatter{})
	registry.RegisterFormatter("text", "RenderedResume", &RenderedResumeFormatter{})
	registry.RegisterFormatter("markdown", "RenderedResume", &RenderedResumeFormatter{})
	registry.RegisterFormatter("text", "ResumeDocument", &ResumeDocumentTextFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

func getDataType(data any) string {
	switch data.(type) {
	case []types.MatchResult:
		return "MatchResults"
	case types.TailorResumeOutput:
		return "TailorResumeOutput"
	case types.SemanticScoreOutput:
		return "SemanticScoreOutput"
	case types.RenderedResume:
		return "RenderedResume"
	case types.ResumeDocument:
		return "ResumeDocument"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// MatchTextFormatter handles text formatting for match results
type MatchTextFormatter struct{}

func (mtf *MatchTextFormatter) Format(data any) (string, error) {
	results, ok := data.([]types.MatchResult)
	if !ok {
		return "", fmt.Errorf("expected []types.MatchResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== JOB MATCHES ===\n\n")
	if len(results) == 0 {
		output.WriteString("No matching jobs found.\n")
		return output.String(), nil
	}

	for i, result := range results {
		output.WriteString(fmt.Sprintf("%d. %s", i+1, result.Job.Title))
		if result.Job.Company != "" {
			output.WriteString(fmt.Sprintf(" at %s", result.Job.Company))
		}
		output.WriteString("\n")
		output.WriteString(fmt.Sprintf("   Score: %.1f/100\n", result.MatchScore))
		if result.Job.URN != "" {
			output.WriteString(fmt.Sprintf("   URN: %s\n", result.Job.URN))
		}
		if len(result.MatchedSkills) > 0 {
			output.WriteString(fmt.Sprintf("   Matched skills: %s\n", strings.Join(result.MatchedSkills, ", ")))
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (mtf *MatchTextFormatter) SupportedType() string {
	return "MatchResults"
}

// MatchMarkdownFormatter handles markdown formatting for match results
type MatchMarkdownFormatter struct{}

func (mmf *MatchMarkdownFormatter) Format(data any) (string, error) {
	results, ok := data.([]types.MatchResult)
	if !ok {
		return "", fmt.Errorf("expected []types.MatchResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Job Matches\n\n")
	if len(results) == 0 {
		output.WriteString("No matching jobs found.\n")
		return output.String(), nil
	}

	output.WriteString("| # | Title | Company | Score | Matched Skills |\n")
	output.WriteString("|---|-------|---------|-------|----------------|\n")
	for i, result := range results {
		output.WriteString(fmt.Sprintf("| %d | %s | %s | %.1f | %s |\n",
			i+1,
			result.Job.Title,
			result.Job.Company,
			result.MatchScore,
			strings.Join(result.MatchedSkills, ", ")))
	}

	return output.String(), nil
}

func (mmf *MatchMarkdownFormatter) SupportedType() string {
	return "MatchResults"
}

// TailorTextFormatter handles text formatting for tailor results
type TailorTextFormatter struct{}

func (ttf *TailorTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.TailorResumeOutput)
	if !ok {
		return "", fmt.Errorf("expected TailorResumeOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== TAILORED RESUME ===\n\n")
	output.WriteString(result.TailoredMarkdown)
	output.WriteString("\n")

	if result.Notes != "" {
		output.WriteString("\n=== NOTES ===\n")
		output.WriteString(result.Notes)
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (ttf *TailorTextFormatter) SupportedType() string {
	return "TailorResumeOutput"
}

// TailorMarkdownFormatter emits just the tailored resume markdown so the
// output can be fed straight back into the parse and match commands.
type TailorMarkdownFormatter struct{}

func (tmf *TailorMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.TailorResumeOutput)
	if !ok {
		return "", fmt.Errorf("expected TailorResumeOutput, got %T", data)
	}

	return result.TailoredMarkdown, nil
}

func (tmf *TailorMarkdownFormatter) SupportedType() string {
	return "TailorResumeOutput"
}

// ScoreTextFormatter handles text formatting for semantic score results
type ScoreTextFormatter struct{}

func (stf *ScoreTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.SemanticScoreOutput)
	if !ok {
		return "", fmt.Errorf("expected SemanticScoreOutput, got %T", data)
	}

	return fmt.Sprintf("Semantic match score: %.2f\n", result.MatchScore), nil
}

func (stf *ScoreTextFormatter) SupportedType() string {
	return "SemanticScoreOutput"
}

// ScoreMarkdownFormatter handles markdown formatting for semantic score results
type ScoreMarkdownFormatter struct{}

func (smf *ScoreMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.SemanticScoreOutput)
	if !ok {
		return "", fmt.Errorf("expected SemanticScoreOutput, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Semantic Score\n\n")
	output.WriteString(fmt.Sprintf("**Match score:** %.2f\n", result.MatchScore))
	return output.String(), nil
}

func (smf *ScoreMarkdownFormatter) SupportedType() string {
	return "SemanticScoreOutput"
}

// RenderedResumeFormatter emits the rendered markdown as-is for both the
// text and markdown formats.
type RenderedResumeFormatter struct{}

func (rrf *RenderedResumeFormatter) Format(data any) (string, error) {
	result, ok := data.(types.RenderedResume)
	if !ok {
		return "", fmt.Errorf("expected RenderedResume, got %T", data)
	}

	return result.Markdown, nil
}

func (rrf *RenderedResumeFormatter) SupportedType() string {
	return "RenderedResume"
}

// ResumeDocumentTextFormatter summarizes a parsed resume document
type ResumeDocumentTextFormatter struct{}

func (rdf *ResumeDocumentTextFormatter) Format(data any) (string, error) {
	doc, ok := data.(types.ResumeDocument)
	if !ok {
		return "", fmt.Errorf("expected ResumeDocument, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== PARSED RESUME ===\n\n")
	if doc.Name != "" {
		output.WriteString(fmt.Sprintf("Name: %s\n", doc.Name))
	}
	if doc.Summary != "" {
		output.WriteString(fmt.Sprintf("Summary: %s\n", doc.Summary))
	}
	if len(doc.HardSkills) > 0 {
		output.WriteString(fmt.Sprintf("Hard skills (%d): %s\n", len(doc.HardSkills), strings.Join(doc.HardSkills, ", ")))
	}
	output.WriteString(fmt.Sprintf("Experience entries: %d\n", len(doc.ProfessionalExperience)))
	output.WriteString(fmt.Sprintf("Education entries: %d\n", len(doc.Education)))
	output.WriteString(fmt.Sprintf("Project entries: %d\n", len(doc.Projects)))

	return output.String(), nil
}

func (rdf *ResumeDocumentTextFormatter) SupportedType() string {
	return "ResumeDocument"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()

