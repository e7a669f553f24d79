package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"skillmatch/internal/ai"
	"skillmatch/internal/markdown"
	"skillmatch/internal/match"
	"skillmatch/internal/observability"
	"skillmatch/internal/scorer"
	"skillmatch/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// createMatchHandler wraps the match handler with observability
func (s *Server) createMatchHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("skillmatch.api")
		ctx, span := tracer.Start(ctx, "api.match")
		defer span.End()

		var req MatchRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.job_count", len(req.Jobs)),
			attribute.Int("request.skill_count", len(req.Resume.HardSkills)),
			attribute.String("operation", "match"),
		)

		engine := match.NewEngine(match.Options{
			Threshold: s.AppConfig.Matching.Threshold,
			NGramSize: s.AppConfig.Matching.NGramSize,
			Workers:   s.AppConfig.Matching.Workers,
		})

		metrics := om.GetMetrics()
		var results []types.MatchResult
		err := metrics.TrackOperation(ctx, "match", func(ctx context.Context) *observability.OperationResult {
			results = engine.FindBestMatches(ctx, req.Jobs, &req.Resume)
			return &observability.OperationResult{}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "jobs_matched", false, om)
			writeErrorResponse(w, "Failed to match jobs", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics.RecordBusinessMetric(ctx, "jobs_matched", true, om,
			attribute.Int("result_count", len(results)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.result_count", len(results)),
		)

		writeJSONResponse(w, span, results)
	}
}

// createRenderHandler wraps the render handler with observability
func (s *Server) createRenderHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("skillmatch.api")
		ctx, span := tracer.Start(ctx, "api.render")
		defer span.End()

		var req RenderRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("request.locale", req.Locale),
			attribute.String("operation", "render"),
		)

		metrics := om.GetMetrics()
		var rendered string
		err := metrics.TrackOperation(ctx, "render", func(ctx context.Context) *observability.OperationResult {
			rendered = markdown.Encode(req.Profile, req.Resume, markdown.HeadingsFor(req.Locale))
			return &observability.OperationResult{}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "resume_rendered", false, om)
			writeErrorResponse(w, "Failed to render resume", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_rendered", true, om,
			attribute.Int("output.markdown_length", len(rendered)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.markdown_length", len(rendered)),
		)

		writeJSONResponse(w, span, RenderResponse{Markdown: rendered})
	}
}

// createParseHandler wraps the parse handler with observability
func (s *Server) createParseHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("skillmatch.api")
		ctx, span := tracer.Start(ctx, "api.parse")
		defer span.End()

		var req ParseRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.markdown_length", len(req.Markdown)),
			attribute.String("operation", "parse"),
		)

		metrics := om.GetMetrics()
		var doc types.ResumeDocument
		err := metrics.TrackOperation(ctx, "parse", func(ctx context.Context) *observability.OperationResult {
			doc = markdown.Decode(req.Markdown)
			return &observability.OperationResult{}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "resume_parsed", false, om)
			writeErrorResponse(w, "Failed to parse resume", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_parsed", true, om,
			attribute.Int("skill_count", len(doc.HardSkills)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.skill_count", len(doc.HardSkills)),
		)

		writeJSONResponse(w, span, doc)
	}
}

// createTailorHandler wraps the tailor handler with observability
func (s *Server) createTailorHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("skillmatch.api")
		ctx, span := tracer.Start(ctx, "api.tailor")
		defer span.End()

		// Parse request
		var req TailorRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		// Validation
		if strings.TrimSpace(req.ResumeMarkdown) == "" {
			err := fmt.Errorf("missing resume markdown")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resume", "resumeMarkdown field is required", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.JobDescription) == "" {
			err := fmt.Errorf("missing job description")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing job description", "jobDescription field is required", http.StatusBadRequest)
			return
		}

		// Size validation
		if len(req.ResumeMarkdown) > int(s.MaxRequestSize/2) {
			err := fmt.Errorf("resume too large: %d chars", len(req.ResumeMarkdown))
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Resume too large", fmt.Sprintf("resumeMarkdown exceeds recommended size limit of %d characters", s.MaxRequestSize/2), http.StatusBadRequest)
			return
		}
		if len(req.JobDescription) > int(s.MaxRequestSize/2) {
			err := fmt.Errorf("job description too large: %d chars", len(req.JobDescription))
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Job description too large", fmt.Sprintf("jobDescription exceeds recommended size limit of %d characters", s.MaxRequestSize/2), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeMarkdown)),
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("operation", "tailor"),
		)

		input := types.TailorResumeInput{
			ResumeMarkdown: req.ResumeMarkdown,
			JobDescription: req.JobDescription,
		}

		// Create AI service for the tailor operation
		aiService, err := ai.NewService(&s.AppConfig.AI, s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		// Track AI operation with observability and token usage
		metrics := om.GetMetrics()
		var result types.TailorResumeOutput
		err = metrics.TrackOperation(ctx, "tailor", func(ctx context.Context) *observability.OperationResult {
			output, tokenUsage, aiErr := aiService.Provider.TailorResume(ctx, input)
			result = output
			return &observability.OperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "resume_tailored", false, om,
				attribute.String("error", err.Error()))
			writeErrorResponse(w, "Failed to tailor resume", err.Error(), http.StatusInternalServerError)
			return
		}

		// An AI response that decodes to an empty resume is a failure the
		// caller can retry, not a success with empty content
		if markdown.IsResumeEmpty(markdown.Decode(result.TailoredMarkdown)) {
			err := fmt.Errorf("tailored resume is empty")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "empty_resume"))
			metrics.RecordBusinessMetric(ctx, "resume_tailored", false, om,
				attribute.String("error", "empty_resume"))
			writeErrorResponse(w, "Tailoring produced an empty resume", "The AI response contained no usable resume content; retry the request", http.StatusBadGateway)
			return
		}

		// Record success metrics
		metrics.RecordBusinessMetric(ctx, "resume_tailored", true, om,
			attribute.Int("output.tailored_length", len(result.TailoredMarkdown)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.tailored_length", len(result.TailoredMarkdown)),
		)

		writeJSONResponse(w, span, result)
	}
}

// createScoreHandler wraps the semantic score handler with observability
func (s *Server) createScoreHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("skillmatch.api")
		ctx, span := tracer.Start(ctx, "api.score")
		defer span.End()

		if !s.AppConfig.Scorer.Enabled {
			err := fmt.Errorf("scorer disabled")
			span.RecordError(err)
			writeErrorResponse(w, "Scorer disabled", "The semantic scorer is not configured on this server", http.StatusNotImplemented)
			return
		}

		var req ScoreRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.JobText) == "" || strings.TrimSpace(req.ResumeText) == "" {
			err := fmt.Errorf("missing score input")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing input", "job_text and resume_text fields are required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.job_length", len(req.JobText)),
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.String("operation", "score"),
		)

		client := scorer.NewClient(&s.AppConfig.Scorer, s.Logger)

		metrics := om.GetMetrics()
		var result types.SemanticScoreOutput
		err := metrics.TrackOperation(ctx, "score", func(ctx context.Context) *observability.OperationResult {
			output, scoreErr := client.Score(ctx, types.SemanticScoreInput{
				JobText:    req.JobText,
				ResumeText: req.ResumeText,
			})
			result = output
			return &observability.OperationResult{Error: scoreErr}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "scorer"))
			metrics.RecordBusinessMetric(ctx, "semantic_scored", false, om)
			writeErrorResponse(w, "Failed to score", err.Error(), http.StatusBadGateway)
			return
		}

		metrics.RecordBusinessMetric(ctx, "semantic_scored", true, om)

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Float64("response.match_score", result.MatchScore),
		)

		writeJSONResponse(w, span, result)
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Check if this request was rate limited by examining the response
			// We'll wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
