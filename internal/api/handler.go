// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/rvelikov/fallax/internal/model"
	"github.com/rvelikov/fallax/internal/pipeline"
	"github.com/rvelikov/fallax/pkg/logging"
)

const maxRequestBody = 1 << 20 // requests are text, not uploads

// Analyzer is the pipeline capability the handler needs.
type Analyzer interface {
	Analyze(ctx context.Context, text string, opts model.AnalysisOptions) (*model.AnalysisResult, error)
}

// Handler serves the analysis API.
type Handler struct {
	analyzer Analyzer
	cfg      *model.Config
	logger   *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(analyzer Analyzer, cfg *model.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{analyzer: analyzer, cfg: cfg, logger: logger}
}

// Routes returns the fully wired HTTP handler: routing, CORS, request
// logging, and metrics endpoint.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyze", h.handleAnalyze)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	return logging.Middleware(h.logger)(c.Handler(mux))
}

type analyzeRequest struct {
	Text    string          `json:"text"`
	Options *analyzeOptions `json:"options,omitempty"`
}

type analyzeOptions struct {
	IncludeRewrite *bool `json:"include_rewrite,omitempty"`
	MinConfidence  *int  `json:"min_confidence,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req analyzeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body", "bad_request")
		return
	}

	opts := h.defaultOptions()
	if req.Options != nil {
		if req.Options.IncludeRewrite != nil {
			opts.IncludeRewrite = *req.Options.IncludeRewrite
		}
		if req.Options.MinConfidence != nil {
			opts.MinConfidence = *req.Options.MinConfidence
		}
	}

	result, err := h.analyzer.Analyze(r.Context(), req.Text, opts)
	if err != nil {
		h.respondAnalyzeError(w, err)
		return
	}

	analysisDuration.Observe(time.Since(start).Seconds())
	fallaciesDetected.Observe(float64(result.Summary.TotalCount))
	if result.Summary.Indeterminate {
		analysesTotal.WithLabelValues(outcomeIndeterminate).Inc()
	} else {
		analysesTotal.WithLabelValues(outcomeOK).Inc()
	}

	h.respondJSON(w, http.StatusOK, result)
}

func (h *Handler) respondAnalyzeError(w http.ResponseWriter, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		analysesTotal.WithLabelValues(outcomeInvalid).Inc()
		h.respondError(w, http.StatusBadRequest, ve.Message, string(ve.Code))
	case errors.Is(err, model.ErrBudgetExceeded):
		analysesTotal.WithLabelValues(outcomeBudget).Inc()
		h.respondError(w, http.StatusGatewayTimeout, err.Error(), "budget_exceeded")
	default:
		analysesTotal.WithLabelValues(outcomeError).Inc()
		h.logger.Error("analysis failed", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "internal error", "internal")
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (h *Handler) defaultOptions() model.AnalysisOptions {
	return model.AnalysisOptions{
		IncludeRewrite: h.cfg.Pipeline.IncludeRewrite,
		MinConfidence:  h.cfg.Pipeline.MinConfidence,
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("encode response", slog.String("error", err.Error()))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, msg, code string) {
	h.respondJSON(w, status, errorResponse{Error: msg, Code: code})
}

var _ Analyzer = (*pipeline.Pipeline)(nil)
