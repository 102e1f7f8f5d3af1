// Package server hosts the quality engine over HTTP. Handlers are thin: they
// decode and validate the request, build a per-request dataset snapshot, call
// the engine, and serialize its output. No probe logic lives here.
package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"edaqa/internal/dataset"
	"edaqa/internal/quality"
)

const Version = "0.3.0"

// Server wires the engine, the metrics collector and the logger.
type Server struct {
	opts    quality.Options
	metrics *Metrics
	log     zerolog.Logger
}

func New(opts quality.Options, metrics *Metrics, logger zerolog.Logger) *Server {
	return &Server{opts: opts, metrics: metrics, log: logger}
}

// Router builds the chi router with all endpoints mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/quality", s.handleQuality)
	r.Post("/quality-from-csv", s.handleQualityFromCSV)
	r.Post("/quality-flags-from-csv", s.handleQualityFlagsFromCSV)
	r.Get("/metrics", s.handleMetrics)

	return r
}

// --- response shapes ---

type qualityResponse struct {
	OKForModel   bool            `json:"ok_for_model"`
	QualityScore float64         `json:"quality_score"`
	Message      string          `json:"message"`
	LatencyMs    float64         `json:"latency_ms"`
	Flags        map[string]bool `json:"flags,omitempty"`
	DatasetShape map[string]int  `json:"dataset_shape,omitempty"`
}

// qualityFlags mirrors quality.Report without the score, which the flags
// endpoint carries at the top level.
type qualityFlags struct {
	HasHighMissing                 bool               `json:"has_high_missing"`
	HighMissingColumns             []string           `json:"high_missing_columns"`
	HasDuplicates                  bool               `json:"has_duplicates"`
	DuplicateCount                 int                `json:"duplicate_count"`
	HasConstantColumns             bool               `json:"has_constant_columns"`
	ConstantColumns                []string           `json:"constant_columns"`
	HasHighCardinalityCategoricals bool               `json:"has_high_cardinality_categoricals"`
	HighCardinalityColumns         []string           `json:"high_cardinality_columns"`
	HasManyZeroValues              bool               `json:"has_many_zero_values"`
	HighZeroColumns                []string           `json:"high_zero_columns"`
	ZeroShares                     map[string]float64 `json:"zero_shares"`
}

type flagsResponse struct {
	Flags        qualityFlags   `json:"flags"`
	QualityScore int            `json:"quality_score"`
	LatencyMs    float64        `json:"latency_ms"`
	DatasetShape map[string]int `json:"dataset_shape"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func reportToAPI(r *quality.Report) qualityFlags {
	return qualityFlags{
		HasHighMissing:                 r.HasHighMissing,
		HighMissingColumns:             r.HighMissingColumns,
		HasDuplicates:                  r.HasDuplicates,
		DuplicateCount:                 r.DuplicateCount,
		HasConstantColumns:             r.HasConstantColumns,
		ConstantColumns:                r.ConstantColumns,
		HasHighCardinalityCategoricals: r.HasHighCardinalityCategoricals,
		HighCardinalityColumns:         r.HighCardinalityColumns,
		HasManyZeroValues:              r.HasManyZeroValues,
		HighZeroColumns:                r.HighZeroColumns,
		ZeroShares:                     r.ZeroShares,
	}
}

// --- handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "edaqa",
		"version": Version,
	})
}

func (s *Server) handleQuality(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := requestID(r)
	const endpoint = "quality"

	var f quality.Features
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		s.fail(w, r, endpoint, reqID, start, http.StatusBadRequest, "request body is not valid JSON")
		return
	}
	if msg := validateFeatures(f); msg != "" {
		s.fail(w, r, endpoint, reqID, start, http.StatusUnprocessableEntity, msg)
		return
	}

	verdict := quality.EvaluateFeatures(f)

	message := "Data quality is insufficient, the dataset needs work (by current heuristics)."
	if verdict.OK {
		message = "Dataset looks good enough for model training (by current heuristics)."
	}

	latency := time.Since(start)
	s.metrics.Record(endpoint, latency, false)
	s.metrics.SetLastVerdict(verdict.OK)

	s.log.Info().
		Str("request_id", reqID).
		Str("endpoint", endpoint).
		Int("status", http.StatusOK).
		Float64("latency_ms", latencyMs(latency)).
		Int("n_rows", f.NumRows).
		Int("n_cols", f.NumCols).
		Bool("ok_for_model", verdict.OK).
		Float64("quality_score", verdict.Score).
		Msg("request")

	writeJSON(w, http.StatusOK, qualityResponse{
		OKForModel:   verdict.OK,
		QualityScore: verdict.Score,
		Message:      message,
		LatencyMs:    latencyMs(latency),
		Flags:        verdict.Flags,
		DatasetShape: map[string]int{"n_rows": f.NumRows, "n_cols": f.NumCols},
	})
}

func (s *Server) handleQualityFromCSV(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := requestID(r)
	const endpoint = "quality-from-csv"

	ds, status, msg := s.datasetFromUpload(r)
	if ds == nil {
		s.fail(w, r, endpoint, reqID, start, status, msg)
		return
	}

	rep, err := quality.Evaluate(ds, s.opts)
	if err != nil {
		s.fail(w, r, endpoint, reqID, start, statusFromError(err), err.Error())
		return
	}

	score := rep.Unit()
	ok := score >= 0.7
	message := "CSV needs work before model training (by current heuristics)."
	if ok {
		message = "CSV looks good enough for model training (by current heuristics)."
	}

	latency := time.Since(start)
	s.metrics.Record(endpoint, latency, false)
	s.metrics.SetLastVerdict(ok)

	s.log.Info().
		Str("request_id", reqID).
		Str("endpoint", endpoint).
		Int("status", http.StatusOK).
		Float64("latency_ms", latencyMs(latency)).
		Int("n_rows", ds.NumRows()).
		Int("n_cols", ds.NumCols()).
		Bool("ok_for_model", ok).
		Float64("quality_score", score).
		Msg("request")

	writeJSON(w, http.StatusOK, qualityResponse{
		OKForModel:   ok,
		QualityScore: score,
		Message:      message,
		LatencyMs:    latencyMs(latency),
		Flags:        rep.Flags(),
		DatasetShape: map[string]int{"n_rows": ds.NumRows(), "n_cols": ds.NumCols()},
	})
}

func (s *Server) handleQualityFlagsFromCSV(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := requestID(r)
	const endpoint = "quality-flags-from-csv"

	ds, status, msg := s.datasetFromUpload(r)
	if ds == nil {
		s.fail(w, r, endpoint, reqID, start, status, msg)
		return
	}

	rep, err := quality.Evaluate(ds, s.opts)
	if err != nil {
		s.fail(w, r, endpoint, reqID, start, statusFromError(err), err.Error())
		return
	}

	latency := time.Since(start)
	s.metrics.Record(endpoint, latency, false)

	s.log.Info().
		Str("request_id", reqID).
		Str("endpoint", endpoint).
		Int("status", http.StatusOK).
		Float64("latency_ms", latencyMs(latency)).
		Int("n_rows", ds.NumRows()).
		Int("n_cols", ds.NumCols()).
		Int("quality_score", rep.QualityScore).
		Msg("request")

	writeJSON(w, http.StatusOK, flagsResponse{
		Flags:        reportToAPI(rep),
		QualityScore: rep.QualityScore,
		LatencyMs:    latencyMs(latency),
		DatasetShape: map[string]int{"n_rows": ds.NumRows(), "n_cols": ds.NumCols()},
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

// --- upload handling ---

var csvContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/vnd.ms-excel": true,
	"application/octet-stream": true,
}

// datasetFromUpload extracts and parses the multipart CSV. A nil dataset
// comes back with the client-error status and message to return.
func (s *Server) datasetFromUpload(r *http.Request) (*dataset.Dataset, int, string) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, http.StatusBadRequest, "multipart field \"file\" is required"
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); ct != "" && !csvContentTypes[ct] {
		return nil, http.StatusBadRequest, "expected a CSV file (content-type text/csv)"
	}

	ds, err := dataset.Read(file, ',', "utf-8")
	if err != nil {
		return nil, statusFromError(err), "could not parse CSV: " + err.Error()
	}
	return ds, 0, ""
}

// --- plumbing ---

func statusFromError(err error) int {
	switch {
	case errors.Is(err, dataset.ErrSourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, dataset.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, quality.ErrInvalidArgument):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func validateFeatures(f quality.Features) string {
	switch {
	case f.NumRows < 0:
		return "n_rows must be non-negative"
	case f.NumCols < 0:
		return "n_cols must be non-negative"
	case f.NumericCols < 0:
		return "numeric_cols must be non-negative"
	case f.CategoricalCols < 0:
		return "categorical_cols must be non-negative"
	case math.IsNaN(f.MaxMissingShare) || f.MaxMissingShare < 0 || f.MaxMissingShare > 1:
		return "max_missing_share must be within [0,1]"
	}
	return ""
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, endpoint, reqID string, start time.Time, status int, msg string) {
	latency := time.Since(start)
	s.metrics.Record(endpoint, latency, true)

	s.log.Warn().
		Str("request_id", reqID).
		Str("endpoint", endpoint).
		Int("status", status).
		Float64("latency_ms", latencyMs(latency)).
		Str("error", msg).
		Msg("request failed")

	writeJSON(w, status, errorResponse{Detail: msg})
}

func requestID(r *http.Request) string {
	if id := chimw.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}

func latencyMs(d time.Duration) float64 {
	return math.Round(float64(d.Microseconds())/10) / 100
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
