// Package api provides the HTTP REST API server for fxdash.
//
// It exposes the dashboard pipeline (rates, metrics, correlation,
// volatility ranking), live quotes, conversion, exports, rendered reports
// and a WebSocket quote stream.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/seenimoa/fxdash/internal/analytics"
	"github.com/seenimoa/fxdash/internal/apperrors"
	"github.com/seenimoa/fxdash/internal/config"
	"github.com/seenimoa/fxdash/internal/dashboard"
	"github.com/seenimoa/fxdash/internal/export"
	"github.com/seenimoa/fxdash/internal/logger"
	"github.com/seenimoa/fxdash/internal/report"
	"github.com/seenimoa/fxdash/pkg/models"
)

// Version is reported by the health endpoint. Set at build time.
var Version = "dev"

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	svc    *dashboard.Service
	log    *logger.Entry

	origins  *originPolicy
	upgrader websocket.Upgrader
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, svc *dashboard.Service, log *logger.Log) *Server {
	if log == nil {
		log = logger.Get()
	}
	srv := &Server{
		cfg:     cfg,
		svc:     svc,
		log:     log.WithComponent("api"),
		origins: newOriginPolicy(cfg.API.CORSOrigins),
	}
	srv.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     srv.origins.checkOrigin,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and blocks until SIGINT or
// SIGTERM, then shuts down gracefully.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.cfg.API.RequestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-done:
	}
	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	// CORS; the websocket upgrader checks the same policy.
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: s.origins.Allowed,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader, "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		// Long-lived; must not sit behind the request timeout.
		r.Get("/ws/quotes", s.handleQuoteStream)

		r.Group(func(r chi.Router) {
			if s.cfg.API.RequestTimeout > 0 {
				r.Use(middleware.Timeout(s.cfg.API.RequestTimeout))
			}

			r.Get("/health", s.handleHealth)

			// Catalog
			r.Get("/currencies", s.handleCurrencies)
			r.Get("/periods", s.handlePeriods)

			// Dashboard pipeline
			r.Get("/dashboard", s.handleDashboard)
			r.Get("/rates", s.handleRates)
			r.Get("/metrics", s.handleMetrics)
			r.Get("/correlation", s.handleCorrelation)
			r.Get("/volatility", s.handleVolatility)

			// Quotes
			r.Get("/quotes", s.handleQuotes)
			r.Get("/quote/{code}", s.handleQuote)
			r.Get("/convert", s.handleConvert)

			// Export
			r.Get("/export/csv", s.handleExportCSV)
			r.Get("/export/json", s.handleExportJSON)
			r.Get("/export/zip", s.handleExportZIP)
			r.Get("/report", s.handleReport)

			r.Post("/refresh", s.handleRefresh)

			// Config
			r.Get("/config", s.handleGetConfig)
			r.Get("/config/keys", s.handleGetConfigKeys)
		})
	})

	return r
}

// ════════════════════════════════════════════════════════════════════
// Request / Response types
// ════════════════════════════════════════════════════════════════════

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CurrenciesResponse lists the selectable currencies.
type CurrenciesResponse struct {
	Reference string            `json:"reference"`
	Default   []string          `json:"default"`
	Supported []models.Currency `json:"supported"`
}

// MetricsResponse is returned by GET /api/v1/metrics.
type MetricsResponse struct {
	PeriodDays   int                              `json:"period_days"`
	Metrics      map[string]models.MetricsRecord  `json:"metrics"`
	Explanations map[string]analytics.Explanation `json:"explanations,omitempty"`
	Warnings     []string                         `json:"warnings,omitempty"`
}

// CorrelationResponse is returned by GET /api/v1/correlation. Matrix is
// nil when fewer than two currencies or too few complete rows are
// available.
type CorrelationResponse struct {
	Available bool                      `json:"available"`
	Matrix    *models.CorrelationMatrix `json:"matrix,omitempty"`
	Warnings  []string                  `json:"warnings,omitempty"`
}

// ════════════════════════════════════════════════════════════════════
// Handlers
// ════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":    "ok",
			"version":   Version,
			"reference": s.cfg.Source.Reference,
			"time":      time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	defaults, err := s.svc.ResolveCurrencies(nil)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: CurrenciesResponse{
			Reference: s.cfg.Source.Reference,
			Default:   defaults,
			Supported: models.SupportedCurrencies(),
		},
	})
}

func (s *Server) handlePeriods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: dashboard.Periods()})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.build(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: snap})
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.build(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: snap.Table})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.build(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: MetricsResponse{
			PeriodDays:   snap.PeriodDays,
			Metrics:      snap.Metrics,
			Explanations: snap.Explanations,
			Warnings:     snap.Warnings,
		},
	})
}

func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.build(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: CorrelationResponse{
			Available: snap.Correlation != nil,
			Matrix:    snap.Correlation,
			Warnings:  snap.Warnings,
		},
	})
}

func (s *Server) handleVolatility(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.build(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: snap.VolatilityRanking})
}

func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.svc.Quotes(r.Context(), parseCurrencies(r.URL.Query().Get("currencies")))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: quotes})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	code := models.NormalizeCode(chi.URLParam(r, "code"))
	if !models.IsSupported(code) {
		s.fail(w, r, fmt.Errorf("%w: unknown currency %q", apperrors.ErrNotFound, code))
		return
	}
	quotes, err := s.svc.Quotes(r.Context(), []string{code})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	q := quotes[0]
	if !q.Available {
		s.fail(w, r, fmt.Errorf("%w: no quote for %s", apperrors.ErrNoData, q.Currency))
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: q})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	raw := strings.TrimSpace(q.Get("amount"))
	if raw == "" {
		raw = "1"
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: invalid amount %q", apperrors.ErrValidation, raw))
		return
	}
	from := q.Get("from")
	if from == "" {
		s.fail(w, r, fmt.Errorf("%w: from is required", apperrors.ErrValidation))
		return
	}

	conv, err := s.svc.Convert(r.Context(), amount, from)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: conv})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.build(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, snap.Table); err != nil {
		s.fail(w, r, err)
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", export.TableFileName, buf.Bytes())
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.build(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteMetricsJSON(&buf, snap.Metrics); err != nil {
		s.fail(w, r, err)
		return
	}
	writeAttachment(w, "application/json", export.MetricsFileName, buf.Bytes())
}

func (s *Server) handleExportZIP(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.build(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteBundle(&buf, snap.Table, snap.Metrics, snap.GeneratedAt); err != nil {
		s.fail(w, r, err)
		return
	}
	writeAttachment(w, "application/zip", export.BundleFileName, buf.Bytes())
}

// handleReport renders the dashboard as an HTML page or plain text
// (?format=html|text).
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: %w", apperrors.ErrValidation, err))
		return
	}
	snap, ok := s.build(w, r)
	if !ok {
		return
	}
	quotes, err := s.svc.Quotes(r.Context(), snap.Currencies)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	body, err := report.Generate(report.Input{
		Snapshot:  snap,
		Quotes:    quotes,
		Reference: s.cfg.Source.Reference,
	}, format, report.DefaultConfig())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	contentType := "text/html; charset=utf-8"
	if format == report.FormatText {
		contentType = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.svc.Refresh()
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]string{"status": "caches cleared"},
	})
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

// build runs the dashboard pipeline for the request's query string and
// writes the error response itself when it fails.
func (s *Server) build(w http.ResponseWriter, r *http.Request) (*dashboard.Snapshot, bool) {
	req, err := parseDashboardRequest(r)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	snap, err := s.svc.Build(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return snap, true
}

// parseDashboardRequest reads ?currencies=USD,EUR&period=30d&detail=true.
func parseDashboardRequest(r *http.Request) (dashboard.Request, error) {
	q := r.URL.Query()
	req := dashboard.Request{
		Currencies: parseCurrencies(q.Get("currencies")),
		Period:     q.Get("period"),
	}
	if raw := q.Get("detail"); raw != "" {
		detail, err := strconv.ParseBool(raw)
		if err != nil {
			return req, fmt.Errorf("%w: invalid detail %q", apperrors.ErrValidation, raw)
		}
		req.Detail = detail
	}
	return req, nil
}

// parseCurrencies splits a comma-separated list. Blank entries are dropped.
func parseCurrencies(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if code := models.NormalizeCode(part); code != "" {
			out = append(out, code)
		}
	}
	return out
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrNoData):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).WithField("request_id", RequestIDFromContext(r.Context())).Error("request error")
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Get().WithError(err).Error("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
