// Package web exposes the explorer over HTTP: a Leaflet dashboard, a JSON
// API for sessions and selections, and PNG/PDF exports, alongside the usual
// health and metrics endpoints.
package web

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/dataset"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/domain"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/export"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/observability"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/pipeline"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/session"
)

//go:embed assets/dashboard.html
var dashboardHTML []byte

//go:embed assets/about.md
var aboutMarkdown []byte

// Server exposes the explorer API plus health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	store      *dataset.Store
	sessions   *session.Registry
	logger     *slog.Logger
	metrics    *observability.Metrics
	aboutHTML  []byte
}

// NewServer creates the HTTP server and wires every route. The about page
// is rendered from markdown once here; it never changes at runtime.
func NewServer(addr string, store *dataset.Store, sessions *session.Registry, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:     store,
		sessions:  sessions,
		logger:    logger,
		metrics:   metrics,
		aboutHTML: renderAboutPage(aboutMarkdown),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /{$}", s.instrument("dashboard", s.handleDashboard))
	mux.HandleFunc("GET /api/about", s.instrument("about", s.handleAbout))
	mux.HandleFunc("GET /api/meta", s.instrument("meta", s.handleMeta))
	mux.HandleFunc("GET /api/search", s.instrument("search", s.handleSearch))

	mux.HandleFunc("POST /api/sessions", s.instrument("session_create", s.handleSessionCreate))
	mux.HandleFunc("DELETE /api/sessions/{id}", s.instrument("session_delete", s.handleSessionDelete))
	mux.HandleFunc("GET /api/sessions/{id}/view", s.instrument("view", s.handleView))
	mux.HandleFunc("PUT /api/sessions/{id}/selection", s.instrument("selection", s.handleSelection))
	mux.HandleFunc("GET /api/sessions/{id}/nearest", s.instrument("nearest", s.handleNearest))
	mux.HandleFunc("GET /api/sessions/{id}/chart.png", s.instrument("chart_png", s.handleChartPNG))
	mux.HandleFunc("GET /api/sessions/{id}/report.pdf", s.instrument("report_pdf", s.handleReportPDF))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.store.Len() == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "dataset store is empty",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(dashboardHTML) //nolint:errcheck // static page, client may hang up
}

func (s *Server) handleAbout(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(s.aboutHTML) //nolint:errcheck // static page, client may hang up
}

type metaResponse struct {
	Dataset     string           `json:"dataset"`
	Records     int              `json:"records"`
	SkippedRows int              `json:"skipped_rows"`
	Categories  []dataset.Option `json:"categories"`
	ValueTypes  []dataset.Option `json:"value_types"`
	Years       []int            `json:"years"`
	Levels      []string         `json:"levels"`
}

func (s *Server) handleMeta(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, metaResponse{
		Dataset:     filepath.Base(s.store.Path()),
		Records:     s.store.Len(),
		SkippedRows: s.store.SkippedRows(),
		Categories:  s.store.Categories(),
		ValueTypes:  s.store.ValueTypes(),
		Years:       s.store.Years(),
		Levels:      s.store.Levels(),
	})
}

type searchResponse struct {
	Query   string             `json:"query"`
	Matches []domain.CityMatch `json:"matches"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Query:   query,
		Matches: domain.SearchCities(s.store.Records(), query, limit),
	})
}

type sessionResponse struct {
	SessionID string        `json:"session_id"`
	View      pipeline.View `json:"view"`
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, _ *http.Request) {
	id, ctrl, err := s.sessions.Create()
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: id, View: ctrl.View()})
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Remove(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.View())
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	var u session.Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "malformed selection body: "+err.Error())
		return
	}
	view, err := ctrl.Apply(u)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type nearestResponse struct {
	Point      domain.MapPoint `json:"point"`
	DistanceKm float64         `json:"distance_km"`
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	lat, ok := floatParam(w, r, "lat")
	if !ok {
		return
	}
	lng, ok := floatParam(w, r, "lng")
	if !ok {
		return
	}
	point, km, found := domain.NearestPoint(ctrl.View().Points, lat, lng)
	if !found {
		writeError(w, http.StatusNotFound, "no markers in the current view")
		return
	}
	writeJSON(w, http.StatusOK, nearestResponse{Point: point, DistanceKm: km})
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeSessionError(w, err)
		return
	}

	// Render to a buffer first so a failed render can still answer with a
	// JSON error instead of a truncated image.
	var buf bytes.Buffer
	if err := export.WriteChartPNG(&buf, ctrl.View()); err != nil {
		s.logger.Error("chart render failed", "error", err)
		writeError(w, http.StatusInternalServerError, "chart render failed")
		return
	}
	s.metrics.ExportRenders.WithLabelValues("png").Inc()

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	buf.WriteTo(w) //nolint:errcheck // response already committed
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeSessionError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteReportPDF(&buf, ctrl.View()); err != nil {
		s.logger.Error("report render failed", "error", err)
		writeError(w, http.StatusInternalServerError, "report render failed")
		return
	}
	s.metrics.ExportRenders.WithLabelValues("pdf").Inc()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="500-cities-report.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	buf.WriteTo(w) //nolint:errcheck // response already committed
}

// writeSessionError maps registry and controller errors onto API statuses:
// unknown sessions are 404, a full registry is 429, and selection updates
// the dataset cannot satisfy are 422 with the offending field named.
func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	var invalid *session.InvalidSelectionError
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrTooManySessions):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": invalid.Error(),
			"field": invalid.Field,
			"value": invalid.Value,
		})
	default:
		s.logger.Error("session operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		elapsed := time.Since(start)
		s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.metrics.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
		s.logger.Debug("request handled",
			"route", route,
			"method", r.Method,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// renderAboutPage turns the embedded about markdown into a standalone HTML
// page.
func renderAboutPage(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	body := markdown.Render(p.Parse(md), renderer)

	var buf bytes.Buffer
	buf.WriteString("<!doctype html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">")
	buf.WriteString("<title>About - 500 Cities Explorer</title>")
	buf.WriteString("<style>body{font-family:sans-serif;max-width:45rem;margin:2rem auto;padding:0 1rem;line-height:1.5}</style>")
	buf.WriteString("</head><body>\n")
	buf.Write(body)
	buf.WriteString("\n</body></html>\n")
	return buf.Bytes()
}

func floatParam(w http.ResponseWriter, r *http.Request, name string) (float64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter "+name)
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be a number")
		return 0, false
	}
	return v, true
}
