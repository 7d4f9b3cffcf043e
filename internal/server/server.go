// Package server exposes the displayed placement result to a browser: the
// optimize round-trip, the metrics panel, rendered sheets and every export.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/piwi3910/SlabPlan/internal/export"
	"github.com/piwi3910/SlabPlan/internal/model"
	"github.com/piwi3910/SlabPlan/internal/optimizer"
	"github.com/piwi3910/SlabPlan/internal/view"
)

// maxRequestBody bounds an optimize payload.
const maxRequestBody = 4 << 20

// Optimizer performs one optimization round-trip.
type Optimizer interface {
	Optimize(ctx context.Context, req model.OptimizationRequest) (*model.PlacementResult, error)
}

// Server serves one View. It is safe for concurrent use.
type Server struct {
	view       *view.View
	optimizer  Optimizer
	exporter   *export.Exporter
	logger     *log.Logger
	pixelRatio float64
	router     chi.Router
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithPixelRatio sets the device pixels per mm for PNG and PDF output.
func WithPixelRatio(r float64) Option {
	return func(s *Server) { s.pixelRatio = r }
}

func WithExporter(e *export.Exporter) Option {
	return func(s *Server) { s.exporter = e }
}

// New builds the router. opt may be nil, in which case POST /api/optimize
// answers 503 and the server only shows results loaded elsewhere.
func New(v *view.View, opt Optimizer, opts ...Option) *Server {
	s := &Server{view: v, optimizer: opt, pixelRatio: 1}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.exporter == nil {
		s.exporter = export.NewExporter(s.logger)
	}
	if s.pixelRatio <= 0 {
		s.pixelRatio = 1
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/optimize", s.handleOptimize)
		r.Get("/result", s.handleResult)
		r.Get("/metrics", s.handleMetrics)
		r.Get("/sheets/{index}.png", s.handleSheet)
		r.Get("/report.pdf", s.handleReport)
		r.Get("/labels.pdf", s.handleLabels)
		r.Get("/plan.dxf", s.handleDXF)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, fmt.Errorf("no route for %s", r.URL.Path))
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down preview server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"took", time.Since(start).Round(time.Millisecond),
		)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"state":  s.view.Snapshot().State.String(),
	})
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	if s.optimizer == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("no optimizer configured"))
		return
	}

	var req model.OptimizationRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	req.MaterialType = req.MaterialType.Normalize()
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err := s.view.Run(r.Context(), func(ctx context.Context) (*model.PlacementResult, error) {
		return s.optimizer.Optimize(ctx, req)
	})
	switch {
	case errors.Is(err, view.ErrStale):
		writeError(w, http.StatusConflict, err)
		return
	case err != nil:
		status := http.StatusBadGateway
		var apiErr *optimizer.APIError
		if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err)
		return
	}
	s.handleResult(w, r)
}

// resultResponse is the view's state as seen by a browser.
type resultResponse struct {
	State  string                 `json:"state"`
	Error  string                 `json:"error,omitempty"`
	Result *model.PlacementResult `json:"result,omitempty"`
	Sheets []string               `json:"sheets,omitempty"`
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	snap := s.view.Snapshot()
	resp := resultResponse{State: snap.State.String(), Result: snap.Result}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
	}
	if snap.Result != nil {
		for _, sheet := range snap.Result.SortedSheets() {
			if sheet.SheetDimensions.Width > 0 && sheet.DrawHeight() > 0 {
				resp.Sheets = append(resp.Sheets, fmt.Sprintf("/api/sheets/%d.png", sheet.SheetIndex))
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// populated returns the displayed result, or writes 404 and returns nil.
func (s *Server) populated(w http.ResponseWriter) *view.Snapshot {
	snap := s.view.Snapshot()
	if snap.State != view.Populated || snap.Result == nil {
		writeError(w, http.StatusNotFound, view.ErrNotPopulated)
		return nil
	}
	return &snap
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	snap := s.populated(w)
	if snap == nil {
		return
	}
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, snap.Display.Text())
		return
	}
	writeJSON(w, http.StatusOK, snap.Display)
}

func (s *Server) handleSheet(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid sheet index %q", chi.URLParam(r, "index")))
		return
	}
	if s.populated(w) == nil {
		return
	}

	ratio := s.pixelRatio
	if q := r.URL.Query().Get("ratio"); q != "" {
		if v, err := strconv.ParseFloat(q, 64); err == nil && v > 0 {
			ratio = v
		}
	}
	img, ok := s.view.RenderSheet(index, ratio)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("sheet %d not found", index))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		s.logger.Warn("failed to encode sheet", "sheet", index, "err", err)
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.view.Export(r.Context(), s.exporter, s.pixelRatio, export.Options{})
	switch {
	case errors.Is(err, view.ErrNotPopulated):
		writeError(w, http.StatusNotFound, err)
		return
	case errors.Is(err, view.ErrExportInProgress):
		writeError(w, http.StatusConflict, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", export.DefaultFileName))
	doc.WriteTo(w)
}

func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	snap := s.populated(w)
	if snap == nil {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteLabels(&buf, *snap.Result); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="labels.pdf"`)
	buf.WriteTo(w)
}

func (s *Server) handleDXF(w http.ResponseWriter, r *http.Request) {
	snap := s.populated(w)
	if snap == nil {
		return
	}
	dir, err := os.MkdirTemp("", "slabplan-dxf-")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "plan.dxf")
	if err := export.ExportDXF(path, *snap.Result); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/dxf")
	w.Header().Set("Content-Disposition", `attachment; filename="plan.dxf"`)
	w.Write(data)
}
