package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/fraudlens-cli/internal/analysis"
	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
	"github.com/KaramelBytes/fraudlens-cli/internal/report"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// Options configures the HTTP surface.
type Options struct {
	Load           dataset.Options
	Pipeline       analysis.Options
	MaxUploadBytes int64
}

// Server exposes upload and dashboard panels over HTTP.
type Server struct {
	router *chi.Mux
	store  *Store
	opt    Options
}

// New builds a server with its routes and middleware.
func New(opt Options) *Server {
	if opt.MaxUploadBytes <= 0 {
		opt.MaxUploadBytes = 64 << 20
	}
	s := &Server{router: chi.NewRouter(), store: &Store{}, opt: opt}
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/api/dataset", s.handleUpload)
	s.router.Get("/api/dashboard", s.handleDashboard)
	s.router.Get("/api/dashboard/{panel}", s.handlePanel)
	s.router.Get("/report", s.handleReport)
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Store exposes the current dashboard holder.
func (s *Server) Store() *Store { return s.store }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "loaded": s.store.Current() != nil})
}

// handleUpload accepts a multipart "file" field or a raw CSV body.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opt.MaxUploadBytes)
	body, name, closeFn, err := uploadSource(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err, "", "")
		return
	}
	defer closeFn()

	var ld *dataset.Loaded
	if strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		ld, err = dataset.ReadXLSX(body, name, s.opt.Load)
	} else {
		opt := s.opt.Load
		if opt.Delimiter == 0 && strings.HasSuffix(strings.ToLower(name), ".tsv") {
			opt.Delimiter = '\t'
		}
		ld, err = dataset.ReadCSV(body, name, opt)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse upload: %w", err), "", "")
		return
	}

	d, err := analysis.Run(ld.Table, s.opt.Pipeline)
	if err != nil {
		var se *analysis.StageError
		if errors.As(err, &se) {
			writeError(w, http.StatusUnprocessableEntity, err, string(se.Stage), se.Column)
			return
		}
		writeError(w, http.StatusInternalServerError, err, "", "")
		return
	}
	d.Warnings = append(ld.Warnings, d.Warnings...)
	if prev := s.store.Replace(d); prev != nil {
		log.Infof("replaced dashboard %s (%s) with %s (%s, %d rows)", prev.ID, prev.Source, d.ID, d.Source, d.Rows)
	} else {
		log.Infof("loaded dashboard %s (%s, %d rows)", d.ID, d.Source, d.Rows)
	}
	writeJSON(w, http.StatusCreated, d)
}

func uploadSource(r *http.Request) (io.Reader, string, func(), error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			return nil, "", nil, fmt.Errorf("read multipart field \"file\": %w", err)
		}
		return f, filepath.Base(hdr.Filename), func() { f.Close() }, nil
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload.csv"
	}
	return r.Body, filepath.Base(name), func() {}, nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d := s.store.Current()
	if d == nil {
		writeError(w, http.StatusNotFound, errors.New("no dataset loaded"), "", "")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	d := s.store.Current()
	if d == nil {
		writeError(w, http.StatusNotFound, errors.New("no dataset loaded"), "", "")
		return
	}
	panel := chi.URLParam(r, "panel")
	var v any
	switch panel {
	case "class-distribution":
		v = d.ClassDistribution
	case "amount-distribution":
		v = d.AmountDistribution
	case "time-trends":
		v = d.TimeTrend
	case "correlation":
		v = d.Correlation
	case "feature-means":
		v = d.FeatureMeans
	case "feature-ranking":
		v = d.Ranking
	default:
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown panel %q", panel), "", "")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleReport serves the current dashboard as an HTML page.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	d := s.store.Current()
	if d == nil {
		http.Error(w, "no dataset loaded", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(report.HTML(d)); err != nil {
		log.Errorf("write report: %v", err)
	}
}

// writeJSON encodes before writing the status, so an unencodable value
// becomes a 500 with a JSON error body instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Errorf("encode response: %v", err)
		status = http.StatusInternalServerError
		b, _ = json.Marshal(map[string]string{"error": "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(b, '\n')); err != nil {
		log.Errorf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error, stage, column string) {
	body := map[string]string{"error": err.Error()}
	if stage != "" {
		body["stage"] = stage
	}
	if column != "" {
		body["column"] = column
	}
	writeJSON(w, status, body)
}
