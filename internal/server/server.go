// Package server implements the HTTP API for repository scans.
//
// The API exposes scans as stored resources: POST /api/v1/scans runs the
// engine against a repository path and persists the resulting profile,
// which can then be fetched by ID or rendered as a dependency graph.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/repolens/repolens/pkg/cache"
	"github.com/repolens/repolens/pkg/engine"
	"github.com/repolens/repolens/pkg/errors"
	"github.com/repolens/repolens/pkg/profile"
	"github.com/repolens/repolens/pkg/render/depgraph"
	"github.com/repolens/repolens/pkg/store"
	"github.com/repolens/repolens/pkg/walker"
)

// defaultProfileTTL is how long cached scan results stay valid.
const defaultProfileTTL = 24 * time.Hour

// Config holds the server's collaborators. Zero-value fields are
// replaced with in-memory or no-op defaults.
type Config struct {
	Addr string

	Engine *engine.Engine
	Store  store.Store
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// MaxDepth is the directory depth ceiling applied to every scan.
	MaxDepth int

	// AdvisoryVersion feeds cache key construction so that advisory
	// database updates invalidate cached profiles.
	AdvisoryVersion int
}

// Server serves the scan API.
type Server struct {
	cfg    Config
	router chi.Router
}

// New creates a server from cfg, filling in defaults for missing pieces.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Engine == nil {
		cfg.Engine = engine.New()
	}
	if cfg.Store == nil {
		cfg.Store = store.NewMemoryStore()
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNullCache()
	}
	if cfg.Keyer == nil {
		cfg.Keyer = cache.NewDefaultKeyer()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = walker.DefaultMaxDepth
	}

	s := &Server{cfg: cfg}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(recoverer(s.cfg.Logger))
	r.Use(observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/scans", s.handleCreateScan)
		r.Get("/scans", s.handleListScans)
		r.Get("/scans/{id}", s.handleGetScan)
		r.Get("/scans/{id}/graph", s.handleGraph)
	})
	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// =============================================================================
// Handlers
// =============================================================================

type scanRequest struct {
	Root     string `json:"root"`
	MaxDepth int    `json:"max_depth,omitempty"`
	Refresh  bool   `json:"refresh,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Root == "" {
		writeError(w, http.StatusBadRequest, "root is required")
		return
	}

	p, err := s.scan(r.Context(), req)
	if err != nil {
		s.writeScanError(w, err)
		return
	}

	record, err := s.cfg.Store.Save(r.Context(), p)
	if err != nil {
		s.cfg.Logger.Error("store save failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store scan")
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	record, err := s.cfg.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := s.cfg.Store.List(r.Context(), limit)
	if err != nil {
		s.cfg.Logger.Error("store list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list scans")
		return
	}
	if records == nil {
		records = []store.ScanRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	record, err := s.cfg.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "svg"
	}

	dot := depgraph.ToDOT(&record.Profile, depgraph.Options{
		Detailed:   r.URL.Query().Get("detailed") == "true",
		IncludeDev: r.URL.Query().Get("dev") == "true",
	})

	switch format {
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		w.Write([]byte(dot))
	case "svg":
		s.writeRendered(w, r, record, dot, format, "image/svg+xml", depgraph.RenderSVG)
	case "png":
		s.writeRendered(w, r, record, dot, format, "image/png", depgraph.RenderPNG)
	default:
		writeError(w, http.StatusBadRequest, "unknown format (expected dot, svg, or png)")
	}
}

// writeRendered serves a rasterized graph, consulting the render cache.
func (s *Server) writeRendered(w http.ResponseWriter, r *http.Request, record *store.ScanRecord, dot, format, contentType string, render func(context.Context, string) ([]byte, error)) {
	key := s.cfg.Keyer.RenderKey(cache.Hash([]byte(record.ID+dot)), format)
	if data, hit, err := s.cfg.Cache.Get(r.Context(), key); err == nil && hit {
		w.Header().Set("Content-Type", contentType)
		w.Write(data)
		return
	}

	data, err := render(r.Context(), dot)
	if err != nil {
		s.cfg.Logger.Error("graph render failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render graph")
		return
	}
	if err := s.cfg.Cache.Set(r.Context(), key, data, defaultProfileTTL); err != nil {
		s.cfg.Logger.Debug("cache write failed", "error", err)
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// scan returns the profile for req, from cache when possible.
func (s *Server) scan(ctx context.Context, req scanRequest) (*profile.RepositoryProfile, error) {
	maxDepth := req.MaxDepth
	if maxDepth <= 0 {
		maxDepth = s.cfg.MaxDepth
	}
	key := s.cfg.Keyer.ProfileKey(req.Root, cache.ProfileKeyOpts{
		MaxDepth:        maxDepth,
		AdvisoryVersion: s.cfg.AdvisoryVersion,
	})

	if !req.Refresh {
		if data, hit, err := s.cfg.Cache.Get(ctx, key); err == nil && hit {
			var p profile.RepositoryProfile
			if err := json.Unmarshal(data, &p); err == nil {
				return &p, nil
			}
		}
	}

	eng := s.cfg.Engine
	if maxDepth != s.cfg.MaxDepth {
		eng = eng.WithOptions(engine.WithWalkerOptions(walker.Options{MaxDepth: maxDepth}))
	}
	p, err := eng.Analyze(ctx, req.Root)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := s.cfg.Cache.Set(ctx, key, data, defaultProfileTTL); err != nil {
			s.cfg.Logger.Debug("cache write failed", "error", err)
		}
	}
	return p, nil
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) writeScanError(w http.ResponseWriter, err error) {
	if errors.GetCode(err) == errors.ErrCodeInvalidPath {
		writeError(w, http.StatusBadRequest, errors.UserMessage(err))
		return
	}
	s.cfg.Logger.Error("scan failed", "error", err)
	writeError(w, http.StatusInternalServerError, "scan failed")
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.GetCode(err) == errors.ErrCodeProfileNotFound {
		writeError(w, http.StatusNotFound, errors.UserMessage(err))
		return
	}
	s.cfg.Logger.Error("store lookup failed", "error", err)
	writeError(w, http.StatusInternalServerError, "failed to load scan")
}
