// Package server exposes the JSON API and serves generated sites.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"launchpage/internal/brief"
	"launchpage/internal/config"
	"launchpage/internal/database"
	"launchpage/internal/page"
	"launchpage/internal/publish"
	"launchpage/internal/site"
)

// Error kinds returned in the {error, message} payload.
const (
	errBadRequest = "bad_request"
	errNotFound   = "not_found"
	errExhausted  = "exhausted"
	errUpstream   = "upstream"
	errInternal   = "internal"
)

// Server is the HTTP server for generating and serving landing pages.
type Server struct {
	cfg        *config.Config
	db         *database.DB
	generator  *page.Generator
	store      *site.Store
	publishers map[string]publish.Publisher
	mux        *http.ServeMux
}

// New creates a new Server. Publishers is keyed by target name
// ("sftp", "cpanel"); unconfigured targets may be omitted.
func New(cfg *config.Config, db *database.DB, generator *page.Generator, store *site.Store, publishers map[string]publish.Publisher) *Server {
	s := &Server{
		cfg:        cfg,
		db:         db,
		generator:  generator,
		store:      store,
		publishers: publishers,
		mux:        http.NewServeMux(),
	}
	s.routes()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return logMiddleware(corsMiddleware(s.cfg.Server.AllowedOrigins, s.mux))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/generate", s.handleGenerate)
	s.mux.HandleFunc("/api/upload", s.handleUpload)
	s.mux.HandleFunc("/api/sites/", s.handleSiteByID)

	// Generated sites and uploaded assets are served as plain static files.
	s.mux.Handle("/sites/", http.StripPrefix("/sites/", http.FileServer(http.Dir(s.store.SitesDir()))))
	s.mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.store.UploadsDir()))))
}

// Serve starts the HTTP server on the configured port.
func (s *Server) Serve() error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// --- Handlers ---

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errBadRequest, "method not allowed")
		return
	}

	var b brief.Brief
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, errBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	b = b.Normalized()
	if err := b.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, errBadRequest, err.Error())
		return
	}

	// Budget the whole request: every attempt gets the per-call deadline,
	// plus slack for post-processing.
	budget := time.Duration(s.cfg.Generation.TimeoutSeconds) * time.Second
	budget *= time.Duration(s.cfg.Generation.MaxRetries + 1)
	ctx, cancel := context.WithTimeout(r.Context(), budget+10*time.Second)
	defer cancel()

	result, err := s.generator.Generate(ctx, b)
	if err != nil {
		var exhausted *page.ExhaustedError
		var upstream *page.UpstreamError
		switch {
		case errors.As(err, &exhausted):
			writeError(w, http.StatusUnprocessableEntity, errExhausted, exhausted.Error())
		case errors.As(err, &upstream):
			writeError(w, http.StatusBadGateway, errUpstream, upstream.Error())
		default:
			writeError(w, http.StatusInternalServerError, errInternal, err.Error())
		}
		return
	}

	id := uuid.NewString()
	html, err := s.store.SaveSite(id, result.HTML, b)
	if err != nil {
		log.Printf("saving site %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, errInternal, "failed to persist site")
		return
	}

	status := database.StatusGenerated
	if result.Fallback {
		status = database.StatusFallback
	}
	if err := s.db.InsertSite(id, b.Title(), b.Ticker, b.Description, result.Attempts, status); err != nil {
		log.Printf("indexing site %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, errInternal, "failed to index site")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"id":   id,
		"url":  strings.TrimRight(s.cfg.Server.BaseURL, "/") + "/sites/" + id + "/",
		"html": html,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errBadRequest, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(site.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, errBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, errBadRequest, "missing 'file' field")
		return
	}
	defer file.Close()

	path, err := s.store.SaveUpload(header.Filename, file)
	if err != nil {
		writeError(w, http.StatusBadRequest, errBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

// handleSiteByID dispatches /api/sites/{id}, /api/sites/{id}/zip, and
// /api/sites/{id}/publish.
func (s *Server) handleSiteByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sites/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusNotFound, errNotFound, "missing site id")
		return
	}

	record, err := s.db.GetSite(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errInternal, err.Error())
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, errNotFound, "site not found")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, record)
	case action == "zip" && r.Method == http.MethodGet:
		s.handleZip(w, r, id)
	case action == "publish" && r.Method == http.MethodPost:
		s.handlePublish(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, errBadRequest, "method not allowed")
	}
}

func (s *Server) handleZip(w http.ResponseWriter, _ *http.Request, id string) {
	// Archives are a single page plus a few assets; build them in memory so
	// a failed walk still gets an error status instead of a truncated body.
	var buf bytes.Buffer
	if err := s.store.WriteZip(id, &buf); err != nil {
		log.Printf("zipping site %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, errInternal, "failed to build archive")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".zip"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Target string `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	pub, ok := s.publishers[req.Target]
	if !ok {
		writeError(w, http.StatusBadRequest, errBadRequest, fmt.Sprintf("unknown or unconfigured publish target %q", req.Target))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	url, err := pub.Publish(ctx, s.store.SitePath(id), id)
	if err != nil {
		writeError(w, http.StatusBadGateway, errUpstream, err.Error())
		return
	}

	if err := s.db.SetPublishedURL(id, url); err != nil {
		log.Printf("recording publish for %s: %v", id, err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, map[string]string{"error": kind, "message": message})
}

func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}
