// Package server previews annotated documents over HTTP.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Hice-Bot/linkmark/internal/annotate"
	"github.com/Hice-Bot/linkmark/internal/doc"
	"github.com/Hice-Bot/linkmark/internal/match"
)

// Config holds server configuration.
type Config struct {
	Addr        string
	Root        string   // directory documents are served from
	MarkerClass string   // marker class override, empty for the default
	ExcludeTags []string // extra container tags to skip while annotating
}

// Server annotates documents under Root on the fly.
type Server struct {
	cfg        Config
	table      *match.Table
	router     chi.Router
	httpServer *http.Server
	hub        *hub
}

// New creates a server over a compiled match table.
func New(cfg Config, table *match.Table) *Server {
	s := &Server{
		cfg:   cfg,
		table: table,
		hub:   newHub(),
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/doc/*", s.handleDoc)
	r.Get("/ws", s.hub.handle)

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// handleDoc annotates the requested file fresh on every request; the
// compiled table is shared and read-only, the annotator is not, so each
// request gets its own.
func (s *Server) handleDoc(w http.ResponseWriter, r *http.Request) {
	// Cleaning with a leading slash pins the request under Root; ".."
	// segments cannot escape it.
	rel := path.Clean("/" + chi.URLParam(r, "*"))
	if rel == "/" {
		http.Error(w, "missing document path", http.StatusBadRequest)
		return
	}
	full := filepath.Join(s.cfg.Root, filepath.FromSlash(rel))

	a := annotate.New(s.table)
	if s.cfg.MarkerClass != "" {
		a.MarkerClass = s.cfg.MarkerClass
	}
	a.Exclude(s.cfg.ExcludeTags...)

	res, err := doc.Process(full, a)
	if err != nil {
		if os.IsNotExist(err) || strings.Contains(err.Error(), "no such file") {
			http.NotFound(w, r)
			return
		}
		log.Printf("linkmark: serve %s: %v", rel, err)
		http.Error(w, "annotation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(res.HTML))
}

// Broadcast pushes a message to every connected reload client. The watch
// handler calls this after re-annotating a changed file.
func (s *Server) Broadcast(msg string) {
	s.hub.broadcast(msg)
}

// Start begins listening on the configured address.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Printf("linkmark: serving %s on %s", s.cfg.Root, s.cfg.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
