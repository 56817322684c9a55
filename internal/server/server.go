// Package server provides the local HTTP status server: health, a status
// snapshot of the frame loop, persisted settings and a live event feed.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/handmouse/internal/app"
	"github.com/ayusman/handmouse/internal/logging"
	"github.com/ayusman/handmouse/internal/server/api"
	"github.com/ayusman/handmouse/internal/store"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 3 * time.Second

// Controller is the frame loop as seen by the server.
type Controller interface {
	api.Applier
	Status() app.Status
}

// Config holds the server configuration.
type Config struct {
	Controller Controller
	Store      *store.Store
	Events     *EventsHandler
	Log        logrus.FieldLogger
}

// Server is the HTTP status server.
type Server struct {
	config Config
	log    logrus.FieldLogger
	mux    *http.ServeMux
	start  time.Time
}

// New creates a Server. Routes whose dependencies are nil are not
// registered.
func New(config Config) *Server {
	s := &Server{
		config: config,
		log:    logging.OrDiscard(config.Log),
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Controller != nil {
		s.mux.HandleFunc("/api/status", s.handleStatus)
	}

	if s.config.Controller != nil && s.config.Store != nil {
		settings := api.NewSettingsHandler(s.config.Store, s.config.Controller, s.log)
		s.mux.Handle("/api/settings", settings)
		s.mux.Handle("/api/settings/", settings)
	}

	if s.config.Events != nil {
		s.mux.Handle("/api/events", s.config.Events)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).Round(time.Second).String(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.config.Controller.Status())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and closes event feed connections.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("status server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	if s.config.Events != nil {
		s.config.Events.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("status server stopped")
	return nil
}
