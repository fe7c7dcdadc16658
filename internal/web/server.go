// Package web provides the HTTP dashboard for the rep logger.
package web

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/sweeney/rep-counter/internal/status"
)

// DefaultDownsample is the /data stride when none is configured.
const DefaultDownsample = 380

// Server serves the dashboard over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	downsample int
}

// New creates a Server that reads state from the given tracker.
// downsample <= 0 selects DefaultDownsample.
func New(addr string, tracker *status.Tracker, downsample int) *Server {
	if downsample <= 0 {
		downsample = DefaultDownsample
	}
	s := &Server{tracker: tracker, downsample: downsample}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/latest", s.handleLatest)
	mux.HandleFunc("/data", s.handleData)
	mux.HandleFunc("/ws", s.handleWS)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Handler returns the server's request router.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, status.FormatJSON(s.tracker.Snapshot()))
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	data, ok := status.FormatLatest(s.tracker.Snapshot())
	if !ok {
		writeError(w, http.StatusNotFound, "No data yet")
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	stride := s.downsample
	if v := r.URL.Query().Get("every"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "every must be a positive integer")
			return
		}
		stride = n
	}
	writeJSON(w, http.StatusOK, status.FormatHistory(s.tracker.History(stride)))
}
