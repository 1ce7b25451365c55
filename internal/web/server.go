// Package web serves the daemon's live status over HTTP: a human-readable
// page at / and the machine-readable document at /index.json.
package web

import (
	"context"
	"net"
	"net/http"

	"github.com/sweeney/bootled/internal/status"
)

// Snapshotter supplies the point-in-time state the handlers render.
// *status.Tracker satisfies it.
type Snapshotter interface {
	Snapshot() status.Snapshot
}

// Server exposes the daemon state as HTML and JSON.
type Server struct {
	src Snapshotter
	srv *http.Server
}

// New creates a Server bound to addr, reading state from src.
func New(addr string, src Snapshotter) *Server {
	s := &Server{src: src}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveIndex)
	mux.HandleFunc("/index.html", s.serveIndex)
	mux.HandleFunc("/index.json", s.serveJSON)

	s.srv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// ListenAndServe blocks serving requests until Shutdown is called.
func (s *Server) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Serve accepts connections on an existing listener, so tests can bind to an
// ephemeral port first.
func (s *Server) Serve(ln net.Listener) error {
	return s.srv.Serve(ln)
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	// The root pattern also catches every unregistered path.
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	if !readOnly(w, r) {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, s.src.Snapshot())
}

func (s *Server) serveJSON(w http.ResponseWriter, r *http.Request) {
	if !readOnly(w, r) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(s.src.Snapshot()))
}

// readOnly rejects anything but GET and HEAD. The snapshot is always fresh,
// so responses are marked uncacheable.
func readOnly(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	w.Header().Set("Cache-Control", "no-store")
	return true
}
