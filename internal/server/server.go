// Package server serves a pre-built HTML artifact folder over a local
// address so a browser can load and hydrate it.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
)

// Sentinel errors.
var (
	ErrNotDirectory = errors.New("artifact path is not a directory")
	ErrIndexMissing = errors.New("index file not found in artifact folder")
	ErrBadStatus    = errors.New("page responded with an error status")
	ErrNotStarted   = errors.New("server not started")
)

// Page is a fetched document exactly as the server delivered it.
type Page struct {
	URL    string
	Status int
	Body   string
}

// Server is a static file server for one artifact folder.
type Server struct {
	root     string
	index    string
	mux      *http.ServeMux
	server   *http.Server
	listener net.Listener
	done     chan error
}

// New validates the artifact folder and index file and prepares a server.
// Nothing listens until Start is called.
func New(root, index string) (*Server, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("opening artifact folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}

	index = strings.TrimPrefix(filepath.ToSlash(index), "/")
	if fi, err := os.Stat(filepath.Join(abs, filepath.FromSlash(index))); err != nil || fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIndexMissing, index)
	}

	s := &Server{root: abs, index: index}
	s.mux = http.NewServeMux()
	s.registerRoutes()
	s.server = &http.Server{
		Handler:      s.mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s, nil
}

func (s *Server) registerRoutes() {
	files := http.FileServer(http.Dir(s.root))
	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		// The index name is user input; it is matched here rather than
		// compiled into a mux pattern.
		if r.URL.Path == "/" || r.URL.Path == "/"+s.index {
			s.handleIndex(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

// handleIndex serves the index file without the redirect http.FileServer
// issues for paths ending in index.html.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(s.index)))
	if err != nil {
		http.Error(w, "index not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, "index not readable", http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, r, s.index, info.ModTime(), f)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start binds 127.0.0.1:port (0 picks an ephemeral port) and serves in the
// background. It returns once the listener is ready to accept connections.
func (s *Server) Start(port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return fmt.Errorf("binding port %d: %w", port, err)
	}
	s.listener = ln
	s.done = make(chan error, 1)

	go func() {
		err := s.server.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()

	log.WithField("addr", ln.Addr().String()).WithField("root", s.root).Debug("artifact server listening")
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// URL returns the address of the index document.
func (s *Server) URL() string {
	u := url.URL{Scheme: "http", Host: s.Addr(), Path: "/" + s.index}
	return u.String()
}

// Fetch requests the index document and returns the literal response body.
// A status of 400 or above is reported as ErrBadStatus alongside the page.
func (s *Server) Fetch(ctx context.Context) (*Page, error) {
	if s.listener == nil {
		return nil, ErrNotStarted
	}
	return Fetch(ctx, s.URL())
}

// Fetch GETs url and returns the page body unmodified.
func Fetch(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}

	page := &Page{URL: url, Status: resp.StatusCode, Body: string(body)}
	if resp.StatusCode >= http.StatusBadRequest {
		return page, fmt.Errorf("%w: %s returned %d", ErrBadStatus, url, resp.StatusCode)
	}
	return page, nil
}

// Close stops the server and waits for the serve loop to exit. It is safe
// to call on a server that never started.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	if serveErr := <-s.done; serveErr != nil && err == nil {
		err = serveErr
	}
	s.listener = nil
	return err
}
