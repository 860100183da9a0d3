// Package server implements the preview file server: every file under the
// root is served as-is, with caching disabled and script MIME types fixed.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/text/message"

	"github.com/Kush-Singh-26/devserve/internal/config"
	"github.com/Kush-Singh-26/devserve/internal/metrics"
)

const (
	indexPage      = "/index.html"
	allowedMethods = "GET, HEAD"
)

type Server struct {
	cfg        *config.Config
	files      http.FileSystem
	fileServer http.Handler
	overrides  mimeOverrides
	logger     *slog.Logger
	out        io.Writer
	printer    *message.Printer
	metrics    *metrics.ServeMetrics
}

// New creates a server for cfg reading from fsys. cfg.Root is interpreted
// inside fsys. Console lines go to out, request logs to logger.
func New(cfg *config.Config, fsys afero.Fs, logger *slog.Logger, out io.Writer) *Server {
	files := afero.NewHttpFs(fsys).Dir(cfg.Root)
	return &Server{
		cfg:        cfg,
		files:      files,
		fileServer: http.FileServer(files),
		overrides:  newMimeOverrides(cfg.MimeTypes),
		logger:     logger,
		out:        out,
		printer:    newPrinter(cfg.Lang),
		metrics:    metrics.NewServeMetrics(),
	}
}

// Metrics returns the counters shared by all connections.
func (s *Server) Metrics() *metrics.ServeMetrics {
	return s.metrics
}

// Handler returns the complete request handler.
func (s *Server) Handler() http.Handler {
	var h http.Handler = http.HandlerFunc(s.serveFile)
	if s.cfg.Gzip {
		h = gzipHandler(h)
	}
	h = noCache(h)
	return s.accessLog(h)
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", allowedMethods)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	if typ, ok := s.overrides.lookup(r.URL.Path); ok {
		w.Header().Set("Content-Type", typ)
	}

	// http.FileServer redirects .../index.html to its directory; serve it
	// under its own name instead.
	if strings.HasSuffix(r.URL.Path, indexPage) {
		s.serveIndexFile(w, r)
		return
	}

	s.fileServer.ServeHTTP(w, r)
}

func (s *Server) serveIndexFile(w http.ResponseWriter, r *http.Request) {
	f, err := s.files.Open(r.URL.Path)
	if err != nil {
		msg, code := httpError(err)
		http.Error(w, msg, code)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		msg, code := httpError(err)
		http.Error(w, msg, code)
		return
	}
	if info.IsDir() {
		// A directory named index.html gets the usual directory handling.
		s.fileServer.ServeHTTP(w, r)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// Listen binds the configured address.
func (s *Server) Listen() (net.Listener, error) {
	addr := s.cfg.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, &BindError{Addr: addr, Err: err}
	}
	return ln, nil
}

// Serve accepts connections on ln until ctx is cancelled, then stops
// accepting and waits up to ShutdownTimeout for in-flight responses.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:  s.Handler(),
		ErrorLog: slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	var watcher *Watcher
	if s.cfg.Watch {
		w, err := NewWatcher(s.cfg.Root, s.cfg.DebounceDuration, s.logger, s.printChanges)
		if err != nil {
			s.logger.Warn("Failed to start file watcher", "root", s.cfg.Root, "error", err)
		} else {
			watcher = w
			watcher.Start(ctx)
			s.printer.Fprintf(s.out, msgWatching)
		}
	}
	closeWatcher := func() {
		if watcher == nil {
			return
		}
		if err := watcher.Close(); err != nil {
			s.logger.Warn("Failed to close file watcher", "error", err)
		}
		watcher = nil
	}
	defer closeWatcher()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	// No change notices may follow the stop messages.
	closeWatcher()
	s.printer.Fprintf(s.out, msgStopping)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown error", "error", err)
		_ = httpServer.Close()
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Warn("HTTP server error", "error", err)
	}

	snap := s.metrics.Snapshot()
	s.printer.Fprintf(s.out, msgSummary, snap.Requests, snap.NotFound, snap.Uptime.Round(time.Second))
	s.printer.Fprintf(s.out, msgStopped)
	s.logger.Debug("Server stopped", "summary", s.metrics.String())
	return nil
}

// Run binds the listener, prints the banner and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	s.printBanner(ln.Addr().String())
	return s.Serve(ctx, ln)
}

func (s *Server) printBanner(addr string) {
	s.printer.Fprintf(s.out, msgStarted, displayURL(addr))
	s.printer.Fprintf(s.out, msgServingRoot, s.cfg.Root)
	if host := s.cfg.Host; host == "0.0.0.0" || host == "::" || host == "" {
		s.printer.Fprintf(s.out, msgLANNote)
	}
	s.printer.Fprintf(s.out, msgReloadHint)
}

func (s *Server) printChanges(changes []Change) {
	for _, c := range changes {
		switch c.Op {
		case Created:
			s.printer.Fprintf(s.out, msgCreated, c.Path)
		case Removed:
			s.printer.Fprintf(s.out, msgRemoved, c.Path)
		default:
			s.printer.Fprintf(s.out, msgModified, c.Path)
		}
	}
}

// Run is the serve command: it loads the configuration from args and
// serves the root from the OS filesystem until ctx is cancelled.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(args, stderr)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, nil))
	slog.SetDefault(logger)

	fsys := afero.NewReadOnlyFs(afero.NewOsFs())
	if ok, err := afero.IsDir(fsys, cfg.Root); err != nil || !ok {
		if err == nil || errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrRootNotDir, cfg.Root)
		}
		return fmt.Errorf("%w: %s: %v", ErrRootNotDir, cfg.Root, err)
	}
	if cfg.ConfigFile != "" {
		logger.Info("Loaded config", "path", cfg.ConfigFile)
	}

	return New(cfg, fsys, logger, stdout).Run(ctx)
}
