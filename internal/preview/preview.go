// Package preview serves the generated site locally and rebuilds it when the
// sources change.
package preview

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/florentdestremau/florent.cc/internal/build"
	"github.com/florentdestremau/florent.cc/internal/foundation/errors"
	"github.com/florentdestremau/florent.cc/internal/logfields"
	"github.com/florentdestremau/florent.cc/internal/metrics"
)

// DefaultDebounce is how long the watcher waits for changes to settle before rebuilding.
const DefaultDebounce = 300 * time.Millisecond

// SiteBuilder runs one build of the site.
type SiteBuilder interface {
	Build(ctx context.Context) (*build.Report, error)
}

// Options configures a Server.
type Options struct {
	// OutputDir is served over HTTP and never watched.
	OutputDir string
	// WatchDirs are watched recursively for changes.
	WatchDirs []string
	// Addr is the listen address, e.g. ":8080". Port 0 picks a free port.
	Addr        string
	MetricsPath string
	// Registry backs the metrics endpoint. Nil disables it.
	Registry *prom.Registry
	Debounce time.Duration
	Logger   *slog.Logger
}

// Server is the local preview server.
type Server struct {
	builder SiteBuilder
	opts    Options
	logger  *slog.Logger
	status  buildStatus

	rebuildReq chan struct{}
	timerMu    sync.Mutex
	timer      *time.Timer

	addrMu sync.Mutex
	addr   net.Addr
}

// New returns a preview server for builder.
func New(builder SiteBuilder, opts Options) *Server {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		builder:    builder,
		opts:       opts,
		logger:     logger,
		rebuildReq: make(chan struct{}, 1),
	}
}

// buildStatus tracks the current build state for error display.
type buildStatus struct {
	mu           sync.RWMutex
	lastError    error
	lastReport   *build.Report
	hasGoodBuild bool
}

func (bs *buildStatus) record(report *build.Report, err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastReport = report
	bs.lastError = err
	if err == nil {
		bs.hasGoodBuild = true
	}
}

func (bs *buildStatus) get() (hasGoodBuild bool, err error) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.hasGoodBuild, bs.lastError
}

// Run performs an initial build, starts the HTTP server and watcher, and
// blocks until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.rebuild(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapError(err, errors.CategoryPreview, "create file watcher").Build()
	}
	defer func() { _ = watcher.Close() }()
	for _, dir := range s.opts.WatchDirs {
		s.addDirsRecursive(watcher, dir)
	}

	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return errors.WrapError(err, errors.CategoryPreview, "listen").
			WithContext("addr", s.opts.Addr).Build()
	}
	s.addrMu.Lock()
	s.addr = ln.Addr()
	s.addrMu.Unlock()

	srv := &http.Server{Handler: s.Handler(), ReadTimeout: 30 * time.Second, WriteTimeout: 30 * time.Second, IdleTimeout: 120 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("preview server error", logfields.Error(err))
		}
	}()
	s.logger.Info("Preview server listening", slog.String("url", "http://"+hostPort(ln.Addr())))

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		s.rebuildWorker(ctx)
	}()

	err = s.watchLoop(ctx, watcher)

	s.logger.Info("Shutting down preview server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		s.logger.Warn("HTTP server shutdown error", logfields.Error(shutdownErr))
	}
	s.stopTimer()
	<-workerDone
	return err
}

// Addr returns the address the server listens on once Run has started, or nil.
func (s *Server) Addr() net.Addr {
	s.addrMu.Lock()
	defer s.addrMu.Unlock()
	return s.addr
}

// Handler serves the metrics endpoint and the output directory.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.opts.Registry != nil {
		mux.Handle(s.opts.MetricsPath, metrics.HTTPHandler(s.opts.Registry))
	}
	files := http.FileServer(http.Dir(s.opts.OutputDir))
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if good, err := s.status.get(); err != nil && !good {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = fmt.Fprintf(w, "build failed: %v\n", err)
			return
		}
		files.ServeHTTP(w, r)
	}))
	return withRequestLogging(s.logger, mux)
}

// Trigger schedules a rebuild once no further Trigger calls arrive within
// the debounce window.
func (s *Server) Trigger() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.opts.Debounce, s.request)
}

// request queues a rebuild. At most one request is pending at any time;
// further requests while one is queued are coalesced.
func (s *Server) request() {
	select {
	case s.rebuildReq <- struct{}{}:
	default:
	}
}

func (s *Server) stopTimer() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
}

// rebuildWorker runs queued rebuilds one at a time until ctx is done.
func (s *Server) rebuildWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.rebuildReq:
			s.logger.Info("Change detected; rebuilding site")
			s.rebuild(ctx)
		}
	}
}

func (s *Server) rebuild(ctx context.Context) {
	report, err := s.builder.Build(ctx)
	s.status.record(report, err)
	if err != nil {
		s.logger.Warn("Build failed", logfields.Error(err))
		return
	}
	if report != nil {
		s.logger.Info("Site rebuilt", logfields.BuildID(report.BuildID), slog.String("summary", report.Summary()))
	}
}

func (s *Server) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			s.handleFileEvent(watcher, ev)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (s *Server) handleFileEvent(watcher *fsnotify.Watcher, ev fsnotify.Event) {
	if shouldIgnoreEvent(ev.Name) || s.inOutput(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			s.addDirsRecursive(watcher, ev.Name)
		}
	}
	s.logger.Debug("File change detected", logfields.Path(ev.Name), logfields.Op(ev.Op.String()))
	s.Trigger()
}

func (s *Server) addDirsRecursive(w *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && (strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules") {
			return filepath.SkipDir
		}
		if s.inOutput(path) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			s.logger.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

func (s *Server) inOutput(path string) bool {
	if s.opts.OutputDir == "" {
		return false
	}
	out, err := filepath.Abs(s.opts.OutputDir)
	if err != nil {
		return false
	}
	p, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return p == out || strings.HasPrefix(p, out+string(filepath.Separator))
}

// shouldIgnoreEvent returns true for filesystem events that should not trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	// Ignore hidden files
	if strings.HasPrefix(base, ".") {
		return true
	}

	// Ignore editor temp/swap files
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db" || base == "4913"
}

func hostPort(addr net.Addr) string {
	if tcp, ok := addr.(*net.TCPAddr); ok && tcp.IP.IsUnspecified() {
		return "localhost:" + strconv.Itoa(tcp.Port)
	}
	return addr.String()
}
