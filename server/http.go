package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/dispatch"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/logging"
)

const defaultShutdownTimeout = 5 * time.Second

// HTTPOptions configures the web API.
type HTTPOptions struct {
	// StaticDir holds index.html and the browser assets; skipped when absent.
	StaticDir      string
	AllowedOrigins []string
	Logger         logrus.FieldLogger
}

// HTTPServer exposes the dispatcher over JSON and websocket endpoints.
type HTTPServer struct {
	dispatcher *dispatch.Dispatcher
	staticDir  string
	origins    []string
	logger     logrus.FieldLogger
	started    time.Time
	upgrader   websocket.Upgrader
	router     *mux.Router
}

func NewHTTPServer(d *dispatch.Dispatcher, opts HTTPOptions) *HTTPServer {
	s := &HTTPServer{
		dispatcher: d,
		staticDir:  opts.StaticDir,
		origins:    opts.AllowedOrigins,
		logger:     opts.Logger,
		started:    time.Now(),
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	s.router = s.routes()
	return s
}

func (s *HTTPServer) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestID, s.cors, s.instrument)

	api := r.PathPrefix("/api").Subrouter()
	api.Path("/exec").Methods(http.MethodPost, http.MethodOptions).HandlerFunc(s.handleExec)
	api.Path("/nlp").Methods(http.MethodPost, http.MethodOptions).HandlerFunc(s.handleNLP)
	api.Path("/info").Methods(http.MethodGet).HandlerFunc(s.handleInfo)
	api.Path("/ws").Methods(http.MethodGet).HandlerFunc(s.handleWS)

	r.Path("/health").Methods(http.MethodGet).HandlerFunc(s.handleHealth)
	r.Path("/metrics").Methods(http.MethodGet).Handler(promhttp.Handler())

	if s.staticDir != "" {
		if info, err := os.Stat(s.staticDir); err == nil && info.IsDir() {
			r.PathPrefix("/static/").Methods(http.MethodGet).
				Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(s.staticDir))))
			r.Path("/").Methods(http.MethodGet).HandlerFunc(s.handleIndex)
		} else {
			s.logger.WithField("dir", s.staticDir).Debug("static_dir_missing")
		}
	}
	return r
}

// ServeHTTP lets the server be mounted directly or wrapped by httptest.
func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Serve handles connections on ln until ctx is cancelled, then drains for at
// most shutdownTimeout.
func (s *HTTPServer) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	httpServer := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.WithError(err).Warn("http_shutdown_failed")
		}
	}()

	s.logger.WithField("addr", ln.Addr().String()).Info("http_listening")
	if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartHTTP listens on addr and serves until ctx is cancelled.
func StartHTTP(ctx context.Context, s *HTTPServer, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

func (s *HTTPServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(s.staticDir, "index.html"))
}
