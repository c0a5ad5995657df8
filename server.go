package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ActuatorSetter is the capability the HTTP handlers need from the pin
// controller.
type ActuatorSetter interface {
	Set(name ActuatorName, level Level) error
}

// PageRenderer supplies the landing page markup.
type PageRenderer interface {
	Render() ([]byte, error)
}

// command binds a route to an actuator level change and the text returned on
// success.
type command struct {
	path     string
	actuator ActuatorName
	level    Level
	reply    string
}

var commands = []command{
	{path: "/turn_on_pump", actuator: Pump, level: High, reply: "Насос включен!"},
	{path: "/turn_off_pump", actuator: Pump, level: Low, reply: "Насос выключен!"},
	{path: "/turn_on_light", actuator: Light, level: High, reply: "Освещение включено!"},
	{path: "/turn_off_light", actuator: Light, level: Low, reply: "Освещение выключено!"},
}

type route struct {
	path    string
	handler http.HandlerFunc
}

// Server holds the state shared by the HTTP handlers.
type Server struct {
	cfg        HTTPConfig
	pins       ActuatorSetter
	page       PageRenderer
	httpServer *http.Server
}

// NewServer constructs a Server.  pins must already be initialised: the
// server never claims hardware itself.
func NewServer(cfg HTTPConfig, pins ActuatorSetter, page PageRenderer) *Server {
	return &Server{cfg: cfg, pins: pins, page: page}
}

// routes returns the routing table.  Paths not listed here answer 404.
// The index route does its own method check: it also receives every unknown
// path, and those must be 404 whatever the method.
func (s *Server) routes() []route {
	rs := []route{{path: "/", handler: s.handleIndex}}
	for _, c := range commands {
		rs = append(rs, route{path: c.path, handler: getOnly(s.handleCommand(c))})
	}
	return rs
}

// Handler builds the request multiplexer from the routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, r := range s.routes() {
		mux.HandleFunc(r.path, r.handler)
	}
	return logRequests(mux)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	// Also stops the shutdown goroutine when Serve fails on its own.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout.Duration(),
		IdleTimeout:       s.cfg.IdleTimeout.Duration(),
	}

	log.Info().Str("addr", ln.Addr().String()).Msg("Listening")

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout.Duration())
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown error")
		}
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}

// handleIndex serves the landing page.  ServeMux routes every unmatched path
// to "/", so anything but the root is a 404 here.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !allowGet(w, r) {
		return
	}
	body, err := s.page.Render()
	if err != nil {
		log.Error().Err(err).Msg("Failed to render landing page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}

// handleCommand returns a handler that applies c.  A hardware failure is
// reported as a 500 with the cause; success is never claimed unless the
// write went through.
func (s *Server) handleCommand(c command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)
		logger := log.With().
			Str("request_id", reqID).
			Str("actuator", string(c.actuator)).
			Str("level", c.level.String()).
			Logger()

		if err := s.pins.Set(c.actuator, c.level); err != nil {
			logger.Error().Err(err).Msg("Actuator command failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		logger.Info().Msg("Actuator command applied")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(c.reply))
	}
}

// allowGet answers 405 and returns false for anything but GET and HEAD.
func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	return false
}

// getOnly rejects every method except GET and HEAD.
func getOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allowGet(w, r) {
			next(w, r)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// logRequests logs every request once it completes: debug for successful
// ones, warn for client and server errors.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)

		var ev *zerolog.Event
		if sr.status >= http.StatusBadRequest {
			ev = log.Warn()
		} else {
			ev = log.Debug()
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sr.status).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}
