// Package api exposes the habit tracker over HTTP/JSON.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/julianstephens/habitlog/internal/auth"
	"github.com/julianstephens/habitlog/internal/constants"
	"github.com/julianstephens/habitlog/internal/habits"
	"github.com/julianstephens/habitlog/internal/logger"
)

// Pinger reports whether a backing dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Pingers checks several dependencies and fails on the first unreachable one
type Pingers []Pinger

func (p Pingers) Ping(ctx context.Context) error {
	for _, pinger := range p {
		if err := pinger.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

type Config struct {
	Addr            string
	CookieSecure    bool
	CORSOrigins     []string
	LoginRate       float64
	LoginBurst      int
	WindowDays      int
	ShutdownTimeout time.Duration
}

type Server struct {
	cfg     Config
	auth    *auth.Service
	habits  *habits.Service
	health  Pinger
	metrics *metrics
	limiter *rateLimiter
	handler http.Handler
}

func NewServer(cfg Config, authSvc *auth.Service, habitSvc *habits.Service, health Pinger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = constants.DefaultAddr
	}
	if cfg.LoginRate <= 0 {
		cfg.LoginRate = constants.DefaultLoginRate
	}
	if cfg.LoginBurst <= 0 {
		cfg.LoginBurst = constants.DefaultLoginBurst
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = constants.DefaultWindowDays
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = constants.DefaultShutdownTimeout
	}

	s := &Server{
		cfg:     cfg,
		auth:    authSvc,
		habits:  habitSvc,
		health:  health,
		metrics: newMetrics(),
		limiter: newRateLimiter(cfg.LoginRate, cfg.LoginBurst),
	}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Message: "route not found", Error: "not_found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Message: "method not allowed", Error: "method_not_allowed"})
	})
	router.Use(s.metrics.middleware)
	s.routes(router)

	s.handler = requestID(logRequests(recoverPanics(cors(cfg.CORSOrigins, router))))
	return s
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", s.cfg.Addr)
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

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
