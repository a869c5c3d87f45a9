package httpadapter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/water-deficit-service/internal/domain"
	"github.com/couchcryptid/water-deficit-service/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxRequestBytes caps the POST /forecast body.
const maxRequestBytes = 64 << 10

// Forecaster builds a deficit forecast for one request.
type Forecaster interface {
	Forecast(ctx context.Context, req domain.DeficitRequest) (domain.DeficitForecast, error)
}

// Server exposes the forecast endpoint plus health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	forecaster Forecaster
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// POST /forecast routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, forecaster Forecaster, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second, // covers the upstream fetches of POST /forecast
			IdleTimeout:  60 * time.Second,
		},
		forecaster: forecaster,
		metrics:    metrics,
		logger:     logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /forecast", s.handleForecast)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	req, err := domain.DecodeDeficitRequest(body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	fc, err := s.forecaster.Forecast(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("forecast failed", "error", err, "request_id", req.ID)
		} else {
			s.logger.Info("forecast rejected", "error", err, "request_id", req.ID)
		}
		s.writeError(w, status, err)
		return
	}

	s.metrics.HTTPForecasts.WithLabelValues(strconv.Itoa(http.StatusOK)).Inc()
	sharedobs.WriteJSON(w, http.StatusOK, fc)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.metrics.HTTPForecasts.WithLabelValues(strconv.Itoa(status)).Inc()
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps forecast errors onto response codes.
func statusFor(err error) int {
	var alignErr *domain.AlignmentError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	case errors.As(err, &alignErr),
		errors.Is(err, domain.ErrInvalidParameter),
		errors.Is(err, domain.ErrMissingValue):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
