// Package weather acquires observed precipitation, precipitation forecasts,
// and PET from the regional climate services and adapts them to the domain
// series types.
package weather

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/water-deficit-service/internal/domain"
	"github.com/couchcryptid/water-deficit-service/internal/observability"
	"github.com/sony/gobreaker/v2"
)

const (
	// breakerTripFailures is the number of consecutive failures after which
	// the breaker opens.
	breakerTripFailures = 5
	breakerOpenTimeout  = 30 * time.Second
	maxErrorBody        = 256
)

// StatusError is a non-2xx response from a weather service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// upstream sends requests to one weather service through a circuit breaker
// and records per-source request metrics.
type upstream struct {
	source     string
	token      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	metrics    *observability.Metrics
	logger     *slog.Logger
}

func newUpstream(source, token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *upstream {
	u := &upstream{
		source:     source,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
	u.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        source,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > breakerTripFailures
		},
		// Client errors and cancelled callers are not the service's fault.
		IsSuccessful: func(err error) bool {
			if errors.Is(err, context.Canceled) {
				return true
			}
			var se *StatusError
			if errors.As(err, &se) {
				return se.Code < 500 && se.Code != http.StatusTooManyRequests
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			u.logger.Warn("weather circuit breaker state change",
				"source", name, "from", from.String(), "to", to.String())
		},
	})
	return u
}

// get issues a GET to url.
func (u *upstream) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", u.source, err)
	}
	return u.do(req)
}

// post encodes body as JSON and POSTs it to url.
func (u *upstream) post(ctx context.Context, url string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", u.source, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", u.source, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return u.do(req)
}

// do executes req and returns the response body. Transport failures, non-2xx
// statuses, and an open breaker are wrapped in domain.ErrUpstream.
func (u *upstream) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	if u.token != "" {
		req.Header.Set("Authorization", u.token)
	}

	start := time.Now()
	body, err := u.breaker.Execute(func() ([]byte, error) {
		resp, err := u.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			if len(data) > maxErrorBody {
				data = data[:maxErrorBody]
			}
			return nil, &StatusError{Code: resp.StatusCode, Body: string(data)}
		}
		return data, nil
	})
	u.metrics.UpstreamDuration.WithLabelValues(u.source).Observe(time.Since(start).Seconds())

	if err != nil {
		u.metrics.UpstreamRequests.WithLabelValues(u.source, "error").Inc()
		return nil, fmt.Errorf("%w: %s request: %w", domain.ErrUpstream, u.source, err)
	}
	u.metrics.UpstreamRequests.WithLabelValues(u.source, "success").Inc()
	return body, nil
}

// decode unmarshals a response body, reporting malformed payloads as
// upstream failures.
func (u *upstream) decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", domain.ErrUpstream, u.source, err)
	}
	return nil
}
