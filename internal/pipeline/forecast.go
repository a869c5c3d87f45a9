package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/water-deficit-service/internal/domain"
	"github.com/couchcryptid/water-deficit-service/internal/observability"
	"github.com/google/uuid"
)

// Forecaster builds deficit forecasts from requests. It implements
// Transformer for the Kafka pipeline and serves the HTTP forecast endpoint.
type Forecaster struct {
	source  domain.WeatherSource
	engine  *domain.Engine
	logger  *slog.Logger
	metrics *observability.Metrics
	horizon int
}

// NewForecaster creates a Forecaster that extends PET horizonDays past the
// observed season.
func NewForecaster(source domain.WeatherSource, engine *domain.Engine, horizonDays int, logger *slog.Logger, metrics *observability.Metrics) *Forecaster {
	return &Forecaster{
		source:  source,
		engine:  engine,
		logger:  logger,
		metrics: metrics,
		horizon: horizonDays,
	}
}

func (f *Forecaster) Transform(ctx context.Context, raw domain.RawEvent) (domain.DeficitForecast, error) {
	req, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.DeficitForecast{}, err
	}
	return f.Forecast(ctx, req)
}

// Forecast fetches the current season's weather for the request location and
// runs the scenario chain over it. Requests without an ID are assigned one.
func (f *Forecaster) Forecast(ctx context.Context, req domain.DeficitRequest) (domain.DeficitForecast, error) {
	if err := req.Validate(); err != nil {
		return domain.DeficitForecast{}, err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	season := domain.CurrentSeason()

	in, err := f.source.FetchWeather(ctx, req.Location(), season)
	if err != nil {
		return domain.DeficitForecast{}, fmt.Errorf("forecast %s: %w", req.ID, err)
	}

	start := time.Now()
	fc, err := domain.BuildForecast(f.engine, req, in, season, f.horizon)
	f.metrics.SimulationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.DeficitForecast{}, fmt.Errorf("forecast %s: %w", req.ID, err)
	}

	f.logger.Debug("forecast built",
		"id", req.ID,
		"soil", req.Soil,
		"crop", req.Crop,
		"days", len(fc.Chain.Dates),
		"status", fc.CurrentStatus,
	)
	return fc, nil
}
