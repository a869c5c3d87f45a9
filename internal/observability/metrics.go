package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "water_deficit"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// forecast pipeline, the weather upstreams, and the HTTP API.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	MessagesProduced prometheus.Counter
	ForecastErrors   prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Model metrics.
	SimulationDuration prometheus.Histogram

	// Weather upstream metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: source={acis,outlook,pet}, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: source
	WeatherCache     *prometheus.CounterVec   // labels: result={hit,miss}

	// HTTP API metrics.
	HTTPForecasts *prometheus.CounterVec // labels: code
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total deficit requests read from the request topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total deficit forecasts written to the forecast topic.",
		}),
		ForecastErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_errors_total",
			Help:      "Total requests skipped because no forecast could be built.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of requests per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-forecast-load cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		SimulationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_duration_seconds",
			Help:      "Duration of one scenario chain run including PET extension.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Weather service requests by source and outcome.",
		}, []string{"source", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Weather service request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_cache_total",
			Help:      "Weather input cache lookups by result.",
		}, []string{"result"}),
		HTTPForecasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_forecasts_total",
			Help:      "Synchronous forecast requests by response status code.",
		}, []string{"code"}),
	}

	prometheus.MustRegister(
		m.MessagesConsumed,
		m.MessagesProduced,
		m.ForecastErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.SimulationDuration,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.WeatherCache,
		m.HTTPForecasts,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		MessagesConsumed:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "messages_consumed_total"}),
		MessagesProduced:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "messages_produced_total"}),
		ForecastErrors:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "forecast_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "batch_processing_duration_seconds"}),
		SimulationDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "simulation_duration_seconds"}),
		UpstreamRequests:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "upstream_requests_total"}, []string{"source", "outcome"}),
		UpstreamDuration:        prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "upstream_duration_seconds"}, []string{"source"}),
		WeatherCache:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "weather_cache_total"}, []string{"result"}),
		HTTPForecasts:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "http_forecasts_total"}, []string{"code"}),
	}
}
