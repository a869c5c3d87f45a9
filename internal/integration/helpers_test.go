//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/water-deficit-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node KRaft broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("water-deficit-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// stubSource serves fixed weather for a ten-day season ending 10 March 2024.
type stubSource struct{}

func (stubSource) FetchWeather(_ context.Context, _ domain.Location, season domain.Season) (domain.WeatherInputs, error) {
	start := season.Start
	return domain.WeatherInputs{
		ObservedPrecip: domain.OptionalFromRaw(days(start, 10), []float64{0.2, 0, 0, 0.5, 0, 0, 0.1, 0, domain.MissingValue, domain.MissingValue}),
		QPF:            domain.DailySeries{Dates: days(start.AddDate(0, 0, 8), 3), Values: []float64{0.1, 0.3, 0}},
		Outlook: domain.Outlook{
			Dates: days(start.AddDate(0, 0, 11), 10),
			Percentiles: map[int][]float64{
				10: repeat(10, 0),
				50: repeat(10, 0.06),
				90: repeat(10, 0.25),
			},
		},
		PETObserved: domain.OptionalFromRaw(days(start, 10), repeat(10, 0.05)),
		PETForecast: domain.OptionalFromRaw(days(start.AddDate(0, 0, 10), 5), repeat(5, 0.07)),
	}, nil
}

func days(start time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

func repeat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
