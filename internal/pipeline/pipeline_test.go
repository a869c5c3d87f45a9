package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/water-deficit-service/internal/domain"
	"github.com/couchcryptid/water-deficit-service/internal/observability"
	"github.com/couchcryptid/water-deficit-service/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockExtractor struct {
	batches [][]domain.RawEvent
	index   atomic.Int64
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawEvent, error) {
	i := int(m.index.Add(1) - 1)
	if i >= len(m.batches) {
		// block until context cancelled to simulate waiting for messages
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.batches[i], nil
}

type mockTransformer struct {
	mu    sync.Mutex
	calls int
	// errs is consumed one per call; nil entries and calls past the end succeed.
	errs []error
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.DeficitForecast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= len(m.errs) && m.errs[m.calls-1] != nil {
		return domain.DeficitForecast{}, m.errs[m.calls-1]
	}
	return domain.DeficitForecast{ID: string(raw.Key)}, nil
}

type mockLoader struct {
	mu     sync.Mutex
	loaded []domain.DeficitForecast
	err    error
}

func (m *mockLoader) LoadBatch(_ context.Context, forecasts []domain.DeficitForecast) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, forecasts...)
	return nil
}

func runFor(t *testing.T, p *pipeline.Pipeline, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	require.NoError(t, p.Run(ctx))
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	ext := &mockExtractor{batches: [][]domain.RawEvent{{makeRawEvent(t, "req-1"), makeRawEvent(t, "req-2")}}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), metrics, 10)
	runFor(t, p, 300*time.Millisecond)

	require.Len(t, ldr.loaded, 2)
	assert.Equal(t, "req-1", ldr.loaded[0].ID)
	assert.Equal(t, "req-2", ldr.loaded[1].ID)
	require.NoError(t, p.CheckReadiness(context.Background()))
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.MessagesConsumed), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.MessagesProduced), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.PipelineRunning), 0)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ldr := &mockLoader{}
	p := pipeline.New(&mockExtractor{}, &mockTransformer{}, ldr, slog.Default(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.loaded)
	assert.Error(t, p.CheckReadiness(ctx))
}

func TestPipeline_Run_ForecastErrorSkipsAndCommits(t *testing.T) {
	var committed atomic.Int64
	raw := makeRawEvent(t, "req-bad")
	raw.Commit = func(context.Context) error {
		committed.Add(1)
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	tfm := &mockTransformer{errs: []error{fmt.Errorf("forecast: %w", domain.ErrMissingValue)}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(ext, tfm, ldr, slog.Default(), metrics, 10)
	runFor(t, p, 300*time.Millisecond)

	assert.Empty(t, ldr.loaded)
	assert.Equal(t, 1, tfm.calls, "non-upstream errors are not retried")
	assert.Equal(t, int64(1), committed.Load())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ForecastErrors), 0)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_RetriesUpstreamFailures(t *testing.T) {
	upstream := fmt.Errorf("%w: acis request: boom", domain.ErrUpstream)
	ext := &mockExtractor{batches: [][]domain.RawEvent{{makeRawEvent(t, "req-1")}}}
	tfm := &mockTransformer{errs: []error{upstream, upstream}}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, slog.Default(), observability.NewMetricsForTesting(), 10)
	runFor(t, p, 1500*time.Millisecond)

	assert.Equal(t, 3, tfm.calls)
	require.Len(t, ldr.loaded, 1)
	assert.Equal(t, "req-1", ldr.loaded[0].ID)
}

func TestPipeline_Run_GivesUpAfterUpstreamAttempts(t *testing.T) {
	upstream := fmt.Errorf("%w: pet request: boom", domain.ErrUpstream)
	ext := &mockExtractor{batches: [][]domain.RawEvent{{makeRawEvent(t, "req-1")}}}
	tfm := &mockTransformer{errs: []error{upstream, upstream, upstream}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(ext, tfm, ldr, slog.Default(), metrics, 10)
	runFor(t, p, 1500*time.Millisecond)

	assert.Equal(t, 3, tfm.calls)
	assert.Empty(t, ldr.loaded)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ForecastErrors), 0)
}

func TestPipeline_Run_CommitsAfterLoad(t *testing.T) {
	commitCalled := atomic.Bool{}
	raw := makeRawEvent(t, "req-5")
	raw.Topic = "deficit-requests"
	raw.Commit = func(context.Context) error {
		commitCalled.Store(true)
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	p := pipeline.New(ext, &mockTransformer{}, &mockLoader{}, slog.Default(), observability.NewMetricsForTesting(), 10)
	runFor(t, p, 300*time.Millisecond)

	assert.True(t, commitCalled.Load())
}

func TestPipeline_Run_LoadFailureDoesNotCommit(t *testing.T) {
	commitCalled := atomic.Bool{}
	raw := makeRawEvent(t, "req-6")
	raw.Commit = func(context.Context) error {
		commitCalled.Store(true)
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := &mockLoader{err: errors.New("broker unavailable")}
	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), observability.NewMetricsForTesting(), 10)
	runFor(t, p, 300*time.Millisecond)

	assert.False(t, commitCalled.Load())
	assert.Error(t, p.CheckReadiness(context.Background()))
}

// --- helpers ---

func makeRawEvent(t *testing.T, id string) domain.RawEvent {
	t.Helper()
	data, err := json.Marshal(domain.DeficitRequest{
		Lat:  42.45,
		Lon:  -76.48,
		Soil: domain.SoilMedium,
		Crop: domain.CropGrass,
	})
	require.NoError(t, err)
	return domain.RawEvent{
		Key:   []byte(id),
		Value: data,
	}
}
