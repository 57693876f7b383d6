package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techno-flashi/techno-flashi-sub000/internal/domain"
	"github.com/techno-flashi/techno-flashi-sub000/internal/metrics"
)

// counterWriter mimics the store's atomic increment.
type counterWriter struct {
	mu     sync.Mutex
	views  map[uuid.UUID]int64
	clicks map[uuid.UUID]int64
	events []*domain.PerformanceEvent

	block chan struct{}
	err   error
}

func newCounterWriter() *counterWriter {
	return &counterWriter{
		views:  make(map[uuid.UUID]int64),
		clicks: make(map[uuid.UUID]int64),
	}
}

func (w *counterWriter) RecordEvent(ctx context.Context, event *domain.PerformanceEvent) (int64, error) {
	if w.block != nil {
		select {
		case <-w.block:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	if w.err != nil {
		return 0, w.err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.events = append(w.events, event)
	switch {
	case event.EventType.CountsAsView():
		w.views[event.AdID]++
		return w.views[event.AdID], nil
	case event.EventType.CountsAsClick():
		w.clicks[event.AdID]++
		return w.clicks[event.AdID], nil
	}
	return 0, nil
}

func (w *counterWriter) viewCount(id uuid.UUID) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.views[id]
}

func TestRecorder_ConcurrentImpressions(t *testing.T) {
	writer := newCounterWriter()
	r := NewPerformanceRecorder(writer, metrics.New(), RecorderConfig{QueueSize: 200, Workers: 8})

	adID := uuid.New()
	var accepted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Record(adID, domain.EventImpression, domain.EventMeta{PageURL: "/"}) {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	require.NoError(t, r.Close(context.Background()))
	assert.Equal(t, int64(100), accepted.Load())
	assert.Equal(t, int64(100), writer.viewCount(adID))
}

func TestRecorder_ClassifiesUserAgent(t *testing.T) {
	writer := newCounterWriter()
	r := NewPerformanceRecorder(writer, metrics.New(), RecorderConfig{Workers: 1})

	ua := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	require.True(t, r.Record(uuid.New(), domain.EventClick, domain.EventMeta{UserAgent: ua, Country: "SA"}))
	require.NoError(t, r.Close(context.Background()))

	require.Len(t, writer.events, 1)
	ev := writer.events[0]
	assert.Equal(t, "mobile", ev.DeviceType)
	assert.Equal(t, "SA", ev.Country)
	assert.Equal(t, domain.EventClick, ev.EventType)
}

func TestRecorder_DropsWhenQueueFull(t *testing.T) {
	writer := newCounterWriter()
	writer.block = make(chan struct{})
	m := metrics.New()
	r := NewPerformanceRecorder(writer, m, RecorderConfig{QueueSize: 1, Workers: 1})

	adID := uuid.New()

	// the single worker takes the first event and blocks on it
	require.True(t, r.Record(adID, domain.EventImpression, domain.EventMeta{}))
	require.Eventually(t, func() bool { return len(r.queue) == 0 }, time.Second, 5*time.Millisecond)

	assert.True(t, r.Record(adID, domain.EventImpression, domain.EventMeta{}))
	assert.False(t, r.Record(adID, domain.EventImpression, domain.EventMeta{}))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsDropped.WithLabelValues("queue_full")))

	close(writer.block)
	require.NoError(t, r.Close(context.Background()))
	assert.Equal(t, int64(2), writer.viewCount(adID))
}

func TestRecorder_StoreErrorIsCountedNotRetried(t *testing.T) {
	writer := newCounterWriter()
	writer.err = errors.New("db down")
	m := metrics.New()
	r := NewPerformanceRecorder(writer, m, RecorderConfig{Workers: 1})

	assert.True(t, r.Record(uuid.New(), domain.EventClick, domain.EventMeta{}))
	require.NoError(t, r.Close(context.Background()))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsDropped.WithLabelValues("store_error")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.EventsRecorded.WithLabelValues("click")))
}

func TestRecorder_RejectsAfterClose(t *testing.T) {
	r := NewPerformanceRecorder(newCounterWriter(), metrics.New(), RecorderConfig{})

	require.NoError(t, r.Close(context.Background()))
	require.NoError(t, r.Close(context.Background()))

	assert.False(t, r.Record(uuid.New(), domain.EventImpression, domain.EventMeta{}))
}

func TestRecorder_CloseHonoursContext(t *testing.T) {
	writer := newCounterWriter()
	writer.block = make(chan struct{})
	defer close(writer.block)

	r := NewPerformanceRecorder(writer, metrics.New(), RecorderConfig{Workers: 1, WriteTimeout: time.Minute})
	require.True(t, r.Record(uuid.New(), domain.EventImpression, domain.EventMeta{}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, r.Close(ctx), context.DeadlineExceeded)
}
