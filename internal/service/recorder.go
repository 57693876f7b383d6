package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/techno-flashi/techno-flashi-sub000/internal/domain"
	"github.com/techno-flashi/techno-flashi-sub000/internal/logger"
	"github.com/techno-flashi/techno-flashi-sub000/internal/metrics"
	"github.com/techno-flashi/techno-flashi-sub000/pkg/detector"
)

// EventWriter persists one event and bumps the owning ad's counter in the
// same store operation.
type EventWriter interface {
	RecordEvent(ctx context.Context, event *domain.PerformanceEvent) (int64, error)
}

type RecorderConfig struct {
	QueueSize    int
	Workers      int
	WriteTimeout time.Duration
}

// PerformanceRecorder writes events off the request path. Record never
// blocks: when the queue is full, or the store write fails, the event is
// logged and dropped. Nothing is retried.
type PerformanceRecorder struct {
	writer  EventWriter
	metrics *metrics.Metrics
	cfg     RecorderConfig
	log     *slog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan *domain.PerformanceEvent
	wg     sync.WaitGroup
}

func NewPerformanceRecorder(writer EventWriter, m *metrics.Metrics, cfg RecorderConfig) *PerformanceRecorder {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	r := &PerformanceRecorder{
		writer:  writer,
		metrics: m,
		cfg:     cfg,
		log:     logger.Component("recorder"),
		queue:   make(chan *domain.PerformanceEvent, cfg.QueueSize),
	}

	for i := 0; i < cfg.Workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}

	return r
}

// Record enqueues one event and reports whether it was accepted.
func (r *PerformanceRecorder) Record(adID uuid.UUID, eventType domain.EventType, meta domain.EventMeta) bool {
	client := detector.Classify(meta.UserAgent)

	event := &domain.PerformanceEvent{
		AdID:       adID,
		EventType:  eventType,
		PageURL:    meta.PageURL,
		Referrer:   meta.Referrer,
		UserAgent:  meta.UserAgent,
		DeviceType: client.DeviceType,
		Browser:    client.Browser,
		OS:         client.OS,
		Country:    meta.Country,
		City:       meta.City,
		Revenue:    meta.Revenue,
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.drop(event, "closed")
		return false
	}

	select {
	case r.queue <- event:
		r.metrics.RecorderQueue.Set(float64(len(r.queue)))
		return true
	default:
		r.drop(event, "queue_full")
		return false
	}
}

func (r *PerformanceRecorder) drop(event *domain.PerformanceEvent, reason string) {
	r.metrics.EventsDropped.WithLabelValues(reason).Inc()
	r.log.Warn("Dropping ad event",
		slog.String("ad_id", event.AdID.String()),
		slog.String("event_type", string(event.EventType)),
		slog.String("reason", reason),
	)
}

func (r *PerformanceRecorder) worker() {
	defer r.wg.Done()

	for event := range r.queue {
		r.metrics.RecorderQueue.Set(float64(len(r.queue)))
		r.write(event)
	}
}

func (r *PerformanceRecorder) write(event *domain.PerformanceEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.WriteTimeout)
	defer cancel()

	count, err := r.writer.RecordEvent(ctx, event)
	if err != nil {
		r.metrics.EventsDropped.WithLabelValues("store_error").Inc()
		r.log.Error("Failed to record ad event",
			slog.String("ad_id", event.AdID.String()),
			slog.String("event_type", string(event.EventType)),
			slog.String("error", err.Error()),
		)
		return
	}

	r.metrics.EventsRecorded.WithLabelValues(string(event.EventType)).Inc()
	r.log.Debug("Ad event recorded",
		slog.String("ad_id", event.AdID.String()),
		slog.String("event_type", string(event.EventType)),
		slog.Int64("counter", count),
	)
}

// Close stops accepting events and waits for queued ones to be written, or
// for ctx to end.
func (r *PerformanceRecorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
