package main

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/beelyapp/beely/internal/feed"
	"github.com/beelyapp/beely/internal/store/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	maxAttempts = 3
	baseBackoff = 5 * time.Second
)

type videoProber interface {
	Probe(ctx context.Context, videoID uint64) (bool, error)
}

type retrier interface {
	Retry(ctx context.Context, body []byte, attempt int, delay time.Duration) error
}

type probeHandler struct {
	prober  videoProber
	retrier retrier
	log     *zap.Logger
}

// backoff doubles per attempt: 5s, 10s, 20s.
func backoff(attempt int) time.Duration {
	return baseBackoff << (attempt - 1)
}

// handle settles exactly one delivery. Bad payloads and exhausted jobs go to
// the DLQ; unknown videos are dropped.
func (h *probeHandler) handle(ctx context.Context, workerID int, d amqp.Delivery) {
	var m rabbitmq.ProbeMessage
	if err := json.Unmarshal(d.Body, &m); err != nil || m.VideoID == 0 {
		h.log.Warn("bad message", zap.Int("worker", workerID), zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	attempt := rabbitmq.Attempt(d)
	log := h.log.With(
		zap.Int("worker", workerID),
		zap.String("job_id", m.JobID),
		zap.Uint64("video_id", m.VideoID),
		zap.Int("attempt", attempt),
	)

	start := time.Now()
	active, err := h.prober.Probe(ctx, m.VideoID)
	switch {
	case err == nil:
		log.Info("video probed", zap.Bool("active", active), zap.Duration("cost", time.Since(start)))
		h.ack(log, d)
	case errors.Is(err, feed.ErrVideoNotFound):
		log.Info("video gone, dropping job")
		h.ack(log, d)
	case attempt < maxAttempts && h.retrier != nil:
		delay := backoff(attempt)
		if rerr := h.retrier.Retry(ctx, d.Body, attempt+1, delay); rerr != nil {
			log.Error("schedule retry failed", zap.Error(rerr), zap.NamedError("probe_error", err))
			_ = d.Nack(false, false)
			return
		}
		log.Warn("probe failed, retry scheduled", zap.Duration("delay", delay), zap.Error(err))
		h.ack(log, d)
	default:
		log.Error("probe failed, dead-lettering", zap.Error(err))
		_ = d.Nack(false, false)
	}
}

func (h *probeHandler) ack(log *zap.Logger, d amqp.Delivery) {
	if err := d.Ack(false); err != nil {
		log.Warn("ack failed", zap.Error(err))
	}
}
