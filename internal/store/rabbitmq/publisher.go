package rabbitmq

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/beelyapp/beely/internal/common"
	amqp "github.com/rabbitmq/amqp091-go"
)

// HeaderAttempt counts deliveries of a probe job across retries.
const HeaderAttempt = "x-attempt"

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	conn  *amqp.Connection
	mu    sync.Mutex // amqp channels are not safe for concurrent publishing
	ch    Channel
	queue string
}

// ProbeMessage asks the worker to re-check one video URL.
type ProbeMessage struct {
	JobID   string `json:"job_id"`
	VideoID uint64 `json:"video_id"`
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := Declare(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

// NewPublisherWithChannel publishes on an already declared channel.
func NewPublisherWithChannel(ch Channel, queue string) *Publisher {
	return &Publisher{ch: ch, queue: queue}
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// PublishVideoProbe enqueues a probe of videoID and returns the job id.
func (p *Publisher) PublishVideoProbe(ctx context.Context, videoID uint64) (string, error) {
	jobID, err := common.NewULID()
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(ProbeMessage{JobID: jobID, VideoID: videoID})
	if err != nil {
		return "", err
	}
	return jobID, p.publish(ctx, p.queue, body, 1, "")
}

// Retry parks body on the retry queue; after delay it dead-letters back to
// the main queue. attempt is written to the header as given, so the caller
// passes the number of the next delivery.
func (p *Publisher) Retry(ctx context.Context, body []byte, attempt int, delay time.Duration) error {
	return p.publish(ctx, RetryQueue(p.queue), body, attempt, strconv.FormatInt(delay.Milliseconds(), 10))
}

func (p *Publisher) publish(ctx context.Context, queue string, body []byte, attempt int, expiration string) error {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(cctx,
		"",    // default exchange
		queue, // routing key = queue
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
			Expiration:   expiration,
			Headers:      amqp.Table{HeaderAttempt: int32(attempt)},
		},
	)
}

// Attempt reads the attempt header of a delivery, defaulting to 1.
func Attempt(d amqp.Delivery) int {
	switch v := d.Headers[HeaderAttempt].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 1
}
