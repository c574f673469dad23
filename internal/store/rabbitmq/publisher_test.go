package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	key string
	msg amqp.Publishing
}

type recordingChannel struct {
	sent []published
}

func (c *recordingChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	c.sent = append(c.sent, published{key: key, msg: msg})
	return nil
}

func (c *recordingChannel) Close() error { return nil }

func TestQueueNames(t *testing.T) {
	assert.Equal(t, "video_probe.retry", RetryQueue("video_probe"))
	assert.Equal(t, "video_probe.dlq", DeadQueue("video_probe"))
}

func TestAttempt(t *testing.T) {
	assert.Equal(t, 1, Attempt(amqp.Delivery{}))
	assert.Equal(t, 3, Attempt(amqp.Delivery{Headers: amqp.Table{HeaderAttempt: int32(3)}}))
	assert.Equal(t, 2, Attempt(amqp.Delivery{Headers: amqp.Table{HeaderAttempt: int64(2)}}))
	assert.Equal(t, 1, Attempt(amqp.Delivery{Headers: amqp.Table{HeaderAttempt: "x"}}))
}

func TestPublishVideoProbe_FirstAttempt(t *testing.T) {
	ch := &recordingChannel{}
	p := NewPublisherWithChannel(ch, "video_probe")

	jobID, err := p.PublishVideoProbe(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, ch.sent, 1)

	got := ch.sent[0]
	assert.Equal(t, "video_probe", got.key)
	assert.Equal(t, int32(1), got.msg.Headers[HeaderAttempt])
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Empty(t, got.msg.Expiration)

	var m ProbeMessage
	require.NoError(t, json.Unmarshal(got.msg.Body, &m))
	assert.Equal(t, ProbeMessage{JobID: jobID, VideoID: 42}, m)
}

func TestRetry_WritesAttemptAsGiven(t *testing.T) {
	ch := &recordingChannel{}
	p := NewPublisherWithChannel(ch, "video_probe")

	require.NoError(t, p.Retry(context.Background(), []byte(`{"video_id":1}`), 2, 10*time.Second))
	require.Len(t, ch.sent, 1)

	got := ch.sent[0]
	assert.Equal(t, "video_probe.retry", got.key)
	assert.Equal(t, int32(2), got.msg.Headers[HeaderAttempt])
	assert.Equal(t, "10000", got.msg.Expiration)

	// the redelivered message reads back the same attempt
	assert.Equal(t, 2, Attempt(amqp.Delivery{Headers: got.msg.Headers}))
}
