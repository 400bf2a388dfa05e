package sink

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/traceloom/traceloom/pkg/errors"
	"github.com/traceloom/traceloom/pkg/event"
)

// Event kinds stored in the Redis stream.
const (
	KindSpan       = "span"
	KindBreadcrumb = "breadcrumb"
	KindError      = "error"
)

// DefaultStream is the stream key used when none is configured.
const DefaultStream = "traceloom:events"

// defaultStreamMaxLen caps the stream so an unattended producer cannot
// grow Redis without bound. Trimming is approximate (XADD MAXLEN ~).
const defaultStreamMaxLen = 10_000

// RedisSink appends events to a Redis stream. Consumers (such as the
// watch command) tail the stream with [RedisSink.Tail].
type RedisSink struct {
	client *redis.Client
	stream string
	maxLen int64
}

// RedisConfig configures a RedisSink.
type RedisConfig struct {
	Addr     string // host:port, e.g. "localhost:6379"
	Password string // optional
	DB       int    // redis database number
	Stream   string // stream key; DefaultStream if empty
	MaxLen   int64  // approximate stream cap; defaultStreamMaxLen if 0
}

// NewRedisSink connects to Redis and verifies the connection with a
// ping before returning the sink.
func NewRedisSink(ctx context.Context, cfg RedisConfig) (*RedisSink, error) {
	if cfg.Stream == "" {
		cfg.Stream = DefaultStream
	}
	if cfg.MaxLen <= 0 {
		cfg.MaxLen = defaultStreamMaxLen
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(errors.ErrCodeSinkUnavailable, err, "redis at %s unreachable", cfg.Addr)
	}

	return &RedisSink{client: client, stream: cfg.Stream, maxLen: cfg.MaxLen}, nil
}

// Stream returns the stream key events are appended to.
func (r *RedisSink) Stream() string { return r.stream }

// EmitSpan appends the span to the stream.
func (r *RedisSink) EmitSpan(ctx context.Context, s event.Span) error {
	return r.add(ctx, KindSpan, s)
}

// EmitBreadcrumb appends the breadcrumb to the stream.
func (r *RedisSink) EmitBreadcrumb(ctx context.Context, b event.Breadcrumb) error {
	return r.add(ctx, KindBreadcrumb, b)
}

// EmitError appends the error event to the stream.
func (r *RedisSink) EmitError(ctx context.Context, e event.ErrorEvent) error {
	return r.add(ctx, KindError, e)
}

// Close closes the underlying Redis client.
func (r *RedisSink) Close() error { return r.client.Close() }

func (r *RedisSink) add(ctx context.Context, kind string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s event", kind)
	}
	return r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: r.maxLen,
		Approx: true,
		Values: map[string]any{"kind": kind, "data": data},
	}).Err()
}

// StreamEvent is one entry read back from the Redis stream.
type StreamEvent struct {
	ID   string // redis stream entry ID
	Kind string // KindSpan, KindBreadcrumb, or KindError
	Data []byte // JSON-encoded event payload
}

// Tail reads entries appended after lastID, blocking up to block.
// Use "$" as lastID to start at the stream tip. It returns the entries
// read and the ID to resume from; on a block timeout it returns no
// entries, the unchanged lastID, and a nil error.
func (r *RedisSink) Tail(ctx context.Context, lastID string, block time.Duration) ([]StreamEvent, string, error) {
	res, err := r.client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{r.stream, lastID},
		Count:   100,
		Block:   block,
	}).Result()
	if err == redis.Nil {
		return nil, lastID, nil
	}
	if err != nil {
		return nil, lastID, err
	}

	var out []StreamEvent
	for _, stream := range res {
		for _, msg := range stream.Messages {
			ev := StreamEvent{ID: msg.ID}
			if kind, ok := msg.Values["kind"].(string); ok {
				ev.Kind = kind
			}
			if data, ok := msg.Values["data"].(string); ok {
				ev.Data = []byte(data)
			}
			out = append(out, ev)
			lastID = msg.ID
		}
	}
	return out, lastID, nil
}

// Ensure RedisSink implements Sink.
var _ Sink = (*RedisSink)(nil)
