package sink

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/traceloom/traceloom/pkg/errors"
	"github.com/traceloom/traceloom/pkg/event"
)

// Collection names used by MongoStore.
const (
	collSpans       = "spans"
	collBreadcrumbs = "breadcrumbs"
	collErrors      = "errors"
)

// DefaultDatabase is the database name used when none is configured.
const DefaultDatabase = "traceloom"

// MongoStore persists events to MongoDB and serves the queries behind
// the report command and the HTTP API. Unlike the stream-oriented
// RedisSink, the store is the durable record of reported events.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI      string // e.g. "mongodb://localhost:27017"
	Database string // DefaultDatabase if empty
}

// NewMongoStore connects to MongoDB and verifies the connection with a
// ping before returning the store.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSinkUnavailable, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeSinkUnavailable, err, "mongodb at %s unreachable", cfg.URI)
	}

	return &MongoStore{client: client, db: client.Database(cfg.Database)}, nil
}

// EmitSpan inserts the span into the spans collection.
func (m *MongoStore) EmitSpan(ctx context.Context, s event.Span) error {
	_, err := m.db.Collection(collSpans).InsertOne(ctx, s)
	return err
}

// EmitBreadcrumb inserts the breadcrumb into the breadcrumbs collection.
func (m *MongoStore) EmitBreadcrumb(ctx context.Context, b event.Breadcrumb) error {
	_, err := m.db.Collection(collBreadcrumbs).InsertOne(ctx, b)
	return err
}

// EmitError inserts the error event into the errors collection.
func (m *MongoStore) EmitError(ctx context.Context, e event.ErrorEvent) error {
	_, err := m.db.Collection(collErrors).InsertOne(ctx, e)
	return err
}

// Close disconnects from MongoDB.
func (m *MongoStore) Close() error {
	return m.client.Disconnect(context.Background())
}

// RecentErrors returns up to limit error events, newest first.
func (m *MongoStore) RecentErrors(ctx context.Context, limit int) ([]event.ErrorEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "time", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := m.db.Collection(collErrors).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	var out []event.ErrorEvent
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RecentSpans returns up to limit spans, newest first.
func (m *MongoStore) RecentSpans(ctx context.Context, limit int) ([]event.Span, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "start", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := m.db.Collection(collSpans).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	var out []event.Span
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TraceSpans returns all spans of one trace in start order.
// Returns ErrCodeTraceNotFound if the trace has no spans.
func (m *MongoStore) TraceSpans(ctx context.Context, traceID string) ([]event.Span, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cur, err := m.db.Collection(collSpans).Find(ctx, bson.D{{Key: "trace_id", Value: traceID}}, opts)
	if err != nil {
		return nil, err
	}
	var out []event.Span
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeTraceNotFound, "no spans for trace %q", traceID)
	}
	return out, nil
}

// Ensure MongoStore implements Sink.
var _ Sink = (*MongoStore)(nil)
