package records

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/robdd/pkg/errors"
	"github.com/matzehuels/robdd/pkg/experiment"
)

// Defaults for MongoConfig.
const (
	DefaultMongoDatabase   = "robdd"
	DefaultMongoCollection = "experiments"
	defaultMongoTimeout    = 5 * time.Second
)

// MongoConfig configures a MongoSink.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// MongoSink inserts records into a MongoDB collection.
type MongoSink struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// document is the stored shape of a record.
type document struct {
	ID           string    `bson:"_id"`
	Vars         int       `bson:"vars"`
	Samples      int       `bson:"samples"`
	Diagrams     int       `bson:"diagrams"`
	Exhaustive   bool      `bson:"exhaustive"`
	UniqueSizes  int       `bson:"unique_sizes"`
	TotalSeconds float64   `bson:"total_seconds"`
	PerDiagram   float64   `bson:"per_diagram_seconds"`
	Seed         int64     `bson:"seed"`
	StartedAt    time.Time `bson:"started_at"`
}

func toDocument(r experiment.Record) document {
	return document{
		ID:           r.ID.String(),
		Vars:         r.Vars,
		Samples:      r.Samples,
		Diagrams:     r.Diagrams,
		Exhaustive:   r.Exhaustive,
		UniqueSizes:  r.UniqueSizes,
		TotalSeconds: r.Total.Seconds(),
		PerDiagram:   r.PerDiagram.Seconds(),
		Seed:         int64(r.Seed), // BSON has no unsigned integers
		StartedAt:    r.StartedAt.UTC(),
	}
}

// NewMongoSink connects to MongoDB and checks the connection.
func NewMongoSink(ctx context.Context, cfg MongoConfig) (*MongoSink, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultMongoTimeout
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.Timeout).
		SetConnectTimeout(cfg.Timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoSink{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Write inserts r, retrying network failures. The document id is the record
// id, so a retried insert that already reached the server fails as a
// duplicate instead of storing the record twice.
func (s *MongoSink) Write(ctx context.Context, r experiment.Record) error {
	doc := toDocument(r)
	err := retry(ctx, writeAttempts, writeDelay, transientMongo, func() error {
		_, err := s.coll.InsertOne(ctx, doc)
		return err
	})
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (s *MongoSink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultMongoTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Sink = (*MongoSink)(nil)
