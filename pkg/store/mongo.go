package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/repolens/repolens/pkg/errors"
	"github.com/repolens/repolens/pkg/profile"
)

const scansCollection = "scans"

// MongoStore persists scan records in a MongoDB collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to MongoDB at uri and uses the given database.
// The connection is verified with a ping before the store is returned.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to connect to MongoDB")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "MongoDB is unreachable")
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(scansCollection),
	}, nil
}

// Save persists a profile under a fresh UUID.
func (s *MongoStore) Save(ctx context.Context, p *profile.RepositoryProfile) (*ScanRecord, error) {
	record := ScanRecord{
		ID:        uuid.NewString(),
		Root:      p.Root,
		CreatedAt: time.Now().UTC(),
		Profile:   *p,
	}
	if _, err := s.collection.InsertOne(ctx, record); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to store scan")
	}
	return &record, nil
}

// Get returns the record with the given ID.
func (s *MongoStore) Get(ctx context.Context, id string) (*ScanRecord, error) {
	var record ScanRecord
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeProfileNotFound, "scan not found: %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to load scan")
	}
	return &record, nil
}

// List returns up to limit records, newest first.
func (s *MongoStore) List(ctx context.Context, limit int) ([]ScanRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to list scans")
	}
	defer cursor.Close(ctx)

	var out []ScanRecord
	if err := cursor.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to decode scans")
	}
	return out, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
