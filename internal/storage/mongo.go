package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps one document per history entry.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	limit  int

	mu      sync.Mutex
	lastSeq int64
}

// OpenMongo connects to uri and prepares the collection index.
func OpenMongo(ctx context.Context, uri, database, collection string, limit int) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	coll := client.Database(database).Collection(collection)
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "seq", Value: 1}},
	}); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("create history index: %w", err)
	}

	return &MongoStore{client: client, coll: coll, limit: normalizeLimit(limit)}, nil
}

type mongoEntry struct {
	Seq   int64 `bson:"seq"`
	Entry `bson:",inline"`
}

// Append implements Store. Entries are ordered by a nanosecond sequence
// number; anything past the limit is deleted.
func (s *MongoStore) Append(ctx context.Context, e Entry) error {
	doc := mongoEntry{Seq: s.nextSeq(), Entry: e}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}

	// find the seq of the oldest entry that is still kept
	opts := options.FindOne().
		SetSort(bson.D{{Key: "seq", Value: -1}}).
		SetSkip(int64(s.limit - 1)).
		SetProjection(bson.M{"seq": 1})
	var boundary mongoEntry
	err := s.coll.FindOne(ctx, bson.M{}, opts).Decode(&boundary)
	if err == mongo.ErrNoDocuments {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find history boundary: %w", err)
	}
	if _, err := s.coll.DeleteMany(ctx, bson.M{"seq": bson.M{"$lt": boundary.Seq}}); err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	return nil
}

// nextSeq is the current time in nanoseconds, bumped past the previous value
// so entries appended within one clock tick keep their order.
func (s *MongoStore) nextSeq() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := time.Now().UnixNano()
	if seq <= s.lastSeq {
		seq = s.lastSeq + 1
	}
	s.lastSeq = seq
	return seq
}

// List implements Store.
func (s *MongoStore) List(ctx context.Context) ([]Entry, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoEntry
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	out := make([]Entry, len(docs))
	for i, d := range docs {
		out[i] = d.Entry
	}
	return Cap(out, s.limit), nil
}

// Clear implements Store.
func (s *MongoStore) Clear(ctx context.Context) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
