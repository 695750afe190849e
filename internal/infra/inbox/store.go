package inbox

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrAlreadyRecorded is returned by Record when another delivery recorded the
// event first.
var ErrAlreadyRecorded = errors.New("inbox: event already recorded")

// MongoStore records processed event ids per consumer. Called with a session
// context, the record commits or aborts together with the caller's writes.
type MongoStore struct {
	col      *mongo.Collection
	consumer string
	now      func() time.Time
}

func NewMongoStore(ctx context.Context, db *mongo.Database, consumer string) (*MongoStore, error) {
	col := db.Collection("inbox")
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "consumer", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}
	return &MongoStore{col: col, consumer: consumer, now: time.Now}, nil
}

// Seen reports whether eventID was recorded. It only reads, so a hit leaves
// the caller's transaction healthy.
func (s *MongoStore) Seen(ctx context.Context, eventID string) (bool, error) {
	err := s.col.FindOne(ctx, bson.M{"event_id": eventID, "consumer": s.consumer}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Record stores eventID once the caller's work succeeded.
func (s *MongoStore) Record(ctx context.Context, eventID string) error {
	doc := bson.M{"event_id": eventID, "consumer": s.consumer, "received_at": s.now().UTC()}
	_, err := s.col.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrAlreadyRecorded
	}
	return err
}

// MemoryStore is the in-process inbox used with the memory storage mode.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

func (s *MemoryStore) Seen(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[eventID]
	return ok, nil
}

func (s *MemoryStore) Record(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[eventID]; ok {
		return ErrAlreadyRecorded
	}
	s.seen[eventID] = struct{}{}
	return nil
}

// Forget drops eventID so a failed delivery can be processed again.
func (s *MemoryStore) Forget(_ context.Context, eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, eventID)
}
