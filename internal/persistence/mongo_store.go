package persistence

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSlot is a Slot backed by one MongoDB document per key.
type MongoSlot struct {
	coll *mongo.Collection
}

// Ensure it implements Slot.
var _ Slot = (*MongoSlot)(nil)

// NewMongoSlot creates a Mongo-backed slot.
// dbName defaults to "sessionflow" if empty, collName defaults to "slots".
func NewMongoSlot(client *mongo.Client, dbName, collName string) *MongoSlot {
	if dbName == "" {
		dbName = "sessionflow"
	}
	if collName == "" {
		collName = "slots"
	}

	return &MongoSlot{
		coll: client.Database(dbName).Collection(collName),
	}
}

type mongoSlotDoc struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (s *MongoSlot) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc mongoSlotDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSlotEmpty
		}
		return nil, err
	}
	return doc.Value, nil
}

func (s *MongoSlot) Set(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"value":      data,
			"updated_at": time.Now().UTC(),
		},
	}
	_, err := s.coll.UpdateByID(ctx, key, update, options.Update().SetUpsert(true))
	return err
}
