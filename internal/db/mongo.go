package db

import (
	"context"
	"time"

	"expertbook-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Collections struct {
	Events *mongo.Collection
}

func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *Collections, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, err
	}

	db := client.Database(dbName)

	cols := &Collections{
		Events: db.Collection("events"),
	}

	return client, cols, nil
}

func EnsureIndexes(ctx context.Context, cols *Collections) error {
	indexTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := cols.Events.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "event", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	})
	return err
}

// EventArchive mirrors tracked events into Mongo for offline analysis. The
// in-memory log stays the source for funnel metrics.
type EventArchive struct {
	col *mongo.Collection
}

func NewEventArchive(col *mongo.Collection) *EventArchive {
	return &EventArchive{col: col}
}

func (a *EventArchive) Name() string {
	return "mongo-archive"
}

func (a *EventArchive) Deliver(ctx context.Context, e models.Event) error {
	opts := options.Update().SetUpsert(true)
	_, err := a.col.UpdateOne(ctx, bson.M{"_id": e.ID}, bson.M{"$setOnInsert": e}, opts)
	return err
}
