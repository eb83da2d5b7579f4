package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SleepTheGod/Cryptozoo/internal/domain/models"
)

// JournalRepository appends game events to a MongoDB collection.
type JournalRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewJournalRepository connects to MongoDB and verifies the connection.
func NewJournalRepository(ctx context.Context, uri string, dbName string) (*JournalRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &JournalRepository{
		client:   client,
		dbName:   dbName,
		collName: "zoo_events",
	}, nil
}

// Record inserts one journal event.
func (r *JournalRepository) Record(ctx context.Context, event models.JournalEvent) error {
	collection := r.client.Database(r.dbName).Collection(r.collName)
	if _, err := collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to insert journal event: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *JournalRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
