package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"event-reminder-app/internal/event"
	"event-reminder-app/internal/registration"
)

// MongoStorage implements the Storage interface using MongoDB
type MongoStorage struct {
	client                 *mongo.Client
	database               *mongo.Database
	eventCollection        *mongo.Collection
	registrationCollection *mongo.Collection
}

// NewMongoStorage creates a new MongoDB storage instance
func NewMongoStorage(connectionString, databaseName string) (*MongoStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Test the connection
	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	database := client.Database(databaseName)

	return &MongoStorage{
		client:                 client,
		database:               database,
		eventCollection:        database.Collection("events"),
		registrationCollection: database.Collection("registrations"),
	}, nil
}

// Close closes the MongoDB connection
func (ms *MongoStorage) Close(ctx context.Context) error {
	return ms.client.Disconnect(ctx)
}

// Event operations

func (ms *MongoStorage) CreateEvent(e *event.Event) error {
	ctx := context.Background()

	_, err := ms.eventCollection.InsertOne(ctx, e)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

func (ms *MongoStorage) GetEvent(id string) (*event.Event, error) {
	ctx := context.Background()

	filter := bson.M{"_id": id}

	var e event.Event
	err := ms.eventCollection.FindOne(ctx, filter).Decode(&e)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("event not found")
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return &e, nil
}

func (ms *MongoStorage) ListEvents() ([]*event.Event, error) {
	return ms.findEvents(bson.M{})
}

func (ms *MongoStorage) ListPublishedEvents() ([]*event.Event, error) {
	return ms.findEvents(bson.M{"status": event.StatusPublished})
}

func (ms *MongoStorage) findEvents(filter bson.M) ([]*event.Event, error) {
	ctx := context.Background()

	cursor, err := ms.eventCollection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*event.Event
	for cursor.Next(ctx) {
		var e event.Event
		if err := cursor.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		events = append(events, &e)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return events, nil
}

func (ms *MongoStorage) UpdateEvent(e *event.Event) error {
	ctx := context.Background()

	filter := bson.M{"_id": e.ID}

	result, err := ms.eventCollection.ReplaceOne(ctx, filter, e)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if result.MatchedCount == 0 {
		return errors.New("event not found")
	}

	return nil
}

func (ms *MongoStorage) DeleteEvent(id string) error {
	ctx := context.Background()

	filter := bson.M{"_id": id}

	result, err := ms.eventCollection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	if result.DeletedCount == 0 {
		return errors.New("event not found")
	}

	return nil
}

// AppendSentReminderKey uses $addToSet so re-recording an already-sent key is
// a no-op at the database level, even across concurrent scheduler ticks.
func (ms *MongoStorage) AppendSentReminderKey(eventID, key string) error {
	ctx := context.Background()

	filter := bson.M{"_id": eventID}
	update := bson.M{"$addToSet": bson.M{"reminders_sent": key}}

	result, err := ms.eventCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to record reminder key: %w", err)
	}
	if result.MatchedCount == 0 {
		return errors.New("event not found")
	}

	return nil
}

// Registration operations

func (ms *MongoStorage) CreateRegistration(r *registration.Registration) error {
	ctx := context.Background()

	_, err := ms.registrationCollection.InsertOne(ctx, r)
	if err != nil {
		return fmt.Errorf("failed to create registration: %w", err)
	}

	return nil
}

func (ms *MongoStorage) GetRegistration(id string) (*registration.Registration, error) {
	ctx := context.Background()

	filter := bson.M{"_id": id}

	var r registration.Registration
	err := ms.registrationCollection.FindOne(ctx, filter).Decode(&r)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("registration not found")
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}

	return &r, nil
}

func (ms *MongoStorage) FindRegistrations(eventID, status string) ([]*registration.Registration, error) {
	ctx := context.Background()

	filter := bson.M{"event_id": eventID, "status": status}

	cursor, err := ms.registrationCollection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer cursor.Close(ctx)

	var regs []*registration.Registration
	for cursor.Next(ctx) {
		var r registration.Registration
		if err := cursor.Decode(&r); err != nil {
			return nil, fmt.Errorf("failed to decode registration: %w", err)
		}
		regs = append(regs, &r)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return regs, nil
}

func (ms *MongoStorage) DeleteRegistration(id string) error {
	ctx := context.Background()

	filter := bson.M{"_id": id}

	result, err := ms.registrationCollection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}

	if result.DeletedCount == 0 {
		return errors.New("registration not found")
	}

	return nil
}
