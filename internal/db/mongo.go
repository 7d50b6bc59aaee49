package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	entriesCollection = "fuel_entries"
	trucksCollection  = "trucks"
	usersCollection   = "users"
)

var errNilCollection = errors.New("mongo collection is nil")

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// NewMongoStore wires the collections of database dbName and ensures their indexes.
func NewMongoStore(ctx context.Context, client *mongo.Client, dbName string) (*Store, error) {
	database := client.Database(dbName)
	if err := EnsureIndexes(ctx, database); err != nil {
		return nil, err
	}
	return &Store{
		Entries: &MongoEntryCollection{Collection: database.Collection(entriesCollection)},
		Trucks:  &MongoTruckCollection{Collection: database.Collection(trucksCollection)},
		Users:   &MongoUserCollection{Collection: database.Collection(usersCollection)},
		close:   client.Disconnect,
	}, nil
}

// EnsureIndexes creates the indexes the queries below rely on.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection(entriesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date_time", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "is_ignored", Value: 1}, {Key: "date_time", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create entry indexes: %w", err)
	}
	_, err = database.Collection(trucksCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create truck indexes: %w", err)
	}
	_, err = database.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

// MongoEntryCollection wraps a MongoDB collection for fuel entry operations.
type MongoEntryCollection struct {
	Collection *mongo.Collection
}

// InsertEntry inserts an entry and returns its new ID.
func (c *MongoEntryCollection) InsertEntry(ctx context.Context, entry models.FuelEntry) (string, error) {
	if c.Collection == nil {
		return "", errNilCollection
	}
	now := time.Now().UTC()
	entry.ID = primitive.NewObjectID().Hex()
	entry.CreatedAt = now
	entry.LastEditedAt = now
	if _, err := c.Collection.InsertOne(ctx, entry); err != nil {
		return "", err
	}
	return entry.ID, nil
}

// FindEntries returns one page of the user's entries, newest first, and the total count.
func (c *MongoEntryCollection) FindEntries(ctx context.Context, userID string, page, limit int) ([]models.FuelEntry, int64, error) {
	if c.Collection == nil {
		return nil, 0, errNilCollection
	}
	filter := bson.M{"user_id": userID}
	total, err := c.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "date_time", Value: -1}}).
		SetSkip(pageOffset(page, limit)).
		SetLimit(int64(limit))
	entries, err := c.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// FindEntryByID finds one of the user's entries by its ID.
func (c *MongoEntryCollection) FindEntryByID(ctx context.Context, userID, id string) (*models.FuelEntry, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	var entry models.FuelEntry
	err := c.Collection.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// UpdateEntry replaces the mutable fields of an entry.
func (c *MongoEntryCollection) UpdateEntry(ctx context.Context, userID, id string, entry models.FuelEntry) error {
	if c.Collection == nil {
		return errNilCollection
	}
	update := bson.M{"$set": bson.M{
		"truck_number":     entry.TruckNumber,
		"date_time":        entry.DateTime,
		"odometer":         entry.Odometer,
		"city":             entry.City,
		"state":            entry.State,
		"fuel_type":        entry.FuelType,
		"custom_fuel_type": entry.CustomFuelType,
		"amount":           entry.Amount,
		"cost":             entry.Cost,
		"is_ignored":       entry.IsIgnored,
		"receipt_url":      entry.ReceiptURL,
		"last_edited_at":   time.Now().UTC(),
	}}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": id, "user_id": userID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetIgnored flips the ignore flag of an entry.
func (c *MongoEntryCollection) SetIgnored(ctx context.Context, userID, id string, ignored bool) error {
	if c.Collection == nil {
		return errNilCollection
	}
	result, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"is_ignored": ignored, "last_edited_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEntry deletes an entry by its ID.
func (c *MongoEntryCollection) DeleteEntry(ctx context.Context, userID, id string) error {
	if c.Collection == nil {
		return errNilCollection
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindReportableEntries queries non-ignored entries inside [start, end], oldest first.
func (c *MongoEntryCollection) FindReportableEntries(ctx context.Context, userID string, start, end time.Time) ([]models.FuelEntry, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	filter := bson.M{
		"user_id":    userID,
		"is_ignored": false,
		"date_time":  bson.M{"$gte": start, "$lte": end},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date_time", Value: 1}, {Key: "_id", Value: 1}})
	return c.find(ctx, filter, opts)
}

// FindEntriesSince queries entries at or after since, newest first.
func (c *MongoEntryCollection) FindEntriesSince(ctx context.Context, userID string, since time.Time) ([]models.FuelEntry, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	filter := bson.M{"user_id": userID, "date_time": bson.M{"$gte": since}}
	opts := options.Find().SetSort(bson.D{{Key: "date_time", Value: -1}})
	return c.find(ctx, filter, opts)
}

func (c *MongoEntryCollection) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.FuelEntry, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []models.FuelEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// MongoTruckCollection wraps a MongoDB collection for truck operations.
type MongoTruckCollection struct {
	Collection *mongo.Collection
}

// InsertTruck inserts a truck record and returns its new ID.
func (c *MongoTruckCollection) InsertTruck(ctx context.Context, truck models.Truck) (string, error) {
	if c.Collection == nil {
		return "", errNilCollection
	}
	truck.ID = primitive.NewObjectID().Hex()
	truck.CreatedAt = time.Now().UTC()
	if _, err := c.Collection.InsertOne(ctx, truck); err != nil {
		return "", err
	}
	return truck.ID, nil
}

// FindTrucks lists the user's trucks, newest first.
func (c *MongoTruckCollection) FindTrucks(ctx context.Context, userID string) ([]models.Truck, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	cursor, err := c.Collection.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	trucks := []models.Truck{}
	if err := cursor.All(ctx, &trucks); err != nil {
		return nil, err
	}
	return trucks, nil
}

// DeleteTruck deletes a truck by its ID.
func (c *MongoTruckCollection) DeleteTruck(ctx context.Context, userID, id string) error {
	if c.Collection == nil {
		return errNilCollection
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
