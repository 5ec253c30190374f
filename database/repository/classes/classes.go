package classRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hobbyist/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoClassRepo implements booking.ClassCatalog over the "classes" and "time_slots" collections.
type MongoClassRepo struct {
	classes *mongo.Collection
	slots   *mongo.Collection
}

func NewMongoClassRepo(db *mongo.Database) *MongoClassRepo {
	return &MongoClassRepo{
		classes: db.Collection("classes"),
		slots:   db.Collection("time_slots"),
	}
}

func (r *MongoClassRepo) EnsureIndexes(ctx context.Context) error {
	if _, err := r.classes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create class indexes: %w", err)
	}
	slotIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "classId", Value: 1}, {Key: "date", Value: 1}}},
	}
	if _, err := r.slots.Indexes().CreateMany(ctx, slotIndexes); err != nil {
		return fmt.Errorf("failed to create time slot indexes: %w", err)
	}
	return nil
}

// GetClass returns nil, nil when the class does not exist.
func (r *MongoClassRepo) GetClass(ctx context.Context, classID string) (*models.ClassItem, error) {
	var class models.ClassItem
	err := r.classes.FindOne(ctx, bson.M{"id": classID}).Decode(&class)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch class %s: %w", classID, err)
	}
	return &class, nil
}

// GetTimeSlot returns nil, nil when the slot does not exist or belongs to another class.
func (r *MongoClassRepo) GetTimeSlot(ctx context.Context, classID, slotID string) (*models.TimeSlot, error) {
	var slot models.TimeSlot
	err := r.slots.FindOne(ctx, bson.M{"id": slotID, "classId": classID}).Decode(&slot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch time slot %s: %w", slotID, err)
	}
	return &slot, nil
}

// ListTimeSlots returns the class's slots on the calendar day of date (UTC), earliest first.
func (r *MongoClassRepo) ListTimeSlots(ctx context.Context, classID string, date time.Time) ([]models.TimeSlot, error) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	filter := bson.M{
		"classId": classID,
		"date":    bson.M{"$gte": start, "$lt": end},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.slots.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list time slots: %w", err)
	}
	defer cursor.Close(ctx)

	slots := []models.TimeSlot{}
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode time slots: %w", err)
	}
	return slots, nil
}
