package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hobbyist/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureIndexes creates the unique indexes the booking store relies on.
func (r *MongoBookingRepo) EnsureIndexes(ctx context.Context) error {
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "confirmationCode", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}

// CreateBooking validates and inserts a booking, assigning it a confirmation code.
// A code that collides with an existing booking is regenerated.
func (r *MongoBookingRepo) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.BookingRecord, error) {
	if err := r.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid booking request: %w", err)
	}

	now := time.Now().UTC()
	record := models.BookingRecord{
		BookingRequest:  req,
		ID:              uuid.New().String(),
		Status:          models.BookingStatusConfirmed,
		PaidWithCredits: req.CreditsUsed > 0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		record.ConfirmationCode = r.codes.Generate()
		_, err := r.coll.InsertOne(ctx, record)
		if err == nil {
			return &record, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("insert booking failed: %w", err)
		}
		r.logger.Warn("confirmation code collision, regenerating",
			zap.String("code", record.ConfirmationCode), zap.Int("attempt", attempt))
	}
	return nil, ErrConfirmationCodesExhausted
}

func (r *MongoBookingRepo) GetByConfirmationCode(ctx context.Context, code string) (*models.BookingRecord, error) {
	var record models.BookingRecord
	err := r.coll.FindOne(ctx, bson.M{"confirmationCode": code}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
