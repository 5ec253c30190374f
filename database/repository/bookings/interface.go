package bookingRepo

import (
	"context"
	"errors"

	"hobbyist/models"
	"hobbyist/services/booking"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// maxCodeAttempts bounds how often a colliding confirmation code is regenerated.
const maxCodeAttempts = 5

var ErrConfirmationCodesExhausted = errors.New("could not allocate a unique confirmation code")

type BookingRepository interface {
	booking.BookingStore
	GetByConfirmationCode(ctx context.Context, code string) (*models.BookingRecord, error)
	EnsureIndexes(ctx context.Context) error
}

type MongoBookingRepo struct {
	coll     *mongo.Collection
	codes    booking.ConfirmationCodeGenerator
	validate *validator.Validate
	logger   *zap.Logger
}

// NewMongoBookingRepo returns a BookingRepository backed by the "bookings" collection.
func NewMongoBookingRepo(db *mongo.Database, codes booking.ConfirmationCodeGenerator, logger *zap.Logger) *MongoBookingRepo {
	return &MongoBookingRepo{
		coll:     db.Collection("bookings"),
		codes:    codes,
		validate: validator.New(),
		logger:   logger,
	}
}
