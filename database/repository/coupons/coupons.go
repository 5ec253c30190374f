package couponRepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hobbyist/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCouponRepo implements booking.CouponCatalog over the "coupons" collection.
type MongoCouponRepo struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoCouponRepo(db *mongo.Database) *MongoCouponRepo {
	return &MongoCouponRepo{coll: db.Collection("coupons"), now: time.Now}
}

func (r *MongoCouponRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create coupon indexes: %w", err)
	}
	return nil
}

// Validate looks up an active coupon by code. Codes are matched case-insensitively.
// Unknown, inactive and expired codes all yield a nil coupon.
func (r *MongoCouponRepo) Validate(ctx context.Context, code string) (*models.CouponCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil
	}

	var coupon models.CouponCode
	err := r.coll.FindOne(ctx, bson.M{"code": code, "active": true}).Decode(&coupon)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}
	if coupon.ExpiresAt != nil && !coupon.ExpiresAt.After(r.now()) {
		return nil, nil
	}
	if coupon.Percentage < 0 || coupon.Percentage > 100 {
		return nil, nil
	}
	return &coupon, nil
}
