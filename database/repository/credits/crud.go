package creditRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func (r *MongoCreditRepo) EnsureIndexes(ctx context.Context) error {
	if _, err := r.balances.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create credit indexes: %w", err)
	}
	if _, err := r.transactions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		return fmt.Errorf("failed to create credit transaction indexes: %w", err)
	}
	return nil
}

// AvailableCredits returns the user's balance; a user without a balance document has none.
func (r *MongoCreditRepo) AvailableCredits(ctx context.Context, userID string) (int, error) {
	var credits UserCredits
	err := r.balances.FindOne(ctx, bson.M{"userId": userID}).Decode(&credits)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read credits: %w", err)
	}
	return credits.Balance, nil
}

// UseCredits deducts amount from the balance if it covers it. It returns false,
// without error, when the balance is insufficient.
func (r *MongoCreditRepo) UseCredits(ctx context.Context, userID string, amount int, reason string) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	now := time.Now().UTC()
	filter := bson.M{
		"userId":  userID,
		"balance": bson.M{"$gte": amount},
	}
	update := bson.M{
		"$inc": bson.M{"balance": -amount, "creditsUsedThisMonth": amount},
		"$set": bson.M{"updatedAt": now},
	}
	res, err := r.balances.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to deduct credits: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, nil
	}

	entry := CreditTransaction{
		ID:        uuid.New().String(),
		UserID:    userID,
		Amount:    -amount,
		Reason:    reason,
		CreatedAt: now,
	}
	if _, err := r.transactions.InsertOne(ctx, entry); err != nil {
		// The balance already moved; a missing history line must not fail the booking.
		r.logger.Error("failed to record credit transaction",
			zap.String("userID", userID), zap.Int("amount", amount), zap.Error(err))
	}
	return true, nil
}
