package creditRepo

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// UserCredits is a user's credit balance document.
type UserCredits struct {
	UserID               string    `bson:"userId" json:"userId"`
	Balance              int       `bson:"balance" json:"balance"`
	CreditsUsedThisMonth int       `bson:"creditsUsedThisMonth" json:"creditsUsedThisMonth"`
	UpdatedAt            time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CreditTransaction is one entry of the credit history.
type CreditTransaction struct {
	ID        string    `bson:"id" json:"id"`
	UserID    string    `bson:"userId" json:"userId"`
	Amount    int       `bson:"amount" json:"amount"`
	Reason    string    `bson:"reason" json:"reason"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// MongoCreditRepo implements booking.CreditLedger. Deductions are single conditional
// updates, so concurrent bookings by one user can never overdraw the balance.
type MongoCreditRepo struct {
	balances     *mongo.Collection
	transactions *mongo.Collection
	logger       *zap.Logger
}

func NewMongoCreditRepo(db *mongo.Database, logger *zap.Logger) *MongoCreditRepo {
	return &MongoCreditRepo{
		balances:     db.Collection("user_credits"),
		transactions: db.Collection("credit_transactions"),
		logger:       logger,
	}
}
