package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Expense represents a single expense entry owned by a user.
type Expense struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID      bson.ObjectID `bson:"user_id"       json:"userId"`
	Title       string        `bson:"title"         json:"title"`
	Description string        `bson:"description"   json:"description,omitempty"`
	Amount      float64       `bson:"amount"        json:"amount"`
	Category    string        `bson:"category"      json:"category"`
	Date        time.Time     `bson:"date"          json:"date"`
	CreatedAt   time.Time     `bson:"created_at"    json:"-"`
	UpdatedAt   time.Time     `bson:"updated_at"    json:"-"`
}

// CategorySummary is one row of the per-category expense aggregation.
type CategorySummary struct {
	Category string  `bson:"_id"   json:"_id"`
	Total    float64 `bson:"total" json:"total"`
}
