package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// OTPCode represents the single active password-reset code for an email.
// A new request replaces the previous record; a successful reset deletes it.
type OTPCode struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Email     string        `bson:"email"`
	Code      string        `bson:"code"`
	ExpiresAt time.Time     `bson:"expires_at"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}
