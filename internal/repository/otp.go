package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/kittipos/expense-tracker-api/internal/model"
)

// OTPRepository defines the interface for one-time-code database operations.
// The collection holds at most one record per email.
type OTPRepository interface {
	// UpsertCode creates the code record for the email, or replaces the
	// existing one (new code and expiry win).
	UpsertCode(ctx context.Context, code *model.OTPCode) (*model.OTPCode, error)

	// GetCodeByEmail retrieves the active record for the email.
	GetCodeByEmail(ctx context.Context, email string) (*model.OTPCode, error)

	// DeleteCodeByEmail removes the record for the email. Deleting a missing
	// record is not an error.
	DeleteCodeByEmail(ctx context.Context, email string) error
}

const otpCollection = "otp_codes"

type otpMongoRepository struct {
	db *mongo.Database
}

// NewOTPMongoRepository creates a new MongoDB repository for one-time codes.
func NewOTPMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) OTPRepository {
	collection := db.Collection(otpCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create otp code indexes")
	}

	return &otpMongoRepository{db: db}
}

func (r *otpMongoRepository) UpsertCode(ctx context.Context, code *model.OTPCode) (*model.OTPCode, error) {
	now := time.Now()

	filter := bson.M{"email": code.Email}
	update := bson.M{
		"$set": bson.M{
			"code":       code.Code,
			"expires_at": code.ExpiresAt,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"email":      code.Email,
			"created_at": now,
		},
	}

	result := r.db.Collection(otpCollection).FindOneAndUpdate(
		ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var stored model.OTPCode
	if err := result.Decode(&stored); err != nil {
		return nil, err
	}

	return &stored, nil
}

func (r *otpMongoRepository) GetCodeByEmail(ctx context.Context, email string) (*model.OTPCode, error) {
	result := r.db.Collection(otpCollection).FindOne(ctx, bson.M{"email": email})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var code model.OTPCode
	if err := result.Decode(&code); err != nil {
		return nil, err
	}

	return &code, nil
}

func (r *otpMongoRepository) DeleteCodeByEmail(ctx context.Context, email string) error {
	_, err := r.db.Collection(otpCollection).DeleteOne(ctx, bson.M{"email": email})
	return err
}
