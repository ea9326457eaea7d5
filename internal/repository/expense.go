package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/kittipos/expense-tracker-api/internal/model"
)

// ExpenseRepository defines the interface for expense-related database
// operations. Every operation is scoped to the owning user.
type ExpenseRepository interface {
	CreateExpense(ctx context.Context, expense *model.Expense) (*model.Expense, error)
	ListExpensesByUser(ctx context.Context, userID bson.ObjectID) ([]*model.Expense, error)
	UpdateExpense(ctx context.Context, id, userID bson.ObjectID, params UpdateExpenseParams) (*model.Expense, error)
	DeleteExpense(ctx context.Context, id, userID bson.ObjectID) (*model.Expense, error)
	SummarizeByCategory(ctx context.Context, userID bson.ObjectID) ([]model.CategorySummary, error)
}

// UpdateExpenseParams defines the optional parameters for updating an
// expense. Only the fields that are not nil will be updated.
type UpdateExpenseParams struct {
	Title       *string
	Description *string
	Amount      *float64
	Category    *string
	Date        *time.Time
}

const expenseCollection = "expenses"

type expenseMongoRepository struct {
	db *mongo.Database
}

// NewExpenseMongoRepository creates a new MongoDB repository for expenses.
func NewExpenseMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) ExpenseRepository {
	collection := db.Collection(expenseCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create expense indexes")
	}

	return &expenseMongoRepository{db: db}
}

func (r *expenseMongoRepository) CreateExpense(ctx context.Context, expense *model.Expense) (*model.Expense, error) {
	now := time.Now()
	expense.CreatedAt = now
	expense.UpdatedAt = now

	result, err := r.db.Collection(expenseCollection).InsertOne(ctx, expense)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		expense.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return expense, nil
}

func (r *expenseMongoRepository) ListExpensesByUser(
	ctx context.Context,
	userID bson.ObjectID,
) ([]*model.Expense, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := r.db.Collection(expenseCollection).Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	expenses := []*model.Expense{}
	for cursor.Next(ctx) {
		var expense model.Expense
		if err := cursor.Decode(&expense); err != nil {
			return nil, err
		}
		expenses = append(expenses, &expense)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return expenses, nil
}

func (r *expenseMongoRepository) UpdateExpense(
	ctx context.Context,
	id, userID bson.ObjectID,
	params UpdateExpenseParams,
) (*model.Expense, error) {
	updateMap := bson.M{}
	if params.Title != nil {
		updateMap["title"] = *params.Title
	}
	if params.Description != nil {
		updateMap["description"] = *params.Description
	}
	if params.Amount != nil {
		updateMap["amount"] = *params.Amount
	}
	if params.Category != nil {
		updateMap["category"] = *params.Category
	}
	if params.Date != nil {
		updateMap["date"] = *params.Date
	}

	if len(updateMap) == 0 {
		return nil, errors.New("no expense fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(expenseCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var expense model.Expense
	if err := result.Decode(&expense); err != nil {
		return nil, err
	}

	return &expense, nil
}

func (r *expenseMongoRepository) DeleteExpense(
	ctx context.Context,
	id, userID bson.ObjectID,
) (*model.Expense, error) {
	result := r.db.Collection(expenseCollection).FindOneAndDelete(ctx, bson.M{"_id": id, "user_id": userID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var expense model.Expense
	if err := result.Decode(&expense); err != nil {
		return nil, err
	}

	return &expense, nil
}

func (r *expenseMongoRepository) SummarizeByCategory(
	ctx context.Context,
	userID bson.ObjectID,
) ([]model.CategorySummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$category",
			"total": bson.M{"$sum": "$amount"},
		}}},
		{{Key: "$sort", Value: bson.M{"total": -1}}},
	}

	cursor, err := r.db.Collection(expenseCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	summary := []model.CategorySummary{}
	if err := cursor.All(ctx, &summary); err != nil {
		return nil, err
	}

	return summary, nil
}
