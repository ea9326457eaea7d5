package usecase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/kittipos/expense-tracker-api/internal/model"
	"github.com/kittipos/expense-tracker-api/internal/repository"
)

// ExpenseUsecase defines the business logic for expense entries. Every
// operation is scoped to the authenticated user.
type ExpenseUsecase interface {
	Add(ctx context.Context, userID string, params ExpenseParams) (*model.Expense, error)
	List(ctx context.Context, userID string) ([]*model.Expense, error)
	Update(ctx context.Context, userID, expenseID string, params ExpenseParams) (*model.Expense, error)
	Delete(ctx context.Context, userID, expenseID string) error
	CategorySummary(ctx context.Context, userID string) ([]model.CategorySummary, error)
}

// ExpenseParams defines the fields of an expense entry supplied by the
// client. Description is optional.
type ExpenseParams struct {
	Title       string
	Description string
	Amount      float64
	Category    string
	Date        time.Time
}

var (
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrInvalidExpenseID = errors.New("invalid expense id")
)

type expenseUsecase struct {
	expenseRepo repository.ExpenseRepository
}

// NewExpenseUsecase creates a new instance of ExpenseUsecase.
func NewExpenseUsecase(expenseRepo repository.ExpenseRepository) ExpenseUsecase {
	return &expenseUsecase{expenseRepo: expenseRepo}
}

func (u *expenseUsecase) Add(ctx context.Context, userID string, params ExpenseParams) (*model.Expense, error) {
	ownerID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	if params.Title == "" || params.Category == "" || params.Amount == 0 || params.Date.IsZero() {
		return nil, ErrMissingFields
	}

	return u.expenseRepo.CreateExpense(ctx, &model.Expense{
		UserID:      ownerID,
		Title:       params.Title,
		Description: params.Description,
		Amount:      params.Amount,
		Category:    params.Category,
		Date:        params.Date,
	})
}

func (u *expenseUsecase) List(ctx context.Context, userID string) ([]*model.Expense, error) {
	ownerID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	return u.expenseRepo.ListExpensesByUser(ctx, ownerID)
}

func (u *expenseUsecase) Update(
	ctx context.Context,
	userID, expenseID string,
	params ExpenseParams,
) (*model.Expense, error) {
	ownerID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	id, err := bson.ObjectIDFromHex(expenseID)
	if err != nil {
		return nil, ErrInvalidExpenseID
	}

	updateParams := repository.UpdateExpenseParams{}
	if params.Title != "" {
		updateParams.Title = &params.Title
	}
	if params.Description != "" {
		updateParams.Description = &params.Description
	}
	if params.Amount != 0 {
		updateParams.Amount = &params.Amount
	}
	if params.Category != "" {
		updateParams.Category = &params.Category
	}
	if !params.Date.IsZero() {
		updateParams.Date = &params.Date
	}

	if updateParams == (repository.UpdateExpenseParams{}) {
		return nil, ErrMissingFields
	}

	expense, err := u.expenseRepo.UpdateExpense(ctx, id, ownerID, updateParams)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrExpenseNotFound
		}

		return nil, err
	}

	return expense, nil
}

func (u *expenseUsecase) Delete(ctx context.Context, userID, expenseID string) error {
	ownerID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}

	id, err := bson.ObjectIDFromHex(expenseID)
	if err != nil {
		return ErrInvalidExpenseID
	}

	if _, err := u.expenseRepo.DeleteExpense(ctx, id, ownerID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrExpenseNotFound
		}

		return err
	}

	return nil
}

func (u *expenseUsecase) CategorySummary(ctx context.Context, userID string) ([]model.CategorySummary, error) {
	ownerID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	return u.expenseRepo.SummarizeByCategory(ctx, ownerID)
}
