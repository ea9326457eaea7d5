package usecase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/kittipos/expense-tracker-api/internal/config"
	"github.com/kittipos/expense-tracker-api/internal/model"
	"github.com/kittipos/expense-tracker-api/internal/repository"
	"github.com/kittipos/expense-tracker-api/shared/mailer"
)

func testConfig() *config.Config {
	return &config.Config{
		Token: config.TokenConfig{
			Secret:           "test-secret",
			SessionExpiresIn: 168 * time.Hour,
			Issuer:           "expense-tracker-api",
		},
		OTP: config.OTPConfig{
			ExpiresIn: 10 * time.Minute,
		},
	}
}

func newUser(name, email, passwordHash string) *model.User {
	return &model.User{Name: name, Email: email, PasswordHash: passwordHash}
}

// --- fake user repository ---

type fakeUserRepo struct {
	byEmail map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*model.User{}}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	if _, exists := f.byEmail[user.Email]; exists {
		return nil, mongo.CommandError{Code: 11000, Message: "E11000 duplicate key error"}
	}

	user.ID = bson.NewObjectID()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	f.byEmail[user.Email] = user

	return user, nil
}

func (f *fakeUserRepo) GetUser(_ context.Context, id string) (*model.User, error) {
	for _, user := range f.byEmail {
		if user.ID.Hex() == id {
			return user, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return user, nil
}

func (f *fakeUserRepo) UpdateUser(
	_ context.Context,
	id string,
	params repository.UpdateUserParams,
) (*model.User, error) {
	for _, user := range f.byEmail {
		if user.ID.Hex() == id {
			if params.Name != nil {
				user.Name = *params.Name
			}
			if params.PasswordHash != nil {
				user.PasswordHash = *params.PasswordHash
			}
			user.UpdatedAt = time.Now()
			return user, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

// --- fake otp repository ---

type fakeOTPRepo struct {
	byEmail map[string]*model.OTPCode

	deleteErr error
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{byEmail: map[string]*model.OTPCode{}}
}

func (f *fakeOTPRepo) UpsertCode(_ context.Context, code *model.OTPCode) (*model.OTPCode, error) {
	now := time.Now()
	stored, exists := f.byEmail[code.Email]
	if !exists {
		stored = &model.OTPCode{
			ID:        bson.NewObjectID(),
			Email:     code.Email,
			CreatedAt: now,
		}
		f.byEmail[code.Email] = stored
	}
	stored.Code = code.Code
	stored.ExpiresAt = code.ExpiresAt
	stored.UpdatedAt = now

	return stored, nil
}

func (f *fakeOTPRepo) GetCodeByEmail(_ context.Context, email string) (*model.OTPCode, error) {
	code, ok := f.byEmail[email]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return code, nil
}

func (f *fakeOTPRepo) DeleteCodeByEmail(_ context.Context, email string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.byEmail, email)
	return nil
}

// --- fake notifier ---

type fakeNotifier struct {
	sent []mailer.Email
	err  error
}

func (f *fakeNotifier) Send(email mailer.Email) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, email)
	return nil
}

// --- fake expense repository ---

type fakeExpenseRepo struct {
	byID map[bson.ObjectID]*model.Expense
}

func newFakeExpenseRepo() *fakeExpenseRepo {
	return &fakeExpenseRepo{byID: map[bson.ObjectID]*model.Expense{}}
}

func (f *fakeExpenseRepo) CreateExpense(_ context.Context, expense *model.Expense) (*model.Expense, error) {
	expense.ID = bson.NewObjectID()
	now := time.Now()
	expense.CreatedAt = now
	expense.UpdatedAt = now
	f.byID[expense.ID] = expense
	return expense, nil
}

func (f *fakeExpenseRepo) ListExpensesByUser(
	_ context.Context,
	userID bson.ObjectID,
) ([]*model.Expense, error) {
	expenses := []*model.Expense{}
	for _, expense := range f.byID {
		if expense.UserID == userID {
			expenses = append(expenses, expense)
		}
	}
	return expenses, nil
}

func (f *fakeExpenseRepo) UpdateExpense(
	_ context.Context,
	id, userID bson.ObjectID,
	params repository.UpdateExpenseParams,
) (*model.Expense, error) {
	expense, ok := f.byID[id]
	if !ok || expense.UserID != userID {
		return nil, mongo.ErrNoDocuments
	}

	if params.Title != nil {
		expense.Title = *params.Title
	}
	if params.Description != nil {
		expense.Description = *params.Description
	}
	if params.Amount != nil {
		expense.Amount = *params.Amount
	}
	if params.Category != nil {
		expense.Category = *params.Category
	}
	if params.Date != nil {
		expense.Date = *params.Date
	}
	expense.UpdatedAt = time.Now()

	return expense, nil
}

func (f *fakeExpenseRepo) DeleteExpense(
	_ context.Context,
	id, userID bson.ObjectID,
) (*model.Expense, error) {
	expense, ok := f.byID[id]
	if !ok || expense.UserID != userID {
		return nil, mongo.ErrNoDocuments
	}
	delete(f.byID, id)
	return expense, nil
}

func (f *fakeExpenseRepo) SummarizeByCategory(
	_ context.Context,
	userID bson.ObjectID,
) ([]model.CategorySummary, error) {
	totals := map[string]float64{}
	for _, expense := range f.byID {
		if expense.UserID == userID {
			totals[expense.Category] += expense.Amount
		}
	}

	summary := []model.CategorySummary{}
	for category, total := range totals {
		summary = append(summary, model.CategorySummary{Category: category, Total: total})
	}
	return summary, nil
}
