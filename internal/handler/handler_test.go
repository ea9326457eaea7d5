package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/kittipos/expense-tracker-api/internal/config"
	"github.com/kittipos/expense-tracker-api/internal/model"
	"github.com/kittipos/expense-tracker-api/internal/usecase"
	"github.com/kittipos/expense-tracker-api/shared/auth"
	"github.com/kittipos/expense-tracker-api/shared/validate"
)

// --- fake usecases ---

type fakeAuthUsecase struct {
	result *usecase.AuthResult
	err    error
}

func (f *fakeAuthUsecase) Register(context.Context, usecase.RegisterParams) (*usecase.AuthResult, error) {
	return f.result, f.err
}

func (f *fakeAuthUsecase) Login(context.Context, usecase.LoginParams) (*usecase.AuthResult, error) {
	return f.result, f.err
}

type fakeResetUsecase struct {
	requestErr error
	verifyErr  error
	resetErr   error
}

func (f *fakeResetUsecase) RequestReset(context.Context, string) error { return f.requestErr }
func (f *fakeResetUsecase) VerifyCode(context.Context, string, string) error {
	return f.verifyErr
}
func (f *fakeResetUsecase) ResetPassword(context.Context, string, string, string) error {
	return f.resetErr
}

type fakeExpenseUsecase struct {
	expense  *model.Expense
	expenses []*model.Expense
	summary  []model.CategorySummary
	err      error
}

func (f *fakeExpenseUsecase) Add(context.Context, string, usecase.ExpenseParams) (*model.Expense, error) {
	return f.expense, f.err
}

func (f *fakeExpenseUsecase) List(context.Context, string) ([]*model.Expense, error) {
	return f.expenses, f.err
}

func (f *fakeExpenseUsecase) Update(context.Context, string, string, usecase.ExpenseParams) (*model.Expense, error) {
	return f.expense, f.err
}

func (f *fakeExpenseUsecase) Delete(context.Context, string, string) error { return f.err }

func (f *fakeExpenseUsecase) CategorySummary(context.Context, string) ([]model.CategorySummary, error) {
	return f.summary, f.err
}

// --- harness ---

type testServer struct {
	router  http.Handler
	cfg     *config.Config
	jwtAuth auth.JWTAuthenticator
}

func newTestServer(t *testing.T, authUC usecase.AuthUsecase, resetUC usecase.PasswordResetUsecase, expenseUC usecase.ExpenseUsecase) *testServer {
	t.Helper()

	cfg := &config.Config{
		Token: config.TokenConfig{
			Secret:           "test-secret",
			SessionExpiresIn: time.Hour,
			Issuer:           "expense-tracker-api",
		},
	}
	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer)

	validator, err := validate.New()
	require.NoError(t, err)

	logger := zerolog.Nop()
	authHandler := NewAuthHandler(authUC, resetUC, validator, &logger)
	expenseHandler := NewExpenseHandler(expenseUC, validator, &logger)

	return &testServer{
		router:  NewRouter(authHandler, expenseHandler, jwtAuth, cfg, &logger),
		cfg:     cfg,
		jwtAuth: jwtAuth,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) issueToken(t *testing.T, userID string, expiresIn time.Duration) string {
	t.Helper()

	now := time.Now()
	claims := auth.SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Token.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Token.Issuer},
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := s.jwtAuth.GenerateToken(claims, s.cfg.Token.Secret)
	require.NoError(t, err)
	return token
}

func sampleAuthResult() *usecase.AuthResult {
	return &usecase.AuthResult{
		Token: "token-abc",
		User: &model.User{
			ID:           bson.NewObjectID(),
			Name:         "A",
			Email:        "a@x.com",
			PasswordHash: "argon2-hash",
		},
	}
}

// --- auth endpoints ---

func TestRegisterEndpoint_Created(t *testing.T) {
	s := newTestServer(t, &fakeAuthUsecase{result: sampleAuthResult()}, &fakeResetUsecase{}, &fakeExpenseUsecase{})

	rec := s.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "A",
		"email":    "a@x.com",
		"password": "secret1",
	}, "")

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "token-abc")
	assert.NotContains(t, rec.Body.String(), "argon2-hash")
	assert.NotContains(t, rec.Body.String(), "password_hash")
}

func TestRegisterEndpoint_MissingFields(t *testing.T) {
	s := newTestServer(t, &fakeAuthUsecase{result: sampleAuthResult()}, &fakeResetUsecase{}, &fakeExpenseUsecase{})

	rec := s.do(t, http.MethodPost, "/api/auth/register", map[string]string{"email": "a@x.com"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterEndpoint_DuplicateEmail(t *testing.T) {
	s := newTestServer(t, &fakeAuthUsecase{err: usecase.ErrUserAlreadyExists}, &fakeResetUsecase{}, &fakeExpenseUsecase{})

	rec := s.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "A",
		"email":    "a@x.com",
		"password": "secret1",
	}, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already exists")
}

func TestLoginEndpoint_UserNotFound(t *testing.T) {
	s := newTestServer(t, &fakeAuthUsecase{err: usecase.ErrUserNotFound}, &fakeResetUsecase{}, &fakeExpenseUsecase{})

	rec := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "secret1",
	}, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")
}

func TestLoginEndpoint_IncorrectPassword(t *testing.T) {
	s := newTestServer(t, &fakeAuthUsecase{err: usecase.ErrIncorrectPassword}, &fakeResetUsecase{}, &fakeExpenseUsecase{})

	rec := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "wrong",
	}, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Incorrect password")
}

func TestRequestOTPEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		requestErr error
		wantStatus int
	}{
		{"success", nil, http.StatusOK},
		{"unknown user", usecase.ErrUserNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &fakeAuthUsecase{}, &fakeResetUsecase{requestErr: tt.requestErr}, &fakeExpenseUsecase{})

			rec := s.do(t, http.MethodPost, "/api/auth/request-otp", map[string]string{"email": "a@x.com"}, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestVerifyOTPEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		verifyErr  error
		wantStatus int
		wantMsg    string
	}{
		{"success", nil, http.StatusOK, "OTP verified successfully"},
		{"invalid", usecase.ErrOTPInvalid, http.StatusBadRequest, "Invalid or expired OTP"},
		{"expired", usecase.ErrOTPExpired, http.StatusBadRequest, "Invalid or expired OTP"},
		{"not found", usecase.ErrOTPNotFound, http.StatusBadRequest, "OTP not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &fakeAuthUsecase{}, &fakeResetUsecase{verifyErr: tt.verifyErr}, &fakeExpenseUsecase{})

			rec := s.do(t, http.MethodPost, "/api/auth/verify-otp", map[string]string{
				"email": "a@x.com",
				"otp":   "123456",
			}, "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMsg)
		})
	}
}

func TestResetPasswordEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeAuthUsecase{}, &fakeResetUsecase{}, &fakeExpenseUsecase{})

	rec := s.do(t, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"email":       "a@x.com",
		"otp":         "123456",
		"newPassword": "newsecret",
	}, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Password reset successful")
}

func TestResetPasswordEndpoint_RequiresOTP(t *testing.T) {
	s := newTestServer(t, &fakeAuthUsecase{}, &fakeResetUsecase{}, &fakeExpenseUsecase{})

	rec := s.do(t, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"email":       "a@x.com",
		"newPassword": "newsecret",
	}, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- protected endpoints ---

func TestExpenses_RejectedWithoutToken(t *testing.T) {
	s := newTestServer(t, &fakeAuthUsecase{}, &fakeResetUsecase{}, &fakeExpenseUsecase{})

	rec := s.do(t, http.MethodGet, "/api/expenses", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExpenses_RejectedWithInvalidToken(t *testing.T) {
	s := newTestServer(t, &fakeAuthUsecase{}, &fakeResetUsecase{}, &fakeExpenseUsecase{})

	rec := s.do(t, http.MethodGet, "/api/expenses", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExpenses_RejectedWithExpiredToken(t *testing.T) {
	s := newTestServer(t, &fakeAuthUsecase{}, &fakeResetUsecase{}, &fakeExpenseUsecase{})

	token := s.issueToken(t, bson.NewObjectID().Hex(), -time.Minute)
	rec := s.do(t, http.MethodGet, "/api/expenses", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExpenses_ListWithValidToken(t *testing.T) {
	s := newTestServer(t, &fakeAuthUsecase{}, &fakeResetUsecase{}, &fakeExpenseUsecase{expenses: []*model.Expense{}})

	token := s.issueToken(t, bson.NewObjectID().Hex(), time.Hour)
	rec := s.do(t, http.MethodGet, "/api/expenses", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExpenses_UpdateNotFound(t *testing.T) {
	s := newTestServer(t, &fakeAuthUsecase{}, &fakeResetUsecase{}, &fakeExpenseUsecase{err: usecase.ErrExpenseNotFound})

	token := s.issueToken(t, bson.NewObjectID().Hex(), time.Hour)
	rec := s.do(t, http.MethodPut, "/api/expenses/"+bson.NewObjectID().Hex(), map[string]string{"title": "x"}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExpenses_UpdateWithoutFields(t *testing.T) {
	s := newTestServer(t, &fakeAuthUsecase{}, &fakeResetUsecase{}, &fakeExpenseUsecase{err: usecase.ErrMissingFields})

	token := s.issueToken(t, bson.NewObjectID().Hex(), time.Hour)
	rec := s.do(t, http.MethodPut, "/api/expenses/"+bson.NewObjectID().Hex(), map[string]string{}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No expense fields to update")
}

func TestExpenses_DeleteInvalidID(t *testing.T) {
	s := newTestServer(t, &fakeAuthUsecase{}, &fakeResetUsecase{}, &fakeExpenseUsecase{err: usecase.ErrInvalidExpenseID})

	token := s.issueToken(t, bson.NewObjectID().Hex(), time.Hour)
	rec := s.do(t, http.MethodDelete, "/api/expenses/not-an-id", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- misc routes ---

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeAuthUsecase{}, &fakeResetUsecase{}, &fakeExpenseUsecase{})

	rec := s.do(t, http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestUnknownAPIRoute(t *testing.T) {
	s := newTestServer(t, &fakeAuthUsecase{}, &fakeResetUsecase{}, &fakeExpenseUsecase{})

	rec := s.do(t, http.MethodGet, "/api/nope", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "API route not found")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, &fakeAuthUsecase{}, &fakeResetUsecase{}, &fakeExpenseUsecase{})

	req := httptest.NewRequest(http.MethodOptions, "/api/expenses", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCORSSimpleRequest(t *testing.T) {
	s := newTestServer(t, &fakeAuthUsecase{}, &fakeResetUsecase{}, &fakeExpenseUsecase{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
