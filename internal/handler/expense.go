package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/kittipos/expense-tracker-api/internal/usecase"
	"github.com/kittipos/expense-tracker-api/shared/httputil"
	"github.com/kittipos/expense-tracker-api/shared/validate"
)

// ExpenseHandler handles expense CRUD and summary HTTP requests.
type ExpenseHandler struct {
	expenseUsecase usecase.ExpenseUsecase
	validator      *validate.Validator
	logger         *zerolog.Logger
}

// NewExpenseHandler creates a new ExpenseHandler instance.
func NewExpenseHandler(
	expenseUsecase usecase.ExpenseUsecase,
	validator *validate.Validator,
	logger *zerolog.Logger,
) *ExpenseHandler {
	return &ExpenseHandler{
		expenseUsecase: expenseUsecase,
		validator:      validator,
		logger:         logger,
	}
}

func (h *ExpenseHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondMessage(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ExpenseRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondMessage(w, r, http.StatusBadRequest, "Title, amount, category, and date are required.")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.RespondMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	expense, err := h.expenseUsecase.Add(r.Context(), userID, usecase.ExpenseParams{
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Date:        req.Date,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrMissingFields) {
			httputil.RespondMessage(w, r, http.StatusBadRequest, "Title, amount, category, and date are required.")
			return
		}

		h.logger.Error().Err(err).Str("operation", "AddExpense").Msg("failed to add expense")
		httputil.RespondMessage(w, r, http.StatusInternalServerError, "Server error")
		return
	}

	httputil.RespondJSON(w, r, http.StatusCreated, expense)
}

func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondMessage(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	expenses, err := h.expenseUsecase.List(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("operation", "ListExpenses").Msg("failed to list expenses")
		httputil.RespondMessage(w, r, http.StatusInternalServerError, "Server error")
		return
	}

	httputil.RespondJSON(w, r, http.StatusOK, expenses)
}

func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondMessage(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UpdateExpenseRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	expense, err := h.expenseUsecase.Update(r.Context(), userID, chi.URLParam(r, "id"), usecase.ExpenseParams{
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Date:        req.Date,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingFields):
			httputil.RespondMessage(w, r, http.StatusBadRequest, "No expense fields to update")
		case errors.Is(err, usecase.ErrInvalidExpenseID):
			httputil.RespondMessage(w, r, http.StatusBadRequest, "Invalid expense ID")
		case errors.Is(err, usecase.ErrExpenseNotFound):
			httputil.RespondMessage(w, r, http.StatusNotFound, "Expense not found")
		default:
			h.logger.Error().Err(err).Str("operation", "UpdateExpense").Msg("failed to update expense")
			httputil.RespondMessage(w, r, http.StatusInternalServerError, "Server error")
		}
		return
	}

	httputil.RespondJSON(w, r, http.StatusOK, expense)
}

func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondMessage(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	err := h.expenseUsecase.Delete(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidExpenseID):
			httputil.RespondMessage(w, r, http.StatusBadRequest, "Invalid expense ID")
		case errors.Is(err, usecase.ErrExpenseNotFound):
			httputil.RespondMessage(w, r, http.StatusNotFound, "Expense not found")
		default:
			h.logger.Error().Err(err).Str("operation", "DeleteExpense").Msg("failed to delete expense")
			httputil.RespondMessage(w, r, http.StatusInternalServerError, "Server error")
		}
		return
	}

	httputil.RespondMessage(w, r, http.StatusOK, "Expense deleted successfully")
}

func (h *ExpenseHandler) CategorySummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondMessage(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	summary, err := h.expenseUsecase.CategorySummary(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("operation", "CategorySummary").Msg("failed to summarize expenses")
		httputil.RespondMessage(w, r, http.StatusInternalServerError, "Server error")
		return
	}

	httputil.RespondJSON(w, r, http.StatusOK, summary)
}
