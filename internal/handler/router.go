package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/kittipos/expense-tracker-api/internal/config"
	"github.com/kittipos/expense-tracker-api/shared/auth"
	"github.com/kittipos/expense-tracker-api/shared/httputil"
)

// NewRouter wires all routes. Everything under /api/expenses requires a
// valid bearer token; the auth endpoints are public.
func NewRouter(
	authHandler *AuthHandler,
	expenseHandler *ExpenseHandler,
	jwtAuth auth.JWTAuthenticator,
	cfg *config.Config,
	logger *zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			httputil.RespondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/request-otp", authHandler.RequestOTP)
			r.Post("/verify-otp", authHandler.VerifyOTP)
			r.Post("/reset-password", authHandler.ResetPassword)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Use(RequireAuth(jwtAuth, cfg.Token.Secret))

			r.Post("/", expenseHandler.Add)
			r.Get("/", expenseHandler.List)
			r.Put("/{id}", expenseHandler.Update)
			r.Delete("/{id}", expenseHandler.Delete)
			r.Get("/summary/category", expenseHandler.CategorySummary)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			httputil.RespondJSON(w, r, http.StatusNotFound, map[string]string{"error": "API route not found"})
		})
	})

	return r
}
