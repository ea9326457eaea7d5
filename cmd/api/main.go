// Package main is the entry point for the expense tracker API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/kittipos/expense-tracker-api/internal/config"
	"github.com/kittipos/expense-tracker-api/internal/handler"
	"github.com/kittipos/expense-tracker-api/internal/repository"
	"github.com/kittipos/expense-tracker-api/internal/usecase"
	"github.com/kittipos/expense-tracker-api/shared/auth"
	"github.com/kittipos/expense-tracker-api/shared/mailer"
	"github.com/kittipos/expense-tracker-api/shared/validate"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg := config.New(&logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()

	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping MongoDB")
	}
	logger.Info().Msg("MongoDB connected")

	db := client.Database(cfg.MongoDatabase)

	userRepo := repository.NewUserMongoRepository(ctx, &logger, db)
	otpRepo := repository.NewOTPMongoRepository(ctx, &logger, db)
	expenseRepo := repository.NewExpenseMongoRepository(ctx, &logger, db)

	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer)
	smtpMailer := mailer.NewMailer(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})

	authUsecase := usecase.NewAuthUsecase(userRepo, jwtAuth, cfg)
	passwordResetUsecase := usecase.NewPasswordResetUsecase(userRepo, otpRepo, smtpMailer, cfg, &logger)
	expenseUsecase := usecase.NewExpenseUsecase(expenseRepo)

	validator, err := validate.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize validator")
	}

	authHandler := handler.NewAuthHandler(authUsecase, passwordResetUsecase, validator, &logger)
	expenseHandler := handler.NewExpenseHandler(expenseUsecase, validator, &logger)

	router := handler.NewRouter(authHandler, expenseHandler, jwtAuth, cfg, &logger)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
