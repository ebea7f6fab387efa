package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/A3toros/tutorcat-auth/config"
	"github.com/A3toros/tutorcat-auth/db"
	"github.com/A3toros/tutorcat-auth/internal/auth/handler"
	repo "github.com/A3toros/tutorcat-auth/internal/auth/repository/postgres"
	"github.com/A3toros/tutorcat-auth/internal/auth/service"
	"github.com/A3toros/tutorcat-auth/internal/mailer"
	"github.com/A3toros/tutorcat-auth/internal/ratelimit"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	dbPool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}

	redisClient, err := db.NewRedisClient(cfg.RedisURL, cfg.RedisToken)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	smtpMailer, err := mailer.NewSMTPMailer(cfg)
	if err != nil {
		log.Fatalf("mailer: %v", err)
	}

	authRepo := repo.NewPostgresRepository(dbPool)
	limiter := ratelimit.NewLimiter(redisClient)
	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.AccessExpiryMin, cfg.SessionExpiryMin, cfg.AdminExpiryMin)
	userService := service.NewUserService(authRepo, authRepo, tokenService, limiter, cfg)
	otpService := service.NewOtpService(authRepo, authRepo, smtpMailer)
	authHandler := handler.NewAuthHandler(userService, otpService, tokenService, cfg)

	app := fiber.New()
	handler.RegisterRoutes(app, authHandler)

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
