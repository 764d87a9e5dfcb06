package main

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/arcanewagers/Auth/docs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/arcanewagers/Auth/internal/auth"
	"github.com/arcanewagers/Auth/internal/cache"
	"github.com/arcanewagers/Auth/internal/config"
	"github.com/arcanewagers/Auth/internal/db"
	"github.com/arcanewagers/Auth/internal/email"
	"github.com/arcanewagers/Auth/internal/handler"
	"github.com/arcanewagers/Auth/internal/logger"
	"github.com/arcanewagers/Auth/internal/model"
	"github.com/arcanewagers/Auth/internal/repository"
	"github.com/arcanewagers/Auth/internal/router"
	"github.com/arcanewagers/Auth/internal/service"
)

// @title Arcane Wagers Auth API
// @version 1.0
// @description User authentication backend: signup, password and Google OAuth login, password reset, brute-force protection.
// @BasePath /api/v1/auth
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	zlog, err := logger.New()
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer zlog.Sync()

	// Failure to reach the database is the only process-fatal condition.
	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		zlog.Fatal("database init", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.LoginAttempt{},
	); err != nil {
		zlog.Fatal("auto-migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	userRepo := repository.NewUserRepository(gormDB)
	attemptRepo := repository.NewLoginAttemptRepository(gormDB)

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.PasswordResetTokenTTL)
	googleVerifier := auth.NewGoogleVerifier(cfg.GoogleClientID)
	mailer := email.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.FrontendURL)

	authService := service.NewAuthService(userRepo, attemptRepo, jwtService, googleVerifier, mailer, cfg, zlog)
	userService := service.NewUserService(userRepo, cacheClient)

	authHandler := handler.NewAuthHandler(authService, userService, jwtService)
	healthHandler := handler.NewHealthHandler(gormDB)

	e := echo.New()
	e.Use(middleware.RequestID())
	router.Register(e, jwtService, authHandler, healthHandler)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = stripScheme(cfg.SwaggerHost)
	}
	zlog.Info("swagger docs", zap.String("url", swaggerURL(cfg.SwaggerHost, cfg.ServerPort)))

	addr := ":" + cfg.ServerPort
	zlog.Info("starting server", zap.String("addr", addr))
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		zlog.Fatal("server start", zap.Error(err))
	}
}

// swaggerURL derives the advertised docs URL. SWAGGER_HOST may carry its own
// scheme; a bare host gets http.
func swaggerURL(host, port string) string {
	if host == "" {
		return fmt.Sprintf("http://localhost:%s/swagger/index.html", port)
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}

// stripScheme trims a scheme prefix; swag's Host field wants a bare host.
func stripScheme(host string) string {
	host = strings.TrimPrefix(host, "https://")
	return strings.TrimPrefix(host, "http://")
}
