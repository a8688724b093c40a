package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"binbuddy/internal/config"
	"binbuddy/internal/handler"
	"binbuddy/internal/logging"
	"binbuddy/internal/repository"
	"binbuddy/internal/service"
	"binbuddy/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connection + Migration ---
	var (
		userRepo repository.UserRepository
		ping     handler.PingFunc
	)
	switch cfg.DB.Driver() {
	case config.DriverSQLite:
		db, err := config.OpenMigratedSQLite(ctx, cfg.DB.SQLitePath())
		if err != nil {
			logger.Error("failed to open SQLite database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		userRepo = repository.NewSQLiteUserRepository(db)
		ping = db.PingContext
		logger.Info("using SQLite credential store", "path", cfg.DB.SQLitePath())
	default:
		pool, err := config.ConnectDB(ctx, cfg.DB, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := config.AutoMigratePool(ctx, pool); err != nil {
			logger.Error("failed to auto-migrate database", "error", err)
			os.Exit(1)
		}
		userRepo = repository.NewUserRepository(pool)
		ping = pool.Ping
	}
	logger.Info("migrations applied")

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpiration)
	hasher := utils.NewPasswordHasher(cfg.BcryptCost)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, hasher, jwtUtil, service.AuthOptions{
		InitialAdminEmail: cfg.InitialAdminEmail,
		Logger:            logger,
	})

	// --- Setup Router ---
	router := handler.NewRouter(handler.RouterOptions{
		AuthService:     authService,
		Ping:            ping,
		CORSAllowOrigin: cfg.CORSAllowOrigin,
		Logger:          logger,
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "token_lifetime", cfg.JWTExpiration, "bcrypt_cost", hasher.Cost())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "error", err)
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exiting")
}
