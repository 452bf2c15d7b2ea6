// File: app/app.go
package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-auth-api/config"
	"go-auth-api/db"
	"go-auth-api/handler"
	"go-auth-api/logger"
	"go-auth-api/repository"
	"go-auth-api/router"
	"go-auth-api/service"

	"github.com/redis/go-redis/v9"
)

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	cfg := config.AppConfig

	keys, err := service.NewSigningKeyProvider(cfg.JWT.SecretKey, cfg.JWT.PreviousSecretKey)
	if err != nil {
		logger.Log.Fatalf("Invalid signing key configuration: %v", err)
	}
	codec := service.NewTokenCodec(keys, cfg.JWT.ClockSkew)

	rdb, err := db.ConnectRedis()
	if err != nil {
		logger.Log.Fatalf("Error connecting to Redis: %v", err)
	}
	defer rdb.Close()

	sessionRepo := repository.NewSessionRepository(rdb)

	// The user directory is an external collaborator. Most deployments call
	// the remote user service; co-located deployments read the users table.
	var directory repository.IUserDirectory
	switch cfg.Directory.Mode {
	case "postgres":
		database, err := db.Connect()
		if err != nil {
			logger.Log.Fatalf("Error connecting to the database: %v", err)
		}
		defer database.Close()
		if err := db.RunMigrations("file://db/migrations"); err != nil {
			logger.Log.Fatalf("Error running migrations: %v", err)
		}
		directory = repository.NewPostgresUserDirectory(database)
	default:
		directory = repository.NewHTTPUserDirectory(cfg.Directory.BaseURL, cfg.Directory.Timeout)
	}

	limiter := service.NewLoginLimiter(cfg.Security.LoginRatePerMin, cfg.Security.LoginBurst)

	sessionService := service.NewSessionService(
		codec, sessionRepo, directory, limiter,
		cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL,
		cfg.Redis.Timeout, cfg.Directory.Timeout,
	)

	authHandler := handler.NewAuthHandler(sessionService)
	r := router.NewRouter(authHandler, codec, cfg.Security.PublicPaths)

	// --- Start the Server with Graceful Shutdown ---
	port := cfg.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}

// TestApp bundles a fully wired router and its collaborators for
// integration-style tests against httptest.
type TestApp struct {
	Router  http.Handler
	Codec   *service.TokenCodec
	Service *service.SessionService
}

// NewTestApp wires the stack against the given Redis client and directory
// with short, test-friendly timeouts.
func NewTestApp(rdb *redis.Client, directory repository.IUserDirectory, secret string, accessTTL, refreshTTL time.Duration) *TestApp {
	keys, err := service.NewSigningKeyProvider(secret, "")
	if err != nil {
		panic(err)
	}
	codec := service.NewTokenCodec(keys, 0)

	sessionRepo := repository.NewSessionRepository(rdb)
	sessionService := service.NewSessionService(
		codec, sessionRepo, directory, nil,
		accessTTL, refreshTTL, 2*time.Second, 2*time.Second,
	)

	authHandler := handler.NewAuthHandler(sessionService)
	publicPaths := []string{"/auth/**", "/health", "/metrics", "/swagger/**"}

	return &TestApp{
		Router:  router.NewRouter(authHandler, codec, publicPaths),
		Codec:   codec,
		Service: sessionService,
	}
}
