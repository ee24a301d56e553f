package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"roomies/invitehub/internal/config"
	"roomies/invitehub/internal/handler"
	"roomies/invitehub/internal/model"
	"roomies/invitehub/internal/repository"
	"roomies/invitehub/internal/service"
	jwtpkg "roomies/invitehub/pkg/jwt"
)

func main() {
	configPath := "config.yaml"
	if p := os.Getenv("INVITEHUB_CONFIG"); p != "" {
		configPath = p
	}

	// 1. Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	if cfg.JWT.SigningKey == "" {
		logger.Fatal("jwt.signing_key must be set")
	}

	// 3. Open the invite store and account repositories
	var (
		inviteStore  repository.InviteStore
		userRepo     repository.UserRepository
		identityRepo repository.IdentityRepository
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err := config.NewPostgresDB(cfg.Database.Postgres)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		if cfg.Database.Postgres.AutoMigrate {
			if err := model.AutoMigrate(db); err != nil {
				logger.Fatal("failed to auto-migrate", zap.Error(err))
			}
			logger.Info("database migration completed")
		}
		inviteStore = repository.NewPGInviteStore(db)
		userRepo = repository.NewPGUserRepository(db)
		identityRepo = repository.NewPGIdentityRepository(db)
	case "sqlite":
		var db *sql.DB
		db, err = config.NewSQLiteDB(cfg.Database.SQLite)
		if err != nil {
			logger.Fatal("failed to open sqlite", zap.Error(err))
		}
		defer db.Close()
		if err := model.MigrateSQLite(db); err != nil {
			logger.Fatal("failed to migrate sqlite", zap.Error(err))
		}
		inviteStore = repository.NewSQLiteInviteStore(db)
		userRepo = repository.NewSQLiteUserRepository(db)
		identityRepo = repository.NewSQLiteIdentityRepository(db)
	default:
		logger.Fatal("unknown database driver", zap.String("driver", cfg.Database.Driver))
	}
	logger.Info("invite store ready", zap.String("driver", cfg.Database.Driver))

	// 4. Initialize state store (Redis or in-memory)
	var stateStore repository.StateStore
	switch cfg.State.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		stateStore = repository.NewRedisStateStore(redisClient, "invitehub:")
		logger.Info("using Redis state store")
	case "memory":
		stateStore = repository.NewMemoryStateStore()
		logger.Info("using in-memory state store")
	default:
		logger.Fatal("unknown state backend", zap.String("backend", cfg.State.Backend))
	}

	// 5. Initialize JWT manager
	jwtManager := jwtpkg.NewManager(
		cfg.JWT.SigningKey,
		cfg.JWT.Issuer,
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
	)

	// 6. Initialize services
	validator := service.NewInviteValidator(inviteStore, userRepo, logger,
		service.WithStoreTimeout(cfg.Invite.StoreTimeout))
	consumer := service.NewInviteConsumer(inviteStore, logger,
		service.WithStoreTimeout(cfg.Invite.StoreTimeout))
	carrier := service.NewPendingInviteCarrier(stateStore, cfg.Invite.PendingTTL)
	authService := service.NewAuthService(
		userRepo, identityRepo, stateStore, jwtManager,
		validator, consumer, cfg.Invite.Required, logger,
	)
	inviteService := service.NewInviteService(inviteStore)

	// 7. Initialize handlers
	pending := handler.NewPendingCookie(carrier, cfg.Invite.CookieName, cfg.Invite.CookieSecure, logger)
	inviteHandler := handler.NewInviteHandler(validator, consumer, pending, cfg.Invite.SignupURL, logger)
	authHandler := handler.NewAuthHandler(authService, pending, logger)
	adminHandler := handler.NewAdminHandler(inviteService)

	// 8. Setup router
	router := handler.SetupRouter(cfg, logger, jwtManager, authHandler, inviteHandler, adminHandler)

	// 9. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 10. Start server with graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}
	logger.Info("server exited gracefully")
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zcfg zap.Config
	if cfg.Format == "json" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
