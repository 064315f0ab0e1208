package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/farizks7575/chat-app/internal/cache"
	"github.com/farizks7575/chat-app/internal/config"
	"github.com/farizks7575/chat-app/internal/domain"
	"github.com/farizks7575/chat-app/internal/handler"
	"github.com/farizks7575/chat-app/internal/hub"
	"github.com/farizks7575/chat-app/internal/middleware"
	"github.com/farizks7575/chat-app/internal/repository"
	"github.com/farizks7575/chat-app/internal/service"
	"github.com/farizks7575/chat-app/internal/storage"
	"github.com/farizks7575/chat-app/internal/token"
	"github.com/farizks7575/chat-app/pkg/database"
	"github.com/farizks7575/chat-app/pkg/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Log)
	logger := log.L()

	if cfg.JWT.Secret == "" {
		logger.Fatal().Msg("JWT_SECRET is required")
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.AutoMigrate(db,
		&domain.UserModel{},
		&domain.MessageModel{},
		&domain.RequestModel{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var conversations cache.ConversationCache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisConversationCache(cfg.Redis.RedisConfig, "conv")
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisCache.Close()
		conversations = redisCache
		logger.Info().Str("address", cfg.Redis.Address).Msg("conversation cache enabled")
	}

	store, localBase, err := newStorage(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise storage")
	}

	tokens := token.NewManager(cfg.JWT.Secret, cfg.JWT.Lifetime, cfg.JWT.Issuer)

	users := repository.NewGormUserRepository(db)
	messages := repository.NewGormMessageRepository(db)
	requests := repository.NewGormRequestRepository(db)

	presence := hub.NewHub()
	relaySvc := service.NewRelayService(messages, requests, presence, conversations, cfg.Redis.CacheTTL)
	userSvc := service.NewUserService(users, tokens, store)
	requestSvc := service.NewRequestService(requests, users, relaySvc)

	auth := middleware.NewAuthMiddleware(tokens)
	wsHandler := handler.NewWSHandler(presence, relaySvc, cfg.WebSocket)
	httpHandler := handler.NewHTTPHandler(userSvc, relaySvc, requestSvc, auth)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(log.GinMiddleware(logger), gin.Recovery())

	if localBase != "" {
		engine.Static(cfg.Storage.Local.URLPrefix, localBase)
	}

	httpHandler.RegisterRoutes(engine, wsHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
	logger.Info().Msg("server stopped")
}

// newStorage selects the avatar storage backend. The second return is the
// local base path to serve statically, empty for remote backends.
func newStorage(cfg config.StorageConfig) (storage.Storage, string, error) {
	switch cfg.Backend {
	case "s3":
		s3Store, err := storage.NewS3Storage(context.Background(), cfg.S3)
		if err != nil {
			return nil, "", err
		}
		return s3Store, "", nil
	case "local", "":
		localStore, err := storage.NewLocalStorage(cfg.Local)
		if err != nil {
			return nil, "", err
		}
		return localStore, localStore.BasePath(), nil
	default:
		return nil, "", fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}
