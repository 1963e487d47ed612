package main

import (
	"cinesocial/backend/internal/api/handler"
	"cinesocial/backend/internal/auth"
	"cinesocial/backend/internal/catalog"
	"cinesocial/backend/internal/chathub"
	"cinesocial/backend/internal/config"
	"cinesocial/backend/internal/insight"
	"cinesocial/backend/internal/logging"
	"cinesocial/backend/internal/storage"
	"cinesocial/backend/internal/telegram"
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/handlers"
	"github.com/redis/go-redis/v9"
)

func setupRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logging.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, running without cache and cross-instance relay")
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func setupInsights(cfg *config.Config, store storage.InsightStore) handler.Option {
	var primary, secondary insight.Completer
	switch {
	case cfg.GeminiAPIKey != "":
		primary = insight.NewGeminiClient(cfg.GeminiAPIKey)
		if cfg.GroqAPIKey != "" {
			secondary = insight.NewGroqClient(cfg.GroqAPIKey)
		}
	case cfg.GroqAPIKey != "":
		primary = insight.NewGroqClient(cfg.GroqAPIKey)
	default:
		logging.Warn().Msg("no AI provider key set, movie insights disabled")
		return func(*handler.Handler) {}
	}

	var video insight.VideoFinder
	if cfg.YouTubeAPIKey != "" {
		video = insight.NewYouTubeClient(cfg.YouTubeAPIKey, cfg.YouTubeRPS)
	}
	return handler.WithInsights(insight.NewService(insight.NewResolver(primary, secondary), video, store))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logging.Info().Str("addr", cfg.Addr).Msg("starting cinesocial backend")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.OpenPostgres(cfg.DatabaseDSN)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect PostgreSQL")
	}
	if err := storage.Migrate(db); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	rdb := setupRedis(ctx, cfg)
	s := storage.NewStorageService(db, rdb)

	hubOpts := []chathub.Option{}
	if rdb != nil {
		hubOpts = append(hubOpts, chathub.WithRelay(chathub.NewRedisRelay(rdb)))
	}

	var bot *telegram.BotService
	if cfg.TelegramBotToken != "" {
		bot, err = telegram.NewBotService(cfg.TelegramBotToken, s, s)
		if err != nil {
			logging.Error().Err(err).Msg("telegram bot disabled")
		} else {
			hubOpts = append(hubOpts, chathub.WithNotifier(bot.Notifier(s)))
		}
	}

	hub := chathub.NewManagerService(s, hubOpts...)
	if err := hub.Start(ctx); err != nil {
		logging.Fatal().Err(err).Msg("failed to start chat hub")
	}
	if bot != nil {
		go bot.Run(ctx)
	}

	opts := []handler.Option{
		handler.WithAllowedOrigins(cfg.AllowedOrigins),
		handler.WithSecureCookies(cfg.SecureCookies),
		setupInsights(cfg, s),
	}
	if cfg.OMDbAPIKey != "" {
		opts = append(opts, handler.WithCatalog(catalog.NewService(catalog.NewOMDbClient(cfg.OMDbAPIKey), s)))
	} else {
		logging.Warn().Msg("OMDB_API_KEY not set, movie catalog disabled")
	}
	if cfg.GoogleClientID != "" {
		opts = append(opts, handler.WithGoogleLogin(auth.NewGoogleVerifier(cfg.GoogleClientID)))
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	h := handler.NewHandler(hub, s, auth.NewTokens(cfg.JWTSecret), opts...)

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           cors(h.Router()),
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("http server failed")
		}
	}()
	logging.Info().Str("addr", cfg.Addr).Msg("http server listening")

	<-ctx.Done()
	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("http server shutdown")
	}
	hub.Shutdown()
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
