// Package main - точка входа сервера CampusConnect Collab Hub.
//
// Сервис соединяет две стороны кампусной коллаборации:
// - Matching: подбор напарников по интересам, навыкам и академическому этапу
// - Chat: сессии переписки с журналом сообщений и realtime-доставкой
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries)
// - Infrastructure: PostgreSQL, Redis, event bus
// - Interface: REST API и WebSocket-потоки сессий
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/campusconnect/collab-hub/config"
	"github.com/campusconnect/collab-hub/internal/application/command"
	"github.com/campusconnect/collab-hub/internal/application/query"
	"github.com/campusconnect/collab-hub/internal/domain/chat"
	"github.com/campusconnect/collab-hub/internal/domain/matching"
	"github.com/campusconnect/collab-hub/internal/domain/profile"
	"github.com/campusconnect/collab-hub/internal/domain/shared"
	"github.com/campusconnect/collab-hub/internal/infrastructure/messaging"
	"github.com/campusconnect/collab-hub/internal/infrastructure/persistence/postgres"
	"github.com/campusconnect/collab-hub/internal/infrastructure/persistence/redis"
	httpserver "github.com/campusconnect/collab-hub/internal/interface/http"
	"github.com/campusconnect/collab-hub/pkg/logger"
	"github.com/campusconnect/collab-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	// .env удобен в разработке; в продакшене переменные приходят из окружения.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting CampusConnect Collab Hub",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	var dbConn *postgres.Connection
	err = retry.DatabaseRetrier().Do(ctx, func(ctx context.Context) error {
		var connErr error
		dbConn, connErr = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		if connErr != nil {
			return connErr
		}
		return dbConn.Ping(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.RunMigrations {
		log.Info("running database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		status, err := migrator.Status(ctx)
		if err != nil {
			log.Warn("failed to get migration status", "error", err)
		} else {
			appliedCount := 0
			for _, m := range status {
				if m.IsApplied {
					appliedCount++
				}
			}
			log.Info("migrations completed", "applied", appliedCount, "total", len(status))
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var profileCache profile.Cache
	var broadcaster chat.Broadcaster

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		err = retry.RedisRetrier().Do(ctx, func(context.Context) error {
			var cacheErr error
			redisCache, cacheErr = redis.NewCache(redisCfg)
			return cacheErr
		})
		if err != nil {
			log.Warn("failed to connect to Redis, degrading to in-process mode", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			profileCache = redis.NewProfileCache(redisCache)
			broadcaster = redis.NewSessionBroadcaster(redisCache)
			log.Info("Redis connection established")
		}
	}

	// Без Redis realtime-доставка работает в пределах одного инстанса.
	if broadcaster == nil {
		broadcaster = messaging.NewLocalBroadcaster()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...", "mode", cfg.EventBus.Mode)

	localBusConfig := messaging.DefaultInMemoryEventBusConfig()
	localBusConfig.Logger = log
	localBusConfig.AsyncMode = cfg.EventBus.AsyncMode
	localBusConfig.WorkerPoolSize = cfg.EventBus.WorkerPoolSize

	var eventBus shared.EventBus
	if cfg.EventBus.Mode == "redis" && redisCache != nil {
		redisBus, err := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         messaging.NewCacheRedisClient(redisCache),
			ChannelName:    cfg.EventBus.ChannelName,
			LocalBusConfig: localBusConfig,
			Logger:         log,
		})
		if err != nil {
			return fmt.Errorf("failed to create redis event bus: %w", err)
		}
		eventBus = redisBus
	} else {
		eventBus = messaging.NewInMemoryEventBus(localBusConfig)
	}
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// Аудит доменных событий: единственный штатный подписчик.
	if err := eventBus.SubscribeAll(func(event shared.Event) error {
		log.Debug("domain event",
			"type", event.EventType(),
			"aggregate_id", event.AggregateID(),
		)
		return nil
	}); err != nil {
		return fmt.Errorf("failed to subscribe event auditor: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	profileRepo := postgres.NewProfileRepository(dbConn)
	chatRepo := postgres.NewChatRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ИНИЦИАЛИЗАЦИЯ APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	generator := matching.NewGenerator()

	recommendationsQuery := query.NewGetRecommendationsHandler(profileRepo, profileCache, generator, eventBus).
		WithPoolCacheTTL(cfg.Matching.PoolCacheTTL)
	listSessionsQuery := query.NewListSessionsHandler(chatRepo)
	getSessionQuery := query.NewGetSessionHandler(chatRepo)

	connectCmd := command.NewConnectHandler(profileRepo, chatRepo, eventBus)
	sendMessageCmd := command.NewSendMessageHandler(chatRepo, broadcaster, eventBus)
	shareFileCmd := command.NewShareFileHandler(chatRepo, broadcaster, eventBus)
	markReadCmd := command.NewMarkReadHandler(chatRepo, broadcaster, eventBus)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. СОЗДАНИЕ HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.EnableCORS = cfg.HTTP.EnableCORS
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute

	httpDeps := httpserver.Dependencies{
		GetRecommendationsHandler: recommendationsQuery,
		ListSessionsHandler:       listSessionsQuery,
		GetSessionHandler:         getSessionQuery,
		ConnectHandler:            connectCmd,
		SendMessageHandler:        sendMessageCmd,
		ShareFileHandler:          shareFileCmd,
		MarkReadHandler:           markReadCmd,
		Broadcaster:               broadcaster,
		Logger:                    logger.Default(),
		HealthChecker:             &healthChecker{db: dbConn, cache: redisCache},
	}

	httpServer := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. ЗАПУСК И GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", "address", httpServer.Address())
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	log.Info("CampusConnect Collab Hub is running", "http_address", httpServer.Address())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	case <-ctx.Done():
		log.Info("root context canceled")
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shut down HTTP server gracefully", "error", err)
		return err
	}

	log.Info("shutdown complete")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}

// healthChecker проверяет доступность хранилищ для health-эндпоинтов.
type healthChecker struct {
	db    *postgres.Connection
	cache *redis.Cache
}

func (h *healthChecker) Check(ctx context.Context) httpserver.HealthStatus {
	status := httpserver.HealthStatus{
		Healthy: true,
		Ready:   true,
		Details: make(map[string]string),
	}

	if err := h.db.Ping(ctx); err != nil {
		status.Healthy = false
		status.Ready = false
		status.Details["database"] = err.Error()
	} else {
		status.Details["database"] = "ok"
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			// Redis деградирует мягко: сервис жив, но не готов по кешу.
			status.Details["redis"] = err.Error()
		} else {
			status.Details["redis"] = "ok"
		}
	}

	return status
}
