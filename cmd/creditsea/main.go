package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	authapp "github.com/wyfcoding/creditsea/internal/auth/application"
	authpersistence "github.com/wyfcoding/creditsea/internal/auth/infrastructure/persistence"
	authhttp "github.com/wyfcoding/creditsea/internal/auth/interfaces/http"
	loanapp "github.com/wyfcoding/creditsea/internal/loan/application"
	loandomain "github.com/wyfcoding/creditsea/internal/loan/domain"
	"github.com/wyfcoding/creditsea/internal/loan/infrastructure/messaging"
	loanpersistence "github.com/wyfcoding/creditsea/internal/loan/infrastructure/persistence"
	loanhttp "github.com/wyfcoding/creditsea/internal/loan/interfaces/http"
	"github.com/wyfcoding/creditsea/pkg/cache"
	"github.com/wyfcoding/creditsea/pkg/config"
	"github.com/wyfcoding/creditsea/pkg/db"
	"github.com/wyfcoding/creditsea/pkg/idgen"
	"github.com/wyfcoding/creditsea/pkg/kvstore"
	"github.com/wyfcoding/creditsea/pkg/logger"
	"github.com/wyfcoding/creditsea/pkg/metrics"
	"github.com/wyfcoding/creditsea/pkg/middleware"
	"github.com/wyfcoding/creditsea/pkg/mq"
)

func main() {
	configPath := flag.String("config", "configs/creditsea/config.toml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "starting service",
		"service", cfg.ServiceName, "version", cfg.Version, "environment", cfg.Environment)

	m := metrics.New(cfg.ServiceName)
	if cfg.Metrics.Enabled {
		if err := m.Register(); err != nil {
			logger.Fatal(ctx, "failed to register metrics", "error", err)
		}
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Fatal(ctx, "failed to start metrics server", "error", err)
		}
	}

	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init database", "error", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(&authpersistence.UserModel{}, &kvstore.SnapshotModel{}); err != nil {
		logger.Fatal(ctx, "failed to migrate database", "error", err)
	}

	store, closeStore, err := newSnapshotStore(cfg, database)
	if err != nil {
		logger.Fatal(ctx, "failed to init snapshot store", "error", err)
	}
	if closeStore != nil {
		defer closeStore()
	}

	gen := idgen.NewSnowflake(1)

	// 身份服务
	userRepo := authpersistence.NewGormUserRepository(database.DB)
	sessionRepo := authpersistence.NewKVSessionRepository(store, authpersistence.SessionKey)
	authService := authapp.NewAuthService(userRepo, sessionRepo, gen, m)
	if err := authService.EnsureSeedUsers(ctx); err != nil {
		logger.Fatal(ctx, "failed to seed users", "error", err)
	}

	// 信贷申请服务
	appRepo, err := loanpersistence.NewSnapshotRepository(ctx, store, loanpersistence.SnapshotKey)
	if err != nil {
		logger.Fatal(ctx, "failed to init application repository", "error", err)
	}

	var publisher loandomain.EventPublisher = messaging.LoggingEventPublisher{}
	if cfg.Kafka.Enabled {
		producer, perr := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			GroupID:      cfg.Kafka.GroupID,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if perr != nil {
			logger.Fatal(ctx, "failed to create kafka producer", "error", perr)
		}
		defer producer.Close()
		publisher = messaging.NewKafkaEventPublisher(producer)
	}

	commandService := loanapp.NewCommandService(appRepo, publisher, gen, m)
	queryService := loanapp.NewQueryService(appRepo, m)

	// HTTP 服务
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinRateLimitMiddleware(middleware.NewRateLimiter(200, 100)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName})
	})

	api := router.Group("/api/v1")
	authhttp.NewHandler(authService).RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(authhttp.RequireActor(authService))
	loanhttp.NewHandler(commandService, queryService).RegisterRoutes(protected)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info(ctx, "HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info(context.Background(), "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "graceful shutdown failed", "error", err)
	}
	logger.Info(context.Background(), "server stopped")
}

// newSnapshotStore 按配置选择快照后端：redis 或 mysql
func newSnapshotStore(cfg *config.Config, database *db.DB) (kvstore.Store, func(), error) {
	switch cfg.Snapshot.Backend {
	case "redis":
		rc, err := cache.New(cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ConnTimeout:  cfg.Redis.ConnTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return kvstore.NewRedis(rc.Client()), func() { _ = rc.Close() }, nil
	case "mysql":
		return kvstore.NewGorm(database.DB), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported snapshot backend: %s", cfg.Snapshot.Backend)
	}
}
