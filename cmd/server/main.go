package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"thermotrack/internal/cache"
	"thermotrack/internal/config"
	"thermotrack/internal/database"
	"thermotrack/internal/handler"
	"thermotrack/internal/metrics"
	"thermotrack/internal/queue"
	"thermotrack/internal/repository"
	"thermotrack/internal/service"
	"thermotrack/pkg/logger"
	"thermotrack/pkg/utils"
)

const serviceName = "thermotrack"

func main() {
	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg := logger.New(logger.Config{
		ServiceName: serviceName,
		Environment: cfg.Server.Environment,
		Level:       cfg.Server.LogLevel,
	})
	logg.Info("configuration loaded", "env", cfg.Server.Environment)

	// 2. Initialize JWT utilities with config
	utils.InitJWT(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// 3. Initialize database connection
	db, err := database.Connect(cfg, logg)
	if err != nil {
		logg.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			logg.Error("migration failed", "error", err)
			os.Exit(1)
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logg.Error("database handle unavailable", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	// 4. Initialize repositories and the latest-reading cache
	repos := repository.New(db)

	var latest cache.LatestReadings = cache.Noop{}
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			logg.Warn("redis unavailable, latest readings will not be cached", "error", err)
		} else {
			defer client.Close()
			latest = cache.NewRedisLatestReadings(client, cfg.Redis.TTL, cfg.Redis.Prefix, logg)
		}
	}

	// 5. Initialize services
	access := service.NewAccessService(repos, cfg.Access.ElevatedRoles)
	authService := service.NewAuthService(repos, logg)
	readingService := service.NewReadingService(repos, access, service.NewThresholdPolicy(cfg.Thresholds), latest, logg)
	workerService := service.NewWorkerService(repos.Devices, cfg.Liveness.Interval, cfg.Liveness.OfflineAfter, logg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Bootstrap.Enabled() {
		if err := authService.EnsureAdmin(ctx, cfg.Bootstrap); err != nil {
			logg.Error("admin bootstrap failed", "error", err)
			os.Exit(1)
		}
	}

	// 6. Start background workers
	go workerService.Start(ctx)
	if cfg.AMQP.Enabled {
		consumer := queue.NewConsumer(cfg.AMQP, readingService, logg)
		go consumer.Run(ctx)
	}

	// 7. Setup Gin mode and metrics
	gin.SetMode(cfg.Server.GinMode)
	metrics.MustRegister(serviceName)

	// 8. Setup router
	r := handler.NewRouter(cfg, handler.Services{
		Auth:          authService,
		Access:        access,
		Rooms:         service.NewRoomService(repos, access, logg),
		Devices:       service.NewDeviceService(repos, access, latest),
		APIKeys:       service.NewDeviceAPIKeyService(repos, access),
		Readings:      readingService,
		Requests:      service.NewRequestService(repos, access, logg),
		Notifications: service.NewNotificationService(repos, access),
		Health:        sqlDB.PingContext,
	}, logg)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 9. Setup graceful shutdown
	go func() {
		logg.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logg.Info("shutting down server")

	// Cancel background workers
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("forced shutdown", "error", err)
	}
	logg.Info("server exited")
}
