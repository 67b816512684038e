package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/arnold/goalmate-api/internal/cache"
	"github.com/arnold/goalmate-api/internal/config"
	"github.com/arnold/goalmate-api/internal/database"
	"github.com/arnold/goalmate-api/internal/handlers"
	"github.com/arnold/goalmate-api/internal/logger"
	"github.com/arnold/goalmate-api/internal/middleware"
	"github.com/arnold/goalmate-api/internal/repository"
	"github.com/arnold/goalmate-api/internal/routes"
	"github.com/arnold/goalmate-api/internal/services"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	flag "github.com/spf13/pflag"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	port := flag.String("port", "", "listen port (overrides PORT)")
	flag.Parse()

	cfg := config.Load()
	if *port != "" {
		cfg.Port = *port
	}

	log := logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		log.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}
	log.Info("database migrated")
	if *migrateOnly {
		_ = database.Close(db)
		return
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err = cache.Connect(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.Warn("redis unavailable, analytics cache disabled", "error", err)
			redisClient = nil
		}
	}
	analyticsCache := cache.New(redisClient, "goalmate:", cfg.AnalyticsCacheTTL)

	store := repository.NewStore(db)
	analytics := services.NewAnalyticsService(store, analyticsCache, cfg.Location())
	jwt := middleware.NewJWT(cfg.JWTSecret, cfg.JWTExpiry)

	checks := map[string]handlers.CheckFunc{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if analyticsCache.Enabled() {
		checks["redis"] = analyticsCache.Ping
	}

	h := handlers.New(handlers.Deps{
		Auth:      services.NewAuthService(store),
		Goals:     services.NewGoalService(store, analytics, cfg.ProgressMaxRetries),
		Partners:  services.NewPartnerService(store),
		Analytics: analytics,
		Cache:     analyticsCache,
		JWT:       jwt,
		Checks:    checks,
		Log:       log,
	})

	app := fiber.New(fiber.Config{
		AppName: "goalmate-api",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": errorMessage(code, err)})
		},
	})
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.IsDevelopment()}))
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New())
	routes.Setup(app, h, jwt, routes.Options{AuthRateLimit: cfg.AuthRateLimit})

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server stopped", "error", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			// Stop taking requests before closing what they depend on.
			"goalmate-api": func(ctx context.Context) error {
				log.Info("graceful shutdown initiated")
				err := app.ShutdownWithContext(ctx)
				err = errors.Join(err, analyticsCache.Close(), database.Close(db))
				sentry.Flush(2 * time.Second)
				return err
			},
		},
	)

	exitCode := <-wait
	slog.Info("shutdown complete", "exit_code", exitCode)
	os.Exit(exitCode)
}

func errorMessage(code int, err error) string {
	if code >= fiber.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}
