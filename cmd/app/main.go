package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdsingh/skybook/config"
	"github.com/gdsingh/skybook/internal/bootstrap"
	"github.com/gdsingh/skybook/internal/cache"
	"github.com/gdsingh/skybook/internal/kafka"
	"github.com/gdsingh/skybook/internal/pgdb"
	"github.com/gdsingh/skybook/internal/repository"
	"github.com/gdsingh/skybook/internal/service/booking"
	"github.com/gdsingh/skybook/internal/service/reset"
	"github.com/gdsingh/skybook/internal/service/users"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgdb.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := pgdb.Migrate(ctx, pool); err != nil {
		log.Fatalf("apply schema: %v", err)
	}

	executor := pgdb.NewExecutor(
		pool,
		cfg.Database.Pool.AcquireRetries,
		time.Duration(cfg.Database.Pool.RetryDelaySeconds)*time.Second,
		cfg.Database.Pool.BatchSize,
	)

	if cfg.Database.SeedDemo {
		if err := pgdb.SeedDemoData(ctx, executor); err != nil {
			log.Fatalf("seed demo data: %v", err)
		}
	}

	redisCache := cache.NewRedis(cfg.Redis)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool, executor)
	userRepo := repository.NewUserRepository(pool)
	tokenRepo := repository.NewTokenRepository(pool, executor)

	bookingService := booking.NewBookingService(
		bookingRepo,
		flightRepo,
		redisCache,
		producer,
		cfg.Kafka.NotificationsTopic,
		time.Duration(cfg.Booking.SearchCacheTTLSeconds)*time.Second,
		cfg.Booking.PNRAttempts,
	)
	resetService := reset.NewResetService(
		tokenRepo,
		userRepo,
		producer,
		cfg.Kafka.NotificationsTopic,
		time.Duration(cfg.Reset.TokenTTLMinutes)*time.Minute,
		cfg.Reset.RateLimit,
		time.Duration(cfg.Reset.RateWindowMinutes)*time.Minute,
		cfg.Reset.LinkBase,
	)
	sessionStore := users.NewRedisSessionStore(redisCache.Client())
	userService := users.NewUserService(userRepo, sessionStore, time.Duration(cfg.Session.TTLHours)*time.Hour)

	if err := bootstrap.Run(ctx, cfg, pool, bookingService, resetService, userService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
