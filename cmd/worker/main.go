package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdsingh/skybook/config"
	"github.com/gdsingh/skybook/internal/email"
	"github.com/gdsingh/skybook/internal/kafka"
	"github.com/gdsingh/skybook/internal/pgdb"
	"github.com/gdsingh/skybook/internal/repository"
	"github.com/gdsingh/skybook/internal/service/reset"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgdb.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	executor := pgdb.NewExecutor(
		pool,
		cfg.Database.Pool.AcquireRetries,
		time.Duration(cfg.Database.Pool.RetryDelaySeconds)*time.Second,
		cfg.Database.Pool.BatchSize,
	)

	tokenRepo := repository.NewTokenRepository(pool, executor)
	userRepo := repository.NewUserRepository(pool)
	resetService := reset.NewResetService(
		tokenRepo,
		userRepo,
		nil,
		"",
		time.Duration(cfg.Reset.TokenTTLMinutes)*time.Minute,
		cfg.Reset.RateLimit,
		time.Duration(cfg.Reset.RateWindowMinutes)*time.Minute,
		cfg.Reset.LinkBase,
	)

	consumer := kafka.NewConsumer(cfg.Kafka)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, emailSender.Send); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	cleanupTicker := time.NewTicker(time.Duration(cfg.Worker.CleanupSweepMinutes) * time.Minute)
	defer cleanupTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-cleanupTicker.C:
			removed, err := resetService.CleanupExpired(ctx)
			if err != nil {
				log.Printf("cleanup reset tokens error: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("removed %d stale reset tokens", removed)
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
