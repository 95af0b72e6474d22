package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkazakov/invest-aggregator/internal/api"
	"github.com/dkazakov/invest-aggregator/internal/cache"
	"github.com/dkazakov/invest-aggregator/internal/config"
	"github.com/dkazakov/invest-aggregator/internal/database"
	"github.com/dkazakov/invest-aggregator/internal/invest"
	"github.com/dkazakov/invest-aggregator/internal/kafka"
	"github.com/dkazakov/invest-aggregator/internal/sched"
	"github.com/dkazakov/invest-aggregator/internal/tinkoff"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	migrationsPath, err := filepath.Abs("db/migrations")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve migrations path")
	}
	if err := db.MigrateUp(migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	snapshotCache := cache.NewRedis(rdb, cfg.Redis.KeyPrefix)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var events invest.EventPublisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		events = producer

		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, db, log.Logger)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				log.Error().Err(err).Msg("audit consumer exited")
			}
		}()
	} else {
		log.Warn().Msg("kafka disabled by config, events will not be published")
	}

	client := tinkoff.NewClient(cfg.Tinkoff.APIURL)
	service := invest.NewService(client, db, db, snapshotCache, events, log.Logger)

	if cfg.Sync.Schedule != "" {
		scheduler := sched.New(log.Logger)
		job := sched.NewPortfolioSyncJob(service, db, log.Logger)
		if err := scheduler.AddJob(cfg.Sync.Schedule, job); err != nil {
			log.Fatal().Err(err).Msg("failed to register sync job")
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	handler := api.NewHandler(service, db, log.Logger)
	router := api.SetupRoutes(handler)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("invest aggregator started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
}
