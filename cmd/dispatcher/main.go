package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"workshop-dispatch/internal/allocator"
	"workshop-dispatch/internal/backend"
	"workshop-dispatch/internal/configs"
	httpdelivery "workshop-dispatch/internal/delivery/http"
	"workshop-dispatch/internal/delivery/kafka"
	"workshop-dispatch/internal/repository"
	"workshop-dispatch/internal/repository/postgres"
	"workshop-dispatch/internal/service"
)

// @title workshop dispatch service
// @version 1.0
// @description Plans gift allocations for selected children, queues them into delivery groups on the workshop backend and drives each group from PENDING to DONE or FAILED. Dispatch requests are also accepted from kafka; lifecycle events are published back.

// @host localhost:8081
// @basePath /

func main() {
	_ = godotenv.Load()
	cfg, err := configs.LoadConfig()
	if err != nil {
		logrus.Fatalf("config load: %s", err)
	}
	logrus.Print("config parsed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := repository.Options{CacheTTL: cfg.CacheTTL, CacheShards: cfg.CacheShards}
	var repo *repository.Repository
	if cfg.JournalDriver == "memory" {
		repo = repository.NewMemoryRepository(opts)
		logrus.Warn("journal kept in memory, partial groups cannot be resumed after restart")
	} else {
		db, err := postgres.ConnectDB(postgres.Config{URL: cfg.PgDSN()})
		if err != nil {
			logrus.Fatalf("postgres connect: %s", err)
		}
		defer func() {
			if derr := db.Close(); derr != nil {
				logrus.Errorf("db close: %v", derr)
			}
		}()
		if err := postgres.Migrate(db); err != nil {
			logrus.Fatalf("postgres migrate: %s", err)
		}
		logrus.Print("connected to postgres")
		repo = repository.NewRepository(db, opts)
	}

	client, err := backend.New(backend.Config{
		BaseURL: cfg.BackendURL,
		StaffID: cfg.StaffID,
		Timeout: cfg.BackendTimeout,
	})
	if err != nil {
		logrus.Fatalf("backend client: %s", err)
	}

	strategy, err := allocator.New(cfg.AllocationStrategy, client, allocator.WithMaxRank(cfg.MaxWishRank))
	if err != nil {
		logrus.Fatalf("allocation strategy: %s", err)
	}
	logrus.WithField("strategy", strategy.Name()).Print("allocation strategy selected")

	var svcOpts []service.Option
	var pub *kafka.Publisher
	if cfg.KafkaEnabled {
		pub, err = kafka.NewPublisher(cfg.KafkaBrokersSlice(), cfg.KafkaEventTopic)
		if err != nil {
			logrus.Fatalf("kafka publisher: %s", err)
		}
		defer func() {
			if cerr := pub.Close(); cerr != nil {
				logrus.Errorf("publisher close: %v", cerr)
			}
		}()
		svcOpts = append(svcOpts, service.WithEvents(pub))
	}
	svc := service.NewService(repo, client, strategy, svcOpts...)

	warmCtx, warmCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := svc.Refresh(warmCtx); err != nil {
		logrus.WithError(err).Warn("initial refresh failed, snapshots load on first read")
	} else {
		logrus.Print("snapshots warmed from backend")
	}
	warmCancel()

	var wg sync.WaitGroup
	var consumer *kafka.Consumer
	if cfg.KafkaEnabled {
		consumer = kafka.NewConsumer(kafka.Config{
			Brokers:    cfg.KafkaBrokersSlice(),
			GroupID:    cfg.KafkaGroupID,
			Topic:      cfg.KafkaRequestTopic,
			DLQ:        cfg.KafkaDLQTopic,
			MaxRetries: 5,
		}, svc)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Subscribe(ctx); err != nil {
				logrus.Errorf("consumer stopped: %v", err)
				cancel()
			}
		}()
		logrus.Print("kafka subscription started")
	}

	h := httpdelivery.NewHandler(svc)
	srv := new(httpdelivery.Server)

	go func() {
		if err := srv.Run(cfg.HTTPAddr, h.InitRoutes()); err != nil {
			logrus.Errorf("http run: %v", err)
			cancel()
		}
	}()
	logrus.Printf("http server started on %s", cfg.HTTPAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	select {
	case <-quit:
		logrus.Print("shutdown signal received")
	case <-ctx.Done():
		logrus.Print("context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("http shutdown: %s", err)
	}

	cancel()
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logrus.Errorf("consumer close: %s", err)
		}
	}

	wg.Wait()
	logrus.Print("service stopped")
}
