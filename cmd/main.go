package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"alerting-destinations/internal/api"
	"alerting-destinations/internal/clusterapi"
	"alerting-destinations/internal/config"
	"alerting-destinations/internal/db"
	"alerting-destinations/internal/kafka"
	"alerting-destinations/internal/logging"
	"alerting-destinations/internal/notification"
	"alerting-destinations/internal/search"
	"alerting-destinations/internal/services"
	"alerting-destinations/internal/settings"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level, logging.Options{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	dbConn, err := db.New(cfg.DB.DSN)
	if err != nil {
		logger.Errorf("Failed to connect to database: %v", err)
		log.Fatalf("Database connection failed: %v", err)
	}
	defer dbConn.Close()
	if err := dbConn.Ping(ctx); err != nil {
		log.Fatalf("Database ping failed: %v", err)
	}
	if err := dbConn.EnsureSchema(ctx); err != nil {
		log.Fatalf("Database schema setup failed: %v", err)
	}

	searchClient, err := search.New(cfg.OpenSearch.Addresses, cfg.OpenSearch.Username, cfg.OpenSearch.Password)
	if err != nil {
		log.Fatalf("OpenSearch client setup failed: %v", err)
	}

	// Dynamic settings
	registry := settings.NewRegistry()
	allowList := settings.NewAllowList(registry)
	var wg sync.WaitGroup
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
		defer rdb.Close()
		source := settings.NewRedisSource(rdb, cfg.Redis.SettingsKey, cfg.Redis.SettingsTopic, registry, logger)
		if err := source.Load(ctx); err != nil {
			logger.Warnf("Using default settings: %v", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := source.Watch(ctx, nil); err != nil {
				logger.Errorf("Settings watcher stopped: %v", err)
			}
		}()
	}
	logger.Infof("Destination allow list: %v", allowList.Snapshot())

	// Config change events and the search index projection
	var publisher services.Publisher
	var projection *notification.Service
	if len(cfg.Kafka.Brokers) > 0 {
		projection = notification.New(dbConn, searchClient, logger, notification.Config{
			Index:        cfg.OpenSearch.NotificationIndex,
			QueueSize:    cfg.Projection.QueueSize,
			MaxWorkers:   cfg.Projection.MaxWorkers,
			MaxAttempts:  cfg.Projection.MaxAttempts,
			RetryBackoff: cfg.Projection.RetryBackoff,
		})
		projection.Start(&wg)

		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			log.Fatalf("Kafka producer setup failed: %v", err)
		}
		defer producer.Close()
		publisher = producer

		consumer, err := kafka.NewConsumer(kafka.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		}, projection, logger)
		if err != nil {
			log.Fatalf("Kafka consumer setup failed: %v", err)
		}
		defer consumer.Close()
		consumer.Start(ctx, &wg)
		logger.Infof("Kafka consumer initialized with topic: %s", cfg.Kafka.Topic)
	} else {
		logger.Warnf("KAFKA_BROKERS not set, search index projection disabled")
	}

	deps := services.Deps{
		Store:             dbConn,
		Searcher:          searchClient,
		AllowList:         allowList,
		Publisher:         publisher,
		Logger:            logger,
		LegacyIndex:       cfg.OpenSearch.LegacyIndex,
		NotificationIndex: cfg.OpenSearch.NotificationIndex,
		Resort:            cfg.Search.Resort,
	}
	proxy := clusterapi.New(searchClient.Transport(), clusterapi.DefaultPayloads(), cfg.ClusterAPI.RatePerSecond, cfg.ClusterAPI.Burst, logger)

	// Start API server
	handler := api.NewHandler(services.NewEmailAccountService(deps), services.NewEmailGroupService(deps), proxy, logger)
	router := api.NewRouter(handler, logger, api.RouterConfig{
		BasePath:       cfg.API.BasePath,
		LegacyBasePath: cfg.API.LegacyBasePath,
	})
	srv := &http.Server{Addr: cfg.API.Port, Handler: router}
	go func() {
		logger.Infof("Starting API server on %s", cfg.API.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("API server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Infof("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("API server shutdown failed: %v", err)
	}
	if projection != nil {
		projection.Stop()
	}
	wg.Wait()
}
