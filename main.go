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

	"libercare/aggregator"
	"libercare/api"
	"libercare/cache"
	"libercare/common"
	"libercare/config"
	"libercare/kafka"
	"libercare/orchestrator"
	"libercare/search"
	"libercare/state"
	"libercare/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	catalog, err := config.LoadCatalog()
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	if lang := types.Language(cfg.DefaultLanguage); catalog.Resolve(lang) == lang {
		catalog.DefaultLanguage = lang
	} else {
		log.Printf("Warning: DEFAULT_LANGUAGE %q not supported, using %q", cfg.DefaultLanguage, catalog.DefaultLanguage)
	}

	store, closeStore := initializeCache(cfg)
	defer closeStore()

	searcher := search.NewClient(cfg.SearchAPIKey,
		search.WithBaseURL(cfg.SearchURL),
		search.WithHTTPClient(&http.Client{Timeout: cfg.SearchTimeout}),
	)
	agg := aggregator.New(searcher, store, catalog, aggregator.WithCacheWindow(cfg.CacheWindow))

	stateManager := state.NewManager()
	opts := []orchestrator.Option{orchestrator.WithWindow(cfg.CacheWindow)}
	if s3c := initializeS3(cfg); s3c != nil {
		opts = append(opts, orchestrator.WithPublisher(s3c, cfg.S3.Bucket, cfg.S3.Prefix))
	}
	refresher := orchestrator.NewRefresher(agg, stateManager, catalog, opts...)

	restoreCtx, cancelRestore := context.WithTimeout(context.Background(), 30*time.Second)
	refresher.Restore(restoreCtx)
	cancelRestore()

	scheduler := orchestrator.NewScheduler(refresher)
	if err := scheduler.Start(cfg.RefreshCron); err != nil {
		log.Fatalf("scheduler: %v", err)
	}

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	consumer := initializeKafka(consumerCtx, cfg, refresher)

	gin.SetMode(cfg.GinMode)
	router := api.NewRouter(api.Services{
		Articles: refresher,
		Search:   agg,
		Refresh:  refresher,
		Status:   stateManager,
		Resolve:  catalog.Resolve,
	})
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting API server on %s", server.Addr)
		log.Println("API endpoints available:")
		log.Println("  GET  /")
		log.Println("  GET  /api/health")
		log.Println("  GET  /api/articles?lang=")
		log.Println("  GET  /api/search?q=&lang=")
		log.Println("  POST /api/refresh?lang=")
		log.Println("  GET  /api/status")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	if err := scheduler.Stop(ctx); err != nil {
		log.Printf("Scheduler stop error: %v", err)
	}
	if consumer != nil {
		stopConsumer()
		if err := consumer.Close(); err != nil {
			log.Printf("Kafka consumer close error: %v", err)
		}
	}
	log.Println("Server stopped")
}

// initializeCache uses Redis when REDIS_ADDR is set and falls back to the in-process store
func initializeCache(cfg *config.Config) (cache.Store, func()) {
	if !cfg.RedisEnabled() {
		log.Println("Redis not configured; using in-memory search cache")
		return cache.NewMemoryStore(), func() {}
	}
	rs, err := cache.NewRedisStore(cfg.Redis)
	if err != nil {
		log.Printf("Warning: failed to connect to Redis: %v (using in-memory cache)", err)
		return cache.NewMemoryStore(), func() {}
	}
	log.Printf("Using Redis search cache at %s", cfg.Redis.Addr)
	return rs, func() { _ = rs.Close() }
}

// initializeS3 returns the S3 client when S3_BUCKET is set; uploads are skipped otherwise
func initializeS3(cfg *config.Config) *common.S3 {
	if !cfg.S3Enabled() {
		log.Printf("S3 not configured; skipping snapshot uploads")
		return nil
	}
	client, err := common.NewS3(context.Background(), cfg.S3)
	if err != nil {
		log.Printf("Warning: failed to init S3 client: %v (uploads disabled)", err)
		return nil
	}
	log.Printf("Publishing snapshots to S3 bucket %q with prefix %q", cfg.S3.Bucket, cfg.S3.Prefix)
	return client
}

// initializeKafka starts the refresh request consumer when brokers are configured
func initializeKafka(ctx context.Context, cfg *config.Config, refresher *orchestrator.Refresher) *kafka.Consumer {
	if !cfg.KafkaEnabled() {
		return nil
	}
	consumer, err := kafka.NewRefreshConsumer(cfg.Kafka, refresher)
	if err != nil {
		log.Printf("Failed to create Kafka consumer: %v", err)
		return nil
	}
	// Start blocks until the first session is joined
	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Printf("Failed to start Kafka consumer: %v", err)
		}
	}()
	return consumer
}
