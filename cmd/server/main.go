package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feed-export-service/config"
	"feed-export-service/internal/api"
	"feed-export-service/internal/broker"
	"feed-export-service/internal/dyngroup"
	"feed-export-service/internal/export"
	"feed-export-service/internal/redisclient"
	"feed-export-service/internal/searcher"
	"feed-export-service/internal/service"
	"feed-export-service/internal/util"
	"feed-export-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, cfg.Export.ShopKey); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting feed export service")

	if !cfg.Export.Active {
		log.Fatal("Export is disabled for this shop")
	}
	if cfg.Export.ShopKey == "" {
		log.Fatal("SHOP_KEY must be configured")
	}

	tp, err := util.InitTracer("feed-export-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := searcher.NewPostgres(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Export.ShopKey)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	ctx := context.Background()

	root, err := db.GetCategory(ctx, cfg.Export.NavigationCategoryID)
	if err != nil {
		log.Fatalf("Failed to load navigation root category: %v", err)
	}
	groups, err := db.GetCustomerGroups(ctx)
	if err != nil {
		log.Fatalf("Failed to load customer groups: %v", err)
	}

	exportCtx := export.NewContext(cfg.Export.ShopKey, *root, groups, cfg.Export.CrossSellCategories)
	exportCtx.SalesChannelID = cfg.Export.SalesChannelID
	exportCtx.LanguageID = cfg.Export.LanguageID
	exportCtx.CurrencyID = cfg.Export.CurrencyID
	exportCtx.DomainPrefix = cfg.Export.DomainPrefix
	exportCtx.IntegrationMode = export.IntegrationMode(cfg.Export.IntegrationMode)
	exportCtx.MainVariantMode = export.MainVariantMode(cfg.Export.MainVariantMode)
	exportCtx.AdvancedPricing = export.AdvancedPricingMode(cfg.Export.AdvancedPricingMode)
	exportCtx.ExportZeroPriced = cfg.Export.ExportZeroPriced
	exportCtx.ShowOutOfStock = cfg.Export.ShowOutOfStock

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicExport)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	cache := dyngroup.New(redisClient, cfg.Export.ShopKey,
		time.Duration(cfg.Export.StreamTTLSeconds)*time.Second,
		time.Duration(cfg.Export.GeneralTTLSeconds)*time.Second)

	exportService := service.NewExportService(db, cache, export.JSONFeedWriter{}, eventPublisher, exportCtx, cfg.Export.PipelineWorkers)

	warmer := dyngroup.NewWarmer(cache, db, cfg.Export.WarmupPageSize)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	warmupConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicExport, cfg.Kafka.ConsumerGroup)
	warmupWorker := worker.NewWarmupWorker(warmupConsumer, warmer, eventPublisher, cfg.Export.ShopKey)
	go func() {
		if err := warmupWorker.Start(workerCtx); err != nil {
			log.Printf("Warm-up worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(exportService, warmupWorker)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	warmupWorker.Stop()

	log.Println("Server exited")
}
