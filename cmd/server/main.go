package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"rubkoff/assistant/config"
	"rubkoff/assistant/internal/api"
	"rubkoff/assistant/internal/catalog"
	"rubkoff/assistant/internal/database"
	"rubkoff/assistant/internal/gpt"
	"rubkoff/assistant/internal/matching"
	"rubkoff/assistant/internal/scheduler"
	"rubkoff/assistant/internal/telegram"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.WithError(err).Fatal("Failed to create database directory")
		}
	}
	logger.Infof("Using database at: %s", cfg.Database.Path)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	gormDB, err := gorm.Open(sqlite.Open(cfg.Database.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to open catalog writer connection")
	}

	queue := catalog.NewHouseQueue(cfg.Catalog.QueueSize, logger)
	processor := catalog.NewBatchProcessor(gormDB, queue, cfg, logger)
	processor.Start()
	queue.Start()

	seedCatalogIfEmpty(db, queue, cfg, logger)

	engine, err := matching.NewEngine(matching.DefaultWeights())
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize matching engine")
	}

	var generator gpt.Generator
	if cfg.Recommendation.MockMode || cfg.OpenAI.APIKey == "" {
		logger.Info("Narrative generation running in mock mode")
		generator = gpt.NewMockGenerator(cfg.Recommendation.MockSeed)
	} else {
		generator = gpt.NewClient(&cfg.OpenAI, logger)
	}

	notifier := telegram.NewService(&cfg.Telegram, logger)

	maintenance := scheduler.NewScheduler(db, logger)
	maintenance.Start()

	handler := api.NewHandler(db, engine, generator, notifier, queue, cfg, logger)

	router := gin.Default()
	router.Use(cors.Default())
	api.SetupRoutes(router, handler)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("Shutting down")
		maintenance.Stop()
		queue.Close()
		processor.Stop()
		db.Close()
		os.Exit(0)
	}()

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}

// seedCatalogIfEmpty pushes the bundled seed file through the
// ingestion queue on first start. A missing seed file is not fatal;
// the catalog can be filled later via the refresh endpoint.
func seedCatalogIfEmpty(db *database.Database, queue *catalog.HouseQueue, cfg *config.Config, logger *logrus.Logger) {
	count, err := db.CountHouses()
	if err != nil {
		logger.WithError(err).Error("Failed to count houses")
		return
	}
	if count > 0 {
		return
	}

	houses, err := catalog.LoadHousesFromFile(cfg.Catalog.SeedPath)
	if err != nil {
		logger.WithError(err).Warn("Failed to load catalog seed")
		return
	}

	if err := queue.Push(houses); err != nil {
		logger.WithError(err).Error("Failed to enqueue catalog seed")
		return
	}
	logger.WithField("houses", len(houses)).Info("Seeding catalog")
}
