package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"os"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"

	"mailpilot/internal/ai"
	"mailpilot/internal/browser"
	"mailpilot/internal/config"
	"mailpilot/internal/enrich"
	"mailpilot/internal/gmail"
	"mailpilot/internal/handler"
	"mailpilot/internal/logger"
	"mailpilot/internal/repository"
	"mailpilot/internal/repository/memory"
	"mailpilot/internal/repository/postgres"
	"mailpilot/internal/router"
	"mailpilot/internal/service"
	"mailpilot/internal/sse"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Config validation failed:", err)
	}

	appLogger := logger.New()

	var accountRepo repository.AccountRepository
	var categoryRepo repository.CategoryRepository
	var messageRepo repository.MessageRepository

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		defer db.Close()

		if err := postgres.InitializeDatabase(db); err != nil {
			log.Fatal("Failed to initialize database:", err)
		}

		accountRepo = postgres.NewPostgresAccountRepository(db)
		categoryRepo = postgres.NewPostgresCategoryRepository(db)
		messageRepo = postgres.NewPostgresMessageRepository(db)
		appLogger.Info("Using PostgreSQL repositories")
	} else {
		accountRepo = memory.NewInMemoryAccountRepository()
		categoryRepo = memory.NewInMemoryCategoryRepository()
		messageRepo = memory.NewInMemoryMessageRepository()
		appLogger.Info("Using in-memory repositories")
	}

	aiClient := ai.NewClient(cfg.AIProvider, cfg.AIKey, appLogger)
	provider := gmail.NewProvider(accountRepo, cfg, appLogger)
	summarizer := enrich.NewSummarizer(aiClient, cfg.SummaryModel, appLogger)
	categorizer := enrich.NewCategorizer(aiClient, cfg.CategoryModel, appLogger)

	accountService := service.NewAccountService(accountRepo, categoryRepo, messageRepo, loadCategorySeeds(appLogger), appLogger)
	categoryService := service.NewCategoryService(categoryRepo, messageRepo, appLogger)
	messageService := service.NewMessageService(messageRepo, accountRepo, categoryRepo, provider, appLogger)
	syncService := service.NewSyncService(accountRepo, categoryRepo, messageRepo, provider, summarizer, categorizer, cfg.SyncBuffer, appLogger)

	automation := browser.NewChromeAutomation(context.Background(), appLogger)
	defer automation.Shutdown()
	executor := service.NewBrowserExecutor(automation, aiClient, cfg.UnsubscribeModel, cfg.BrowserNavTimeout, appLogger)
	unsubscribeService := service.NewUnsubscribeService(messageRepo, aiClient, cfg.UnsubscribeModel, executor, appLogger)

	sseManager := sse.NewManager(appLogger)
	defer sseManager.Close()

	syncJob := sse.NewSyncJob(syncService, accountRepo, messageRepo, sseManager, cfg.SyncInterval, appLogger)
	go syncJob.Start()
	defer syncJob.Stop()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	authHandler := handler.NewAuthHandler(accountService, cfg, appLogger)
	accountHandler := handler.NewAccountHandler(accountService, syncService, appLogger)
	categoryHandler := handler.NewCategoryHandler(categoryService, appLogger)
	messageHandler := handler.NewMessageHandler(messageService, sseManager, appLogger)
	unsubscribeHandler := handler.NewUnsubscribeHandler(unsubscribeService, appLogger)

	router.SetupRoutes(e, authHandler, accountHandler, categoryHandler, messageHandler, unsubscribeHandler)

	appLogger.Info("Starting server on port", cfg.Port)
	if err := e.Start(":" + cfg.Port); err != nil {
		appLogger.Error("Server stopped:", err)
	}
}

// loadCategorySeeds reads the starter categories granted to new owners.
// A missing or malformed file just means nobody gets defaults.
func loadCategorySeeds(logger *logger.Logger) []service.CategorySeed {
	data, err := os.ReadFile("categories.json")
	if err != nil {
		logger.Warn("Failed to read categories.json:", err)
		return nil
	}

	var seeds []service.CategorySeed
	if err := json.Unmarshal(data, &seeds); err != nil {
		logger.Error("Failed to parse categories.json:", err)
		return nil
	}
	return seeds
}
