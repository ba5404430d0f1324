package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/munero-platform/analytics-core-be/internal/core/export"
	"github.com/munero-platform/analytics-core-be/internal/core/llm"
	"github.com/munero-platform/analytics-core-be/internal/handlers"
	"github.com/munero-platform/analytics-core-be/internal/services"
	"github.com/munero-platform/analytics-core-be/internal/shared/config"
	"github.com/munero-platform/analytics-core-be/internal/shared/database"
	"github.com/munero-platform/analytics-core-be/internal/shared/utils"
)

func main() {
	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger()
	log.Printf("🚀 Starting analytics-api on port %s", cfg.Port)

	// Init database
	db := database.NewDB(cfg.DatabaseURL, cfg.DBDialect, cfg.SQLTimeoutSeconds)
	defer db.Close()

	// Schema snapshot for the prompt builder, refreshed hourly
	schemaCache := llm.NewSchemaCache(db)
	schemaCache.Start()
	defer schemaCache.Stop()

	// Init LLM service (multi-provider support)
	llmService := llm.NewService(schemaCache, cfg.LLMTimeoutSeconds)

	// Init services
	dashboardService := services.NewDashboardService(db, cfg.AnomalyThreshold)
	chatService := services.NewChatService(db, llmService, cfg.ChatRowLimit)
	exportService := export.NewService(db, cfg.ExportRowLimit)

	// Init handlers
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	chatHandler := handlers.NewChatHandler(chatService)
	exportHandler := handlers.NewExportHandler(exportService)
	healthHandler := handlers.NewHealthHandler(db, llmService)

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Analytics Core API",
	})

	// Middleware
	app.Use(cors.New())

	api := app.Group("/api")

	// Health check
	api.Get("/health", healthHandler.Health)

	// Dashboard routes
	api.Post("/dashboard/trend", dashboardHandler.Trend)
	api.Post("/dashboard/headline", dashboardHandler.Headline)
	api.Get("/dashboard/filter-options", dashboardHandler.FilterOptions)

	// Chat routes
	api.Post("/chat", chatHandler.Chat)
	api.Post("/chat/export-csv", exportHandler.ExportCSV)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("✅ analytics-api running at :%s", port)
	log.Fatal(app.Listen(":" + port))
}
