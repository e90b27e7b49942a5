package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/chynybekuuludastan/article_generator/internal/api"
	wshub "github.com/chynybekuuludastan/article_generator/internal/api/websocket"
	"github.com/chynybekuuludastan/article_generator/internal/config"
	"github.com/chynybekuuludastan/article_generator/internal/database"
	"github.com/chynybekuuludastan/article_generator/internal/logging"
	"github.com/chynybekuuludastan/article_generator/internal/repository"
	"github.com/chynybekuuludastan/article_generator/internal/service/generator"
	"github.com/chynybekuuludastan/article_generator/internal/service/llm/providers"
	"github.com/chynybekuuludastan/article_generator/internal/service/sitesearch"
)

// @title Article Generator API
// @version 1.0
// @description API for generating SEO-compliant articles with LLM providers
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@articlegenerator.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Initialize configuration
	cfg := config.NewConfig()

	logger, err := logging.NewZapLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Connect to PostgreSQL
	db, err := database.InitPostgreSQL(cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := database.InitRedis(cfg.RedisURI)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	repos := repository.NewRepositoryFactory(db.DB, redisClient.Client)

	// Build LLM provider clients in the configured failover order
	clients := buildProviders(cfg, logger)
	if len(clients) == 0 {
		logger.Error("no LLM provider configured, generation requests will fail")
	}
	defer func() {
		for _, c := range clients {
			c.Close()
		}
	}()

	providerClients := make([]generator.ProviderClient, 0, len(clients))
	for _, c := range clients {
		providerClients = append(providerClients, c)
	}

	// Related articles come from the posts table by default. A crawl of the
	// live site covers setups where published content lives elsewhere.
	var search generator.SiteSearch = repos.PostRepository
	if cfg.SiteSearchMode == "crawl" {
		crawler, err := sitesearch.NewCrawler(cfg.SiteBaseURL, cfg.ProviderTimeout)
		if err != nil {
			log.Fatalf("Failed to initialize site crawler: %v", err)
		}
		search = crawler
	}

	perRequest := cfg.RateLimitPerMin
	if perRequest < 1 {
		perRequest = 1
	}
	service := generator.NewService(generator.ServiceOptions{
		Providers: providerClients,
		Search:    search,
		History:   repos.KeywordRepository,
		Publisher: repos.PostRepository,
		Attempts:  repos.AttemptRepository,
		RateLimit: rate.Every(time.Minute / time.Duration(perRequest)),
		Burst:     1,
		Logger:    logger,
		MaxTokens: cfg.MaxTokens,
	})

	hub := wshub.NewHub()
	go hub.Run()

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH",
	}))

	// Setup Swagger
	api.SetupSwagger(app)

	// Setup routes
	api.SetupRoutes(app, api.Dependencies{
		Repos:       repos,
		RedisClient: redisClient,
		Service:     service,
		Hub:         hub,
		Config:      cfg,
		Logger:      logger,
	})

	// Start server
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
}

// buildProviders constructs the configured LLM clients, skipping providers
// whose API key is missing.
func buildProviders(cfg *config.Config, logger *logging.ZapLogger) []providers.Client {
	var clients []providers.Client
	for _, name := range cfg.ProviderOrder {
		switch name {
		case "gemini":
			if cfg.GeminiAPIKey == "" {
				continue
			}
			client, err := providers.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, logger)
			if err != nil {
				logger.Error("failed to initialize gemini client", "error", err)
				continue
			}
			clients = append(clients, client)
		case "openai":
			if cfg.OpenAIAPIKey == "" {
				continue
			}
			client, err := providers.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
			if err != nil {
				logger.Error("failed to initialize openai client", "error", err)
				continue
			}
			clients = append(clients, client)
		case "anthropic":
			if cfg.AnthropicAPIKey == "" {
				continue
			}
			client, err := providers.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, logger)
			if err != nil {
				logger.Error("failed to initialize anthropic client", "error", err)
				continue
			}
			clients = append(clients, client)
		default:
			logger.Error("unknown provider in PROVIDER_ORDER", "provider", name)
		}
	}
	return clients
}
