package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/chynybekuuludastan/article_generator/internal/api/handlers"
	"github.com/chynybekuuludastan/article_generator/internal/api/middleware"
	wshub "github.com/chynybekuuludastan/article_generator/internal/api/websocket"
	"github.com/chynybekuuludastan/article_generator/internal/config"
	"github.com/chynybekuuludastan/article_generator/internal/database"
	"github.com/chynybekuuludastan/article_generator/internal/repository"
	"github.com/chynybekuuludastan/article_generator/internal/service/generator"
	"github.com/chynybekuuludastan/article_generator/internal/service/llm"
)

// Dependencies bundles everything the route handlers need
type Dependencies struct {
	Repos       *repository.Factory
	RedisClient *database.RedisClient
	Service     *generator.Service
	Hub         *wshub.Hub
	Config      *config.Config
	Logger      llm.Logger
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, deps Dependencies) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.Repos.UserRepository, deps.RedisClient, deps.Config)
	generationHandler := handlers.NewGenerationHandler(
		deps.Service,
		deps.Repos.AttemptRepository,
		deps.Repos.KeywordRepository,
		deps.Hub,
		deps.Config,
		deps.Logger,
	)
	postHandler := handlers.NewPostHandler(deps.Repos.PostRepository)

	// API group
	api := app.Group("/api")

	// Health check route
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", middleware.JWTMiddleware(deps.Config), authHandler.RefreshToken)
	auth.Post("/logout", middleware.JWTMiddleware(deps.Config), authHandler.Logout)
	auth.Get("/me", middleware.JWTMiddleware(deps.Config), authHandler.GetMe)

	// Generation routes
	generate := api.Group("/generate", middleware.JWTMiddleware(deps.Config))
	generate.Post("/", generationHandler.Generate)
	generate.Get("/:id/attempts", generationHandler.ListAttempts)

	api.Post("/validate", middleware.JWTMiddleware(deps.Config), generationHandler.Validate)
	api.Post("/autofix", middleware.JWTMiddleware(deps.Config), generationHandler.AutoFix)

	// Post routes
	posts := api.Group("/posts", middleware.JWTMiddleware(deps.Config))
	posts.Get("/", postHandler.ListPosts)
	posts.Get("/:slug", postHandler.GetPost)
	posts.Patch("/:id/status", postHandler.UpdateStatus)

	// WebSocket endpoint for real-time generation updates
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})

	app.Get("/ws/generation/:id", websocket.New(generationHandler.HandleWebSocket))
}
