package main

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberSwagger "github.com/swaggo/fiber-swagger"

	"candletime/api-gateway/config"
	_ "candletime/api-gateway/docs"
	"candletime/api-gateway/handlers"
	"candletime/api-gateway/internal/adminauth"
	"candletime/api-gateway/internal/aiclient"
	"candletime/api-gateway/internal/jobs"
	"candletime/api-gateway/internal/worker"
	"candletime/api-gateway/middleware"
)

// @title CandleTime API
// @version 1.0
// @description Backend for CandleTime: ephemeral symbolic candles, a world map, and an admin CMS with AI-assisted article generation.
// @BasePath /api/v1
func main() {
	config.InitLogger()

	if err := config.InitSupabase(); err != nil {
		config.Log.Fatalf("Failed to initialize Supabase: %v", err)
	}

	generator := aiclient.New(
		config.GetOpenAIBaseURL(),
		config.GetOpenAIAPIKey(),
		config.GetOpenAIModel(),
		config.Log,
	)
	if config.GetOpenAIAPIKey() == "" {
		config.Log.Warn("OPENAI_API_KEY not set, article generation will return errors")
	}

	workers := 2
	if raw := os.Getenv("GENERATION_WORKERS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			workers = parsed
		}
	}
	dispatcher := worker.NewDispatcher(workers, 16, config.Log)
	dispatcher.Run()

	jobStore := jobs.NewStore(config.PostgrestClient)

	h := handlers.NewApplicationHandler(
		config.Log,
		config.SupabaseClient,
		generator,
		dispatcher,
		jobStore,
		config.GetAdminEmails(),
		func(token string) adminauth.IdentityProvider {
			return adminauth.NewSupabaseProvider(config.AuthClientForToken(token))
		},
	)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.RequestLogger())

	// Health check route
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "CandleTime API is healthy",
		})
	})

	app.Get("/swagger/*", fiberSwagger.WrapHandler)

	// API v1 routes
	apiV1 := app.Group("/api/v1")

	// Candle routes
	apiV1.Post("/candles", h.CreateCandle)
	apiV1.Get("/candles", h.ListCandles)
	apiV1.Get("/candles/map", h.CandleMap)
	apiV1.Get("/candles/:id", h.GetCandle)
	apiV1.Post("/candles/:id/extinguish", h.ExtinguishCandle)

	// Published article routes
	apiV1.Get("/articles", h.ListArticles)
	apiV1.Get("/articles/:slug", h.GetArticleBySlug)

	// Sitemap data for the SEO layer
	apiV1.Get("/sitemap/candles", h.SitemapCandles)
	apiV1.Get("/sitemap/articles", h.SitemapArticles)

	// Admin routes. /admin/access answers "am I an admin" for the UI and is
	// not itself gated; everything else re-validates the token server-side.
	apiV1.Get("/admin/access", h.CheckAdminAccess)

	adminGuard := middleware.AdminAuth(
		config.GetJWTSecret(),
		adminauth.NormalizeAllowList(config.GetAdminEmails()),
	)
	admin := apiV1.Group("/admin", adminGuard)

	admin.Get("/templates", h.ListTemplates)
	admin.Post("/templates", h.CreateTemplate)
	admin.Patch("/templates/:id", h.UpdateTemplate)
	admin.Delete("/templates/:id", h.DeleteTemplate)
	admin.Post("/templates/:id/default", h.SetDefaultTemplate)

	admin.Post("/articles", h.CreateArticle)
	admin.Patch("/articles/:id", h.UpdateArticle)
	admin.Post("/articles/:id/publish", h.PublishArticle)

	admin.Post("/generate", h.GenerateArticle)
	admin.Get("/generate/:jobId", h.GetGenerationJob)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Drain the generation queue before exiting on SIGINT/SIGTERM.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		config.Log.Info("Shutting down")
		if err := app.Shutdown(); err != nil {
			config.Log.Errorf("Server shutdown error: %v", err)
		}
	}()

	config.Log.Infof("Starting CandleTime API on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		config.Log.Fatalf("Server error: %v", err)
	}
	dispatcher.Stop()
}
