package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sentimentscope/backend/internal/analysis"
	"github.com/sentimentscope/backend/internal/api/handlers"
	"github.com/sentimentscope/backend/internal/auth"
	"github.com/sentimentscope/backend/internal/classifier"
	"github.com/sentimentscope/backend/internal/enrich"
	"github.com/sentimentscope/backend/internal/metrics"
	"github.com/sentimentscope/backend/internal/middleware/ratelimit"
	"github.com/sentimentscope/backend/internal/middleware/security"
	"github.com/sentimentscope/backend/internal/platform"
	"github.com/sentimentscope/backend/internal/sources"
	"github.com/sentimentscope/backend/internal/storage/sqlite"
	"github.com/sentimentscope/backend/pkg/config"
	appLogger "github.com/sentimentscope/backend/pkg/logger"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting SentimentScope API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	sessionStore, err := auth.NewRedisStore(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		time.Duration(cfg.Auth.TokenTTLHours)*time.Hour,
	)
	if err != nil {
		appLogger.Fatal("Failed to create session store", zap.Error(err))
	}
	defer sessionStore.Close()

	authService := auth.NewService(sqliteClient, sessionStore)

	sentimentClient := classifier.NewClient(
		cfg.Sentiment.Endpoint,
		cfg.Sentiment.Model,
		cfg.Sentiment.APIKey,
		time.Duration(cfg.Sentiment.TimeoutSec)*time.Second,
	)

	var enricher *enrich.Enricher
	if cfg.Enrichment.Enabled {
		var annotator *enrich.Annotator
		if cfg.Enrichment.OpenAIAPIKey != "" {
			annotator = enrich.NewAnnotator(
				cfg.Enrichment.OpenAIAPIKey,
				cfg.Enrichment.Model,
				cfg.Enrichment.MaxTokens,
			)
		}
		enricher = enrich.NewEnricher(annotator)
	}

	router := platform.NewRouter(platform.Fetchers{
		Twitter:   sources.NewTwitterFetcher(cfg.Twitter.BearerToken, cfg.Twitter.MaxReplies),
		Instagram: sources.NewInstagramFetcher(cfg.Instagram.SessionID),
		YouTube:   sources.NewYouTubeFetcher(cfg.YouTube.APIKey, cfg.YouTube.MaxComments),
		Ecommerce: sources.NewEcommerceFetcher(
			cfg.Scraper.UserAgent,
			cfg.Scraper.MaxReviews,
			time.Duration(cfg.Scraper.TimeoutSec)*time.Second,
		),
	})

	engine := analysis.NewEngine(sqliteClient, sentimentClient, enricher)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: 60,
		Logger:               appLogger.GetLogger(),
	})
	app.Use(limiter.Middleware())

	authHandler := handlers.NewAuthHandler(authService)
	analyzeHandler := handlers.NewAnalyzeHandler(router, engine)
	historyHandler := handlers.NewHistoryHandler(sqliteClient)

	api := app.Group("/api")

	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/logout", authHandler.Logout)

	authenticated := api.Group("", auth.Middleware(authService))
	authenticated.Get("/fetch_comments", analyzeHandler.Probe)
	authenticated.Post("/fetch_comments", analyzeHandler.Analyze)
	authenticated.Get("/history", historyHandler.GetHistory)

	app.Get("/metrics", metrics.MetricsHandler())
	app.Get("/api/v1/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
