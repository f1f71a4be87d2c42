package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/notmat/api/internal/client"
	"github.com/notmat/api/internal/config"
	"github.com/notmat/api/internal/handler"
	"github.com/notmat/api/internal/middleware"
	"github.com/notmat/api/internal/queue"
	"github.com/notmat/api/internal/service"
	"github.com/notmat/api/internal/store"
	"github.com/notmat/api/internal/worker"
	ws "github.com/notmat/api/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if cfg.Server.Env == "development" {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)

	// Probe Redis once at startup. The result decides the execution mode
	// for the lifetime of the process: a Redis that comes up later is not
	// picked up until restart.
	var redisClient *redis.Client
	redisAvailable := false
	if cfg.Queue.UseRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, falling back to in-process queue", "addr", cfg.Redis.Addr, "error", err)
			redisClient.Close()
			redisClient = nil
		} else {
			redisAvailable = true
		}
		cancel()
	}

	cacheTTL := time.Duration(cfg.Cache.TTLHours) * time.Hour

	var st store.Store
	if redisAvailable {
		st = store.NewRedisStore(redisClient, cacheTTL)
	} else {
		st = store.NewMemoryStore()
	}

	// Initialize WebSocket hub
	hub := ws.NewHub(log)
	go hub.Run()

	// Initialize AI provider
	geminiClient := client.NewGeminiClient(&cfg.Gemini)
	if !geminiClient.IsConfigured() {
		log.Warn("GOOGLE_API_KEY not set, using mock transformation")
	}
	provider := service.NewAIProvider(geminiClient, log)

	// Initialize services
	noteService := service.NewNoteService(st, provider, hub, cfg.Gemini.Model, log)

	var backend queue.Backend
	if redisAvailable {
		noteWorker := worker.NewNoteWorker(noteService, log)
		backend = queue.NewAsynqBackend(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Queue.Concurrency, cacheTTL, asynq.HandlerFunc(noteWorker.ProcessTask), log)
	} else {
		backend = queue.NewFallbackBackend(noteService, cfg.Queue.Concurrency, log)
	}
	noteService.SetBackend(backend)

	if err := backend.Start(); err != nil {
		log.Error("failed to start execution backend", "error", err)
		os.Exit(1)
	}
	log.Info("execution backend started", "redis", redisAvailable, "concurrency", cfg.Queue.Concurrency)

	// Initialize handlers
	validate := validator.New()
	noteHandler := handler.NewNoteHandler(noteService, validate)
	cacheHandler := handler.NewCacheHandler(noteService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    2 * 1024 * 1024, // 2MB
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "redis": redisAvailable})
	})

	// API routes
	api := app.Group("/api/v1", authMiddleware.Identify())

	notes := api.Group("/notes")
	notes.Post("/", rateLimiter.NotesLimit(cfg.RateLimit.NotesPerMin), noteHandler.Create)
	notes.Get("/", noteHandler.List)
	notes.Get("/:revisionId/status", noteHandler.Status)
	notes.Get("/:revisionId/result", noteHandler.Result)
	notes.Get("/:revisionId/export", rateLimiter.ExportLimit(cfg.RateLimit.ExportPerHour), noteHandler.Export)

	api.Post("/cache/invalidate", cacheHandler.Invalidate)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/notes/:revisionId", websocket.New(func(c *websocket.Conn) {
		hub.HandleConnection(c, c.Params("revisionId"))
	}))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("server shutdown error", "error", err)
		}
		backend.Shutdown()
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Info("server starting", "addr", addr)
	if err := app.Listen(addr); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
