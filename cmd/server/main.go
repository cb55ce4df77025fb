package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/api/handlers"
	"github.com/maheshrc27/postpilot/internal/api/middleware"
	appcontainer "github.com/maheshrc27/postpilot/internal/app"
	job "github.com/maheshrc27/postpilot/internal/jobs"
	"github.com/maheshrc27/postpilot/internal/queue"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	if cfg.SecretKey == "" {
		log.Fatal("SECRET_KEY is required")
	}
	if cfg.AdminAPIKey == "" {
		key, err := utils.GenerateRandomKey(24)
		if err != nil {
			log.Fatalf("Failed to generate admin key: %v", err)
		}
		cfg.AdminAPIKey = key
		log.Printf("ADMIN_API_KEY not set, generated one for this run: %s", key)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			log.Printf("Warning: Sentry init failed: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	if err := repository.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	container, err := appcontainer.New(context.Background(), cfg, db, client)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	authMiddleware := middleware.NewAuthMiddleware(cfg)

	auth := handlers.NewAuthHandler(cfg)
	app.Get("/login", auth.Login)

	pipeline := handlers.NewPipelineHandler(container)
	app.Get("/health", pipeline.Health)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	api.Post("/pipeline/run", pipeline.Run)
	api.Get("/assistant/schedule", pipeline.ScheduleOverview)

	history := handlers.NewHistoryHandler(container)
	api.Get("/posts/history", history.PostsHistory)
	api.Get("/captions/logs", history.CaptionLogs)

	images := handlers.NewImagesHandler(container)
	api.Get("/assistant/ready-images", images.ReadyImages)
	api.Post("/images/upload", images.Upload)
	api.Post("/images/generate", images.Generate)
	api.Post("/captions/preview", images.CaptionPreview)

	settings := handlers.NewSettingsHandler(container)
	api.Get("/settings/info", settings.GetSettingsInfo)
	api.Post("/settings/update", settings.UpdateSettings)
	api.Post("/config/reload", settings.ReloadConfig)

	// cron jobs
	archiveSyncJob := job.NewArchiveSyncJob(cfg.ReadyDir, container.R2())

	c := cron.New()
	c.AddFunc("@every 10m", archiveSyncJob.SyncArchive)
	c.Start()

	// queue worker
	worker := queue.NewWorker(container)
	asynqServer := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 10,
	})

	go func() {
		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeRunPipeline, worker.HandleRunPipelineTask)

		log.Println("Starting the Asynq server...")
		if err := asynqServer.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	if err := container.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on %s", cfg.ListenAddr)

	gracefulShutdown(app, db, container, asynqServer, c)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, container *appcontainer.App, asynqServer *asynq.Server, c *cron.Cron) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	container.Shutdown()
	<-c.Stop().Done()

	// Shutdown waits for in-flight tasks, so a running cycle finishes.
	asynqServer.Shutdown()

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
