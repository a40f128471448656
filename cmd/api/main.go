package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"sjaggi1/resume-parser/internal/app"
	"sjaggi1/resume-parser/internal/config"
	"sjaggi1/resume-parser/internal/handlers"
	applog "sjaggi1/resume-parser/internal/logger"
)

func main() {
	cfg := config.Load()

	log, err := applog.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize application", zap.Error(err))
	}
	defer components.Close()

	components.Worker.Start(ctx)

	h := &handlers.Handlers{
		Upload: handlers.NewUploadHandler(components.Service, cfg.Storage.MaxFileSize),
		Resume: handlers.NewResumeHandler(components.Service),
		Match:  handlers.NewMatchHandler(components.Service),
		Health: handlers.NewHealthHandler(components.Health),
	}

	server := fiber.New(fiber.Config{
		AppName:      "Resume Parser API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		// Oversized uploads must reach the handler so they get a FILE_TOO_LARGE body.
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1024*1024,
		ErrorHandler: handlers.ErrorHandler(log),
	})

	server.Use(recover.New())
	server.Use(requestid.New())
	server.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	server.Use(cors.New(cors.Config{
		AllowOrigins: joinOrigins(cfg.Server.CORSOrigins),
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	h.Register(server.Group("/api/v1"))

	server.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Parser API",
			"version": cfg.Server.Version,
			"endpoints": []string{
				"GET /api/v1/health",
				"POST /api/v1/resumes/upload",
				"GET /api/v1/resumes/:id",
				"PUT /api/v1/resumes/:id",
				"DELETE /api/v1/resumes/:id",
				"GET /api/v1/resumes/:id/status",
				"POST /api/v1/resumes/:id/reprocess",
				"POST /api/v1/resumes/:id/match",
				"POST /api/v1/resumes/search",
			},
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		if err := server.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
		components.Worker.Stop()
		cancel()
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting",
		zap.String("addr", addr),
		zap.String("env", cfg.Server.Env),
		zap.String("storage", components.Storage.Name()),
	)

	if err := server.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

func joinOrigins(origins []string) string {
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ",")
}
