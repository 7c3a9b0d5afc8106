package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ndavault/docs"
	"ndavault/internal/app"
	"ndavault/internal/config"
	handlers "ndavault/internal/http/handler"
	"ndavault/internal/http/middleware"
	"ndavault/internal/logging"
	appotel "ndavault/internal/otel"
)

const shutdownTimeout = 10 * time.Second

// @title NDA Vault API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey InternalToken
// @in header
// @name X-Internal-Token
func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.Location())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := appotel.Init(ctx, logger)
	if err != nil {
		logger.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer a.Close()

	promMW, err := middleware.NewPrometheusMiddleware(a.Registry)
	if err != nil {
		logger.Error("failed to register http metrics", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	srv.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics"
	})))
	srv.Use(middleware.RequestID())
	srv.Use(middleware.Logger(logger))
	srv.Use(promMW.Handler())

	handlers.RegisterRoutes(srv, a.DB, a.Documents, handlers.Guards{
		Auth:     middleware.Auth(cfg.Auth, a.Users, logger),
		Internal: middleware.InternalToken(cfg.Auth.InternalToken),
		Recorder: a.Recorder,
	})

	srv.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	srv.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		if err := srv.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("server starting", slog.String("addr", addr))
	if err := srv.Listen(addr); err != nil {
		logger.Error("failed to start server", slog.String("error", err.Error()))
	}
}
