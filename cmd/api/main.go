package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"blacklink/docs"
	"blacklink/internal/config"
	"blacklink/internal/database"
	"blacklink/internal/database/migration"
	"blacklink/internal/guardian"
	handlers "blacklink/internal/http/handler"
	"blacklink/internal/http/middleware"
	"blacklink/internal/mercadolivre"
	"blacklink/internal/otel"
	"blacklink/internal/payment"
	"blacklink/internal/repository/postgres"
	"blacklink/internal/service"
	"blacklink/internal/storage"
)

// @title CosaNostra BlackLink
// @version 5.2
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	loc := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Object storage is optional; without it the media endpoints answer 503
	// instead of blocking startup.
	var store storage.Storage
	if cfg.MinIO.Enabled() {
		store, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			log.Fatalf("failed to initialize object storage: %v", err)
		}
	}

	// Without credentials the gateway stays nil and every paid operation
	// answers with the unconfigured error.
	var gateway payment.Gateway
	if cfg.MercadoPago.Configured() {
		gateway = payment.NewMercadoPago(cfg.MercadoPago)
	}

	// Initialize repositories and services
	userRepo := postgres.NewUserPostgres(db)
	productRepo := postgres.NewProductPostgres(db)
	checker := guardian.NewLinkChecker(cfg.Guardian.RequestTimeout)

	userSvc := service.NewUserService(userRepo, productRepo)
	productSvc := service.NewProductService(userRepo, productRepo)
	catalogSvc := service.NewCatalogService(userRepo, productRepo, checker)
	paymentSvc := service.NewPaymentService(userRepo, gateway, cfg.MercadoPago)
	mediaSvc := service.NewMediaService(store)
	ingestSvc := service.NewIngestService(userRepo, productRepo, mercadolivre.NewClient(10*time.Second))

	guard := guardian.New(userRepo, productRepo, checker, cfg.Guardian.Interval, loc)
	go guard.Run(ctx)

	app := fiber.New(fiber.Config{
		ErrorHandler:            handlers.ErrorHandler(),
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: !cfg.TrustAllProxies(),
		TrustedProxies:          cfg.TrustedProxies(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// The logger sits inside otelfiber so its lines carry the span context.
	app.Use(otelfiber.Middleware())
	app.Use(middleware.Logger(loc))
	app.Use(cors.New())

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, handlers.Deps{
		DB:          db,
		Users:       userSvc,
		Products:    productSvc,
		Catalog:     catalogSvc,
		Payments:    paymentSvc,
		Media:       mediaSvc,
		Ingest:      ingestSvc,
		Sweeper:     guard,
		MPPublicKey: cfg.MercadoPago.PublicKey,
		Limiter:     middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = app.ShutdownWithContext(shutdownCtx)
	}()

	if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
