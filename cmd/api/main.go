package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docaudit/internal/config"
	"docaudit/internal/contentsource"
	"docaudit/internal/database"
	"docaudit/internal/database/migration"
	handlers "docaudit/internal/http/handler"
	"docaudit/internal/http/middleware"
	"docaudit/internal/otel"
	"docaudit/internal/repository/postgres"
	"docaudit/internal/service"
	"docaudit/internal/storage"
	"docaudit/internal/upload"
	"docaudit/internal/version"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := migration.EnsureMigrated(migrateCtx, db, time.UTC, cfg.Database.Host); err != nil {
		cancel()
		log.Fatalf("failed to migrate database: %v", err)
	}
	cancel()

	// Elevated (service-credential) object storage client; drives the default
	// write path and all reads.
	objStore, err := storage.NewMinIO(cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Caller-scoped client is optional; when absent the chain reports its
	// strategies as not configured and falls through.
	var callerStore storage.Storage
	if cfg.CallerStorage.Configured() {
		callerStore, err = storage.NewMinIO(cfg.CallerStorage)
		if err != nil {
			log.Fatalf("failed to initialize caller-scoped storage: %v", err)
		}
	}

	elevatedREST, err := storage.NewRESTUploader(cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize REST uploader: %v", err)
	}
	var callerREST *storage.RESTUploader
	if cfg.CallerStorage.Configured() {
		callerREST, err = storage.NewRESTUploader(cfg.CallerStorage)
		if err != nil {
			log.Fatalf("failed to initialize caller-scoped REST uploader: %v", err)
		}
	}

	chain := upload.NewDefaultChain(objStore, callerStore, elevatedREST, callerREST)

	// Repositories
	fileRepo := postgres.NewFilePostgres(db)
	versionRepo := postgres.NewVersionPostgres(db)
	documentRepo := postgres.NewDocumentPostgres(db)
	auditRepo := postgres.NewAuditPostgres(db)

	engine := version.NewEngine(chain, objStore, versionRepo, fileRepo, cfg.Ingest.VersioningEnabled)

	// External content provider client; import stays registered but returns
	// 503 when the provider is not configured.
	var source contentsource.Source
	if cfg.ContentSource.BaseURL != "" && cfg.ContentSource.Token != "" {
		client, err := contentsource.NewClient(cfg.ContentSource)
		if err != nil {
			log.Fatalf("failed to initialize content source client: %v", err)
		}
		source = client
	}

	batchSvc := service.NewBatchService(chain, objStore, fileRepo, cfg.Ingest)
	importSvc := service.NewImportService(source, chain, objStore, fileRepo, documentRepo, auditRepo)
	fileSvc := service.NewFileService(chain, objStore, fileRepo, versionRepo, engine)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    int(cfg.Ingest.MaxUploadBytes) * 2,
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to initialize prometheus middleware: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, batchSvc, importSvc, fileSvc)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
