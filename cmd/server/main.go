package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"documentum/internal/auth"
	"documentum/internal/config"
	"documentum/internal/domain/repositories"
	"documentum/internal/fixtures"
	"documentum/internal/handler"
	"documentum/internal/middleware"
	"documentum/internal/repository/file"
	"documentum/internal/repository/memory"
	"documentum/internal/repository/postgres"
	"documentum/internal/service"
	authService "documentum/internal/service/auth"
	"documentum/internal/service/console"
	"documentum/internal/service/upload"
	"documentum/internal/task"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	out, closeLog, err := config.LogWriter(cfg, "server")
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer closeLog()

	logger := config.NewLogger(cfg, out)
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"snapshot_backend", cfg.SnapshotBackend,
		"upload_backend", cfg.UploadBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := task.NewRealScheduler()

	// Preferences persistence
	snapshots, txManager, closeStore := openSnapshotStore(ctx, cfg, logger)
	defer closeStore()
	prefsService := service.NewPreferencesService(snapshots, txManager, logger)

	transport := openUploadTransport(ctx, cfg, scheduler, logger)

	// Session tokens
	tokens, err := auth.NewHMACTokenService(cfg.SessionSecret, cfg.SessionTTL, scheduler.Now, logger)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}
	defer tokens.Close()

	set, err := fixtures.Load(scheduler.Now())
	if err != nil {
		log.Fatalf("Failed to load fixtures: %v", err)
	}
	authenticator := authService.NewAuthenticator(scheduler, tokens, set.Users, set.CurrentUser, logger)

	sessions := console.NewManager(console.Options{
		Scheduler:            scheduler,
		Preferences:          prefsService,
		Transport:            transport,
		NotificationDuration: cfg.NotificationDuration,
		Logger:               logger,
	})
	defer sessions.Close()

	// Create handlers
	treeHandler := handler.NewTreeHandler(sessions, logger)
	viewHandler := handler.NewViewHandler(sessions, logger)
	uiHandler := handler.NewUIHandler(sessions, logger)
	uploadHandler := handler.NewUploadHandler(sessions, logger)
	userPrefsHandler := handler.NewUserPreferencesHandler(prefsService, sessions, logger)
	authHandler := handler.NewAuthHandler(authenticator, sessions, scheduler, logger)

	logger.Info("services initialized", "users", len(set.Users), "documents", len(set.Documents))

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.HealthCheck)

	// Auth routes
	mux.HandleFunc("GET /api/auth/providers", authHandler.ListProviders)
	mux.HandleFunc("POST /api/auth/oauth/{provider}", authHandler.OAuthLogin)
	mux.HandleFunc("POST /api/auth/login", authHandler.EmailLogin)
	mux.HandleFunc("POST /api/auth/signout", authHandler.StartSignOut)
	mux.HandleFunc("GET /api/auth/signout", authHandler.GetSignOut)
	mux.HandleFunc("POST /api/auth/signout/skip", authHandler.SkipSignOut)
	mux.HandleFunc("DELETE /api/auth/signout", authHandler.CancelSignOut)

	// Folder tree routes
	mux.HandleFunc("GET /api/tree", treeHandler.GetTree)
	mux.HandleFunc("POST /api/folders/navigate", treeHandler.Navigate)
	mux.HandleFunc("GET /api/folders/{id}", treeHandler.GetFolder)
	mux.HandleFunc("GET /api/folders/{id}/breadcrumb", treeHandler.GetBreadcrumb)
	mux.HandleFunc("GET /api/folders/{id}/documents", treeHandler.GetFolderDocuments)
	mux.HandleFunc("POST /api/folders/{id}/toggle", treeHandler.ToggleExpanded)

	// Document view routes
	mux.HandleFunc("GET /api/views/{view}", viewHandler.GetView)
	mux.HandleFunc("PATCH /api/views/{view}/filter", viewHandler.UpdateFilter)
	mux.HandleFunc("DELETE /api/views/{view}/filter", viewHandler.ClearFilter)
	mux.HandleFunc("PUT /api/views/{view}/sort", viewHandler.SetSort)
	mux.HandleFunc("PUT /api/views/{view}/mode", viewHandler.SetMode)
	mux.HandleFunc("PUT /api/views/{view}/page", viewHandler.SetPage)
	mux.HandleFunc("POST /api/views/{view}/selection", viewHandler.UpdateSelection)
	mux.HandleFunc("POST /api/documents/{id}/open", viewHandler.OpenDocument)
	mux.HandleFunc("POST /api/documents/{id}/star", viewHandler.ToggleStar)

	// UI routes
	mux.HandleFunc("GET /api/ui", uiHandler.GetUI)
	mux.HandleFunc("PUT /api/ui/theme", uiHandler.SetTheme)
	mux.HandleFunc("POST /api/ui/theme/toggle", uiHandler.ToggleTheme)
	mux.HandleFunc("PATCH /api/ui/panels", uiHandler.UpdatePanels)
	mux.HandleFunc("POST /api/ui/notifications", uiHandler.AddNotification)
	mux.HandleFunc("DELETE /api/ui/notifications/{id}", uiHandler.DismissNotification)

	// Upload routes
	mux.HandleFunc("GET /api/uploads", uploadHandler.ListUploads)
	mux.HandleFunc("POST /api/uploads", uploadHandler.CreateUploads)
	mux.HandleFunc("POST /api/uploads/clear-completed", uploadHandler.ClearCompleted)
	mux.HandleFunc("DELETE /api/uploads/{id}", uploadHandler.RemoveUpload)

	// User preferences routes
	mux.HandleFunc("GET /api/users/me/preferences", userPrefsHandler.GetPreferences)
	mux.HandleFunc("DELETE /api/users/me/preferences", userPrefsHandler.ResetPreferences)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Auth → Recovery → Routes
	// Recovery sits inside Auth so panics are logged with the caller's ids
	h = middleware.Recovery(logger)(h)
	h = middleware.AuthMiddleware(tokens, logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", handler.ClientIDHeader},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // uploads are buffered before the response
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}

// openSnapshotStore selects the preferences backend. The returned close
// func is never nil.
func openSnapshotStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.SnapshotRepository, repositories.TransactionManager, func()) {
	switch cfg.SnapshotBackend {
	case config.SnapshotPostgres:
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.CreateSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to create schema: %v", err)
		}
		logger.Info("database connected", "table", tables.Snapshots)

		repo := postgres.NewSnapshotRepository(&postgres.RepositoryConfig{Pool: pool, Tables: tables, Logger: logger})
		return repo, postgres.NewTransactionManager(pool, logger), pool.Close

	case config.SnapshotFile:
		repo, err := file.NewSnapshotRepository(cfg.SnapshotDir, logger)
		if err != nil {
			log.Fatalf("Failed to open snapshot directory: %v", err)
		}
		logger.Info("file snapshots", "dir", cfg.SnapshotDir)
		return repo, repositories.DirectTransactionManager{}, func() {}

	case config.SnapshotMemory:
		logger.Warn("in-memory snapshots: preferences are lost on restart")
		return memory.NewSnapshotRepository(), repositories.DirectTransactionManager{}, func() {}
	}

	log.Fatalf("Unknown SNAPSHOT_BACKEND %q", cfg.SnapshotBackend)
	return nil, nil, nil
}

// openUploadTransport selects where uploaded bytes go
func openUploadTransport(ctx context.Context, cfg *config.Config, scheduler task.Scheduler, logger *slog.Logger) upload.Transport {
	switch cfg.UploadBackend {
	case config.UploadS3:
		transport, err := upload.NewS3Transport(upload.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			log.Fatalf("Failed to create S3 transport: %v", err)
		}
		if err := transport.EnsureBucket(ctx); err != nil {
			log.Fatalf("Failed to prepare bucket: %v", err)
		}
		logger.Info("uploads go to object storage", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		return transport

	case config.UploadSimulated:
		return upload.NewSimulatedTransport(scheduler, cfg.UploadSeed)
	}

	log.Fatalf("Unknown UPLOAD_BACKEND %q", cfg.UploadBackend)
	return nil
}
