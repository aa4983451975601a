package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/activity-points-api/api/swagger"
	"github.com/noah-isme/activity-points-api/internal/handler"
	"github.com/noah-isme/activity-points-api/internal/ledger"
	"github.com/noah-isme/activity-points-api/internal/middleware"
	"github.com/noah-isme/activity-points-api/internal/repository"
	"github.com/noah-isme/activity-points-api/internal/service"
	"github.com/noah-isme/activity-points-api/pkg/cache"
	"github.com/noah-isme/activity-points-api/pkg/config"
	"github.com/noah-isme/activity-points-api/pkg/database"
	"github.com/noah-isme/activity-points-api/pkg/jobs"
	"github.com/noah-isme/activity-points-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/activity-points-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/activity-points-api/pkg/middleware/requestid"
	"github.com/noah-isme/activity-points-api/pkg/storage"
)

// @title Activity Points API
// @version 1.0.0
// @description Certificate submission, review and per-year activity points ledger.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		migrations, err := database.Migrations()
		if err != nil {
			logr.Fatal("failed to load migrations", zap.Error(err))
		}
		if err := database.Migrate(ctx, db, migrations, logr); err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	metricsSvc := service.NewMetricsService()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, ledger cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}
	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheSvc = service.NewCacheService(repository.NewCacheRepository(redisClient, cfg.Cache.KeyPrefix, logr), metricsSvc, cfg.Cache.TTL, logr, true)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	academicYearRepo := repository.NewAcademicYearRepository(db)
	uploadWindowRepo := repository.NewUploadWindowRepository(db)
	reportRepo := repository.NewReportRepository(db)

	certificateFiles, err := storage.NewLocalStorage(cfg.Certificates.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare certificate storage", zap.Error(err))
	}
	certificateSigner := storage.NewSignedURLSigner(cfg.Certificates.SignedURLSecret, "certificate", cfg.Certificates.SignedURLTTL)

	authSvc := service.NewAuthService(userRepo, auditRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		SingleSession:      cfg.JWT.SingleSession,
	})
	ledgerSvc := service.NewLedgerService(studentRepo, ledger.RequirementTable(cfg.Ledger.YearRequirements), cacheSvc, cfg.Cache.TTL, logr)
	uploadWindowSvc := service.NewUploadWindowService(uploadWindowRepo, auditRepo, logr, cfg.UploadWindow.DefaultOpen)
	certificateSvc := service.NewCertificateService(service.CertificateServiceDeps{
		Certificates: certificateRepo,
		Students:     studentRepo,
		Categories:   categoryRepo,
		Gate:         uploadWindowSvc,
		Years:        academicYearRepo,
		Files:        certificateFiles,
		Signer:       certificateSigner,
		Audit:        auditRepo,
		History:      auditRepo,
		Cache:        cacheSvc,
		Metrics:      metricsSvc,
		Logger:       logr,
		Validator:    validate,
	}, service.CertificateConfig{
		APIPrefix:        cfg.APIPrefix,
		MaxFileSizeBytes: cfg.Certificates.MaxFileSizeBytes,
		AllowedMIMEs:     cfg.Certificates.AllowedMIMEs,
		FacultyMaxPoints: cfg.Ledger.FacultyMaxPoints,
	})
	academicYearSvc := service.NewAcademicYearService(academicYearRepo, studentRepo, departmentRepo, ledgerSvc, cacheSvc, metricsSvc, auditRepo, logr, validate, cfg.Ledger.DefaultProgramYears)
	studentSvc := service.NewStudentService(studentRepo, logr)
	catalogSvc := service.NewCatalogService(categoryRepo, departmentRepo, cacheSvc, cfg.Cache.TTL, logr)

	var reportHandler *handler.ReportHandler
	if cfg.Reports.Enabled {
		reportFiles, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Fatal("failed to prepare report storage", zap.Error(err))
		}
		reportSigner := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, "report", cfg.Reports.SignedURLTTL)
		exportSvc := service.NewExportService(studentRepo, departmentRepo, ledgerSvc, reportFiles, reportSigner, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Reports.SignedURLTTL,
		}, logr, nil, nil)

		worker := service.NewReportWorker(reportRepo, exportSvc, metricsSvc, logr)
		queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
			Workers:       cfg.Reports.WorkerConcurrency,
			MaxRetries:    cfg.Reports.WorkerRetries,
			RetryDelay:    5 * time.Second,
			MaxRetryDelay: time.Minute,
			Logger:        logr,
			OnExhausted:   worker.MarkExhausted,
		})
		queue.Start(ctx)
		defer queue.Stop()
		metricsSvc.RegisterQueueDepth("reports", queue.Pending)

		reportSvc := service.NewReportService(reportRepo, queue, exportSvc, metricsSvc, logr, validate, service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
		})
		reportSvc.RecoverPendingJobs(ctx)
		reportSvc.StartCleanup(ctx)
		reportHandler = handler.NewReportHandler(reportSvc, logr)
	}

	checks := map[string]handler.ReadinessCheck{
		"database": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), routeHandlers{
		auth:         handler.NewAuthHandler(authSvc),
		certificates: handler.NewCertificateHandler(certificateSvc),
		academicYear: handler.NewAcademicYearHandler(academicYearSvc),
		uploadWindow: handler.NewUploadWindowHandler(uploadWindowSvc),
		students:     handler.NewStudentHandler(studentSvc, ledgerSvc),
		catalog:      handler.NewCatalogHandler(catalogSvc),
		reports:      reportHandler,
	}, authSvc, auditRepo)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
