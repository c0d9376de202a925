package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	appanalysis "github.com/bryanwahyu/resale-intel/internal/application/analysis"
	appvision "github.com/bryanwahyu/resale-intel/internal/application/vision"
	"github.com/bryanwahyu/resale-intel/internal/config"
	domanalysis "github.com/bryanwahyu/resale-intel/internal/domain/analysis"
	domfailures "github.com/bryanwahyu/resale-intel/internal/domain/failures"
	rediscache "github.com/bryanwahyu/resale-intel/internal/infra/cache"
	mysqlp "github.com/bryanwahyu/resale-intel/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/resale-intel/internal/infra/db/postgres"
	openaiclient "github.com/bryanwahyu/resale-intel/internal/infra/ai/openai"
	"github.com/bryanwahyu/resale-intel/internal/infra/httpserver"
	"github.com/bryanwahyu/resale-intel/internal/infra/ocr"
	minioStore "github.com/bryanwahyu/resale-intel/internal/infra/storage"
	"github.com/bryanwahyu/resale-intel/internal/middleware"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal("config load error", zap.Error(err))
	}

	ctx := context.Background()

	// connect DB per configured driver
	var db *sql.DB
	var repo domanalysis.Repository
	var failRepo domfailures.Repository
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatal("postgres connect error", zap.Error(err))
		}
		repo = postgresp.NewAnalysisRepository(db)
		failRepo = postgresp.NewFailureRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatal("mysql connect error", zap.Error(err))
		}
		repo = mysqlp.NewAnalysisRepository(db)
		failRepo = mysqlp.NewFailureRepository(db)
	}
	defer db.Close()

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatal("minio init error", zap.Error(err))
	}

	// init redis cache
	cache := rediscache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	// init vision client
	vision, err := openaiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.ProspectModel)
	if err != nil {
		log.Fatal("vision client init error", zap.Error(err))
	}

	// init services
	analysisSvc := &appanalysis.Service{
		Repo:     repo,
		Failures: failRepo,
		Vision:   vision,
		Images:   store,
		Cache:    cache,
		Clock:    appanalysis.SystemClock{},
		Log:      log,
		Timeout:  time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second,
	}
	visionSvc := &appvision.Service{
		Text:   vision,
		Colors: ocr.NewColorAnalyzer(),
		Brands: ocr.NewLexiconMatcher(),
	}

	// init router + middleware chain
	mux := chi.NewRouter()
	mux.Use(middleware.Logging(log))
	mux.Use(middleware.Metrics)
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	}
	mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))

	mux.Get("/health", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
		"redis":    &middleware.RedisHealthChecker{Cache: cache},
	}))
	mux.Get("/livez", middleware.LivenessHandler)
	mux.Handle("/metrics", middleware.MetricsHandler())
	mux.Mount("/", httpserver.NewRouter(analysisSvc, visionSvc, log))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // vision calls are slow
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}
