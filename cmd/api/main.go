package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/clausewise/clausewise/internal/application"
	appauth "github.com/clausewise/clausewise/internal/application/auth"
	appchat "github.com/clausewise/clausewise/internal/application/chat"
	appcontracts "github.com/clausewise/clausewise/internal/application/contracts"
	"github.com/clausewise/clausewise/internal/config"
	"github.com/clausewise/clausewise/internal/domain/analysis"
	domchat "github.com/clausewise/clausewise/internal/domain/chat"
	"github.com/clausewise/clausewise/internal/domain/documents"
	domusers "github.com/clausewise/clausewise/internal/domain/users"
	"github.com/clausewise/clausewise/internal/infra/ai/mistral"
	"github.com/clausewise/clausewise/internal/infra/ai/perf"
	mysqlp "github.com/clausewise/clausewise/internal/infra/db/mysql"
	postgresp "github.com/clausewise/clausewise/internal/infra/db/postgres"
	"github.com/clausewise/clausewise/internal/infra/httpserver"
	minioStore "github.com/clausewise/clausewise/internal/infra/storage"
	"github.com/clausewise/clausewise/internal/middleware"
)

func main() {
	// .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect database (mysql default, postgres optional)
	var (
		userRepo domusers.Repository
		docRepo  documents.Repository
		chatRepo domchat.Repository
		dbCloser interface{ Close() error }
		dbCheck  middleware.HealthChecker
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		userRepo = postgresp.NewUserRepository(db)
		docRepo = postgresp.NewDocumentRepository(db)
		chatRepo = postgresp.NewChatRepository(db)
		dbCloser = db
		dbCheck = &middleware.DatabaseHealthChecker{DB: db}
	default:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		userRepo = mysqlp.NewUserRepository(db)
		docRepo = mysqlp.NewDocumentRepository(db)
		chatRepo = mysqlp.NewChatRepository(db)
		dbCloser = db
		dbCheck = &middleware.DatabaseHealthChecker{DB: db}
	}
	defer dbCloser.Close()

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
		log.Fatalf("minio init error: %v", err)
	}

	// init AI client
	aiClient := mistral.NewClient(cfg.AI.APIKey, cfg.Model(), cfg.AI.BaseURL)

	// shared analysis plumbing
	history := perf.NewHistory(50)
	cache, err := lru.New[string, *analysis.Result](256)
	if err != nil {
		log.Fatalf("cache init error: %v", err)
	}

	clock := application.SystemClock{}

	authSvc := &appauth.Service{
		Users:     userRepo,
		JWTSecret: []byte(cfg.Auth.JWTSecret),
		TokenTTL:  time.Duration(cfg.TokenTTLHours()) * time.Hour,
		Clock:     clock,
	}
	contractsSvc := &appcontracts.Service{
		Repo:  docRepo,
		Blobs: store,
		AI:    aiClient,
		Perf:  history,
		Cache: cache,
		Model: cfg.Model(),
		Clock: clock,
	}
	chatSvc := &appchat.Service{
		Repo:  chatRepo,
		Docs:  docRepo,
		AI:    aiClient,
		Clock: clock,
	}

	handler := httpserver.NewRouter(authSvc, contractsSvc, chatSvc, httpserver.Options{
		JWTSecret:   []byte(cfg.Auth.JWTSecret),
		CORSOrigins: cfg.Server.CORSOrigins,
		MaxUpload:   cfg.MaxFileSize(),
		Perf:        history,
		Checkers: map[string]middleware.HealthChecker{
			"database": dbCheck,
			"storage":  middleware.CheckerFunc(store.Healthy),
		},
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // analysis calls can run long
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
