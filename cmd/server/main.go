package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/ryanekas417-dev/botenak2/pkg/mediagate/api"
	"github.com/ryanekas417-dev/botenak2/pkg/mediagate/config"
)

// Config is the environment-facing configuration of the server executable
type Config struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	DatabaseType string `env:"DATABASE_TYPE" env-default:"memory"`
	DatabaseURL  string `env:"DATABASE_URL" env-default:""`

	PlatformType  string `env:"PLATFORM_TYPE" env-default:"memory"`
	TelegramToken string `env:"TELEGRAM_BOT_TOKEN" env-default:""`

	AdminIDs []int64 `env:"ADMIN_IDS" env-separator:","`
	LinkBase string  `env:"LINK_BASE" env-default:"http://localhost:8080/api/v1/launch"`
	FailOpen bool    `env:"GATE_FAIL_OPEN" env-default:"false"`

	JWTSecret string `env:"JWT_SECRET" env-default:"change-me"`

	StorageType string `env:"STORAGE_TYPE" env-default:"memory"`
	FSBaseDir   string `env:"FS_BASE_DIR" env-default:"./data/storage"`

	S3Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	S3Bucket          string `env:"AWS_S3_BUCKET" env-default:""`
	S3Endpoint        string `env:"AWS_S3_ENDPOINT" env-default:""`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`
	S3UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
}

func (c Config) toServerConfig() *config.ServerConfig {
	cfg := &config.ServerConfig{
		Port:               c.Port,
		Environment:        c.Environment,
		DatabaseType:       c.DatabaseType,
		DatabaseURL:        c.DatabaseURL,
		PlatformType:       c.PlatformType,
		TelegramToken:      c.TelegramToken,
		AdminIDs:           c.AdminIDs,
		LinkBase:           c.LinkBase,
		FailOpen:           c.FailOpen,
		JWTSecret:          c.JWTSecret,
		EnableEventLogging: true,
	}

	switch c.StorageType {
	case "fs":
		cfg.StorageBackend = config.StorageBackendConfig{
			Type:   "fs",
			Config: map[string]interface{}{"base_dir": c.FSBaseDir},
		}
	case "s3":
		cfg.StorageBackend = config.StorageBackendConfig{
			Type: "s3",
			Config: map[string]interface{}{
				"region":            c.S3Region,
				"bucket":            c.S3Bucket,
				"endpoint":          c.S3Endpoint,
				"access_key_id":     c.S3AccessKeyID,
				"secret_access_key": c.S3SecretAccessKey,
				"use_path_style":    c.S3UsePathStyle,
			},
		}
	default:
		cfg.StorageBackend = config.StorageBackendConfig{
			Type:   "memory",
			Config: map[string]interface{}{},
		}
	}

	return cfg
}

func main() {
	var envConfig Config
	if err := cleanenv.ReadEnv(&envConfig); err != nil {
		slog.Error("failed to read configuration", "err", err)
		os.Exit(1)
	}

	serverConfig := envConfig.toServerConfig()
	if err := serverConfig.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	svc, err := serverConfig.BuildService()
	if err != nil {
		slog.Error("failed to build service", "err", err)
		os.Exit(1)
	}

	handler := api.NewHandler(svc, serverConfig.JWTSecret)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Mount("/api/v1", handler.Routes())

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverConfig.Port),
		Handler: r,
	}

	go func() {
		slog.Info("mediagate server starting",
			"port", serverConfig.Port,
			"env", serverConfig.Environment,
			"platform", serverConfig.PlatformType,
			"database", serverConfig.DatabaseType,
			"admins", len(serverConfig.AdminIDs))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "err", err)
		os.Exit(1)
	}

	slog.Info("server exiting")
}
