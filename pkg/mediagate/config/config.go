package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ryanekas417-dev/botenak2/pkg/mediagate"
	platformmemory "github.com/ryanekas417-dev/botenak2/pkg/mediagate/platform/memory"
	platformtelegram "github.com/ryanekas417-dev/botenak2/pkg/mediagate/platform/telegram"
	repomemory "github.com/ryanekas417-dev/botenak2/pkg/mediagate/repo/memory"
	repopg "github.com/ryanekas417-dev/botenak2/pkg/mediagate/repo/postgres"
	fsstorage "github.com/ryanekas417-dev/botenak2/pkg/mediagate/storage/fs"
	memorystorage "github.com/ryanekas417-dev/botenak2/pkg/mediagate/storage/memory"
	s3storage "github.com/ryanekas417-dev/botenak2/pkg/mediagate/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		DatabaseType: "memory",
		PlatformType: "memory",
		LinkBase:     "http://localhost:8080/launch",
		StorageBackend: StorageBackendConfig{
			Type:   "memory",
			Config: map[string]interface{}{},
		},
		EnableEventLogging: true,
	}
}

// ServerConfig represents server configuration for the mediagate service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"

	// Platform configuration
	PlatformType  string // "memory", "telegram"
	TelegramToken string

	// Payload storage for the in-process platform
	StorageBackend StorageBackendConfig

	// Gate and pipeline options
	AdminIDs []int64
	LinkBase string // base launch URI for deep links
	FailOpen bool   // membership gate policy; default fail-closed

	// Admin API authentication
	JWTSecret string

	// Server options
	EnableEventLogging bool
}

// StorageBackendConfig represents configuration for a payload storage backend
type StorageBackendConfig struct {
	Type   string // "memory", "fs", "s3"
	Config map[string]interface{}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	if c.PlatformType != "memory" && c.PlatformType != "telegram" {
		return errors.New("platform_type must be 'memory' or 'telegram'")
	}

	if c.PlatformType == "telegram" && c.TelegramToken == "" {
		return errors.New("telegram_token is required when using the telegram platform")
	}

	if c.LinkBase == "" {
		return errors.New("link_base is required to mint deep links")
	}

	return nil
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService() (mediagate.Service, error) {
	repo, err := c.buildRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	platform, err := c.BuildPlatform()
	if err != nil {
		return nil, fmt.Errorf("failed to build platform: %w", err)
	}

	options := []mediagate.Option{
		mediagate.WithRepository(repo),
		mediagate.WithPlatform(platform),
		mediagate.WithAdmins(c.AdminIDs),
		mediagate.WithLinkBase(c.LinkBase),
		mediagate.WithFailOpen(c.FailOpen),
	}

	if c.EnableEventLogging {
		options = append(options, mediagate.WithEventSink(mediagate.NewLogEventSink()))
	}

	return mediagate.New(options...)
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository() (mediagate.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return repomemory.New(), nil
	case "postgres":
		pool, err := pgxpool.New(context.Background(), c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		if err := repopg.Migrate(pool); err != nil {
			return nil, err
		}
		return repopg.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// BuildPlatform creates the messaging-platform client based on the configuration
func (c *ServerConfig) BuildPlatform() (mediagate.Platform, error) {
	switch c.PlatformType {
	case "memory":
		store, err := c.buildStorageBackend()
		if err != nil {
			return nil, err
		}
		return platformmemory.New(store), nil
	case "telegram":
		return platformtelegram.New(platformtelegram.Config{Token: c.TelegramToken})
	default:
		return nil, fmt.Errorf("unsupported platform type: %s", c.PlatformType)
	}
}

// buildStorageBackend creates a BlobStore based on the backend configuration
func (c *ServerConfig) buildStorageBackend() (mediagate.BlobStore, error) {
	config := c.StorageBackend
	switch config.Type {
	case "memory":
		return memorystorage.New(), nil

	case "fs":
		fsConfig := fsstorage.Config{
			BaseDir:   getString(config.Config, "base_dir", "./data/storage"),
			URLPrefix: getString(config.Config, "url_prefix", ""),
		}
		return fsstorage.New(fsConfig)

	case "s3":
		s3Config := s3storage.Config{
			Region:                 getString(config.Config, "region", "us-east-1"),
			Bucket:                 getString(config.Config, "bucket", ""),
			AccessKeyID:            getString(config.Config, "access_key_id", ""),
			SecretAccessKey:        getString(config.Config, "secret_access_key", ""),
			Endpoint:               getString(config.Config, "endpoint", ""),
			UseSSL:                 getBool(config.Config, "use_ssl", true),
			UsePathStyle:           getBool(config.Config, "use_path_style", false),
			PresignDuration:        getInt(config.Config, "presign_duration", 3600),
			CreateBucketIfNotExist: getBool(config.Config, "create_bucket_if_not_exist", false),
		}
		return s3storage.New(s3Config)

	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", config.Type)
	}
}

func getString(config map[string]interface{}, key string, defaultValue string) string {
	if value, exists := config[key]; exists {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return defaultValue
}

func getBool(config map[string]interface{}, key string, defaultValue bool) bool {
	if value, exists := config[key]; exists {
		if b, ok := value.(bool); ok {
			return b
		}
		if str, ok := value.(string); ok {
			if b, err := strconv.ParseBool(str); err == nil {
				return b
			}
		}
	}
	return defaultValue
}

func getInt(config map[string]interface{}, key string, defaultValue int) int {
	if value, exists := config[key]; exists {
		if i, ok := value.(int); ok {
			return i
		}
		if str, ok := value.(string); ok {
			if i, err := strconv.Atoi(str); err == nil {
				return i
			}
		}
		if f, ok := value.(float64); ok {
			return int(f)
		}
	}
	return defaultValue
}
