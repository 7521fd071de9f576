// Package config loads service configuration from SWITCHBOARD_* environment
// variables. It is read once at startup and passed to constructors.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Service names a deployable service.
type Service string

const (
	Identity    Service = "identity"
	Registry    Service = "registry"
	Interaction Service = "interaction"
)

// Services lists every deployable service.
var Services = []Service{Identity, Registry, Interaction}

var defaultAddrs = map[Service]string{
	Identity:    ":8081",
	Registry:    ":8082",
	Interaction: ":8083",
}

type Config struct {
	Service Service

	JWTSecret   []byte // SWITCHBOARD_JWT_SECRET (required)
	JWTIssuer   string // SWITCHBOARD_JWT_ISSUER (default "switchboard-identity")
	JWTAudience string // SWITCHBOARD_JWT_AUDIENCE (default "switchboard")

	DatabaseURL     string        // SWITCHBOARD_DATABASE_URL (required)
	HTTPAddr        string        // SWITCHBOARD_HTTP_ADDR (default per service)
	GRPCAddr        string        // SWITCHBOARD_GRPC_ADDR (optional, empty = no gRPC health endpoint)
	GRPCHealthEvery time.Duration // SWITCHBOARD_GRPC_HEALTH_INTERVAL (default 10s)
	NATSURL         string        // SWITCHBOARD_NATS_URL (optional, empty = no events)
	LogLevel        slog.Level    // SWITCHBOARD_LOG_LEVEL (default "info")
	LogFormat       string        // SWITCHBOARD_LOG_FORMAT ("text" or "json", default "text")
	ShutdownTimeout time.Duration // SWITCHBOARD_SHUTDOWN_TIMEOUT (default 10s)

	// Identity
	TokenTTL          time.Duration // SWITCHBOARD_TOKEN_TTL (default 24h)
	BootstrapAdmin    string        // SWITCHBOARD_BOOTSTRAP_ADMIN
	BootstrapPassword string        // SWITCHBOARD_BOOTSTRAP_PASSWORD

	// Registry and interaction
	IdentityURL string // SWITCHBOARD_IDENTITY_URL
	RegistryURL string // SWITCHBOARD_REGISTRY_URL (interaction only)

	Sync Sync
}

// Sync configures the registry's roster snapshot export.
type Sync struct {
	Interval   time.Duration // SWITCHBOARD_SYNC_INTERVAL (default 0 = disabled)
	S3Bucket   string        // SWITCHBOARD_SYNC_S3_BUCKET (enables S3 when set)
	S3Endpoint string        // SWITCHBOARD_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	S3Region   string        // SWITCHBOARD_SYNC_S3_REGION (default "us-east-1")
	S3Key      string        // SWITCHBOARD_SYNC_S3_KEY (default "switchboard/roster.jsonl")
	GitRepo    string        // SWITCHBOARD_SYNC_GIT_REPO (enables git when set; path to clone)
	GitFile    string        // SWITCHBOARD_SYNC_GIT_FILE (default "roster.jsonl")
	GitBranch  string        // SWITCHBOARD_SYNC_GIT_BRANCH (default "main")
}

// Enabled reports whether a snapshot should be scheduled at all.
func (s Sync) Enabled() bool {
	return s.Interval > 0 && (s.S3Bucket != "" || s.GitRepo != "")
}

// Load reads the configuration for svc.
func Load(svc Service) (*Config, error) {
	addr, ok := defaultAddrs[svc]
	if !ok {
		return nil, fmt.Errorf("unknown service %q", svc)
	}

	c := &Config{
		Service:           svc,
		JWTSecret:         []byte(os.Getenv("SWITCHBOARD_JWT_SECRET")),
		JWTIssuer:         envOrDefault("SWITCHBOARD_JWT_ISSUER", "switchboard-identity"),
		JWTAudience:       envOrDefault("SWITCHBOARD_JWT_AUDIENCE", "switchboard"),
		DatabaseURL:       os.Getenv("SWITCHBOARD_DATABASE_URL"),
		HTTPAddr:          envOrDefault("SWITCHBOARD_HTTP_ADDR", addr),
		GRPCAddr:          os.Getenv("SWITCHBOARD_GRPC_ADDR"),
		NATSURL:           os.Getenv("SWITCHBOARD_NATS_URL"),
		LogFormat:         strings.ToLower(envOrDefault("SWITCHBOARD_LOG_FORMAT", "text")),
		BootstrapAdmin:    os.Getenv("SWITCHBOARD_BOOTSTRAP_ADMIN"),
		BootstrapPassword: os.Getenv("SWITCHBOARD_BOOTSTRAP_PASSWORD"),
		IdentityURL:       os.Getenv("SWITCHBOARD_IDENTITY_URL"),
		RegistryURL:       os.Getenv("SWITCHBOARD_REGISTRY_URL"),
		Sync: Sync{
			S3Bucket:   os.Getenv("SWITCHBOARD_SYNC_S3_BUCKET"),
			S3Endpoint: os.Getenv("SWITCHBOARD_SYNC_S3_ENDPOINT"),
			S3Region:   envOrDefault("SWITCHBOARD_SYNC_S3_REGION", "us-east-1"),
			S3Key:      envOrDefault("SWITCHBOARD_SYNC_S3_KEY", "switchboard/roster.jsonl"),
			GitRepo:    os.Getenv("SWITCHBOARD_SYNC_GIT_REPO"),
			GitFile:    envOrDefault("SWITCHBOARD_SYNC_GIT_FILE", "roster.jsonl"),
			GitBranch:  envOrDefault("SWITCHBOARD_SYNC_GIT_BRANCH", "main"),
		},
	}

	if len(c.JWTSecret) == 0 {
		return nil, fmt.Errorf("SWITCHBOARD_JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("SWITCHBOARD_DATABASE_URL is required")
	}
	switch svc {
	case Registry:
		if c.IdentityURL == "" {
			return nil, fmt.Errorf("SWITCHBOARD_IDENTITY_URL is required for the registry")
		}
	case Interaction:
		if c.IdentityURL == "" || c.RegistryURL == "" {
			return nil, fmt.Errorf("SWITCHBOARD_IDENTITY_URL and SWITCHBOARD_REGISTRY_URL are required for interaction")
		}
	}

	if err := c.LogLevel.UnmarshalText([]byte(envOrDefault("SWITCHBOARD_LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("SWITCHBOARD_LOG_LEVEL: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return nil, fmt.Errorf("SWITCHBOARD_LOG_FORMAT: must be text or json, got %q", c.LogFormat)
	}

	var err error
	if c.ShutdownTimeout, err = durationEnv("SWITCHBOARD_SHUTDOWN_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if c.TokenTTL, err = durationEnv("SWITCHBOARD_TOKEN_TTL", "24h"); err != nil {
		return nil, err
	}
	if c.Sync.Interval, err = durationEnv("SWITCHBOARD_SYNC_INTERVAL", "0"); err != nil {
		return nil, err
	}
	if c.GRPCHealthEvery, err = durationEnv("SWITCHBOARD_GRPC_HEALTH_INTERVAL", "10s"); err != nil {
		return nil, err
	}
	if c.GRPCHealthEvery == 0 {
		return nil, fmt.Errorf("SWITCHBOARD_GRPC_HEALTH_INTERVAL: must be positive")
	}
	return c, nil
}

// NewLogger builds the process logger described by c.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	var h slog.Handler
	if c.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(h).With("service", string(c.Service))
}

func durationEnv(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", key)
	}
	return d, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
