package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the auth service.
// It merges file defaults and environment overrides to support both local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string

	// SigningSecret is the HS512 key. Absent or shorter than 32 bytes is a
	// fatal startup condition; it is never logged.
	SigningSecret string

	BcryptCost int

	DefaultRole      string
	ResetLinkBaseURL string

	TokenTTL        time.Duration
	ResetTokenTTL   time.Duration
	LockDuration    time.Duration
	FailedThreshold int

	ThrottleIPThreshold       int
	ThrottleIdentityThreshold int
	ThrottleWindow            time.Duration

	PublicPathPrefixes []string

	MaxDBConns int32
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Auth struct {
		DefaultRole        string   `yaml:"default_role"`
		ResetLinkBaseURL   string   `yaml:"reset_link_base_url"`
		PublicPathPrefixes []string `yaml:"public_path_prefixes"`
	} `yaml:"auth"`
}

// defaultPublicPrefixes lists the endpoints served without a security
// context; everything else goes through the authentication gate.
var defaultPublicPrefixes = []string{
	"/api/auth/signup",
	"/api/auth/login",
	"/api/auth/request-reset",
	"/api/auth/reset",
	"/api/auth/validate-token",
	"/healthz",
	"/readyz",
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:                 "proxiserve-auth-service",
		HTTPPort:                  8080,
		GRPCPort:                  9090,
		BcryptCost:                12,
		DefaultRole:               "ROLE_CLIENT",
		ResetLinkBaseURL:          "http://localhost:3000/reset-password",
		TokenTTL:                  24 * time.Hour,
		ResetTokenTTL:             15 * time.Minute,
		LockDuration:              15 * time.Minute,
		FailedThreshold:           5,
		ThrottleIPThreshold:       20,
		ThrottleIdentityThreshold: 6,
		ThrottleWindow:            time.Minute,
		PublicPathPrefixes:        defaultPublicPrefixes,
		MaxDBConns:                20,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Auth.DefaultRole != "" {
			cfg.DefaultRole = f.Auth.DefaultRole
		}
		if f.Auth.ResetLinkBaseURL != "" {
			cfg.ResetLinkBaseURL = f.Auth.ResetLinkBaseURL
		}
		if len(f.Auth.PublicPathPrefixes) > 0 {
			cfg.PublicPathPrefixes = f.Auth.PublicPathPrefixes
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.SigningSecret = envOrDefault("AUTH_SIGNING_SECRET", cfg.SigningSecret)
	cfg.DefaultRole = strings.ToUpper(strings.TrimSpace(envOrDefault("DEFAULT_ROLE", cfg.DefaultRole)))
	cfg.ResetLinkBaseURL = envOrDefault("RESET_LINK_BASE_URL", cfg.ResetLinkBaseURL)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.BcryptCost = envInt("BCRYPT_ROUNDS", cfg.BcryptCost)
	cfg.FailedThreshold = envInt("FAILED_LOGIN_THRESHOLD", cfg.FailedThreshold)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.TokenTTL = time.Duration(envInt("TOKEN_EXPIRY_MINUTES", int(cfg.TokenTTL.Minutes()))) * time.Minute
	cfg.ResetTokenTTL = time.Duration(envInt("RESET_TOKEN_EXPIRY_MINUTES", int(cfg.ResetTokenTTL.Minutes()))) * time.Minute
	cfg.LockDuration = time.Duration(envInt("ACCOUNT_LOCKOUT_MINUTES", int(cfg.LockDuration.Minutes()))) * time.Minute
	cfg.ThrottleIPThreshold = envInt("THROTTLE_IP_THRESHOLD", cfg.ThrottleIPThreshold)
	cfg.ThrottleIdentityThreshold = envInt("THROTTLE_IDENTITY_THRESHOLD", cfg.ThrottleIdentityThreshold)
	cfg.ThrottleWindow = time.Duration(envInt("THROTTLE_WINDOW_SECONDS", int(cfg.ThrottleWindow.Seconds()))) * time.Second

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if len(cfg.SigningSecret) < 32 {
		return Config{}, fmt.Errorf("AUTH_SIGNING_SECRET must be set and at least 32 bytes")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
