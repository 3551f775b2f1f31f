package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"
)

// Registry backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Registry RegistryConfig
	Resolver ResolverConfig
	Parse    ParseConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// RegistryConfig selects where canonical entities are stored.
type RegistryConfig struct {
	Backend string
}

// ResolverConfig holds the entity match weights and acceptance threshold.
type ResolverConfig struct {
	Threshold      float64
	NameWeight     float64
	AddressWeight  float64
	PropertyWeight float64
	TypeWeight     float64
	CandidateLimit int
}

// ParseConfig bounds document parsing.
type ParseConfig struct {
	Workers        int
	MaxUploadBytes int64
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_HOST", "host.docker.internal")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "landman")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")
	v.SetDefault("REGISTRY_BACKEND", BackendMemory)
	v.SetDefault("RESOLVER_THRESHOLD", 0.70)
	v.SetDefault("RESOLVER_NAME_WEIGHT", 0.50)
	v.SetDefault("RESOLVER_ADDRESS_WEIGHT", 0.20)
	v.SetDefault("RESOLVER_PROPERTY_WEIGHT", 0.20)
	v.SetDefault("RESOLVER_TYPE_WEIGHT", 0.10)
	v.SetDefault("RESOLVER_CANDIDATE_LIMIT", 200)
	v.SetDefault("PARSE_WORKERS", 4)
	v.SetDefault("MAX_UPLOAD_BYTES", 25<<20)

	// Bind environment variables
	v.AutomaticEnv()

	// Build configuration
	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		Registry: RegistryConfig{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString("REGISTRY_BACKEND"))),
		},
		Resolver: ResolverConfig{
			Threshold:      v.GetFloat64("RESOLVER_THRESHOLD"),
			NameWeight:     v.GetFloat64("RESOLVER_NAME_WEIGHT"),
			AddressWeight:  v.GetFloat64("RESOLVER_ADDRESS_WEIGHT"),
			PropertyWeight: v.GetFloat64("RESOLVER_PROPERTY_WEIGHT"),
			TypeWeight:     v.GetFloat64("RESOLVER_TYPE_WEIGHT"),
			CandidateLimit: v.GetInt("RESOLVER_CANDIDATE_LIMIT"),
		},
		Parse: ParseConfig{
			Workers:        v.GetInt("PARSE_WORKERS"),
			MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	// Validate registry and database config
	switch c.Registry.Backend {
	case BackendMemory:
	case BackendPostgres:
		if err := c.Database.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("REGISTRY_BACKEND must be %q or %q", BackendMemory, BackendPostgres)
	}

	if err := c.Resolver.Validate(); err != nil {
		return err
	}

	if c.Parse.Workers < 1 {
		return fmt.Errorf("PARSE_WORKERS must be at least 1")
	}
	if c.Parse.MaxUploadBytes < 1 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}

	// Validate CORS config
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return nil
}

// Validate checks the PostgreSQL settings.
func (d DatabaseConfig) Validate() error {
	if d.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if d.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if d.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if d.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if d.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if d.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if d.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if d.PoolMin > d.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}
	return nil
}

// Validate checks that weights are non-negative and sum to one and that
// the threshold lies in (0, 1].
func (r ResolverConfig) Validate() error {
	weights := []float64{r.NameWeight, r.AddressWeight, r.PropertyWeight, r.TypeWeight}
	sum := 0.0
	for _, w := range weights {
		if w < 0 {
			return fmt.Errorf("RESOLVER weights must be non-negative")
		}
		sum += w
	}
	if math.Abs(sum-1) > 0.001 {
		return fmt.Errorf("RESOLVER weights must sum to 1, got %.3f", sum)
	}
	if r.Threshold <= 0 || r.Threshold > 1 {
		return fmt.Errorf("RESOLVER_THRESHOLD must be in (0, 1]")
	}
	if r.CandidateLimit < 1 {
		return fmt.Errorf("RESOLVER_CANDIDATE_LIMIT must be at least 1")
	}
	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
