package config

import (
	"os"
	"testing"
)

func TestLoad_WithDefaults(t *testing.T) {
	clearConfigEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Env != "development" {
		t.Errorf("Expected env development, got %s", cfg.Server.Env)
	}
	if cfg.Registry.Backend != BackendMemory {
		t.Errorf("Expected memory backend, got %s", cfg.Registry.Backend)
	}
	if cfg.Database.Name != "landman" {
		t.Errorf("Expected db name landman, got %s", cfg.Database.Name)
	}
	if cfg.Resolver.Threshold != 0.70 {
		t.Errorf("Expected threshold 0.70, got %f", cfg.Resolver.Threshold)
	}
	if cfg.Resolver.NameWeight != 0.50 || cfg.Resolver.AddressWeight != 0.20 ||
		cfg.Resolver.PropertyWeight != 0.20 || cfg.Resolver.TypeWeight != 0.10 {
		t.Errorf("Unexpected default weights: %+v", cfg.Resolver)
	}
	if cfg.Resolver.CandidateLimit != 200 {
		t.Errorf("Expected candidate limit 200, got %d", cfg.Resolver.CandidateLimit)
	}
	if cfg.Parse.Workers != 4 {
		t.Errorf("Expected 4 parse workers, got %d", cfg.Parse.Workers)
	}
	if cfg.Parse.MaxUploadBytes != 25<<20 {
		t.Errorf("Expected 25 MiB upload limit, got %d", cfg.Parse.MaxUploadBytes)
	}
	if len(cfg.CORS.Origins) != 2 {
		t.Errorf("Expected 2 CORS origins, got %d", len(cfg.CORS.Origins))
	}
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	clearConfigEnvVars(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("REGISTRY_BACKEND", "Postgres")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_NAME", "testdb")
	t.Setenv("DB_USER", "testuser")
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("DB_POOL_MIN", "5")
	t.Setenv("DB_POOL_MAX", "20")
	t.Setenv("CORS_ORIGINS", "http://example.com,https://app.example.com")
	t.Setenv("RESOLVER_THRESHOLD", "0.8")
	t.Setenv("PARSE_WORKERS", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Registry.Backend != BackendPostgres {
		t.Errorf("Expected postgres backend, got %s", cfg.Registry.Backend)
	}
	if cfg.Database.Password != "testpass" {
		t.Errorf("Expected password testpass, got %s", cfg.Database.Password)
	}
	if cfg.Database.PoolMax != 20 {
		t.Errorf("Expected pool max 20, got %d", cfg.Database.PoolMax)
	}
	if cfg.Resolver.Threshold != 0.8 {
		t.Errorf("Expected threshold 0.8, got %f", cfg.Resolver.Threshold)
	}
	if cfg.Parse.Workers != 8 {
		t.Errorf("Expected 8 workers, got %d", cfg.Parse.Workers)
	}
	if cfg.CORS.Origins[0] != "http://example.com" {
		t.Errorf("Expected first origin http://example.com, got %s", cfg.CORS.Origins[0])
	}
}

func TestLoad_PostgresRequiresPassword(t *testing.T) {
	clearConfigEnvVars(t)
	t.Setenv("REGISTRY_BACKEND", "postgres")

	if _, err := Load(); err == nil {
		t.Error("Expected error when DB_PASSWORD is missing for the postgres backend")
	}
}

func TestValidate_InvalidPoolSizes(t *testing.T) {
	tests := []struct {
		name    string
		poolMin int
		poolMax int
		wantErr bool
	}{
		{name: "negative pool min", poolMin: -1, poolMax: 10, wantErr: true},
		{name: "zero pool max", poolMin: 0, poolMax: 0, wantErr: true},
		{name: "pool min greater than max", poolMin: 15, poolMax: 10, wantErr: true},
		{name: "valid pool sizes", poolMin: 2, poolMax: 10, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Registry.Backend = BackendPostgres
			cfg.Database.PoolMin = tt.poolMin
			cfg.Database.PoolMax = tt.poolMax

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing port", func(c *Config) { c.Server.Port = "" }},
		{"unknown backend", func(c *Config) { c.Registry.Backend = "redis" }},
		{"missing db host", func(c *Config) { c.Registry.Backend = BackendPostgres; c.Database.Host = "" }},
		{"negative weight", func(c *Config) { c.Resolver.TypeWeight = -0.1; c.Resolver.NameWeight = 0.7 }},
		{"weights not summing to one", func(c *Config) { c.Resolver.NameWeight = 0.6 }},
		{"zero threshold", func(c *Config) { c.Resolver.Threshold = 0 }},
		{"threshold above one", func(c *Config) { c.Resolver.Threshold = 1.2 }},
		{"zero candidate limit", func(c *Config) { c.Resolver.CandidateLimit = 0 }},
		{"zero workers", func(c *Config) { c.Parse.Workers = 0 }},
		{"zero upload limit", func(c *Config) { c.Parse.MaxUploadBytes = 0 }},
		{"missing CORS origins", func(c *Config) { c.CORS.Origins = []string{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error but got none")
			}
		})
	}
}

func TestValidate_MemoryBackendIgnoresDatabase(t *testing.T) {
	cfg := validConfig()
	cfg.Database = DatabaseConfig{}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{name: "single origin", input: "http://localhost:3000", expect: []string{"http://localhost:3000"}},
		{name: "multiple origins", input: "http://localhost:3000,http://localhost:3001", expect: []string{"http://localhost:3000", "http://localhost:3001"}},
		{name: "origins with spaces", input: " http://localhost:3000 , http://localhost:3001 ", expect: []string{"http://localhost:3000", "http://localhost:3001"}},
		{name: "empty string", input: "", expect: []string{}},
		{name: "only commas", input: ",,,", expect: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseOrigins(tt.input)
			if len(result) != len(tt.expect) {
				t.Errorf("Expected %d origins, got %d", len(tt.expect), len(result))
				return
			}
			for i, origin := range result {
				if origin != tt.expect[i] {
					t.Errorf("Expected origin %s at index %d, got %s", tt.expect[i], i, origin)
				}
			}
		})
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Env: "development"},
		Database: DatabaseConfig{
			Host: "localhost", Port: "5432", Name: "landman",
			User: "postgres", Password: "postgres", PoolMin: 2, PoolMax: 10,
		},
		CORS:     CORSConfig{Origins: []string{"http://localhost:3000"}},
		Registry: RegistryConfig{Backend: BackendMemory},
		Resolver: ResolverConfig{
			Threshold: 0.70, NameWeight: 0.50, AddressWeight: 0.20,
			PropertyWeight: 0.20, TypeWeight: 0.10, CandidateLimit: 200,
		},
		Parse: ParseConfig{Workers: 4, MaxUploadBytes: 25 << 20},
	}
}

// clearConfigEnvVars unsets every variable Load reads for the test's
// duration.
func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENV", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"DB_POOL_MIN", "DB_POOL_MAX", "CORS_ORIGINS", "REGISTRY_BACKEND",
		"RESOLVER_THRESHOLD", "RESOLVER_NAME_WEIGHT", "RESOLVER_ADDRESS_WEIGHT",
		"RESOLVER_PROPERTY_WEIGHT", "RESOLVER_TYPE_WEIGHT", "RESOLVER_CANDIDATE_LIMIT",
		"PARSE_WORKERS", "MAX_UPLOAD_BYTES",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}
