package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "a-test-secret-that-is-long-enough-for-prod")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "lsa_db", cfg.Mongo.Database)
	assert.Equal(t, "HS256", cfg.JWT.Algorithm)
	assert.Equal(t, 30*time.Minute, cfg.JWT.TTL())
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "disk", cfg.Upload.Backend)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxBytes)
	assert.Equal(t, 30*time.Second, cfg.Redis.IdentityCacheTTL)
	assert.Equal(t, uint32(65536), cfg.Hash.MemoryKiB)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "another-secret")
	t.Setenv("JWT_ALGORITHM", "HS512")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("IDENTITY_CACHE_TTL", "10s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "HS512", cfg.JWT.Algorithm)
	assert.Equal(t, 5*time.Minute, cfg.JWT.TTL())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.Redis.IdentityCacheTTL)
}

func TestLoad_MissingSecretFails(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
}

func validConfig() Config {
	return Config{
		Env:  "development",
		JWT:  JWTConfig{Secret: "s3cret-value", Algorithm: "HS256", ExpireMinutes: 30},
		Hash: HashConfig{MemoryKiB: 65536, Iterations: 3, Parallelism: 2},
		Upload: UploadConfig{
			Backend:  "disk",
			MaxBytes: 1024,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"placeholder secret", func(c *Config) { c.JWT.Secret = "your-secret-key" }, "placeholder"},
		{"short secret in production", func(c *Config) { c.Env = "production" }, "at least 32 bytes"},
		{"unsupported algorithm", func(c *Config) { c.JWT.Algorithm = "RS256" }, "JWT_ALGORITHM"},
		{"zero ttl", func(c *Config) { c.JWT.ExpireMinutes = 0 }, "ACCESS_TOKEN_EXPIRE_MINUTES"},
		{"zero parallelism", func(c *Config) { c.Hash.Parallelism = 0 }, "HASH_"},
		{"iterations above verify bound", func(c *Config) { c.Hash.Iterations = 17 }, "HASH_"},
		{"memory above verify bound", func(c *Config) { c.Hash.MemoryKiB = 1<<20 + 1 }, "HASH_"},
		{"unknown upload backend", func(c *Config) { c.Upload.Backend = "ftp" }, "UPLOAD_BACKEND"},
		{"minio without credentials", func(c *Config) { c.Upload.Backend = "minio" }, "MINIO_ENDPOINT"},
		{"admin email without username", func(c *Config) { c.Admin.Email = "admin@x.com" }, "ADMIN_EMAIL"},
		{"production admin without password", func(c *Config) {
			c.Env = "production"
			c.JWT.Secret = strings.Repeat("k", 40)
			c.Admin = AdminConfig{Email: "admin@x.com", Username: "admin"}
		}, "ADMIN_PASSWORD"},
		{"redis without ttl", func(c *Config) { c.Redis.Addr = "localhost:6379" }, "IDENTITY_CACHE_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), "error %q should mention %q", err, tt.wantErr)
		})
	}
}
