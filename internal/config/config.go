package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/amaralkaff/lsa-backend/internal/crypto"
)

// Secrets that have shipped as fallbacks in earlier deployments. They are
// refused outright so a missing override cannot go unnoticed.
var knownPlaceholderSecrets = map[string]bool{
	"your-secret-key":                 true,
	"idkwhy":                          true,
	"secret":                          true,
	"changeme":                        true,
	"dev-secret-change-in-production": true,
}

const minProductionSecretLength = 32

// Config is the process configuration read from the environment.
type Config struct {
	Port     string `env:"PORT" env-default:"8000"`
	Env      string `env:"ENV" env-default:"development"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-separator:"," env-default:"*"`

	Mongo     MongoConfig
	JWT       JWTConfig
	Hash      HashConfig
	RateLimit RateLimitConfig
	Upload    UploadConfig
	MinIO     MinIOConfig
	Redis     RedisConfig
	Admin     AdminConfig
}

// MongoConfig holds the document store connection settings.
type MongoConfig struct {
	URI      string `env:"MONGODB_URL" env-default:"mongodb://localhost:27017"`
	Database string `env:"MONGODB_DATABASE" env-default:"lsa_db"`
}

// JWTConfig holds the access token settings.
type JWTConfig struct {
	Secret        string `env:"SECRET_KEY" env-required:"true"`
	Algorithm     string `env:"JWT_ALGORITHM" env-default:"HS256"`
	ExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" env-default:"30"`
}

// TTL returns the access token lifetime.
func (c JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpireMinutes) * time.Minute
}

// HashConfig holds the Argon2id cost parameters.
type HashConfig struct {
	MemoryKiB   uint32 `env:"HASH_MEMORY_KIB" env-default:"65536"`
	Iterations  uint32 `env:"HASH_ITERATIONS" env-default:"3"`
	Parallelism uint8  `env:"HASH_PARALLELISM" env-default:"2"`
}

// RateLimitConfig bounds requests per client IP on /auth.
type RateLimitConfig struct {
	RPS   float64 `env:"AUTH_RATE_LIMIT_RPS" env-default:"5"`
	Burst int     `env:"AUTH_RATE_LIMIT_BURST" env-default:"10"`
}

// UploadConfig selects and configures the image store.
type UploadConfig struct {
	Backend    string `env:"UPLOAD_BACKEND" env-default:"disk"`
	Dir        string `env:"UPLOAD_DIR" env-default:"static/uploads"`
	PublicPath string `env:"UPLOAD_PUBLIC_PATH" env-default:"/static/uploads"`
	MaxBytes   int64  `env:"UPLOAD_MAX_BYTES" env-default:"5242880"`
}

// MinIOConfig is used when UPLOAD_BACKEND is minio.
type MinIOConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET" env-default:"lsa-uploads"`
	UseSSL    bool   `env:"MINIO_USE_SSL" env-default:"false"`
	PublicURL string `env:"MINIO_PUBLIC_URL"`
}

// RedisConfig enables the identity cache when Addr is set.
type RedisConfig struct {
	Addr             string        `env:"REDIS_ADDR"`
	Password         string        `env:"REDIS_PASSWORD"`
	DB               int           `env:"REDIS_DB" env-default:"0"`
	IdentityCacheTTL time.Duration `env:"IDENTITY_CACHE_TTL" env-default:"30s"`
}

// AdminConfig describes the administrator created at startup.
type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL"`
	Username string `env:"ADMIN_USERNAME"`
	Password string `env:"ADMIN_PASSWORD"`
}

// IsProduction reports whether the process runs with production settings.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cleanenv cannot express with tags.
func (c Config) Validate() error {
	var errs []error

	secret := strings.TrimSpace(c.JWT.Secret)
	switch {
	case secret == "":
		errs = append(errs, errors.New("SECRET_KEY must be set"))
	case knownPlaceholderSecrets[secret]:
		errs = append(errs, errors.New("SECRET_KEY is a placeholder value"))
	case c.IsProduction() && len(secret) < minProductionSecretLength:
		errs = append(errs, fmt.Errorf("SECRET_KEY must be at least %d bytes in production", minProductionSecretLength))
	}

	switch c.JWT.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM %q is not supported", c.JWT.Algorithm))
	}

	if c.JWT.ExpireMinutes <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}

	if c.Hash.Parallelism == 0 || c.Hash.Iterations == 0 || c.Hash.Iterations > crypto.MaxIterations ||
		c.Hash.MemoryKiB < 8*uint32(c.Hash.Parallelism) || c.Hash.MemoryKiB > crypto.MaxMemoryKiB {
		errs = append(errs, fmt.Errorf("HASH_* parameters are out of range (iterations 1-%d, memory up to %d KiB)",
			crypto.MaxIterations, crypto.MaxMemoryKiB))
	}

	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_BYTES must be positive"))
	}

	switch c.Upload.Backend {
	case "disk":
	case "minio":
		if c.MinIO.Endpoint == "" || c.MinIO.AccessKey == "" || c.MinIO.SecretKey == "" {
			errs = append(errs, errors.New("MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio upload backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("UPLOAD_BACKEND %q is not supported", c.Upload.Backend))
	}

	if c.Redis.Addr != "" && c.Redis.IdentityCacheTTL <= 0 {
		errs = append(errs, errors.New("IDENTITY_CACHE_TTL must be positive when REDIS_ADDR is set"))
	}

	if (c.Admin.Email == "") != (c.Admin.Username == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_USERNAME must be set together"))
	}
	if c.IsProduction() && c.Admin.Email != "" && c.Admin.Password == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD is required in production when ADMIN_EMAIL is set"))
	}

	return errors.Join(errs...)
}
