package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/amaralkaff/lsa-backend/internal/cache"
	"github.com/amaralkaff/lsa-backend/internal/config"
	"github.com/amaralkaff/lsa-backend/internal/crypto"
	"github.com/amaralkaff/lsa-backend/internal/handler"
	"github.com/amaralkaff/lsa-backend/internal/metrics"
	"github.com/amaralkaff/lsa-backend/internal/model"
	"github.com/amaralkaff/lsa-backend/internal/repository"
	"github.com/amaralkaff/lsa-backend/internal/service"
	"github.com/amaralkaff/lsa-backend/internal/upload"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := repository.NewStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	users := repository.NewUserRepository(store)
	programs := repository.NewContentRepository[model.Program](store, repository.ColPrograms)
	blogs := repository.NewContentRepository[model.Blog](store, repository.ColBlogs)
	gallery := repository.NewContentRepository[model.GalleryPhoto](store, repository.ColGallery)
	partners := repository.NewContentRepository[model.Partner](store, repository.ColPartners)

	for name, ensure := range map[string]func(context.Context) error{
		repository.ColUsers:    users.EnsureIndexes,
		repository.ColPrograms: programs.EnsureIndexes,
		repository.ColBlogs:    blogs.EnsureIndexes,
		repository.ColGallery:  gallery.EnsureIndexes,
		repository.ColPartners: partners.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			slog.Error("creating indexes failed", "collection", name, "error", err)
			os.Exit(1)
		}
	}

	var authOpts []service.AuthOption
	var closeRedis func() error
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Error("redis connection failed", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}
		closeRedis = rdb.Close
		authOpts = append(authOpts, service.WithIdentityCache(cache.NewIdentityCache(rdb, cfg.Redis.IdentityCacheTTL)))
		slog.Info("identity cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.IdentityCacheTTL)
	}

	uploads, staticDir, err := newUploadStore(ctx, cfg)
	if err != nil {
		slog.Error("upload storage unavailable", "backend", cfg.Upload.Backend, "error", err)
		os.Exit(1)
	}

	hasher := crypto.NewPasswordHasher(crypto.HashParams{
		Memory:      cfg.Hash.MemoryKiB,
		Iterations:  cfg.Hash.Iterations,
		Parallelism: cfg.Hash.Parallelism,
	})
	tokens, err := crypto.NewTokenCodec(cfg.JWT.Secret, cfg.JWT.Algorithm, cfg.JWT.TTL())
	if err != nil {
		slog.Error("token codec setup failed", "error", err)
		os.Exit(1)
	}

	authService := service.NewAuthService(users, hasher, tokens, authOpts...)
	if err := authService.EnsureAdmin(ctx, service.AdminAccount{
		Email:    cfg.Admin.Email,
		Username: cfg.Admin.Username,
		Password: cfg.Admin.Password,
	}); err != nil {
		slog.Error("admin bootstrap failed", "error", err)
		os.Exit(1)
	}

	router := handler.NewRouter(handler.Dependencies{
		Auth:           authService,
		Programs:       service.NewProgramService(programs, uploads),
		Blogs:          service.NewBlogService(blogs, uploads),
		Gallery:        service.NewGalleryService(gallery, uploads),
		Partners:       service.NewPartnerService(partners, uploads),
		Metrics:        metrics.New(),
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		UploadMaxBytes: cfg.Upload.MaxBytes,
		StaticDir:      staticDir,
		StaticPath:     cfg.Upload.PublicPath,
		Ready:          store.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "uploads", cfg.Upload.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	if closeRedis != nil {
		if err := closeRedis(); err != nil {
			slog.Warn("closing redis", "error", err)
		}
	}
	if err := store.Close(shutdownCtx); err != nil {
		slog.Warn("closing database", "error", err)
	}

	slog.Info("server stopped")
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// newUploadStore returns the configured image store and, for the disk
// backend, the directory the router should serve.
func newUploadStore(ctx context.Context, cfg config.Config) (upload.Store, string, error) {
	if cfg.Upload.Backend == "minio" {
		s, err := upload.NewMinIOStore(upload.MinIOConfig{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
			PublicURL: cfg.MinIO.PublicURL,
			MaxBytes:  cfg.Upload.MaxBytes,
		})
		if err != nil {
			return nil, "", err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, "", err
		}
		return s, "", nil
	}

	s, err := upload.NewDiskStore(cfg.Upload.Dir, cfg.Upload.PublicPath, cfg.Upload.MaxBytes)
	if err != nil {
		return nil, "", err
	}
	return s, s.Dir(), nil
}
