package upload

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig holds the connection settings for MinIOStore.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
	MaxBytes  int64
}

// MinIOStore keeps images in a MinIO bucket.
type MinIOStore struct {
	mc        *minio.Client
	bucket    string
	publicURL string
	maxBytes  int64
	now       func() time.Time
}

// NewMinIOStore creates the client. Call EnsureBucket before serving.
func NewMinIOStore(cfg MinIOConfig) (*MinIOStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio access key and secret key are required")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	if cfg.Bucket == "" {
		cfg.Bucket = "lsa-uploads"
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	return &MinIOStore{
		mc:        mc,
		bucket:    cfg.Bucket,
		publicURL: publicBase(cfg),
		maxBytes:  maxBytes,
		now:       time.Now,
	}, nil
}

func publicBase(cfg MinIOConfig) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + cfg.Endpoint + "/" + cfg.Bucket
}

// EnsureBucket creates the bucket if it does not exist.
func (s *MinIOStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.mc.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket: %w", err)
	}
	if !exists {
		if err := s.mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}
		slog.Info("created upload bucket", "bucket", s.bucket)
	}
	return nil
}

// Save validates and uploads the image, returning its public URL.
func (s *MinIOStore) Save(ctx context.Context, f File) (string, error) {
	img, err := readImage(f, s.maxBytes, s.now())
	if err != nil {
		return "", err
	}

	_, err = s.mc.PutObject(ctx, s.bucket, img.name, img.reader(), int64(len(img.data)), minio.PutObjectOptions{
		ContentType: img.contentType,
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", img.name, err)
	}
	return s.publicURL + "/" + img.name, nil
}

// Remove deletes the object behind ref. References from another store are ignored.
func (s *MinIOStore) Remove(ctx context.Context, ref string) error {
	key, ok := s.objectKey(ref)
	if !ok {
		return nil
	}
	if err := s.mc.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

func (s *MinIOStore) objectKey(ref string) (string, bool) {
	if !strings.HasPrefix(ref, s.publicURL+"/") {
		return "", false
	}
	key := path.Base(ref)
	if key == "." || key == "/" || key == ".." {
		return "", false
	}
	return key, true
}
