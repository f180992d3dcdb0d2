package upload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// DiskStore writes images into a directory served under a URL prefix.
type DiskStore struct {
	dir        string
	publicPath string
	maxBytes   int64
	now        func() time.Time
}

// NewDiskStore creates the upload directory if needed.
func NewDiskStore(dir, publicPath string, maxBytes int64) (*DiskStore, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &DiskStore{
		dir:        dir,
		publicPath: "/" + strings.Trim(publicPath, "/"),
		maxBytes:   maxBytes,
		now:        time.Now,
	}, nil
}

// Dir returns the directory files are written to.
func (s *DiskStore) Dir() string { return s.dir }

// PublicPath returns the URL prefix of stored files.
func (s *DiskStore) PublicPath() string { return s.publicPath }

// Save validates and writes the image, returning its public URL path.
func (s *DiskStore) Save(_ context.Context, f File) (string, error) {
	img, err := readImage(f, s.maxBytes, s.now())
	if err != nil {
		return "", err
	}

	dst := filepath.Join(s.dir, img.name)
	if err := os.WriteFile(dst, img.data, 0o644); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return path.Join(s.publicPath, img.name), nil
}

// Remove deletes the file behind ref. References outside this store and
// files that are already gone are ignored.
func (s *DiskStore) Remove(_ context.Context, ref string) error {
	ref = path.Clean(ref)
	if !strings.HasPrefix(ref, s.publicPath+"/") {
		return nil
	}
	name := path.Base(ref)
	if name == "." || name == "/" || name == ".." {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing upload: %w", err)
	}
	return nil
}
