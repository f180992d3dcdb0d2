// Package upload validates uploaded images and stores them on local disk
// or in a MinIO bucket.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxBytes is the upload size limit when none is configured.
const DefaultMaxBytes = 5 << 20

var (
	ErrEmptyFile       = errors.New("uploaded file is empty")
	ErrFileTooLarge    = errors.New("uploaded file is too large")
	ErrUnsupportedType = errors.New("unsupported image type")
)

// allowedTypes maps sniffed content types to stored extensions.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// File is an uploaded file as received from a multipart form.
type File struct {
	Filename string
	Reader   io.Reader
}

// Store persists validated images and returns the public reference clients
// use to fetch them.
type Store interface {
	Save(ctx context.Context, f File) (string, error)
	Remove(ctx context.Context, ref string) error
}

type image struct {
	name        string
	contentType string
	data        []byte
}

// readImage reads at most maxBytes from f, checks the sniffed content type
// and names the file YYYYMMDD_HHMMSS_<8 hex>.<ext>. The client-supplied
// file name and content type are ignored.
func readImage(f File, maxBytes int64, now time.Time) (image, error) {
	if f.Reader == nil {
		return image{}, ErrEmptyFile
	}

	data, err := io.ReadAll(io.LimitReader(f.Reader, maxBytes+1))
	if err != nil {
		return image{}, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) == 0 {
		return image{}, ErrEmptyFile
	}
	if int64(len(data)) > maxBytes {
		return image{}, ErrFileTooLarge
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return image{}, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	return image{
		name:        newFileName(now, ext),
		contentType: contentType,
		data:        data,
	}, nil
}

func newFileName(now time.Time, ext string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return now.Format("20060102_150405") + "_" + id + ext
}

func (img image) reader() io.Reader {
	return bytes.NewReader(img.data)
}
