package handler

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/amaralkaff/lsa-backend/internal/middleware"
	"github.com/amaralkaff/lsa-backend/internal/model"
	"github.com/amaralkaff/lsa-backend/internal/service"
	"github.com/amaralkaff/lsa-backend/internal/upload"
)

// multipartMemory is how much of a multipart form is kept in memory before
// spilling file parts to temporary files.
const multipartMemory = 8 << 20

// contentReader is the part of a content service shared by every type.
type contentReader[T model.Content] interface {
	Get(ctx context.Context, id string) (T, error)
	Delete(ctx context.Context, user *model.User, id string) error
}

// handleGet serves GET /{kind}/{id}.
func handleGet[T model.Content](svc contentReader[T], noun string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				writeError(w, r, http.StatusNotFound, noun+" not found")
				return
			}
			writeServiceError(w, r, err)
			return
		}
		writeSuccess(w, r, http.StatusOK, noun+" retrieved successfully", doc, nil)
	}
}

// handleDelete serves DELETE /{kind}/{id}.
func handleDelete[T model.Content](svc contentReader[T], noun string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFromContext(r.Context())
		if !ok {
			writeError(w, r, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		if err := svc.Delete(r.Context(), user, chi.URLParam(r, "id")); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				writeError(w, r, http.StatusNotFound, noun+" not found")
				return
			}
			writeServiceError(w, r, err)
			return
		}
		writeSuccess(w, r, http.StatusOK, noun+" deleted successfully", nil, nil)
	}
}

func writeList[T any](w http.ResponseWriter, r *http.Request, noun string, docs []T) {
	writeSuccess(w, r, http.StatusOK, noun+" retrieved successfully", docs, map[string]any{"total": len(docs)})
}

type multipartForm struct {
	file     multipart.File
	filename string
	values   func(string) string
}

// parseMultipart parses a multipart body bounded by maxBytes and picks out
// the named file part. On failure it has already written the response.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64, fileField string) (*multipartForm, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isBodyTooLarge(err) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, false
		}
		writeError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return nil, false
	}

	form := &multipartForm{values: func(k string) string { return strings.TrimSpace(r.FormValue(k)) }}
	f, fh, err := r.FormFile(fileField)
	switch {
	case err == nil:
		form.file = f
		form.filename = fh.Filename
	case errors.Is(err, http.ErrMissingFile):
	default:
		writeError(w, r, http.StatusBadRequest, "Invalid file upload")
		return nil, false
	}
	return form, true
}

// image returns the file part, or an empty upload.File when none was sent.
func (f *multipartForm) image() upload.File {
	if f.file == nil {
		return upload.File{}
	}
	return upload.File{Filename: f.filename, Reader: f.file}
}

func (f *multipartForm) close() {
	if f.file != nil {
		_ = f.file.Close()
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate accepts RFC 3339 and the common naive forms, which are read as UTC.
func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &service.ValidationError{
		Field:   field,
		Message: fmt.Sprintf("must be a date such as 2024-01-01T09:00:00, got %q", value),
	}
}
