package handler

import (
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/amaralkaff/lsa-backend/internal/model"
	"github.com/amaralkaff/lsa-backend/internal/service"
	"github.com/amaralkaff/lsa-backend/internal/upload"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func writeSuccess(w http.ResponseWriter, r *http.Request, status int, msg string, data any, meta map[string]any) {
	writeJSON(w, r, status, model.Envelope{Status: statusSuccess, Message: msg, Data: data, Meta: meta})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, model.Envelope{Status: statusError, Message: msg})
}

func writeFieldError(w http.ResponseWriter, r *http.Request, field, msg string) {
	writeJSON(w, r, http.StatusBadRequest, model.Envelope{
		Status:  statusError,
		Message: msg,
		Meta:    map[string]any{"field": field},
	})
}

// writeServiceError maps service, repository and upload errors to responses.
// Unknown errors are logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeFieldError(w, r, verr.Field, verr.Error())
	case errors.Is(err, service.ErrEmailTaken):
		writeFieldError(w, r, "email", "Email already registered")
	case errors.Is(err, service.ErrUsernameTaken):
		writeFieldError(w, r, "username", "Username already taken")
	case errors.Is(err, service.ErrImageRequired):
		writeError(w, r, http.StatusBadRequest, "Image file is required")
	case errors.Is(err, upload.ErrEmptyFile):
		writeError(w, r, http.StatusBadRequest, "Uploaded file is empty")
	case errors.Is(err, upload.ErrFileTooLarge):
		writeError(w, r, http.StatusBadRequest, "File too large, maximum size is 5MB")
	case errors.Is(err, upload.ErrUnsupportedType):
		writeError(w, r, http.StatusBadRequest, "Unsupported file type, allowed: jpg, png, gif")
	case errors.Is(err, service.ErrInvalidID):
		writeError(w, r, http.StatusBadRequest, "Invalid ID format")
	case errors.Is(err, service.ErrInvalidProgramType):
		writeError(w, r, http.StatusBadRequest, "Invalid program type")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "Not authorized to modify this item")
	case errors.Is(err, service.ErrStoreUnavailable):
		slog.Error("store unavailable", "error", err, "request_id", chimw.GetReqID(r.Context()))
		writeError(w, r, http.StatusServiceUnavailable, "Service temporarily unavailable")
	default:
		slog.Error("request failed", "error", err, "request_id", chimw.GetReqID(r.Context()))
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
