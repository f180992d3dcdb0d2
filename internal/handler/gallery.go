package handler

import (
	"net/http"

	"github.com/amaralkaff/lsa-backend/internal/middleware"
	"github.com/amaralkaff/lsa-backend/internal/model"
	"github.com/amaralkaff/lsa-backend/internal/service"
)

// GalleryHandler handles HTTP requests for gallery photos.
type GalleryHandler struct {
	service  *service.GalleryService
	maxBytes int64
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(svc *service.GalleryService, maxBytes int64) *GalleryHandler {
	return &GalleryHandler{service: svc, maxBytes: maxBytes}
}

// HandleList handles GET /gallery requests.
func (h *GalleryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	photos, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeList(w, r, "Gallery photos", photos)
}

// HandleGet handles GET /gallery/{id} requests.
func (h *GalleryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	handleGet[model.GalleryPhoto](h.service, "Gallery photo")(w, r)
}

// HandleCreate handles multipart POST /gallery requests.
func (h *GalleryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	form, ok := parseMultipart(w, r, h.maxBytes, "image")
	if !ok {
		return
	}
	defer form.close()

	in := model.GalleryInput{
		Title:       form.values("title"),
		Description: form.values("description"),
	}

	photo, err := h.service.Create(r.Context(), user, in, form.image())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusCreated, "Gallery photo uploaded successfully", photo, nil)
}

// HandleDelete handles DELETE /gallery/{id} requests.
func (h *GalleryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	handleDelete[model.GalleryPhoto](h.service, "Gallery photo")(w, r)
}
