package handler

import (
	"net/http"

	"github.com/amaralkaff/lsa-backend/internal/middleware"
	"github.com/amaralkaff/lsa-backend/internal/model"
	"github.com/amaralkaff/lsa-backend/internal/service"
)

// BlogHandler handles HTTP requests for blog posts.
type BlogHandler struct {
	service  *service.BlogService
	maxBytes int64
}

// NewBlogHandler creates a new BlogHandler.
func NewBlogHandler(svc *service.BlogService, maxBytes int64) *BlogHandler {
	return &BlogHandler{service: svc, maxBytes: maxBytes}
}

// HandleList handles GET /blogs requests.
func (h *BlogHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeList(w, r, "Blogs", blogs)
}

// HandleGet handles GET /blogs/{id} requests.
func (h *BlogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	handleGet[model.Blog](h.service, "Blog")(w, r)
}

// HandleCreate handles multipart POST /blogs requests.
func (h *BlogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
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

	in := model.BlogInput{
		Title:   form.values("title"),
		Content: form.values("content"),
	}

	blog, err := h.service.Create(r.Context(), user, in, form.image())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusCreated, "Blog created successfully", blog, nil)
}

// HandleDelete handles DELETE /blogs/{id}. Only the author or an admin may delete.
func (h *BlogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	handleDelete[model.Blog](h.service, "Blog")(w, r)
}
