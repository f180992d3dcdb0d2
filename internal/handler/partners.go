package handler

import (
	"net/http"

	"github.com/amaralkaff/lsa-backend/internal/middleware"
	"github.com/amaralkaff/lsa-backend/internal/model"
	"github.com/amaralkaff/lsa-backend/internal/service"
)

// PartnerHandler handles HTTP requests for partners.
type PartnerHandler struct {
	service  *service.PartnerService
	maxBytes int64
}

// NewPartnerHandler creates a new PartnerHandler.
func NewPartnerHandler(svc *service.PartnerService, maxBytes int64) *PartnerHandler {
	return &PartnerHandler{service: svc, maxBytes: maxBytes}
}

// HandleList handles GET /partners requests.
func (h *PartnerHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	partners, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeList(w, r, "Partners", partners)
}

// HandleGet handles GET /partners/{id} requests.
func (h *PartnerHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	handleGet[model.Partner](h.service, "Partner")(w, r)
}

// HandleCreate handles multipart POST /partners requests. The file part is "logo".
func (h *PartnerHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	form, ok := parseMultipart(w, r, h.maxBytes, "logo")
	if !ok {
		return
	}
	defer form.close()

	in := model.PartnerInput{
		Name:        form.values("name"),
		Description: form.values("description"),
		WebsiteURL:  form.values("website_url"),
	}

	partner, err := h.service.Create(r.Context(), user, in, form.image())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusCreated, "Partner created successfully", partner, nil)
}

// HandleDelete handles DELETE /partners/{id}. The logo is removed with the record.
func (h *PartnerHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	handleDelete[model.Partner](h.service, "Partner")(w, r)
}
