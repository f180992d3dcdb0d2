package handler

import (
	"net/http"

	"github.com/amaralkaff/lsa-backend/internal/middleware"
	"github.com/amaralkaff/lsa-backend/internal/model"
	"github.com/amaralkaff/lsa-backend/internal/service"
)

// ProgramHandler handles HTTP requests for programs.
type ProgramHandler struct {
	service  *service.ProgramService
	maxBytes int64
}

// NewProgramHandler creates a new ProgramHandler.
func NewProgramHandler(svc *service.ProgramService, maxBytes int64) *ProgramHandler {
	return &ProgramHandler{service: svc, maxBytes: maxBytes}
}

// HandleList handles GET /programs requests, optionally filtered by ?program_type=.
func (h *ProgramHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	programs, err := h.service.List(r.Context(), r.URL.Query().Get("program_type"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeList(w, r, "Programs", programs)
}

// HandleGet handles GET /programs/{id} requests.
func (h *ProgramHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	handleGet[model.Program](h.service, "Program")(w, r)
}

// HandleCreate handles multipart POST /programs requests.
func (h *ProgramHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
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

	start, err := parseDate("start_date", form.values("start_date"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	end, err := parseDate("end_date", form.values("end_date"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	in := model.ProgramInput{
		Title:       form.values("title"),
		Description: form.values("description"),
		ProgramType: form.values("program_type"),
		StartDate:   start,
		EndDate:     end,
	}

	program, err := h.service.Create(r.Context(), user, in, form.image())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusCreated, "Program created successfully", program, nil)
}

// HandleDelete handles DELETE /programs/{id} requests.
func (h *ProgramHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	handleDelete[model.Program](h.service, "Program")(w, r)
}
