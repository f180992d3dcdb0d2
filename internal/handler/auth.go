package handler

import (
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/render"

	"github.com/amaralkaff/lsa-backend/internal/metrics"
	"github.com/amaralkaff/lsa-backend/internal/middleware"
	"github.com/amaralkaff/lsa-backend/internal/model"
	"github.com/amaralkaff/lsa-backend/internal/service"
)

const maxAuthBody = 1 << 20

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service *service.AuthService
	metrics *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{service: svc, metrics: m}
}

// HandleRegister handles POST /auth/register requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAuthBody)

	var req model.RegisterRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if isBodyTooLarge(err) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, user.Public())
}

// HandleLogin handles POST /auth/login requests. It accepts a JSON body
// {email, password} or an OAuth2 password form where "username" carries the email.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAuthBody)

	req, err := decodeLogin(r)
	if err != nil {
		if isBodyTooLarge(err) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			h.metrics.RecordLogin("invalid_credentials")
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, r, http.StatusUnauthorized, "Incorrect email or password")
		case errors.Is(err, service.ErrInactiveAccount):
			h.metrics.RecordLogin("inactive")
			writeError(w, r, http.StatusBadRequest, "Inactive user")
		default:
			h.metrics.RecordLogin("error")
			writeServiceError(w, r, err)
		}
		return
	}

	h.metrics.RecordLogin("success")
	writeJSON(w, r, http.StatusOK, resp)
}

// HandleMe handles GET /auth/me requests.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	writeJSON(w, r, http.StatusOK, user.Public())
}

func decodeLogin(r *http.Request) (model.LoginRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxAuthBody); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return model.LoginRequest{}, err
		}
		email := r.FormValue("username")
		if email == "" {
			email = r.FormValue("email")
		}
		return model.LoginRequest{Email: email, Password: r.FormValue("password")}, nil
	}

	var req model.LoginRequest
	err := render.DecodeJSON(r.Body, &req)
	return req, err
}
