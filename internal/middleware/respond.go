package middleware

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/amaralkaff/lsa-backend/internal/model"
)

// writeError writes the standard error envelope.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, model.Envelope{Status: "error", Message: msg})
}
