package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/warrantdesk/internal/reviewservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *reviewservice.Service, authEnabled bool, token string, sseHandler http.Handler, limits Limits) chi.Router {
	h := NewHandler(svc, limits)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Session.
	r.Get("/session", h.GetSession)
	r.Post("/session", h.LoadWorkbook)

	// Records.
	r.Get("/records", h.ListRecords)
	r.Get("/records/{id}", h.GetRecord)
	r.Put("/records/{id}/notes", h.UpdateNotes)

	// Photos.
	r.Put("/records/{id}/photo", h.AttachPhoto)
	r.Get("/records/{id}/photo", h.GetPhoto)
	r.Delete("/records/{id}/photo", h.DeletePhoto)

	// Documents.
	r.Get("/records/{id}/report", h.IndividualReport)
	r.Get("/reports/consolidated", h.ConsolidatedReport)
	r.Get("/export", h.ExportWorkbook)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
