package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/scribe/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Document.
	r.Get("/document", h.GetDocument)
	r.Put("/document", h.ReplaceDocument)
	r.Post("/document/format", h.FormatDocument)
	r.Post("/document/flush", h.FlushDocument)

	// Engine state.
	r.Get("/status", h.GetStatus)
	r.Post("/view/toggle", h.ToggleView)
	r.Put("/view", h.SetView)
	r.Get("/styles", h.GetStyles)
	r.Post("/styles/reload", h.ReloadStyles)
	r.Put("/profile", h.SetProfile)
	r.Get("/attempts", h.Attempts)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
