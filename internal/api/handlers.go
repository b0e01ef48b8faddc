package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/starford/scribe/internal/format"
	"github.com/starford/scribe/internal/noteservice"
)

const maxBody = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// GetDocument handles GET /api/document.
//
//	@Summary		Get the notes document
//	@Tags			document
//	@Produce		json
//	@Success		200		{object}	Document
//	@Security		BearerAuth
//	@Router			/document [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Document(r.Context())
	if err != nil {
		writeError(w, "get document", err)
		return
	}
	w.Header().Set("ETag", `"`+doc.Checksum+`"`)
	writeJSON(w, http.StatusOK, doc)
}

// ReplaceDocument handles PUT /api/document. The write is debounced, so
// the response is 202 with the engine status.
//
//	@Summary		Replace the document text
//	@Tags			document
//	@Accept			json
//	@Produce		json
//	@Param			If-Match	header	string					false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	ReplaceDocumentRequest	true	"New content"
//	@Success		202		{object}	Status
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/document [put]
func (h *Handler) ReplaceDocument(w http.ResponseWriter, r *http.Request) {
	var req ReplaceDocumentRequest
	if !decode(w, r, &req) {
		return
	}
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	st, err := h.svc.Replace(r.Context(), req.Content, ifMatch)
	if err != nil {
		writeError(w, "replace document", err)
		return
	}
	writeJSON(w, http.StatusAccepted, st)
}

// FormatDocument handles POST /api/document/format.
//
//	@Summary		Apply a formatting action to a selection
//	@Tags			document
//	@Accept			json
//	@Produce		json
//	@Param			body	body		FormatRequest	true	"Action and selection"
//	@Success		200		{object}	FormatResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/document/format [post]
func (h *Handler) FormatDocument(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Action == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("action is required"))
		return
	}
	res, err := h.svc.Format(r.Context(), req.Action, format.Selection{Start: req.Start, End: req.End}, req.URL)
	if err != nil {
		writeError(w, "format document", err)
		return
	}
	writeJSON(w, http.StatusOK, formatResponse(res))
}

// FlushDocument handles POST /api/document/flush.
//
//	@Summary		Write the document to disk now
//	@Tags			document
//	@Success		204		"Saved or already clean"
//	@Failure		409		{object}	errResponse
//	@Failure		500		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/document/flush [post]
func (h *Handler) FlushDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Flush(r.Context()); err != nil {
		writeError(w, "flush document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStatus handles GET /api/status.
//
//	@Summary		Get the engine status
//	@Tags			engine
//	@Produce		json
//	@Success		200		{object}	Status
//	@Security		BearerAuth
//	@Router			/status [get]
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Status(r.Context())
	if err != nil {
		writeError(w, "status", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// ToggleView handles POST /api/view/toggle.
func (h *Handler) ToggleView(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Toggle(r.Context())
	if err != nil {
		writeError(w, "toggle view", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// SetView handles PUT /api/view.
//
//	@Summary		Switch to the given view mode
//	@Tags			engine
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ViewRequest	true	"edit or preview"
//	@Success		200		{object}	Status
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/view [put]
func (h *Handler) SetView(w http.ResponseWriter, r *http.Request) {
	var req ViewRequest
	if !decode(w, r, &req) {
		return
	}
	st, err := h.svc.SetView(r.Context(), req.Mode)
	if err != nil {
		writeError(w, "set view", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// GetStyles handles GET /api/styles.
func (h *Handler) GetStyles(w http.ResponseWriter, r *http.Request) {
	styles, err := h.svc.Styles(r.Context())
	if err != nil {
		writeError(w, "get styles", err)
		return
	}
	writeJSON(w, http.StatusOK, styles)
}

// ReloadStyles handles POST /api/styles/reload.
func (h *Handler) ReloadStyles(w http.ResponseWriter, r *http.Request) {
	styles, err := h.svc.ReloadStyles(r.Context())
	if err != nil {
		writeError(w, "reload styles", err)
		return
	}
	writeJSON(w, http.StatusOK, styles)
}

// SetProfile handles PUT /api/profile.
//
//	@Summary		Switch the profile directory
//	@Tags			engine
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ProfileRequest	true	"Profile directory"
//	@Success		202		{object}	Status
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/profile [put]
func (h *Handler) SetProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if !decode(w, r, &req) {
		return
	}
	st, err := h.svc.SetProfile(r.Context(), req.Path)
	if err != nil {
		writeError(w, "set profile", err)
		return
	}
	writeJSON(w, http.StatusAccepted, st)
}

// Attempts handles GET /api/attempts.
//
//	@Summary		Recent save attempts and failures
//	@Tags			journal
//	@Produce		json
//	@Param			limit	query		int		false	"Max entries"
//	@Success		200		{object}	AttemptsResponse
//	@Security		BearerAuth
//	@Router			/attempts [get]
func (h *Handler) Attempts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	attempts, err := h.svc.Attempts(r.Context(), limit)
	if err != nil {
		writeError(w, "list attempts", err)
		return
	}
	failures, err := h.svc.Failures(r.Context(), limit)
	if err != nil {
		writeError(w, "list failures", err)
		return
	}
	writeJSON(w, http.StatusOK, AttemptsResponse{Attempts: attempts, Failures: failures})
}
