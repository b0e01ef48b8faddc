package api

import (
	"github.com/starford/scribe/internal/engine"
	"github.com/starford/scribe/internal/format"
	"github.com/starford/scribe/internal/journal"
	"github.com/starford/scribe/internal/noteservice"
)

// ReplaceDocumentRequest is the request body for replacing the document.
type ReplaceDocumentRequest struct {
	Content string `json:"content" example:"# Notes\nHello"`
}

// FormatRequest is the request body for applying a formatting action.
type FormatRequest struct {
	Action string `json:"action" example:"bold" validate:"required"`
	Start  int    `json:"start" example:"0"`
	End    int    `json:"end" example:"5"`
	URL    string `json:"url,omitempty" example:"https://example.com"`
}

// FormatResponse is the formatted text and the selection to restore.
type FormatResponse struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// ViewRequest is the request body for switching the view.
type ViewRequest struct {
	Mode string `json:"mode" example:"preview" validate:"required"`
}

// ProfileRequest is the request body for switching the profile directory.
type ProfileRequest struct {
	Path string `json:"path" example:"/home/me/notes" validate:"required"`
}

// Document is the document response type (aliased from the domain layer).
type Document = noteservice.Document

// Styles is the styles response type (aliased from the domain layer).
type Styles = noteservice.Styles

// Status is the engine snapshot.
type Status = engine.Status

// AttemptsResponse wraps the save journal.
type AttemptsResponse struct {
	Attempts []journal.Entry   `json:"attempts" validate:"required"`
	Failures []journal.Failure `json:"failures" validate:"required"`
}

func formatResponse(r format.Result) FormatResponse {
	return FormatResponse{Text: r.Text, Start: r.Selection.Start, End: r.Selection.End}
}
