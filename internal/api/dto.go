package api

import (
	"github.com/starford/warrantdesk/internal/models"
	"github.com/starford/warrantdesk/internal/reviewservice"
	"github.com/starford/warrantdesk/internal/session"
)

// UpdateNotesRequest is the request body for replacing a record's notes.
// An empty string clears the notes; a missing field is rejected.
type UpdateNotesRequest struct {
	Notes *string `json:"notes" example:"visto no endereço em 12/03" validate:"required"`
}

// SessionInfo is the session metadata response type (aliased from the session layer).
type SessionInfo = session.Info

// RecordDetail is the full record response type (aliased from the domain layer).
type RecordDetail = reviewservice.RecordDetail

// RecordListItem is a lightweight entry of the record list.
type RecordListItem struct {
	ID          string `json:"id" example:"bd8e8b12a32791b443c6836ecbc3ae49" validate:"required"`
	CaseID      string `json:"case_id" example:"0001-11.2020" validate:"required"`
	Name        string `json:"name" example:"CARLOS LIMA" validate:"required"`
	DisplayName string `json:"display_name" example:"CARLOS LIMA (0001-11.2020)" validate:"required"`
	HasNotes    bool   `json:"has_notes"`
	HasPhoto    bool   `json:"has_photo"`
}

// RecordListResponse wraps the record list.
type RecordListResponse struct {
	Records []RecordListItem `json:"records" validate:"required"`
	Total   int              `json:"total" example:"42" validate:"required"`
}

// PhotoResponse is returned after a photo upload.
type PhotoResponse struct {
	RecordID    string `json:"record_id" validate:"required"`
	ContentType string `json:"content_type" example:"image/jpeg" validate:"required"`
	Width       int    `json:"width" example:"480" validate:"required"`
	Height      int    `json:"height" example:"640" validate:"required"`
	Size        int    `json:"size" example:"48213" validate:"required"`
}

func listItem(r models.Record) RecordListItem {
	return RecordListItem{
		ID:          r.ID,
		CaseID:      r.CaseID,
		Name:        r.Name,
		DisplayName: r.DisplayName(),
		HasNotes:    r.Notes != "",
		HasPhoto:    r.HasPhoto,
	}
}
