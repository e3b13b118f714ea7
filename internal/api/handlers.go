package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/warrantdesk/internal/reviewservice"
)

// Limits caps request body sizes.
type Limits struct {
	MaxWorkbookBytes int64
	MaxPhotoBytes    int64
}

// DefaultLimits are used for zero-valued fields.
var DefaultLimits = Limits{
	MaxWorkbookBytes: 20 << 20,
	MaxPhotoBytes:    10 << 20,
}

func (l Limits) withDefaults() Limits {
	if l.MaxWorkbookBytes <= 0 {
		l.MaxWorkbookBytes = DefaultLimits.MaxWorkbookBytes
	}
	if l.MaxPhotoBytes <= 0 {
		l.MaxPhotoBytes = DefaultLimits.MaxPhotoBytes
	}
	return l
}

// Handler holds API route handlers.
type Handler struct {
	svc    *reviewservice.Service
	limits Limits
}

// NewHandler creates a new Handler.
func NewHandler(svc *reviewservice.Service, limits Limits) *Handler {
	return &Handler{svc: svc, limits: limits.withDefaults()}
}

// GetSession handles GET /api/session.
//
//	@Summary		Current session metadata
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	SessionInfo
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/session [get]
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Session(r.Context())
	if err != nil {
		writeError(w, "get session", err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// LoadWorkbook handles POST /api/session (multipart/form-data, field "file").
//
//	@Summary		Load a workbook, replacing the current session
//	@Tags			session
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Workbook (.xlsx)"
//	@Success		201		{object}	SessionInfo
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/session [post]
func (h *Handler) LoadWorkbook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxWorkbookBytes)
	if err := r.ParseMultipartForm(h.limits.MaxWorkbookBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	info, err := h.svc.LoadWorkbook(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, "load workbook", err, slog.String("file", header.Filename))
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// ListRecords handles GET /api/records.
//
//	@Summary		List records, one per unique ID, sorted by name
//	@Tags			records
//	@Produce		json
//	@Param			q	query		string	false	"Filter by name, case number, CPF or mother"
//	@Success		200	{object}	RecordListResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/records [get]
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.ListRecords(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, "list records", err)
		return
	}
	items := make([]RecordListItem, len(recs))
	for i, rec := range recs {
		items[i] = listItem(rec)
	}
	writeJSON(w, http.StatusOK, RecordListResponse{Records: items, Total: len(items)})
}

// GetRecord handles GET /api/records/{id}.
//
//	@Summary		Get a record with its notes
//	@Tags			records
//	@Produce		json
//	@Param			id	path		string	true	"Record ID"
//	@Success		200	{object}	RecordDetail
//	@Header			200	{string}	ETag	"Checksum of the current notes"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/records/{id} [get]
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.svc.GetRecord(r.Context(), id)
	if err != nil {
		writeError(w, "get record", err, slog.String("id", id))
		return
	}
	w.Header().Set("ETag", `"`+rec.Checksum+`"`)
	writeJSON(w, http.StatusOK, rec)
}

// UpdateNotes handles PUT /api/records/{id}/notes.
//
//	@Summary		Replace a record's notes with optimistic concurrency
//	@Tags			records
//	@Accept			json
//	@Produce		json
//	@Param			id			path	string				true	"Record ID"
//	@Param			If-Match	header	string				false	"SHA-256 checksum of the current notes"
//	@Param			body		body	UpdateNotesRequest	true	"New notes"
//	@Success		200		{object}	RecordDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/records/{id}/notes [put]
func (h *Handler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")

	var req UpdateNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Notes == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("notes is required"))
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	rec, err := h.svc.UpdateNotes(r.Context(), id, *req.Notes, ifMatch)
	if err != nil {
		writeError(w, "update notes", err, slog.String("id", id))
		return
	}
	w.Header().Set("ETag", `"`+rec.Checksum+`"`)
	writeJSON(w, http.StatusOK, rec)
}

// IndividualReport handles GET /api/records/{id}/report.
//
//	@Summary		Download the individual PDF report of a record
//	@Tags			reports
//	@Produce		application/pdf
//	@Param			id	path	string	true	"Record ID"
//	@Success		200	{file}	file
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/records/{id}/report [get]
func (h *Handler) IndividualReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := h.svc.IndividualReport(r.Context(), id)
	if err != nil {
		writeError(w, "individual report", err, slog.String("id", id))
		return
	}
	writeDocument(w, doc)
}

// ConsolidatedReport handles GET /api/reports/consolidated.
//
//	@Summary		Download the consolidated PDF of all records
//	@Tags			reports
//	@Produce		application/pdf
//	@Success		200	{file}	file
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reports/consolidated [get]
func (h *Handler) ConsolidatedReport(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.ConsolidatedReport(r.Context())
	if err != nil {
		writeError(w, "consolidated report", err)
		return
	}
	writeDocument(w, doc)
}

// ExportWorkbook handles GET /api/export.
//
//	@Summary		Download the workbook with notes merged back in
//	@Tags			reports
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Success		200	{file}	file
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/export [get]
func (h *Handler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.ExportWorkbook(r.Context())
	if err != nil {
		writeError(w, "export workbook", err)
		return
	}
	writeDocument(w, doc)
}
