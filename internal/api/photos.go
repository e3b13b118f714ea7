package api

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// readUpload reads the "file" field of a size-capped multipart request.
func readUpload(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return nil, "", false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return nil, "", false
	}
	return data, header.Filename, true
}

// AttachPhoto handles PUT /api/records/{id}/photo (multipart/form-data, field "file").
//
//	@Summary		Attach a JPEG or PNG photo to a record
//	@Tags			photos
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		string	true	"Record ID"
//	@Param			file	formData	file	true	"Photo (.jpg or .png)"
//	@Success		200		{object}	PhotoResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/records/{id}/photo [put]
func (h *Handler) AttachPhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, filename, ok := readUpload(w, r, h.limits.MaxPhotoBytes)
	if !ok {
		return
	}
	photo, err := h.svc.AttachPhoto(r.Context(), id, data)
	if err != nil {
		writeError(w, "attach photo", err, slog.String("id", id), slog.String("file", filename))
		return
	}
	writeJSON(w, http.StatusOK, PhotoResponse{
		RecordID:    photo.RecordID,
		ContentType: photo.ContentType,
		Width:       photo.Width,
		Height:      photo.Height,
		Size:        len(photo.Data),
	})
}

// GetPhoto handles GET /api/records/{id}/photo.
//
//	@Summary		Get the photo attached to a record
//	@Tags			photos
//	@Produce		image/jpeg,image/png
//	@Param			id	path	string	true	"Record ID"
//	@Success		200	{file}	file
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/records/{id}/photo [get]
func (h *Handler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	photo, err := h.svc.Photo(r.Context(), id)
	if err != nil {
		writeError(w, "get photo", err, slog.String("id", id))
		return
	}
	w.Header().Set("Content-Type", photo.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(photo.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(photo.Data)
}

// DeletePhoto handles DELETE /api/records/{id}/photo.
//
//	@Summary		Remove the photo of a record
//	@Tags			photos
//	@Param			id	path	string	true	"Record ID"
//	@Success		204	"Photo removed"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/records/{id}/photo [delete]
func (h *Handler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.RemovePhoto(r.Context(), id); err != nil {
		writeError(w, "delete photo", err, slog.String("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
