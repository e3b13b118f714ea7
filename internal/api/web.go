package api

import (
	"embed"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/starford/warrantdesk/internal/models"
	"github.com/starford/warrantdesk/internal/reviewservice"
	"github.com/starford/warrantdesk/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// WebHandler serves the server-rendered review page and its form endpoints.
type WebHandler struct {
	svc    *reviewservice.Service
	limits Limits
}

// NewWebHandler creates a new WebHandler.
func NewWebHandler(svc *reviewservice.Service, limits Limits) *WebHandler {
	return &WebHandler{svc: svc, limits: limits.withDefaults()}
}

// Routes returns the form endpoints, meant to be mounted at /ui.
func (h *WebHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/session", h.upload)
	r.Post("/records/{id}/notes", h.saveNotes)
	r.Post("/records/{id}/photo", h.attachPhoto)
	r.Post("/records/{id}/photo/delete", h.removePhoto)
	return r
}

type pageData struct {
	Session  *session.Info
	Records  []models.Record
	Query    string
	Selected *reviewservice.RecordDetail
	Editing  bool
	Error    string
}

// Page handles GET /. Query parameters: q filters the list, id selects a
// record, edit=1 opens its notes for editing, err carries a form error.
func (h *WebHandler) Page(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := pageData{
		Query:   q.Get("q"),
		Editing: q.Get("edit") == "1",
		Error:   q.Get("err"),
	}

	ctx := r.Context()
	if info, err := h.svc.Session(ctx); err == nil {
		data.Session = info
		data.Records, err = h.svc.ListRecords(ctx, data.Query)
		if err != nil {
			h.fail(w, "list records", err)
			return
		}
		if id := q.Get("id"); id != "" {
			data.Selected, err = h.svc.GetRecord(ctx, id)
			if err != nil {
				data.Error = "registro não encontrado"
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		slog.Error("render page failed", slog.String("error", err.Error()))
	}
}

func (h *WebHandler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxWorkbookBytes)
	if err := r.ParseMultipartForm(h.limits.MaxWorkbookBytes); err != nil {
		redirect(w, r, "", "arquivo muito grande ou inválido")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		redirect(w, r, "", "selecione uma planilha")
		return
	}
	defer file.Close()

	if _, err := h.svc.LoadWorkbook(r.Context(), header.Filename, file); err != nil {
		redirect(w, r, "", h.message("load workbook", err))
		return
	}
	redirect(w, r, "", "")
}

func (h *WebHandler) saveNotes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := r.ParseForm(); err != nil {
		redirect(w, r, id, "formulário inválido")
		return
	}
	if _, err := h.svc.UpdateNotes(r.Context(), id, r.PostForm.Get("notes"), r.PostForm.Get("checksum")); err != nil {
		redirect(w, r, id, h.message("update notes", err))
		return
	}
	redirect(w, r, id, "")
}

func (h *WebHandler) attachPhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxPhotoBytes)
	if err := r.ParseMultipartForm(h.limits.MaxPhotoBytes); err != nil {
		redirect(w, r, id, "foto muito grande ou inválida")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		redirect(w, r, id, "selecione uma foto")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		redirect(w, r, id, "falha ao ler a foto")
		return
	}
	if _, err := h.svc.AttachPhoto(r.Context(), id, data); err != nil {
		redirect(w, r, id, h.message("attach photo", err))
		return
	}
	redirect(w, r, id, "")
}

func (h *WebHandler) removePhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.RemovePhoto(r.Context(), id); err != nil {
		redirect(w, r, id, h.message("remove photo", err))
		return
	}
	redirect(w, r, id, "")
}

// message turns a service error into a page message, logging unexpected ones.
func (h *WebHandler) message(op string, err error) string {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(op+" failed", slog.String("error", err.Error()))
		return "erro interno"
	}
	if status == http.StatusConflict && msg == "checksum mismatch" {
		return "as observações foram alteradas em outro lugar; recarregue e tente novamente"
	}
	return msg
}

func (h *WebHandler) fail(w http.ResponseWriter, op string, err error) {
	slog.Error(op+" failed", slog.String("error", err.Error()))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// redirect sends the browser back to the page with the record selected.
func redirect(w http.ResponseWriter, r *http.Request, id, errMsg string) {
	v := url.Values{}
	if id != "" {
		v.Set("id", id)
	}
	if errMsg != "" {
		v.Set("err", errMsg)
	}
	target := "/"
	if len(v) > 0 {
		target += "?" + v.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
