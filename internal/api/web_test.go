package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/starford/warrantdesk/internal/checksum"
	"github.com/starford/warrantdesk/internal/reviewservice"
	"github.com/starford/warrantdesk/internal/testutil"
)

func webRouter(svc *reviewservice.Service) http.Handler {
	wh := NewWebHandler(svc, Limits{})
	r := chi.NewRouter()
	r.Get("/", wh.Page)
	r.Mount("/ui", wh.Routes())
	return r
}

func postForm(router http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return serve(router, req)
}

func TestPage_NoSession(t *testing.T) {
	router := webRouter(newTestService(t))

	w := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("page = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Nenhuma planilha carregada") {
		t.Error("empty-session message missing")
	}
}

func TestPage_UploadAndSelect(t *testing.T) {
	router := webRouter(newTestService(t))

	w := serve(router, multipartRequest(t, http.MethodPost, "/ui/session", "mandados.xlsx", testutil.SampleWorkbook(t)))
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Fatalf("upload = %d → %q", w.Code, w.Header().Get("Location"))
	}

	w = serve(router, httptest.NewRequest(http.MethodGet, "/?id="+mariaID, nil))
	body := w.Body.String()
	for _, want := range []string{"BRUNO ALVES (0003-33.2022)", "CARLOS LIMA (0001-11.2020)", "vista no centro", "15/01/1990", "Rua B, 20 - Centro"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, "<textarea") {
		t.Error("notes editor should be closed by default")
	}

	w = serve(router, httptest.NewRequest(http.MethodGet, "/?id="+mariaID+"&edit=1", nil))
	if !strings.Contains(w.Body.String(), "<textarea") {
		t.Error("notes editor should open with edit=1")
	}
}

func TestPage_UploadInvalid(t *testing.T) {
	router := webRouter(newTestService(t))

	w := serve(router, multipartRequest(t, http.MethodPost, "/ui/session", "x.xlsx", []byte("junk")))
	loc, _ := url.Parse(w.Header().Get("Location"))
	if w.Code != http.StatusSeeOther || loc.Query().Get("err") == "" {
		t.Errorf("invalid upload should redirect with err, got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestPage_SaveNotes(t *testing.T) {
	svc := newTestService(t)
	router := webRouter(svc)
	if _, err := svc.LoadWorkbook(context.Background(), "m.xlsx", strings.NewReader(string(testutil.SampleWorkbook(t)))); err != nil {
		t.Fatal(err)
	}

	w := postForm(router, "/ui/records/"+mariaID+"/notes", url.Values{
		"notes":    {"nova"},
		"checksum": {checksum.Sum([]byte("vista no centro"))},
	})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/?id="+mariaID {
		t.Fatalf("save = %d → %q", w.Code, w.Header().Get("Location"))
	}
	rec, _ := svc.GetRecord(context.Background(), mariaID)
	if rec.Notes != "nova" {
		t.Errorf("notes = %q", rec.Notes)
	}

	// Stale checksum is reported back on the page.
	w = postForm(router, "/ui/records/"+mariaID+"/notes", url.Values{
		"notes":    {"outra"},
		"checksum": {checksum.Sum([]byte("vista no centro"))},
	})
	loc, _ := url.Parse(w.Header().Get("Location"))
	if loc.Query().Get("err") == "" {
		t.Error("stale save should redirect with err")
	}
}

func TestPage_PhotoForms(t *testing.T) {
	svc := newTestService(t)
	router := webRouter(svc)
	if _, err := svc.LoadWorkbook(context.Background(), "m.xlsx", strings.NewReader(string(testutil.SampleWorkbook(t)))); err != nil {
		t.Fatal(err)
	}

	w := serve(router, multipartRequest(t, http.MethodPost, "/ui/records/"+mariaID+"/photo", "f.png", testutil.PNG(t, 4, 4)))
	if w.Header().Get("Location") != "/?id="+mariaID {
		t.Fatalf("attach → %q", w.Header().Get("Location"))
	}
	w = serve(router, httptest.NewRequest(http.MethodGet, "/?id="+mariaID, nil))
	if !strings.Contains(w.Body.String(), "/api/records/"+mariaID+"/photo") {
		t.Error("photo not shown")
	}

	w = postForm(router, "/ui/records/"+mariaID+"/photo/delete", url.Values{})
	if w.Header().Get("Location") != "/?id="+mariaID {
		t.Errorf("delete → %q", w.Header().Get("Location"))
	}
	rec, _ := svc.GetRecord(context.Background(), mariaID)
	if rec.HasPhoto {
		t.Error("photo still attached")
	}
}
