package imagen

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler(t *testing.T) (*Handler, *fixture, *echo.Echo) {
	f := newFixture(t)
	return NewHandler(f.svc, 1<<20), f, echo.New()
}

type part struct {
	name, filename, contentType string
	body                        []byte
}

func multipartRequest(t *testing.T, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		disp := `form-data; name="` + p.name + `"`
		if p.filename != "" {
			disp += `; filename="` + p.filename + `"`
		}
		h.Set("Content-Disposition", disp)
		if p.contentType != "" {
			h.Set("Content-Type", p.contentType)
		}
		pw, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		pw.Write(p.body)
	}
	w.Close()
	req := httptest.NewRequest(http.MethodPost, "/imagen", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	return he.Code
}

func TestHandler_Upload(t *testing.T) {
	h, _, e := newTestHandler(t)
	req := multipartRequest(t,
		part{name: "image", filename: "healthy.png", contentType: "image/png", body: pngBytes(t)},
		part{name: "paciente", contentType: "application/json", body: []byte(`{"id":1,"nombre":"Pedro"}`)},
	)
	rec := httptest.NewRecorder()
	if err := h.Upload(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	want := `{"response" : "file uploaded successfully : healthy.png"}`
	if rec.Body.String() != want {
		t.Errorf("expected %s, got %s", want, rec.Body.String())
	}
}

func TestHandler_Upload_PacienteAsFilePart(t *testing.T) {
	h, _, e := newTestHandler(t)
	req := multipartRequest(t,
		part{name: "image", filename: "healthy.png", body: pngBytes(t)},
		part{name: "paciente", filename: "blob", contentType: "application/json", body: []byte(`{"id":1}`)},
	)
	rec := httptest.NewRecorder()
	if err := h.Upload(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_Upload_BadRequests(t *testing.T) {
	img := part{name: "image", filename: "healthy.png", body: []byte("x")}
	tests := []struct {
		name  string
		parts []part
		want  int
	}{
		{"missing image", []part{{name: "paciente", body: []byte(`{"id":1}`)}}, http.StatusBadRequest},
		{"missing paciente", []part{img}, http.StatusBadRequest},
		{"bad paciente json", []part{img, {name: "paciente", body: []byte(`{"id":`)}}, http.StatusBadRequest},
		{"paciente without id", []part{img, {name: "paciente", body: []byte(`{}`)}}, http.StatusBadRequest},
		{"unknown paciente", []part{img, {name: "paciente", body: []byte(`{"id":77}`)}}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, e := newTestHandler(t)
			err := h.Upload(e.NewContext(multipartRequest(t, tt.parts...), httptest.NewRecorder()))
			if code := httpStatus(t, err); code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, code)
			}
		})
	}
}

func TestHandler_Upload_TooLarge(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc, 8)
	req := multipartRequest(t,
		part{name: "image", filename: "big.png", body: bytes.Repeat([]byte{1}, 64)},
		part{name: "paciente", body: []byte(`{"id":1}`)},
	)
	err := h.Upload(echo.New().NewContext(req, httptest.NewRecorder()))
	if code := httpStatus(t, err); code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", code)
	}
}

func TestUploadResponse_EscapesFilename(t *testing.T) {
	got := string(uploadResponse(`a"b.png`))
	want := `{"response" : "file uploaded successfully : a\"b.png"}`
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	var decoded map[string]string
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Errorf("expected valid JSON: %v", err)
	}
}

func TestHandler_GetBytesAndInfo(t *testing.T) {
	h, f, e := newTestHandler(t)
	content := pngBytes(t)
	f.svc.Upload(context.Background(), 1, "healthy.png", bytes.NewReader(content))

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.GetBytes(c); err != nil {
		t.Fatalf("GetBytes: %v", err)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	if !bytes.Equal(rec.Body.Bytes(), content) {
		t.Error("body differs from upload")
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.GetInfo(c); err != nil {
		t.Fatalf("GetInfo: %v", err)
	}
	var info struct {
		ID       int64  `json:"id"`
		Nombre   string `json:"nombre"`
		Paciente struct {
			ID int64 `json:"id"`
		} `json:"paciente"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.ID != 1 || info.Nombre != "healthy.png" || info.Paciente.ID != 1 {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestHandler_Predict(t *testing.T) {
	h, f, e := newTestHandler(t)
	f.svc.Upload(context.Background(), 1, "healthy.png", bytes.NewReader(pngBytes(t)))

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.Predict(c); err != nil {
		t.Fatalf("Predict: %v", err)
	}
	want := `{"prediction":"Not cancer (label 0),  score: 0.984481368213892"}`
	if strings.TrimSpace(rec.Body.String()) != want {
		t.Errorf("expected %s, got %s", want, rec.Body.String())
	}
}

func TestHandler_ListByPaciente_Empty(t *testing.T) {
	h, _, e := newTestHandler(t)
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.ListByPaciente(c); err != nil {
		t.Fatalf("ListByPaciente: %v", err)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected [], got %s", rec.Body.String())
	}
}

func TestHandler_Delete(t *testing.T) {
	h, f, e := newTestHandler(t)
	f.svc.Upload(context.Background(), 1, "healthy.png", bytes.NewReader(pngBytes(t)))

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("1")
	if code := httpStatus(t, h.GetBytes(c)); code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", code)
	}
}
