package openapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func noop(c echo.Context) error { return nil }

func newTestEcho() (*echo.Echo, *Generator) {
	e := echo.New()
	e.GET("/imagen/:id", noop)
	e.DELETE("/imagen/:id", noop)
	e.POST("/imagen", noop)
	e.GET("/medico/dni/:dni", noop)
	e.GET("/metrics", noop)

	g := NewGenerator("Radiologia API", "0.1.0")
	g.Describe(http.MethodGet, "/imagen/:id", Operation{Summary: "Download image", Tag: "imagen"})
	g.Describe(http.MethodDelete, "/imagen/:id", Operation{Summary: "Delete image", Tag: "imagen", Status: http.StatusNoContent})
	g.Describe(http.MethodPost, "/imagen", Operation{Summary: "Upload image", Tag: "imagen", Request: "multipart", Response: "UploadResponse"})
	g.Describe(http.MethodGet, "/medico/dni/:dni", Operation{Summary: "Find doctor by DNI", Tag: "medico", Response: "Medico"})
	return e, g
}

func TestGenerateSpec_Structure(t *testing.T) {
	e, g := newTestEcho()
	spec := g.GenerateSpec(e.Routes())

	if spec["openapi"] != "3.0.3" {
		t.Errorf("expected openapi '3.0.3', got %v", spec["openapi"])
	}
	info := spec["info"].(map[string]interface{})
	if info["title"] != "Radiologia API" || info["version"] != "0.1.0" {
		t.Errorf("unexpected info %v", info)
	}

	paths := spec["paths"].(map[string]interface{})
	if _, ok := paths["/metrics"]; ok {
		t.Error("undocumented routes should be left out")
	}
	item, ok := paths["/imagen/{id}"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected /imagen/{id}, got paths %v", paths)
	}
	if _, ok := item["get"]; !ok {
		t.Error("expected get operation")
	}
	del := item["delete"].(map[string]interface{})
	if _, ok := del["responses"].(map[string]interface{})["204"]; !ok {
		t.Errorf("expected 204 response on delete, got %v", del["responses"])
	}
}

func TestGenerateSpec_PathParameters(t *testing.T) {
	e, g := newTestEcho()
	paths := g.GenerateSpec(e.Routes())["paths"].(map[string]interface{})

	get := paths["/medico/dni/{dni}"].(map[string]interface{})["get"].(map[string]interface{})
	params := get["parameters"].([]map[string]interface{})
	if len(params) != 1 || params[0]["name"] != "dni" {
		t.Fatalf("unexpected parameters %v", params)
	}
	if params[0]["schema"].(map[string]interface{})["type"] != "string" {
		t.Errorf("expected string dni, got %v", params[0]["schema"])
	}

	upload := paths["/imagen"].(map[string]interface{})["post"].(map[string]interface{})
	body := upload["requestBody"].(map[string]interface{})["content"].(map[string]interface{})
	if _, ok := body["multipart/form-data"]; !ok {
		t.Errorf("expected multipart body, got %v", body)
	}
}

func TestConvertPath(t *testing.T) {
	tests := []struct {
		in, want string
		params   int
	}{
		{"/imagen/:id", "/imagen/{id}", 1},
		{"/paciente/medico/:id", "/paciente/medico/{id}", 1},
		{"/informe", "/informe", 0},
	}
	for _, tt := range tests {
		got, params := convertPath(tt.in)
		if got != tt.want || len(params) != tt.params {
			t.Errorf("convertPath(%q) = %q %v, want %q", tt.in, got, params, tt.want)
		}
	}
}

func TestHandler_ServesJSON(t *testing.T) {
	e, g := newTestEcho()
	e.GET("/openapi.json", g.Handler())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	schemas := doc["components"].(map[string]interface{})["schemas"].(map[string]interface{})
	for _, name := range []string{"Medico", "Paciente", "Imagen", "Informe", "Error"} {
		if _, ok := schemas[name]; !ok {
			t.Errorf("expected schema %s", name)
		}
	}
}
