package informe

import (
	"encoding/json"
	"testing"

	"github.com/ehr/radiologia/internal/domain/imagen"
)

func TestInforme_MarshalJSON_NestedImagenOmitsPrediccion(t *testing.T) {
	latest := "No Cancer (label 0), score: 0.1"
	inf := Informe{
		ID:         7,
		Contenido:  "Foto del cancer",
		Prediccion: "Cancer (label 1), score: 0.6412607431411743",
		ImagenID:   1,
		Imagen:     &imagen.Imagen{ID: 1, Nombre: "no_healthty", Extension: ".png", Prediccion: &latest},
	}

	data, err := json.Marshal(inf)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if body["prediccion"] != inf.Prediccion {
		t.Errorf("expected frozen prediccion %q, got %v", inf.Prediccion, body["prediccion"])
	}
	img, ok := body["imagen"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested imagen object, got %v", body["imagen"])
	}
	if _, has := img["prediccion"]; has {
		t.Errorf("nested imagen should not carry prediccion: %s", data)
	}
	if img["id"] != float64(1) {
		t.Errorf("expected imagen id 1, got %v", img["id"])
	}
	if inf.Imagen.Prediccion == nil || *inf.Imagen.Prediccion != latest {
		t.Error("marshalling must not modify the attached imagen")
	}
}
