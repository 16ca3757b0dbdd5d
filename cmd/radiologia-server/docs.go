package main

import (
	"net/http"

	"github.com/ehr/radiologia/internal/platform/openapi"
)

func apiDocs() *openapi.Generator {
	g := openapi.NewGenerator("Radiologia API", version)

	// medico
	g.Describe(http.MethodPost, "/medico", openapi.Operation{Summary: "Create doctor", Tag: "medico", Request: "Medico", Status: http.StatusCreated, Response: "Medico"})
	g.Describe(http.MethodPut, "/medico", openapi.Operation{Summary: "Update doctor", Tag: "medico", Request: "Medico", Response: "Medico"})
	g.Describe(http.MethodGet, "/medico/:id", openapi.Operation{Summary: "Get doctor", Tag: "medico", Response: "Medico"})
	g.Describe(http.MethodGet, "/medico/dni/:dni", openapi.Operation{Summary: "Find doctor by DNI", Tag: "medico", Response: "Medico"})
	g.Describe(http.MethodDelete, "/medico/:id", openapi.Operation{Summary: "Delete doctor", Tag: "medico", Status: http.StatusNoContent})

	// paciente
	g.Describe(http.MethodPost, "/paciente", openapi.Operation{Summary: "Create patient", Tag: "paciente", Request: "Paciente", Status: http.StatusCreated, Response: "Paciente"})
	g.Describe(http.MethodPut, "/paciente", openapi.Operation{Summary: "Update patient", Tag: "paciente", Request: "Paciente", Status: http.StatusNoContent})
	g.Describe(http.MethodGet, "/paciente/:id", openapi.Operation{Summary: "Get patient", Tag: "paciente", Response: "Paciente"})
	g.Describe(http.MethodGet, "/paciente/medico/:id", openapi.Operation{Summary: "List a doctor's patients", Tag: "paciente", Response: "[]Paciente"})
	g.Describe(http.MethodDelete, "/paciente/:id", openapi.Operation{Summary: "Delete patient", Tag: "paciente", Status: http.StatusNoContent})

	// imagen
	g.Describe(http.MethodPost, "/imagen", openapi.Operation{Summary: "Upload image", Tag: "imagen", Request: "multipart", Response: "UploadResponse"})
	g.Describe(http.MethodGet, "/imagen/:id", openapi.Operation{Summary: "Download image bytes", Tag: "imagen"})
	g.Describe(http.MethodGet, "/imagen/info/:id", openapi.Operation{Summary: "Get image metadata", Tag: "imagen", Response: "Imagen"})
	g.Describe(http.MethodGet, "/imagen/predict/:id", openapi.Operation{Summary: "Classify image", Tag: "imagen", Response: "Prediction"})
	g.Describe(http.MethodGet, "/imagen/paciente/:id", openapi.Operation{Summary: "List a patient's images", Tag: "imagen", Response: "[]Imagen"})
	g.Describe(http.MethodDelete, "/imagen/:id", openapi.Operation{Summary: "Delete image", Tag: "imagen", Status: http.StatusNoContent})

	// informe
	g.Describe(http.MethodPost, "/informe", openapi.Operation{Summary: "Create report", Tag: "informe", Request: "InformeRequest", Status: http.StatusCreated, Response: "Informe"})
	g.Describe(http.MethodGet, "/informe/:id", openapi.Operation{Summary: "Get report", Tag: "informe", Response: "Informe"})
	g.Describe(http.MethodGet, "/informe/imagen/:id", openapi.Operation{Summary: "List an image's reports", Tag: "informe", Response: "[]Informe"})
	g.Describe(http.MethodDelete, "/informe/:id", openapi.Operation{Summary: "Delete report", Tag: "informe", Status: http.StatusNoContent})

	return g
}
