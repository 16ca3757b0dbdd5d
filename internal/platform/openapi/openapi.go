package openapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// Operation describes one documented route. Request is a component schema
// name for the JSON body, or "multipart" for the image upload form.
// Response is a component schema name; a "[]" prefix means an array.
type Operation struct {
	Summary  string
	Tag      string
	Request  string
	Status   int
	Response string
}

// Generator builds an OpenAPI 3.0 document from the routes registered on an
// Echo instance. Routes without an Operation are left out.
type Generator struct {
	title      string
	version    string
	operations map[string]Operation
}

func NewGenerator(title, version string) *Generator {
	return &Generator{title: title, version: version, operations: make(map[string]Operation)}
}

// Describe documents method + path, where path is the Echo pattern
// ("/imagen/:id").
func (g *Generator) Describe(method, path string, op Operation) {
	g.operations[method+" "+path] = op
}

// GenerateSpec produces the document as a map.
func (g *Generator) GenerateSpec(routes []*echo.Route) map[string]interface{} {
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})

	paths := make(map[string]interface{})
	for _, r := range routes {
		op, ok := g.operations[r.Method+" "+r.Path]
		if !ok {
			continue
		}
		oasPath, params := convertPath(r.Path)
		item, _ := paths[oasPath].(map[string]interface{})
		if item == nil {
			item = make(map[string]interface{})
			paths[oasPath] = item
		}
		item[strings.ToLower(r.Method)] = g.buildOperation(op, params)
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":   g.title,
			"version": g.version,
		},
		"paths": paths,
		"components": map[string]interface{}{
			"schemas": buildComponentSchemas(),
		},
	}
}

// convertPath turns "/imagen/:id" into "/imagen/{id}".
func convertPath(path string) (string, []string) {
	segments := strings.Split(path, "/")
	var params []string
	for i, s := range segments {
		if strings.HasPrefix(s, ":") {
			params = append(params, s[1:])
			segments[i] = "{" + s[1:] + "}"
		}
	}
	return strings.Join(segments, "/"), params
}

func (g *Generator) buildOperation(op Operation, params []string) map[string]interface{} {
	out := map[string]interface{}{
		"summary": op.Summary,
		"tags":    []string{op.Tag},
	}

	var parameters []map[string]interface{}
	for _, p := range params {
		schema := map[string]interface{}{"type": "integer", "format": "int64", "minimum": 1}
		if p == "dni" {
			schema = map[string]interface{}{"type": "string"}
		}
		parameters = append(parameters, map[string]interface{}{
			"name": p, "in": "path", "required": true, "schema": schema,
		})
	}
	if len(parameters) > 0 {
		out["parameters"] = parameters
	}

	switch op.Request {
	case "":
	case "multipart":
		out["requestBody"] = multipartBody()
	default:
		out["requestBody"] = map[string]interface{}{
			"required": true,
			"content":  jsonContent(schemaRef(op.Request)),
		}
	}

	status := op.Status
	if status == 0 {
		status = http.StatusOK
	}
	success := map[string]interface{}{"description": http.StatusText(status)}
	if op.Response != "" {
		success["content"] = jsonContent(schemaRef(op.Response))
	}
	out["responses"] = map[string]interface{}{
		strconv.Itoa(status): success,
		"400":        errorResponse("Bad Request"),
		"404":        errorResponse("Not Found"),
	}
	return out
}

func schemaRef(name string) map[string]interface{} {
	if strings.HasPrefix(name, "[]") {
		return map[string]interface{}{"type": "array", "items": schemaRef(name[2:])}
	}
	return map[string]interface{}{"$ref": "#/components/schemas/" + name}
}

func jsonContent(schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"application/json": map[string]interface{}{"schema": schema},
	}
}

func errorResponse(description string) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content":     jsonContent(schemaRef("Error")),
	}
}

func multipartBody() map[string]interface{} {
	return map[string]interface{}{
		"required": true,
		"content": map[string]interface{}{
			"multipart/form-data": map[string]interface{}{
				"schema": map[string]interface{}{
					"type":       "object",
					"required":   []string{"image", "paciente"},
					"properties": map[string]interface{}{
						"image":    map[string]interface{}{"type": "string", "format": "binary"},
						"paciente": map[string]interface{}{"type": "string", "description": `JSON reference, e.g. {"id": 1}`},
					},
				},
			},
		},
	}
}

// ── Component schemas ───────────────────────────────────────────────────

func buildComponentSchemas() map[string]interface{} {
	return map[string]interface{}{
		"Medico":         buildMedicoSchema(),
		"Paciente":       buildPacienteSchema(),
		"Imagen":         buildImagenSchema(),
		"Informe":        buildInformeSchema(),
		"InformeRequest": buildInformeRequestSchema(),
		"Prediction":     object(map[string]interface{}{"prediction": str()}),
		"UploadResponse": object(map[string]interface{}{"response": str()}),
		"Reference":      object(map[string]interface{}{"id": integer()}),
		"Error":          object(map[string]interface{}{"message": str()}),
	}
}

func object(props map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": props}
}

func str() map[string]interface{} { return map[string]interface{}{"type": "string"} }

func integer() map[string]interface{} {
	return map[string]interface{}{"type": "integer", "format": "int64"}
}

func buildMedicoSchema() map[string]interface{} {
	s := object(map[string]interface{}{
		"id":           integer(),
		"dni":          str(),
		"nombre":       str(),
		"especialidad": str(),
	})
	s["required"] = []string{"dni", "nombre"}
	return s
}

func buildPacienteSchema() map[string]interface{} {
	s := object(map[string]interface{}{
		"id":     integer(),
		"nombre": str(),
		"edad":   map[string]interface{}{"type": "integer", "minimum": 0},
		"cita":   str(),
		"motivo": str(),
		"dni":    str(),
		"medico": map[string]interface{}{"$ref": "#/components/schemas/Medico", "nullable": true},
	})
	s["required"] = []string{"nombre", "edad", "dni", "medico"}
	return s
}

func buildImagenSchema() map[string]interface{} {
	return object(map[string]interface{}{
		"id":         integer(),
		"nombre":     str(),
		"fecha":      map[string]interface{}{"type": "string", "format": "date-time"},
		"paciente":   schemaRef("Paciente"),
		"prediccion": str(),
	})
}

func buildInformeSchema() map[string]interface{} {
	return object(map[string]interface{}{
		"id":         integer(),
		"contenido":  str(),
		"prediccion": str(),
		"imagen":     schemaRef("Imagen"),
	})
}

func buildInformeRequestSchema() map[string]interface{} {
	s := object(map[string]interface{}{
		"contenido": str(),
		"imagen":    schemaRef("Reference"),
	})
	s["required"] = []string{"contenido", "imagen"}
	return s
}

// Handler serves the document for the routes registered on the request's
// Echo instance.
func (g *Generator) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, g.GenerateSpec(c.Echo().Routes()))
	}
}
