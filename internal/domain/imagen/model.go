package imagen

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/ehr/radiologia/internal/domain/identity"
)

// Imagen maps to the imagen table. The upload filename is kept as a stem
// (Nombre) and an extension; JSON answers carry them joined.
type Imagen struct {
	ID          int64              `db:"id"`
	Nombre      string             `db:"nombre"`
	Extension   string             `db:"extension"`
	ContentType string             `db:"content_type"`
	PacienteID  int64              `db:"paciente_id"`
	Paciente    *identity.Paciente `db:"-"`
	Prediccion  *string            `db:"prediccion"`
	Fecha       time.Time          `db:"fecha"`
}

// Filename returns the original upload name, e.g. "healthy.png".
func (i *Imagen) Filename() string {
	return i.Nombre + i.Extension
}

type imagenJSON struct {
	ID         int64              `json:"id"`
	Nombre     string             `json:"nombre"`
	Fecha      time.Time          `json:"fecha"`
	Paciente   *identity.Paciente `json:"paciente"`
	Prediccion *string            `json:"prediccion,omitempty"`
}

func (i Imagen) MarshalJSON() ([]byte, error) {
	p := i.Paciente
	if p == nil {
		p = &identity.Paciente{ID: i.PacienteID}
	}
	return json.Marshal(imagenJSON{
		ID:         i.ID,
		Nombre:     i.Filename(),
		Fecha:      i.Fecha,
		Paciente:   p,
		Prediccion: i.Prediccion,
	})
}

// splitFilename separates the final extension, dot included.
func splitFilename(name string) (stem, ext string) {
	name = filepath.Base(name)
	ext = filepath.Ext(name)
	if ext == name {
		// dotfile such as ".png"
		return name, ""
	}
	return name[:len(name)-len(ext)], ext
}
