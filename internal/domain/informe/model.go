package informe

import (
	"encoding/json"
	"time"

	"github.com/ehr/radiologia/internal/domain/imagen"
)

// Informe maps to the informe table. Prediccion is captured when the report
// is created and never recomputed.
type Informe struct {
	ID         int64          `db:"id"`
	Contenido  string         `db:"contenido"`
	Prediccion string         `db:"prediccion"`
	ImagenID   int64          `db:"imagen_id"`
	Imagen     *imagen.Imagen `db:"-"`
	CreatedAt  time.Time      `db:"created_at"`
}

type informeJSON struct {
	ID         int64          `json:"id"`
	Contenido  string         `json:"contenido"`
	Prediccion string         `json:"prediccion"`
	Imagen     *imagen.Imagen `json:"imagen"`
}

func (i Informe) MarshalJSON() ([]byte, error) {
	// the image's latest prediction may differ from the one frozen here
	img := &imagen.Imagen{ID: i.ImagenID}
	if i.Imagen != nil {
		cp := *i.Imagen
		cp.Prediccion = nil
		img = &cp
	}
	return json.Marshal(informeJSON{
		ID:         i.ID,
		Contenido:  i.Contenido,
		Prediccion: i.Prediccion,
		Imagen:     img,
	})
}

// CreateRequest is the POST /informe body. Only imagen.id is read.
type CreateRequest struct {
	Contenido string `json:"contenido"`
	Imagen    struct {
		ID int64 `json:"id"`
	} `json:"imagen"`
}
