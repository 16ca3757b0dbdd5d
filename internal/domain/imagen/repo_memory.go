package imagen

import (
	"context"
	"sort"
	"sync"

	"github.com/ehr/radiologia/internal/platform/apperr"
)

type repoMemory struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]Imagen
}

func NewRepoMemory() Repository {
	return &repoMemory{rows: make(map[int64]Imagen)}
}

func (r *repoMemory) Create(_ context.Context, img *Imagen) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	img.ID = r.nextID
	cp := *img
	cp.Paciente = nil
	r.rows[img.ID] = cp
	return nil
}

func (r *repoMemory) GetByID(_ context.Context, id int64) (*Imagen, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	img, ok := r.rows[id]
	if !ok {
		return nil, apperr.NotFound("imagen", id)
	}
	return &img, nil
}

func (r *repoMemory) ListByPaciente(_ context.Context, pacienteID int64) ([]*Imagen, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var items []*Imagen
	for _, img := range r.rows {
		if img.PacienteID == pacienteID {
			img := img
			items = append(items, &img)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *repoMemory) SetPrediccion(_ context.Context, id int64, prediccion string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	img, ok := r.rows[id]
	if !ok {
		return apperr.NotFound("imagen", id)
	}
	img.Prediccion = &prediccion
	r.rows[id] = img
	return nil
}

func (r *repoMemory) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return apperr.NotFound("imagen", id)
	}
	delete(r.rows, id)
	return nil
}
