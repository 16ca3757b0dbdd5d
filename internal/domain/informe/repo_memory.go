package informe

import (
	"context"
	"sort"
	"sync"

	"github.com/ehr/radiologia/internal/platform/apperr"
)

type repoMemory struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]Informe
}

func NewRepoMemory() Repository {
	return &repoMemory{rows: make(map[int64]Informe)}
}

func (r *repoMemory) Create(_ context.Context, inf *Informe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	inf.ID = r.nextID
	cp := *inf
	cp.Imagen = nil
	r.rows[inf.ID] = cp
	return nil
}

func (r *repoMemory) GetByID(_ context.Context, id int64) (*Informe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inf, ok := r.rows[id]
	if !ok {
		return nil, apperr.NotFound("informe", id)
	}
	return &inf, nil
}

func (r *repoMemory) ListByImagen(_ context.Context, imagenID int64) ([]*Informe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var items []*Informe
	for _, inf := range r.rows {
		if inf.ImagenID == imagenID {
			inf := inf
			items = append(items, &inf)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *repoMemory) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return apperr.NotFound("informe", id)
	}
	delete(r.rows, id)
	return nil
}
