package identity

import (
	"context"
	"sort"
	"sync"

	"github.com/ehr/radiologia/internal/platform/apperr"
)

// In-memory repositories back STORE_BACKEND=memory. Records are copied in
// and out so callers never share state with the store.

type medicoRepoMemory struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]Medico
}

func NewMedicoRepoMemory() MedicoRepository {
	return &medicoRepoMemory{rows: make(map[int64]Medico)}
}

func (r *medicoRepoMemory) Create(_ context.Context, m *Medico) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	r.rows[m.ID] = *m
	return nil
}

func (r *medicoRepoMemory) GetByID(_ context.Context, id int64) (*Medico, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.rows[id]
	if !ok {
		return nil, apperr.NotFound("medico", id)
	}
	return &m, nil
}

func (r *medicoRepoMemory) GetByDNI(_ context.Context, dni string) (*Medico, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *Medico
	for _, m := range r.rows {
		if m.DNI != dni {
			continue
		}
		if found == nil || m.ID < found.ID {
			m := m
			found = &m
		}
	}
	if found == nil {
		return nil, apperr.NotFoundf("medico with dni %q", dni)
	}
	return found, nil
}

func (r *medicoRepoMemory) Update(_ context.Context, m *Medico) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[m.ID]; !ok {
		return apperr.NotFound("medico", m.ID)
	}
	r.rows[m.ID] = *m
	return nil
}

func (r *medicoRepoMemory) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return apperr.NotFound("medico", id)
	}
	delete(r.rows, id)
	return nil
}

type pacienteRepoMemory struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]Paciente
}

func NewPacienteRepoMemory() PacienteRepository {
	return &pacienteRepoMemory{rows: make(map[int64]Paciente)}
}

func (r *pacienteRepoMemory) Create(_ context.Context, p *Paciente) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	r.rows[p.ID] = stored(p)
	return nil
}

// stored drops the resolved doctor so only MedicoID is kept.
func stored(p *Paciente) Paciente {
	cp := *p
	cp.Medico = nil
	return cp
}

func (r *pacienteRepoMemory) GetByID(_ context.Context, id int64) (*Paciente, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, apperr.NotFound("paciente", id)
	}
	return &p, nil
}

func (r *pacienteRepoMemory) Update(_ context.Context, p *Paciente) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[p.ID]; !ok {
		return apperr.NotFound("paciente", p.ID)
	}
	r.rows[p.ID] = stored(p)
	return nil
}

func (r *pacienteRepoMemory) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return apperr.NotFound("paciente", id)
	}
	delete(r.rows, id)
	return nil
}

func (r *pacienteRepoMemory) ListByMedico(_ context.Context, medicoID int64) ([]*Paciente, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var items []*Paciente
	for _, p := range r.rows {
		if p.MedicoID == medicoID {
			p := p
			items = append(items, &p)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}
