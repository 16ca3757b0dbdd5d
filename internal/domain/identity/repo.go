package identity

import "context"

// Lookups of a missing id return an error wrapping apperr.ErrNotFound.

type MedicoRepository interface {
	Create(ctx context.Context, m *Medico) error
	GetByID(ctx context.Context, id int64) (*Medico, error)
	GetByDNI(ctx context.Context, dni string) (*Medico, error)
	Update(ctx context.Context, m *Medico) error
	Delete(ctx context.Context, id int64) error
}

type PacienteRepository interface {
	Create(ctx context.Context, p *Paciente) error
	GetByID(ctx context.Context, id int64) (*Paciente, error)
	Update(ctx context.Context, p *Paciente) error
	Delete(ctx context.Context, id int64) error
	ListByMedico(ctx context.Context, medicoID int64) ([]*Paciente, error)
}
