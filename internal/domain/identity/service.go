package identity

import (
	"context"
	"errors"

	"github.com/ehr/radiologia/internal/platform/apperr"
)

type Service struct {
	medicos   MedicoRepository
	pacientes PacienteRepository
}

func NewService(medicos MedicoRepository, pacientes PacienteRepository) *Service {
	return &Service{medicos: medicos, pacientes: pacientes}
}

// -- Medico --

func validateMedico(m *Medico) error {
	if m.DNI == "" {
		return apperr.Validation("medico dni is required")
	}
	if m.Nombre == "" {
		return apperr.Validation("medico nombre is required")
	}
	return nil
}

func (s *Service) CreateMedico(ctx context.Context, m *Medico) error {
	if err := validateMedico(m); err != nil {
		return err
	}
	m.ID = 0
	return s.medicos.Create(ctx, m)
}

func (s *Service) GetMedico(ctx context.Context, id int64) (*Medico, error) {
	return s.medicos.GetByID(ctx, id)
}

func (s *Service) GetMedicoByDNI(ctx context.Context, dni string) (*Medico, error) {
	return s.medicos.GetByDNI(ctx, dni)
}

func (s *Service) UpdateMedico(ctx context.Context, m *Medico) error {
	if m.ID == 0 {
		return apperr.Validation("medico id is required")
	}
	if err := validateMedico(m); err != nil {
		return err
	}
	return s.medicos.Update(ctx, m)
}

func (s *Service) DeleteMedico(ctx context.Context, id int64) error {
	return s.medicos.Delete(ctx, id)
}

// -- Paciente --

func (s *Service) validatePaciente(ctx context.Context, p *Paciente) error {
	if p.Nombre == "" {
		return apperr.Validation("paciente nombre is required")
	}
	if p.DNI == "" {
		return apperr.Validation("paciente dni is required")
	}
	if p.Edad < 0 {
		return apperr.Validation("paciente edad must be >= 0")
	}
	ref := p.MedicoRef()
	if ref == 0 {
		return apperr.Validation("paciente medico id is required")
	}
	m, err := s.medicos.GetByID(ctx, ref)
	if err != nil {
		return err
	}
	p.MedicoID = ref
	p.Medico = m
	return nil
}

func (s *Service) CreatePaciente(ctx context.Context, p *Paciente) error {
	if err := s.validatePaciente(ctx, p); err != nil {
		return err
	}
	p.ID = 0
	return s.pacientes.Create(ctx, p)
}

func (s *Service) UpdatePaciente(ctx context.Context, p *Paciente) error {
	if p.ID == 0 {
		return apperr.Validation("paciente id is required")
	}
	if err := s.validatePaciente(ctx, p); err != nil {
		return err
	}
	return s.pacientes.Update(ctx, p)
}

// GetPaciente returns the patient with its doctor resolved. A doctor that
// has since been deleted leaves Medico nil.
func (s *Service) GetPaciente(ctx context.Context, id int64) (*Paciente, error) {
	p, err := s.pacientes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.resolveMedico(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListPacientesByMedico(ctx context.Context, medicoID int64) ([]*Paciente, error) {
	items, err := s.pacientes.ListByMedico(ctx, medicoID)
	if err != nil {
		return nil, err
	}
	for _, p := range items {
		if err := s.resolveMedico(ctx, p); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *Service) DeletePaciente(ctx context.Context, id int64) error {
	return s.pacientes.Delete(ctx, id)
}

func (s *Service) resolveMedico(ctx context.Context, p *Paciente) error {
	m, err := s.medicos.GetByID(ctx, p.MedicoID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		p.Medico = nil
		return nil
	case err != nil:
		return err
	}
	p.Medico = m
	return nil
}
