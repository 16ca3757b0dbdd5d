package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/ehr/radiologia/internal/platform/apperr"
	"github.com/ehr/radiologia/internal/platform/db/dbtest"
)

func TestRepoPG_MedicoAndPaciente(t *testing.T) {
	pool := dbtest.Pool(t)
	ctx := context.Background()
	medicos := NewMedicoRepoPG(pool)
	pacientes := NewPacienteRepoPG(pool)

	m := &Medico{DNI: "D1", Nombre: "Ana", Especialidad: "Rx"}
	if err := medicos.Create(ctx, m); err != nil {
		t.Fatalf("create medico: %v", err)
	}
	if m.ID != 1 {
		t.Errorf("expected id 1, got %d", m.ID)
	}
	byDNI, err := medicos.GetByDNI(ctx, "D1")
	if err != nil || byDNI.ID != m.ID {
		t.Fatalf("GetByDNI: %v %+v", err, byDNI)
	}

	cita := "Cita cardiologia"
	p := &Paciente{Nombre: "Pepe", Edad: 30, Cita: &cita, Motivo: "control", DNI: "P1", MedicoID: m.ID}
	if err := pacientes.Create(ctx, p); err != nil {
		t.Fatalf("create paciente: %v", err)
	}
	got, err := pacientes.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get paciente: %v", err)
	}
	if got.Cita == nil || *got.Cita != cita || got.MedicoID != m.ID {
		t.Errorf("unexpected paciente: %+v", got)
	}

	items, err := pacientes.ListByMedico(ctx, m.ID)
	if err != nil || len(items) != 1 {
		t.Fatalf("ListByMedico: %v %d", err, len(items))
	}

	if err := pacientes.Update(ctx, &Paciente{ID: 99, Nombre: "x", DNI: "x"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if err := medicos.Delete(ctx, m.ID); err != nil {
		t.Fatalf("delete medico: %v", err)
	}
	if _, err := medicos.GetByID(ctx, m.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	// Patients keep a weak reference to their doctor.
	if _, err := pacientes.GetByID(ctx, p.ID); err != nil {
		t.Errorf("expected patient to survive doctor delete: %v", err)
	}
}
