package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/radiologia/internal/platform/apperr"
	"github.com/ehr/radiologia/internal/platform/db"
)

// =========== Medico Repository ===========

type medicoRepoPG struct{ pool *pgxpool.Pool }

func NewMedicoRepoPG(pool *pgxpool.Pool) MedicoRepository {
	return &medicoRepoPG{pool: pool}
}

const medicoCols = `id, dni, nombre, especialidad`

func scanMedico(row pgx.Row) (*Medico, error) {
	var m Medico
	err := row.Scan(&m.ID, &m.DNI, &m.Nombre, &m.Especialidad)
	return &m, err
}

func (r *medicoRepoPG) Create(ctx context.Context, m *Medico) error {
	return db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO medico (dni, nombre, especialidad)
		VALUES ($1, $2, $3)
		RETURNING id`,
		m.DNI, m.Nombre, m.Especialidad).Scan(&m.ID)
}

func (r *medicoRepoPG) GetByID(ctx context.Context, id int64) (*Medico, error) {
	m, err := scanMedico(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+medicoCols+` FROM medico WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("medico", id)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *medicoRepoPG) GetByDNI(ctx context.Context, dni string) (*Medico, error) {
	m, err := scanMedico(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+medicoCols+` FROM medico WHERE dni = $1 ORDER BY id LIMIT 1`, dni))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("medico with dni %q", dni)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *medicoRepoPG) Update(ctx context.Context, m *Medico) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE medico SET dni=$2, nombre=$3, especialidad=$4
		WHERE id = $1`,
		m.ID, m.DNI, m.Nombre, m.Especialidad)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("medico", m.ID)
	}
	return nil
}

func (r *medicoRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM medico WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("medico", id)
	}
	return nil
}

// =========== Paciente Repository ===========

type pacienteRepoPG struct{ pool *pgxpool.Pool }

func NewPacienteRepoPG(pool *pgxpool.Pool) PacienteRepository {
	return &pacienteRepoPG{pool: pool}
}

const pacienteCols = `id, nombre, edad, cita, motivo, dni, medico_id`

func scanPaciente(row pgx.Row) (*Paciente, error) {
	var p Paciente
	err := row.Scan(&p.ID, &p.Nombre, &p.Edad, &p.Cita, &p.Motivo, &p.DNI, &p.MedicoID)
	return &p, err
}

func (r *pacienteRepoPG) Create(ctx context.Context, p *Paciente) error {
	return db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO paciente (nombre, edad, cita, motivo, dni, medico_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		p.Nombre, p.Edad, p.Cita, p.Motivo, p.DNI, p.MedicoID).Scan(&p.ID)
}

func (r *pacienteRepoPG) GetByID(ctx context.Context, id int64) (*Paciente, error) {
	p, err := scanPaciente(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+pacienteCols+` FROM paciente WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("paciente", id)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pacienteRepoPG) Update(ctx context.Context, p *Paciente) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE paciente SET nombre=$2, edad=$3, cita=$4, motivo=$5, dni=$6, medico_id=$7
		WHERE id = $1`,
		p.ID, p.Nombre, p.Edad, p.Cita, p.Motivo, p.DNI, p.MedicoID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("paciente", p.ID)
	}
	return nil
}

func (r *pacienteRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM paciente WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("paciente", id)
	}
	return nil
}

func (r *pacienteRepoPG) ListByMedico(ctx context.Context, medicoID int64) ([]*Paciente, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx,
		`SELECT `+pacienteCols+` FROM paciente WHERE medico_id = $1 ORDER BY id`, medicoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Paciente
	for rows.Next() {
		p, err := scanPaciente(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
