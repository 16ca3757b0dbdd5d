package imagen

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/radiologia/internal/platform/apperr"
	"github.com/ehr/radiologia/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const imagenCols = `id, nombre, extension, content_type, paciente_id, prediccion, fecha`

func scanImagen(row pgx.Row) (*Imagen, error) {
	var img Imagen
	err := row.Scan(&img.ID, &img.Nombre, &img.Extension, &img.ContentType,
		&img.PacienteID, &img.Prediccion, &img.Fecha)
	return &img, err
}

func (r *repoPG) Create(ctx context.Context, img *Imagen) error {
	return db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO imagen (nombre, extension, content_type, paciente_id, fecha)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		img.Nombre, img.Extension, img.ContentType, img.PacienteID, img.Fecha).Scan(&img.ID)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Imagen, error) {
	img, err := scanImagen(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+imagenCols+` FROM imagen WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("imagen", id)
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (r *repoPG) ListByPaciente(ctx context.Context, pacienteID int64) ([]*Imagen, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx,
		`SELECT `+imagenCols+` FROM imagen WHERE paciente_id = $1 ORDER BY id`, pacienteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Imagen
	for rows.Next() {
		img, err := scanImagen(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, img)
	}
	return items, rows.Err()
}

func (r *repoPG) SetPrediccion(ctx context.Context, id int64, prediccion string) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE imagen SET prediccion = $2 WHERE id = $1`, id, prediccion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("imagen", id)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM imagen WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("imagen", id)
	}
	return nil
}
