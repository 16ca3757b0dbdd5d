package informe

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

const informeCols = `id, contenido, prediccion, imagen_id, created_at`

func scanInforme(row pgx.Row) (*Informe, error) {
	var inf Informe
	err := row.Scan(&inf.ID, &inf.Contenido, &inf.Prediccion, &inf.ImagenID, &inf.CreatedAt)
	return &inf, err
}

func (r *repoPG) Create(ctx context.Context, inf *Informe) error {
	return db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO informe (contenido, prediccion, imagen_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		inf.Contenido, inf.Prediccion, inf.ImagenID, inf.CreatedAt).Scan(&inf.ID)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Informe, error) {
	inf, err := scanInforme(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+informeCols+` FROM informe WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("informe", id)
	}
	if err != nil {
		return nil, err
	}
	return inf, nil
}

func (r *repoPG) ListByImagen(ctx context.Context, imagenID int64) ([]*Informe, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx,
		`SELECT `+informeCols+` FROM informe WHERE imagen_id = $1 ORDER BY id`, imagenID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Informe
	for rows.Next() {
		inf, err := scanInforme(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, inf)
	}
	return items, rows.Err()
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM informe WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("informe", id)
	}
	return nil
}
