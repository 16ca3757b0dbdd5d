package informe

import "context"

type Repository interface {
	Create(ctx context.Context, inf *Informe) error
	GetByID(ctx context.Context, id int64) (*Informe, error)
	ListByImagen(ctx context.Context, imagenID int64) ([]*Informe, error)
	Delete(ctx context.Context, id int64) error
}
