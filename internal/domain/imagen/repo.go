package imagen

import "context"

type Repository interface {
	Create(ctx context.Context, img *Imagen) error
	GetByID(ctx context.Context, id int64) (*Imagen, error)
	ListByPaciente(ctx context.Context, pacienteID int64) ([]*Imagen, error)
	SetPrediccion(ctx context.Context, id int64, prediccion string) error
	Delete(ctx context.Context, id int64) error
}
