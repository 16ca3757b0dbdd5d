package informe

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/radiologia/internal/domain/imagen"
	"github.com/ehr/radiologia/internal/platform/apperr"
	"github.com/ehr/radiologia/internal/platform/prediction"
)

// Images is the part of the image service reports depend on.
type Images interface {
	FetchMetadata(ctx context.Context, id int64) (*imagen.Imagen, error)
	Predict(ctx context.Context, id int64) (prediction.Result, error)
}

type Service struct {
	repo   Repository
	images Images
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, images Images, logger zerolog.Logger) *Service {
	return &Service{repo: repo, images: images, logger: logger, now: time.Now}
}

// Create runs the prediction for imagenID and stores the report with the
// rendered result. Nothing is stored if the prediction fails.
func (s *Service) Create(ctx context.Context, contenido string, imagenID int64) (*Informe, error) {
	if strings.TrimSpace(contenido) == "" {
		return nil, apperr.Validation("informe contenido is required")
	}
	if imagenID <= 0 {
		return nil, apperr.Validation("informe imagen id is required")
	}
	img, err := s.images.FetchMetadata(ctx, imagenID)
	if err != nil {
		return nil, err
	}
	res, err := s.images.Predict(ctx, imagenID)
	if err != nil {
		return nil, err
	}

	inf := &Informe{
		Contenido:  contenido,
		Prediccion: res.String(),
		ImagenID:   imagenID,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, inf); err != nil {
		return nil, err
	}
	inf.Imagen = img
	s.logger.Info().
		Int64("informe_id", inf.ID).
		Int64("imagen_id", imagenID).
		Int("label", res.Label).
		Msg("report created")
	return inf, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Informe, error) {
	inf, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachImagen(ctx, inf); err != nil {
		return nil, err
	}
	return inf, nil
}

func (s *Service) ListByImagen(ctx context.Context, imagenID int64) ([]*Informe, error) {
	items, err := s.repo.ListByImagen(ctx, imagenID)
	if err != nil {
		return nil, err
	}
	for _, inf := range items {
		if err := s.attachImagen(ctx, inf); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// attachImagen resolves the image; a deleted one leaves only the id.
func (s *Service) attachImagen(ctx context.Context, inf *Informe) error {
	img, err := s.images.FetchMetadata(ctx, inf.ImagenID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return nil
	case err != nil:
		return err
	}
	inf.Imagen = img
	return nil
}
