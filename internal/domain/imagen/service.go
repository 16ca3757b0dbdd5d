package imagen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/ehr/radiologia/internal/domain/identity"
	"github.com/ehr/radiologia/internal/platform/apperr"
	"github.com/ehr/radiologia/internal/platform/blobstore"
	"github.com/ehr/radiologia/internal/platform/db"
	"github.com/ehr/radiologia/internal/platform/prediction"
)

// sniffLen is how much of an upload is inspected when the extension does
// not name a known type.
const sniffLen = 3072

// PacienteLookup resolves the owner of an image.
type PacienteLookup interface {
	GetPaciente(ctx context.Context, id int64) (*identity.Paciente, error)
}

type Service struct {
	repo      Repository
	blobs     blobstore.BlobStore
	pacientes PacienteLookup
	predictor prediction.Predictor
	tx        db.TxRunner
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(repo Repository, blobs blobstore.BlobStore, pacientes PacienteLookup,
	predictor prediction.Predictor, tx db.TxRunner, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		blobs:     blobs,
		pacientes: pacientes,
		predictor: predictor,
		tx:        tx,
		logger:    logger,
		now:       time.Now,
	}
}

// Upload stores content as a new image owned by pacienteID. The record and
// its bytes are written together or not at all.
func (s *Service) Upload(ctx context.Context, pacienteID int64, filename string, content io.Reader) (*Imagen, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, apperr.Validation("image filename is required")
	}
	p, err := s.pacientes.GetPaciente(ctx, pacienteID)
	if err != nil {
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(content, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	stem, ext := splitFilename(filename)
	img := &Imagen{
		Nombre:      stem,
		Extension:   ext,
		ContentType: contentType(ext, head),
		PacienteID:  p.ID,
		Fecha:       s.now().UTC(),
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, img); err != nil {
			return fmt.Errorf("create imagen: %w", err)
		}
		if _, err := s.blobs.Put(ctx, img.ID, io.MultiReader(bytes.NewReader(head), content)); err != nil {
			if db.TxFromContext(ctx) == nil {
				// no transaction to roll back
				_ = s.repo.Delete(ctx, img.ID)
			}
			return fmt.Errorf("store imagen %d bytes: %w", img.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	img.Paciente = p
	s.logger.Info().
		Int64("imagen_id", img.ID).
		Int64("paciente_id", p.ID).
		Str("filename", img.Filename()).
		Str("content_type", img.ContentType).
		Msg("image uploaded")
	return img, nil
}

// contentType prefers the extension and falls back to sniffing the bytes.
func contentType(ext string, head []byte) string {
	if ext != "" {
		if ct := mime.TypeByExtension(strings.ToLower(ext)); ct != "" {
			return ct
		}
	}
	return mimetype.Detect(head).String()
}

// FetchBytes returns the stored bytes exactly as uploaded, with their type.
func (s *Service) FetchBytes(ctx context.Context, id int64) ([]byte, string, error) {
	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	rc, _, err := s.blobs.Get(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("imagen %d bytes: %w", id, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", fmt.Errorf("read imagen %d bytes: %w", id, err)
	}
	ct := img.ContentType
	if ct == "" {
		ct = mimetype.Detect(data).String()
	}
	return data, ct, nil
}

// FetchMetadata returns the image record with its owner resolved.
func (s *Service) FetchMetadata(ctx context.Context, id int64) (*Imagen, error) {
	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.lookupPaciente(ctx, img.PacienteID)
	if err != nil {
		return nil, err
	}
	img.Paciente = p
	return img, nil
}

func (s *Service) ListByPatient(ctx context.Context, pacienteID int64) ([]*Imagen, error) {
	items, err := s.repo.ListByPaciente(ctx, pacienteID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}
	p, err := s.lookupPaciente(ctx, pacienteID)
	if err != nil {
		return nil, err
	}
	for _, img := range items {
		img.Paciente = p
	}
	return items, nil
}

// lookupPaciente tolerates an owner deleted after the upload.
func (s *Service) lookupPaciente(ctx context.Context, id int64) (*identity.Paciente, error) {
	p, err := s.pacientes.GetPaciente(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// Delete removes the record and its bytes. Reports on the image are kept.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
		if err := s.blobs.Delete(ctx, id); err != nil && !errors.Is(err, blobstore.ErrBlobNotFound) {
			return fmt.Errorf("delete imagen %d bytes: %w", id, err)
		}
		return nil
	})
}

// Predict classifies the stored bytes and records the rendered result on
// the image.
func (s *Service) Predict(ctx context.Context, id int64) (prediction.Result, error) {
	data, _, err := s.FetchBytes(ctx, id)
	if err != nil {
		return prediction.Result{}, err
	}
	res, err := s.predictor.Predict(ctx, data)
	if err != nil {
		s.logger.Error().Err(err).Int64("imagen_id", id).Msg("prediction failed")
		return prediction.Result{}, err
	}
	if err := s.repo.SetPrediccion(ctx, id, res.String()); err != nil {
		s.logger.Warn().Err(err).Int64("imagen_id", id).Msg("recording prediction")
	}
	return res, nil
}
