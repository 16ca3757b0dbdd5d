package informe

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ehr/radiologia/internal/domain/imagen"
	"github.com/ehr/radiologia/internal/platform/apperr"
	"github.com/ehr/radiologia/internal/platform/prediction"
)

// -- Fake image service --

type fakeImages struct {
	images map[int64]*imagen.Imagen
	res    prediction.Result
	err    error
	calls  int
}

func newFakeImages() *fakeImages {
	res, _ := prediction.NewResult(prediction.LabelCancer, 0.6412607431411743)
	return &fakeImages{
		images: map[int64]*imagen.Imagen{
			1: {ID: 1, Nombre: "no_healthty", Extension: ".png", PacienteID: 1},
		},
		res: res,
	}
}

func (f *fakeImages) FetchMetadata(_ context.Context, id int64) (*imagen.Imagen, error) {
	img, ok := f.images[id]
	if !ok {
		return nil, apperr.NotFound("imagen", id)
	}
	cp := *img
	return &cp, nil
}

func (f *fakeImages) Predict(ctx context.Context, id int64) (prediction.Result, error) {
	f.calls++
	if _, err := f.FetchMetadata(ctx, id); err != nil {
		return prediction.Result{}, err
	}
	return f.res, f.err
}

func newTestService() (*Service, *fakeImages, Repository) {
	images := newFakeImages()
	repo := NewRepoMemory()
	return NewService(repo, images, zerolog.Nop()), images, repo
}

// -- Service Tests --

func TestCreate_FreezesPrediction(t *testing.T) {
	svc, images, _ := newTestService()
	ctx := context.Background()

	inf, err := svc.Create(ctx, "Foto del cancer", 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	want := "Cancer (label 1), score: 0.6412607431411743"
	if inf.ID != 1 || inf.Prediccion != want || inf.Contenido != "Foto del cancer" {
		t.Errorf("unexpected informe: %+v", inf)
	}
	if inf.Imagen == nil || inf.Imagen.Filename() != "no_healthty.png" {
		t.Errorf("expected resolved imagen, got %+v", inf.Imagen)
	}

	images.res, _ = prediction.NewResult(prediction.LabelNotCancer, 0.1)
	got, err := svc.Get(ctx, inf.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Prediccion != want {
		t.Errorf("expected frozen prediction %q, got %q", want, got.Prediccion)
	}
	if images.calls != 1 {
		t.Errorf("expected a single predictor call, got %d", images.calls)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, images, _ := newTestService()
	tests := []struct {
		name      string
		contenido string
		imagenID  int64
	}{
		{"empty contenido", "  ", 1},
		{"missing imagen", "texto", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.contenido, tt.imagenID)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
	if images.calls != 0 {
		t.Errorf("expected no predictor calls, got %d", images.calls)
	}
}

func TestCreate_UnknownImagen(t *testing.T) {
	svc, images, _ := newTestService()
	if _, err := svc.Create(context.Background(), "texto", 9); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if images.calls != 0 {
		t.Errorf("expected no predictor calls, got %d", images.calls)
	}
}

func TestCreate_PredictionUnavailableStoresNothing(t *testing.T) {
	svc, images, repo := newTestService()
	images.err = fmt.Errorf("timeout: %w", apperr.ErrPredictionUnavailable)

	if _, err := svc.Create(context.Background(), "texto", 1); !errors.Is(err, apperr.ErrPredictionUnavailable) {
		t.Fatalf("expected prediction unavailable, got %v", err)
	}
	items, _ := repo.ListByImagen(context.Background(), 1)
	if len(items) != 0 {
		t.Errorf("expected no stored informe, got %d", len(items))
	}
}

func TestListByImagen(t *testing.T) {
	svc, images, _ := newTestService()
	ctx := context.Background()
	images.images[2] = &imagen.Imagen{ID: 2, Nombre: "otra", Extension: ".png"}
	for _, id := range []int64{1, 2, 1} {
		if _, err := svc.Create(ctx, "texto", id); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	items, err := svc.ListByImagen(ctx, 1)
	if err != nil {
		t.Fatalf("ListByImagen: %v", err)
	}
	if len(items) != 2 || items[0].ID != 1 || items[1].ID != 3 {
		t.Errorf("expected informes 1 and 3, got %+v", items)
	}
}

func TestGet_ImagenDeleted(t *testing.T) {
	svc, images, _ := newTestService()
	ctx := context.Background()
	inf, _ := svc.Create(ctx, "texto", 1)
	delete(images.images, 1)

	got, err := svc.Get(ctx, inf.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Imagen != nil {
		t.Errorf("expected unresolved imagen, got %+v", got.Imagen)
	}
	if got.ImagenID != 1 {
		t.Errorf("expected imagen id to be kept, got %d", got.ImagenID)
	}
}

func TestDelete(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	inf, _ := svc.Create(ctx, "texto", 1)
	if err := svc.Delete(ctx, inf.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, inf.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if err := svc.Delete(ctx, inf.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
