package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", NotFound("imagen", 7), http.StatusNotFound},
		{"validation", Validation("missing part %q", "image"), http.StatusBadRequest},
		{"prediction", fmt.Errorf("call classifier: %w", ErrPredictionUnavailable), http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.want {
				t.Errorf("Status(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestNotFound_Message(t *testing.T) {
	err := NotFound("paciente", 3)
	if err.Error() != "paciente 3: not found" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is(err, ErrNotFound)")
	}
}

func TestHTTPError_HidesInternalCause(t *testing.T) {
	he := HTTPError(errors.New("connection reset by peer"))
	if he.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", he.Code)
	}
	if he.Message != "internal server error" {
		t.Errorf("expected generic message, got %v", he.Message)
	}
	if he.Internal == nil {
		t.Error("expected internal cause to be kept")
	}
}

func TestHTTPError_PassesThroughEchoErrors(t *testing.T) {
	orig := echo.NewHTTPError(http.StatusRequestEntityTooLarge, "too large")
	if got := HTTPError(orig); got != orig {
		t.Errorf("expected the same *echo.HTTPError back")
	}
}
