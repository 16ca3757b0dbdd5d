// Package prediction talks to the external image classifier that labels an
// image as cancer / not cancer with a confidence score.
package prediction

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ehr/radiologia/internal/platform/apperr"
)

const (
	LabelNotCancer = 0
	LabelCancer    = 1
)

// Result is one classifier answer.
type Result struct {
	Label        int     `json:"label"`
	DisplayLabel string  `json:"display_label"`
	Score        float64 `json:"score"`
}

// NewResult validates the label and fills in its display name.
func NewResult(label int, score float64) (Result, error) {
	switch label {
	case LabelNotCancer:
		return Result{Label: label, DisplayLabel: "Not cancer", Score: score}, nil
	case LabelCancer:
		return Result{Label: label, DisplayLabel: "Cancer", Score: score}, nil
	default:
		return Result{}, fmt.Errorf("unknown label %d: %w", label, apperr.ErrPredictionUnavailable)
	}
}

// String renders the result in the format stored on reports, e.g.
// "Cancer (label 1), score: 0.6412607431411743".
//
// The "Not cancer" form has two spaces before "score". Existing reports
// contain it, so it must not be normalised.
func (r Result) String() string {
	sep := ", "
	if r.Label == LabelNotCancer {
		sep = ",  "
	}
	return fmt.Sprintf("%s (label %d)%sscore: %s", r.DisplayLabel, r.Label, sep, formatScore(r.Score))
}

// formatScore prints the shortest decimal that round-trips, keeping a ".0"
// on whole numbers ("1.0", not "1").
func formatScore(score float64) string {
	s := strconv.FormatFloat(score, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

// Predictor classifies raw image bytes. Failures wrap
// apperr.ErrPredictionUnavailable.
type Predictor interface {
	Predict(ctx context.Context, image []byte) (Result, error)
}
