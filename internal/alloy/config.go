package alloy

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/RMahshie/alloptic/internal/mixing"
	"github.com/RMahshie/alloptic/pkg/models"
)

// Config names one alloy computation.
type Config struct {
	Method   string
	Fraction float64 // atomic fraction x of phase B
	PhaseA   string
	PhaseB   string
}

// FromParams converts request parameters into a Config.
func FromParams(p models.MixParams) Config {
	return Config{Method: p.Method, Fraction: p.Fraction, PhaseA: p.PhaseA, PhaseB: p.PhaseB}
}

// ErrMissingLabel is returned when a phase label is empty.
var ErrMissingLabel = errors.New("both phase labels are required")

// FractionRangeError reports a composition outside [0, 1].
type FractionRangeError struct {
	Fraction float64
}

func (e *FractionRangeError) Error() string {
	return fmt.Sprintf("composition fraction %g outside [0, 1]", e.Fraction)
}

// Validate checks the configuration once, before any spectrum is touched.
func (c Config) Validate() error {
	if _, err := mixing.New(c.Method); err != nil {
		return err
	}
	// NaN fails both comparisons, so test for the valid range.
	if !(c.Fraction >= 0 && c.Fraction <= 1) {
		return &FractionRangeError{Fraction: c.Fraction}
	}
	if c.PhaseA == "" || c.PhaseB == "" {
		return ErrMissingLabel
	}
	return nil
}

// Label composes the alloy identifier, e.g. Au0.6Ag0.4 for PhaseA=Au, PhaseB=Ag, Fraction=0.4.
func (c Config) Label() string {
	return c.PhaseA + formatWeight(1-c.Fraction) + c.PhaseB + formatWeight(c.Fraction)
}

// formatWeight prints 12 significant digits so 1-0.7 labels as 0.3.
func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'g', 12, 64)
}
