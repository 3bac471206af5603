// Package alloy computes the optical report of a two-phase binary alloy:
// validation, mixing, reflectivity, wavelength grid and color coordinates.
package alloy

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/RMahshie/alloptic/internal/mixing"
	"github.com/RMahshie/alloptic/internal/optics"
	"github.com/RMahshie/alloptic/pkg/models"
)

// FitResidualsKey is the diagnostic entry a ColorCalculator may return.
// It is not part of the report.
const FitResidualsKey = "fit_residuals"

// ColorCalculator maps a reflectivity spectrum to named color coordinates.
type ColorCalculator interface {
	Calculate(energies, reflectivity []float64) (map[string]any, error)
}

// Service builds alloy reports.
type Service struct {
	color ColorCalculator
}

// NewService creates a report service. color may be nil, in which case
// reports carry no color coordinates.
func NewService(color ColorCalculator) *Service {
	return &Service{color: color}
}

// Compute validates cfg and the two spectra, mixes them and derives every
// series of the report. Configuration and grid errors abort before any
// computation; unresolved Bruggeman samples do not.
func (s *Service) Compute(cfg Config, a, b models.Spectrum) (*models.AlloyReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := models.ValidatePair(a, b); err != nil {
		return nil, err
	}

	model, err := mixing.New(cfg.Method)
	if err != nil {
		return nil, err
	}
	resp := model.Mix(a, b, cfg.Fraction)

	alloy := cfg.Label()
	for _, u := range resp.Unresolved {
		log.Warn().
			Str("alloy", alloy).
			Int("index", u.Index).
			Float64("energy", u.Energy).
			Float64("root1_imag", u.Root1Imag).
			Float64("root2_imag", u.Root2Imag).
			Msg("Dropping sample with no admissible Bruggeman root")
	}

	reflectivity := optics.ReflectivitySeries(resp.N, resp.K)
	wavelengths := optics.Wavelengths(resp.Energies)

	byWavelength := make([]models.SpectralPoint, len(wavelengths))
	for i := range wavelengths {
		byWavelength[i] = models.SpectralPoint{Wavelength: wavelengths[i], Reflectivity: reflectivity[i]}
	}

	report := &models.AlloyReport{
		Alloy:                    alloy,
		Method:                   model.Name(),
		Fraction:                 cfg.Fraction,
		PhaseA:                   cfg.PhaseA,
		PhaseB:                   cfg.PhaseB,
		Energies:                 resp.Energies,
		EpsRe:                    resp.EpsRe,
		EpsIm:                    resp.EpsIm,
		N:                        resp.N,
		K:                        resp.K,
		Reflectivity:             reflectivity,
		Wavelengths:              wavelengths,
		ReflectivityByWavelength: byWavelength,
		Unresolved:               resp.Unresolved,
	}

	switch {
	case s.color == nil:
	case len(report.Energies) == 0:
		log.Warn().Str("alloy", alloy).Msg("No resolved samples, skipping color coordinates")
	default:
		color, err := s.color.Calculate(report.Energies, report.Reflectivity)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate color coordinates: %w", err)
		}
		report.Color = publicCoordinates(color)
	}

	log.Info().
		Str("alloy", alloy).
		Str("method", report.Method).
		Int("samples", len(report.Energies)).
		Int("unresolved", len(report.Unresolved)).
		Msg("Alloy report computed")

	return report, nil
}

// publicCoordinates keeps the numeric coordinates and drops the fit residuals.
func publicCoordinates(raw map[string]any) map[string]float64 {
	out := make(map[string]float64, len(raw))
	for name, v := range raw {
		if name == FitResidualsKey {
			continue
		}
		if f, ok := v.(float64); ok {
			out[name] = f
		}
	}
	return out
}
