package models

import (
	"errors"
	"fmt"
)

// Spectrum holds the tabulated dielectric function of one material phase.
// The three series share one index: Energies[i] (eV) pairs with EpsRe[i] and EpsIm[i].
type Spectrum struct {
	Energies []float64 `json:"energies" doc:"Photon energies in eV, strictly increasing"`
	EpsRe    []float64 `json:"eps_re" doc:"Real part of the dielectric function"`
	EpsIm    []float64 `json:"eps_im" doc:"Imaginary part of the dielectric function"`
}

// NewSpectrum builds a Spectrum from copies of the given series.
func NewSpectrum(energies, epsRe, epsIm []float64) (Spectrum, error) {
	if len(energies) == 0 {
		return Spectrum{}, errors.New("spectrum has no samples")
	}
	if !(energies[0] > 0) {
		return Spectrum{}, fmt.Errorf("energies must be positive eV, sample 0 is %g", energies[0])
	}
	if len(epsRe) != len(energies) || len(epsIm) != len(energies) {
		return Spectrum{}, fmt.Errorf("spectrum series lengths differ: energies=%d eps_re=%d eps_im=%d",
			len(energies), len(epsRe), len(epsIm))
	}
	for i := 1; i < len(energies); i++ {
		if energies[i] <= energies[i-1] {
			return Spectrum{}, fmt.Errorf("energies not strictly increasing at sample %d (%g after %g)",
				i, energies[i], energies[i-1])
		}
	}

	return Spectrum{
		Energies: append([]float64(nil), energies...),
		EpsRe:    append([]float64(nil), epsRe...),
		EpsIm:    append([]float64(nil), epsIm...),
	}, nil
}

// Len returns the number of energy samples.
func (s Spectrum) Len() int {
	return len(s.Energies)
}

// Dielectric returns the complex dielectric function at sample i.
func (s Spectrum) Dielectric(i int) complex128 {
	return complex(s.EpsRe[i], s.EpsIm[i])
}

// Validate re-checks the invariants NewSpectrum enforces, for values decoded
// from JSON rather than constructed.
func (s Spectrum) Validate() error {
	_, err := NewSpectrum(s.Energies, s.EpsRe, s.EpsIm)
	return err
}

// DataMismatchError reports two phase spectra with different sample counts.
type DataMismatchError struct {
	LenA int
	LenB int
}

func (e *DataMismatchError) Error() string {
	return fmt.Sprintf("different number of energy values: phase A has %d, phase B has %d", e.LenA, e.LenB)
}

// ValidatePair checks that two phases can be mixed sample by sample.
//
// Only the sample counts are compared. The grids are assumed identical by
// construction and individual energy values are not checked against each other.
func ValidatePair(a, b Spectrum) error {
	if a.Len() != b.Len() {
		return &DataMismatchError{LenA: a.Len(), LenB: b.Len()}
	}
	return nil
}
