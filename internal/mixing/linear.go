package mixing

import (
	"gonum.org/v1/gonum/floats"

	"github.com/RMahshie/alloptic/internal/optics"
	"github.com/RMahshie/alloptic/pkg/models"
)

// Average mixes the dielectric functions linearly:
// eps = (1-x)·epsA + x·epsB for both the real and imaginary parts.
type Average struct{}

func (Average) Name() string { return MethodAverage }

func (Average) Mix(a, b models.Spectrum, x float64) *models.MixedResponse {
	epsRe := lerp(a.EpsRe, b.EpsRe, x)
	epsIm := lerp(a.EpsIm, b.EpsIm, x)
	n, k := optics.NKSeries(epsRe, epsIm)

	return &models.MixedResponse{
		Energies: append([]float64(nil), a.Energies...),
		EpsRe:    epsRe,
		EpsIm:    epsIm,
		N:        n,
		K:        k,
	}
}

// Refractive derives n and k of each phase and mixes those linearly.
// It does not produce a dielectric function.
type Refractive struct{}

func (Refractive) Name() string { return MethodRefractive }

func (Refractive) Mix(a, b models.Spectrum, x float64) *models.MixedResponse {
	nA, kA := optics.NKSeries(a.EpsRe, a.EpsIm)
	nB, kB := optics.NKSeries(b.EpsRe, b.EpsIm)

	return &models.MixedResponse{
		Energies: append([]float64(nil), a.Energies...),
		N:        lerp(nA, nB, x),
		K:        lerp(kA, kB, x),
	}
}

// lerp returns (1-x)·a + x·b in a new slice.
func lerp(a, b []float64, x float64) []float64 {
	dst := make([]float64, len(a))
	floats.ScaleTo(dst, 1-x, a)
	floats.AddScaled(dst, x, b)
	return dst
}
