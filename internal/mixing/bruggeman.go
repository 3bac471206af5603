package mixing

import (
	"math/cmplx"

	"github.com/RMahshie/alloptic/internal/optics"
	"github.com/RMahshie/alloptic/pkg/models"
)

// Bruggeman solves the two-component Bruggeman effective-medium equation at
// every energy sample and keeps the root with a positive imaginary part.
//
// Samples where the choice is ambiguous are dropped from the response and
// listed in MixedResponse.Unresolved. The energy grid of the response only
// contains the resolved samples.
type Bruggeman struct{}

func (Bruggeman) Name() string { return MethodBruggeman }

func (Bruggeman) Mix(a, b models.Spectrum, x float64) *models.MixedResponse {
	resp := &models.MixedResponse{
		Energies: make([]float64, 0, a.Len()),
		EpsRe:    make([]float64, 0, a.Len()),
		EpsIm:    make([]float64, 0, a.Len()),
	}

	for i := 0; i < a.Len(); i++ {
		root := SolveBruggeman(a.Dielectric(i), b.Dielectric(i), x)
		if !root.Resolved {
			resp.Unresolved = append(resp.Unresolved, models.UnresolvedSample{
				Index:     i,
				Energy:    a.Energies[i],
				Root1Imag: imag(root.Roots[0]),
				Root2Imag: imag(root.Roots[1]),
			})
			continue
		}
		resp.Energies = append(resp.Energies, a.Energies[i])
		resp.EpsRe = append(resp.EpsRe, real(root.Eps))
		resp.EpsIm = append(resp.EpsIm, imag(root.Eps))
	}

	resp.N, resp.K = optics.NKSeries(resp.EpsRe, resp.EpsIm)
	return resp
}

// BruggemanRoot is the outcome of solving one sample: either a resolved
// effective permittivity or the two candidate roots that could not be told apart.
type BruggemanRoot struct {
	Resolved bool
	Eps      complex128
	Roots    [2]complex128
}

// SolveBruggeman returns both roots of
//
//	(1-x)·(epsA-eps)/(epsA+2eps) + x·(epsB-eps)/(epsB+2eps) = 0
//
// and selects the one that describes a passive medium: Im(eps) > 0 while the
// other root has Im < 0. Any other sign pattern, including zeros, is unresolved.
func SolveBruggeman(epsA, epsB complex128, x float64) BruggemanRoot {
	cx := complex(x, 0)
	s := -3*epsA*cx + 2*epsA + 3*epsB*cx - epsB
	sqrtD := cmplx.Sqrt(s*s + 8*epsA*epsB)

	eps1 := (sqrtD + s) / 4
	eps2 := (-sqrtD + s) / 4
	res := BruggemanRoot{Roots: [2]complex128{eps1, eps2}}

	switch {
	case imag(eps1) > 0 && imag(eps2) < 0:
		res.Resolved, res.Eps = true, eps1
	case imag(eps2) > 0 && imag(eps1) < 0:
		res.Resolved, res.Eps = true, eps2
	}
	return res
}
