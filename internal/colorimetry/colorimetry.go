// Package colorimetry turns a reflectivity spectrum into CIE color coordinates
// under a tabulated illuminant and set of color matching functions.
package colorimetry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/mat"

	"github.com/RMahshie/alloptic/internal/optics"
	"github.com/RMahshie/alloptic/internal/tabular"
)

// Keys of the map returned by Calculate.
const (
	KeyX            = "X"
	KeyY            = "Y"
	KeyZ            = "Z"
	KeyChromaX      = "x"
	KeyChromaY      = "y"
	KeyL            = "L"
	KeyA            = "a"
	KeyB            = "b"
	KeyRed          = "sRGB_R"
	KeyGreen        = "sRGB_G"
	KeyBlue         = "sRGB_B"
	KeyFitResiduals = "fit_residuals"
)

// linear sRGB from XYZ (D65, Y normalized to 1)
var srgbFromXYZ = mat.NewDense(3, 3, []float64{
	3.2404542, -1.5371385, -0.4985314,
	-0.9692660, 1.8760108, 0.0415560,
	0.0556434, -0.2040259, 1.0572252,
})

// Illuminant is a relative spectral power distribution.
type Illuminant struct {
	Wavelengths []float64 // nm, strictly increasing
	Power       []float64
}

// MatchingFunctions are the CIE color matching functions on a wavelength grid.
type MatchingFunctions struct {
	Wavelengths []float64 // nm, strictly increasing
	X, Y, Z     []float64
}

// Calculator computes color coordinates. It is safe for concurrent use.
type Calculator struct {
	cmf   MatchingFunctions
	power []float64 // illuminant resampled onto the CMF grid
}

// NewCalculator resamples the illuminant onto the CMF grid.
func NewCalculator(illum Illuminant, cmf MatchingFunctions) (*Calculator, error) {
	n := len(cmf.Wavelengths)
	if n < 2 || len(cmf.X) != n || len(cmf.Y) != n || len(cmf.Z) != n {
		return nil, errors.New("color matching functions need at least two rows of (wavelength, x, y, z)")
	}
	if floats.HasNaN(cmf.Wavelengths) || !isIncreasing(cmf.Wavelengths) {
		return nil, errors.New("color matching function wavelengths must be strictly increasing")
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(illum.Wavelengths, illum.Power); err != nil {
		return nil, fmt.Errorf("failed to fit illuminant: %w", err)
	}
	power := make([]float64, n)
	for i, wl := range cmf.Wavelengths {
		power[i] = pl.Predict(wl)
	}

	return &Calculator{cmf: cmf, power: power}, nil
}

// Load builds a Calculator from an illuminant table (wavelength, power) and a
// CMF table (wavelength, x, y, z).
func Load(illuminantPath, cmfPath string) (*Calculator, error) {
	il, err := tabular.ReadColumnsFile(illuminantPath, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to read illuminant: %w", err)
	}
	cm, err := tabular.ReadColumnsFile(cmfPath, 4)
	if err != nil {
		return nil, fmt.Errorf("failed to read color matching functions: %w", err)
	}

	return NewCalculator(
		Illuminant{Wavelengths: il[0], Power: il[1]},
		MatchingFunctions{Wavelengths: cm[0], X: cm[1], Y: cm[2], Z: cm[3]},
	)
}

// Calculate resamples the reflectivity onto the CMF grid and integrates the
// tristimulus values over the wavelength range the spectrum covers. The
// result holds XYZ (white Y = 100), xy chromaticity, CIELAB, gamma-encoded
// sRGB, and the resampling residuals at the input samples.
func (c *Calculator) Calculate(energies, reflectivity []float64) (map[string]any, error) {
	if len(energies) != len(reflectivity) {
		return nil, fmt.Errorf("energies (%d) and reflectivity (%d) differ in length", len(energies), len(reflectivity))
	}
	if len(energies) < 2 {
		return nil, errors.New("at least two samples are needed to compute colors")
	}

	wl := make([]float64, len(energies))
	for i, e := range energies {
		if !(e > 0) {
			return nil, fmt.Errorf("non-positive photon energy %g at sample %d", e, i)
		}
		wl[i] = optics.Wavelength(e)
	}
	refl := append([]float64(nil), reflectivity...)

	inds := make([]int, len(wl))
	floats.Argsort(wl, inds)
	for i, j := range inds {
		refl[i] = reflectivity[j]
	}

	var spectrum interp.PiecewiseLinear
	if err := spectrum.Fit(wl, refl); err != nil {
		return nil, fmt.Errorf("failed to fit reflectivity: %w", err)
	}

	// Restrict to the CMF rows covered by the spectrum.
	lo, hi := -1, -1
	for i, w := range c.cmf.Wavelengths {
		if w < wl[0] || w > wl[len(wl)-1] {
			continue
		}
		if lo < 0 {
			lo = i
		}
		hi = i
	}
	if lo < 0 || hi-lo < 1 {
		return nil, fmt.Errorf("spectrum (%.1f-%.1f nm) does not overlap the color matching functions (%.1f-%.1f nm)",
			wl[0], wl[len(wl)-1], c.cmf.Wavelengths[0], c.cmf.Wavelengths[len(c.cmf.Wavelengths)-1])
	}
	grid := c.cmf.Wavelengths[lo : hi+1]
	power := c.power[lo : hi+1]

	sampled := make([]float64, len(grid))
	for i, w := range grid {
		sampled[i] = spectrum.Predict(w)
	}

	norm := 100 / integrate.Trapezoidal(grid, product(power, c.cmf.Y[lo:hi+1]))
	white := [3]float64{
		norm * integrate.Trapezoidal(grid, product(power, c.cmf.X[lo:hi+1])),
		100,
		norm * integrate.Trapezoidal(grid, product(power, c.cmf.Z[lo:hi+1])),
	}
	xyz := [3]float64{
		norm * integrate.Trapezoidal(grid, product(power, sampled, c.cmf.X[lo:hi+1])),
		norm * integrate.Trapezoidal(grid, product(power, sampled, c.cmf.Y[lo:hi+1])),
		norm * integrate.Trapezoidal(grid, product(power, sampled, c.cmf.Z[lo:hi+1])),
	}

	result := map[string]any{
		KeyX: xyz[0],
		KeyY: xyz[1],
		KeyZ: xyz[2],
	}
	if sum := xyz[0] + xyz[1] + xyz[2]; sum > 0 {
		result[KeyChromaX] = xyz[0] / sum
		result[KeyChromaY] = xyz[1] / sum
	}

	l, a, b := lab(xyz, white)
	result[KeyL], result[KeyA], result[KeyB] = l, a, b

	rgb := srgb(xyz)
	result[KeyRed], result[KeyGreen], result[KeyBlue] = rgb[0], rgb[1], rgb[2]

	result[KeyFitResiduals] = residuals(grid, sampled, wl, refl)
	return result, nil
}

// residuals reconstructs the input samples inside the grid from the resampled
// curve and returns reconstructed minus measured.
func residuals(grid, sampled, wl, refl []float64) []float64 {
	var back interp.PiecewiseLinear
	if err := back.Fit(grid, sampled); err != nil {
		return nil
	}
	out := make([]float64, 0, len(wl))
	for i, w := range wl {
		if w < grid[0] || w > grid[len(grid)-1] {
			continue
		}
		out = append(out, back.Predict(w)-refl[i])
	}
	return out
}

func product(series ...[]float64) []float64 {
	out := make([]float64, len(series[0]))
	for i := range out {
		out[i] = 1
	}
	for _, s := range series {
		floats.Mul(out, s)
	}
	return out
}

func lab(xyz, white [3]float64) (l, a, b float64) {
	f := func(t float64) float64 {
		const delta = 6.0 / 29.0
		if t > delta*delta*delta {
			return math.Cbrt(t)
		}
		return t/(3*delta*delta) + 4.0/29.0
	}
	fx, fy, fz := f(xyz[0]/white[0]), f(xyz[1]/white[1]), f(xyz[2]/white[2])
	return 116*fy - 16, 500 * (fx - fy), 200 * (fy - fz)
}

func srgb(xyz [3]float64) [3]float64 {
	var lin mat.VecDense
	lin.MulVec(srgbFromXYZ, mat.NewVecDense(3, []float64{xyz[0] / 100, xyz[1] / 100, xyz[2] / 100}))

	var out [3]float64
	for i := range out {
		v := lin.AtVec(i)
		if v <= 0.0031308 {
			v *= 12.92
		} else {
			v = 1.055*math.Pow(v, 1/2.4) - 0.055
		}
		out[i] = math.Max(0, math.Min(1, v))
	}
	return out
}

func isIncreasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return false
		}
	}
	return true
}
