// Package optics converts between dielectric functions, complex refractive
// indices and normal-incidence reflectivity.
package optics

import "math"

// PhotonEnergyWavelength is hc in eV·nm: a photon of E eV has a vacuum wavelength of PhotonEnergyWavelength/E nm.
const PhotonEnergyWavelength = 1239.8

// DielectricToNK returns the refractive index n and extinction coefficient k
// of a medium with dielectric function eps = re + i·im, so that (n + ik)² = eps.
// Both values are non-negative.
func DielectricToNK(re, im float64) (n, k float64) {
	norm := math.Hypot(re, im)
	return sqrtNonNeg((re + norm) / 2), sqrtNonNeg((-re + norm) / 2)
}

// sqrtNonNeg absorbs rounding residue below zero.
func sqrtNonNeg(v float64) float64 {
	if v < 0 {
		return 0
	}
	return math.Sqrt(v)
}

// Reflectivity is the normal-incidence reflectivity at a vacuum/medium interface.
func Reflectivity(n, k float64) float64 {
	k2 := k * k
	return ((n-1)*(n-1) + k2) / ((n+1)*(n+1) + k2)
}

// Wavelength converts a photon energy in eV to a vacuum wavelength in nm.
func Wavelength(energy float64) float64 {
	return PhotonEnergyWavelength / energy
}

// NKSeries applies DielectricToNK elementwise.
func NKSeries(epsRe, epsIm []float64) (n, k []float64) {
	n = make([]float64, len(epsRe))
	k = make([]float64, len(epsRe))
	for i := range epsRe {
		n[i], k[i] = DielectricToNK(epsRe[i], epsIm[i])
	}
	return n, k
}

// ReflectivitySeries applies Reflectivity elementwise.
func ReflectivitySeries(n, k []float64) []float64 {
	r := make([]float64, len(n))
	for i := range n {
		r[i] = Reflectivity(n[i], k[i])
	}
	return r
}

// Wavelengths applies Wavelength elementwise.
func Wavelengths(energies []float64) []float64 {
	w := make([]float64, len(energies))
	for i, e := range energies {
		w[i] = Wavelength(e)
	}
	return w
}
