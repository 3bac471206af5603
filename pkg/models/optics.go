package models

// MixedResponse is the optical response of the alloy on a (possibly filtered) energy grid.
// EpsRe and EpsIm are nil when the mixing model only produces n and k.
type MixedResponse struct {
	Energies   []float64
	EpsRe      []float64
	EpsIm      []float64
	N          []float64
	K          []float64
	Unresolved []UnresolvedSample
}

// HasDielectric reports whether the model produced a mixed dielectric function.
func (r *MixedResponse) HasDielectric() bool {
	return r.EpsRe != nil && r.EpsIm != nil
}

// Len returns the number of resolved samples.
func (r *MixedResponse) Len() int {
	return len(r.Energies)
}

// UnresolvedSample describes an energy sample where neither Bruggeman root was
// physically admissible. It was dropped from the mixed response.
type UnresolvedSample struct {
	Index     int     `json:"index" doc:"Index of the sample in the input grid"`
	Energy    float64 `json:"energy" doc:"Photon energy in eV"`
	Root1Imag float64 `json:"root1_imag" doc:"Imaginary part of the first root"`
	Root2Imag float64 `json:"root2_imag" doc:"Imaginary part of the second root"`
}

// SpectralPoint represents a single reflectivity measurement against wavelength
type SpectralPoint struct {
	Wavelength   float64 `json:"wavelength" doc:"Wavelength in nm"`
	Reflectivity float64 `json:"reflectivity" doc:"Normal-incidence reflectivity"`
}

// AlloyReport is the full result of one alloy computation, ready for export.
type AlloyReport struct {
	Alloy    string  `json:"alloy" doc:"Composed alloy label, e.g. Au0.6Ag0.4"`
	Method   string  `json:"method" enum:"average,refractive,bruggeman" doc:"Mixing model"`
	Fraction float64 `json:"fraction" minimum:"0" maximum:"1" doc:"Atomic fraction of phase B"`
	PhaseA   string  `json:"phase_a" doc:"Label of phase A"`
	PhaseB   string  `json:"phase_b" doc:"Label of phase B"`

	Energies     []float64 `json:"energies" doc:"Energy grid in eV (filtered for bruggeman)"`
	EpsRe        []float64 `json:"eps_re,omitempty" doc:"Real part of the mixed dielectric function"`
	EpsIm        []float64 `json:"eps_im,omitempty" doc:"Imaginary part of the mixed dielectric function"`
	N            []float64 `json:"n" doc:"Refractive index"`
	K            []float64 `json:"k" doc:"Extinction coefficient"`
	Reflectivity []float64 `json:"reflectivity" doc:"Normal-incidence reflectivity"`
	Wavelengths  []float64 `json:"wavelengths" doc:"Wavelengths in nm"`

	ReflectivityByWavelength []SpectralPoint    `json:"reflectivity_by_wavelength" doc:"Reflectivity against wavelength"`
	Color                    map[string]float64 `json:"color,omitempty" doc:"Color coordinates"`
	Unresolved               []UnresolvedSample `json:"unresolved,omitempty" doc:"Dropped Bruggeman samples"`
}

// HasDielectric reports whether the report carries a mixed dielectric function.
func (r *AlloyReport) HasDielectric() bool {
	return r.EpsRe != nil && r.EpsIm != nil
}
