// Package mixing implements the effective-medium models used to combine the
// dielectric spectra of two phases into the optical response of their alloy.
package mixing

import (
	"fmt"
	"strings"

	"github.com/RMahshie/alloptic/pkg/models"
)

// Method names accepted by New.
const (
	MethodAverage    = "average"
	MethodRefractive = "refractive"
	MethodBruggeman  = "bruggeman"
)

// Methods lists the supported mixing methods.
var Methods = []string{MethodAverage, MethodRefractive, MethodBruggeman}

// Model mixes phase A and phase B with x the atomic fraction of phase B.
// Both spectra must have the same number of samples.
type Model interface {
	Name() string
	Mix(a, b models.Spectrum, x float64) *models.MixedResponse
}

// UnsupportedMethodError reports a mixing method name that is not recognized.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported mixing method %q (expected one of %s)", e.Method, strings.Join(Methods, ", "))
}

// New returns the model registered under name.
func New(name string) (Model, error) {
	switch name {
	case MethodAverage:
		return Average{}, nil
	case MethodRefractive:
		return Refractive{}, nil
	case MethodBruggeman:
		return Bruggeman{}, nil
	default:
		return nil, &UnsupportedMethodError{Method: name}
	}
}
