// Package export renders an alloy report into the files handed to result sinks.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RMahshie/alloptic/internal/tabular"
	"github.com/RMahshie/alloptic/pkg/models"
)

// Artifact is one rendered output file.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// Options controls which optional artifacts are rendered.
type Options struct {
	Chart bool
}

// Render produces, for report alloy <a>:
//
//	epsilon_<a>.dat              energy, eps_im, eps_re (models with a dielectric function only)
//	reflectivity_<a>.dat         energy, reflectivity
//	reflectivity_<a>_lambda.dat  wavelength, reflectivity
//	colour_<a>.dat               color coordinates as indented JSON (when present)
//	reflectivity_<a>_lambda.png  chart (with Options.Chart)
func Render(report *models.AlloyReport, opts Options) ([]Artifact, error) {
	var artifacts []Artifact

	if report.HasDielectric() {
		data, err := table(report.Energies, report.EpsIm, report.EpsRe)
		if err != nil {
			return nil, fmt.Errorf("failed to render epsilon table: %w", err)
		}
		artifacts = append(artifacts, Artifact{
			Name:        fmt.Sprintf("epsilon_%s.dat", report.Alloy),
			ContentType: "text/plain",
			Data:        data,
		})
	}

	data, err := table(report.Energies, report.Reflectivity)
	if err != nil {
		return nil, fmt.Errorf("failed to render reflectivity table: %w", err)
	}
	artifacts = append(artifacts, Artifact{
		Name:        fmt.Sprintf("reflectivity_%s.dat", report.Alloy),
		ContentType: "text/plain",
		Data:        data,
	})

	data, err = table(report.Wavelengths, report.Reflectivity)
	if err != nil {
		return nil, fmt.Errorf("failed to render wavelength table: %w", err)
	}
	artifacts = append(artifacts, Artifact{
		Name:        fmt.Sprintf("reflectivity_%s_lambda.dat", report.Alloy),
		ContentType: "text/plain",
		Data:        data,
	})

	if report.Color != nil {
		data, err := json.MarshalIndent(report.Color, "", "    ")
		if err != nil {
			return nil, fmt.Errorf("failed to render color coordinates: %w", err)
		}
		artifacts = append(artifacts, Artifact{
			Name:        fmt.Sprintf("colour_%s.dat", report.Alloy),
			ContentType: "application/json",
			Data:        data,
		})
	}

	if opts.Chart && len(report.Wavelengths) > 0 {
		data, err := ReflectivityChart(report)
		if err != nil {
			return nil, fmt.Errorf("failed to render chart: %w", err)
		}
		artifacts = append(artifacts, Artifact{
			Name:        fmt.Sprintf("reflectivity_%s_lambda.png", report.Alloy),
			ContentType: "image/png",
			Data:        data,
		})
	}

	return artifacts, nil
}

func table(cols ...[]float64) ([]byte, error) {
	var buf bytes.Buffer
	if err := tabular.WriteColumns(&buf, cols...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDir writes the artifacts into dir, creating it if needed.
func WriteDir(dir string, artifacts []Artifact) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		path := filepath.Join(dir, a.Name)
		if err := os.WriteFile(path, a.Data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", a.Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
