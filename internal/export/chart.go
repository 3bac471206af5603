package export

import (
	"bytes"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/RMahshie/alloptic/pkg/models"
)

// ReflectivityChart plots reflectivity against wavelength as a PNG.
func ReflectivityChart(report *models.AlloyReport) ([]byte, error) {
	p := plot.New()
	p.Title.Text = report.Alloy + " (" + report.Method + ")"
	p.X.Label.Text = "Wavelength (nm)"
	p.Y.Label.Text = "Reflectivity"

	pts := make(plotter.XYs, len(report.Wavelengths))
	for i := range report.Wavelengths {
		pts[i].X = report.Wavelengths[i]
		pts[i].Y = report.Reflectivity[i]
	}
	if err := plotutil.AddLines(p, "R", pts); err != nil {
		return nil, err
	}

	w, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
