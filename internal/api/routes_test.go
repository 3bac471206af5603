package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/RMahshie/alloptic/internal/alloy"
	"github.com/RMahshie/alloptic/pkg/models"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMixRoute(t *testing.T) {
	_, api := humatest.New(t)
	RegisterRoutes(api, nil, nil, nil, alloy.NewService(nil))

	resp := api.Post("/api/mix", map[string]any{
		"method":   "refractive",
		"fraction": 0.5,
		"phase_a":  "Au",
		"phase_b":  "Ag",
		"spectrum_a": map[string]any{
			"energies": []float64{1, 2},
			"eps_re":   []float64{-20, -10},
			"eps_im":   []float64{1.5, 2},
		},
		"spectrum_b": map[string]any{
			"energies": []float64{1, 2},
			"eps_re":   []float64{-30, -12},
			"eps_im":   []float64{0.5, 0.8},
		},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var report models.AlloyReport
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &report))
	assert.Equal(t, "Au0.5Ag0.5", report.Alloy)
	assert.Equal(t, "refractive", report.Method)
	assert.Nil(t, report.EpsRe)
	assert.Len(t, report.Reflectivity, 2)
	for _, r := range report.Reflectivity {
		assert.GreaterOrEqual(t, r, 0.0)
		assert.Less(t, r, 1.0)
	}
}

func TestMixRoute_RejectsUnknownMethod(t *testing.T) {
	_, api := humatest.New(t)
	RegisterRoutes(api, nil, nil, nil, alloy.NewService(nil))

	resp := api.Post("/api/mix", map[string]any{
		"method":     "lorentz",
		"fraction":   0.5,
		"phase_a":    "Au",
		"phase_b":    "Ag",
		"spectrum_a": map[string]any{"energies": []float64{1}, "eps_re": []float64{1}, "eps_im": []float64{1}},
		"spectrum_b": map[string]any{"energies": []float64{1}, "eps_re": []float64{1}, "eps_im": []float64{1}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}
