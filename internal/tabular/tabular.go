// Package tabular reads and writes the flat numeric tables used for spectra,
// illuminants, color matching functions and exported results.
//
// Rows are separated by newlines and columns by whitespace or commas. Blank
// lines and lines starting with '#' are ignored.
package tabular

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/RMahshie/alloptic/pkg/models"
)

// ReadColumns parses the first n columns of every row. Extra columns are ignored.
// The result is indexed by column, then row.
func ReadColumns(r io.Reader, n int) ([][]float64, error) {
	cols := make([][]float64, n)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.FieldsFunc(text, func(r rune) bool {
			return unicode.IsSpace(r) || r == ','
		})
		if len(fields) < n {
			return nil, fmt.Errorf("line %d: expected %d columns, found %d", line, n, len(fields))
		}
		for i := 0; i < n; i++ {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %d: %w", line, i+1, err)
			}
			cols[i] = append(cols[i], v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	return cols, nil
}

// ReadSpectrum parses a dielectric spectrum with columns (energy, eps_im, eps_re).
func ReadSpectrum(r io.Reader) (models.Spectrum, error) {
	cols, err := ReadColumns(r, 3)
	if err != nil {
		return models.Spectrum{}, err
	}
	return models.NewSpectrum(cols[0], cols[2], cols[1])
}

// ReadSpectrumFile parses the spectrum stored at path.
func ReadSpectrumFile(path string) (models.Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Spectrum{}, err
	}
	defer f.Close()

	s, err := ReadSpectrum(f)
	if err != nil {
		return models.Spectrum{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ReadColumnsFile parses the first n columns of the table stored at path.
func ReadColumnsFile(path string, n int) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cols, err := ReadColumns(f, n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cols, nil
}

// WriteColumns writes the columns side by side, two spaces apart, one row per sample.
func WriteColumns(w io.Writer, cols ...[]float64) error {
	if len(cols) == 0 {
		return nil
	}
	rows := len(cols[0])
	for i, c := range cols {
		if len(c) != rows {
			return fmt.Errorf("column %d has %d rows, expected %d", i+1, len(c), rows)
		}
	}

	bw := bufio.NewWriter(w)
	for row := 0; row < rows; row++ {
		for i, c := range cols {
			if i > 0 {
				bw.WriteString("  ")
			}
			bw.WriteString(strconv.FormatFloat(c[row], 'g', -1, 64))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
