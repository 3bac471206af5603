package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/RMahshie/alloptic/internal/alloy"
)

// batchFile is the TOML layout of a batch run:
//
//	out = "results"
//	workers = 4
//	chart = true
//
//	[[alloy]]
//	method = "bruggeman"
//	fraction = 0.25
//	phase_a = "Cu"
//	phase_b = "Zn"
//	spectrum_a = "spectra/Cu.dat"
//	spectrum_b = "spectra/Zn.dat"
type batchFile struct {
	Out     string     `toml:"out"`
	Workers int        `toml:"workers"`
	Chart   bool       `toml:"chart"`
	Alloys  []batchJob `toml:"alloy"`
}

type batchJob struct {
	Method    string  `toml:"method"`
	Fraction  float64 `toml:"fraction"`
	PhaseA    string  `toml:"phase_a"`
	PhaseB    string  `toml:"phase_b"`
	SpectrumA string  `toml:"spectrum_a"`
	SpectrumB string  `toml:"spectrum_b"`
}

func (j batchJob) config() alloy.Config {
	return alloy.Config{Method: j.Method, Fraction: j.Fraction, PhaseA: j.PhaseA, PhaseB: j.PhaseB}
}

// loadBatch decodes a batch file. Relative paths are taken from the file's
// directory.
func loadBatch(path string) (batchFile, error) {
	batch := batchFile{Out: ".", Workers: 4}

	meta, err := toml.DecodeFile(path, &batch)
	if err != nil {
		return batchFile{}, fmt.Errorf("load batch file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return batchFile{}, fmt.Errorf("load batch file: unknown key %q", undecoded[0].String())
	}
	if len(batch.Alloys) == 0 {
		return batchFile{}, fmt.Errorf("load batch file: no [[alloy]] entries")
	}
	if batch.Workers < 1 {
		batch.Workers = 1
	}

	dir := filepath.Dir(path)
	batch.Out = resolve(dir, batch.Out)
	for i := range batch.Alloys {
		job := &batch.Alloys[i]
		if job.Method == "" {
			job.Method = "bruggeman"
		}
		if err := job.config().Validate(); err != nil {
			return batchFile{}, fmt.Errorf("alloy %d: %w", i+1, err)
		}
		job.SpectrumA = resolve(dir, job.SpectrumA)
		job.SpectrumB = resolve(dir, job.SpectrumB)
	}
	return batch, nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// runBatch computes every alloy of the batch, at most Workers at a time.
// A failing alloy does not stop the others; all failures are returned joined.
func runBatch(svc *alloy.Service, batch batchFile) ([]runResult, error) {
	var (
		mu      sync.Mutex
		results []runResult
		errs    []error
	)

	var g errgroup.Group
	g.SetLimit(batch.Workers)
	for _, job := range batch.Alloys {
		g.Go(func() error {
			res, err := runJob(svc, job, batch.Out, batch.Chart)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				label := job.config().Label()
				log.Error().Err(err).Str("alloy", label).Msg("Alloy failed")
				errs = append(errs, fmt.Errorf("%s: %w", label, err))
				return nil
			}
			results = append(results, res)
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}

// --- Batch Command ---

var batchCmd = &cobra.Command{
	Use:   "batch [file.toml]",
	Short: "Compute every alloy listed in a TOML batch file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		batch, err := loadBatch(args[0])
		if err != nil {
			return err
		}
		svc, err := newService()
		if err != nil {
			return err
		}

		log.Info().Int("alloys", len(batch.Alloys)).Int("workers", batch.Workers).Str("out", batch.Out).Msg("Starting batch")
		results, err := runBatch(svc, batch)
		recordHistory(cmd.Context(), results)

		for _, res := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d samples\t%d unresolved\n",
				res.Report.Alloy, len(res.Report.Energies), len(res.Report.Unresolved))
		}
		return err
	},
}
