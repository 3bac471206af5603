package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/RMahshie/alloptic/internal/alloy"
	"github.com/RMahshie/alloptic/internal/export"
	"github.com/RMahshie/alloptic/internal/repository"
	"github.com/RMahshie/alloptic/internal/repository/sqlite"
	"github.com/RMahshie/alloptic/internal/tabular"
	"github.com/RMahshie/alloptic/pkg/models"
)

type runResult struct {
	Report *models.AlloyReport
	Paths  []string
	Out    string
}

// runJob reads both spectra, computes the report and writes its files to out.
func runJob(svc *alloy.Service, job batchJob, out string, chart bool) (runResult, error) {
	a, err := tabular.ReadSpectrumFile(job.SpectrumA)
	if err != nil {
		return runResult{}, fmt.Errorf("phase %s: %w", job.PhaseA, err)
	}
	b, err := tabular.ReadSpectrumFile(job.SpectrumB)
	if err != nil {
		return runResult{}, fmt.Errorf("phase %s: %w", job.PhaseB, err)
	}

	report, err := svc.Compute(job.config(), a, b)
	if err != nil {
		return runResult{}, err
	}

	artifacts, err := export.Render(report, export.Options{Chart: chart})
	if err != nil {
		return runResult{}, err
	}
	paths, err := export.WriteDir(out, artifacts)
	if err != nil {
		return runResult{}, err
	}

	return runResult{Report: report, Paths: paths, Out: out}, nil
}

// recordHistory appends runs to the history database when one is configured.
// History is best effort: failures are logged, never returned.
func recordHistory(ctx context.Context, results []runResult) {
	if cfg.History.Path == "" {
		return
	}
	h, err := sqlite.Open(cfg.History.Path)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.History.Path).Msg("Failed to open run history")
		return
	}
	defer h.Close()

	for _, res := range results {
		if err := h.Record(ctx, historyRecord(res)); err != nil {
			log.Warn().Err(err).Str("alloy", res.Report.Alloy).Msg("Failed to record run")
		}
	}
}

func historyRecord(res runResult) *repository.RunRecord {
	return &repository.RunRecord{
		Alloy:      res.Report.Alloy,
		Method:     res.Report.Method,
		Fraction:   res.Report.Fraction,
		Samples:    len(res.Report.Energies),
		Unresolved: len(res.Report.Unresolved),
		OutputDir:  res.Out,
	}
}

// --- History Command ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.History.Path == "" {
			return fmt.Errorf("no history database configured (set HISTORY_DB or --history)")
		}
		limit, _ := cmd.Flags().GetInt("limit")

		h, err := sqlite.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer h.Close()

		runs, err := h.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return printHistory(cmd, runs)
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "number of runs to show")
}

func printHistory(cmd *cobra.Command, runs []repository.RunRecord) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tALLOY\tMETHOD\tSAMPLES\tUNRESOLVED\tOUTPUT")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.CreatedAt, r.Alloy, r.Method, r.Samples, r.Unresolved, r.OutputDir)
	}
	return w.Flush()
}
