// Command alloptic computes optical reports for binary alloys from the
// tabulated dielectric functions of their two phases.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/RMahshie/alloptic/internal/alloy"
	"github.com/RMahshie/alloptic/internal/colorimetry"
	"github.com/RMahshie/alloptic/internal/config"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "alloptic",
	Short: "Optical response of binary alloys",
	Long: `alloptic mixes the dielectric functions of two material phases with the
average, refractive or Bruggeman effective-medium model and derives the
refractive index, normal-incidence reflectivity and color of the alloy.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if v, _ := cmd.Flags().GetString("log-level"); v != "" {
			cfg.Logging.Level = v
		}
		if v, _ := cmd.Flags().GetString("illuminant"); v != "" {
			cfg.Color.IlluminantFile = v
		}
		if v, _ := cmd.Flags().GetString("cmf"); v != "" {
			cfg.Color.CMFFile = v
		}
		if v, _ := cmd.Flags().GetString("history"); v != "" {
			cfg.History.Path = v
		}
		config.SetupLogging(cfg.Logging.Level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("illuminant", "", "illuminant table (wavelength, power); overrides ILLUMINANT_FILE")
	rootCmd.PersistentFlags().String("cmf", "", "color matching function table (wavelength, x, y, z); overrides CMF_FILE")
	rootCmd.PersistentFlags().String("history", "", "run history database; overrides HISTORY_DB")

	rootCmd.AddCommand(mixCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(historyCmd)
}

// newService builds the report service, with color coordinates when both
// reference tables are configured.
func newService() (*alloy.Service, error) {
	if !cfg.Color.Enabled() {
		log.Debug().Msg("No color reference tables configured, skipping color coordinates")
		return alloy.NewService(nil), nil
	}
	calc, err := colorimetry.Load(cfg.Color.IlluminantFile, cfg.Color.CMFFile)
	if err != nil {
		return nil, err
	}
	return alloy.NewService(calc), nil
}

// --- Mix Command ---

var mixCmd = &cobra.Command{
	Use:   "mix",
	Short: "Compute the report of one alloy",
	Long: `Compute the report of one alloy and write its tables to the output directory.

Spectrum files hold three columns per row: energy (eV), eps_im, eps_re.

Examples:
  alloptic mix --method bruggeman --fraction 0.25 --phase-a Cu --phase-b Zn \
      --spectrum-a Cu.dat --spectrum-b Zn.dat --out results`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var job batchJob
		job.Method, _ = cmd.Flags().GetString("method")
		job.Fraction, _ = cmd.Flags().GetFloat64("fraction")
		job.PhaseA, _ = cmd.Flags().GetString("phase-a")
		job.PhaseB, _ = cmd.Flags().GetString("phase-b")
		job.SpectrumA, _ = cmd.Flags().GetString("spectrum-a")
		job.SpectrumB, _ = cmd.Flags().GetString("spectrum-b")
		out, _ := cmd.Flags().GetString("out")
		chart, _ := cmd.Flags().GetBool("chart")

		svc, err := newService()
		if err != nil {
			return err
		}

		res, err := runJob(svc, job, out, chart)
		if err != nil {
			return err
		}
		recordHistory(cmd.Context(), []runResult{res})

		for _, p := range res.Paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

func init() {
	mixCmd.Flags().String("method", "bruggeman", "mixing model (average, refractive, bruggeman)")
	mixCmd.Flags().Float64("fraction", 0.5, "atomic fraction x of phase B")
	mixCmd.Flags().String("phase-a", "", "label of phase A")
	mixCmd.Flags().String("phase-b", "", "label of phase B")
	mixCmd.Flags().String("spectrum-a", "", "dielectric spectrum file of phase A")
	mixCmd.Flags().String("spectrum-b", "", "dielectric spectrum file of phase B")
	mixCmd.Flags().String("out", ".", "output directory")
	mixCmd.Flags().Bool("chart", false, "also render a reflectivity chart (PNG)")
	for _, name := range []string{"phase-a", "phase-b", "spectrum-a", "spectrum-b"} {
		_ = mixCmd.MarkFlagRequired(name)
	}
}
