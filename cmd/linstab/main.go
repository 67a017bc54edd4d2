package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/linstab/internal/config"
	"github.com/san-kum/linstab/internal/control"
	"github.com/san-kum/linstab/internal/dynamo"
	"github.com/san-kum/linstab/internal/metrics"
	"github.com/san-kum/linstab/internal/pipeline"
	"github.com/san-kum/linstab/internal/report"
	"github.com/san-kum/linstab/internal/sim"
	"github.com/san-kum/linstab/internal/tui"
)

var (
	configFile string
	preset     string
	workers    int
	verbose    bool

	jsonOut    bool
	dumpOut    bool
	exportPath string
	showModel  bool

	duration float64
	radius   float64
	plot     bool
)

// Every analysis outcome exits 0; only usage and I/O errors exit 1.
func main() {
	rootCmd := &cobra.Command{
		Use:          "linstab",
		Short:        "equilibrium, stability and LQR analysis of a polynomial model",
		SilenceUsage: true,
		RunE:         runAnalyze,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "parallel workers per stage (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log stage transitions")
	addOutputFlags(rootCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "find equilibria, classify them and compute the LQR gain",
		Args:  cobra.NoArgs,
		RunE:  runAnalyze,
	}
	addOutputFlags(analyzeCmd)

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "browse results interactively",
		Args:  cobra.NoArgs,
		RunE:  runInspect,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tX1_DOT\tX2_DOT")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, cfg.Dynamics.X1Dot, cfg.Dynamics.X2Dot)
			}
			return w.Flush()
		},
	}

	feedbackCmd := &cobra.Command{
		Use:   "feedback [x1] [x2]",
		Short: "evaluate the LQR feedback u = -K(x - x_eq) at a state",
		Args:  cobra.ExactArgs(2),
		RunE:  runFeedback,
	}

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "run the closed loop from perturbations around the selected equilibrium",
		Args:  cobra.NoArgs,
		RunE:  runSimulate,
	}
	simulateCmd.Flags().Float64Var(&duration, "duration", 0, "simulation time in seconds (default from config)")
	simulateCmd.Flags().Float64Var(&radius, "radius", 0, "perturbation size along each axis (default from config)")
	simulateCmd.Flags().BoolVar(&plot, "plot", false, "plot distance to the equilibrium over time")

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the current configuration to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(analyzeCmd, inspectCmd, presetsCmd, feedbackCmd, simulateCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&dumpOut, "dump", false, "dump the result structure")
	cmd.Flags().StringVar(&exportPath, "export", "", "also write JSON results to this file")
	cmd.Flags().BoolVar(&showModel, "model", false, "print the dynamics above the report")
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig applies the preset, then the config file, then flags.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	return cfg, cfg.Validate()
}

func analyze(ctx context.Context, cfg *config.Config) (*pipeline.Bundle, error) {
	m, err := cfg.Model()
	if err != nil {
		return nil, err
	}
	pc, err := cfg.Pipeline(newLogger())
	if err != nil {
		return nil, err
	}
	return pipeline.Run(ctx, m, pc), nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	b, err := analyze(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if exportPath != "" {
		if err := report.ExportJSON(exportPath, b); err != nil {
			return err
		}
	}
	switch {
	case jsonOut:
		return report.WriteJSON(out, b)
	case dumpOut:
		report.Dump(out, b)
		return nil
	}
	fmt.Fprint(out, report.Render(b, report.Options{ShowModel: showModel, ShowB: verbose}))
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	b, err := analyze(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	title := preset
	if configFile != "" {
		title = configFile
	} else if title == "" {
		title = "reference"
	}
	browser := tui.NewBrowser(title, b)
	if configFile == "" {
		browser.WithPresets(config.ListPresets(), title, func(name string) (*pipeline.Bundle, error) {
			return analyze(context.Background(), config.GetPreset(name))
		})
	}
	return tui.Run(browser)
}

func runFeedback(cmd *cobra.Command, args []string) error {
	x := make(dynamo.State, 2)
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("invalid state component %q: %w", a, err)
		}
		x[i] = v
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m, err := cfg.Model()
	if err != nil {
		return err
	}
	if err := dynamo.CheckState(m, x); err != nil {
		return err
	}
	pc, err := cfg.Pipeline(newLogger())
	if err != nil {
		return err
	}
	b := pipeline.Run(cmd.Context(), m, pc)

	out := cmd.OutOrStdout()
	ctrl, _, ok := controller(out, b)
	if !ok {
		return nil
	}

	u := ctrl.Compute(x, 0)
	dx := m.Derive(x, u, 0)
	fmt.Fprintf(out, "u = %.6g\n", u[0])
	fmt.Fprintf(out, "x_dot = (%.6g, %.6g)\n", dx[0], dx[1])
	return nil
}

// controller builds the feedback law for a finished run. When there is none
// the report is printed and ok is false.
func controller(out io.Writer, b *pipeline.Bundle) (ctrl dynamo.Controller, target dynamo.State, ok bool) {
	switch b.Outcome {
	case pipeline.GainComputed:
		sel, _ := b.Selected()
		x1, x2 := sel.Point.Approx()
		target = dynamo.State{real(x1), real(x2)}
		lqr, err := control.FromGain(b.Gain.K, target)
		if err != nil {
			fmt.Fprintf(out, "Gain not usable: %v\n", err)
			return nil, nil, false
		}
		fmt.Fprintf(out, "equilibrium: %s\n", sel.Point)
		fmt.Fprintf(out, "K = %s\n", report.Gain(b.Gain.K))
		return lqr, target, true
	case pipeline.NoGainNeeded:
		fmt.Fprintln(out, report.MsgNoGainNeeded)
		for _, e := range b.Entries {
			if e.Point.IsReal() {
				x1, x2 := e.Point.Approx()
				target = dynamo.State{real(x1), real(x2)}
				break
			}
		}
		return control.NewNone(b.Model.ControlDim()), target, true
	}
	fmt.Fprint(out, report.Render(b, report.Options{}))
	return nil, nil, false
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if duration > 0 {
		cfg.Simulation.Duration = duration
	}
	if radius > 0 {
		cfg.Simulation.Radius = radius
	}
	b, err := analyze(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ctrl, target, ok := controller(out, b)
	if !ok {
		return nil
	}
	if target == nil {
		fmt.Fprintln(out, "No real equilibrium to simulate around.")
		return nil
	}

	simCfg, r, newIntegrator := cfg.Simulator()
	factory := func() *sim.Simulator {
		s := sim.New(b.Model, newIntegrator(), ctrl)
		s.AddMetric(metrics.NewPeakDeviation(target))
		s.AddMetric(metrics.NewSettlingTime(target, r/100))
		s.AddMetric(metrics.NewControlEffort(make(dynamo.Control, b.Model.ControlDim())))
		return s
	}
	starts := sim.Perturbations(target, r)
	results, errs := sim.Sweep(cmd.Context(), factory, starts, simCfg, cfg.Workers)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "START\tFINAL\tPEAK\tSETTLED\tEFFORT")
	for i, x0 := range starts {
		if errs[i] != nil {
			fmt.Fprintf(w, "(%.4g, %.4g)\t%v\t\t\t\n", x0[0], x0[1], errs[i])
			continue
		}
		res := results[i]
		final := res.Final()
		settled := "no"
		if ts := res.Metrics["settling_time"]; ts >= 0 {
			settled = fmt.Sprintf("%.2fs", ts)
		}
		fmt.Fprintf(w, "(%.4g, %.4g)\t(%.4g, %.4g)\t%.3g\t%s\t%.3g\n",
			x0[0], x0[1], final[0], final[1],
			res.Metrics["peak_deviation"], settled, res.Metrics["control_effort"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if plot {
		var series [][]float64
		for i, res := range results {
			if errs[i] != nil || res == nil {
				continue
			}
			data := make([]float64, len(res.States))
			for k, x := range res.States {
				data[k] = x.Sub(target).Norm()
			}
			series = append(series, data)
		}
		if len(series) > 0 {
			graph := asciigraph.PlotMany(series,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption("|x - x_eq| vs time"),
			)
			fmt.Fprintln(out)
			fmt.Fprintln(out, graph)
		}
	}
	return nil
}
