package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/simrec/internal/config"
	"github.com/san-kum/simrec/internal/dataset"
	"github.com/san-kum/simrec/internal/plotting"
	"github.com/san-kum/simrec/internal/recorder"
	"github.com/san-kum/simrec/internal/storage"
)

const usage = " USAGE:  record modelfile duration fps num_repetition"

var (
	configFile string
	preset     string
	outDir     string
	keyFile    string
	dataDir    string
	seed       int64
	noManifest bool
	verbose    bool
	// inspect
	width  int
	height int
	pngDir string
	// plot
	plotOut string
)

var (
	title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	label = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	value = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
)

var log = logrus.New()

// exitCode is what main returns after a command finished without error.
// A completed recording exits with 1, bad usage with 0.
var exitCode = 0

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	exitCode = 0
	log.SetOutput(stderr)

	if args == nil {
		args = []string{}
	}
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		return 1
	}
	return exitCode
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "record [flags] <modelfile> <duration> <fps> <num_repetition>",
		Short:         "render simulated pool shots to raw RGB frame files",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRecord,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory for run manifests")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.Flags().StringVar(&preset, "preset", "", "use preset scenario")
	rootCmd.Flags().StringVar(&outDir, "out", "", "output directory for frame files")
	rootCmd.Flags().StringVar(&keyFile, "keyfile", "", "activation key file")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "base seed for episode parameters (0 uses the clock)")
	rootCmd.Flags().BoolVar(&noManifest, "no-manifest", false, "do not record a run manifest")
	// Flags go before the model file; everything after it is positional,
	// so "-2" reaches the argument parser as a number.
	rootCmd.Flags().SetInterspersed(false)

	inspectCmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "summarize a frame file",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectFile,
	}
	inspectCmd.Flags().IntVar(&width, "width", config.DefaultWidth, "frame width")
	inspectCmd.Flags().IntVar(&height, "height", config.DefaultHeight, "frame height")
	inspectCmd.Flags().StringVar(&pngDir, "png", "", "export every frame as png into this directory")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the sampled trajectories of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotOut, "out", "", "png path (default: <data>/<run_id>/trajectories.png)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenario presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(inspectCmd, plotCmd, listCmd, presetsCmd)
	return rootCmd
}

func setupLogger() {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(logrus.InfoLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
}

// loadConfig layers defaults, preset, config file and flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadWithBase(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("out") {
		cfg.OutputDir = outDir
	}
	if cmd.Flags().Changed("keyfile") {
		cfg.KeyFile = keyFile
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("data") {
		cfg.Manifest.DataDir = dataDir
	}
	if noManifest {
		cfg.Manifest.Enabled = false
	}
	return cfg, nil
}

func runRecord(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) != 4 {
		fmt.Fprintln(out, usage)
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.ApplyArgs(args[1], args[2], args[3])

	report, err := recorder.Run(recorder.Options{
		ModelPath: args[0],
		Config:    cfg,
		Logger:    log,
		Progress:  out,
	})
	if err != nil {
		return err
	}

	printSummary(out, args[0], cfg, report)
	exitCode = 1
	return nil
}

func printSummary(out io.Writer, model string, cfg *config.Config, report *recorder.Report) {
	row := func(k, v string) {
		fmt.Fprintln(out, label.Render(fmt.Sprintf("  %-10s", k))+value.Render(v))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, title.Render("recording complete"))
	row("model", model)
	row("backend", report.Backend)
	row("viewport", fmt.Sprintf("%dx%d", report.Width, report.Height))
	row("episodes", fmt.Sprintf("%d", len(report.Episodes)))
	row("frames", fmt.Sprintf("%d", report.Frames()))
	row("output", cfg.OutputDir)
	row("elapsed", report.Elapsed.Round(1e6).String())
	if report.RunID != "" {
		row("run", report.RunID)
	}
}

func inspectFile(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	f, err := dataset.Open(args[0], width, height)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "file: %s\n", f.Path)
	fmt.Fprintf(out, "label: %d\n", f.Label())
	fmt.Fprintf(out, "frames: %d\n\n", f.Frames())

	if f.Frames() > 0 {
		data := make([]float64, f.Frames())
		for i := range data {
			if data[i], err = f.MeanIntensity(i); err != nil {
				return err
			}
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("mean intensity per frame"),
		)
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)
	}

	if pngDir != "" {
		paths, err := f.ExportPNG(pngDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "exported %d frames to %s\n", len(paths), pngDir)
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	episodes, err := st.LoadEpisodes(runID)
	if err != nil {
		return err
	}
	if len(episodes) == 0 {
		return fmt.Errorf("no episodes to plot")
	}

	p, err := plotting.Trajectories(fmt.Sprintf("%s (%d episodes)", meta.ID, len(episodes)), episodes)
	if err != nil {
		return err
	}

	path := plotOut
	if path == "" {
		path = filepath.Join(dataDir, runID, "trajectories.png")
	}
	if err := plotting.SavePNG(p, path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", path)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tEPISODES\tDURATION\tFPS\tSIZE\tSEED")

	for _, run := range runs {
		seedDesc := run.SeedMode
		if run.SeedMode == "fixed" {
			seedDesc = fmt.Sprintf("%d", run.Seed)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2fs\t%g\t%dx%d\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Episodes,
			run.Duration,
			run.FPS,
			run.Width, run.Height,
			seedDesc,
		)
	}

	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		fmt.Fprintf(w, "%s\t%s\n", name, config.Presets[name].Description)
	}
	return w.Flush()
}
