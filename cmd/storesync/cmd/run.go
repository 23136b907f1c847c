package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/go-drift/storesync/cmd/storesync/internal/scenario"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	Out string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario and report what every binding rendered",
		Long: `Run a scenario against a fresh store.

Bindings are mounted before the first step. Steps mutate the store (set,
delete), render (flush, or attempt followed by commit or discard), toggle
hydration (hydrate) and unmount bindings (unmount). The report lists every
selection a binding rendered, its committed build count, the development
warnings raised and the instrumentation records.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the report to a file instead of stdout")

	return cmd
}

func runScenario(rootOpts *RootOptions, opts *RunOptions, path string, cmd *cobra.Command) error {
	var buf bytes.Buffer
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    &buf,
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}
	flush := func() error {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	cfg, err := rootOpts.resolveConfig()
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		flush()
		return WrapExitError(ExitCommandError, ErrCodeGeneric, err)
	}
	formatter.VerboseLog("project %s (root %s)", cfg.AppName, cfg.Root)

	s, err := loadScenario(formatter, path)
	if err != nil {
		flush()
		return err
	}
	formatter.VerboseLog("running scenario %s: %d bindings, %d steps", s.Name, len(s.Bindings), len(s.Steps))

	runOpts := scenario.Options{
		Checks:      cfg.Checks,
		Development: cfg.Development,
		Trace:       cfg.TraceEnabled,
	}
	if cfg.TraceVerbose || rootOpts.Verbose {
		runOpts.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	report, err := scenario.Run(s, runOpts)
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		flush()
		return WrapExitError(ExitFailure, ErrCodeGeneric, err)
	}

	if err := formatter.Success(report, func(w io.Writer) {
		writeReport(w, report, rootOpts.Verbose)
	}); err != nil {
		return err
	}

	if opts.Out == "" {
		return flush()
	}
	if err := atomic.WriteFile(opts.Out, &buf); err != nil {
		return WrapExitError(ExitCommandError, ErrCodeWriteFailed, err)
	}
	if !formatter.json() {
		fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", opts.Out)
	}
	return nil
}

func writeReport(w io.Writer, r *scenario.Report, verbose bool) {
	fmt.Fprintf(w, "scenario: %s\n", r.Scenario)
	for _, b := range r.Bindings {
		fmt.Fprintf(w, "binding %s (path %s, equality %s)\n", b.Name, b.Path, b.Equality)
		fmt.Fprintf(w, "  renders: %v\n", b.Renders)
		fmt.Fprintf(w, "  commits: %d\n", b.Commits)
		fmt.Fprintf(w, "  mounted: %t\n", b.Mounted)
		if b.Error != "" {
			fmt.Fprintf(w, "  error: %s\n", b.Error)
		}
	}

	if len(r.Diagnostics) == 0 {
		fmt.Fprintln(w, "diagnostics: none")
	} else {
		fmt.Fprintln(w, "diagnostics:")
		for _, d := range r.Diagnostics {
			fmt.Fprintf(w, "  %s\n", d)
		}
	}

	if len(r.Panics) > 0 {
		fmt.Fprintln(w, "panics:")
		for _, p := range r.Panics {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}

	if len(r.Records) > 0 {
		fmt.Fprintln(w, "records:")
		for _, rec := range r.Records {
			fmt.Fprintf(w, "  %s %s\n", rec.ID, rec.Selector)
		}
	}

	if verbose && len(r.Events) > 0 {
		fmt.Fprintln(w, "events:")
		for _, e := range r.Events {
			fmt.Fprintf(w, "  %s %s\n", e.Record, e)
		}
	}
}
