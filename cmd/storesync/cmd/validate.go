package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/go-drift/storesync/cmd/storesync/internal/scenario"
)

// ValidationResult is the JSON payload of a successful validation.
type ValidationResult struct {
	Valid    bool   `json:"valid"`
	Scenario string `json:"scenario"`
	Bindings int    `json:"bindings"`
	Steps    int    `json:"steps"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Validate a scenario without running it",
		Long: `Validate a scenario without running it.

Checks bindings (names, paths, equality policies) and the step sequence:
commit and discard need an open pass, flush and attempt need none, and a
scenario must not end with a pass open.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, err := loadScenario(formatter, path)
	if err != nil {
		return err
	}

	result := ValidationResult{
		Valid:    true,
		Scenario: s.Name,
		Bindings: len(s.Bindings),
		Steps:    len(s.Steps),
	}
	return formatter.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ scenario %s is valid (%d bindings, %d steps)\n", s.Name, len(s.Bindings), len(s.Steps))
	})
}

// loadScenario loads path and reports load and validation failures through
// f before returning them.
func loadScenario(f *OutputFormatter, path string) (*scenario.Scenario, error) {
	s, err := scenario.Load(path)
	if err == nil {
		return s, nil
	}

	var invalid *scenario.ValidationError
	switch {
	case errors.As(err, &invalid):
		if outErr := f.Error(ErrCodeInvalidScenario, "scenario is invalid", invalid.Problems); outErr != nil {
			return nil, outErr
		}
		return nil, NewExitError(ExitFailure, fmt.Sprintf("%s: scenario %s is invalid", ErrCodeInvalidScenario, path))
	case errors.Is(err, fs.ErrNotExist):
		if outErr := f.Error(ErrCodeNotFound, fmt.Sprintf("scenario %s not found", path), nil); outErr != nil {
			return nil, outErr
		}
		return nil, WrapExitError(ExitCommandError, ErrCodeNotFound, err)
	default:
		if outErr := f.Error(ErrCodeInvalidScenario, err.Error(), nil); outErr != nil {
			return nil, outErr
		}
		return nil, WrapExitError(ExitFailure, ErrCodeInvalidScenario, err)
	}
}
