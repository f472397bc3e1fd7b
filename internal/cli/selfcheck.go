package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/sansstate/internal/builder"
)

// SelfCheckResult reports registry coverage.
type SelfCheckResult struct {
	OK      bool     `json:"ok"`
	Entries int      `json:"entries"`
	Missing []string `json:"missing"`
	Invalid []string `json:"invalid"`
}

// WriteText implements textWriter.
func (r SelfCheckResult) WriteText(w io.Writer) error {
	if r.OK {
		_, err := fmt.Fprintf(w, "✓ builder registry complete (%d entries)\n", r.Entries)
		return err
	}
	fmt.Fprintf(w, "✗ builder registry incomplete (%d entries)\n", r.Entries)
	for _, k := range r.Missing {
		fmt.Fprintf(w, "  missing %s\n", k)
	}
	for _, k := range r.Invalid {
		fmt.Fprintf(w, "  invalid %s\n", k)
	}
	return nil
}

// NewSelfCheckCommand creates the selfcheck command.
func NewSelfCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "selfcheck",
		Short: "Check builder registry coverage",
		Long: `Verify that every known instrument has a builder for every mandatory
concern and that no registry entry names an unknown instrument or concern.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelfCheck(rootOpts.formatter(cmd), rootOpts.registry())
		},
	}
	return cmd
}

func runSelfCheck(formatter *OutputFormatter, r builder.Registry) error {
	result := SelfCheckResult{OK: true, Entries: len(r), Missing: []string{}, Invalid: []string{}}

	err := r.SelfCheck()
	var rerr *builder.RegistryError
	switch {
	case err == nil:
	case errors.As(err, &rerr):
		result.OK = false
		result.Missing = keyStrings(rerr.Missing)
		result.Invalid = keyStrings(rerr.Invalid)
	default:
		_ = formatter.Error(ErrCodeRegistry, err.Error(), nil)
		return WrapExitError(ExitCommandError, "registry self check", err)
	}

	if result.OK {
		return formatter.Success(result)
	}
	if formatter.Format == "json" {
		_ = formatter.Error(ErrCodeRegistry, err.Error(), result)
	} else {
		_ = result.WriteText(formatter.Writer)
	}
	return WrapExitError(ExitFailure, "registry self check failed", err)
}

func keyStrings(keys []builder.Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}
