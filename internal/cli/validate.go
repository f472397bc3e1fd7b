package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/sansstate/internal/pipeline"
)

// ValidationResult is the payload of a successful validate.
type ValidationResult struct {
	Valid      bool     `json:"valid"`
	File       string   `json:"file"`
	Facility   string   `json:"facility"`
	Instrument string   `json:"instrument"`
	Concerns   []string `json:"concerns"`
	Hash       string   `json:"hash"`
}

// WriteText implements textWriter.
func (r ValidationResult) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "✓ %s valid (%s/%s, %d concerns, hash %s)\n",
		r.File, r.Facility, r.Instrument, len(r.Concerns), shortHash(r.Hash))
	return err
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Build and validate a configuration file",
		Long: `Load a configuration file, build every concern for its instrument and
validate the result.

Every validation problem is reported, not just the first. Exit status is 1
when the configuration is invalid and 2 when it cannot be loaded at all.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Errors are written by the formatter
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg, err := opts.loadConfig(cmd, formatter, path)
	if err != nil {
		return err
	}
	result, err := describe(path, cfg)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "hash configuration", err)
	}
	return formatter.Success(result)
}

func describe(path string, cfg *pipeline.Config) (ValidationResult, error) {
	hash, err := cfg.Hash()
	if err != nil {
		return ValidationResult{}, err
	}
	concerns := cfg.Concerns()
	names := make([]string, len(concerns))
	for i, c := range concerns {
		names[i] = string(c)
	}
	return ValidationResult{
		Valid:      true,
		File:       path,
		Facility:   string(cfg.Facility()),
		Instrument: string(cfg.Instrument()),
		Concerns:   names,
		Hash:       hash,
	}, nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
