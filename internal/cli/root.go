package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sansstate/internal/builder"
	"github.com/roach88/sansstate/internal/loader"
	"github.com/roach88/sansstate/internal/metadata"
	"github.com/roach88/sansstate/internal/pipeline"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	LogLevel    string // "debug" | "info" | "warn" | "error"
	MetadataDir string

	// Registry overrides the builder registry (for testing).
	// If nil, builder.DefaultRegistry is used.
	Registry func() builder.Registry

	// RevisionIDs overrides the store revision id generator (for testing).
	// If nil, the store default (UUIDv7) is used.
	RevisionIDs func() string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ValidLogLevels defines the allowed --log-level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// NewRootCommand creates the root command for the sansstate CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sansstate",
		Short: "sansstate - SANS reduction configuration",
		Long: `Build, validate and archive SANS reduction configurations.

A configuration file (CUE, YAML or JSON) names an instrument and overrides
per-concern settings; everything else is derived from instrument metadata.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if _, err := parseLogLevel(opts.LogLevel); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (implies --log-level debug)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.MetadataDir, "metadata-dir", "",
		"instrument parameter directory (default $"+metadata.EnvDir+", else built-in tables)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewBagCommand(opts))
	cmd.AddCommand(NewSelfCheckCommand(opts))
	cmd.AddCommand(NewInstrumentsCommand(opts))
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewListCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level %q: must be one of %v", s, ValidLogLevels)
}

// logger builds the diagnostic logger. Logs go to w (stderr) so JSON
// output on stdout stays parseable.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level, err := parseLogLevel(o.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	if o.Verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	if o.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

// formatter returns the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:  o.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: o.Verbose,
	}
}

func (o *RootOptions) registry() builder.Registry {
	if o.Registry != nil {
		return o.Registry()
	}
	return builder.DefaultRegistry()
}

// provider picks the metadata source: --metadata-dir, then the
// environment, then the built-in tables.
func (o *RootOptions) provider(logger *slog.Logger) metadata.Provider {
	if o.MetadataDir != "" {
		return metadata.NewFileProvider(o.MetadataDir, metadata.WithLogger(logger))
	}
	if p := metadata.FileProviderFromEnv(metadata.WithLogger(logger)); p != nil {
		return p
	}
	return metadata.Static{}
}

// newLoader wires factory, assembler and loader for one command run.
func (o *RootOptions) newLoader(logger *slog.Logger) (*loader.Loader, error) {
	f, err := builder.NewFactory(o.registry(),
		builder.WithProvider(o.provider(logger)),
		builder.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	a := pipeline.NewAssembler(f, pipeline.WithLogger(logger))
	return loader.New(a, loader.WithLogger(logger)), nil
}

// loadConfig loads path and reports failures through f. A configuration
// that fails validation exits with ExitFailure; anything else that stops
// the load exits with ExitCommandError.
func (o *RootOptions) loadConfig(cmd *cobra.Command, f *OutputFormatter, path string) (*pipeline.Config, error) {
	logger := o.logger(cmd.ErrOrStderr())
	ld, err := o.newLoader(logger)
	if err != nil {
		_ = f.Error(ErrCodeRegistry, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "builder registry", err)
	}

	cfg, err := ld.LoadFile(commandContext(cmd), path)
	if err == nil {
		return cfg, nil
	}

	var (
		verr *pipeline.ValidationError
		lerr *loader.LoadError
		merr *metadata.Error
	)
	switch {
	case errors.As(err, &verr):
		problems := verr.Problems()
		_ = f.Problems(fmt.Sprintf("%s: configuration invalid", path), problems)
		return nil, NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d problem(s)", len(problems)))
	case errors.As(err, &lerr):
		_ = f.Error(lerr.Code, lerr.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "load failed", err)
	case builder.IsUnsupported(err):
		_ = f.Error(ErrCodeUnsupported, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "unsupported configuration", err)
	case errors.As(err, &merr):
		_ = f.Error(ErrCodeMetadata, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "instrument metadata", err)
	default:
		_ = f.Error(ErrCodeGeneric, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "load failed", err)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
