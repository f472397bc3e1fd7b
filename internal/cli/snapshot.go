package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/store"
)

// SnapshotOptions holds flags shared by save, show and list.
type SnapshotOptions struct {
	*RootOptions
	Database string
	Label    string
	Flat     bool
	Filter   string
}

func (o *SnapshotOptions) open(logger *slog.Logger) (*store.Store, error) {
	opts := []store.Option{store.WithLogger(logger)}
	if o.RevisionIDs != nil {
		opts = append(opts, store.WithRevisionIDs(o.RevisionIDs))
	}
	return store.Open(o.Database, opts...)
}

// withStore opens the database, runs fn and closes it again.
func (o *SnapshotOptions) withStore(cmd *cobra.Command, f *OutputFormatter, fn func(*store.Store) error) error {
	logger := o.logger(cmd.ErrOrStderr())
	st, err := o.open(logger)
	if err != nil {
		_ = f.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()
	return fn(st)
}

func addDatabaseFlag(cmd *cobra.Command, opts *SnapshotOptions) {
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
}

// SnapshotText renders a snapshot for text output.
type SnapshotText store.Snapshot

// WriteText implements textWriter.
func (s SnapshotText) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "saved %s/%s revision %s (seq %d, hash %s, label %q)\n",
		s.Facility, s.Instrument, s.ID, s.Seq, shortHash(s.Hash), s.Label)
	return err
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SnapshotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save <file>",
		Short: "Validate a configuration and archive it",
		Long: `Load and validate a configuration file, then store it in a SQLite
database under its content hash.

Saving identical content with the same label again returns the existing
revision.

Example:
  sansstate save --db ./configs.db --label run-22024 sans2d.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(opts, args[0], cmd)
		},
	}

	addDatabaseFlag(cmd, opts)
	cmd.Flags().StringVar(&opts.Label, "label", "", "revision label")

	return cmd
}

func runSave(opts *SnapshotOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg, err := opts.loadConfig(cmd, formatter, path)
	if err != nil {
		return err
	}
	return opts.withStore(cmd, formatter, func(st *store.Store) error {
		snap, err := st.Save(commandContext(cmd), cfg, opts.Label)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "save failed", err)
		}
		if opts.Format == "json" {
			return formatter.Success(snap)
		}
		return formatter.Success(SnapshotText(snap))
	})
}

// ShowResult is the payload of the show command.
type ShowResult struct {
	Snapshot store.Snapshot  `json:"snapshot"`
	Config   json.RawMessage `json:"config"`
}

// WriteText implements textWriter.
func (r ShowResult) WriteText(w io.Writer) error {
	s := r.Snapshot
	fmt.Fprintf(w, "revision:   %s\n", s.ID)
	fmt.Fprintf(w, "hash:       %s\n", s.Hash)
	fmt.Fprintf(w, "instrument: %s/%s\n", s.Facility, s.Instrument)
	fmt.Fprintf(w, "label:      %s\n", s.Label)
	fmt.Fprintf(w, "seq:        %d\n\n", s.Seq)
	_, err := fmt.Fprintf(w, "%s\n", r.Config)
	return err
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SnapshotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <hash|revision-id>",
		Short: "Print an archived configuration",
		Long: `Print an archived configuration by content hash or revision id.

The stored body is checked against its hash before it is printed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	addDatabaseFlag(cmd, opts)
	cmd.Flags().BoolVar(&opts.Flat, "flat", false, "print dotted keys instead of nested sections")

	return cmd
}

func runShow(opts *SnapshotOptions, ref string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	return opts.withStore(cmd, formatter, func(st *store.Store) error {
		cfg, snap, err := st.Load(commandContext(cmd), ref)
		if errors.Is(err, store.ErrNotFound) {
			_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
			return WrapExitError(ExitCommandError, "snapshot not found", err)
		}
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "load failed", err)
		}

		b := cfg.ToBag()
		if opts.Flat {
			if b, err = cfg.Flatten(); err != nil {
				_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
				return WrapExitError(ExitCommandError, "flatten configuration", err)
			}
		}
		data, err := bag.MarshalCanonical(b)
		if err != nil {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "encode configuration", err)
		}
		return formatter.Success(ShowResult{Snapshot: snap, Config: data})
	})
}

// SnapshotList is the payload of the list command.
type SnapshotList []store.Snapshot

// WriteText implements textWriter.
func (l SnapshotList) WriteText(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "no snapshots")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tINSTRUMENT\tLABEL\tHASH\tREVISION")
	for _, s := range l {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", s.Seq, s.Instrument, s.Label, shortHash(s.Hash), s.ID)
	}
	return tw.Flush()
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SnapshotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List archived configurations, oldest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	addDatabaseFlag(cmd, opts)
	cmd.Flags().StringVar(&opts.Filter, "instrument", "", "only list this instrument")

	return cmd
}

func runList(opts *SnapshotOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	var inst instrument.Instrument
	if opts.Filter != "" {
		parsed, err := instrument.ParseInstrument(opts.Filter)
		if err != nil {
			_ = formatter.Error(ErrCodeUnsupported, err.Error(), nil)
			return WrapExitError(ExitCommandError, "invalid --instrument", err)
		}
		inst = parsed
	}

	return opts.withStore(cmd, formatter, func(st *store.Store) error {
		snaps, err := st.List(commandContext(cmd), inst)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "list failed", err)
		}
		return formatter.Success(SnapshotList(snaps))
	})
}
