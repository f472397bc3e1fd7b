package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sansstate/internal/bag"
)

// BagOptions holds flags for the bag command.
type BagOptions struct {
	*RootOptions
	Flat bool
}

// NewBagCommand creates the bag command.
func NewBagCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BagOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bag <file>",
		Short: "Print the property bag of a configuration",
		Long: `Load and validate a configuration file, then print its property bag as
canonical JSON.

The nested form groups settings by concern. --flat prints the dotted-key
form handed to the reduction engine ("wavelength.wavelength_low").`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBag(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Flat, "flat", false, "print dotted keys instead of nested sections")

	return cmd
}

func runBag(opts *BagOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg, err := opts.loadConfig(cmd, formatter, path)
	if err != nil {
		return err
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

	if opts.Format == "json" {
		return formatter.Success(json.RawMessage(data))
	}
	_, err = fmt.Fprintf(formatter.Writer, "%s\n", data)
	return err
}
