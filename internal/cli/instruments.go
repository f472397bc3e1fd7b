package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/sansstate/internal/instrument"
)

// InstrumentInfo describes one supported instrument.
type InstrumentInfo struct {
	Facility   string   `json:"facility"`
	Instrument string   `json:"instrument"`
	Banks      []string `json:"banks"`
}

// InstrumentList is the payload of the instruments command.
type InstrumentList struct {
	EnumVersion string           `json:"enum_version"`
	Instruments []InstrumentInfo `json:"instruments"`
}

// WriteText implements textWriter.
func (l InstrumentList) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FACILITY\tINSTRUMENT\tBANKS")
	for _, info := range l.Instruments {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Facility, info.Instrument, strings.Join(info.Banks, ","))
	}
	return tw.Flush()
}

// NewInstrumentsCommand creates the instruments command.
func NewInstrumentsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "instruments",
		Short:         "List supported facilities, instruments and detector banks",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.formatter(cmd).Success(listInstruments())
		},
	}
	return cmd
}

func listInstruments() InstrumentList {
	out := InstrumentList{EnumVersion: instrument.EnumVersion, Instruments: []InstrumentInfo{}}
	for _, fac := range instrument.Facilities() {
		for _, inst := range instrument.Of(fac) {
			banks := inst.Banks()
			names := make([]string, len(banks))
			for i, b := range banks {
				names[i] = string(b)
			}
			out.Instruments = append(out.Instruments, InstrumentInfo{
				Facility:   string(fac),
				Instrument: string(inst),
				Banks:      names,
			})
		}
	}
	return out
}
