package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"midiwarp/sequencer"
	"midiwarp/tui"
)

func (c *CLI) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui [file]",
		Short: "Interactive terminal front-end",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var source string
			if len(args) == 1 {
				source = args[0]
			}
			// The alt screen owns the terminal; engine chatter goes to the
			// trace log only.
			engine := sequencer.NewEngine(log.New(io.Discard))
			return tui.Run(cmd.Context(), engine, c.Config, c.theme(), source)
		},
	}
}
