package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

const deltaPreview = 16

func (c *CLI) inspectCommand() *cobra.Command {
	var showGrid bool

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show the segment grid of a MIDI file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.loadEngine(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			g := e.Grid()

			printTitle(w, filepath.Base(args[0]))
			printKeyValue(w, "tracks", fmt.Sprint(e.TrackCount()))
			printKeyValue(w, "ppq", fmt.Sprint(e.PPQ()))
			printKeyValue(w, "tempo", fmt.Sprintf("%.2f bpm", e.SourceBPM()))
			printKeyValue(w, "segments", fmt.Sprint(e.SegmentCount()))
			printKeyValue(w, "duration", fmt.Sprintf("%g ticks", g.TotalDuration()))
			printKeyValue(w, "deltas", formatTicks(e.Deltas(), deltaPreview))
			if !showGrid {
				return nil
			}
			for i, b := range g.Buckets() {
				if len(b) == 0 {
					continue
				}
				printDetail(w, "grid %d @ %g: %d events", i, g.Points()[i], len(b))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showGrid, "grid", false, "list every grid point and its event count")
	return cmd
}
