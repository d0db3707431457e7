package midi

import (
	"fmt"
	"strings"
)

// Dump renders a short plain-text summary of a timeline: resolution and
// per-track event counts.
func Dump(title string, tl *Timeline) string {
	var out strings.Builder
	fmt.Fprintf(&out, "\n[%s]\n", title)
	fmt.Fprintf(&out, "PPQ: %d\n", tl.PPQ)
	for i := range tl.Tracks {
		fmt.Fprintf(&out, "Trk%d: %d evs\n", i, tl.EventCount(i))
	}
	return out.String()
}
