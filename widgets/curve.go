package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"midiwarp/theme"
)

// CurveLevels maps durations onto bar levels 0..levels-1, averaging
// neighbouring values when there are more durations than columns. A flat
// series sits on the middle level.
func CurveLevels(durations []float64, width, levels int) []int {
	n := len(durations)
	if n == 0 || width <= 0 || levels <= 0 {
		return nil
	}
	cols := min(n, width)

	values := make([]float64, cols)
	for c := range values {
		lo, hi := c*n/cols, (c+1)*n/cols
		var sum float64
		for _, d := range durations[lo:hi] {
			sum += d
		}
		values[c] = sum / float64(hi-lo)
	}

	lowest, highest := values[0], values[0]
	for _, v := range values {
		lowest = min(lowest, v)
		highest = max(highest, v)
	}

	out := make([]int, cols)
	span := highest - lowest
	for c, v := range values {
		if span <= 1e-9*max(math.Abs(highest), 1) {
			out[c] = (levels - 1) / 2
			continue
		}
		out[c] = int(math.Round((v - lowest) / span * float64(levels-1)))
	}
	return out
}

// RenderCurve draws step durations as a one-line sparkline.
func RenderCurve(th *theme.Theme, durations []float64, width int) string {
	bars := th.Symbols.Bars
	levels := CurveLevels(durations, width, len(bars))
	if levels == nil {
		return ""
	}
	var b strings.Builder
	for _, l := range levels {
		b.WriteRune(bars[l])
	}
	return lipgloss.NewStyle().Foreground(th.Accent()).Render(b.String())
}

// RenderDrift renders the quantization error readout. Before a solve it
// shows "DRIFT: --"; a failed solve reads as 999ms.
func RenderDrift(th *theme.Theme, errorMs float64, solved bool) string {
	if !solved {
		return lipgloss.NewStyle().Foreground(th.Muted()).Render("DRIFT: --")
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(th.DriftColor(errorMs)).
		Render(fmt.Sprintf("DRIFT: %.2fms", errorMs))
}

// RenderToggle renders "■ label" or "□ label".
func RenderToggle(th *theme.Theme, label string, on bool) string {
	if on {
		return lipgloss.NewStyle().Foreground(th.Accent()).Render(string(th.Symbols.On) + " " + label)
	}
	return lipgloss.NewStyle().Foreground(th.Muted()).Render(string(th.Symbols.Off) + " " + label)
}
