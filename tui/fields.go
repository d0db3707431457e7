package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"midiwarp/config"
	"midiwarp/solver"
)

// field indexes into Model.inputs in display order.
type field int

const (
	fieldSource field = iota
	fieldLoops
	fieldLoopScale
	fieldTotalScale
	fieldFinalScale
	fieldOutput
	numFields
)

var fieldLabels = [numFields]string{
	fieldSource:     "SOURCE",
	fieldLoops:      "LOOPS",
	fieldLoopScale:  "LOOP SCALE",
	fieldTotalScale: "TOTAL SCALE",
	fieldFinalScale: "FINAL SCALE",
	fieldOutput:     "OUTPUT",
}

var fieldParams = map[field]solver.Param{
	fieldLoops:      solver.ParamLoops,
	fieldLoopScale:  solver.ParamLoopScale,
	fieldTotalScale: solver.ParamTotalScale,
	fieldFinalScale: solver.ParamFinalScale,
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = limit
	ti.Width = limit
	return ti
}

func newInputs(cfg *config.Config) []textinput.Model {
	inputs := make([]textinput.Model, numFields)
	inputs[fieldSource] = newInput("path/to/loop.mid", 256)
	inputs[fieldOutput] = newInput("path/to/output.mid", 256)
	inputs[fieldSource].Width = 48
	inputs[fieldOutput].Width = 48
	for f := fieldLoops; f <= fieldFinalScale; f++ {
		inputs[f] = newInput("------", 20)
		inputs[f].Width = 12
	}

	inputs[fieldLoops].SetValue(formatFloat(cfg.Solver.Loops, 2))
	inputs[fieldLoopScale].SetValue(formatFloat(cfg.Solver.LoopScale, 5))
	inputs[fieldTotalScale].SetValue(formatFloat(cfg.Solver.TotalScale, 5))
	inputs[fieldFinalScale].SetValue(formatFloat(cfg.Solver.FinalScale, 5))
	return inputs
}

// enabled reports whether f takes input under mode. Paths are always
// editable; parameter fields only when the mode reads them.
func enabled(f field, mode solver.Mode) bool {
	p, ok := fieldParams[f]
	if !ok {
		return true
	}
	return mode.IsLocked(p)
}

// formatFloat trims trailing zeros: 4.00 -> "4", 1.50000 -> "1.5".
func formatFloat(v float64, prec int) string {
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}

// solverInputs holds the parsed parameter fields.
type solverInputs struct {
	loops, loopScale, totalScale, finalScale float64
}

// parseInputs reads the parameter fields. Fields the mode ignores parse
// leniently to 0; a locked field must hold a number.
func parseInputs(inputs []textinput.Model, mode solver.Mode) (solverInputs, error) {
	var vals [numFields]float64
	for f := fieldLoops; f <= fieldFinalScale; f++ {
		raw := strings.TrimSpace(inputs[f].Value())
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			if enabled(f, mode) {
				return solverInputs{}, fmt.Errorf("%s is not a number: %q", strings.ToLower(fieldLabels[f]), raw)
			}
			v = 0
		}
		vals[f] = v
	}
	return solverInputs{
		loops:      vals[fieldLoops],
		loopScale:  vals[fieldLoopScale],
		totalScale: vals[fieldTotalScale],
		finalScale: vals[fieldFinalScale],
	}, nil
}
