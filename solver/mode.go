package solver

import (
	"fmt"
	"strings"
)

// Mode selects which two parameters are locked and which are solved.
type Mode int

const (
	TargetTotalScale Mode = iota // N, R locked -> solve loop scale
	FixedBeatRatio               // N, loop scale locked -> solve R
	MatchBeatEnd                 // N, final scale locked -> solve loop scale, R
	FitToCurve                   // loop scale, R locked -> solve N
	FitEndAndRatio               // final scale, R locked -> solve N, loop scale
)

// Modes lists every mode in display order.
var Modes = []Mode{TargetTotalScale, FixedBeatRatio, MatchBeatEnd, FitToCurve, FitEndAndRatio}

var modeNames = map[Mode]string{
	TargetTotalScale: "target-total-scale",
	FixedBeatRatio:   "fixed-beat-ratio",
	MatchBeatEnd:     "match-beat-end",
	FitToCurve:       "fit-to-curve",
	FitEndAndRatio:   "fit-end-and-ratio",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode accepts the names produced by String, case-insensitively.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range Modes {
		if modeNames[m] == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q (want one of %s)", s, strings.Join(ModeNames(), ", "))
}

// ModeNames returns the names of all modes in display order.
func ModeNames() []string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = modeNames[m]
	}
	return names
}

// Param identifies one of the four user-facing quantities.
type Param int

const (
	ParamLoops Param = iota
	ParamLoopScale
	ParamTotalScale
	ParamFinalScale
)

// Locked returns the parameters the mode reads as inputs; the rest are
// solved.
func (m Mode) Locked() []Param {
	switch m {
	case TargetTotalScale:
		return []Param{ParamLoops, ParamTotalScale}
	case FixedBeatRatio:
		return []Param{ParamLoops, ParamLoopScale}
	case MatchBeatEnd:
		return []Param{ParamLoops, ParamFinalScale}
	case FitToCurve:
		return []Param{ParamLoopScale, ParamTotalScale}
	case FitEndAndRatio:
		return []Param{ParamFinalScale, ParamTotalScale}
	}
	return nil
}

// IsLocked reports whether p is an input of the mode.
func (m Mode) IsLocked(p Param) bool {
	for _, l := range m.Locked() {
		if l == p {
			return true
		}
	}
	return false
}

// fitsRepetitions reports whether the mode searches for N instead of
// reading it.
func (m Mode) fitsRepetitions() bool {
	return m == FitToCurve || m == FitEndAndRatio
}
