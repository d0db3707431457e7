package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Parameter fields
	Locked rune // ● input read by the current mode
	Solved rune // ○ derived by the solver

	// Toggles
	On  rune // ■
	Off rune // □

	// Step curve, shortest to longest
	Bars []rune

	Prompt string // console line prefix
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = Default()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Locked: '●',
			Solved: '○',

			On:  '■',
			Off: '□',

			Bars: []rune("▁▂▃▄▅▆▇█"),

			Prompt: ">> ",
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // near black
	RoleMuted   = 0.2 // frame green
	RoleFG      = 0.4 // phosphor green
	RoleAccent  = 0.6 // cyan
	RoleWarning = 0.8 // amber
	RoleError   = 1.0 // red
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return t.Color(RoleBG)
}

func (t *Theme) FG() lipgloss.Color {
	return t.Color(RoleFG)
}

func (t *Theme) Accent() lipgloss.Color {
	return t.Color(RoleAccent)
}

func (t *Theme) Muted() lipgloss.Color {
	return t.Color(RoleMuted)
}

func (t *Theme) Warning() lipgloss.Color {
	return t.Color(RoleWarning)
}

func (t *Theme) Error() lipgloss.Color {
	return t.Color(RoleError)
}

// Success shares the foreground green.
func (t *Theme) Success() lipgloss.Color {
	return t.Color(RoleFG)
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return lipgloss.Color(t.Palette.Lookup(norm).Hex())
}

// DriftColor grades a quantization error: under 10ms is tight, under
// 30ms loose, anything else an error.
func (t *Theme) DriftColor(errorMs float64) lipgloss.Color {
	switch {
	case errorMs < 10:
		return t.Success()
	case errorMs < 30:
		return t.Warning()
	}
	return t.Error()
}
