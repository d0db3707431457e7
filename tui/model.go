package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"midiwarp/config"
	"midiwarp/debug"
	"midiwarp/errors"
	"midiwarp/sequencer"
	"midiwarp/solver"
	"midiwarp/theme"
)

const (
	consoleKeep = 200
	consoleShow = 8
	curveWidth  = 48

	// driftFailed is shown after a failed solve.
	driftFailed = 999.0
)

type Model struct {
	Engine *sequencer.Engine
	Theme  *theme.Theme

	cfg    *config.Config
	inputs []textinput.Model
	focus  field

	mode         solver.Mode
	integerLoops bool
	dump         bool

	result  solver.Result
	solved  bool // a solve has run since the last load
	driftMs float64
	curve   []float64

	console  []string
	width    int
	showHelp bool
	quitting bool
}

// NewModel builds the UI over engine. source, when set, is loaded on start.
func NewModel(engine *sequencer.Engine, cfg *config.Config, th *theme.Theme, source string) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if th == nil {
		th = theme.New(nil)
	}
	m := Model{
		Engine:       engine,
		Theme:        th,
		cfg:          cfg,
		inputs:       newInputs(cfg),
		mode:         cfg.SolverMode(),
		integerLoops: cfg.Solver.IntegerLoops,
		dump:         cfg.Output.DebugDump,
		width:        80,
	}
	m.logf("SYSTEM INITIALIZED.")
	if source != "" {
		m.inputs[fieldSource].SetValue(source)
		m.load()
	} else {
		m.logf("AWAITING INPUT...")
	}
	m.setFocus(fieldSource)
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "tab", "down":
			m.moveFocus(1)
			return m, nil

		case "shift+tab", "up":
			m.moveFocus(-1)
			return m, nil

		case "f1":
			m.showHelp = !m.showHelp
			return m, nil

		case "ctrl+t":
			m.cycleMode()
			return m, nil

		case "ctrl+l":
			m.integerLoops = !m.integerLoops
			m.logf("INTEGER LOOPS %s.", onOff(m.integerLoops))
			return m, nil

		case "ctrl+d":
			m.dump = !m.dump
			m.logf("DEBUG DUMP %s.", onOff(m.dump))
			return m, nil

		case "ctrl+o":
			m.load()
			return m, nil

		case "ctrl+s":
			m.solve()
			return m, nil

		case "ctrl+g":
			m.generate()
			return m, nil

		case "ctrl+w":
			m.save()
			return m, nil

		case "ctrl+e":
			m.eject()
			return m, nil

		case "enter":
			switch m.focus {
			case fieldSource:
				m.load()
			case fieldOutput:
				m.save()
			default:
				m.solve()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// logf appends a console line.
func (m *Model) logf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	m.console = append(m.console, line)
	if len(m.console) > consoleKeep {
		m.console = m.console[len(m.console)-consoleKeep:]
	}
	debug.Log("tui", "%s", line)
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

func (m *Model) setFocus(f field) {
	m.inputs[m.focus].Blur()
	m.focus = f
	m.inputs[f].Focus()
}

// moveFocus steps through the fields the current mode accepts input for.
func (m *Model) moveFocus(dir int) {
	f := m.focus
	for i := field(0); i < numFields; i++ {
		f = (f + field(dir) + numFields) % numFields
		if enabled(f, m.mode) {
			break
		}
	}
	m.setFocus(f)
}

func (m *Model) cycleMode() {
	idx := 0
	for i, mode := range solver.Modes {
		if mode == m.mode {
			idx = i
		}
	}
	m.mode = solver.Modes[(idx+1)%len(solver.Modes)]
	if !enabled(m.focus, m.mode) {
		m.moveFocus(1)
	}
	m.logf("MODE: %s.", strings.ToUpper(m.mode.String()))
}

func (m *Model) load() {
	path := strings.TrimSpace(m.inputs[fieldSource].Value())
	if path == "" {
		m.logf("ERROR: NO SOURCE PATH.")
		return
	}
	m.logf("ACCESSING: %s", filepath.Base(path))
	m.solved = false
	m.curve = nil
	if err := m.Engine.LoadSource(path); err != nil {
		m.logf("ERROR: %s", errors.UserMessage(err))
		return
	}
	m.logf("SOURCE LOADED. %d TRACKS, %d SEGMENTS, %.1f BPM.",
		m.Engine.TrackCount(), m.Engine.SegmentCount(), m.Engine.SourceBPM())
	m.inputs[fieldOutput].SetValue(m.cfg.OutputPath(path))
}

// runSolver parses the inputs and solves; ok is false when nothing usable
// came back.
func (m *Model) runSolver() (solver.Result, bool) {
	in, err := parseInputs(m.inputs, m.mode)
	if err != nil {
		m.logf("ERROR: %s", err)
		return solver.Result{}, false
	}
	res := m.Engine.RunSolver(m.mode, in.loops, in.loopScale, in.totalScale, in.finalScale, m.integerLoops)
	m.solved = true
	if !res.Success {
		m.driftMs = driftFailed
		m.curve = nil
		return res, false
	}
	m.result = res
	m.driftMs = res.ErrorMs
	m.curve = solver.StepDurations(m.Engine.Deltas(), res.Repetitions, res.StepScale)
	return res, true
}

func (m *Model) solve() {
	if !m.Engine.IsLoaded() {
		m.logf("ERROR: NO SOURCE.")
		return
	}
	m.logf("CALCULATING...")
	res, ok := m.runSolver()
	if !ok {
		if res.Message != "" {
			m.logf("MATH ERROR: %s", res.Message)
		}
		return
	}
	m.logf("SOLVED: N=%d (%.2f LOOPS)", res.Repetitions, res.Loops())

	// feed solved values back into the inputs
	m.inputs[fieldLoops].SetValue(formatFloat(res.Loops(), 2))
	m.inputs[fieldLoopScale].SetValue(formatFloat(res.LoopScale, 5))
	m.inputs[fieldTotalScale].SetValue(formatFloat(res.TotalScale, 5))
	m.inputs[fieldFinalScale].SetValue(formatFloat(res.FinalScale, 5))
}

// generate re-solves with the current inputs, then materializes.
func (m *Model) generate() {
	if !m.Engine.IsLoaded() {
		m.logf("GEN FAIL: NO SOURCE.")
		return
	}
	res, ok := m.runSolver()
	if !ok {
		m.logf("GEN FAIL: INVALID PARAMETERS.")
		return
	}
	if err := m.Engine.GenerateOutput(res.Repetitions, res.StepScale); err != nil {
		m.logf("GEN FAIL: %s", errors.UserMessage(err))
		return
	}
	m.logf("SEQUENCE GENERATED. N=%d.", res.Repetitions)
}

func (m *Model) save() {
	path := strings.TrimSpace(m.inputs[fieldOutput].Value())
	if path == "" {
		m.logf("ERROR: NO OUTPUT PATH.")
		return
	}
	if err := m.Engine.SaveFile(path); err != nil {
		m.logf("SAVE FAIL: %s", errors.UserMessage(err))
		return
	}
	m.logf("SAVED: %s", filepath.Base(path))

	if m.dump {
		if _, err := m.Engine.SaveDebugDump(path); err != nil {
			m.logf("DUMP FAIL: %s", errors.UserMessage(err))
			return
		}
		m.logf("DEBUG DUMP EXPORTED.")
	}
}

func (m *Model) eject() {
	m.Engine.Reset()
	m.solved = false
	m.curve = nil
	m.result = solver.Result{}
	m.logf("DATA CLEARED.")
}
