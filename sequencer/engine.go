package sequencer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"midiwarp/debug"
	"midiwarp/errors"
	"midiwarp/midi"
	"midiwarp/solver"
)

// Engine orchestrates one transform session: load a source, solve for
// stretch parameters, generate the warped timeline and save it.
//
// An Engine is owned by a single caller; it is not safe for concurrent use.
type Engine struct {
	grid   Grid
	output *midi.Timeline
	state  State
	logger *log.Logger
}

// NewEngine creates an empty engine. A nil logger uses log.Default().
func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	e := &Engine{logger: logger}
	e.grid.Reset()
	return e
}

// Reset ejects the source and any generated output.
func (e *Engine) Reset() {
	e.grid.Reset()
	e.output = nil
	e.state = StateEmpty
	debug.Log("engine", "reset")
}

// LoadSource reads and segments a MIDI file. Any previous source and
// output are discarded even when loading fails.
func (e *Engine) LoadSource(path string) error {
	e.Reset()
	if err := e.grid.Load(path); err != nil {
		e.logger.Debug("load failed", "path", path, "err", err)
		return err
	}
	e.loaded(path)
	return nil
}

// LoadTimeline segments an in-memory timeline.
func (e *Engine) LoadTimeline(tl *midi.Timeline) error {
	e.Reset()
	if err := e.grid.LoadTimeline(tl); err != nil {
		return err
	}
	e.loaded("<memory>")
	return nil
}

func (e *Engine) loaded(name string) {
	e.state = StateLoaded
	e.logger.Info("source loaded",
		"file", name,
		"tracks", e.grid.NumTracks(),
		"segments", e.grid.SegmentCount(),
		"bpm", e.grid.BPM())
	debug.Log("engine", "grid points=%v deltas=%v total=%.3f", e.grid.Points(), e.grid.Deltas(), e.grid.TotalDuration())
}

// RunSolver solves the geometric series against the loaded segment
// durations. With no source loaded the solver's single-segment fallback
// applies.
func (e *Engine) RunSolver(mode solver.Mode, loops, loopScale, totalScale, finalScale float64, integerLoops bool) solver.Result {
	res := solver.Solve(solver.Params{
		Mode:           mode,
		Loops:          loops,
		LoopScale:      loopScale,
		TotalScale:     totalScale,
		FinalScale:     finalScale,
		Deltas:         e.grid.Deltas(),
		SourceDuration: e.grid.TotalDuration(),
		BPM:            e.grid.BPM(),
		PPQ:            e.PPQ(),
		IntegerLoops:   integerLoops,
	})
	if res.Success {
		e.logger.Debug("solved", "mode", mode, "n", res.Repetitions, "step", res.StepScale, "errMs", res.ErrorMs)
	} else {
		e.logger.Debug("solve failed", "mode", mode, "reason", res.Message)
	}
	debug.Log("solver", "%v", res)
	return res
}

// GenerateOutput materializes totalSteps steps at the given per-step
// scale, replacing any previous output.
func (e *Engine) GenerateOutput(totalSteps int, stepScale float64) error {
	if !e.state.HasSource() {
		return errors.New(errors.ErrCodeNoSourceLoaded, "no source MIDI loaded")
	}
	out, err := Materialize(&e.grid, totalSteps, stepScale)
	if err != nil {
		return err
	}
	e.output = out
	e.state = StateGenerated

	var events int
	for i := range out.Tracks {
		events += out.EventCount(i)
	}
	e.logger.Info("sequence generated", "steps", totalSteps, "events", events)
	debug.Log("engine", "generated %d steps at scale %.6f", totalSteps, stepScale)
	return nil
}

// SaveFile writes the generated timeline.
func (e *Engine) SaveFile(path string) error {
	if !e.state.HasOutput() {
		return errors.New(errors.ErrCodeNothingGenerated, "nothing to save")
	}
	if err := e.output.WriteFile(path); err != nil {
		return err
	}
	e.logger.Info("saved", "file", path)
	return nil
}

// DebugDump summarizes the source and output timelines.
func (e *Engine) DebugDump() string {
	var out strings.Builder
	out.WriteString("--- DEBUG ---\n")
	if e.state.HasSource() {
		out.WriteString(midi.Dump("SOURCE", e.grid.Source()))
	}
	if e.state.HasOutput() {
		out.WriteString(midi.Dump("OUTPUT", e.output))
	}
	return out.String()
}

// DumpPath returns the text dump path paired with a MIDI output path.
func DumpPath(midiPath string) string {
	return strings.TrimSuffix(midiPath, filepath.Ext(midiPath)) + ".txt"
}

// SaveDebugDump writes DebugDump next to midiPath and returns the path
// written.
func (e *Engine) SaveDebugDump(midiPath string) (string, error) {
	path := DumpPath(midiPath)
	if err := os.WriteFile(path, []byte(e.DebugDump()), 0644); err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailure, err, "write error")
	}
	return path, nil
}

// State returns the lifecycle state.
func (e *Engine) State() State { return e.state }

// IsLoaded reports whether a source is loaded.
func (e *Engine) IsLoaded() bool { return e.state.HasSource() }

// TrackCount returns the number of source tracks.
func (e *Engine) TrackCount() int { return e.grid.NumTracks() }

// SegmentCount returns the number of source segments.
func (e *Engine) SegmentCount() int { return e.grid.SegmentCount() }

// SourceBPM returns the source tempo.
func (e *Engine) SourceBPM() float64 { return e.grid.BPM() }

// PPQ returns the source resolution, defaulting to 960.
func (e *Engine) PPQ() int {
	if ppq := e.grid.PPQ(); ppq > 0 {
		return ppq
	}
	return midi.DefaultPPQ
}

// Deltas returns the source segment durations.
func (e *Engine) Deltas() []float64 { return e.grid.Deltas() }

// Grid exposes the segmented source.
func (e *Engine) Grid() *Grid { return &e.grid }

// Output returns the generated timeline, or nil.
func (e *Engine) Output() *midi.Timeline { return e.output }
