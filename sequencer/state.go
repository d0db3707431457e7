package sequencer

// State is the engine's lifecycle: Empty -> Loaded -> Generated.
// Loading always passes back through Empty; generating requires a source;
// saving requires a generated timeline.
type State int

const (
	StateEmpty State = iota
	StateLoaded
	StateGenerated
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	case StateGenerated:
		return "generated"
	}
	return "unknown"
}

// HasSource reports whether a source is loaded.
func (s State) HasSource() bool {
	return s == StateLoaded || s == StateGenerated
}

// HasOutput reports whether there is a generated timeline to save.
func (s State) HasOutput() bool {
	return s == StateGenerated
}
