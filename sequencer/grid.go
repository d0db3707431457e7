package sequencer

import (
	"math"
	"sort"

	"midiwarp/errors"
	"midiwarp/midi"
)

const (
	// gridDebounce merges event starts closer than this many ticks into
	// one grid point.
	gridDebounce = 0.001

	// trailingSnap is how far (ticks) an event may sit from its nearest
	// point before trailing events are forced into the final bucket.
	trailingSnap = 1.0

	// fallbackSegment is the single segment used when the source has fewer
	// than two grid points.
	fallbackSegment = 960.0

	defaultBPM = 120.0
)

// Grid slices a source timeline into segments between consecutive event
// starts and buckets every event to its nearest grid point, keeping the
// event's offset from that point (its groove).
type Grid struct {
	source *midi.Timeline
	loaded bool

	bpm    float64
	points []float64 // absolute grid line times, points[0] == 0
	deltas []float64 // segment durations
	total  float64   // sum of deltas

	// buckets[i] holds events nearest points[i]; Time is the offset from
	// points[i]. The last bucket doubles as the overflow bucket.
	buckets [][]midi.Event
}

// Reset clears all state.
func (g *Grid) Reset() {
	*g = Grid{bpm: defaultBPM}
}

// Load reads a Standard MIDI File and segments it.
func (g *Grid) Load(path string) error {
	g.Reset()
	tl, err := midi.ReadFile(path)
	if err != nil {
		return err
	}
	return g.LoadTimeline(tl)
}

// LoadTimeline segments an already decoded timeline. Prior state is
// discarded first; loading the same timeline twice yields the same grid.
func (g *Grid) LoadTimeline(tl *midi.Timeline) error {
	g.Reset()
	if tl == nil || tl.NumTracks() == 0 {
		return errors.New(errors.ErrCodeEmptyInput, "MIDI file contains no tracks")
	}

	g.source = tl
	g.loaded = true
	g.analyze()
	g.segment()
	return nil
}

// analyze detects the tempo and builds grid points and deltas.
func (g *Grid) analyze() {
	var merged []midi.Event
	for _, ev := range g.source.Merged() {
		if !midi.IsEndOfTrack(ev.Message) {
			merged = append(merged, ev)
		}
	}

	// Later tempo changes are ignored.
	for _, ev := range merged {
		if bpm, ok := midi.TempoBPM(ev.Message); ok {
			if bpm > 0 {
				g.bpm = bpm
			}
			break
		}
	}

	g.points = []float64{0}
	last := 0.0
	for _, ev := range merged {
		if ev.Time > last+gridDebounce {
			g.points = append(g.points, ev.Time)
			last = ev.Time
		}
	}

	if len(g.points) < 2 {
		g.deltas = []float64{fallbackSegment}
		g.total = fallbackSegment
		return
	}
	g.deltas = make([]float64, len(g.points)-1)
	for i := range g.deltas {
		g.deltas[i] = g.points[i+1] - g.points[i]
		g.total += g.deltas[i]
	}
}

// segment buckets every non end-of-track event by nearest grid point.
func (g *Grid) segment() {
	g.buckets = make([][]midi.Event, len(g.points))
	for i, track := range g.source.Tracks {
		for _, ev := range track {
			if midi.IsEndOfTrack(ev.Message) {
				continue
			}
			ev.Track = i
			idx := g.bucketFor(ev.Time)
			ev.Time -= g.points[idx]
			g.buckets[idx] = append(g.buckets[idx], ev)
		}
	}
}

// bucketFor returns the index of the grid point nearest t (lower index on
// ties). Events far from any point at or beyond the total duration go to
// the final bucket.
func (g *Grid) bucketFor(t float64) int {
	idx, dist := nearestPoint(g.points, t)
	if dist > trailingSnap && t >= g.total {
		idx = len(g.points) - 1
	}
	return idx
}

// nearestPoint finds the element of the sorted slice points closest to t.
func nearestPoint(points []float64, t float64) (int, float64) {
	i := sort.SearchFloat64s(points, t)
	switch {
	case i == 0:
		return 0, math.Abs(points[0] - t)
	case i == len(points):
		return i - 1, math.Abs(t - points[i-1])
	}
	below, above := t-points[i-1], points[i]-t
	if below <= above {
		return i - 1, below
	}
	return i, above
}

// IsLoaded reports whether a source has been segmented.
func (g *Grid) IsLoaded() bool { return g.loaded }

// Source returns the loaded timeline (nil if none).
func (g *Grid) Source() *midi.Timeline { return g.source }

// NumTracks returns the source track count.
func (g *Grid) NumTracks() int {
	if g.source == nil {
		return 0
	}
	return g.source.NumTracks()
}

// PPQ returns the source resolution, or 0 if nothing is loaded.
func (g *Grid) PPQ() int {
	if g.source == nil {
		return 0
	}
	return int(g.source.PPQ)
}

// BPM returns the tempo of the first tempo event (120 if none).
func (g *Grid) BPM() float64 {
	if g.bpm == 0 {
		return defaultBPM
	}
	return g.bpm
}

// Points returns the grid line times.
func (g *Grid) Points() []float64 { return g.points }

// Deltas returns the segment durations.
func (g *Grid) Deltas() []float64 { return g.deltas }

// SegmentCount returns the number of segments M.
func (g *Grid) SegmentCount() int { return len(g.deltas) }

// TotalDuration returns the sum of the segment durations.
func (g *Grid) TotalDuration() float64 { return g.total }

// Buckets returns the grouped events with offsets relative to their point.
func (g *Grid) Buckets() [][]midi.Event { return g.buckets }
