package sequencer

import (
	"math"

	"midiwarp/debug"
	"midiwarp/errors"
	"midiwarp/midi"
)

// Materialize replays the grid's segment pattern for totalSteps steps,
// stretching step k (and the groove offsets of the events it emits) by
// stepScale^k, and returns the resulting timeline at whole-tick times.
//
// The grid is read, never modified; every call builds a fresh timeline.
func Materialize(g *Grid, totalSteps int, stepScale float64) (*midi.Timeline, error) {
	if g == nil || !g.IsLoaded() {
		return nil, errors.New(errors.ErrCodeNoSourceLoaded, "no source MIDI loaded")
	}
	deltas := g.Deltas()
	m := len(deltas)
	if m == 0 {
		return nil, errors.New(errors.ErrCodeEmptyModel, "model is empty (no time segments)")
	}
	if totalSteps < 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "step count must be >= 0, got %d", totalSteps)
	}
	if !(stepScale > 0) || math.IsInf(stepScale, 0) {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "step scale must be a positive number, got %v", stepScale)
	}

	numTracks := g.NumTracks()
	streams := make([]*Stream, numTracks)
	for i := range streams {
		streams[i] = NewStream(i)
	}

	if numTracks > 0 {
		streams[0].Add(0, midi.Event{Message: midi.Tempo(g.BPM())})
		streams[0].Add(0, midi.Event{Message: midi.Meter(4, 4)})
	}

	buckets := g.Buckets()
	inject := func(bucket int, base, scale float64) {
		if bucket >= len(buckets) {
			return
		}
		for _, ev := range buckets[bucket] {
			if ev.Track < 0 || ev.Track >= numTracks {
				continue
			}
			streams[ev.Track].Add(base+ev.Time*scale, ev)
		}
	}

	// The literal start of the pattern.
	inject(0, 0, 1)

	var now float64
	for k := 0; k < totalSteps; k++ {
		seg := k % m
		scale := math.Pow(stepScale, float64(k))
		now += deltas[seg] * scale

		next := seg + 1
		if next < m {
			inject(next, now, scale)
			continue
		}
		// Wrap: the events at the pattern's last grid line land at the end
		// of this repetition, and the pattern start opens the next one.
		inject(m, now, scale)
		if k < totalSteps-1 {
			inject(0, now, scale)
		}
	}

	out := midi.NewTimeline(uint16(g.PPQ()), numTracks)
	for i, s := range streams {
		s.Close(now)
		debug.Log("materialize", "track %d: %d events, end %.3f", i, s.Len(), s.End())
		s.Sort()
		out.Tracks[i] = s.Quantize()
	}
	return out, nil
}
