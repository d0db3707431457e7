package sequencer

import (
	"math"
	"slices"

	"midiwarp/midi"
)

// simultaneity is the tolerance (ticks) below which two event times are
// treated as equal when ordering.
const simultaneity = 1e-6

// Stream collects the generated events of one output track at real-valued
// absolute times.
type Stream struct {
	Track  int
	events []midi.Event
}

// NewStream creates an empty stream for a track.
func NewStream(track int) *Stream {
	return &Stream{Track: track}
}

// Add appends ev at absolute time t on this stream's track.
func (s *Stream) Add(t float64, ev midi.Event) {
	ev.Track = s.Track
	ev.Time = t
	s.events = append(s.events, ev)
}

// Len returns the number of events.
func (s *Stream) Len() int {
	return len(s.events)
}

// End returns the latest event time, or 0 for an empty stream.
func (s *Stream) End() float64 {
	var end float64
	for _, ev := range s.events {
		end = max(end, ev.Time)
	}
	return end
}

// Close appends the end-of-track marker at the later of at and the latest
// event time.
func (s *Stream) Close(at float64) {
	s.Add(max(at, s.End()), midi.Event{Message: midi.EndOfTrack})
}

// Sort orders events by time, then by class priority, keeping insertion
// order for equal keys.
func (s *Stream) Sort() {
	slices.SortStableFunc(s.events, compareTimed)
}

// Quantize returns the events with times rounded to whole ticks.
// Negative times clamp to 0.
func (s *Stream) Quantize() []midi.Event {
	out := make([]midi.Event, len(s.events))
	for i, ev := range s.events {
		ev.Time = max(math.Round(ev.Time), 0)
		out[i] = ev
	}
	return out
}

// compareTimed orders two events by time, then class: meta, note-off,
// note-on, control change, end of track. Times within simultaneity compare
// equal so note-offs precede note-ons landing on the same tick.
func compareTimed(a, b midi.Event) int {
	if math.Abs(a.Time-b.Time) > simultaneity {
		if a.Time < b.Time {
			return -1
		}
		return 1
	}
	return int(a.Class()) - int(b.Class())
}
