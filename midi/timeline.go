package midi

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"gitlab.com/gomidi/midi/v2/smf"

	"midiwarp/errors"
)

// DefaultPPQ is used when a timeline carries no usable resolution.
const DefaultPPQ = 960

// Timeline is a multi-track event list with absolute tick times.
type Timeline struct {
	PPQ    uint16
	Tracks [][]Event
}

// NewTimeline creates an empty timeline with n tracks.
func NewTimeline(ppq uint16, n int) *Timeline {
	if ppq == 0 {
		ppq = DefaultPPQ
	}
	return &Timeline{PPQ: ppq, Tracks: make([][]Event, n)}
}

// Add appends msg to track at the given absolute tick.
func (tl *Timeline) Add(track int, tick float64, msg smf.Message) {
	tl.Tracks[track] = append(tl.Tracks[track], Event{Track: track, Time: tick, Message: msg})
}

// NumTracks returns the track count.
func (tl *Timeline) NumTracks() int {
	return len(tl.Tracks)
}

// EventCount returns the number of events on a track, end marker included.
func (tl *Timeline) EventCount(track int) int {
	return len(tl.Tracks[track])
}

// Merged flattens all tracks into one list stably sorted by time.
// Events at the same time keep track-then-insertion order.
func (tl *Timeline) Merged() []Event {
	var n int
	for _, tr := range tl.Tracks {
		n += len(tr)
	}
	merged := make([]Event, 0, n)
	for _, tr := range tl.Tracks {
		merged = append(merged, tr...)
	}
	slices.SortStableFunc(merged, func(a, b Event) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})
	return merged
}

// ReadFile loads a Standard MIDI File.
func ReadFile(path string) (*Timeline, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, errors.New(errors.ErrCodeNotFound, "file not found: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "could not open file stream")
	}
	return ReadFrom(bytes.NewReader(data))
}

// ReadFrom decodes a Standard MIDI File, converting delta times to
// absolute ticks.
func ReadFrom(r io.Reader) (*Timeline, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptInput, err, "corrupt or invalid MIDI file")
	}
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, errors.New(errors.ErrCodeCorruptInput, "unsupported time format %v", s.TimeFormat)
	}

	tl := NewTimeline(uint16(ticks), len(s.Tracks))
	for i, track := range s.Tracks {
		var abs int64
		for _, ev := range track {
			abs += int64(ev.Delta)
			tl.Add(i, float64(abs), ev.Message)
		}
	}
	return tl, nil
}

// WriteFile serializes the timeline. An existing destination file is
// removed first; a directory in its place is never touched. The file is
// format 1 with more than one track, else format 0.
func (tl *Timeline) WriteFile(path string) error {
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return errors.New(errors.ErrCodeLockedDestination, "destination is a directory: %s", path)
		}
		if err := os.Remove(path); err != nil {
			return errors.Wrap(errors.ErrCodeLockedDestination, err, "file locked")
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailure, err, "write error")
	}
	defer f.Close()

	if _, err := tl.WriteTo(f); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailure, err, "write error")
	}
	return f.Close()
}

// WriteTo encodes the timeline as SMF. Event times are rounded to whole
// ticks; each track must already be sorted.
func (tl *Timeline) WriteTo(w io.Writer) (int64, error) {
	var s *smf.SMF
	if len(tl.Tracks) > 1 {
		s = smf.NewSMF1()
	} else {
		s = smf.New()
	}
	ppq := tl.PPQ
	if ppq == 0 {
		ppq = DefaultPPQ
	}
	s.TimeFormat = smf.MetricTicks(ppq)

	for i, events := range tl.Tracks {
		if err := s.Add(encodeTrack(events)); err != nil {
			return 0, fmt.Errorf("adding track %d: %w", i, err)
		}
	}
	return s.WriteTo(w)
}

func encodeTrack(events []Event) smf.Track {
	track := make(smf.Track, 0, len(events)+1)
	var last int64
	for _, ev := range events {
		tick := max(int64(math.Round(ev.Time)), last)
		track = append(track, smf.Event{Delta: uint32(tick - last), Message: ev.Message})
		last = tick
	}
	if len(events) == 0 || !IsEndOfTrack(events[len(events)-1].Message) {
		track = append(track, smf.Event{Delta: 0, Message: EndOfTrack})
	}
	return track
}
