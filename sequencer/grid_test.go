package sequencer

import (
	"math"
	"math/rand/v2"
	"testing"

	"midiwarp/errors"
	"midiwarp/midi"
)

var loopKeys = []uint8{36, 38, 42, 46}

// fourOnTheFloor builds a two-track pattern of four 480-tick segments:
// track 0 holds tempo and meter, track 1 one note per segment whose
// note-off coincides with the next note-on.
func fourOnTheFloor(bpm float64) *midi.Timeline {
	tl := midi.NewTimeline(960, 2)
	tl.Add(0, 0, midi.Tempo(bpm))
	tl.Add(0, 0, midi.Meter(4, 4))
	tl.Add(0, 1920, midi.EndOfTrack)
	for i, key := range loopKeys {
		start := float64(i * 480)
		tl.Add(1, start, midi.NoteOn(0, key, 100))
		tl.Add(1, start+480, midi.NoteOff(0, key))
	}
	tl.Add(1, 1920, midi.EndOfTrack)
	return tl
}

func TestGridLoadTimeline(t *testing.T) {
	var g Grid
	if err := g.LoadTimeline(fourOnTheFloor(100)); err != nil {
		t.Fatalf("LoadTimeline() error = %v", err)
	}

	if !g.IsLoaded() {
		t.Error("IsLoaded() = false")
	}
	if got := g.BPM(); math.Abs(got-100) > 1e-6 {
		t.Errorf("BPM() = %v, want 100", got)
	}
	wantPoints := []float64{0, 480, 960, 1440, 1920}
	if len(g.Points()) != len(wantPoints) {
		t.Fatalf("Points() = %v, want %v", g.Points(), wantPoints)
	}
	for i, p := range wantPoints {
		if g.Points()[i] != p {
			t.Errorf("Points()[%d] = %v, want %v", i, g.Points()[i], p)
		}
	}
	if g.SegmentCount() != 4 {
		t.Errorf("SegmentCount() = %d, want 4", g.SegmentCount())
	}
	if g.TotalDuration() != 1920 {
		t.Errorf("TotalDuration() = %v, want 1920", g.TotalDuration())
	}

	buckets := g.Buckets()
	if len(buckets) != 5 {
		t.Fatalf("len(Buckets()) = %d, want 5", len(buckets))
	}
	// tempo, meter, first note-on
	if len(buckets[0]) != 3 {
		t.Errorf("bucket 0 has %d events, want 3", len(buckets[0]))
	}
	// final note-off only: end-of-track markers are never bucketed
	if len(buckets[4]) != 1 || buckets[4][0].Class() != midi.ClassNoteOff {
		t.Errorf("bucket 4 = %v, want the last note-off", buckets[4])
	}
}

func TestGridDefaultTempo(t *testing.T) {
	tl := midi.NewTimeline(480, 1)
	tl.Add(0, 0, midi.NoteOn(0, 60, 100))
	tl.Add(0, 240, midi.NoteOff(0, 60))

	var g Grid
	if err := g.LoadTimeline(tl); err != nil {
		t.Fatal(err)
	}
	if g.BPM() != 120 {
		t.Errorf("BPM() = %v, want 120", g.BPM())
	}
}

func TestGridUsesFirstTempoOnly(t *testing.T) {
	tl := midi.NewTimeline(480, 2)
	tl.Add(0, 960, midi.Tempo(90))
	tl.Add(1, 0, midi.NoteOn(0, 60, 100))
	tl.Add(1, 480, midi.Tempo(140))

	var g Grid
	if err := g.LoadTimeline(tl); err != nil {
		t.Fatal(err)
	}
	if math.Abs(g.BPM()-140) > 0.01 {
		t.Errorf("BPM() = %v, want 140 (earliest tempo event)", g.BPM())
	}
}

func TestGridDebounce(t *testing.T) {
	tl := midi.NewTimeline(960, 1)
	tl.Add(0, 0, midi.NoteOn(0, 60, 100))
	tl.Add(0, 480, midi.NoteOn(0, 62, 100))
	tl.Add(0, 480.0005, midi.NoteOn(0, 64, 100))
	tl.Add(0, 960, midi.NoteOff(0, 60))

	var g Grid
	if err := g.LoadTimeline(tl); err != nil {
		t.Fatal(err)
	}
	if len(g.Points()) != 3 {
		t.Fatalf("Points() = %v, want 3 points", g.Points())
	}
	b := g.Buckets()[1]
	if len(b) != 2 {
		t.Fatalf("bucket 1 has %d events, want 2", len(b))
	}
	if off := b[1].Time; math.Abs(off-0.0005) > 1e-9 {
		t.Errorf("groove offset = %v, want 0.0005", off)
	}
}

func TestGridSingleEventFallback(t *testing.T) {
	tl := midi.NewTimeline(480, 1)
	tl.Add(0, 0, midi.NoteOn(0, 60, 100))

	var g Grid
	if err := g.LoadTimeline(tl); err != nil {
		t.Fatalf("LoadTimeline() error = %v", err)
	}
	if g.SegmentCount() != 1 || g.Deltas()[0] != 960 {
		t.Errorf("Deltas() = %v, want [960]", g.Deltas())
	}
	if g.TotalDuration() != 960 {
		t.Errorf("TotalDuration() = %v, want 960", g.TotalDuration())
	}
	if len(g.Points()) != 1 || g.Points()[0] != 0 {
		t.Errorf("Points() = %v, want [0]", g.Points())
	}
}

func TestGridEmptyTrackFallback(t *testing.T) {
	tl := midi.NewTimeline(480, 1)
	tl.Add(0, 0, midi.EndOfTrack)

	var g Grid
	if err := g.LoadTimeline(tl); err != nil {
		t.Fatalf("LoadTimeline() error = %v", err)
	}
	if g.SegmentCount() != 1 || g.TotalDuration() != 960 {
		t.Errorf("got %d segments, total %v; want the 960-tick fallback", g.SegmentCount(), g.TotalDuration())
	}
}

func TestGridNoTracks(t *testing.T) {
	var g Grid
	err := g.LoadTimeline(midi.NewTimeline(480, 0))
	if !errors.Is(err, errors.ErrCodeEmptyInput) {
		t.Errorf("error = %v, want %v", err, errors.ErrCodeEmptyInput)
	}
	if g.IsLoaded() {
		t.Error("IsLoaded() = true after failed load")
	}
}

func TestGridLoadIsIdempotent(t *testing.T) {
	var g Grid
	tl := fourOnTheFloor(120)
	if err := g.LoadTimeline(tl); err != nil {
		t.Fatal(err)
	}
	first := append([]float64(nil), g.Deltas()...)
	firstBuckets := len(g.Buckets())
	if err := g.LoadTimeline(tl); err != nil {
		t.Fatal(err)
	}
	if len(g.Deltas()) != len(first) || len(g.Buckets()) != firstBuckets {
		t.Fatalf("reload changed the grid: %v vs %v", g.Deltas(), first)
	}
	for i := range first {
		if g.Deltas()[i] != first[i] {
			t.Errorf("delta %d = %v, want %v", i, g.Deltas()[i], first[i])
		}
	}
}

func randomTimeline(rng *rand.Rand) *midi.Timeline {
	tracks := 1 + rng.IntN(4)
	tl := midi.NewTimeline(480, tracks)
	for tr := 0; tr < tracks; tr++ {
		n := rng.IntN(20)
		var t float64
		for i := 0; i < n; i++ {
			t += float64(rng.IntN(4)) * float64(rng.IntN(240))
			if rng.IntN(5) == 0 {
				t += rng.Float64() * 0.002
			}
			tl.Add(tr, t, midi.NoteOn(0, uint8(40+i), 100))
		}
		tl.Add(tr, t, midi.EndOfTrack)
	}
	return tl
}

func TestGridInvariantsFuzz(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for trial := 0; trial < 300; trial++ {
		tl := randomTimeline(rng)
		var g Grid
		if err := g.LoadTimeline(tl); err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}

		points := g.Points()
		if points[0] != 0 {
			t.Fatalf("trial %d: first point = %v, want 0", trial, points[0])
		}
		for i := 1; i < len(points); i++ {
			if points[i] <= points[i-1]+gridDebounce {
				t.Fatalf("trial %d: points not strictly increasing: %v", trial, points)
			}
		}

		var total float64
		for _, d := range g.Deltas() {
			total += d
		}
		if total != g.TotalDuration() {
			t.Fatalf("trial %d: sum(deltas) = %v, total = %v", trial, total, g.TotalDuration())
		}

		var want, got int
		for _, tr := range tl.Tracks {
			for _, ev := range tr {
				if !midi.IsEndOfTrack(ev.Message) {
					want++
				}
			}
		}
		for idx, bucket := range g.Buckets() {
			got += len(bucket)
			for _, ev := range bucket {
				abs := ev.Time + points[idx]
				dist := math.Abs(ev.Time)
				for _, p := range points {
					if math.Abs(abs-p) < dist-1e-9 && !(dist > trailingSnap && abs >= g.TotalDuration()) {
						t.Fatalf("trial %d: event at %v bucketed to %v but %v is nearer", trial, abs, points[idx], p)
					}
				}
			}
		}
		if got != want {
			t.Fatalf("trial %d: %d events bucketed, want %d", trial, got, want)
		}
	}
}

func TestNearestPoint(t *testing.T) {
	points := []float64{0, 480, 960}
	tests := []struct {
		t       float64
		wantIdx int
	}{
		{0, 0},
		{100, 0},
		{240, 0}, // tie goes to the earlier point
		{241, 1},
		{960, 2},
		{5000, 2},
	}
	for _, tt := range tests {
		if idx, _ := nearestPoint(points, tt.t); idx != tt.wantIdx {
			t.Errorf("nearestPoint(%v) = %d, want %d", tt.t, idx, tt.wantIdx)
		}
	}
}

func TestBucketForTrailingEvent(t *testing.T) {
	g := Grid{points: []float64{0, 480, 960}, total: 700}
	if got := g.bucketFor(720); got != 2 {
		t.Errorf("bucketFor(720) = %d, want final bucket 2", got)
	}
	if got := g.bucketFor(480.5); got != 1 {
		t.Errorf("bucketFor(480.5) = %d, want 1", got)
	}
}

func TestGridRoutesEventsByTrackIndex(t *testing.T) {
	// Events built directly into Tracks carry no Track field.
	tl := &midi.Timeline{PPQ: 960, Tracks: [][]midi.Event{
		{
			{Time: 0, Message: midi.NoteOn(0, 36, 100)},
			{Time: 480, Message: midi.NoteOff(0, 36)},
		},
		{
			{Time: 0, Message: midi.NoteOn(1, 42, 90)},
			{Time: 240, Message: midi.NoteOff(1, 42)},
		},
	}}
	g := loadGrid(t, tl)

	for i, bucket := range g.Buckets() {
		for _, ev := range bucket {
			want := 0
			if ev.Message[1] == 42 {
				want = 1
			}
			if ev.Track != want {
				t.Errorf("bucket %d: key %d on track %d, want %d", i, ev.Message[1], ev.Track, want)
			}
		}
	}

	out, err := Materialize(g, 2, 1)
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	if got := noteOnTimes(out.Tracks[1], 42); len(got) != 1 || got[0] != 0 {
		t.Errorf("track 1 note-ons = %v, want [0]", got)
	}
	if got := noteOnTimes(out.Tracks[0], 42); len(got) != 0 {
		t.Errorf("track 0 holds track 1 notes at %v", got)
	}
	if n := out.EventCount(1); n != 3 {
		t.Errorf("track 1 has %d events, want note on, note off and end marker", n)
	}
}
