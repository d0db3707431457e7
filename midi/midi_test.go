package midi

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gitlab.com/gomidi/midi/v2/smf"

	"midiwarp/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		msg  smf.Message
		want Class
	}{
		{"tempo", Tempo(120), ClassMeta},
		{"meter", Meter(4, 4), ClassMeta},
		{"end of track", EndOfTrack, ClassEndOfTrack},
		{"note on", NoteOn(0, 60, 100), ClassNoteOn},
		{"note on zero velocity", smf.Message{0x90, 60, 0}, ClassNoteOff},
		{"note off", NoteOff(0, 60), ClassNoteOff},
		{"control change", ControlChange(0, 64, 127), ClassControlChange},
		{"program change", smf.Message{0xC0, 5}, ClassControlChange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.msg); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassOrder(t *testing.T) {
	order := []Class{ClassMeta, ClassNoteOff, ClassNoteOn, ClassControlChange, ClassEndOfTrack}
	for i := 1; i < len(order); i++ {
		if order[i-1] >= order[i] {
			t.Errorf("%v should sort before %v", order[i-1], order[i])
		}
	}
}

func TestTempoBPM(t *testing.T) {
	bpm, ok := TempoBPM(Tempo(90))
	if !ok {
		t.Fatal("TempoBPM() ok = false, want true")
	}
	if bpm < 89.99 || bpm > 90.01 {
		t.Errorf("TempoBPM() = %v, want 90", bpm)
	}
	if _, ok := TempoBPM(NoteOn(0, 60, 1)); ok {
		t.Error("TempoBPM(note on) ok = true, want false")
	}
}

func TestMergedIsStable(t *testing.T) {
	tl := NewTimeline(480, 2)
	tl.Add(0, 0, Tempo(120))
	tl.Add(0, 480, NoteOn(0, 60, 100))
	tl.Add(1, 0, NoteOn(1, 40, 100))
	tl.Add(1, 240, NoteOn(1, 41, 100))

	merged := tl.Merged()
	wantTracks := []int{0, 1, 1, 0}
	wantTimes := []float64{0, 0, 240, 480}
	for i, ev := range merged {
		if ev.Track != wantTracks[i] || ev.Time != wantTimes[i] {
			t.Errorf("merged[%d] = (trk %d, %v), want (trk %d, %v)", i, ev.Track, ev.Time, wantTracks[i], wantTimes[i])
		}
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	tl := NewTimeline(960, 2)
	tl.Add(0, 0, Tempo(100))
	tl.Add(0, 0, Meter(4, 4))
	tl.Add(0, 1920, EndOfTrack)
	tl.Add(1, 0, NoteOn(0, 36, 100))
	tl.Add(1, 240, NoteOff(0, 36))
	tl.Add(1, 480, NoteOn(0, 38, 90))
	tl.Add(1, 720, NoteOff(0, 38))
	tl.Add(1, 1920, EndOfTrack)

	path := filepath.Join(t.TempDir(), "loop.mid")
	if err := tl.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got.PPQ != 960 {
		t.Errorf("PPQ = %d, want 960", got.PPQ)
	}
	if got.NumTracks() != 2 {
		t.Fatalf("NumTracks() = %d, want 2", got.NumTracks())
	}
	for i := range tl.Tracks {
		if got.EventCount(i) != tl.EventCount(i) {
			t.Errorf("track %d: %d events, want %d", i, got.EventCount(i), tl.EventCount(i))
			continue
		}
		for j, ev := range got.Tracks[i] {
			if ev.Time != tl.Tracks[i][j].Time {
				t.Errorf("track %d event %d: time %v, want %v", i, j, ev.Time, tl.Tracks[i][j].Time)
			}
			if ev.Class() != tl.Tracks[i][j].Class() {
				t.Errorf("track %d event %d: class %v, want %v", i, j, ev.Class(), tl.Tracks[i][j].Class())
			}
		}
	}
}

func TestWriteAddsEndOfTrack(t *testing.T) {
	tl := NewTimeline(480, 1)
	tl.Add(0, 0, NoteOn(0, 60, 100))
	tl.Add(0, 100.4, NoteOff(0, 60))

	var buf bytes.Buffer
	if _, err := tl.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	got, err := ReadFrom(&buf)
	if err != nil {
		t.Fatalf("ReadFrom() error = %v", err)
	}
	events := got.Tracks[0]
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[1].Time != 100 {
		t.Errorf("note off at %v, want 100", events[1].Time)
	}
	if !IsEndOfTrack(events[2].Message) {
		t.Error("last event is not end of track")
	}
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadFile(filepath.Join(dir, "missing.mid"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing file: error = %v, want %v", err, errors.ErrCodeNotFound)
	}

	bad := filepath.Join(dir, "bad.mid")
	if err := os.WriteFile(bad, []byte("not a midi file at all"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err = ReadFile(bad)
	if !errors.Is(err, errors.ErrCodeCorruptInput) {
		t.Errorf("corrupt file: error = %v, want %v", err, errors.ErrCodeCorruptInput)
	}
}

func TestWriteFileWriteFailure(t *testing.T) {
	tl := NewTimeline(480, 1)
	err := tl.WriteFile(filepath.Join(t.TempDir(), "no", "such", "dir", "out.mid"))
	if !errors.Is(err, errors.ErrCodeWriteFailure) {
		t.Errorf("error = %v, want %v", err, errors.ErrCodeWriteFailure)
	}
}

func TestWriteFileDirectoryDestination(t *testing.T) {
	tl := NewTimeline(480, 1)
	tl.Add(0, 0, NoteOn(0, 60, 100))

	empty := filepath.Join(t.TempDir(), "out.mid")
	if err := os.Mkdir(empty, 0755); err != nil {
		t.Fatal(err)
	}
	full := filepath.Join(t.TempDir(), "full.mid")
	if err := os.MkdirAll(filepath.Join(full, "take1"), 0755); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{empty, full} {
		err := tl.WriteFile(path)
		if !errors.Is(err, errors.ErrCodeLockedDestination) {
			t.Errorf("%s: error = %v, want %v", filepath.Base(path), err, errors.ErrCodeLockedDestination)
		}
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			t.Errorf("%s: directory was replaced (err=%v)", filepath.Base(path), err)
		}
	}
}

func TestWriteFileReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mid")
	if err := os.WriteFile(path, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}
	tl := NewTimeline(480, 1)
	tl.Add(0, 0, NoteOn(0, 60, 100))
	if err := tl.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := ReadFile(path); err != nil {
		t.Errorf("ReadFile() error = %v", err)
	}
}

func TestWriteFormat(t *testing.T) {
	tests := []struct {
		name   string
		tracks int
		want   byte
	}{
		{"single track", 1, 0},
		{"multi track", 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := NewTimeline(960, tt.tracks)
			for i := 0; i < tt.tracks; i++ {
				tl.Add(i, 0, NoteOn(0, 60, 100))
				tl.Add(i, 480, NoteOff(0, 60))
			}
			var buf bytes.Buffer
			if _, err := tl.WriteTo(&buf); err != nil {
				t.Fatalf("WriteTo() error = %v", err)
			}
			// MThd, 4-byte length, then the 16-bit format.
			header := buf.Bytes()
			if len(header) < 14 || string(header[:4]) != "MThd" {
				t.Fatalf("bad header % x", header[:min(len(header), 14)])
			}
			if header[8] != 0 || header[9] != tt.want {
				t.Errorf("format = %d, want %d", int(header[8])<<8|int(header[9]), tt.want)
			}
			got, err := ReadFrom(&buf)
			if err != nil {
				t.Fatalf("ReadFrom() error = %v", err)
			}
			if got.NumTracks() != tt.tracks {
				t.Errorf("NumTracks() = %d, want %d", got.NumTracks(), tt.tracks)
			}
		})
	}
}

func TestDump(t *testing.T) {
	tl := NewTimeline(960, 2)
	tl.Add(0, 0, Tempo(120))
	tl.Add(1, 0, NoteOn(0, 60, 100))
	tl.Add(1, 10, NoteOff(0, 60))

	out := Dump("SOURCE", tl)
	for _, want := range []string{"[SOURCE]", "PPQ: 960", "Trk0: 1 evs", "Trk1: 2 evs"} {
		if !strings.Contains(out, want) {
			t.Errorf("Dump() missing %q in:\n%s", want, out)
		}
	}
}
