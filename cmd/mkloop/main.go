// Command mkloop writes small test loops for midiwarp.
package main

import (
	"fmt"
	"os"
	"strconv"

	"midiwarp/midi"
)

const ppq = 960

type pattern struct {
	help  string
	build func(tl *midi.Timeline, bpm float64)
}

var patterns = map[string]pattern{
	"straight": {"one bar of kick/snare/hat quarter notes, two tracks", straight},
	"swing":    {"one bar of swung eighth-note hats", swing},
	"single":   {"a single note, exercises the one-segment fallback", single},
	"cc":       {"quarter notes with a filter sweep between them", sweep},
}

var order = []string{"straight", "swing", "single", "cc"}

func main() {
	if len(os.Args) < 3 {
		usage()
		os.Exit(2)
	}

	p, ok := patterns[os.Args[1]]
	if !ok {
		usage()
		os.Exit(2)
	}

	bpm := 120.0
	if len(os.Args) > 3 {
		v, err := strconv.ParseFloat(os.Args[3], 64)
		if err != nil || v <= 0 {
			fmt.Fprintf(os.Stderr, "bad bpm %q\n", os.Args[3])
			os.Exit(2)
		}
		bpm = v
	}

	tl := midi.NewTimeline(ppq, 2)
	p.build(tl, bpm)
	if err := tl.WriteFile(os.Args[2]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%s, %g bpm)\n", os.Args[2], os.Args[1], bpm)
}

func usage() {
	fmt.Println("mkloop <pattern> <out.mid> [bpm]")
	fmt.Println("")
	fmt.Println("Patterns:")
	for _, name := range order {
		fmt.Printf("  %-9s - %s\n", name, patterns[name].help)
	}
}

// hit adds a note on track at tick lasting length ticks.
func hit(tl *midi.Timeline, track int, tick, length float64, key uint8) {
	tl.Add(track, tick, midi.NoteOn(9, key, 100))
	tl.Add(track, tick+length, midi.NoteOff(9, key))
}

func header(tl *midi.Timeline, bpm float64) {
	tl.Add(0, 0, midi.Tempo(bpm))
	tl.Add(0, 0, midi.Meter(4, 4))
}

func straight(tl *midi.Timeline, bpm float64) {
	header(tl, bpm)
	keys := []uint8{36, 38, 36, 38}
	for i, k := range keys {
		hit(tl, 0, float64(i*ppq), ppq/2, k)
		hit(tl, 1, float64(i*ppq), ppq/4, 42)
	}
	tl.Add(0, 4*ppq, midi.EndOfTrack)
	tl.Add(1, 4*ppq, midi.EndOfTrack)
}

func swing(tl *midi.Timeline, bpm float64) {
	header(tl, bpm)
	long := float64(ppq) * 2 / 3
	for beat := 0; beat < 4; beat++ {
		start := float64(beat * ppq)
		hit(tl, 1, start, long/2, 42)
		hit(tl, 1, start+long, (ppq-long)/2, 42)
	}
	hit(tl, 0, 0, ppq, 36)
	tl.Add(0, 4*ppq, midi.EndOfTrack)
	tl.Add(1, 4*ppq, midi.EndOfTrack)
}

func single(tl *midi.Timeline, bpm float64) {
	header(tl, bpm)
	tl.Add(0, 0, midi.NoteOn(9, 36, 100))
	tl.Add(0, 0, midi.EndOfTrack)
	tl.Add(1, 0, midi.EndOfTrack)
}

func sweep(tl *midi.Timeline, bpm float64) {
	header(tl, bpm)
	for i := 0; i < 4; i++ {
		hit(tl, 0, float64(i*ppq), ppq/2, 36)
	}
	for i := 0; i < 16; i++ {
		tl.Add(1, float64(i*ppq/4)+ppq/8, midi.ControlChange(0, 74, uint8(i*8)))
	}
	tl.Add(0, 4*ppq, midi.EndOfTrack)
	tl.Add(1, 4*ppq, midi.EndOfTrack)
}
