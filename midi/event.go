package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Class tags an event payload for ordering. The numeric order is the
// tie-break priority for events sharing a tick.
type Class uint8

const (
	ClassMeta Class = iota
	ClassNoteOff
	ClassNoteOn
	ClassControlChange // also program change, pitch bend, aftertouch, sysex
	ClassEndOfTrack
)

func (c Class) String() string {
	switch c {
	case ClassMeta:
		return "meta"
	case ClassNoteOff:
		return "note-off"
	case ClassNoteOn:
		return "note-on"
	case ClassControlChange:
		return "control-change"
	case ClassEndOfTrack:
		return "end-of-track"
	}
	return "unknown"
}

// EndOfTrack is the end-of-track meta message (FF 2F 00).
var EndOfTrack = smf.Message{0xFF, 0x2F, 0x00}

// Event is a single timed message belonging to one source track.
// Time is in ticks: absolute inside a Timeline, relative to the grid point
// once bucketed by the segmenter.
type Event struct {
	Track   int
	Time    float64
	Message smf.Message
}

// Class returns the ordering class of the event's message.
func (e Event) Class() Class {
	return Classify(e.Message)
}

// Classify maps a message to its ordering class.
// A note-on with velocity 0 counts as a note-off.
func Classify(msg smf.Message) Class {
	if msg.Is(smf.MetaEndOfTrackMsg) {
		return ClassEndOfTrack
	}
	if msg.IsMeta() {
		return ClassMeta
	}

	var ch, key, vel uint8
	m := gomidi.Message(msg)
	switch {
	case m.GetNoteEnd(&ch, &key):
		return ClassNoteOff
	case m.GetNoteStart(&ch, &key, &vel):
		return ClassNoteOn
	}
	return ClassControlChange
}

// IsEndOfTrack reports whether msg is an end-of-track marker.
func IsEndOfTrack(msg smf.Message) bool {
	return msg.Is(smf.MetaEndOfTrackMsg)
}

// TempoBPM returns the tempo carried by msg, if it is a tempo meta event.
func TempoBPM(msg smf.Message) (float64, bool) {
	var bpm float64
	if !msg.GetMetaTempo(&bpm) {
		return 0, false
	}
	return bpm, true
}

// Message constructors used by the materializer and the fixture tool.

func NoteOn(channel, key, velocity uint8) smf.Message {
	return smf.Message(gomidi.NoteOn(channel, key, velocity))
}

func NoteOff(channel, key uint8) smf.Message {
	return smf.Message(gomidi.NoteOff(channel, key))
}

func ControlChange(channel, controller, value uint8) smf.Message {
	return smf.Message(gomidi.ControlChange(channel, controller, value))
}

func Tempo(bpm float64) smf.Message {
	return smf.MetaTempo(bpm)
}

func Meter(num, denom uint8) smf.Message {
	return smf.MetaMeter(num, denom)
}
