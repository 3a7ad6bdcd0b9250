// Package theory holds the guitar reference math behind the fretboard,
// chord and mode pages: note names, MIDI numbers, scale and chord spelling,
// fret positions and metronome click timing.
package theory

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Chromatic is the twelve-tone scale starting at C, spelled with sharps.
var Chromatic = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// ErrUnknownNote is returned for note names outside the chromatic scale.
var ErrUnknownNote = errors.New("unknown note")

var flats = map[string]string{
	"DB": "C#", "EB": "D#", "FB": "E", "GB": "F#", "AB": "G#", "BB": "A#", "CB": "B",
	"E#": "F", "B#": "C",
}

// NoteIndex returns the pitch class of name (0 for C). Flats and enharmonic
// spellings are accepted; letter case is ignored.
func NoteIndex(name string) (int, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	n = strings.NewReplacer("♯", "#", "♭", "B").Replace(n)
	if alias, ok := flats[n]; ok {
		n = alias
	}
	for i, c := range Chromatic {
		if c == n {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownNote, name)
}

// Normalize returns the sharp spelling of name.
func Normalize(name string) (string, error) {
	idx, err := NoteIndex(name)
	if err != nil {
		return "", err
	}
	return Chromatic[idx], nil
}

// MIDINumber returns the MIDI note number, with C4 = 60 and A4 = 69.
func MIDINumber(note string, octave int) (int, error) {
	idx, err := NoteIndex(note)
	if err != nil {
		return 0, err
	}
	return 12*(octave+1) + idx, nil
}

// MIDIToFrequency converts a MIDI number to Hz in equal temperament, A4 = 440.
func MIDIToFrequency(midi int) float64 {
	return 440 * math.Pow(2, float64(midi-69)/12)
}

// Pitch is a note with its octave.
type Pitch struct {
	Note   string `json:"note"`
	Octave int    `json:"octave"`
	MIDI   int    `json:"midi"`
}

func (p Pitch) String() string { return fmt.Sprintf("%s%d", p.Note, p.Octave) }

// PitchFromMIDI names a MIDI number.
func PitchFromMIDI(midi int) Pitch {
	pc := ((midi % 12) + 12) % 12
	return Pitch{Note: Chromatic[pc], Octave: floorDiv(midi, 12) - 1, MIDI: midi}
}

// NoteAtFret returns the note sounded by fretting open at fret.
func NoteAtFret(open string, fret int) (string, error) {
	idx, err := NoteIndex(open)
	if err != nil {
		return "", err
	}
	return Chromatic[((idx+fret)%12+12)%12], nil
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
