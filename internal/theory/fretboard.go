package theory

import (
	"errors"
	"fmt"
	"sort"
)

// DefaultFrets is the fret count of the reference board.
const DefaultFrets = 24

// MaxFrets bounds user-supplied fret counts.
const MaxFrets = 36

// OpenString is the pitch of an unfretted string.
type OpenString struct {
	Note   string `json:"note"`
	Octave int    `json:"octave"`
}

// Label renders the string the way the board shows it, e.g. "1: C#4".
// n is the zero-based string index, highest string first.
func (s OpenString) Label(n int) string {
	return fmt.Sprintf("%d: %s%d", n+1, s.Note, s.Octave)
}

// DropB is six-string drop-B tuning, highest string first.
var DropB = []OpenString{
	{"C#", 4}, {"G#", 3}, {"E", 3}, {"B", 2}, {"F#", 2}, {"B", 1},
}

// Standard is six-string E standard tuning, highest string first.
var Standard = []OpenString{
	{"E", 4}, {"B", 3}, {"G", 3}, {"D", 3}, {"A", 2}, {"E", 2},
}

// Tunings maps tuning names accepted by the API to their strings.
var Tunings = map[string][]OpenString{
	"drop-b":   DropB,
	"standard": Standard,
}

// ErrFretRange is returned for fret counts outside 0..MaxFrets.
var ErrFretRange = errors.New("fret count out of range")

// Position is one fret on one string.
type Position struct {
	String    int     `json:"string"`
	Fret      int     `json:"fret"`
	Note      string  `json:"note"`
	Octave    int     `json:"octave"`
	MIDI      int     `json:"midi"`
	Frequency float64 `json:"frequency"`
	InScale   bool    `json:"inScale"`
}

func position(tuning []OpenString, str, fret int, scale []string) (Position, error) {
	open, err := MIDINumber(tuning[str].Note, tuning[str].Octave)
	if err != nil {
		return Position{}, err
	}
	p := PitchFromMIDI(open + fret)
	return Position{
		String:    str,
		Fret:      fret,
		Note:      p.Note,
		Octave:    p.Octave,
		MIDI:      p.MIDI,
		Frequency: MIDIToFrequency(p.MIDI),
		InScale:   contains(scale, p.Note),
	}, nil
}

// Fretboard returns one row per string with frets 0..frets inclusive.
// Positions whose note is in scale are marked; a nil scale marks nothing.
func Fretboard(tuning []OpenString, frets int, scale []string) ([][]Position, error) {
	if frets < 0 || frets > MaxFrets {
		return nil, fmt.Errorf("%w: %d", ErrFretRange, frets)
	}
	board := make([][]Position, len(tuning))
	for s := range tuning {
		row := make([]Position, 0, frets+1)
		for f := 0; f <= frets; f++ {
			p, err := position(tuning, s, f, scale)
			if err != nil {
				return nil, fmt.Errorf("string %d: %w", s+1, err)
			}
			row = append(row, p)
		}
		board[s] = row
	}
	return board, nil
}

// ScaleSequence lists every in-scale position on the board ordered by pitch.
// Positions with equal pitch keep string order, highest string first.
func ScaleSequence(tuning []OpenString, frets int, scale []string, ascending bool) ([]Position, error) {
	board, err := Fretboard(tuning, frets, scale)
	if err != nil {
		return nil, err
	}
	var seq []Position
	for _, row := range board {
		for _, p := range row {
			if p.InScale {
				seq = append(seq, p)
			}
		}
	}
	sort.SliceStable(seq, func(i, j int) bool {
		if ascending {
			return seq[i].MIDI < seq[j].MIDI
		}
		return seq[i].MIDI > seq[j].MIDI
	})
	return seq, nil
}
