package theory

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrNoStrings is returned when a quiz is requested on an empty tuning.
var ErrNoStrings = errors.New("tuning has no strings")

// Question asks for the note at one fret.
type Question struct {
	String int    `json:"string"`
	Fret   int    `json:"fret"`
	Label  string `json:"label"`
}

// NewQuestion picks a random string and fret in 0..frets.
func NewQuestion(rng *rand.Rand, tuning []OpenString, frets int) (Question, error) {
	if len(tuning) == 0 {
		return Question{}, ErrNoStrings
	}
	if frets < 0 || frets > MaxFrets {
		return Question{}, fmt.Errorf("%w: %d", ErrFretRange, frets)
	}
	s := rng.Intn(len(tuning))
	return Question{String: s, Fret: rng.Intn(frets + 1), Label: tuning[s].Label(s)}, nil
}

// Answer is the graded result of a quiz answer.
type Answer struct {
	Correct bool   `json:"correct"`
	Note    string `json:"note"`
	Octave  int    `json:"octave"`
}

// CheckAnswer grades answer against the note at q. Enharmonic spellings
// count as correct.
func CheckAnswer(tuning []OpenString, q Question, answer string) (Answer, error) {
	if q.String < 0 || q.String >= len(tuning) {
		return Answer{}, fmt.Errorf("string %d out of range", q.String+1)
	}
	if q.Fret < 0 || q.Fret > MaxFrets {
		return Answer{}, fmt.Errorf("%w: %d", ErrFretRange, q.Fret)
	}
	p, err := position(tuning, q.String, q.Fret, nil)
	if err != nil {
		return Answer{}, err
	}
	res := Answer{Note: p.Note, Octave: p.Octave}
	if got, err := Normalize(answer); err == nil {
		res.Correct = got == p.Note
	}
	return res, nil
}
