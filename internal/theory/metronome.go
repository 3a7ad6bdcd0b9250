package theory

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MinBPM and MaxBPM bound the metronome tempo.
	MinBPM = 20
	MaxBPM = 400

	// DefaultBeatsPerBar is common time.
	DefaultBeatsPerBar = 4

	maxClicks = 4096
)

// Click pitches: a high accent on the downbeat, a lower tick elsewhere.
const (
	accentMIDI = 84 // C6
	tickMIDI   = 79 // G5
)

// ErrTempo is returned for out-of-range metronome settings.
var ErrTempo = errors.New("invalid metronome settings")

// Click is one metronome beat.
type Click struct {
	Index     int           `json:"index"`
	Bar       int           `json:"bar"`
	BeatInBar int           `json:"beatInBar"`
	At        time.Duration `json:"-"`
	AtMs      int64         `json:"atMs"`
	Accent    bool          `json:"accent"`
	CountIn   bool          `json:"countIn"`
	Pitch     string        `json:"pitch"`
	Frequency float64       `json:"frequency"`
}

// BeatInterval is the time between clicks at bpm.
func BeatInterval(bpm int) time.Duration {
	return time.Minute / time.Duration(bpm)
}

// ClickSchedule lays out countInBars bars of count-in followed by bars of
// practice. Bar numbering runs across both; the first beat of every bar is
// accented.
func ClickSchedule(bpm, beatsPerBar, countInBars, bars int) ([]Click, error) {
	switch {
	case bpm < MinBPM || bpm > MaxBPM:
		return nil, fmt.Errorf("%w: bpm %d outside %d..%d", ErrTempo, bpm, MinBPM, MaxBPM)
	case beatsPerBar <= 0:
		return nil, fmt.Errorf("%w: beats per bar must be positive", ErrTempo)
	case countInBars < 0 || bars < 0:
		return nil, fmt.Errorf("%w: bar counts must not be negative", ErrTempo)
	case (countInBars+bars)*beatsPerBar > maxClicks:
		return nil, fmt.Errorf("%w: more than %d clicks", ErrTempo, maxClicks)
	}

	interval := BeatInterval(bpm)
	total := (countInBars + bars) * beatsPerBar
	clicks := make([]Click, 0, total)
	for i := 0; i < total; i++ {
		bar, beat := i/beatsPerBar, i%beatsPerBar
		midi := tickMIDI
		if beat == 0 {
			midi = accentMIDI
		}
		clicks = append(clicks, Click{
			Index:     i,
			Bar:       bar,
			BeatInBar: beat,
			At:        time.Duration(i) * interval,
			AtMs:      (time.Duration(i) * interval).Milliseconds(),
			Accent:    beat == 0,
			CountIn:   bar < countInBars,
			Pitch:     PitchFromMIDI(midi).String(),
			Frequency: MIDIToFrequency(midi),
		})
	}
	return clicks, nil
}
