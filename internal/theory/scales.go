package theory

import (
	"errors"
	"fmt"
)

// ScaleType names a supported scale.
type ScaleType string

const (
	ScaleMajor           ScaleType = "major"
	ScaleMinor           ScaleType = "minor"
	ScaleMajorPentatonic ScaleType = "major-pentatonic"
	ScaleMinorPentatonic ScaleType = "minor-pentatonic"
)

// ErrUnknownScale is returned for scale types not in ScaleTypes.
var ErrUnknownScale = errors.New("unknown scale")

// Step patterns in semitones. The final step returns to the octave.
var scalePatterns = map[ScaleType][]int{
	ScaleMajor:           {2, 2, 1, 2, 2, 2, 1},
	ScaleMinor:           {2, 1, 2, 2, 1, 2, 2},
	ScaleMajorPentatonic: {2, 2, 3, 2, 3},
	ScaleMinorPentatonic: {3, 2, 2, 3, 2},
}

// ScaleTypes lists the supported scales in display order.
func ScaleTypes() []ScaleType {
	return []ScaleType{ScaleMajor, ScaleMinor, ScaleMajorPentatonic, ScaleMinorPentatonic}
}

// BuildScale spells the scale on root with sharps, root first, without the
// repeated octave.
func BuildScale(root string, t ScaleType) ([]string, error) {
	pattern, ok := scalePatterns[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScale, t)
	}
	idx, err := NoteIndex(root)
	if err != nil {
		return nil, err
	}
	notes := make([]string, 0, len(pattern))
	for _, step := range pattern {
		notes = append(notes, Chromatic[idx])
		idx = (idx + step) % 12
	}
	return notes, nil
}

func contains(notes []string, n string) bool {
	for _, x := range notes {
		if x == n {
			return true
		}
	}
	return false
}
