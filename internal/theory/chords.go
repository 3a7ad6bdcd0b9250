package theory

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadFormula is returned for interval formulas that cannot be parsed.
var ErrBadFormula = errors.New("bad interval formula")

// ErrUnknownGroup is returned for chord groups not in ChordGroups.
var ErrUnknownGroup = errors.New("unknown chord group")

// ChordGroup groups chord qualities the way the reference page does.
type ChordGroup string

const (
	GroupBasic     ChordGroup = "basic"
	GroupSeventh   ChordGroup = "seventh"
	GroupExtended  ChordGroup = "extended"
	GroupDissonant ChordGroup = "dissonant"
)

// ChordGroups lists the groups in display order.
func ChordGroups() []ChordGroup {
	return []ChordGroup{GroupBasic, GroupSeventh, GroupExtended, GroupDissonant}
}

type chordType struct {
	name    string
	suffix  string
	formula string
	group   ChordGroup
}

var chordTypes = []chordType{
	{"Power Chord", "5", "1-5", GroupBasic},
	{"Major", "", "1-3-5", GroupBasic},
	{"Minor", "m", "1-b3-5", GroupBasic},
	{"Diminished", "dim", "1-b3-b5", GroupBasic},
	{"Augmented", "aug", "1-3-#5", GroupBasic},
	{"Sus2", "sus2", "1-2-5", GroupBasic},
	{"Sus4", "sus4", "1-4-5", GroupBasic},

	{"Dominant 7", "7", "1-3-5-b7", GroupSeventh},
	{"Major 7", "maj7", "1-3-5-7", GroupSeventh},
	{"Minor 7", "m7", "1-b3-5-b7", GroupSeventh},
	{"Half-Diminished", "m7b5", "1-b3-b5-b7", GroupSeventh},
	{"Diminished 7", "dim7", "1-b3-b5-bb7", GroupSeventh},

	{"Major 6", "6", "1-3-5-6", GroupExtended},
	{"Minor 6", "m6", "1-b3-5-6", GroupExtended},
	{"9", "9", "1-3-5-b7-9", GroupExtended},
	{"m9", "m9", "1-b3-5-b7-9", GroupExtended},
	{"maj9", "maj9", "1-3-5-7-9", GroupExtended},
	{"11", "11", "1-3-5-b7-9-11", GroupExtended},
	{"13", "13", "1-3-5-b7-9-13", GroupExtended},

	{"7b9", "7b9", "1-3-5-b7-b9", GroupDissonant},
	{"7#9", "7#9", "1-3-5-b7-#9", GroupDissonant},
	{"7b5", "7b5", "1-3-b5-b7", GroupDissonant},
	{"7#5", "7#5", "1-3-#5-b7", GroupDissonant},
	{"9b5", "9b5", "1-3-b5-b7-9", GroupDissonant},
	{"9#5", "9#5", "1-3-#5-b7-9", GroupDissonant},
	{"m7b9", "m7b9", "1-b3-5-b7-b9", GroupDissonant},
	{"dim7(add9)", "dim7(add9)", "1-b3-b5-bb7-9", GroupDissonant},
}

// Semitones above the root for each natural degree of the major scale.
var degreeSemitones = map[int]int{
	1: 0, 2: 2, 3: 4, 4: 5, 5: 7, 6: 9, 7: 11,
	9: 14, 11: 17, 13: 21,
}

// Intervals parses a formula such as "1-b3-5-bb7" into semitone offsets
// above the root.
func Intervals(formula string) ([]int, error) {
	parts := strings.Split(formula, "-")
	out := make([]int, 0, len(parts))
	for _, raw := range parts {
		tok := strings.TrimSpace(raw)
		shift := 0
		for len(tok) > 0 && (tok[0] == 'b' || tok[0] == '#') {
			if tok[0] == 'b' {
				shift--
			} else {
				shift++
			}
			tok = tok[1:]
		}
		deg, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadFormula, raw)
		}
		semis, ok := degreeSemitones[deg]
		if !ok {
			return nil, fmt.Errorf("%w: degree %d", ErrBadFormula, deg)
		}
		out = append(out, semis+shift)
	}
	return out, nil
}

// Spell applies formula to root and returns the note names with sharps.
func Spell(root, formula string) ([]string, error) {
	idx, err := NoteIndex(root)
	if err != nil {
		return nil, err
	}
	intervals, err := Intervals(formula)
	if err != nil {
		return nil, err
	}
	notes := make([]string, len(intervals))
	for i, semis := range intervals {
		notes[i] = Chromatic[((idx+semis)%12+12)%12]
	}
	return notes, nil
}

// Chord is a chord quality spelled on a root.
type Chord struct {
	Name    string     `json:"name"`
	Symbol  string     `json:"symbol"`
	Formula string     `json:"formula"`
	Group   ChordGroup `json:"group"`
	Notes   []string   `json:"notes"`
}

// Chords spells every chord quality in group on root. An empty group
// returns all groups.
func Chords(root string, group ChordGroup) ([]Chord, error) {
	r, err := Normalize(root)
	if err != nil {
		return nil, err
	}
	var out []Chord
	for _, ct := range chordTypes {
		if group != "" && ct.group != group {
			continue
		}
		notes, err := Spell(r, ct.formula)
		if err != nil {
			return nil, fmt.Errorf("chord %s: %w", ct.name, err)
		}
		out = append(out, Chord{
			Name:    ct.name,
			Symbol:  r + ct.suffix,
			Formula: ct.formula,
			Group:   ct.group,
			Notes:   notes,
		})
	}
	if out == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, group)
	}
	return out, nil
}
