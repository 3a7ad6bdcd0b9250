package theory

// Mode is a seven-note mode spelled on a root.
type Mode struct {
	Name    string   `json:"name"`
	Formula string   `json:"formula"`
	Notes   []string `json:"notes"`
	Usage   string   `json:"usage"`
}

var modeTypes = []struct {
	name, formula, usage string
}{
	{"Ionian", "1-2-3-4-5-6-7", "Bright major; rare in heavy styles outside power metal."},
	{"Dorian", "1-2-b3-4-5-6-b7", "Minor with a raised sixth; prog and fusion metal."},
	{"Phrygian", "1-b2-b3-4-5-b6-b7", "Dark flat second; thrash, death and black metal."},
	{"Lydian", "1-2-3-#4-5-6-7", "Floating raised fourth; prog and cinematic passages."},
	{"Mixolydian", "1-2-3-4-5-6-b7", "Major with a flat seventh; hard rock and groove riffs."},
	{"Aeolian", "1-2-b3-4-5-b6-b7", "Natural minor; doom, gothic and metalcore."},
	{"Locrian", "1-b2-b3-4-b5-b6-b7", "Unstable flat fifth; djent and tech death."},
	{"Harmonic Minor", "1-2-b3-4-5-b6-7", "Neoclassical shred; raised seventh over minor."},
	{"Melodic Minor", "1-2-b3-4-5-6-7", "Jazz-tinged minor; fusion leads."},
	{"Phrygian Dominant", "1-b2-3-4-5-b6-b7", "Fifth mode of harmonic minor; exotic and folk metal."},
	{"Dorian b2", "1-b2-b3-4-5-6-b7", "Second mode of melodic minor; prog and tech death."},
	{"Lydian Dominant", "1-2-3-#4-5-6-b7", "Raised fourth with a flat seventh; fusion colors."},
	{"Super Locrian", "1-b2-b3-b4-b5-b6-b7", "Altered scale; tension over dominant chords."},
}

// Modes spells every mode on root.
func Modes(root string) ([]Mode, error) {
	r, err := Normalize(root)
	if err != nil {
		return nil, err
	}
	out := make([]Mode, 0, len(modeTypes))
	for _, m := range modeTypes {
		notes, err := Spell(r, m.formula)
		if err != nil {
			return nil, err
		}
		out = append(out, Mode{Name: m.name, Formula: m.formula, Notes: notes, Usage: m.usage})
	}
	return out, nil
}
