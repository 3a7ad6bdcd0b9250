package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/meltforce/guitardaily/internal/theory"
)

func tuningParam(r *http.Request) (string, []theory.OpenString, bool) {
	name := strings.ToLower(r.URL.Query().Get("tuning"))
	if name == "" {
		name = "drop-b"
	}
	t, ok := theory.Tunings[name]
	return name, t, ok
}

// scaleParam builds the scale named by ?root= and ?type=. Without a root it
// returns nil, meaning no scale.
func scaleParam(r *http.Request) ([]string, error) {
	root := r.URL.Query().Get("root")
	if root == "" {
		return nil, nil
	}
	t := theory.ScaleType(r.URL.Query().Get("type"))
	if t == "" {
		t = theory.ScaleMajor
	}
	return theory.BuildScale(root, t)
}

func (s *Server) handleScale(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("root") == "" {
		writeBadRequest(w, "root parameter required")
		return
	}
	notes, err := scaleParam(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"root":  notes[0],
		"notes": notes,
		"types": theory.ScaleTypes(),
	})
}

// handleFretboard returns the board grid for a tuning. With ?order=asc or
// ?order=desc it returns the in-scale positions as a playing sequence instead.
func (s *Server) handleFretboard(w http.ResponseWriter, r *http.Request) {
	name, tuning, ok := tuningParam(r)
	if !ok {
		writeBadRequest(w, "unknown tuning "+name)
		return
	}
	frets, err := queryInt(r, "frets", theory.DefaultFrets)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	scale, err := scaleParam(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	strs := make([]string, len(tuning))
	for i, o := range tuning {
		strs[i] = o.Label(i)
	}
	resp := map[string]any{"tuning": name, "strings": strs, "frets": frets, "scale": scale}

	switch order := r.URL.Query().Get("order"); order {
	case "":
		board, err := theory.Fretboard(tuning, frets, scale)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		resp["board"] = board
	case "asc", "desc":
		if scale == nil {
			writeBadRequest(w, "a sequence needs a root")
			return
		}
		seq, err := theory.ScaleSequence(tuning, frets, scale, order == "asc")
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		resp["sequence"] = seq
	default:
		writeBadRequest(w, "order must be asc or desc")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChords(w http.ResponseWriter, r *http.Request) {
	root := r.URL.Query().Get("root")
	if root == "" {
		root = "C"
	}
	chords, err := theory.Chords(root, theory.ChordGroup(r.URL.Query().Get("group")))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, chords)
}

func (s *Server) handleModes(w http.ResponseWriter, r *http.Request) {
	root := r.URL.Query().Get("root")
	if root == "" {
		root = "C"
	}
	modes, err := theory.Modes(root)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, modes)
}

func (s *Server) handleQuizQuestion(w http.ResponseWriter, r *http.Request) {
	name, tuning, ok := tuningParam(r)
	if !ok {
		writeBadRequest(w, "unknown tuning "+name)
		return
	}
	frets, err := queryInt(r, "frets", 12)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	s.rngMu.Lock()
	q, err := theory.NewQuestion(s.rng, tuning, frets)
	s.rngMu.Unlock()
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Tuning string `json:"tuning"`
		String int    `json:"string"`
		Fret   int    `json:"fret"`
		Answer string `json:"answer"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if in.Tuning == "" {
		in.Tuning = "drop-b"
	}
	tuning, ok := theory.Tunings[strings.ToLower(in.Tuning)]
	if !ok {
		writeBadRequest(w, "unknown tuning "+in.Tuning)
		return
	}
	res, err := theory.CheckAnswer(tuning, theory.Question{String: in.String, Fret: in.Fret}, in.Answer)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMetronome(w http.ResponseWriter, r *http.Request) {
	params := []struct {
		name string
		def  int
	}{
		{name: "bpm", def: 120},
		{name: "beats", def: theory.DefaultBeatsPerBar},
		{name: "count_in", def: 1},
		{name: "bars", def: 4},
	}
	vals := make([]int, len(params))
	for i, p := range params {
		v, err := queryInt(r, p.name, p.def)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		vals[i] = v
	}
	bpm, beats, countIn, bars := vals[0], vals[1], vals[2], vals[3]

	clicks, err := theory.ClickSchedule(bpm, beats, countIn, bars)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bpm":         bpm,
		"beats":       beats,
		"interval_ms": theory.BeatInterval(bpm).Milliseconds(),
		"total_ms":    (time.Duration(len(clicks)) * theory.BeatInterval(bpm)).Milliseconds(),
		"clicks":      clicks,
	})
}
