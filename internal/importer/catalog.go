package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/guitardaily/internal/models"
	"github.com/xuri/excelize/v2"
)

// catalogNamespace derives stable exercise ids from titles so that
// re-importing a spreadsheet updates rows instead of duplicating them.
var catalogNamespace = uuid.MustParse("8f5cde0b-6d0a-4c52-9d5c-2f7a3b1e4a10")

// Catalog spreadsheet columns, matched case-insensitively.
const (
	colTitle      = "title"
	colKey        = "key"
	colBPMMin     = "bpm min"
	colBPMMax     = "bpm max"
	colMinutes    = "minutes"
	colDifficulty = "difficulty"
	colTags       = "tags"
	colNotes      = "notes"
)

type rowReader func(io.Reader) ([][]string, error)

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return rows, nil
}

// readXLSX returns the rows of the first sheet.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func (imp *Importer) importCatalog(ctx context.Context, userID int, r io.Reader, stats *Stats, read rowReader) error {
	rows, err := read(r)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("catalog is empty")
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols[colTitle]; !ok {
		return fmt.Errorf("catalog header has no %q column", "Title")
	}

	now := imp.now().UTC()
	for n, row := range rows[1:] {
		if blank(row) {
			continue
		}
		stats.ExercisesReceived++
		e, err := catalogExercise(row, cols, now)
		if err != nil {
			stats.skip("row %d: %v", n+2, err)
			continue
		}
		if err := imp.keepTimestamps(ctx, userID, &e); err != nil {
			return err
		}
		if err := imp.writeExercise(ctx, userID, e, stats); err != nil {
			return err
		}
	}
	return nil
}

// keepTimestamps carries the stored created and updated times over to a
// re-imported catalog row, so a spreadsheet refresh does not count as practice.
func (imp *Importer) keepTimestamps(ctx context.Context, userID int, e *models.Exercise) error {
	existing, err := imp.store.GetExercise(ctx, userID, e.ID)
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading exercise %q: %w", e.Title, err)
	}
	e.CreatedAt, e.UpdatedAt = existing.CreatedAt, existing.UpdatedAt
	return nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func catalogExercise(row []string, cols map[string]int, now time.Time) (models.Exercise, error) {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	number := func(name string, dst *int) error {
		v := cell(name)
		if v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", name, v)
		}
		*dst = round(f)
		return nil
	}

	e := models.NewExercise(now)
	title := cell(colTitle)
	if title == "" {
		return e, fmt.Errorf("missing title")
	}
	e.Title = title
	e.ID = uuid.NewSHA1(catalogNamespace, []byte(strings.ToLower(title))).String()

	if k := cell(colKey); k != "" {
		e.Key = k
	}
	for _, c := range []struct {
		name string
		dst  *int
	}{{colBPMMin, &e.BPMMin}, {colBPMMax, &e.BPMMax}, {colMinutes, &e.EstMinutes}} {
		if err := number(c.name, c.dst); err != nil {
			return e, err
		}
	}
	if d := cell(colDifficulty); d != "" {
		e.Difficulty = models.Difficulty(strings.ToLower(d))
	}
	if t := cell(colTags); t != "" {
		e.Tags = splitTags(t)
	}
	e.Notes = cell(colNotes)
	return e, models.Validate(e)
}

func splitTags(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := strings.TrimSpace(f); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
