// Package practice holds the session scheduler and progress tracker. Every
// function here is pure: callers pass the catalog, attempt log and current
// time in, and persist whatever comes back.
package practice

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/guitardaily/internal/models"
)

// DefaultBlockMinutes is used for exercises without a positive estimate.
const DefaultBlockMinutes = 3

// iterationFactor bounds the fill loop at this multiple of the target minutes.
const iterationFactor = 4

// Clock reports the current time. Production code uses time.Now.
type Clock func() time.Time

// Plan fills minutes with blocks taken cyclically from the catalog, least
// recently updated exercises first. The block sum never exceeds minutes and
// only falls short of it when the iteration cap is reached.
func Plan(catalog []models.Exercise, minutes int) []models.SessionItem {
	return plan(catalog, minutes, blockMinutes)
}

func blockMinutes(ex models.Exercise) int {
	if ex.EstMinutes <= 0 {
		return DefaultBlockMinutes
	}
	return ex.EstMinutes
}

// plan is Plan with the block size taken from blockFor. With blockMinutes
// every block is at least one minute, so the iteration cap is a backstop for
// block sizes that make no progress.
func plan(catalog []models.Exercise, minutes int, blockFor func(models.Exercise) int) []models.SessionItem {
	items := []models.SessionItem{}
	if len(catalog) == 0 || minutes <= 0 {
		return items
	}

	byNeed := make([]models.Exercise, len(catalog))
	copy(byNeed, catalog)
	sort.SliceStable(byNeed, func(i, j int) bool {
		return byNeed[i].UpdatedAt.Before(byNeed[j].UpdatedAt)
	})

	total := 0
	maxIter := minutes * iterationFactor
	for i := 0; total < minutes && i < maxIter; i++ {
		ex := byNeed[i%len(byNeed)]
		block := min(blockFor(ex), minutes-total)
		items = append(items, models.SessionItem{ExerciseID: ex.ID, PlannedMinutes: block})
		total += block
	}
	return items
}

// GenerateSession builds a new session for minutes of practice dated on now's
// calendar day. An empty catalog yields an empty session with nothing planned.
func GenerateSession(catalog []models.Exercise, minutes int, now time.Time) models.Session {
	sess := models.Session{
		ID:    uuid.NewString(),
		Date:  now.Format(models.DateLayout),
		Items: []models.SessionItem{},
	}
	if len(catalog) == 0 {
		return sess
	}
	sess.TotalPlanned = minutes
	sess.Items = Plan(catalog, minutes)
	return sess
}
