package practice

import (
	"sort"
	"time"

	"github.com/meltforce/guitardaily/internal/models"
)

// Streak is the number of consecutive UTC days with at least one attempt.
// Current ends today; Best is the longest run anywhere in the log.
type Streak struct {
	Current int `json:"current"`
	Best    int `json:"best"`
}

// PracticeDays reduces attempts to the distinct UTC days they were logged on.
func PracticeDays(attempts []models.Attempt) map[string]bool {
	days := make(map[string]bool, len(attempts))
	for _, a := range attempts {
		days[a.Timestamp.UTC().Format(models.DateLayout)] = true
	}
	return days
}

// ComputeStreak derives the current and best streak from the attempt log.
// now anchors the current streak and must be the caller's wall clock.
func ComputeStreak(attempts []models.Attempt, now time.Time) Streak {
	days := PracticeDays(attempts)
	if len(days) == 0 {
		return Streak{}
	}

	sorted := make([]string, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)

	best, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		prev, _ := time.Parse(models.DateLayout, sorted[i-1])
		curr, _ := time.Parse(models.DateLayout, sorted[i])
		if prev.AddDate(0, 0, 1).Equal(curr) {
			run++
			best = max(best, run)
		} else {
			run = 1
		}
	}

	current := 0
	for d := now.UTC(); days[d.Format(models.DateLayout)]; d = d.AddDate(0, 0, -1) {
		current++
	}

	return Streak{Current: current, Best: best}
}

// AtRisk reports whether a streak that was alive yesterday has no attempt
// yet today. It returns the length of the streak that would be lost.
func AtRisk(attempts []models.Attempt, now time.Time) (int, bool) {
	today := ComputeStreak(attempts, now)
	if today.Current > 0 {
		return 0, false
	}
	yesterday := ComputeStreak(attempts, now.AddDate(0, 0, -1))
	return yesterday.Current, yesterday.Current > 0
}
