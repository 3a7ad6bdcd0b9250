package models

import (
	"time"

	"github.com/google/uuid"
)

// SeedExercises returns the starter catalog given to users with no exercises.
func SeedExercises(now time.Time) []Exercise {
	return []Exercise{
		{
			ID:         uuid.NewString(),
			Title:      "Chromatic warm-up (1-2-3-4)",
			BPMMin:     60,
			BPMMax:     120,
			Key:        "C",
			EstMinutes: 3,
			Difficulty: DifficultyEasy,
			Notes:      "4 strings, alternate picking, 8th notes.",
			Tags:       []string{"warmup", "chromatic"},
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		{
			ID:         uuid.NewString(),
			Title:      "Major scale 3NPS (C major)",
			BPMMin:     70,
			BPMMax:     140,
			Key:        "C",
			EstMinutes: 4,
			Difficulty: DifficultyMedium,
			Tags:       []string{"scale", "technique"},
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		{
			ID:         uuid.NewString(),
			Title:      "Arpeggio sweep (Am triad)",
			BPMMin:     50,
			BPMMax:     110,
			Key:        "Am",
			EstMinutes: 4,
			Difficulty: DifficultyHard,
			Tags:       []string{"arpeggio", "sweep"},
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}
}
