package models

// Quest difficulties shown on the quest card.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

var QuestDifficulties = []string{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Quest is a task a student completes for points and, optionally, a badge.
// Admins may edit quests after creation — there is no versioning, so edits
// retroactively change the display text of past completions.
type Quest struct {
	ID          string  `gorm:"primaryKey;type:uuid" json:"id"`
	Slug        string  `gorm:"uniqueIndex;not null" json:"slug"`
	Title       string  `gorm:"not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	Points      int64   `gorm:"not null" json:"points"` // positive
	Difficulty  string  `gorm:"type:varchar(16);default:'easy'" json:"difficulty"`
	BadgeID     *string `gorm:"type:uuid;index" json:"badge_id,omitempty"` // awarded on approval

	Timestamps
}

func ValidDifficulty(d string) bool {
	for _, v := range QuestDifficulties {
		if v == d {
			return true
		}
	}
	return false
}
