package models

// Badge is a collectible reward record. Referenced by zero or more quests
// and held at most once per user regardless of how many qualifying quests
// are completed.
type Badge struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	IconURL     string `gorm:"type:text" json:"icon_url"`
	Color       string `gorm:"type:varchar(16)" json:"color"`

	Timestamps
}
