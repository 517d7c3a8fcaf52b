package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// IDSet is a JSON-encoded set of record ids stored in a single jsonb column.
// Union-only: ids are never removed, and adding an existing id is a no-op.
type IDSet []string

func (s IDSet) Contains(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Union returns the set with id added, unchanged if already present.
func (s IDSet) Union(id string) IDSet {
	if s.Contains(id) {
		return s
	}
	return append(s, id)
}

func (s IDSet) Value() (driver.Value, error) {
	if s == nil {
		s = IDSet{}
	}
	return json.Marshal(s)
}

func (s *IDSet) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = IDSet{}
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported IDSet column type %T", value)
	}
}

// PortalUser is the local account record for a student (or admin).
// Identity lives in the external identity service; this row mirrors the
// profile fields and owns the progression state (points, badges, completed
// quests). Points only ever increase — no refunds or penalties are modeled.
type PortalUser struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // identity service UUID
	Name           string `gorm:"not null" json:"name"`
	Email          string `gorm:"index" json:"email,omitempty"`
	StudentID      string `json:"student_id,omitempty"`
	Major          string `json:"major,omitempty"`
	Year           string `json:"year,omitempty"`

	Points          int64 `gorm:"default:0" json:"points"`
	Badges          IDSet `gorm:"type:jsonb" json:"badges"`
	CompletedQuests IDSet `gorm:"type:jsonb" json:"completed_quests"`

	// Derived from the email domain at account creation; never changed after.
	IsAdmin bool `gorm:"default:false" json:"is_admin"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
