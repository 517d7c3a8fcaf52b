package models

import "time"

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Terminal reports whether the status permits no further transitions.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionApproved || s == SubmissionRejected
}

// Submission is a student's claim of quest completion, backed by an uploaded
// proof file and awaiting admin review. It is created pending and transitions
// exactly once to approved or rejected.
type Submission struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"index;not null" json:"external_user_id"`
	QuestID        string `gorm:"index;not null" json:"quest_id"`

	FileURL  string `gorm:"type:text;not null" json:"file_url"` // public object store URL
	FileName string `json:"file_name"`
	Note     string `gorm:"type:text" json:"note,omitempty"`

	Status     SubmissionStatus `gorm:"type:varchar(16);default:'pending';index" json:"status"`
	ReviewedAt *time.Time       `json:"reviewed_at,omitempty"`

	Timestamps
}
