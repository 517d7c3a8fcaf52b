package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"quest-portal-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubmissionService struct {
	DB          *gorm.DB
	progression *ProgressionService
}

func NewSubmissionService(db *gorm.DB, progression *ProgressionService) *SubmissionService {
	return &SubmissionService{DB: db, progression: progression}
}

// CreateSubmission records a proof-of-completion claim for review.
// Blocked when the user already completed the quest or has a pending or
// approved submission for it; a rejected submission does not block a retry.
func (s *SubmissionService) CreateSubmission(externalUserID, questID, fileURL, fileName, note string) (*models.Submission, error) {
	var quest models.Quest
	if err := s.DB.First(&quest, "id = ?", questID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("quest %s: %w", questID, ErrNotFound)
		}
		return nil, err
	}

	var blocking int64
	err := s.DB.Model(&models.Submission{}).
		Where("external_user_id = ? AND quest_id = ? AND status IN ?",
			externalUserID, questID,
			[]models.SubmissionStatus{models.SubmissionPending, models.SubmissionApproved}).
		Count(&blocking).Error
	if err != nil {
		return nil, err
	}
	if blocking > 0 {
		return nil, fmt.Errorf("quest %s: %w", questID, ErrDuplicateSubmission)
	}

	sub := &models.Submission{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		QuestID:        questID,
		FileURL:        fileURL,
		FileName:       fileName,
		Note:           note,
		Status:         models.SubmissionPending,
	}
	if err := s.DB.Create(sub).Error; err != nil {
		return nil, fmt.Errorf("creating submission: %w", err)
	}
	return sub, nil
}

// Approve transitions a pending submission to approved and grants the quest's
// rewards, all inside one transaction. The status is re-checked against
// pending inside that transaction, so two admins approving the same
// submission cannot double-award: the second sees ErrConflict.
//
// Rewards are applied before the status flip. A failed award leaves the
// submission pending and re-approvable; an approved submission always has its
// rewards committed.
func (s *SubmissionService) Approve(submissionID string) (*models.Submission, error) {
	var approved models.Submission
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		sub, err := loadPendingSubmission(tx, submissionID)
		if err != nil {
			return err
		}

		var quest models.Quest
		if err := tx.First(&quest, "id = ?", sub.QuestID).Error; err != nil {
			// fail closed: no user mutation when the quest is gone
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("quest %s: %w", sub.QuestID, ErrNotFound)
			}
			return err
		}

		if _, err := awardQuestRewardsTx(tx, sub.ExternalUserID, &quest); err != nil {
			return err
		}

		now := time.Now()
		res := tx.Model(&models.Submission{}).
			Where("id = ? AND status = ?", sub.ID, models.SubmissionPending).
			Updates(map[string]interface{}{"status": models.SubmissionApproved, "reviewed_at": &now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("submission %s: %w", sub.ID, ErrConflict)
		}

		sub.Status = models.SubmissionApproved
		sub.ReviewedAt = &now
		approved = *sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Submission approved: id=%s user=%s quest=%s", approved.ID, approved.ExternalUserID, approved.QuestID)
	return &approved, nil
}

// Reject transitions a pending submission to rejected. The user record is
// never touched.
func (s *SubmissionService) Reject(submissionID string) (*models.Submission, error) {
	var rejected models.Submission
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		sub, err := loadPendingSubmission(tx, submissionID)
		if err != nil {
			return err
		}

		now := time.Now()
		res := tx.Model(&models.Submission{}).
			Where("id = ? AND status = ?", sub.ID, models.SubmissionPending).
			Updates(map[string]interface{}{"status": models.SubmissionRejected, "reviewed_at": &now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("submission %s: %w", sub.ID, ErrConflict)
		}

		sub.Status = models.SubmissionRejected
		sub.ReviewedAt = &now
		rejected = *sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("🚫 Submission rejected: id=%s user=%s quest=%s", rejected.ID, rejected.ExternalUserID, rejected.QuestID)
	return &rejected, nil
}

func loadPendingSubmission(tx *gorm.DB, submissionID string) (*models.Submission, error) {
	var sub models.Submission
	if err := tx.First(&sub, "id = ?", submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("submission %s: %w", submissionID, ErrNotFound)
		}
		return nil, err
	}
	if sub.Status != models.SubmissionPending {
		return nil, fmt.Errorf("submission %s is %s: %w", sub.ID, sub.Status, ErrConflict)
	}
	return &sub, nil
}

// ListForUser returns a user's own submissions, newest first.
func (s *SubmissionService) ListForUser(externalUserID string) ([]models.Submission, error) {
	var subs []models.Submission
	err := s.DB.Where("external_user_id = ?", externalUserID).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}

// ReviewItem is a submission joined with the context an admin needs to
// review it.
type ReviewItem struct {
	models.Submission
	UserName    string `json:"user_name"`
	QuestTitle  string `json:"quest_title"`
	QuestPoints int64  `json:"quest_points"`
}

// ListForReview returns submissions for the admin review queue, optionally
// filtered by status, newest first.
func (s *SubmissionService) ListForReview(status models.SubmissionStatus, page, size int) ([]ReviewItem, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	q := s.DB.Table("submissions").
		Select(`submissions.*,
			portal_users.name AS user_name,
			quests.title AS quest_title,
			quests.points AS quest_points`).
		Joins("LEFT JOIN portal_users ON portal_users.external_user_id = submissions.external_user_id").
		Joins("LEFT JOIN quests ON quests.id = submissions.quest_id").
		Where("submissions.deleted_at IS NULL")
	if status != "" {
		q = q.Where("submissions.status = ?", status)
	}

	var items []ReviewItem
	err := q.Order("submissions.created_at DESC").
		Limit(size).Offset((page - 1) * size).
		Scan(&items).Error
	return items, err
}
