package services

import (
	"errors"
	"fmt"
	"log"

	"quest-portal-system/models"

	"gorm.io/gorm"
)

// Level curve: flat 100 points per level, no cap.
const PointsPerLevel = 100

// Level maps an accumulated point balance to a level, starting at 1.
func Level(points int64) int {
	if points < 0 {
		points = 0
	}
	return int(points/PointsPerLevel) + 1
}

// LevelProgress describes how far into the current level a balance sits.
type LevelProgress struct {
	Earned  int64   `json:"earned"` // points inside the current level, [0,100)
	Needed  int64   `json:"needed"` // always PointsPerLevel
	Percent float64 `json:"percent"`
}

// ProgressFor returns progress toward the next level for a balance.
func ProgressFor(points int64) LevelProgress {
	if points < 0 {
		points = 0
	}
	earned := points - int64(Level(points)-1)*PointsPerLevel
	return LevelProgress{
		Earned:  earned,
		Needed:  PointsPerLevel,
		Percent: float64(earned) / float64(PointsPerLevel) * 100,
	}
}

type ProgressionService struct {
	DB *gorm.DB
}

func NewProgressionService(db *gorm.DB) *ProgressionService {
	return &ProgressionService{DB: db}
}

// AwardQuestRewards grants one quest's rewards to one user as a single atomic
// unit: points balance, badge set and completed-quest set change together or
// not at all. The badge and quest ids are unioned in (no duplicates, no error
// when already present); points are added unconditionally, so re-applying the
// same quest double-counts — the submission one-shot transition upstream is
// what prevents that.
//
// Not idempotent and no internal retry: on update contention the whole call
// fails with ErrStoreUnavailable and the caller decides whether to retry.
func (s *ProgressionService) AwardQuestRewards(externalUserID string, quest *models.Quest) (*models.PortalUser, error) {
	var updated *models.PortalUser
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		updated, err = awardQuestRewardsTx(tx, externalUserID, quest)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("🎖️ Rewards granted: user=%s quest=%s points=+%d balance=%d",
		externalUserID, quest.ID, quest.Points, updated.Points)
	return updated, nil
}

// awardQuestRewardsTx applies the award inside an existing transaction so the
// submission approval can cover the status flip and the reward in one unit.
//
// The write is optimistic: the current row is re-read here rather than trusted
// from any caller snapshot, and the update is conditioned on the balance still
// matching that read. Points strictly increase with every award, so the
// balance doubles as a version column; a concurrent award for the same user
// moves it and this attempt reports contention instead of losing the update.
func awardQuestRewardsTx(tx *gorm.DB, externalUserID string, quest *models.Quest) (*models.PortalUser, error) {
	var user models.PortalUser
	if err := tx.Where("external_user_id = ?", externalUserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account %s: %w", externalUserID, ErrNotFound)
		}
		return nil, fmt.Errorf("loading account %s: %w", externalUserID, err)
	}

	oldPoints := user.Points
	user.Points += quest.Points
	if quest.BadgeID != nil && *quest.BadgeID != "" {
		user.Badges = user.Badges.Union(*quest.BadgeID)
	}
	user.CompletedQuests = user.CompletedQuests.Union(quest.ID)

	res := tx.Model(&models.PortalUser{}).
		Where("external_user_id = ? AND points = ?", externalUserID, oldPoints).
		Updates(map[string]interface{}{
			"points":           user.Points,
			"badges":           user.Badges,
			"completed_quests": user.CompletedQuests,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("updating account %s: %w", externalUserID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("account %s changed concurrently: %w", externalUserID, ErrStoreUnavailable)
	}
	return &user, nil
}

// DashboardStats is the summary block on the student dashboard.
type DashboardStats struct {
	Points             int64         `json:"points"`
	Level              int           `json:"level"`
	Progress           LevelProgress `json:"progress"`
	BadgesEarned       int           `json:"badges_earned"`
	QuestsCompleted    int           `json:"quests_completed"`
	PendingSubmissions int64         `json:"pending_submissions"`
}

// DashboardFor computes the dashboard summary for a user.
func (s *ProgressionService) DashboardFor(externalUserID string) (*DashboardStats, error) {
	var user models.PortalUser
	if err := s.DB.Where("external_user_id = ?", externalUserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account %s: %w", externalUserID, ErrNotFound)
		}
		return nil, err
	}

	var pending int64
	if err := s.DB.Model(&models.Submission{}).
		Where("external_user_id = ? AND status = ?", externalUserID, models.SubmissionPending).
		Count(&pending).Error; err != nil {
		return nil, err
	}

	return &DashboardStats{
		Points:             user.Points,
		Level:              Level(user.Points),
		Progress:           ProgressFor(user.Points),
		BadgesEarned:       len(user.Badges),
		QuestsCompleted:    len(user.CompletedQuests),
		PendingSubmissions: pending,
	}, nil
}

// CompletedQuestEntry is one row of the profile's quest history.
type CompletedQuestEntry struct {
	QuestID string `json:"quest_id"`
	Title   string `json:"title"`
	Points  int64  `json:"points"`
}

// Profile bundles everything the profile page shows for one user.
type Profile struct {
	User     *models.PortalUser    `json:"user"`
	Level    int                   `json:"level"`
	Progress LevelProgress         `json:"progress"`
	Badges   []models.Badge        `json:"badges"`
	History  []CompletedQuestEntry `json:"history"`
}

// ProfileFor loads the account plus its badge records and completed quest
// history. Badges or quests deleted by an admin after being earned are
// silently skipped, matching the catalog's no-versioning rule.
func (s *ProgressionService) ProfileFor(externalUserID string) (*Profile, error) {
	var user models.PortalUser
	if err := s.DB.Where("external_user_id = ?", externalUserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account %s: %w", externalUserID, ErrNotFound)
		}
		return nil, err
	}

	badges := []models.Badge{}
	if len(user.Badges) > 0 {
		if err := s.DB.Where("id IN ?", []string(user.Badges)).Find(&badges).Error; err != nil {
			return nil, err
		}
	}

	history := []CompletedQuestEntry{}
	if len(user.CompletedQuests) > 0 {
		var quests []models.Quest
		if err := s.DB.Where("id IN ?", []string(user.CompletedQuests)).Find(&quests).Error; err != nil {
			return nil, err
		}
		byID := make(map[string]models.Quest, len(quests))
		for _, q := range quests {
			byID[q.ID] = q
		}
		// preserve completion order
		for _, id := range user.CompletedQuests {
			if q, ok := byID[id]; ok {
				history = append(history, CompletedQuestEntry{QuestID: q.ID, Title: q.Title, Points: q.Points})
			}
		}
	}

	return &Profile{
		User:     &user,
		Level:    Level(user.Points),
		Progress: ProgressFor(user.Points),
		Badges:   badges,
		History:  history,
	}, nil
}
