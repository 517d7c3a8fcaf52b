package services

import (
	"errors"
	"fmt"

	"quest-portal-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type QuestService struct {
	DB *gorm.DB
}

func NewQuestService(db *gorm.DB) *QuestService {
	return &QuestService{DB: db}
}

// QuestInput is the admin create/update payload.
type QuestInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	Points      int64  `json:"points" validate:"required,min=1"`
	Difficulty  string `json:"difficulty" validate:"required,oneof=easy medium hard"`
	BadgeID     string `json:"badge_id" validate:"omitempty,uuid"`
}

// CreateQuest adds a quest to the catalog. The referenced badge must exist.
func (s *QuestService) CreateQuest(in QuestInput) (*models.Quest, error) {
	badgeID, err := s.resolveBadge(in.BadgeID)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	quest := &models.Quest{
		ID:          id,
		Slug:        slug.Make(in.Title) + "-" + id[:8],
		Title:       in.Title,
		Description: in.Description,
		Points:      in.Points,
		Difficulty:  in.Difficulty,
		BadgeID:     badgeID,
	}
	if err := s.DB.Create(quest).Error; err != nil {
		return nil, fmt.Errorf("creating quest: %w", err)
	}
	return quest, nil
}

// UpdateQuest edits a quest in place. No versioning: past completions pick up
// the new title, description and point value for display.
func (s *QuestService) UpdateQuest(id string, in QuestInput) (*models.Quest, error) {
	quest, err := s.GetQuest(id)
	if err != nil {
		return nil, err
	}
	badgeID, err := s.resolveBadge(in.BadgeID)
	if err != nil {
		return nil, err
	}

	quest.Title = in.Title
	quest.Description = in.Description
	quest.Points = in.Points
	quest.Difficulty = in.Difficulty
	quest.BadgeID = badgeID
	if err := s.DB.Save(quest).Error; err != nil {
		return nil, fmt.Errorf("updating quest %s: %w", id, err)
	}
	return quest, nil
}

// DeleteQuest removes a quest from the catalog. Completed sets keep the id;
// profile history just stops showing it.
func (s *QuestService) DeleteQuest(id string) error {
	res := s.DB.Delete(&models.Quest{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("quest %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetQuest resolves a quest by id or slug.
func (s *QuestService) GetQuest(idOrSlug string) (*models.Quest, error) {
	column := "slug"
	if _, err := uuid.Parse(idOrSlug); err == nil {
		column = "id"
	}
	var quest models.Quest
	if err := s.DB.Where(column+" = ?", idOrSlug).First(&quest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("quest %s: %w", idOrSlug, ErrNotFound)
		}
		return nil, err
	}
	return &quest, nil
}

// ListQuests returns the catalog, newest first.
func (s *QuestService) ListQuests() ([]models.Quest, error) {
	var quests []models.Quest
	err := s.DB.Order("created_at DESC").Find(&quests).Error
	return quests, err
}

// resolveBadge validates an optional badge reference.
func (s *QuestService) resolveBadge(badgeID string) (*string, error) {
	if badgeID == "" {
		return nil, nil
	}
	var badge models.Badge
	if err := s.DB.First(&badge, "id = ?", badgeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("badge %s: %w", badgeID, ErrNotFound)
		}
		return nil, err
	}
	return &badge.ID, nil
}
