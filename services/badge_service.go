package services

import (
	"errors"
	"fmt"

	"quest-portal-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BadgeService struct {
	DB *gorm.DB
}

func NewBadgeService(db *gorm.DB) *BadgeService {
	return &BadgeService{DB: db}
}

// BadgeInput is the admin create/update payload.
type BadgeInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"required"`
	IconURL     string `json:"icon_url" validate:"required"`
	Color       string `json:"color" validate:"required,max=16"`
}

func (s *BadgeService) CreateBadge(in BadgeInput) (*models.Badge, error) {
	badge := &models.Badge{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		IconURL:     in.IconURL,
		Color:       in.Color,
	}
	if err := s.DB.Create(badge).Error; err != nil {
		return nil, fmt.Errorf("creating badge: %w", err)
	}
	return badge, nil
}

func (s *BadgeService) UpdateBadge(id string, in BadgeInput) (*models.Badge, error) {
	badge, err := s.GetBadge(id)
	if err != nil {
		return nil, err
	}
	badge.Name = in.Name
	badge.Description = in.Description
	badge.IconURL = in.IconURL
	badge.Color = in.Color
	if err := s.DB.Save(badge).Error; err != nil {
		return nil, fmt.Errorf("updating badge %s: %w", id, err)
	}
	return badge, nil
}

// DeleteBadge removes a badge. Quests referencing it are detached rather than
// deleted; user badge sets keep the dangling id and profiles skip it.
func (s *BadgeService) DeleteBadge(id string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Badge{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("badge %s: %w", id, ErrNotFound)
		}
		return tx.Model(&models.Quest{}).
			Where("badge_id = ?", id).
			Update("badge_id", nil).Error
	})
}

func (s *BadgeService) GetBadge(id string) (*models.Badge, error) {
	var badge models.Badge
	if err := s.DB.First(&badge, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("badge %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &badge, nil
}

func (s *BadgeService) ListBadges() ([]models.Badge, error) {
	var badges []models.Badge
	err := s.DB.Order("created_at DESC").Find(&badges).Error
	return badges, err
}
