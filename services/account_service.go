package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"quest-portal-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountService struct {
	DB *gorm.DB

	// Email domains whose signups get the admin flag. Policy input from the
	// environment, checked once at account creation.
	adminDomains []string
}

func NewAccountService(db *gorm.DB, adminDomains []string) *AccountService {
	cleaned := make([]string, 0, len(adminDomains))
	for _, d := range adminDomains {
		d = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(d, "@")))
		if d != "" {
			cleaned = append(cleaned, d)
		}
	}
	return &AccountService{DB: db, adminDomains: cleaned}
}

// IsPrivileged reports whether an email belongs to an admin domain.
func (s *AccountService) IsPrivileged(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, d := range s.adminDomains {
		if domain == d {
			return true
		}
	}
	return false
}

// EnsureAccount returns the local account for an identity, creating it on
// first contact (idempotent). The admin flag is decided here, once, from the
// email domain; later calls never change it even if the email changes.
func (s *AccountService) EnsureAccount(externalUserID, name, email string) (*models.PortalUser, error) {
	var user models.PortalUser
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if name == "" {
			name = "Student"
		}
		user = models.PortalUser{
			ID:              uuid.NewString(),
			ExternalUserID:  externalUserID,
			Name:            name,
			Email:           email,
			Badges:          models.IDSet{},
			CompletedQuests: models.IDSet{},
			IsAdmin:         s.IsPrivileged(email),
		}
		if err := s.DB.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("creating account %s: %w", externalUserID, err)
		}
		log.Printf("👤 Account created: external_id=%s admin=%t", externalUserID, user.IsAdmin)
		return &user, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByExternalID fetches a single account.
func (s *AccountService) GetByExternalID(externalUserID string) (*models.PortalUser, error) {
	var user models.PortalUser
	if err := s.DB.Where("external_user_id = ?", externalUserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account %s: %w", externalUserID, ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// ProfileUpdate carries the fields a student may edit themselves.
type ProfileUpdate struct {
	Name      string `json:"name" validate:"required,max=120"`
	StudentID string `json:"student_id" validate:"max=64"`
	Major     string `json:"major" validate:"max=120"`
	Year      string `json:"year" validate:"max=16"`
}

// UpdateProfile edits the self-service profile fields. Points, badges,
// completed quests and the admin flag are not reachable from here.
func (s *AccountService) UpdateProfile(externalUserID string, upd ProfileUpdate) (*models.PortalUser, error) {
	user, err := s.GetByExternalID(externalUserID)
	if err != nil {
		return nil, err
	}

	res := s.DB.Model(&models.PortalUser{}).
		Where("external_user_id = ?", externalUserID).
		Updates(map[string]interface{}{
			"name":       upd.Name,
			"student_id": upd.StudentID,
			"major":      upd.Major,
			"year":       upd.Year,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("updating profile %s: %w", externalUserID, res.Error)
	}

	user.Name = upd.Name
	user.StudentID = upd.StudentID
	user.Major = upd.Major
	user.Year = upd.Year
	return user, nil
}
