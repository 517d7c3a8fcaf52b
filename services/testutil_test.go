package services

import (
	"path/filepath"
	"testing"

	"quest-portal-system/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a throwaway sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "portal.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.PortalUser{},
		&models.Quest{},
		&models.Badge{},
		&models.Submission{},
	); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, points int64, isAdmin bool) *models.PortalUser {
	t.Helper()
	user := &models.PortalUser{
		ID:              uuid.NewString(),
		ExternalUserID:  uuid.NewString(),
		Name:            "Test Student",
		Email:           "student@example.edu",
		Points:          points,
		Badges:          models.IDSet{},
		CompletedQuests: models.IDSet{},
		IsAdmin:         isAdmin,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return user
}

func seedQuest(t *testing.T, db *gorm.DB, points int64, badgeID *string) *models.Quest {
	t.Helper()
	id := uuid.NewString()
	quest := &models.Quest{
		ID:          id,
		Slug:        "test-quest-" + id[:8],
		Title:       "Test Quest",
		Description: "Do the thing",
		Points:      points,
		Difficulty:  models.DifficultyEasy,
		BadgeID:     badgeID,
	}
	if err := db.Create(quest).Error; err != nil {
		t.Fatalf("seeding quest: %v", err)
	}
	return quest
}

func seedBadge(t *testing.T, db *gorm.DB) *models.Badge {
	t.Helper()
	badge := &models.Badge{
		ID:          uuid.NewString(),
		Name:        "Test Badge",
		Description: "For testing",
		IconURL:     "https://cdn.example.com/badge.png",
		Color:       "#667eea",
	}
	if err := db.Create(badge).Error; err != nil {
		t.Fatalf("seeding badge: %v", err)
	}
	return badge
}

func seedSubmission(t *testing.T, db *gorm.DB, userID, questID string, status models.SubmissionStatus) *models.Submission {
	t.Helper()
	sub := &models.Submission{
		ID:             uuid.NewString(),
		ExternalUserID: userID,
		QuestID:        questID,
		FileURL:        "https://cdn.example.com/proof.png",
		FileName:       "proof.png",
		Status:         status,
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("seeding submission: %v", err)
	}
	return sub
}
