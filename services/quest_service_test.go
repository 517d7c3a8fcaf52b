package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"quest-portal-system/models"
)

func TestCreateQuestSlugAndBadgeValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestService(db)
	badge := seedBadge(t, db)

	quest, err := svc.CreateQuest(QuestInput{
		Title:       "Attend the Research Colloquium!",
		Description: "Upload a photo of your attendance sheet.",
		Points:      30,
		Difficulty:  models.DifficultyMedium,
		BadgeID:     badge.ID,
	})
	if err != nil {
		t.Fatalf("CreateQuest: %v", err)
	}
	if !strings.HasPrefix(quest.Slug, "attend-the-research-colloquium-") {
		t.Errorf("slug = %q", quest.Slug)
	}
	if quest.BadgeID == nil || *quest.BadgeID != badge.ID {
		t.Errorf("badge id = %v, want %s", quest.BadgeID, badge.ID)
	}

	// unknown badge refused
	_, err = svc.CreateQuest(QuestInput{
		Title:       "Another",
		Description: "x",
		Points:      10,
		Difficulty:  models.DifficultyEasy,
		BadgeID:     "11111111-1111-1111-1111-111111111111",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for unknown badge", err)
	}
}

func TestGetQuestByIDOrSlug(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestService(db)
	quest := seedQuest(t, db, 10, nil)

	byID, err := svc.GetQuest(quest.ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	bySlug, err := svc.GetQuest(quest.Slug)
	if err != nil {
		t.Fatalf("by slug: %v", err)
	}
	if byID.ID != quest.ID || bySlug.ID != quest.ID {
		t.Errorf("lookups disagree: %s / %s", byID.ID, bySlug.ID)
	}

	if _, err := svc.GetQuest("no-such-quest"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateQuestEditsInPlace(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestService(db)
	quest := seedQuest(t, db, 10, nil)

	updated, err := svc.UpdateQuest(quest.ID, QuestInput{
		Title:       "Renamed Quest",
		Description: "New text",
		Points:      50,
		Difficulty:  models.DifficultyHard,
	})
	if err != nil {
		t.Fatalf("UpdateQuest: %v", err)
	}
	if updated.Title != "Renamed Quest" || updated.Points != 50 || updated.Difficulty != models.DifficultyHard {
		t.Errorf("updated = %+v", updated)
	}
	// slug is assigned at creation and sticks through renames
	if updated.Slug != quest.Slug {
		t.Errorf("slug changed on update: %q -> %q", quest.Slug, updated.Slug)
	}
}

func TestDeleteQuest(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestService(db)
	quest := seedQuest(t, db, 10, nil)

	if err := svc.DeleteQuest(quest.ID); err != nil {
		t.Fatalf("DeleteQuest: %v", err)
	}
	if err := svc.DeleteQuest(quest.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestDeleteBadgeDetachesQuests(t *testing.T) {
	db := newTestDB(t)
	badgeSvc := NewBadgeService(db)
	badge := seedBadge(t, db)
	quest := seedQuest(t, db, 10, &badge.ID)

	if err := badgeSvc.DeleteBadge(badge.ID); err != nil {
		t.Fatalf("DeleteBadge: %v", err)
	}

	var reloaded models.Quest
	if err := db.First(&reloaded, "id = ?", quest.ID).Error; err != nil {
		t.Fatalf("reloading quest: %v", err)
	}
	if reloaded.BadgeID != nil {
		t.Errorf("quest still references deleted badge: %v", *reloaded.BadgeID)
	}
}

func TestListQuestsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestService(db)

	first := seedQuest(t, db, 10, nil)
	second := seedQuest(t, db, 20, nil)
	// force distinct creation order even with coarse clocks
	db.Model(&models.Quest{}).Where("id = ?", first.ID).Update("created_at", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	db.Model(&models.Quest{}).Where("id = ?", second.ID).Update("created_at", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	quests, err := svc.ListQuests()
	if err != nil {
		t.Fatalf("ListQuests: %v", err)
	}
	if len(quests) != 2 || quests[0].ID != second.ID {
		t.Errorf("order = %v", []string{quests[0].ID, quests[1].ID})
	}
}
