package services

import (
	"errors"
	"testing"

	"quest-portal-system/models"

	"gorm.io/gorm"
)

type testFixtures struct {
	db    *gorm.DB
	badge *models.Badge
	quest *models.Quest
	user  *models.PortalUser
}

func setupSubmissionTest(t *testing.T) (*SubmissionService, *ProgressionService, *testFixtures) {
	t.Helper()
	db := newTestDB(t)
	prog := NewProgressionService(db)
	svc := NewSubmissionService(db, prog)

	badge := seedBadge(t, db)
	quest := seedQuest(t, db, 30, &badge.ID)
	user := seedUser(t, db, 0, false)

	return svc, prog, &testFixtures{db: db, badge: badge, quest: quest, user: user}
}

func TestApproveGrantsRewardsAndMarksApproved(t *testing.T) {
	svc, _, fx := setupSubmissionTest(t)
	sub := seedSubmission(t, fx.db, fx.user.ExternalUserID, fx.quest.ID, models.SubmissionPending)

	approved, err := svc.Approve(sub.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != models.SubmissionApproved {
		t.Errorf("status = %s, want approved", approved.Status)
	}
	if approved.ReviewedAt == nil {
		t.Error("ReviewedAt not set")
	}

	var user models.PortalUser
	if err := fx.db.Where("external_user_id = ?", fx.user.ExternalUserID).First(&user).Error; err != nil {
		t.Fatalf("reloading user: %v", err)
	}
	if user.Points != 30 {
		t.Errorf("points = %d, want 30", user.Points)
	}
	if !user.Badges.Contains(fx.badge.ID) {
		t.Errorf("badge %s not granted", fx.badge.ID)
	}
	if !user.CompletedQuests.Contains(fx.quest.ID) {
		t.Errorf("quest %s not in completed set", fx.quest.ID)
	}
}

func TestApproveAlreadyProcessedConflicts(t *testing.T) {
	svc, _, fx := setupSubmissionTest(t)
	sub := seedSubmission(t, fx.db, fx.user.ExternalUserID, fx.quest.ID, models.SubmissionPending)

	if _, err := svc.Approve(sub.ID); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	_, err := svc.Approve(sub.ID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("second approve err = %v, want ErrConflict", err)
	}

	// rewards must not have been re-applied
	var user models.PortalUser
	if err := fx.db.Where("external_user_id = ?", fx.user.ExternalUserID).First(&user).Error; err != nil {
		t.Fatalf("reloading user: %v", err)
	}
	if user.Points != 30 {
		t.Errorf("points = %d after double approve, want 30", user.Points)
	}
}

func TestApproveMissingQuestFailsClosed(t *testing.T) {
	svc, _, fx := setupSubmissionTest(t)
	sub := seedSubmission(t, fx.db, fx.user.ExternalUserID, fx.quest.ID, models.SubmissionPending)

	if err := fx.db.Delete(&models.Quest{}, "id = ?", fx.quest.ID).Error; err != nil {
		t.Fatalf("deleting quest: %v", err)
	}

	_, err := svc.Approve(sub.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	// the user record is untouched and the submission stays pending (re-approvable)
	var user models.PortalUser
	if err := fx.db.Where("external_user_id = ?", fx.user.ExternalUserID).First(&user).Error; err != nil {
		t.Fatalf("reloading user: %v", err)
	}
	if user.Points != 0 || len(user.Badges) != 0 || len(user.CompletedQuests) != 0 {
		t.Errorf("user mutated on failed approval: %+v", user)
	}
	var reloaded models.Submission
	if err := fx.db.First(&reloaded, "id = ?", sub.ID).Error; err != nil {
		t.Fatalf("reloading submission: %v", err)
	}
	if reloaded.Status != models.SubmissionPending {
		t.Errorf("status = %s, want pending", reloaded.Status)
	}
}

func TestApproveMissingUserLeavesSubmissionPending(t *testing.T) {
	svc, _, fx := setupSubmissionTest(t)
	sub := seedSubmission(t, fx.db, "no-such-user", fx.quest.ID, models.SubmissionPending)

	_, err := svc.Approve(sub.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	var reloaded models.Submission
	if err := fx.db.First(&reloaded, "id = ?", sub.ID).Error; err != nil {
		t.Fatalf("reloading submission: %v", err)
	}
	if reloaded.Status != models.SubmissionPending {
		t.Errorf("status = %s, want pending", reloaded.Status)
	}
}

func TestRejectNeverTouchesUser(t *testing.T) {
	svc, _, fx := setupSubmissionTest(t)
	sub := seedSubmission(t, fx.db, fx.user.ExternalUserID, fx.quest.ID, models.SubmissionPending)

	rejected, err := svc.Reject(sub.ID)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != models.SubmissionRejected || rejected.ReviewedAt == nil {
		t.Errorf("rejected = %+v", rejected)
	}

	var user models.PortalUser
	if err := fx.db.Where("external_user_id = ?", fx.user.ExternalUserID).First(&user).Error; err != nil {
		t.Fatalf("reloading user: %v", err)
	}
	if user.Points != 0 || len(user.Badges) != 0 || len(user.CompletedQuests) != 0 {
		t.Errorf("user mutated by reject: %+v", user)
	}
}

func TestRejectThenApproveConflicts(t *testing.T) {
	svc, _, fx := setupSubmissionTest(t)
	sub := seedSubmission(t, fx.db, fx.user.ExternalUserID, fx.quest.ID, models.SubmissionPending)

	if _, err := svc.Reject(sub.ID); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if _, err := svc.Approve(sub.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("approve after reject err = %v, want ErrConflict", err)
	}
}

func TestCreateSubmissionBlockedByPendingOrApproved(t *testing.T) {
	svc, _, fx := setupSubmissionTest(t)

	first, err := svc.CreateSubmission(fx.user.ExternalUserID, fx.quest.ID, "https://cdn.example.com/a.png", "a.png", "")
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	// pending blocks
	_, err = svc.CreateSubmission(fx.user.ExternalUserID, fx.quest.ID, "https://cdn.example.com/b.png", "b.png", "")
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("err = %v, want ErrDuplicateSubmission", err)
	}

	// approved still blocks
	if _, err := svc.Approve(first.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	_, err = svc.CreateSubmission(fx.user.ExternalUserID, fx.quest.ID, "https://cdn.example.com/c.png", "c.png", "")
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("err after approval = %v, want ErrDuplicateSubmission", err)
	}
}

func TestCreateSubmissionAllowedAfterRejection(t *testing.T) {
	svc, _, fx := setupSubmissionTest(t)

	first, err := svc.CreateSubmission(fx.user.ExternalUserID, fx.quest.ID, "https://cdn.example.com/a.png", "a.png", "try 1")
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Reject(first.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	second, err := svc.CreateSubmission(fx.user.ExternalUserID, fx.quest.ID, "https://cdn.example.com/b.png", "b.png", "try 2")
	if err != nil {
		t.Fatalf("create after rejection: %v", err)
	}
	if second.Status != models.SubmissionPending {
		t.Errorf("status = %s, want pending", second.Status)
	}
}

func TestCreateSubmissionUnknownQuest(t *testing.T) {
	svc, _, fx := setupSubmissionTest(t)
	_, err := svc.CreateSubmission(fx.user.ExternalUserID, "00000000-0000-0000-0000-000000000000", "https://cdn.example.com/a.png", "a.png", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListForReviewFiltersByStatus(t *testing.T) {
	svc, _, fx := setupSubmissionTest(t)
	otherQuest := seedQuest(t, fx.db, 10, nil)

	pending := seedSubmission(t, fx.db, fx.user.ExternalUserID, fx.quest.ID, models.SubmissionPending)
	seedSubmission(t, fx.db, fx.user.ExternalUserID, otherQuest.ID, models.SubmissionRejected)

	items, err := svc.ListForReview(models.SubmissionPending, 1, 20)
	if err != nil {
		t.Fatalf("ListForReview: %v", err)
	}
	if len(items) != 1 || items[0].ID != pending.ID {
		t.Fatalf("items = %+v, want just the pending one", items)
	}
	if items[0].UserName != fx.user.Name || items[0].QuestTitle != fx.quest.Title || items[0].QuestPoints != fx.quest.Points {
		t.Errorf("review context = %q/%q/%d", items[0].UserName, items[0].QuestTitle, items[0].QuestPoints)
	}

	all, err := svc.ListForReview("", 1, 20)
	if err != nil {
		t.Fatalf("ListForReview(all): %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all = %d items, want 2", len(all))
	}
}
