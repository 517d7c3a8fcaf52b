// workers/account_sync_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"quest-portal-system/models"
	"quest-portal-system/services"

	"gorm.io/gorm"
)

// AccountSyncWorker keeps the local account mirror's profile fields (name,
// email) in step with the identity service. It only updates rows that
// already exist: accounts are created on first authenticated touch, where
// the admin flag is decided, and the worker never writes points, badges,
// completed quests or the admin flag.
type AccountSyncWorker struct {
	db           *gorm.DB
	identity     *services.IdentityClient
	endpointPath string // e.g. "/api/v1/public/profiles"
	interval     time.Duration
}

func NewAccountSyncWorker(db *gorm.DB, identity *services.IdentityClient, endpointPath string) *AccountSyncWorker {
	return &AccountSyncWorker{
		db:           db,
		identity:     identity,
		endpointPath: endpointPath,
		interval:     1 * time.Minute,
	}
}

func (w *AccountSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Account Sync Worker (identity service → portal_users)…")
	go w.run(ctx)
}

func (w *AccountSyncWorker) run(ctx context.Context) {
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial account sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.lastSyncTime()); err != nil {
				log.Printf("❌ Account sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Account Sync Worker stopped")
			return
		}
	}
}

// lastSyncTime finds the most recent UpdatedAt in the local mirror.
func (w *AccountSyncWorker) lastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM portal_users WHERE deleted_at IS NULL").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// syncBatch fetches profile changes since the given time and applies them.
func (w *AccountSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	profiles, err := w.identity.FetchProfileChanges(ctx, w.endpointPath, since)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		return nil
	}

	var updated, skipped, failed int
	for _, p := range profiles {
		res := w.db.Model(&models.PortalUser{}).
			Where("external_user_id = ?", p.ExternalID).
			Updates(map[string]interface{}{"name": p.Name, "email": p.Email})
		switch {
		case res.Error != nil:
			failed++
			log.Printf("[SYNC] ⚠️ Failed to update account (external_id=%q): %v", p.ExternalID, res.Error)
		case res.RowsAffected == 0:
			// no local account yet; it will be created with current data on first touch
			skipped++
		default:
			updated++
		}
	}

	log.Printf("[SYNC] ✅ Synced %d profile change(s): %d updated, %d skipped, %d failed",
		len(profiles), updated, skipped, failed)
	return nil
}
