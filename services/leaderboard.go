package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"quest-portal-system/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gorm.io/gorm"
)

const (
	leaderboardTopKey    = "portal:leaderboard:top"
	leaderboardScoresKey = "portal:leaderboard:scores"
	leaderboardTTL       = 5 * time.Minute
	leaderboardTopSize   = 50
)

// pointsPrinter renders balances with thousands separators for display.
var pointsPrinter = message.NewPrinter(language.English)

// LeaderboardEntry is one ranked row. Admin accounts are excluded from the
// board entirely.
type LeaderboardEntry struct {
	Rank           int    `json:"rank"`
	ExternalUserID string `json:"external_user_id"`
	Name           string `json:"name"`
	Major          string `json:"major,omitempty"`
	Year           string `json:"year,omitempty"`
	Points         int64  `json:"points"`
	PointsDisplay  string `json:"points_display"`
	Level          int    `json:"level"`
	BadgeCount     int    `json:"badge_count"`
}

// UserRank is the requesting user's own position on the board.
type UserRank struct {
	Rank       int     `json:"rank"`
	Points     int64   `json:"points"`
	TotalUsers int64   `json:"total_users"`
	Percentile float64 `json:"percentile"`
}

type LeaderboardService struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewLeaderboardService(db *gorm.DB, rdb *redis.Client) *LeaderboardService {
	return &LeaderboardService{DB: db, Redis: rdb}
}

// Top returns the top-N board, serving the Redis copy when warm and falling
// back to Postgres (and re-priming the cache) when cold.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit < 1 || limit > leaderboardTopSize {
		limit = leaderboardTopSize
	}

	if s.Redis != nil {
		raw, err := s.Redis.Get(ctx, leaderboardTopKey).Bytes()
		if err == nil {
			var entries []LeaderboardEntry
			if err := json.Unmarshal(raw, &entries); err == nil {
				if len(entries) > limit {
					entries = entries[:limit]
				}
				return entries, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("⚠️ Leaderboard cache read failed, serving from DB: %v", err)
		}
	}

	entries, err := s.loadFromDB(leaderboardTopSize)
	if err != nil {
		return nil, err
	}
	s.prime(ctx, entries)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// RankFor returns the caller's own rank. Served from the scores ZSET when
// warm, otherwise computed from the DB.
func (s *LeaderboardService) RankFor(ctx context.Context, externalUserID string) (*UserRank, error) {
	if s.Redis != nil {
		rank, err := s.Redis.ZRevRank(ctx, leaderboardScoresKey, externalUserID).Result()
		if err == nil {
			score, err := s.Redis.ZScore(ctx, leaderboardScoresKey, externalUserID).Result()
			if err == nil {
				total, err := s.Redis.ZCard(ctx, leaderboardScoresKey).Result()
				if err == nil && total > 0 {
					return &UserRank{
						Rank:       int(rank) + 1,
						Points:     int64(score),
						TotalUsers: total,
						Percentile: float64(rank+1) / float64(total) * 100,
					}, nil
				}
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("⚠️ Leaderboard rank read failed, serving from DB: %v", err)
		}
	}
	return s.rankFromDB(externalUserID)
}

// Refresh rebuilds both cache keys from the DB. Called by the scheduler and
// safe to call concurrently; last writer wins.
func (s *LeaderboardService) Refresh(ctx context.Context) error {
	if s.Redis == nil {
		return nil
	}

	entries, err := s.loadFromDB(leaderboardTopSize)
	if err != nil {
		return fmt.Errorf("rebuilding leaderboard: %w", err)
	}
	s.prime(ctx, entries)

	// Full score set for rank lookups, not just the visible top.
	var users []models.PortalUser
	if err := s.DB.Select("external_user_id", "points").
		Where("is_admin = ?", false).
		Find(&users).Error; err != nil {
		return fmt.Errorf("rebuilding score set: %w", err)
	}
	zs := make([]redis.Z, 0, len(users))
	for _, u := range users {
		zs = append(zs, redis.Z{Score: float64(u.Points), Member: u.ExternalUserID})
	}

	pipe := s.Redis.TxPipeline()
	pipe.Del(ctx, leaderboardScoresKey)
	if len(zs) > 0 {
		pipe.ZAdd(ctx, leaderboardScoresKey, zs...)
	}
	pipe.Expire(ctx, leaderboardScoresKey, leaderboardTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("writing score set: %w", err)
	}
	return nil
}

// Invalidate drops the cached board so the next read rebuilds it. Called
// after every approval.
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, leaderboardTopKey, leaderboardScoresKey).Err(); err != nil {
		log.Printf("⚠️ Leaderboard invalidation failed: %v", err)
	}
}

func (s *LeaderboardService) prime(ctx context.Context, entries []LeaderboardEntry) {
	if s.Redis == nil {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, leaderboardTopKey, raw, leaderboardTTL).Err(); err != nil {
		log.Printf("⚠️ Leaderboard cache write failed: %v", err)
	}
}

func (s *LeaderboardService) loadFromDB(limit int) ([]LeaderboardEntry, error) {
	var users []models.PortalUser
	err := s.DB.Where("is_admin = ?", false).
		Order("points DESC, created_at ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, LeaderboardEntry{
			Rank:           i + 1,
			ExternalUserID: u.ExternalUserID,
			Name:           u.Name,
			Major:          u.Major,
			Year:           u.Year,
			Points:         u.Points,
			PointsDisplay:  pointsPrinter.Sprintf("%d", u.Points),
			Level:          Level(u.Points),
			BadgeCount:     len(u.Badges),
		})
	}
	return entries, nil
}

func (s *LeaderboardService) rankFromDB(externalUserID string) (*UserRank, error) {
	var user models.PortalUser
	if err := s.DB.Where("external_user_id = ?", externalUserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account %s: %w", externalUserID, ErrNotFound)
		}
		return nil, err
	}

	var ahead, total int64
	if err := s.DB.Model(&models.PortalUser{}).
		Where("is_admin = ? AND points > ?", false, user.Points).
		Count(&ahead).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.PortalUser{}).
		Where("is_admin = ?", false).
		Count(&total).Error; err != nil {
		return nil, err
	}
	if total == 0 {
		total = 1
	}
	return &UserRank{
		Rank:       int(ahead) + 1,
		Points:     user.Points,
		TotalUsers: total,
		Percentile: float64(ahead+1) / float64(total) * 100,
	}, nil
}
