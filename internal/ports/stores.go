package ports

import (
	"context"
	"time"

	"github.com/viralforge/view-reward-engine/internal/domain"
)

// ViewCounter is the correctness-critical counting primitive. TrackView for a
// logged-in caller must be atomic with respect to concurrent callers for the
// same video: the config-version reset, the uniqueness check and the counter
// increments may not interleave.
type ViewCounter interface {
	// TrackView returns the new unique-view count when the view was newly
	// counted, and nil for duplicates and non-logged-in callers.
	TrackView(ctx context.Context, videoID, userID string, isLoggedIn bool) (*uint64, error)

	GetViewCount(ctx context.Context, videoID string) (uint64, error)
	GetLastMilestone(ctx context.Context, videoID string) (uint64, error)
	SetLastMilestone(ctx context.Context, videoID string, milestone uint64) error
	GetTotalCountLoggedIn(ctx context.Context, videoID string) (uint64, error)
	GetTotalCountAll(ctx context.Context, videoID string) (uint64, error)
	GetBulkStats(ctx context.Context, videoIDs []string) (map[string]domain.VideoStats, error)
}

// ConfigStore persists the single global reward configuration.
type ConfigStore interface {
	// Get initialises defaults on first read and transparently migrates
	// the legacy flat schema.
	Get(ctx context.Context) (domain.RewardConfig, error)
	// Update atomically bumps the global version counter and stores the
	// config stamped with the new version, returning the stored record.
	Update(ctx context.Context, cfg domain.RewardConfig) (domain.RewardConfig, error)
}

// HistoryStore keeps bounded, best-effort append-only view/reward logs.
// Writes are detached; losing an entry is acceptable.
type HistoryStore interface {
	RecordView(ctx context.Context, rec domain.ViewRecord)
	RecordReward(ctx context.Context, creatorID string, rec domain.RewardRecord)

	VideoViews(ctx context.Context, videoID string, limit int) ([]domain.ViewRecord, error)
	UserViews(ctx context.Context, userID string, limit int) ([]domain.ViewRecord, error)
	UserRewards(ctx context.Context, userID string, limit int) ([]domain.RewardRecord, error)
	CreatorRewards(ctx context.Context, creatorID string, limit int) ([]domain.RewardRecord, error)
}

// FraudGate tracks per-creator reward frequency and shadow bans.
type FraudGate interface {
	// CheckFraudPatterns records the event in the creator's sliding window
	// asynchronously and synchronously reports whether the creator is
	// already shadow-banned.
	CheckFraudPatterns(ctx context.Context, creatorID string, threshold int, banDuration time.Duration) domain.FraudCheck
	IsShadowBanned(ctx context.Context, creatorID string) (bool, error)
	ShadowBan(ctx context.Context, creatorID string, duration time.Duration) error
	RemoveShadowBan(ctx context.Context, creatorID string) error
}

// UserVerifier answers whether a user id belongs to a registered account.
type UserVerifier interface {
	IsRegisteredUser(ctx context.Context, userID string) (bool, error)
}
