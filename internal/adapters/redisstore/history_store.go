package redisstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/viralforge/view-reward-engine/internal/domain"
)

const (
	videoViewHistoryCap  = 10_000
	userViewHistoryCap   = 1_000
	userRewardHistoryCap = 1_000
	creatorRewardCap     = 10_000
	userViewHistoryTTL   = 90 * 24 * time.Hour
)

// HistoryStore keeps most-recent-first, capped view and reward logs. Writes
// run on detached goroutines; a dropped entry never affects counting.
type HistoryStore struct {
	client *redis.Client
	logger *slog.Logger
}

func NewHistoryStore(client *redis.Client, logger *slog.Logger) *HistoryStore {
	return &HistoryStore{client: client, logger: logger}
}

// videoViewEntry omits video_id: it is implied by the list key and
// re-attached on read.
type videoViewEntry struct {
	UserID            string  `json:"user_id"`
	Timestamp         int64   `json:"timestamp"`
	DurationWatched   float64 `json:"duration_watched"`
	PercentageWatched float64 `json:"percentage_watched"`
}

// userViewEntry likewise omits user_id.
type userViewEntry struct {
	VideoID           string  `json:"video_id"`
	Timestamp         int64   `json:"timestamp"`
	DurationWatched   float64 `json:"duration_watched"`
	PercentageWatched float64 `json:"percentage_watched"`
}

func (s *HistoryStore) RecordView(_ context.Context, rec domain.ViewRecord) {
	go func() {
		ctx := context.Background()

		videoJSON, err := json.Marshal(videoViewEntry{
			UserID:            rec.UserID,
			Timestamp:         rec.Timestamp,
			DurationWatched:   rec.DurationWatched,
			PercentageWatched: rec.PercentageWatched,
		})
		if err != nil {
			s.logger.Error("encode view record", "error", err)
			return
		}
		videoKey := videoViewHistoryKey(rec.VideoID)
		if err := s.client.LPush(ctx, videoKey, videoJSON).Err(); err != nil {
			s.logger.Warn("record video view history failed", "video_id", rec.VideoID, "error", err)
		}
		_ = s.client.LTrim(ctx, videoKey, 0, videoViewHistoryCap-1).Err()

		userJSON, err := json.Marshal(userViewEntry{
			VideoID:           rec.VideoID,
			Timestamp:         rec.Timestamp,
			DurationWatched:   rec.DurationWatched,
			PercentageWatched: rec.PercentageWatched,
		})
		if err != nil {
			return
		}
		userKey := userViewHistoryKey(rec.UserID)
		if err := s.client.LPush(ctx, userKey, userJSON).Err(); err != nil {
			s.logger.Warn("record user view history failed", "user_id", rec.UserID, "error", err)
		}
		_ = s.client.LTrim(ctx, userKey, 0, userViewHistoryCap-1).Err()
		_ = s.client.Expire(ctx, userKey, userViewHistoryTTL).Err()
	}()
}

func (s *HistoryStore) RecordReward(_ context.Context, creatorID string, rec domain.RewardRecord) {
	raw, err := json.Marshal(rec)
	if err != nil {
		s.logger.Error("encode reward record", "error", err)
		return
	}
	go func() {
		ctx := context.Background()
		userKey := userRewardHistoryKey(creatorID)
		creatorKey := creatorRewardHistoryKey(creatorID)
		if err := s.client.LPush(ctx, userKey, raw).Err(); err != nil {
			s.logger.Warn("record reward history failed", "creator_id", creatorID, "error", err)
		}
		_ = s.client.LPush(ctx, creatorKey, raw).Err()
		_ = s.client.LTrim(ctx, userKey, 0, userRewardHistoryCap-1).Err()
		_ = s.client.LTrim(ctx, creatorKey, 0, creatorRewardCap-1).Err()
	}()
}

func (s *HistoryStore) VideoViews(ctx context.Context, videoID string, limit int) ([]domain.ViewRecord, error) {
	items, err := s.listRange(ctx, videoViewHistoryKey(videoID), limit)
	if err != nil {
		return nil, err
	}
	records := make([]domain.ViewRecord, 0, len(items))
	for _, item := range items {
		var entry videoViewEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		records = append(records, domain.ViewRecord{
			UserID:            entry.UserID,
			VideoID:           videoID,
			Timestamp:         entry.Timestamp,
			DurationWatched:   entry.DurationWatched,
			PercentageWatched: entry.PercentageWatched,
		})
	}
	return records, nil
}

func (s *HistoryStore) UserViews(ctx context.Context, userID string, limit int) ([]domain.ViewRecord, error) {
	items, err := s.listRange(ctx, userViewHistoryKey(userID), limit)
	if err != nil {
		return nil, err
	}
	records := make([]domain.ViewRecord, 0, len(items))
	for _, item := range items {
		var entry userViewEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		records = append(records, domain.ViewRecord{
			UserID:            userID,
			VideoID:           entry.VideoID,
			Timestamp:         entry.Timestamp,
			DurationWatched:   entry.DurationWatched,
			PercentageWatched: entry.PercentageWatched,
		})
	}
	return records, nil
}

func (s *HistoryStore) UserRewards(ctx context.Context, userID string, limit int) ([]domain.RewardRecord, error) {
	return s.rewardRange(ctx, userRewardHistoryKey(userID), limit)
}

func (s *HistoryStore) CreatorRewards(ctx context.Context, creatorID string, limit int) ([]domain.RewardRecord, error) {
	return s.rewardRange(ctx, creatorRewardHistoryKey(creatorID), limit)
}

func (s *HistoryStore) rewardRange(ctx context.Context, key string, limit int) ([]domain.RewardRecord, error) {
	items, err := s.listRange(ctx, key, limit)
	if err != nil {
		return nil, err
	}
	records := make([]domain.RewardRecord, 0, len(items))
	for _, item := range items {
		var rec domain.RewardRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *HistoryStore) listRange(ctx context.Context, key string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	items, err := s.client.LRange(ctx, key, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}
	return items, nil
}
