package application

import (
	"context"
	"fmt"
	"time"

	"github.com/viralforge/view-reward-engine/internal/domain"
)

// maxBulkStatsBatch bounds one bulk-stats pipeline round trip.
const maxBulkStatsBatch = 100

// VideoStatsEntry pairs a video id with its counter projection; bulk reads
// preserve the request order. NextMilestoneAt is zero when the config is
// unreadable.
type VideoStatsEntry struct {
	VideoID         string
	Stats           domain.VideoStats
	NextMilestoneAt uint64
}

func (s *Service) GetConfig(ctx context.Context) (domain.RewardConfig, error) {
	return s.configs.Get(ctx)
}

func (s *Service) UpdateConfig(ctx context.Context, cfg domain.RewardConfig) (domain.RewardConfig, error) {
	if err := cfg.Validate(); err != nil {
		return domain.RewardConfig{}, err
	}
	updated, err := s.configs.Update(ctx, cfg)
	if err != nil {
		return domain.RewardConfig{}, err
	}
	s.logger.InfoContext(ctx, "reward config updated",
		"config_version", updated.ConfigVersion, "view_milestone", updated.ViewMilestone,
		"reward_mode", string(updated.RewardMode.Type), "token", string(updated.RewardToken))
	return updated, nil
}

func (s *Service) GetViewCount(ctx context.Context, videoID string) (uint64, error) {
	if videoID == "" {
		return 0, domain.ErrInvalidInput
	}
	return s.views.GetViewCount(ctx, videoID)
}

// GetVideoStats returns the full counter projection for one video.
func (s *Service) GetVideoStats(ctx context.Context, videoID string) (VideoStatsEntry, error) {
	if videoID == "" {
		return VideoStatsEntry{}, domain.ErrInvalidInput
	}
	entries, err := s.GetBulkVideoStats(ctx, []string{videoID})
	if err != nil {
		return VideoStatsEntry{}, err
	}
	return entries[0], nil
}

// GetBulkVideoStats resolves stats for up to maxBulkStatsBatch videos in one
// round trip, returned in request order. The milestone interval is read once
// per batch.
func (s *Service) GetBulkVideoStats(ctx context.Context, videoIDs []string) ([]VideoStatsEntry, error) {
	if len(videoIDs) == 0 {
		return nil, fmt.Errorf("empty video id list: %w", domain.ErrInvalidInput)
	}
	if len(videoIDs) > maxBulkStatsBatch {
		return nil, fmt.Errorf("%d video ids exceeds batch limit %d: %w", len(videoIDs), maxBulkStatsBatch, domain.ErrInvalidInput)
	}
	stats, err := s.views.GetBulkStats(ctx, videoIDs)
	if err != nil {
		return nil, err
	}
	interval := s.milestoneInterval(ctx)
	out := make([]VideoStatsEntry, 0, len(videoIDs))
	for _, id := range videoIDs {
		out = append(out, VideoStatsEntry{
			VideoID:         id,
			Stats:           stats[id],
			NextMilestoneAt: nextMilestone(stats[id].Count, interval),
		})
	}
	return out, nil
}

// milestoneInterval degrades to zero on a config failure; stats reads must
// not fail over an unreadable milestone size.
func (s *Service) milestoneInterval(ctx context.Context) uint64 {
	cfg, err := s.configs.Get(ctx)
	if err != nil {
		return 0
	}
	return cfg.ViewMilestone
}

func nextMilestone(count, interval uint64) uint64 {
	if interval == 0 {
		return 0
	}
	return (count/interval + 1) * interval
}

func (s *Service) GetVideoViews(ctx context.Context, videoID string, limit int) ([]domain.ViewRecord, error) {
	if videoID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.history.VideoViews(ctx, videoID, s.normalizeLimit(limit))
}

func (s *Service) GetUserViewHistory(ctx context.Context, userID string, limit int) ([]domain.ViewRecord, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.history.UserViews(ctx, userID, s.normalizeLimit(limit))
}

func (s *Service) GetUserRewardHistory(ctx context.Context, userID string, limit int) ([]domain.RewardRecord, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.history.UserRewards(ctx, userID, s.normalizeLimit(limit))
}

func (s *Service) GetCreatorRewardHistory(ctx context.Context, creatorID string, limit int) ([]domain.RewardRecord, error) {
	if creatorID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.history.CreatorRewards(ctx, creatorID, s.normalizeLimit(limit))
}

// ShadowBanCreator places a manual ban; zero duration falls back to the
// configured ShadowBanDuration.
func (s *Service) ShadowBanCreator(ctx context.Context, creatorID string, duration time.Duration) error {
	if creatorID == "" {
		return domain.ErrInvalidInput
	}
	if duration <= 0 {
		cfg, err := s.configs.Get(ctx)
		if err != nil {
			cfg = domain.DefaultRewardConfig()
		}
		duration = time.Duration(cfg.ShadowBanDuration) * time.Second
	}
	if err := s.fraud.ShadowBan(ctx, creatorID, duration); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "creator shadow-banned manually", "creator_id", creatorID, "duration", duration)
	return nil
}

func (s *Service) RemoveShadowBan(ctx context.Context, creatorID string) error {
	if creatorID == "" {
		return domain.ErrInvalidInput
	}
	if err := s.fraud.RemoveShadowBan(ctx, creatorID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "shadow ban removed", "creator_id", creatorID)
	return nil
}

func (s *Service) IsCreatorShadowBanned(ctx context.Context, creatorID string) (bool, error) {
	if creatorID == "" {
		return false, domain.ErrInvalidInput
	}
	return s.fraud.IsShadowBanned(ctx, creatorID)
}

func (s *Service) normalizeLimit(limit int) int {
	if limit <= 0 {
		return s.cfg.HistoryDefaultLimit
	}
	return limit
}
