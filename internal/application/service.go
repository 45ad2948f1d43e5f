package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/viralforge/view-reward-engine/internal/domain"
	"github.com/viralforge/view-reward-engine/internal/ports"
)

// ProcessVideoView runs the full reward pipeline for one watched event:
// validation, unique-view counting, history and analytics fan-out and, on a
// milestone boundary, the payout. Failed preconditions drop the event
// silently; only counting and payout failures surface to the caller.
func (s *Service) ProcessVideoView(ctx context.Context, event domain.WatchedEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	if !event.IsLoggedIn {
		s.logger.DebugContext(ctx, "dropping anonymous view", "video_id", event.VideoID)
		return nil
	}

	cfg, err := s.configs.Get(ctx)
	if err != nil {
		// Config lookups are non-critical; fall back to defaults so views
		// keep counting while the store recovers.
		s.logger.WarnContext(ctx, "config lookup failed, using defaults", "error", err)
		cfg = domain.DefaultRewardConfig()
	}

	if event.AbsoluteWatched < cfg.MinWatchDuration {
		s.logger.DebugContext(ctx, "dropping short view",
			"video_id", event.VideoID, "watched", event.AbsoluteWatched, "min", cfg.MinWatchDuration)
		return nil
	}

	registered, err := s.users.IsRegisteredUser(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("verify user %s: %w", event.UserID, err)
	}
	if !registered {
		s.logger.DebugContext(ctx, "dropping view from unregistered user", "user_id", event.UserID)
		return nil
	}

	banned, err := s.fraud.IsShadowBanned(ctx, event.PublisherUserID)
	if err != nil {
		return fmt.Errorf("shadow ban check for %s: %w", event.PublisherUserID, err)
	}
	if banned {
		s.logger.DebugContext(ctx, "dropping view for shadow-banned publisher",
			"publisher_user_id", event.PublisherUserID)
		return nil
	}

	count, trackErr := s.views.TrackView(ctx, event.VideoID, event.UserID, true)

	// The publisher's fraud window records every qualifying event, counted
	// or not, so that duplicate-heavy floods still trip the threshold.
	banDuration := time.Duration(cfg.ShadowBanDuration) * time.Second
	if verdict := s.fraud.CheckFraudPatterns(ctx, event.PublisherUserID, cfg.FraudThreshold, banDuration); verdict == domain.FraudCheckSuspicious {
		s.logger.WarnContext(ctx, "suspicious reward pattern",
			"publisher_user_id", event.PublisherUserID, "video_id", event.VideoID)
	}

	if trackErr != nil {
		return fmt.Errorf("track view %s/%s: %w", event.VideoID, event.UserID, trackErr)
	}
	if count == nil {
		s.logger.DebugContext(ctx, "duplicate view", "video_id", event.VideoID, "user_id", event.UserID)
		return nil
	}

	now := s.nowFn().UTC()
	s.history.RecordView(ctx, domain.ViewRecord{
		UserID:            event.UserID,
		VideoID:           event.VideoID,
		Timestamp:         now.Unix(),
		DurationWatched:   event.AbsoluteWatched,
		PercentageWatched: event.PercentageWatched,
	})
	s.publishViewEvent(ctx, event, *count)

	if cfg.ViewMilestone > 0 && *count%cfg.ViewMilestone == 0 {
		milestoneNo := *count / cfg.ViewMilestone
		return s.ProcessMilestone(ctx, event.VideoID, event.PublisherUserID, *count, milestoneNo, cfg)
	}
	return nil
}

// ProcessMilestone pays the creator for one crossed milestone. The unique
// count is never rolled back on payout failure; the milestone retries on the
// next qualifying view.
func (s *Service) ProcessMilestone(ctx context.Context, videoID, creatorID string, viewCount, milestoneNo uint64, cfg domain.RewardConfig) error {
	var amountToken, amountInr float64
	switch cfg.RewardMode.Type {
	case domain.RewardModeInrAmount:
		amountInr = cfg.RewardMode.Rate
		amountToken = amountInr / s.converter.TokenInrRate(ctx, cfg.RewardToken)
	case domain.RewardModeDirectTokenE8s:
		amountToken = float64(cfg.RewardMode.AmountE8s) / e8sPerToken
		amountInr = amountToken * s.converter.TokenInrRate(ctx, cfg.RewardToken)
	default:
		return fmt.Errorf("reward mode %q: %w", cfg.RewardMode.Type, domain.ErrInvalidInput)
	}

	// The audit record lands before the transfer, without a tx id, so a
	// failed payout still leaves a trace in the creator's history.
	now := s.nowFn().UTC()
	s.history.RecordReward(ctx, creatorID, domain.RewardRecord{
		VideoID:             videoID,
		Milestone:           milestoneNo,
		RewardAmountInToken: amountToken,
		RewardAmountInr:     amountInr,
		Timestamp:           now.Unix(),
		ViewCount:           viewCount,
	})

	txID, err := s.wallet.QueueReward(ctx, creatorID, amountToken, amountInr, cfg.RewardToken, videoID, milestoneNo)
	if err != nil {
		s.logger.ErrorContext(ctx, "milestone payout failed",
			"video_id", videoID, "creator_id", creatorID, "milestone", milestoneNo, "error", err)
		return err
	}

	if err := s.views.SetLastMilestone(ctx, videoID, milestoneNo); err != nil {
		// Advisory field only; the payout already happened.
		s.logger.WarnContext(ctx, "failed to record last milestone",
			"video_id", videoID, "milestone", milestoneNo, "error", err)
	}

	s.logger.InfoContext(ctx, "milestone reward paid",
		"video_id", videoID, "creator_id", creatorID, "milestone", milestoneNo,
		"view_count", viewCount, "amount_inr", amountInr, "token", string(cfg.RewardToken), "tx_id", txID)

	s.sendRewardNotification(ctx, creatorID, videoID, milestoneNo, amountInr, txID)
	s.publishMilestoneEvent(ctx, videoID, creatorID, milestoneNo, viewCount, amountInr)
	return nil
}

func (s *Service) publishViewEvent(ctx context.Context, event domain.WatchedEvent, count uint64) {
	if s.analytics == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"video_id":           event.VideoID,
		"user_id":            event.UserID,
		"publisher_user_id":  event.PublisherUserID,
		"unique_view_count":  count,
		"duration_watched":   event.AbsoluteWatched,
		"percentage_watched": event.PercentageWatched,
		"timestamp":          s.nowFn().UTC().Unix(),
	})
	if err != nil {
		return
	}
	go func() {
		if err := s.analytics.Publish(context.Background(), ports.EventViewCounted, payload, event.VideoID); err != nil {
			s.logger.Warn("analytics publish failed", "event", ports.EventViewCounted, "error", err)
		}
	}()
}

func (s *Service) publishMilestoneEvent(ctx context.Context, videoID, creatorID string, milestoneNo, viewCount uint64, amountInr float64) {
	if s.analytics == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"video_id":   videoID,
		"creator_id": creatorID,
		"milestone":  milestoneNo,
		"view_count": viewCount,
		"amount_inr": amountInr,
		"timestamp":  s.nowFn().UTC().Unix(),
	})
	if err != nil {
		return
	}
	go func() {
		if err := s.analytics.Publish(context.Background(), ports.EventMilestonePaid, payload, videoID); err != nil {
			s.logger.Warn("analytics publish failed", "event", ports.EventMilestonePaid, "error", err)
		}
	}()
}

func (s *Service) sendRewardNotification(ctx context.Context, creatorID, videoID string, milestoneNo uint64, amountInr float64, txID string) {
	if s.notifier == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"title":      "Milestone reward earned",
		"body":       fmt.Sprintf("Your video crossed milestone %d and earned ₹%.2f", milestoneNo, amountInr),
		"video_id":   videoID,
		"milestone":  milestoneNo,
		"amount_inr": amountInr,
		"tx_id":      txID,
	})
	if err != nil {
		return
	}
	go func() {
		if err := s.notifier.Send(context.Background(), creatorID, payload); err != nil {
			s.logger.Warn("reward notification failed", "creator_id", creatorID, "error", err)
		}
	}()
}
