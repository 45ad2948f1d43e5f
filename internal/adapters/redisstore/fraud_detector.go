package redisstore

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/viralforge/view-reward-engine/internal/domain"
)

const (
	fraudWindow        = 60 * time.Minute
	fraudWindowMaxSize = 100
	fraudWindowTTL     = time.Hour
)

// FraudDetector keeps a sliding window of reward-relevant activity per
// creator and enforces TTL-bound shadow bans. Scoring runs off the hot path:
// it only ever blocks future rewards, never reverses one already queued.
type FraudDetector struct {
	client *redis.Client
	logger *slog.Logger

	// alert is invoked when a creator crosses the threshold; best-effort.
	alert func(creatorID string, recentCount int)
}

func NewFraudDetector(client *redis.Client, logger *slog.Logger, alert func(creatorID string, recentCount int)) *FraudDetector {
	return &FraudDetector{client: client, logger: logger, alert: alert}
}

// CheckFraudPatterns returns the creator's current standing synchronously
// (a plain ban-key existence check) and updates the sliding window on a
// detached goroutine that outlives the request.
func (d *FraudDetector) CheckFraudPatterns(ctx context.Context, creatorID string, threshold int, banDuration time.Duration) domain.FraudCheck {
	now := time.Now().UTC().Unix()

	go d.scoreWindow(context.Background(), creatorID, now, threshold, banDuration)

	banned, err := d.IsShadowBanned(ctx, creatorID)
	if err != nil {
		d.logger.WarnContext(ctx, "shadow ban check failed", "creator_id", creatorID, "error", err)
		return domain.FraudCheckClean
	}
	if banned {
		return domain.FraudCheckSuspicious
	}
	return domain.FraudCheckClean
}

func (d *FraudDetector) scoreWindow(ctx context.Context, creatorID string, now int64, threshold int, banDuration time.Duration) {
	key := fraudWindowKey(creatorID)

	if err := d.client.LPush(ctx, key, now).Err(); err != nil {
		d.logger.Warn("fraud window append failed", "creator_id", creatorID, "error", err)
		return
	}
	_ = d.client.LTrim(ctx, key, 0, fraudWindowMaxSize).Err()
	_ = d.client.Expire(ctx, key, fraudWindowTTL).Err()

	timestamps, err := d.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return
	}
	cutoff := now - int64(fraudWindow.Seconds())
	recent := countRecent(timestamps, cutoff)

	if recent <= threshold {
		return
	}
	if err := d.client.SetEx(ctx, shadowBanKey(creatorID), "1", banDuration).Err(); err != nil {
		d.logger.Warn("shadow ban set failed", "creator_id", creatorID, "error", err)
		return
	}
	d.logger.Warn("creator shadow banned",
		"creator_id", creatorID,
		"recent_rewards", recent,
		"window_seconds", int64(fraudWindow.Seconds()),
		"ban_seconds", int64(banDuration.Seconds()),
	)
	if d.alert != nil {
		d.alert(creatorID, recent)
	}
}

func countRecent(timestamps []string, cutoff int64) int {
	recent := 0
	for _, raw := range timestamps {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		if ts > cutoff {
			recent++
		}
	}
	return recent
}

func (d *FraudDetector) IsShadowBanned(ctx context.Context, creatorID string) (bool, error) {
	n, err := d.client.Exists(ctx, shadowBanKey(creatorID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ShadowBan applies a manual, TTL-bound ban.
func (d *FraudDetector) ShadowBan(ctx context.Context, creatorID string, duration time.Duration) error {
	if err := d.client.SetEx(ctx, shadowBanKey(creatorID), "1", duration).Err(); err != nil {
		return err
	}
	d.logger.InfoContext(ctx, "creator manually shadow banned", "creator_id", creatorID, "ban_seconds", int64(duration.Seconds()))
	return nil
}

// RemoveShadowBan lifts a ban before its TTL elapses.
func (d *FraudDetector) RemoveShadowBan(ctx context.Context, creatorID string) error {
	if err := d.client.Del(ctx, shadowBanKey(creatorID)).Err(); err != nil {
		return err
	}
	d.logger.InfoContext(ctx, "shadow ban removed", "creator_id", creatorID)
	return nil
}
