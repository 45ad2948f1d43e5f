package redisstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Connect initializes a Redis client from URL or host:port input.
// Supporting both formats keeps local/dev and container config paths simple.
func Connect(_ context.Context, redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			return nil, fmt.Errorf("parse redis url: %w", parseErr)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

const (
	configKey        = "rewards:config"
	configVersionKey = "rewards:config:version"
)

func videoHashKey(videoID string) string { return "rewards:video:" + videoID }
func viewsSetKey(videoID string) string  { return "rewards:views:" + videoID }
func shadowBanKey(creatorID string) string {
	return "rewards:shadow_ban:" + creatorID
}
func fraudWindowKey(creatorID string) string {
	return "rewards:user:" + creatorID + ":recent"
}
func videoViewHistoryKey(videoID string) string {
	return "rewards:video:" + videoID + ":view_history"
}
func userViewHistoryKey(userID string) string {
	return "rewards:user:" + userID + ":view_history"
}
func userRewardHistoryKey(userID string) string {
	return "rewards:user:" + userID + ":reward_history"
}
func creatorRewardHistoryKey(creatorID string) string {
	return "rewards:creator:" + creatorID + ":reward_history"
}
func registeredUserKey(userID string) string {
	return "rewards:user:registered:" + userID
}
