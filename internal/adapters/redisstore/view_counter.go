package redisstore

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/viralforge/view-reward-engine/internal/domain"
)

// atomicViewScript performs the three-step counting sequence as one
// server-side unit: bump the all-views total, apply a pending config reset,
// then run the uniqueness check. The viewed-by set is deliberately never
// cleared on reset: a past viewer stays a duplicate across config changes,
// only new users contribute to the post-reset count.
const atomicViewScript = `
local views_set = KEYS[1]
local video_hash = KEYS[2]
local user_id = ARGV[1]

redis.call('HINCRBY', video_hash, 'total_count_all', 1)

local current_global_version = redis.call('GET', 'rewards:config:version') or '1'
local video_config_version = redis.call('HGET', video_hash, 'config_version') or '0'
if video_config_version ~= current_global_version then
    redis.call('HSET', video_hash, 'count', 0, 'config_version', current_global_version)
end

local added = redis.call('SADD', views_set, user_id)
if added == 1 then
    redis.call('HINCRBY', video_hash, 'total_count_loggedin', 1)
    return redis.call('HINCRBY', video_hash, 'count', 1)
end
return nil
`

func scriptSHA(script string) string {
	sum := sha1.Sum([]byte(script))
	return hex.EncodeToString(sum[:])
}

// ViewCounter implements the atomic view-counting primitive on Redis.
type ViewCounter struct {
	client *redis.Client
	logger *slog.Logger

	mu        sync.RWMutex
	scriptSHA string
}

func NewViewCounter(client *redis.Client, logger *slog.Logger) *ViewCounter {
	return &ViewCounter{client: client, logger: logger}
}

// LoadScripts registers the counting script with the store. Called once at
// startup; TrackView falls back to EVAL when the store has lost its script
// cache (e.g. after a restart).
func (c *ViewCounter) LoadScripts(ctx context.Context) error {
	sha, err := c.client.ScriptLoad(ctx, atomicViewScript).Result()
	if err != nil {
		return fmt.Errorf("load view tracking script: %w", err)
	}
	if expected := scriptSHA(atomicViewScript); sha != expected {
		c.logger.WarnContext(ctx, "loaded script sha mismatch", "loaded", sha, "expected", expected)
	}
	c.mu.Lock()
	c.scriptSHA = sha
	c.mu.Unlock()
	c.logger.InfoContext(ctx, "view tracking script loaded", "sha", sha)
	return nil
}

func (c *ViewCounter) TrackView(ctx context.Context, videoID, userID string, isLoggedIn bool) (*uint64, error) {
	if !isLoggedIn {
		// Anonymous traffic only moves the unconditional total; no
		// uniqueness check, no milestone eligibility.
		if err := c.client.HIncrBy(ctx, videoHashKey(videoID), "total_count_all", 1).Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
		}
		return nil, nil
	}

	keys := []string{viewsSetKey(videoID), videoHashKey(videoID)}

	c.mu.RLock()
	sha := c.scriptSHA
	c.mu.RUnlock()

	var cmd *redis.Cmd
	if sha != "" {
		cmd = c.client.EvalSha(ctx, sha, keys, userID)
		if err := cmd.Err(); err != nil && redis.HasErrorPrefix(err, "NOSCRIPT") {
			c.logger.WarnContext(ctx, "evalsha miss, retrying with eval", "error", err)
			cmd = c.client.Eval(ctx, atomicViewScript, keys, userID)
		}
	} else {
		cmd = c.client.Eval(ctx, atomicViewScript, keys, userID)
	}

	count, err := cmd.Uint64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // duplicate view
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return &count, nil
}

func (c *ViewCounter) GetViewCount(ctx context.Context, videoID string) (uint64, error) {
	return c.hashField(ctx, videoID, "count")
}

func (c *ViewCounter) GetLastMilestone(ctx context.Context, videoID string) (uint64, error) {
	return c.hashField(ctx, videoID, "last_milestone")
}

func (c *ViewCounter) SetLastMilestone(ctx context.Context, videoID string, milestone uint64) error {
	if err := c.client.HSet(ctx, videoHashKey(videoID), "last_milestone", milestone).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (c *ViewCounter) GetTotalCountLoggedIn(ctx context.Context, videoID string) (uint64, error) {
	return c.hashField(ctx, videoID, "total_count_loggedin")
}

func (c *ViewCounter) GetTotalCountAll(ctx context.Context, videoID string) (uint64, error) {
	return c.hashField(ctx, videoID, "total_count_all")
}

func (c *ViewCounter) hashField(ctx context.Context, videoID, field string) (uint64, error) {
	raw, err := c.client.HGet(ctx, videoHashKey(videoID), field).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	value, convErr := strconv.ParseUint(raw, 10, 64)
	if convErr != nil {
		return 0, nil
	}
	return value, nil
}

// GetBulkStats fetches counter hashes for many videos in one round trip.
// Unknown ids come back as zero stats.
func (c *ViewCounter) GetBulkStats(ctx context.Context, videoIDs []string) (map[string]domain.VideoStats, error) {
	cmds := make([]*redis.MapStringStringCmd, len(videoIDs))
	_, err := c.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, id := range videoIDs {
			cmds[i] = p.HGetAll(ctx, videoHashKey(id))
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	out := make(map[string]domain.VideoStats, len(videoIDs))
	for i, id := range videoIDs {
		fields, cmdErr := cmds[i].Result()
		if cmdErr != nil {
			out[id] = domain.VideoStats{}
			continue
		}
		out[id] = domain.VideoStats{
			Count:              parseUintField(fields, "count"),
			TotalCountLoggedIn: parseUintField(fields, "total_count_loggedin"),
			TotalCountAll:      parseUintField(fields, "total_count_all"),
			LastMilestone:      parseUintField(fields, "last_milestone"),
		}
	}
	return out, nil
}

func parseUintField(fields map[string]string, name string) uint64 {
	raw, ok := fields[name]
	if !ok {
		return 0
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return value
}
