package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/viralforge/view-reward-engine/internal/domain"
	"github.com/viralforge/view-reward-engine/internal/ports"
)

const (
	rateCacheWindow = 5 * time.Minute

	// fallbackBtcInrRate is the last-resort rate when the source is down
	// and no cached value exists. Payouts must never fail on a rate lookup.
	fallbackBtcInrRate = 5_000_000.0

	// dolrInrRate is a fixed table entry; DOLR has no live INR source.
	dolrInrRate = 0.0347
)

// BtcConverter serves INR-to-token conversion from a single shared cache
// entry with a staleness-tolerant policy: fresh cache, then live fetch, then
// stale cache, then the hardcoded fallback. It never surfaces an error.
type BtcConverter struct {
	source ports.RateSource
	logger *slog.Logger
	nowFn  func() time.Time

	mu        sync.RWMutex
	rate      float64
	fetchedAt time.Time
}

func NewBtcConverter(source ports.RateSource, logger *slog.Logger) *BtcConverter {
	return &BtcConverter{source: source, logger: logger, nowFn: time.Now}
}

// BtcInrRate returns the current BTC/INR rate.
func (c *BtcConverter) BtcInrRate(ctx context.Context) float64 {
	now := c.nowFn().UTC()

	c.mu.RLock()
	rate, fetchedAt := c.rate, c.fetchedAt
	c.mu.RUnlock()

	if !fetchedAt.IsZero() && now.Sub(fetchedAt) < rateCacheWindow {
		return rate
	}

	fresh, err := c.source.GetBtcInrRate(ctx)
	if err != nil {
		if !fetchedAt.IsZero() {
			c.logger.WarnContext(ctx, "rate fetch failed, serving stale rate", "rate", rate, "error", err)
			return rate
		}
		c.logger.WarnContext(ctx, "rate fetch failed, serving fallback rate", "rate", fallbackBtcInrRate, "error", err)
		return fallbackBtcInrRate
	}

	c.mu.Lock()
	c.rate, c.fetchedAt = fresh, now
	c.mu.Unlock()
	c.logger.InfoContext(ctx, "btc/inr rate refreshed", "rate", fresh)
	return fresh
}

// ConvertInrToBtc converts an INR amount into BTC at the current rate.
func (c *BtcConverter) ConvertInrToBtc(ctx context.Context, inrAmount float64) float64 {
	return inrAmount / c.BtcInrRate(ctx)
}

// TokenInrRate values one whole token in INR: the live rate for BTC, the
// fixed table for DOLR.
func (c *BtcConverter) TokenInrRate(ctx context.Context, token domain.RewardToken) float64 {
	switch token {
	case domain.TokenDOLR:
		return dolrInrRate
	default:
		return c.BtcInrRate(ctx)
	}
}
