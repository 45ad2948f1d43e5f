package ports

import (
	"context"

	"github.com/viralforge/view-reward-engine/internal/domain"
)

// LedgerClient is the identity/ledger network boundary: registration checks
// and token transfers. TxID may be empty when the ledger does not report one.
type LedgerClient interface {
	IsRegisteredUser(ctx context.Context, userID string) (bool, error)
	TransferReward(ctx context.Context, creatorID string, amountE8s uint64, token domain.RewardToken, memo string) (txID string, err error)
}

// RateSource provides the current BTC/INR exchange rate. Caching and
// staleness policy belong to the converter, not the source.
type RateSource interface {
	GetBtcInrRate(ctx context.Context) (float64, error)
}

// Event types the engine publishes. Each maps to its own downstream stream.
const (
	EventViewCounted   = "video_view_counted"
	EventMilestonePaid = "milestone_reward_paid"
	EventCreatorNotify = "creator_notification"
)

// AnalyticsPublisher fans analytics events out to downstream sinks.
type AnalyticsPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error
}

// Notifier delivers a push notification payload to a user.
type Notifier interface {
	Send(ctx context.Context, userID string, payload []byte) error
}
