package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/viralforge/view-reward-engine/internal/domain"
)

// LedgerClient fronts the token ledger service. Until the ledger exposes its
// gRPC contract this stub accepts every registered-user lookup and transfer,
// which keeps local and staging environments payout-complete.
type LedgerClient struct {
	url string
}

func NewLedgerClient(url string) *LedgerClient { return &LedgerClient{url: url} }

func (c *LedgerClient) IsRegisteredUser(_ context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, domain.ErrInvalidInput
	}
	return true, nil
}

func (c *LedgerClient) TransferReward(_ context.Context, creatorID string, amountE8s uint64, token domain.RewardToken, _ string) (string, error) {
	if creatorID == "" || amountE8s == 0 {
		return "", domain.ErrInvalidInput
	}
	if !token.Valid() {
		return "", domain.ErrUnsupportedToken
	}
	return fmt.Sprintf("ledger_tx_%s_%d", creatorID, time.Now().UTC().UnixNano()), nil
}
