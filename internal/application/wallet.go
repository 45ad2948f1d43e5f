package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/viralforge/view-reward-engine/internal/domain"
	"github.com/viralforge/view-reward-engine/internal/ports"
)

const e8sPerToken = 100_000_000

// rewardMemo is attached to every ledger transfer for auditability.
type rewardMemo struct {
	Type      string `json:"type"`
	VideoID   string `json:"video_id"`
	Milestone uint64 `json:"milestone"`
	AmountInr string `json:"amount_inr"`
	Timestamp int64  `json:"timestamp"`
}

// WalletIntegration converts token amounts to e8s, enforces the per-transfer
// ceiling and hands the transfer to the ledger.
type WalletIntegration struct {
	ledger         ports.LedgerClient
	logger         *slog.Logger
	maxTransferE8s uint64
	nowFn          func() time.Time
}

func NewWalletIntegration(ledger ports.LedgerClient, maxTransferE8s uint64, logger *slog.Logger) *WalletIntegration {
	return &WalletIntegration{ledger: ledger, logger: logger, maxTransferE8s: maxTransferE8s, nowFn: time.Now}
}

// QueueReward transfers amountToken (in whole tokens) to the creator. It
// returns the ledger transaction id, synthesizing one when the ledger does
// not supply it.
func (w *WalletIntegration) QueueReward(ctx context.Context, creatorID string, amountToken, amountInr float64, token domain.RewardToken, videoID string, milestone uint64) (string, error) {
	if !token.Valid() {
		return "", fmt.Errorf("queue reward: token %q: %w", token, domain.ErrUnsupportedToken)
	}

	amountE8s := uint64(amountToken * e8sPerToken)
	if amountE8s == 0 {
		return "", fmt.Errorf("queue reward: zero amount: %w", domain.ErrInvalidInput)
	}
	if amountE8s > w.maxTransferE8s {
		w.logger.ErrorContext(ctx, "reward exceeds transfer ceiling",
			"creator_id", creatorID, "amount_e8s", amountE8s, "ceiling_e8s", w.maxTransferE8s)
		return "", fmt.Errorf("queue reward: %d e8s over ceiling %d: %w", amountE8s, w.maxTransferE8s, domain.ErrAmountExceedsCeiling)
	}

	now := w.nowFn().UTC()
	memo, err := json.Marshal(rewardMemo{
		Type:      "video_view_reward",
		VideoID:   videoID,
		Milestone: milestone,
		AmountInr: fmt.Sprintf("%.2f", amountInr),
		Timestamp: now.Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("queue reward: encode memo: %w", err)
	}

	txID, err := w.ledger.TransferReward(ctx, creatorID, amountE8s, token, string(memo))
	if err != nil {
		return "", fmt.Errorf("queue reward: %w: %v", domain.ErrTransferFailed, err)
	}
	if txID == "" {
		txID = fmt.Sprintf("reward_tx_%s_%d", creatorID, now.Unix())
	}

	w.logger.InfoContext(ctx, "reward transferred",
		"creator_id", creatorID, "video_id", videoID, "milestone", milestone,
		"amount_e8s", amountE8s, "token", string(token), "tx_id", txID)
	return txID, nil
}
