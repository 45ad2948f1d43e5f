package redisstore

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/view-reward-engine/internal/domain"
)

func waitUntil(t *testing.T, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestFraudDetector_ManualBanLifecycle(t *testing.T) {
	client := newTestClient(t)
	d := NewFraudDetector(client, slog.Default(), nil)
	ctx := context.Background()
	creatorID := "test_creator_" + uuid.NewString()
	t.Cleanup(func() { _ = client.Del(context.Background(), shadowBanKey(creatorID)).Err() })

	banned, err := d.IsShadowBanned(ctx, creatorID)
	if err != nil || banned {
		t.Fatalf("fresh creator must not be banned, got banned=%v err=%v", banned, err)
	}
	if err := d.ShadowBan(ctx, creatorID, time.Minute); err != nil {
		t.Fatalf("ShadowBan error: %v", err)
	}
	banned, err = d.IsShadowBanned(ctx, creatorID)
	if err != nil || !banned {
		t.Fatalf("expected banned, got banned=%v err=%v", banned, err)
	}
	if err := d.RemoveShadowBan(ctx, creatorID); err != nil {
		t.Fatalf("RemoveShadowBan error: %v", err)
	}
	banned, _ = d.IsShadowBanned(ctx, creatorID)
	if banned {
		t.Fatalf("expected ban lifted")
	}
}

func TestFraudDetector_WindowTripsThreshold(t *testing.T) {
	client := newTestClient(t)
	d := NewFraudDetector(client, slog.Default(), nil)
	ctx := context.Background()
	creatorID := "test_creator_" + uuid.NewString()
	t.Cleanup(func() {
		_ = client.Del(context.Background(), shadowBanKey(creatorID), fraudWindowKey(creatorID)).Err()
	})

	// Threshold 2: the window scorer bans once more than two events land
	// inside the 60-minute window.
	for i := 0; i < 4; i++ {
		d.CheckFraudPatterns(ctx, creatorID, 2, time.Minute)
	}
	ok := waitUntil(t, func() bool {
		banned, err := d.IsShadowBanned(ctx, creatorID)
		return err == nil && banned
	})
	if !ok {
		t.Fatalf("expected creator to be shadow-banned after flooding")
	}

	// Once banned, the synchronous verdict flips to suspicious.
	if verdict := d.CheckFraudPatterns(ctx, creatorID, 2, time.Minute); verdict != domain.FraudCheckSuspicious {
		t.Fatalf("expected suspicious verdict, got %v", verdict)
	}
}
