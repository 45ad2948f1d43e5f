package redisstore

import (
	"context"
	"log/slog"
	"testing"

	"github.com/viralforge/view-reward-engine/internal/domain"
)

func TestConfigStore_InitialisesDefaults(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	if err := client.Del(ctx, configKey, configVersionKey).Err(); err != nil {
		t.Fatalf("reset config keys: %v", err)
	}
	t.Cleanup(func() { _ = client.Del(context.Background(), configKey, configVersionKey).Err() })

	store := NewConfigStore(client, slog.Default())
	cfg, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if cfg != domain.DefaultRewardConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	version, err := client.Get(ctx, configVersionKey).Uint64()
	if err != nil || version != 1 {
		t.Fatalf("expected seeded version 1, got %d err=%v", version, err)
	}
}

func TestConfigStore_UpdateBumpsVersion(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	if err := client.Del(ctx, configKey, configVersionKey).Err(); err != nil {
		t.Fatalf("reset config keys: %v", err)
	}
	t.Cleanup(func() { _ = client.Del(context.Background(), configKey, configVersionKey).Err() })

	store := NewConfigStore(client, slog.Default())
	if _, err := store.Get(ctx); err != nil {
		t.Fatalf("seed defaults: %v", err)
	}

	next := domain.DefaultRewardConfig()
	next.ViewMilestone = 25
	updated, err := store.Update(ctx, next)
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.ConfigVersion != 2 {
		t.Fatalf("expected version 2, got %d", updated.ConfigVersion)
	}

	fetched, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if fetched != updated {
		t.Fatalf("stored config mismatch: %+v vs %+v", fetched, updated)
	}
}

func TestConfigStore_MigratesLegacyRecord(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	legacy := `{"reward_amount_inr":15,"view_milestone":200,"min_watch_duration":4,"fraud_threshold":8,"shadow_ban_duration":7200,"config_version":3}`
	if err := client.Set(ctx, configKey, legacy, 0).Err(); err != nil {
		t.Fatalf("seed legacy record: %v", err)
	}
	if err := client.Set(ctx, configVersionKey, 3, 0).Err(); err != nil {
		t.Fatalf("seed version: %v", err)
	}
	t.Cleanup(func() { _ = client.Del(context.Background(), configKey, configVersionKey).Err() })

	store := NewConfigStore(client, slog.Default())
	cfg, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if cfg.RewardMode.Type != domain.RewardModeInrAmount || cfg.RewardMode.Rate != 15 {
		t.Fatalf("legacy rate not migrated: %+v", cfg.RewardMode)
	}
	if cfg.ConfigVersion != 3 {
		t.Fatalf("migration must not bump the version, got %d", cfg.ConfigVersion)
	}

	// The migrated form is persisted; a second read sees the new schema.
	raw, err := client.Get(ctx, configKey).Bytes()
	if err != nil {
		t.Fatalf("read persisted config: %v", err)
	}
	reparsed, migrated, err := domain.ParseRewardConfig(raw)
	if err != nil || migrated {
		t.Fatalf("expected persisted record in current schema, migrated=%v err=%v", migrated, err)
	}
	if reparsed != cfg {
		t.Fatalf("persisted config mismatch: %+v vs %+v", reparsed, cfg)
	}
}
