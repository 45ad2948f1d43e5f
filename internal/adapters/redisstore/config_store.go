package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/viralforge/view-reward-engine/internal/domain"
)

// ConfigStore persists the global reward configuration and its version
// counter. The version counter is the single source of truth the counting
// script compares each video's stamped version against.
type ConfigStore struct {
	client *redis.Client
	logger *slog.Logger
}

func NewConfigStore(client *redis.Client, logger *slog.Logger) *ConfigStore {
	return &ConfigStore{client: client, logger: logger}
}

func (s *ConfigStore) Get(ctx context.Context) (domain.RewardConfig, error) {
	raw, err := s.client.Get(ctx, configKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return s.initDefaults(ctx)
		}
		return domain.RewardConfig{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	cfg, migrated, err := domain.ParseRewardConfig(raw)
	if err != nil {
		return domain.RewardConfig{}, err
	}
	if migrated {
		// Persist the migrated form so the legacy record is read exactly
		// once. A concurrent migration writes the identical bytes.
		if err := s.persist(ctx, cfg); err != nil {
			s.logger.WarnContext(ctx, "persisting migrated config failed", "error", err)
		} else {
			s.logger.InfoContext(ctx, "migrated legacy reward config", "config_version", cfg.ConfigVersion)
		}
	}
	return cfg, nil
}

func (s *ConfigStore) Update(ctx context.Context, cfg domain.RewardConfig) (domain.RewardConfig, error) {
	if err := cfg.Validate(); err != nil {
		return domain.RewardConfig{}, err
	}
	version, err := s.client.Incr(ctx, configVersionKey).Result()
	if err != nil {
		return domain.RewardConfig{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	cfg.ConfigVersion = uint64(version)
	if err := s.persist(ctx, cfg); err != nil {
		return domain.RewardConfig{}, err
	}
	s.logger.InfoContext(ctx, "reward config updated", "config_version", cfg.ConfigVersion)
	return cfg, nil
}

func (s *ConfigStore) initDefaults(ctx context.Context) (domain.RewardConfig, error) {
	cfg := domain.DefaultRewardConfig()
	raw, err := json.Marshal(cfg)
	if err != nil {
		return domain.RewardConfig{}, fmt.Errorf("encode reward config: %w", err)
	}
	created, err := s.client.SetNX(ctx, configKey, raw, 0).Result()
	if err != nil {
		return domain.RewardConfig{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	// Seed the version counter alongside the first record.
	_ = s.client.SetNX(ctx, configVersionKey, cfg.ConfigVersion, 0).Err()
	if !created {
		// Lost the init race; the winner's record is authoritative.
		return s.Get(ctx)
	}
	s.logger.InfoContext(ctx, "initialised default reward config")
	return cfg, nil
}

func (s *ConfigStore) persist(ctx context.Context, cfg domain.RewardConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode reward config: %w", err)
	}
	if err := s.client.Set(ctx, configKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}
