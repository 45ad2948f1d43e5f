package redisstore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/viralforge/view-reward-engine/internal/ports"
)

const registeredUserTTL = 60 * time.Second

// UserVerification is a short-TTL cache-aside layer in front of the ledger's
// registration check. Both positive and negative answers are cached so an
// unregistered user cannot hammer the ledger either.
type UserVerification struct {
	client *redis.Client
	ledger ports.LedgerClient
	logger *slog.Logger
}

func NewUserVerification(client *redis.Client, ledger ports.LedgerClient, logger *slog.Logger) *UserVerification {
	return &UserVerification{client: client, ledger: ledger, logger: logger}
}

func (v *UserVerification) IsRegisteredUser(ctx context.Context, userID string) (bool, error) {
	key := registeredUserKey(userID)

	cached, err := v.client.Get(ctx, key).Result()
	if err == nil {
		return cached == "true", nil
	}
	if !errors.Is(err, redis.Nil) {
		v.logger.WarnContext(ctx, "registration cache read failed", "user_id", userID, "error", err)
	}

	registered, err := v.ledger.IsRegisteredUser(ctx, userID)
	if err != nil {
		return false, err
	}

	value := "false"
	if registered {
		value = "true"
	}
	go func() {
		if err := v.client.SetEx(context.Background(), key, value, registeredUserTTL).Err(); err != nil {
			v.logger.Warn("registration cache write failed", "user_id", userID, "error", err)
		}
	}()

	return registered, nil
}
