package domain

import (
	"encoding/json"
	"fmt"
)

// RewardToken identifies the token a milestone payout is denominated in.
type RewardToken string

const (
	TokenBTC  RewardToken = "btc"
	TokenDOLR RewardToken = "dolr"
)

func (t RewardToken) Valid() bool {
	return t == TokenBTC || t == TokenDOLR
}

type RewardModeType string

const (
	// RewardModeInrAmount pays out a fixed INR value per milestone,
	// converted to the reward token at the current exchange rate.
	RewardModeInrAmount RewardModeType = "inr_amount"
	// RewardModeDirectTokenE8s pays out a fixed token amount (in e8s)
	// per milestone, with no currency conversion.
	RewardModeDirectTokenE8s RewardModeType = "direct_token_e8s"
)

// RewardMode is a tagged union: exactly one of Rate or AmountE8s is
// meaningful, selected by Type. Consumers must switch on Type exhaustively.
type RewardMode struct {
	Type      RewardModeType `json:"type"`
	Rate      float64        `json:"rate,omitempty"`
	AmountE8s uint64         `json:"amount_e8s,omitempty"`
}

func (m RewardMode) Validate() error {
	switch m.Type {
	case RewardModeInrAmount:
		if m.Rate < 0 {
			return fmt.Errorf("%w: negative inr rate", ErrInvalidInput)
		}
		return nil
	case RewardModeDirectTokenE8s:
		return nil
	default:
		return fmt.Errorf("%w: unknown reward mode %q", ErrInvalidInput, m.Type)
	}
}

// RewardConfig is the single global, versioned configuration record.
// ConfigVersion is stamped by the store on every update and compared
// against each video counter's stored version.
type RewardConfig struct {
	RewardMode        RewardMode  `json:"reward_mode"`
	ViewMilestone     uint64      `json:"view_milestone"`
	MinWatchDuration  float64     `json:"min_watch_duration"`
	FraudThreshold    int         `json:"fraud_threshold"`
	ShadowBanDuration uint64      `json:"shadow_ban_duration"`
	ConfigVersion     uint64      `json:"config_version"`
	RewardToken       RewardToken `json:"reward_token"`
}

func DefaultRewardConfig() RewardConfig {
	return RewardConfig{
		RewardMode:        RewardMode{Type: RewardModeInrAmount, Rate: 10.0},
		ViewMilestone:     100,
		MinWatchDuration:  3.0,
		FraudThreshold:    5,
		ShadowBanDuration: 3600,
		ConfigVersion:     1,
		RewardToken:       TokenBTC,
	}
}

func (c RewardConfig) Validate() error {
	if err := c.RewardMode.Validate(); err != nil {
		return err
	}
	if c.ViewMilestone == 0 {
		return fmt.Errorf("%w: view_milestone must be positive", ErrInvalidInput)
	}
	if c.MinWatchDuration < 0 {
		return fmt.Errorf("%w: negative min_watch_duration", ErrInvalidInput)
	}
	if c.FraudThreshold < 0 {
		return fmt.Errorf("%w: negative fraud_threshold", ErrInvalidInput)
	}
	if !c.RewardToken.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedToken, c.RewardToken)
	}
	return nil
}

// legacyRewardConfig is the flat schema that predates reward modes. It is
// recognised by the presence of reward_amount_inr and the absence of
// reward_mode, and is migrated transparently on first read.
type legacyRewardConfig struct {
	RewardAmountInr   float64 `json:"reward_amount_inr"`
	ViewMilestone     uint64  `json:"view_milestone"`
	MinWatchDuration  float64 `json:"min_watch_duration"`
	FraudThreshold    int     `json:"fraud_threshold"`
	ShadowBanDuration uint64  `json:"shadow_ban_duration"`
	ConfigVersion     uint64  `json:"config_version"`
}

func (l legacyRewardConfig) migrate() RewardConfig {
	return RewardConfig{
		RewardMode:        RewardMode{Type: RewardModeInrAmount, Rate: l.RewardAmountInr},
		ViewMilestone:     l.ViewMilestone,
		MinWatchDuration:  l.MinWatchDuration,
		FraudThreshold:    l.FraudThreshold,
		ShadowBanDuration: l.ShadowBanDuration,
		ConfigVersion:     l.ConfigVersion,
		RewardToken:       TokenBTC,
	}
}

// ParseRewardConfig decodes a persisted config record, handling the legacy
// flat schema. The second return value reports whether a migration happened,
// so the caller can persist the migrated form. Re-parsing an already
// migrated record is a no-op.
func ParseRewardConfig(raw []byte) (RewardConfig, bool, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return RewardConfig{}, false, fmt.Errorf("decode reward config: %w", err)
	}
	if _, hasMode := probe["reward_mode"]; !hasMode {
		if _, hasLegacy := probe["reward_amount_inr"]; hasLegacy {
			var legacy legacyRewardConfig
			if err := json.Unmarshal(raw, &legacy); err != nil {
				return RewardConfig{}, false, fmt.Errorf("decode legacy reward config: %w", err)
			}
			return legacy.migrate(), true, nil
		}
	}
	var cfg RewardConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return RewardConfig{}, false, fmt.Errorf("decode reward config: %w", err)
	}
	return cfg, false, nil
}
