package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	RedisURL      string
	LedgerGRPCURL string
	RateTickerURL string

	KafkaBrokers       []string
	TopicViewCounted   string
	TopicMilestonePaid string
	TopicCreatorNotify string

	WalletMaxTransferE8s uint64
	HistoryDefaultLimit  int
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		RedisURL           string   `yaml:"redis_url"`
		LedgerGRPCURL      string   `yaml:"ledger_grpc_url"`
		RateTickerURL      string   `yaml:"rate_ticker_url"`
		KafkaBrokers       []string `yaml:"kafka_brokers"`
		TopicViewCounted   string   `yaml:"topic_view_counted"`
		TopicMilestonePaid string   `yaml:"topic_milestone_paid"`
		TopicCreatorNotify string   `yaml:"topic_creator_notify"`
	} `yaml:"dependencies"`
	Wallet struct {
		MaxTransferE8s uint64 `yaml:"max_transfer_e8s"`
	} `yaml:"wallet"`
	History struct {
		DefaultLimit int `yaml:"default_limit"`
	} `yaml:"history"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:            "view-reward-engine",
		HTTPPort:             8080,
		GRPCPort:             9090,
		RedisURL:             "redis://localhost:6379",
		TopicViewCounted:     "rewards.view_counted",
		TopicMilestonePaid:   "rewards.milestone_paid",
		TopicCreatorNotify:   "notifications.creator",
		WalletMaxTransferE8s: 10_000_000,
		HistoryDefaultLimit:  100,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		cfg.LedgerGRPCURL = f.Dependencies.LedgerGRPCURL
		cfg.RateTickerURL = f.Dependencies.RateTickerURL
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
		}
		if f.Dependencies.TopicViewCounted != "" {
			cfg.TopicViewCounted = f.Dependencies.TopicViewCounted
		}
		if f.Dependencies.TopicMilestonePaid != "" {
			cfg.TopicMilestonePaid = f.Dependencies.TopicMilestonePaid
		}
		if f.Dependencies.TopicCreatorNotify != "" {
			cfg.TopicCreatorNotify = f.Dependencies.TopicCreatorNotify
		}
		if f.Wallet.MaxTransferE8s > 0 {
			cfg.WalletMaxTransferE8s = f.Wallet.MaxTransferE8s
		}
		if f.History.DefaultLimit > 0 {
			cfg.HistoryDefaultLimit = f.History.DefaultLimit
		}
	}

	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.LedgerGRPCURL = envOrDefault("LEDGER_GRPC_URL", cfg.LedgerGRPCURL)
	cfg.RateTickerURL = envOrDefault("RATE_TICKER_URL", cfg.RateTickerURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.TopicViewCounted = envOrDefault("KAFKA_TOPIC_VIEW_COUNTED", cfg.TopicViewCounted)
	cfg.TopicMilestonePaid = envOrDefault("KAFKA_TOPIC_MILESTONE_PAID", cfg.TopicMilestonePaid)
	cfg.TopicCreatorNotify = envOrDefault("KAFKA_TOPIC_CREATOR_NOTIFY", cfg.TopicCreatorNotify)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.WalletMaxTransferE8s = envUint("WALLET_MAX_TRANSFER_E8S", cfg.WalletMaxTransferE8s)
	cfg.HistoryDefaultLimit = envInt("HISTORY_DEFAULT_LIMIT", cfg.HistoryDefaultLimit)

	return cfg, nil
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envUint(name string, fallback uint64) uint64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func envCSV(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	return trimNonEmpty(strings.Split(raw, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
