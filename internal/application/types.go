package application

import (
	"log/slog"
	"time"

	"github.com/viralforge/view-reward-engine/internal/ports"
)

type Config struct {
	ServiceName          string
	WalletMaxTransferE8s uint64
	HistoryDefaultLimit  int
}

type Service struct {
	cfg     Config
	logger  *slog.Logger
	views   ports.ViewCounter
	configs ports.ConfigStore
	history ports.HistoryStore
	fraud   ports.FraudGate
	users   ports.UserVerifier

	converter *BtcConverter
	wallet    *WalletIntegration

	analytics ports.AnalyticsPublisher
	notifier  ports.Notifier
	nowFn     func() time.Time
}

type Dependencies struct {
	Config    Config
	Logger    *slog.Logger
	Views     ports.ViewCounter
	Configs   ports.ConfigStore
	History   ports.HistoryStore
	Fraud     ports.FraudGate
	Users     ports.UserVerifier
	Rates     ports.RateSource
	Ledger    ports.LedgerClient
	Analytics ports.AnalyticsPublisher
	Notifier  ports.Notifier
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "view-reward-engine"
	}
	if cfg.WalletMaxTransferE8s == 0 {
		cfg.WalletMaxTransferE8s = 10_000_000
	}
	if cfg.HistoryDefaultLimit <= 0 {
		cfg.HistoryDefaultLimit = 100
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("service", cfg.ServiceName)
	return &Service{
		cfg:       cfg,
		logger:    logger,
		views:     deps.Views,
		configs:   deps.Configs,
		history:   deps.History,
		fraud:     deps.Fraud,
		users:     deps.Users,
		converter: NewBtcConverter(deps.Rates, logger),
		wallet:    NewWalletIntegration(deps.Ledger, cfg.WalletMaxTransferE8s, logger),
		analytics: deps.Analytics,
		notifier:  deps.Notifier,
		nowFn:     time.Now,
	}
}
