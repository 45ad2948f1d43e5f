package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	eventadapter "github.com/viralforge/view-reward-engine/internal/adapters/events"
	grpcadapter "github.com/viralforge/view-reward-engine/internal/adapters/grpc"
	httpadapter "github.com/viralforge/view-reward-engine/internal/adapters/http"
	"github.com/viralforge/view-reward-engine/internal/adapters/rates"
	"github.com/viralforge/view-reward-engine/internal/adapters/redisstore"
	"github.com/viralforge/view-reward-engine/internal/application"
	"github.com/viralforge/view-reward-engine/internal/ports"
	"google.golang.org/grpc"
)

type Runtime struct {
	cfg         Config
	logger      *slog.Logger
	redisClient *redis.Client
	httpServer  *http.Server
	grpcServer  *grpc.Server
	grpcLis     net.Listener
	publisher   *eventadapter.KafkaPublisher
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With("service", cfg.ServiceID)
	slog.SetDefault(logger)

	redisClient, err := redisstore.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	viewCounter := redisstore.NewViewCounter(redisClient, logger)
	if err := viewCounter.LoadScripts(ctx); err != nil {
		return nil, fmt.Errorf("load counter scripts: %w", err)
	}
	configStore := redisstore.NewConfigStore(redisClient, logger)
	historyStore := redisstore.NewHistoryStore(redisClient, logger)
	fraudDetector := redisstore.NewFraudDetector(redisClient, logger, nil)

	ledger := grpcadapter.NewLedgerClient(cfg.LedgerGRPCURL)
	verifier := redisstore.NewUserVerification(redisClient, ledger, logger)
	ticker := rates.NewBlockchainTicker(cfg.RateTickerURL)

	var analytics ports.AnalyticsPublisher
	var kafkaPublisher *eventadapter.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err = eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, eventadapter.Topics{
			ViewCounted:   cfg.TopicViewCounted,
			MilestonePaid: cfg.TopicMilestonePaid,
			CreatorNotify: cfg.TopicCreatorNotify,
		})
		if err != nil {
			return nil, fmt.Errorf("kafka publisher: %w", err)
		}
		analytics = kafkaPublisher
	} else {
		logger.Warn("no kafka brokers configured, events are log-only")
		analytics = eventadapter.NewLoggingPublisher(logger)
	}

	service := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:          cfg.ServiceID,
			WalletMaxTransferE8s: cfg.WalletMaxTransferE8s,
			HistoryDefaultLimit:  cfg.HistoryDefaultLimit,
		},
		Logger:    logger,
		Views:     viewCounter,
		Configs:   configStore,
		History:   historyStore,
		Fraud:     fraudDetector,
		Users:     verifier,
		Rates:     ticker,
		Ledger:    ledger,
		Analytics: analytics,
		Notifier:  eventadapter.NewKafkaNotifier(analytics, ports.EventCreatorNotify),
	})

	handler := httpadapter.NewHandler(service)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	grpcadapter.Register(grpcServer, grpcadapter.NewRewardInternalServer(service))
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return nil, err
	}

	return &Runtime{
		cfg:         cfg,
		logger:      logger,
		redisClient: redisClient,
		httpServer:  httpServer,
		grpcServer:  grpcServer,
		grpcLis:     lis,
		publisher:   kafkaPublisher,
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 2)

	go func() {
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- err
		}
	}()
	r.logger.InfoContext(ctx, "reward engine started",
		"http_port", r.cfg.HTTPPort, "grpc_port", r.cfg.GRPCPort)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	if r.publisher != nil {
		_ = r.publisher.Close()
	}
	_ = r.redisClient.Close()
	return nil
}
