package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rxtech-lab/ignitus-mcp/internal/config"
	"github.com/rxtech-lab/ignitus-mcp/internal/contracts"
	"github.com/rxtech-lab/ignitus-mcp/internal/hooks"
	"github.com/rxtech-lab/ignitus-mcp/internal/metrics"
	"github.com/rxtech-lab/ignitus-mcp/internal/notify"
	"github.com/rxtech-lab/ignitus-mcp/internal/services"
	"github.com/rxtech-lab/ignitus-mcp/internal/session"
	"github.com/rxtech-lab/ignitus-mcp/internal/upload"
	"github.com/rxtech-lab/ignitus-mcp/internal/wallet"
)

// Services holds everything the API and MCP servers are built on.
type Services struct {
	Config    *config.Config
	DB        services.DBService
	Chains    services.ChainService
	Txs       services.TransactionService
	Purchases services.PurchaseService
	Uploads   services.UploadService
	Hooks     services.HookService
	Videos    services.VideoService
	Campaigns services.CampaignService
	Notifier  *notify.Notifier
	Session   *session.Manager
	Spec      *contracts.Spec
	// Bridge is nil when transactions are signed with a local key.
	Bridge *wallet.Bridge
}

type options struct {
	factory  contracts.Factory
	uploader upload.Uploader
	logger   *slog.Logger
}

type Option func(*options)

// WithFactory replaces the RPC backed contract factory.
func WithFactory(factory contracts.Factory) Option {
	return func(o *options) {
		o.factory = factory
	}
}

// WithUploader replaces the Pinata uploader.
func WithUploader(uploader upload.Uploader) Option {
	return func(o *options) {
		o.uploader = uploader
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func InitializeServices(cfg *config.Config, dbService services.DBService, opts ...Option) (*Services, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if dbService == nil {
		return nil, errors.New("database service is required")
	}
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.factory == nil {
		o.factory = contracts.NewFactory(cfg.Chain.RPCURL(), contracts.WithSubmitObserver(metrics.ObserveSubmission))
	}
	if o.uploader == nil {
		o.uploader = upload.NewPinataUploader(cfg.PinataJWT, cfg.PinataGateway)
	}

	db := dbService.GetDB()
	svc := &Services{
		Config:    cfg,
		DB:        dbService,
		Chains:    services.NewChainService(db),
		Txs:       services.NewTransactionService(db),
		Purchases: services.NewPurchaseService(db),
		Uploads:   services.NewUploadService(db, o.uploader),
		Hooks:     services.NewHookService(),
	}

	if _, err := svc.Chains.EnsureChain(cfg.Chain); err != nil {
		return nil, fmt.Errorf("failed to store expected chain: %w", err)
	}
	expectedChainID, err := cfg.Chain.ID()
	if err != nil {
		return nil, fmt.Errorf("invalid expected chain: %w", err)
	}

	var provider wallet.Provider
	switch cfg.WalletMode {
	case config.WalletModeLocal:
		local, err := wallet.NewLocalWallet(cfg.WalletPrivateKey, expectedChainID, svc.Chains)
		if err != nil {
			return nil, err
		}
		o.logger.Info("signing with local wallet", "address", local.Address().Hex())
		provider = local
	default:
		svc.Bridge = wallet.NewBridge(
			wallet.WithRequestTimeout(cfg.WalletBridgeTimeout),
			wallet.WithRequestObserver(metrics.ObserveWalletRequest),
		)
		provider = svc.Bridge
	}

	if svc.Spec, err = loadSpec(cfg); err != nil {
		return nil, err
	}

	svc.Notifier = notify.New(notify.DefaultCapacity,
		notify.WithChain(cfg.Chain.ChainName, cfg.Chain.NativeCurrency.Symbol),
		notify.WithObserver(metrics.ObserveNotification),
	)

	svc.Session, err = session.NewManager(provider, o.factory, svc.Spec, cfg.Chain,
		session.WithLogger(o.logger),
		session.WithTransitionHook(metrics.ObserveTransition),
		session.WithStaleHook(metrics.ObserveStale),
		session.WithErrorHook(func(err error) { svc.Notifier.Error(err) }),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	deps := services.ActionDeps{
		Session:       svc.Session,
		Spec:          svc.Spec,
		Txs:           svc.Txs,
		Hooks:         svc.Hooks,
		Notifier:      svc.Notifier,
		ExplorerTxURL: cfg.Chain.ExplorerTxURL,
		Logger:        o.logger,
	}
	svc.Videos = services.NewVideoService(deps, svc.Purchases)
	svc.Campaigns = services.NewCampaignService(deps)

	if err := RegisterHooks(svc.Hooks, InitializeHooks(svc.Purchases)...); err != nil {
		return nil, err
	}
	return svc, nil
}

func loadSpec(cfg *config.Config) (*contracts.Spec, error) {
	if cfg.ContractDataPath == "" {
		return contracts.IgnitusSpec(cfg.ContractAddressOrZero())
	}
	spec, err := contracts.LoadSpec(cfg.ContractDataPath)
	if err != nil {
		return nil, err
	}
	if cfg.ContractAddress != "" {
		spec = spec.WithAddress(cfg.ContractAddressOrZero())
	}
	return spec, nil
}

func InitializeHooks(purchases services.PurchaseService) []services.Hook {
	return []services.Hook{
		hooks.NewPurchaseHook(purchases),
	}
}

func RegisterHooks(hookService services.HookService, hooks ...services.Hook) error {
	for _, hook := range hooks {
		if err := hookService.AddHook(hook); err != nil {
			return fmt.Errorf("failed to register hook: %w", err)
		}
	}
	return nil
}

// Start begins processing wallet events. In local mode the signing account
// is adopted right away; the browser page restores its own session on load.
func (s *Services) Start(ctx context.Context) error {
	if err := s.Session.Start(ctx); err != nil {
		return fmt.Errorf("failed to start wallet session: %w", err)
	}
	if s.Bridge != nil {
		return nil
	}
	if _, err := s.Session.Restore(ctx); err != nil {
		slog.Warn("failed to restore wallet session", "error", err)
		s.Notifier.Error(err)
	}
	return nil
}

func (s *Services) Close() error {
	return errors.Join(s.Session.Close(), s.DB.Close())
}
