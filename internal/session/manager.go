package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"golang.org/x/sync/singleflight"

	"github.com/rxtech-lab/ignitus-mcp/internal/contracts"
	"github.com/rxtech-lab/ignitus-mcp/internal/wallet"
)

var (
	ErrNotConnected   = errors.New("wallet is not connected")
	ErrNotReady       = errors.New("contract not initialized, wallet session is not ready")
	ErrSuperseded     = errors.New("wallet session changed while the request was in flight")
	ErrAlreadyStarted = errors.New("session manager already started")
)

// Manager owns the wallet session and the contract binding derived from it.
//
// Every state-changing flow takes a new generation under the lock and drops
// the current binding before doing any provider or factory I/O. Results of an
// attempt are only committed while its generation is still current.
type Manager struct {
	provider   wallet.Provider
	factory    contracts.Factory
	contract   *contracts.Spec
	chain      wallet.ChainDescriptor
	expectedID uint64
	logger     *slog.Logger
	onChange   func(from, to State)
	onStale    func()
	onError    func(error)

	connects singleflight.Group

	mu          sync.Mutex
	generation  uint64
	state       State
	address     *common.Address
	chainID     uint64
	binding     contracts.Binding
	switchingTo uint64
	// restoring is closed when the in-flight Restore returns.
	restoring  chan struct{}
	connecting bool

	publishMu sync.Mutex
	changes   event.Feed

	loopMu  sync.Mutex
	sub     event.Subscription
	cancel  context.CancelFunc
	loopWG  sync.WaitGroup
	handler sync.WaitGroup
}

type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithTransitionHook is called after every state transition.
func WithTransitionHook(fn func(from, to State)) Option {
	return func(m *Manager) {
		m.onChange = fn
	}
}

// WithStaleHook is called whenever the result of a superseded attempt is discarded.
func WithStaleHook(fn func()) Option {
	return func(m *Manager) {
		m.onStale = fn
	}
}

// WithErrorHook is called when handling a wallet event fails.
func WithErrorHook(fn func(error)) Option {
	return func(m *Manager) {
		m.onError = fn
	}
}

// NewManager creates a manager for the contract described by spec on chain.
// A nil provider behaves as a missing wallet.
func NewManager(provider wallet.Provider, factory contracts.Factory, spec *contracts.Spec, chain wallet.ChainDescriptor, opts ...Option) (*Manager, error) {
	if factory == nil {
		return nil, errors.New("contract factory is required")
	}
	if spec == nil {
		return nil, errors.New("contract spec is required")
	}
	expectedID, err := chain.ID()
	if err != nil {
		return nil, fmt.Errorf("invalid expected chain: %w", err)
	}
	m := &Manager{
		provider:   provider,
		factory:    factory,
		contract:   spec,
		chain:      chain,
		expectedID: expectedID,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Manager) ExpectedChain() wallet.ChainDescriptor {
	return m.chain
}

func (m *Manager) ExpectedChainID() uint64 {
	return m.expectedID
}

// Provider returns the wallet provider, or nil when none is configured.
func (m *Manager) Provider() wallet.Provider {
	return m.provider
}

// Snapshot returns the current published view.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Ready returns the live binding, or ErrNotReady.
func (m *Manager) Ready() (contracts.Binding, Snapshot, error) {
	snap := m.Snapshot()
	if !snap.Ready() {
		return nil, snap, ErrNotReady
	}
	return snap.Binding, snap, nil
}

// SubscribeChanges delivers a snapshot after every transition. Snapshots are
// sent in transition order; ch should be buffered.
func (m *Manager) SubscribeChanges(ch chan<- Snapshot) event.Subscription {
	return m.changes.Subscribe(ch)
}

// Connect asks the wallet for an account and drives the session to ready.
// Concurrent calls share one attempt. A Restore in flight is awaited first and
// the wallet is only prompted when it did not leave the session ready.
func (m *Manager) Connect(ctx context.Context) (Snapshot, error) {
	return m.coalesce(ctx, "connect", func(ctx context.Context) (Snapshot, error) {
		if m.provider == nil {
			return m.Snapshot(), wallet.ErrProviderUnavailable
		}
		waited, err := m.beginConnect(ctx)
		if err != nil {
			return m.Snapshot(), err
		}
		defer m.endConnect()
		if snap := m.Snapshot(); waited && snap.Ready() {
			return snap, nil
		}

		accounts, err := m.provider.RequestAccounts(ctx)
		if err != nil {
			return m.Snapshot(), fmt.Errorf("failed to request accounts: %w", err)
		}
		if len(accounts) == 0 {
			return m.Snapshot(), wallet.ErrUserRejected
		}
		gen := m.adopt(accounts[0], false)
		return m.ensure(ctx, gen)
	})
}

// Restore adopts an account the wallet has already authorized, without prompting.
// It is a no-op when the wallet reports no accounts, when a Connect is already
// prompting, or when the account is already ready.
func (m *Manager) Restore(ctx context.Context) (Snapshot, error) {
	return m.coalesce(ctx, "restore", func(ctx context.Context) (Snapshot, error) {
		if m.provider == nil {
			return m.Snapshot(), wallet.ErrProviderUnavailable
		}
		done := make(chan struct{})
		m.mu.Lock()
		m.restoring = done
		m.mu.Unlock()
		defer func() {
			m.mu.Lock()
			m.restoring = nil
			m.mu.Unlock()
			close(done)
		}()

		accounts, err := m.provider.Accounts(ctx)
		if err != nil {
			return m.Snapshot(), fmt.Errorf("failed to read authorized accounts: %w", err)
		}
		if len(accounts) == 0 {
			return m.Snapshot(), nil
		}
		m.mu.Lock()
		if m.connecting || (m.state == ConnectedReady && *m.address == accounts[0]) {
			snap := m.snapshotLocked()
			m.mu.Unlock()
			return snap, nil
		}
		gen := m.adoptLocked(accounts[0], false)
		return m.ensure(ctx, gen)
	})
}

// beginConnect waits out any Restore in flight and marks a Connect as
// prompting. It reports whether it had to wait.
func (m *Manager) beginConnect(ctx context.Context) (bool, error) {
	waited := false
	for {
		m.mu.Lock()
		restoring := m.restoring
		if restoring == nil {
			m.connecting = true
			m.mu.Unlock()
			return waited, nil
		}
		m.mu.Unlock()

		waited = true
		select {
		case <-restoring:
		case <-ctx.Done():
			return waited, ctx.Err()
		}
	}
}

func (m *Manager) endConnect() {
	m.mu.Lock()
	m.connecting = false
	m.mu.Unlock()
}

func (m *Manager) coalesce(ctx context.Context, key string, fn func(context.Context) (Snapshot, error)) (Snapshot, error) {
	type result struct {
		snap Snapshot
		err  error
	}
	v, _, _ := m.connects.Do(key, func() (any, error) {
		snap, err := fn(ctx)
		return result{snap: snap, err: err}, nil
	})
	r := v.(result)
	return r.snap, r.err
}

// Disconnect clears the session and the binding. It never calls the wallet.
func (m *Manager) Disconnect() Snapshot {
	m.mu.Lock()
	from := m.state
	m.generation++
	m.dropBindingLocked()
	m.address = nil
	m.chainID = 0
	m.switchingTo = 0
	m.state = Disconnected
	m.logger.Info("wallet disconnected", "generation", m.generation)
	return m.unlockAndPublish(from)
}

// EnsureExpectedChain verifies the wallet is on the expected chain, switching
// (and registering the chain once if the wallet does not know it) otherwise.
func (m *Manager) EnsureExpectedChain(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	if m.address == nil {
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap, ErrNotConnected
	}
	if m.state == ConnectedReady {
		gen := m.generation
		m.mu.Unlock()
		current, err := m.provider.ChainID(ctx)
		if err != nil {
			return m.Snapshot(), fmt.Errorf("failed to read chain id: %w", err)
		}
		m.mu.Lock()
		if gen == m.generation && current == m.expectedID {
			snap := m.snapshotLocked()
			m.mu.Unlock()
			return snap, nil
		}
		m.mu.Unlock()
		return m.OnChainChanged(ctx, current)
	}
	from := m.state
	m.generation++
	gen := m.generation
	m.dropBindingLocked()
	m.state = Connecting
	m.unlockAndPublish(from)
	return m.ensure(ctx, gen)
}

// OnAccountsChanged reacts to the wallet's authorized account set changing.
func (m *Manager) OnAccountsChanged(ctx context.Context, accounts []common.Address) (Snapshot, error) {
	gen, run := m.beginAccountsChanged(accounts)
	if !run {
		return m.Snapshot(), nil
	}
	return m.ensure(ctx, gen)
}

// OnChainChanged reacts to the wallet moving to another chain.
func (m *Manager) OnChainChanged(ctx context.Context, chainID uint64) (Snapshot, error) {
	gen, run := m.beginChainChanged(chainID)
	if !run {
		return m.Snapshot(), nil
	}
	return m.ensure(ctx, gen)
}

// beginAccountsChanged applies the synchronous part of an accounts change and
// reports whether a chain check must follow.
func (m *Manager) beginAccountsChanged(accounts []common.Address) (uint64, bool) {
	if len(accounts) == 0 {
		m.mu.Lock()
		connected := m.address != nil
		m.mu.Unlock()
		if connected {
			m.Disconnect()
		}
		return 0, false
	}
	m.mu.Lock()
	if m.address == nil || *m.address == accounts[0] {
		m.mu.Unlock()
		return 0, false
	}
	m.mu.Unlock()
	return m.adopt(accounts[0], true), true
}

func (m *Manager) beginChainChanged(chainID uint64) (uint64, bool) {
	m.mu.Lock()
	if m.address == nil {
		m.mu.Unlock()
		return 0, false
	}
	if chainID == m.expectedID {
		ours := m.state == Connecting && m.switchingTo == chainID
		settled := (m.state == ConnectedReady || m.state == Connecting) && m.chainID == chainID
		if ours || settled {
			m.mu.Unlock()
			return 0, false
		}
		if m.state == Connecting && m.chainID == 0 {
			// the in-flight check has not read the chain yet and switches if it must
			m.chainID = chainID
			m.mu.Unlock()
			return 0, false
		}
	}
	from := m.state
	m.generation++
	gen := m.generation
	m.dropBindingLocked()
	m.chainID = chainID
	m.switchingTo = 0
	m.state = Connecting
	m.logger.Info("wallet chain changed", "chain_id", chainID, "generation", gen)
	m.unlockAndPublish(from)
	return gen, true
}

// adopt records account as the session address under a new generation.
func (m *Manager) adopt(account common.Address, keepChain bool) uint64 {
	m.mu.Lock()
	return m.adoptLocked(account, keepChain)
}

// adoptLocked is adopt with m.mu held; it releases the lock.
func (m *Manager) adoptLocked(account common.Address, keepChain bool) uint64 {
	from := m.state
	m.generation++
	gen := m.generation
	m.dropBindingLocked()
	m.address = &account
	if !keepChain {
		m.chainID = 0
	}
	m.switchingTo = 0
	m.state = Connecting
	m.logger.Info("wallet account adopted", "address", account.Hex(), "generation", gen)
	m.unlockAndPublish(from)
	return gen
}

// ensure runs the chain check for generation gen and rebuilds the binding.
func (m *Manager) ensure(ctx context.Context, gen uint64) (Snapshot, error) {
	current, err := m.provider.ChainID(ctx)
	if err != nil {
		return m.fail(gen, fmt.Errorf("failed to read chain id: %w", err))
	}
	if !m.setChain(gen, current) {
		return m.stale(gen)
	}

	if current != m.expectedID {
		err := m.switchChain(ctx)
		if !m.finishSwitch(gen, err == nil) {
			return m.stale(gen)
		}
		if err != nil {
			return m.fail(gen, err)
		}
	}
	return m.rebuildBinding(ctx, gen)
}

// switchChain moves the wallet to the expected chain. The caller marks the
// switch as in flight through setChain and ends it with finishSwitch.
func (m *Manager) switchChain(ctx context.Context) error {
	err := m.provider.SwitchChain(ctx, m.expectedID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, wallet.ErrUnknownChain) {
		return fmt.Errorf("%w: %w", wallet.ErrChainSwitchFailed, err)
	}

	m.logger.Info("registering chain with wallet", "chain", m.chain.ChainName, "chain_id", m.chain.ChainID)
	if regErr := m.provider.RegisterChain(ctx, m.chain); regErr != nil {
		return fmt.Errorf("%w: %w: %w", wallet.ErrChainSwitchFailed, wallet.ErrChainRegistration, regErr)
	}
	if err := m.provider.SwitchChain(ctx, m.expectedID); err != nil {
		return fmt.Errorf("%w: %w", wallet.ErrChainSwitchFailed, err)
	}
	return nil
}

// rebuildBinding replaces the binding for generation gen. The previous binding
// is released before the factory is called.
func (m *Manager) rebuildBinding(ctx context.Context, gen uint64) (Snapshot, error) {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return m.stale(gen)
	}
	m.dropBindingLocked()
	account := *m.address
	m.mu.Unlock()

	binding, err := m.factory.Bind(ctx, m.contract, m.provider.Signer(account))

	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		if binding != nil {
			binding.Release()
		}
		return m.stale(gen)
	}
	if err != nil {
		m.mu.Unlock()
		return m.fail(gen, fmt.Errorf("failed to bind contract: %w", err))
	}
	from := m.state
	m.binding = binding
	m.state = ConnectedReady
	m.logger.Info("wallet session ready", "address", account.Hex(), "chain_id", m.chainID, "generation", gen)
	return m.unlockAndPublish(from), nil
}

// setChain records the chain read for generation gen and marks a switch to the
// expected chain as in flight when the wallet is elsewhere.
func (m *Manager) setChain(gen uint64, chainID uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		return false
	}
	m.chainID = chainID
	m.switchingTo = 0
	if chainID != m.expectedID {
		m.switchingTo = m.expectedID
	}
	return true
}

func (m *Manager) finishSwitch(gen uint64, switched bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		return false
	}
	m.switchingTo = 0
	if switched {
		m.chainID = m.expectedID
	}
	return true
}

// fail moves generation gen to ConnectedWrongChain and returns err.
func (m *Manager) fail(gen uint64, err error) (Snapshot, error) {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return m.stale(gen)
	}
	from := m.state
	m.dropBindingLocked()
	m.state = ConnectedWrongChain
	m.logger.Warn("wallet session not ready", "error", err, "generation", gen)
	return m.unlockAndPublish(from), err
}

func (m *Manager) stale(gen uint64) (Snapshot, error) {
	m.logger.Debug("discarding superseded session attempt", "generation", gen)
	if m.onStale != nil {
		m.onStale()
	}
	return m.Snapshot(), ErrSuperseded
}

func (m *Manager) dropBindingLocked() {
	if m.binding != nil {
		m.binding.Release()
		m.binding = nil
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:      m.state,
		Generation: m.generation,
		Binding:    m.binding,
	}
	if m.address != nil {
		addr := *m.address
		snap.Session = WalletSession{Address: &addr, ChainID: m.chainID}
	}
	return snap
}

// unlockAndPublish releases m.mu and publishes the new snapshot in order.
func (m *Manager) unlockAndPublish(from State) Snapshot {
	snap := m.snapshotLocked()
	m.publishMu.Lock()
	m.mu.Unlock()
	defer m.publishMu.Unlock()

	if m.onChange != nil && from != snap.State {
		m.onChange(from, snap.State)
	}
	m.changes.Send(snap)
	return snap
}
