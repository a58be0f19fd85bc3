package session

import (
	"context"
	"errors"

	"github.com/rxtech-lab/ignitus-mcp/internal/wallet"
)

// Start installs the wallet event subscription and processes events until
// Close is called or ctx is done. It can only be called once.
func (m *Manager) Start(ctx context.Context) error {
	m.loopMu.Lock()
	defer m.loopMu.Unlock()
	if m.sub != nil {
		return ErrAlreadyStarted
	}
	if m.provider == nil {
		return wallet.ErrProviderUnavailable
	}

	ctx, cancel := context.WithCancel(ctx)
	events := make(chan wallet.Event, 16)
	m.sub = m.provider.Subscribe(events)
	m.cancel = cancel

	m.loopWG.Add(1)
	go m.loop(ctx, events)
	return nil
}

// Close tears down the subscription and waits for in-flight handlers.
func (m *Manager) Close() error {
	m.loopMu.Lock()
	defer m.loopMu.Unlock()
	if m.sub == nil {
		return nil
	}
	m.sub.Unsubscribe()
	m.cancel()
	m.loopWG.Wait()
	m.handler.Wait()
	return nil
}

// loop applies the synchronous part of each event in arrival order, so the
// generation order matches event order, and runs the chain check concurrently.
func (m *Manager) loop(ctx context.Context, events <-chan wallet.Event) {
	defer m.loopWG.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-m.sub.Err():
			if ok && err != nil {
				m.logger.Error("wallet subscription failed", "error", err)
			}
			return
		case ev := <-events:
			var (
				gen uint64
				run bool
			)
			switch ev.Kind {
			case wallet.EventAccountsChanged:
				gen, run = m.beginAccountsChanged(ev.Accounts)
			case wallet.EventChainChanged:
				gen, run = m.beginChainChanged(ev.ChainID)
			default:
				m.logger.Warn("ignoring unknown wallet event", "kind", ev.Kind)
			}
			if !run {
				continue
			}
			m.handler.Add(1)
			go func() {
				defer m.handler.Done()
				if _, err := m.ensure(ctx, gen); err != nil && !errors.Is(err, ErrSuperseded) {
					m.logger.Warn("wallet event handling failed", "kind", ev.Kind, "error", err)
					if m.onError != nil {
						m.onError(err)
					}
				}
			}()
		}
	}
}
