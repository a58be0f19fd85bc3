package session

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"

	"github.com/rxtech-lab/ignitus-mcp/internal/contracts"
	"github.com/rxtech-lab/ignitus-mcp/internal/wallet"
)

var (
	accountA = common.HexToAddress("0xaAaAaAaaAaAaAaaAaAAAAAAAAaaaAaAaAaaAaaAa")
	accountB = common.HexToAddress("0xbBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB")
)

type fakeProvider struct {
	mu sync.Mutex

	accounts      []common.Address
	requestErr    error
	chainID       uint64
	known         map[uint64]bool
	switchErr     error
	registerErr   error
	requestCalls  int
	switchCalls   int
	registerCalls int
	requestGate   chan struct{}
	// unauthorized makes Accounts report nothing, as before the user approves.
	unauthorized bool
	accountsGate *gate
	chainGate    *gate

	feed event.Feed
}

func newFakeProvider(chainID uint64, accounts ...common.Address) *fakeProvider {
	return &fakeProvider{
		accounts: accounts,
		chainID:  chainID,
		known:    map[uint64]bool{chainID: true},
	}
}

func (p *fakeProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	p.mu.Lock()
	p.requestCalls++
	gate := p.requestGate
	p.mu.Unlock()
	if gate != nil {
		<-gate
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.requestErr != nil {
		return nil, p.requestErr
	}
	return append([]common.Address(nil), p.accounts...), nil
}

func (p *fakeProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	p.mu.Lock()
	g := p.accountsGate
	p.mu.Unlock()
	g.pass()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unauthorized {
		return nil, nil
	}
	return append([]common.Address(nil), p.accounts...), nil
}

func (p *fakeProvider) ChainID(ctx context.Context) (uint64, error) {
	p.mu.Lock()
	g := p.chainGate
	p.mu.Unlock()
	g.pass()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chainID, nil
}

// holdAccounts makes Accounts wait until the returned gate is opened.
func (p *fakeProvider) holdAccounts() *gate {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accountsGate = newGate()
	return p.accountsGate
}

// holdChainID makes ChainID wait until the returned gate is opened.
func (p *fakeProvider) holdChainID() *gate {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chainGate = newGate()
	return p.chainGate
}

func (p *fakeProvider) requests() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requestCalls
}

// gate blocks callers of pass until open is called. entered is closed when
// the first caller arrives.
type gate struct {
	once    sync.Once
	entered chan struct{}
	opened  chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}), opened: make(chan struct{})}
}

func (g *gate) pass() {
	if g == nil {
		return
	}
	g.once.Do(func() { close(g.entered) })
	<-g.opened
}

func (g *gate) open() {
	close(g.opened)
}

func (p *fakeProvider) SwitchChain(ctx context.Context, chainID uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.switchCalls++
	if p.switchErr != nil {
		return p.switchErr
	}
	if !p.known[chainID] {
		return &wallet.ProviderError{Code: wallet.CodeUnrecognizedChain, Message: "Unrecognized chain ID"}
	}
	p.chainID = chainID
	return nil
}

func (p *fakeProvider) RegisterChain(ctx context.Context, chain wallet.ChainDescriptor) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registerCalls++
	if p.registerErr != nil {
		return p.registerErr
	}
	id, err := chain.ID()
	if err != nil {
		return err
	}
	p.known[id] = true
	return nil
}

func (p *fakeProvider) Subscribe(ch chan<- wallet.Event) event.Subscription {
	return p.feed.Subscribe(ch)
}

func (p *fakeProvider) Signer(account common.Address) wallet.Signer {
	return fakeSigner{account: account}
}

func (p *fakeProvider) counts() (switches, registers int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.switchCalls, p.registerCalls
}

func (p *fakeProvider) setChain(chainID uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chainID = chainID
	p.known[chainID] = true
}

type fakeSigner struct {
	account common.Address
}

func (s fakeSigner) Address() common.Address {
	return s.account
}

func (s fakeSigner) SendTransaction(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error) {
	return common.Hash{}, nil
}

type fakeBinding struct {
	account  common.Address
	released bool
	mu       sync.Mutex
}

func (b *fakeBinding) Address() common.Address { return common.HexToAddress("0xc0ffee") }
func (b *fakeBinding) Account() common.Address { return b.account }

func (b *fakeBinding) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	return nil, nil
}

func (b *fakeBinding) Submit(ctx context.Context, method string, value *big.Int, args ...any) (*contracts.PendingTx, error) {
	if b.Released() {
		return nil, contracts.ErrBindingReleased
	}
	return &contracts.PendingTx{Method: method}, nil
}

func (b *fakeBinding) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released = true
}

func (b *fakeBinding) Released() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}

// fakeFactory records every binding it hands out. Binds for accounts with a
// gate block until the gate is closed.
type fakeFactory struct {
	mu       sync.Mutex
	bindings []*fakeBinding
	gates    map[common.Address]chan struct{}
	entered  map[common.Address]chan struct{}
	err      error
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{
		gates:   make(map[common.Address]chan struct{}),
		entered: make(map[common.Address]chan struct{}),
	}
}

// hold makes binds for account wait; the returned channel closes once one has started.
func (f *fakeFactory) hold(account common.Address) (release func(), entered <-chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	in := make(chan struct{})
	f.gates[account] = gate
	f.entered[account] = in
	return func() { close(gate) }, in
}

func (f *fakeFactory) Bind(ctx context.Context, spec *contracts.Spec, signer wallet.Signer) (contracts.Binding, error) {
	f.mu.Lock()
	gate := f.gates[signer.Address()]
	in := f.entered[signer.Address()]
	delete(f.entered, signer.Address())
	f.mu.Unlock()
	if in != nil {
		close(in)
	}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	b := &fakeBinding{account: signer.Address()}
	f.bindings = append(f.bindings, b)
	return b, nil
}

// live returns the bindings that have not been released.
func (f *fakeFactory) live() []*fakeBinding {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*fakeBinding
	for _, b := range f.bindings {
		if !b.Released() {
			out = append(out, b)
		}
	}
	return out
}
