package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/event"
	"github.com/google/uuid"
)

var ErrUnknownRequest = errors.New("unknown wallet request")

var _ Provider = (*Bridge)(nil)

const (
	DefaultRequestTimeout = 5 * time.Minute
	DefaultPresenceWindow = 45 * time.Second
)

// BridgeRequest is an EIP-1193 request handed to the wallet page.
type BridgeRequest struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// BridgeResponse is the wallet page's answer to a BridgeRequest.
type BridgeResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ProviderError  `json:"error,omitempty"`
}

type bridgeCall struct {
	request *BridgeRequest
	done    chan BridgeResponse
}

// Bridge is a Provider backed by a browser page that owns the injected wallet.
// The page long-polls Next for requests, answers them with Resolve and forwards
// wallet events through Publish.
type Bridge struct {
	requestTimeout time.Duration
	presenceWindow time.Duration
	now            func() time.Time

	mu          sync.Mutex
	pending     map[string]*bridgeCall
	lastSeen    time.Time
	hasProvider bool

	queue chan *bridgeCall
	feed  event.Feed
	// hook for metrics, may be nil
	observe func(method string, err error)
}

type BridgeOption func(*Bridge)

func WithRequestTimeout(d time.Duration) BridgeOption {
	return func(b *Bridge) {
		if d > 0 {
			b.requestTimeout = d
		}
	}
}

func WithPresenceWindow(d time.Duration) BridgeOption {
	return func(b *Bridge) {
		if d > 0 {
			b.presenceWindow = d
		}
	}
}

// WithRequestObserver is called once per completed request.
func WithRequestObserver(fn func(method string, err error)) BridgeOption {
	return func(b *Bridge) {
		b.observe = fn
	}
}

func NewBridge(opts ...BridgeOption) *Bridge {
	b := &Bridge{
		requestTimeout: DefaultRequestTimeout,
		presenceWindow: DefaultPresenceWindow,
		now:            time.Now,
		pending:        make(map[string]*bridgeCall),
		queue:          make(chan *bridgeCall, 64),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Hello records that a page is attached and whether it found an injected wallet.
func (b *Bridge) Hello(hasProvider bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hasProvider = hasProvider
	b.lastSeen = b.now()
}

// Attached reports whether a page with a wallet has been seen recently.
func (b *Bridge) Attached() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attachedLocked()
}

func (b *Bridge) attachedLocked() bool {
	if !b.hasProvider || b.lastSeen.IsZero() {
		return false
	}
	return b.now().Sub(b.lastSeen) <= b.presenceWindow
}

// Next blocks until a request is available for the page or ctx is done.
func (b *Bridge) Next(ctx context.Context) (*BridgeRequest, error) {
	b.touch()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case call := <-b.queue:
			b.mu.Lock()
			_, live := b.pending[call.request.ID]
			b.lastSeen = b.now()
			b.mu.Unlock()
			if !live {
				// abandoned by the caller
				continue
			}
			return call.request, nil
		}
	}
}

// Resolve delivers the page's answer for request id.
func (b *Bridge) Resolve(id string, resp BridgeResponse) error {
	b.mu.Lock()
	call, ok := b.pending[id]
	if ok {
		delete(b.pending, id)
	}
	b.lastSeen = b.now()
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRequest, id)
	}
	call.done <- resp
	return nil
}

// Publish forwards a wallet event reported by the page to subscribers.
func (b *Bridge) Publish(ev Event) int {
	b.touch()
	slog.Debug("wallet event", "kind", ev.Kind, "accounts", len(ev.Accounts), "chain_id", ev.ChainID)
	return b.feed.Send(ev)
}

// Pending returns the number of requests awaiting an answer.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

func (b *Bridge) touch() {
	b.mu.Lock()
	b.lastSeen = b.now()
	b.mu.Unlock()
}

// Request queues an EIP-1193 request and waits for the page's answer.
func (b *Bridge) Request(ctx context.Context, method string, params ...any) (result json.RawMessage, err error) {
	if b.observe != nil {
		defer func() { b.observe(method, err) }()
	}
	if params == nil {
		params = []any{}
	}
	call := &bridgeCall{
		request: &BridgeRequest{ID: uuid.NewString(), Method: method, Params: params},
		done:    make(chan BridgeResponse, 1),
	}

	if err := context.Cause(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	b.mu.Lock()
	if !b.attachedLocked() {
		b.mu.Unlock()
		return nil, ErrProviderUnavailable
	}
	b.pending[call.request.ID] = call
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.pending, call.request.ID)
		b.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, b.requestTimeout)
	defer cancel()

	select {
	case b.queue <- call:
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", method, context.Cause(ctx))
	}

	select {
	case resp := <-call.done:
		if resp.Error != nil {
			return nil, fmt.Errorf("%s: %w", method, resp.Error)
		}
		return resp.Result, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", method, context.Cause(ctx))
	}
}

func (b *Bridge) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	return b.accounts(ctx, "eth_requestAccounts")
}

func (b *Bridge) Accounts(ctx context.Context) ([]common.Address, error) {
	return b.accounts(ctx, "eth_accounts")
}

func (b *Bridge) accounts(ctx context.Context, method string) ([]common.Address, error) {
	raw, err := b.Request(ctx, method)
	if err != nil {
		return nil, err
	}
	var accounts []common.Address
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return accounts, nil
}

func (b *Bridge) ChainID(ctx context.Context) (uint64, error) {
	raw, err := b.Request(ctx, "eth_chainId")
	if err != nil {
		return 0, err
	}
	var hex string
	if err := json.Unmarshal(raw, &hex); err != nil {
		return 0, fmt.Errorf("failed to decode eth_chainId result: %w", err)
	}
	return ParseChainID(hex)
}

func (b *Bridge) SwitchChain(ctx context.Context, chainID uint64) error {
	_, err := b.Request(ctx, "wallet_switchEthereumChain", map[string]string{
		"chainId": hexutil.EncodeUint64(chainID),
	})
	return err
}

func (b *Bridge) RegisterChain(ctx context.Context, chain ChainDescriptor) error {
	_, err := b.Request(ctx, "wallet_addEthereumChain", chain)
	return err
}

func (b *Bridge) Subscribe(ch chan<- Event) event.Subscription {
	return b.feed.Subscribe(ch)
}

func (b *Bridge) Signer(account common.Address) Signer {
	return &bridgeSigner{bridge: b, account: account}
}

type bridgeSigner struct {
	bridge  *Bridge
	account common.Address
}

func (s *bridgeSigner) Address() common.Address {
	return s.account
}

type sendTransactionArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to,omitempty"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Gas   *hexutil.Uint64 `json:"gas,omitempty"`
}

func (s *bridgeSigner) SendTransaction(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error) {
	args := sendTransactionArgs{From: s.account, To: msg.To, Data: msg.Data}
	if msg.Value != nil && msg.Value.Sign() > 0 {
		args.Value = (*hexutil.Big)(msg.Value)
	}
	if msg.Gas > 0 {
		gas := hexutil.Uint64(msg.Gas)
		args.Gas = &gas
	}
	raw, err := s.bridge.Request(ctx, "eth_sendTransaction", args)
	if err != nil {
		return common.Hash{}, err
	}
	var hash common.Hash
	if err := json.Unmarshal(raw, &hash); err != nil {
		return common.Hash{}, fmt.Errorf("failed to decode transaction hash: %w", err)
	}
	return hash, nil
}
