package contracts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/rxtech-lab/ignitus-mcp/internal/wallet"
)

const DefaultPollInterval = 2 * time.Second

// Factory creates contract bindings.
type Factory interface {
	Bind(ctx context.Context, spec *Spec, signer wallet.Signer) (Binding, error)
}

type DialFunc func(ctx context.Context, rawurl string) (Backend, error)

type FactoryOption func(*factory)

func WithPollInterval(d time.Duration) FactoryOption {
	return func(f *factory) {
		if d > 0 {
			f.pollInterval = d
		}
	}
}

func WithBackend(backend Backend) FactoryOption {
	return func(f *factory) {
		f.backend = backend
	}
}

func WithDialer(dial DialFunc) FactoryOption {
	return func(f *factory) {
		f.dial = dial
	}
}

// WithSubmitObserver is called after every Submit.
func WithSubmitObserver(fn func(method string, err error)) FactoryOption {
	return func(f *factory) {
		f.onSubmit = fn
	}
}

type factory struct {
	rpcURL       string
	dial         DialFunc
	pollInterval time.Duration
	onSubmit     func(string, error)

	mu      sync.Mutex
	backend Backend
}

// NewFactory returns a factory reading from rpcURL. The connection is opened
// on the first Bind and reused afterwards.
func NewFactory(rpcURL string, opts ...FactoryOption) Factory {
	f := &factory{
		rpcURL:       rpcURL,
		pollInterval: DefaultPollInterval,
		dial: func(ctx context.Context, rawurl string) (Backend, error) {
			return ethclient.DialContext(ctx, rawurl)
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *factory) Bind(ctx context.Context, spec *Spec, signer wallet.Signer) (Binding, error) {
	if spec == nil {
		return nil, errors.New("contract spec is required")
	}
	if signer == nil {
		return nil, errors.New("signer is required")
	}
	backend, err := f.connect(ctx)
	if err != nil {
		return nil, err
	}
	return newBinding(spec, backend, signer, f.pollInterval, f.onSubmit), nil
}

func (f *factory) connect(ctx context.Context) (Backend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.backend != nil {
		return f.backend, nil
	}
	if f.rpcURL == "" {
		return nil, errors.New("no rpc url configured")
	}
	backend, err := f.dial(ctx, f.rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", f.rpcURL, err)
	}
	f.backend = backend
	return backend, nil
}
