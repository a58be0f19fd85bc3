package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/event"
)

// ChainStore is the registry of chains a LocalWallet knows about.
type ChainStore interface {
	// GetChain returns ErrUnknownChain when the chain is not registered.
	GetChain(chainID uint64) (*ChainDescriptor, error)
	SaveChain(chain ChainDescriptor) error
}

// DialFunc opens a backend for an RPC endpoint.
type DialFunc func(ctx context.Context, rawurl string) (bind.ContractBackend, error)

func dialEthclient(ctx context.Context, rawurl string) (bind.ContractBackend, error) {
	return ethclient.DialContext(ctx, rawurl)
}

// LocalWallet is a single-key Provider for development and headless runs.
type LocalWallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
	store   ChainStore
	dial    DialFunc

	mu       sync.Mutex
	chainID  uint64
	backends map[string]bind.ContractBackend

	feed event.Feed
}

var _ Provider = (*LocalWallet)(nil)

type LocalWalletOption func(*LocalWallet)

func WithDialer(dial DialFunc) LocalWalletOption {
	return func(w *LocalWallet) {
		w.dial = dial
	}
}

// NewLocalWallet creates a wallet for hexKey currently pointed at chainID.
func NewLocalWallet(hexKey string, chainID uint64, store ChainStore, opts ...LocalWalletOption) (*LocalWallet, error) {
	if store == nil {
		return nil, errors.New("chain store is required")
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid wallet private key: %w", err)
	}
	w := &LocalWallet{
		key:      key,
		address:  crypto.PubkeyToAddress(key.PublicKey),
		store:    store,
		dial:     dialEthclient,
		chainID:  chainID,
		backends: make(map[string]bind.ContractBackend),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *LocalWallet) Address() common.Address {
	return w.address
}

func (w *LocalWallet) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	return []common.Address{w.address}, nil
}

func (w *LocalWallet) Accounts(ctx context.Context) ([]common.Address, error) {
	return []common.Address{w.address}, nil
}

func (w *LocalWallet) ChainID(ctx context.Context) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.chainID, nil
}

func (w *LocalWallet) SwitchChain(ctx context.Context, chainID uint64) error {
	if _, err := w.store.GetChain(chainID); err != nil {
		if errors.Is(err, ErrUnknownChain) {
			return &ProviderError{
				Code:    CodeUnrecognizedChain,
				Message: fmt.Sprintf("Unrecognized chain ID %d. Try adding the chain using wallet_addEthereumChain first.", chainID),
			}
		}
		return fmt.Errorf("failed to look up chain %d: %w", chainID, err)
	}

	w.mu.Lock()
	changed := w.chainID != chainID
	w.chainID = chainID
	w.mu.Unlock()

	if changed {
		w.feed.Send(ChainChanged(chainID))
	}
	return nil
}

func (w *LocalWallet) RegisterChain(ctx context.Context, chain ChainDescriptor) error {
	if _, err := chain.ID(); err != nil {
		return &ProviderError{Code: -32602, Message: err.Error()}
	}
	if chain.RPCURL() == "" {
		return &ProviderError{Code: -32602, Message: "rpcUrls must contain at least one url"}
	}
	if err := w.store.SaveChain(chain); err != nil {
		return fmt.Errorf("failed to register chain: %w", err)
	}
	return nil
}

func (w *LocalWallet) Subscribe(ch chan<- Event) event.Subscription {
	return w.feed.Subscribe(ch)
}

func (w *LocalWallet) Signer(account common.Address) Signer {
	return &localSigner{wallet: w, account: account}
}

// backend returns a cached backend for the wallet's current chain.
func (w *LocalWallet) backend(ctx context.Context) (bind.ContractBackend, uint64, error) {
	w.mu.Lock()
	chainID := w.chainID
	w.mu.Unlock()

	chain, err := w.store.GetChain(chainID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to look up chain %d: %w", chainID, err)
	}
	url := chain.RPCURL()

	w.mu.Lock()
	defer w.mu.Unlock()
	if backend, ok := w.backends[url]; ok {
		return backend, chainID, nil
	}
	backend, err := w.dial(ctx, url)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	w.backends[url] = backend
	return backend, chainID, nil
}

type localSigner struct {
	wallet  *LocalWallet
	account common.Address
}

func (s *localSigner) Address() common.Address {
	return s.account
}

func (s *localSigner) SendTransaction(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error) {
	if s.account != s.wallet.address {
		return common.Hash{}, &ProviderError{Code: CodeUnauthorized, Message: "account is not managed by this wallet"}
	}
	if msg.To == nil {
		return common.Hash{}, errors.New("contract creation is not supported")
	}

	backend, chainID, err := s.wallet.backend(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	opts, err := bind.NewKeyedTransactorWithChainID(s.wallet.key, new(big.Int).SetUint64(chainID))
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx
	opts.Value = msg.Value
	opts.GasLimit = msg.Gas

	contract := bind.NewBoundContract(*msg.To, abi.ABI{}, backend, backend, backend)
	tx, err := contract.RawTransact(opts, msg.Data)
	if err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}
