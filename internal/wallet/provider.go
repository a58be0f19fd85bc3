package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
)

// Provider is the request/response contract of an EIP-1193 style wallet.
// Implementations must be safe for concurrent use.
type Provider interface {
	// RequestAccounts asks the wallet to authorize accounts. It may prompt the user.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	// Accounts returns the accounts that are already authorized, without prompting.
	Accounts(ctx context.Context) ([]common.Address, error)
	// ChainID returns the chain the wallet is currently pointed at.
	ChainID(ctx context.Context) (uint64, error)
	// SwitchChain asks the wallet to move to chainID. Fails with ErrUnknownChain
	// when the wallet has never seen the chain.
	SwitchChain(ctx context.Context, chainID uint64) error
	// RegisterChain adds a chain to the wallet.
	RegisterChain(ctx context.Context, chain ChainDescriptor) error
	// Subscribe delivers accountsChanged and chainChanged events to ch.
	Subscribe(ch chan<- Event) event.Subscription
	// Signer returns a transaction sender for the given account.
	Signer(account common.Address) Signer
}

// Signer sends transactions on behalf of a single account.
type Signer interface {
	Address() common.Address
	SendTransaction(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error)
}

type EventKind string

const (
	EventAccountsChanged EventKind = "accountsChanged"
	EventChainChanged    EventKind = "chainChanged"
)

// Event is a change reported by the wallet outside of any request.
type Event struct {
	Kind     EventKind        `json:"kind"`
	Accounts []common.Address `json:"accounts,omitempty"`
	ChainID  uint64           `json:"chain_id,omitempty"`
}

func AccountsChanged(accounts ...common.Address) Event {
	return Event{Kind: EventAccountsChanged, Accounts: accounts}
}

func ChainChanged(chainID uint64) Event {
	return Event{Kind: EventChainChanged, ChainID: chainID}
}
