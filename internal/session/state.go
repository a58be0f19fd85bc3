package session

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rxtech-lab/ignitus-mcp/internal/contracts"
)

type State int

const (
	Disconnected State = iota
	// Connecting means an account is known and the chain check or binding is in flight.
	Connecting
	ConnectedWrongChain
	// ConnectedReady is the only state with a live binding.
	ConnectedReady
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case ConnectedWrongChain:
		return "connected_wrong_chain"
	case ConnectedReady:
		return "connected_ready"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// WalletSession is the connected account and the chain the wallet is on.
// ChainID is only meaningful while Connected.
type WalletSession struct {
	Address *common.Address
	ChainID uint64
}

func (w WalletSession) Connected() bool {
	return w.Address != nil
}

// Snapshot is the read-only view of the manager published to consumers.
type Snapshot struct {
	State      State
	Session    WalletSession
	Generation uint64
	Binding    contracts.Binding
}

func (s Snapshot) Ready() bool {
	return s.State == ConnectedReady && s.Binding != nil
}

// ShortAddress renders the account as 0x1234...abcd.
func (s Snapshot) ShortAddress() string {
	if s.Session.Address == nil {
		return ""
	}
	return ShortenAddress(*s.Session.Address)
}

func ShortenAddress(addr common.Address) string {
	hex := addr.Hex()
	return hex[:6] + "..." + hex[len(hex)-4:]
}

type snapshotJSON struct {
	State        State  `json:"state"`
	Connected    bool   `json:"connected"`
	Ready        bool   `json:"ready"`
	Address      string `json:"address,omitempty"`
	ShortAddress string `json:"short_address,omitempty"`
	ChainID      uint64 `json:"chain_id,omitempty"`
	Generation   uint64 `json:"generation"`
	Contract     string `json:"contract,omitempty"`
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{
		State:      s.State,
		Connected:  s.Session.Connected(),
		Ready:      s.Ready(),
		Generation: s.Generation,
	}
	if s.Session.Address != nil {
		out.Address = s.Session.Address.Hex()
		out.ShortAddress = s.ShortAddress()
		out.ChainID = s.Session.ChainID
	}
	if s.Binding != nil {
		out.Contract = s.Binding.Address().Hex()
	}
	return json.Marshal(out)
}
