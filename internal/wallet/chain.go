package wallet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// NeroTestnetChainID is the chain id of the Nero testnet (0x2b1).
const NeroTestnetChainID uint64 = 689

type NativeCurrency struct {
	Name     string `json:"name" validate:"required"`
	Symbol   string `json:"symbol" validate:"required"`
	Decimals uint8  `json:"decimals"`
}

// ChainDescriptor is the payload of wallet_addEthereumChain.
type ChainDescriptor struct {
	ChainID           string         `json:"chainId" validate:"required,hexadecimal"`
	ChainName         string         `json:"chainName" validate:"required"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	RPCURLs           []string       `json:"rpcUrls" validate:"required,min=1,dive,url"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls,omitempty" validate:"omitempty,dive,url"`
}

// NeroTestnet is the chain the Ignitus contracts are deployed on.
var NeroTestnet = NewChainDescriptor(
	NeroTestnetChainID,
	"Nero Testnet",
	NativeCurrency{Name: "NERO", Symbol: "NERO", Decimals: 18},
	[]string{"https://rpc-testnet.nerochain.io"},
	[]string{"https://testnet.neroscan.io/"},
)

func NewChainDescriptor(chainID uint64, name string, currency NativeCurrency, rpcURLs, explorerURLs []string) ChainDescriptor {
	return ChainDescriptor{
		ChainID:           hexutil.EncodeUint64(chainID),
		ChainName:         name,
		NativeCurrency:    currency,
		RPCURLs:           rpcURLs,
		BlockExplorerURLs: explorerURLs,
	}
}

// ID decodes the hex chain id.
func (d ChainDescriptor) ID() (uint64, error) {
	return ParseChainID(d.ChainID)
}

// RPCURL returns the first RPC endpoint, or an empty string.
func (d ChainDescriptor) RPCURL() string {
	if len(d.RPCURLs) == 0 {
		return ""
	}
	return d.RPCURLs[0]
}

// ExplorerTxURL links a transaction hash on the chain's first block explorer.
func (d ChainDescriptor) ExplorerTxURL(txHash string) string {
	if len(d.BlockExplorerURLs) == 0 {
		return ""
	}
	return strings.TrimSuffix(d.BlockExplorerURLs[0], "/") + "/tx/" + txHash
}

// ParseChainID accepts "0x2b1", "0x2B1" or a decimal "689".
func ParseChainID(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty chain id")
	}
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		digits := strings.TrimLeft(strings.ToLower(raw[2:]), "0")
		if digits == "" {
			digits = "0"
		}
		id, err := hexutil.DecodeUint64("0x" + digits)
		if err != nil {
			return 0, fmt.Errorf("invalid chain id %q: %w", raw, err)
		}
		return id, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %q: %w", raw, err)
	}
	return id, nil
}
