package contracts

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

//go:embed abi/ignitus.json
var ignitusJSON []byte

// Spec describes a deployed contract: where it lives and its interface.
type Spec struct {
	Address common.Address
	ABI     abi.ABI
}

// contractData is the on-disk format, {"address": "0x...", "abi": [...]}.
type contractData struct {
	Address string          `json:"address"`
	ABI     json.RawMessage `json:"abi"`
}

// ParseSpec decodes a contractData document.
func ParseSpec(data []byte) (*Spec, error) {
	var doc contractData
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contract data: %w", err)
	}
	if len(doc.ABI) == 0 {
		return nil, fmt.Errorf("contract data has no abi")
	}
	parsed, err := abi.JSON(bytes.NewReader(doc.ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract abi: %w", err)
	}
	spec := &Spec{ABI: parsed}
	if doc.Address != "" {
		if !common.IsHexAddress(doc.Address) {
			return nil, fmt.Errorf("invalid contract address %q", doc.Address)
		}
		spec.Address = common.HexToAddress(doc.Address)
	}
	return spec, nil
}

// LoadSpec reads a contractData file from disk.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read contract data: %w", err)
	}
	return ParseSpec(data)
}

// IgnitusSpec returns the embedded Ignitus interface bound to address.
func IgnitusSpec(address common.Address) (*Spec, error) {
	spec, err := ParseSpec(ignitusJSON)
	if err != nil {
		return nil, err
	}
	spec.Address = address
	return spec, nil
}

// WithAddress returns a copy of the spec pointing at address.
func (s *Spec) WithAddress(address common.Address) *Spec {
	return &Spec{Address: address, ABI: s.ABI}
}
