package utils

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// EncodeFunctionArgsToStringMap maps the argument names of a contract method
// to their stringified values, for recording alongside a submitted transaction.
// Unnamed inputs are keyed arg0, arg1, ...
//
// Example:
//
//	args = [big.NewInt(3)]
//	output = {"_id": "3"}
func EncodeFunctionArgsToStringMap(functionName string, args []any, contractABI abi.ABI) (map[string]string, error) {
	method, exists := contractABI.Methods[functionName]
	if !exists {
		return nil, fmt.Errorf("method '%s' not found in ABI", functionName)
	}
	if len(args) != len(method.Inputs) {
		return nil, fmt.Errorf("expected %d arguments for %s, got %d", len(method.Inputs), functionName, len(args))
	}

	result := make(map[string]string, len(args))
	for i, arg := range args {
		argName := method.Inputs[i].Name
		if argName == "" {
			argName = fmt.Sprintf("arg%d", i)
		}
		result[argName] = formatArgValue(arg)
	}
	return result, nil
}

func formatArgValue(arg any) string {
	switch v := arg.(type) {
	case string:
		return v
	case *big.Int:
		if v == nil {
			return "0"
		}
		return v.String()
	case common.Address:
		return v.Hex()
	case common.Hash:
		return v.Hex()
	case bool:
		if v {
			return "true"
		}
		return "false"
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case []byte:
		return "0x" + strings.ToLower(fmt.Sprintf("%x", v))
	default:
		return fmt.Sprintf("%v", v)
	}
}
