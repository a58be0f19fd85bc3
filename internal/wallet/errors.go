package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

var (
	ErrProviderUnavailable = errors.New("wallet provider unavailable")
	ErrUserRejected        = errors.New("user rejected the request")
	ErrUnknownChain        = errors.New("chain is unknown to the wallet")
	ErrChainSwitchFailed   = errors.New("failed to switch chain")
	ErrChainRegistration   = errors.New("failed to register chain")
	ErrTransactionReverted = errors.New("transaction reverted")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrRequestPending      = errors.New("a wallet request is already pending")
)

// EIP-1193 provider error codes.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnsupportedMethod = 4200
	CodeDisconnected      = 4900
	CodeChainDisconnected = 4901
	CodeUnrecognizedChain = 4902
	CodeRequestPending    = -32002
	CodeInternal          = -32603
)

// ProviderError is an error returned by a wallet over the wire.
type ProviderError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("wallet error %d: %s", e.Code, e.Message)
}

// ErrorCode implements rpc.Error.
func (e *ProviderError) ErrorCode() int {
	return e.Code
}

// ErrorData implements rpc.DataError.
func (e *ProviderError) ErrorData() interface{} {
	if len(e.Data) == 0 {
		return nil
	}
	return string(e.Data)
}

func (e *ProviderError) Is(target error) bool {
	sentinel := classifyCode(e.Code)
	if sentinel == nil {
		sentinel = classifyText(e.Message)
	}
	return sentinel != nil && sentinel == target
}

// RevertError carries the reason a contract rejected a transaction.
type RevertError struct {
	Reason string
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return ErrTransactionReverted.Error()
	}
	return fmt.Sprintf("%s: %s", ErrTransactionReverted, e.Reason)
}

func (e *RevertError) Is(target error) bool {
	return target == ErrTransactionReverted
}

// Classify maps err onto one of the sentinel errors of this package.
// It returns nil when err does not belong to the taxonomy.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		ErrProviderUnavailable,
		ErrUserRejected,
		ErrUnknownChain,
		ErrChainSwitchFailed,
		ErrInsufficientFunds,
		ErrRequestPending,
		ErrTransactionReverted,
	} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		if sentinel := classifyCode(rpcErr.ErrorCode()); sentinel != nil {
			return sentinel
		}
	}
	return classifyText(err.Error())
}

// RevertReason extracts the contract's reason from err, if any.
func RevertReason(err error) (string, bool) {
	var revert *RevertError
	if errors.As(err, &revert) {
		return revert.Reason, true
	}
	if err == nil {
		return "", false
	}
	msg := err.Error()
	idx := strings.Index(msg, "execution reverted")
	if idx < 0 {
		return "", false
	}
	reason := strings.TrimPrefix(msg[idx+len("execution reverted"):], ":")
	return strings.TrimSpace(reason), true
}

func classifyCode(code int) error {
	switch code {
	case CodeUserRejected:
		return ErrUserRejected
	case CodeUnrecognizedChain:
		return ErrUnknownChain
	case CodeRequestPending:
		return ErrRequestPending
	}
	return nil
}

func classifyText(msg string) error {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "user denied"),
		strings.Contains(lower, "user rejected"),
		strings.Contains(lower, "action_rejected"):
		return ErrUserRejected
	case strings.Contains(lower, "insufficient funds"):
		return ErrInsufficientFunds
	case strings.Contains(lower, "unrecognized chain"):
		return ErrUnknownChain
	case strings.Contains(lower, "execution reverted"):
		return ErrTransactionReverted
	}
	return nil
}
