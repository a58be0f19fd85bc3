package contracts

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/rxtech-lab/ignitus-mcp/internal/wallet"
)

var ErrBindingReleased = errors.New("contract binding has been released")

// Backend is the read side of a chain connection.
type Backend interface {
	bind.ContractCaller
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Binding is a handle on a deployed contract for one signer.
type Binding interface {
	Address() common.Address
	Account() common.Address
	// Call runs a read-only method and returns its decoded outputs.
	Call(ctx context.Context, method string, args ...any) ([]any, error)
	// Submit sends a state-changing method, attaching value wei.
	Submit(ctx context.Context, method string, value *big.Int, args ...any) (*PendingTx, error)
	// Release invalidates the binding. It is safe to call more than once.
	Release()
	Released() bool
}

type binding struct {
	spec         *Spec
	contract     *bind.BoundContract
	backend      Backend
	signer       wallet.Signer
	pollInterval time.Duration
	released     atomic.Bool
	onSubmit     func(method string, err error)

	// done is cancelled by Release and aborts in-flight submits.
	done    context.Context
	release context.CancelFunc
}

func newBinding(spec *Spec, backend Backend, signer wallet.Signer, pollInterval time.Duration, onSubmit func(string, error)) *binding {
	done, release := context.WithCancel(context.Background())
	return &binding{
		done:         done,
		release:      release,
		spec:         spec,
		contract:     bind.NewBoundContract(spec.Address, spec.ABI, backend, nil, nil),
		backend:      backend,
		signer:       signer,
		pollInterval: pollInterval,
		onSubmit:     onSubmit,
	}
}

func (b *binding) Address() common.Address {
	return b.spec.Address
}

func (b *binding) Account() common.Address {
	return b.signer.Address()
}

func (b *binding) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	var out []interface{}
	err := b.contract.Call(&bind.CallOpts{Context: ctx, From: b.signer.Address()}, &out, method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}
	return out, nil
}

func (b *binding) Submit(ctx context.Context, method string, value *big.Int, args ...any) (tx *PendingTx, err error) {
	if b.onSubmit != nil {
		defer func() { b.onSubmit(method, err) }()
	}
	if b.Released() {
		return nil, ErrBindingReleased
	}
	input, err := b.spec.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}
	to := b.spec.Address
	msg := ethereum.CallMsg{
		From:  b.signer.Address(),
		To:    &to,
		Value: value,
		Data:  input,
	}

	// a release during the wallet round trip cancels the request
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	stop := context.AfterFunc(b.done, func() { cancel(ErrBindingReleased) })
	defer stop()

	hash, err := b.signer.SendTransaction(ctx, msg)
	if err != nil {
		if b.Released() {
			return nil, fmt.Errorf("failed to send %s: %w", method, ErrBindingReleased)
		}
		return nil, fmt.Errorf("failed to send %s: %w", method, err)
	}
	return &PendingTx{
		Hash:         hash,
		Method:       method,
		msg:          msg,
		backend:      b.backend,
		pollInterval: b.pollInterval,
	}, nil
}

func (b *binding) Release() {
	b.released.Store(true)
	b.release()
}

func (b *binding) Released() bool {
	return b.released.Load()
}

// PendingTx is a submitted transaction that has not been confirmed yet.
type PendingTx struct {
	Hash   common.Hash
	Method string

	msg          ethereum.CallMsg
	backend      Backend
	pollInterval time.Duration
}

// Wait blocks until the transaction is mined. A reverted transaction fails
// with a *wallet.RevertError carrying the contract's reason when available.
func (p *PendingTx) Wait(ctx context.Context) (*types.Receipt, error) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := p.backend.TransactionReceipt(ctx, p.Hash)
		switch {
		case err == nil && receipt != nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, &wallet.RevertError{Reason: p.revertReason(ctx, receipt.BlockNumber)}
			}
			return receipt, nil
		case err != nil && !errors.Is(err, ethereum.NotFound):
			return nil, fmt.Errorf("failed to get receipt for %s: %w", p.Hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// revertReason replays the call at the block it was mined in.
func (p *PendingTx) revertReason(ctx context.Context, block *big.Int) string {
	out, err := p.backend.CallContract(ctx, p.msg, block)
	if err == nil {
		reason, _ := abi.UnpackRevert(out)
		return reason
	}
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if hex, ok := dataErr.ErrorData().(string); ok {
			if data, decodeErr := hexutil.Decode(hex); decodeErr == nil {
				if reason, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
					return reason
				}
			}
		}
	}
	if reason, ok := wallet.RevertReason(err); ok {
		return reason
	}
	return ""
}
