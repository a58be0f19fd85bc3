package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/rxtech-lab/ignitus-mcp/internal/contracts"
	"github.com/rxtech-lab/ignitus-mcp/internal/models"
	"github.com/rxtech-lab/ignitus-mcp/internal/notify"
	"github.com/rxtech-lab/ignitus-mcp/internal/session"
	"github.com/rxtech-lab/ignitus-mcp/internal/utils"
)

// ErrListingNotFound is returned for a video or campaign id the contract does not know
var ErrListingNotFound = errors.New("listing not found")

// SessionReader is the view of the wallet session the action services need.
type SessionReader interface {
	Ready() (contracts.Binding, session.Snapshot, error)
}

// ActionResult describes a confirmed contract transaction
type ActionResult struct {
	TransactionHash string                   `json:"transaction_hash"`
	Method          string                   `json:"method"`
	Status          models.TransactionStatus `json:"status"`
	Account         string                   `json:"account"`
	Value           string                   `json:"value"`
	ExplorerURL     string                   `json:"explorer_url,omitempty"`
	Message         string                   `json:"message"`
}

// ActionDeps are shared by the video and campaign services.
type ActionDeps struct {
	Session  SessionReader
	Spec     *contracts.Spec
	Txs      TransactionService
	Hooks    HookService
	Notifier *notify.Notifier
	// ExplorerTxURL links a transaction hash, optional.
	ExplorerTxURL func(hash string) string
	Logger        *slog.Logger
	Now           func() time.Time
}

type action struct {
	txType    models.TransactionType
	listingID *uint64
	value     *big.Int
	args      []any
	success   string
	submit    func(ctx context.Context, c *contracts.Ignitus) (*contracts.PendingTx, error)
}

type actionRunner struct {
	deps  ActionDeps
	forms *formValidator
}

func newActionRunner(deps ActionDeps) *actionRunner {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &actionRunner{deps: deps, forms: newFormValidator(deps.Now)}
}

// contract returns the Ignitus contract of the ready session, notifying the user otherwise.
func (r *actionRunner) contract() (*contracts.Ignitus, session.Snapshot, error) {
	binding, snap, err := r.deps.Session.Ready()
	if err != nil {
		return nil, snap, r.fail(err)
	}
	return contracts.NewIgnitus(binding), snap, nil
}

// fail converts err into a notification and returns it.
func (r *actionRunner) fail(err error) error {
	r.deps.Notifier.Error(err)
	return err
}

func (r *actionRunner) validate(form interface{}) error {
	if err := r.forms.Struct(form); err != nil {
		return r.fail(err)
	}
	return nil
}

// run submits a through the ready binding, records it and waits for the receipt.
func (r *actionRunner) run(ctx context.Context, a action) (*ActionResult, error) {
	contract, snap, err := r.contract()
	if err != nil {
		return nil, err
	}
	return r.runWith(ctx, contract, snap, a)
}

func (r *actionRunner) runWith(ctx context.Context, contract *contracts.Ignitus, snap session.Snapshot, a action) (*ActionResult, error) {
	method := a.txType.ContractMethod()
	pending, err := a.submit(ctx, contract)
	if err != nil {
		return nil, r.fail(err)
	}

	value := "0"
	if a.value != nil {
		value = a.value.String()
	}
	record := &models.Transaction{
		UserID:          utils.UserID(ctx),
		TransactionType: a.txType,
		Account:         contract.Account().Hex(),
		ContractAddress: contract.Address().Hex(),
		ChainID:         snap.Session.ChainID,
		ListingID:       a.listingID,
		Value:           value,
		TransactionHash: pending.Hash.Hex(),
	}
	if args, err := utils.EncodeFunctionArgsToStringMap(method, a.args, r.abi()); err == nil {
		record.Metadata = models.JSON{"args": args}
	}
	if err := r.deps.Txs.CreateTransaction(record); err != nil {
		r.deps.Logger.Warn("failed to record transaction", "hash", record.TransactionHash, "error", err)
	}
	r.deps.Logger.Info("transaction submitted", "method", method, "hash", record.TransactionHash, "account", record.Account)

	result := &ActionResult{
		TransactionHash: record.TransactionHash,
		Method:          method,
		Status:          models.TransactionStatusPending,
		Account:         record.Account,
		Value:           value,
	}
	if r.deps.ExplorerTxURL != nil {
		result.ExplorerURL = r.deps.ExplorerTxURL(result.TransactionHash)
	}

	receipt, err := pending.Wait(ctx)
	if err != nil {
		result.Status = models.TransactionStatusFailed
		if markErr := r.deps.Txs.MarkFailed(result.TransactionHash, err.Error()); markErr != nil {
			r.deps.Logger.Warn("failed to mark transaction failed", "hash", result.TransactionHash, "error", markErr)
		}
		return result, r.fail(err)
	}

	result.Status = models.TransactionStatusConfirmed
	confirmed, err := r.deps.Txs.MarkConfirmed(result.TransactionHash)
	if err != nil {
		r.deps.Logger.Warn("failed to mark transaction confirmed", "hash", result.TransactionHash, "error", err)
		confirmed = record
		confirmed.Status = models.TransactionStatusConfirmed
	}
	if err := r.deps.Hooks.OnTransactionConfirmed(*confirmed, receipt); err != nil {
		r.fail(fmt.Errorf("failed to run hooks for %s: %w", result.TransactionHash, err))
	}

	result.Message = a.success
	r.deps.Notifier.Success(a.success)
	return result, nil
}

func (r *actionRunner) abi() abi.ABI {
	if r.deps.Spec == nil {
		return abi.ABI{}
	}
	return r.deps.Spec.ABI
}

func parseListingID(id uint64) *big.Int {
	return new(big.Int).SetUint64(id)
}
