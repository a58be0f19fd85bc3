package services

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rxtech-lab/ignitus-mcp/internal/models"
)

type HookService interface {
	AddHook(hook Hook) error
	OnTransactionConfirmed(tx models.Transaction, receipt *types.Receipt) error
}

type hookService struct {
	mu    sync.RWMutex
	hooks []Hook
}

func NewHookService() HookService {
	return &hookService{
		hooks: []Hook{},
	}
}

func (h *hookService) AddHook(hook Hook) error {
	if hook == nil {
		return fmt.Errorf("hook is nil")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
	return nil
}

// OnTransactionConfirmed runs every hook that handles the transaction type, in
// registration order, and stops at the first error.
func (h *hookService) OnTransactionConfirmed(tx models.Transaction, receipt *types.Receipt) error {
	h.mu.RLock()
	hooks := append([]Hook(nil), h.hooks...)
	h.mu.RUnlock()

	for _, hook := range hooks {
		if hook.CanHandle(tx.TransactionType) {
			if err := hook.OnTransactionConfirmed(tx, receipt); err != nil {
				return err
			}
		}
	}
	return nil
}
