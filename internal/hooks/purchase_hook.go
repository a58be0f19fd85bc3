package hooks

import (
	"fmt"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rxtech-lab/ignitus-mcp/internal/models"
	"github.com/rxtech-lab/ignitus-mcp/internal/services"
)

// PurchaseHook records a purchase once a watch or premium payment is confirmed.
type PurchaseHook struct {
	purchases services.PurchaseService
}

// CanHandle implements Hook.
func (p *PurchaseHook) CanHandle(txType models.TransactionType) bool {
	return txType == models.TransactionTypeWatchVideo ||
		txType == models.TransactionTypePremiumAccess
}

// OnTransactionConfirmed implements Hook.
func (p *PurchaseHook) OnTransactionConfirmed(tx models.Transaction, receipt *types.Receipt) error {
	if tx.ListingID == nil {
		return fmt.Errorf("transaction %s has no video id", tx.TransactionHash)
	}
	return p.purchases.RecordPurchase(&models.Purchase{
		Account:         tx.Account,
		VideoID:         *tx.ListingID,
		ContractAddress: tx.ContractAddress,
		ChainID:         tx.ChainID,
		Method:          tx.TransactionType,
		Amount:          tx.Value,
		TransactionHash: tx.TransactionHash,
	})
}

func NewPurchaseHook(purchases services.PurchaseService) services.Hook {
	return &PurchaseHook{
		purchases: purchases,
	}
}
