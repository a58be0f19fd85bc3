package services

import (
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rxtech-lab/ignitus-mcp/internal/models"
)

// Hook is used to perform actions when a transaction is confirmed base on their transaction type
type Hook interface {
	// CanHandle is used to check if the hook can handle the transaction type
	CanHandle(txType models.TransactionType) bool
	// OnTransactionConfirmed is called once the receipt of tx reports success
	OnTransactionConfirmed(tx models.Transaction, receipt *types.Receipt) error
}
