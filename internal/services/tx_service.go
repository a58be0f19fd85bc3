package services

import (
	"errors"
	"fmt"

	"github.com/rxtech-lab/ignitus-mcp/internal/models"
	"gorm.io/gorm"
)

// ErrTransactionNotFound is returned when no transaction has the requested hash
var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionService records contract transactions submitted through the wallet session
type TransactionService interface {
	CreateTransaction(tx *models.Transaction) error
	GetTransaction(txHash string) (*models.Transaction, error)
	MarkConfirmed(txHash string) (*models.Transaction, error)
	MarkFailed(txHash string, reason string) error
	ListTransactionsByAccount(account string, limit int) ([]models.Transaction, error)
	ListTransactionsByUser(userID string) ([]models.Transaction, error)
}

type transactionService struct {
	db *gorm.DB
}

func NewTransactionService(db *gorm.DB) TransactionService {
	return &transactionService{db: db}
}

// CreateTransaction stores tx as pending
func (s *transactionService) CreateTransaction(tx *models.Transaction) error {
	if tx.TransactionHash == "" {
		return fmt.Errorf("transaction hash is required")
	}
	tx.Status = models.TransactionStatusPending
	return s.db.Create(tx).Error
}

// GetTransaction returns the transaction by hash
func (s *transactionService) GetTransaction(txHash string) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.db.Where("transaction_hash = ?", txHash).First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// MarkConfirmed moves the transaction to confirmed and returns the updated row
func (s *transactionService) MarkConfirmed(txHash string) (*models.Transaction, error) {
	if err := s.updateStatus(txHash, map[string]interface{}{
		"status": models.TransactionStatusConfirmed,
		"error":  "",
	}); err != nil {
		return nil, err
	}
	return s.GetTransaction(txHash)
}

// MarkFailed moves the transaction to failed and keeps reason
func (s *transactionService) MarkFailed(txHash string, reason string) error {
	return s.updateStatus(txHash, map[string]interface{}{
		"status": models.TransactionStatusFailed,
		"error":  reason,
	})
}

func (s *transactionService) updateStatus(txHash string, updates map[string]interface{}) error {
	result := s.db.Model(&models.Transaction{}).Where("transaction_hash = ?", txHash).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// ListTransactionsByAccount returns the latest transactions sent from account, newest first
func (s *transactionService) ListTransactionsByAccount(account string, limit int) ([]models.Transaction, error) {
	var txs []models.Transaction
	query := s.db.Where("account = ?", account).Order("id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&txs).Error
	return txs, err
}

// ListTransactionsByUser returns all transactions for a specific user
func (s *transactionService) ListTransactionsByUser(userID string) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.Where("user_id = ?", userID).Order("id desc").Find(&txs).Error
	return txs, err
}
