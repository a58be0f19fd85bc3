package services

import (
	"testing"

	"github.com/rxtech-lab/ignitus-mcp/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Use in-memory SQLite database for testing
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "Failed to connect to in-memory database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.Transaction{}, &models.Chain{})
	require.NoError(t, err, "Failed to run migrations")

	if testing.Verbose() {
		db = db.Debug()
	}
	return db
}

func newTx(hash string, userID *string) *models.Transaction {
	id := uint64(1)
	return &models.Transaction{
		UserID:          userID,
		TransactionType: models.TransactionTypeWatchVideo,
		Account:         "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
		ContractAddress: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		ChainID:         689,
		ListingID:       &id,
		Value:           "100000000000000000",
		TransactionHash: hash,
		Metadata:        models.JSON{"args": map[string]interface{}{"_id": "1"}},
	}
}

func TestTransactionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	service := &transactionService{db: db}

	t.Run("create stores pending", func(t *testing.T) {
		tx := newTx("0x01", nil)
		tx.Status = models.TransactionStatusConfirmed
		require.NoError(t, service.CreateTransaction(tx))

		stored, err := service.GetTransaction("0x01")
		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusPending, stored.Status)
		assert.Equal(t, "1", stored.Metadata["args"].(map[string]interface{})["_id"])
	})

	t.Run("create requires hash", func(t *testing.T) {
		assert.Error(t, service.CreateTransaction(newTx("", nil)))
	})

	t.Run("duplicate hash is rejected", func(t *testing.T) {
		assert.Error(t, service.CreateTransaction(newTx("0x01", nil)))
	})

	t.Run("confirm", func(t *testing.T) {
		confirmed, err := service.MarkConfirmed("0x01")
		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusConfirmed, confirmed.Status)
	})

	t.Run("fail keeps reason", func(t *testing.T) {
		require.NoError(t, service.CreateTransaction(newTx("0x02", nil)))
		require.NoError(t, service.MarkFailed("0x02", "transaction reverted: Amount must be at least watch price"))

		stored, err := service.GetTransaction("0x02")
		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusFailed, stored.Status)
		assert.Contains(t, stored.Error, "Amount must be at least")
	})

	t.Run("unknown hash", func(t *testing.T) {
		_, err := service.GetTransaction("0xff")
		assert.ErrorIs(t, err, ErrTransactionNotFound)
		_, err = service.MarkConfirmed("0xff")
		assert.ErrorIs(t, err, ErrTransactionNotFound)
		assert.ErrorIs(t, service.MarkFailed("0xff", "boom"), ErrTransactionNotFound)
	})
}

func TestListTransactions(t *testing.T) {
	db := setupTestDB(t)
	service := NewTransactionService(db)

	user := "user123"
	for _, hash := range []string{"0x01", "0x02", "0x03"} {
		require.NoError(t, service.CreateTransaction(newTx(hash, &user)))
	}
	require.NoError(t, service.CreateTransaction(newTx("0x04", nil)))

	latest, err := service.ListTransactionsByAccount("0x70997970C51812dc3A010C7d01b50e0d17dc79C8", 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "0x04", latest[0].TransactionHash)
	assert.Equal(t, "0x03", latest[1].TransactionHash)

	byUser, err := service.ListTransactionsByUser(user)
	require.NoError(t, err)
	assert.Len(t, byUser, 3)
}
