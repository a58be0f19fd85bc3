package models

import "time"

// Purchase records that an account paid for a video
type Purchase struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Account         string          `gorm:"not null;uniqueIndex:idx_purchase_video" json:"account"`
	VideoID         uint64          `gorm:"not null;uniqueIndex:idx_purchase_video" json:"video_id"`
	ContractAddress string          `gorm:"not null;uniqueIndex:idx_purchase_video" json:"contract_address"`
	ChainID         uint64          `gorm:"not null" json:"chain_id"`
	Method          TransactionType `gorm:"not null" json:"method"`
	Amount          string          `gorm:"not null" json:"amount"` // wei
	TransactionHash string          `gorm:"not null" json:"transaction_hash"`
	CreatedAt       time.Time       `json:"created_at"`
}
