package models

import "time"

type TransactionStatus string

type TransactionType string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusConfirmed TransactionStatus = "confirmed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

const (
	TransactionTypeCreateVideo    TransactionType = "create_video"
	TransactionTypeWatchVideo     TransactionType = "watch_video"
	TransactionTypePremiumAccess  TransactionType = "premium_access"
	TransactionTypeCreateCampaign TransactionType = "create_campaign"
	TransactionTypeDonateCampaign TransactionType = "donate_campaign"
)

// ContractMethod returns the contract method a transaction type calls.
func (t TransactionType) ContractMethod() string {
	switch t {
	case TransactionTypeCreateVideo:
		return "createVideo"
	case TransactionTypeWatchVideo:
		return "watchVideo"
	case TransactionTypePremiumAccess:
		return "donateToPremiumCampaign"
	case TransactionTypeCreateCampaign:
		return "createCampaign"
	case TransactionTypeDonateCampaign:
		return "donate"
	}
	return ""
}

// Transaction records a contract transaction submitted through the wallet session
type Transaction struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	UserID          *string           `gorm:"index;type:varchar(255)" json:"user_id,omitempty"`
	TransactionType TransactionType   `gorm:"not null;index" json:"transaction_type"`
	Account         string            `gorm:"not null;index" json:"account"`
	ContractAddress string            `gorm:"not null" json:"contract_address"`
	ChainID         uint64            `gorm:"not null" json:"chain_id"`
	ListingID       *uint64           `json:"listing_id,omitempty"`
	Value           string            `gorm:"not null;default:0" json:"value"` // wei
	TransactionHash string            `gorm:"uniqueIndex" json:"transaction_hash"`
	Status          TransactionStatus `gorm:"default:pending" json:"status"`
	Error           string            `json:"error,omitempty"`
	Metadata        JSON              `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
