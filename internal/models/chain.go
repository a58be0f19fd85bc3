package models

import (
	"time"

	"gorm.io/gorm"
)

// Chain is a network registered with the wallet, stored in the
// wallet_addEthereumChain shape.
type Chain struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	NetworkID         uint64         `gorm:"column:chain_id;uniqueIndex;not null" json:"chain_id"`
	Name              string         `gorm:"not null" json:"name"`
	CurrencyName      string         `gorm:"not null" json:"currency_name"`
	CurrencySymbol    string         `gorm:"not null" json:"currency_symbol"`
	CurrencyDecimals  uint8          `gorm:"not null;default:18" json:"currency_decimals"`
	RPCURLs           StringList     `gorm:"column:rpc_urls;type:text" json:"rpc_urls"`
	BlockExplorerURLs StringList     `gorm:"column:block_explorer_urls;type:text" json:"block_explorer_urls"`
	IsActive          bool           `gorm:"default:false" json:"is_active"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}
