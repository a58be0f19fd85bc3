package models

import "time"

// Upload is a file pinned to IPFS through the upload service
type Upload struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     *string   `gorm:"index;type:varchar(255)" json:"user_id,omitempty"`
	CID        string    `gorm:"column:cid;not null;index" json:"cid"`
	FileName   string    `gorm:"not null" json:"file_name"`
	Size       int64     `json:"size"`
	GatewayURL string    `gorm:"not null" json:"gateway_url"`
	CreatedAt  time.Time `json:"created_at"`
}
