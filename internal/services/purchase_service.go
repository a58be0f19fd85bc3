package services

import (
	"strings"

	"github.com/rxtech-lab/ignitus-mcp/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PurchaseService tracks which accounts paid for which videos
type PurchaseService interface {
	// RecordPurchase stores p; a second purchase of the same video is ignored.
	RecordPurchase(p *models.Purchase) error
	HasPaid(account, contractAddress string, videoID uint64) (bool, error)
	PaidVideoIDs(account, contractAddress string) (map[uint64]bool, error)
	ListPurchases(account string) ([]models.Purchase, error)
}

type purchaseService struct {
	db *gorm.DB
}

func NewPurchaseService(db *gorm.DB) PurchaseService {
	return &purchaseService{db: db}
}

func (s *purchaseService) RecordPurchase(p *models.Purchase) error {
	p.Account = normalizeAddress(p.Account)
	p.ContractAddress = normalizeAddress(p.ContractAddress)
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(p).Error
}

func (s *purchaseService) HasPaid(account, contractAddress string, videoID uint64) (bool, error) {
	var count int64
	err := s.db.Model(&models.Purchase{}).
		Where("account = ? AND contract_address = ? AND video_id = ?",
			normalizeAddress(account), normalizeAddress(contractAddress), videoID).
		Count(&count).Error
	return count > 0, err
}

func (s *purchaseService) PaidVideoIDs(account, contractAddress string) (map[uint64]bool, error) {
	var ids []uint64
	err := s.db.Model(&models.Purchase{}).
		Where("account = ? AND contract_address = ?", normalizeAddress(account), normalizeAddress(contractAddress)).
		Pluck("video_id", &ids).Error
	if err != nil {
		return nil, err
	}
	paid := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		paid[id] = true
	}
	return paid, nil
}

func (s *purchaseService) ListPurchases(account string) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := s.db.Where("account = ?", normalizeAddress(account)).Order("id desc").Find(&purchases).Error
	return purchases, err
}

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
