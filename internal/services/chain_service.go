package services

import (
	"errors"
	"fmt"

	"github.com/rxtech-lab/ignitus-mcp/internal/models"
	"github.com/rxtech-lab/ignitus-mcp/internal/wallet"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChainService handles the persisted chain registry. It doubles as the
// wallet.ChainStore of the local development wallet.
type ChainService interface {
	wallet.ChainStore
	CreateChain(chain *models.Chain) error
	GetActiveChain() (*models.Chain, error)
	SetActiveChain(networkID uint64) error
	ListChains() ([]models.Chain, error)
	// EnsureChain saves chain and marks it active.
	EnsureChain(chain wallet.ChainDescriptor) (*models.Chain, error)
}

type chainService struct {
	db *gorm.DB
}

// NewChainService creates a new ChainService
func NewChainService(db *gorm.DB) ChainService {
	return &chainService{db: db}
}

// CreateChain creates a new chain
func (s *chainService) CreateChain(chain *models.Chain) error {
	return s.db.Create(chain).Error
}

// GetChain returns the descriptor registered for chainID
func (s *chainService) GetChain(chainID uint64) (*wallet.ChainDescriptor, error) {
	var chain models.Chain
	err := s.db.Where("chain_id = ?", chainID).First(&chain).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wallet.ErrUnknownChain
	}
	if err != nil {
		return nil, err
	}
	descriptor := ChainDescriptor(chain)
	return &descriptor, nil
}

// SaveChain inserts chain or updates the existing row with the same chain id
func (s *chainService) SaveChain(descriptor wallet.ChainDescriptor) error {
	chain, err := chainFromDescriptor(descriptor)
	if err != nil {
		return err
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chain_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "currency_name", "currency_symbol", "currency_decimals",
			"rpc_urls", "block_explorer_urls", "updated_at",
		}),
	}).Create(chain).Error
}

// GetActiveChain returns the currently active chain
func (s *chainService) GetActiveChain() (*models.Chain, error) {
	var chain models.Chain
	err := s.db.Where("is_active = ?", true).First(&chain).Error
	if err != nil {
		return nil, err
	}
	return &chain, nil
}

// SetActiveChain marks the chain with networkID as the only active chain
func (s *chainService) SetActiveChain(networkID uint64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Chain{}).Where("chain_id = ?", networkID).Update("is_active", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("chain %d: %w", networkID, wallet.ErrUnknownChain)
		}
		return tx.Model(&models.Chain{}).
			Where("is_active = ? AND chain_id <> ?", true, networkID).
			Update("is_active", false).Error
	})
}

// ListChains returns all chains
func (s *chainService) ListChains() ([]models.Chain, error) {
	var chains []models.Chain
	err := s.db.Order("id").Find(&chains).Error
	return chains, err
}

func (s *chainService) EnsureChain(descriptor wallet.ChainDescriptor) (*models.Chain, error) {
	if err := s.SaveChain(descriptor); err != nil {
		return nil, fmt.Errorf("failed to save chain: %w", err)
	}
	id, err := descriptor.ID()
	if err != nil {
		return nil, err
	}
	if err := s.SetActiveChain(id); err != nil {
		return nil, fmt.Errorf("failed to activate chain: %w", err)
	}
	return s.GetActiveChain()
}

// ChainDescriptor converts a stored chain to its wallet_addEthereumChain form
func ChainDescriptor(chain models.Chain) wallet.ChainDescriptor {
	return wallet.NewChainDescriptor(
		chain.NetworkID,
		chain.Name,
		wallet.NativeCurrency{
			Name:     chain.CurrencyName,
			Symbol:   chain.CurrencySymbol,
			Decimals: chain.CurrencyDecimals,
		},
		[]string(chain.RPCURLs),
		[]string(chain.BlockExplorerURLs),
	)
}

func chainFromDescriptor(descriptor wallet.ChainDescriptor) (*models.Chain, error) {
	id, err := descriptor.ID()
	if err != nil {
		return nil, fmt.Errorf("invalid chain id %q: %w", descriptor.ChainID, err)
	}
	return &models.Chain{
		NetworkID:         id,
		Name:              descriptor.ChainName,
		CurrencyName:      descriptor.NativeCurrency.Name,
		CurrencySymbol:    descriptor.NativeCurrency.Symbol,
		CurrencyDecimals:  descriptor.NativeCurrency.Decimals,
		RPCURLs:           models.StringList(descriptor.RPCURLs),
		BlockExplorerURLs: models.StringList(descriptor.BlockExplorerURLs),
	}, nil
}
