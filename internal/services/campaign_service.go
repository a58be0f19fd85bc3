package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/rxtech-lab/ignitus-mcp/internal/contracts"
	"github.com/rxtech-lab/ignitus-mcp/internal/models"
)

// CampaignService handles the crowdfunding campaigns of the Ignitus contract
type CampaignService interface {
	ListCampaigns(ctx context.Context) ([]models.CampaignListing, error)
	GetCampaign(ctx context.Context, id uint64) (*models.CampaignListing, error)
	// CreateCampaign registers a campaign owned by the session account.
	CreateCampaign(ctx context.Context, form CreateCampaignForm) (*ActionResult, error)
	Donate(ctx context.Context, id uint64, amountEther string) (*ActionResult, error)
}

type campaignService struct {
	*actionRunner
}

// NewCampaignService creates a new CampaignService
func NewCampaignService(deps ActionDeps) CampaignService {
	return &campaignService{actionRunner: newActionRunner(deps)}
}

func (s *campaignService) ListCampaigns(ctx context.Context) ([]models.CampaignListing, error) {
	contract, _, err := s.contract()
	if err != nil {
		return nil, err
	}
	return s.read(ctx, contract)
}

func (s *campaignService) read(ctx context.Context, contract *contracts.Ignitus) ([]models.CampaignListing, error) {
	campaigns, err := contract.GetCampaigns(ctx)
	if err != nil {
		return nil, s.fail(fmt.Errorf("failed to fetch campaigns: %w", err))
	}
	now := s.deps.Now()
	listings := make([]models.CampaignListing, len(campaigns))
	for i, campaign := range campaigns {
		listings[i] = models.NewCampaignListing(uint64(i), campaign, now)
	}
	return listings, nil
}

func (s *campaignService) GetCampaign(ctx context.Context, id uint64) (*models.CampaignListing, error) {
	contract, _, err := s.contract()
	if err != nil {
		return nil, err
	}
	return s.get(ctx, contract, id)
}

func (s *campaignService) get(ctx context.Context, contract *contracts.Ignitus, id uint64) (*models.CampaignListing, error) {
	listings, err := s.read(ctx, contract)
	if err != nil {
		return nil, err
	}
	if id >= uint64(len(listings)) {
		return nil, s.fail(fmt.Errorf("campaign %d: %w", id, ErrListingNotFound))
	}
	return &listings[id], nil
}

func (s *campaignService) CreateCampaign(ctx context.Context, form CreateCampaignForm) (*ActionResult, error) {
	if err := s.validate(form); err != nil {
		return nil, err
	}
	target, err := contracts.ParseEther(form.Target)
	if err != nil {
		return nil, s.fail(err)
	}
	contract, snap, err := s.contract()
	if err != nil {
		return nil, err
	}
	params := contracts.CreateCampaignParams{
		Owner:       contract.Account(),
		Title:       form.Title,
		Description: form.Description,
		Target:      target,
		Deadline:    big.NewInt(form.Deadline),
		Image:       form.Image,
	}
	return s.runWith(ctx, contract, snap, action{
		txType:  models.TransactionTypeCreateCampaign,
		args:    []any{params.Owner, params.Title, params.Description, params.Target, params.Deadline, params.Image},
		success: "Campaign created successfully!",
		submit: func(ctx context.Context, c *contracts.Ignitus) (*contracts.PendingTx, error) {
			return c.CreateCampaign(ctx, params)
		},
	})
}

func (s *campaignService) Donate(ctx context.Context, id uint64, amountEther string) (*ActionResult, error) {
	amount, err := contracts.ParseEther(amountEther)
	if err != nil || amount.Sign() <= 0 {
		return nil, s.fail(&FormError{Field: "amount", Rule: "ether_amount"})
	}
	contract, snap, err := s.contract()
	if err != nil {
		return nil, err
	}
	if _, err := s.get(ctx, contract, id); err != nil {
		return nil, err
	}
	campaignID := id
	return s.runWith(ctx, contract, snap, action{
		txType:    models.TransactionTypeDonateCampaign,
		listingID: &campaignID,
		value:     amount,
		args:      []any{parseListingID(id)},
		success:   "Donation successful! Thank you for your support.",
		submit: func(ctx context.Context, c *contracts.Ignitus) (*contracts.PendingTx, error) {
			return c.Donate(ctx, parseListingID(id), amount)
		},
	})
}
