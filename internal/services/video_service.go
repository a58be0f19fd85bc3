package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/ignitus-mcp/internal/contracts"
	"github.com/rxtech-lab/ignitus-mcp/internal/models"
)

// VideoService handles the pay-per-view videos of the Ignitus contract
type VideoService interface {
	// ListVideos returns the active videos.
	ListVideos(ctx context.Context) ([]models.VideoListing, error)
	// ListClosedVideos returns active videos whose premium window was closed on chain.
	ListClosedVideos(ctx context.Context) ([]models.VideoListing, error)
	GetVideo(ctx context.Context, id uint64) (*models.VideoListing, error)
	CreateVideo(ctx context.Context, form CreateVideoForm) (*ActionResult, error)
	// WatchVideo pays the watch price read from the contract.
	WatchVideo(ctx context.Context, id uint64) (*ActionResult, error)
	// PremiumAccess pays the premium price read from the contract.
	PremiumAccess(ctx context.Context, id uint64) (*ActionResult, error)
	HasPaid(account common.Address, id uint64) (bool, error)
}

type videoService struct {
	*actionRunner
	purchases PurchaseService
}

// NewVideoService creates a new VideoService
func NewVideoService(deps ActionDeps, purchases PurchaseService) VideoService {
	return &videoService{actionRunner: newActionRunner(deps), purchases: purchases}
}

func (s *videoService) ListVideos(ctx context.Context) ([]models.VideoListing, error) {
	return s.list(ctx, func(v models.VideoListing) bool { return v.IsActive })
}

func (s *videoService) ListClosedVideos(ctx context.Context) ([]models.VideoListing, error) {
	return s.list(ctx, models.VideoListing.Closed)
}

func (s *videoService) list(ctx context.Context, keep func(models.VideoListing) bool) ([]models.VideoListing, error) {
	contract, _, err := s.contract()
	if err != nil {
		return nil, err
	}
	listings, err := s.read(ctx, contract)
	if err != nil {
		return nil, err
	}
	filtered := make([]models.VideoListing, 0, len(listings))
	for _, listing := range listings {
		if keep(listing) {
			filtered = append(filtered, listing)
		}
	}
	return filtered, nil
}

// read fetches every video and marks the ones the session account paid for.
func (s *videoService) read(ctx context.Context, contract *contracts.Ignitus) ([]models.VideoListing, error) {
	videos, err := contract.GetVideos(ctx)
	if err != nil {
		return nil, s.fail(fmt.Errorf("failed to fetch videos: %w", err))
	}

	paid, err := s.purchases.PaidVideoIDs(contract.Account().Hex(), contract.Address().Hex())
	if err != nil {
		s.deps.Logger.Warn("failed to load purchases", "account", contract.Account().Hex(), "error", err)
	}

	now := s.deps.Now()
	listings := make([]models.VideoListing, len(videos))
	for i, video := range videos {
		listings[i] = models.NewVideoListing(uint64(i), video, now)
		listings[i].Paid = paid[uint64(i)]
	}
	return listings, nil
}

func (s *videoService) GetVideo(ctx context.Context, id uint64) (*models.VideoListing, error) {
	contract, _, err := s.contract()
	if err != nil {
		return nil, err
	}
	return s.get(ctx, contract, id)
}

func (s *videoService) get(ctx context.Context, contract *contracts.Ignitus, id uint64) (*models.VideoListing, error) {
	listings, err := s.read(ctx, contract)
	if err != nil {
		return nil, err
	}
	if id >= uint64(len(listings)) {
		return nil, s.fail(fmt.Errorf("video %d: %w", id, ErrListingNotFound))
	}
	return &listings[id], nil
}

func (s *videoService) CreateVideo(ctx context.Context, form CreateVideoForm) (*ActionResult, error) {
	if err := s.validate(form); err != nil {
		return nil, err
	}
	premium, err := contracts.ParseEther(form.PremiumPrice)
	if err != nil {
		return nil, s.fail(err)
	}
	watch, err := contracts.ParseEther(form.WatchPrice)
	if err != nil {
		return nil, s.fail(err)
	}
	params := contracts.CreateVideoParams{
		Title:        form.Title,
		Description:  form.Description,
		VideoURL:     form.VideoURL,
		ThumbnailURL: form.ThumbnailURL,
		PremiumPrice: premium,
		WatchPrice:   watch,
		Deadline:     big.NewInt(form.Deadline),
	}
	return s.run(ctx, action{
		txType:  models.TransactionTypeCreateVideo,
		args:    []any{params.Title, params.Description, params.VideoURL, params.ThumbnailURL, params.PremiumPrice, params.WatchPrice, params.Deadline},
		success: "Video created successfully!",
		submit: func(ctx context.Context, c *contracts.Ignitus) (*contracts.PendingTx, error) {
			return c.CreateVideo(ctx, params)
		},
	})
}

func (s *videoService) WatchVideo(ctx context.Context, id uint64) (*ActionResult, error) {
	return s.pay(ctx, id, models.TransactionTypeWatchVideo, "Payment successful! You can now watch the video.",
		func(v *models.VideoListing) *big.Int { return v.WatchPrice },
		(*contracts.Ignitus).WatchVideo)
}

func (s *videoService) PremiumAccess(ctx context.Context, id uint64) (*ActionResult, error) {
	return s.pay(ctx, id, models.TransactionTypePremiumAccess, "Premium access granted! You can now watch the video.",
		func(v *models.VideoListing) *big.Int { return v.PremiumPrice },
		(*contracts.Ignitus).DonateToPremiumCampaign)
}

type payFunc func(c *contracts.Ignitus, ctx context.Context, id *big.Int, value *big.Int) (*contracts.PendingTx, error)

// pay reads the price fresh from the contract right before submitting.
func (s *videoService) pay(ctx context.Context, id uint64, txType models.TransactionType, success string, price func(*models.VideoListing) *big.Int, submit payFunc) (*ActionResult, error) {
	contract, snap, err := s.contract()
	if err != nil {
		return nil, err
	}
	video, err := s.get(ctx, contract, id)
	if err != nil {
		return nil, err
	}
	value := new(big.Int).Set(price(video))
	videoID := id
	return s.runWith(ctx, contract, snap, action{
		txType:    txType,
		listingID: &videoID,
		value:     value,
		args:      []any{parseListingID(id)},
		success:   success,
		submit: func(ctx context.Context, c *contracts.Ignitus) (*contracts.PendingTx, error) {
			return submit(c, ctx, parseListingID(id), value)
		},
	})
}

func (s *videoService) HasPaid(account common.Address, id uint64) (bool, error) {
	return s.purchases.HasPaid(account.Hex(), s.contractAddress(), id)
}

func (s *videoService) contractAddress() string {
	if s.deps.Spec == nil {
		return ""
	}
	return s.deps.Spec.Address.Hex()
}
