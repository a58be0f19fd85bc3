package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Video mirrors the contract's Video tuple. Field order matters for decoding.
type Video struct {
	Owner           common.Address
	Title           string
	Description     string
	VideoUrl        string
	ThumbnailUrl    string
	PremiumPrice    *big.Int
	WatchPrice      *big.Int
	Deadline        *big.Int
	AmountCollected *big.Int
	IsActive        bool
	Status          string
}

// Campaign mirrors the contract's Campaign tuple.
type Campaign struct {
	Owner           common.Address
	Title           string
	Description     string
	Target          *big.Int
	Deadline        *big.Int
	AmountCollected *big.Int
	Image           string
	Donators        []common.Address
	Donations       []*big.Int
}

type CreateVideoParams struct {
	Title        string
	Description  string
	VideoURL     string
	ThumbnailURL string
	PremiumPrice *big.Int
	WatchPrice   *big.Int
	Deadline     *big.Int
}

type CreateCampaignParams struct {
	Owner       common.Address
	Title       string
	Description string
	Target      *big.Int
	Deadline    *big.Int
	Image       string
}

// Ignitus wraps a Binding with the typed pay-per-view and crowdfunding methods.
type Ignitus struct {
	Binding
}

func NewIgnitus(b Binding) *Ignitus {
	return &Ignitus{Binding: b}
}

// GetVideos returns every video registered on the contract, indexed by id.
func (c *Ignitus) GetVideos(ctx context.Context) (videos []Video, err error) {
	out, err := c.Call(ctx, "getVideos")
	if err != nil {
		return nil, err
	}
	defer recoverConvert("getVideos", &err)
	return *abi.ConvertType(out[0], new([]Video)).(*[]Video), nil
}

// GetCampaigns returns every campaign registered on the contract, indexed by id.
func (c *Ignitus) GetCampaigns(ctx context.Context) (campaigns []Campaign, err error) {
	out, err := c.Call(ctx, "getCampaigns")
	if err != nil {
		return nil, err
	}
	defer recoverConvert("getCampaigns", &err)
	return *abi.ConvertType(out[0], new([]Campaign)).(*[]Campaign), nil
}

func (c *Ignitus) CreateVideo(ctx context.Context, p CreateVideoParams) (*PendingTx, error) {
	return c.Submit(ctx, "createVideo", nil,
		p.Title, p.Description, p.VideoURL, p.ThumbnailURL, p.PremiumPrice, p.WatchPrice, p.Deadline)
}

// WatchVideo pays the regular watch price for a video.
func (c *Ignitus) WatchVideo(ctx context.Context, id *big.Int, value *big.Int) (*PendingTx, error) {
	return c.Submit(ctx, "watchVideo", value, id)
}

// DonateToPremiumCampaign pays the premium price while the premium window is open.
func (c *Ignitus) DonateToPremiumCampaign(ctx context.Context, id *big.Int, value *big.Int) (*PendingTx, error) {
	return c.Submit(ctx, "donateToPremiumCampaign", value, id)
}

func (c *Ignitus) CreateCampaign(ctx context.Context, p CreateCampaignParams) (*PendingTx, error) {
	return c.Submit(ctx, "createCampaign", nil,
		p.Owner, p.Title, p.Description, p.Target, p.Deadline, p.Image)
}

func (c *Ignitus) Donate(ctx context.Context, id *big.Int, value *big.Int) (*PendingTx, error) {
	return c.Submit(ctx, "donate", value, id)
}

// abi.ConvertType panics when the on-chain tuple does not match the Go struct.
func recoverConvert(method string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("failed to decode %s result: %v", method, r)
	}
}
