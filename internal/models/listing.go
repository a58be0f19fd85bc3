package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rxtech-lab/ignitus-mcp/internal/contracts"
)

type ListingKind string

const (
	ListingKindVideo    ListingKind = "video"
	ListingKindCampaign ListingKind = "campaign"
)

// VideoStatusClosed marks a video whose premium window has been closed on chain.
const VideoStatusClosed = "closed"

// Listing is a record read from the contract and shaped for display.
type Listing interface {
	Kind() ListingKind
	ListingID() uint64
}

// VideoListing is a pay-per-view video.
type VideoListing struct {
	ID                   uint64         `json:"id"`
	Owner                common.Address `json:"owner"`
	Title                string         `json:"title"`
	Description          string         `json:"description"`
	VideoURL             string         `json:"video_url"`
	ThumbnailURL         string         `json:"thumbnail_url"`
	PremiumPrice         *big.Int       `json:"premium_price"`
	WatchPrice           *big.Int       `json:"watch_price"`
	AmountCollected      *big.Int       `json:"amount_collected"`
	Deadline             time.Time      `json:"deadline"`
	IsActive             bool           `json:"is_active"`
	Status               string         `json:"status"`
	PremiumPriceEther    string         `json:"premium_price_ether"`
	WatchPriceEther      string         `json:"watch_price_ether"`
	AmountCollectedEther string         `json:"amount_collected_ether"`
	DeadlineText         string         `json:"deadline_text"`
	PremiumActive        bool           `json:"premium_active"`
	Paid                 bool           `json:"paid"`
}

func (v VideoListing) Kind() ListingKind { return ListingKindVideo }
func (v VideoListing) ListingID() uint64 { return v.ID }

// IsPremiumActive reports whether the premium window is still open at now.
func (v VideoListing) IsPremiumActive(now time.Time) bool {
	return v.Deadline.After(now)
}

// Closed reports whether the video belongs on the closed page.
func (v VideoListing) Closed() bool {
	return v.Status == VideoStatusClosed && v.IsActive
}

// CampaignListing is a crowdfunding campaign.
type CampaignListing struct {
	ID                   uint64           `json:"id"`
	Owner                common.Address   `json:"owner"`
	Title                string           `json:"title"`
	Description          string           `json:"description"`
	Target               *big.Int         `json:"target"`
	AmountCollected      *big.Int         `json:"amount_collected"`
	Deadline             time.Time        `json:"deadline"`
	Image                string           `json:"image"`
	Donators             []common.Address `json:"donators"`
	TargetEther          string           `json:"target_ether"`
	AmountCollectedEther string           `json:"amount_collected_ether"`
	DeadlineText         string           `json:"deadline_text"`
	DaysLeft             int              `json:"days_left"`
	Active               bool             `json:"active"`
}

func (c CampaignListing) Kind() ListingKind { return ListingKindCampaign }
func (c CampaignListing) ListingID() uint64 { return c.ID }

// IsActive reports whether the campaign still accepts donations at now.
func (c CampaignListing) IsActive(now time.Time) bool {
	return c.Deadline.After(now)
}

const deadlineLayout = "Jan 2, 2006 15:04 MST"

// NewVideoListing shapes the contract tuple at index id for display at now.
func NewVideoListing(id uint64, v contracts.Video, now time.Time) VideoListing {
	deadline := unixTime(v.Deadline)
	listing := VideoListing{
		ID:                   id,
		Owner:                v.Owner,
		Title:                v.Title,
		Description:          v.Description,
		VideoURL:             v.VideoUrl,
		ThumbnailURL:         v.ThumbnailUrl,
		PremiumPrice:         orZero(v.PremiumPrice),
		WatchPrice:           orZero(v.WatchPrice),
		AmountCollected:      orZero(v.AmountCollected),
		Deadline:             deadline,
		IsActive:             v.IsActive,
		Status:               v.Status,
		PremiumPriceEther:    contracts.FormatEther(v.PremiumPrice),
		WatchPriceEther:      contracts.FormatEther(v.WatchPrice),
		AmountCollectedEther: contracts.FormatEther(v.AmountCollected),
		DeadlineText:         deadline.UTC().Format(deadlineLayout),
	}
	listing.PremiumActive = listing.IsPremiumActive(now)
	return listing
}

// NewCampaignListing shapes the contract tuple at index id for display at now.
func NewCampaignListing(id uint64, c contracts.Campaign, now time.Time) CampaignListing {
	deadline := unixTime(c.Deadline)
	listing := CampaignListing{
		ID:                   id,
		Owner:                c.Owner,
		Title:                c.Title,
		Description:          c.Description,
		Target:               orZero(c.Target),
		AmountCollected:      orZero(c.AmountCollected),
		Deadline:             deadline,
		Image:                c.Image,
		Donators:             c.Donators,
		TargetEther:          contracts.FormatEther(c.Target),
		AmountCollectedEther: contracts.FormatEther(c.AmountCollected),
		DeadlineText:         deadline.UTC().Format(deadlineLayout),
	}
	listing.Active = listing.IsActive(now)
	if listing.Active {
		listing.DaysLeft = int(deadline.Sub(now).Hours() / 24)
	}
	return listing
}

func unixTime(v *big.Int) time.Time {
	if v == nil || !v.IsInt64() {
		return time.Unix(0, 0)
	}
	return time.Unix(v.Int64(), 0)
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
