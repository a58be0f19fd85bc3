package models

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"github.com/rxtech-lab/ignitus-mcp/internal/contracts"
)

func TestNewVideoListing(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	video := contracts.Video{
		Owner:           common.HexToAddress("0x1234567890123456789012345678901234567890"),
		Title:           "Launch",
		VideoUrl:        "https://gateway.pinata.cloud/ipfs/video",
		ThumbnailUrl:    "https://gateway.pinata.cloud/ipfs/thumb",
		PremiumPrice:    big.NewInt(500_000_000_000_000_000),
		WatchPrice:      big.NewInt(100_000_000_000_000_000),
		Deadline:        big.NewInt(now.Add(time.Hour).Unix()),
		AmountCollected: nil,
		IsActive:        true,
		Status:          "open",
	}

	listing := NewVideoListing(2, video, now)
	assert.Equal(t, ListingKindVideo, listing.Kind())
	assert.Equal(t, uint64(2), listing.ListingID())
	assert.Equal(t, "0.5", listing.PremiumPriceEther)
	assert.Equal(t, "0.1", listing.WatchPriceEther)
	assert.Equal(t, "0.0", listing.AmountCollectedEther)
	assert.Equal(t, int64(0), listing.AmountCollected.Int64())
	assert.True(t, listing.PremiumActive)
	assert.False(t, listing.Closed())
	assert.False(t, listing.IsPremiumActive(now.Add(2*time.Hour)))

	video.Status = VideoStatusClosed
	assert.True(t, NewVideoListing(2, video, now).Closed())

	video.IsActive = false
	assert.False(t, NewVideoListing(2, video, now).Closed())
}

func TestNewCampaignListing(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	campaign := contracts.Campaign{
		Title:           "Studio",
		Target:          big.NewInt(2_000_000_000_000_000_000),
		AmountCollected: big.NewInt(250_000_000_000_000_000),
		Deadline:        big.NewInt(now.Add(72 * time.Hour).Unix()),
	}

	listing := NewCampaignListing(0, campaign, now)
	assert.Equal(t, ListingKindCampaign, listing.Kind())
	assert.Equal(t, "2.0", listing.TargetEther)
	assert.Equal(t, "0.25", listing.AmountCollectedEther)
	assert.True(t, listing.Active)
	assert.Equal(t, 3, listing.DaysLeft)

	campaign.Deadline = big.NewInt(now.Add(-time.Hour).Unix())
	ended := NewCampaignListing(0, campaign, now)
	assert.False(t, ended.Active)
	assert.Zero(t, ended.DaysLeft)
}

func TestStringListValueAndScan(t *testing.T) {
	value, err := StringList{"https://a", "https://b"}.Value()
	assert.NoError(t, err)
	assert.Equal(t, `["https://a","https://b"]`, value)

	var list StringList
	assert.NoError(t, list.Scan([]byte(`["x"]`)))
	assert.Equal(t, StringList{"x"}, list)

	assert.NoError(t, list.Scan(nil))
	assert.Nil(t, list)

	assert.Error(t, list.Scan(42))
}

func TestJSONValueAndScan(t *testing.T) {
	value, err := JSON{"video_id": 3}.Value()
	assert.NoError(t, err)
	assert.Equal(t, []byte(`{"video_id":3}`), value)

	var j JSON
	assert.NoError(t, j.Scan(`{"a":"b"}`))
	assert.Equal(t, JSON{"a": "b"}, j)
}

func TestTransactionTypeContractMethod(t *testing.T) {
	assert.Equal(t, "watchVideo", TransactionTypeWatchVideo.ContractMethod())
	assert.Equal(t, "donateToPremiumCampaign", TransactionTypePremiumAccess.ContractMethod())
	assert.Equal(t, "donate", TransactionTypeDonateCampaign.ContractMethod())
	assert.Empty(t, TransactionType("other").ContractMethod())
}
