package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/rxtech-lab/ignitus-mcp/internal/models"
	"github.com/rxtech-lab/ignitus-mcp/internal/notify"
	"github.com/rxtech-lab/ignitus-mcp/internal/services"
	"github.com/rxtech-lab/ignitus-mcp/internal/session"
	"github.com/rxtech-lab/ignitus-mcp/internal/wallet"
)

var viewer = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

type fakeSession struct {
	snap       session.Snapshot
	connectErr error
	ensureErr  error
	connects   int
}

func (s *fakeSession) Snapshot() session.Snapshot { return s.snap }

func (s *fakeSession) Connect(ctx context.Context) (session.Snapshot, error) {
	s.connects++
	if s.connectErr != nil {
		return s.snap, s.connectErr
	}
	addr := viewer
	s.snap = session.Snapshot{
		State:      session.ConnectedReady,
		Session:    session.WalletSession{Address: &addr, ChainID: wallet.NeroTestnetChainID},
		Generation: s.snap.Generation + 1,
	}
	return s.snap, nil
}

func (s *fakeSession) Disconnect() session.Snapshot {
	s.snap = session.Snapshot{State: session.Disconnected, Generation: s.snap.Generation + 1}
	return s.snap
}

func (s *fakeSession) EnsureExpectedChain(ctx context.Context) (session.Snapshot, error) {
	return s.snap, s.ensureErr
}

func (s *fakeSession) ExpectedChain() wallet.ChainDescriptor { return wallet.NeroTestnet }

type fakeVideos struct {
	videos  []models.VideoListing
	closed  []models.VideoListing
	err     error
	form    services.CreateVideoForm
	paidIDs []uint64
}

func (f *fakeVideos) ListVideos(ctx context.Context) ([]models.VideoListing, error) {
	return f.videos, f.err
}

func (f *fakeVideos) ListClosedVideos(ctx context.Context) ([]models.VideoListing, error) {
	return f.closed, f.err
}

func (f *fakeVideos) GetVideo(ctx context.Context, id uint64) (*models.VideoListing, error) {
	for _, v := range f.videos {
		if v.ID == id {
			return &v, nil
		}
	}
	return nil, services.ErrListingNotFound
}

func (f *fakeVideos) CreateVideo(ctx context.Context, form services.CreateVideoForm) (*services.ActionResult, error) {
	f.form = form
	if f.err != nil {
		return nil, f.err
	}
	return &services.ActionResult{TransactionHash: "0xabc", Method: "createVideo", Message: "Video created successfully!"}, nil
}

func (f *fakeVideos) WatchVideo(ctx context.Context, id uint64) (*services.ActionResult, error) {
	return f.pay(id, "watchVideo")
}

func (f *fakeVideos) PremiumAccess(ctx context.Context, id uint64) (*services.ActionResult, error) {
	return f.pay(id, "donateToPremiumCampaign")
}

func (f *fakeVideos) pay(id uint64, method string) (*services.ActionResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.paidIDs = append(f.paidIDs, id)
	return &services.ActionResult{TransactionHash: "0xdef", Method: method, Value: "0.01"}, nil
}

func (f *fakeVideos) HasPaid(account common.Address, id uint64) (bool, error) {
	for _, paid := range f.paidIDs {
		if paid == id {
			return true, nil
		}
	}
	return false, nil
}

type fakeCampaigns struct {
	campaigns []models.CampaignListing
	err       error
	form      services.CreateCampaignForm
	donations map[uint64]string
}

func (f *fakeCampaigns) ListCampaigns(ctx context.Context) ([]models.CampaignListing, error) {
	return f.campaigns, f.err
}

func (f *fakeCampaigns) GetCampaign(ctx context.Context, id uint64) (*models.CampaignListing, error) {
	return nil, services.ErrListingNotFound
}

func (f *fakeCampaigns) CreateCampaign(ctx context.Context, form services.CreateCampaignForm) (*services.ActionResult, error) {
	f.form = form
	if f.err != nil {
		return nil, f.err
	}
	return &services.ActionResult{TransactionHash: "0x123", Method: "createCampaign"}, nil
}

func (f *fakeCampaigns) Donate(ctx context.Context, id uint64, amount string) (*services.ActionResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.donations == nil {
		f.donations = map[uint64]string{}
	}
	f.donations[id] = amount
	return &services.ActionResult{TransactionHash: "0x456", Method: "donateToCampaign", Value: amount}, nil
}

func newNotifier() *notify.Notifier {
	return notify.New(notify.DefaultCapacity, notify.WithChain("Nero Testnet", "NERO"))
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

// decodeResult parses a "Prefix: {json}" tool result.
func decodeResult(t *testing.T, result *mcp.CallToolResult, prefix string) map[string]any {
	t.Helper()
	text := resultText(t, result)
	require.True(t, strings.HasPrefix(text, prefix+": "), text)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(text, prefix+": ")), &decoded))
	return decoded
}
