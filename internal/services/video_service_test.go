package services_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/ignitus-mcp/internal/contracts"
	"github.com/rxtech-lab/ignitus-mcp/internal/models"
	"github.com/rxtech-lab/ignitus-mcp/internal/notify"
	"github.com/rxtech-lab/ignitus-mcp/internal/services"
	"github.com/rxtech-lab/ignitus-mcp/internal/session"
	"github.com/rxtech-lab/ignitus-mcp/internal/wallet"
)

type VideoServiceTestSuite struct {
	suite.Suite
	fixture *actionFixture
	service services.VideoService
}

func (s *VideoServiceTestSuite) SetupTest() {
	s.fixture = newActionFixture(s.T(), viewer)
	s.fixture.backend.videos = []contracts.Video{
		s.video("Open premium", fixedNow.Unix()+3600, true, "open"),
		s.video("Inactive", fixedNow.Unix()+3600, false, "open"),
		s.video("Closed premium", fixedNow.Unix()-3600, true, "closed"),
	}
	s.service = services.NewVideoService(s.fixture.deps, s.fixture.purchases)
}

func (s *VideoServiceTestSuite) video(title string, deadline int64, active bool, status string) contracts.Video {
	return contracts.Video{
		Owner:           creator,
		Title:           title,
		Description:     title + " description",
		VideoUrl:        "https://gateway.pinata.cloud/ipfs/video",
		ThumbnailUrl:    "https://gateway.pinata.cloud/ipfs/thumb",
		PremiumPrice:    wei(s.T(), "0.5"),
		WatchPrice:      wei(s.T(), "0.1"),
		Deadline:        big.NewInt(deadline),
		AmountCollected: big.NewInt(0),
		IsActive:        active,
		Status:          status,
	}
}

func (s *VideoServiceTestSuite) TestListFilters() {
	videos, err := s.service.ListVideos(context.Background())
	s.Require().NoError(err)
	s.Require().Len(videos, 2)
	s.Equal(uint64(0), videos[0].ID)
	s.Equal(uint64(2), videos[1].ID)
	s.True(videos[0].PremiumActive)
	s.Equal("0.1", videos[0].WatchPriceEther)

	closed, err := s.service.ListClosedVideos(context.Background())
	s.Require().NoError(err)
	s.Require().Len(closed, 1)
	s.Equal("Closed premium", closed[0].Title)
	s.False(closed[0].PremiumActive)
}

func (s *VideoServiceTestSuite) TestWatchVideoPaysWatchPrice() {
	result, err := s.service.WatchVideo(context.Background(), 2)
	s.Require().NoError(err)
	s.Equal(models.TransactionStatusConfirmed, result.Status)
	s.Equal("watchVideo", result.Method)
	s.Contains(result.ExplorerURL, "/tx/"+result.TransactionHash)

	sent := s.fixture.signer.last()
	s.Equal(wei(s.T(), "0.1"), sent.Value)
	s.Equal(contractAddress, *sent.To)

	tx, err := s.fixture.txs.GetTransaction(result.TransactionHash)
	s.Require().NoError(err)
	s.Equal(models.TransactionStatusConfirmed, tx.Status)
	s.Equal(uint64(689), tx.ChainID)
	s.Equal("100000000000000000", tx.Value)

	paid, err := s.service.HasPaid(viewer, 2)
	s.Require().NoError(err)
	s.True(paid)

	videos, err := s.service.ListVideos(context.Background())
	s.Require().NoError(err)
	s.False(videos[0].Paid)
	s.True(videos[1].Paid)

	s.Equal(notify.LevelSuccess, s.fixture.latestNotification(s.T()).Level)
}

func (s *VideoServiceTestSuite) TestPremiumAccessPaysPremiumPrice() {
	result, err := s.service.PremiumAccess(context.Background(), 0)
	s.Require().NoError(err)
	s.Equal("donateToPremiumCampaign", result.Method)
	s.Equal(wei(s.T(), "0.5"), s.fixture.signer.last().Value)
}

func (s *VideoServiceTestSuite) TestPriceIsReadFresh() {
	s.fixture.backend.mu.Lock()
	s.fixture.backend.videos[0].WatchPrice = wei(s.T(), "0.25")
	s.fixture.backend.mu.Unlock()

	_, err := s.service.WatchVideo(context.Background(), 0)
	s.Require().NoError(err)
	s.Equal(wei(s.T(), "0.25"), s.fixture.signer.last().Value)
}

func (s *VideoServiceTestSuite) TestRevertIsNotified() {
	s.fixture.backend.failed = true
	s.fixture.backend.revert = "Premium campaign is closed"

	result, err := s.service.PremiumAccess(context.Background(), 2)
	s.Require().Error(err)
	s.True(errors.Is(err, wallet.ErrTransactionReverted))
	s.Equal(models.TransactionStatusFailed, result.Status)

	note := s.fixture.latestNotification(s.T())
	s.Equal(notify.LevelError, note.Level)
	s.Equal("Premium campaign has ended. Please use regular watch option.", note.Message)

	tx, err := s.fixture.txs.GetTransaction(result.TransactionHash)
	s.Require().NoError(err)
	s.Equal(models.TransactionStatusFailed, tx.Status)

	paid, err := s.service.HasPaid(viewer, 2)
	s.Require().NoError(err)
	s.False(paid)
}

func (s *VideoServiceTestSuite) TestUserRejection() {
	s.fixture.signer.err = &wallet.ProviderError{Code: wallet.CodeUserRejected, Message: "User rejected the request."}

	_, err := s.service.WatchVideo(context.Background(), 0)
	s.Require().Error(err)
	s.True(errors.Is(err, wallet.ErrUserRejected))
	s.Equal("Transaction cancelled by user.", s.fixture.latestNotification(s.T()).Message)
}

func (s *VideoServiceTestSuite) TestUnknownVideo() {
	_, err := s.service.WatchVideo(context.Background(), 9)
	s.ErrorIs(err, services.ErrListingNotFound)
	s.Equal(0, s.fixture.signer.count())
}

func (s *VideoServiceTestSuite) TestRequiresReadySession() {
	s.fixture.session.err = session.ErrNotReady

	_, err := s.service.WatchVideo(context.Background(), 0)
	s.ErrorIs(err, session.ErrNotReady)
	_, err = s.service.ListVideos(context.Background())
	s.ErrorIs(err, session.ErrNotReady)

	s.Equal("Contract not initialized. Please connect your wallet.", s.fixture.latestNotification(s.T()).Message)
	s.Equal(0, s.fixture.signer.count())
}

func (s *VideoServiceTestSuite) TestCreateVideo() {
	form := services.CreateVideoForm{
		Title:        "Episode 1",
		Description:  "Pilot",
		VideoURL:     "https://gateway.pinata.cloud/ipfs/video",
		ThumbnailURL: "https://gateway.pinata.cloud/ipfs/thumb",
		PremiumPrice: "0.5",
		WatchPrice:   "0.1",
		Deadline:     fixedNow.Unix() + 86400,
	}
	result, err := s.service.CreateVideo(context.Background(), form)
	s.Require().NoError(err)
	s.Equal("createVideo", result.Method)

	sent := s.fixture.signer.last()
	s.Nil(sent.Value)
	method, err := s.fixture.spec.ABI.MethodById(sent.Data[:4])
	s.Require().NoError(err)
	args, err := method.Inputs.Unpack(sent.Data[4:])
	s.Require().NoError(err)
	s.Equal("Episode 1", args[0])
	s.Equal(wei(s.T(), "0.5"), args[4])
	s.Equal(big.NewInt(form.Deadline), args[6])

	tx, err := s.fixture.txs.GetTransaction(result.TransactionHash)
	s.Require().NoError(err)
	s.Equal(models.TransactionTypeCreateVideo, tx.TransactionType)
	s.NotEmpty(tx.Metadata["args"])
}

func (s *VideoServiceTestSuite) TestCreateVideoValidation() {
	valid := services.CreateVideoForm{
		Title:        "Episode 1",
		Description:  "Pilot",
		VideoURL:     "https://gateway.pinata.cloud/ipfs/video",
		ThumbnailURL: "https://gateway.pinata.cloud/ipfs/thumb",
		PremiumPrice: "0.5",
		WatchPrice:   "0.1",
		Deadline:     fixedNow.Unix() + 86400,
	}

	tests := []struct {
		name    string
		mutate  func(f *services.CreateVideoForm)
		field   string
		message string
	}{
		{"missing title", func(f *services.CreateVideoForm) { f.Title = "" }, "title", "Please fill in the title."},
		{"zero watch price", func(f *services.CreateVideoForm) { f.WatchPrice = "0" }, "watch_price", "The watch price must be greater than 0."},
		{"bad premium price", func(f *services.CreateVideoForm) { f.PremiumPrice = "abc" }, "premium_price", "The premium price must be greater than 0."},
		{"past deadline", func(f *services.CreateVideoForm) { f.Deadline = fixedNow.Unix() - 1 }, "deadline", "The deadline must be in the future."},
		{"bad video url", func(f *services.CreateVideoForm) { f.VideoURL = "not a url" }, "video_url", "Please provide a valid video url."},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			form := valid
			tt.mutate(&form)
			_, err := s.service.CreateVideo(context.Background(), form)
			var formErr *services.FormError
			s.Require().ErrorAs(err, &formErr)
			s.Equal(tt.field, formErr.Field)
			s.Equal(tt.message, s.fixture.latestNotification(s.T()).Message)
		})
	}
	s.Equal(0, s.fixture.signer.count())
}

func TestVideoServiceTestSuite(t *testing.T) {
	suite.Run(t, new(VideoServiceTestSuite))
}
