package services_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/ignitus-mcp/internal/contracts"
	"github.com/rxtech-lab/ignitus-mcp/internal/models"
	"github.com/rxtech-lab/ignitus-mcp/internal/services"
	"github.com/rxtech-lab/ignitus-mcp/internal/wallet"
)

type CampaignServiceTestSuite struct {
	suite.Suite
	fixture *actionFixture
	service services.CampaignService
}

func (s *CampaignServiceTestSuite) SetupTest() {
	s.fixture = newActionFixture(s.T(), viewer)
	s.fixture.backend.campaigns = []contracts.Campaign{
		{
			Owner:           creator,
			Title:           "Clean water",
			Description:     "Wells for the village",
			Target:          wei(s.T(), "10"),
			Deadline:        big.NewInt(fixedNow.Unix() + 3*86400 + 60),
			AmountCollected: wei(s.T(), "2.5"),
			Image:           "https://gateway.pinata.cloud/ipfs/image",
			Donators:        []common.Address{viewer},
			Donations:       []*big.Int{wei(s.T(), "2.5")},
		},
		{
			Owner:           creator,
			Title:           "Ended",
			Description:     "Already over",
			Target:          wei(s.T(), "1"),
			Deadline:        big.NewInt(fixedNow.Unix() - 60),
			AmountCollected: big.NewInt(0),
			Image:           "https://gateway.pinata.cloud/ipfs/ended",
			Donators:        []common.Address{},
			Donations:       []*big.Int{},
		},
	}
	s.service = services.NewCampaignService(s.fixture.deps)
}

func (s *CampaignServiceTestSuite) TestListCampaigns() {
	campaigns, err := s.service.ListCampaigns(context.Background())
	s.Require().NoError(err)
	s.Require().Len(campaigns, 2)

	s.True(campaigns[0].Active)
	s.Equal(3, campaigns[0].DaysLeft)
	s.Equal("10.0", campaigns[0].TargetEther)
	s.Equal("2.5", campaigns[0].AmountCollectedEther)
	s.Equal([]common.Address{viewer}, campaigns[0].Donators)

	s.False(campaigns[1].Active)
	s.Equal(0, campaigns[1].DaysLeft)
}

func (s *CampaignServiceTestSuite) TestDonate() {
	result, err := s.service.Donate(context.Background(), 0, "0.75")
	s.Require().NoError(err)
	s.Equal("donate", result.Method)
	s.Equal(models.TransactionStatusConfirmed, result.Status)
	s.Equal(wei(s.T(), "0.75"), s.fixture.signer.last().Value)

	tx, err := s.fixture.txs.GetTransaction(result.TransactionHash)
	s.Require().NoError(err)
	s.Equal(models.TransactionTypeDonateCampaign, tx.TransactionType)
	s.Require().NotNil(tx.ListingID)
	s.Equal(uint64(0), *tx.ListingID)

	// donations are not purchases
	purchases, err := s.fixture.purchases.ListPurchases(viewer.Hex())
	s.Require().NoError(err)
	s.Empty(purchases)
}

func (s *CampaignServiceTestSuite) TestDonateRejectsBadAmount() {
	for _, amount := range []string{"", "0", "-1", "abc"} {
		_, err := s.service.Donate(context.Background(), 0, amount)
		var formErr *services.FormError
		s.Require().ErrorAs(err, &formErr, amount)
	}
	s.Equal(0, s.fixture.signer.count())
	s.Equal("The amount must be greater than 0.", s.fixture.latestNotification(s.T()).Message)
}

func (s *CampaignServiceTestSuite) TestDonateUnknownCampaign() {
	_, err := s.service.Donate(context.Background(), 5, "1")
	s.ErrorIs(err, services.ErrListingNotFound)
	s.Equal(0, s.fixture.signer.count())
}

func (s *CampaignServiceTestSuite) TestDonateInsufficientFunds() {
	s.fixture.signer.err = &wallet.ProviderError{Code: wallet.CodeInternal, Message: "insufficient funds for gas * price + value"}

	_, err := s.service.Donate(context.Background(), 0, "100")
	s.Require().ErrorIs(err, wallet.ErrInsufficientFunds)
	s.Equal("Insufficient NERO balance. Please add more funds to your wallet.", s.fixture.latestNotification(s.T()).Message)
}

func (s *CampaignServiceTestSuite) TestCreateCampaignUsesSessionAccount() {
	result, err := s.service.CreateCampaign(context.Background(), services.CreateCampaignForm{
		Title:       "School books",
		Description: "Books for 200 pupils",
		Target:      "5",
		Deadline:    fixedNow.Unix() + 7*86400,
		Image:       "https://gateway.pinata.cloud/ipfs/books",
	})
	s.Require().NoError(err)
	s.Equal("createCampaign", result.Method)

	sent := s.fixture.signer.last()
	method, err := s.fixture.spec.ABI.MethodById(sent.Data[:4])
	s.Require().NoError(err)
	args, err := method.Inputs.Unpack(sent.Data[4:])
	s.Require().NoError(err)
	s.Equal(viewer, args[0])
	s.Equal(wei(s.T(), "5"), args[3])
}

func (s *CampaignServiceTestSuite) TestCreateCampaignValidation() {
	_, err := s.service.CreateCampaign(context.Background(), services.CreateCampaignForm{
		Title:       "School books",
		Description: "Books for 200 pupils",
		Target:      "5",
		Deadline:    fixedNow.Unix(),
		Image:       "https://gateway.pinata.cloud/ipfs/books",
	})
	var formErr *services.FormError
	s.Require().ErrorAs(err, &formErr)
	s.Equal("deadline", formErr.Field)
	s.Equal(0, s.fixture.signer.count())
}

func TestCampaignServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CampaignServiceTestSuite))
}
