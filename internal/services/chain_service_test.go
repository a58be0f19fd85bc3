package services_test

import (
	"testing"

	"github.com/rxtech-lab/ignitus-mcp/internal/services"
	"github.com/rxtech-lab/ignitus-mcp/internal/wallet"
	"github.com/stretchr/testify/suite"
)

type ChainServiceTestSuite struct {
	suite.Suite
	db      services.DBService
	service services.ChainService
}

func (s *ChainServiceTestSuite) SetupTest() {
	db, err := services.NewSqliteDBService(":memory:")
	s.Require().NoError(err)
	s.db = db
	s.service = services.NewChainService(db.GetDB())
}

func (s *ChainServiceTestSuite) TearDownTest() {
	s.db.Close()
}

func hardhat() wallet.ChainDescriptor {
	return wallet.NewChainDescriptor(31337, "Hardhat",
		wallet.NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18},
		[]string{"http://127.0.0.1:8545"}, nil)
}

func (s *ChainServiceTestSuite) TestGetUnknownChain() {
	_, err := s.service.GetChain(wallet.NeroTestnetChainID)
	s.ErrorIs(err, wallet.ErrUnknownChain)
}

func (s *ChainServiceTestSuite) TestSaveAndGetChain() {
	s.Require().NoError(s.service.SaveChain(wallet.NeroTestnet))

	got, err := s.service.GetChain(wallet.NeroTestnetChainID)
	s.Require().NoError(err)
	s.Equal(wallet.NeroTestnet, *got)
}

func (s *ChainServiceTestSuite) TestSaveChainUpdatesExisting() {
	s.Require().NoError(s.service.SaveChain(wallet.NeroTestnet))

	updated := wallet.NeroTestnet
	updated.RPCURLs = []string{"https://rpc2-testnet.nerochain.io"}
	s.Require().NoError(s.service.SaveChain(updated))

	chains, err := s.service.ListChains()
	s.Require().NoError(err)
	s.Require().Len(chains, 1)
	s.Equal([]string{"https://rpc2-testnet.nerochain.io"}, []string(chains[0].RPCURLs))
}

func (s *ChainServiceTestSuite) TestSaveChainRejectsBadID() {
	bad := hardhat()
	bad.ChainID = "not-hex"
	s.Error(s.service.SaveChain(bad))
}

func (s *ChainServiceTestSuite) TestEnsureChainActivates() {
	_, err := s.service.GetActiveChain()
	s.Error(err)

	s.Require().NoError(s.service.SaveChain(hardhat()))
	s.Require().NoError(s.service.SetActiveChain(31337))

	active, err := s.service.EnsureChain(wallet.NeroTestnet)
	s.Require().NoError(err)
	s.Equal(wallet.NeroTestnetChainID, active.NetworkID)
	s.Equal("NERO", active.CurrencySymbol)

	chains, err := s.service.ListChains()
	s.Require().NoError(err)
	s.Require().Len(chains, 2)
	s.False(chains[0].IsActive)
	s.True(chains[1].IsActive)
}

func (s *ChainServiceTestSuite) TestSetActiveUnknownChain() {
	s.ErrorIs(s.service.SetActiveChain(1), wallet.ErrUnknownChain)
}

func (s *ChainServiceTestSuite) TestBacksLocalWallet() {
	const key = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	s.Require().NoError(s.service.SaveChain(wallet.NeroTestnet))

	w, err := wallet.NewLocalWallet(key, wallet.NeroTestnetChainID, s.service)
	s.Require().NoError(err)

	err = w.SwitchChain(s.T().Context(), 31337)
	s.ErrorIs(err, wallet.ErrUnknownChain)

	s.Require().NoError(w.RegisterChain(s.T().Context(), hardhat()))
	s.Require().NoError(w.SwitchChain(s.T().Context(), 31337))

	id, err := w.ChainID(s.T().Context())
	s.Require().NoError(err)
	s.Equal(uint64(31337), id)
}

func TestChainServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ChainServiceTestSuite))
}
