package services_test

import (
	"bytes"
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/rxtech-lab/ignitus-mcp/internal/contracts"
	"github.com/rxtech-lab/ignitus-mcp/internal/hooks"
	"github.com/rxtech-lab/ignitus-mcp/internal/notify"
	"github.com/rxtech-lab/ignitus-mcp/internal/services"
	"github.com/rxtech-lab/ignitus-mcp/internal/session"
	"github.com/rxtech-lab/ignitus-mcp/internal/wallet"
)

var (
	contractAddress = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	viewer          = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	creator         = common.HexToAddress("0x1234567890123456789012345678901234567890")
	fixedNow        = time.Unix(1800000000, 0)
)

func wei(t *testing.T, amount string) *big.Int {
	t.Helper()
	v, err := contracts.ParseEther(amount)
	require.NoError(t, err)
	return v
}

// chainBackend answers the read calls of the Ignitus contract and mines every
// submitted transaction with the configured status.
type chainBackend struct {
	mu        sync.Mutex
	spec      *contracts.Spec
	videos    []contracts.Video
	campaigns []contracts.Campaign
	failed    bool
	revert    string
	receipts  map[common.Hash]*types.Receipt
}

func (b *chainBackend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x60, 0x80}, nil
}

func (b *chainBackend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	method, err := b.spec.ABI.MethodById(call.Data[:4])
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "getVideos":
		return method.Outputs.Pack(b.videos)
	case "getCampaigns":
		return method.Outputs.Pack(b.campaigns)
	}
	// replay of a reverted transaction
	if b.revert == "" {
		return nil, nil
	}
	return revertData(b.revert), nil
}

func (b *chainBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r, ok := b.receipts[txHash]; ok {
		return r, nil
	}
	status := types.ReceiptStatusSuccessful
	if b.failed {
		status = types.ReceiptStatusFailed
	}
	receipt := &types.Receipt{Status: status, TxHash: txHash, BlockNumber: big.NewInt(100)}
	if b.receipts == nil {
		b.receipts = map[common.Hash]*types.Receipt{}
	}
	b.receipts[txHash] = receipt
	return receipt, nil
}

func revertData(reason string) []byte {
	var buf bytes.Buffer
	buf.Write(crypto.Keccak256([]byte("Error(string)"))[:4])
	buf.Write(common.LeftPadBytes(big.NewInt(32).Bytes(), 32))
	buf.Write(common.LeftPadBytes(big.NewInt(int64(len(reason))).Bytes(), 32))
	padded := make([]byte, (len(reason)+31)/32*32)
	copy(padded, reason)
	buf.Write(padded)
	return buf.Bytes()
}

type recordingSigner struct {
	mu      sync.Mutex
	account common.Address
	sent    []ethereum.CallMsg
	err     error
}

func (s *recordingSigner) Address() common.Address {
	return s.account
}

func (s *recordingSigner) SendTransaction(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return common.Hash{}, s.err
	}
	s.sent = append(s.sent, msg)
	return crypto.Keccak256Hash(msg.Data, big.NewInt(int64(len(s.sent))).Bytes()), nil
}

func (s *recordingSigner) last() ethereum.CallMsg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[len(s.sent)-1]
}

func (s *recordingSigner) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

// staticSession is a session that is either ready with binding or fails with err.
type staticSession struct {
	binding contracts.Binding
	snap    session.Snapshot
	err     error
}

func (s *staticSession) Ready() (contracts.Binding, session.Snapshot, error) {
	if s.err != nil {
		return nil, s.snap, s.err
	}
	return s.binding, s.snap, nil
}

type actionFixture struct {
	db        services.DBService
	spec      *contracts.Spec
	backend   *chainBackend
	signer    *recordingSigner
	session   *staticSession
	notifier  *notify.Notifier
	txs       services.TransactionService
	purchases services.PurchaseService
	deps      services.ActionDeps
}

func newActionFixture(t *testing.T, account common.Address) *actionFixture {
	t.Helper()
	db, err := services.NewSqliteDBService(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	spec, err := contracts.IgnitusSpec(contractAddress)
	require.NoError(t, err)

	backend := &chainBackend{spec: spec}
	signer := &recordingSigner{account: account}
	factory := contracts.NewFactory("", contracts.WithBackend(backend), contracts.WithPollInterval(time.Millisecond))
	binding, err := factory.Bind(context.Background(), spec, signer)
	require.NoError(t, err)

	addr := account
	snap := session.Snapshot{
		State:   session.ConnectedReady,
		Session: session.WalletSession{Address: &addr, ChainID: wallet.NeroTestnetChainID},
		Binding: binding,
	}

	f := &actionFixture{
		db:        db,
		spec:      spec,
		backend:   backend,
		signer:    signer,
		session:   &staticSession{binding: binding, snap: snap},
		notifier:  notify.New(20, notify.WithChain("Nero Testnet", "NERO")),
		txs:       services.NewTransactionService(db.GetDB()),
		purchases: services.NewPurchaseService(db.GetDB()),
	}
	hookService := services.NewHookService()
	require.NoError(t, hookService.AddHook(hooks.NewPurchaseHook(f.purchases)))

	f.deps = services.ActionDeps{
		Session:       f.session,
		Spec:          spec,
		Txs:           f.txs,
		Hooks:         hookService,
		Notifier:      f.notifier,
		ExplorerTxURL: wallet.NeroTestnet.ExplorerTxURL,
		Now:           func() time.Time { return fixedNow },
	}
	return f
}

func (f *actionFixture) latestNotification(t *testing.T) notify.Notification {
	t.Helper()
	list := f.notifier.List(1)
	require.Len(t, list, 1)
	return list[0]
}
