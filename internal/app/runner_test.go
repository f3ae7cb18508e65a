package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/token-launchpad/internal/config"
	"github.com/rovshanmuradov/token-launchpad/internal/journal"
	"github.com/rovshanmuradov/token-launchpad/internal/launchpad"
	"github.com/rovshanmuradov/token-launchpad/internal/wallet"
)

type fakeNode struct {
	mu      sync.Mutex
	version string
	pingErr    error
	confirmErr error
	sent       int
}

func (n *fakeNode) MinimumRentExemptBalance(context.Context, uint64) (uint64, error) {
	return 1461600, nil
}

func (n *fakeNode) LatestBlockReference(context.Context) (solana.Hash, error) {
	return solana.Hash{1}, nil
}

func (n *fakeNode) SendTransaction(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	n.mu.Lock()
	n.sent++
	n.mu.Unlock()
	return tx.Signatures[0], nil
}

func (n *fakeNode) ConfirmTransaction(context.Context, solana.Signature, rpc.CommitmentType) (launchpad.ConfirmationStatus, error) {
	if n.confirmErr != nil {
		return "", n.confirmErr
	}
	return launchpad.StatusConfirmed, nil
}

func (n *fakeNode) Ping(context.Context) (string, error) {
	return n.version, n.pingErr
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		RPCURL:      "http://localhost:8899",
		Commitment:  "confirmed",
		PrivateKey:  solana.NewWallet().PrivateKey.String(),
		JournalFile: filepath.Join(t.TempDir(), "launches.csv"),
	}
}

func TestRunner_LaunchRecordsJournal(t *testing.T) {
	cfg := testConfig(t)
	node := &fakeNode{version: "1.18.0"}

	var stages []launchpad.Stage
	r, err := newRunner(cfg, zaptest.NewLogger(t), Options{
		Observer: func(s launchpad.Stage) { stages = append(stages, s) },
	}, node)
	require.NoError(t, err)
	assert.True(t, r.Wallet().Connected())

	status, err := r.CheckNode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.18.0", status.Version)

	res, err := r.Launch(context.Background(), launchpad.MintRequest{Name: "Rocket", Symbol: "RKT"})
	require.NoError(t, err)
	assert.Equal(t, launchpad.StatusConfirmed, res.Status)
	assert.Equal(t, 1, node.sent)
	assert.Contains(t, stages, launchpad.StageDone)

	r.Shutdown()
	assert.False(t, r.Wallet().Connected())

	records, err := journal.ReadAll(cfg.JournalFile)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, res.Mint.String(), records[0].Mint)
	assert.Equal(t, r.Wallet().PublicKey.String(), records[0].Wallet)
	assert.Equal(t, "Rocket", records[0].Name)
}

func TestRunner_DeclinedLaunchIsRecorded(t *testing.T) {
	cfg := testConfig(t)
	node := &fakeNode{}

	r, err := newRunner(cfg, zaptest.NewLogger(t), Options{
		Approver: wallet.ApproverFunc(func(context.Context, wallet.ApprovalRequest) (bool, error) {
			return false, nil
		}),
	}, node)
	require.NoError(t, err)

	_, err = r.Launch(context.Background(), launchpad.MintRequest{Name: "Rocket"})
	assert.ErrorIs(t, err, launchpad.ErrUserRejectedSigning)
	assert.Zero(t, node.sent)
	r.Shutdown()

	records, err := journal.ReadAll(cfg.JournalFile)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, journal.StatusRejected, records[0].Status)
	assert.Contains(t, records[0].Error, "rejected")
}

func TestRunner_CancelledConfirmationIsNotFailure(t *testing.T) {
	cfg := testConfig(t)
	node := &fakeNode{confirmErr: context.Canceled}

	r, err := newRunner(cfg, zaptest.NewLogger(t), Options{}, node)
	require.NoError(t, err)

	res, err := r.Launch(context.Background(), launchpad.MintRequest{Name: "Rocket"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, launchpad.ErrConfirmationFailed)
	require.NotNil(t, res)
	assert.Equal(t, launchpad.StatusUnknown, res.Status)
	assert.Equal(t, 1, node.sent)
	r.Shutdown()

	records, err := journal.ReadAll(cfg.JournalFile)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, string(launchpad.StatusUnknown), records[0].Status)
	assert.Equal(t, res.Signature.String(), records[0].Signature)
}

func TestRunner_NoJournal(t *testing.T) {
	cfg := testConfig(t)
	cfg.JournalFile = ""

	r, err := newRunner(cfg, zaptest.NewLogger(t), Options{}, &fakeNode{})
	require.NoError(t, err)
	assert.Nil(t, r.Journal())

	_, err = r.Launch(context.Background(), launchpad.MintRequest{})
	assert.NoError(t, err)
	r.Shutdown()
}

func TestRunner_Errors(t *testing.T) {
	cfg := testConfig(t)
	cfg.PrivateKey = "not-a-key"
	_, err := newRunner(cfg, zaptest.NewLogger(t), Options{}, &fakeNode{})
	assert.ErrorContains(t, err, "failed to load wallet")

	cfg = testConfig(t)
	r, err := newRunner(cfg, zaptest.NewLogger(t), Options{}, &fakeNode{pingErr: errors.New("connection refused")})
	require.NoError(t, err)
	defer r.Shutdown()

	_, err = r.CheckNode(context.Background())
	assert.ErrorContains(t, err, "unreachable")
	assert.ErrorContains(t, err, "connection refused")
}

func TestNewRunner_BuildsLedger(t *testing.T) {
	cfg := testConfig(t)
	r, err := NewRunner(cfg, zaptest.NewLogger(t), Options{})
	require.NoError(t, err)
	defer r.Shutdown()

	assert.NotNil(t, r.Ledger())
	assert.NotNil(t, r.Launcher())
	assert.Same(t, cfg, r.Config())
}
