package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/token-launchpad/internal/launchpad"
)

type stubLedger struct {
	sent    []*solana.Transaction
	sendErr error
}

func (s *stubLedger) MinimumRentExemptBalance(context.Context, uint64) (uint64, error) {
	return 1461600, nil
}

func (s *stubLedger) LatestBlockReference(context.Context) (solana.Hash, error) {
	return solana.Hash{42}, nil
}

func (s *stubLedger) SendTransaction(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if s.sendErr != nil {
		return solana.Signature{}, s.sendErr
	}
	s.sent = append(s.sent, tx)
	return tx.Signatures[0], nil
}

func (s *stubLedger) ConfirmTransaction(context.Context, solana.Signature, rpc.CommitmentType) (launchpad.ConfirmationStatus, error) {
	return launchpad.StatusConfirmed, nil
}

func newTestWallet(t *testing.T) *Wallet {
	t.Helper()
	key := solana.NewWallet().PrivateKey
	w, err := NewWallet(key.String())
	require.NoError(t, err)
	return w.WithLogger(zaptest.NewLogger(t))
}

func pendingFor(t *testing.T, w *Wallet, ledger launchpad.LedgerClient) *launchpad.PendingTransaction {
	t.Helper()
	p, err := launchpad.New(zaptest.NewLogger(t)).Prepare(context.Background(), launchpad.MintRequest{}, w.PublicKey, ledger)
	require.NoError(t, err)
	return p
}

func TestNewWallet(t *testing.T) {
	key := solana.NewWallet().PrivateKey

	w, err := NewWallet(key.String())
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), w.PublicKey)
	assert.Equal(t, key.PublicKey().String(), w.String())

	_, err = NewWallet("0OIl")
	assert.Error(t, err)

	_, err = NewWallet(solana.NewWallet().PublicKey().String())
	assert.ErrorContains(t, err, "invalid private key length")
}

func TestLoadKeypairFile(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	raw := make([]int, len(key))
	for i, b := range key {
		raw[i] = int(b)
	}
	data, err := json.Marshal(raw)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	w, err := LoadKeypairFile(path)
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), w.PublicKey)

	_, err = LoadKeypairFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadWallets(t *testing.T) {
	main := solana.NewWallet().PrivateKey
	spare := solana.NewWallet().PrivateKey
	content := "wallets:\n" +
		"  - name: main\n    private_key: " + main.String() + "\n" +
		"  - name: spare\n    private_key: " + spare.String() + "\n" +
		"  - name: empty\n    private_key: \"\"\n"

	path := filepath.Join(t.TempDir(), "wallets.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	wallets, err := LoadWallets(path)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, main.PublicKey(), wallets["main"].PublicKey)
	assert.Equal(t, spare.PublicKey(), wallets["spare"].PublicKey)

	bad := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("wallets:\n  - name: x\n    private_key: nope\n"), 0o600))
	_, err = LoadWallets(bad)
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yml")
	require.NoError(t, os.WriteFile(empty, []byte("wallets: []\n"), 0o600))
	_, err = LoadWallets(empty)
	assert.ErrorContains(t, err, "no valid wallets")
}

func TestWallet_ConnectionLifecycle(t *testing.T) {
	w := newTestWallet(t)

	assert.False(t, w.Connected())
	assert.True(t, w.PublicAddress().IsZero())
	assert.ErrorIs(t, w.Connect(nil), ErrNoApprover)

	require.NoError(t, w.Connect(AutoApprove))
	assert.True(t, w.Connected())
	assert.Equal(t, w.PublicKey, w.PublicAddress())

	w.Disconnect()
	assert.False(t, w.Connected())
	assert.True(t, w.PublicAddress().IsZero())
}

func TestWallet_SignAndSend(t *testing.T) {
	ledger := &stubLedger{}
	w := newTestWallet(t)
	require.NoError(t, w.Connect(AutoApprove))

	pending := pendingFor(t, w, ledger)
	sig, err := w.SignAndSend(context.Background(), pending.Tx, ledger)
	require.NoError(t, err)

	require.Len(t, ledger.sent, 1)
	assert.Equal(t, pending.Tx.Signatures[0], sig)
	assert.NoError(t, ledger.sent[0].VerifySignatures())
}

func TestWallet_SignAndSend_Declined(t *testing.T) {
	ledger := &stubLedger{}
	w := newTestWallet(t)

	var seen ApprovalRequest
	require.NoError(t, w.Connect(ApproverFunc(func(_ context.Context, req ApprovalRequest) (bool, error) {
		seen = req
		return false, nil
	})))

	pending := pendingFor(t, w, ledger)
	_, err := w.SignAndSend(context.Background(), pending.Tx, ledger)

	assert.ErrorIs(t, err, launchpad.ErrUserRejectedSigning)
	assert.Empty(t, ledger.sent)
	assert.Equal(t, solana.Signature{}, pending.Tx.Signatures[0], "declined transaction stays unsigned")

	assert.Equal(t, w.PublicKey, seen.FeePayer)
	assert.Equal(t, []solana.PublicKey{pending.Mint}, seen.CoSigners)
	assert.Equal(t, 2, seen.Instructions)
	assert.Len(t, seen.Programs, 2)
}

func TestWallet_SignAndSend_Guards(t *testing.T) {
	ledger := &stubLedger{}
	w := newTestWallet(t)
	pending := pendingFor(t, w, ledger)

	_, err := w.SignAndSend(context.Background(), pending.Tx, ledger)
	assert.ErrorIs(t, err, launchpad.ErrWalletNotConnected)

	require.NoError(t, w.Connect(AutoApprove))

	other := newTestWallet(t)
	foreign := pendingFor(t, other, ledger)
	_, err = w.SignAndSend(context.Background(), foreign.Tx, ledger)
	assert.ErrorIs(t, err, ErrNotFeePayer)
	assert.ErrorIs(t, err, launchpad.ErrWalletFailure)

	// mint signature missing: build without the orchestrator's partial signature
	unsigned := pendingFor(t, w, ledger)
	unsigned.Tx.Signatures = nil
	_, err = w.SignAndSend(context.Background(), unsigned.Tx, ledger)
	assert.ErrorIs(t, err, ErrUnexpectedSigner)
	assert.ErrorIs(t, err, launchpad.ErrWalletFailure)

	_, err = w.SignAndSend(context.Background(), nil, ledger)
	assert.ErrorIs(t, err, launchpad.ErrWalletFailure)

	assert.Empty(t, ledger.sent)
}

func TestWallet_SignAndSend_ApproverErrors(t *testing.T) {
	ledger := &stubLedger{}
	ttyErr := errors.New("read /dev/tty: input/output error")

	w := newTestWallet(t)
	require.NoError(t, w.Connect(ApproverFunc(func(context.Context, ApprovalRequest) (bool, error) {
		return false, ttyErr
	})))
	_, err := w.SignAndSend(context.Background(), pendingFor(t, w, ledger).Tx, ledger)
	assert.ErrorIs(t, err, launchpad.ErrWalletFailure)
	assert.ErrorIs(t, err, ttyErr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w = newTestWallet(t)
	require.NoError(t, w.Connect(ApproverFunc(func(ctx context.Context, _ ApprovalRequest) (bool, error) {
		return false, ctx.Err()
	})))
	_, err = w.SignAndSend(ctx, pendingFor(t, w, ledger).Tx, ledger)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, launchpad.ErrWalletFailure)

	assert.Empty(t, ledger.sent)
}

func TestWallet_SignAndSend_LedgerError(t *testing.T) {
	ledger := &stubLedger{sendErr: errors.New("node is behind")}
	w := newTestWallet(t)
	require.NoError(t, w.Connect(AutoApprove))

	_, err := w.SignAndSend(context.Background(), pendingFor(t, w, ledger).Tx, ledger)
	assert.ErrorIs(t, err, ledger.sendErr)
}

func TestWallet_WithOrchestrator(t *testing.T) {
	ledger := &stubLedger{}
	w := newTestWallet(t)
	require.NoError(t, w.Connect(AutoApprove))

	res, err := launchpad.New(zaptest.NewLogger(t)).CreateToken(context.Background(), launchpad.MintRequest{Name: "Rocket"}, w, ledger)
	require.NoError(t, err)
	assert.Equal(t, launchpad.StatusConfirmed, res.Status)
	assert.False(t, res.Mint.IsZero())
}

func TestPromptApprover(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  y  \n", true},
		{"n\n", false},
		{"\n", false},
		{"sure\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			p := NewPromptApprover(strings.NewReader(tt.input), &out)

			ok, err := p.Approve(context.Background(), ApprovalRequest{Instructions: 2})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Contains(t, out.String(), "Approve and sign? [y/N]")
			assert.Contains(t, out.String(), "Instructions: 2")
		})
	}
}

func TestPromptApprover_ContextCancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	p := NewPromptApprover(r, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	ok, err := p.Approve(ctx, ApprovalRequest{})
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPromptApprover_AnswerAfterCancelGoesToNextPrompt(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	p := NewPromptApprover(r, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.Approve(ctx, ApprovalRequest{})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	go func() {
		_, _ = io.WriteString(w, "y\n")
		_, _ = io.WriteString(w, "n\n")
	}()

	ok, err := p.Approve(context.Background(), ApprovalRequest{})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Approve(context.Background(), ApprovalRequest{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAutoApprove(t *testing.T) {
	ok, err := AutoApprove.Approve(context.Background(), ApprovalRequest{})
	assert.True(t, ok)
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = AutoApprove.Approve(ctx, ApprovalRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpen(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	path := filepath.Join(t.TempDir(), "wallets.yml")
	require.NoError(t, os.WriteFile(path, []byte("wallets:\n  - name: main\n    private_key: "+key.String()+"\n"), 0o600))

	w, err := Open(Source{PrivateKey: key.String()})
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), w.PublicKey)

	w, err = Open(Source{WalletsFile: path, WalletName: "main"})
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), w.PublicKey)

	_, err = Open(Source{WalletsFile: path, WalletName: "other"})
	assert.ErrorContains(t, err, `"other" not found`)

	_, err = Open(Source{})
	assert.Error(t, err)
}
