package launchpad

import (
	"context"
	"errors"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/rovshanmuradov/token-launchpad/internal/blockchain/solana/transaction"
)

// fakeLedger записывает все обращения к сети.
type fakeLedger struct {
	mu sync.Mutex

	rent      uint64
	blockhash solana.Hash
	status    ConfirmationStatus

	rentErr    error
	hashErr    error
	sendErr    error
	confirmErr error

	rentCalls    int
	hashCalls    int
	sendCalls    int
	confirmCalls int

	rentSizes  []uint64
	commitment rpc.CommitmentType
	sent       []*solana.Transaction
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		rent:      1461600,
		blockhash: solana.Hash{7, 7, 7},
		status:    StatusConfirmed,
	}
}

func (l *fakeLedger) MinimumRentExemptBalance(_ context.Context, size uint64) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rentCalls++
	l.rentSizes = append(l.rentSizes, size)
	return l.rent, l.rentErr
}

func (l *fakeLedger) LatestBlockReference(context.Context) (solana.Hash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hashCalls++
	if l.hashErr != nil {
		return solana.Hash{}, l.hashErr
	}
	return l.blockhash, nil
}

func (l *fakeLedger) SendTransaction(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sendCalls++
	if l.sendErr != nil {
		return solana.Signature{}, l.sendErr
	}
	l.sent = append(l.sent, tx)
	return tx.Signatures[0], nil
}

func (l *fakeLedger) ConfirmTransaction(_ context.Context, _ solana.Signature, commitment rpc.CommitmentType) (ConfirmationStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.confirmCalls++
	l.commitment = commitment
	return l.status, l.confirmErr
}

func (l *fakeLedger) calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rentCalls + l.hashCalls + l.sendCalls + l.confirmCalls
}

// fakeWallet подписывает локальным ключом, как настоящий кошелёк после одобрения.
type fakeWallet struct {
	key       solana.PrivateKey
	connected bool
	reject    bool
	err       error
	received  []*solana.Transaction
}

func newFakeWallet() *fakeWallet {
	return &fakeWallet{key: solana.NewWallet().PrivateKey, connected: true}
}

func (w *fakeWallet) Connected() bool { return w.connected }

func (w *fakeWallet) PublicAddress() solana.PublicKey {
	if !w.connected {
		return solana.PublicKey{}
	}
	return w.key.PublicKey()
}

func (w *fakeWallet) SignAndSend(ctx context.Context, tx *solana.Transaction, ledger LedgerClient) (solana.Signature, error) {
	w.received = append(w.received, tx)
	if w.reject {
		return solana.Signature{}, ErrUserRejectedSigning
	}
	if w.err != nil {
		return solana.Signature{}, w.err
	}
	if missing := transaction.MissingSigners(tx); len(missing) != 1 || !missing[0].Equals(w.key.PublicKey()) {
		return solana.Signature{}, errors.New("transaction is not ready for the wallet signature")
	}
	if err := transaction.PartialSign(tx, w.key); err != nil {
		return solana.Signature{}, err
	}
	return ledger.SendTransaction(ctx, tx)
}

// countingKeygen считает вызовы генератора ключей.
type countingKeygen struct {
	mu    sync.Mutex
	calls int
	last  solana.PublicKey
}

func (k *countingKeygen) generate() (solana.PrivateKey, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.calls++
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, err
	}
	k.last = key.PublicKey()
	return key, nil
}

type compiledIx struct {
	program  solana.PublicKey
	accounts []solana.PublicKey
	data     []byte
}

func decodeInstructions(tx *solana.Transaction) []compiledIx {
	keys := tx.Message.AccountKeys
	out := make([]compiledIx, 0, len(tx.Message.Instructions))
	for _, ci := range tx.Message.Instructions {
		ix := compiledIx{program: keys[ci.ProgramIDIndex], data: []byte(ci.Data)}
		for _, idx := range ci.Accounts {
			ix.accounts = append(ix.accounts, keys[idx])
		}
		out = append(out, ix)
	}
	return out
}
