// internal/launchpad/types.go
package launchpad

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// MintDecimals is the fixed decimal precision of every mint created here.
const MintDecimals uint8 = 6

// MintRequest holds what the user typed into the launch form.
type MintRequest struct {
	Name          string
	Symbol        string
	ImageURL      string
	InitialSupply string
}

// MintParameters are the on-chain settings of the new mint. They are derived from
// the wallet and never taken from user input.
type MintParameters struct {
	Decimals        uint8
	MintAuthority   solana.PublicKey
	FreezeAuthority solana.PublicKey
}

// ParametersFor returns the mint parameters for a wallet address.
func ParametersFor(owner solana.PublicKey) MintParameters {
	return MintParameters{
		Decimals:        MintDecimals,
		MintAuthority:   owner,
		FreezeAuthority: owner,
	}
}

// MintIdentity is the single-use key pair addressing a new mint account.
type MintIdentity struct {
	key solana.PrivateKey
	pub solana.PublicKey
}

// PublicKey returns the mint address.
func (m *MintIdentity) PublicKey() solana.PublicKey {
	return m.pub
}

// discard wipes the private key once the transaction carries its signature.
func (m *MintIdentity) discard() {
	for i := range m.key {
		m.key[i] = 0
	}
	m.key = nil
}

// PendingTransaction is a launch transaction that carries the mint signature and
// waits for the wallet's.
type PendingTransaction struct {
	Mint            solana.PublicKey
	FeePayer        solana.PublicKey
	RecentBlockhash solana.Hash
	RentLamports    uint64
	Instructions    []solana.Instruction
	Tx              *solana.Transaction
}

// ConfirmationStatus is the terminal state of a submitted launch.
type ConfirmationStatus string

const (
	StatusConfirmed ConfirmationStatus = "confirmed"
	StatusFailed    ConfirmationStatus = "failed"
	StatusTimedOut  ConfirmationStatus = "timed_out"
	// StatusUnknown: транзакция отправлена, но ожидание подтверждения прервано.
	StatusUnknown ConfirmationStatus = "unknown"
)

// ConfirmationResult is what a launch reports back to its caller.
type ConfirmationResult struct {
	Mint      solana.PublicKey
	Signature solana.Signature
	Status    ConfirmationStatus
}

// Stage marks progress through a launch.
type Stage string

const (
	StageRent      Stage = "rent"
	StageIdentity  Stage = "identity"
	StageAssemble  Stage = "assemble"
	StageBlockhash Stage = "blockhash"
	StageSign      Stage = "sign"
	StageWallet    Stage = "wallet"
	StageConfirm   Stage = "confirm"
	StageDone      Stage = "done"
)

// WalletSession is the user's wallet as seen by the launch flow.
type WalletSession interface {
	Connected() bool
	// PublicAddress returns the zero key when no account is selected.
	PublicAddress() solana.PublicKey
	// SignAndSend adds the wallet signature and submits tx through ledger.
	// It may wait on a human; a decline is reported as ErrUserRejectedSigning.
	SignAndSend(ctx context.Context, tx *solana.Transaction, ledger LedgerClient) (solana.Signature, error)
}

// LedgerClient is the network connection used by a launch.
type LedgerClient interface {
	MinimumRentExemptBalance(ctx context.Context, size uint64) (uint64, error)
	LatestBlockReference(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	ConfirmTransaction(ctx context.Context, sig solana.Signature, commitment rpc.CommitmentType) (ConfirmationStatus, error)
}

// Launcher creates token mints.
type Launcher interface {
	CreateToken(ctx context.Context, req MintRequest, wallet WalletSession, ledger LedgerClient) (*ConfirmationResult, error)
}
