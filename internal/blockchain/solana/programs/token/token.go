// internal/blockchain/solana/programs/token/token.go
package token

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	spltoken "github.com/gagliardetto/solana-go/programs/token"
)

// ProgramID is the SPL Token program.
var ProgramID = solana.TokenProgramID

// AssociatedTokenProgramID is the associated token account program.
var AssociatedTokenProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")

// MintSize is the length in bytes of an SPL Token mint record.
const MintSize uint64 = 82

// Instruction tags of the SPL Token program.
const (
	InstructionMintTo          = spltoken.Instruction_MintTo
	InstructionInitializeMint2 = spltoken.Instruction_InitializeMint2
)

// InitializeMint2Instruction initializes a freshly created mint account.
// Unlike InitializeMint it does not require the rent sysvar.
type InitializeMint2Instruction struct {
	Mint            solana.PublicKey
	Decimals        uint8
	MintAuthority   solana.PublicKey
	FreezeAuthority *solana.PublicKey
}

// Build собирает инструкцию через programs/token. Без freeze authority
// COption кодируется одним нулевым байтом.
func (instr *InitializeMint2Instruction) Build() (solana.Instruction, error) {
	if instr.Mint.IsZero() {
		return nil, fmt.Errorf("mint address is empty")
	}
	if instr.MintAuthority.IsZero() {
		return nil, fmt.Errorf("mint authority is empty")
	}

	builder := spltoken.NewInitializeMint2InstructionBuilder().
		SetDecimals(instr.Decimals).
		SetMintAuthority(instr.MintAuthority).
		SetMintAccount(instr.Mint)
	if instr.FreezeAuthority != nil {
		builder.SetFreezeAuthority(*instr.FreezeAuthority)
	}

	ix, err := builder.ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build initialize mint instruction: %w", err)
	}
	return ix, nil
}

// MintToInstruction mints new tokens into a token account.
type MintToInstruction struct {
	Mint        solana.PublicKey
	Destination solana.PublicKey
	Authority   solana.PublicKey
	Amount      uint64
}

func (instr *MintToInstruction) Build() (solana.Instruction, error) {
	if instr.Amount == 0 {
		return nil, fmt.Errorf("mint amount must be positive")
	}

	ix, err := spltoken.NewMintToInstruction(
		instr.Amount,
		instr.Mint,
		instr.Destination,
		instr.Authority,
		nil,
	).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build mint-to instruction: %w", err)
	}
	return ix, nil
}

// FindAssociatedTokenAddress derives the ATA of owner for mint.
func FindAssociatedTokenAddress(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive associated token address: %w", err)
	}
	return ata, nil
}

// NewCreateAssociatedTokenAccountIdempotentInstruction creates the ATA of owner for
// mint, paid by payer. It is a no-op on chain if the account already exists.
func NewCreateAssociatedTokenAccountIdempotentInstruction(payer, owner, mint solana.PublicKey) (solana.Instruction, error) {
	ata, err := FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(
		AssociatedTokenProgramID,
		[]*solana.AccountMeta{
			{PublicKey: payer, IsWritable: true, IsSigner: true},
			{PublicKey: ata, IsWritable: true, IsSigner: false},
			{PublicKey: owner, IsWritable: false, IsSigner: false},
			{PublicKey: mint, IsWritable: false, IsSigner: false},
			{PublicKey: solana.SystemProgramID, IsWritable: false, IsSigner: false},
			{PublicKey: ProgramID, IsWritable: false, IsSigner: false},
		},
		[]byte{1}, // 1 = CreateIdempotent
	), nil
}
