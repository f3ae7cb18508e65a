// internal/blockchain/solana/transaction/builder.go
package transaction

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	ErrNoInstructions  = errors.New("no instructions provided")
	ErrNoFeePayer      = errors.New("fee payer is not set")
	ErrEmptyBlockhash  = errors.New("recent blockhash is empty")
	ErrSignerNotNeeded = errors.New("key is not a required signer")
)

// Builder собирает транзакцию: список инструкций в заданном порядке и плательщика комиссии.
// Blockhash передаётся в Build, чтобы вызывающий получал его непосредственно перед подписью.
type Builder struct {
	feePayer     solana.PublicKey
	instructions []solana.Instruction
}

// NewBuilder создает новый билдер транзакций
func NewBuilder(feePayer solana.PublicKey) *Builder {
	return &Builder{feePayer: feePayer}
}

// AddInstruction добавляет инструкцию в транзакцию
func (b *Builder) AddInstruction(instructions ...solana.Instruction) *Builder {
	b.instructions = append(b.instructions, instructions...)
	return b
}

// Instructions возвращает копию списка инструкций в порядке добавления.
func (b *Builder) Instructions() []solana.Instruction {
	out := make([]solana.Instruction, len(b.instructions))
	copy(out, b.instructions)
	return out
}

// Build создает неподписанную транзакцию
func (b *Builder) Build(blockhash solana.Hash) (*solana.Transaction, error) {
	if len(b.instructions) == 0 {
		return nil, ErrNoInstructions
	}
	if b.feePayer.IsZero() {
		return nil, ErrNoFeePayer
	}
	if blockhash == (solana.Hash{}) {
		return nil, ErrEmptyBlockhash
	}

	tx, err := solana.NewTransaction(
		b.Instructions(),
		blockhash,
		solana.TransactionPayer(b.feePayer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}

// RequiredSigners returns the accounts that must sign tx, in signature slot order.
func RequiredSigners(tx *solana.Transaction) []solana.PublicKey {
	n := int(tx.Message.Header.NumRequiredSignatures)
	if n > len(tx.Message.AccountKeys) {
		n = len(tx.Message.AccountKeys)
	}
	return tx.Message.AccountKeys[:n]
}

// PartialSign fills the signature slots of the given keys and leaves the rest
// untouched, so another party can complete the transaction later.
func PartialSign(tx *solana.Transaction, keys ...solana.PrivateKey) error {
	payload, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	signers := RequiredSigners(tx)
	if len(tx.Signatures) != len(signers) {
		sigs := make([]solana.Signature, len(signers))
		copy(sigs, tx.Signatures)
		tx.Signatures = sigs
	}

	for _, key := range keys {
		pub := key.PublicKey()
		idx := -1
		for i, signer := range signers {
			if signer.Equals(pub) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrSignerNotNeeded, pub)
		}

		sig, err := key.Sign(payload)
		if err != nil {
			return fmt.Errorf("failed to sign with %s: %w", pub, err)
		}
		tx.Signatures[idx] = sig
	}
	return nil
}

// MissingSigners lists required signers whose slot is still empty.
func MissingSigners(tx *solana.Transaction) []solana.PublicKey {
	var missing []solana.PublicKey
	for i, signer := range RequiredSigners(tx) {
		if i >= len(tx.Signatures) || tx.Signatures[i] == (solana.Signature{}) {
			missing = append(missing, signer)
		}
	}
	return missing
}
