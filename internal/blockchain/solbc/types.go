// internal/blockchain/solbc/types.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

const (
	DefaultConfirmTimeout  = 60 * time.Second
	DefaultPollInterval    = 500 * time.Millisecond
	DefaultMaxPollInterval = 4 * time.Second
)

var (
	// ErrStaleBlockhash - блокхэш истёк до того, как транзакция попала в сеть.
	ErrStaleBlockhash = errors.New("blockhash not found or expired")
	// errNotConfirmed возвращается операцией опроса, пока статус ниже нужного уровня.
	errNotConfirmed = errors.New("transaction not confirmed yet")
)

// Config задаёт поведение Ledger.
type Config struct {
	// Commitment для rent, blockhash и preflight.
	Commitment      rpc.CommitmentType
	ConfirmTimeout  time.Duration
	PollInterval    time.Duration
	MaxPollInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.Commitment == "" {
		c.Commitment = rpc.CommitmentConfirmed
	}
	if c.ConfirmTimeout <= 0 {
		c.ConfirmTimeout = DefaultConfirmTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.MaxPollInterval < c.PollInterval {
		c.MaxPollInterval = DefaultMaxPollInterval
		if c.MaxPollInterval < c.PollInterval {
			c.MaxPollInterval = c.PollInterval
		}
	}
	return c
}

// rpcAPI - подмножество *rpc.Client, которое использует Ledger.
type rpcAPI interface {
	GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64, commitment rpc.CommitmentType) (uint64, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	GetVersion(ctx context.Context) (*rpc.GetVersionResult, error)
}

// SubmissionError describes a transaction the RPC node refused to accept.
type SubmissionError struct {
	Code    int
	Message string
	// Logs are the program logs from the preflight simulation, if any.
	Logs []string
	// InstructionError is the failing instruction as reported by the node.
	InstructionError interface{}
	Stale            bool
	Err              error
}

func (e *SubmissionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "send transaction: %s", e.Message)
	if e.Code != 0 {
		fmt.Fprintf(&b, " (code %d)", e.Code)
	}
	if line := e.ProgramFailure(); line != "" {
		fmt.Fprintf(&b, ": %s", line)
	}
	return b.String()
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrStaleBlockhash.
func (e *SubmissionError) Is(target error) bool {
	return target == ErrStaleBlockhash && e.Stale
}

// ProgramFailure returns the first log line reporting a program failure.
func (e *SubmissionError) ProgramFailure() string {
	for _, line := range e.Logs {
		if strings.Contains(line, " failed: ") || strings.HasPrefix(line, "Program log: Error") {
			return line
		}
	}
	return ""
}
