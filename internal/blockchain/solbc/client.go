// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-launchpad/internal/launchpad"
)

// Ledger – тонкий адаптер к Solana RPC, реализующий launchpad.LedgerClient.
// Повторов запросов нет: любая ошибка возвращается вызывающему.
type Ledger struct {
	rpc      rpcAPI
	cfg      Config
	analyzer *ErrorAnalyzer
	logger   *zap.Logger
}

// NewLedger создаёт клиент, принимая RPC URL и логгер через dependency injection.
func NewLedger(rpcURL string, cfg Config, logger *zap.Logger) *Ledger {
	return newLedger(rpc.New(rpcURL), cfg, logger)
}

func newLedger(api rpcAPI, cfg Config, logger *zap.Logger) *Ledger {
	return &Ledger{
		rpc:      api,
		cfg:      cfg.withDefaults(),
		analyzer: NewErrorAnalyzer(logger),
		logger:   logger.Named("solbc-client"),
	}
}

// MinimumRentExemptBalance возвращает минимальный баланс для аккаунта размером size.
func (l *Ledger) MinimumRentExemptBalance(ctx context.Context, size uint64) (uint64, error) {
	lamports, err := l.rpc.GetMinimumBalanceForRentExemption(ctx, size, l.cfg.Commitment)
	if err != nil {
		l.logger.Error("GetMinimumBalanceForRentExemption error", zap.Uint64("size", size), zap.Error(err))
		return 0, err
	}
	return lamports, nil
}

// LatestBlockReference получает последний blockhash.
func (l *Ledger) LatestBlockReference(ctx context.Context) (solana.Hash, error) {
	result, err := l.rpc.GetLatestBlockhash(ctx, l.cfg.Commitment)
	if err != nil {
		l.logger.Error("GetLatestBlockhash error", zap.Error(err))
		return solana.Hash{}, err
	}
	if result == nil || result.Value == nil {
		return solana.Hash{}, errors.New("empty getLatestBlockhash response")
	}
	l.logger.Debug("Latest blockhash",
		zap.String("blockhash", result.Value.Blockhash.String()),
		zap.Uint64("last_valid_block_height", result.Value.LastValidBlockHeight))
	return result.Value.Blockhash, nil
}

// SendTransaction отправляет транзакцию с preflight-проверкой.
// Отказ узла возвращается как *SubmissionError.
func (l *Ledger) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := l.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: l.cfg.Commitment,
	})
	if err != nil {
		if ctx.Err() != nil {
			return solana.Signature{}, err
		}
		subErr := l.analyzer.Analyze(err)
		l.logger.Error("SendTransaction error",
			zap.Int("code", subErr.Code),
			zap.Bool("stale_blockhash", subErr.Stale),
			zap.Error(err))
		if len(subErr.Logs) > 0 {
			l.logger.Debug("Preflight analysis", zap.String("analysis", l.analyzer.FormatErrorAnalysis(subErr)))
		}
		return solana.Signature{}, subErr
	}
	return sig, nil
}

// ConfirmTransaction опрашивает getSignatureStatuses с экспоненциальной задержкой,
// пока транзакция не достигнет commitment, не упадёт или не истечёт ConfirmTimeout.
func (l *Ledger) ConfirmTransaction(
	ctx context.Context,
	sig solana.Signature,
	commitment rpc.CommitmentType,
) (launchpad.ConfirmationStatus, error) {
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	start := time.Now()

	waitCtx, cancel := context.WithTimeout(ctx, l.cfg.ConfirmTimeout)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = l.cfg.PollInterval
	policy.MaxInterval = l.cfg.MaxPollInterval

	notify := func(err error, next time.Duration) {
		if !errors.Is(err, errNotConfirmed) {
			l.logger.Warn("Error getting signature statuses", zap.Error(err), zap.Duration("backoff", next))
			return
		}
		l.logger.Debug("Waiting for confirmation",
			zap.String("signature", sig.String()),
			zap.Duration("backoff", next))
	}

	operation := func() (launchpad.ConfirmationStatus, error) {
		statuses, err := l.rpc.GetSignatureStatuses(waitCtx, false, sig)
		if err != nil {
			return "", err
		}
		if statuses == nil || len(statuses.Value) == 0 || statuses.Value[0] == nil {
			return "", errNotConfirmed
		}

		status := statuses.Value[0]
		if status.Err != nil {
			return "", backoff.Permanent(
				fmt.Errorf("%w: transaction %s: %v", launchpad.ErrConfirmationFailed, sig, status.Err))
		}
		if reached(status.ConfirmationStatus, commitment) {
			return launchpad.StatusConfirmed, nil
		}
		return "", errNotConfirmed
	}

	status, err := backoff.Retry(waitCtx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxElapsedTime(l.cfg.ConfirmTimeout),
		backoff.WithNotify(notify))

	switch {
	case err == nil:
		l.logger.Debug("Transaction confirmed",
			zap.String("signature", sig.String()),
			zap.Duration("elapsed", time.Since(start)))
		return status, nil
	case errors.Is(err, launchpad.ErrConfirmationFailed):
		return launchpad.StatusFailed, err
	case ctx.Err() != nil:
		return "", ctx.Err()
	case errors.Is(err, errNotConfirmed), errors.Is(err, context.DeadlineExceeded):
		return launchpad.StatusTimedOut, launchpad.ErrConfirmationTimeout
	default:
		// RPC продолжал отвечать ошибкой до конца окна ожидания
		return launchpad.StatusTimedOut, fmt.Errorf("%w: %w", launchpad.ErrConfirmationTimeout, err)
	}
}

// Ping проверяет доступность узла.
func (l *Ledger) Ping(ctx context.Context) (string, error) {
	version, err := l.rpc.GetVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("rpc node unreachable: %w", err)
	}
	return version.SolanaCore, nil
}

var commitmentRank = map[rpc.ConfirmationStatusType]int{
	rpc.ConfirmationStatusProcessed: 1,
	rpc.ConfirmationStatusConfirmed: 2,
	rpc.ConfirmationStatusFinalized: 3,
}

func reached(got rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	return commitmentRank[got] > 0 && commitmentRank[got] >= commitmentRank[rpc.ConfirmationStatusType(want)]
}

// Гарантируем, что Ledger реализует интерфейс launchpad.LedgerClient.
var _ launchpad.LedgerClient = (*Ledger)(nil)
