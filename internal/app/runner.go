// internal/app/runner.go
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-launchpad/internal/blockchain/solbc"
	"github.com/rovshanmuradov/token-launchpad/internal/config"
	"github.com/rovshanmuradov/token-launchpad/internal/journal"
	"github.com/rovshanmuradov/token-launchpad/internal/launchpad"
	"github.com/rovshanmuradov/token-launchpad/internal/wallet"
)

// Node is the ledger plus the start-up health check.
type Node interface {
	launchpad.LedgerClient
	Ping(ctx context.Context) (string, error)
}

// Options are the front-end specific pieces.
type Options struct {
	Approver wallet.Approver
	Observer launchpad.Observer
}

// NodeStatus is the result of the start-up RPC check.
type NodeStatus struct {
	Version string
	Latency time.Duration
}

type Runner struct {
	logger   *zap.Logger
	config   *config.Config
	node     Node
	wallet   *wallet.Wallet
	launcher launchpad.Launcher
	journal  *journal.Journal
}

// NewRunner собирает кошелёк, RPC-клиент, оркестратор и журнал из конфигурации.
func NewRunner(cfg *config.Config, logger *zap.Logger, opts Options) (*Runner, error) {
	node := solbc.NewLedger(cfg.RPCURL, solbc.Config{
		Commitment:     cfg.CommitmentType(),
		ConfirmTimeout: cfg.ConfirmTimeout,
		PollInterval:   cfg.PollInterval,
	}, logger)
	return newRunner(cfg, logger, opts, node)
}

func newRunner(cfg *config.Config, logger *zap.Logger, opts Options, node Node) (*Runner, error) {
	w, err := wallet.Open(cfg.WalletSource())
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	w = w.WithLogger(logger)

	approver := opts.Approver
	if approver == nil {
		approver = wallet.AutoApprove
	}
	if err := w.Connect(approver); err != nil {
		return nil, fmt.Errorf("failed to connect wallet: %w", err)
	}

	launchOpts := []launchpad.Option{
		launchpad.WithComputeBudget(cfg.ComputeBudget()),
		launchpad.WithInitialSupply(cfg.MintInitialSupply),
		launchpad.WithMetadata(cfg.CreateMetadata),
	}
	if opts.Observer != nil {
		launchOpts = append(launchOpts, launchpad.WithObserver(opts.Observer))
	}

	r := &Runner{
		logger:   logger,
		config:   cfg,
		node:     node,
		wallet:   w,
		launcher: launchpad.NewDeduplicator(launchpad.New(logger, launchOpts...), logger),
	}

	if cfg.JournalFile != "" {
		j, err := journal.Open(cfg.JournalFile, logger)
		if err != nil {
			w.Disconnect()
			return nil, fmt.Errorf("failed to open launch journal: %w", err)
		}
		r.journal = j
	}
	return r, nil
}

// CheckNode проверяет, что RPC-нода отвечает.
func (r *Runner) CheckNode(ctx context.Context) (NodeStatus, error) {
	start := time.Now()
	version, err := r.node.Ping(ctx)
	if err != nil {
		return NodeStatus{}, fmt.Errorf("rpc node %s unreachable: %w", r.config.RPCURL, err)
	}
	status := NodeStatus{Version: version, Latency: time.Since(start)}
	r.logger.Info("RPC node reachable",
		zap.String("version", version),
		zap.Duration("latency", status.Latency))
	return status, nil
}

// Launch runs one launch and records it in the journal.
func (r *Runner) Launch(ctx context.Context, req launchpad.MintRequest) (*launchpad.ConfirmationResult, error) {
	res, err := r.launcher.CreateToken(ctx, req, r.wallet, r.node)
	r.Record(journal.NewRecord(req, r.wallet.PublicAddress().String(), res, err))
	return res, err
}

// Record appends to the journal when one is configured.
func (r *Runner) Record(rec journal.Record) {
	if r.journal == nil {
		return
	}
	if err := r.journal.Append(rec); err != nil {
		r.logger.Warn("Failed to record launch", zap.Error(err))
	}
}

func (r *Runner) Wallet() *wallet.Wallet { return r.wallet }
func (r *Runner) Ledger() launchpad.LedgerClient { return r.node }
func (r *Runner) Launcher() launchpad.Launcher { return r.launcher }
func (r *Runner) Journal() *journal.Journal { return r.journal }
func (r *Runner) Config() *config.Config { return r.config }

func (r *Runner) Shutdown() {
	r.logger.Info("👋 Launchpad shutting down")

	r.wallet.Disconnect()
	if r.journal != nil {
		if err := r.journal.Close(); err != nil {
			r.logger.Warn("Failed to close launch journal", zap.Error(err))
		}
	}

	if err := r.logger.Sync(); err != nil {
		if !os.IsNotExist(err) &&
			err.Error() != "sync /dev/stdout: invalid argument" &&
			err.Error() != "sync /dev/stderr: inappropriate ioctl for device" {
			fmt.Fprintf(os.Stderr, "failed to sync logger during shutdown: %v\n", err)
		}
	}
}
