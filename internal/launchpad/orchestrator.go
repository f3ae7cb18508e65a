// internal/launchpad/orchestrator.go
package launchpad

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-launchpad/internal/blockchain/solana/programs/computebudget"
	"github.com/rovshanmuradov/token-launchpad/internal/blockchain/solana/programs/metadata"
	"github.com/rovshanmuradov/token-launchpad/internal/blockchain/solana/programs/token"
	"github.com/rovshanmuradov/token-launchpad/internal/blockchain/solana/transaction"
)

// Orchestrator runs the token launch flow: rent lookup, mint key generation,
// transaction assembly, partial signing, wallet hand-off and confirmation.
// It keeps no state between calls and never retries.
type Orchestrator struct {
	logger *zap.Logger
	opts   options
}

// New creates an orchestrator. Without options the launch transaction is exactly
// CreateAccount followed by InitializeMint2.
func New(logger *zap.Logger, opts ...Option) *Orchestrator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Orchestrator{
		logger: logger.Named("launchpad"),
		opts:   o,
	}
}

// launchPlan is the part of a request that ends up on chain besides the mint itself.
type launchPlan struct {
	supply   uint64
	metadata *metadata.TokenMetadata
}

// CreateToken creates a new mint owned by the wallet and waits for it to confirm.
//
// On a confirmation failure or timeout the partially filled result is returned
// together with the error, so the caller can still show the signature.
func (o *Orchestrator) CreateToken(
	ctx context.Context,
	req MintRequest,
	wallet WalletSession,
	ledger LedgerClient,
) (*ConfirmationResult, error) {
	if wallet == nil || !wallet.Connected() || wallet.PublicAddress().IsZero() {
		return nil, ErrWalletNotConnected
	}
	owner := wallet.PublicAddress()

	log := o.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("wallet", owner.String()),
	)
	start := time.Now()

	pending, err := o.prepare(ctx, req, owner, ledger, log)
	if err != nil {
		log.Error("Launch preparation failed", zap.Error(err))
		return nil, err
	}
	log = log.With(zap.String("mint", pending.Mint.String()))

	o.opts.observer(StageWallet)
	log.Info("Sending transaction to wallet for approval")
	sig, err := wallet.SignAndSend(ctx, pending.Tx, ledger)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserRejectedSigning):
			log.Warn("Signing rejected by user")
			return nil, err
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			log.Warn("Wallet hand-off aborted", zap.Error(err))
			return nil, fmt.Errorf("wallet hand-off aborted: %w", err)
		case errors.Is(err, ErrWalletFailure):
			log.Error("Wallet failed before submission", zap.Error(err))
			return nil, err
		default:
			log.Error("Transaction submission failed", zap.Error(err))
			return nil, classify(ErrSubmissionRejected, err)
		}
	}
	log.Info("Transaction sent", zap.String("signature", sig.String()))

	o.opts.observer(StageConfirm)
	result := &ConfirmationResult{Mint: pending.Mint, Signature: sig}

	status, err := ledger.ConfirmTransaction(ctx, sig, rpc.CommitmentConfirmed)
	result.Status = status
	if err != nil {
		if errors.Is(err, context.Canceled) {
			result.Status = StatusUnknown
			log.Warn("Confirmation wait cancelled, transaction may still land",
				zap.String("signature", sig.String()))
			return result, fmt.Errorf("confirmation wait cancelled: %w", err)
		}
		if errors.Is(err, ErrConfirmationTimeout) || errors.Is(err, context.DeadlineExceeded) {
			result.Status = StatusTimedOut
			log.Warn("Transaction confirmation timed out", zap.String("signature", sig.String()))
			return result, classify(ErrConfirmationTimeout, err)
		}
		result.Status = StatusFailed
		log.Error("Transaction confirmation failed", zap.String("signature", sig.String()), zap.Error(err))
		return result, classify(ErrConfirmationFailed, err)
	}

	switch status {
	case StatusConfirmed:
	case StatusTimedOut:
		return result, ErrConfirmationTimeout
	default:
		result.Status = StatusFailed
		return result, ErrConfirmationFailed
	}

	o.opts.observer(StageDone)
	log.Info("Transaction confirmed",
		zap.String("signature", sig.String()),
		zap.Duration("elapsed", time.Since(start)))
	log.Info("Token launched", zap.String("mint", pending.Mint.String()))

	return result, nil
}

// Prepare runs the steps up to the wallet hand-off and returns a transaction that
// carries the mint signature. The mint private key is wiped before returning.
func (o *Orchestrator) Prepare(
	ctx context.Context,
	req MintRequest,
	owner solana.PublicKey,
	ledger LedgerClient,
) (*PendingTransaction, error) {
	return o.prepare(ctx, req, owner, ledger, o.logger)
}

func (o *Orchestrator) prepare(
	ctx context.Context,
	req MintRequest,
	owner solana.PublicKey,
	ledger LedgerClient,
	log *zap.Logger,
) (*PendingTransaction, error) {
	plan, err := o.plan(req)
	if err != nil {
		return nil, err
	}

	o.opts.observer(StageRent)
	lamports, err := ledger.MinimumRentExemptBalance(ctx, token.MintSize)
	if err != nil {
		return nil, classify(ErrRentLookupFailed, err)
	}
	log.Debug("Rent exemption fetched", zap.Uint64("lamports", lamports))

	o.opts.observer(StageIdentity)
	identity, err := o.newIdentity()
	if err != nil {
		return nil, err
	}
	defer identity.discard()
	log.Debug("Mint identity generated", zap.String("mint", identity.PublicKey().String()))

	o.opts.observer(StageAssemble)
	builder, err := o.assemble(owner, identity.PublicKey(), lamports, plan)
	if err != nil {
		return nil, classify(ErrTransactionBuild, err)
	}

	o.opts.observer(StageBlockhash)
	blockhash, err := ledger.LatestBlockReference(ctx)
	if err != nil {
		return nil, classify(ErrBlockReferenceFailed, err)
	}

	tx, err := builder.Build(blockhash)
	if err != nil {
		return nil, classify(ErrTransactionBuild, err)
	}

	o.opts.observer(StageSign)
	if err := transaction.PartialSign(tx, identity.key); err != nil {
		return nil, classify(ErrTransactionBuild, err)
	}

	return &PendingTransaction{
		Mint:            identity.PublicKey(),
		FeePayer:        owner,
		RecentBlockhash: blockhash,
		RentLamports:    lamports,
		Instructions:    builder.Instructions(),
		Tx:              tx,
	}, nil
}

func (o *Orchestrator) plan(req MintRequest) (launchPlan, error) {
	var plan launchPlan

	if o.opts.initialSupply {
		supply, err := ParseInitialSupply(req.InitialSupply, MintDecimals)
		if err != nil {
			return plan, classify(ErrInvalidRequest, err)
		}
		plan.supply = supply
	}

	if o.opts.metadata {
		if err := ValidateMetadata(req); err != nil {
			return plan, err
		}
		plan.metadata = &metadata.TokenMetadata{
			Name:   strings.TrimSpace(req.Name),
			Symbol: strings.TrimSpace(req.Symbol),
			URI:    strings.TrimSpace(req.ImageURL),
		}
	}

	return plan, nil
}

func (o *Orchestrator) newIdentity() (*MintIdentity, error) {
	key, err := o.opts.keygen()
	if err != nil {
		return nil, classify(ErrKeyGeneration, err)
	}
	if len(key) != 64 {
		return nil, fmt.Errorf("%w: unexpected key length %d", ErrKeyGeneration, len(key))
	}
	return &MintIdentity{key: key, pub: key.PublicKey()}, nil
}

// assemble orders the instructions. CreateAccount must precede InitializeMint2:
// the account has to exist before it can be initialized as a mint.
func (o *Orchestrator) assemble(owner, mint solana.PublicKey, lamports uint64, plan launchPlan) (*transaction.Builder, error) {
	params := ParametersFor(owner)
	builder := transaction.NewBuilder(owner)

	budget, err := computebudget.BuildInstructions(o.opts.budget)
	if err != nil {
		return nil, err
	}
	builder.AddInstruction(budget...)

	createAccount := system.NewCreateAccountInstruction(
		lamports,
		token.MintSize,
		token.ProgramID,
		owner,
		mint,
	).Build()

	initMint, err := (&token.InitializeMint2Instruction{
		Mint:            mint,
		Decimals:        params.Decimals,
		MintAuthority:   params.MintAuthority,
		FreezeAuthority: &params.FreezeAuthority,
	}).Build()
	if err != nil {
		return nil, err
	}
	builder.AddInstruction(createAccount, initMint)

	if plan.metadata != nil {
		ix, err := metadata.NewCreateMetadataInstruction(metadata.CreateMetadataParams{
			Mint:            mint,
			MintAuthority:   params.MintAuthority,
			Payer:           owner,
			UpdateAuthority: owner,
			Data:            *plan.metadata,
		})
		if err != nil {
			return nil, err
		}
		builder.AddInstruction(ix)
	}

	if plan.supply > 0 {
		createATA, err := token.NewCreateAssociatedTokenAccountIdempotentInstruction(owner, owner, mint)
		if err != nil {
			return nil, err
		}
		ata, err := token.FindAssociatedTokenAddress(owner, mint)
		if err != nil {
			return nil, err
		}
		mintTo, err := (&token.MintToInstruction{
			Mint:        mint,
			Destination: ata,
			Authority:   params.MintAuthority,
			Amount:      plan.supply,
		}).Build()
		if err != nil {
			return nil, err
		}
		builder.AddInstruction(createATA, mintTo)
	}

	return builder, nil
}

// classify tags err with a launch error class unless it already carries it.
func classify(class, err error) error {
	if errors.Is(err, class) {
		return err
	}
	return fmt.Errorf("%w: %w", class, err)
}
