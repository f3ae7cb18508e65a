package launchpad

import (
	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-launchpad/internal/blockchain/solana/programs/computebudget"
)

// KeyGenerator produces the mint key pair. It must draw from a cryptographically
// secure source.
type KeyGenerator func() (solana.PrivateKey, error)

// Observer receives launch progress. It is called synchronously and must not block.
type Observer func(stage Stage)

type options struct {
	keygen        KeyGenerator
	observer      Observer
	budget        computebudget.Config
	initialSupply bool
	metadata      bool
}

func defaultOptions() options {
	return options{
		keygen:   solana.NewRandomPrivateKey,
		observer: func(Stage) {},
	}
}

// Option configures an Orchestrator.
type Option func(*options)

// WithKeyGenerator replaces the mint key source.
func WithKeyGenerator(gen KeyGenerator) Option {
	return func(o *options) {
		if gen != nil {
			o.keygen = gen
		}
	}
}

// WithObserver registers a progress callback.
func WithObserver(fn Observer) Option {
	return func(o *options) {
		if fn != nil {
			o.observer = fn
		}
	}
}

// WithComputeBudget prepends compute budget instructions when a unit price is set.
func WithComputeBudget(cfg computebudget.Config) Option {
	return func(o *options) {
		o.budget = cfg
	}
}

// WithInitialSupply mints MintRequest.InitialSupply to the wallet's token account
// in the same transaction.
func WithInitialSupply(enabled bool) Option {
	return func(o *options) {
		o.initialSupply = enabled
	}
}

// WithMetadata writes name, symbol and image URL to a Metaplex metadata account in
// the same transaction.
func WithMetadata(enabled bool) Option {
	return func(o *options) {
		o.metadata = enabled
	}
}
