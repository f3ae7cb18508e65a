package launchpad

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Deduplicator guards against double submission: concurrent launches of the same
// request from the same wallet share one execution and one result. Calls made after
// the first one finished run again.
type Deduplicator struct {
	next   Launcher
	group  singleflight.Group
	logger *zap.Logger
}

// NewDeduplicator wraps a launcher.
func NewDeduplicator(next Launcher, logger *zap.Logger) *Deduplicator {
	return &Deduplicator{
		next:   next,
		logger: logger.Named("dedup"),
	}
}

// CreateToken implements Launcher.
func (d *Deduplicator) CreateToken(
	ctx context.Context,
	req MintRequest,
	wallet WalletSession,
	ledger LedgerClient,
) (*ConfirmationResult, error) {
	if wallet == nil || !wallet.Connected() {
		return nil, ErrWalletNotConnected
	}

	key := Fingerprint(req, wallet.PublicAddress().String())
	v, err, shared := d.group.Do(key, func() (interface{}, error) {
		return d.next.CreateToken(ctx, req, wallet, ledger)
	})
	if shared {
		d.logger.Warn("Duplicate launch request joined in-flight submission", zap.String("fingerprint", key[:16]))
	}

	res, _ := v.(*ConfirmationResult)
	if res == nil {
		return nil, err
	}
	out := *res
	return &out, err
}

// Fingerprint identifies a launch request from a given wallet.
func Fingerprint(req MintRequest, wallet string) string {
	h := sha256.New()
	for _, part := range []string{wallet, req.Name, req.Symbol, req.ImageURL, req.InitialSupply} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

var _ Launcher = (*Deduplicator)(nil)
var _ Launcher = (*Orchestrator)(nil)
