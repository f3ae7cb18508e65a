package launchpad

import "errors"

var (
	ErrWalletNotConnected   = errors.New("wallet not connected, please connect your wallet first")
	ErrInvalidRequest       = errors.New("invalid launch request")
	ErrRentLookupFailed     = errors.New("rent exemption lookup failed")
	ErrKeyGeneration        = errors.New("mint key generation failed")
	ErrTransactionBuild     = errors.New("transaction build failed")
	ErrBlockReferenceFailed = errors.New("recent blockhash lookup failed")
	ErrUserRejectedSigning  = errors.New("user rejected the signing request")
	ErrWalletFailure        = errors.New("wallet could not sign the transaction")
	ErrSubmissionRejected   = errors.New("transaction rejected by the network")
	ErrConfirmationTimeout  = errors.New("transaction confirmation timed out")
	ErrConfirmationFailed   = errors.New("transaction failed to confirm")
)

// IsRecoverable reports whether the user can simply try again: a declined prompt or a
// transient network failure, as opposed to a bad request.
func IsRecoverable(err error) bool {
	switch {
	case errors.Is(err, ErrUserRejectedSigning),
		errors.Is(err, ErrWalletNotConnected),
		errors.Is(err, ErrRentLookupFailed),
		errors.Is(err, ErrBlockReferenceFailed),
		errors.Is(err, ErrSubmissionRejected),
		errors.Is(err, ErrConfirmationTimeout):
		return true
	}
	return false
}
