package launchpad

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/token-launchpad/internal/blockchain/solana/programs/metadata"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var maxUint64 = decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)

type metadataFields struct {
	Name     string `validate:"required,max=32"`
	Symbol   string `validate:"required,max=10"`
	ImageURL string `validate:"omitempty,url,max=200"`
}

// ValidateMetadata checks the fields that go into the metadata account.
func ValidateMetadata(req MintRequest) error {
	fields := metadataFields{
		Name:     strings.TrimSpace(req.Name),
		Symbol:   strings.TrimSpace(req.Symbol),
		ImageURL: strings.TrimSpace(req.ImageURL),
	}
	if err := validate.Struct(fields); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed %q", ErrInvalidRequest, verrs[0].Field(), verrs[0].Tag())
		}
		return classify(ErrInvalidRequest, err)
	}

	// validator counts runes, the metadata program counts bytes
	if len(fields.Name) > metadata.MaxNameLength || len(fields.Symbol) > metadata.MaxSymbolLength {
		return fmt.Errorf("%w: name or symbol too long", ErrInvalidRequest)
	}
	return nil
}

// ParseInitialSupply converts a human amount like "1,000.5" to base units.
// An empty string means no supply.
func ParseInitialSupply(raw string, decimals uint8) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	raw = strings.NewReplacer(",", "", "_", "").Replace(raw)

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("initial supply %q is not a number", raw)
	}
	if amount.IsNegative() {
		return 0, fmt.Errorf("initial supply must not be negative")
	}

	units := amount.Shift(int32(decimals))
	if !units.IsInteger() {
		return 0, fmt.Errorf("initial supply has more than %d decimal places", decimals)
	}
	if units.GreaterThan(maxUint64) {
		return 0, fmt.Errorf("initial supply is too large")
	}
	return units.BigInt().Uint64(), nil
}
