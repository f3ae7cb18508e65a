package launchpad

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInitialSupply(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    uint64
		wantErr bool
	}{
		{"empty", "", 0, false},
		{"blank", "   ", 0, false},
		{"whole", "1000", 1_000_000_000, false},
		{"fraction", "0.5", 500_000, false},
		{"smallest unit", "0.000001", 1, false},
		{"thousands separators", "1,000,000", 1_000_000_000_000, false},
		{"underscores", "1_000", 1_000_000_000, false},
		{"zero", "0", 0, false},
		{"max", "18446744073709.551615", 18446744073709551615, false},
		{"overflow", "18446744073709.551616", 0, true},
		{"too many decimals", "1.0000001", 0, true},
		{"negative", "-5", 0, true},
		{"garbage", "ten", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInitialSupply(tt.raw, MintDecimals)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateMetadata(t *testing.T) {
	tests := []struct {
		name    string
		req     MintRequest
		wantErr bool
	}{
		{"valid", rocket, false},
		{"no image", MintRequest{Name: "Rocket", Symbol: "RKT"}, false},
		{"trimmed", MintRequest{Name: "  Rocket ", Symbol: " RKT "}, false},
		{"missing name", MintRequest{Symbol: "RKT"}, true},
		{"whitespace name", MintRequest{Name: "   ", Symbol: "RKT"}, true},
		{"missing symbol", MintRequest{Name: "Rocket"}, true},
		{"long name", MintRequest{Name: strings.Repeat("n", 33), Symbol: "RKT"}, true},
		{"long symbol", MintRequest{Name: "Rocket", Symbol: "ROCKETSHIPS"}, true},
		{"multibyte name over byte limit", MintRequest{Name: strings.Repeat("я", 20), Symbol: "RKT"}, true},
		{"bad url", MintRequest{Name: "Rocket", Symbol: "RKT", ImageURL: "rocket.png"}, true},
		{"long url", MintRequest{Name: "Rocket", Symbol: "RKT", ImageURL: "https://example.com/" + strings.Repeat("a", 200)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMetadata(tt.req)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRequest)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(ErrUserRejectedSigning))
	assert.True(t, IsRecoverable(classify(ErrSubmissionRejected, assert.AnError)))
	assert.True(t, IsRecoverable(ErrConfirmationTimeout))
	assert.False(t, IsRecoverable(ErrInvalidRequest))
	assert.False(t, IsRecoverable(ErrConfirmationFailed))
	assert.False(t, IsRecoverable(nil))
}
