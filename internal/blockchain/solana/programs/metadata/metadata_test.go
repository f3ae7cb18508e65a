package metadata

import (
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreateMetadataInstruction(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()

	ix, err := NewCreateMetadataInstruction(CreateMetadataParams{
		Mint:            mint,
		MintAuthority:   owner,
		Payer:           owner,
		UpdateAuthority: owner,
		Data:            TokenMetadata{Name: "Rocket", Symbol: "RKT", URI: "https://example.com/rkt.png"},
	})
	require.NoError(t, err)

	assert.Equal(t, ProgramID, ix.ProgramID())
	assert.Equal(t, "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s", ProgramID.String())

	pda, err := FindMetadataAddress(mint)
	require.NoError(t, err)

	var keys []solana.PublicKey
	for _, acc := range ix.Accounts() {
		keys = append(keys, acc.PublicKey)
	}
	assert.Equal(t, pda, keys[0])
	assert.Contains(t, keys, mint)
	assert.Contains(t, keys, owner)

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Contains(t, string(data), "Rocket")
	assert.Contains(t, string(data), "RKT")
}

func TestNewCreateMetadataInstruction_Limits(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	base := CreateMetadataParams{
		Mint:            solana.NewWallet().PublicKey(),
		MintAuthority:   owner,
		Payer:           owner,
		UpdateAuthority: owner,
	}

	tests := []struct {
		name string
		data TokenMetadata
	}{
		{"long name", TokenMetadata{Name: strings.Repeat("n", MaxNameLength+1)}},
		{"long symbol", TokenMetadata{Symbol: strings.Repeat("s", MaxSymbolLength+1)}},
		{"long uri", TokenMetadata{URI: strings.Repeat("u", MaxURILength+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := base
			params.Data = tt.data
			_, err := NewCreateMetadataInstruction(params)
			assert.Error(t, err)
		})
	}
}
