// internal/blockchain/solana/programs/metadata/metadata.go
package metadata

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/gagliardetto/solana-go"
)

// Metaplex limits for the on-chain Data record.
const (
	MaxNameLength   = 32
	MaxSymbolLength = 10
	MaxURILength    = 200
)

// ProgramID is the Metaplex token metadata program.
var ProgramID = solana.PublicKeyFromBytes(common.MetaplexTokenMetaProgramID.Bytes())

// TokenMetadata is the fungible token description written next to the mint.
type TokenMetadata struct {
	Name   string
	Symbol string
	URI    string
}

// CreateMetadataParams names the accounts of CreateMetadataAccountV3.
type CreateMetadataParams struct {
	Mint            solana.PublicKey
	MintAuthority   solana.PublicKey
	Payer           solana.PublicKey
	UpdateAuthority solana.PublicKey
	Data            TokenMetadata
}

// FindMetadataAddress derives the metadata PDA of a mint.
func FindMetadataAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	pda, err := token_metadata.GetTokenMetaPubkey(toCommon(mint))
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive metadata address: %w", err)
	}
	return fromCommon(pda), nil
}

// NewCreateMetadataInstruction builds a mutable CreateMetadataAccountV3 with no
// creators, collection or royalties.
func NewCreateMetadataInstruction(params CreateMetadataParams) (solana.Instruction, error) {
	if err := params.Data.validate(); err != nil {
		return nil, err
	}

	metadataAddress, err := token_metadata.GetTokenMetaPubkey(toCommon(params.Mint))
	if err != nil {
		return nil, fmt.Errorf("failed to derive metadata address: %w", err)
	}

	ix := token_metadata.CreateMetadataAccountV3(token_metadata.CreateMetadataAccountV3Param{
		Metadata:                metadataAddress,
		Mint:                    toCommon(params.Mint),
		MintAuthority:           toCommon(params.MintAuthority),
		Payer:                   toCommon(params.Payer),
		UpdateAuthority:         toCommon(params.UpdateAuthority),
		UpdateAuthorityIsSigner: true,
		IsMutable:               true,
		Data: token_metadata.DataV2{
			Name:                 params.Data.Name,
			Symbol:               params.Data.Symbol,
			Uri:                  params.Data.URI,
			SellerFeeBasisPoints: 0,
		},
		CollectionDetails: nil,
	})

	return convert(ix), nil
}

func (m TokenMetadata) validate() error {
	if len(m.Name) > MaxNameLength {
		return fmt.Errorf("name exceeds %d bytes", MaxNameLength)
	}
	if len(m.Symbol) > MaxSymbolLength {
		return fmt.Errorf("symbol exceeds %d bytes", MaxSymbolLength)
	}
	if len(m.URI) > MaxURILength {
		return fmt.Errorf("uri exceeds %d bytes", MaxURILength)
	}
	return nil
}

// convert переводит инструкцию blocto SDK в solana-go.
func convert(ix types.Instruction) solana.Instruction {
	metas := make([]*solana.AccountMeta, 0, len(ix.Accounts))
	for _, acc := range ix.Accounts {
		metas = append(metas, &solana.AccountMeta{
			PublicKey:  fromCommon(acc.PubKey),
			IsSigner:   acc.IsSigner,
			IsWritable: acc.IsWritable,
		})
	}
	return solana.NewInstruction(fromCommon(ix.ProgramID), metas, ix.Data)
}

func toCommon(pk solana.PublicKey) common.PublicKey {
	return common.PublicKeyFromBytes(pk.Bytes())
}

func fromCommon(pk common.PublicKey) solana.PublicKey {
	return solana.PublicKeyFromBytes(pk.Bytes())
}
