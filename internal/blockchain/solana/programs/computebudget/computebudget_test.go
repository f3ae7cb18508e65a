package computebudget

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInstructions_DisabledWithoutPrice(t *testing.T) {
	ixs, err := BuildInstructions(Config{Units: 300_000})
	require.NoError(t, err)
	assert.Empty(t, ixs)
}

func TestBuildInstructions_DefaultUnits(t *testing.T) {
	ixs, err := BuildInstructions(Config{UnitPriceMicroLamp: 5_000})
	require.NoError(t, err)
	require.Len(t, ixs, 2)

	limit, err := ixs[0].Data()
	require.NoError(t, err)
	assert.Equal(t, SetComputeUnitLimit, limit[0])
	assert.Equal(t, DefaultUnits, binary.LittleEndian.Uint32(limit[1:]))

	price, err := ixs[1].Data()
	require.NoError(t, err)
	assert.Equal(t, SetComputeUnitPrice, price[0])
	assert.Equal(t, uint64(5_000), binary.LittleEndian.Uint64(price[1:]))

	for _, ix := range ixs {
		assert.Equal(t, ProgramID, ix.ProgramID())
		assert.Empty(t, ix.Accounts())
	}
}

func TestBuildInstructions_RejectsUnitsOverLimit(t *testing.T) {
	_, err := BuildInstructions(Config{Units: MaxUnits + 1, UnitPriceMicroLamp: 1})
	assert.Error(t, err)

	ixs, err := BuildInstructions(Config{Units: MaxUnits, UnitPriceMicroLamp: 1})
	require.NoError(t, err)
	assert.Len(t, ixs, 2)
}
