// internal/blockchain/solana/programs/computebudget/computebudget.go
package computebudget

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	cbprogram "github.com/gagliardetto/solana-go/programs/compute-budget"
)

var ProgramID = solana.ComputeBudget

const (
	SetComputeUnitLimit = cbprogram.Instruction_SetComputeUnitLimit
	SetComputeUnitPrice = cbprogram.Instruction_SetComputeUnitPrice
)

// DefaultUnits покрывает CreateAccount + InitializeMint2 + metadata с запасом.
const DefaultUnits uint32 = 200_000

// MaxUnits - лимит вычислительных единиц на транзакцию.
const MaxUnits uint32 = cbprogram.MAX_COMPUTE_UNIT_LIMIT

// Config описывает приоритет транзакции запуска токена.
type Config struct {
	Units              uint32
	UnitPriceMicroLamp uint64
}

// Enabled сообщает, нужно ли вообще добавлять инструкции бюджета.
func (c Config) Enabled() bool {
	return c.UnitPriceMicroLamp > 0
}

type SetComputeUnitLimitInstruction struct {
	Units uint32
}

type SetComputeUnitPriceInstruction struct {
	MicroLamports uint64
}

// BuildInstructions возвращает инструкции лимита и цены compute units.
// При нулевой цене возвращает пустой список: транзакция остаётся без приоритета.
func BuildInstructions(config Config) ([]solana.Instruction, error) {
	if !config.Enabled() {
		return nil, nil
	}
	if config.Units == 0 {
		config.Units = DefaultUnits
	}

	limitInstruction, err := (&SetComputeUnitLimitInstruction{Units: config.Units}).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build compute unit limit instruction: %w", err)
	}

	priceInstruction, err := (&SetComputeUnitPriceInstruction{MicroLamports: config.UnitPriceMicroLamp}).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build compute unit price instruction: %w", err)
	}

	return []solana.Instruction{limitInstruction, priceInstruction}, nil
}

// Build создает инструкцию для установки лимита compute units
func (instr *SetComputeUnitLimitInstruction) Build() (solana.Instruction, error) {
	ix, err := cbprogram.NewSetComputeUnitLimitInstruction(instr.Units).ValidateAndBuild()
	if err != nil {
		return nil, err
	}
	return ix, nil
}

// Build создает инструкцию для установки цены compute units
func (instr *SetComputeUnitPriceInstruction) Build() (solana.Instruction, error) {
	ix, err := cbprogram.NewSetComputeUnitPriceInstruction(instr.MicroLamports).ValidateAndBuild()
	if err != nil {
		return nil, err
	}
	return ix, nil
}
