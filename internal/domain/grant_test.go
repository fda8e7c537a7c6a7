package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- Grant Status Tests ---

func TestGrantStatusIsTerminal(t *testing.T) {
	assert.False(t, GrantStatusActive.IsTerminal())
	assert.True(t, GrantStatusCompleted.IsTerminal())
	assert.True(t, GrantStatusCancelled.IsTerminal())
}

// --- Grant Wagering Tests ---

func TestRemainingRequirement(t *testing.T) {
	g := BonusGrant{TurnoverRequirement: 40000, WageringProgress: 15000}
	assert.Equal(t, int64(25000), g.RemainingRequirement())

	g.WageringProgress = 40000
	assert.Equal(t, int64(0), g.RemainingRequirement())

	g.WageringProgress = 50000
	assert.Equal(t, int64(0), g.RemainingRequirement(), "never negative")
}

func TestIsWageringComplete(t *testing.T) {
	g := BonusGrant{TurnoverRequirement: 1000, WageringProgress: 999}
	assert.False(t, g.IsWageringComplete())

	g.WageringProgress = 1000
	assert.True(t, g.IsWageringComplete())

	zero := BonusGrant{TurnoverRequirement: 0}
	assert.True(t, zero.IsWageringComplete())
}

// --- Validator Tests ---

func TestValidatePositiveAmount(t *testing.T) {
	assert.NoError(t, ValidatePositiveAmount(1))
	assert.Error(t, ValidatePositiveAmount(0))
	assert.Error(t, ValidatePositiveAmount(-100))
}

func TestValidateHistoryLimit(t *testing.T) {
	assert.NoError(t, ValidateHistoryLimit(1))
	assert.NoError(t, ValidateHistoryLimit(100))
	assert.Error(t, ValidateHistoryLimit(0))
	assert.Error(t, ValidateHistoryLimit(101))
}

func TestValidateOperationKind(t *testing.T) {
	assert.NoError(t, ValidateOperationKind(TxDeposit))
	assert.NoError(t, ValidateOperationKind(TxBet))
	assert.NoError(t, ValidateOperationKind(TxWin))
	assert.NoError(t, ValidateOperationKind(TxBonus))
	assert.Error(t, ValidateOperationKind(TxWithdrawal), "withdrawal goes through its own endpoint")
	assert.Error(t, ValidateOperationKind(TransactionType("jackpot")))
}
