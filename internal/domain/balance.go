package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Balance is the per-user balance row. TotalBalance is the single source of
// truth for how much money the user has, in integer cents; the real/bonus
// split is derived from the active grant set, never stored.
type Balance struct {
	UserID       uuid.UUID `json:"user_id"`
	TotalBalance int64     `json:"total_balance"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BalanceBreakdown is the derived real/bonus/withdrawable split of a user's
// total balance, computed on demand from the balance row and active grants.
type BalanceBreakdown struct {
	TotalBalance           int64 `json:"total_balance"`
	BonusBalance           int64 `json:"bonus_balance"`
	RealBalance            int64 `json:"real_balance"`
	AvailableForWithdrawal int64 `json:"available_for_withdrawal"`
	HasActiveBonus         bool  `json:"has_active_bonus"`
}

// PostEntryParams is the input to the atomic PostEntry operation: one balance
// delta plus one append-only transaction row plus one outbox event.
type PostEntryParams struct {
	UserID                uuid.UUID
	Type                  TransactionType
	Amount                int64
	Delta                 int64 // signed change to total_balance
	ClampAtZero           bool  // clamp total_balance at 0 instead of failing the delta
	ExternalTransactionID *string
	Metadata              json.RawMessage
}

// CommandResult is the return value from all balance engine commands.
type CommandResult struct {
	Transaction *Transaction
	Balance     *Balance
	Idempotent  bool // true if this was a duplicate that returned the existing tx
}

// DepositParams holds the input for ExecuteDeposit.
type DepositParams struct {
	UserID                uuid.UUID
	Amount                int64
	ExternalTransactionID string
	Metadata              json.RawMessage
}

// BetParams holds the input for ExecuteBet.
type BetParams struct {
	UserID                uuid.UUID
	Amount                int64
	ExternalTransactionID string
	Metadata              json.RawMessage
}

// WinParams holds the input for ExecuteWin.
type WinParams struct {
	UserID                uuid.UUID
	Amount                int64
	ExternalTransactionID string
	Metadata              json.RawMessage
}

// BonusCreditParams holds the input for ExecuteBonusCredit.
type BonusCreditParams struct {
	UserID                uuid.UUID
	Amount                int64
	GrantID               uuid.UUID
	ExternalTransactionID string
	Metadata              json.RawMessage
}

// BonusForfeitParams holds the input for ExecuteBonusForfeit. The deduction is
// clamped at zero: a losing streak may already have eroded the bonus portion.
type BonusForfeitParams struct {
	UserID   uuid.UUID
	Amount   int64
	GrantID  uuid.UUID
	Metadata json.RawMessage
}

// WithdrawParams holds the input for ExecuteWithdraw.
type WithdrawParams struct {
	UserID                uuid.UUID
	Amount                int64
	ExternalTransactionID string
	Metadata              json.RawMessage
}
