package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TransactionType enumerates all wallet transaction types.
type TransactionType string

const (
	TxBet        TransactionType = "bet"
	TxWin        TransactionType = "win"
	TxDeposit    TransactionType = "deposit"
	TxWithdrawal TransactionType = "withdrawal"
	TxBonus      TransactionType = "bonus"
)

// OperationKinds are the transaction types a caller may apply directly through
// ApplyOperation. Withdrawals and bonus forfeits go through their own paths.
var OperationKinds = map[TransactionType]bool{
	TxBet:     true,
	TxWin:     true,
	TxDeposit: true,
	TxBonus:   true,
}

// Transaction is an append-only audit row. Rows are immutable once written;
// replaying the signed deltas from zero reproduces the current total balance.
type Transaction struct {
	ID                    uuid.UUID       `json:"id"`
	UserID                uuid.UUID       `json:"user_id"`
	Type                  TransactionType `json:"type"`
	Amount                int64           `json:"amount"`
	BalanceBefore         int64           `json:"balance_before"`
	BalanceAfter          int64           `json:"balance_after"`
	ExternalTransactionID *string         `json:"external_transaction_id,omitempty"`
	Metadata              json.RawMessage `json:"metadata"`
	CreatedAt             time.Time       `json:"created_at"`
}

// Delta returns the signed balance change this row recorded.
func (t *Transaction) Delta() int64 {
	return t.BalanceAfter - t.BalanceBefore
}

// IdempotencyKey is the composite key used for deduplication of operations
// carrying an external transaction id.
type IdempotencyKey struct {
	UserID                uuid.UUID
	ExternalTransactionID string
}
