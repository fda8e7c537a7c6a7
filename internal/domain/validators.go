package domain

// ValidatePositiveAmount checks that an amount is positive (in cents).
func ValidatePositiveAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount(amount)
	}
	return nil
}

// ValidateHistoryLimit checks the transaction history page size bounds.
func ValidateHistoryLimit(limit int) error {
	if limit < 1 || limit > 100 {
		return ErrInvalidLimit(limit)
	}
	return nil
}

// ValidateOperationKind checks that a transaction type may be applied through
// ApplyOperation.
func ValidateOperationKind(kind TransactionType) error {
	if !OperationKinds[kind] {
		return ErrValidation("unknown operation kind: " + string(kind))
	}
	return nil
}
