package model

import "time"

type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeWithdrawal  TransactionType = "withdrawal"
	TransactionTypeTransfer    TransactionType = "transfer"
	TransactionTypeTransferOut TransactionType = "transfer_out"
	TransactionTypeTransferIn  TransactionType = "transfer_in"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// Transaction records a single ledger-affecting event. Rows are created as
// pending and moved to exactly one terminal state inside the same database
// transaction that mutates the account balances. A deposit carries only a
// destination, a withdrawal only a source, and a transfer both.
type Transaction struct {
	ID                   int               `json:"id"`
	TransactionType      TransactionType   `json:"transaction_type"`
	Status               TransactionStatus `json:"status"`
	Amount               float64           `json:"amount"`
	Currency             Currency          `json:"currency"`
	SourceAccountID      *int              `json:"source_account_id,omitempty"`
	DestinationAccountID *int              `json:"destination_account_id,omitempty"`
	Reference            string            `json:"reference"`
	Description          string            `json:"description,omitempty"`
	// Metadata carries operation context such as the exchange rate and the
	// converted amount for cross-currency transfers.
	Metadata      map[string]string `json:"metadata,omitempty"`
	ProcessedAt   *time.Time        `json:"processed_at,omitempty"`
	FailureReason string            `json:"failure_reason,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}
