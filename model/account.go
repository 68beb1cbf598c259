package model

import "time"

type AccountType string

const (
	AccountTypeStandard AccountType = "standard"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeInternal AccountType = "internal"
	AccountTypeBusiness AccountType = "business"
)

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusInactive  AccountStatus = "inactive"
	AccountStatusSuspended AccountStatus = "suspended"
	AccountStatusClosed    AccountStatus = "closed"
)

// Account is a per-user, per-currency ledger balance. Balance and the transfer
// usage accumulators are only ever mutated inside a database transaction owned
// by the transfer engine.
type Account struct {
	ID                   int           `json:"id"`
	UserID               int           `json:"user_id"`
	AccountNumber        string        `json:"account_number"`
	AccountType          AccountType   `json:"account_type"`
	Currency             Currency      `json:"currency"`
	Balance              float64       `json:"balance"`
	Status               AccountStatus `json:"status"`
	IsInternal           bool          `json:"is_internal"`
	DailyTransferLimit   float64       `json:"daily_transfer_limit"`
	MonthlyTransferLimit float64       `json:"monthly_transfer_limit"`
	DailyTransferTotal   float64       `json:"daily_transfer_total"`
	MonthlyTransferTotal float64       `json:"monthly_transfer_total"`
	LastTransferDate     time.Time     `json:"last_transfer_date"`
	LastMonthReset       time.Time     `json:"last_month_reset"`
	CreatedAt            time.Time     `json:"created_at"`
}
