// file: model/request.go

package model

// RegisterRequest defines the payload for creating a new user. Registration
// also provisions the user's default currency accounts.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// DepositRequest is the payload for an administrative deposit into an account.
type DepositRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description" validate:"max=255"`
}

// WithdrawRequest is the payload for an administrative withdrawal.
type WithdrawRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description" validate:"max=255"`
}

// TransferRequest is the payload for a same-currency transfer between two
// internal accounts. The source account id is taken from the URL.
type TransferRequest struct {
	ToAccountID int     `json:"to_account_id" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description" validate:"max=255"`
}

// ExchangeTransferRequest is the payload for a cross-currency transfer. The
// amount is denominated in the source account's currency.
type ExchangeTransferRequest struct {
	ToAccountID int     `json:"to_account_id" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description" validate:"max=255"`
}

// UpdateAccountStatusRequest is the payload for an administrative account
// status change.
type UpdateAccountStatusRequest struct {
	Status AccountStatus `json:"status" validate:"required,oneof=active inactive suspended closed"`
}

// UpdateUserRoleRequest is the payload for an administrative user role
// change.
type UpdateUserRoleRequest struct {
	Role Role `json:"role" validate:"required"`
}
