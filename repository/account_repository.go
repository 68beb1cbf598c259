package repository

import (
	"database/sql"
	"multibank-api/logger"
	"multibank-api/model"

	"github.com/sirupsen/logrus"
)

// IAccountRepository defines the contract for account database operations.
// Methods that take a *sql.Tx participate in the caller's atomic unit of work.
type IAccountRepository interface {
	CreateAccount(tx *sql.Tx, account *model.Account) error
	GetAccountByID(accountID int) (*model.Account, error)
	GetAccountForUpdate(tx *sql.Tx, accountID int) (*model.Account, error)
	UpdateAccountBalance(tx *sql.Tx, accountID int, newBalance float64) error
	UpdateTransferUsage(tx *sql.Tx, account *model.Account) error
	GetAccountsByUserID(userID int) ([]*model.Account, error)
	GetAllAccounts() ([]*model.Account, error)
	NextAccountSequence(tx *sql.Tx, accountType model.AccountType) (int64, error)
	UpdateAccountStatus(accountID int, status model.AccountStatus) error
}

type AccountRepository struct {
	DB *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{DB: db}
}

const accountColumns = `id, user_id, account_number, account_type, currency, balance, status, is_internal,
		daily_transfer_limit, monthly_transfer_limit, daily_transfer_total, monthly_transfer_total,
		last_transfer_date, last_month_reset, created_at`

func scanAccount(row interface{ Scan(...interface{}) error }) (*model.Account, error) {
	acc := &model.Account{}
	err := row.Scan(
		&acc.ID, &acc.UserID, &acc.AccountNumber, &acc.AccountType, &acc.Currency,
		&acc.Balance, &acc.Status, &acc.IsInternal,
		&acc.DailyTransferLimit, &acc.MonthlyTransferLimit,
		&acc.DailyTransferTotal, &acc.MonthlyTransferTotal,
		&acc.LastTransferDate, &acc.LastMonthReset, &acc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// CreateAccount inserts a new account inside the caller's transaction so that
// multi-account provisioning is all-or-nothing.
func (r *AccountRepository) CreateAccount(tx *sql.Tx, account *model.Account) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":        account.UserID,
		"account_number": account.AccountNumber,
		"currency":       account.Currency,
	})
	log.Info("Executing query to create a new account")

	query := `INSERT INTO accounts
		(user_id, account_number, account_type, currency, status, is_internal, daily_transfer_limit, monthly_transfer_limit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, balance, last_transfer_date, last_month_reset, created_at`
	err := tx.QueryRow(query,
		account.UserID, account.AccountNumber, account.AccountType, account.Currency,
		account.Status, account.IsInternal, account.DailyTransferLimit, account.MonthlyTransferLimit,
	).Scan(&account.ID, &account.Balance, &account.LastTransferDate, &account.LastMonthReset, &account.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create account query")
		return err
	}
	return nil
}

// GetAccountByID retrieves a single account without locking it.
func (r *AccountRepository) GetAccountByID(accountID int) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.DB.QueryRow(query, accountID))
}

// GetAccountForUpdate locks the account row for the remainder of the caller's
// transaction. Two concurrent transfers against the same account serialize
// here, so balance and limit checks never see a stale row.
func (r *AccountRepository) GetAccountForUpdate(tx *sql.Tx, accountID int) (*model.Account, error) {
	log := logger.Log.WithField("account_id", accountID)
	log.Info("Executing query to get account for update")

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	account, err := scanAccount(tx.QueryRow(query, accountID))
	if err != nil {
		if err == sql.ErrNoRows {
			log.Info("Account not found for update")
		} else {
			log.WithError(err).Error("Failed to execute get account for update query")
		}
		return nil, err
	}
	return account, nil
}

func (r *AccountRepository) UpdateAccountBalance(tx *sql.Tx, accountID int, newBalance float64) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id":  accountID,
		"new_balance": newBalance,
	})
	log.Info("Executing query to update account balance")

	query := `UPDATE accounts SET balance = $1 WHERE id = $2`
	_, err := tx.Exec(query, newBalance, accountID)
	if err != nil {
		log.WithError(err).Error("Failed to execute update account balance query")
		return err
	}
	return nil
}

// UpdateTransferUsage persists the rolling transfer accumulators set by the
// limit policy. Must run in the same transaction as the balance update.
func (r *AccountRepository) UpdateTransferUsage(tx *sql.Tx, account *model.Account) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id":    account.ID,
		"daily_total":   account.DailyTransferTotal,
		"monthly_total": account.MonthlyTransferTotal,
	})
	log.Info("Executing query to update transfer usage")

	query := `UPDATE accounts
		SET daily_transfer_total = $1, monthly_transfer_total = $2, last_transfer_date = $3, last_month_reset = $4
		WHERE id = $5`
	_, err := tx.Exec(query,
		account.DailyTransferTotal, account.MonthlyTransferTotal,
		account.LastTransferDate, account.LastMonthReset, account.ID,
	)
	if err != nil {
		log.WithError(err).Error("Failed to execute update transfer usage query")
		return err
	}
	return nil
}

// GetAccountsByUserID retrieves all accounts for a specific user.
func (r *AccountRepository) GetAccountsByUserID(userID int) ([]*model.Account, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to get accounts by user ID")

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY id`
	rows, err := r.DB.Query(query, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute query for accounts by user ID")
		return nil, err
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// GetAllAccounts retrieves all accounts from the database. For admin use only.
func (r *AccountRepository) GetAllAccounts() ([]*model.Account, error) {
	logger.Log.Info("Executing query to get all accounts")

	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY id`
	rows, err := r.DB.Query(query)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute query for all accounts")
		return nil, err
	}
	defer rows.Close()

	return collectAccounts(rows)
}

func collectAccounts(rows *sql.Rows) ([]*model.Account, error) {
	var accounts []*model.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			logger.Log.WithError(err).Error("Failed to scan account row")
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// NextAccountSequence draws the next per-type running count for account-number
// generation from the type's dedicated sequence, so concurrent provisioning
// never sees the same count twice.
func (r *AccountRepository) NextAccountSequence(tx *sql.Tx, accountType model.AccountType) (int64, error) {
	var seq int64
	query := `SELECT nextval('account_seq_' || $1)`
	if err := tx.QueryRow(query, accountType).Scan(&seq); err != nil {
		logger.Log.WithError(err).Error("Failed to execute next account sequence query")
		return 0, err
	}
	return seq, nil
}

// UpdateAccountStatus applies an administrative status change.
func (r *AccountRepository) UpdateAccountStatus(accountID int, status model.AccountStatus) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": accountID,
		"status":     status,
	})
	log.Info("Executing query to update account status")

	res, err := r.DB.Exec(`UPDATE accounts SET status = $1 WHERE id = $2`, status, accountID)
	if err != nil {
		log.WithError(err).Error("Failed to execute update account status query")
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
