package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"multibank-api/common"
	"multibank-api/logger"
	"multibank-api/model"
	"multibank-api/repository"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrAccountNotFound         = errors.New("account not found")
	ErrSenderAccountNotFound   = errors.New("sender account not found")
	ErrReceiverAccountNotFound = errors.New("receiver account not found")
	ErrSameAccountTransfer     = errors.New("cannot transfer money to the same account")
	ErrPermissionDenied        = errors.New("you can only transfer money from your own account")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrCurrencyMismatch        = errors.New("currency mismatch between accounts")
	ErrInvalidAmount           = errors.New("amount must be a positive number")
	ErrInactiveAccount         = errors.New("account is not active")
	ErrExternalAccount         = errors.New("account is not eligible for internal operations")
)

// LimitExceededError reports a daily or monthly cap violation together with
// the numbers the caller needs to render an actionable message.
type LimitExceededError struct {
	Scope     string  // "daily" or "monthly"
	Limit     float64
	Used      float64
	Available float64
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("%s transfer limit exceeded: limit %.2f, used %.2f, available %.2f",
		e.Scope, e.Limit, e.Used, e.Available)
}

// IExchangeService is the conversion contract the transfer engine consumes.
type IExchangeService interface {
	Convert(ctx context.Context, amount float64, from, to model.Currency) (converted, rate float64, err error)
}

// OperationResult is the success payload for deposits and withdrawals.
type OperationResult struct {
	Transaction *model.Transaction `json:"transaction"`
	NewBalance  float64            `json:"new_balance"`
}

// TransferResult is the success payload for a same-currency transfer.
type TransferResult struct {
	Transaction        *model.Transaction `json:"transaction"`
	SourceBalance      float64            `json:"source_balance"`
	DestinationBalance float64            `json:"destination_balance"`
}

// ExchangeTransferResult is the success payload for a cross-currency
// transfer: two transaction rows linked by a shared reference.
type ExchangeTransferResult struct {
	OutTransaction     *model.Transaction `json:"out_transaction"`
	InTransaction      *model.Transaction `json:"in_transaction"`
	Reference          string             `json:"reference"`
	ExchangeRate       float64            `json:"exchange_rate"`
	ConvertedAmount    float64            `json:"converted_amount"`
	SourceBalance      float64            `json:"source_balance"`
	DestinationBalance float64            `json:"destination_balance"`
}

// TransferService orchestrates every money-movement operation as one atomic
// database transaction: validate, check balance and limits, move balances,
// write the transaction rows, then commit or roll everything back. Cache
// invalidation and activity recording run after commit and never fail the
// operation.
type TransferService struct {
	db              *sql.DB
	accountRepo     repository.IAccountRepository
	transactionRepo repository.ITransactionRepository
	limits          *LimitPolicy
	exchange        IExchangeService
	cache           ICacheClient
	audit           ActivityRecorder
	now             func() time.Time
}

func NewTransferService(
	db *sql.DB,
	accountRepo repository.IAccountRepository,
	transactionRepo repository.ITransactionRepository,
	limits *LimitPolicy,
	exchange IExchangeService,
	cache ICacheClient,
	audit ActivityRecorder,
) *TransferService {
	return &TransferService{
		db:              db,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		limits:          limits,
		exchange:        exchange,
		cache:           cache,
		audit:           audit,
		now:             time.Now,
	}
}

// Deposit credits an account with administrator-supplied funds. Deposits are
// exempt from transfer limits.
func (s *TransferService) Deposit(ctx context.Context, accountID int, amount float64, description string) (*OperationResult, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": accountID,
		"amount":     amount,
	})
	log.Info("Starting deposit")

	if !common.IsValidAmount(amount) {
		return nil, ErrInvalidAmount
	}
	amount = common.Round2(amount)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accountRepo.GetAccountForUpdate(tx, accountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if err := checkOperational(account); err != nil {
		return nil, err
	}

	newBalance := common.Round2(account.Balance + amount)
	if err := s.accountRepo.UpdateAccountBalance(tx, account.ID, newBalance); err != nil {
		return nil, fmt.Errorf("could not update account balance: %w", err)
	}

	transaction := &model.Transaction{
		TransactionType:      model.TransactionTypeDeposit,
		Amount:               amount,
		Currency:             account.Currency,
		DestinationAccountID: &account.ID,
		Reference:            newReference("DEP"),
		Description:          description,
	}
	if err := s.finalizeTransaction(tx, transaction); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	log.Info("Deposit completed successfully")
	s.afterCommit(ctx, "deposit", transaction, account.UserID)
	return &OperationResult{Transaction: transaction, NewBalance: newBalance}, nil
}

// Withdraw debits an account. The balance may never go negative; a debit that
// would cross zero is rejected before any write.
func (s *TransferService) Withdraw(ctx context.Context, accountID int, amount float64, description string) (*OperationResult, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": accountID,
		"amount":     amount,
	})
	log.Info("Starting withdrawal")

	if !common.IsValidAmount(amount) {
		return nil, ErrInvalidAmount
	}
	amount = common.Round2(amount)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accountRepo.GetAccountForUpdate(tx, accountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if err := checkOperational(account); err != nil {
		return nil, err
	}
	if account.Balance < amount {
		return nil, ErrInsufficientFunds
	}

	newBalance := common.Round2(account.Balance - amount)
	if err := s.accountRepo.UpdateAccountBalance(tx, account.ID, newBalance); err != nil {
		return nil, fmt.Errorf("could not update account balance: %w", err)
	}

	transaction := &model.Transaction{
		TransactionType: model.TransactionTypeWithdrawal,
		Amount:          amount,
		Currency:        account.Currency,
		SourceAccountID: &account.ID,
		Reference:       newReference("WTH"),
		Description:     description,
	}
	if err := s.finalizeTransaction(tx, transaction); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	log.Info("Withdrawal completed successfully")
	s.afterCommit(ctx, "withdrawal", transaction, account.UserID)
	return &OperationResult{Transaction: transaction, NewBalance: newBalance}, nil
}

// Transfer moves money between two internal accounts of the same currency.
// Daily and monthly limits are enforced on the source account and the usage
// accumulators are persisted in the same atomic unit as the balance changes.
func (s *TransferService) Transfer(ctx context.Context, userID, fromAccountID int, req model.TransferRequest) (*TransferResult, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"from_account_id": fromAccountID,
		"to_account_id":   req.ToAccountID,
		"amount":          req.Amount,
		"user_id":         userID,
	})
	log.Info("Starting money transfer process")

	if fromAccountID == req.ToAccountID {
		return nil, ErrSameAccountTransfer
	}
	if !common.IsValidAmount(req.Amount) {
		return nil, ErrInvalidAmount
	}
	amount := common.Round2(req.Amount)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	fromAccount, err := s.accountRepo.GetAccountForUpdate(tx, fromAccountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSenderAccountNotFound
		}
		return nil, err
	}
	toAccount, err := s.accountRepo.GetAccountForUpdate(tx, req.ToAccountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReceiverAccountNotFound
		}
		return nil, err
	}

	if fromAccount.UserID != userID {
		return nil, ErrPermissionDenied
	}
	if err := checkOperational(fromAccount); err != nil {
		return nil, err
	}
	if err := checkOperational(toAccount); err != nil {
		return nil, err
	}
	if fromAccount.Currency != toAccount.Currency {
		return nil, ErrCurrencyMismatch
	}
	if fromAccount.Balance < amount {
		return nil, ErrInsufficientFunds
	}
	if err := s.checkLimits(fromAccount, amount); err != nil {
		return nil, err
	}

	sourceBalance := common.Round2(fromAccount.Balance - amount)
	destinationBalance := common.Round2(toAccount.Balance + amount)

	if err := s.accountRepo.UpdateAccountBalance(tx, fromAccount.ID, sourceBalance); err != nil {
		return nil, fmt.Errorf("could not update sender balance: %w", err)
	}
	if err := s.accountRepo.UpdateAccountBalance(tx, toAccount.ID, destinationBalance); err != nil {
		return nil, fmt.Errorf("could not update receiver balance: %w", err)
	}

	s.limits.ApplyTransferUsage(fromAccount, amount)
	if err := s.accountRepo.UpdateTransferUsage(tx, fromAccount); err != nil {
		return nil, fmt.Errorf("could not update transfer usage: %w", err)
	}

	transaction := &model.Transaction{
		TransactionType:      model.TransactionTypeTransfer,
		Amount:               amount,
		Currency:             fromAccount.Currency,
		SourceAccountID:      &fromAccount.ID,
		DestinationAccountID: &toAccount.ID,
		Reference:            newReference("TRF"),
		Description:          req.Description,
	}
	if err := s.finalizeTransaction(tx, transaction); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	log.Info("Transfer completed successfully")
	s.afterCommit(ctx, "transfer", transaction, fromAccount.UserID, toAccount.UserID)
	return &TransferResult{
		Transaction:        transaction,
		SourceBalance:      sourceBalance,
		DestinationBalance: destinationBalance,
	}, nil
}

// TransferWithConversion moves money between two internal accounts of
// different currencies. The exchange rate is resolved before the database
// transaction opens so no row lock is held across a network call. Daily and
// monthly limits apply to the source amount, same as a plain transfer. The
// debit, the credit and both transaction rows commit or roll back as one unit.
func (s *TransferService) TransferWithConversion(ctx context.Context, userID, fromAccountID int, req model.ExchangeTransferRequest) (*ExchangeTransferResult, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"from_account_id": fromAccountID,
		"to_account_id":   req.ToAccountID,
		"amount":          req.Amount,
		"user_id":         userID,
	})
	log.Info("Starting cross-currency transfer process")

	if fromAccountID == req.ToAccountID {
		return nil, ErrSameAccountTransfer
	}
	if !common.IsValidAmount(req.Amount) {
		return nil, ErrInvalidAmount
	}
	amount := common.Round2(req.Amount)

	// Resolve currencies and the exchange rate before opening the atomic
	// unit. Currencies are immutable once an account exists.
	fromAccount, err := s.accountRepo.GetAccountByID(fromAccountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSenderAccountNotFound
		}
		return nil, err
	}
	toAccount, err := s.accountRepo.GetAccountByID(req.ToAccountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReceiverAccountNotFound
		}
		return nil, err
	}
	if fromAccount.UserID != userID {
		return nil, ErrPermissionDenied
	}
	if fromAccount.Currency == toAccount.Currency {
		return nil, ErrCurrencyMismatch
	}

	converted, rate, err := s.exchange.Convert(ctx, amount, fromAccount.Currency, toAccount.Currency)
	if err != nil {
		return nil, err
	}
	convertedAmount := common.Round2(converted)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	fromAccount, err = s.accountRepo.GetAccountForUpdate(tx, fromAccountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSenderAccountNotFound
		}
		return nil, err
	}
	toAccount, err = s.accountRepo.GetAccountForUpdate(tx, req.ToAccountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReceiverAccountNotFound
		}
		return nil, err
	}
	if err := checkOperational(fromAccount); err != nil {
		return nil, err
	}
	if err := checkOperational(toAccount); err != nil {
		return nil, err
	}
	if fromAccount.Balance < amount {
		return nil, ErrInsufficientFunds
	}
	if err := s.checkLimits(fromAccount, amount); err != nil {
		return nil, err
	}

	sourceBalance := common.Round2(fromAccount.Balance - amount)
	destinationBalance := common.Round2(toAccount.Balance + convertedAmount)

	if err := s.accountRepo.UpdateAccountBalance(tx, fromAccount.ID, sourceBalance); err != nil {
		return nil, fmt.Errorf("could not update sender balance: %w", err)
	}
	if err := s.accountRepo.UpdateAccountBalance(tx, toAccount.ID, destinationBalance); err != nil {
		return nil, fmt.Errorf("could not update receiver balance: %w", err)
	}

	s.limits.ApplyTransferUsage(fromAccount, amount)
	if err := s.accountRepo.UpdateTransferUsage(tx, fromAccount); err != nil {
		return nil, fmt.Errorf("could not update transfer usage: %w", err)
	}

	reference := newReference("FX")
	rateStr := strconv.FormatFloat(rate, 'f', -1, 64)

	outTransaction := &model.Transaction{
		TransactionType:      model.TransactionTypeTransferOut,
		Amount:               amount,
		Currency:             fromAccount.Currency,
		SourceAccountID:      &fromAccount.ID,
		DestinationAccountID: &toAccount.ID,
		Reference:            reference,
		Description:          req.Description,
		Metadata: map[string]string{
			"exchange_rate":        rateStr,
			"converted_amount":     strconv.FormatFloat(convertedAmount, 'f', 2, 64),
			"destination_currency": string(toAccount.Currency),
		},
	}
	inTransaction := &model.Transaction{
		TransactionType:      model.TransactionTypeTransferIn,
		Amount:               convertedAmount,
		Currency:             toAccount.Currency,
		SourceAccountID:      &fromAccount.ID,
		DestinationAccountID: &toAccount.ID,
		Reference:            reference,
		Description:          req.Description,
		Metadata: map[string]string{
			"exchange_rate":   rateStr,
			"original_amount": strconv.FormatFloat(amount, 'f', 2, 64),
			"source_currency": string(fromAccount.Currency),
		},
	}
	if err := s.finalizeTransaction(tx, outTransaction); err != nil {
		return nil, err
	}
	if err := s.finalizeTransaction(tx, inTransaction); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	log.WithField("exchange_rate", rate).Info("Cross-currency transfer completed successfully")
	s.afterCommit(ctx, "exchange_transfer", outTransaction, fromAccount.UserID, toAccount.UserID)
	return &ExchangeTransferResult{
		OutTransaction:     outTransaction,
		InTransaction:      inTransaction,
		Reference:          reference,
		ExchangeRate:       rate,
		ConvertedAmount:    convertedAmount,
		SourceBalance:      sourceBalance,
		DestinationBalance: destinationBalance,
	}, nil
}

// ListTransactionsForAccount retrieves the transaction history for an account
// the requesting user owns.
func (s *TransferService) ListTransactionsForAccount(ctx context.Context, userID, accountID int) ([]*model.Transaction, error) {
	account, err := s.accountRepo.GetAccountByID(accountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if account.UserID != userID {
		logger.Log.WithFields(logrus.Fields{
			"requesting_user_id": userID,
			"target_account_id":  accountID,
		}).Warn("Permission denied for accessing account's transaction history")
		return nil, ErrPermissionDenied
	}

	return s.transactionRepo.GetTransactionsByAccountID(accountID)
}

// checkLimits verifies both caps for the source account and builds the
// structured rejection when one is hit.
func (s *TransferService) checkLimits(account *model.Account, amount float64) error {
	daily, monthly := s.limits.Usage(account)
	if !s.limits.CheckDailyLimit(account, amount) {
		return &LimitExceededError{
			Scope:     "daily",
			Limit:     account.DailyTransferLimit,
			Used:      daily,
			Available: account.DailyTransferLimit - daily,
		}
	}
	if !s.limits.CheckMonthlyLimit(account, amount) {
		return &LimitExceededError{
			Scope:     "monthly",
			Limit:     account.MonthlyTransferLimit,
			Used:      monthly,
			Available: account.MonthlyTransferLimit - monthly,
		}
	}
	return nil
}

// finalizeTransaction inserts the pending row and moves it to completed
// within the caller's transaction, so no row ever survives as pending past
// the atomic boundary.
func (s *TransferService) finalizeTransaction(tx *sql.Tx, transaction *model.Transaction) error {
	if err := s.transactionRepo.CreateTransaction(tx, transaction); err != nil {
		return fmt.Errorf("could not create transaction record: %w", err)
	}
	processedAt := s.now()
	if err := s.transactionRepo.MarkTransactionCompleted(tx, transaction.ID, processedAt); err != nil {
		return fmt.Errorf("could not complete transaction record: %w", err)
	}
	transaction.Status = model.TransactionStatusCompleted
	transaction.ProcessedAt = &processedAt
	return nil
}

// afterCommit runs the non-critical side effects. Failures are logged and
// swallowed; they never fail a committed operation.
func (s *TransferService) afterCommit(ctx context.Context, action string, transaction *model.Transaction, userIDs ...int) {
	if s.cache != nil {
		keys := make([]string, 0, len(userIDs))
		for _, id := range userIDs {
			keys = append(keys, accountsCacheKey(id))
		}
		if err := s.cache.Del(ctx, keys...).Err(); err != nil {
			logger.Log.WithError(err).Warn("Failed to invalidate account cache")
		}
	}
	if s.audit != nil {
		event := ActivityEvent{
			Action:        action,
			TransactionID: transaction.ID,
			Reference:     transaction.Reference,
			Amount:        transaction.Amount,
			Currency:      transaction.Currency,
		}
		if err := s.audit.Record(ctx, event); err != nil {
			logger.Log.WithError(err).Warn("Failed to record activity")
		}
	}
}

func checkOperational(account *model.Account) error {
	if !account.IsInternal {
		return ErrExternalAccount
	}
	if account.Status != model.AccountStatusActive {
		return ErrInactiveAccount
	}
	return nil
}

func newReference(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
