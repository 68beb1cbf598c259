package repository

import (
	"database/sql"
	"encoding/json"
	"multibank-api/logger"
	"multibank-api/model"
	"time"

	"github.com/sirupsen/logrus"
)

// ITransactionRepository defines the contract for transaction database
// operations. Rows are inserted pending and moved to a terminal state inside
// the same *sql.Tx that mutates the account balances.
type ITransactionRepository interface {
	CreateTransaction(tx *sql.Tx, transaction *model.Transaction) error
	MarkTransactionCompleted(tx *sql.Tx, transactionID int, processedAt time.Time) error
	GetTransactionsByAccountID(accountID int) ([]*model.Transaction, error)
}

// TransactionRepository implements ITransactionRepository.
type TransactionRepository struct {
	DB *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{DB: db}
}

func (r *TransactionRepository) CreateTransaction(tx *sql.Tx, transaction *model.Transaction) error {
	log := logger.Log.WithFields(logrus.Fields{
		"transaction_type": transaction.TransactionType,
		"amount":           transaction.Amount,
		"currency":         transaction.Currency,
		"reference":        transaction.Reference,
	})
	log.Info("Executing query to create a new transaction")

	var metadata []byte
	if transaction.Metadata != nil {
		var err error
		metadata, err = json.Marshal(transaction.Metadata)
		if err != nil {
			return err
		}
	}

	if transaction.Status == "" {
		transaction.Status = model.TransactionStatusPending
	}

	query := `INSERT INTO transactions
		(transaction_type, status, amount, currency, source_account_id, destination_account_id, reference, description, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`
	err := tx.QueryRow(query,
		transaction.TransactionType, transaction.Status, transaction.Amount, transaction.Currency,
		nullableID(transaction.SourceAccountID), nullableID(transaction.DestinationAccountID),
		transaction.Reference, transaction.Description, nullableBytes(metadata),
	).Scan(&transaction.ID, &transaction.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create transaction query")
		return err
	}
	return nil
}

// MarkTransactionCompleted transitions a pending transaction to completed and
// stamps its processing time.
func (r *TransactionRepository) MarkTransactionCompleted(tx *sql.Tx, transactionID int, processedAt time.Time) error {
	log := logger.Log.WithField("transaction_id", transactionID)
	log.Info("Executing query to mark transaction completed")

	query := `UPDATE transactions SET status = $1, processed_at = $2 WHERE id = $3`
	_, err := tx.Exec(query, model.TransactionStatusCompleted, processedAt, transactionID)
	if err != nil {
		log.WithError(err).Error("Failed to execute mark transaction completed query")
		return err
	}
	return nil
}

// GetTransactionsByAccountID retrieves all transactions touching an account,
// newest first.
func (r *TransactionRepository) GetTransactionsByAccountID(accountID int) ([]*model.Transaction, error) {
	log := logger.Log.WithField("account_id", accountID)
	log.Info("Executing query to get transactions by account ID")

	query := `
		SELECT id, transaction_type, status, amount, currency, source_account_id, destination_account_id,
			reference, description, metadata, processed_at, failure_reason, created_at
		FROM transactions
		WHERE source_account_id = $1 OR destination_account_id = $1
		ORDER BY created_at DESC`

	rows, err := r.DB.Query(query, accountID)
	if err != nil {
		log.WithError(err).Error("Failed to execute query for transactions by account ID")
		return nil, err
	}
	defer rows.Close()

	var transactions []*model.Transaction
	for rows.Next() {
		t := &model.Transaction{}
		var (
			sourceID      sql.NullInt64
			destinationID sql.NullInt64
			description   sql.NullString
			metadata      []byte
			processedAt   sql.NullTime
			failureReason sql.NullString
		)
		err := rows.Scan(&t.ID, &t.TransactionType, &t.Status, &t.Amount, &t.Currency,
			&sourceID, &destinationID, &t.Reference, &description, &metadata,
			&processedAt, &failureReason, &t.CreatedAt)
		if err != nil {
			log.WithError(err).Error("Failed to scan transaction row")
			return nil, err
		}

		t.SourceAccountID = idFromNullable(sourceID)
		t.DestinationAccountID = idFromNullable(destinationID)
		t.Description = description.String
		t.FailureReason = failureReason.String
		if processedAt.Valid {
			t.ProcessedAt = &processedAt.Time
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
				log.WithError(err).Error("Failed to decode transaction metadata")
				return nil, err
			}
		}
		transactions = append(transactions, t)
	}

	return transactions, rows.Err()
}

func nullableID(id *int) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func nullableBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}

func idFromNullable(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	id := int(v.Int64)
	return &id
}
