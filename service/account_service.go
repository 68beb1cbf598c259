// file: service/account_service.go

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"multibank-api/config"
	"multibank-api/logger"
	"multibank-api/model"
	"multibank-api/repository"
	"time"

	"github.com/sirupsen/logrus"
)

// accountNumberPrefixes encode the account category in the first two digits
// of the generated account number.
var accountNumberPrefixes = map[model.AccountType]string{
	model.AccountTypeStandard: "10",
	model.AccountTypeSavings:  "20",
	model.AccountTypeInternal: "30",
	model.AccountTypeBusiness: "40",
}

// ProvisioningConfig carries the defaults applied to newly created accounts.
type ProvisioningConfig struct {
	DailyLimit   float64
	MonthlyLimit float64
	IncludeBRL   bool
}

// DefaultProvisioningConfig reads the provisioning defaults from the loaded
// application configuration.
func DefaultProvisioningConfig() ProvisioningConfig {
	return ProvisioningConfig{
		DailyLimit:   config.AppConfig.Accounts.DefaultDailyLimit,
		MonthlyLimit: config.AppConfig.Accounts.DefaultMonthlyLimit,
		IncludeBRL:   config.AppConfig.Accounts.ProvisionBRL,
	}
}

// AccountService owns account provisioning and read paths. Listing uses a
// cache-aside strategy against Redis.
type AccountService struct {
	db    *sql.DB
	repo  repository.IAccountRepository
	cache ICacheClient
	cfg   ProvisioningConfig
}

func NewAccountService(db *sql.DB, repo repository.IAccountRepository, cache ICacheClient, cfg ProvisioningConfig) *AccountService {
	return &AccountService{
		db:    db,
		repo:  repo,
		cache: cache,
		cfg:   cfg,
	}
}

// GenerateAccountNumber builds a unique account number: a two-digit category
// prefix, a zero-padded per-category running count, and four random digits.
func (s *AccountService) GenerateAccountNumber(tx *sql.Tx, accountType model.AccountType) (string, error) {
	prefix, ok := accountNumberPrefixes[accountType]
	if !ok {
		return "", fmt.Errorf("unknown account type: %s", accountType)
	}

	seq, err := s.repo.NextAccountSequence(tx, accountType)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%06d%04d", prefix, seq, rand.Intn(10000)), nil
}

// CreateDefaultAccounts provisions a user's initial currency account set
// (USD, EUR, USDT and, when enabled, BRL) in a single database transaction:
// either every account is created or none is.
func (s *AccountService) CreateDefaultAccounts(ctx context.Context, userID int) ([]*model.Account, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Provisioning default currency accounts")

	currencies := []model.Currency{model.CurrencyUSD, model.CurrencyEUR, model.CurrencyUSDT}
	if s.cfg.IncludeBRL {
		currencies = append(currencies, model.CurrencyBRL)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	accounts := make([]*model.Account, 0, len(currencies))
	for _, currency := range currencies {
		number, err := s.GenerateAccountNumber(tx, model.AccountTypeStandard)
		if err != nil {
			return nil, fmt.Errorf("could not generate account number: %w", err)
		}

		account := &model.Account{
			UserID:               userID,
			AccountNumber:        number,
			AccountType:          model.AccountTypeStandard,
			Currency:             currency,
			Status:               model.AccountStatusActive,
			IsInternal:           true,
			DailyTransferLimit:   s.cfg.DailyLimit,
			MonthlyTransferLimit: s.cfg.MonthlyLimit,
		}
		if err := s.repo.CreateAccount(tx, account); err != nil {
			return nil, fmt.Errorf("could not create %s account: %w", currency, err)
		}
		accounts = append(accounts, account)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	s.invalidateCache(ctx, userID)

	log.WithField("count", len(accounts)).Info("Default accounts provisioned")
	return accounts, nil
}

// ListAccountsForUser lists a user's accounts, utilizing a cache-aside
// strategy. A cache failure degrades to the database read.
func (s *AccountService) ListAccountsForUser(ctx context.Context, userID int) ([]*model.Account, error) {
	cacheKey := accountsCacheKey(userID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var accounts []*model.Account
			if err := json.Unmarshal([]byte(cached), &accounts); err == nil {
				return accounts, nil
			}
		}
	}

	accounts, err := s.repo.GetAccountsByUserID(userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(accounts); err == nil {
			s.cache.Set(ctx, cacheKey, data, 10*time.Minute)
		}
	}

	return accounts, nil
}

// GetAllAccounts retrieves all accounts. Not cached: admin views need fresh
// balances.
func (s *AccountService) GetAllAccounts() ([]*model.Account, error) {
	return s.repo.GetAllAccounts()
}

// SetAccountStatus applies an administrative status change and invalidates
// the owner's cached listing.
func (s *AccountService) SetAccountStatus(ctx context.Context, accountID int, status model.AccountStatus) (*model.Account, error) {
	account, err := s.repo.GetAccountByID(accountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if err := s.repo.UpdateAccountStatus(accountID, status); err != nil {
		return nil, err
	}
	account.Status = status

	logger.Log.WithFields(logrus.Fields{
		"account_id": accountID,
		"status":     status,
	}).Info("Account status updated")

	s.invalidateCache(ctx, account.UserID)
	return account, nil
}

func (s *AccountService) invalidateCache(ctx context.Context, userID int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, accountsCacheKey(userID)).Err(); err != nil {
		logger.Log.WithError(err).Warn("Failed to invalidate account cache")
	}
}
