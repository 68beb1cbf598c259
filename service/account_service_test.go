// service/account_service_test.go
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"multibank-api/model"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// fakeCacheClient is an in-memory ICacheClient for cache-aside tests.
type fakeCacheClient struct {
	store    map[string]string
	getCalls int
	setCalls int
	delCalls int
}

func newFakeCacheClient() *fakeCacheClient {
	return &fakeCacheClient{store: make(map[string]string)}
}

func (c *fakeCacheClient) Get(ctx context.Context, key string) *redis.StringCmd {
	c.getCalls++
	val, ok := c.store[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (c *fakeCacheClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	c.setCalls++
	switch v := value.(type) {
	case []byte:
		c.store[key] = string(v)
	case string:
		c.store[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (c *fakeCacheClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	c.delCalls++
	var removed int64
	for _, key := range keys {
		if _, ok := c.store[key]; ok {
			delete(c.store, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func newTestAccountService(t *testing.T, cache ICacheClient, cfg ProvisioningConfig) (*AccountService, sqlmock.Sqlmock, *MockAccountRepository) {
	t.Helper()
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mockRepo := new(MockAccountRepository)
	svc := NewAccountService(db, mockRepo, cache, cfg)
	return svc, dbMock, mockRepo
}

func TestAccountService_GenerateAccountNumber(t *testing.T) {
	cfg := ProvisioningConfig{DailyLimit: 10000, MonthlyLimit: 50000}

	t.Run("encodes category prefix, sequence and random suffix", func(t *testing.T) {
		svc, _, mockRepo := newTestAccountService(t, nil, cfg)
		mockRepo.On("NextAccountSequence", mock.Anything, model.AccountTypeStandard).Return(int64(25), nil).Once()

		number, err := svc.GenerateAccountNumber(nil, model.AccountTypeStandard)

		assert.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^10000025\d{4}$`), number)
	})

	t.Run("business accounts use their own prefix", func(t *testing.T) {
		svc, _, mockRepo := newTestAccountService(t, nil, cfg)
		mockRepo.On("NextAccountSequence", mock.Anything, model.AccountTypeBusiness).Return(int64(3), nil).Once()

		number, err := svc.GenerateAccountNumber(nil, model.AccountTypeBusiness)

		assert.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^40000003\d{4}$`), number)
	})

	t.Run("unknown account type is rejected", func(t *testing.T) {
		svc, _, _ := newTestAccountService(t, nil, cfg)

		_, err := svc.GenerateAccountNumber(nil, model.AccountType("checking"))

		assert.Error(t, err)
	})
}

func TestAccountService_CreateDefaultAccounts(t *testing.T) {
	ctx := context.Background()

	t.Run("provisions one account per currency in a single unit", func(t *testing.T) {
		cfg := ProvisioningConfig{DailyLimit: 10000, MonthlyLimit: 50000, IncludeBRL: true}
		svc, dbMock, mockRepo := newTestAccountService(t, nil, cfg)

		dbMock.ExpectBegin()
		mockRepo.On("NextAccountSequence", mock.Anything, model.AccountTypeStandard).
			Return(int64(1), nil).Times(4)
		mockRepo.On("CreateAccount", mock.Anything, mock.AnythingOfType("*model.Account")).
			Return(nil).Times(4)
		dbMock.ExpectCommit()

		accounts, err := svc.CreateDefaultAccounts(ctx, 7)

		assert.NoError(t, err)
		assert.Len(t, accounts, 4)
		currencies := make([]model.Currency, 0, len(accounts))
		for _, account := range accounts {
			currencies = append(currencies, account.Currency)
			assert.Equal(t, 7, account.UserID)
			assert.Equal(t, model.AccountTypeStandard, account.AccountType)
			assert.Equal(t, model.AccountStatusActive, account.Status)
			assert.True(t, account.IsInternal)
			assert.Equal(t, 0.0, account.Balance)
			assert.Equal(t, 10000.0, account.DailyTransferLimit)
			assert.Equal(t, 50000.0, account.MonthlyTransferLimit)
		}
		assert.Equal(t, []model.Currency{model.CurrencyUSD, model.CurrencyEUR, model.CurrencyUSDT, model.CurrencyBRL}, currencies)
		mockRepo.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("BRL is skipped when provisioning disables it", func(t *testing.T) {
		cfg := ProvisioningConfig{DailyLimit: 10000, MonthlyLimit: 50000}
		svc, dbMock, mockRepo := newTestAccountService(t, nil, cfg)

		dbMock.ExpectBegin()
		mockRepo.On("NextAccountSequence", mock.Anything, model.AccountTypeStandard).Return(int64(1), nil).Times(3)
		mockRepo.On("CreateAccount", mock.Anything, mock.Anything).Return(nil).Times(3)
		dbMock.ExpectCommit()

		accounts, err := svc.CreateDefaultAccounts(ctx, 7)

		assert.NoError(t, err)
		assert.Len(t, accounts, 3)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("a failure mid-provisioning rolls back every account", func(t *testing.T) {
		cfg := ProvisioningConfig{DailyLimit: 10000, MonthlyLimit: 50000}
		svc, dbMock, mockRepo := newTestAccountService(t, nil, cfg)

		dbMock.ExpectBegin()
		mockRepo.On("NextAccountSequence", mock.Anything, model.AccountTypeStandard).Return(int64(1), nil).Times(2)
		mockRepo.On("CreateAccount", mock.Anything, mock.Anything).Return(nil).Once()
		mockRepo.On("CreateAccount", mock.Anything, mock.Anything).Return(errors.New("insert failed")).Once()
		dbMock.ExpectRollback()

		accounts, err := svc.CreateDefaultAccounts(ctx, 7)

		assert.Error(t, err)
		assert.Nil(t, accounts)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestAccountService_ListAccountsForUser(t *testing.T) {
	ctx := context.Background()
	cfg := ProvisioningConfig{DailyLimit: 10000, MonthlyLimit: 50000}

	t.Run("cache miss reads the database and populates the cache", func(t *testing.T) {
		cache := newFakeCacheClient()
		svc, _, mockRepo := newTestAccountService(t, cache, cfg)
		expected := []*model.Account{
			{ID: 1, UserID: 7, Currency: model.CurrencyUSD, Balance: 100},
			{ID: 2, UserID: 7, Currency: model.CurrencyEUR, Balance: 50},
		}
		mockRepo.On("GetAccountsByUserID", 7).Return(expected, nil).Once()

		accounts, err := svc.ListAccountsForUser(ctx, 7)

		assert.NoError(t, err)
		assert.Equal(t, expected, accounts)
		assert.Equal(t, 1, cache.setCalls)

		var cached []*model.Account
		assert.NoError(t, json.Unmarshal([]byte(cache.store[accountsCacheKey(7)]), &cached))
		assert.Len(t, cached, 2)
	})

	t.Run("cache hit skips the database", func(t *testing.T) {
		cache := newFakeCacheClient()
		svc, _, mockRepo := newTestAccountService(t, cache, cfg)
		cached := []*model.Account{{ID: 1, UserID: 7, Currency: model.CurrencyUSD, Balance: 100}}
		data, err := json.Marshal(cached)
		assert.NoError(t, err)
		cache.store[accountsCacheKey(7)] = string(data)

		accounts, err := svc.ListAccountsForUser(ctx, 7)

		assert.NoError(t, err)
		assert.Len(t, accounts, 1)
		assert.Equal(t, model.CurrencyUSD, accounts[0].Currency)
		mockRepo.AssertNotCalled(t, "GetAccountsByUserID")
	})

	t.Run("nil cache degrades to a plain database read", func(t *testing.T) {
		svc, _, mockRepo := newTestAccountService(t, nil, cfg)
		mockRepo.On("GetAccountsByUserID", 7).Return([]*model.Account{}, nil).Once()

		accounts, err := svc.ListAccountsForUser(ctx, 7)

		assert.NoError(t, err)
		assert.Empty(t, accounts)
	})
}

func TestAccountService_SetAccountStatus(t *testing.T) {
	ctx := context.Background()
	cfg := ProvisioningConfig{DailyLimit: 10000, MonthlyLimit: 50000}

	t.Run("updates status and invalidates the owner's cache", func(t *testing.T) {
		cache := newFakeCacheClient()
		cache.store[accountsCacheKey(7)] = "[]"
		svc, _, mockRepo := newTestAccountService(t, cache, cfg)
		account := &model.Account{ID: 1, UserID: 7, Status: model.AccountStatusActive}

		mockRepo.On("GetAccountByID", 1).Return(account, nil).Once()
		mockRepo.On("UpdateAccountStatus", 1, model.AccountStatusSuspended).Return(nil).Once()

		updated, err := svc.SetAccountStatus(ctx, 1, model.AccountStatusSuspended)

		assert.NoError(t, err)
		assert.Equal(t, model.AccountStatusSuspended, updated.Status)
		_, stillCached := cache.store[accountsCacheKey(7)]
		assert.False(t, stillCached)
	})

	t.Run("unknown account", func(t *testing.T) {
		svc, _, mockRepo := newTestAccountService(t, nil, cfg)
		mockRepo.On("GetAccountByID", 99).Return(nil, sql.ErrNoRows).Once()

		_, err := svc.SetAccountStatus(ctx, 99, model.AccountStatusClosed)

		assert.Equal(t, ErrAccountNotFound, err)
	})
}
