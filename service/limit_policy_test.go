package service

import (
	"multibank-api/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimitPolicy_CheckDailyLimit(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	policy := NewLimitPolicyWithClock(func() time.Time { return now })

	account := &model.Account{
		DailyTransferLimit:   10000,
		DailyTransferTotal:   9500,
		MonthlyTransferLimit: 50000,
		MonthlyTransferTotal: 9500,
		LastTransferDate:     now,
		LastMonthReset:       now,
	}

	t.Run("amount over the remaining allowance is rejected", func(t *testing.T) {
		assert.False(t, policy.CheckDailyLimit(account, 600))
	})

	t.Run("amount landing exactly on the cap is allowed", func(t *testing.T) {
		assert.True(t, policy.CheckDailyLimit(account, 500))
	})

	t.Run("totals are untouched by checks", func(t *testing.T) {
		policy.CheckDailyLimit(account, 600)
		assert.Equal(t, 9500.0, account.DailyTransferTotal)
	})
}

func TestLimitPolicy_ApplyTransferUsage(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	policy := NewLimitPolicyWithClock(func() time.Time { return now })

	t.Run("accumulates both totals", func(t *testing.T) {
		account := &model.Account{
			DailyTransferTotal:   9500,
			MonthlyTransferTotal: 20000,
			LastTransferDate:     now,
			LastMonthReset:       now,
		}

		policy.ApplyTransferUsage(account, 500)

		assert.Equal(t, 10000.0, account.DailyTransferTotal)
		assert.Equal(t, 20500.0, account.MonthlyTransferTotal)
		assert.Equal(t, now, account.LastTransferDate)
	})

	t.Run("daily total resets when the calendar day rolls over", func(t *testing.T) {
		account := &model.Account{
			DailyTransferTotal:   9999,
			MonthlyTransferTotal: 9999,
			LastTransferDate:     now.AddDate(0, 0, -1),
			LastMonthReset:       now,
		}

		policy.ApplyTransferUsage(account, 100)

		assert.Equal(t, 100.0, account.DailyTransferTotal)
		assert.Equal(t, 10099.0, account.MonthlyTransferTotal)
	})

	t.Run("monthly total resets when the calendar month rolls over", func(t *testing.T) {
		account := &model.Account{
			DailyTransferTotal:   500,
			MonthlyTransferTotal: 45000,
			LastTransferDate:     now,
			LastMonthReset:       now.AddDate(0, -1, 0),
		}

		policy.ApplyTransferUsage(account, 100)

		assert.Equal(t, 600.0, account.DailyTransferTotal)
		assert.Equal(t, 100.0, account.MonthlyTransferTotal)
		assert.Equal(t, now, account.LastMonthReset)
	})
}

func TestLimitPolicy_RolloverAllowsNewDay(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	policy := NewLimitPolicyWithClock(func() time.Time { return now })

	// Yesterday's usage exhausted the cap; a new day starts fresh.
	account := &model.Account{
		DailyTransferLimit:   10000,
		DailyTransferTotal:   9999,
		MonthlyTransferLimit: 50000,
		MonthlyTransferTotal: 9999,
		LastTransferDate:     now.AddDate(0, 0, -1),
		LastMonthReset:       now,
	}

	assert.True(t, policy.CheckDailyLimit(account, 100))

	daily, monthly := policy.Usage(account)
	assert.Equal(t, 0.0, daily)
	assert.Equal(t, 9999.0, monthly)
}
