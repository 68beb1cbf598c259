package service

import (
	"multibank-api/model"
	"time"
)

// LimitPolicy evaluates rolling daily/monthly transfer caps. The clock is
// injectable so rollover behavior is testable. Limit checks apply only to
// transfers between internal accounts; administrative deposits and
// withdrawals are exempt.
type LimitPolicy struct {
	now func() time.Time
}

func NewLimitPolicy() *LimitPolicy {
	return &LimitPolicy{now: time.Now}
}

// NewLimitPolicyWithClock builds a policy with a fixed clock, for tests.
func NewLimitPolicyWithClock(now func() time.Time) *LimitPolicy {
	return &LimitPolicy{now: now}
}

// CheckDailyLimit reports whether amount fits under the account's daily cap,
// taking a pending calendar-day rollover into account.
func (p *LimitPolicy) CheckDailyLimit(account *model.Account, amount float64) bool {
	daily, _ := p.effectiveTotals(account)
	return daily+amount <= account.DailyTransferLimit
}

// CheckMonthlyLimit reports whether amount fits under the account's monthly cap.
func (p *LimitPolicy) CheckMonthlyLimit(account *model.Account, amount float64) bool {
	_, monthly := p.effectiveTotals(account)
	return monthly+amount <= account.MonthlyTransferLimit
}

// ApplyTransferUsage rolls the accumulators over if the calendar day or month
// has advanced, then adds amount to both totals. Call it only after the
// transfer has been accepted; the caller persists the result in the same
// atomic unit as the balance change.
func (p *LimitPolicy) ApplyTransferUsage(account *model.Account, amount float64) {
	now := p.now()

	if !sameDay(account.LastTransferDate, now) {
		account.DailyTransferTotal = 0
	}
	if !sameMonth(account.LastMonthReset, now) {
		account.MonthlyTransferTotal = 0
		account.LastMonthReset = now
	}

	account.DailyTransferTotal += amount
	account.MonthlyTransferTotal += amount
	account.LastTransferDate = now
}

// Usage returns the accumulators as they would read after rollover, for
// reporting limit/used/available context on rejections.
func (p *LimitPolicy) Usage(account *model.Account) (daily, monthly float64) {
	return p.effectiveTotals(account)
}

// effectiveTotals returns the accumulators as they would read after rollover,
// without mutating the account.
func (p *LimitPolicy) effectiveTotals(account *model.Account) (daily, monthly float64) {
	now := p.now()
	daily = account.DailyTransferTotal
	monthly = account.MonthlyTransferTotal
	if !sameDay(account.LastTransferDate, now) {
		daily = 0
	}
	if !sameMonth(account.LastMonthReset, now) {
		monthly = 0
	}
	return daily, monthly
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sameMonth(a, b time.Time) bool {
	ay, am, _ := a.Date()
	by, bm, _ := b.Date()
	return ay == by && am == bm
}
