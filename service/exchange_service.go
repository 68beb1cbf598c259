package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"multibank-api/logger"
	"multibank-api/model"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ErrConversionUnavailable is returned only when neither the live provider
// nor the static fallback table can serve a currency pair.
var ErrConversionUnavailable = errors.New("no exchange rate available for currency pair")

// providerResponse is the rate provider's wire format, keyed by base currency.
type providerResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// rateCache holds one provider response per base currency. Entries are
// invalidated purely by wall-clock age.
type rateCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[model.Currency]rateEntry
}

type rateEntry struct {
	rates     map[string]float64
	fetchedAt time.Time
}

func (c *rateCache) get(base model.Currency) (map[string]float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[base]
	if !ok || c.now().Sub(entry.fetchedAt) > c.ttl {
		return nil, false
	}
	return entry.rates, true
}

func (c *rateCache) put(base model.Currency, rates map[string]float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[base] = rateEntry{rates: rates, fetchedAt: c.now()}
}

// ExchangeService resolves exchange rates from an external provider, caching
// each base currency's rate table and degrading to a static fallback table
// when the provider cannot serve a pair. Callers never see a provider error
// for a pair the fallback covers.
type ExchangeService struct {
	client      *http.Client
	providerURL string
	fallback    map[model.Currency]map[model.Currency]float64
	cache       *rateCache
}

func NewExchangeService(providerURL string, timeout, cacheTTL time.Duration, fallbackRates map[string]map[string]float64) *ExchangeService {
	return newExchangeService(providerURL, timeout, cacheTTL, fallbackRates, time.Now)
}

// NewExchangeServiceWithClock builds a service with a fixed clock so cache
// staleness is testable.
func NewExchangeServiceWithClock(providerURL string, timeout, cacheTTL time.Duration, fallbackRates map[string]map[string]float64, now func() time.Time) *ExchangeService {
	return newExchangeService(providerURL, timeout, cacheTTL, fallbackRates, now)
}

func newExchangeService(providerURL string, timeout, cacheTTL time.Duration, fallbackRates map[string]map[string]float64, now func() time.Time) *ExchangeService {
	fallback := make(map[model.Currency]map[model.Currency]float64, len(fallbackRates))
	for base, quotes := range fallbackRates {
		table := make(map[model.Currency]float64, len(quotes))
		for quote, rate := range quotes {
			table[model.Currency(quote)] = rate
		}
		fallback[model.Currency(base)] = table
	}

	return &ExchangeService{
		client:      &http.Client{Timeout: timeout},
		providerURL: providerURL,
		fallback:    fallback,
		cache: &rateCache{
			ttl:     cacheTTL,
			now:     now,
			entries: make(map[model.Currency]rateEntry),
		},
	}
}

// GetRate resolves the exchange rate from one currency to another. An
// identity pair is exactly 1.
func (s *ExchangeService) GetRate(ctx context.Context, from, to model.Currency) (float64, error) {
	if from == to {
		return 1, nil
	}

	if rates, ok := s.cache.get(from); ok {
		if rate, ok := rates[string(to)]; ok {
			return rate, nil
		}
	}

	rates, err := s.fetchRates(ctx, from)
	if err == nil {
		s.cache.put(from, rates)
		if rate, ok := rates[string(to)]; ok {
			return rate, nil
		}
		err = fmt.Errorf("provider response missing %s rate", to)
	}

	logger.Log.WithFields(logrus.Fields{
		"from": from,
		"to":   to,
	}).WithError(err).Warn("Falling back to static exchange rates")

	if table, ok := s.fallback[from]; ok {
		if rate, ok := table[to]; ok {
			return rate, nil
		}
	}
	return 0, ErrConversionUnavailable
}

// Convert resolves the pair's rate and multiplies. The result is not rounded;
// rounding happens at the persistence boundary.
func (s *ExchangeService) Convert(ctx context.Context, amount float64, from, to model.Currency) (float64, float64, error) {
	if from == to {
		return amount, 1, nil
	}

	rate, err := s.GetRate(ctx, from, to)
	if err != nil {
		return 0, 0, err
	}

	converted, _ := decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(rate)).Float64()
	return converted, rate, nil
}

func (s *ExchangeService) fetchRates(ctx context.Context, base model.Currency) (map[string]float64, error) {
	url := fmt.Sprintf("%s/%s", s.providerURL, base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate provider returned status %d", resp.StatusCode)
	}

	var payload providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("could not decode rate provider response: %w", err)
	}
	if len(payload.Rates) == 0 {
		return nil, errors.New("rate provider response contained no rates")
	}
	return payload.Rates, nil
}
