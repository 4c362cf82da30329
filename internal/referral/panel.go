/**
 * Copyright 2025-present Marks AI.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package referral

import (
	"context"
	"fmt"
	"sync"

	"marks-ai-client-go/internal/backend"
	"marks-ai-client-go/internal/models"
	"marks-ai-client-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StatsState is the stats collection with its loading flag.
type StatsState struct {
	Data    *models.ReferralStats
	Loading bool
	Err     error
}

// TransactionsState is the transactions collection with its own page
// counters and loading flag.
type TransactionsState struct {
	Items      []models.ReferralTransaction
	Page       int
	Total      int
	TotalPages int
	Loading    bool
	Err        error
}

// PayoutsState is the payouts collection with its own page counters and
// loading flag.
type PayoutsState struct {
	Items      []models.ReferralPayout
	Page       int
	Total      int
	TotalPages int
	Loading    bool
	Err        error
}

// Panel presents the referral program: three independently paginated
// collections (stats, transactions, payouts). Paging one collection never
// refetches the others.
type Panel struct {
	backend  *backend.Service
	identity backend.Identity
	pageSize int

	mutex        sync.RWMutex
	stats        StatsState
	transactions TransactionsState
	payouts      PayoutsState
}

func NewPanel(backendService *backend.Service, identity backend.Identity, pageSize int) *Panel {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Panel{
		backend:      backendService,
		identity:     identity,
		pageSize:     pageSize,
		transactions: TransactionsState{Page: 1},
		payouts:      PayoutsState{Page: 1},
	}
}

// LoadStats fetches the top-level referral summary.
func (p *Panel) LoadStats(ctx context.Context) error {
	p.mutex.Lock()
	p.stats.Loading = true
	p.mutex.Unlock()

	stats, err := p.backend.ReferralStats(ctx, p.identity)

	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.stats.Loading = false
	p.stats.Err = err
	if err != nil {
		zap.L().Warn("Referral stats fetch failed", zap.Error(err))
		return err
	}
	p.stats.Data = stats
	return nil
}

// LoadTransactions fetches one page of referral transactions.
func (p *Panel) LoadTransactions(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}

	p.mutex.Lock()
	p.transactions.Loading = true
	p.mutex.Unlock()

	result, err := p.backend.ReferralTransactions(ctx, p.identity, page, p.pageSize)

	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.transactions.Loading = false
	p.transactions.Err = err
	if err != nil {
		zap.L().Warn("Referral transactions fetch failed", zap.Int("page", page), zap.Error(err))
		return err
	}
	p.transactions.Items = result.Items
	p.transactions.Page = page
	p.transactions.Total = result.Total
	p.transactions.TotalPages = result.TotalPages
	return nil
}

// LoadPayouts fetches one page of payout history.
func (p *Panel) LoadPayouts(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}

	p.mutex.Lock()
	p.payouts.Loading = true
	p.mutex.Unlock()

	result, err := p.backend.ReferralPayouts(ctx, p.identity, page, p.pageSize)

	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.payouts.Loading = false
	p.payouts.Err = err
	if err != nil {
		zap.L().Warn("Referral payouts fetch failed", zap.Int("page", page), zap.Error(err))
		return err
	}
	p.payouts.Items = result.Items
	p.payouts.Page = page
	p.payouts.Total = result.Total
	p.payouts.TotalPages = result.TotalPages
	return nil
}

// Stats returns the current stats state.
func (p *Panel) Stats() StatsState {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.stats
}

// Transactions returns the current transactions state.
func (p *Panel) Transactions() TransactionsState {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	state := p.transactions
	state.Items = append([]models.ReferralTransaction(nil), p.transactions.Items...)
	return state
}

// Payouts returns the current payouts state.
func (p *Panel) Payouts() PayoutsState {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	state := p.payouts
	state.Items = append([]models.ReferralPayout(nil), p.payouts.Items...)
	return state
}

// RequestPayout validates the amount client-side (positive, and at most
// the reported pending earnings), submits the request, then reloads page 1
// of payouts and the stats. Validation failures never reach the network.
func (p *Panel) RequestPayout(ctx context.Context, amount decimal.Decimal, method, details string) (string, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return "", fmt.Errorf("%w: payout amount must be positive", store.ErrValidation)
	}

	p.mutex.RLock()
	stats := p.stats.Data
	p.mutex.RUnlock()
	if stats == nil {
		if err := p.LoadStats(ctx); err != nil {
			return "", fmt.Errorf("unable to verify pending earnings: %w", err)
		}
		p.mutex.RLock()
		stats = p.stats.Data
		p.mutex.RUnlock()
	}

	if amount.GreaterThan(stats.PendingEarnings) {
		return "", fmt.Errorf("%w: payout amount $%s exceeds pending earnings $%s",
			store.ErrValidation, amount.String(), stats.PendingEarnings.String())
	}

	message, err := p.backend.RequestPayout(ctx, backend.RequestPayoutParams{
		Identity:       p.identity,
		Amount:         amount,
		PaymentMethod:  method,
		PaymentDetails: details,
	})
	if err != nil {
		return "", err
	}

	// Refresh what the submission changed; failures here degrade to stale
	// views, the payout itself already went through.
	if err := p.LoadPayouts(ctx, 1); err != nil {
		zap.L().Warn("Payout history reload failed after request", zap.Error(err))
	}
	if err := p.LoadStats(ctx); err != nil {
		zap.L().Warn("Stats reload failed after payout request", zap.Error(err))
	}

	return message, nil
}
