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

package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"marks-ai-client-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Identity names the referral account the backend should scope a call to.
type Identity struct {
	Username string
	Email    string
}

func (id Identity) query(page, perPage int) url.Values {
	query := url.Values{}
	if id.Username != "" {
		query.Set("username", id.Username)
	}
	if id.Email != "" {
		query.Set("email", id.Email)
	}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
		query.Set("per_page", strconv.Itoa(perPage))
	}
	return query
}

type referralStatsResponse struct {
	apiEnvelope
	Stats *models.ReferralStats `json:"stats"`
}

func (s *Service) ReferralStats(ctx context.Context, id Identity) (*models.ReferralStats, error) {
	var resp referralStatsResponse
	if err := s.getJSON(ctx, "/referral/stats/", id.query(0, 0), &resp); err != nil {
		return nil, fmt.Errorf("unable to fetch referral stats: %w", err)
	}
	if resp.Stats == nil {
		return nil, fmt.Errorf("referral stats response missing stats")
	}
	return resp.Stats, nil
}

// TransactionPage is one page of referral transactions.
type TransactionPage struct {
	Items      []models.ReferralTransaction
	Total      int
	TotalPages int
}

// PayoutPage is one page of payout requests.
type PayoutPage struct {
	Items      []models.ReferralPayout
	Total      int
	TotalPages int
}

type referralTransactionsResponse struct {
	apiEnvelope
	Transactions []models.ReferralTransaction `json:"transactions"`
	Total        int                          `json:"total"`
	TotalPages   int                          `json:"total_pages"`
}

func (s *Service) ReferralTransactions(ctx context.Context, id Identity, page, perPage int) (*TransactionPage, error) {
	var resp referralTransactionsResponse
	if err := s.getJSON(ctx, "/referral/transactions/", id.query(page, perPage), &resp); err != nil {
		return nil, fmt.Errorf("unable to fetch referral transactions: %w", err)
	}
	return &TransactionPage{
		Items:      resp.Transactions,
		Total:      resp.Total,
		TotalPages: resp.TotalPages,
	}, nil
}

type referralPayoutsResponse struct {
	apiEnvelope
	Payouts    []models.ReferralPayout `json:"payouts"`
	Total      int                     `json:"total"`
	TotalPages int                     `json:"total_pages"`
}

func (s *Service) ReferralPayouts(ctx context.Context, id Identity, page, perPage int) (*PayoutPage, error) {
	var resp referralPayoutsResponse
	if err := s.getJSON(ctx, "/referral/payouts/", id.query(page, perPage), &resp); err != nil {
		return nil, fmt.Errorf("unable to fetch referral payouts: %w", err)
	}
	return &PayoutPage{
		Items:      resp.Payouts,
		Total:      resp.Total,
		TotalPages: resp.TotalPages,
	}, nil
}

type referralActionResponse struct {
	apiEnvelope
}

// CreateReferralCode provisions a referral code for the account.
func (s *Service) CreateReferralCode(ctx context.Context, id Identity) (string, error) {
	body := map[string]string{
		"username": id.Username,
		"email":    id.Email,
	}

	var resp referralActionResponse
	if err := s.postJSON(ctx, "/referral/create/", body, &resp); err != nil {
		return "", fmt.Errorf("unable to create referral code: %w", err)
	}
	return resp.Message, nil
}

// TrackReferralClick reports a landing-page visit attributed to a code.
// Failures are the caller's business to ignore; click tracking is best
// effort and never blocks a signup.
func (s *Service) TrackReferralClick(ctx context.Context, referralCode string) error {
	var resp referralActionResponse
	if err := s.postJSON(ctx, "/referral/track-click/", map[string]string{"referral_code": referralCode}, &resp); err != nil {
		return fmt.Errorf("unable to track referral click: %w", err)
	}
	return nil
}

// RequestPayoutParams describes a payout submission.
type RequestPayoutParams struct {
	Identity       Identity
	Amount         decimal.Decimal
	PaymentMethod  string
	PaymentDetails string
}

func (s *Service) RequestPayout(ctx context.Context, params RequestPayoutParams) (string, error) {
	body := map[string]any{
		"username":        params.Identity.Username,
		"email":           params.Identity.Email,
		"amount":          params.Amount,
		"payment_method":  params.PaymentMethod,
		"payment_details": params.PaymentDetails,
	}

	var resp referralActionResponse
	if err := s.postJSON(ctx, "/referral/request-payout/", body, &resp); err != nil {
		return "", fmt.Errorf("unable to request payout: %w", err)
	}

	zap.L().Info("Payout requested",
		zap.String("amount", params.Amount.String()),
		zap.String("method", params.PaymentMethod))
	return resp.Message, nil
}
