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

// DefaultSymbol is used for settings fetches when the license does not
// carry a symbol of its own.
const DefaultSymbol = "BTCUSD"

type licensesResponse struct {
	apiEnvelope
	Licenses []models.License `json:"licenses"`
}

// ListLicenses fetches the license list for an account, keyed by email.
func (s *Service) ListLicenses(ctx context.Context, email string) ([]models.License, error) {
	var resp licensesResponse
	if err := s.postJSON(ctx, "/licenses/", map[string]string{"email": email}, &resp); err != nil {
		return nil, fmt.Errorf("unable to list licenses: %w", err)
	}

	zap.L().Debug("Fetched licenses", zap.String("email", email), zap.Int("count", len(resp.Licenses)))
	return resp.Licenses, nil
}

type settingsResponse struct {
	apiEnvelope
	Settings *models.EASettings `json:"settings"`
}

// GetSettings fetches the EA settings for a license/symbol pair. An empty
// symbol falls back to DefaultSymbol.
func (s *Service) GetSettings(ctx context.Context, licenseKey, mt5Account, symbol string) (*models.EASettings, error) {
	if symbol == "" {
		symbol = DefaultSymbol
	}

	body := map[string]string{
		"license_key": licenseKey,
		"mt5_account": mt5Account,
		"symbol":      symbol,
	}

	var resp settingsResponse
	if err := s.postJSON(ctx, "/settings/", body, &resp); err != nil {
		return nil, fmt.Errorf("unable to fetch settings: %w", err)
	}
	if resp.Settings == nil {
		return nil, fmt.Errorf("settings response missing settings")
	}

	zap.L().Debug("Fetched EA settings",
		zap.String("license_key", licenseKey),
		zap.String("symbol", symbol))
	return resp.Settings, nil
}

type updateInvestmentResponse struct {
	apiEnvelope
	Settings *models.EASettings `json:"settings"`
}

// UpdateInvestment sets the investment amount for a license; the backend
// rescales lot size and order caps and returns the resulting settings.
func (s *Service) UpdateInvestment(ctx context.Context, licenseKey string, amount decimal.Decimal) (*models.EASettings, string, error) {
	body := map[string]any{
		"license_key":       licenseKey,
		"investment_amount": amount,
	}

	var resp updateInvestmentResponse
	if err := s.postJSON(ctx, "/update-investment/", body, &resp); err != nil {
		return nil, "", fmt.Errorf("unable to update investment: %w", err)
	}
	if resp.Settings == nil {
		return nil, "", fmt.Errorf("update-investment response missing settings")
	}

	zap.L().Info("Investment updated",
		zap.String("license_key", licenseKey),
		zap.String("amount", amount.String()))
	return resp.Settings, resp.Message, nil
}

type tradeDataResponse struct {
	apiEnvelope
	Data *models.TradeSnapshot `json:"data"`
}

// TradeData fetches the current trading account snapshot for a license.
func (s *Service) TradeData(ctx context.Context, licenseKey string) (*models.TradeSnapshot, error) {
	query := url.Values{"license_key": {licenseKey}}

	var resp tradeDataResponse
	if err := s.getJSON(ctx, "/trade-data/", query, &resp); err != nil {
		return nil, fmt.Errorf("unable to fetch trade data: %w", err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("trade data response missing data")
	}
	return resp.Data, nil
}

type actionLogsResponse struct {
	apiEnvelope
	Logs []models.ActionLogEntry `json:"logs"`
}

// ActionLogs fetches the most recent EA action log entries, newest-last,
// bounded by limit.
func (s *Service) ActionLogs(ctx context.Context, licenseKey string, limit int) ([]models.ActionLogEntry, error) {
	query := url.Values{
		"license_key": {licenseKey},
		"limit":       {strconv.Itoa(limit)},
	}

	var resp actionLogsResponse
	if err := s.getJSON(ctx, "/action-logs/", query, &resp); err != nil {
		return nil, fmt.Errorf("unable to fetch action logs: %w", err)
	}
	return resp.Logs, nil
}
