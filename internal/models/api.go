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

package models

import (
	"github.com/shopspring/decimal"
)

// User is the authenticated customer identity returned by the backend
type User struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Joined   string `json:"date_joined,omitempty"`
}

// License statuses as reported by the backend
const (
	LicenseStatusActive    = "active"
	LicenseStatusExpired   = "expired"
	LicenseStatusSuspended = "suspended"
	LicenseStatusCancelled = "cancelled"
)

// License is a purchased, time-bounded entitlement binding one trading
// account to the EA product. The client only ever holds a cached copy.
type License struct {
	LicenseKey string      `json:"license_key"`
	PlanName   string      `json:"plan_name"`
	Status     string      `json:"status"`
	ExpiresAt  string      `json:"expires_at"`
	MT5Account string      `json:"mt5_account"`
	Settings   *EASettings `json:"settings,omitempty"`
}

// IsActive reports whether the license is currently usable
func (l *License) IsActive() bool {
	return l.Status == LicenseStatusActive
}

// EASettings are the numeric trading parameters for one license/symbol pair
type EASettings struct {
	Symbol            string          `json:"symbol"`
	LotSize           decimal.Decimal `json:"lot_size"`
	InvestmentAmount  decimal.Decimal `json:"investment_amount"`
	BuyRangeLow       decimal.Decimal `json:"buy_range_low"`
	BuyRangeHigh      decimal.Decimal `json:"buy_range_high"`
	SellRangeLow      decimal.Decimal `json:"sell_range_low"`
	SellRangeHigh     decimal.Decimal `json:"sell_range_high"`
	GapPips           decimal.Decimal `json:"gap_pips"`
	MaxOrders         int             `json:"max_orders"`
	TakeProfitPips    decimal.Decimal `json:"take_profit_pips"`
	TrailingStartPips decimal.Decimal `json:"trailing_start_pips"`
	TrailingStepPips  decimal.Decimal `json:"trailing_step_pips"`
	BreakevenRecovery bool            `json:"breakeven_recovery"`
	RecoveryMaxOrders int             `json:"recovery_max_orders"`
	RecoveryLotMin    decimal.Decimal `json:"recovery_lot_min"`
	RecoveryLotMax    decimal.Decimal `json:"recovery_lot_max"`
}

// OpenPosition is one live trade within a snapshot
type OpenPosition struct {
	Ticket     int64           `json:"ticket"`
	Type       string          `json:"type"` // "buy", "sell"
	Lots       decimal.Decimal `json:"lots"`
	OpenPrice  decimal.Decimal `json:"open_price"`
	StopLoss   decimal.Decimal `json:"sl"`
	TakeProfit decimal.Decimal `json:"tp"`
	Profit     decimal.Decimal `json:"profit"`
}

// TradeSnapshot is a point-in-time read of the trading account for the
// selected license. Replaced wholesale on every poll, never persisted.
type TradeSnapshot struct {
	AccountBalance     decimal.Decimal `json:"account_balance"`
	Equity             decimal.Decimal `json:"equity"`
	Profit             decimal.Decimal `json:"profit"`
	Margin             decimal.Decimal `json:"margin"`
	FreeMargin         decimal.Decimal `json:"free_margin"`
	TotalBuyPositions  int             `json:"total_buy_positions"`
	TotalSellPositions int             `json:"total_sell_positions"`
	TotalBuyLots       decimal.Decimal `json:"total_buy_lots"`
	TotalSellLots      decimal.Decimal `json:"total_sell_lots"`
	Symbol             string          `json:"symbol"`
	CurrentPrice       decimal.Decimal `json:"current_price"`
	TradingMode        string          `json:"trading_mode"`
	OpenPositions      []OpenPosition  `json:"open_positions"`
}

// Action log categories emitted by the EA and relayed by the backend
const (
	LogTypeConnect    = "CONNECT"
	LogTypeDisconnect = "DISCONNECT"
	LogTypeMode       = "MODE"
	LogTypeOpenBuy    = "OPEN_BUY"
	LogTypeOpenSell   = "OPEN_SELL"
	LogTypeCloseBuy   = "CLOSE_BUY"
	LogTypeCloseSell  = "CLOSE_SELL"
	LogTypeModify     = "MODIFY"
	LogTypeTrailing   = "TRAILING"
	LogTypeBreakeven  = "BREAKEVEN"
	LogTypeRecovery   = "RECOVERY"
	LogTypeGrid       = "GRID"
	LogTypeSignal     = "SIGNAL"
	LogTypeError      = "ERROR"
	LogTypeWarning    = "WARNING"
	LogTypeInfo       = "INFO"
)

// ActionLogEntry is an immutable, timestamped, categorized EA event
type ActionLogEntry struct {
	Time    string `json:"time"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Plan is a purchasable subscription tier
type Plan struct {
	Id           int             `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	DurationDays int             `json:"duration_days"`
	Description  string          `json:"description"`
	Features     []string        `json:"features"`
}

// EAProduct is a downloadable EA build listed in the store
type EAProduct struct {
	Id          int    `json:"id"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	DownloadURL string `json:"download_url"`
}

// EAUpdate describes a newer EA build the user should install
type EAUpdate struct {
	Version   string `json:"version"`
	Changelog string `json:"changelog"`
}

// SiteSettings carries backend-managed branding fields
type SiteSettings struct {
	SiteName        string `json:"site_name"`
	SupportEmail    string `json:"support_email"`
	TelegramSupport string `json:"telegram_support"`
	TelegramChannel string `json:"telegram_channel"`
}

// ReferralStats is the top-level referral summary for one user
type ReferralStats struct {
	ReferralCode    string          `json:"referral_code"`
	CommissionRate  decimal.Decimal `json:"commission_rate"`
	Clicks          int             `json:"clicks"`
	Signups         int             `json:"signups"`
	Purchases       int             `json:"purchases"`
	TotalEarnings   decimal.Decimal `json:"total_earnings"`
	PendingEarnings decimal.Decimal `json:"pending_earnings"`
	PaidEarnings    decimal.Decimal `json:"paid_earnings"`
}

// ReferralTransaction is one commission-bearing purchase by a referred user
type ReferralTransaction struct {
	ReferredUser     string          `json:"referred_user"`
	PurchaseAmount   decimal.Decimal `json:"purchase_amount"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	Status           string          `json:"status"` // "pending", "paid", "cancelled"
	CreatedAt        string          `json:"created_at"`
}

// Referral payout statuses and payment methods
const (
	PayoutStatusPending    = "pending"
	PayoutStatusProcessing = "processing"
	PayoutStatusCompleted  = "completed"
	PayoutStatusFailed     = "failed"

	PayoutMethodPaypal = "paypal"
	PayoutMethodBank   = "bank"
	PayoutMethodCrypto = "crypto"
)

// ReferralPayout is one payout request and its processing state
type ReferralPayout struct {
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  string          `json:"payment_method"`
	PaymentDetails string          `json:"payment_details"`
	Status         string          `json:"status"`
	RequestedAt    string          `json:"requested_at"`
	ProcessedAt    string          `json:"processed_at,omitempty"`
}
