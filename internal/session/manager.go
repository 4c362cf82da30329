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

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"marks-ai-client-go/internal/backend"
	"marks-ai-client-go/internal/models"
	"marks-ai-client-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MinimumInvestment is the smallest accepted investment amount in USD.
var MinimumInvestment = decimal.NewFromInt(100)

// RefreshOutcome reports whether license data came from the backend or
// degraded to the cached copy.
type RefreshOutcome struct {
	Stale     bool
	Err       error
	FetchedAt time.Time
}

// Manager is the single source of truth for who is logged in, which
// license is active, and what that license's EA settings currently are.
// Selection mutations write through to durable storage before any network
// response is awaited, so a restart never loses the last-viewed license.
type Manager struct {
	store   store.SessionStore
	backend *backend.Service

	mutex    sync.RWMutex
	user     *models.User
	licenses []models.License
	selected *models.License
}

func NewManager(sessionStore store.SessionStore, backendService *backend.Service) *Manager {
	return &Manager{
		store:   sessionStore,
		backend: backendService,
	}
}

// Initialize rehydrates the session from durable storage. Without a
// persisted user it fails with store.ErrNotAuthenticated. With one, it
// refreshes the license list from the backend and reconciles the result
// into storage; a network failure keeps the cached copy and is reported
// through the returned outcome, not as an error.
func (m *Manager) Initialize(ctx context.Context) (*RefreshOutcome, error) {
	user, err := m.store.GetUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load session: %w", err)
	}
	if user == nil {
		return nil, store.ErrNotAuthenticated
	}

	licenses, err := m.store.GetLicenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load license cache: %w", err)
	}

	selected, err := m.store.GetSelectedLicense(ctx)
	if err != nil && !errors.Is(err, store.ErrNoSelectedLicense) {
		return nil, fmt.Errorf("unable to load selected license: %w", err)
	}

	m.mutex.Lock()
	m.user = user
	m.licenses = licenses
	m.selected = selected
	m.mutex.Unlock()

	zap.L().Info("Session rehydrated",
		zap.String("email", user.Email),
		zap.Int("cached_licenses", len(licenses)),
		zap.Bool("has_selection", selected != nil))

	return m.RefreshLicenses(ctx), nil
}

// Login authenticates against the backend and persists the session.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.User, error) {
	result, err := m.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := m.store.SaveUser(ctx, result.User); err != nil {
		return nil, err
	}
	if err := m.store.ReplaceLicenses(ctx, result.Licenses); err != nil {
		return nil, err
	}

	m.mutex.Lock()
	user := result.User
	m.user = &user
	m.licenses = result.Licenses
	m.selected = nil
	m.mutex.Unlock()

	return &result.User, nil
}

// Register creates an account, attributing the signup to a previously
// captured referral code when one exists. The click is reported first,
// best effort.
func (m *Manager) Register(ctx context.Context, email, password, name string) (*models.User, string, error) {
	referralCode, err := m.store.GetMarker(ctx, store.MarkerReferralCode)
	if err != nil {
		zap.L().Warn("Unable to read captured referral code", zap.Error(err))
		referralCode = ""
	}

	if referralCode != "" {
		if err := m.backend.TrackReferralClick(ctx, referralCode); err != nil {
			zap.L().Debug("Referral click tracking failed", zap.Error(err))
		}
	}

	result, err := m.backend.Register(ctx, email, password, name, referralCode)
	if err != nil {
		return nil, "", err
	}

	if err := m.store.SaveUser(ctx, result.User); err != nil {
		return nil, "", err
	}
	if err := m.store.ReplaceLicenses(ctx, result.Licenses); err != nil {
		return nil, "", err
	}

	m.mutex.Lock()
	user := result.User
	m.user = &user
	m.licenses = result.Licenses
	m.selected = nil
	m.mutex.Unlock()

	return &result.User, result.Message, nil
}

// Logout clears the user, license cache, and selection from storage.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.ClearSession(ctx); err != nil {
		return err
	}

	m.mutex.Lock()
	m.user = nil
	m.licenses = nil
	m.selected = nil
	m.mutex.Unlock()

	zap.L().Info("Logged out")
	return nil
}

// RefreshLicenses fetches the license list from the backend and reconciles
// it into durable storage. On failure the cached copy stays authoritative
// and the outcome is marked stale.
func (m *Manager) RefreshLicenses(ctx context.Context) *RefreshOutcome {
	m.mutex.RLock()
	user := m.user
	m.mutex.RUnlock()
	if user == nil {
		return &RefreshOutcome{Stale: true, Err: store.ErrNotAuthenticated}
	}

	licenses, err := m.backend.ListLicenses(ctx, user.Email)
	if err != nil {
		zap.L().Warn("License refresh failed, keeping cached copy", zap.Error(err))
		return &RefreshOutcome{Stale: true, Err: err}
	}

	if err := m.store.ReplaceLicenses(ctx, licenses); err != nil {
		zap.L().Error("Unable to persist refreshed licenses", zap.Error(err))
		return &RefreshOutcome{Stale: true, Err: err}
	}

	m.mutex.Lock()
	m.licenses = licenses
	m.mutex.Unlock()

	return &RefreshOutcome{FetchedAt: time.Now().UTC()}
}

// CachedLicenses re-reads the license collection from durable storage
// without touching the network.
func (m *Manager) CachedLicenses(ctx context.Context) ([]models.License, error) {
	licenses, err := m.store.GetLicenses(ctx)
	if err != nil {
		return nil, err
	}

	m.mutex.Lock()
	m.licenses = licenses
	m.mutex.Unlock()
	return licenses, nil
}

// SelectLicense makes the license with the given key active. The selection
// is persisted synchronously; fresh EA settings are then fetched (default
// symbol BTCUSD) and written back both to the selection and to the license's
// slot in the cache. A settings fetch failure keeps the cached snapshot and
// marks the outcome stale.
func (m *Manager) SelectLicense(ctx context.Context, licenseKey string) (*models.License, *RefreshOutcome, error) {
	m.mutex.RLock()
	var license *models.License
	for i := range m.licenses {
		if m.licenses[i].LicenseKey == licenseKey {
			copied := m.licenses[i]
			license = &copied
			break
		}
	}
	m.mutex.RUnlock()

	if license == nil {
		return nil, nil, fmt.Errorf("%w: %s", store.ErrLicenseNotFound, licenseKey)
	}

	// Write through before any network call
	if err := m.store.SaveSelectedLicense(ctx, *license); err != nil {
		return nil, nil, err
	}

	m.mutex.Lock()
	m.selected = license
	m.mutex.Unlock()

	symbol := backend.DefaultSymbol
	if license.Settings != nil && license.Settings.Symbol != "" {
		symbol = license.Settings.Symbol
	}

	settings, err := m.backend.GetSettings(ctx, license.LicenseKey, license.MT5Account, symbol)
	if err != nil {
		zap.L().Warn("Settings fetch failed, keeping cached snapshot",
			zap.String("license_key", license.LicenseKey),
			zap.Error(err))
		return license, &RefreshOutcome{Stale: true, Err: err}, nil
	}

	if err := m.applySettings(ctx, license.LicenseKey, settings); err != nil {
		return license, &RefreshOutcome{Stale: true, Err: err}, nil
	}

	m.mutex.RLock()
	selected := *m.selected
	m.mutex.RUnlock()
	return &selected, &RefreshOutcome{FetchedAt: time.Now().UTC()}, nil
}

// applySettings writes a fresh settings snapshot into the selection and the
// matching license in the cache, memory and storage both.
func (m *Manager) applySettings(ctx context.Context, licenseKey string, settings *models.EASettings) error {
	if err := m.store.SaveSelectedSettings(ctx, licenseKey, settings); err != nil {
		return err
	}

	m.mutex.Lock()
	if m.selected != nil && m.selected.LicenseKey == licenseKey {
		m.selected.Settings = settings
	}
	var cached *models.License
	for i := range m.licenses {
		if m.licenses[i].LicenseKey == licenseKey {
			m.licenses[i].Settings = settings
			copied := m.licenses[i]
			cached = &copied
			break
		}
	}
	m.mutex.Unlock()

	if cached != nil {
		if err := m.store.UpdateLicense(ctx, *cached); err != nil {
			return err
		}
	}
	return nil
}

// ClearSelectedLicense drops the active license and its settings from
// memory and storage. The license cache is untouched.
func (m *Manager) ClearSelectedLicense(ctx context.Context) error {
	if err := m.store.ClearSelectedLicense(ctx); err != nil {
		return err
	}

	m.mutex.Lock()
	m.selected = nil
	m.mutex.Unlock()
	return nil
}

// UpdateInvestment validates and submits a new investment amount for the
// selected license, persisting the rescaled settings the backend returns.
func (m *Manager) UpdateInvestment(ctx context.Context, amount decimal.Decimal) (*models.EASettings, string, error) {
	if amount.LessThan(MinimumInvestment) {
		return nil, "", fmt.Errorf("%w: investment must be at least $%s", store.ErrValidation, MinimumInvestment.String())
	}

	m.mutex.RLock()
	selected := m.selected
	m.mutex.RUnlock()
	if selected == nil {
		return nil, "", store.ErrNoSelectedLicense
	}

	settings, message, err := m.backend.UpdateInvestment(ctx, selected.LicenseKey, amount)
	if err != nil {
		return nil, "", err
	}

	if err := m.applySettings(ctx, selected.LicenseKey, settings); err != nil {
		return nil, "", err
	}
	return settings, message, nil
}

// User returns the in-memory user, or nil when logged out.
func (m *Manager) User() *models.User {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.user == nil {
		return nil
	}
	copied := *m.user
	return &copied
}

// SelectedLicense returns a copy of the active license, or nil.
func (m *Manager) SelectedLicense() *models.License {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.selected == nil {
		return nil
	}
	copied := *m.selected
	return &copied
}

// Licenses returns a copy of the in-memory license collection.
func (m *Manager) Licenses() []models.License {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	licenses := make([]models.License, len(m.licenses))
	copy(licenses, m.licenses)
	return licenses
}

// CaptureReferralCode stores a landing-page referral code for later
// attribution at registration time.
func (m *Manager) CaptureReferralCode(ctx context.Context, code string) error {
	if code == "" {
		return nil
	}
	return m.store.SetMarker(ctx, store.MarkerReferralCode, code)
}
