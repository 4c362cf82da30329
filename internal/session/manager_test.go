package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"marks-ai-client-go/internal/backend"
	"marks-ai-client-go/internal/database"
	"marks-ai-client-go/internal/models"
	"marks-ai-client-go/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mux *http.ServeMux
	srv *httptest.Server

	loginCalls      atomic.Int64
	licensesCalls   atomic.Int64
	settingsCalls   atomic.Int64
	investmentCalls atomic.Int64

	lastSettingsBody map[string]string
}

func demoLicenses() []models.License {
	return []models.License{
		{LicenseKey: "ABCD-1234", PlanName: "Pro", Status: "active", MT5Account: "100234"},
		{LicenseKey: "EFGH-5678", PlanName: "Starter", Status: "expired"},
	}
}

func newFakeBackend(t *testing.T) *fakeBackend {
	f := &fakeBackend{mux: http.NewServeMux()}

	f.mux.HandleFunc("/login/", func(w http.ResponseWriter, r *http.Request) {
		f.loginCalls.Add(1)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "demo123456" {
			writeJSON(w, map[string]any{"success": false, "message": "Invalid credentials"})
			return
		}
		writeJSON(w, map[string]any{
			"success":  true,
			"user":     models.User{Email: body["email"], Name: "Demo User", Username: "demo"},
			"licenses": demoLicenses(),
		})
	})

	f.mux.HandleFunc("/licenses/", func(w http.ResponseWriter, r *http.Request) {
		f.licensesCalls.Add(1)
		writeJSON(w, map[string]any{"success": true, "licenses": demoLicenses()})
	})

	f.mux.HandleFunc("/settings/", func(w http.ResponseWriter, r *http.Request) {
		f.settingsCalls.Add(1)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.lastSettingsBody = body
		writeJSON(w, map[string]any{
			"success":  true,
			"settings": models.EASettings{Symbol: body["symbol"], MaxOrders: 10},
		})
	})

	f.mux.HandleFunc("/update-investment/", func(w http.ResponseWriter, r *http.Request) {
		f.investmentCalls.Add(1)
		writeJSON(w, map[string]any{
			"success":  true,
			"message":  "Investment updated",
			"settings": models.EASettings{Symbol: "BTCUSD", MaxOrders: 4},
		})
	})

	f.srv = httptest.NewServer(f.mux)
	t.Cleanup(f.srv.Close)
	return f
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func newTestStore(t *testing.T) *database.Service {
	// Single connection so the in-memory database is shared
	service, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(service.Close)
	return service
}

func mustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	parsed, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return parsed
}

func newTestManager(t *testing.T, f *fakeBackend) (*Manager, *database.Service) {
	backendService, err := backend.NewService(models.BackendConfig{
		BaseURL:        f.srv.URL,
		RequestTimeout: 5 * time.Second,
	})
	require.NoError(t, err)

	sessionStore := newTestStore(t)
	return NewManager(sessionStore, backendService), sessionStore
}

func TestLogin_PersistsSession(t *testing.T) {
	f := newFakeBackend(t)
	manager, sessionStore := newTestManager(t, f)
	ctx := context.Background()

	user, err := manager.Login(ctx, "demo@marksai.com", "demo123456")
	require.NoError(t, err)
	assert.Equal(t, "demo@marksai.com", user.Email)

	persisted, err := sessionStore.GetUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "demo@marksai.com", persisted.Email)

	licenses, err := sessionStore.GetLicenses(ctx)
	require.NoError(t, err)
	assert.Len(t, licenses, 2)
}

func TestLogin_BadPassword(t *testing.T) {
	f := newFakeBackend(t)
	manager, sessionStore := newTestManager(t, f)
	ctx := context.Background()

	_, err := manager.Login(ctx, "demo@marksai.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrBackendRejected)
	assert.Contains(t, err.Error(), "Invalid credentials")

	persisted, err := sessionStore.GetUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, persisted)
}

func TestInitialize_NotAuthenticated(t *testing.T) {
	f := newFakeBackend(t)
	manager, _ := newTestManager(t, f)

	_, err := manager.Initialize(context.Background())
	assert.ErrorIs(t, err, store.ErrNotAuthenticated)
	assert.Zero(t, f.licensesCalls.Load(), "no license refresh without a user")
}

func TestSelectLicense_FetchesSettingsWithDefaultSymbol(t *testing.T) {
	f := newFakeBackend(t)
	manager, _ := newTestManager(t, f)
	ctx := context.Background()

	_, err := manager.Login(ctx, "demo@marksai.com", "demo123456")
	require.NoError(t, err)

	selected, outcome, err := manager.SelectLicense(ctx, "ABCD-1234")
	require.NoError(t, err)
	assert.False(t, outcome.Stale)
	assert.Equal(t, "ABCD-1234", selected.LicenseKey)

	require.NotNil(t, f.lastSettingsBody)
	assert.Equal(t, "ABCD-1234", f.lastSettingsBody["license_key"])
	assert.Equal(t, "BTCUSD", f.lastSettingsBody["symbol"])
	assert.Equal(t, "100234", f.lastSettingsBody["mt5_account"])

	// Selection invariant: the license keeps its slot in the collection and
	// changes only through the settings fetch
	licenses := manager.Licenses()
	require.Len(t, licenses, 2)
	assert.Equal(t, "ABCD-1234", licenses[0].LicenseKey)
	assert.Equal(t, "Pro", licenses[0].PlanName)
	require.NotNil(t, licenses[0].Settings)
	assert.Equal(t, "BTCUSD", licenses[0].Settings.Symbol)
	assert.Nil(t, licenses[1].Settings)
}

func TestSelectLicense_NotFound(t *testing.T) {
	f := newFakeBackend(t)
	manager, _ := newTestManager(t, f)
	ctx := context.Background()

	_, err := manager.Login(ctx, "demo@marksai.com", "demo123456")
	require.NoError(t, err)

	_, _, err = manager.SelectLicense(ctx, "ZZZZ-0000")
	assert.ErrorIs(t, err, store.ErrLicenseNotFound)
	assert.Zero(t, f.settingsCalls.Load())
}

func TestSelectLicense_PersistenceRoundTrip(t *testing.T) {
	f := newFakeBackend(t)
	manager, sessionStore := newTestManager(t, f)
	ctx := context.Background()

	_, err := manager.Login(ctx, "demo@marksai.com", "demo123456")
	require.NoError(t, err)
	_, _, err = manager.SelectLicense(ctx, "ABCD-1234")
	require.NoError(t, err)

	// Simulated restart: a fresh manager over the same store
	backendService, err := backend.NewService(models.BackendConfig{
		BaseURL:        f.srv.URL,
		RequestTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	reloaded := NewManager(sessionStore, backendService)

	outcome, err := reloaded.Initialize(ctx)
	require.NoError(t, err)
	assert.False(t, outcome.Stale)

	selected := reloaded.SelectedLicense()
	require.NotNil(t, selected)
	assert.Equal(t, "ABCD-1234", selected.LicenseKey)
	require.NotNil(t, selected.Settings)
	assert.Equal(t, "BTCUSD", selected.Settings.Symbol)
}

func TestClearSelectedLicense(t *testing.T) {
	f := newFakeBackend(t)
	manager, sessionStore := newTestManager(t, f)
	ctx := context.Background()

	_, err := manager.Login(ctx, "demo@marksai.com", "demo123456")
	require.NoError(t, err)
	_, _, err = manager.SelectLicense(ctx, "ABCD-1234")
	require.NoError(t, err)

	require.NoError(t, manager.ClearSelectedLicense(ctx))
	assert.Nil(t, manager.SelectedLicense())

	_, err = sessionStore.GetSelectedLicense(ctx)
	assert.ErrorIs(t, err, store.ErrNoSelectedLicense)

	// License collection untouched
	licenses, err := sessionStore.GetLicenses(ctx)
	require.NoError(t, err)
	assert.Len(t, licenses, 2)
}

func TestRefreshLicenses_NetworkFailureKeepsCache(t *testing.T) {
	f := newFakeBackend(t)
	manager, sessionStore := newTestManager(t, f)
	ctx := context.Background()

	_, err := manager.Login(ctx, "demo@marksai.com", "demo123456")
	require.NoError(t, err)

	f.srv.Close()

	outcome := manager.RefreshLicenses(ctx)
	assert.True(t, outcome.Stale)
	assert.Error(t, outcome.Err)

	licenses, err := sessionStore.GetLicenses(ctx)
	require.NoError(t, err)
	assert.Len(t, licenses, 2, "cached copy survives the failed refresh")
}

func TestUpdateInvestment_Guard(t *testing.T) {
	f := newFakeBackend(t)
	manager, _ := newTestManager(t, f)
	ctx := context.Background()

	_, err := manager.Login(ctx, "demo@marksai.com", "demo123456")
	require.NoError(t, err)
	_, _, err = manager.SelectLicense(ctx, "ABCD-1234")
	require.NoError(t, err)

	_, _, err = manager.UpdateInvestment(ctx, mustDecimal(t, "50"))
	assert.ErrorIs(t, err, store.ErrValidation)
	assert.Zero(t, f.investmentCalls.Load(), "validation failures never reach the network")

	settings, message, err := manager.UpdateInvestment(ctx, mustDecimal(t, "2000"))
	require.NoError(t, err)
	assert.Equal(t, "Investment updated", message)
	assert.Equal(t, 4, settings.MaxOrders)
	assert.Equal(t, int64(1), f.investmentCalls.Load())
}

func TestUpdateInvestment_NoSelection(t *testing.T) {
	f := newFakeBackend(t)
	manager, _ := newTestManager(t, f)
	ctx := context.Background()

	_, err := manager.Login(ctx, "demo@marksai.com", "demo123456")
	require.NoError(t, err)

	_, _, err = manager.UpdateInvestment(ctx, mustDecimal(t, "500"))
	assert.ErrorIs(t, err, store.ErrNoSelectedLicense)
}

func TestLogout_ClearsEverything(t *testing.T) {
	f := newFakeBackend(t)
	manager, sessionStore := newTestManager(t, f)
	ctx := context.Background()

	_, err := manager.Login(ctx, "demo@marksai.com", "demo123456")
	require.NoError(t, err)
	require.NoError(t, manager.Logout(ctx))

	assert.Nil(t, manager.User())
	user, err := sessionStore.GetUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}
