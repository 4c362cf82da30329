package database

import (
	"context"
	"errors"
	"testing"

	"marks-ai-client-go/internal/models"
	"marks-ai-client-go/internal/store"

	"github.com/shopspring/decimal"
)

func testLicense(key string) models.License {
	return models.License{
		LicenseKey: key,
		PlanName:   "Pro",
		Status:     "active",
		ExpiresAt:  "2026-12-31T00:00:00Z",
		MT5Account: "100234",
		Settings: &models.EASettings{
			Symbol:           "BTCUSD",
			LotSize:          decimal.RequireFromString("0.05"),
			InvestmentAmount: decimal.RequireFromString("500"),
			GapPips:          decimal.RequireFromString("25"),
			MaxOrders:        10,
		},
	}
}

func TestReplaceLicenses_PreservesOrder(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	licenses := []models.License{testLicense("ABCD-1234"), testLicense("EFGH-5678"), testLicense("IJKL-9012")}
	if err := service.ReplaceLicenses(ctx, licenses); err != nil {
		t.Fatalf("ReplaceLicenses failed: %v", err)
	}

	got, err := service.GetLicenses(ctx)
	if err != nil {
		t.Fatalf("GetLicenses failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 licenses, got %d", len(got))
	}
	for i, want := range []string{"ABCD-1234", "EFGH-5678", "IJKL-9012"} {
		if got[i].LicenseKey != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, got[i].LicenseKey)
		}
	}

	// Replace with a shorter list; stale entries must disappear
	if err := service.ReplaceLicenses(ctx, licenses[:1]); err != nil {
		t.Fatalf("Second ReplaceLicenses failed: %v", err)
	}
	got, err = service.GetLicenses(ctx)
	if err != nil {
		t.Fatalf("GetLicenses failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Expected 1 license after replacement, got %d", len(got))
	}
}

func TestReplaceLicenses_SettingsRoundTrip(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	license := testLicense("ABCD-1234")
	if err := service.ReplaceLicenses(ctx, []models.License{license}); err != nil {
		t.Fatalf("ReplaceLicenses failed: %v", err)
	}

	got, err := service.GetLicenses(ctx)
	if err != nil {
		t.Fatalf("GetLicenses failed: %v", err)
	}
	settings := got[0].Settings
	if settings == nil {
		t.Fatal("Expected settings to round-trip, got nil")
	}
	if settings.Symbol != "BTCUSD" {
		t.Errorf("Expected symbol BTCUSD, got %s", settings.Symbol)
	}
	if !settings.LotSize.Equal(decimal.RequireFromString("0.05")) {
		t.Errorf("Expected lot size 0.05, got %s", settings.LotSize.String())
	}
	if settings.MaxOrders != 10 {
		t.Errorf("Expected max orders 10, got %d", settings.MaxOrders)
	}
}

func TestUpdateLicense_NotFound(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	err := service.UpdateLicense(context.Background(), testLicense("MISSING-0000"))
	if !errors.Is(err, store.ErrLicenseNotFound) {
		t.Errorf("Expected ErrLicenseNotFound, got %v", err)
	}
}

func TestUpdateLicense_InPlace(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	licenses := []models.License{testLicense("ABCD-1234"), testLicense("EFGH-5678")}
	if err := service.ReplaceLicenses(ctx, licenses); err != nil {
		t.Fatalf("ReplaceLicenses failed: %v", err)
	}

	updated := testLicense("ABCD-1234")
	updated.Status = "expired"
	if err := service.UpdateLicense(ctx, updated); err != nil {
		t.Fatalf("UpdateLicense failed: %v", err)
	}

	got, err := service.GetLicenses(ctx)
	if err != nil {
		t.Fatalf("GetLicenses failed: %v", err)
	}
	// Updated license keeps its original position
	if got[0].LicenseKey != "ABCD-1234" || got[0].Status != "expired" {
		t.Errorf("Expected ABCD-1234 expired at position 0, got %s %s", got[0].LicenseKey, got[0].Status)
	}
	if got[1].Status != "active" {
		t.Errorf("Expected other license untouched, got status %s", got[1].Status)
	}
}

func TestSelectedLicense_RoundTrip(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	license := testLicense("ABCD-1234")
	if err := service.SaveSelectedLicense(ctx, license); err != nil {
		t.Fatalf("SaveSelectedLicense failed: %v", err)
	}

	got, err := service.GetSelectedLicense(ctx)
	if err != nil {
		t.Fatalf("GetSelectedLicense failed: %v", err)
	}
	if got.LicenseKey != "ABCD-1234" {
		t.Errorf("Expected ABCD-1234, got %s", got.LicenseKey)
	}
	if got.Settings == nil || got.Settings.Symbol != "BTCUSD" {
		t.Errorf("Expected settings snapshot to survive, got %+v", got.Settings)
	}
}

func TestSelectedLicense_ClearInvariant(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	license := testLicense("ABCD-1234")
	if err := service.ReplaceLicenses(ctx, []models.License{license}); err != nil {
		t.Fatalf("ReplaceLicenses failed: %v", err)
	}
	if err := service.SaveSelectedLicense(ctx, license); err != nil {
		t.Fatalf("SaveSelectedLicense failed: %v", err)
	}

	if err := service.ClearSelectedLicense(ctx); err != nil {
		t.Fatalf("ClearSelectedLicense failed: %v", err)
	}

	_, err := service.GetSelectedLicense(ctx)
	if !errors.Is(err, store.ErrNoSelectedLicense) {
		t.Errorf("Expected ErrNoSelectedLicense, got %v", err)
	}

	// License cache must be untouched
	licenses, err := service.GetLicenses(ctx)
	if err != nil {
		t.Fatalf("GetLicenses failed: %v", err)
	}
	if len(licenses) != 1 {
		t.Errorf("Expected license cache untouched, got %d entries", len(licenses))
	}
}

func TestSaveSelectedSettings_IgnoresStaleLicense(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	if err := service.SaveSelectedLicense(ctx, testLicense("ABCD-1234")); err != nil {
		t.Fatalf("SaveSelectedLicense failed: %v", err)
	}

	// Settings arriving for a different key must not overwrite the selection
	stale := &models.EASettings{Symbol: "XAUUSD"}
	if err := service.SaveSelectedSettings(ctx, "EFGH-5678", stale); err != nil {
		t.Fatalf("SaveSelectedSettings failed: %v", err)
	}

	got, err := service.GetSelectedLicense(ctx)
	if err != nil {
		t.Fatalf("GetSelectedLicense failed: %v", err)
	}
	if got.Settings.Symbol != "BTCUSD" {
		t.Errorf("Expected selection settings untouched, got symbol %s", got.Settings.Symbol)
	}

	// Matching key replaces the snapshot
	fresh := &models.EASettings{Symbol: "XAUUSD"}
	if err := service.SaveSelectedSettings(ctx, "ABCD-1234", fresh); err != nil {
		t.Fatalf("SaveSelectedSettings failed: %v", err)
	}
	got, err = service.GetSelectedLicense(ctx)
	if err != nil {
		t.Fatalf("GetSelectedLicense failed: %v", err)
	}
	if got.Settings.Symbol != "XAUUSD" {
		t.Errorf("Expected fresh settings, got symbol %s", got.Settings.Symbol)
	}
}
