package database

import (
	"context"
	"database/sql"
	"testing"

	"marks-ai-client-go/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDb(t *testing.T) (*Service, func()) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	service := &Service{db: db}

	// Use the actual schema initialization
	if err := service.InitSchema(); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return service, cleanup
}

func TestSaveUser_RoundTrip(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user := models.User{Email: "demo@marksai.com", Name: "Demo User", Username: "demo"}

	if err := service.SaveUser(ctx, user); err != nil {
		t.Fatalf("SaveUser failed: %v", err)
	}

	got, err := service.GetUser(ctx)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected a persisted user, got nil")
	}
	if got.Email != user.Email {
		t.Errorf("Expected email %s, got %s", user.Email, got.Email)
	}
	if got.Name != user.Name {
		t.Errorf("Expected name %s, got %s", user.Name, got.Name)
	}
}

func TestSaveUser_ReplacesPrevious(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	if err := service.SaveUser(ctx, models.User{Email: "first@marksai.com"}); err != nil {
		t.Fatalf("First SaveUser failed: %v", err)
	}
	if err := service.SaveUser(ctx, models.User{Email: "second@marksai.com"}); err != nil {
		t.Fatalf("Second SaveUser failed: %v", err)
	}

	got, err := service.GetUser(ctx)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Email != "second@marksai.com" {
		t.Errorf("Expected second@marksai.com, got %s", got.Email)
	}
}

func TestSaveUser_EmptyEmail(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	if err := service.SaveUser(context.Background(), models.User{}); err == nil {
		t.Fatal("Expected error for empty email, got nil")
	}
}

func TestGetUser_NoSession(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	got, err := service.GetUser(context.Background())
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil user for empty session, got %+v", got)
	}
}

func TestClearSession_RemovesEverythingButMarkers(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	if err := service.SaveUser(ctx, models.User{Email: "demo@marksai.com"}); err != nil {
		t.Fatalf("SaveUser failed: %v", err)
	}
	license := models.License{LicenseKey: "ABCD-1234", PlanName: "Pro", Status: "active"}
	if err := service.ReplaceLicenses(ctx, []models.License{license}); err != nil {
		t.Fatalf("ReplaceLicenses failed: %v", err)
	}
	if err := service.SaveSelectedLicense(ctx, license); err != nil {
		t.Fatalf("SaveSelectedLicense failed: %v", err)
	}
	if err := service.SetMarker(ctx, "referral_code", "REF-ABC12345"); err != nil {
		t.Fatalf("SetMarker failed: %v", err)
	}

	if err := service.ClearSession(ctx); err != nil {
		t.Fatalf("ClearSession failed: %v", err)
	}

	user, err := service.GetUser(ctx)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if user != nil {
		t.Errorf("Expected user cleared, got %+v", user)
	}

	licenses, err := service.GetLicenses(ctx)
	if err != nil {
		t.Fatalf("GetLicenses failed: %v", err)
	}
	if len(licenses) != 0 {
		t.Errorf("Expected empty license cache, got %d", len(licenses))
	}

	marker, err := service.GetMarker(ctx, "referral_code")
	if err != nil {
		t.Fatalf("GetMarker failed: %v", err)
	}
	if marker != "REF-ABC12345" {
		t.Errorf("Expected marker to survive logout, got %q", marker)
	}
}

func TestMarkers_SetGetDelete(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	if err := service.SetMarker(ctx, "dismissed_ea_update", "3.0.1"); err != nil {
		t.Fatalf("SetMarker failed: %v", err)
	}
	if err := service.SetMarker(ctx, "dismissed_ea_update", "3.0.2"); err != nil {
		t.Fatalf("SetMarker upsert failed: %v", err)
	}

	value, err := service.GetMarker(ctx, "dismissed_ea_update")
	if err != nil {
		t.Fatalf("GetMarker failed: %v", err)
	}
	if value != "3.0.2" {
		t.Errorf("Expected 3.0.2, got %s", value)
	}

	if err := service.DeleteMarker(ctx, "dismissed_ea_update"); err != nil {
		t.Fatalf("DeleteMarker failed: %v", err)
	}
	value, err = service.GetMarker(ctx, "dismissed_ea_update")
	if err != nil {
		t.Fatalf("GetMarker after delete failed: %v", err)
	}
	if value != "" {
		t.Errorf("Expected empty marker after delete, got %s", value)
	}
}
