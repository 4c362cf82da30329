package store

import (
	"context"
	"errors"

	"marks-ai-client-go/internal/models"
)

// Sentinel errors shared across the client.
var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrNoSelectedLicense = errors.New("no license selected")
	ErrLicenseNotFound   = errors.New("license not found")
	ErrBackendRejected   = errors.New("backend rejected request")
	ErrValidation        = errors.New("validation failed")
)

// Marker keys persisted alongside the session.
const (
	MarkerReferralCode    = "referral_code"
	MarkerDismissedUpdate = "dismissed_ea_update"
)

// SessionStore is the durable client storage contract: who is logged in,
// the cached license list, the selected license and its settings, plus
// small key/value markers. All writes happen synchronously before any
// network response is awaited, so a restart never loses the last-viewed
// license even when the backend is unreachable.
type SessionStore interface {
	// --- Session ---
	SaveUser(ctx context.Context, user models.User) error
	GetUser(ctx context.Context) (*models.User, error)
	ClearSession(ctx context.Context) error

	// --- License cache ---
	ReplaceLicenses(ctx context.Context, licenses []models.License) error
	GetLicenses(ctx context.Context) ([]models.License, error)
	UpdateLicense(ctx context.Context, license models.License) error

	// --- Selected license ---
	SaveSelectedLicense(ctx context.Context, license models.License) error
	GetSelectedLicense(ctx context.Context) (*models.License, error)
	ClearSelectedLicense(ctx context.Context) error
	SaveSelectedSettings(ctx context.Context, licenseKey string, settings *models.EASettings) error

	// --- Markers ---
	SetMarker(ctx context.Context, key, value string) error
	GetMarker(ctx context.Context, key string) (string, error)
	DeleteMarker(ctx context.Context, key string) error

	// --- Lifecycle ---
	Close()
}
