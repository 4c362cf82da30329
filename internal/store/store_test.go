package store

import (
	"testing"
)

// Compile-time checks that the interface is importable and usable.
func TestSessionStoreInterfaceExists(t *testing.T) {
	// This test simply validates that the SessionStore interface compiles
	// and the sentinel errors are accessible.
	_ = ErrNotAuthenticated
	_ = ErrNoSelectedLicense
	_ = ErrLicenseNotFound
	_ = ErrBackendRejected
	_ = ErrValidation

	// Ensure the interface is non-nil type.
	var _ SessionStore
}
