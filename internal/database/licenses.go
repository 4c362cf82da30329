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

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"marks-ai-client-go/internal/models"
	"marks-ai-client-go/internal/store"

	"go.uber.org/zap"
)

// Settings snapshots are stored as JSON text; decimals marshal as strings
// so no precision is lost in the round trip.

func encodeSettings(settings *models.EASettings) (sql.NullString, error) {
	if settings == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("unable to encode settings: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeSettings(raw sql.NullString) (*models.EASettings, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var settings models.EASettings
	if err := json.Unmarshal([]byte(raw.String), &settings); err != nil {
		return nil, fmt.Errorf("unable to decode settings: %w", err)
	}
	return &settings, nil
}

// ReplaceLicenses swaps the whole cached license list in one transaction,
// preserving the backend's ordering.
func (s *Service) ReplaceLicenses(ctx context.Context, licenses []models.License) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("unable to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, queryDeleteLicenses); err != nil {
		return fmt.Errorf("unable to clear license cache: %w", err)
	}

	for i, license := range licenses {
		settings, err := encodeSettings(license.Settings)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, queryInsertLicense,
			license.LicenseKey, license.PlanName, license.Status,
			license.ExpiresAt, license.MT5Account, settings, i)
		if err != nil {
			return fmt.Errorf("unable to cache license %s: %w", license.LicenseKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("unable to commit license cache: %w", err)
	}

	zap.L().Debug("License cache replaced", zap.Int("count", len(licenses)))
	return nil
}

// GetLicenses returns the cached license list in backend order.
func (s *Service) GetLicenses(ctx context.Context) ([]models.License, error) {
	rows, err := s.db.QueryContext(ctx, queryGetLicenses)
	if err != nil {
		return nil, fmt.Errorf("unable to read license cache: %w", err)
	}
	defer rows.Close()

	licenses := make([]models.License, 0)
	for rows.Next() {
		var license models.License
		var settings sql.NullString
		if err := rows.Scan(&license.LicenseKey, &license.PlanName, &license.Status,
			&license.ExpiresAt, &license.MT5Account, &settings); err != nil {
			return nil, fmt.Errorf("unable to scan license row: %w", err)
		}
		license.Settings, err = decodeSettings(settings)
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, license)
	}
	return licenses, rows.Err()
}

// UpdateLicense rewrites a single cached license in place, matched by key.
func (s *Service) UpdateLicense(ctx context.Context, license models.License) error {
	settings, err := encodeSettings(license.Settings)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, queryUpdateLicense,
		license.PlanName, license.Status, license.ExpiresAt,
		license.MT5Account, settings, license.LicenseKey)
	if err != nil {
		return fmt.Errorf("unable to update cached license: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrLicenseNotFound
	}
	return nil
}

// SaveSelectedLicense persists the active license selection.
func (s *Service) SaveSelectedLicense(ctx context.Context, license models.License) error {
	settings, err := encodeSettings(license.Settings)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, queryUpsertSelectedLicense,
		license.LicenseKey, license.PlanName, license.Status,
		license.ExpiresAt, license.MT5Account, settings)
	if err != nil {
		return fmt.Errorf("unable to save selected license: %w", err)
	}

	zap.L().Debug("Selected license saved", zap.String("license_key", license.LicenseKey))
	return nil
}

// GetSelectedLicense returns the persisted selection, or ErrNoSelectedLicense.
func (s *Service) GetSelectedLicense(ctx context.Context) (*models.License, error) {
	var license models.License
	var settings sql.NullString
	err := s.db.QueryRowContext(ctx, queryGetSelectedLicense).Scan(
		&license.LicenseKey, &license.PlanName, &license.Status,
		&license.ExpiresAt, &license.MT5Account, &settings)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNoSelectedLicense
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read selected license: %w", err)
	}

	license.Settings, err = decodeSettings(settings)
	if err != nil {
		return nil, err
	}
	return &license, nil
}

// ClearSelectedLicense drops the selection. The license cache is untouched.
func (s *Service) ClearSelectedLicense(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, queryDeleteSelectedLicense); err != nil {
		return fmt.Errorf("unable to clear selected license: %w", err)
	}
	return nil
}

// SaveSelectedSettings updates the settings snapshot of the current
// selection. A no-op when the selection has moved to a different license
// since the settings fetch was issued.
func (s *Service) SaveSelectedSettings(ctx context.Context, licenseKey string, settings *models.EASettings) error {
	encoded, err := encodeSettings(settings)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, queryUpdateSelectedSettings, encoded, licenseKey)
	if err != nil {
		return fmt.Errorf("unable to save selected settings: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		zap.L().Debug("Settings arrived for a license that is no longer selected",
			zap.String("license_key", licenseKey))
	}
	return nil
}
