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

const (
	// Session queries
	queryUpsertSession = `
		INSERT INTO session (id, email, name, username, joined)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			username = excluded.username,
			joined = excluded.joined,
			updated_at = CURRENT_TIMESTAMP`

	queryGetSession = `
		SELECT email, name, username, joined
		FROM session
		WHERE id = 1`

	queryDeleteSession = `
		DELETE FROM session`

	// License cache queries
	queryDeleteLicenses = `
		DELETE FROM licenses`

	queryInsertLicense = `
		INSERT INTO licenses (license_key, plan_name, status, expires_at, mt5_account, settings, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(license_key) DO UPDATE SET
			plan_name = excluded.plan_name,
			status = excluded.status,
			expires_at = excluded.expires_at,
			mt5_account = excluded.mt5_account,
			settings = excluded.settings,
			position = excluded.position,
			updated_at = CURRENT_TIMESTAMP`

	queryGetLicenses = `
		SELECT license_key, plan_name, status, expires_at, mt5_account, settings
		FROM licenses
		ORDER BY position`

	queryUpdateLicense = `
		UPDATE licenses
		SET plan_name = ?, status = ?, expires_at = ?, mt5_account = ?, settings = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE license_key = ?`

	// Selected license queries
	queryUpsertSelectedLicense = `
		INSERT INTO selected_license (id, license_key, plan_name, status, expires_at, mt5_account, settings)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			license_key = excluded.license_key,
			plan_name = excluded.plan_name,
			status = excluded.status,
			expires_at = excluded.expires_at,
			mt5_account = excluded.mt5_account,
			settings = excluded.settings,
			updated_at = CURRENT_TIMESTAMP`

	queryGetSelectedLicense = `
		SELECT license_key, plan_name, status, expires_at, mt5_account, settings
		FROM selected_license
		WHERE id = 1`

	queryDeleteSelectedLicense = `
		DELETE FROM selected_license`

	queryUpdateSelectedSettings = `
		UPDATE selected_license
		SET settings = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = 1 AND license_key = ?`

	// Marker queries
	queryUpsertMarker = `
		INSERT INTO markers (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP`

	queryGetMarker = `
		SELECT value FROM markers WHERE key = ?`

	queryDeleteMarker = `
		DELETE FROM markers WHERE key = ?`
)
