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
	"errors"
	"fmt"
)

// SetMarker stores a small key/value marker (captured referral code,
// dismissed EA-update version).
func (s *Service) SetMarker(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("marker key cannot be empty")
	}
	if _, err := s.db.ExecContext(ctx, queryUpsertMarker, key, value); err != nil {
		return fmt.Errorf("unable to set marker %s: %w", key, err)
	}
	return nil
}

// GetMarker returns the marker value, or "" when it was never set.
func (s *Service) GetMarker(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, queryGetMarker, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("unable to read marker %s: %w", key, err)
	}
	return value, nil
}

// DeleteMarker removes a marker if present.
func (s *Service) DeleteMarker(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, queryDeleteMarker, key); err != nil {
		return fmt.Errorf("unable to delete marker %s: %w", key, err)
	}
	return nil
}
