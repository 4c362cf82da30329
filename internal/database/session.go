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

	"marks-ai-client-go/internal/models"

	"go.uber.org/zap"
)

// SaveUser stores the authenticated user, replacing any previous session.
func (s *Service) SaveUser(ctx context.Context, user models.User) error {
	if user.Email == "" {
		return fmt.Errorf("user email cannot be empty")
	}

	_, err := s.db.ExecContext(ctx, queryUpsertSession, user.Email, user.Name, user.Username, user.Joined)
	if err != nil {
		return fmt.Errorf("unable to save session: %w", err)
	}

	zap.L().Debug("Session saved", zap.String("email", user.Email))
	return nil
}

// GetUser returns the persisted user, or nil when nobody is logged in.
func (s *Service) GetUser(ctx context.Context) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, queryGetSession).Scan(&user.Email, &user.Name, &user.Username, &user.Joined)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read session: %w", err)
	}
	return &user, nil
}

// ClearSession removes the user, the license cache, and the selection in
// one transaction. Markers survive logout.
func (s *Service) ClearSession(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("unable to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, query := range []string{queryDeleteSession, queryDeleteLicenses, queryDeleteSelectedLicense} {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("unable to clear session: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("unable to commit session clear: %w", err)
	}

	zap.L().Info("Session cleared")
	return nil
}
