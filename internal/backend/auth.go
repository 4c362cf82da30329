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

package backend

import (
	"context"
	"fmt"

	"marks-ai-client-go/internal/models"

	"go.uber.org/zap"
)

// AuthResult is what the backend hands back after login or registration.
type AuthResult struct {
	User     models.User
	Licenses []models.License
	Message  string
}

type authResponse struct {
	apiEnvelope
	User     *models.User     `json:"user"`
	Licenses []models.License `json:"licenses"`
}

func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var resp authResponse
	if err := s.postJSON(ctx, "/login/", body, &resp); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if resp.User == nil {
		return nil, fmt.Errorf("login response missing user")
	}

	zap.L().Info("Logged in",
		zap.String("email", resp.User.Email),
		zap.Int("licenses", len(resp.Licenses)))

	return &AuthResult{User: *resp.User, Licenses: resp.Licenses, Message: resp.Message}, nil
}

// Register creates an account. referralCode may be empty; when set the
// backend attributes the signup to the referring user.
func (s *Service) Register(ctx context.Context, email, password, name, referralCode string) (*AuthResult, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	}
	if referralCode != "" {
		body["referral_code"] = referralCode
	}

	var resp authResponse
	if err := s.postJSON(ctx, "/register/", body, &resp); err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	if resp.User == nil {
		return nil, fmt.Errorf("registration response missing user")
	}

	zap.L().Info("Registered",
		zap.String("email", resp.User.Email),
		zap.Bool("referred", referralCode != ""))

	return &AuthResult{User: *resp.User, Licenses: resp.Licenses, Message: resp.Message}, nil
}

type passwordResetResponse struct {
	apiEnvelope
}

// RequestPasswordReset asks the backend to email a reset link.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	var resp passwordResetResponse
	if err := s.postJSON(ctx, "/password-reset/request/", map[string]string{"email": email}, &resp); err != nil {
		return "", fmt.Errorf("password reset request failed: %w", err)
	}
	return resp.Message, nil
}

// ConfirmPasswordReset completes a reset using the emailed uid and token.
func (s *Service) ConfirmPasswordReset(ctx context.Context, uid, token, newPassword string) (string, error) {
	body := map[string]string{
		"uid":          uid,
		"token":        token,
		"new_password": newPassword,
	}

	var resp passwordResetResponse
	if err := s.postJSON(ctx, "/password-reset/confirm/", body, &resp); err != nil {
		return "", fmt.Errorf("password reset confirmation failed: %w", err)
	}
	return resp.Message, nil
}
