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
	"net/url"

	"marks-ai-client-go/internal/models"

	"go.uber.org/zap"
)

type plansResponse struct {
	apiEnvelope
	Plans []models.Plan `json:"plans"`
}

func (s *Service) ListPlans(ctx context.Context) ([]models.Plan, error) {
	var resp plansResponse
	if err := s.getJSON(ctx, "/plans/", nil, &resp); err != nil {
		return nil, fmt.Errorf("unable to list plans: %w", err)
	}
	return resp.Plans, nil
}

// SubscribeResult carries the newly issued license plus the refreshed list.
type SubscribeResult struct {
	License  *models.License
	Licenses []models.License
	Message  string
}

type subscribeResponse struct {
	apiEnvelope
	License  *models.License  `json:"license"`
	Licenses []models.License `json:"licenses"`
}

func (s *Service) Subscribe(ctx context.Context, email string, planId int, mt5Account string) (*SubscribeResult, error) {
	body := map[string]any{
		"email":       email,
		"plan_id":     planId,
		"mt5_account": mt5Account,
	}

	var resp subscribeResponse
	if err := s.postJSON(ctx, "/subscribe/", body, &resp); err != nil {
		return nil, fmt.Errorf("subscription failed: %w", err)
	}

	zap.L().Info("Subscribed to plan",
		zap.String("email", email),
		zap.Int("plan_id", planId))

	return &SubscribeResult{License: resp.License, Licenses: resp.Licenses, Message: resp.Message}, nil
}

type eaProductsResponse struct {
	apiEnvelope
	Products []models.EAProduct `json:"products"`
}

func (s *Service) ListEAProducts(ctx context.Context) ([]models.EAProduct, error) {
	var resp eaProductsResponse
	if err := s.getJSON(ctx, "/ea-products/", nil, &resp); err != nil {
		return nil, fmt.Errorf("unable to list EA products: %w", err)
	}
	return resp.Products, nil
}

type eaUpdateResponse struct {
	apiEnvelope
	HasUpdate bool             `json:"has_update"`
	Update    *models.EAUpdate `json:"update"`
}

// EAUpdateStatus reports whether a newer EA build is available.
func (s *Service) EAUpdateStatus(ctx context.Context) (*models.EAUpdate, error) {
	var resp eaUpdateResponse
	if err := s.getJSON(ctx, "/ea-update-status/", nil, &resp); err != nil {
		return nil, fmt.Errorf("unable to check EA update status: %w", err)
	}
	if !resp.HasUpdate {
		return nil, nil
	}
	if resp.Update == nil {
		return nil, fmt.Errorf("update response missing update details")
	}
	return resp.Update, nil
}

type messageResponse struct {
	apiEnvelope
}

// ContactParams carries a support-form submission.
type ContactParams struct {
	Name     string
	Email    string
	Subject  string
	Message  string
	Category string
}

// Contact submits the support form. A transport failure is an error, never
// a silent success; the user must know when the message did not go out.
func (s *Service) Contact(ctx context.Context, params ContactParams) (string, error) {
	body := map[string]string{
		"name":     params.Name,
		"email":    params.Email,
		"subject":  params.Subject,
		"message":  params.Message,
		"category": params.Category,
	}

	var resp messageResponse
	if err := s.postJSON(ctx, "/contact/", body, &resp); err != nil {
		return "", fmt.Errorf("contact submission failed: %w", err)
	}
	return resp.Message, nil
}

// Unsubscribe removes an email address from marketing mail.
func (s *Service) Unsubscribe(ctx context.Context, email string) (string, error) {
	var resp messageResponse
	if err := s.postJSON(ctx, "/unsubscribe/", map[string]string{"email": email}, &resp); err != nil {
		return "", fmt.Errorf("unsubscribe failed: %w", err)
	}
	return resp.Message, nil
}

// UnsubscribeOneClick handles the tokenized link from email footers.
func (s *Service) UnsubscribeOneClick(ctx context.Context, token string) (string, error) {
	var resp messageResponse
	if err := s.getJSON(ctx, "/unsubscribe/one-click/", url.Values{"token": {token}}, &resp); err != nil {
		return "", fmt.Errorf("one-click unsubscribe failed: %w", err)
	}
	return resp.Message, nil
}

type siteSettingsResponse struct {
	apiEnvelope
	Settings *models.SiteSettings `json:"settings"`
}

func (s *Service) SiteSettings(ctx context.Context) (*models.SiteSettings, error) {
	var resp siteSettingsResponse
	if err := s.getJSON(ctx, "/site-settings/", nil, &resp); err != nil {
		return nil, fmt.Errorf("unable to fetch site settings: %w", err)
	}
	if resp.Settings == nil {
		return nil, fmt.Errorf("site settings response missing settings")
	}
	return resp.Settings, nil
}
