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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marks-ai-client-go/internal/models"
	"marks-ai-client-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// Service is the client for the licensing backend. Every endpoint returns
// a JSON envelope {success, message, ...}; success=false maps to an error
// wrapping store.ErrBackendRejected carrying the backend text verbatim.
type Service struct {
	baseURL    string
	httpClient http.Client
}

func NewService(cfg models.BackendConfig) (*Service, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend base URL cannot be empty")
	}

	httpClient, err := createCustomHttpClient(cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("unable to create custom http client: %w", err)
	}

	return &Service{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}, nil
}

func createCustomHttpClient(timeout time.Duration) (http.Client, error) {
	tr := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
			DualStack: true,
			Timeout:   15 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConnsPerHost:   5,
		ExpectContinueTimeout: 5 * time.Second,
	}

	if err := http2.ConfigureTransport(tr); err != nil {
		return http.Client{}, err
	}

	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return http.Client{
		Transport: tr,
		Timeout:   timeout,
	}, nil
}

// apiEnvelope is embedded in every response type.
type apiEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type envelope interface {
	ok() bool
	note() string
}

func (e *apiEnvelope) ok() bool     { return e.Success }
func (e *apiEnvelope) note() string { return e.Message }

// rejectionError turns a success=false envelope into an error, using the
// backend message verbatim with a generic fallback when absent.
func rejectionError(e envelope) error {
	message := e.note()
	if message == "" {
		message = "request was not successful"
	}
	return fmt.Errorf("%w: %s", store.ErrBackendRejected, message)
}

func (s *Service) postJSON(ctx context.Context, path string, body any, out envelope) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("unable to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("unable to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return s.do(req, out)
}

func (s *Service) getJSON(ctx context.Context, path string, query url.Values, out envelope) error {
	endpoint := s.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("unable to build request: %w", err)
	}

	return s.do(req, out)
}

func (s *Service) do(req *http.Request, out envelope) error {
	requestId := uuid.New().String()
	req.Header.Set("X-Request-Id", requestId)
	req.Header.Set("Accept", "application/json")

	zap.L().Debug("Backend request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", requestId))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("unable to read response body: %w", err)
	}

	zap.L().Debug("Backend response",
		zap.String("request_id", requestId),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)))

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("malformed backend response (status %d): %w", resp.StatusCode, err)
	}

	if !out.ok() {
		return rejectionError(out)
	}
	return nil
}
