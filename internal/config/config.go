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

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"marks-ai-client-go/internal/models"
)

func Load() (*models.Config, error) {
	requestTimeout, err := getEnvDuration("BACKEND_REQUEST_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pollingInterval, err := getEnvDuration("MONITOR_POLLING_INTERVAL", 3*time.Second)
	if err != nil {
		return nil, err
	}

	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	return &models.Config{
		Backend: models.BackendConfig{
			BaseURL:        getEnvString("MARKSAI_API_URL", "https://api.marksai.com/api"),
			RequestTimeout: requestTimeout,
			SymbolsFile:    getEnvString("SYMBOLS_FILE", "symbols.yaml"),
		},
		Database: models.DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "marksai.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
		},
		Monitor: models.MonitorConfig{
			PollingInterval: pollingInterval,
			LogWindow:       getEnvInt("MONITOR_LOG_WINDOW", 100),
		},
		Referral: models.ReferralConfig{
			PageSize: getEnvInt("REFERRAL_PAGE_SIZE", 10),
		},
		LogFile: getEnvString("LOG_FILE", ""),
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
