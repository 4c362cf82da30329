package models

import "time"

// Config represents the application configuration
type Config struct {
	Backend  BackendConfig
	Database DatabaseConfig
	Monitor  MonitorConfig
	Referral ReferralConfig
	LogFile  string
}

// BackendConfig holds licensing API connection settings
type BackendConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	SymbolsFile    string
}

// DatabaseConfig holds local storage settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// MonitorConfig holds trade/log poller settings
type MonitorConfig struct {
	PollingInterval time.Duration
	LogWindow       int
}

// ReferralConfig holds referral panel settings
type ReferralConfig struct {
	PageSize int
}
