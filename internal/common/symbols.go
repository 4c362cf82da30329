package common

import (
	"fmt"
	"os"
	"path/filepath"

	"marks-ai-client-go/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

type symbolEntry struct {
	Symbol            string `yaml:"symbol"`
	LotSize           string `yaml:"lot_size"`
	BuyRangeLow       string `yaml:"buy_range_low"`
	BuyRangeHigh      string `yaml:"buy_range_high"`
	SellRangeLow      string `yaml:"sell_range_low"`
	SellRangeHigh     string `yaml:"sell_range_high"`
	GapPips           string `yaml:"gap_pips"`
	MaxOrders         int    `yaml:"max_orders"`
	TakeProfitPips    string `yaml:"take_profit_pips"`
	TrailingStartPips string `yaml:"trailing_start_pips"`
	TrailingStepPips  string `yaml:"trailing_step_pips"`
}

type symbolsFile struct {
	Symbols []symbolEntry `yaml:"symbols"`
}

// LoadSymbolDefaults reads the per-symbol default EA parameters used to
// render settings offline when a license carries no snapshot yet.
func LoadSymbolDefaults(symbolsPath string) (map[string]models.EASettings, error) {
	var path string
	if filepath.IsAbs(symbolsPath) {
		path = symbolsPath
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = filepath.Join(wd, symbolsPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", symbolsPath, err)
	}

	var file symbolsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", symbolsPath, err)
	}

	defaults := make(map[string]models.EASettings, len(file.Symbols))
	for i, entry := range file.Symbols {
		if entry.Symbol == "" {
			return nil, fmt.Errorf("symbol at index %d missing name", i)
		}
		settings, err := entry.toSettings()
		if err != nil {
			return nil, fmt.Errorf("symbol %s: %w", entry.Symbol, err)
		}
		defaults[entry.Symbol] = settings
	}

	return defaults, nil
}

func (e symbolEntry) toSettings() (models.EASettings, error) {
	settings := models.EASettings{
		Symbol:    e.Symbol,
		MaxOrders: e.MaxOrders,
	}

	fields := []struct {
		raw  string
		dest *decimal.Decimal
	}{
		{e.LotSize, &settings.LotSize},
		{e.BuyRangeLow, &settings.BuyRangeLow},
		{e.BuyRangeHigh, &settings.BuyRangeHigh},
		{e.SellRangeLow, &settings.SellRangeLow},
		{e.SellRangeHigh, &settings.SellRangeHigh},
		{e.GapPips, &settings.GapPips},
		{e.TakeProfitPips, &settings.TakeProfitPips},
		{e.TrailingStartPips, &settings.TrailingStartPips},
		{e.TrailingStepPips, &settings.TrailingStepPips},
	}
	for _, field := range fields {
		if field.raw == "" {
			continue
		}
		value, err := decimal.NewFromString(field.raw)
		if err != nil {
			return models.EASettings{}, fmt.Errorf("invalid value %q: %w", field.raw, err)
		}
		*field.dest = value
	}

	return settings, nil
}
