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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"marks-ai-client-go/internal/backend"
	"marks-ai-client-go/internal/common"
	"marks-ai-client-go/internal/config"
	"marks-ai-client-go/internal/models"
	"marks-ai-client-go/internal/session"
	"marks-ai-client-go/internal/store"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func renderLicenseTable(licenses []models.License, selected *models.License) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"", "License Key", "Plan", "Status", "MT5 Account", "Expires"})

	for _, license := range licenses {
		marker := ""
		if selected != nil && selected.LicenseKey == license.LicenseKey {
			marker = "*"
		}
		status := common.StatusColor(license.Status) + license.Status + common.ColorReset
		t.AppendRow(table.Row{marker, license.LicenseKey, license.PlanName, status, license.MT5Account, license.ExpiresAt})
	}

	t.SetStyle(table.StyleLight)
	t.Render()
}

func printSettings(settings *models.EASettings) {
	if settings == nil {
		fmt.Println("  No settings snapshot cached for this license yet.")
		return
	}

	fmt.Printf("  Symbol:              %s\n", settings.Symbol)
	fmt.Printf("  Investment amount:   $%s\n", settings.InvestmentAmount.String())
	fmt.Printf("  Lot size:            %s\n", settings.LotSize.String())
	fmt.Printf("  Buy range:           %s - %s\n", settings.BuyRangeLow.String(), settings.BuyRangeHigh.String())
	fmt.Printf("  Sell range:          %s - %s\n", settings.SellRangeLow.String(), settings.SellRangeHigh.String())
	fmt.Printf("  Gap pips:            %s\n", settings.GapPips.String())
	fmt.Printf("  Max orders:          %d\n", settings.MaxOrders)
	fmt.Printf("  Take profit pips:    %s\n", settings.TakeProfitPips.String())
	fmt.Printf("  Trailing start/step: %s / %s\n", settings.TrailingStartPips.String(), settings.TrailingStepPips.String())
	fmt.Printf("  Breakeven recovery:  %t\n", settings.BreakevenRecovery)
	if settings.BreakevenRecovery {
		fmt.Printf("  Recovery max orders: %d\n", settings.RecoveryMaxOrders)
		fmt.Printf("  Recovery lot range:  %s - %s\n", settings.RecoveryLotMin.String(), settings.RecoveryLotMax.String())
	}
}

func initializeSession(ctx context.Context, manager *session.Manager, logger *zap.Logger) {
	outcome, err := manager.Initialize(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotAuthenticated) {
			fmt.Fprintln(os.Stderr, "Not logged in. Run the login command first.")
			os.Exit(1)
		}
		logger.Fatal("Failed to initialize session", zap.Error(err))
	}
	if outcome.Stale {
		fmt.Println(common.ColorYellow + "Backend unreachable; showing cached license data." + common.ColorReset)
	}
}

func main() {
	selectFlag := flag.String("select", "", "Make the license with this key active")
	clearFlag := flag.Bool("clear", false, "Clear the active license selection")
	settingsFlag := flag.Bool("settings", false, "Show the EA settings of the active license")
	investFlag := flag.String("invest", "", "Set the investment amount for the active license (USD)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	logger, loggerCleanup := common.InitializeLogger(cfg.LogFile)
	defer loggerCleanup()

	ctx := context.Background()

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	initializeSession(ctx, services.Session, logger)
	manager := services.Session

	switch {
	case *clearFlag:
		if err := manager.ClearSelectedLicense(ctx); err != nil {
			logger.Fatal("Failed to clear selection", zap.Error(err))
		}
		fmt.Println("Selection cleared.")

	case *selectFlag != "":
		license, outcome, err := manager.SelectLicense(ctx, *selectFlag)
		if err != nil {
			if errors.Is(err, store.ErrLicenseNotFound) {
				fmt.Fprintf(os.Stderr, "No license %q in your account.\n", *selectFlag)
				os.Exit(1)
			}
			logger.Fatal("Failed to select license", zap.Error(err))
		}

		fmt.Printf("Selected license %s (%s).\n", license.LicenseKey, license.PlanName)
		if outcome.Stale {
			fmt.Println(common.ColorYellow + "Settings fetch failed; the cached snapshot stays in effect." + common.ColorReset)
		}
		printSettings(manager.SelectedLicense().Settings)

	case *investFlag != "":
		amount, err := decimal.NewFromString(*investFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid amount %q: %v\n", *investFlag, err)
			os.Exit(1)
		}

		settings, message, err := manager.UpdateInvestment(ctx, amount)
		if err != nil {
			if errors.Is(err, store.ErrValidation) || errors.Is(err, store.ErrNoSelectedLicense) {
				fmt.Fprintln(os.Stderr, err.Error())
				os.Exit(1)
			}
			logger.Fatal("Failed to update investment", zap.Error(err))
		}

		if message != "" {
			fmt.Println(message)
		}
		printSettings(settings)

	case *settingsFlag:
		selected := manager.SelectedLicense()
		if selected == nil {
			fmt.Fprintln(os.Stderr, "No license selected. Use -select KEY first.")
			os.Exit(1)
		}

		settings := selected.Settings
		if settings == nil {
			// No snapshot cached yet; fall back to the per-symbol defaults so
			// the form still renders offline.
			defaults, err := common.LoadSymbolDefaults(cfg.Backend.SymbolsFile)
			if err != nil {
				logger.Warn("Unable to load symbol defaults", zap.Error(err))
			} else if fallback, ok := defaults[backend.DefaultSymbol]; ok {
				fmt.Println(common.ColorYellow + "Showing built-in defaults; no settings snapshot cached yet." + common.ColorReset)
				settings = &fallback
			}
		}

		common.PrintHeader(fmt.Sprintf("EA SETTINGS: %s", selected.LicenseKey), common.DefaultWidth)
		printSettings(settings)
		common.PrintSeparator("=", common.DefaultWidth)

	default:
		common.PrintHeader("LICENSES", common.DefaultWidth)
		renderLicenseTable(manager.Licenses(), manager.SelectedLicense())
	}
}
