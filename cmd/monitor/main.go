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
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"marks-ai-client-go/internal/common"
	"marks-ai-client-go/internal/config"
	"marks-ai-client-go/internal/models"
	"marks-ai-client-go/internal/monitor"
	"marks-ai-client-go/internal/store"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"
)

func renderSnapshotHeader(view monitor.SnapshotView, licenseKey string) {
	common.PrintHeader(fmt.Sprintf("LIVE MONITOR: %s", licenseKey), common.WideWidth)

	if view.Data == nil {
		fmt.Println("  Waiting for first snapshot...")
		return
	}

	staleNote := ""
	if view.Stale {
		staleNote = common.ColorYellow + " (stale)" + common.ColorReset
	}

	data := view.Data
	fmt.Printf("  %s @ %s  mode: %s  as of %s%s\n",
		data.Symbol,
		data.CurrentPrice.String(),
		data.TradingMode,
		view.FetchedAt.Format("15:04:05"),
		staleNote)
	fmt.Printf("  Balance: %s  Equity: %s  Profit: %s  Margin: %s (free %s)\n",
		data.AccountBalance.String(),
		data.Equity.String(),
		data.Profit.String(),
		data.Margin.String(),
		data.FreeMargin.String())
	fmt.Printf("  Buys: %d (%s lots)  Sells: %d (%s lots)\n",
		data.TotalBuyPositions, data.TotalBuyLots.String(),
		data.TotalSellPositions, data.TotalSellLots.String())
}

func renderPositions(positions []models.OpenPosition) {
	if len(positions) == 0 {
		fmt.Println("  No open positions.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Ticket", "Type", "Lots", "Open", "SL", "TP", "Profit"})
	for _, pos := range positions {
		profit := pos.Profit.String()
		if pos.Profit.IsNegative() {
			profit = common.ColorRed + profit + common.ColorReset
		} else {
			profit = common.ColorGreen + profit + common.ColorReset
		}
		t.AppendRow(table.Row{pos.Ticket, pos.Type, pos.Lots.String(), pos.OpenPrice.String(),
			pos.StopLoss.String(), pos.TakeProfit.String(), profit})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

func renderLogs(view monitor.LogView, limit int) {
	if len(view.Entries) == 0 {
		return
	}

	staleNote := ""
	if view.Stale {
		staleNote = common.ColorYellow + " (stale)" + common.ColorReset
	}
	fmt.Printf("\n  EA ACTION LOG%s\n", staleNote)
	common.PrintBoxSeparator(common.WideWidth)

	entries := view.Entries
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	for i, entry := range entries {
		color := common.LogTypeColor(entry.Type)
		fmt.Printf("%s %s %s%-10s%s %s\n",
			common.BoxPrefix(i == len(entries)-1),
			entry.Time,
			color, entry.Type, common.ColorReset,
			entry.Message)
	}
}

func render(poller *monitor.Poller, licenseKey string, logLines int) {
	snapshot := poller.Snapshot()
	renderSnapshotHeader(snapshot, licenseKey)
	if snapshot.Data != nil {
		renderPositions(snapshot.Data.OpenPositions)
	}
	renderLogs(poller.Logs(), logLines)

	state := "live"
	if poller.Paused() {
		state = common.ColorYellow + "paused" + common.ColorReset
	}
	fmt.Printf("\n  [%s]  p=pause r=resume f=refresh q=quit\n", state)
}

// readKeys feeds single-letter commands from stdin into the channel until
// stdin closes.
func readKeys(keys chan<- string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		key := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if key != "" {
			keys <- key
		}
	}
	close(keys)
}

func main() {
	logLinesFlag := flag.Int("log-lines", 20, "Action log lines to render per refresh")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	logger, loggerCleanup := common.InitializeLogger(cfg.LogFile)
	defer loggerCleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	outcome, err := services.Session.Initialize(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotAuthenticated) {
			fmt.Fprintln(os.Stderr, "Not logged in. Run the login command first.")
			os.Exit(1)
		}
		logger.Fatal("Failed to initialize session", zap.Error(err))
	}
	if outcome.Stale {
		logger.Warn("License refresh failed, monitoring with cached data", zap.Error(outcome.Err))
	}

	selected := services.Session.SelectedLicense()
	if selected == nil {
		fmt.Fprintln(os.Stderr, "No license selected. Use the licenses command with -select KEY first.")
		os.Exit(1)
	}

	redraw := make(chan struct{}, 1)
	poller := monitor.NewPoller(monitor.PollerConfig{
		Backend:         services.Backend,
		LicenseKey:      selected.LicenseKey,
		PollingInterval: cfg.Monitor.PollingInterval,
		LogWindow:       cfg.Monitor.LogWindow,
		OnCycle: func() {
			select {
			case redraw <- struct{}{}:
			default:
			}
		},
	})

	if err := poller.Start(ctx); err != nil {
		logger.Fatal("Failed to start poller", zap.Error(err))
	}

	logger.Info("Monitoring license",
		zap.String("license_key", selected.LicenseKey),
		zap.Duration("polling_interval", cfg.Monitor.PollingInterval))

	keys := make(chan string)
	go readKeys(keys)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	running := true
	for running {
		select {
		case <-redraw:
			render(poller, selected.LicenseKey, *logLinesFlag)
		case key, ok := <-keys:
			if !ok {
				running = false
				break
			}
			switch key {
			case "p":
				poller.Pause()
				fmt.Println("Polling paused.")
			case "r":
				poller.Resume()
				fmt.Println("Polling resumed.")
			case "f":
				poller.RefreshNow(ctx)
			case "q":
				running = false
			}
		case <-sigChan:
			running = false
		}
	}

	zap.L().Info("Shutdown requested, stopping poller...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		poller.Stop()
		close(done)
	}()

	select {
	case <-done:
		zap.L().Info("Poller stopped gracefully")
	case <-shutdownCtx.Done():
		zap.L().Warn("Forced shutdown after timeout")
	}
}
