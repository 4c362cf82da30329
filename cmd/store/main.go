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
	"flag"
	"fmt"

	"marks-ai-client-go/internal/common"
	"marks-ai-client-go/internal/config"
	"marks-ai-client-go/internal/models"
	"marks-ai-client-go/internal/store"

	"go.uber.org/zap"
)

func printProduct(product models.EAProduct) {
	fmt.Printf("\n┌─ %s v%s (id %d)\n", product.Name, product.Version, product.Id)
	if product.Description != "" {
		fmt.Printf("│  %s\n", product.Description)
	}
	fmt.Printf("└─ Download: %s\n", product.DownloadURL)
}

func main() {
	checkUpdateFlag := flag.Bool("check-update", false, "Check whether a newer EA build is available")
	dismissUpdateFlag := flag.Bool("dismiss-update", false, "Stop notifying about the current update")
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

	switch {
	case *checkUpdateFlag:
		update, err := services.Backend.EAUpdateStatus(ctx)
		if err != nil {
			logger.Fatal("Update check failed", zap.Error(err))
		}
		if update == nil {
			fmt.Println("You are running the latest EA build.")
			return
		}

		dismissed, err := services.DbService.GetMarker(ctx, store.MarkerDismissedUpdate)
		if err != nil {
			logger.Warn("Unable to read dismissal marker", zap.Error(err))
		}
		if dismissed == update.Version {
			logger.Info("Update notification dismissed", zap.String("version", update.Version))
			return
		}

		common.PrintHeader(fmt.Sprintf("EA UPDATE AVAILABLE: v%s", update.Version), common.DefaultWidth)
		if update.Changelog != "" {
			fmt.Println(update.Changelog)
		}
		fmt.Println("\nRun with -dismiss-update to stop seeing this notice.")
		common.PrintSeparator("=", common.DefaultWidth)

	case *dismissUpdateFlag:
		update, err := services.Backend.EAUpdateStatus(ctx)
		if err != nil {
			logger.Fatal("Update check failed", zap.Error(err))
		}
		if update == nil {
			fmt.Println("No pending update to dismiss.")
			return
		}

		// Dismissal is per version; the next release notifies again.
		if err := services.DbService.SetMarker(ctx, store.MarkerDismissedUpdate, update.Version); err != nil {
			logger.Fatal("Unable to persist dismissal", zap.Error(err))
		}
		fmt.Printf("Update v%s dismissed.\n", update.Version)

	default:
		products, err := services.Backend.ListEAProducts(ctx)
		if err != nil {
			logger.Fatal("Failed to list EA products", zap.Error(err))
		}

		common.PrintHeader("EA STORE", common.DefaultWidth)
		for _, product := range products {
			printProduct(product)
		}
		common.PrintFooter(fmt.Sprintf("%d products listed", len(products)), common.DefaultWidth)
	}
}
