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

	"marks-ai-client-go/internal/common"
	"marks-ai-client-go/internal/config"
	"marks-ai-client-go/internal/models"
	"marks-ai-client-go/internal/store"

	"go.uber.org/zap"
)

func printPlan(plan models.Plan) {
	fmt.Printf("\n┌─ Plan %d: %s\n", plan.Id, plan.Name)
	fmt.Printf("│  Price: $%s for %d days\n", plan.Price.String(), plan.DurationDays)
	if plan.Description != "" {
		fmt.Printf("│  %s\n", plan.Description)
	}
	for i, feature := range plan.Features {
		fmt.Printf("%s %s\n", common.BoxPrefix(i == len(plan.Features)-1), feature)
	}
}

func main() {
	subscribeFlag := flag.Int("subscribe", 0, "Subscribe to the plan with this id")
	accountFlag := flag.String("account", "", "MT5 account number to bind the new license to")
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

	if *subscribeFlag > 0 {
		if _, err := services.Session.Initialize(ctx); err != nil {
			if errors.Is(err, store.ErrNotAuthenticated) {
				fmt.Fprintln(os.Stderr, "Not logged in. Run the login command first.")
				os.Exit(1)
			}
			logger.Fatal("Failed to initialize session", zap.Error(err))
		}

		user := services.Session.User()
		result, err := services.Backend.Subscribe(ctx, user.Email, *subscribeFlag, *accountFlag)
		if err != nil {
			logger.Fatal("Subscription failed", zap.Error(err))
		}

		if result.Message != "" {
			fmt.Println(result.Message)
		}
		if result.License != nil {
			fmt.Printf("New license: %s (%s), expires %s\n",
				result.License.LicenseKey, result.License.PlanName, result.License.ExpiresAt)
		}

		// The backend returns the refreshed list with the subscription; pull
		// it into the cache so the licenses command sees it immediately.
		if outcome := services.Session.RefreshLicenses(ctx); outcome.Stale {
			logger.Warn("License cache refresh failed after subscribing", zap.Error(outcome.Err))
		}
		return
	}

	plans, err := services.Backend.ListPlans(ctx)
	if err != nil {
		logger.Fatal("Failed to list plans", zap.Error(err))
	}

	common.PrintHeader("SUBSCRIPTION PLANS", common.DefaultWidth)
	for _, plan := range plans {
		printPlan(plan)
	}
	common.PrintFooter(fmt.Sprintf("%d plans available", len(plans)), common.DefaultWidth)
}
