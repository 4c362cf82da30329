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
	"marks-ai-client-go/internal/referral"
	"marks-ai-client-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func printStats(stats *models.ReferralStats) {
	common.PrintHeader("REFERRAL PROGRAM", common.DefaultWidth)
	fmt.Printf("  Referral code:    %s\n", stats.ReferralCode)
	fmt.Printf("  Commission rate:  %s%%\n", stats.CommissionRate.String())
	fmt.Printf("  Clicks:           %d\n", stats.Clicks)
	fmt.Printf("  Signups:          %d\n", stats.Signups)
	fmt.Printf("  Purchases:        %d\n", stats.Purchases)
	fmt.Printf("  Total earnings:   $%s\n", stats.TotalEarnings.String())
	fmt.Printf("  Pending earnings: $%s\n", stats.PendingEarnings.String())
	fmt.Printf("  Paid earnings:    $%s\n", stats.PaidEarnings.String())
	common.PrintSeparator("=", common.DefaultWidth)
}

func printTransactions(state referral.TransactionsState) {
	common.PrintHeader(fmt.Sprintf("REFERRAL TRANSACTIONS (page %d/%d, %d total)",
		state.Page, state.TotalPages, state.Total), common.DefaultWidth)

	if len(state.Items) == 0 {
		fmt.Println("  No transactions on this page.")
		return
	}
	for i, tx := range state.Items {
		fmt.Printf("%s %s  %-20s purchase $%s -> commission $%s (%s)\n",
			common.BoxPrefix(i == len(state.Items)-1),
			tx.CreatedAt,
			tx.ReferredUser,
			tx.PurchaseAmount.String(),
			tx.CommissionAmount.String(),
			tx.Status)
	}
}

func printPayouts(state referral.PayoutsState) {
	common.PrintHeader(fmt.Sprintf("PAYOUT HISTORY (page %d/%d, %d total)",
		state.Page, state.TotalPages, state.Total), common.DefaultWidth)

	if len(state.Items) == 0 {
		fmt.Println("  No payout requests on this page.")
		return
	}
	for i, payout := range state.Items {
		processed := payout.ProcessedAt
		if processed == "" {
			processed = "-"
		}
		fmt.Printf("%s %s  $%-10s via %-8s %s%-10s%s processed: %s\n",
			common.BoxPrefix(i == len(state.Items)-1),
			payout.RequestedAt,
			payout.Amount.String(),
			payout.PaymentMethod,
			common.StatusColor(payout.Status), payout.Status, common.ColorReset,
			processed)
	}
}

func main() {
	statsFlag := flag.Bool("stats", false, "Show the referral summary")
	transactionsFlag := flag.Bool("transactions", false, "Show referral transactions")
	payoutsFlag := flag.Bool("payouts", false, "Show payout history")
	pageFlag := flag.Int("page", 1, "Page number for -transactions / -payouts")
	requestPayoutFlag := flag.String("request-payout", "", "Request a payout of this amount (USD)")
	methodFlag := flag.String("method", models.PayoutMethodPaypal, "Payout method: paypal, bank, crypto")
	detailsFlag := flag.String("details", "", "Payout destination details (address, IBAN, ...)")
	createFlag := flag.Bool("create", false, "Create a referral code for this account")
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

	if _, err := services.Session.Initialize(ctx); err != nil {
		if errors.Is(err, store.ErrNotAuthenticated) {
			fmt.Fprintln(os.Stderr, "Not logged in. Run the login command first.")
			os.Exit(1)
		}
		logger.Fatal("Failed to initialize session", zap.Error(err))
	}

	user := services.Session.User()
	identity := backend.Identity{Username: user.Username, Email: user.Email}
	panel := referral.NewPanel(services.Backend, identity, cfg.Referral.PageSize)

	switch {
	case *createFlag:
		message, err := services.Backend.CreateReferralCode(ctx, identity)
		if err != nil {
			logger.Fatal("Failed to create referral code", zap.Error(err))
		}
		fmt.Println(message)

	case *requestPayoutFlag != "":
		amount, err := decimal.NewFromString(*requestPayoutFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid amount %q: %v\n", *requestPayoutFlag, err)
			os.Exit(1)
		}

		message, err := panel.RequestPayout(ctx, amount, *methodFlag, *detailsFlag)
		if err != nil {
			if errors.Is(err, store.ErrValidation) {
				fmt.Fprintln(os.Stderr, err.Error())
				os.Exit(1)
			}
			logger.Fatal("Payout request failed", zap.Error(err))
		}

		if message != "" {
			fmt.Println(message)
		}
		printPayouts(panel.Payouts())
		if stats := panel.Stats().Data; stats != nil {
			printStats(stats)
		}

	case *transactionsFlag:
		if err := panel.LoadTransactions(ctx, *pageFlag); err != nil {
			logger.Fatal("Failed to load transactions", zap.Error(err))
		}
		printTransactions(panel.Transactions())

	case *payoutsFlag:
		if err := panel.LoadPayouts(ctx, *pageFlag); err != nil {
			logger.Fatal("Failed to load payouts", zap.Error(err))
		}
		printPayouts(panel.Payouts())

	case *statsFlag:
		fallthrough
	default:
		if err := panel.LoadStats(ctx); err != nil {
			logger.Fatal("Failed to load referral stats", zap.Error(err))
		}
		printStats(panel.Stats().Data)
	}
}
