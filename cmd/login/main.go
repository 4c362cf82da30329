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
	"os"

	"marks-ai-client-go/internal/common"
	"marks-ai-client-go/internal/config"
	"marks-ai-client-go/internal/models"

	"go.uber.org/zap"
)

func printSessionSummary(user *models.User, licenses []models.License) {
	common.PrintHeader("SESSION", common.DefaultWidth)
	fmt.Printf("  Email:    %s\n", user.Email)
	if user.Name != "" {
		fmt.Printf("  Name:     %s\n", user.Name)
	}
	if user.Username != "" {
		fmt.Printf("  Username: %s\n", user.Username)
	}
	fmt.Printf("  Licenses: %d\n", len(licenses))
	common.PrintSeparator("=", common.DefaultWidth)
}

func main() {
	registerFlag := flag.Bool("register", false, "Create a new account instead of logging in")
	emailFlag := flag.String("email", "", "Account email")
	passwordFlag := flag.String("password", "", "Account password")
	nameFlag := flag.String("name", "", "Full name (registration only)")
	refFlag := flag.String("ref", "", "Referral code to attribute the signup to (registration only)")
	logoutFlag := flag.Bool("logout", false, "Clear the stored session and exit")
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

	if *logoutFlag {
		if err := services.Session.Logout(ctx); err != nil {
			logger.Fatal("Logout failed", zap.Error(err))
		}
		fmt.Println("Session cleared.")
		return
	}

	if *emailFlag == "" || *passwordFlag == "" {
		fmt.Fprintln(os.Stderr, "both -email and -password are required")
		flag.Usage()
		os.Exit(1)
	}

	if *registerFlag {
		// The referral code is captured before registration so the signup is
		// attributed even when the backend call for tracking fails.
		if *refFlag != "" {
			if err := services.Session.CaptureReferralCode(ctx, *refFlag); err != nil {
				logger.Warn("Unable to capture referral code", zap.Error(err))
			}
		}

		user, message, err := services.Session.Register(ctx, *emailFlag, *passwordFlag, *nameFlag)
		if err != nil {
			logger.Fatal("Registration failed", zap.Error(err))
		}

		if message != "" {
			fmt.Println(message)
		}
		printSessionSummary(user, services.Session.Licenses())
		logger.Info("Registered", zap.String("email", user.Email))
		return
	}

	user, err := services.Session.Login(ctx, *emailFlag, *passwordFlag)
	if err != nil {
		logger.Fatal("Login failed", zap.Error(err))
	}

	printSessionSummary(user, services.Session.Licenses())
	logger.Info("Logged in", zap.String("email", user.Email))
}
