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

	"marks-ai-client-go/internal/backend"
	"marks-ai-client-go/internal/common"
	"marks-ai-client-go/internal/config"

	"go.uber.org/zap"
)

func main() {
	contactFlag := flag.Bool("contact", false, "Send a support message")
	nameFlag := flag.String("name", "", "Your name (for -contact)")
	emailFlag := flag.String("email", "", "Email address (for -contact, -reset-request, -unsubscribe)")
	subjectFlag := flag.String("subject", "", "Message subject (for -contact)")
	messageFlag := flag.String("message", "", "Message body (for -contact)")
	categoryFlag := flag.String("category", "general", "Message category (for -contact)")
	resetRequestFlag := flag.Bool("reset-request", false, "Request a password reset email")
	resetConfirmFlag := flag.Bool("reset-confirm", false, "Confirm a password reset")
	uidFlag := flag.String("uid", "", "Reset uid from the email link (for -reset-confirm)")
	tokenFlag := flag.String("token", "", "Reset token from the email link (for -reset-confirm)")
	newPasswordFlag := flag.String("new-password", "", "New password (for -reset-confirm)")
	unsubscribeFlag := flag.Bool("unsubscribe", false, "Unsubscribe an email from marketing mail")
	unsubscribeTokenFlag := flag.String("unsubscribe-token", "", "One-click unsubscribe token from an email footer")
	siteInfoFlag := flag.Bool("site-info", false, "Show backend-managed site and support details")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	logger, loggerCleanup := common.InitializeLogger(cfg.LogFile)
	defer loggerCleanup()

	ctx := context.Background()

	backendService, err := backend.NewService(cfg.Backend)
	if err != nil {
		logger.Fatal("Failed to initialize backend client", zap.Error(err))
	}

	switch {
	case *contactFlag:
		if *emailFlag == "" || *messageFlag == "" {
			fmt.Fprintln(os.Stderr, "-contact requires -email and -message")
			os.Exit(1)
		}

		message, err := backendService.Contact(ctx, backend.ContactParams{
			Name:     *nameFlag,
			Email:    *emailFlag,
			Subject:  *subjectFlag,
			Message:  *messageFlag,
			Category: *categoryFlag,
		})
		if err != nil {
			// The failure must reach the user; a dropped support message that
			// looks sent is worse than an error.
			logger.Fatal("Support message was NOT sent", zap.Error(err))
		}
		if message == "" {
			message = "Your message has been sent."
		}
		fmt.Println(message)

	case *resetRequestFlag:
		if *emailFlag == "" {
			fmt.Fprintln(os.Stderr, "-reset-request requires -email")
			os.Exit(1)
		}
		message, err := backendService.RequestPasswordReset(ctx, *emailFlag)
		if err != nil {
			logger.Fatal("Password reset request failed", zap.Error(err))
		}
		fmt.Println(message)

	case *resetConfirmFlag:
		if *uidFlag == "" || *tokenFlag == "" || *newPasswordFlag == "" {
			fmt.Fprintln(os.Stderr, "-reset-confirm requires -uid, -token and -new-password")
			os.Exit(1)
		}
		message, err := backendService.ConfirmPasswordReset(ctx, *uidFlag, *tokenFlag, *newPasswordFlag)
		if err != nil {
			logger.Fatal("Password reset failed", zap.Error(err))
		}
		fmt.Println(message)

	case *unsubscribeTokenFlag != "":
		message, err := backendService.UnsubscribeOneClick(ctx, *unsubscribeTokenFlag)
		if err != nil {
			logger.Fatal("One-click unsubscribe failed", zap.Error(err))
		}
		fmt.Println(message)

	case *unsubscribeFlag:
		if *emailFlag == "" {
			fmt.Fprintln(os.Stderr, "-unsubscribe requires -email")
			os.Exit(1)
		}
		message, err := backendService.Unsubscribe(ctx, *emailFlag)
		if err != nil {
			logger.Fatal("Unsubscribe failed", zap.Error(err))
		}
		fmt.Println(message)

	case *siteInfoFlag:
		settings, err := backendService.SiteSettings(ctx)
		if err != nil {
			logger.Fatal("Failed to fetch site settings", zap.Error(err))
		}
		common.PrintHeader(settings.SiteName, common.DefaultWidth)
		fmt.Printf("  Support email:    %s\n", settings.SupportEmail)
		fmt.Printf("  Telegram support: %s\n", settings.TelegramSupport)
		fmt.Printf("  Telegram channel: %s\n", settings.TelegramChannel)
		common.PrintSeparator("=", common.DefaultWidth)

	default:
		flag.Usage()
	}
}
