package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/pavelgur/us-visa-bot/internal/config"
	"github.com/pavelgur/us-visa-bot/internal/logging"
	"github.com/pavelgur/us-visa-bot/internal/portal"
)

// login-check is a one-shot probe: it signs in with the configured
// credentials, prints the session with secrets masked, and lists the
// earliest open date per facility. Run it before leaving the bot unattended
// to confirm credentials, schedule id and facility ids are right.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "login-check: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "login-check: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	client, err := portal.NewClient(portal.Options{
		BaseURL:      cfg.PortalURL,
		Locale:       cfg.Locale,
		ScheduleID:   cfg.ScheduleID,
		SignInCommit: cfg.SignInCommit,
		MimicTLS:     cfg.MimicTLS,
		ProxyURL:     cfg.ProxyURL,
		Logger:       logger.Named("portal"),
	})
	if err != nil {
		logger.Fatal("portal client", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	sess, err := client.SignIn(ctx, cfg.Email, cfg.Password)
	if err != nil {
		logger.Fatal("sign-in failed", zap.Error(err))
	}
	fmt.Printf("signed in: %s\n", sess)

	for _, facility := range cfg.Facilities {
		days, err := client.AvailableDays(ctx, sess, facility)
		if err != nil {
			fmt.Printf("facility %s: %v\n", facility, err)
			continue
		}
		if len(days) == 0 {
			fmt.Printf("facility %s: no open dates\n", facility)
			continue
		}
		earliest := days[0].Date
		for _, d := range days[1:] {
			if d.Date < earliest {
				earliest = d.Date
			}
		}
		fmt.Printf("facility %s: earliest %s, %d dates open\n", facility, earliest, len(days))
	}
}
