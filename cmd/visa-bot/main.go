package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pavelgur/us-visa-bot/internal/bot"
	"github.com/pavelgur/us-visa-bot/internal/config"
	"github.com/pavelgur/us-visa-bot/internal/logging"
	"github.com/pavelgur/us-visa-bot/internal/portal"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "go through the motions but never submit a booking")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	heldDate, err := bot.ParseDate(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "visa-bot: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "visa-bot: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "visa-bot: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	client, err := portal.NewClient(portal.Options{
		BaseURL:      cfg.PortalURL,
		Locale:       cfg.Locale,
		ScheduleID:   cfg.ScheduleID,
		SignInCommit: cfg.SignInCommit,
		MimicTLS:     cfg.MimicTLS,
		ProxyURL:     cfg.ProxyURL,
		DryRun:       *dryRun,
		Logger:       logger.Named("portal"),
	})
	if err != nil {
		logger.Fatal("portal client", zap.Error(err))
	}

	sup := bot.NewSupervisor(client, bot.Policy{
		Email:        cfg.Email,
		Password:     cfg.Password,
		Facilities:   cfg.Facilities,
		RefreshDelay: cfg.RefreshDelay,
		LeadDays:     cfg.LeadTimeDays,
		AsyncBook:    cfg.BookAsync,
		DryRun:       *dryRun,
	}, heldDate, logger.Named("bot"))

	bot.PrintStartup(heldDate, cfg.Facilities, cfg.RefreshDelay, cfg.LeadTimeDays, *dryRun)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutting down")
		cancel()
	}()

	sup.Run(ctx)

	bot.PrintSummary(sup.History(), sup.HeldDate())
	if cfg.HistoryFile != "" {
		if err := bot.WriteHistory(sup.History(), cfg.HistoryFile); err != nil {
			logger.Error("write history file", zap.Error(err))
		}
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: visa-bot [flags] CURRENT_DATE

Polls the scheduling portal for an appointment earlier than CURRENT_DATE
(YYYY-MM-DD) and books the first one inside the eligibility window. The
loop runs until interrupted. Configuration comes from the environment or a
.env file; see .env.example.

flags:
`)
	flag.PrintDefaults()
}
