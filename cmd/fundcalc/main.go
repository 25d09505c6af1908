package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"FundCalc/internal/config"
	"FundCalc/internal/notifier"
	"FundCalc/internal/recorder"
	"FundCalc/internal/scheduler"
	"FundCalc/internal/server"
	"FundCalc/internal/tracker"
	"FundCalc/pkg/logger"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot := logger.New(logger.Config{Level: "info"})
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Str("config", cfgPath).Msg("FundCalc starting")

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	// Init watchlist
	tm, err := tracker.NewManager(cfg.Tracker.StateFile)
	if err != nil {
		log.Fatal().Err(err).Msg("init tracker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telegram is optional; without a token only the HTTP API runs.
	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		sender = tn
	} else {
		log.Info().Msg("telegram disabled: no bot token")
	}

	sched := scheduler.NewScheduler(ctx, tm, sender, rec, cfg.Defaults, log)
	if err := sched.RegisterAll(cfg.Schedule.DailyCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}

	srv := server.New(server.Config{
		Port:     cfg.Server.Port,
		Log:      log,
		Recorder: rec,
		Tracker:  tm,
	})

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(srv.Start)
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	sched.Start()
	g.Go(func() error {
		<-gCtx.Done()
		sched.Stop()
		return nil
	})

	if tn != nil {
		g.Go(func() error {
			tn.StartPolling(gCtx, sched.HandleCommand)
			return nil
		})
		log.Info().Msg("telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing daily push now")
		g.Go(func() error {
			sched.RunDailyNow()
			return nil
		})
	}

	log.Info().Int("port", cfg.Server.Port).Msg("FundCalc is running. Press Ctrl+C to stop.")

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("FundCalc stopped with error")
		return
	}
	log.Info().Msg("FundCalc stopped")
}
