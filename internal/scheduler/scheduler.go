package scheduler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"FundCalc/internal/calculator"
	"FundCalc/internal/model"
	"FundCalc/internal/notifier"
	"FundCalc/internal/recorder"
	"FundCalc/internal/strategy"
	"FundCalc/internal/tracker"
)

// Sender delivers a push message to the configured chat.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the daily watchlist push and answers bot commands.
type Scheduler struct {
	Cron     *cron.Cron
	Tracker  *tracker.Manager
	Notifier Sender
	Recorder recorder.Recorder
	Defaults model.CalcInput
	Ctx      context.Context

	// Now is the clock; overridable for tests.
	Now func() time.Time

	log zerolog.Logger
}

// NewScheduler creates a new Scheduler. sender may be nil when Telegram is disabled.
func NewScheduler(ctx context.Context, tm *tracker.Manager, sender Sender, rec recorder.Recorder, defaults model.CalcInput, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Tracker:  tm,
		Notifier: sender,
		Recorder: rec,
		Defaults: defaults,
		Ctx:      ctx,
		Now:      time.Now,
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterAll registers the daily push task.
func (s *Scheduler) RegisterAll(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyPush); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunDailyNow executes the daily push immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunDailyNow() {
	s.dailyPush()
}

// dailyPush sends a card for every tracked subscription. Subscriptions that
// reached their sellable day get a final card and leave the watchlist.
func (s *Scheduler) dailyPush() {
	now := s.Now()
	subs := s.Tracker.List()
	s.log.Info().Int("subscriptions", len(subs)).Msg("running daily push")
	if len(subs) == 0 {
		return
	}

	for _, sub := range subs {
		in := tracker.InputFor(sub, now)
		res, err := s.calculate(recorder.SourceSchedule, in)
		if err != nil {
			s.log.Error().Err(err).Str("subscription", sub.ID).Msg("evaluate subscription")
			continue
		}

		title := sub.Name
		if tracker.Matured(res) {
			title += " ✅ 今日可卖"
		}
		s.trySend(notifier.FormatCalcCard(title, res, strategy.Advise(res)))

		if tracker.Matured(res) {
			if _, err := s.Tracker.Remove(sub.ID); err != nil {
				s.log.Error().Err(err).Str("subscription", sub.ID).Msg("drop matured subscription")
				continue
			}
			s.recordEvent("MATURED", sub, fmt.Sprintf("第%d天", res.CurrentDay))
		}
	}

	if err := s.Tracker.MarkPushed(now); err != nil {
		s.log.Error().Err(err).Msg("mark pushed")
	}
}

// HandleCommand processes a user command and returns an HTML reply.
func (s *Scheduler) HandleCommand(text string) string {
	cmd := notifier.ParseCommand(text)
	switch cmd.Kind {
	case notifier.CommandCalc:
		in, err := cmd.CalcInput(s.Defaults)
		if err != nil {
			return usage(err)
		}
		res, err := s.calculate(recorder.SourceTelegram, in)
		if err != nil {
			return replyError(err)
		}
		return notifier.FormatCalcCard("", res, strategy.Advise(res))

	case notifier.CommandTrack:
		name, in, err := cmd.TrackInput(s.Defaults)
		if err != nil {
			return usage(err)
		}
		sub, err := s.Tracker.Add(name, in, s.Now())
		if err != nil {
			return replyError(err)
		}
		s.recordEvent("ADD", sub, "")
		res, err := tracker.Evaluate(sub, s.Now())
		if err != nil {
			return replyError(err)
		}
		return fmt.Sprintf("✅ 已加入持仓 <code>%s</code>\n\n%s",
			notifier.ShortID(sub.ID), notifier.FormatCalcCard(sub.Name, res, strategy.Advise(res)))

	case notifier.CommandUntrack:
		if len(cmd.Args) != 1 {
			return usage(errors.New("需要一个持仓 ID"))
		}
		sub, err := s.Tracker.Remove(cmd.Args[0])
		if err != nil {
			return replyError(err)
		}
		s.recordEvent("REMOVE", sub, "")
		return fmt.Sprintf("🗑 已移除 <b>%s</b>", html.EscapeString(sub.Name))

	case notifier.CommandList:
		return notifier.FormatWatchlist(s.watchEntries())

	default:
		return notifier.FormatHelp(s.Defaults)
	}
}

func (s *Scheduler) watchEntries() []notifier.WatchEntry {
	now := s.Now()
	subs := s.Tracker.List()
	entries := make([]notifier.WatchEntry, 0, len(subs))
	for _, sub := range subs {
		res, err := tracker.Evaluate(sub, now)
		entries = append(entries, notifier.WatchEntry{Sub: sub, Result: res, Err: err})
	}
	return entries
}

// calculate runs the engine and records the request whatever the outcome.
func (s *Scheduler) calculate(src recorder.Source, in model.CalcInput) (*model.CalcResult, error) {
	res, err := calculator.Calculate(in)
	rec := &recorder.CalcRecord{RequestID: uuid.NewString(), Source: src, Input: in, Result: res}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		rec.Err = verr
	}
	if res != nil {
		rec.Note = strategy.Advise(res).Kind
	}
	if recErr := s.Recorder.RecordCalc(rec); recErr != nil {
		s.log.Error().Err(recErr).Msg("record calc")
	}
	return res, err
}

func (s *Scheduler) recordEvent(eventType string, sub model.Subscription, note string) {
	if err := s.Recorder.RecordTrackerEvent(&recorder.TrackerEvent{
		EventType:      eventType,
		SubscriptionID: sub.ID,
		Name:           sub.Name,
		Note:           note,
	}); err != nil {
		s.log.Error().Err(err).Msg("record tracker event")
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}

func replyError(err error) string {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return notifier.FormatValidationError(verr)
	}
	return "❌ " + html.EscapeString(err.Error())
}

func usage(err error) string {
	return fmt.Sprintf("❌ %s\n发送 /help 查看用法", html.EscapeString(err.Error()))
}

