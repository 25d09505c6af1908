package scheduler

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundCalc/internal/model"
	"FundCalc/internal/recorder"
	"FundCalc/internal/tracker"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

type memRecorder struct {
	calcs  []*recorder.CalcRecord
	events []*recorder.TrackerEvent
}

func (m *memRecorder) RecordCalc(rec *recorder.CalcRecord) error {
	m.calcs = append(m.calcs, rec)
	return nil
}

func (m *memRecorder) RecordTrackerEvent(evt *recorder.TrackerEvent) error {
	m.events = append(m.events, evt)
	return nil
}

func (m *memRecorder) Close() error { return nil }

// 2026-10-12 is a Monday.
var monday = time.Date(2026, 10, 12, 15, 30, 0, 0, time.UTC)

func newScheduler(t *testing.T) (*Scheduler, *fakeSender, *memRecorder) {
	t.Helper()
	tm, err := tracker.NewManager(filepath.Join(t.TempDir(), "watchlist.json"))
	require.NoError(t, err)
	sender := &fakeSender{}
	rec := &memRecorder{}
	defaults := model.CalcInput{SettleDays: "3", CurrentDay: "1", SellDelayDays: "0", LimitPct: "10"}
	s := NewScheduler(context.Background(), tm, sender, rec, defaults, zerolog.Nop())
	s.Now = func() time.Time { return monday }
	return s, sender, rec
}

func TestHandleCommand_Calc(t *testing.T) {
	s, _, rec := newScheduler(t)

	reply := s.HandleCommand("/calc 10000 0 1")
	assert.Contains(t, reply, "盈亏 -¥1,000.00 (-10.00%)")
	assert.Contains(t, reply, "盈亏 ¥1,000.00 (10.00%)")

	require.Len(t, rec.calcs, 1)
	assert.Equal(t, recorder.SourceTelegram, rec.calcs[0].Source)
	assert.NotEmpty(t, rec.calcs[0].RequestID)
	assert.NotNil(t, rec.calcs[0].Result)
	assert.Equal(t, model.NoteGeneric, rec.calcs[0].Note)
}

func TestHandleCommand_CalcValidationError(t *testing.T) {
	s, _, rec := newScheduler(t)

	reply := s.HandleCommand("/calc 10000 5 3 1 0 0")
	assert.Contains(t, reply, "INVALID_LIMIT")

	require.Len(t, rec.calcs, 1)
	require.NotNil(t, rec.calcs[0].Err)
	assert.Equal(t, model.InvalidLimit, rec.calcs[0].Err.Kind)
	assert.Nil(t, rec.calcs[0].Result)
}

func TestHandleCommand_Usage(t *testing.T) {
	s, _, rec := newScheduler(t)
	assert.Contains(t, s.HandleCommand("/calc 10000"), "/help")
	assert.Contains(t, s.HandleCommand("/untrack"), "/help")
	assert.Contains(t, s.HandleCommand("what"), "/calc")
	assert.Empty(t, rec.calcs)
}

func TestHandleCommand_TrackListUntrack(t *testing.T) {
	s, _, rec := newScheduler(t)

	reply := s.HandleCommand("/track 161725 10000 5")
	assert.Contains(t, reply, "已加入持仓")
	require.Len(t, s.Tracker.List(), 1)
	sub := s.Tracker.List()[0]

	list := s.HandleCommand("/list")
	assert.Contains(t, list, "161725")
	assert.Contains(t, list, "T+3 · 第1天 · 剩余3天")

	reply = s.HandleCommand("/untrack " + sub.ID[:8])
	assert.Contains(t, reply, "已移除")
	assert.Empty(t, s.Tracker.List())

	require.Len(t, rec.events, 2)
	assert.Equal(t, "ADD", rec.events[0].EventType)
	assert.Equal(t, "REMOVE", rec.events[1].EventType)

	assert.Contains(t, s.HandleCommand("/untrack nope"), "not found")
}

func TestDailyPush_DropsMaturedSubscriptions(t *testing.T) {
	s, sender, rec := newScheduler(t)
	s.HandleCommand("/track fund 10000 0 1")
	require.Len(t, s.Tracker.List(), 1)

	s.RunDailyNow()
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "剩余1天")
	assert.Len(t, s.Tracker.List(), 1)
	assert.True(t, monday.Equal(s.Tracker.GetState().LastPushAt))

	tuesday := monday.AddDate(0, 0, 1)
	s.Now = func() time.Time { return tuesday }
	s.RunDailyNow()
	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[1], "今日可卖")
	assert.Empty(t, s.Tracker.List())

	last := rec.events[len(rec.events)-1]
	assert.Equal(t, "MATURED", last.EventType)

	var scheduled int
	for _, c := range rec.calcs {
		if c.Source == recorder.SourceSchedule {
			scheduled++
		}
	}
	assert.Equal(t, 2, scheduled)
}

func TestDailyPush_WithoutSender(t *testing.T) {
	s, _, _ := newScheduler(t)
	s.Notifier = nil
	s.HandleCommand("/track fund 10000 0 1")
	assert.NotPanics(t, s.RunDailyNow)
}

func TestRegisterAll(t *testing.T) {
	s, _, _ := newScheduler(t)
	require.NoError(t, s.RegisterAll("0 30 15 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)
	assert.Error(t, s.RegisterAll("not a cron"))
}
