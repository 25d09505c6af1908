package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundCalc/internal/model"
	"FundCalc/internal/recorder"
	"FundCalc/internal/report"
	"FundCalc/internal/tracker"
)

type memRecorder struct {
	calcs []*recorder.CalcRecord
}

func (m *memRecorder) RecordCalc(rec *recorder.CalcRecord) error {
	m.calcs = append(m.calcs, rec)
	return nil
}
func (m *memRecorder) RecordTrackerEvent(*recorder.TrackerEvent) error { return nil }
func (m *memRecorder) Close() error                                    { return nil }

func newServer(t *testing.T) (*Server, *memRecorder) {
	t.Helper()
	rec := &memRecorder{}
	return New(Config{Port: 6005, Log: zerolog.Nop(), Recorder: rec}), rec
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data *struct {
		Result   model.CalcResult `json:"result"`
		Advisory model.Advisory   `json:"advisory"`
		View     report.View      `json:"view"`
	} `json:"data"`
	Error *model.ValidationError `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHealth(t *testing.T) {
	s, _ := newServer(t)
	w := do(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy"`)
}

func TestPostCalc_OK(t *testing.T) {
	s, rec := newServer(t)
	w := do(s, http.MethodPost, "/api/calc",
		`{"amount":"10,000","premiumPct":0,"settleDays":"1","currentDay":1,"sellDelayDays":null,"limitPct":"10"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	env := decode(t, w)
	require.NotNil(t, env.Data)
	assert.Equal(t, 1, env.Data.Result.EffectiveDays)
	assert.InDelta(t, -1000, env.Data.Result.MinProfit, 1e-9)
	assert.InDelta(t, 1000, env.Data.Result.MaxProfit, 1e-9)
	assert.Equal(t, model.NoteGeneric, env.Data.Advisory.Kind)
	assert.Equal(t, "-¥1,000.00", env.Data.View.Worst.Profit)
	assert.Equal(t, report.ToneNegative, env.Data.View.Worst.ProfitTone)

	require.Len(t, rec.calcs, 1)
	assert.Equal(t, recorder.SourceHTTP, rec.calcs[0].Source)
	assert.NotEmpty(t, rec.calcs[0].RequestID)
}

func TestPostCalc_ValidationError(t *testing.T) {
	s, rec := newServer(t)
	w := do(s, http.MethodPost, "/api/calc", `{"amount":"10000","premiumPct":"5","limitPct":"100"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, model.InvalidLimit, env.Error.Kind)
	assert.Equal(t, model.FieldLimitPct, env.Error.Field)
	assert.NotEmpty(t, env.Error.Message)

	require.Len(t, rec.calcs, 1)
	assert.Equal(t, model.InvalidLimit, rec.calcs[0].Err.Kind)
}

func TestPostCalc_FirstFailureReported(t *testing.T) {
	s, _ := newServer(t)
	w := do(s, http.MethodPost, "/api/calc", `{"amount":"-1","premiumPct":"abc","limitPct":"0"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, model.InvalidAmount, decode(t, w).Error.Kind)
}

func TestPostCalc_MalformedJSON(t *testing.T) {
	s, rec := newServer(t)
	w := do(s, http.MethodPost, "/api/calc", `{"amount":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid JSON body")
	assert.Empty(t, rec.calcs)

	w = do(s, http.MethodPost, "/api/calc", `{"amount":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCalc_Query(t *testing.T) {
	s, _ := newServer(t)
	w := do(s, http.MethodGet, "/api/calc?amount=10000&premiumPct=0&settleDays=1&currentDay=1&limitPct=10", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decode(t, w)
	assert.Equal(t, "T+1 · 第1天 · 剩余1天 · 延迟+0 · 有效1天", env.Data.View.Badge)

	w = do(s, http.MethodGet, "/api/calc?amount=10000", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, model.InvalidPremium, decode(t, w).Error.Kind)
}

func TestPostExport(t *testing.T) {
	s, _ := newServer(t)
	w := do(s, http.MethodPost, "/api/calc/export",
		`{"amount":"10000","premiumPct":"0","settleDays":"1","currentDay":"1","sellDelayDays":"0","limitPct":"10"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))

	lines := strings.Split(w.Body.String(), "\n")
	require.Len(t, lines, 12)
	assert.Equal(t, report.ExportTitle, lines[0])
	assert.Equal(t, "最差（连续跌停）收益：-¥1,000.00（-10.00%），卖出价值：¥9,000.00", lines[9])
	assert.Equal(t, report.ExportDisclaimer, lines[11])

	w = do(s, http.MethodPost, "/api/calc/export", `{"amount":"0"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, model.InvalidAmount, decode(t, w).Error.Kind)
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newServer(t)
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/api/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/api/watchlist", "").Code)
}

func TestWatchlist(t *testing.T) {
	tm, err := tracker.NewManager(filepath.Join(t.TempDir(), "watchlist.json"))
	require.NoError(t, err)
	monday := time.Date(2026, 10, 12, 10, 0, 0, 0, time.UTC)
	_, err = tm.Add("161725", model.CalcInput{Amount: "10000", PremiumPct: "5", SettleDays: "3", LimitPct: "10"}, monday)
	require.NoError(t, err)

	s := New(Config{Port: 6005, Log: zerolog.Nop(), Tracker: tm})
	s.now = func() time.Time { return monday.AddDate(0, 0, 1) }

	w := do(s, http.MethodGet, "/api/watchlist", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []struct {
			Subscription model.Subscription `json:"subscription"`
			Result       *model.CalcResult  `json:"result"`
			Error        string             `json:"error"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "161725", body.Data[0].Subscription.Name)
	require.NotNil(t, body.Data[0].Result)
	assert.Equal(t, 2, body.Data[0].Result.CurrentDay)
	assert.Equal(t, 2, body.Data[0].Result.RemainingDays)
	assert.Empty(t, body.Data[0].Error)
}
