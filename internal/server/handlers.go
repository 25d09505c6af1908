package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"FundCalc/internal/calculator"
	"FundCalc/internal/model"
	"FundCalc/internal/recorder"
	"FundCalc/internal/report"
	"FundCalc/internal/strategy"
	"FundCalc/internal/tracker"
)

const maxBodyBytes = 64 << 10

type calcResponse struct {
	Result   *model.CalcResult `json:"result"`
	Advisory model.Advisory    `json:"advisory"`
	View     report.View       `json:"view"`
}

type watchItem struct {
	Subscription model.Subscription `json:"subscription"`
	Result       *model.CalcResult  `json:"result,omitempty"`
	View         *report.View       `json:"view,omitempty"`
	Error        string             `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "fundcalc",
	})
}

// handleCalc evaluates a JSON CalcInput body.
func (s *Server) handleCalc(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeInput(w, r)
	if !ok {
		return
	}
	s.respondCalc(w, r, in)
}

// handleCalcQuery evaluates an input given as query parameters.
func (s *Server) handleCalcQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := model.CalcInput{
		Amount:        model.RawValue(q.Get(string(model.FieldAmount))),
		PremiumPct:    model.RawValue(q.Get(string(model.FieldPremiumPct))),
		SettleDays:    model.RawValue(q.Get(string(model.FieldSettleDays))),
		CurrentDay:    model.RawValue(q.Get(string(model.FieldCurrentDay))),
		SellDelayDays: model.RawValue(q.Get(string(model.FieldSellDelayDays))),
		LimitPct:      model.RawValue(q.Get(string(model.FieldLimitPct))),
	}
	s.respondCalc(w, r, in)
}

// handleExport returns the copy/paste report as plain text.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeInput(w, r)
	if !ok {
		return
	}
	res, err := s.calculate(r, in)
	if err != nil {
		s.writeCalcError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(report.ExportText(res))); err != nil {
		s.log.Error().Err(err).Msg("write export")
	}
}

func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	subs := s.tracker.List()
	items := make([]watchItem, 0, len(subs))
	for _, sub := range subs {
		item := watchItem{Subscription: sub}
		res, err := tracker.Evaluate(sub, now)
		if err != nil {
			item.Error = err.Error()
		} else {
			v := report.NewView(res, strategy.Advise(res))
			item.Result, item.View = res, &v
		}
		items = append(items, item)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"data": items})
}

func (s *Server) respondCalc(w http.ResponseWriter, r *http.Request, in model.CalcInput) {
	res, err := s.calculate(r, in)
	if err != nil {
		s.writeCalcError(w, err)
		return
	}
	adv := strategy.Advise(res)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"data": calcResponse{Result: res, Advisory: adv, View: report.NewView(res, adv)},
	})
}

// calculate runs the engine and records the request whatever the outcome.
func (s *Server) calculate(r *http.Request, in model.CalcInput) (*model.CalcResult, error) {
	res, err := calculator.Calculate(in)
	rec := &recorder.CalcRecord{
		RequestID: middleware.GetReqID(r.Context()),
		Source:    recorder.SourceHTTP,
		Input:     in,
		Result:    res,
	}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		rec.Err = verr
	}
	if res != nil {
		rec.Note = strategy.Advise(res).Kind
	}
	if recErr := s.recorder.RecordCalc(rec); recErr != nil {
		s.log.Error().Err(recErr).Msg("record calc")
	}
	return res, err
}

func (s *Server) decodeInput(w http.ResponseWriter, r *http.Request) (model.CalcInput, bool) {
	var in model.CalcInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return in, false
	}
	return in, true
}

func (s *Server) writeCalcError(w http.ResponseWriter, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		s.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": verr})
		return
	}
	s.log.Error().Err(err).Msg("calculate")
	s.writeError(w, http.StatusInternalServerError, "internal error")
}

// writeJSON marshals before writing so an unencodable body (an overflowed
// compound range is ±Inf) still gets a proper status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode JSON response")
		status = http.StatusInternalServerError
		body = []byte(`{"error":{"message":"result is not representable as JSON"}}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		s.log.Error().Err(err).Msg("write response")
	}
}

// writeError writes a plain error envelope for failures outside validation.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": map[string]string{"message": message},
	})
}
