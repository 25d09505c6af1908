package recorder

import "FundCalc/internal/model"

// Source names the surface a calculation came from.
type Source string

const (
	SourceHTTP     Source = "HTTP"
	SourceTelegram Source = "TELEGRAM"
	SourceSchedule Source = "SCHEDULE"
)

// CalcRecord holds one calculation request and its outcome.
// Exactly one of Result and Err is set.
type CalcRecord struct {
	RequestID string
	Source    Source
	Input     model.CalcInput
	Result    *model.CalcResult
	Note      model.NoteKind
	Err       *model.ValidationError
}

// TrackerEvent records a watchlist change.
type TrackerEvent struct {
	EventType      string // "ADD", "REMOVE", "MATURED"
	SubscriptionID string
	Name           string
	Note           string
}

// Recorder persists an audit trail of requests for later analysis.
type Recorder interface {
	RecordCalc(rec *CalcRecord) error
	RecordTrackerEvent(evt *TrackerEvent) error
	Close() error
}
