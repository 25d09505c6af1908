package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCalc(_ *CalcRecord) error           { return nil }
func (n *NoopRecorder) RecordTrackerEvent(_ *TrackerEvent) error { return nil }
func (n *NoopRecorder) Close() error                             { return nil }
