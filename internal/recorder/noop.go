package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordStatistics(_ *StatisticsRecord) error      { return nil }
func (n *NoopRecorder) RecordPosition(_ *PositionRecord) error          { return nil }
func (n *NoopRecorder) History(_ string, _ int) ([]HistoryPoint, error) { return nil, nil }
func (n *NoopRecorder) Close() error                                    { return nil }
