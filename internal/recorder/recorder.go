package recorder

import (
	"time"

	"DAOScope/internal/model"
)

// StatisticsRecord is one published statistics snapshot.
type StatisticsRecord struct {
	Organization model.Organization
	Generation   uint64
	Snapshot     *model.StatisticsSnapshot
}

// PositionRecord is one published account position.
type PositionRecord struct {
	Organization model.Organization
	Generation   uint64
	Position     *model.AccountPosition
}

// HistoryPoint is a stored treasury reading, used for trend output.
type HistoryPoint struct {
	Timestamp        time.Time `json:"timestamp"`
	TotalShares      string    `json:"total_shares"`
	GuildBankBalance string    `json:"guild_bank_balance"`
	DAOBalance       string    `json:"dao_balance"`
	CurrentPeriod    string    `json:"current_period"`
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordStatistics(rec *StatisticsRecord) error
	RecordPosition(rec *PositionRecord) error
	History(orgKey string, limit int) ([]HistoryPoint, error)
	Close() error
}
