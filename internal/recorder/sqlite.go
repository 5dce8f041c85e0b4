package recorder

import (
	"database/sql"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while the refresher writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: logger.Named("recorder"), now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS statistics_snapshots (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp            INTEGER NOT NULL,
			org_key              TEXT NOT NULL,
			org_address          TEXT NOT NULL,
			generation           INTEGER,
			processing_reward    TEXT,
			current_period       TEXT,
			total_shares         TEXT,
			proposal_deposit     TEXT,
			summoning_time       TEXT,
			dilution_bound       TEXT,
			approved_token       TEXT,
			period_duration      TEXT,
			voting_period_length TEXT,
			grace_period_length  TEXT,
			guild_bank           TEXT,
			guild_bank_balance   TEXT,
			dao_balance          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stats_org_ts ON statistics_snapshots(org_key, timestamp)`,

		`CREATE TABLE IF NOT EXISTS account_positions (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			org_key    TEXT NOT NULL,
			account    TEXT NOT NULL,
			generation INTEGER,
			shares     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_positions_org_ts ON account_positions(org_key, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// Amounts are stored as decimal text; uint256 values do not fit SQLite integers.
func dec(v *big.Int) string {
	if v == nil {
		return ""
	}
	return v.String()
}

func (r *SQLiteRecorder) RecordStatistics(rec *StatisticsRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := rec.Snapshot
	ts := s.FetchedAt
	if ts.IsZero() {
		ts = r.now()
	}
	_, err := r.db.Exec(`INSERT INTO statistics_snapshots
		(timestamp, org_key, org_address, generation,
		 processing_reward, current_period, total_shares, proposal_deposit,
		 summoning_time, dilution_bound, approved_token, period_duration,
		 voting_period_length, grace_period_length, guild_bank,
		 guild_bank_balance, dao_balance)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		ts.Unix(), rec.Organization.Key, rec.Organization.Address.Hex(), rec.Generation,
		dec(s.ProcessingReward), dec(s.CurrentPeriod), dec(s.TotalShares), dec(s.ProposalDeposit),
		dec(s.SummoningTime), dec(s.DilutionBound), s.ApprovedToken.Hex(), dec(s.PeriodDuration),
		dec(s.VotingPeriodLength), dec(s.GracePeriodLength), s.GuildBank.Hex(),
		dec(s.GuildBankApprovedTokenBalance), dec(s.DAOBalance),
	)
	return err
}

func (r *SQLiteRecorder) RecordPosition(rec *PositionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO account_positions
		(timestamp, org_key, account, generation, shares)
		VALUES (?,?,?,?,?)`,
		r.now().Unix(), rec.Organization.Key, rec.Position.Account.Hex(), rec.Generation,
		dec(rec.Position.Shares),
	)
	return err
}

// History returns the newest limit statistics readings for orgKey, newest first.
func (r *SQLiteRecorder) History(orgKey string, limit int) ([]HistoryPoint, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(`SELECT timestamp, total_shares, guild_bank_balance, dao_balance, current_period
		FROM statistics_snapshots WHERE org_key = ? ORDER BY timestamp DESC, id DESC LIMIT ?`, orgKey, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []HistoryPoint
	for rows.Next() {
		var ts int64
		var p HistoryPoint
		if err := rows.Scan(&ts, &p.TotalShares, &p.GuildBankBalance, &p.DAOBalance, &p.CurrentPeriod); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		p.Timestamp = time.Unix(ts, 0)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
