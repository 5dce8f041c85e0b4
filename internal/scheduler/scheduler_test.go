package scheduler

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"DAOScope/internal/chaintest"
	"DAOScope/internal/config"
	"DAOScope/internal/recorder"
	"DAOScope/internal/store"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	daiAddr = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeNotifier) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type memRecorder struct {
	mu        sync.Mutex
	stats     []*recorder.StatisticsRecord
	positions []*recorder.PositionRecord
}

func (m *memRecorder) RecordStatistics(rec *recorder.StatisticsRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = append(m.stats, rec)
	return nil
}

func (m *memRecorder) RecordPosition(rec *recorder.PositionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions = append(m.positions, rec)
	return nil
}

func (m *memRecorder) History(orgKey string, limit int) ([]recorder.HistoryPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []recorder.HistoryPoint
	for _, r := range m.stats {
		if r.Organization.Key != orgKey {
			continue
		}
		out = append(out, recorder.HistoryPoint{
			Timestamp:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			TotalShares:      r.Snapshot.TotalShares.String(),
			GuildBankBalance: r.Snapshot.GuildBankApprovedTokenBalance.String(),
		})
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRecorder) Close() error { return nil }

type fixture struct {
	chain *chaintest.Chain
	store *store.Store
	sched *Scheduler
	sent  *fakeNotifier
	rec   *memRecorder
}

func setup(t *testing.T, accounts ...common.Address) *fixture {
	t.Helper()
	reg, err := config.NewRegistry(config.DefaultOrganizations())
	require.NoError(t, err)

	chain := chaintest.New(1, accounts...)
	for i, org := range reg.List() {
		chaintest.Organization{
			Address:          org.Address,
			Token:            daiAddr,
			GuildBank:        common.BigToAddress(big.NewInt(int64(0x1000 + i))),
			TotalShares:      int64(1000 + i),
			GuildBankBalance: 500,
			Shares:           map[common.Address]int64{alice: 7},
		}.Install(chain)
	}

	st, err := store.New(reg, store.Options{Selected: "osaka"})
	require.NoError(t, err)
	f := &fixture{chain: chain, store: st, sent: &fakeNotifier{}, rec: &memRecorder{}}
	f.sched = NewScheduler(context.Background(), st, f.sent, f.rec, nil)
	require.NoError(t, st.Connect(context.Background(), chain))
	return f
}

func TestRegisterAll_RejectsBadSpec(t *testing.T) {
	f := setup(t, alice)
	assert.Error(t, f.sched.RegisterAll("not a cron"))
	assert.NoError(t, f.sched.RegisterAll("0 */5 * * * *"))
}

func TestPublishedResultsAreRecorded(t *testing.T) {
	f := setup(t, alice)

	require.Len(t, f.rec.stats, 1)
	assert.Equal(t, "osaka", f.rec.stats[0].Organization.Key)
	assert.Equal(t, int64(1000), f.rec.stats[0].Snapshot.TotalShares.Int64())
	require.Len(t, f.rec.positions, 1)
	assert.Equal(t, int64(7), f.rec.positions[0].Position.Shares.Int64())
}

func TestRunRefreshNow_SendsReport(t *testing.T) {
	f := setup(t, alice)

	f.sched.RunRefreshNow()

	msgs := f.sent.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Total shares: 1000")
	assert.Len(t, f.rec.stats, 2)
}

func TestRunRefreshNow_ReportsFailure(t *testing.T) {
	f := setup(t, alice)
	f.chain.BeforeCall = func(context.Context, chaintest.Call) error { return errors.New("node down") }

	f.sched.RunRefreshNow()

	msgs := f.sent.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Refresh failed")
	assert.Contains(t, msgs[0], "node down")
	// prior snapshot stays visible
	assert.NotNil(t, f.store.View().Statistics)
}

func TestHandleCommand(t *testing.T) {
	f := setup(t, alice)
	ctx := context.Background()

	t.Run("orgs", func(t *testing.T) {
		reply := f.sched.HandleCommand(ctx, "/orgs")
		assert.Contains(t, reply, "▶ <code>osaka</code>")
		assert.Contains(t, reply, "<code>raid</code>")
	})
	t.Run("stats", func(t *testing.T) {
		assert.Contains(t, f.sched.HandleCommand(ctx, "/stats@DAOScopeBot"), "Guild bank: 0 DAI")
	})
	t.Run("position", func(t *testing.T) {
		assert.Contains(t, f.sched.HandleCommand(ctx, "/position"), "Shares: 7")
	})
	t.Run("select unknown", func(t *testing.T) {
		reply := f.sched.HandleCommand(ctx, "/select atlantis")
		assert.Contains(t, reply, "unknown organization")
		assert.Equal(t, "osaka", f.store.Selected())
	})
	t.Run("select usage", func(t *testing.T) {
		assert.Contains(t, f.sched.HandleCommand(ctx, "/select"), "Usage")
	})
	t.Run("select", func(t *testing.T) {
		reply := f.sched.HandleCommand(ctx, "/select raid")
		assert.Contains(t, reply, "Total shares: 1007")
		assert.Equal(t, "raid", f.store.Selected())
	})
	t.Run("history", func(t *testing.T) {
		reply := f.sched.HandleCommand(ctx, "/history")
		assert.Contains(t, reply, "shares 1007")
	})
	t.Run("help", func(t *testing.T) {
		assert.Contains(t, f.sched.HandleCommand(ctx, "hello"), "Available commands")
		assert.Contains(t, f.sched.HandleCommand(ctx, "  "), "Available commands")
	})
}

func TestHandleCommand_PositionWithoutAccount(t *testing.T) {
	f := setup(t)
	assert.Contains(t, f.sched.HandleCommand(context.Background(), "/position"), "No active account")
}
