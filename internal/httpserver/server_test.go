package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

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

type env struct {
	chain  *chaintest.Chain
	store  *store.Store
	server *Server
}

func setup(t *testing.T, connect bool) *env {
	t.Helper()
	reg, err := config.NewRegistry(config.DefaultOrganizations())
	require.NoError(t, err)

	chain := chaintest.New(5777, alice)
	for i, org := range reg.List() {
		chaintest.Organization{
			Address:          org.Address,
			Token:            daiAddr,
			GuildBank:        common.BigToAddress(big.NewInt(int64(0x1000 + i))),
			TotalShares:      int64(1000 + i),
			GuildBankBalance: 500,
			Shares:           map[common.Address]int64{alice: 3},
		}.Install(chain)
	}

	st, err := store.New(reg, store.Options{Selected: "osaka"})
	require.NoError(t, err)

	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })
	st.Subscribe(func(u store.Update) {
		if u.Kind == store.KindStatistics {
			assert.NoError(t, rec.RecordStatistics(&recorder.StatisticsRecord{
				Organization: u.Organization, Generation: u.Generation, Snapshot: u.Statistics,
			}))
		}
	})

	if connect {
		require.NoError(t, st.Connect(context.Background(), chain))
	}
	return &env{chain: chain, store: st, server: New(st, rec, nil)}
}

func (e *env) do(t *testing.T, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	var body map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestHealth(t *testing.T) {
	e := setup(t, false)
	w, body := e.do(t, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "disconnected", body["status"])

	e = setup(t, true)
	_, body = e.do(t, http.MethodGet, "/healthz")
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "osaka", body["organization"])
}

func TestState_ReportsSnapshotAndLocalAPI(t *testing.T) {
	e := setup(t, true)
	w, body := e.do(t, http.MethodGet, "/api/state")
	require.Equal(t, http.StatusOK, w.Code)

	stats := body["statistics"].(map[string]any)
	assert.EqualValues(t, 1000, stats["total_shares"])
	assert.EqualValues(t, 500, stats["guild_bank_approved_token_balance"])
	assert.Equal(t, "ready", body["statistics_phase"])
	assert.Equal(t, "http://localhost:5000/block-cities/us-central1/api", body["api_base_url"])
}

func TestOrganizations(t *testing.T) {
	e := setup(t, true)
	_, body := e.do(t, http.MethodGet, "/api/organizations")
	assert.Equal(t, "osaka", body["selected"])
	assert.Len(t, body["organizations"], 8)
}

func TestSelect(t *testing.T) {
	e := setup(t, true)

	w, body := e.do(t, http.MethodPost, "/api/organizations/raid/select")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "raid", body["selected"].(map[string]any)["key"])
	assert.EqualValues(t, 1007, body["statistics"].(map[string]any)["total_shares"])

	before := e.chain.CallCount()
	w, _ = e.do(t, http.MethodPost, "/api/organizations/atlantis/select")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, before, e.chain.CallCount())
}

func TestSelect_Disconnected(t *testing.T) {
	e := setup(t, false)
	w, body := e.do(t, http.MethodPost, "/api/organizations/raid/select")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, body["error"], "not connected")
	assert.Equal(t, "raid", e.store.Selected())
}

func TestRefresh(t *testing.T) {
	e := setup(t, true)

	w, _ := e.do(t, http.MethodPost, "/api/refresh?branch=statistics")
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = e.do(t, http.MethodPost, "/api/refresh?branch=position")
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = e.do(t, http.MethodPost, "/api/refresh?branch=votes")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.chain.BeforeCall = func(context.Context, chaintest.Call) error { return errors.New("node down") }
	w, body := e.do(t, http.MethodPost, "/api/refresh")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, body["error"], "node down")
	state := body["state"].(map[string]any)
	assert.NotNil(t, state["statistics"])
	assert.Equal(t, "failed", state["statistics_phase"])
}

func TestHistory(t *testing.T) {
	e := setup(t, true)
	e.do(t, http.MethodPost, "/api/refresh?branch=statistics")

	w, body := e.do(t, http.MethodGet, "/api/organizations/osaka/history?limit=10")
	require.Equal(t, http.StatusOK, w.Code)
	points := body["points"].([]any)
	require.Len(t, points, 2)
	assert.Equal(t, "1000", points[0].(map[string]any)["total_shares"])

	w, body = e.do(t, http.MethodGet, "/api/organizations/raid/history")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["points"])

	w, _ = e.do(t, http.MethodGet, "/api/organizations/osaka/history?limit=-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = e.do(t, http.MethodGet, "/api/organizations/atlantis/history")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	e := setup(t, true)
	e.do(t, http.MethodGet, "/api/state")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "daoscope_api_requests_total")
	assert.Contains(t, w.Body.String(), "daoscope_store_fetches_total")
}
