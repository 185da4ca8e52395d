package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-skew/config"
	"order-skew/export"
	"order-skew/internal/store"
	"order-skew/ladder"
)

type fixture struct {
	srv   *httptest.Server
	store *store.Store
	hub   *Hub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.New(nil)
	_, _, err := st.Apply(config.DefaultPlan())
	require.NoError(t, err)

	hub := NewHub(st.Plan, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = hub.Run(ctx) }()
	unsubscribe := st.Subscribe(hub.Publish)

	srv := httptest.NewServer(NewHandler(NewAPI(st, nil), hub, nil))
	t.Cleanup(func() {
		unsubscribe()
		srv.Close()
		cancel()
	})
	return &fixture{srv: srv, store: st, hub: hub}
}

func (f *fixture) post(t *testing.T, path, body string) (*http.Response, PlanResponse) {
	t.Helper()
	resp, err := http.Post(f.srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out PlanResponse
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestGetPlan(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.srv.URL + "/api/plan")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out PlanResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, f.store.Plan().ID, out.Plan.ID)
	assert.Equal(t, "Moderate", out.Label)
	assert.Len(t, out.Plan.Buy, 10)
}

func TestGetPlanValuation(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.srv.URL + "/api/plan?mark=120")
	require.NoError(t, err)
	defer resp.Body.Close()
	var out PlanResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotNil(t, out.Valuation)
	s := out.Plan.Summary
	assert.InDelta(t, 120*s.TotalQuantity, out.Valuation.Value, 1e-6)
	assert.InDelta(t, 120*s.TotalQuantity-s.CostBasis, out.Valuation.Unrealized, 1e-6)

	bad, err := http.Get(f.srv.URL + "/api/plan?mark=abc")
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestPostPlan(t *testing.T) {
	f := newFixture(t)
	resp, out := f.post(t, "/api/plan", `{"rungs":4,"skew":150}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, out.Plan.Buy, 4)
	assert.Equal(t, 10000.0, out.Config.Capital, "missing fields keep current values")
	assert.Contains(t, out.Warnings, "plan.skew clamped to 100")

	resp, _ = f.post(t, "/api/plan", `{"mode":"margin"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = f.post(t, "/api/plan", `{"rungs":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestToggleExecuted(t *testing.T) {
	f := newFixture(t)
	resp, _ := f.post(t, "/api/plan/executed/2", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = f.post(t, "/api/plan/executed/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, whole := f.post(t, "/api/plan", `{"mode":"sell-only"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, out := f.post(t, "/api/plan/executed/2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, out.Config.ExecutedCutoff)
	want := ladder.ExecutedTotals(whole.Plan.Buy, 2)
	assert.InDelta(t, want.Quantity, out.Plan.Summary.TotalQuantity, 1e-9)

	_, out = f.post(t, "/api/plan/executed/2", "")
	assert.Equal(t, 0, out.Config.ExecutedCutoff)
}

func TestDepthAndCSV(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.srv.URL + "/api/plan/depth")
	require.NoError(t, err)
	var points []ladder.DepthPoint
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&points))
	resp.Body.Close()
	assert.Len(t, points, 20)

	resp, err = http.Get(f.srv.URL + "/api/plan.csv")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	buy, sell, err := export.ReadCSV(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, f.store.Plan().Buy[3].Size, buy[3].Size)
	assert.Len(t, sell, 10)
}

func TestPreset(t *testing.T) {
	f := newFixture(t)
	resp, out := f.post(t, "/api/preset", `{"startingCapital":"5,000","numberOfRungs":6,"skewValue":20,"depth":15}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5000.0, out.Config.Capital)
	assert.Len(t, out.Plan.Buy, 6)
	assert.Equal(t, "Gentle", out.Label)

	resp, err := http.Get(f.srv.URL + "/api/preset")
	require.NoError(t, err)
	defer resp.Body.Close()
	p, err := export.LoadPreset(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, export.Preset{StartingCapital: 5000, NumberOfRungs: 6, SkewValue: 20, Depth: 15}, p)

	resp, _ = f.post(t, "/api/preset", `[]`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebsocketPushesPlans(t *testing.T) {
	f := newFixture(t)
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	var first Envelope
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "plan", first.Type)
	assert.Equal(t, f.store.Plan().ID, first.Plan.ID)

	assert.Eventually(t, func() bool { return f.hub.Clients() == 1 }, time.Second, 10*time.Millisecond)
	next := f.store.Recompute()

	var pushed Envelope
	require.NoError(t, conn.ReadJSON(&pushed))
	assert.Equal(t, next.ID, pushed.Plan.ID)
}
