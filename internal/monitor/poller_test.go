package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"marks-ai-client-go/internal/backend"
	"marks-ai-client-go/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTradeServer struct {
	srv *httptest.Server

	tradeCalls atomic.Int64
	logCalls   atomic.Int64
	tradeFail  atomic.Bool
}

func newFakeTradeServer(t *testing.T) *fakeTradeServer {
	f := &fakeTradeServer{}
	mux := http.NewServeMux()

	mux.HandleFunc("/trade-data/", func(w http.ResponseWriter, r *http.Request) {
		f.tradeCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if f.tradeFail.Load() {
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "EA offline"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": models.TradeSnapshot{
				AccountBalance: decimal.NewFromInt(10000),
				Equity:         decimal.NewFromInt(10250),
				Symbol:         "BTCUSD",
				TradingMode:    "GRID",
			},
		})
	})

	mux.HandleFunc("/action-logs/", func(w http.ResponseWriter, r *http.Request) {
		f.logCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"logs": []models.ActionLogEntry{
				{Time: "2026-01-05T10:00:00Z", Type: "CONNECT", Message: "EA connected"},
				{Time: "2026-01-05T10:00:03Z", Type: "GRID", Message: "Grid initialized"},
			},
		})
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func newTestPoller(t *testing.T, f *fakeTradeServer, interval time.Duration) *Poller {
	backendService, err := backend.NewService(models.BackendConfig{
		BaseURL:        f.srv.URL,
		RequestTimeout: 5 * time.Second,
	})
	require.NoError(t, err)

	return NewPoller(PollerConfig{
		Backend:         backendService,
		LicenseKey:      "ABCD-1234",
		PollingInterval: interval,
		LogWindow:       100,
	})
}

func TestPoller_LifecycleCallCountStabilizes(t *testing.T) {
	f := newFakeTradeServer(t)
	poller := newTestPoller(t, f, 25*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, poller.Start(ctx))

	// Immediate first cycle plus a few ticks
	time.Sleep(120 * time.Millisecond)
	poller.Stop()

	stopped := f.tradeCalls.Load()
	assert.GreaterOrEqual(t, stopped, int64(2), "initial cycle plus at least one tick")

	// No fetch may fire after teardown
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, stopped, f.tradeCalls.Load())
	assert.Equal(t, stopped, f.logCalls.Load())

	view := poller.Snapshot()
	require.NotNil(t, view.Data)
	assert.Equal(t, "BTCUSD", view.Data.Symbol)
	assert.False(t, view.Stale)
}

func TestPoller_StopIdempotent(t *testing.T) {
	f := newFakeTradeServer(t)
	poller := newTestPoller(t, f, 25*time.Millisecond)

	require.NoError(t, poller.Start(context.Background()))
	poller.Stop()
	poller.Stop() // must not panic or block
}

func TestPoller_PauseSuspendsWithoutDuplicateTimers(t *testing.T) {
	f := newFakeTradeServer(t)
	poller := newTestPoller(t, f, 25*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, poller.Start(ctx))
	time.Sleep(60 * time.Millisecond)

	poller.Pause()
	assert.True(t, poller.Paused())
	time.Sleep(30 * time.Millisecond) // drain any in-flight cycle
	paused := f.tradeCalls.Load()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, paused, f.tradeCalls.Load(), "no fetches while paused")

	poller.Resume()
	time.Sleep(120 * time.Millisecond)
	resumed := f.tradeCalls.Load()
	assert.Greater(t, resumed, paused, "fetching rejoins the cadence")
	// A duplicated timer would roughly double the rate; allow generous slack
	assert.LessOrEqual(t, resumed-paused, int64(7))

	poller.Stop()
}

func TestPoller_ManualRefreshWhilePaused(t *testing.T) {
	f := newFakeTradeServer(t)
	poller := newTestPoller(t, f, time.Hour) // ticker effectively idle

	ctx := context.Background()
	require.NoError(t, poller.Start(ctx))
	defer poller.Stop()

	// Wait out the immediate first cycle
	require.Eventually(t, func() bool { return f.tradeCalls.Load() == 1 },
		time.Second, 5*time.Millisecond)

	poller.Pause()
	poller.RefreshNow(ctx)
	assert.Equal(t, int64(2), f.tradeCalls.Load(), "manual refresh fires even while paused")
	assert.Equal(t, int64(2), f.logCalls.Load())
}

func TestPoller_IndependentFetchGuards(t *testing.T) {
	f := newFakeTradeServer(t)
	f.tradeFail.Store(true)
	poller := newTestPoller(t, f, time.Hour)

	ctx := context.Background()
	require.NoError(t, poller.Start(ctx))
	defer poller.Stop()

	require.Eventually(t, func() bool { return f.logCalls.Load() == 1 },
		time.Second, 5*time.Millisecond)

	snapshot := poller.Snapshot()
	assert.True(t, snapshot.Stale)
	assert.Error(t, snapshot.Err)
	assert.Nil(t, snapshot.Data)

	logs := poller.Logs()
	assert.False(t, logs.Stale, "log fetch is not blocked by the snapshot failure")
	assert.Len(t, logs.Entries, 2)
	assert.Equal(t, "GRID", logs.Entries[1].Type)
}

func TestPoller_LateResponseDiscarded(t *testing.T) {
	f := newFakeTradeServer(t)
	poller := newTestPoller(t, f, time.Hour)

	newer := &models.TradeSnapshot{Symbol: "BTCUSD"}
	older := &models.TradeSnapshot{Symbol: "XAUUSD"}

	// Cycle 2 completes before cycle 1's response arrives
	assert.True(t, poller.applySnapshot(2, newer))
	assert.False(t, poller.applySnapshot(1, older))
	assert.Equal(t, "BTCUSD", poller.Snapshot().Data.Symbol)

	// Same ordering guard for logs
	assert.True(t, poller.applyLogs(2, []models.ActionLogEntry{{Type: "CONNECT"}}))
	assert.False(t, poller.applyLogs(1, []models.ActionLogEntry{{Type: "ERROR"}}))
	assert.Equal(t, "CONNECT", poller.Logs().Entries[0].Type)

	// A stale error must not mark a fresher result stale
	poller.markSnapshotStale(1, context.DeadlineExceeded)
	assert.False(t, poller.Snapshot().Stale)
}

func TestPoller_StartValidation(t *testing.T) {
	f := newFakeTradeServer(t)
	backendService, err := backend.NewService(models.BackendConfig{
		BaseURL:        f.srv.URL,
		RequestTimeout: 5 * time.Second,
	})
	require.NoError(t, err)

	poller := NewPoller(PollerConfig{Backend: backendService, PollingInterval: time.Second})
	assert.Error(t, poller.Start(context.Background()), "a license must be selected")
}
