package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/testutil"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/threat"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/alerts"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/evidence"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/evidence/db"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/monitor"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"
)

type fakeMonitor struct {
	scanning atomic.Bool
	cycles   atomic.Int32
}

func (m *fakeMonitor) Status() monitor.Status {
	return monitor.Status{
		Running:   true,
		Scanning:  m.scanning.Load(),
		Schedule:  "@every 30m",
		Cycles:    int(m.cycles.Load()),
		Platforms: []string{"ebay"},
	}
}

func (m *fakeMonitor) ScanCycle(ctx context.Context) (evidence.ScanRun, error) {
	m.cycles.Add(1)
	return evidence.ScanRun{ID: "run-1", Listings: 4, Threats: 1}, nil
}

type fixture struct {
	server  *httptest.Server
	store   evidence.Store
	alerts  *alerts.Manager
	monitor *fakeMonitor
	alertID string
}

const token = "dashboard-secret"

func setup(t *testing.T) fixture {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "dashboard",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)
	ctx := context.Background()

	store := evidence.NewStore(res.DB)
	listing := threat.Listing{
		ID:       threat.ListingID("ebay", "https://www.ebay.com/itm/1"),
		Platform: "ebay",
		Title:    "Genuine rhino horn carving",
		URL:      "https://www.ebay.com/itm/1",
	}
	analyzer := threat.NewAnalyzer(threat.AnalyzerOptions{})
	assessment := analyzer.Score(listing)
	pkg, err := store.Archive(ctx, listing, assessment)
	require.NoError(t, err)

	manager := alerts.NewManager(alerts.Options{})
	alert, err := manager.Notify(ctx, alerts.Alert{
		Level:      assessment.Level,
		Score:      assessment.Score,
		Title:      listing.Title,
		Platform:   listing.Platform,
		URL:        listing.URL,
		ListingID:  listing.ID,
		EvidenceID: pkg.ID,
	})
	require.NoError(t, err)

	mon := &fakeMonitor{}
	service := NewService(Options{
		Store:       store,
		Alerts:      manager,
		Monitor:     mon,
		Scorer:      analyzer,
		AccessToken: token,
	})
	mux := http.NewServeMux()
	service.Mount(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return fixture{
		server:  server,
		store:   store,
		alerts:  manager,
		monitor: mon,
		alertID: alert.ID,
	}
}

func TestRpc(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	client := NewClientWith(f.server.Client(), f.server.URL, token)

	stats, err := client.GetStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Stats.Listings)
	require.Equal(t, 1, stats.Stats.Evidence)
	require.Equal(t, 1, stats.Stats.ByLevel["CRITICAL"])
	require.Equal(t, 1, stats.PendingAlerts)
	require.True(t, stats.Monitor.Running)
	require.Equal(t, []evidence.PlatformCount{{Platform: "ebay", Listings: 1, Evidence: 1}}, stats.Platforms)

	threats, err := client.ListThreats(ctx, "HIGH", 10)
	require.NoError(t, err)
	require.Len(t, threats, 1)
	require.Equal(t, threat.LevelCritical, threats[0].Assessment.Level)
	require.Equal(t, "ebay", threats[0].Listing.Platform)

	_, err = client.ListThreats(ctx, "SEVERE", 10)
	require.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	list, err := client.ListAlerts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, f.alertID, list[0].ID)

	acked, err := client.AcknowledgeAlert(ctx, f.alertID)
	require.NoError(t, err)
	require.True(t, acked.Acknowledged)
	require.Equal(t, 0, f.alerts.Pending())

	_, err = client.AcknowledgeAlert(ctx, "missing")
	require.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	assessment, err := client.ScoreListing(ctx, "Pangolin scales", "shipped discreetly")
	require.NoError(t, err)
	require.GreaterOrEqual(t, assessment.Score, 50)
	require.NotEmpty(t, assessment.Indicators)

	_, err = client.ScoreListing(ctx, "", "")
	require.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestRpcUnauthenticated(t *testing.T) {
	f := setup(t)

	_, err := NewClientWith(f.server.Client(), f.server.URL, "").GetStats(context.Background())
	require.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	_, err = NewClientWith(f.server.Client(), f.server.URL, "wrong").GetStats(context.Background())
	require.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
}

func TestTriggerScan(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	client := NewClientWith(f.server.Client(), f.server.URL, token)

	res, err := client.TriggerScan(ctx, true)
	require.NoError(t, err)
	require.True(t, res.Started)
	require.NotNil(t, res.Run)
	require.Equal(t, 4, res.Run.Listings)

	res, err = client.TriggerScan(ctx, false)
	require.NoError(t, err)
	require.Nil(t, res.Run)
	require.Eventually(t, func() bool {
		return f.monitor.cycles.Load() == 2
	}, time.Second, 10*time.Millisecond)

	f.monitor.scanning.Store(true)
	_, err = client.TriggerScan(ctx, false)
	require.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
}

func getJson(t *testing.T, url, bearer string, out any) int {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, "application/json", res.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	return res.StatusCode
}

func TestHttpRoutes(t *testing.T) {
	f := setup(t)

	var health healthResponse
	status := getJson(t, f.server.URL+"/api/health", "", &health)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", health.Status)
	require.True(t, health.Running)

	var failure map[string]string
	status = getJson(t, f.server.URL+"/api/stats", "", &failure)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "unauthorized", failure["error"])

	var stats GetStatsResponse
	status = getJson(t, f.server.URL+"/api/stats", token, &stats)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, stats.Stats.Evidence)

	var threats ListThreatsResponse
	status = getJson(t, f.server.URL+"/api/threats?level=critical&limit=5", token, &threats)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, threats.Threats, 1)

	failure = nil
	status = getJson(t, f.server.URL+"/api/threats?limit=many", token, &failure)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, failure["error"], "invalid limit")

	failure = nil
	status = getJson(t, f.server.URL+"/api/threats?level=severe", token, &failure)
	require.Equal(t, http.StatusBadRequest, status)
	require.NotEmpty(t, failure["error"])
}

func TestHttpRoutesRequireBearerScheme(t *testing.T) {
	f := setup(t)

	for _, header := range []string{token, "Basic " + token, "bearer " + token, "Bearer " + token + "x", "Bearer "} {
		req, err := http.NewRequest(http.MethodGet, f.server.URL+"/api/stats", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", header)
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		res.Body.Close()
		require.Equal(t, http.StatusUnauthorized, res.StatusCode, header)
	}
}
