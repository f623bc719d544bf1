package wildguard

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/configutil"
	configlibsql "github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/configutil/libsql"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	return Config{
		Database: configlibsql.Struct{File: filepath.Join(t.TempDir(), "wildguard.db")},
		Monitor: MonitorConfig{
			Keywords:  []string{"ivory", "pangolin scales"},
			Languages: []string{"en", "es"},
		},
	}
}

func TestNarrow(t *testing.T) {
	cfg := testConfig(t)

	narrowed, err := cfg.Narrow("OLX", "rhino horn")
	require.NoError(t, err)
	require.Len(t, narrowed.Platforms, 1)
	require.Equal(t, "olx", narrowed.Platforms[0].Name)
	require.Equal(t, []string{"rhino horn"}, narrowed.Monitor.Keywords)

	unchanged, err := cfg.Narrow("", "")
	require.NoError(t, err)
	require.Empty(t, unchanged.Platforms)
	require.Len(t, unchanged.Monitor.Keywords, 2)

	_, err = cfg.Narrow("myspace", "")
	require.Error(t, err)
}

func TestReadLocalOverrides(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "wildguard.json5")
	require.NoError(t, os.WriteFile(base, []byte(`{
		monitor: {keywords: ["ivory"], alert_level: "HIGH"},
		alerts: {smtp: {server: "smtp.example.org", recipients: ["rangers@example.org"]}},
		dashboard: {port: 8000},
	}`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wildguard.local.json5"), []byte(`{
		alerts: {smtp: {password: "hunter2"}},
		dashboard: {access_token: "s3cret"},
	}`), 0600))

	require.Equal(t, []string{base, filepath.Join(dir, "wildguard.local.json5")}, configutil.Layers(base))

	cfg, err := configutil.ReadConfig[Config](base)
	require.NoError(t, err)
	require.Equal(t, []string{"ivory"}, cfg.Monitor.Keywords)
	require.Equal(t, "smtp.example.org", cfg.Alerts.Smtp.Server)
	require.Equal(t, "hunter2", cfg.Alerts.Smtp.Password)
	require.Equal(t, 8000, cfg.Dashboard.Port)
	require.Equal(t, "s3cret", cfg.Dashboard.AccessToken)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "wildguard.local.json5"), []byte(`{dashboard: `), 0600))
	_, err = configutil.ReadConfig[Config](base)
	require.ErrorContains(t, err, "wildguard.local.json5")
}

func TestDashboardUrl(t *testing.T) {
	cfg := Config{}
	require.Equal(t, "http://localhost:8000", cfg.DashboardUrl())
	cfg.Dashboard.Port = 9100
	require.Equal(t, "http://localhost:9100", cfg.DashboardUrl())
	cfg.Dashboard.Url = "https://wildguard.example.org"
	require.Equal(t, "https://wildguard.example.org", cfg.DashboardUrl())
}

func TestBuild(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:wildguard")
	defer cleanup()

	app, err := Build(testConfig(t), Options{})
	require.NoError(t, err)
	defer app.Close()

	require.NotEmpty(t, app.Scanners)
	require.Contains(t, app.Bot.Keywords(), "marfil")
	require.NoError(t, app.Store.Ping(context.Background()))

	status := app.Bot.Status()
	require.Equal(t, "@every 30m", status.Schedule)
	require.Len(t, status.Platforms, len(app.Scanners))
}

func TestBuildRejectsBadLevels(t *testing.T) {
	cfg := testConfig(t)
	cfg.Monitor.AlertLevel = "SEVERE"
	_, err := Build(cfg, Options{})
	require.ErrorContains(t, err, "alert_level")
}
