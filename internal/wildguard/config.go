package wildguard

import (
	"fmt"
	"strings"
	"time"

	configlibsql "github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/configutil/libsql"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/scrapers/marketplace"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/threat"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/alerts"
)

type MonitorConfig struct {
	// cron spec, "@every 30m" by default
	Schedule   string   `json:"schedule"`
	RunOnStart bool     `json:"run_on_start"`
	Keywords   []string `json:"keywords"`
	// keyword translations to search for, every known language when empty
	Languages   []string `json:"languages"`
	Concurrency int      `json:"concurrency"`
	PerPlatform int      `json:"per_platform"`
	DedupeHours int      `json:"dedupe_hours"`
	// LOW, MEDIUM, HIGH or CRITICAL
	ArchiveLevel string `json:"archive_level"`
	AlertLevel   string `json:"alert_level"`
}

type BrowserConfig struct {
	ControlUrl string `json:"control_url"`
	Bin        string `json:"bin"`
	// show the browser window, useful when fixing selectors
	Headful bool `json:"headful"`
}

type ReviewerConfig struct {
	Endpoint   string `json:"endpoint"`
	ApiKey     string `json:"api_key"`
	Deployment string `json:"deployment"`
	MinScore   int    `json:"min_score"`
}

func (c ReviewerConfig) Enabled() bool {
	return c.Endpoint != "" && c.ApiKey != "" && c.Deployment != ""
}

type AlertsConfig struct {
	Capacity int `json:"capacity"`
	// alerts at or above this level are e-mailed, defaults to HIGH
	EmailLevel string            `json:"email_level"`
	Smtp       alerts.SmtpConfig `json:"smtp"`
}

type DashboardConfig struct {
	Port        int    `json:"port"`
	AccessToken string `json:"access_token"`
	// base url the cli uses to reach the dashboard
	Url string `json:"url"`
}

type Config struct {
	Database configlibsql.Struct `json:"database"`
	Monitor  MonitorConfig       `json:"monitor"`
	// the built in platforms are used when empty
	Platforms []marketplace.PlatformConfig `json:"platforms"`
	Browser   BrowserConfig                `json:"browser"`
	Alerts    AlertsConfig                 `json:"alerts"`
	Reviewer  ReviewerConfig               `json:"reviewer"`
	Dashboard DashboardConfig              `json:"dashboard"`
}

func parseLevel(name string, fallback threat.Level) (threat.Level, error) {
	if name == "" {
		return fallback, nil
	}
	return threat.ParseLevel(name)
}

func (c Config) PlatformConfigs() []marketplace.PlatformConfig {
	if len(c.Platforms) == 0 {
		return marketplace.DefaultPlatforms()
	}
	return c.Platforms
}

func (c Config) DedupeTTL() time.Duration {
	return time.Duration(c.Monitor.DedupeHours) * time.Hour
}

func (c Config) DashboardUrl() string {
	if c.Dashboard.Url != "" {
		return c.Dashboard.Url
	}
	port := c.Dashboard.Port
	if port == 0 {
		port = 8000
	}
	return fmt.Sprintf("http://localhost:%d", port)
}

// Narrow restricts the config to one platform and/or keyword, empty
// arguments keep everything.
func (c Config) Narrow(platform, keyword string) (Config, error) {
	if platform != "" {
		found, ok := marketplace.Find(c.PlatformConfigs(), platform)
		if !ok {
			return c, fmt.Errorf("unknown platform %q", platform)
		}
		found.Disabled = false
		c.Platforms = []marketplace.PlatformConfig{found}
	}
	if keyword = strings.TrimSpace(keyword); keyword != "" {
		c.Monitor.Keywords = []string{keyword}
	}
	return c, nil
}
