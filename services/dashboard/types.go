package dashboard

import (
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/threat"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/alerts"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/evidence"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/monitor"
)

const ServiceName = "wildguard.v1.DashboardService"

const (
	GetStatsProcedure         = "/wildguard.v1.DashboardService/GetStats"
	ListThreatsProcedure      = "/wildguard.v1.DashboardService/ListThreats"
	ListAlertsProcedure       = "/wildguard.v1.DashboardService/ListAlerts"
	AcknowledgeAlertProcedure = "/wildguard.v1.DashboardService/AcknowledgeAlert"
	ScoreListingProcedure     = "/wildguard.v1.DashboardService/ScoreListing"
	TriggerScanProcedure      = "/wildguard.v1.DashboardService/TriggerScan"
)

type GetStatsRequest struct{}

type GetStatsResponse struct {
	Stats         evidence.Stats           `json:"stats"`
	Platforms     []evidence.PlatformCount `json:"platforms"`
	Monitor       monitor.Status           `json:"monitor"`
	PendingAlerts int                      `json:"pending_alerts"`
}

type ListThreatsRequest struct {
	// LOW, MEDIUM, HIGH or CRITICAL, defaults to MEDIUM
	MinLevel string `json:"min_level"`
	Limit    int    `json:"limit"`
}

type ListThreatsResponse struct {
	Threats []evidence.Package `json:"threats"`
}

type ListAlertsRequest struct {
	Limit int `json:"limit"`
}

type ListAlertsResponse struct {
	Alerts []alerts.Alert `json:"alerts"`
}

type AcknowledgeAlertRequest struct {
	ID string `json:"id"`
}

type AcknowledgeAlertResponse struct {
	Alert alerts.Alert `json:"alert"`
}

type ScoreListingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Platform    string `json:"platform"`
}

type ScoreListingResponse struct {
	Assessment threat.Assessment `json:"assessment"`
}

type TriggerScanRequest struct {
	// run the cycle before responding instead of in the background
	Wait bool `json:"wait"`
}

type TriggerScanResponse struct {
	Started bool `json:"started"`
	// only set when Wait was requested
	Run *evidence.ScanRun `json:"run,omitempty"`
}
