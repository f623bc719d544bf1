package dashboard

import (
	"context"
	"net/http"
	"strings"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/serviceutil"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/threat"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/alerts"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/evidence"

	"connectrpc.com/connect"
)

// Client calls a running dashboard service.
type Client struct {
	getStats         *connect.Client[GetStatsRequest, GetStatsResponse]
	listThreats      *connect.Client[ListThreatsRequest, ListThreatsResponse]
	listAlerts       *connect.Client[ListAlertsRequest, ListAlertsResponse]
	acknowledgeAlert *connect.Client[AcknowledgeAlertRequest, AcknowledgeAlertResponse]
	scoreListing     *connect.Client[ScoreListingRequest, ScoreListingResponse]
	triggerScan      *connect.Client[TriggerScanRequest, TriggerScanResponse]
}

func NewClient(baseUrl, token string, opts ...connect.ClientOption) Client {
	return NewClientWith(http.DefaultClient, baseUrl, token, opts...)
}

func NewClientWith(httpClient connect.HTTPClient, baseUrl, token string, opts ...connect.ClientOption) Client {
	baseUrl = strings.TrimRight(baseUrl, "/")
	opts = append([]connect.ClientOption{
		connect.WithCodec(serviceutil.JSONCodec{}),
		connect.WithInterceptors(serviceutil.ProvideAccessTokenInterceptor(token)),
	}, opts...)

	return Client{
		getStats:         connect.NewClient[GetStatsRequest, GetStatsResponse](httpClient, baseUrl+GetStatsProcedure, opts...),
		listThreats:      connect.NewClient[ListThreatsRequest, ListThreatsResponse](httpClient, baseUrl+ListThreatsProcedure, opts...),
		listAlerts:       connect.NewClient[ListAlertsRequest, ListAlertsResponse](httpClient, baseUrl+ListAlertsProcedure, opts...),
		acknowledgeAlert: connect.NewClient[AcknowledgeAlertRequest, AcknowledgeAlertResponse](httpClient, baseUrl+AcknowledgeAlertProcedure, opts...),
		scoreListing:     connect.NewClient[ScoreListingRequest, ScoreListingResponse](httpClient, baseUrl+ScoreListingProcedure, opts...),
		triggerScan:      connect.NewClient[TriggerScanRequest, TriggerScanResponse](httpClient, baseUrl+TriggerScanProcedure, opts...),
	}
}

func (c Client) GetStats(ctx context.Context) (GetStatsResponse, error) {
	res, err := c.getStats.CallUnary(ctx, connect.NewRequest(&GetStatsRequest{}))
	if err != nil {
		return GetStatsResponse{}, err
	}
	return *res.Msg, nil
}

func (c Client) ListThreats(ctx context.Context, minLevel string, limit int) ([]evidence.Package, error) {
	res, err := c.listThreats.CallUnary(ctx, connect.NewRequest(&ListThreatsRequest{
		MinLevel: minLevel,
		Limit:    limit,
	}))
	if err != nil {
		return nil, err
	}
	return res.Msg.Threats, nil
}

func (c Client) ListAlerts(ctx context.Context, limit int) ([]alerts.Alert, error) {
	res, err := c.listAlerts.CallUnary(ctx, connect.NewRequest(&ListAlertsRequest{Limit: limit}))
	if err != nil {
		return nil, err
	}
	return res.Msg.Alerts, nil
}

func (c Client) AcknowledgeAlert(ctx context.Context, id string) (alerts.Alert, error) {
	res, err := c.acknowledgeAlert.CallUnary(ctx, connect.NewRequest(&AcknowledgeAlertRequest{ID: id}))
	if err != nil {
		return alerts.Alert{}, err
	}
	return res.Msg.Alert, nil
}

func (c Client) ScoreListing(ctx context.Context, title, description string) (threat.Assessment, error) {
	res, err := c.scoreListing.CallUnary(ctx, connect.NewRequest(&ScoreListingRequest{
		Title:       title,
		Description: description,
	}))
	if err != nil {
		return threat.Assessment{}, err
	}
	return res.Msg.Assessment, nil
}

func (c Client) TriggerScan(ctx context.Context, wait bool) (TriggerScanResponse, error) {
	res, err := c.triggerScan.CallUnary(ctx, connect.NewRequest(&TriggerScanRequest{Wait: wait}))
	if err != nil {
		return TriggerScanResponse{}, err
	}
	return *res.Msg, nil
}
