package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/serviceutil"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/threat"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/alerts"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/evidence"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/monitor"

	"connectrpc.com/connect"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("wildlife-tracker/services/dashboard")

type Store interface {
	Stats(ctx context.Context) (evidence.Stats, error)
	ByPlatform(ctx context.Context) ([]evidence.PlatformCount, error)
	Recent(ctx context.Context, minLevel threat.Level, limit int) ([]evidence.Package, error)
	Ping(ctx context.Context) error
}

type Alerts interface {
	List(limit int) []alerts.Alert
	Acknowledge(id string) (alerts.Alert, error)
	Pending() int
}

type Monitor interface {
	Status() monitor.Status
	ScanCycle(ctx context.Context) (evidence.ScanRun, error)
}

type Scorer interface {
	Analyze(ctx context.Context, listing threat.Listing) threat.Assessment
}

type Options struct {
	Store   Store
	Alerts  Alerts
	Monitor Monitor
	Scorer  Scorer
	// background scans outlive the request that started them, they are
	// cancelled with this context instead, defaults to context.Background()
	BaseContext context.Context
	// when set, every call except the health check needs
	// "Authorization: Bearer <token>"
	AccessToken string
}

type Service struct {
	store   Store
	alerts  Alerts
	monitor Monitor
	scorer  Scorer
	baseCtx context.Context
	token   string
}

func NewService(opts Options) Service {
	if opts.BaseContext == nil {
		opts.BaseContext = context.Background()
	}
	return Service{
		store:   opts.Store,
		alerts:  opts.Alerts,
		monitor: opts.Monitor,
		scorer:  opts.Scorer,
		baseCtx: opts.BaseContext,
		token:   opts.AccessToken,
	}
}

func (s Service) stats(ctx context.Context) (GetStatsResponse, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return GetStatsResponse{}, err
	}
	platforms, err := s.store.ByPlatform(ctx)
	if err != nil {
		return GetStatsResponse{}, err
	}
	return GetStatsResponse{
		Stats:         stats,
		Platforms:     platforms,
		Monitor:       s.monitor.Status(),
		PendingAlerts: s.alerts.Pending(),
	}, nil
}

func (s Service) GetStats(ctx context.Context, req *connect.Request[GetStatsRequest]) (*connect.Response[GetStatsResponse], error) {
	ctx, span := tracer.Start(ctx, "GetStats")
	defer span.End()

	res, err := s.stats(ctx)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&res), nil
}

func (s Service) threats(ctx context.Context, minLevel string, limit int) ([]evidence.Package, error) {
	level := threat.LevelMedium
	if minLevel != "" {
		var err error
		level, err = threat.ParseLevel(minLevel)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	packages, err := s.store.Recent(ctx, level, limit)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return packages, nil
}

func (s Service) ListThreats(ctx context.Context, req *connect.Request[ListThreatsRequest]) (*connect.Response[ListThreatsResponse], error) {
	ctx, span := tracer.Start(ctx, "ListThreats")
	defer span.End()

	packages, err := s.threats(ctx, req.Msg.MinLevel, req.Msg.Limit)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&ListThreatsResponse{Threats: packages}), nil
}

func (s Service) ListAlerts(ctx context.Context, req *connect.Request[ListAlertsRequest]) (*connect.Response[ListAlertsResponse], error) {
	return connect.NewResponse(&ListAlertsResponse{
		Alerts: s.alerts.List(req.Msg.Limit),
	}), nil
}

func (s Service) AcknowledgeAlert(ctx context.Context, req *connect.Request[AcknowledgeAlertRequest]) (*connect.Response[AcknowledgeAlertResponse], error) {
	alert, err := s.alerts.Acknowledge(req.Msg.ID)
	if errors.Is(err, alerts.ErrNotFound) {
		return nil, connect.NewError(connect.CodeNotFound, err)
	}
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&AcknowledgeAlertResponse{Alert: alert}), nil
}

func (s Service) ScoreListing(ctx context.Context, req *connect.Request[ScoreListingRequest]) (*connect.Response[ScoreListingResponse], error) {
	ctx, span := tracer.Start(ctx, "ScoreListing")
	defer span.End()

	if req.Msg.Title == "" && req.Msg.Description == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("title or description is required"))
	}
	assessment := s.scorer.Analyze(ctx, threat.Listing{
		Platform:    req.Msg.Platform,
		Title:       req.Msg.Title,
		Description: req.Msg.Description,
	})
	return connect.NewResponse(&ScoreListingResponse{Assessment: assessment}), nil
}

func (s Service) TriggerScan(ctx context.Context, req *connect.Request[TriggerScanRequest]) (*connect.Response[TriggerScanResponse], error) {
	if s.monitor.Status().Scanning {
		return nil, connect.NewError(connect.CodeFailedPrecondition, monitor.ErrScanInProgress)
	}

	if req.Msg.Wait {
		run, err := s.monitor.ScanCycle(ctx)
		if errors.Is(err, monitor.ErrScanInProgress) {
			return nil, connect.NewError(connect.CodeFailedPrecondition, err)
		}
		// per platform failures are part of the run
		if run.ID == "" && err != nil {
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		return connect.NewResponse(&TriggerScanResponse{Started: true, Run: &run}), nil
	}

	go func() {
		_, err := s.monitor.ScanCycle(s.baseCtx)
		if err != nil {
			slog.WarnContext(s.baseCtx, "triggered scan finished with errors", "err", err)
		}
	}()
	return connect.NewResponse(&TriggerScanResponse{Started: true}), nil
}

// Handler returns the path prefix and handler of the connect service.
func (s Service) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{
		connect.WithCodec(serviceutil.JSONCodec{}),
		connect.WithInterceptors(serviceutil.VerifyAccessTokenInterceptor(s.token)),
	}, opts...)

	mux := http.NewServeMux()
	mux.Handle(GetStatsProcedure, connect.NewUnaryHandler(GetStatsProcedure, s.GetStats, opts...))
	mux.Handle(ListThreatsProcedure, connect.NewUnaryHandler(ListThreatsProcedure, s.ListThreats, opts...))
	mux.Handle(ListAlertsProcedure, connect.NewUnaryHandler(ListAlertsProcedure, s.ListAlerts, opts...))
	mux.Handle(AcknowledgeAlertProcedure, connect.NewUnaryHandler(AcknowledgeAlertProcedure, s.AcknowledgeAlert, opts...))
	mux.Handle(ScoreListingProcedure, connect.NewUnaryHandler(ScoreListingProcedure, s.ScoreListing, opts...))
	mux.Handle(TriggerScanProcedure, connect.NewUnaryHandler(TriggerScanProcedure, s.TriggerScan, opts...))
	return "/" + ServiceName + "/", mux
}

// Mount registers the connect service and the plain json routes on mux.
func (s Service) Mount(mux *http.ServeMux, opts ...connect.HandlerOption) {
	mux.Handle(s.Handler(opts...))
	s.RegisterHttp(mux)
}
