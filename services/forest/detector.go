package forest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/timezone"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("wildlife-tracker/services/forest")

type Options struct {
	Provider   Provider
	AOIs       []AOI
	Thresholds Thresholds
	// oldest alerts are dropped past this, defaults to 200
	AlertCapacity int
}

type Detector struct {
	provider   Provider
	thresholds Thresholds
	aois       map[string]AOI
	capacity   int

	mu     sync.Mutex
	alerts []Alert
}

func NewDetector(opts Options) (*Detector, error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("a provider is required")
	}
	opts.Thresholds = opts.Thresholds.WithDefaults()
	if opts.AlertCapacity <= 0 {
		opts.AlertCapacity = 200
	}

	aois := make(map[string]AOI, len(opts.AOIs))
	for _, aoi := range opts.AOIs {
		if err := aoi.Validate(); err != nil {
			return nil, err
		}
		if _, exists := aois[aoi.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate aoi %q", ErrInvalid, aoi.Name)
		}
		aois[aoi.Name] = aoi
	}

	return &Detector{
		provider:   opts.Provider,
		thresholds: opts.Thresholds,
		aois:       aois,
		capacity:   opts.AlertCapacity,
	}, nil
}

// AOIs returns the registered areas sorted by name.
func (d *Detector) AOIs() []AOI {
	out := make([]AOI, 0, len(d.aois))
	for _, aoi := range d.aois {
		out = append(out, aoi)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

func (d *Detector) AOI(name string) (AOI, error) {
	aoi, ok := d.aois[name]
	if !ok {
		return AOI{}, fmt.Errorf("%w: %q", ErrUnknownAOI, name)
	}
	return aoi, nil
}

func (d *Detector) Thresholds() Thresholds {
	return d.thresholds
}

// Summarize compares the tiles against the thresholds, it does not record
// alerts.
func (t Thresholds) Summarize(tiles []TileStat) ChangeReport {
	report := ChangeReport{
		Tiles:     tiles,
		LossTiles: []string{},
	}
	for _, tile := range tiles {
		if tile.CloudFraction > t.MaxCloud {
			report.CloudyTiles++
			continue
		}
		report.TotalAreaHa += tile.AreaHa
		if tile.BaselineNDVI >= t.ForestNdvi && tile.BaselineNDVI-tile.CurrentNDVI >= t.NdviDrop {
			report.LossAreaHa += tile.AreaHa
			report.LossTiles = append(report.LossTiles, tile.TileID)
		}
	}
	if report.TotalAreaHa > 0 {
		report.LossFraction = report.LossAreaHa / report.TotalAreaHa
	}
	report.Alert = report.LossAreaHa > 0 &&
		(report.LossAreaHa >= t.MinAlertHa || report.LossFraction >= t.MinAlertFraction)
	return report
}

func (d *Detector) Detect(ctx context.Context, req DetectionRequest) (ChangeReport, error) {
	ctx, span := tracer.Start(ctx, "Detect")
	defer span.End()
	span.SetAttributes(attribute.String("aoi", req.AOI))

	aoi, err := d.AOI(req.AOI)
	if err != nil {
		return ChangeReport{}, err
	}
	windows, err := req.windows(timezone.Now())
	if err != nil {
		return ChangeReport{}, err
	}

	tiles, err := d.provider.TileStats(ctx, aoi, windows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch tile stats")
		return ChangeReport{}, err
	}

	report := d.thresholds.Summarize(tiles)
	report.AOI = aoi.Name
	report.Windows = windows
	report.AreaHa = PolygonAreaHa(aoi.Polygon)
	report.GeneratedAt = timezone.Now()

	span.SetAttributes(
		attribute.Float64("loss_area_ha", report.LossAreaHa),
		attribute.Int("tiles", len(tiles)),
	)

	if report.Alert {
		alert, err := d.raise(aoi.Name, report)
		if err != nil {
			return ChangeReport{}, err
		}
		report.AlertID = alert.ID
		slog.WarnContext(
			ctx, "forest loss detected",
			"aoi", aoi.Name,
			"loss_ha", report.LossAreaHa,
			"loss_fraction", report.LossFraction,
		)
	}
	return report, nil
}

func (d *Detector) raise(aoi string, report ChangeReport) (Alert, error) {
	id, err := random.String(12)
	if err != nil {
		return Alert{}, fmt.Errorf("alert id: %w", err)
	}
	alert := Alert{
		ID:           id,
		AOI:          aoi,
		LossAreaHa:   report.LossAreaHa,
		LossFraction: report.LossFraction,
		CreatedAt:    report.GeneratedAt,
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerts = append([]Alert{alert}, d.alerts...)
	if len(d.alerts) > d.capacity {
		d.alerts = d.alerts[:d.capacity]
	}
	return alert, nil
}

// Alerts returns the recorded alerts, newest first.
func (d *Detector) Alerts(pendingOnly bool) []Alert {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Alert, 0, len(d.alerts))
	for _, a := range d.alerts {
		if pendingOnly && a.Acknowledged {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (d *Detector) Acknowledge(id string) (Alert, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.alerts {
		if d.alerts[i].ID == id {
			d.alerts[i].Acknowledged = true
			return d.alerts[i], nil
		}
	}
	return Alert{}, fmt.Errorf("%w: %q", ErrAlertNotFound, id)
}
