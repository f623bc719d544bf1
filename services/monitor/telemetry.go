package monitor

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("wildlife-tracker/services/monitor")
var meter = otel.Meter("wildlife-tracker/services/monitor")

type metrics struct {
	listings  metric.Int64Counter
	threats   metric.Int64Counter
	alerts    metric.Int64Counter
	cycleTime metric.Float64Histogram
}

func newMetrics() (metrics, error) {
	listings, err := meter.Int64Counter(
		"listings_scanned",
		metric.WithDescription("New listings analyzed."),
	)
	if err != nil {
		return metrics{}, err
	}
	threats, err := meter.Int64Counter(
		"threats_detected",
		metric.WithDescription("Listings archived as evidence."),
	)
	if err != nil {
		return metrics{}, err
	}
	alerts, err := meter.Int64Counter(
		"alerts_raised",
		metric.WithDescription("Alerts recorded, whether or not delivery succeeded."),
	)
	if err != nil {
		return metrics{}, err
	}
	cycleTime, err := meter.Float64Histogram(
		"scan_cycle_seconds",
		metric.WithDescription("Duration of a scan cycle."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return metrics{}, err
	}
	return metrics{
		listings:  listings,
		threats:   threats,
		alerts:    alerts,
		cycleTime: cycleTime,
	}, nil
}
