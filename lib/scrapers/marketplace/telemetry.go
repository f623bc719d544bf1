package marketplace

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("wildlife-tracker/lib/scrapers/marketplace")
