package forest

import (
	"errors"
	"fmt"
	"time"

	"dario.cat/mergo"
)

var (
	ErrUnknownAOI    = errors.New("unknown area of interest")
	ErrAlertNotFound = errors.New("alert not found")
	ErrInvalid       = errors.New("invalid request")
)

const dateLayout = "2006-01-02"

// AOI is a named polygon, vertices are (lon, lat) pairs in degrees.
// The ring is closed implicitly, repeating the first vertex is allowed.
type AOI struct {
	Name        string       `json:"name"`
	Polygon     [][2]float64 `json:"polygon"`
	Description string       `json:"description,omitempty"`
}

func (a AOI) ring() [][2]float64 {
	ring := a.Polygon
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	return ring
}

func (a AOI) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: aoi name is required", ErrInvalid)
	}
	ring := a.ring()
	if len(ring) < 3 {
		return fmt.Errorf("%w: aoi %q needs at least 3 vertices, got %d", ErrInvalid, a.Name, len(ring))
	}
	for _, p := range ring {
		if p[0] < -180 || p[0] > 180 || p[1] < -90 || p[1] > 90 {
			return fmt.Errorf("%w: aoi %q has vertex out of range %v", ErrInvalid, a.Name, p)
		}
	}
	if PolygonAreaHa(a.Polygon) == 0 {
		return fmt.Errorf("%w: aoi %q has no area", ErrInvalid, a.Name)
	}
	return nil
}

// Window is an inclusive date range formatted as YYYY-MM-DD.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (w Window) parse() (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, w.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start date: %w", ErrInvalid, err)
	}
	end, err := time.Parse(dateLayout, w.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end date: %w", ErrInvalid, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: window ends (%s) before it starts (%s)", ErrInvalid, w.End, w.Start)
	}
	return start, end, nil
}

// Windows pairs the baseline period with the period compared against it.
type Windows struct {
	Baseline Window `json:"baseline"`
	Current  Window `json:"current"`
}

type DetectionRequest struct {
	// name of a registered AOI
	AOI           string `json:"aoi"`
	BaselineStart string `json:"baseline_start"`
	BaselineEnd   string `json:"baseline_end"`
	CurrentStart  string `json:"current_start"`
	CurrentEnd    string `json:"current_end"`
}

// windows fills in missing dates, the current window defaults to the last
// 90 days and the baseline to the same period one year earlier.
func (r DetectionRequest) windows(now time.Time) (Windows, error) {
	if r.CurrentEnd == "" {
		r.CurrentEnd = now.Format(dateLayout)
	}
	currentEnd, err := time.Parse(dateLayout, r.CurrentEnd)
	if err != nil {
		return Windows{}, fmt.Errorf("%w: current_end: %w", ErrInvalid, err)
	}
	if r.CurrentStart == "" {
		r.CurrentStart = currentEnd.AddDate(0, 0, -90).Format(dateLayout)
	}
	currentStart, err := time.Parse(dateLayout, r.CurrentStart)
	if err != nil {
		return Windows{}, fmt.Errorf("%w: current_start: %w", ErrInvalid, err)
	}
	if r.BaselineStart == "" {
		r.BaselineStart = currentStart.AddDate(-1, 0, 0).Format(dateLayout)
	}
	if r.BaselineEnd == "" {
		r.BaselineEnd = currentEnd.AddDate(-1, 0, 0).Format(dateLayout)
	}

	w := Windows{
		Baseline: Window{Start: r.BaselineStart, End: r.BaselineEnd},
		Current:  Window{Start: r.CurrentStart, End: r.CurrentEnd},
	}
	_, baselineEnd, err := w.Baseline.parse()
	if err != nil {
		return Windows{}, err
	}
	if _, _, err := w.Current.parse(); err != nil {
		return Windows{}, err
	}
	if !baselineEnd.Before(currentStart) {
		return Windows{}, fmt.Errorf("%w: baseline must end before the current window starts", ErrInvalid)
	}
	return w, nil
}

// TileStat is the per tile summary computed by the imagery provider.
type TileStat struct {
	TileID        string  `json:"tile_id"`
	AreaHa        float64 `json:"area_ha"`
	BaselineNDVI  float64 `json:"baseline_ndvi"`
	CurrentNDVI   float64 `json:"current_ndvi"`
	CloudFraction float64 `json:"cloud_fraction"`
}

type ChangeReport struct {
	AOI     string  `json:"aoi"`
	Windows Windows `json:"windows"`
	// geodesic area of the polygon
	AreaHa float64 `json:"area_ha"`
	// area of the tiles clear enough to compare
	TotalAreaHa  float64    `json:"total_area_ha"`
	LossAreaHa   float64    `json:"loss_area_ha"`
	LossFraction float64    `json:"loss_fraction"`
	CloudyTiles  int        `json:"cloudy_tiles"`
	LossTiles    []string   `json:"loss_tiles"`
	Tiles        []TileStat `json:"tiles"`
	Alert        bool       `json:"alert"`
	AlertID      string     `json:"alert_id,omitempty"`
	GeneratedAt  time.Time  `json:"generated_at"`
}

type Alert struct {
	ID           string    `json:"id"`
	AOI          string    `json:"aoi"`
	LossAreaHa   float64   `json:"loss_area_ha"`
	LossFraction float64   `json:"loss_fraction"`
	CreatedAt    time.Time `json:"created_at"`
	Acknowledged bool      `json:"acknowledged"`
}

type Thresholds struct {
	// tiles cloudier than this are ignored
	MaxCloud float64 `json:"max_cloud"`
	// minimum baseline minus current NDVI for a tile to count as loss
	NdviDrop float64 `json:"ndvi_drop"`
	// baseline NDVI a tile needs to count as forest
	ForestNdvi       float64 `json:"forest_ndvi"`
	MinAlertHa       float64 `json:"min_alert_ha"`
	MinAlertFraction float64 `json:"min_alert_fraction"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxCloud:         0.3,
		NdviDrop:         0.2,
		ForestNdvi:       0.5,
		MinAlertHa:       10,
		MinAlertFraction: 0.05,
	}
}

// WithDefaults fills every unset field from DefaultThresholds, so a config
// that only tunes max_cloud keeps the other limits.
func (t Thresholds) WithDefaults() Thresholds {
	// only fails on mismatched types
	_ = mergo.Merge(&t, DefaultThresholds())
	return t
}
