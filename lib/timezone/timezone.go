package timezone

import "time"

// Location is the zone used for day boundaries (evidence dedupe,
// report dates). It defaults to UTC, monitors deployed near a field
// office can override it from config.
var Location = time.UTC

func SetLocation(name string) error {
	if name == "" {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	Location = loc
	return nil
}

func Now() time.Time {
	return time.Now().In(Location)
}

// StartOfDay returns midnight of the day t falls on, in Location.
func StartOfDay(t time.Time) time.Time {
	t = t.In(Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Location)
}
