package models

import (
	"fmt"
	"math"
)

// MaxTravelDistance is the pickup radius in flat coordinate degrees (roughly 5.5km).
const MaxTravelDistance = 0.05

type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Distance is the flat Euclidean distance in degrees. It deliberately ignores
// the curvature of the earth.
func (l Location) Distance(other Location) float64 {
	dlat := other.Lat - l.Lat
	dlon := other.Lon - l.Lon
	return math.Sqrt(dlat*dlat + dlon*dlon)
}

// WithinTravelRange reports whether other is inside the pickup radius.
func (l Location) WithinTravelRange(other Location) bool {
	return l.Distance(other) <= MaxTravelDistance
}

func (l Location) IsFinite() bool {
	return !math.IsNaN(l.Lat) && !math.IsInf(l.Lat, 0) && !math.IsNaN(l.Lon) && !math.IsInf(l.Lon, 0)
}

// Scan reads a PostGIS POINT(lon lat) text value.
func (l *Location) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		_, err := fmt.Sscanf(string(v), "POINT(%f %f)", &l.Lon, &l.Lat)
		return err
	case string:
		_, err := fmt.Sscanf(v, "POINT(%f %f)", &l.Lon, &l.Lat)
		return err
	default:
		return fmt.Errorf("unsupported type for Location: %T", value)
	}
}
