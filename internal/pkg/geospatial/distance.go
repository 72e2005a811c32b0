package geospatial

import (
	"fmt"
	"math"
	"strconv"
)

// KilometreThreshold is the distance at which FormatDistance switches units.
const KilometreThreshold = 1000.0

// FormatDistance renders a distance for display: whole metres below
// KilometreThreshold, kilometres with one decimal at or above it. The
// threshold applies to the rounded metre value.
func FormatDistance(meters float64) string {
	if math.IsNaN(meters) || meters < 0 {
		meters = 0
	}
	if rounded := math.Round(meters); rounded < KilometreThreshold {
		return fmt.Sprintf("%d m", int64(rounded))
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

const directionsBase = "https://www.google.com/maps/dir/"

// DirectionsURL builds the external navigation link for a destination.
func DirectionsURL(lat, lon float64) string {
	return fmt.Sprintf("%s?api=1&destination=%s,%s", directionsBase,
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lon, 'f', -1, 64))
}
