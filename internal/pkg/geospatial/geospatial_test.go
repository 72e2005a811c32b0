package geospatial_test

import (
	"math"
	"testing"

	"github.com/samirrijal/ecobin/internal/pkg/geospatial"
)

func TestFormatDistance(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0 m"},
		{12.4, "12 m"},
		{950, "950 m"},
		{999.4, "999 m"},
		{999.6, "1.0 km"},
		{1000, "1.0 km"},
		{1500, "1.5 km"},
		{12345, "12.3 km"},
		{-5, "0 m"},
		{math.NaN(), "0 m"},
	}
	for _, tc := range cases {
		if got := geospatial.FormatDistance(tc.in); got != tc.want {
			t.Errorf("FormatDistance(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatDistance_Deterministic(t *testing.T) {
	for _, m := range []float64{1, 500, 999, 1000, 4321} {
		if geospatial.FormatDistance(m) != geospatial.FormatDistance(m) {
			t.Fatalf("FormatDistance(%v) not deterministic", m)
		}
	}
}

func TestDirectionsURL(t *testing.T) {
	got := geospatial.DirectionsURL(12.9352, 77.6245)
	want := "https://www.google.com/maps/dir/?api=1&destination=12.9352,77.6245"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHaversine(t *testing.T) {
	// Koramangala to Indiranagar, Bangalore: roughly 5 km apart.
	d := geospatial.Haversine(12.9352, 77.6245, 12.9784, 77.6408)
	if d < 4500 || d > 5500 {
		t.Errorf("expected ~5 km, got %.0f m", d)
	}
	if geospatial.Haversine(10, 10, 10, 10) != 0 {
		t.Error("same point should be 0 m apart")
	}
}

func TestValidCoordinate(t *testing.T) {
	if !geospatial.ValidCoordinate(-90, 180) {
		t.Error("boundary values should be valid")
	}
	if geospatial.ValidCoordinate(91, 0) || geospatial.ValidCoordinate(0, -181) {
		t.Error("out-of-range values should be invalid")
	}
	if geospatial.ValidCoordinate(math.NaN(), 0) {
		t.Error("NaN should be invalid")
	}
}
