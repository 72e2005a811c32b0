package domain

// OverlayKind identifies what an overlay on the map surface represents.
type OverlayKind string

const (
	OverlayBinMarker   OverlayKind = "bin_marker"
	OverlayUserMarker  OverlayKind = "user_marker"
	OverlayWalkingRing OverlayKind = "walking_ring"
	OverlayDrivingRing OverlayKind = "driving_ring"
)

// Viewport is a map camera position.
type Viewport struct {
	Center GeoPoint `json:"center"`
	Zoom   float64  `json:"zoom"`
}

// Marker is a point overlay.
type Marker struct {
	ID       string      `json:"id"`
	Kind     OverlayKind `json:"kind"`
	Position GeoPoint    `json:"position"`
	Title    string      `json:"title,omitempty"`
}

// Circle is a radius overlay drawn around a point.
type Circle struct {
	ID           string      `json:"id"`
	Kind         OverlayKind `json:"kind"`
	Center       GeoPoint    `json:"center"`
	RadiusMeters float64     `json:"radius_m"`
	Color        string      `json:"color"`
	Tooltip      string      `json:"tooltip"`
}

// Popup is the content shown when an overlay is activated.
type Popup struct {
	OverlayID     string   `json:"overlay_id"`
	Title         string   `json:"title"`
	Address       string   `json:"address,omitempty"`
	Items         []string `json:"items,omitempty"`
	MoreItems     string   `json:"more_items,omitempty"`
	Hours         string   `json:"hours,omitempty"`
	Contact       string   `json:"contact,omitempty"`
	Badge         string   `json:"badge,omitempty"`
	DirectionsURL string   `json:"directions_url,omitempty"`
	Lines         []string `json:"lines,omitempty"`
}

// Card is the list-view rendering of a bin.
type Card struct {
	BinID         string   `json:"bin_id"`
	Title         string   `json:"title"`
	Location      string   `json:"location"`
	Address       string   `json:"address"`
	Items         []string `json:"items"`
	MoreItems     string   `json:"more_items,omitempty"`
	Hours         string   `json:"hours"`
	Contact       string   `json:"contact"`
	Badge         string   `json:"badge"`
	Distance      string   `json:"distance,omitempty"`
	DirectionsURL string   `json:"directions_url"`
}
