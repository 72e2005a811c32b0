package domain

import "time"

// BinStatus is the lifecycle state of a collection point.
type BinStatus string

const (
	BinStatusActive   BinStatus = "active"
	BinStatusPending  BinStatus = "pending"
	BinStatusInactive BinStatus = "inactive"
)

// Valid reports whether s is one of the known statuses.
func (s BinStatus) Valid() bool {
	switch s {
	case BinStatusActive, BinStatusPending, BinStatusInactive:
		return true
	}
	return false
}

// Bin represents an e-waste collection point.
type Bin struct {
	ID             string    `json:"id" yaml:"id"`
	Name           string    `json:"name" yaml:"name"`
	Area           string    `json:"area" yaml:"area"`
	City           string    `json:"city" yaml:"city"`
	Pincode        string    `json:"pincode" yaml:"pincode"`
	Address        string    `json:"address" yaml:"address"`
	Lat            float64   `json:"lat" yaml:"lat"`
	Lng            float64   `json:"lng" yaml:"lng"`
	AcceptedItems  []string  `json:"accepted_items" yaml:"accepted_items"`
	OperatingHours string    `json:"operating_hours" yaml:"operating_hours"`
	Contact        string    `json:"contact" yaml:"contact"`
	Status         BinStatus `json:"status" yaml:"status"`
	Distance       *float64  `json:"distance,omitempty" yaml:"-"` // computed field
}

// Point returns the bin location.
func (b Bin) Point() GeoPoint {
	return GeoPoint{Lat: b.Lat, Lon: b.Lng}
}

// UserPosition is an ephemeral position fix for the current user.
type UserPosition struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  *float64  `json:"accuracy,omitempty"` // metres
	Source    string    `json:"source,omitempty"`
	FixedAt   time.Time `json:"fixed_at"`
}

// Point returns the position as a GeoPoint.
func (p UserPosition) Point() GeoPoint {
	return GeoPoint{Lat: p.Latitude, Lon: p.Longitude}
}

// Position sources.
const (
	SourceClient = "client"
	SourceIP     = "ip"
)

// Filter sentinels.
const (
	AllCities              = "all"
	CategoryAll            = "all"
	CategoryAllElectronics = "all-electronics"
)

// FilterState holds the current search and filter selections.
type FilterState struct {
	SearchQuery      string `json:"q"`
	SelectedCity     string `json:"city"`
	SelectedCategory string `json:"category"`
	SelectedBinID    string `json:"selected,omitempty"`
}

// Normalized returns a copy with empty city/category treated as "all".
func (f FilterState) Normalized() FilterState {
	if f.SelectedCity == "" {
		f.SelectedCity = AllCities
	}
	if f.SelectedCategory == "" {
		f.SelectedCategory = CategoryAll
	}
	return f
}

// ViewMode is the presentation mode of a session.
type ViewMode string

const (
	ViewModeList ViewMode = "list"
	ViewModeMap  ViewMode = "map"
)
