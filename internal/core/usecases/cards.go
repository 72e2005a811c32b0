package usecases

import (
	"fmt"
	"strings"

	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/pkg/geospatial"
)

// BadgeMode selects how the status badge of a bin is rendered.
type BadgeMode string

const (
	// BadgeLegacy always shows "Active".
	BadgeLegacy BadgeMode = "legacy"
	// BadgeStatus shows the bin's actual status.
	BadgeStatus BadgeMode = "status"
)

const (
	cardItemLimit  = 4
	popupItemLimit = 3
)

// StatusBadge returns the badge text for b.
func StatusBadge(b domain.Bin, mode BadgeMode) string {
	if mode != BadgeStatus || b.Status == "" {
		return "Active"
	}
	s := string(b.Status)
	return strings.ToUpper(s[:1]) + s[1:]
}

func truncate(items []string, n int) ([]string, int) {
	if len(items) <= n {
		return append([]string{}, items...), 0
	}
	return append([]string{}, items[:n]...), len(items) - n
}

// BuildCard renders the list-view card of a bin. Distance text is shown
// when b carries a distance or a user position is given.
func BuildCard(b domain.Bin, mode BadgeMode, from *domain.UserPosition) domain.Card {
	items, more := truncate(b.AcceptedItems, cardItemLimit)
	card := domain.Card{
		BinID:         b.ID,
		Title:         b.Name,
		Location:      b.Area + ", " + b.City,
		Address:       b.Address,
		Items:         items,
		Hours:         b.OperatingHours,
		Contact:       b.Contact,
		Badge:         StatusBadge(b, mode),
		DirectionsURL: geospatial.DirectionsURL(b.Lat, b.Lng),
	}
	if more > 0 {
		card.MoreItems = fmt.Sprintf("+%d more", more)
	}

	switch {
	case b.Distance != nil:
		card.Distance = geospatial.FormatDistance(*b.Distance)
	case from != nil:
		card.Distance = geospatial.FormatDistance(geospatial.Haversine(from.Latitude, from.Longitude, b.Lat, b.Lng))
	}
	return card
}

// BinPopup renders the map popup of a bin marker.
func BinPopup(b domain.Bin, mode BadgeMode) domain.Popup {
	items, more := truncate(b.AcceptedItems, popupItemLimit)
	p := domain.Popup{
		OverlayID:     BinMarkerID(b.ID),
		Title:         b.Name,
		Address:       b.Address,
		Items:         items,
		Hours:         b.OperatingHours,
		Contact:       b.Contact,
		Badge:         StatusBadge(b, mode),
		DirectionsURL: geospatial.DirectionsURL(b.Lat, b.Lng),
	}
	if more > 0 {
		p.MoreItems = fmt.Sprintf("+%d", more)
	}
	return p
}

// UserPopup renders the popup of the user position marker.
func UserPopup() domain.Popup {
	return domain.Popup{
		OverlayID: UserMarkerID,
		Title:     "Your Location",
		Lines:     []string{"Blue: ~1km walking", "Purple: ~5km driving"},
	}
}
