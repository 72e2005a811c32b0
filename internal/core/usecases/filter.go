package usecases

import (
	"sort"
	"strings"

	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/pkg/geospatial"
)

// FilterBins returns the bins matching the text query, city and category
// selections, preserving input order. The result is never nil.
func FilterBins(bins []domain.Bin, state domain.FilterState) []domain.Bin {
	state = state.Normalized()
	query := strings.ToLower(state.SearchQuery)

	var category *domain.Category
	if !isCategorySentinel(state.SelectedCategory) {
		c, ok := domain.LookupCategory(state.SelectedCategory)
		if !ok {
			// Unknown category ids match nothing.
			return []domain.Bin{}
		}
		category = &c
	}

	out := make([]domain.Bin, 0, len(bins))
	for _, b := range bins {
		if !matchesText(b, state.SearchQuery, query) {
			continue
		}
		if state.SelectedCity != domain.AllCities && b.City != state.SelectedCity {
			continue
		}
		if category != nil && !matchesCategory(b, *category) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func isCategorySentinel(id string) bool {
	return id == domain.CategoryAll || id == domain.CategoryAllElectronics
}

// matchesText compares name, area and city case-insensitively and the
// pincode against the raw query.
func matchesText(b domain.Bin, raw, lowered string) bool {
	if raw == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.Name), lowered) ||
		strings.Contains(strings.ToLower(b.Area), lowered) ||
		strings.Contains(strings.ToLower(b.City), lowered) ||
		strings.Contains(b.Pincode, raw)
}

func matchesCategory(b domain.Bin, c domain.Category) bool {
	for _, item := range b.AcceptedItems {
		if c.Matches(item) {
			return true
		}
	}
	return false
}

// SortByDistance returns copies of bins ordered by distance from the given
// point, nearest first, with Distance set in metres. Ties keep input order.
func SortByDistance(bins []domain.Bin, from domain.GeoPoint) []domain.Bin {
	out := WithDistance(bins, from)
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].Distance < *out[j].Distance
	})
	return out
}

// WithDistance returns copies of bins with Distance set, in input order.
func WithDistance(bins []domain.Bin, from domain.GeoPoint) []domain.Bin {
	out := make([]domain.Bin, len(bins))
	for i, b := range bins {
		d := geospatial.Haversine(from.Lat, from.Lon, b.Lat, b.Lng)
		b.Distance = &d
		out[i] = b
	}
	return out
}

// Cities returns the distinct cities of bins in first-appearance order.
func Cities(bins []domain.Bin) []string {
	seen := make(map[string]struct{}, len(bins))
	out := make([]string, 0)
	for _, b := range bins {
		if _, ok := seen[b.City]; ok {
			continue
		}
		seen[b.City] = struct{}{}
		out = append(out, b.City)
	}
	return out
}
