package domain

import "strings"

// Category is a fixed e-waste category offered by the filter UI.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

var categories = []Category{
	{ID: "phones", Label: "Mobile Phones", Icon: "📱"},
	{ID: "laptops", Label: "Laptops & Computers", Icon: "💻"},
	{ID: "appliances", Label: "Home Appliances", Icon: "🔌"},
	{ID: "batteries", Label: "Batteries", Icon: "🔋"},
	{ID: "accessories", Label: "Accessories", Icon: "🎧"},
	{ID: "all", Label: "All Electronics", Icon: "♻️"},
}

// Categories returns a copy of the category table in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// LookupCategory finds a category by id.
func LookupCategory(id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// IsCategoryLabel reports whether label exactly names a category.
func IsCategoryLabel(label string) bool {
	for _, c := range categories {
		if c.Label == label {
			return true
		}
	}
	return false
}

// Matches reports whether an accepted item and the category label contain
// one another, ignoring case.
func (c Category) Matches(item string) bool {
	i := strings.ToLower(item)
	l := strings.ToLower(c.Label)
	return strings.Contains(i, l) || strings.Contains(l, i)
}
