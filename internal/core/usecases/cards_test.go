package usecases_test

import (
	"testing"

	"github.com/samirrijal/ecobin/internal/adapters/memory"
	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/core/usecases"
)

func TestBuildCard(t *testing.T) {
	b := memory.Fixture()[0]
	card := usecases.BuildCard(b, usecases.BadgeLegacy, nil)

	if card.Title != "Green Tech Recyclers" {
		t.Errorf("unexpected title %q", card.Title)
	}
	if card.Location != "Koramangala, Bangalore" {
		t.Errorf("unexpected location %q", card.Location)
	}
	if len(card.Items) != 4 || card.MoreItems != "+1 more" {
		t.Errorf("expected 4 items and +1 more, got %v %q", card.Items, card.MoreItems)
	}
	if card.Badge != "Active" {
		t.Errorf("unexpected badge %q", card.Badge)
	}
	if card.Distance != "" {
		t.Errorf("expected no distance without a position, got %q", card.Distance)
	}
}

func TestBuildCard_FewItems(t *testing.T) {
	b := memory.Fixture()[7] // three items
	card := usecases.BuildCard(b, usecases.BadgeLegacy, nil)
	if len(card.Items) != 3 || card.MoreItems != "" {
		t.Errorf("unexpected items %v %q", card.Items, card.MoreItems)
	}
}

func TestBuildCard_Distance(t *testing.T) {
	b := memory.Fixture()[0]
	d := 950.0
	b.Distance = &d
	if got := usecases.BuildCard(b, usecases.BadgeLegacy, nil).Distance; got != "950 m" {
		t.Errorf("got %q", got)
	}

	b.Distance = nil
	from := &domain.UserPosition{Latitude: b.Lat, Longitude: b.Lng}
	if got := usecases.BuildCard(b, usecases.BadgeLegacy, from).Distance; got != "0 m" {
		t.Errorf("got %q", got)
	}
}

func TestStatusBadge(t *testing.T) {
	b := domain.Bin{Status: domain.BinStatusInactive}
	if got := usecases.StatusBadge(b, usecases.BadgeLegacy); got != "Active" {
		t.Errorf("legacy badge: got %q", got)
	}
	if got := usecases.StatusBadge(b, usecases.BadgeStatus); got != "Inactive" {
		t.Errorf("status badge: got %q", got)
	}
}

func TestBinPopup_Truncation(t *testing.T) {
	p := usecases.BinPopup(memory.Fixture()[1], usecases.BadgeLegacy)
	if len(p.Items) != 3 || p.MoreItems != "+2" {
		t.Errorf("unexpected popup items %v %q", p.Items, p.MoreItems)
	}
}
