package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/core/ports"
	"github.com/samirrijal/ecobin/internal/pkg/apperr"
)

// Overlay ids of the user position group.
const (
	UserMarkerID  = "user"
	WalkingRingID = "user:walk"
	DrivingRingID = "user:drive"
)

const (
	walkingColor   = "#3b82f6"
	drivingColor   = "#8b5cf6"
	walkingTooltip = "~15 min walk"
	drivingTooltip = "~10 min drive"
)

// BinMarkerID returns the overlay id of a bin marker.
func BinMarkerID(binID string) string { return binMarkerPrefix + binID }

const binMarkerPrefix = "bin:"

// MapOptions configures camera behaviour and overlays of a MapView.
type MapOptions struct {
	TileURL          string
	Attribution      string
	Default          domain.Viewport
	DetailZoom       float64
	SingleResultZoom float64
	SelectFlySeconds float64
	CenterFlySeconds float64
	WalkingRadius    float64
	DrivingRadius    float64
	Badge            BadgeMode
}

// DefaultMapOptions returns the stock options centred on India.
func DefaultMapOptions() MapOptions {
	return MapOptions{
		TileURL:          "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution:      `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
		Default:          domain.Viewport{Center: domain.GeoPoint{Lat: 20.5937, Lon: 78.9629}, Zoom: 5},
		DetailZoom:       14,
		SingleResultZoom: 12,
		SelectFlySeconds: 1.5,
		CenterFlySeconds: 1.0,
		WalkingRadius:    1000,
		DrivingRadius:    5000,
		Badge:            BadgeLegacy,
	}
}

// MapView keeps a MapSurface in sync with the current bins, the selected
// bin and the user position. All methods are safe for concurrent use.
type MapView struct {
	surface ports.MapSurface
	opts    MapOptions

	mu       sync.Mutex
	markers  map[string]domain.Bin // by bin id
	order    []string
	selected string
	user     *domain.UserPosition
	userOver []string
	pending  []func()
	closed   bool
}

// NewMapView initialises the surface at the default viewport. When the
// surface fails to initialise nothing is tracked and a MapInit error is
// returned.
func NewMapView(ctx context.Context, surface ports.MapSurface, opts MapOptions) (*MapView, error) {
	if err := surface.Init(ctx, opts.Default, opts.TileURL, opts.Attribution); err != nil {
		return nil, apperr.MapInit(err).WithOp("NewMapView")
	}
	return &MapView{
		surface: surface,
		opts:    opts,
		markers: make(map[string]domain.Bin),
	}, nil
}

// SetBins reconciles bin markers with bins. Markers whose id disappeared
// are removed, new ids are placed and unchanged ids keep their overlay.
func (m *MapView) SetBins(ctx context.Context, bins []domain.Bin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}

	want := make(map[string]domain.Bin, len(bins))
	wantOrder := make([]string, 0, len(bins))
	for _, b := range bins {
		if _, dup := want[b.ID]; dup {
			continue
		}
		want[b.ID] = b
		wantOrder = append(wantOrder, b.ID)
	}

	var errs []error
	kept := make([]string, 0, len(m.order))
	for _, id := range m.order {
		old := m.markers[id]
		nb, ok := want[id]
		if ok && sameMarker(old, nb) {
			kept = append(kept, id)
			continue
		}
		if err := m.surface.RemoveOverlay(ctx, BinMarkerID(id)); err != nil {
			// Still tracked so a later reconcile retries the removal.
			errs = append(errs, fmt.Errorf("remove marker %s: %w", id, err))
			kept = append(kept, id)
			continue
		}
		delete(m.markers, id)
	}
	m.order = kept

	for _, id := range wantOrder {
		if _, ok := m.markers[id]; ok {
			continue
		}
		b := want[id]
		if err := m.surface.PlaceMarker(ctx, binMarker(b)); err != nil {
			errs = append(errs, fmt.Errorf("place marker %s: %w", id, err))
			continue
		}
		m.markers[id] = b
		m.order = append(m.order, id)
	}

	if m.selected != "" {
		if _, ok := m.markers[m.selected]; !ok {
			m.selected = ""
		}
	}
	return errors.Join(errs...)
}

func sameMarker(a, b domain.Bin) bool {
	return a.Lat == b.Lat && a.Lng == b.Lng && a.Name == b.Name
}

func binMarker(b domain.Bin) domain.Marker {
	return domain.Marker{
		ID:       BinMarkerID(b.ID),
		Kind:     domain.OverlayBinMarker,
		Position: b.Point(),
		Title:    b.Name,
	}
}

// Select flies to the bin with the given id at the detail zoom. An id that
// is not on the map is ignored. An empty id clears the selection.
func (m *MapView) Select(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	if id == "" {
		m.selected = ""
		return nil
	}
	b, ok := m.markers[id]
	if !ok {
		return nil
	}
	m.selected = id
	view := domain.Viewport{Center: b.Point(), Zoom: m.opts.DetailZoom}
	if err := m.surface.FlyTo(ctx, view, m.opts.SelectFlySeconds); err != nil {
		return fmt.Errorf("fly to bin %s: %w", id, err)
	}
	return nil
}

// SetUserPosition replaces the user marker and its rings. A nil pos only
// removes them. Pending center requests complete once a position is set.
func (m *MapView) SetUserPosition(ctx context.Context, pos *domain.UserPosition) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}

	var errs []error
	remaining := m.userOver[:0]
	for _, id := range m.userOver {
		if err := m.surface.RemoveOverlay(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", id, err))
			remaining = append(remaining, id)
		}
	}
	m.userOver = remaining
	m.user = nil

	if pos == nil {
		m.mu.Unlock()
		return errors.Join(errs...)
	}
	if len(m.userOver) > 0 {
		// Old overlays could not be removed; drawing again would duplicate them.
		m.mu.Unlock()
		return errors.Join(errs...)
	}

	p := *pos
	m.user = &p
	center := p.Point()
	rings := []domain.Circle{
		{ID: WalkingRingID, Kind: domain.OverlayWalkingRing, Center: center, RadiusMeters: m.opts.WalkingRadius, Color: walkingColor, Tooltip: walkingTooltip},
		{ID: DrivingRingID, Kind: domain.OverlayDrivingRing, Center: center, RadiusMeters: m.opts.DrivingRadius, Color: drivingColor, Tooltip: drivingTooltip},
	}
	for _, c := range rings {
		if err := m.surface.DrawCircle(ctx, c); err != nil {
			errs = append(errs, fmt.Errorf("draw %s: %w", c.ID, err))
			continue
		}
		m.userOver = append(m.userOver, c.ID)
	}
	marker := domain.Marker{ID: UserMarkerID, Kind: domain.OverlayUserMarker, Position: center, Title: "Your Location"}
	if err := m.surface.PlaceMarker(ctx, marker); err != nil {
		errs = append(errs, fmt.Errorf("place user marker: %w", err))
	} else {
		m.userOver = append(m.userOver, UserMarkerID)
	}

	var done []func()
	if len(m.pending) > 0 {
		view := domain.Viewport{Center: center, Zoom: m.opts.DetailZoom}
		if err := m.surface.FlyTo(ctx, view, m.opts.CenterFlySeconds); err != nil {
			errs = append(errs, fmt.Errorf("center on user: %w", err))
		} else {
			done = m.pending
		}
		m.pending = nil
	}
	m.mu.Unlock()

	for _, fn := range done {
		if fn != nil {
			fn()
		}
	}
	return errors.Join(errs...)
}

// RequestCenterOnUser flies to the user position and then calls done. When
// no position is known yet the request waits for the next SetUserPosition.
// Each request completes at most once.
func (m *MapView) RequestCenterOnUser(ctx context.Context, done func()) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	if m.user == nil {
		m.pending = append(m.pending, done)
		m.mu.Unlock()
		return nil
	}
	view := domain.Viewport{Center: m.user.Point(), Zoom: m.opts.DetailZoom}
	err := m.surface.FlyTo(ctx, view, m.opts.CenterFlySeconds)
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("center on user: %w", err)
	}
	if done != nil {
		done()
	}
	return nil
}

// Activate shows and returns the popup of an overlay.
func (m *MapView) Activate(ctx context.Context, overlayID string) (*domain.Popup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, apperr.NotFound("map view closed")
	}

	var popup domain.Popup
	switch {
	case overlayID == UserMarkerID && m.user != nil:
		popup = UserPopup()
	default:
		b, ok := m.binForOverlay(overlayID)
		if !ok {
			return nil, apperr.NotFound(fmt.Sprintf("overlay %q not found", overlayID))
		}
		popup = BinPopup(b, m.opts.Badge)
	}

	if err := m.surface.ShowPopup(ctx, popup); err != nil {
		return nil, fmt.Errorf("show popup: %w", err)
	}
	return &popup, nil
}

func (m *MapView) binForOverlay(overlayID string) (domain.Bin, bool) {
	id, ok := strings.CutPrefix(overlayID, binMarkerPrefix)
	if !ok {
		return domain.Bin{}, false
	}
	b, ok := m.markers[id]
	return b, ok
}

// Close removes every tracked overlay. Later calls on the view are no-ops.
func (m *MapView) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.pending = nil

	var errs []error
	for _, id := range m.order {
		if err := m.surface.RemoveOverlay(ctx, BinMarkerID(id)); err != nil {
			errs = append(errs, err)
		}
	}
	for _, id := range m.userOver {
		if err := m.surface.RemoveOverlay(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	m.markers = map[string]domain.Bin{}
	m.order = nil
	m.userOver = nil
	m.user = nil
	return errors.Join(errs...)
}

// MarkerIDs returns the ids of the bins currently on the map, in placement order.
func (m *MapView) MarkerIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

// UserOverlayIDs returns the ids of the user position overlays on the map.
func (m *MapView) UserOverlayIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.userOver...)
}

// Selected returns the id of the focused bin, if any.
func (m *MapView) Selected() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}
