package usecases

import (
	"context"
	"sync"

	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/core/ports"
)

// ViewportFor picks the camera for a result set: the selected bin at the
// detail zoom, else the centroid of results, else the default view.
func ViewportFor(bins []domain.Bin, selectedID string, opts MapOptions) domain.Viewport {
	if selectedID != "" {
		for _, b := range bins {
			if b.ID == selectedID {
				return domain.Viewport{Center: b.Point(), Zoom: opts.DetailZoom}
			}
		}
	}
	if len(bins) == 0 {
		return opts.Default
	}

	var lat, lon float64
	for _, b := range bins {
		lat += b.Lat
		lon += b.Lng
	}
	n := float64(len(bins))
	zoom := opts.Default.Zoom
	if len(bins) == 1 {
		zoom = opts.SingleResultZoom
	}
	return domain.Viewport{Center: domain.GeoPoint{Lat: lat / n, Lon: lon / n}, Zoom: zoom}
}

// SessionOptions configures a Session.
type SessionOptions struct {
	Map MapOptions
	// OnLocation, when set, receives every geolocation state change.
	OnLocation func(GeoSnapshot)
	// OnError, when set, receives errors raised while applying a background
	// position fix to the map.
	OnError func(error)
}

// Session is one user's map and list state: filters, view mode, the map
// overlays and the geolocation provider.
type Session struct {
	bins *BinService
	geo  *GeolocationProvider
	view *MapView
	opts SessionOptions
	ctx  context.Context

	mu      sync.Mutex
	filter  domain.FilterState
	mode    domain.ViewMode
	results []domain.Bin
}

// NewSession initialises the map surface and loads the unfiltered catalog
// onto it. ctx bounds the session lifetime and is used for render commands
// triggered by background position fixes.
func NewSession(ctx context.Context, bins *BinService, surface ports.MapSurface, source ports.LocationSource, opts SessionOptions) (*Session, error) {
	view, err := NewMapView(ctx, surface, opts.Map)
	if err != nil {
		return nil, err
	}

	s := &Session{
		bins:   bins,
		view:   view,
		opts:   opts,
		ctx:    ctx,
		filter: domain.FilterState{}.Normalized(),
		mode:   domain.ViewModeList,
	}
	s.geo = NewGeolocationProvider(source, WithGeoListener(s.onLocation))

	if _, err := s.ApplyFilter(ctx, s.filter); err != nil {
		_ = view.Close(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Session) onLocation(snap GeoSnapshot) {
	var pos *domain.UserPosition
	if snap.State == GeoResolved {
		pos = snap.Position
	}

	s.mu.Lock()
	s.results = withDistanceFrom(s.results, pos)
	s.mu.Unlock()

	if err := s.view.SetUserPosition(s.ctx, pos); err != nil && s.opts.OnError != nil {
		s.opts.OnError(err)
	}
	if s.opts.OnLocation != nil {
		s.opts.OnLocation(snap)
	}
}

// ApplyFilter replaces the search, city and category selections, reloads
// the result list and reconciles the map markers. The selected bin id is
// kept.
func (s *Session) ApplyFilter(ctx context.Context, f domain.FilterState) ([]domain.Bin, error) {
	f = f.Normalized()
	res, err := s.bins.Search(ctx, SearchParams{Filter: f})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	f.SelectedBinID = s.filter.SelectedBinID
	s.filter = f
	s.results = withDistanceFrom(res, s.position())
	res = append([]domain.Bin(nil), s.results...)
	s.mu.Unlock()

	if err := s.view.SetBins(ctx, res); err != nil {
		return res, err
	}
	return res, nil
}

// Select sets the selected bin and focuses the map on it.
func (s *Session) Select(ctx context.Context, id string) error {
	s.mu.Lock()
	s.filter.SelectedBinID = id
	s.mu.Unlock()
	return s.syncSelection(ctx)
}

// ViewOnMap selects a bin from the list and switches to the map view.
func (s *Session) ViewOnMap(ctx context.Context, id string) error {
	s.mu.Lock()
	s.filter.SelectedBinID = id
	s.mode = domain.ViewModeMap
	s.mu.Unlock()
	return s.syncSelection(ctx)
}

// syncSelection focuses the map on whatever the shared state selects.
func (s *Session) syncSelection(ctx context.Context) error {
	s.mu.Lock()
	id := s.filter.SelectedBinID
	s.mu.Unlock()
	return s.view.Select(ctx, id)
}

// SetMode switches between list and map view.
func (s *Session) SetMode(mode domain.ViewMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
}

// Locate requests a position fix from the session's location source.
func (s *Session) Locate(ctx context.Context) (GeoSnapshot, error) {
	return s.geo.Request(ctx)
}

// SetPosition records a client-reported position.
func (s *Session) SetPosition(pos *domain.UserPosition) GeoSnapshot {
	return s.geo.SetPosition(pos)
}

// ClearPosition forgets the user position and removes its overlays.
func (s *Session) ClearPosition() {
	s.geo.Clear()
}

// CenterOnUser flies to the user once a position is known, then calls done.
func (s *Session) CenterOnUser(ctx context.Context, done func()) error {
	return s.view.RequestCenterOnUser(ctx, done)
}

// Activate opens the popup of an overlay.
func (s *Session) Activate(ctx context.Context, overlayID string) (*domain.Popup, error) {
	return s.view.Activate(ctx, overlayID)
}

// Cards renders the current results as list cards.
func (s *Session) Cards() []domain.Card {
	s.mu.Lock()
	results := s.results
	s.mu.Unlock()

	pos := s.position()
	cards := make([]domain.Card, 0, len(results))
	for _, b := range results {
		b.Distance = nil
		cards = append(cards, BuildCard(b, s.opts.Map.Badge, pos))
	}
	return cards
}

// position returns the last known user position, if any.
func (s *Session) position() *domain.UserPosition {
	return s.geo.Snapshot().Position
}

// withDistanceFrom returns copies of bins with Distance measured from pos,
// or cleared when pos is nil.
func withDistanceFrom(bins []domain.Bin, pos *domain.UserPosition) []domain.Bin {
	if pos == nil {
		out := make([]domain.Bin, len(bins))
		for i, b := range bins {
			b.Distance = nil
			out[i] = b
		}
		return out
	}
	return WithDistance(bins, pos.Point())
}

// Viewport returns the camera that frames the current results.
func (s *Session) Viewport() domain.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ViewportFor(s.results, s.filter.SelectedBinID, s.opts.Map)
}

// Filter returns the current filter state.
func (s *Session) Filter() domain.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Mode returns the current view mode.
func (s *Session) Mode() domain.ViewMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Results returns the bins of the last filter evaluation.
func (s *Session) Results() []domain.Bin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Bin(nil), s.results...)
}

// MapView exposes the session's map synchroniser.
func (s *Session) MapView() *MapView { return s.view }

// Close drops any in-flight position fix and removes every overlay.
func (s *Session) Close(ctx context.Context) error {
	s.geo.Close()
	return s.view.Close(ctx)
}
