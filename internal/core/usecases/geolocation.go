package usecases

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/core/ports"
	"github.com/samirrijal/ecobin/internal/pkg/apperr"
	"github.com/samirrijal/ecobin/internal/pkg/metrics"
)

// GeoState is the state of a GeolocationProvider.
type GeoState string

const (
	GeoIdle        GeoState = "idle"
	GeoPending     GeoState = "pending"
	GeoResolved    GeoState = "resolved"
	GeoDenied      GeoState = "denied"
	GeoError       GeoState = "error"
	GeoUnsupported GeoState = "unsupported"
)

// GeoSnapshot is a point-in-time view of a provider.
type GeoSnapshot struct {
	State    GeoState             `json:"state"`
	Position *domain.UserPosition `json:"position,omitempty"`
	Reason   string               `json:"reason,omitempty"`
}

// GeolocationProvider obtains at most one position fix at a time from a
// LocationSource. Concurrent Request calls share the in-flight fix.
type GeolocationProvider struct {
	source   ports.LocationSource
	listener func(GeoSnapshot)
	group    singleflight.Group

	life   context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	snap   GeoSnapshot
	gen    uint64
	closed bool
}

// GeoOption configures a GeolocationProvider.
type GeoOption func(*GeolocationProvider)

// WithGeoListener registers fn to receive every state change caused by a
// fix or by SetPosition. fn runs outside the provider lock.
func WithGeoListener(fn func(GeoSnapshot)) GeoOption {
	return func(g *GeolocationProvider) { g.listener = fn }
}

// NewGeolocationProvider creates a provider. A nil source makes every
// Request resolve to GeoUnsupported.
func NewGeolocationProvider(source ports.LocationSource, opts ...GeoOption) *GeolocationProvider {
	life, cancel := context.WithCancel(context.Background())
	g := &GeolocationProvider{
		source: source,
		life:   life,
		cancel: cancel,
		snap:   GeoSnapshot{State: GeoIdle},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Request asks the source for a single fix. The fix itself is bounded only
// by the provider lifetime; ctx bounds how long this caller waits. A
// cancelled caller gets ctx.Err() and the fix still lands in the provider.
func (g *GeolocationProvider) Request(ctx context.Context) (GeoSnapshot, error) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return GeoSnapshot{State: GeoIdle}, apperr.LocationUnavailable("geolocation provider closed", nil)
	}
	if g.source == nil {
		g.snap = GeoSnapshot{State: GeoUnsupported, Reason: ports.ErrUnsupported.Error()}
		snap := g.snap
		g.mu.Unlock()
		metrics.GeolocationRequests.WithLabelValues(string(GeoUnsupported)).Inc()
		g.notify(snap)
		return snap, nil
	}
	g.mu.Unlock()

	ch := g.group.DoChan("locate", func() (any, error) {
		g.mu.Lock()
		gen := g.gen
		g.snap = GeoSnapshot{State: GeoPending, Position: g.snap.Position}
		g.mu.Unlock()

		pos, err := g.source.Locate(g.life)
		return g.apply(gen, pos, err), nil
	})

	select {
	case res := <-ch:
		return res.Val.(GeoSnapshot), nil
	case <-ctx.Done():
		return g.Snapshot(), ctx.Err()
	}
}

// apply records the outcome of a fix unless the provider was closed or
// cleared while the fix was in flight.
func (g *GeolocationProvider) apply(gen uint64, pos *domain.UserPosition, err error) GeoSnapshot {
	var next GeoSnapshot
	switch {
	case err == nil && pos != nil:
		if pos.FixedAt.IsZero() {
			pos.FixedAt = time.Now().UTC()
		}
		next = GeoSnapshot{State: GeoResolved, Position: pos}
	case errors.Is(err, ports.ErrPermissionDenied):
		next = GeoSnapshot{State: GeoDenied, Reason: err.Error()}
	case errors.Is(err, ports.ErrUnsupported):
		next = GeoSnapshot{State: GeoUnsupported, Reason: err.Error()}
	case err != nil:
		next = GeoSnapshot{State: GeoError, Reason: err.Error()}
	default:
		next = GeoSnapshot{State: GeoError, Reason: "no position returned"}
	}

	g.mu.Lock()
	if g.closed || g.gen != gen {
		snap := g.snap
		g.mu.Unlock()
		return snap
	}
	g.snap = next
	g.mu.Unlock()

	metrics.GeolocationRequests.WithLabelValues(string(next.State)).Inc()
	g.notify(next)
	return next
}

// SetPosition records a fix reported directly by the client. A nil pos
// behaves like Clear.
func (g *GeolocationProvider) SetPosition(pos *domain.UserPosition) GeoSnapshot {
	if pos == nil {
		g.Clear()
		return g.Snapshot()
	}
	g.mu.Lock()
	if g.closed {
		snap := g.snap
		g.mu.Unlock()
		return snap
	}
	g.gen++
	if pos.Source == "" {
		pos.Source = domain.SourceClient
	}
	if pos.FixedAt.IsZero() {
		pos.FixedAt = time.Now().UTC()
	}
	g.snap = GeoSnapshot{State: GeoResolved, Position: pos}
	snap := g.snap
	g.mu.Unlock()

	g.group.Forget("locate")
	metrics.GeolocationRequests.WithLabelValues(string(GeoResolved)).Inc()
	g.notify(snap)
	return snap
}

// Snapshot returns the current state.
func (g *GeolocationProvider) Snapshot() GeoSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snap
}

// Clear forgets the current position and drops any in-flight fix.
func (g *GeolocationProvider) Clear() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.gen++
	g.snap = GeoSnapshot{State: GeoIdle}
	g.mu.Unlock()

	g.group.Forget("locate")
	g.notify(GeoSnapshot{State: GeoIdle})
}

// Close cancels any in-flight fix. Results arriving afterwards are dropped.
func (g *GeolocationProvider) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	g.gen++
	g.mu.Unlock()
	g.cancel()
}

func (g *GeolocationProvider) notify(s GeoSnapshot) {
	if g.listener != nil {
		g.listener(s)
	}
}
