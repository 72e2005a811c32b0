package ports

import (
	"context"

	"github.com/samirrijal/ecobin/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishBinSubmitted(ctx context.Context, event *domain.BinSubmittedEvent) error
	PublishCatalogChanged(ctx context.Context) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeBinSubmitted(ctx context.Context, handler func(ctx context.Context, event *domain.BinSubmittedEvent) error) error
	SubscribeCatalogChanged(ctx context.Context, handler func(ctx context.Context) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// Notifier delivers messages to the moderation team.
type Notifier interface {
	NotifyModerators(ctx context.Context, subject, body string) error
}

// LocationSource produces a one-shot position fix. Implementations return
// an apperr LocationUnavailable error carrying the reason when no fix is
// possible; ErrPermissionDenied and ErrUnsupported mark the two named
// terminal states.
type LocationSource interface {
	Locate(ctx context.Context) (*domain.UserPosition, error)
}

// MapSurface is the rendering target of a MapView. Every call is a render
// command; the surface holds no domain state of its own.
type MapSurface interface {
	Init(ctx context.Context, view domain.Viewport, tileURL, attribution string) error
	PlaceMarker(ctx context.Context, m domain.Marker) error
	DrawCircle(ctx context.Context, c domain.Circle) error
	RemoveOverlay(ctx context.Context, id string) error
	FlyTo(ctx context.Context, view domain.Viewport, durationSeconds float64) error
	ShowPopup(ctx context.Context, p domain.Popup) error
}
