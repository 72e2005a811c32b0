package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/core/ports"
	"github.com/samirrijal/ecobin/internal/pkg/apperr"
	"github.com/samirrijal/ecobin/internal/pkg/metrics"
	"github.com/samirrijal/ecobin/internal/pkg/telemetry"
)

// generationKey holds the current catalog generation. Every other cache key
// embeds it, so bumping it retires all cached catalog reads at once.
const (
	generationKey = "bins:generation"
	generationTTL = 24 * 60 * 60
)

var tracer = telemetry.Tracer("usecases")

// SearchParams narrows and orders a catalog search.
type SearchParams struct {
	Filter domain.FilterState
	// Near, when set, computes distances from this point.
	Near *domain.GeoPoint
	// SortByDistance orders results nearest first. Requires Near.
	SortByDistance bool
}

// BinService handles catalog queries over a BinRepository.
type BinService struct {
	bins  ports.BinRepository
	cache ports.CacheService
}

// NewBinService creates a new BinService. cache may be nil.
func NewBinService(bins ports.BinRepository, cache ports.CacheService) *BinService {
	return &BinService{bins: bins, cache: cache}
}

// cacheKey namespaces key under the current catalog generation.
func (s *BinService) cacheKey(ctx context.Context, key string) string {
	gen := "0"
	if data, err := s.cache.Get(ctx, generationKey); err == nil && len(data) > 0 {
		gen = string(data)
	}
	return "bins:" + gen + ":" + key
}

// Catalog returns every bin in catalog order.
func (s *BinService) Catalog(ctx context.Context) ([]domain.Bin, error) {
	var catalogCacheKey string
	if s.cache != nil {
		catalogCacheKey = s.cacheKey(ctx, "all")
		if data, err := s.cache.Get(ctx, catalogCacheKey); err == nil {
			var bins []domain.Bin
			if err := json.Unmarshal(data, &bins); err == nil {
				metrics.CacheHits.WithLabelValues("catalog").Inc()
				return bins, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("catalog").Inc()
	}

	bins, err := s.bins.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list bins", err)
	}
	if bins == nil {
		bins = []domain.Bin{}
	}

	// Cache for 5 minutes
	if s.cache != nil {
		if data, err := json.Marshal(bins); err == nil {
			_ = s.cache.Set(ctx, catalogCacheKey, data, 300)
		}
	}

	return bins, nil
}

// Search filters the catalog and optionally annotates and sorts by distance.
func (s *BinService) Search(ctx context.Context, p SearchParams) ([]domain.Bin, error) {
	ctx, span := tracer.Start(ctx, "BinService.Search")
	defer span.End()

	all, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	res := FilterBins(all, p.Filter)
	if p.Near != nil {
		if p.SortByDistance {
			res = SortByDistance(res, *p.Near)
		} else {
			res = WithDistance(res, *p.Near)
		}
	}

	span.SetAttributes(
		attribute.String("filter.city", p.Filter.SelectedCity),
		attribute.String("filter.category", p.Filter.SelectedCategory),
		attribute.Int("result.size", len(res)),
	)
	metrics.FilterResultSize.Observe(float64(len(res)))
	return res, nil
}

// FindNearby returns bins within radiusMeters of the given point.
func (s *BinService) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Bin, error) {
	ctx, span := tracer.Start(ctx, "BinService.FindNearby")
	defer span.End()

	if limit <= 0 || limit > 50 {
		limit = 50
	}

	var cacheKey string
	if s.cache != nil {
		cacheKey = s.cacheKey(ctx, fmt.Sprintf("nearby:%.4f:%.4f:%.0f:%d", lat, lon, radiusMeters, limit))
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var bins []domain.Bin
			if err := json.Unmarshal(data, &bins); err == nil {
				metrics.CacheHits.WithLabelValues("nearby").Inc()
				return bins, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("nearby").Inc()
	}

	bins, err := s.bins.FindNearby(ctx, lat, lon, radiusMeters, limit)
	if err != nil {
		return nil, apperr.Internal("find nearby bins", err)
	}
	if bins == nil {
		bins = []domain.Bin{}
	}

	if s.cache != nil {
		if data, err := json.Marshal(bins); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return bins, nil
}

// GetByID returns a single bin.
func (s *BinService) GetByID(ctx context.Context, id string) (*domain.Bin, error) {
	var cacheKey string
	if s.cache != nil {
		cacheKey = s.cacheKey(ctx, "id:"+id)
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var bin domain.Bin
			if err := json.Unmarshal(data, &bin); err == nil {
				metrics.CacheHits.WithLabelValues("bin").Inc()
				return &bin, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("bin").Inc()
	}

	bin, err := s.bins.GetByID(ctx, id)
	if errors.Is(err, ports.ErrNotFound) || (err == nil && bin == nil) {
		return nil, apperr.NotFound(fmt.Sprintf("bin %q not found", id))
	}
	if err != nil {
		return nil, apperr.Internal("get bin", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(bin); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600) // 10 min for single bin
		}
	}

	return bin, nil
}

// Cities returns the distinct catalog cities in first-appearance order.
func (s *BinService) Cities(ctx context.Context) ([]string, error) {
	all, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return Cities(all), nil
}

// Categories returns the fixed category table.
func (s *BinService) Categories() []domain.Category {
	return domain.Categories()
}

// Invalidate starts a new catalog generation, so cached catalog, single-bin
// and nearby reads all go back to the repository.
func (s *BinService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Set(ctx, generationKey, []byte(uuid.NewString()), generationTTL); err != nil {
		return fmt.Errorf("bump catalog generation: %w", err)
	}
	return nil
}
