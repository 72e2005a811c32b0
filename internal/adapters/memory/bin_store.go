package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/core/ports"
	"github.com/samirrijal/ecobin/internal/pkg/geospatial"
	"gopkg.in/yaml.v3"
)

// BinStore implements ports.BinRepository over an in-process slice.
type BinStore struct {
	mu   sync.RWMutex
	bins []domain.Bin
}

// NewBinStore creates a store holding bins in the given order.
func NewBinStore(bins []domain.Bin) *BinStore {
	return &BinStore{bins: bins}
}

// NewFixtureStore creates a store seeded with the built-in catalog.
func NewFixtureStore() *BinStore {
	return NewBinStore(Fixture())
}

type catalogFile struct {
	Bins []domain.Bin `yaml:"bins"`
}

// LoadCatalog reads a YAML catalog file of the form `bins: [...]`.
func LoadCatalog(path string) ([]domain.Bin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates YAML catalog data.
func ParseCatalog(data []byte) ([]domain.Bin, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(cf.Bins))
	for i := range cf.Bins {
		b := &cf.Bins[i]
		if b.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: id is required", i)
		}
		if _, dup := seen[b.ID]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i, b.ID)
		}
		seen[b.ID] = struct{}{}
		if !geospatial.ValidCoordinate(b.Lat, b.Lng) {
			return nil, fmt.Errorf("catalog entry %q: coordinates out of range", b.ID)
		}
		if b.Status == "" {
			b.Status = domain.BinStatusActive
		}
		if !b.Status.Valid() {
			return nil, fmt.Errorf("catalog entry %q: unknown status %q", b.ID, b.Status)
		}
		if b.AcceptedItems == nil {
			b.AcceptedItems = []string{}
		}
	}
	return cf.Bins, nil
}

// NewCatalogStore creates a store from a YAML catalog file.
func NewCatalogStore(path string) (*BinStore, error) {
	bins, err := LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	return NewBinStore(bins), nil
}

// List returns a copy of all bins in catalog order.
func (s *BinStore) List(ctx context.Context) ([]domain.Bin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Bin, len(s.bins))
	copy(out, s.bins)
	return out, nil
}

// GetByID returns the bin with the given id or ports.ErrNotFound.
func (s *BinStore) GetByID(ctx context.Context, id string) (*domain.Bin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bins {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, ports.ErrNotFound
}

// FindNearby returns bins within radiusMeters, nearest first.
func (s *BinStore) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Bin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusMeters)
	box := domain.Bounds{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}

	out := make([]domain.Bin, 0)
	for _, b := range s.bins {
		if !box.Contains(b.Point()) {
			continue
		}
		d := geospatial.Haversine(lat, lon, b.Lat, b.Lng)
		if d > radiusMeters {
			continue
		}
		b.Distance = &d
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return *out[i].Distance < *out[j].Distance })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpsertBatch replaces bins with matching ids and appends new ones.
func (s *BinStore) UpsertBatch(ctx context.Context, bins []domain.Bin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := make(map[string]int, len(s.bins))
	for i, b := range s.bins {
		index[b.ID] = i
	}
	for _, b := range bins {
		b.Distance = nil
		if i, ok := index[b.ID]; ok {
			s.bins[i] = b
			continue
		}
		index[b.ID] = len(s.bins)
		s.bins = append(s.bins, b)
	}
	return nil
}
