package geoip

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"

	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/core/ports"
	"github.com/samirrijal/ecobin/internal/pkg/apperr"
)

// cityReader is the part of *geoip2.Reader the locator uses.
type cityReader interface {
	City(ip net.IP) (*geoip2.City, error)
	Close() error
}

// Locator resolves client IP addresses to approximate positions using a
// MaxMind City database.
type Locator struct {
	reader cityReader
}

// Open loads the mmdb file at path.
func Open(path string) (*Locator, error) {
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip db: %w", err)
	}
	return &Locator{reader: r}, nil
}

// NewLocator wraps an already opened reader.
func NewLocator(r cityReader) *Locator {
	return &Locator{reader: r}
}

// Lookup returns the approximate position of ip.
func (l *Locator) Lookup(ip string) (*domain.UserPosition, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil, apperr.LocationUnavailable(fmt.Sprintf("invalid address %q", ip), nil)
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return nil, apperr.LocationUnavailable("address is not publicly routable", ports.ErrUnsupported)
	}

	rec, err := l.reader.City(parsed)
	if err != nil {
		return nil, apperr.LocationUnavailable("geoip lookup failed", err)
	}
	if rec.Location.Latitude == 0 && rec.Location.Longitude == 0 {
		return nil, apperr.LocationUnavailable("no location for address", nil)
	}

	pos := &domain.UserPosition{
		Latitude:  rec.Location.Latitude,
		Longitude: rec.Location.Longitude,
		Source:    domain.SourceIP,
	}
	if rec.Location.AccuracyRadius > 0 {
		acc := float64(rec.Location.AccuracyRadius) * 1000 // km to m
		pos.Accuracy = &acc
	}
	return pos, nil
}

// ForIP returns a one-shot LocationSource for a single client address.
// A nil Locator yields a nil source, which callers treat as unsupported.
func (l *Locator) ForIP(ip string) ports.LocationSource {
	if l == nil {
		return nil
	}
	return ipSource{locator: l, ip: ip}
}

// Close releases the database.
func (l *Locator) Close() error {
	return l.reader.Close()
}

type ipSource struct {
	locator *Locator
	ip      string
}

func (s ipSource) Locate(ctx context.Context) (*domain.UserPosition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.locator.Lookup(s.ip)
}
