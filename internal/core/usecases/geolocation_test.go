package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/core/ports"
	"github.com/samirrijal/ecobin/internal/core/usecases"
)

// --- Mock LocationSource ---

type mockSource struct {
	calls    atomic.Int32
	started  chan struct{}
	release  chan struct{}
	locateFn func(ctx context.Context) (*domain.UserPosition, error)
}

func (m *mockSource) Locate(ctx context.Context) (*domain.UserPosition, error) {
	m.calls.Add(1)
	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
		}
	}
	if m.locateFn != nil {
		return m.locateFn(ctx)
	}
	return &domain.UserPosition{Latitude: 12.93, Longitude: 77.62, Source: domain.SourceIP}, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestGeolocation_Resolved(t *testing.T) {
	var seen []usecases.GeoState
	g := usecases.NewGeolocationProvider(&mockSource{}, usecases.WithGeoListener(func(s usecases.GeoSnapshot) {
		seen = append(seen, s.State)
	}))

	snap, err := g.Request(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.State != usecases.GeoResolved || snap.Position == nil {
		t.Fatalf("expected resolved with position, got %+v", snap)
	}
	if snap.Position.FixedAt.IsZero() {
		t.Error("expected FixedAt to be stamped")
	}
	if len(seen) != 1 || seen[0] != usecases.GeoResolved {
		t.Errorf("unexpected listener calls: %v", seen)
	}
}

func TestGeolocation_TerminalStates(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want usecases.GeoState
	}{
		{"denied", fmt.Errorf("user said no: %w", ports.ErrPermissionDenied), usecases.GeoDenied},
		{"unsupported", ports.ErrUnsupported, usecases.GeoUnsupported},
		{"error", errors.New("timeout acquiring fix"), usecases.GeoError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &mockSource{locateFn: func(ctx context.Context) (*domain.UserPosition, error) {
				return nil, tc.err
			}}
			g := usecases.NewGeolocationProvider(src)
			snap, err := g.Request(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if snap.State != tc.want {
				t.Errorf("expected %s, got %s", tc.want, snap.State)
			}
			if snap.Position != nil {
				t.Error("position must be cleared on failure")
			}
			if snap.Reason == "" {
				t.Error("expected a reason")
			}
			if src.calls.Load() != 1 {
				t.Errorf("expected exactly one source call, got %d", src.calls.Load())
			}
		})
	}
}

func TestGeolocation_NilSourceUnsupported(t *testing.T) {
	g := usecases.NewGeolocationProvider(nil)
	snap, err := g.Request(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.State != usecases.GeoUnsupported {
		t.Errorf("expected unsupported, got %s", snap.State)
	}
}

func TestGeolocation_SingleInFlight(t *testing.T) {
	src := &mockSource{started: make(chan struct{}, 10), release: make(chan struct{})}
	g := usecases.NewGeolocationProvider(src)

	var wg sync.WaitGroup
	results := make([]usecases.GeoSnapshot, 5)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = g.Request(context.Background())
	}()
	<-src.started

	for i := 1; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = g.Request(context.Background())
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(src.release)
	wg.Wait()

	if n := src.calls.Load(); n != 1 {
		t.Errorf("expected one platform call, got %d", n)
	}
	for i, r := range results {
		if r.State != usecases.GeoResolved {
			t.Errorf("caller %d: expected resolved, got %s", i, r.State)
		}
	}
}

func TestGeolocation_CallerCancelDoesNotAbortFix(t *testing.T) {
	src := &mockSource{release: make(chan struct{})}
	g := usecases.NewGeolocationProvider(src)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := g.Request(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	close(src.release)
	waitFor(t, func() bool { return g.Snapshot().State == usecases.GeoResolved })
}

func TestGeolocation_CloseDropsLateResult(t *testing.T) {
	src := &mockSource{started: make(chan struct{}, 1), release: make(chan struct{})}
	var resolved atomic.Bool
	g := usecases.NewGeolocationProvider(src, usecases.WithGeoListener(func(s usecases.GeoSnapshot) {
		if s.State == usecases.GeoResolved {
			resolved.Store(true)
		}
	}))

	done := make(chan usecases.GeoSnapshot, 1)
	go func() {
		snap, _ := g.Request(context.Background())
		done <- snap
	}()
	<-src.started
	g.Close()

	select {
	case snap := <-done:
		if snap.State == usecases.GeoResolved {
			t.Error("late result was applied after Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("request did not return after Close")
	}
	if resolved.Load() {
		t.Error("listener saw a resolved state after Close")
	}

	if _, err := g.Request(context.Background()); err == nil {
		t.Error("expected error requesting from a closed provider")
	}
}

func TestGeolocation_ClearDropsInFlight(t *testing.T) {
	src := &mockSource{started: make(chan struct{}, 1), release: make(chan struct{})}
	g := usecases.NewGeolocationProvider(src)

	done := make(chan struct{})
	go func() {
		_, _ = g.Request(context.Background())
		close(done)
	}()
	<-src.started
	g.Clear()
	close(src.release)
	<-done

	if s := g.Snapshot(); s.State != usecases.GeoIdle || s.Position != nil {
		t.Errorf("expected idle after clear, got %+v", s)
	}
}

func TestGeolocation_SetPosition(t *testing.T) {
	g := usecases.NewGeolocationProvider(nil)
	snap := g.SetPosition(&domain.UserPosition{Latitude: 19.07, Longitude: 72.87})
	if snap.State != usecases.GeoResolved || snap.Position.Source != domain.SourceClient {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
	g.SetPosition(nil)
	if g.Snapshot().State != usecases.GeoIdle {
		t.Error("nil position should clear")
	}
}
