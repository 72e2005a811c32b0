package http

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/samirrijal/ecobin/internal/adapters/memory"
	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/core/usecases"
)

// recorder collects the render commands of a session.
type recorder struct {
	mu   sync.Mutex
	cmds []renderCommand
}

func (r *recorder) send(cmd renderCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds = append(r.cmds, cmd)
	return nil
}

// take returns the recorded commands and starts a new recording.
func (r *recorder) take() []renderCommand {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.cmds
	r.cmds = nil
	return out
}

func types(cmds []renderCommand) []string {
	out := make([]string, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, c.Type)
	}
	return out
}

func equalTypes(got []renderCommand, want ...string) bool {
	g := types(got)
	if len(g) != len(want) {
		return false
	}
	for i := range g {
		if g[i] != want[i] {
			return false
		}
	}
	return true
}

type brokenCatalog struct{}

func (brokenCatalog) List(ctx context.Context) ([]domain.Bin, error) {
	return nil, errors.New("relation \"bins\" does not exist")
}
func (brokenCatalog) GetByID(ctx context.Context, id string) (*domain.Bin, error) { return nil, nil }
func (brokenCatalog) FindNearby(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Bin, error) {
	return nil, nil
}
func (brokenCatalog) UpsertBatch(ctx context.Context, bins []domain.Bin) error { return nil }

func openTestSession(t *testing.T) (*usecases.Session, *recorder) {
	t.Helper()
	deps := &Dependencies{
		Bins: usecases.NewBinService(memory.NewFixtureStore(), nil),
		Map:  usecases.DefaultMapOptions(),
	}
	rec := &recorder{}
	sess, err := openMapSession(context.Background(), deps, "203.0.113.7", rec.send)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = sess.Close(context.Background()) })
	return sess, rec
}

func ptr(f float64) *float64 { return &f }

func TestMapSession_OpenRendersCatalog(t *testing.T) {
	_, rec := openTestSession(t)
	cmds := rec.take()

	if len(cmds) != 12 {
		t.Fatalf("expected init, 10 markers and results, got %v", types(cmds))
	}
	if cmds[0].Type != cmdInit || cmds[0].Viewport.Zoom != 5 || cmds[0].TileURL == "" {
		t.Errorf("unexpected init command %+v", cmds[0])
	}
	for _, c := range cmds[1:11] {
		if c.Type != cmdPlaceMarker {
			t.Fatalf("expected place_marker, got %s", c.Type)
		}
	}
	last := cmds[11]
	if last.Type != cmdResults || last.Results.Count != 10 || last.Results.Mode != domain.ViewModeList {
		t.Errorf("unexpected results command %+v", last)
	}
}

func TestMapSession_InitFailureSendsError(t *testing.T) {
	deps := &Dependencies{
		Bins: usecases.NewBinService(brokenCatalog{}, nil),
		Map:  usecases.DefaultMapOptions(),
	}
	rec := &recorder{}
	if _, err := openMapSession(context.Background(), deps, "", rec.send); err == nil {
		t.Fatal("expected error")
	}

	cmds := rec.take()
	if !equalTypes(cmds, cmdInit, cmdError) {
		t.Fatalf("unexpected commands %v", types(cmds))
	}
	if cmds[1].Code != "internal_error" || cmds[1].Message != "internal error" {
		t.Errorf("internal cause leaked: %+v", cmds[1])
	}
}

func TestMapSession_Filter(t *testing.T) {
	sess, rec := openTestSession(t)
	rec.take()

	err := handleAction(context.Background(), sess, wsAction{Action: "filter", City: "Bangalore"}, rec.send)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cmds := rec.take()
	if len(cmds) != 9 {
		t.Fatalf("expected 8 removals and results, got %v", types(cmds))
	}
	removed := map[string]bool{}
	for _, c := range cmds[:8] {
		if c.Type != cmdRemoveOverlay {
			t.Fatalf("expected remove_overlay, got %s", c.Type)
		}
		removed[c.OverlayID] = true
	}
	if removed["bin:1"] || removed["bin:2"] {
		t.Errorf("Bangalore markers must stay, removed %v", removed)
	}
	res := cmds[8].Results
	if cmds[8].Type != cmdResults || res.Count != 2 || res.Filter.SelectedCity != "Bangalore" {
		t.Errorf("unexpected results %+v", cmds[8])
	}
}

func TestMapSession_FilterRejectsLongQuery(t *testing.T) {
	sess, rec := openTestSession(t)
	rec.take()

	long := make([]byte, maxQueryLen+1)
	for i := range long {
		long[i] = 'a'
	}
	err := handleAction(context.Background(), sess, wsAction{Action: "filter", Query: string(long)}, rec.send)
	if err == nil || errorCommand(err).Code != "bad_request" {
		t.Fatalf("expected bad_request, got %v", err)
	}
	if cmds := rec.take(); len(cmds) != 0 {
		t.Errorf("expected no commands, got %v", types(cmds))
	}
}

func TestMapSession_Select(t *testing.T) {
	sess, rec := openTestSession(t)
	rec.take()
	ctx := context.Background()

	if err := handleAction(ctx, sess, wsAction{Action: "select", ID: "2"}, rec.send); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cmds := rec.take()
	if !equalTypes(cmds, cmdFlyTo) {
		t.Fatalf("expected one fly_to, got %v", types(cmds))
	}
	if cmds[0].Viewport.Zoom != 14 || cmds[0].Duration != 1.5 {
		t.Errorf("unexpected fly_to %+v", cmds[0])
	}

	if err := handleAction(ctx, sess, wsAction{Action: "filter", City: "Mumbai"}, rec.send); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec.take()
	if err := handleAction(ctx, sess, wsAction{Action: "select", ID: "1"}, rec.send); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmds := rec.take(); len(cmds) != 0 {
		t.Errorf("selecting a filtered-out bin must not move the camera, got %v", types(cmds))
	}
}

func TestMapSession_CenterWaitsForPosition(t *testing.T) {
	sess, rec := openTestSession(t)
	rec.take()
	ctx := context.Background()

	if err := handleAction(ctx, sess, wsAction{Action: "center"}, rec.send); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmds := rec.take(); len(cmds) != 0 {
		t.Fatalf("expected no commands before a fix, got %v", types(cmds))
	}

	pos := wsAction{Action: "position", Lat: ptr(12.9352), Lon: ptr(77.6245)}
	if err := handleAction(ctx, sess, pos, rec.send); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cmds := rec.take()
	if !equalTypes(cmds, cmdDrawCircle, cmdDrawCircle, cmdPlaceMarker, cmdFlyTo, cmdCenterComplete, cmdLocation, cmdResults) {
		t.Fatalf("unexpected commands %v", types(cmds))
	}
	if cmds[5].Location.State != usecases.GeoResolved {
		t.Errorf("expected resolved location, got %s", cmds[5].Location.State)
	}
	if cards := cmds[6].Results.Cards; cards[0].Distance == "" {
		t.Error("expected distance on refreshed cards")
	}

	// A second position does not complete the finished request again.
	pos = wsAction{Action: "position", Lat: ptr(19.07), Lon: ptr(72.87)}
	if err := handleAction(ctx, sess, pos, rec.send); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range rec.take() {
		if c.Type == cmdCenterComplete || c.Type == cmdFlyTo {
			t.Errorf("unexpected %s after the request completed", c.Type)
		}
	}
}

func TestMapSession_ClearPosition(t *testing.T) {
	sess, rec := openTestSession(t)
	ctx := context.Background()

	pos := wsAction{Action: "position", Lat: ptr(12.9352), Lon: ptr(77.6245)}
	if err := handleAction(ctx, sess, pos, rec.send); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec.take()

	if err := handleAction(ctx, sess, wsAction{Action: "clear_position"}, rec.send); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cmds := rec.take()
	if !equalTypes(cmds, cmdRemoveOverlay, cmdRemoveOverlay, cmdRemoveOverlay, cmdLocation, cmdResults) {
		t.Fatalf("unexpected commands %v", types(cmds))
	}
	for _, card := range cmds[4].Results.Cards {
		if card.Distance != "" {
			t.Errorf("card %s still shows distance %q", card.BinID, card.Distance)
		}
	}
}

func TestMapSession_RejectsBadActions(t *testing.T) {
	sess, rec := openTestSession(t)
	rec.take()

	cases := []struct {
		name string
		a    wsAction
	}{
		{"missing lon", wsAction{Action: "position", Lat: ptr(12.9)}},
		{"lat out of range", wsAction{Action: "position", Lat: ptr(95), Lon: ptr(77)}},
		{"unknown mode", wsAction{Action: "mode", Mode: "satellite"}},
		{"unknown action", wsAction{Action: "teleport"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := handleAction(context.Background(), sess, tc.a, rec.send)
			if err == nil {
				t.Fatal("expected error")
			}
			if cmd := errorCommand(err); cmd.Code != "bad_request" {
				t.Errorf("expected bad_request, got %s", cmd.Code)
			}
		})
	}
	if cmds := rec.take(); len(cmds) != 0 {
		t.Errorf("rejected actions must not render, got %v", types(cmds))
	}
}

func TestMapSession_ModeAndActivate(t *testing.T) {
	sess, rec := openTestSession(t)
	rec.take()
	ctx := context.Background()

	if err := handleAction(ctx, sess, wsAction{Action: "mode", Mode: "map"}, rec.send); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cmds := rec.take()
	if !equalTypes(cmds, cmdResults) || cmds[0].Results.Mode != domain.ViewModeMap {
		t.Fatalf("unexpected commands %+v", cmds)
	}

	if err := handleAction(ctx, sess, wsAction{Action: "activate", OverlayID: "bin:3"}, rec.send); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cmds = rec.take()
	if !equalTypes(cmds, cmdPopup) || cmds[0].Popup.OverlayID != "bin:3" {
		t.Fatalf("unexpected commands %+v", cmds)
	}

	err := handleAction(ctx, sess, wsAction{Action: "activate", OverlayID: "bin:404"}, rec.send)
	if err == nil || errorCommand(err).Code != "not_found" {
		t.Errorf("expected not_found, got %v", err)
	}
}
