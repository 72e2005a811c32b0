package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/core/usecases"
	"github.com/samirrijal/ecobin/internal/pkg/apperr"
	"github.com/samirrijal/ecobin/internal/pkg/geospatial"
	"github.com/samirrijal/ecobin/internal/pkg/metrics"
)

// Render commands sent to the client.
const (
	cmdInit           = "init"
	cmdPlaceMarker    = "place_marker"
	cmdRemoveOverlay  = "remove_overlay"
	cmdDrawCircle     = "draw_circle"
	cmdFlyTo          = "fly_to"
	cmdPopup          = "popup"
	cmdCenterComplete = "center_complete"
	cmdLocation       = "location"
	cmdResults        = "results"
	cmdError          = "error"
)

// renderCommand is one server-to-client message on a map session.
type renderCommand struct {
	Type        string                `json:"type"`
	Viewport    *domain.Viewport      `json:"viewport,omitempty"`
	TileURL     string                `json:"tile_url,omitempty"`
	Attribution string                `json:"attribution,omitempty"`
	Marker      *domain.Marker        `json:"marker,omitempty"`
	Circle      *domain.Circle        `json:"circle,omitempty"`
	OverlayID   string                `json:"overlay_id,omitempty"`
	Duration    float64               `json:"duration,omitempty"`
	Popup       *domain.Popup         `json:"popup,omitempty"`
	Location    *usecases.GeoSnapshot `json:"location,omitempty"`
	Results     *resultsPayload       `json:"results,omitempty"`
	Code        string                `json:"code,omitempty"`
	Message     string                `json:"message,omitempty"`
}

type resultsPayload struct {
	Count    int                `json:"count"`
	Mode     domain.ViewMode    `json:"mode"`
	Filter   domain.FilterState `json:"filter"`
	Viewport domain.Viewport    `json:"viewport"`
	Cards    []domain.Card      `json:"cards"`
}

// wsAction is sent from client to drive the session.
type wsAction struct {
	Action    string   `json:"action"` // filter | select | view_on_map | mode | position | clear_position | locate | center | activate
	Query     string   `json:"q"`
	City      string   `json:"city"`
	Category  string   `json:"category"`
	ID        string   `json:"id"`
	OverlayID string   `json:"overlay_id"`
	Mode      string   `json:"mode"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Accuracy  *float64 `json:"accuracy"`
}

// wsSurface renders map commands onto a WebSocket connection.
type wsSurface struct {
	send func(renderCommand) error
}

func (s *wsSurface) Init(ctx context.Context, view domain.Viewport, tileURL, attribution string) error {
	return s.send(renderCommand{Type: cmdInit, Viewport: &view, TileURL: tileURL, Attribution: attribution})
}

func (s *wsSurface) PlaceMarker(ctx context.Context, m domain.Marker) error {
	return s.send(renderCommand{Type: cmdPlaceMarker, Marker: &m})
}

func (s *wsSurface) DrawCircle(ctx context.Context, c domain.Circle) error {
	return s.send(renderCommand{Type: cmdDrawCircle, Circle: &c})
}

func (s *wsSurface) RemoveOverlay(ctx context.Context, id string) error {
	return s.send(renderCommand{Type: cmdRemoveOverlay, OverlayID: id})
}

func (s *wsSurface) FlyTo(ctx context.Context, view domain.Viewport, durationSeconds float64) error {
	return s.send(renderCommand{Type: cmdFlyTo, Viewport: &view, Duration: durationSeconds})
}

func (s *wsSurface) ShowPopup(ctx context.Context, p domain.Popup) error {
	return s.send(renderCommand{Type: cmdPopup, Popup: &p})
}

func errorCommand(err error) renderCommand {
	kind := apperr.GetKind(err)
	msg := err.Error()
	if kind == apperr.KindInternal || kind == apperr.KindUnknown {
		msg = "internal error"
	}
	return renderCommand{Type: cmdError, Code: kind.String(), Message: msg}
}

// MapSessionHandler returns a handler that runs one interactive map
// session per connection. The client sends actions; the server answers
// with render commands for the map surface and result lists.
func MapSessionHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		ip, _ := c.Locals("ip").(string)
		logger := slog.Default().With("remote", ip)
		logger.Info("map session opened")

		metrics.ActiveMapSessions.Inc()
		defer metrics.ActiveMapSessions.Dec()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var mu sync.Mutex
		send := func(cmd renderCommand) error {
			data, err := json.Marshal(cmd)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		sess, err := openMapSession(ctx, deps, ip, send)
		if err != nil {
			logger.Warn("map session init failed", "error", err)
			return
		}
		defer func() {
			_ = sess.Close(context.Background())
		}()

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var a wsAction
			if err := json.Unmarshal(msg, &a); err != nil {
				_ = send(errorCommand(apperr.BadRequest("invalid JSON")))
				continue
			}
			if err := handleAction(ctx, sess, a, send); err != nil {
				_ = send(errorCommand(err))
			}
		}

		logger.Info("map session closed")
	}
}

// openMapSession starts a session rendering onto send and emits the first
// result list. Init failures are reported to the client as an error command
// before being returned.
func openMapSession(ctx context.Context, deps *Dependencies, ip string, send func(renderCommand) error) (*usecases.Session, error) {
	var sess *usecases.Session
	opts := usecases.SessionOptions{
		Map: deps.Map,
		OnLocation: func(snap usecases.GeoSnapshot) {
			_ = send(renderCommand{Type: cmdLocation, Location: &snap})
			if sess != nil {
				_ = send(resultsCommand(sess))
			}
		},
		OnError: func(err error) {
			_ = send(errorCommand(err))
		},
	}

	sess, err := usecases.NewSession(ctx, deps.Bins, &wsSurface{send: send}, deps.Locator.ForIP(ip), opts)
	if err != nil {
		_ = send(errorCommand(err))
		return nil, err
	}
	if err := send(resultsCommand(sess)); err != nil {
		_ = sess.Close(context.Background())
		return nil, err
	}
	return sess, nil
}

func resultsCommand(sess *usecases.Session) renderCommand {
	return renderCommand{Type: cmdResults, Results: &resultsPayload{
		Count:    len(sess.Results()),
		Mode:     sess.Mode(),
		Filter:   sess.Filter(),
		Viewport: sess.Viewport(),
		Cards:    sess.Cards(),
	}}
}

func handleAction(ctx context.Context, sess *usecases.Session, a wsAction, send func(renderCommand) error) error {
	switch a.Action {
	case "filter":
		if len(a.Query) > maxQueryLen {
			return apperr.BadRequest("query too long (max 200 characters)")
		}
		if _, err := sess.ApplyFilter(ctx, domain.FilterState{
			SearchQuery:      a.Query,
			SelectedCity:     a.City,
			SelectedCategory: a.Category,
		}); err != nil {
			return err
		}
		return send(resultsCommand(sess))

	case "select":
		return sess.Select(ctx, a.ID)

	case "view_on_map":
		if err := sess.ViewOnMap(ctx, a.ID); err != nil {
			return err
		}
		return send(resultsCommand(sess))

	case "mode":
		mode := domain.ViewMode(a.Mode)
		if mode != domain.ViewModeList && mode != domain.ViewModeMap {
			return apperr.BadRequest("mode must be list or map")
		}
		sess.SetMode(mode)
		return send(resultsCommand(sess))

	case "position":
		if a.Lat == nil || a.Lon == nil || !geospatial.ValidCoordinate(*a.Lat, *a.Lon) {
			return apperr.BadRequest("lat and lon must be valid coordinates")
		}
		sess.SetPosition(&domain.UserPosition{
			Latitude:  *a.Lat,
			Longitude: *a.Lon,
			Accuracy:  a.Accuracy,
			Source:    domain.SourceClient,
		})
		return nil

	case "clear_position":
		sess.ClearPosition()
		return nil

	case "locate":
		go func() {
			_, _ = sess.Locate(ctx)
		}()
		return nil

	case "center":
		return sess.CenterOnUser(ctx, func() {
			_ = send(renderCommand{Type: cmdCenterComplete})
		})

	case "activate":
		_, err := sess.Activate(ctx, a.OverlayID)
		return err

	default:
		return apperr.BadRequest("unknown action: " + a.Action)
	}
}
