package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/core/usecases"
	"github.com/samirrijal/ecobin/internal/pkg/geospatial"
)

const maxQueryLen = 200

// filterFromQuery reads q, city, category and selected into a FilterState.
func filterFromQuery(c *fiber.Ctx) (domain.FilterState, error) {
	f := domain.FilterState{
		SearchQuery:      c.Query("q"),
		SelectedCity:     c.Query("city"),
		SelectedCategory: c.Query("category"),
		SelectedBinID:    c.Query("selected"),
	}.Normalized()
	if len(f.SearchQuery) > maxQueryLen {
		return f, errBadRequest(c, "query too long (max 200 characters)")
	}
	return f, nil
}

// pointFromQuery parses optional lat/lon parameters. ok is false when
// neither is present.
func pointFromQuery(c *fiber.Ctx) (p domain.GeoPoint, ok bool, err error) {
	rawLat, rawLon := c.Query("lat"), c.Query("lon")
	if rawLat == "" && rawLon == "" {
		return p, false, nil
	}
	lat, errLat := strconv.ParseFloat(rawLat, 64)
	lon, errLon := strconv.ParseFloat(rawLon, 64)
	if errLat != nil || errLon != nil || !geospatial.ValidCoordinate(lat, lon) {
		return p, false, errBadRequest(c, "lat and lon must be valid coordinates")
	}
	return domain.GeoPoint{Lat: lat, Lon: lon}, true, nil
}

// userPosition resolves the caller's position from lat/lon or, with
// locate=ip, from the client address. A failed IP lookup is not an error.
func userPosition(c *fiber.Ctx, deps *Dependencies) (*domain.UserPosition, error) {
	p, ok, err := pointFromQuery(c)
	if err != nil {
		return nil, err
	}
	if ok {
		return &domain.UserPosition{Latitude: p.Lat, Longitude: p.Lon, Source: domain.SourceClient}, nil
	}
	if c.Query("locate") == "ip" && deps.Locator != nil {
		pos, err := deps.Locator.Lookup(c.IP())
		if err != nil {
			LoggerFromCtx(c.UserContext()).Debug("ip geolocation unavailable", "ip", c.IP(), "error", err)
			return nil, nil
		}
		return pos, nil
	}
	return nil, nil
}

// ListBinsHandler returns the filtered catalog, optionally sorted by
// distance from the caller.
func ListBinsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := filterFromQuery(c)
		if err != nil {
			return err
		}
		pos, err := userPosition(c, deps)
		if err != nil {
			return err
		}

		params := usecases.SearchParams{Filter: f}
		if pos != nil {
			p := pos.Point()
			params.Near = &p
			params.SortByDistance = c.Query("sort") == "distance"
		} else if c.Query("sort") == "distance" {
			return errBadRequest(c, "sort=distance requires lat/lon or locate=ip")
		}

		bins, err := deps.Bins.Search(c.UserContext(), params)
		if err != nil {
			return errFromApp(c, err)
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(bins)
		if offset >= total {
			bins = []domain.Bin{}
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			bins = bins[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: bins, Pagination: pg})
	}
}

// NearbyBinsHandler returns bins within a radius of a point, nearest first.
func NearbyBinsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok, err := pointFromQuery(c)
		if err != nil {
			return err
		}
		if !ok {
			return errBadRequest(c, "lat and lon are required")
		}
		radius := c.QueryFloat("radius", 5000)
		if radius <= 0 || radius > 50000 {
			return errBadRequest(c, "radius must be between 1 and 50000 meters")
		}
		limit := c.QueryInt("limit", 20)

		bins, err := deps.Bins.FindNearby(c.UserContext(), p.Lat, p.Lon, radius, limit)
		if err != nil {
			return errFromApp(c, err)
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(bins)
	}
}

// GetBinHandler returns a single bin by ID.
func GetBinHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "bin id is required")
		}
		bin, err := deps.Bins.GetByID(c.UserContext(), id)
		if err != nil {
			return errFromApp(c, err)
		}
		return c.JSON(bin)
	}
}

// BinCardHandler returns the list-view card of a bin. With lat/lon the card
// carries the distance from the caller.
func BinCardHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bin, err := deps.Bins.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromApp(c, err)
		}
		pos, err := userPosition(c, deps)
		if err != nil {
			return err
		}
		return c.JSON(usecases.BuildCard(*bin, deps.Map.Badge, pos))
	}
}

// DirectionsHandler redirects to turn-by-turn directions to a bin.
func DirectionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bin, err := deps.Bins.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromApp(c, err)
		}
		return c.Redirect(geospatial.DirectionsURL(bin.Lat, bin.Lng), fiber.StatusFound)
	}
}

// CitiesHandler lists the distinct catalog cities.
func CitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cities, err := deps.Bins.Cities(c.UserContext())
		if err != nil {
			return errFromApp(c, err)
		}
		return c.JSON(cities)
	}
}

// CategoriesHandler lists the item categories offered by the filter.
func CategoriesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(deps.Bins.Categories())
	}
}

// MapViewportResponse describes the camera and tiles for a filtered map.
type MapViewportResponse struct {
	Viewport    domain.Viewport `json:"viewport"`
	TileURL     string          `json:"tile_url"`
	Attribution string          `json:"attribution"`
	ResultCount int             `json:"result_count"`
}

// MapViewportHandler returns the camera framing the filtered bins.
func MapViewportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := filterFromQuery(c)
		if err != nil {
			return err
		}
		bins, err := deps.Bins.Search(c.UserContext(), usecases.SearchParams{Filter: f})
		if err != nil {
			return errFromApp(c, err)
		}
		return c.JSON(MapViewportResponse{
			Viewport:    usecases.ViewportFor(bins, f.SelectedBinID, deps.Map),
			TileURL:     deps.Map.TileURL,
			Attribution: deps.Map.Attribution,
			ResultCount: len(bins),
		})
	}
}

// GeolocateHandler resolves the caller's approximate position from its IP
// address. Failures are reported in the state field with a 200.
func GeolocateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provider := usecases.NewGeolocationProvider(deps.Locator.ForIP(c.IP()))
		defer provider.Close()

		snap, err := provider.Request(c.UserContext())
		if err != nil {
			return errFromApp(c, err)
		}
		c.Set("Cache-Control", "private, no-store")
		return c.JSON(snap)
	}
}
