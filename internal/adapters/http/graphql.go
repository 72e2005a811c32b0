package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	binType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bin",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.String},
			"name":            &graphql.Field{Type: graphql.String},
			"area":            &graphql.Field{Type: graphql.String},
			"city":            &graphql.Field{Type: graphql.String},
			"pincode":         &graphql.Field{Type: graphql.String},
			"address":         &graphql.Field{Type: graphql.String},
			"lat":             &graphql.Field{Type: graphql.Float},
			"lng":             &graphql.Field{Type: graphql.Float},
			"accepted_items":  &graphql.Field{Type: graphql.NewList(graphql.String)},
			"operating_hours": &graphql.Field{Type: graphql.String},
			"contact":         &graphql.Field{Type: graphql.String},
			"status":          &graphql.Field{Type: graphql.String},
			"distance":        &graphql.Field{Type: graphql.Float},
		},
	})

	categoryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.String},
			"label": &graphql.Field{Type: graphql.String},
			"icon":  &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"bins": &graphql.Field{
				Type:        graphql.NewList(binType),
				Description: "Filter the catalog by text, city and category",
				Args: graphql.FieldConfigArgument{
					"q":        &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"city":     &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: domain.AllCities},
					"category": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: domain.CategoryAll},
					"lat":      &graphql.ArgumentConfig{Type: graphql.Float},
					"lon":      &graphql.ArgumentConfig{Type: graphql.Float},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					params := usecases.SearchParams{Filter: domain.FilterState{
						SearchQuery:      p.Args["q"].(string),
						SelectedCity:     p.Args["city"].(string),
						SelectedCategory: p.Args["category"].(string),
					}.Normalized()}
					lat, hasLat := p.Args["lat"].(float64)
					lon, hasLon := p.Args["lon"].(float64)
					if hasLat && hasLon {
						params.Near = &domain.GeoPoint{Lat: lat, Lon: lon}
						params.SortByDistance = true
					}
					return deps.Bins.Search(p.Context, params)
				},
			},
			"bin": &graphql.Field{
				Type:        binType,
				Description: "Get a bin by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Bins.GetByID(p.Context, id)
				},
			},
			"binsNearby": &graphql.Field{
				Type:        graphql.NewList(binType),
				Description: "Find bins near a location",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 5000.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radius := p.Args["radius"].(float64)
					limit := p.Args["limit"].(int)
					return deps.Bins.FindNearby(p.Context, lat, lon, radius, limit)
				},
			},
			"cities": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "Distinct catalog cities",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Bins.Cities(p.Context)
				},
			},
			"categories": &graphql.Field{
				Type:        graphql.NewList(categoryType),
				Description: "Item categories offered by the filter",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Bins.Categories(), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
