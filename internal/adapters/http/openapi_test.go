package http_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

// findOpenAPISpec locates the openapi.yaml file by walking up from the test directory.
func findOpenAPISpec(t *testing.T) string {
	t.Helper()
	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "api", "openapi.yaml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	t.Fatalf("could not find api/openapi.yaml")
	return ""
}

func loadSpec(t *testing.T) *openapi3.T {
	t.Helper()
	data, err := os.ReadFile(findOpenAPISpec(t))
	if err != nil {
		t.Fatalf("failed to read openapi.yaml: %v", err)
	}
	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI document: %v", err)
	}
	return spec
}

// TestOpenAPISpec validates the OpenAPI document and checks it covers every route.
func TestOpenAPISpec(t *testing.T) {
	spec := loadSpec(t)

	if err := spec.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI validation failed: %v", err)
	}

	expectedPaths := []string{
		"/v1/health",
		"/v1/ready",
		"/v1/bins",
		"/v1/bins/nearby",
		"/v1/bins/{id}",
		"/v1/bins/{id}/card",
		"/v1/bins/{id}/directions",
		"/v1/cities",
		"/v1/categories",
		"/v1/map/viewport",
		"/v1/geolocate",
		"/v1/submissions/bins",
		"/v1/submissions/contact",
		"/graphql",
	}
	for _, path := range expectedPaths {
		if item := spec.Paths.Find(path); item == nil {
			t.Errorf("expected path %s not found", path)
		}
	}

	expectedSchemas := []string{
		"APIError",
		"Pagination",
		"Bin",
		"Card",
		"Category",
		"Viewport",
		"GeoSnapshot",
		"BinSubmission",
		"ContactMessage",
		"SubmissionReceipt",
	}
	for _, schema := range expectedSchemas {
		if spec.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}

	t.Logf("OpenAPI document valid: %d paths, %d schemas", len(spec.Paths.Map()), len(spec.Components.Schemas))
}

// TestOpenAPIInfo verifies document metadata.
func TestOpenAPIInfo(t *testing.T) {
	spec := loadSpec(t)

	if spec.Info.Title != "EcoBin API" {
		t.Errorf("expected title 'EcoBin API', got %q", spec.Info.Title)
	}
	if spec.Info.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", spec.Info.Version)
	}
	if len(spec.Servers) == 0 {
		t.Error("expected at least one server")
	}
}

// TestOpenAPICategoriesMatchFilter keeps the documented category enum in
// step with the filter's table.
func TestOpenAPICategoriesMatchFilter(t *testing.T) {
	spec := loadSpec(t)

	param := spec.Components.Parameters["Category"]
	if param == nil || param.Value == nil || param.Value.Schema == nil {
		t.Fatal("Category parameter missing")
	}
	enum := map[string]bool{}
	for _, v := range param.Value.Schema.Value.Enum {
		if s, ok := v.(string); ok {
			enum[s] = true
		}
	}
	for _, id := range []string{"all", "all-electronics", "phones", "laptops", "appliances", "batteries", "accessories"} {
		if !enum[id] {
			t.Errorf("category %q missing from documented enum", id)
		}
	}
}
