package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/posmatch/backend/internal/domain"
)

//go:embed data/catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Products []domain.Product `yaml:"products"`
}

// Default parses the catalog shipped with the binary
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a YAML catalog from path. An empty path loads the default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML document with a top-level products list
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	for _, p := range file.Products {
		if !p.PrimaryCategory.Valid() {
			return nil, fmt.Errorf("%w: product %s has unknown category %q", domain.ErrInvalidCatalog, p.Identifier, p.PrimaryCategory)
		}
		if !p.Size.Valid() {
			return nil, fmt.Errorf("%w: product %s has unknown size %q", domain.ErrInvalidCatalog, p.Identifier, p.Size)
		}
	}

	return New(file.Products)
}
