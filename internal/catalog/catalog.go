// Package catalog holds the immutable product catalog shared by the matcher,
// the classifier gateway and the resolution pipeline.
package catalog

import (
	"fmt"
	"strings"

	"github.com/posmatch/backend/internal/domain"
)

// Catalog is a read-only, ordered set of products keyed by identifier.
// It is safe for concurrent use because nothing mutates it after New.
type Catalog struct {
	products []domain.Product
	index    map[string]int
}

// Reference is a complementary product link that does not resolve
type Reference struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// New builds a catalog from products in declaration order.
// Duplicate identifiers are rejected; dangling complementary links are tolerated.
func New(products []domain.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]domain.Product, 0, len(products)),
		index:    make(map[string]int, len(products)),
	}

	for _, p := range products {
		id := strings.TrimSpace(p.Identifier)
		if id == "" {
			return nil, fmt.Errorf("%w: empty identifier for product %q", domain.ErrInvalidCatalog, p.Name)
		}
		if _, exists := c.index[id]; exists {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateIdentifier, id)
		}
		p = p.Clone()
		p.Identifier = id
		c.index[id] = len(c.products)
		c.products = append(c.products, p)
	}

	return c, nil
}

// All returns every product in declaration order
func (c *Catalog) All() []domain.Product {
	out := make([]domain.Product, len(c.products))
	for i, p := range c.products {
		out[i] = p.Clone()
	}
	return out
}

// FindByIdentifier performs an exact-key lookup
func (c *Catalog) FindByIdentifier(id string) (domain.Product, bool) {
	i, ok := c.index[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i].Clone(), true
}

// Len returns the number of products
func (c *Catalog) Len() int {
	return len(c.products)
}

// Projection returns the compact catalog view sent to the classifier.
// It is rebuilt from the products on every call.
func (c *Catalog) Projection() []domain.ProjectionEntry {
	out := make([]domain.ProjectionEntry, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p.Projection())
	}
	return out
}

// DanglingReferences lists complementary links pointing at unknown identifiers
func (c *Catalog) DanglingReferences() []Reference {
	var refs []Reference
	for _, p := range c.products {
		for _, to := range p.ComplementaryProducts {
			if _, ok := c.index[to]; !ok {
				refs = append(refs, Reference{From: p.Identifier, To: to})
			}
		}
	}
	return refs
}
