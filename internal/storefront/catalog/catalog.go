package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/terra-tattva/storefront/internal/storefront/model"
)

// AllCategories selects the unfiltered catalog.
const AllCategories = "All"

// Categories offered by the browse page, in display order.
var Categories = []string{AllCategories, "Pottery", "Decorative"}

//go:embed products.json
var embeddedProducts []byte

// Catalog is the read-only product list. Callers never mutate it.
type Catalog struct {
	products []model.Product
	byID     map[int]int
}

// Load parses the embedded product list.
func Load() (*Catalog, error) {
	var products []model.Product
	if err := json.Unmarshal(embeddedProducts, &products); err != nil {
		return nil, fmt.Errorf("parse embedded catalog: %w", err)
	}
	return New(products)
}

// MustLoad is Load for program start-up.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// New builds a catalog from products, rejecting duplicate ids and non-positive prices.
func New(products []model.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]model.Product, len(products)),
		byID:     make(map[int]int, len(products)),
	}
	copy(c.products, products)
	for i, p := range c.products {
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %d", p.ID)
		}
		if p.Price <= 0 {
			return nil, fmt.Errorf("product %d: price must be positive", p.ID)
		}
		c.byID[p.ID] = i
	}
	return c, nil
}

// Products returns the catalog in display order.
func (c *Catalog) Products() []model.Product {
	out := make([]model.Product, len(c.products))
	copy(out, c.products)
	return out
}

// ByID looks up a product.
func (c *Catalog) ByID(id int) (model.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Product{}, false
	}
	return c.products[i], true
}

// Filter returns the products of a category. Catalog entries carry no category,
// so anything other than All matches nothing.
func (c *Catalog) Filter(category string) []model.Product {
	if category == "" || strings.EqualFold(category, AllCategories) {
		return c.Products()
	}
	return []model.Product{}
}

// InOrder returns the products whose ids are in ids, in catalog order.
// Unknown ids are skipped.
func (c *Catalog) InOrder(ids []int) []model.Product {
	want := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]model.Product, 0, len(ids))
	for _, p := range c.products {
		if _, ok := want[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

const (
	defaultSearchResults = 10
	maxSearchResults     = 20
)

// Search matches query case-insensitively against name and description,
// narrowed by category, and returns at most limit products in catalog order.
// A limit of zero means ten; limits above twenty are capped.
func (c *Catalog) Search(query, category string, limit int) []model.Product {
	if limit <= 0 {
		limit = defaultSearchResults
	}
	if limit > maxSearchResults {
		limit = maxSearchResults
	}

	queryLower := strings.ToLower(strings.TrimSpace(query))
	matched := []model.Product{}
	for _, p := range c.Filter(category) {
		if strings.Contains(strings.ToLower(p.Name), queryLower) ||
			strings.Contains(strings.ToLower(p.Description), queryLower) {
			matched = append(matched, p)
		}
		if len(matched) == limit {
			break
		}
	}
	return matched
}
