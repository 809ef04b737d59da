// Package catalog exposes the fixed product list offered by the order form.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

const quoteMarker = "quote"

// Price is a fixed unit amount or, for custom products, a quote marker.
type Price struct {
	Amount decimal.Decimal
	Quote  bool
}

func (p *Price) UnmarshalYAML(node *yaml.Node) error {
	raw := strings.TrimSpace(node.Value)
	if strings.EqualFold(raw, quoteMarker) {
		*p = Price{Quote: true}
		return nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("catalog: invalid price %q on line %d: %w", raw, node.Line, err)
	}
	if amount.IsNegative() {
		return fmt.Errorf("catalog: negative price %q on line %d", raw, node.Line)
	}
	*p = Price{Amount: amount}
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	if p.Quote {
		return json.Marshal(quoteMarker)
	}
	return json.Marshal(p.Amount.StringFixed(2))
}

// Product is one catalog entry.
type Product struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Price    Price  `json:"price" yaml:"price"`
	Category string `json:"category" yaml:"category"`
}

// Custom reports whether the product is priced by quote.
func (p Product) Custom() bool {
	return p.Price.Quote
}

// Category groups products for display, preserving catalog order.
type Category struct {
	Name     string    `json:"name"`
	Products []Product `json:"products"`
}

type document struct {
	Products []Product `yaml:"products"`
}

// Catalog is immutable once loaded.
type Catalog struct {
	products []Product
	index    map[string]int
}

// Default returns the catalog bundled with the binary.
func Default() (*Catalog, error) {
	return Load(defaultCatalog)
}

// Load parses a YAML catalog document.
func Load(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	if len(doc.Products) == 0 {
		return nil, errors.New("catalog: no products defined")
	}

	c := &Catalog{
		products: make([]Product, 0, len(doc.Products)),
		index:    make(map[string]int, len(doc.Products)),
	}
	for _, p := range doc.Products {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" || strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("catalog: product %q is missing an id or name", p.Name)
		}
		if _, dup := c.index[p.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate product id %q", p.ID)
		}
		c.index[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

// Products returns every entry in catalog order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Lookup(id string) (Product, bool) {
	i, found := c.index[id]
	if !found {
		return Product{}, false
	}
	return c.products[i], true
}

func (c *Catalog) Contains(id string) bool {
	_, found := c.index[id]
	return found
}

// Normalize orders ids by catalog position, dropping duplicates and ids the
// catalog does not know.
func (c *Catalog) Normalize(ids []string) []string {
	selected := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		selected[id] = struct{}{}
	}
	out := make([]string, 0, len(selected))
	for _, p := range c.products {
		if _, found := selected[p.ID]; found {
			out = append(out, p.ID)
		}
	}
	return out
}

// Filter returns the selected products in catalog order.
func (c *Catalog) Filter(ids []string) []Product {
	normalized := c.Normalize(ids)
	out := make([]Product, 0, len(normalized))
	for _, id := range normalized {
		out = append(out, c.products[c.index[id]])
	}
	return out
}

// HasCustom reports whether any selected id is a quote-priced product.
func (c *Catalog) HasCustom(ids []string) bool {
	for _, id := range ids {
		if p, found := c.Lookup(id); found && p.Custom() {
			return true
		}
	}
	return false
}

// Categories groups the catalog by category in first-seen order.
func (c *Catalog) Categories() []Category {
	var out []Category
	pos := map[string]int{}
	for _, p := range c.products {
		i, found := pos[p.Category]
		if !found {
			i = len(out)
			pos[p.Category] = i
			out = append(out, Category{Name: p.Category})
		}
		out[i].Products = append(out[i].Products, p)
	}
	return out
}
