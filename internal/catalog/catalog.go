// Package catalog holds the gift type reference data. A Catalog is built
// once at startup and never changes afterwards; administrative catalog edits
// take effect on the next start.
package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/pebbling/spaarpot/internal/model"
	"github.com/pebbling/spaarpot/internal/store"
)

// Catalog is an immutable, concurrency-safe set of gift types.
type Catalog struct {
	byID  map[int64]model.GiftType
	order []int64
}

// New builds a catalog from the given gift types. Later duplicates of an id
// replace earlier ones.
func New(types []model.GiftType) *Catalog {
	c := &Catalog{byID: make(map[int64]model.GiftType, len(types))}
	for _, g := range types {
		if _, ok := c.byID[g.ID]; !ok {
			c.order = append(c.order, g.ID)
		}
		c.byID[g.ID] = g
	}
	sort.Slice(c.order, func(i, j int) bool { return c.order[i] < c.order[j] })
	return c
}

// Load reads every gift type from the database into a new catalog.
func Load(ctx context.Context, q store.Querier) (*Catalog, error) {
	types, err := store.ListGiftTypes(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return New(types), nil
}

// GiftType returns an active gift type. Unknown and inactive ids fail with
// model.ErrNotFound.
func (c *Catalog) GiftType(id int64) (model.GiftType, error) {
	g, ok := c.byID[id]
	if !ok || !g.Active {
		return model.GiftType{}, fmt.Errorf("gift type %d: %w", id, model.ErrNotFound)
	}
	return g, nil
}

// Lookup returns a gift type whether or not it is still active.
func (c *Catalog) Lookup(id int64) (model.GiftType, bool) {
	g, ok := c.byID[id]
	return g, ok
}

// List returns the active gift types ordered by id.
func (c *Catalog) List() []model.GiftType {
	out := make([]model.GiftType, 0, len(c.order))
	for _, id := range c.order {
		if g := c.byID[id]; g.Active {
			out = append(out, g)
		}
	}
	return out
}

// Group is one category with its active gift types.
type Group struct {
	model.Category
	GiftTypes []model.GiftType `json:"gift_types"`
}

// ByCategory returns the active gift types grouped per category, in
// category display order. Categories without gift types are included.
func (c *Catalog) ByCategory() []Group {
	cats := model.Categories()
	groups := make([]Group, len(cats))
	index := make(map[string]int, len(cats))
	for i, cat := range cats {
		groups[i] = Group{Category: cat, GiftTypes: []model.GiftType{}}
		index[cat.ID] = i
	}

	for _, g := range c.List() {
		if i, ok := index[g.Category]; ok {
			groups[i].GiftTypes = append(groups[i].GiftTypes, g)
		}
	}
	return groups
}
