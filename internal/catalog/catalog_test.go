package catalog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pebbling/spaarpot/internal/db"
	"github.com/pebbling/spaarpot/internal/model"
)

func testCatalog() *Catalog {
	return New([]model.GiftType{
		{ID: 2, Name: "Sokken", Price: decimal.RequireFromString("5.00"), Category: "mode", Active: true},
		{ID: 1, Name: "Biertje", Price: decimal.RequireFromString("3.50"), Category: "kroeg", Active: true},
		{ID: 3, Name: "Oud", Price: decimal.RequireFromString("1.00"), Category: "kroeg", Active: false},
	})
}

func TestGiftType(t *testing.T) {
	c := testCatalog()

	g, err := c.GiftType(1)
	require.NoError(t, err)
	assert.Equal(t, "Biertje", g.Name)

	_, err = c.GiftType(3)
	assert.ErrorIs(t, err, model.ErrNotFound, "inactive types are not offered")

	_, err = c.GiftType(99)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestLookupIncludesInactive(t *testing.T) {
	c := testCatalog()

	g, ok := c.Lookup(3)
	require.True(t, ok)
	assert.False(t, g.Active)

	_, ok = c.Lookup(99)
	assert.False(t, ok)
}

func TestListOrdersByID(t *testing.T) {
	list := testCatalog().List()
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, int64(2), list[1].ID)
}

func TestByCategory(t *testing.T) {
	groups := testCatalog().ByCategory()
	require.Len(t, groups, len(model.Categories()))

	counts := map[string]int{}
	for _, gr := range groups {
		counts[gr.ID] = len(gr.GiftTypes)
		assert.NotNil(t, gr.GiftTypes)
	}
	assert.Equal(t, 1, counts["kroeg"])
	assert.Equal(t, 1, counts["mode"])
	assert.Equal(t, 0, counts["lezen"])
}

func TestLoad(t *testing.T) {
	database := db.NewTestDB(t)

	c, err := Load(context.Background(), database)
	require.NoError(t, err)

	g, err := c.GiftType(22)
	require.NoError(t, err)
	assert.Equal(t, "kroeg", g.Category)
	assert.True(t, g.Price.Equal(decimal.RequireFromString("3.50")))
}

func TestGroupsOmitArtworkMIME(t *testing.T) {
	c := New([]model.GiftType{
		{ID: 1, Name: "Biertje", Price: decimal.RequireFromString("3.50"), Category: "kroeg", Active: true, ImageMime: "image/png"},
	})

	data, err := json.Marshal(c.ByCategory())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "image_mime")
	assert.NotContains(t, string(data), "image/png")
}
