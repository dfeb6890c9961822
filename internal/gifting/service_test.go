package gifting

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pebbling/spaarpot/internal/catalog"
	"github.com/pebbling/spaarpot/internal/db"
	"github.com/pebbling/spaarpot/internal/model"
	"github.com/pebbling/spaarpot/internal/store"
)

type fixture struct {
	db       *sql.DB
	svc      *Service
	sender   *model.User
	receiver *model.User
}

// testGiftTypes overwrites the seeded ids 1 to 3 so amounts are easy to read.
func testGiftTypes() []model.GiftType {
	return []model.GiftType{
		{ID: 1, Name: "Biertje", Emoji: "🍺", Price: decimal.RequireFromString("3.50"), Category: "kroeg", Active: true},
		{ID: 2, Name: "Sokken", Emoji: "🧦", Price: decimal.RequireFromString("5.00"), Category: "mode", Active: true},
		{ID: 3, Name: "Uit assortiment", Emoji: "📦", Price: decimal.RequireFromString("2.00"), Category: "lezen", Active: false},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, db.NewTestDB(t))
}

func newFixtureOn(t *testing.T, database *sql.DB) *fixture {
	t.Helper()
	ctx := context.Background()

	sender, err := store.CreateUser(ctx, database, "sender@example.nl", "Sanne", "hash", model.RoleUser)
	require.NoError(t, err)
	receiver, err := store.CreateUser(ctx, database, "receiver@example.nl", "Ruben", "hash", model.RoleUser)
	require.NoError(t, err)

	svc := New(database, nil, store.UserDirectory{DB: database})
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	f := &fixture{db: database, svc: svc, sender: sender, receiver: receiver}
	for _, g := range testGiftTypes() {
		f.writeGiftType(t, g)
	}
	f.reloadCatalog(t)
	return f
}

// writeGiftType stores g over the seeded row with the same id.
func (f *fixture) writeGiftType(t *testing.T, g model.GiftType) {
	t.Helper()
	_, err := f.db.Exec(
		`UPDATE gift_types SET name = ?, emoji = ?, price = ?, category = ?, active = ? WHERE id = ?`,
		g.Name, g.Emoji, g.Price.String(), g.Category, g.Active, g.ID,
	)
	require.NoError(t, err)
}

// reloadCatalog rebuilds the service catalog from the gift_types table, as a
// restart would.
func (f *fixture) reloadCatalog(t *testing.T) {
	t.Helper()
	cat, err := catalog.Load(context.Background(), f.db)
	require.NoError(t, err)
	f.svc.catalog = cat
}

// reprice changes a gift type's price and reloads the catalog.
func (f *fixture) reprice(t *testing.T, id int64, price string) {
	t.Helper()
	gift, ok := f.svc.catalog.Lookup(id)
	require.True(t, ok)
	gift.Price = decimal.RequireFromString(price)
	f.writeGiftType(t, gift)
	f.reloadCatalog(t)
}

func (f *fixture) stock(t *testing.T, userID, giftTypeID int64, qty int) {
	t.Helper()
	require.NoError(t, store.CreditInventory(context.Background(), f.db, userID, giftTypeID, qty))
}

func (f *fixture) quantity(t *testing.T, userID, giftTypeID int64) int {
	t.Helper()
	qty, err := store.GetQuantity(context.Background(), f.db, userID, giftTypeID)
	require.NoError(t, err)
	return qty
}

func (f *fixture) balance(t *testing.T, userID int64, category string) decimal.Decimal {
	t.Helper()
	b, err := store.GetBalance(context.Background(), f.db, userID, category)
	require.NoError(t, err)
	return b
}
