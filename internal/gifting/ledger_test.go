package gifting

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pebbling/spaarpot/internal/model"
	"github.com/pebbling/spaarpot/internal/store"
)

func TestPurchaseCreditsInventory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Purchase(ctx, f.sender.ID, []PurchaseItem{
		{GiftTypeID: 1, Quantity: 2},
		{GiftTypeID: 2, Quantity: 1},
		{GiftTypeID: 1, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, p.ItemsCount)
	assert.Len(t, p.Lines, 2)
	assert.Equal(t, "15.50", p.TotalAmount.StringFixed(2))

	assert.Equal(t, 3, f.quantity(t, f.sender.ID, 1))
	assert.Equal(t, 1, f.quantity(t, f.sender.ID, 2))

	purchases, err := store.ListPurchases(ctx, f.db, f.sender.ID)
	require.NoError(t, err)
	assert.Len(t, purchases, 1)
}

func TestPurchaseRejectsWholeOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Purchase(ctx, f.sender.ID, []PurchaseItem{
		{GiftTypeID: 1, Quantity: 2},
		{GiftTypeID: 3, Quantity: 1},
	})
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, 0, f.quantity(t, f.sender.ID, 1))

	_, err = f.svc.Purchase(ctx, f.sender.ID, nil)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.svc.Purchase(ctx, f.sender.ID, []PurchaseItem{{GiftTypeID: 1, Quantity: 0}})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestSpendCredit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, store.AddCredit(ctx, f.db, f.receiver.ID, "kroeg", decimal.RequireFromString("7.00"), f.svc.now()))

	remaining, err := f.svc.SpendCredit(ctx, f.receiver.ID, "kroeg", decimal.RequireFromString("2.25"))
	require.NoError(t, err)
	assert.Equal(t, "4.75", remaining.StringFixed(2))

	_, err = f.svc.SpendCredit(ctx, f.receiver.ID, "kroeg", decimal.RequireFromString("5"))
	assert.ErrorIs(t, err, model.ErrInsufficientCredit)
	assert.Equal(t, "4.75", f.balance(t, f.receiver.ID, "kroeg").StringFixed(2))

	_, err = f.svc.SpendCredit(ctx, f.receiver.ID, "onbekend", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCreditsZeroFilled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, store.AddCredit(ctx, f.db, f.receiver.ID, "mode", decimal.NewFromInt(5), f.svc.now()))

	credits, err := f.svc.Credits(ctx, f.receiver.ID)
	require.NoError(t, err)
	require.Len(t, credits, len(model.Categories()))

	for _, c := range credits {
		if c.Category == "mode" {
			assert.True(t, c.Amount.Equal(decimal.NewFromInt(5)))
		} else {
			assert.True(t, c.Amount.IsZero(), c.Category)
		}
	}
}

func TestGrantAndInventory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Grant(ctx, f.sender.ID, 2, 4))
	assert.ErrorIs(t, f.svc.Grant(ctx, f.sender.ID, 3, 1), model.ErrNotFound)
	assert.ErrorIs(t, f.svc.Grant(ctx, f.sender.ID, 2, 0), model.ErrValidation)

	items, err := f.svc.Inventory(ctx, f.sender.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)

	empty, err := f.svc.Inventory(ctx, f.receiver.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
