package gifting

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pebbling/spaarpot/internal/model"
	"github.com/pebbling/spaarpot/internal/store"
)

// PurchaseItem is one requested line of a purchase.
type PurchaseItem struct {
	GiftTypeID int64 `json:"gift_type_id"`
	Quantity   int   `json:"quantity"`
}

// Purchase credits the bought units into the user's inventory and records
// the purchase at current catalog prices. Lines for the same gift type are
// merged. Payment is settled elsewhere.
func (s *Service) Purchase(ctx context.Context, userID int64, items []PurchaseItem) (*model.Purchase, error) {
	if len(items) == 0 {
		return nil, &model.ValidationError{Field: "items", Message: "at least one item is required"}
	}
	user, err := s.requireUser(ctx, userID, "user_id")
	if err != nil {
		return nil, err
	}

	p := &model.Purchase{
		ID:          s.newID(),
		UserID:      user.ID,
		TotalAmount: decimal.Zero,
		CreatedAt:   s.now(),
	}
	index := make(map[int64]int)
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, &model.ValidationError{Field: "quantity", Message: "must be positive"}
		}
		gift, err := s.catalog.GiftType(it.GiftTypeID)
		if err != nil {
			return nil, err
		}

		if i, ok := index[gift.ID]; ok {
			p.Lines[i].Quantity += it.Quantity
		} else {
			index[gift.ID] = len(p.Lines)
			p.Lines = append(p.Lines, model.PurchaseLine{GiftTypeID: gift.ID, UnitPrice: gift.Price, Quantity: it.Quantity})
		}
		p.ItemsCount += it.Quantity
		p.TotalAmount = p.TotalAmount.Add(gift.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	err = store.RunAtomic(ctx, s.db, func(tx *sql.Tx) error {
		for _, l := range p.Lines {
			if err := store.CreditInventory(ctx, tx, user.ID, l.GiftTypeID, l.Quantity); err != nil {
				return err
			}
		}
		return store.InsertPurchase(ctx, tx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Grant adds units of an active gift type to a user's inventory without a
// purchase record. Used for administrative stocking.
func (s *Service) Grant(ctx context.Context, userID, giftTypeID int64, quantity int) error {
	gift, err := s.catalog.GiftType(giftTypeID)
	if err != nil {
		return err
	}
	user, err := s.requireUser(ctx, userID, "user_id")
	if err != nil {
		return err
	}
	return store.CreditInventory(ctx, s.db, user.ID, gift.ID, quantity)
}

// SpendCredit takes amount out of the user's credit in category and returns
// the remaining balance.
func (s *Service) SpendCredit(ctx context.Context, userID int64, category string, amount decimal.Decimal) (decimal.Decimal, error) {
	if _, err := s.requireUser(ctx, userID, "user_id"); err != nil {
		return decimal.Zero, err
	}

	var remaining decimal.Decimal
	err := store.RunAtomic(ctx, s.db, func(tx *sql.Tx) error {
		if err := store.SpendCredit(ctx, tx, userID, category, amount, s.now()); err != nil {
			return err
		}
		balance, err := store.GetBalance(ctx, tx, userID, category)
		if err != nil {
			return err
		}
		remaining = balance
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return remaining, nil
}

// Purchases lists a user's recorded purchases, newest first.
func (s *Service) Purchases(ctx context.Context, userID int64) ([]model.Purchase, error) {
	purchases, err := store.ListPurchases(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if purchases == nil {
		purchases = []model.Purchase{}
	}
	return purchases, nil
}

// Inventory lists the units a user holds.
func (s *Service) Inventory(ctx context.Context, userID int64) ([]model.Inventory, error) {
	items, err := store.ListInventory(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Inventory{}
	}
	return items, nil
}

// Credits returns the user's balance in every category, in display order.
// Categories never credited report zero.
func (s *Service) Credits(ctx context.Context, userID int64) ([]model.CategoryCredit, error) {
	stored, err := store.ListCredits(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("getting credits: %w", err)
	}
	byCategory := make(map[string]model.CategoryCredit, len(stored))
	for _, c := range stored {
		byCategory[c.Category] = c
	}

	cats := model.Categories()
	out := make([]model.CategoryCredit, 0, len(cats))
	for _, cat := range cats {
		c, ok := byCategory[cat.ID]
		if !ok {
			c = model.CategoryCredit{UserID: userID, Category: cat.ID, Amount: decimal.Zero}
		}
		out = append(out, c)
	}
	return out, nil
}
