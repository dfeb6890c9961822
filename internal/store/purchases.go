package store

import (
	"context"
	"fmt"

	"github.com/pebbling/spaarpot/internal/model"
)

// InsertPurchase records a purchase and its lines. It does not touch
// inventory; the caller credits inventory in the same atomic unit.
func InsertPurchase(ctx context.Context, q Querier, p *model.Purchase) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO purchases (id, user_id, total_amount, items_count, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.TotalAmount.String(), p.ItemsCount, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("recording purchase: %w", err)
	}

	for _, l := range p.Lines {
		_, err := q.ExecContext(ctx,
			`INSERT INTO purchase_items (purchase_id, gift_type_id, quantity, unit_price) VALUES (?, ?, ?, ?)`,
			p.ID, l.GiftTypeID, l.Quantity, l.UnitPrice.String(),
		)
		if err != nil {
			return fmt.Errorf("recording purchase line: %w", err)
		}
	}
	return nil
}

// ListPurchases returns a user's purchases, newest first, without lines.
func ListPurchases(ctx context.Context, q Querier, userID int64) ([]model.Purchase, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, user_id, total_amount, items_count, created_at
		 FROM purchases WHERE user_id = ? ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing purchases: %w", err)
	}
	defer rows.Close()

	var purchases []model.Purchase
	for rows.Next() {
		var p model.Purchase
		if err := rows.Scan(&p.ID, &p.UserID, &p.TotalAmount, &p.ItemsCount, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}
