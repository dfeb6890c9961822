package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pebbling/spaarpot/internal/model"
)

// CreditInventory adds quantity units of a gift type to a user's inventory,
// creating the entry on first credit.
func CreditInventory(ctx context.Context, q Querier, userID, giftTypeID int64, quantity int) error {
	if quantity <= 0 {
		return &model.ValidationError{Field: "quantity", Message: "must be positive"}
	}

	_, err := q.ExecContext(ctx,
		`INSERT INTO inventory (user_id, gift_type_id, quantity) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, gift_type_id) DO UPDATE SET quantity = quantity + excluded.quantity`,
		userID, giftTypeID, quantity,
	)
	if err != nil {
		return fmt.Errorf("crediting inventory: %w", err)
	}
	return nil
}

// DebitInventory removes quantity units from a user's inventory. It fails
// with *model.InsufficientInventoryError, leaving the entry untouched, if the
// user holds fewer units than requested. Entries that reach zero are removed.
func DebitInventory(ctx context.Context, q Querier, userID, giftTypeID int64, quantity int) error {
	if quantity <= 0 {
		return &model.ValidationError{Field: "quantity", Message: "must be positive"}
	}

	// The quantity guard makes the check and the decrement one statement.
	result, err := q.ExecContext(ctx,
		`UPDATE inventory SET quantity = quantity - ?
		 WHERE user_id = ? AND gift_type_id = ? AND quantity >= ?`,
		quantity, userID, giftTypeID, quantity,
	)
	if err != nil {
		return fmt.Errorf("debiting inventory: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking inventory debit: %w", err)
	}
	if n == 0 {
		available, err := GetQuantity(ctx, q, userID, giftTypeID)
		if err != nil {
			return err
		}
		return &model.InsufficientInventoryError{
			UserID:     userID,
			GiftTypeID: giftTypeID,
			Available:  available,
			Requested:  quantity,
		}
	}

	_, err = q.ExecContext(ctx,
		`DELETE FROM inventory WHERE user_id = ? AND gift_type_id = ? AND quantity = 0`,
		userID, giftTypeID,
	)
	if err != nil {
		return fmt.Errorf("removing empty inventory: %w", err)
	}
	return nil
}

// GetQuantity returns how many units of a gift type a user holds.
func GetQuantity(ctx context.Context, q Querier, userID, giftTypeID int64) (int, error) {
	var quantity int
	err := q.QueryRowContext(ctx,
		`SELECT quantity FROM inventory WHERE user_id = ? AND gift_type_id = ?`,
		userID, giftTypeID,
	).Scan(&quantity)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("getting inventory quantity: %w", err)
	}
	return quantity, nil
}

// ListInventory returns a user's non-empty inventory with gift details.
func ListInventory(ctx context.Context, q Querier, userID int64) ([]model.Inventory, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT inv.user_id, inv.gift_type_id, inv.quantity,
		        gt.name, gt.emoji, gt.price, gt.category
		 FROM inventory inv
		 JOIN gift_types gt ON gt.id = inv.gift_type_id
		 WHERE inv.user_id = ? AND inv.quantity > 0
		 ORDER BY gt.category, gt.name`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}
	defer rows.Close()

	var items []model.Inventory
	for rows.Next() {
		var inv model.Inventory
		if err := rows.Scan(&inv.UserID, &inv.GiftTypeID, &inv.Quantity,
			&inv.Name, &inv.Emoji, &inv.Price, &inv.Category); err != nil {
			return nil, fmt.Errorf("scanning inventory: %w", err)
		}
		items = append(items, inv)
	}
	return items, rows.Err()
}
