package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pebbling/spaarpot/internal/model"
)

// AddCredit banks amount into a user's balance for category, creating the
// balance on first credit.
func AddCredit(ctx context.Context, q Querier, userID int64, category string, amount decimal.Decimal, at time.Time) error {
	if err := validateCredit(category, amount); err != nil {
		return err
	}

	raw, current, found, err := readBalance(ctx, q, userID, category)
	if err != nil {
		return err
	}

	if !found {
		_, err = q.ExecContext(ctx,
			`INSERT INTO category_credits (user_id, category, amount, last_updated) VALUES (?, ?, ?, ?)`,
			userID, category, amount.String(), at,
		)
		if err != nil {
			return fmt.Errorf("creating credit: %w", err)
		}
		return nil
	}

	return writeBalance(ctx, q, userID, category, raw, current.Add(amount), at)
}

// SpendCredit takes amount out of a user's balance for category. It fails
// with *model.InsufficientCreditError, leaving the balance untouched, if the
// balance is smaller than amount.
func SpendCredit(ctx context.Context, q Querier, userID int64, category string, amount decimal.Decimal, at time.Time) error {
	if err := validateCredit(category, amount); err != nil {
		return err
	}

	raw, current, found, err := readBalance(ctx, q, userID, category)
	if err != nil {
		return err
	}
	if !found || current.LessThan(amount) {
		return &model.InsufficientCreditError{
			UserID:    userID,
			Category:  category,
			Available: current,
			Requested: amount,
		}
	}

	return writeBalance(ctx, q, userID, category, raw, current.Sub(amount), at)
}

// GetBalance returns a user's balance for category, zero if none was banked.
func GetBalance(ctx context.Context, q Querier, userID int64, category string) (decimal.Decimal, error) {
	_, balance, _, err := readBalance(ctx, q, userID, category)
	return balance, err
}

// ListCredits returns the stored balances of a user, ordered by category.
func ListCredits(ctx context.Context, q Querier, userID int64) ([]model.CategoryCredit, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT user_id, category, amount, last_updated
		 FROM category_credits WHERE user_id = ? ORDER BY category`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing credits: %w", err)
	}
	defer rows.Close()

	var credits []model.CategoryCredit
	for rows.Next() {
		var c model.CategoryCredit
		var updated time.Time
		if err := rows.Scan(&c.UserID, &c.Category, &c.Amount, &updated); err != nil {
			return nil, fmt.Errorf("scanning credit: %w", err)
		}
		c.LastUpdated = &updated
		credits = append(credits, c)
	}
	return credits, rows.Err()
}

func validateCredit(category string, amount decimal.Decimal) error {
	if !model.ValidCategory(category) {
		return &model.ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", category)}
	}
	if !amount.IsPositive() {
		return &model.ValidationError{Field: "amount", Message: "must be positive"}
	}
	return nil
}

// readBalance returns the stored text alongside the parsed value so the
// following write can be guarded on the exact value read.
func readBalance(ctx context.Context, q Querier, userID int64, category string) (string, decimal.Decimal, bool, error) {
	var raw string
	err := q.QueryRowContext(ctx,
		`SELECT amount FROM category_credits WHERE user_id = ? AND category = ?`,
		userID, category,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return "", decimal.Zero, false, nil
	}
	if err != nil {
		return "", decimal.Zero, false, fmt.Errorf("getting credit: %w", err)
	}

	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return "", decimal.Zero, false, fmt.Errorf("parsing credit %q: %w", raw, err)
	}
	return raw, balance, true, nil
}

func writeBalance(ctx context.Context, q Querier, userID int64, category, prev string, next decimal.Decimal, at time.Time) error {
	result, err := q.ExecContext(ctx,
		`UPDATE category_credits SET amount = ?, last_updated = ?
		 WHERE user_id = ? AND category = ? AND amount = ?`,
		next.String(), at, userID, category, prev,
	)
	if err != nil {
		return fmt.Errorf("updating credit: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking credit update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("updating credit for user %d in %s: %w", userID, category, model.ErrConcurrentModification)
	}
	return nil
}
