package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1-4: Fold the first-generation categories into the current set.
	`UPDATE gift_types SET category = 'kroeg' WHERE category = 'drinks'`,
	`UPDATE gift_types SET category = 'eten-drinken' WHERE category = 'food'`,
	`UPDATE gift_types SET category = 'cultuur-film' WHERE category = 'entertainment'`,
	`UPDATE gift_types SET category = 'mode' WHERE category = 'lifestyle'`,

	// Migration 5-7: Lookup indexes for history and credit listings.
	`CREATE INDEX IF NOT EXISTS idx_claims_sender ON claims(sender_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_claims_receiver ON claims(receiver_email, claimed_at)`,
	`CREATE INDEX IF NOT EXISTS idx_gift_types_category ON gift_types(category)`,
}

// Migrate ensures the schema and runs the idempotent migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
