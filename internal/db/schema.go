package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// Money columns are TEXT holding decimal strings so SQLite never coerces
// them to floating point.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    email         TEXT NOT NULL,
    name          TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_active
    ON users(email) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS gift_types (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    emoji       TEXT NOT NULL,
    description TEXT,
    price       TEXT NOT NULL,
    category    TEXT NOT NULL,
    active      INTEGER NOT NULL DEFAULT 1,
    image       BLOB,
    image_mime  TEXT
);

CREATE TABLE IF NOT EXISTS inventory (
    user_id      INTEGER NOT NULL REFERENCES users(id),
    gift_type_id INTEGER NOT NULL REFERENCES gift_types(id),
    quantity     INTEGER NOT NULL CHECK (quantity >= 0),
    PRIMARY KEY (user_id, gift_type_id)
);

CREATE TABLE IF NOT EXISTS category_credits (
    user_id      INTEGER NOT NULL REFERENCES users(id),
    category     TEXT NOT NULL,
    amount       TEXT NOT NULL,
    last_updated DATETIME NOT NULL,
    PRIMARY KEY (user_id, category)
);

CREATE TABLE IF NOT EXISTS claims (
    transaction_id TEXT PRIMARY KEY,
    gift_type_id   INTEGER NOT NULL REFERENCES gift_types(id),
    sender_id      INTEGER NOT NULL REFERENCES users(id),
    receiver_email TEXT,
    quantity       INTEGER NOT NULL CHECK (quantity > 0),
    unit_price     TEXT,
    message        TEXT,
    status         TEXT NOT NULL DEFAULT 'sent'
                   CHECK (status IN ('sent', 'pending', 'redeemed', 'saved_to_credit')),
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    claimed_at     DATETIME,
    claim_ip       TEXT
);

CREATE TABLE IF NOT EXISTS purchases (
    id           TEXT PRIMARY KEY,
    user_id      INTEGER NOT NULL REFERENCES users(id),
    total_amount TEXT NOT NULL,
    items_count  INTEGER NOT NULL,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS purchase_items (
    purchase_id  TEXT NOT NULL REFERENCES purchases(id),
    gift_type_id INTEGER NOT NULL REFERENCES gift_types(id),
    quantity     INTEGER NOT NULL CHECK (quantity > 0),
    unit_price   TEXT NOT NULL,
    PRIMARY KEY (purchase_id, gift_type_id)
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
