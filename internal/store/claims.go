package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/pebbling/spaarpot/internal/model"
)

const claimColumns = `c.transaction_id, c.gift_type_id, c.sender_id, c.receiver_email, c.quantity,
	c.unit_price, c.message, c.status, c.created_at, c.claimed_at, c.claim_ip,
	gt.name, gt.emoji, u.name`

const claimJoins = `FROM claims c
	JOIN gift_types gt ON gt.id = c.gift_type_id
	JOIN users u ON u.id = c.sender_id`

// InsertClaim stores a new claim in status sent. A claim whose transaction
// id already exists fails with model.ErrDuplicateTransactionID.
func InsertClaim(ctx context.Context, q Querier, c *model.Claim) error {
	var receiver, message sql.NullString
	if c.ReceiverEmail != "" {
		receiver = sql.NullString{String: c.ReceiverEmail, Valid: true}
	}
	if c.Message != "" {
		message = sql.NullString{String: c.Message, Valid: true}
	}

	_, err := q.ExecContext(ctx,
		`INSERT INTO claims (transaction_id, gift_type_id, sender_id, receiver_email, quantity,
		                     unit_price, message, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.TransactionID, c.GiftTypeID, c.SenderID, receiver, c.Quantity,
		c.UnitPrice.String(), message, string(model.ClaimSent), c.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("claim %s: %w", c.TransactionID, model.ErrDuplicateTransactionID)
	}
	if err != nil {
		return fmt.Errorf("inserting claim: %w", err)
	}
	c.HasUnitPrice = true
	return nil
}

// ClaimExists reports whether a claim with the transaction id is stored.
func ClaimExists(ctx context.Context, q Querier, transactionID string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM claims WHERE transaction_id = ?`, transactionID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking claim: %w", err)
	}
	return count > 0, nil
}

// GetClaim returns a claim by transaction id, or nil if none exists.
func GetClaim(ctx context.Context, q Querier, transactionID string) (*model.Claim, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+claimColumns+` `+claimJoins+` WHERE c.transaction_id = ?`, transactionID,
	)
	c, err := scanClaim(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	return c, nil
}

// ResolveClaimUpdate is the terminal write applied by ResolveClaim.
type ResolveClaimUpdate struct {
	Status        model.ClaimStatus
	ClaimedAt     time.Time
	ClaimIP       string
	ReceiverEmail string
}

// ResolveClaim moves an open claim to a terminal status. The write only
// applies while the stored status is still sent (or legacy pending); it
// returns false when another writer resolved the claim first. A receiver
// email already bound to the claim is kept.
func ResolveClaim(ctx context.Context, q Querier, transactionID string, u ResolveClaimUpdate) (bool, error) {
	if !u.Status.Terminal() || u.Status == model.ClaimCancelled {
		return false, fmt.Errorf("resolving claim to %q: not a resolution status", u.Status)
	}

	var ip, receiver sql.NullString
	if u.ClaimIP != "" {
		ip = sql.NullString{String: u.ClaimIP, Valid: true}
	}
	if u.ReceiverEmail != "" {
		receiver = sql.NullString{String: u.ReceiverEmail, Valid: true}
	}

	open := model.OpenStatuses()
	result, err := q.ExecContext(ctx,
		`UPDATE claims
		 SET status = ?, claimed_at = ?, claim_ip = ?, receiver_email = COALESCE(receiver_email, ?)
		 WHERE transaction_id = ? AND status IN (?, ?)`,
		string(u.Status), u.ClaimedAt, ip, receiver, transactionID, open[0], open[1],
	)
	if err != nil {
		return false, fmt.Errorf("resolving claim: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking claim resolution: %w", err)
	}
	return n == 1, nil
}

// DeleteOpenClaim removes a claim that is still awaiting resolution and
// returns false if the claim is gone or no longer open.
func DeleteOpenClaim(ctx context.Context, q Querier, transactionID string) (bool, error) {
	open := model.OpenStatuses()
	result, err := q.ExecContext(ctx,
		`DELETE FROM claims WHERE transaction_id = ? AND status IN (?, ?)`,
		transactionID, open[0], open[1],
	)
	if err != nil {
		return false, fmt.Errorf("deleting claim: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking claim deletion: %w", err)
	}
	return n == 1, nil
}

// ListSentClaims returns the claims a user created, newest first.
func ListSentClaims(ctx context.Context, q Querier, senderID int64) ([]model.Claim, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+claimColumns+` `+claimJoins+`
		 WHERE c.sender_id = ?
		 ORDER BY c.created_at DESC`, senderID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing sent claims: %w", err)
	}
	defer rows.Close()

	return scanClaims(rows)
}

// ListReceivedClaims returns the resolved claims bound to a receiver email,
// most recently claimed first.
func ListReceivedClaims(ctx context.Context, q Querier, receiverEmail string) ([]model.Claim, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+claimColumns+` `+claimJoins+`
		 WHERE c.receiver_email = ? AND c.status IN (?, ?)
		 ORDER BY c.claimed_at DESC`,
		receiverEmail, string(model.ClaimRedeemed), string(model.ClaimSavedToCredit),
	)
	if err != nil {
		return nil, fmt.Errorf("listing received claims: %w", err)
	}
	defer rows.Close()

	return scanClaims(rows)
}

// GetClaimStats counts a user's held units and claim activity.
func GetClaimStats(ctx context.Context, q Querier, userID int64, email string) (*model.ClaimStats, error) {
	s := &model.ClaimStats{}
	err := q.QueryRowContext(ctx,
		`SELECT
		    (SELECT COALESCE(SUM(quantity), 0) FROM inventory WHERE user_id = ?),
		    (SELECT COUNT(*) FROM claims WHERE sender_id = ?),
		    (SELECT COUNT(*) FROM claims WHERE sender_id = ? AND status IN (?, ?)),
		    (SELECT COUNT(*) FROM claims WHERE receiver_email = ? AND status IN (?, ?))`,
		userID, userID,
		userID, string(model.ClaimRedeemed), string(model.ClaimSavedToCredit),
		email, string(model.ClaimRedeemed), string(model.ClaimSavedToCredit),
	).Scan(&s.Held, &s.Sent, &s.Resolved, &s.Received)
	if err != nil {
		return nil, fmt.Errorf("getting claim stats: %w", err)
	}
	return s, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClaim(row scanner) (*model.Claim, error) {
	var c model.Claim
	var receiver, unitPrice, message, ip sql.NullString
	var status string
	if err := row.Scan(&c.TransactionID, &c.GiftTypeID, &c.SenderID, &receiver, &c.Quantity,
		&unitPrice, &message, &status, &c.CreatedAt, &c.ClaimedAt, &ip,
		&c.GiftName, &c.GiftEmoji, &c.SenderName); err != nil {
		return nil, err
	}

	parsed, err := model.ParseClaimStatus(status)
	if err != nil {
		return nil, err
	}
	c.Status = parsed
	c.ReceiverEmail = receiver.String
	c.Message = message.String
	c.ClaimIP = ip.String

	// Claims written before prices were snapshotted carry no unit price.
	if unitPrice.Valid && unitPrice.String != "" {
		price, err := decimal.NewFromString(unitPrice.String)
		if err != nil {
			return nil, fmt.Errorf("parsing unit price %q: %w", unitPrice.String, err)
		}
		c.UnitPrice = price
		c.HasUnitPrice = true
	}
	return &c, nil
}

func scanClaims(rows *sql.Rows) ([]model.Claim, error) {
	var claims []model.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		claims = append(claims, *c)
	}
	return claims, rows.Err()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		code := serr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return true
		}
	}
	// Without extended result codes only the message tells the constraints apart.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
