package gifting

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pebbling/spaarpot/internal/model"
	"github.com/pebbling/spaarpot/internal/store"
)

// CreateRequest describes a gift to send. TransactionID may be empty, in
// which case one is generated; callers that retry must supply their own.
type CreateRequest struct {
	TransactionID string
	SenderID      int64
	GiftTypeID    int64
	Quantity      int
	ReceiverEmail string
	Message       string
}

// Create debits the sender's inventory and records a claim in status sent.
// A retried create with a known transaction id fails with
// model.ErrDuplicateTransactionID and debits nothing.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*model.Claim, error) {
	if req.Quantity <= 0 {
		return nil, &model.ValidationError{Field: "quantity", Message: "must be positive"}
	}
	gift, err := s.catalog.GiftType(req.GiftTypeID)
	if err != nil {
		return nil, err
	}
	sender, err := s.requireUser(ctx, req.SenderID, "sender_id")
	if err != nil {
		return nil, err
	}

	var receiver string
	if strings.TrimSpace(req.ReceiverEmail) != "" {
		receiver, err = model.NormalizeEmail(req.ReceiverEmail)
		if err != nil {
			return nil, err
		}
	}

	id := strings.TrimSpace(req.TransactionID)
	if id == "" {
		id = s.newID()
	}

	c := &model.Claim{
		TransactionID: id,
		GiftTypeID:    gift.ID,
		SenderID:      sender.ID,
		ReceiverEmail: receiver,
		Quantity:      req.Quantity,
		UnitPrice:     gift.Price,
		Message:       strings.TrimSpace(req.Message),
		Status:        model.ClaimSent,
		CreatedAt:     s.now(),
		GiftName:      gift.Name,
		GiftEmoji:     gift.Emoji,
		SenderName:    sender.Name,
	}

	err = store.RunAtomic(ctx, s.db, func(tx *sql.Tx) error {
		// Checked before the debit so a retry fails without touching inventory.
		exists, err := store.ClaimExists(ctx, tx, id)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("claim %s: %w", id, model.ErrDuplicateTransactionID)
		}

		if err := store.DebitInventory(ctx, tx, sender.ID, gift.ID, req.Quantity); err != nil {
			return err
		}
		return store.InsertClaim(ctx, tx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Cancel withdraws an unresolved claim. The claim row is removed and the
// sender gets back exactly the quantity that was debited at create. The
// returned claim carries status cancelled.
func (s *Service) Cancel(ctx context.Context, transactionID string) (*model.Claim, error) {
	var cancelled *model.Claim
	err := store.RunAtomic(ctx, s.db, func(tx *sql.Tx) error {
		c, err := store.GetClaim(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("cancelling claim %s: %w: %w", transactionID, model.ErrInvalidState, model.ErrNotFound)
		}
		if !c.Status.CanTransition(model.ClaimCancelled) {
			return &model.StateError{TransactionID: transactionID, Status: c.Status, Op: "cancel"}
		}

		deleted, err := store.DeleteOpenClaim(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if !deleted {
			return &model.StateError{TransactionID: transactionID, Status: c.Status, Op: "cancel"}
		}

		if err := store.CreditInventory(ctx, tx, c.SenderID, c.GiftTypeID, c.Quantity); err != nil {
			return err
		}

		c.Status = model.ClaimCancelled
		cancelled = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// Action is the receiver's choice when resolving a claim.
type Action int

const (
	// Redeem spends the gift at a partner right away.
	Redeem Action = iota + 1
	// SaveToCredit banks the gift's value into the receiver's category credit.
	SaveToCredit
)

func (a Action) String() string {
	switch a {
	case Redeem:
		return "redeem"
	case SaveToCredit:
		return "save_to_credit"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ParseAction parses the wire name of an action.
func ParseAction(s string) (Action, error) {
	switch s {
	case "redeem":
		return Redeem, nil
	case "save", "save_to_credit":
		return SaveToCredit, nil
	}
	return 0, &model.ValidationError{Field: "action", Message: fmt.Sprintf("unknown action %q", s)}
}

// Decision is how a claim gets resolved. ReceiverID is required when saving
// to credit. For redemption it is optional and only binds the receiver.
type Decision struct {
	Action     Action
	ReceiverID int64
	ClaimIP    string
}

// RedeemDecision returns a decision to redeem a claim.
func RedeemDecision() Decision {
	return Decision{Action: Redeem}
}

// SaveToCreditDecision returns a decision to bank a claim's value for the
// given receiver.
func SaveToCreditDecision(receiverID int64) Decision {
	return Decision{Action: SaveToCredit, ReceiverID: receiverID}
}

func (d Decision) status() model.ClaimStatus {
	if d.Action == SaveToCredit {
		return model.ClaimSavedToCredit
	}
	return model.ClaimRedeemed
}

// ResolvedClaim is the outcome of a resolution, handed to receipt rendering
// and partner settlement.
type ResolvedClaim struct {
	Claim       model.Claim     `json:"claim"`
	GiftType    model.GiftType  `json:"gift_type"`
	CreditAdded decimal.Decimal `json:"credit_added"`
	Category    string          `json:"category"`
}

// Resolve moves a claim from sent to redeemed or saved_to_credit. The status
// check and write are a single compare-and-set inside the atomic unit, so of
// several concurrent resolutions exactly one succeeds and the rest fail with
// model.ErrAlreadyResolved.
func (s *Service) Resolve(ctx context.Context, transactionID string, d Decision) (*ResolvedClaim, error) {
	if d.Action != Redeem && d.Action != SaveToCredit {
		return nil, &model.ValidationError{Field: "action", Message: "must be redeem or save_to_credit"}
	}

	var receiver *model.User
	if d.Action == SaveToCredit || d.ReceiverID != 0 {
		u, err := s.requireUser(ctx, d.ReceiverID, "receiver_id")
		if err != nil {
			return nil, err
		}
		receiver = u
	}

	var resolved *ResolvedClaim
	err := store.RunAtomic(ctx, s.db, func(tx *sql.Tx) error {
		c, err := store.GetClaim(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("claim %s: %w", transactionID, model.ErrNotFound)
		}
		if !c.Status.CanTransition(d.status()) {
			return fmt.Errorf("claim %s is %s: %w", transactionID, c.Status, model.ErrAlreadyResolved)
		}
		if receiver != nil && c.ReceiverEmail != "" && c.ReceiverEmail != receiver.Email {
			return &model.ValidationError{Field: "receiver", Message: "claim is addressed to another receiver"}
		}

		// Inactive types still resolve: the units were reserved when sent.
		gift, ok := s.catalog.Lookup(c.GiftTypeID)
		if !ok {
			return fmt.Errorf("gift type %d: %w", c.GiftTypeID, model.ErrNotFound)
		}
		if !c.HasUnitPrice {
			c.UnitPrice = gift.Price
		}

		now := s.now()
		update := store.ResolveClaimUpdate{
			Status:    d.status(),
			ClaimedAt: now,
			ClaimIP:   d.ClaimIP,
		}
		if receiver != nil {
			update.ReceiverEmail = receiver.Email
		}

		won, err := store.ResolveClaim(ctx, tx, transactionID, update)
		if err != nil {
			return err
		}
		if !won {
			return fmt.Errorf("claim %s: %w", transactionID, model.ErrAlreadyResolved)
		}

		credit := decimal.Zero
		if d.Action == SaveToCredit {
			credit = c.Value()
			if credit.IsPositive() {
				if err := store.AddCredit(ctx, tx, receiver.ID, gift.Category, credit, now); err != nil {
					return err
				}
			}
		}

		c.Status = update.Status
		c.ClaimedAt = &now
		c.ClaimIP = d.ClaimIP
		if c.ReceiverEmail == "" {
			c.ReceiverEmail = update.ReceiverEmail
		}
		resolved = &ResolvedClaim{
			Claim:       *c,
			GiftType:    gift,
			CreditAdded: credit,
			Category:    gift.Category,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// Claim returns a claim by transaction id.
func (s *Service) Claim(ctx context.Context, transactionID string) (*model.Claim, error) {
	c, err := store.GetClaim(ctx, s.db, transactionID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("claim %s: %w", transactionID, model.ErrNotFound)
	}
	return c, nil
}

// Status returns the canonical status of a claim.
func (s *Service) Status(ctx context.Context, transactionID string) (model.ClaimStatus, error) {
	c, err := s.Claim(ctx, transactionID)
	if err != nil {
		return "", err
	}
	return c.Status, nil
}

// Sent lists the claims a user created.
func (s *Service) Sent(ctx context.Context, senderID int64) ([]model.Claim, error) {
	return store.ListSentClaims(ctx, s.db, senderID)
}

// Received lists the resolved claims bound to a receiver email.
func (s *Service) Received(ctx context.Context, receiverEmail string) ([]model.Claim, error) {
	email, err := model.NormalizeEmail(receiverEmail)
	if err != nil {
		return nil, err
	}
	return store.ListReceivedClaims(ctx, s.db, email)
}

// Stats summarizes a user's gifting activity.
func (s *Service) Stats(ctx context.Context, userID int64) (*model.ClaimStats, error) {
	u, err := s.requireUser(ctx, userID, "user_id")
	if err != nil {
		return nil, err
	}
	return store.GetClaimStats(ctx, s.db, u.ID, u.Email)
}
