// Package gifting implements the claim lifecycle and the ledger operations
// coordinated with it. Every state change runs as one atomic unit over the
// claim row, the inventory ledger and the credit ledger.
package gifting

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pebbling/spaarpot/internal/catalog"
	"github.com/pebbling/spaarpot/internal/model"
)

// Directory resolves user identities. Lookups of absent or deleted users
// return nil without an error.
type Directory interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// Service runs gifting operations against a database.
type Service struct {
	db      *sql.DB
	catalog *catalog.Catalog
	users   Directory

	now   func() time.Time
	newID func() string
}

// New creates a service. The catalog is read-only and shared.
func New(db *sql.DB, cat *catalog.Catalog, users Directory) *Service {
	return &Service{
		db:      db,
		catalog: cat,
		users:   users,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// Catalog returns the catalog the service prices gifts against.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *Service) requireUser(ctx context.Context, id int64, field string) (*model.User, error) {
	if id <= 0 {
		return nil, &model.ValidationError{Field: field, Message: "user is required"}
	}
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("looking up user %d: %w", id, err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %d: %w", id, model.ErrNotFound)
	}
	return u, nil
}
