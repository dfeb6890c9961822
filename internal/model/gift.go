package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// GiftType is a catalog entry: a priced voucher in one category.
type GiftType struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Emoji       string          `json:"emoji"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Active      bool            `json:"active"`
	// ImageMime is not served with the catalog, which is loaded once at
	// startup. The image endpoint reads artwork from the database.
	ImageMime string `json:"-"`
}

// Category groups gift types and keys the credit ledger.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

var categories = []Category{
	{ID: "duurzaam", Name: "Duurzaam", Emoji: "🌱"},
	{ID: "gezond-vitaal", Name: "Gezond & Vitaal", Emoji: "🥗"},
	{ID: "reizen-belevenissen", Name: "Reizen & Belevenissen", Emoji: "✈️"},
	{ID: "cultuur-film", Name: "Cultuur & Film", Emoji: "🎬"},
	{ID: "fysiek", Name: "Fysiek", Emoji: "🏋️"},
	{ID: "mode", Name: "Mode", Emoji: "👕"},
	{ID: "beauty-wellness", Name: "Beauty & Wellness", Emoji: "💆"},
	{ID: "kroeg", Name: "Kroeg", Emoji: "🍺"},
	{ID: "huis-tuin", Name: "Huis & Tuin", Emoji: "🏡"},
	{ID: "baby-kind", Name: "Baby & Kind", Emoji: "🧸"},
	{ID: "lezen", Name: "Lezen", Emoji: "📚"},
	{ID: "streaming-gaming", Name: "Streaming & Gaming", Emoji: "🎮"},
	{ID: "eten-drinken", Name: "Eten & Drinken", Emoji: "🍕"},
}

// Categories returns the fixed category set in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ValidCategory reports whether id names a known category.
func ValidCategory(id string) bool {
	for _, c := range categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Inventory is the number of unsent units of a gift type a user holds.
type Inventory struct {
	UserID     int64 `json:"user_id"`
	GiftTypeID int64 `json:"gift_type_id"`
	Quantity   int   `json:"quantity"`

	// Joined fields (not always populated).
	Name     string          `json:"name,omitempty"`
	Emoji    string          `json:"emoji,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category,omitempty"`
}

// CategoryCredit is a user's banked balance ("spaarpot") in one category.
type CategoryCredit struct {
	UserID      int64           `json:"user_id"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	LastUpdated *time.Time      `json:"last_updated,omitempty"`
}

// Purchase records gift units bought into a user's inventory.
type Purchase struct {
	ID          string          `json:"id"`
	UserID      int64           `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemsCount  int             `json:"items_count"`
	CreatedAt   time.Time       `json:"created_at"`
	Lines       []PurchaseLine  `json:"lines"`
}

// PurchaseLine is one gift type within a purchase.
type PurchaseLine struct {
	GiftTypeID int64           `json:"gift_type_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}
