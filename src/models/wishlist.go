package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WishlistEntry is one card a user wants, persisted server-side. This is the
// authoritative record; any browser-local copy is only a cache of it. A user
// can hold at most one entry per card.
type WishlistEntry struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	CardID    int64           `json:"card_id"`
	MaxPrice  decimal.Decimal `json:"max_price"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`

	// Joined card fields for list views.
	CardName string          `json:"card_name,omitempty"`
	SetCode  string          `json:"set_code,omitempty"`
	ImageURI string          `json:"image_uri,omitempty"`
	PricePHP decimal.Decimal `json:"price_php"`
	InStock  bool            `json:"in_stock"`
}
