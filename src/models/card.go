package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Card is the catalog entry for a printing, keyed by its Scryfall ID for
// import deduplication. Prices are the current market reference, not what the
// store charges (see InventoryItem.SellPrice).
type Card struct {
	ID              int64           `json:"id"`
	ScryfallID      string          `json:"scryfall_id"`
	Name            string          `json:"name"`
	SetCode         string          `json:"set_code"`
	SetName         string          `json:"set_name,omitempty"`
	CollectorNumber string          `json:"collector_number,omitempty"`
	Rarity          string          `json:"rarity,omitempty"`
	TypeLine        string          `json:"type_line,omitempty"`
	ImageURI        string          `json:"image_uri,omitempty"`
	PriceUSD        decimal.Decimal `json:"price_usd"`
	PricePHP        decimal.Decimal `json:"price_php"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// InventoryItem is stocked copies of a card in one condition, language and
// finish. Foil and non-foil copies are separate rows with separate prices.
type InventoryItem struct {
	ID        int64           `json:"id"`
	CardID    int64           `json:"card_id"`
	Condition ConditionGrade  `json:"condition"`
	Language  string          `json:"language"`
	Foil      bool            `json:"foil"`
	Quantity  int             `json:"quantity"`
	CostPrice decimal.Decimal `json:"cost_price"`
	SellPrice decimal.Decimal `json:"sell_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// InventoryListing is the browse view: an inventory row joined with its card.
type InventoryListing struct {
	ID        int64           `json:"id"`
	CardID    int64           `json:"card_id"`
	Name      string          `json:"name"`
	SetCode   string          `json:"set_code"`
	SetName   string          `json:"set_name,omitempty"`
	Rarity    string          `json:"rarity,omitempty"`
	ImageURI  string          `json:"image_uri,omitempty"`
	Condition ConditionGrade  `json:"condition"`
	Language  string          `json:"language"`
	Foil      bool            `json:"foil"`
	Quantity  int             `json:"quantity"`
	SellPrice decimal.Decimal `json:"sell_price"`
}
