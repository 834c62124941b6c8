// backend/src/processors/interfaces.go
package processors

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/username/manavault/backend/src/models"
)

// Input errors. An unknown grade is a programmer error on the caller's side
// and is never silently defaulted.
var (
	ErrUnknownCondition  = errors.New("unknown condition grade")
	ErrNegativePrice     = errors.New("market price cannot be negative")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrNegativeTolerance = errors.New("tolerance cannot be negative")
	ErrUnknownPayoutMode = errors.New("unknown payout mode")
)

// ValuationProcessor converts a card's market price and condition into its
// adjusted trade value and payout values. All methods are pure and safe for
// concurrent use.
type ValuationProcessor interface {
	Valuate(card models.TradeCard) (models.Valuation, error)
	BasketValue(cards []models.TradeCard) (decimal.Decimal, error)
}

// BuybackProcessor prices a basket the store is buying from a customer,
// paying out in store credit or cash.
type BuybackProcessor interface {
	Process(cards []models.TradeCard, mode models.PayoutMode) (*models.BuybackResult, error)
}

// BalanceProcessor compares the two sides of a peer-to-peer trade.
type BalanceProcessor interface {
	Balance(offering, requesting []models.TradeCard, tolerance decimal.Decimal) (models.TradeBalance, error)
}
