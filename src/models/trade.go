package models

import "github.com/shopspring/decimal"

// TradeCard is one card as it enters a valuation: the market price, the
// physical condition and how many copies. It is owned transiently by the
// computation that needs it and never mutated; every valuation produces a
// fresh result record.
type TradeCard struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	MarketPrice decimal.Decimal `json:"market_price"`
	Condition   ConditionGrade  `json:"condition"`
	Quantity    int             `json:"quantity"`
}

// Valuation is the derived value breakdown for a single TradeCard. It is
// computed on demand and never stored.
type Valuation struct {
	MarketValue      decimal.Decimal `json:"market_value"`
	Multiplier       decimal.Decimal `json:"condition_multiplier"`
	AdjustedValue    decimal.Decimal `json:"adjusted_value"`
	StoreCreditValue decimal.Decimal `json:"store_credit_value"`
	CashValue        decimal.Decimal `json:"cash_value"`
}

// PayoutMode selects which buyback payout a customer receives.
type PayoutMode string

const (
	PayoutStoreCredit PayoutMode = "STORE_CREDIT"
	PayoutCash        PayoutMode = "CASH"
)

// BuybackLine is the per-card receipt entry of a store buyback quote.
// ConditionName is the human-readable grade for receipt display.
type BuybackLine struct {
	Card          TradeCard       `json:"card"`
	ConditionName string          `json:"condition_name"`
	Value         decimal.Decimal `json:"value"`
}

// BuybackResult is a full buyback quote: the per-card breakdown in input
// order, and a total that is the exact sum of the line values.
type BuybackResult struct {
	Mode  PayoutMode      `json:"payout_mode"`
	Lines []BuybackLine   `json:"breakdown"`
	Total decimal.Decimal `json:"total"`
}

// TradeBalance compares the two sides of a proposed peer-to-peer trade.
// Difference is signed (requesting minus offering); a positive difference is
// owed by the requesting party as a cash top-up, a negative one is reported
// as informational surplus and never collected.
type TradeBalance struct {
	OfferingValue     decimal.Decimal `json:"offering_value"`
	RequestingValue   decimal.Decimal `json:"requesting_value"`
	Difference        decimal.Decimal `json:"difference"`
	IsBalanced        bool            `json:"is_balanced"`
	CashTopupRequired decimal.Decimal `json:"cash_topup_required"`
}
