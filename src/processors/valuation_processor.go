// backend/src/processors/valuation_processor.go
package processors

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/username/manavault/backend/src/models"
)

var oneHundred = decimal.NewFromInt(100)

type valuationProcessorImpl struct {
	rates models.ConditionRates
}

// NewValuationProcessor builds a valuation processor over the given rate
// table. The table is treated as immutable configuration; callers that need
// different rates build a new processor.
func NewValuationProcessor(rates models.ConditionRates) ValuationProcessor {
	return &valuationProcessorImpl{rates: rates}
}

// Valuate computes the full value breakdown for a single card. No rounding
// happens here; rounding, if any, belongs to display and payout boundaries.
func (p *valuationProcessorImpl) Valuate(card models.TradeCard) (models.Valuation, error) {
	if card.MarketPrice.IsNegative() {
		return models.Valuation{}, fmt.Errorf("%w: card %q has price %s", ErrNegativePrice, card.Name, card.MarketPrice)
	}
	quantity := card.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return models.Valuation{}, fmt.Errorf("%w: card %q has quantity %d", ErrInvalidQuantity, card.Name, card.Quantity)
	}
	rate, ok := p.rates[card.Condition]
	if !ok {
		return models.Valuation{}, fmt.Errorf("%w: %q", ErrUnknownCondition, card.Condition)
	}

	marketValue := card.MarketPrice.Mul(decimal.NewFromInt(int64(quantity)))
	adjustedValue := marketValue.Mul(rate.Multiplier)

	return models.Valuation{
		MarketValue:      marketValue,
		Multiplier:       rate.Multiplier,
		AdjustedValue:    adjustedValue,
		StoreCreditValue: adjustedValue.Mul(rate.StoreCreditPercent).Div(oneHundred),
		CashValue:        adjustedValue.Mul(rate.CashPercent).Div(oneHundred),
	}, nil
}

// BasketValue sums the adjusted value of every card in the basket. An empty
// basket is worth zero.
func (p *valuationProcessorImpl) BasketValue(cards []models.TradeCard) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, card := range cards {
		valuation, err := p.Valuate(card)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(valuation.AdjustedValue)
	}
	return total, nil
}
