// backend/src/processors/balance_processor.go
package processors

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/username/manavault/backend/src/models"
)

type balanceProcessorImpl struct {
	valuation ValuationProcessor
}

func NewBalanceProcessor(valuation ValuationProcessor) BalanceProcessor {
	return &balanceProcessorImpl{valuation: valuation}
}

// Balance values both baskets in full on every call. Baskets are tens of
// cards at most, so recomputing is cheaper than keeping incremental state in
// sync with basket edits.
func (p *balanceProcessorImpl) Balance(offering, requesting []models.TradeCard, tolerance decimal.Decimal) (models.TradeBalance, error) {
	if tolerance.IsNegative() {
		return models.TradeBalance{}, fmt.Errorf("%w: %s", ErrNegativeTolerance, tolerance)
	}

	offeringValue, err := p.valuation.BasketValue(offering)
	if err != nil {
		return models.TradeBalance{}, fmt.Errorf("valuing offering basket: %w", err)
	}
	requestingValue, err := p.valuation.BasketValue(requesting)
	if err != nil {
		return models.TradeBalance{}, fmt.Errorf("valuing requesting basket: %w", err)
	}

	difference := requestingValue.Sub(offeringValue)
	cashTopup := decimal.Zero
	if difference.IsPositive() {
		cashTopup = difference
	}

	return models.TradeBalance{
		OfferingValue:     offeringValue,
		RequestingValue:   requestingValue,
		Difference:        difference,
		IsBalanced:        difference.Abs().LessThanOrEqual(tolerance),
		CashTopupRequired: cashTopup,
	}, nil
}

// CheckVerifiedTraderStatus reports whether a trader qualifies for the
// verified badge. Both thresholds are boundary-inclusive.
func CheckVerifiedTraderStatus(successfulTrades int, averageRating float64, minTrades int, minRating float64) bool {
	return successfulTrades >= minTrades && averageRating >= minRating
}
