// backend/src/processors/buyback_processor.go
package processors

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/username/manavault/backend/src/models"
)

type buybackProcessorImpl struct {
	valuation ValuationProcessor
}

func NewBuybackProcessor(valuation ValuationProcessor) BuybackProcessor {
	return &buybackProcessorImpl{valuation: valuation}
}

// Process builds a buyback receipt: one line per card in input order, and a
// total that is the exact sum of the line values. There is no separate
// rounding pass, so the displayed lines always add up to the total.
func (p *buybackProcessorImpl) Process(cards []models.TradeCard, mode models.PayoutMode) (*models.BuybackResult, error) {
	if mode != models.PayoutStoreCredit && mode != models.PayoutCash {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPayoutMode, mode)
	}

	result := &models.BuybackResult{
		Mode:  mode,
		Lines: make([]models.BuybackLine, 0, len(cards)),
		Total: decimal.Zero,
	}
	for _, card := range cards {
		valuation, err := p.valuation.Valuate(card)
		if err != nil {
			return nil, err
		}
		value := valuation.StoreCreditValue
		if mode == models.PayoutCash {
			value = valuation.CashValue
		}
		result.Lines = append(result.Lines, models.BuybackLine{
			Card:          card,
			ConditionName: card.Condition.DisplayName(),
			Value:         value,
		})
		result.Total = result.Total.Add(value)
	}
	return result, nil
}
