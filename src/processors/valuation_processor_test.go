package processors

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/manavault/backend/src/models"
)

func newTestValuation(t *testing.T) ValuationProcessor {
	t.Helper()
	return NewValuationProcessor(models.DefaultConditionRates())
}

func card(price float64, grade models.ConditionGrade, qty int) models.TradeCard {
	return models.TradeCard{
		Name:        "Test Card",
		MarketPrice: decimal.NewFromFloat(price),
		Condition:   grade,
		Quantity:    qty,
	}
}

func TestValuate_ReferenceRatios(t *testing.T) {
	p := newTestValuation(t)

	tests := []struct {
		grade       models.ConditionGrade
		adjusted    string
		storeCredit string
		cash        string
	}{
		{models.ConditionNearMint, "1000", "700", "600"},
		{models.ConditionLightlyPlayed, "900", "540", "450"},
		{models.ConditionModeratelyPlayed, "750", "337.5", "262.5"},
		{models.ConditionHeavilyPlayed, "500", "150", "125"},
		{models.ConditionDamaged, "250", "37.5", "25"},
	}

	for _, tc := range tests {
		t.Run(string(tc.grade), func(t *testing.T) {
			v, err := p.Valuate(card(1000, tc.grade, 1))
			require.NoError(t, err)

			assert.True(t, v.MarketValue.Equal(decimal.NewFromInt(1000)), "market value: %s", v.MarketValue)
			assert.True(t, v.AdjustedValue.Equal(decimal.RequireFromString(tc.adjusted)), "adjusted: %s", v.AdjustedValue)
			assert.True(t, v.StoreCreditValue.Equal(decimal.RequireFromString(tc.storeCredit)), "store credit: %s", v.StoreCreditValue)
			assert.True(t, v.CashValue.Equal(decimal.RequireFromString(tc.cash)), "cash: %s", v.CashValue)

			// Both payout percentages are at most 100, so neither payout can
			// exceed the adjusted value.
			assert.True(t, v.StoreCreditValue.LessThanOrEqual(v.AdjustedValue))
			assert.True(t, v.CashValue.LessThanOrEqual(v.AdjustedValue))
		})
	}
}

func TestValuate_QuantityMultiplies(t *testing.T) {
	p := newTestValuation(t)

	v, err := p.Valuate(card(150, models.ConditionLightlyPlayed, 4))
	require.NoError(t, err)

	assert.True(t, v.MarketValue.Equal(decimal.NewFromInt(600)))
	assert.True(t, v.AdjustedValue.Equal(decimal.NewFromInt(540)))
}

func TestValuate_ZeroQuantityDefaultsToOne(t *testing.T) {
	p := newTestValuation(t)

	v, err := p.Valuate(card(100, models.ConditionNearMint, 0))
	require.NoError(t, err)
	assert.True(t, v.MarketValue.Equal(decimal.NewFromInt(100)))
}

func TestValuate_Deterministic(t *testing.T) {
	p := newTestValuation(t)
	c := card(123.45, models.ConditionModeratelyPlayed, 3)

	first, err := p.Valuate(c)
	require.NoError(t, err)
	second, err := p.Valuate(c)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestValuate_InvalidInput(t *testing.T) {
	p := newTestValuation(t)

	_, err := p.Valuate(card(100, "XX", 1))
	assert.ErrorIs(t, err, ErrUnknownCondition)

	_, err = p.Valuate(card(-1, models.ConditionNearMint, 1))
	assert.ErrorIs(t, err, ErrNegativePrice)

	_, err = p.Valuate(card(100, models.ConditionNearMint, -2))
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestBasketValue_EmptyIsZero(t *testing.T) {
	p := newTestValuation(t)

	total, err := p.BasketValue(nil)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestBasketValue_Additive(t *testing.T) {
	p := newTestValuation(t)

	a := []models.TradeCard{card(1000, models.ConditionNearMint, 1), card(200, models.ConditionDamaged, 2)}
	b := []models.TradeCard{card(80, models.ConditionHeavilyPlayed, 1)}

	totalA, err := p.BasketValue(a)
	require.NoError(t, err)
	totalB, err := p.BasketValue(b)
	require.NoError(t, err)
	combined, err := p.BasketValue(append(append([]models.TradeCard{}, a...), b...))
	require.NoError(t, err)

	assert.True(t, combined.Equal(totalA.Add(totalB)), "got %s, want %s", combined, totalA.Add(totalB))
}

func TestBuyback_LineOrderAndExactTotal(t *testing.T) {
	p := NewBuybackProcessor(newTestValuation(t))

	cards := []models.TradeCard{
		card(1000, models.ConditionNearMint, 1),
		card(333.33, models.ConditionModeratelyPlayed, 1),
		card(50, models.ConditionDamaged, 3),
	}

	result, err := p.Process(cards, models.PayoutStoreCredit)
	require.NoError(t, err)
	require.Len(t, result.Lines, 3)

	sum := decimal.Zero
	for i, line := range result.Lines {
		assert.Equal(t, cards[i].Name, line.Card.Name)
		assert.True(t, cards[i].MarketPrice.Equal(line.Card.MarketPrice))
		assert.Equal(t, cards[i].Condition.DisplayName(), line.ConditionName)
		sum = sum.Add(line.Value)
	}
	assert.True(t, result.Total.Equal(sum), "total %s must equal line sum %s", result.Total, sum)
	assert.Equal(t, "Moderately Played", result.Lines[1].ConditionName)
}

func TestBuyback_CashPaysLessThanStoreCredit(t *testing.T) {
	p := NewBuybackProcessor(newTestValuation(t))
	cards := []models.TradeCard{card(1000, models.ConditionLightlyPlayed, 1)}

	credit, err := p.Process(cards, models.PayoutStoreCredit)
	require.NoError(t, err)
	cash, err := p.Process(cards, models.PayoutCash)
	require.NoError(t, err)

	// LP: 60% store credit vs 50% cash of the 900 adjusted value.
	assert.True(t, credit.Total.Equal(decimal.NewFromInt(540)))
	assert.True(t, cash.Total.Equal(decimal.NewFromInt(450)))
}

func TestBuyback_UnknownPayoutMode(t *testing.T) {
	p := NewBuybackProcessor(newTestValuation(t))

	_, err := p.Process(nil, models.PayoutMode("GIFT_CARD"))
	assert.ErrorIs(t, err, ErrUnknownPayoutMode)
}
