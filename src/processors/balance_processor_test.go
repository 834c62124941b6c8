package processors

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/manavault/backend/src/models"
)

func newTestBalance(t *testing.T) BalanceProcessor {
	t.Helper()
	return NewBalanceProcessor(NewValuationProcessor(models.DefaultConditionRates()))
}

var defaultTolerance = decimal.NewFromInt(50)

func TestBalance_IdenticalBasketsAreBalanced(t *testing.T) {
	p := newTestBalance(t)
	basket := []models.TradeCard{
		card(1000, models.ConditionNearMint, 1),
		card(250, models.ConditionHeavilyPlayed, 2),
	}

	balance, err := p.Balance(basket, basket, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, balance.Difference.IsZero())
	assert.True(t, balance.IsBalanced)
	assert.True(t, balance.CashTopupRequired.IsZero())
}

func TestBalance_BothEmptyIsBalanced(t *testing.T) {
	p := newTestBalance(t)

	balance, err := p.Balance(nil, nil, defaultTolerance)
	require.NoError(t, err)

	assert.True(t, balance.IsBalanced)
	assert.True(t, balance.Difference.IsZero())
}

func TestBalance_TopupOwedOutsideTolerance(t *testing.T) {
	p := newTestBalance(t)
	// NM cards value at face: offering 1000 vs requesting 1100.
	offering := []models.TradeCard{card(1000, models.ConditionNearMint, 1)}
	requesting := []models.TradeCard{card(1100, models.ConditionNearMint, 1)}

	balance, err := p.Balance(offering, requesting, defaultTolerance)
	require.NoError(t, err)

	assert.False(t, balance.IsBalanced)
	assert.True(t, balance.Difference.Equal(decimal.NewFromInt(100)))
	assert.True(t, balance.CashTopupRequired.Equal(decimal.NewFromInt(100)))
}

func TestBalance_WithinToleranceNoTopup(t *testing.T) {
	p := newTestBalance(t)
	offering := []models.TradeCard{card(1000, models.ConditionNearMint, 1)}
	requesting := []models.TradeCard{card(1030, models.ConditionNearMint, 1)}

	balance, err := p.Balance(offering, requesting, defaultTolerance)
	require.NoError(t, err)

	assert.True(t, balance.IsBalanced)
	assert.True(t, balance.CashTopupRequired.IsZero())
}

func TestBalance_SurplusIsInformationalOnly(t *testing.T) {
	p := newTestBalance(t)
	offering := []models.TradeCard{card(1200, models.ConditionNearMint, 1)}
	requesting := []models.TradeCard{card(1000, models.ConditionNearMint, 1)}

	balance, err := p.Balance(offering, requesting, defaultTolerance)
	require.NoError(t, err)

	assert.True(t, balance.Difference.Equal(decimal.NewFromInt(-200)))
	assert.False(t, balance.IsBalanced)
	// The offering party is giving more; nobody owes a top-up.
	assert.True(t, balance.CashTopupRequired.IsZero())
}

func TestBalance_NegativeToleranceRejected(t *testing.T) {
	p := newTestBalance(t)

	_, err := p.Balance(nil, nil, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrNegativeTolerance)
}

func TestBalance_InvalidCardSurfaces(t *testing.T) {
	p := newTestBalance(t)
	bad := []models.TradeCard{card(100, "SEALED", 1)}

	_, err := p.Balance(bad, nil, defaultTolerance)
	assert.ErrorIs(t, err, ErrUnknownCondition)
}

func TestCheckVerifiedTraderStatus(t *testing.T) {
	tests := []struct {
		name     string
		trades   int
		rating   float64
		expected bool
	}{
		{"both at boundary", 10, 4.0, true},
		{"trades below minimum", 9, 5.0, false},
		{"rating below minimum", 50, 3.9, false},
		{"both above", 25, 4.8, true},
		{"both below", 0, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CheckVerifiedTraderStatus(tc.trades, tc.rating, 10, 4.0))
		})
	}
}
