// backend/src/services/trading_service.go
package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/username/manavault/backend/src/models"
	"github.com/username/manavault/backend/src/processors"
	"github.com/username/manavault/backend/src/utils"
)

type tradingServiceImpl struct {
	valuation processors.ValuationProcessor
	buyback   processors.BuybackProcessor
	balance   processors.BalanceProcessor

	defaultTolerance decimal.Decimal
	minTrades        int
	minRating        float64
}

// NewTradingService applies the configured defaults (balance tolerance,
// verified-trader thresholds) on top of the pure processors.
func NewTradingService(
	valuation processors.ValuationProcessor,
	buyback processors.BuybackProcessor,
	balance processors.BalanceProcessor,
	defaultTolerance decimal.Decimal,
	minTrades int,
	minRating float64,
) TradingService {
	return &tradingServiceImpl{
		valuation:        valuation,
		buyback:          buyback,
		balance:          balance,
		defaultTolerance: defaultTolerance,
		minTrades:        minTrades,
		minRating:        minRating,
	}
}

func (s *tradingServiceImpl) ValuateCard(card models.TradeCard) (models.Valuation, error) {
	return s.valuation.Valuate(card)
}

func (s *tradingServiceImpl) BasketValue(cards []models.TradeCard) (decimal.Decimal, error) {
	return s.valuation.BasketValue(cards)
}

func (s *tradingServiceImpl) BuybackQuote(cards []models.TradeCard, mode models.PayoutMode) (*models.BuybackResult, error) {
	return s.buyback.Process(cards, mode)
}

// TradeBalance falls back to the configured tolerance when the caller
// supplies none.
func (s *tradingServiceImpl) TradeBalance(offering, requesting []models.TradeCard, tolerance *decimal.Decimal) (models.TradeBalance, error) {
	tol := s.defaultTolerance
	if tolerance != nil {
		tol = *tolerance
	}
	return s.balance.Balance(offering, requesting, tol)
}

// TradeSummary renders the offer in the storefront's display format.
func (s *tradingServiceImpl) TradeSummary(offering, requesting []models.TradeCard) (string, error) {
	balance, err := s.TradeBalance(offering, requesting, nil)
	if err != nil {
		return "", err
	}

	summary := fmt.Sprintf("Offering: %s\n", utils.FormatPHP(balance.OfferingValue))
	summary += fmt.Sprintf("Requesting: %s\n", utils.FormatPHP(balance.RequestingValue))

	switch {
	case balance.IsBalanced:
		summary += "Status: Balanced Trade"
	case balance.CashTopupRequired.IsPositive():
		summary += fmt.Sprintf("Cash Top-up Required: %s", utils.FormatPHP(balance.CashTopupRequired))
	default:
		summary += fmt.Sprintf("You're offering %s more", utils.FormatPHP(balance.Difference.Abs()))
	}
	return summary, nil
}

func (s *tradingServiceImpl) VerifiedTraderStatus(successfulTrades int, averageRating float64) bool {
	return processors.CheckVerifiedTraderStatus(successfulTrades, averageRating, s.minTrades, s.minRating)
}
