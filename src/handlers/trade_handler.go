// backend/src/handlers/trade_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/username/manavault/backend/src/logger"
	"github.com/username/manavault/backend/src/models"
	"github.com/username/manavault/backend/src/processors"
	"github.com/username/manavault/backend/src/services"
)

type TradeHandler struct {
	tradingService services.TradingService
}

func NewTradeHandler(tradingService services.TradingService) *TradeHandler {
	return &TradeHandler{tradingService: tradingService}
}

type valuateRequest struct {
	Card models.TradeCard `json:"card"`
}

type basketRequest struct {
	Cards []models.TradeCard `json:"cards"`
}

type buybackRequest struct {
	Cards []models.TradeCard `json:"cards"`
	Mode  models.PayoutMode  `json:"mode"`
}

type balanceRequest struct {
	Offering   []models.TradeCard `json:"offering"`
	Requesting []models.TradeCard `json:"requesting"`
	Tolerance  *decimal.Decimal   `json:"tolerance,omitempty"`
}

// isTradeInputError reports whether err is a caller mistake rather than a
// server failure.
func isTradeInputError(err error) bool {
	return errors.Is(err, processors.ErrUnknownCondition) ||
		errors.Is(err, processors.ErrNegativePrice) ||
		errors.Is(err, processors.ErrInvalidQuantity) ||
		errors.Is(err, processors.ErrNegativeTolerance) ||
		errors.Is(err, processors.ErrUnknownPayoutMode)
}

func (h *TradeHandler) respondTradeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if isTradeInputError(err) {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.ErrorFromContext(r.Context(), op+" failed", "error", err)
	sendJSONError(w, op+" failed", http.StatusInternalServerError)
}

// HandleValuateCard returns the full per-condition valuation for one card.
func (h *TradeHandler) HandleValuateCard(w http.ResponseWriter, r *http.Request) {
	var req valuateRequest
	if err := decodeJSONBody(r, &req); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	valuation, err := h.tradingService.ValuateCard(req.Card)
	if err != nil {
		h.respondTradeError(w, r, "Valuation", err)
		return
	}
	writeJSON(w, valuation, http.StatusOK)
}

func (h *TradeHandler) HandleBasketValue(w http.ResponseWriter, r *http.Request) {
	var req basketRequest
	if err := decodeJSONBody(r, &req); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	total, err := h.tradingService.BasketValue(req.Cards)
	if err != nil {
		h.respondTradeError(w, r, "Basket valuation", err)
		return
	}
	writeJSON(w, map[string]any{"total": total}, http.StatusOK)
}

func (h *TradeHandler) HandleBuybackQuote(w http.ResponseWriter, r *http.Request) {
	var req buybackRequest
	if err := decodeJSONBody(r, &req); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.tradingService.BuybackQuote(req.Cards, req.Mode)
	if err != nil {
		h.respondTradeError(w, r, "Buyback quote", err)
		return
	}
	writeJSON(w, result, http.StatusOK)
}

// HandleTradeBalance evaluates both sides of a proposed trade. The tolerance
// is optional; omitted means the store default applies.
func (h *TradeHandler) HandleTradeBalance(w http.ResponseWriter, r *http.Request) {
	var req balanceRequest
	if err := decodeJSONBody(r, &req); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	balance, err := h.tradingService.TradeBalance(req.Offering, req.Requesting, req.Tolerance)
	if err != nil {
		h.respondTradeError(w, r, "Trade balance", err)
		return
	}
	writeJSON(w, balance, http.StatusOK)
}

func (h *TradeHandler) HandleTradeSummary(w http.ResponseWriter, r *http.Request) {
	var req balanceRequest
	if err := decodeJSONBody(r, &req); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.tradingService.TradeSummary(req.Offering, req.Requesting)
	if err != nil {
		h.respondTradeError(w, r, "Trade summary", err)
		return
	}
	writeJSON(w, map[string]any{"summary": summary}, http.StatusOK)
}

// HandleVerifiedStatus reports the authenticated user's verified-trader badge.
func (h *TradeHandler) HandleVerifiedStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	user, err := fetchUser(r, userID)
	if err != nil {
		sendJSONError(w, "Error retrieving user", http.StatusInternalServerError)
		return
	}

	verified := h.tradingService.VerifiedTraderStatus(user.SuccessfulTrades, user.AverageRating)
	writeJSON(w, map[string]any{
		"verified":          verified,
		"successful_trades": user.SuccessfulTrades,
		"average_rating":    user.AverageRating,
	}, http.StatusOK)
}
