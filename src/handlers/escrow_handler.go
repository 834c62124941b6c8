// backend/src/handlers/escrow_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/username/manavault/backend/src/database"
	"github.com/username/manavault/backend/src/logger"
	"github.com/username/manavault/backend/src/model"
	"github.com/username/manavault/backend/src/models"
	"github.com/username/manavault/backend/src/security/validation"
	"github.com/username/manavault/backend/src/services"
)

type EscrowHandler struct {
	escrowService services.EscrowService
}

func NewEscrowHandler(escrowService services.EscrowService) *EscrowHandler {
	return &EscrowHandler{escrowService: escrowService}
}

type disputeRequest struct {
	Reason string `json:"reason"`
}

type feeQuoteRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func isEscrowInputError(err error) bool {
	return errors.Is(err, services.ErrInvalidEscrowAmount) ||
		errors.Is(err, services.ErrBuyerIsSeller) ||
		errors.Is(err, services.ErrDisputeReasonRequired)
}

// respondEscrowError translates the service's error classes into HTTP
// statuses: bad input 400, lost state races 409, missing rows 404.
func (h *EscrowHandler) respondEscrowError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case isEscrowInputError(err):
		sendJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrPreconditionFailed):
		sendJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, services.ErrEscrowNotFound):
		sendJSONError(w, "Escrow transaction not found", http.StatusNotFound)
	default:
		logger.ErrorFromContext(r.Context(), op+" failed", "error", err)
		sendJSONError(w, op+" failed", http.StatusInternalServerError)
	}
}

func escrowIDFromURL(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *EscrowHandler) HandleCreateEscrow(w http.ResponseWriter, r *http.Request) {
	var input services.EscrowCreateInput
	if err := decodeJSONBody(r, &input); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.escrowService.Create(input)
	if err != nil {
		h.respondEscrowError(w, r, "Escrow creation", err)
		return
	}

	logger.InfoFromContext(r.Context(), "Escrow created", "escrowID", tx.ID, "tradeID", tx.TradeID)
	writeJSON(w, tx, http.StatusCreated)
}

func (h *EscrowHandler) HandleGetEscrow(w http.ResponseWriter, r *http.Request) {
	id, err := escrowIDFromURL(r)
	if err != nil {
		sendJSONError(w, "Invalid escrow id", http.StatusBadRequest)
		return
	}

	tx, err := h.escrowService.Get(id)
	if err != nil {
		h.respondEscrowError(w, r, "Escrow lookup", err)
		return
	}
	writeJSON(w, tx, http.StatusOK)
}

func (h *EscrowHandler) HandleFundEscrow(w http.ResponseWriter, r *http.Request) {
	id, err := escrowIDFromURL(r)
	if err != nil {
		sendJSONError(w, "Invalid escrow id", http.StatusBadRequest)
		return
	}

	tx, err := h.escrowService.Fund(id)
	if err != nil {
		h.respondEscrowError(w, r, "Escrow funding", err)
		return
	}

	logger.InfoFromContext(r.Context(), "Escrow funded", "escrowID", tx.ID)
	writeJSON(w, tx, http.StatusOK)
}

func (h *EscrowHandler) HandleReleaseEscrow(w http.ResponseWriter, r *http.Request) {
	id, err := escrowIDFromURL(r)
	if err != nil {
		sendJSONError(w, "Invalid escrow id", http.StatusBadRequest)
		return
	}

	tx, err := h.escrowService.Release(id)
	if err != nil {
		h.respondEscrowError(w, r, "Escrow release", err)
		return
	}

	logger.InfoFromContext(r.Context(), "Escrow released", "escrowID", tx.ID)
	writeJSON(w, tx, http.StatusOK)
}

func (h *EscrowHandler) HandleRefundEscrow(w http.ResponseWriter, r *http.Request) {
	id, err := escrowIDFromURL(r)
	if err != nil {
		sendJSONError(w, "Invalid escrow id", http.StatusBadRequest)
		return
	}

	tx, err := h.escrowService.Refund(id)
	if err != nil {
		h.respondEscrowError(w, r, "Escrow refund", err)
		return
	}

	logger.InfoFromContext(r.Context(), "Escrow refunded", "escrowID", tx.ID)
	writeJSON(w, tx, http.StatusOK)
}

func (h *EscrowHandler) HandleDisputeEscrow(w http.ResponseWriter, r *http.Request) {
	id, err := escrowIDFromURL(r)
	if err != nil {
		sendJSONError(w, "Invalid escrow id", http.StatusBadRequest)
		return
	}

	var req disputeRequest
	if err := decodeJSONBody(r, &req); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringMaxLength(req.Reason, validation.MaxReasonLength, "reason"); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.escrowService.Dispute(id, req.Reason)
	if err != nil {
		h.respondEscrowError(w, r, "Escrow dispute", err)
		return
	}

	logger.InfoFromContext(r.Context(), "Escrow disputed", "escrowID", tx.ID)
	writeJSON(w, tx, http.StatusOK)
}

type rateEscrowRequest struct {
	Rating float64 `json:"rating"`
}

// HandleRateEscrow lets one party of a released escrow rate the other. The
// rating feeds the counterparty's successful-trade counter and running
// average, which together drive the verified-trader badge.
func (h *EscrowHandler) HandleRateEscrow(w http.ResponseWriter, r *http.Request) {
	id, err := escrowIDFromURL(r)
	if err != nil {
		sendJSONError(w, "Invalid escrow id", http.StatusBadRequest)
		return
	}

	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req rateEscrowRequest
	if err := decodeJSONBody(r, &req); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		sendJSONError(w, "rating must be between 1 and 5", http.StatusBadRequest)
		return
	}

	tx, err := h.escrowService.Get(id)
	if err != nil {
		h.respondEscrowError(w, r, "Escrow rating", err)
		return
	}
	if tx.Status != models.EscrowReleased {
		sendJSONError(w, "only released escrow transactions can be rated", http.StatusConflict)
		return
	}

	var counterpartyID int64
	switch userID {
	case tx.BuyerID:
		counterpartyID = tx.SellerID
	case tx.SellerID:
		counterpartyID = tx.BuyerID
	default:
		sendJSONError(w, "only the buyer or seller can rate this transaction", http.StatusForbidden)
		return
	}

	if err := model.RecordCompletedTrade(database.DB, counterpartyID, req.Rating); err != nil {
		logger.ErrorFromContext(r.Context(), "Escrow rating failed", "error", err)
		sendJSONError(w, "Escrow rating failed", http.StatusInternalServerError)
		return
	}

	logger.InfoFromContext(r.Context(), "Escrow rated",
		"escrowID", tx.ID, "raterID", userID, "ratedID", counterpartyID, "rating", req.Rating)
	writeJSON(w, map[string]any{"escrow_id": tx.ID, "rated_user_id": counterpartyID, "rating": req.Rating}, http.StatusOK)
}

// HandleFeeQuote returns the platform fee for an amount without touching any
// escrow row.
func (h *EscrowHandler) HandleFeeQuote(w http.ResponseWriter, r *http.Request) {
	var req feeQuoteRequest
	if err := decodeJSONBody(r, &req); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	quote, err := h.escrowService.QuoteFee(req.Amount)
	if err != nil {
		h.respondEscrowError(w, r, "Fee quote", err)
		return
	}
	writeJSON(w, quote, http.StatusOK)
}
