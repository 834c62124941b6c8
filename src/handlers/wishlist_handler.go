// backend/src/handlers/wishlist_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/username/manavault/backend/src/logger"
	"github.com/username/manavault/backend/src/security/validation"
	"github.com/username/manavault/backend/src/services"
)

type WishlistHandler struct {
	wishlists services.WishlistRepository
}

func NewWishlistHandler(wishlists services.WishlistRepository) *WishlistHandler {
	return &WishlistHandler{wishlists: wishlists}
}

type addWishlistRequest struct {
	CardID   int64           `json:"card_id"`
	MaxPrice decimal.Decimal `json:"max_price"`
	Notes    string          `json:"notes"`
}

func (h *WishlistHandler) HandleListWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	entries, err := h.wishlists.ListByUser(userID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "ListWishlist failed", "error", err)
		sendJSONError(w, "Failed to get wishlist", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"wishlist": entries, "total": len(entries)}, http.StatusOK)
}

func (h *WishlistHandler) HandleAddToWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req addWishlistRequest
	if err := decodeJSONBody(r, &req); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.CardID <= 0 {
		sendJSONError(w, "card_id is required", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringMaxLength(req.Notes, validation.MaxNotesLength, "notes"); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.wishlists.Add(userID, req.CardID, req.MaxPrice, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyInWishlist):
			sendJSONError(w, err.Error(), http.StatusConflict)
		case errors.Is(err, services.ErrCardNotFound):
			sendJSONError(w, err.Error(), http.StatusNotFound)
		default:
			logger.ErrorFromContext(r.Context(), "AddToWishlist failed", "error", err)
			sendJSONError(w, "Failed to add to wishlist", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, map[string]any{"id": id}, http.StatusCreated)
}

func (h *WishlistHandler) HandleRemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		sendJSONError(w, "Invalid wishlist entry id", http.StatusBadRequest)
		return
	}

	if err := h.wishlists.Remove(id, userID); err != nil {
		if errors.Is(err, services.ErrCardNotFound) {
			sendJSONError(w, "Wishlist entry not found", http.StatusNotFound)
			return
		}
		logger.ErrorFromContext(r.Context(), "RemoveFromWishlist failed", "error", err)
		sendJSONError(w, "Failed to remove from wishlist", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
