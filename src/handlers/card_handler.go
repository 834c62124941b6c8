// backend/src/handlers/card_handler.go
package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/username/manavault/backend/src/database"
	"github.com/username/manavault/backend/src/logger"
	"github.com/username/manavault/backend/src/models"
)

type CardHandler struct{}

func NewCardHandler() *CardHandler {
	return &CardHandler{}
}

// HandleListCards supports browsing and name/type search over the catalog.
func (h *CardHandler) HandleListCards(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
	SELECT id, scryfall_id, name, set_code, set_name, collector_number, rarity, type_line, image_uri, price_usd, price_php
	FROM cards`
	args := []any{}
	if search != "" {
		query += ` WHERE name LIKE ? OR type_line LIKE ?`
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	query += ` ORDER BY name LIMIT ?`
	args = append(args, limit)

	rows, err := database.DB.Query(query, args...)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "ListCards query failed", "error", err)
		sendJSONError(w, "Failed to get cards", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	cards := []models.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			logger.ErrorFromContext(r.Context(), "ListCards scan failed", "error", err)
			sendJSONError(w, "Failed to get cards", http.StatusInternalServerError)
			return
		}
		cards = append(cards, card)
	}

	writeJSON(w, map[string]any{"cards": cards, "total": len(cards)}, http.StatusOK)
}

func (h *CardHandler) HandleGetCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		sendJSONError(w, "Invalid card id", http.StatusBadRequest)
		return
	}

	row := database.DB.QueryRow(`
	SELECT id, scryfall_id, name, set_code, set_name, collector_number, rarity, type_line, image_uri, price_usd, price_php
	FROM cards WHERE id = ?`, cardID)

	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		sendJSONError(w, "Card not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.ErrorFromContext(r.Context(), "GetCard failed", "cardID", cardID, "error", err)
		sendJSONError(w, "Failed to get card", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"card": card}, http.StatusOK)
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (models.Card, error) {
	var card models.Card
	var setName, collectorNumber, rarity, typeLine, imageURI sql.NullString
	var priceUSD, pricePHP string
	err := row.Scan(&card.ID, &card.ScryfallID, &card.Name, &card.SetCode, &setName,
		&collectorNumber, &rarity, &typeLine, &imageURI, &priceUSD, &pricePHP)
	if err != nil {
		return models.Card{}, err
	}
	card.SetName = setName.String
	card.CollectorNumber = collectorNumber.String
	card.Rarity = rarity.String
	card.TypeLine = typeLine.String
	card.ImageURI = imageURI.String
	if card.PriceUSD, err = decimalFromStored(priceUSD); err != nil {
		return models.Card{}, fmt.Errorf("card %d: %w", card.ID, err)
	}
	if card.PricePHP, err = decimalFromStored(pricePHP); err != nil {
		return models.Card{}, fmt.Errorf("card %d: %w", card.ID, err)
	}
	return card, nil
}
