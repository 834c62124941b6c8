// backend/src/services/inventory_service.go
package services

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/manavault/backend/src/logger"
	"github.com/username/manavault/backend/src/models"
	"github.com/username/manavault/backend/src/parsers/manabox"
	"github.com/username/manavault/backend/src/security/validation"
)

type inventoryServiceImpl struct {
	db           *sql.DB
	parser       *manabox.ManaBoxParser
	priceService PriceService

	markup     decimal.Decimal // sell price = ceil(cost * markup)
	usdPhpRate decimal.Decimal
}

// NewInventoryService wires the import pipeline: parser, price fallback, and
// the pricing parameters (markup and USD→PHP conversion).
func NewInventoryService(db *sql.DB, parser *manabox.ManaBoxParser, priceService PriceService, markup, usdPhpRate decimal.Decimal) InventoryService {
	return &inventoryServiceImpl{
		db:           db,
		parser:       parser,
		priceService: priceService,
		markup:       markup,
		usdPhpRate:   usdPhpRate,
	}
}

func (s *inventoryServiceImpl) ListInventory(limit, offset int) ([]models.InventoryListing, error) {
	query := `
	SELECT i.id, i.card_id, c.name, c.set_code, c.set_name, c.rarity, c.image_uri,
	       i.condition, i.language, i.foil, i.quantity, i.sell_price
	FROM inventory i
	JOIN cards c ON i.card_id = c.id
	WHERE i.quantity > 0
	ORDER BY c.name
	LIMIT ? OFFSET ?`

	rows, err := s.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}
	defer rows.Close()

	var listings []models.InventoryListing
	for rows.Next() {
		var l models.InventoryListing
		var setName, rarity, imageURI sql.NullString
		var sellPrice string
		if err := rows.Scan(&l.ID, &l.CardID, &l.Name, &l.SetCode, &setName, &rarity, &imageURI,
			&l.Condition, &l.Language, &l.Foil, &l.Quantity, &sellPrice); err != nil {
			return nil, fmt.Errorf("scanning inventory row: %w", err)
		}
		l.SetName = setName.String
		l.Rarity = rarity.String
		l.ImageURI = imageURI.String
		l.SellPrice, err = parseStoredAmount(sellPrice)
		if err != nil {
			return nil, fmt.Errorf("inventory %d: %w", l.ID, err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// ImportCSV runs a full ManaBox import: validate the upload, parse it, then
// upsert cards and accumulate inventory inside one transaction. Row-level
// failures are collected into the result; only file-level problems abort.
func (s *inventoryServiceImpl) ImportCSV(fileReader io.Reader, filename string, filesize int64) (*models.ImportResult, error) {
	logger.L.Info("Starting inventory import", "filename", filename, "filesize", filesize)

	rows, rowErrors, err := s.parser.Parse(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	result := &models.ImportResult{
		Total:  len(rows) + len(rowErrors),
		Errors: rowErrors,
	}
	result.Skipped = len(rowErrors)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting import transaction: %w", err)
	}
	defer tx.Rollback()

	for _, row := range rows {
		if err := s.importRow(tx, row, result); err != nil {
			result.Errors = append(result.Errors, models.ImportRowError{Row: row.Row, Message: err.Error()})
			result.Skipped++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing import: %w", err)
	}

	logger.L.Info("Inventory import finished",
		"filename", filename, "total", result.Total,
		"inserted", result.Inserted, "updated", result.Updated, "skipped", result.Skipped)
	return result, nil
}

func (s *inventoryServiceImpl) importRow(tx *sql.Tx, row models.CanonicalCardRow, result *models.ImportResult) error {
	name := validation.SanitizeText(row.Name)
	if name == "" {
		return errors.New("card name empty after sanitization")
	}

	// Imports without a purchase price fall back to the current market
	// price so the sell price never ends up at zero.
	purchaseUSD := row.PurchasePriceUSD
	if purchaseUSD.IsZero() && s.priceService != nil {
		marketUSD, err := s.priceService.GetCardPriceUSD(row.ScryfallID)
		if err != nil {
			logger.L.Warn("Price lookup failed during import, keeping zero cost",
				"scryfallID", row.ScryfallID, "error", err)
		} else {
			purchaseUSD = marketUSD
		}
	}

	costPHP := purchaseUSD.Mul(s.usdPhpRate)
	sellPHP := costPHP.Mul(s.markup).Ceil()

	cardID, err := s.upsertCard(tx, row, name, purchaseUSD, costPHP)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	var invID int64
	var existingQty int
	// Foil is part of the stocking key: a foil printing is a different
	// product at a different price than its non-foil counterpart.
	err = tx.QueryRow(
		`SELECT id, quantity FROM inventory WHERE card_id = ? AND condition = ? AND language = ? AND foil = ?`,
		cardID, string(row.Condition), row.Language, row.Foil,
	).Scan(&invID, &existingQty)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.Exec(
			`INSERT INTO inventory (card_id, condition, language, foil, quantity, cost_price, sell_price, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			cardID, string(row.Condition), row.Language, row.Foil, row.Quantity,
			costPHP.String(), sellPHP.String(), now, now,
		)
		if err != nil {
			return fmt.Errorf("inserting inventory: %v", err)
		}
		result.Inserted++
	case err != nil:
		return fmt.Errorf("checking existing inventory: %v", err)
	default:
		_, err = tx.Exec(
			`UPDATE inventory SET quantity = ?, cost_price = ?, sell_price = ?, updated_at = ? WHERE id = ?`,
			existingQty+row.Quantity, costPHP.String(), sellPHP.String(), now, invID,
		)
		if err != nil {
			return fmt.Errorf("updating inventory: %v", err)
		}
		result.Updated++
	}
	return nil
}

func (s *inventoryServiceImpl) upsertCard(tx *sql.Tx, row models.CanonicalCardRow, name string, priceUSD, pricePHP decimal.Decimal) (int64, error) {
	var cardID int64
	err := tx.QueryRow(`SELECT id FROM cards WHERE scryfall_id = ?`, row.ScryfallID).Scan(&cardID)
	if err == nil {
		return cardID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("looking up card: %v", err)
	}

	now := time.Now().UTC()
	res, err := tx.Exec(
		`INSERT INTO cards (scryfall_id, name, set_code, set_name, collector_number, rarity, price_usd, price_php, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ScryfallID, name, row.SetCode, validation.SanitizeText(row.SetName),
		row.CollectorNumber, row.Rarity, priceUSD.String(), pricePHP.String(), now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting card: %v", err)
	}
	return res.LastInsertId()
}
