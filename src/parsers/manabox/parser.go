// backend/src/parsers/manabox/parser.go
package manabox

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/manavault/backend/src/models"
	"github.com/username/manavault/backend/src/security/validation"
)

// Columns the importer cannot work without. The remaining ManaBox columns
// (set name, collector number, foil, rarity, purchase price, language) are
// optional and default sensibly when absent.
var requiredColumns = []string{"name", "set code", "scryfall id", "quantity", "condition"}

// ManaBoxParser converts a ManaBox collection export into canonical card
// rows. Rows that cannot be parsed are collected as errors, not fatal: a
// single bad line must not sink a thousand-card import.
type ManaBoxParser struct{}

// NewParser creates a new instance of the ManaBoxParser.
func NewParser() *ManaBoxParser {
	return &ManaBoxParser{}
}

// columnIndex maps lowercased header names to their position.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}

func field(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// Parse reads a ManaBox CSV export and converts its rows into canonical card
// rows plus per-row errors for everything that had to be skipped.
func (p *ManaBoxParser) Parse(file io.Reader) ([]models.CanonicalCardRow, []models.ImportRowError, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // ManaBox exports vary in trailing columns

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("manabox parser: failed to read CSV header: %w", err)
	}

	idx := columnIndex(header)
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("manabox parser: missing required columns: %s", strings.Join(missing, ", "))
	}

	var rows []models.CanonicalCardRow
	var rowErrors []models.ImportRowError
	rowNum := 1 // header is row 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			rowErrors = append(rowErrors, models.ImportRowError{Row: rowNum, Message: fmt.Sprintf("malformed CSV row: %v", err)})
			continue
		}

		row, rowErr := p.parseRecord(record, idx, rowNum)
		if rowErr != nil {
			log.Printf("ManaBox Parser: Skipping row %d: %v", rowNum, rowErr)
			rowErrors = append(rowErrors, models.ImportRowError{Row: rowNum, Message: rowErr.Error()})
			continue
		}
		rows = append(rows, row)
	}

	return rows, rowErrors, nil
}

func (p *ManaBoxParser) parseRecord(record []string, idx map[string]int, rowNum int) (models.CanonicalCardRow, error) {
	// Exports occasionally carry stray control characters in card names.
	name := validation.StripUnprintable(field(record, idx, "name"))
	setCode := field(record, idx, "set code")
	scryfallID := field(record, idx, "scryfall id")
	if name == "" || setCode == "" || scryfallID == "" {
		return models.CanonicalCardRow{}, fmt.Errorf("missing name, set code or scryfall id")
	}

	quantity, err := strconv.Atoi(field(record, idx, "quantity"))
	if err != nil || quantity <= 0 {
		return models.CanonicalCardRow{}, fmt.Errorf("invalid quantity %q", field(record, idx, "quantity"))
	}

	condition, ok := models.NormalizeCondition(field(record, idx, "condition"))
	if !ok {
		return models.CanonicalCardRow{}, fmt.Errorf("unrecognized condition %q", field(record, idx, "condition"))
	}

	purchasePrice := decimal.Zero
	if raw := field(record, idx, "purchase price"); raw != "" {
		purchasePrice, err = decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
		if err != nil {
			return models.CanonicalCardRow{}, fmt.Errorf("invalid purchase price %q", raw)
		}
		if purchasePrice.IsNegative() {
			return models.CanonicalCardRow{}, fmt.Errorf("negative purchase price %q", raw)
		}
	}

	language := strings.ToLower(field(record, idx, "language"))
	if language == "" {
		language = "en"
	}

	return models.CanonicalCardRow{
		Row:              rowNum,
		ScryfallID:       scryfallID,
		Name:             name,
		SetCode:          strings.ToLower(setCode),
		SetName:          field(record, idx, "set name"),
		CollectorNumber:  field(record, idx, "collector number"),
		Rarity:           strings.ToLower(field(record, idx, "rarity")),
		Foil:             strings.EqualFold(field(record, idx, "foil"), "foil"),
		Language:         language,
		Quantity:         quantity,
		Condition:        condition,
		PurchasePriceUSD: purchasePrice,
		RawLine:          strings.Join(record, ","),
	}, nil
}
